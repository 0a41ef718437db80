package trailer

import (
	"context"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// LoadConfigFiles builds a Registry from the user-level config (discovered
// via XDG, following sourabhkatti-dfc/pkg/dfc/update.go's
// xdg.ConfigFile(...) pattern) and an optional repo-local config file that
// overrides it. Missing files are silently skipped; a present-but-unreadable
// file is an error.
func LoadConfigFiles(ctx context.Context, repoConfigPath string) (*Registry, error) {
	reg := NewRegistry()

	userPath, err := xdg.ConfigFile(filepath.Join("vcsmaint", "config.toml"))
	if err == nil {
		data, err := os.ReadFile(userPath)
		if err == nil {
			if err := reg.Load(ctx, data); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if repoConfigPath != "" {
		data, err := os.ReadFile(repoConfigPath)
		if err != nil {
			if os.IsNotExist(err) {
				return reg, nil
			}
			return nil, err
		}
		if err := reg.Load(ctx, data); err != nil {
			return nil, err
		}
	}

	return reg, nil
}
