// Command vcsmaint hosts the two maintenance subsystems of a content-
// addressed version-control tool: the trailer processing engine
// ("trailers") and the exposed housekeeping-lock contract ("gc").
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/chainguard-dev/clog"
	"github.com/chainguard-dev/clog/slag"
	"github.com/spf13/cobra"

	"github.com/tobiaslorenz/vcsmaint/internal/housekeeping"
	"github.com/tobiaslorenz/vcsmaint/internal/trailer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var level = slag.Level(slog.LevelInfo)

	root := &cobra.Command{
		Use:   "vcsmaint",
		Short: "Trailer merging and repository housekeeping helpers",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level})))
			log := clog.New(slog.Default().Handler())
			cmd.SetContext(clog.WithLogger(cmd.Context(), log))
			return nil
		},
	}
	root.PersistentFlags().Var(&level, "log-level", "log level (debug, info, warn, error)")

	root.AddCommand(trailersCmd())
	root.AddCommand(gcCmd())
	return root
}

func trailersCmd() *cobra.Command {
	var trimEmpty bool
	var repoConfig string

	cmd := &cobra.Command{
		Use:   "trailers [--trim-empty] [<token>[(=|:)<value>] ...]",
		Short: "Merge configured and command-line trailers into a message read from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			registry, err := trailer.LoadConfigFiles(ctx, repoConfig)
			if err != nil {
				return fmt.Errorf("load trailer config: %w", err)
			}

			return trailer.Run(ctx, trailer.DefaultExecutor, registry, cmd.InOrStdin(), cmd.OutOrStdout(), trailer.RunOptions{
				TrimEmpty: trimEmpty,
				Args:      args,
			})
		},
	}
	cmd.Flags().BoolVar(&trimEmpty, "trim-empty", false, "omit trailers whose value is empty")
	cmd.Flags().StringVar(&repoConfig, "config", ".vcsmaint.toml", "repo-local trailer config file (overrides the user config)")
	return cmd
}

func gcCmd() *cobra.Command {
	var gitDir string
	var force, auto bool
	var configPath string

	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Acquire the housekeeping lock and report auto-trigger decisions",
		Long: `gc implements only the exposed housekeeping contract: the cross-host
advisory lock at <repo>/gc.pid and the too-many-loose-objects /
too-many-packs auto-trigger probes. It does not itself run pack-refs,
repack, prune, or reflog expiry.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := clog.FromContext(ctx)

			cfg := housekeeping.DefaultConfig()
			if data, err := os.ReadFile(configPath); err == nil {
				cfg, err = housekeeping.LoadConfig(ctx, data)
				if err != nil {
					return fmt.Errorf("load gc config: %w", err)
				}
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("read gc config: %w", err)
			}

			lock, err := housekeeping.Acquire(ctx, gitDir, housekeeping.AcquireOptions{Force: force, Auto: auto})
			if err != nil {
				return err
			}
			if lock == nil {
				log.Info("another housekeeping run is in progress, exiting")
				return nil
			}
			defer lock.Release(ctx)

			tooManyLoose, err := housekeeping.TooManyLooseObjects(filepath.Join(gitDir, "objects"), cfg.Auto)
			if err != nil {
				return fmt.Errorf("probe loose objects: %w", err)
			}
			tooManyPacks, err := housekeeping.TooManyPacks(filepath.Join(gitDir, "objects", "pack"), cfg.AutoPackLimit)
			if err != nil {
				return fmt.Errorf("probe packs: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "too many loose objects: %v\ntoo many packs: %v\n", tooManyLoose, tooManyPacks)
			return nil
		},
	}
	cmd.Flags().StringVar(&gitDir, "git-dir", ".git", "path to the repository's git directory")
	cmd.Flags().BoolVar(&force, "force", false, "bypass the staleness/liveness check on a pre-existing lock")
	cmd.Flags().BoolVar(&auto, "auto", false, "silently do nothing if another run already holds the lock")
	cmd.Flags().StringVar(&configPath, "config", ".vcsmaint.toml", "repo-local gc config file")
	return cmd
}
