package housekeeping

import (
	"os"
	"path/filepath"
	"strings"
)

// looseObjectBucket is the single known-bucketed subdirectory of the object
// store probed by TooManyLooseObjects, per spec.md §4.8: one of the 256
// uniform hex buckets, conventionally "17".
const looseObjectBucket = "17"

// looseObjectNameLen is the length of a loose object's hex-digit filename.
const looseObjectNameLen = 38

// TooManyLooseObjects probes the single bucket subdirectory objectsDir/17,
// counts entries whose name is 38 lowercase hex digits, and compares the
// count against threshold/256 (threshold is the configured full-store
// count; dividing by 256 extrapolates from one of the 256 uniform buckets).
// A threshold <= 0 disables the check (matches gc.auto's "<=0 disables").
func TooManyLooseObjects(objectsDir string, threshold int) (bool, error) {
	if threshold <= 0 {
		return false, nil
	}

	entries, err := os.ReadDir(filepath.Join(objectsDir, looseObjectBucket))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	count := 0
	for _, e := range entries {
		if isLooseObjectName(e.Name()) {
			count++
		}
	}

	return count > threshold/256, nil
}

func isLooseObjectName(name string) bool {
	if len(name) != looseObjectNameLen {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}

// TooManyPacks counts local, non-kept pack files in packDir and compares
// against limit. A limit <= 0 disables the check (matches
// gc.autopacklimit's "<=0 disables").
func TooManyPacks(packDir string, limit int) (bool, error) {
	if limit <= 0 {
		return false, nil
	}

	entries, err := os.ReadDir(packDir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	kept := map[string]bool{}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".keep") {
			kept[strings.TrimSuffix(e.Name(), ".keep")] = true
		}
	}

	count := 0
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".pack") {
			continue
		}
		base := strings.TrimSuffix(e.Name(), ".pack")
		if kept[base] {
			continue
		}
		count++
	}

	return count >= limit, nil
}
