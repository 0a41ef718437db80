package housekeeping

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTooManyLooseObjects(t *testing.T) {
	dir := t.TempDir()
	bucket := filepath.Join(dir, "17")
	if err := os.MkdirAll(bucket, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	// 3 well-formed loose object names, plus some noise that must not count.
	writeEmpty(t, filepath.Join(bucket, "0123456789abcdef0123456789abcdef012345"))
	writeEmpty(t, filepath.Join(bucket, "1123456789abcdef0123456789abcdef012345"))
	writeEmpty(t, filepath.Join(bucket, "2123456789abcdef0123456789abcdef012345"))
	writeEmpty(t, filepath.Join(bucket, "not-a-loose-object"))
	writeEmpty(t, filepath.Join(bucket, "0123456789ABCDEF0123456789abcdef012345")) // wrong case, must not count

	// threshold/256 == 1, so a count of 3 trips it.
	got, err := TooManyLooseObjects(dir, 256)
	if err != nil {
		t.Fatalf("TooManyLooseObjects: %v", err)
	}
	if !got {
		t.Fatal("expected TooManyLooseObjects to trip with 3 objects against threshold 256")
	}

	got, err = TooManyLooseObjects(dir, 256*10)
	if err != nil {
		t.Fatalf("TooManyLooseObjects: %v", err)
	}
	if got {
		t.Fatal("expected TooManyLooseObjects not to trip against a much higher threshold")
	}
}

func TestTooManyLooseObjectsDisabledThreshold(t *testing.T) {
	got, err := TooManyLooseObjects(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("TooManyLooseObjects: %v", err)
	}
	if got {
		t.Fatal("expected threshold <= 0 to disable the check")
	}
}

func TestTooManyLooseObjectsMissingBucket(t *testing.T) {
	got, err := TooManyLooseObjects(t.TempDir(), 1)
	if err != nil {
		t.Fatalf("TooManyLooseObjects: %v", err)
	}
	if got {
		t.Fatal("expected a missing bucket directory to mean zero loose objects")
	}
}

func TestTooManyPacksIgnoresKeptPacks(t *testing.T) {
	dir := t.TempDir()
	writeEmpty(t, filepath.Join(dir, "pack-a.pack"))
	writeEmpty(t, filepath.Join(dir, "pack-b.pack"))
	writeEmpty(t, filepath.Join(dir, "pack-b.keep"))
	writeEmpty(t, filepath.Join(dir, "pack-c.pack"))

	got, err := TooManyPacks(dir, 1)
	if err != nil {
		t.Fatalf("TooManyPacks: %v", err)
	}
	// pack-a and pack-c count (2), pack-b is kept and excluded; 2 > 1.
	if !got {
		t.Fatal("expected TooManyPacks to trip: 2 non-kept packs against limit 1")
	}

	got, err = TooManyPacks(dir, 10)
	if err != nil {
		t.Fatalf("TooManyPacks: %v", err)
	}
	if got {
		t.Fatal("expected TooManyPacks not to trip against a much higher limit")
	}

	// The boundary itself trips: gc.c's lock_repo_for_gc equivalent check
	// is "limit <= count", not "limit < count".
	got, err = TooManyPacks(dir, 2)
	if err != nil {
		t.Fatalf("TooManyPacks: %v", err)
	}
	if !got {
		t.Fatal("expected TooManyPacks to trip when count equals limit exactly")
	}
}

func TestTooManyPacksDisabledLimit(t *testing.T) {
	got, err := TooManyPacks(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("TooManyPacks: %v", err)
	}
	if got {
		t.Fatal("expected limit <= 0 to disable the check")
	}
}

func writeEmpty(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}
