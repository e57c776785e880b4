package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"discforge/internal/config"
)

func TestCheckDirectoryAccessOK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccessNotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccessNotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDeviceAccessRegularFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "not-a-device")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDeviceAccess("drive", f)
	if result.Passed {
		t.Fatal("expected failure for a regular file")
	}
}

func TestRunAllCoversConfiguredPaths(t *testing.T) {
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Paths.WorkDir = dir
	cfg.Paths.LogDir = dir
	cfg.Paths.HistoryDir = dir
	cfg.Paths.DVDOutputDir = filepath.Join(dir, "missing")
	cfg.Paths.MP4OutputDir = ""
	cfg.Paths.AVIOutputDir = ""
	cfg.Paths.SubtitleOutputDir = ""
	cfg.DVD.Device = ""

	results := RunAll(&cfg)
	if len(results) != 4 {
		t.Fatalf("results = %d: %#v", len(results), results)
	}
	for _, result := range results[:3] {
		if !result.Passed {
			t.Errorf("%s failed: %s", result.Name, result.Detail)
		}
	}
	if results[3].Passed {
		t.Errorf("missing output dir must fail: %#v", results[3])
	}

	if RunAll(nil) != nil {
		t.Fatal("nil config must yield no results")
	}
}
