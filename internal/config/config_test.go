package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DVD.Standard != "pal" {
		t.Fatalf("default dvd standard = %q", cfg.DVD.Standard)
	}
	if cfg.Probe.DurationSeconds != defaultProbeDuration {
		t.Fatalf("default probe duration = %d", cfg.Probe.DurationSeconds)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[dvd]
standard = "NTSC"
max_iso_mib = 8100

[behavior]
audience_languages = ["EN", "de", "en", "und", ""]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DVD.Standard != "ntsc" {
		t.Fatalf("standard not normalized: %q", cfg.DVD.Standard)
	}
	if cfg.DVD.MaxISOMiB != 8100 {
		t.Fatalf("max iso not merged: %d", cfg.DVD.MaxISOMiB)
	}
	got := strings.Join(cfg.Behavior.AudienceLanguages, ",")
	if got != "en,de" {
		t.Fatalf("audience languages not deduplicated: %q", got)
	}
	// Untouched sections keep defaults.
	if cfg.Tools.FFmpeg != "ffmpeg" {
		t.Fatalf("ffmpeg default lost: %q", cfg.Tools.FFmpeg)
	}
}

func TestValidateRejectsBadNormalizeTargets(t *testing.T) {
	cfg := Default()
	cfg.Normalize.TargetMeanDB = -1
	cfg.Normalize.TargetPeakDB = -20
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when target peak <= target mean")
	}
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	cfg := Default()
	cfg.Normalize.Mode = "loudnorm"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown normalize mode")
	}
}

func TestValidateRejectsBadStandard(t *testing.T) {
	cfg := Default()
	cfg.DVD.Standard = "secam"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown dvd standard")
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatal(err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected error when config exists")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[normalize]") {
		t.Fatal("sample config missing normalize section")
	}
}

func TestOutputDirFor(t *testing.T) {
	cfg := Default()
	cfg.Paths.MP4OutputDir = "/tmp/mp4"
	if got := cfg.OutputDirFor("mp4-phone"); got != "/tmp/mp4" {
		t.Fatalf("OutputDirFor(mp4-phone) = %q", got)
	}
	if got := cfg.OutputDirFor("bogus"); got != "" {
		t.Fatalf("OutputDirFor(bogus) = %q", got)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := expandPath("~/x")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "x") {
		t.Fatalf("expandPath(~/x) = %q", got)
	}
}
