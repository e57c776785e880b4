package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir           string `toml:"work_dir"`
	LogDir            string `toml:"log_dir"`
	HistoryDir        string `toml:"history_dir"`
	DVDOutputDir      string `toml:"dvd_output_dir"`
	MP4OutputDir      string `toml:"mp4_output_dir"`
	AVIOutputDir      string `toml:"avi_output_dir"`
	SubtitleOutputDir string `toml:"subtitle_output_dir"`
}

// Tools contains the external binaries discforge drives.
type Tools struct {
	FFmpeg      string `toml:"ffmpeg"`
	FFprobe     string `toml:"ffprobe"`
	DVDAuthor   string `toml:"dvdauthor"`
	Mkisofs     string `toml:"mkisofs"`
	Growisofs   string `toml:"growisofs"`
	CCExtractor string `toml:"ccextractor"`
}

// Probe contains media analysis settings.
type Probe struct {
	DurationSeconds          int `toml:"duration_seconds"`
	FastDivisor              int `toml:"fast_divisor"`
	OpticalTimeoutMultiplier int `toml:"optical_timeout_multiplier"`
}

// DVD contains DVD authoring and burning settings.
type DVD struct {
	Standard                string `toml:"standard"` // pal or ntsc
	MaxISOMiB               int    `toml:"max_iso_mib"`
	OverheadPercent         int    `toml:"overhead_percent"`
	AudioBitrateKbps        int    `toml:"audio_bitrate_kbps"`
	MinVideoKbps            int    `toml:"min_video_kbps"`
	MaxVideoKbps            int    `toml:"max_video_kbps"`
	ChapterIntervalMinutes  int    `toml:"chapter_interval_minutes"`
	ForceRetranscode        bool   `toml:"force_retranscode"`
	Device                  string `toml:"device"`
	BurnSpeed               int    `toml:"burn_speed"`
	WaitForDisc             bool   `toml:"wait_for_disc"`
	WaitForDiscTimeoutSecs  int    `toml:"wait_for_disc_timeout_seconds"`
}

// ScreenProfile bounds one MP4 device class.
type ScreenProfile struct {
	MaxWidth     int     `toml:"max_width"`
	MaxHeight    int     `toml:"max_height"`
	BitsPerPixel float64 `toml:"bits_per_pixel"`
}

// MP4 contains per-device encode settings.
type MP4 struct {
	Tablet           ScreenProfile `toml:"tablet"`
	Phone            ScreenProfile `toml:"phone"`
	Android          ScreenProfile `toml:"android"`
	AudioBitrateKbps int           `toml:"audio_bitrate_kbps"`
}

// AVI contains AVI encode settings.
type AVI struct {
	VideoKbps        int `toml:"video_kbps"`
	AudioBitrateKbps int `toml:"audio_bitrate_kbps"`
	MaxWidth         int `toml:"max_width"`
	MaxHeight        int `toml:"max_height"`
}

// Normalize contains audio normalization settings.
type Normalize struct {
	Enabled      bool    `toml:"enabled"`
	Mode         string  `toml:"mode"` // compress, clip, or align-peak
	TargetMeanDB float64 `toml:"target_mean_db"`
	TargetPeakDB float64 `toml:"target_peak_db"`
	ToleranceDB  float64 `toml:"tolerance_db"`
}

// Subtitles contains subtitle handling settings.
type Subtitles struct {
	Cleanup          bool `toml:"cleanup"`
	DowngradeSSA     bool `toml:"downgrade_ssa_to_srt"`
	OriginalSizeHint bool `toml:"original_size_hint"`
}

// Behavior contains cross-cutting job behavior settings.
type Behavior struct {
	KeepIntermediateFiles bool     `toml:"keep_intermediate_files"`
	AutoRotate            bool     `toml:"auto_rotate"`
	PreferOriginalAudio   bool     `toml:"prefer_original_audio"`
	AudienceLanguages     []string `toml:"audience_languages"`
}

// Logging contains log output settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the root configuration document.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Tools     Tools     `toml:"tools"`
	Probe     Probe     `toml:"probe"`
	DVD       DVD       `toml:"dvd"`
	MP4       MP4       `toml:"mp4"`
	AVI       AVI       `toml:"avi"`
	Normalize Normalize `toml:"normalize"`
	Subtitles Subtitles `toml:"subtitles"`
	Behavior  Behavior  `toml:"behavior"`
	Logging   Logging   `toml:"log"`
}

// DefaultConfigPath returns the canonical configuration file location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "discforge", "config.toml"), nil
}

// Load reads configuration from path, or from the default location when path
// is empty. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	resolved := strings.TrimSpace(path)
	if resolved == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		resolved = defaultPath
	} else {
		expanded, err := expandPath(resolved)
		if err != nil {
			return nil, err
		}
		resolved = expanded
	}

	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// Defaults apply.
	default:
		return nil, fmt.Errorf("read config %s: %w", resolved, err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteSample writes the annotated sample configuration to path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists: %s", expanded)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the work, log and history directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir, c.Paths.HistoryDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// OutputDirFor returns the configured default directory for an output type id.
func (c *Config) OutputDirFor(outputID string) string {
	switch outputID {
	case "dvd", "dvd-iso", "dvd-burn":
		return c.Paths.DVDOutputDir
	case "mp4-tablet", "mp4-phone", "mp4-android":
		return c.Paths.MP4OutputDir
	case "avi":
		return c.Paths.AVIOutputDir
	case "subtitle":
		return c.Paths.SubtitleOutputDir
	default:
		return ""
	}
}
