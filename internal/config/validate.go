package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateProbe(); err != nil {
		return err
	}
	if err := c.validateDVD(); err != nil {
		return err
	}
	if err := c.validateMP4(); err != nil {
		return err
	}
	if err := c.validateNormalize(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Tools.FFmpeg == "" {
		return errors.New("tools.ffmpeg must be set")
	}
	if c.Tools.FFprobe == "" {
		return errors.New("tools.ffprobe must be set")
	}
	return nil
}

func (c *Config) validateProbe() error {
	if c.Probe.DurationSeconds <= 0 {
		return errors.New("probe.duration_seconds must be positive")
	}
	if c.Probe.FastDivisor < 1 {
		return errors.New("probe.fast_divisor must be at least 1")
	}
	return nil
}

func (c *Config) validateDVD() error {
	if c.DVD.Standard != "pal" && c.DVD.Standard != "ntsc" {
		return fmt.Errorf("dvd.standard must be pal or ntsc, got %q", c.DVD.Standard)
	}
	if c.DVD.MaxISOMiB <= 0 {
		return errors.New("dvd.max_iso_mib must be positive")
	}
	if c.DVD.OverheadPercent < 0 || c.DVD.OverheadPercent >= 100 {
		return errors.New("dvd.overhead_percent must be in [0, 100)")
	}
	if c.DVD.AudioBitrateKbps <= 0 {
		return errors.New("dvd.audio_bitrate_kbps must be positive")
	}
	if c.DVD.MinVideoKbps <= 0 || c.DVD.MaxVideoKbps < c.DVD.MinVideoKbps {
		return errors.New("dvd video bitrate bounds are inconsistent")
	}
	return nil
}

func (c *Config) validateMP4() error {
	for name, profile := range map[string]ScreenProfile{
		"mp4.tablet":  c.MP4.Tablet,
		"mp4.phone":   c.MP4.Phone,
		"mp4.android": c.MP4.Android,
	} {
		if profile.MaxWidth <= 0 || profile.MaxHeight <= 0 {
			return fmt.Errorf("%s dimensions must be positive", name)
		}
		if profile.BitsPerPixel <= 0 {
			return fmt.Errorf("%s.bits_per_pixel must be positive", name)
		}
	}
	return nil
}

func (c *Config) validateNormalize() error {
	switch c.Normalize.Mode {
	case "compress", "clip", "align-peak":
	default:
		return fmt.Errorf("normalize.mode must be compress, clip or align-peak, got %q", c.Normalize.Mode)
	}
	if c.Normalize.TargetPeakDB <= c.Normalize.TargetMeanDB {
		return errors.New("normalize.target_peak_db must exceed normalize.target_mean_db")
	}
	if c.Normalize.ToleranceDB < 0 {
		return errors.New("normalize.tolerance_db must not be negative")
	}
	return nil
}
