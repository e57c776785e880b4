package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeBehavior()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.HistoryDir, err = expandPath(c.Paths.HistoryDir); err != nil {
		return fmt.Errorf("paths.history_dir: %w", err)
	}
	for name, field := range map[string]*string{
		"paths.dvd_output_dir":      &c.Paths.DVDOutputDir,
		"paths.mp4_output_dir":      &c.Paths.MP4OutputDir,
		"paths.avi_output_dir":      &c.Paths.AVIOutputDir,
		"paths.subtitle_output_dir": &c.Paths.SubtitleOutputDir,
	} {
		if *field, err = expandPath(*field); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	c.Tools.DVDAuthor = strings.TrimSpace(c.Tools.DVDAuthor)
	c.Tools.Mkisofs = strings.TrimSpace(c.Tools.Mkisofs)
	c.Tools.Growisofs = strings.TrimSpace(c.Tools.Growisofs)
	c.Tools.CCExtractor = strings.TrimSpace(c.Tools.CCExtractor)
}

func (c *Config) normalizeBehavior() {
	languages := make([]string, 0, len(c.Behavior.AudienceLanguages))
	seen := map[string]struct{}{}
	for _, lang := range c.Behavior.AudienceLanguages {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang == "" || lang == "und" {
			continue
		}
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		languages = append(languages, lang)
	}
	c.Behavior.AudienceLanguages = languages

	c.DVD.Standard = strings.ToLower(strings.TrimSpace(c.DVD.Standard))
	c.Normalize.Mode = strings.ToLower(strings.TrimSpace(c.Normalize.Mode))
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Clean(trimmed), nil
}
