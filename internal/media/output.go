package media

import (
	"path/filepath"
	"strings"
)

// OutputType enumerates the supported output profiles.
type OutputType int

const (
	OutputDVD OutputType = iota
	OutputDVDISO
	OutputDVDBurn
	OutputMP4Tablet
	OutputMP4Phone
	OutputMP4Android
	OutputAVI
	OutputSubtitle
)

// AllOutputTypes lists every profile in display order.
var AllOutputTypes = []OutputType{
	OutputDVD, OutputDVDISO, OutputDVDBurn,
	OutputMP4Tablet, OutputMP4Phone, OutputMP4Android,
	OutputAVI, OutputSubtitle,
}

// ID returns the stable identifier used in settings keys and directories.
func (t OutputType) ID() string {
	switch t {
	case OutputDVD:
		return "dvd"
	case OutputDVDISO:
		return "dvd-iso"
	case OutputDVDBurn:
		return "dvd-burn"
	case OutputMP4Tablet:
		return "mp4-tablet"
	case OutputMP4Phone:
		return "mp4-phone"
	case OutputMP4Android:
		return "mp4-android"
	case OutputAVI:
		return "avi"
	case OutputSubtitle:
		return "subtitle"
	default:
		return "unknown"
	}
}

// DisplayName returns the human-readable profile name.
func (t OutputType) DisplayName() string {
	switch t {
	case OutputDVD:
		return "DVD file"
	case OutputDVDISO:
		return "DVD ISO image"
	case OutputDVDBurn:
		return "DVD (burned)"
	case OutputMP4Tablet:
		return "MP4 for tablets"
	case OutputMP4Phone:
		return "MP4 for phones"
	case OutputMP4Android:
		return "MP4 for Android"
	case OutputAVI:
		return "AVI"
	case OutputSubtitle:
		return "Subtitle only"
	default:
		return "Unknown"
	}
}

// DefaultExtension returns the file extension for the profile, empty when the
// output is a physical medium rather than a file.
func (t OutputType) DefaultExtension() string {
	switch t {
	case OutputDVD:
		return ".mpg"
	case OutputDVDISO:
		return ".iso"
	case OutputDVDBurn:
		return ""
	case OutputMP4Tablet, OutputMP4Phone, OutputMP4Android:
		return ".mp4"
	case OutputAVI:
		return ".avi"
	case OutputSubtitle:
		return ".srt"
	default:
		return ""
	}
}

// IsDVD reports whether the profile authors DVD-compliant video.
func (t OutputType) IsDVD() bool {
	return t == OutputDVD || t == OutputDVDISO || t == OutputDVDBurn
}

// IsMP4 reports whether the profile targets an MP4 device class.
func (t OutputType) IsMP4() bool {
	return t == OutputMP4Tablet || t == OutputMP4Phone || t == OutputMP4Android
}

// ParseOutputType resolves a profile id, reporting false for unknown ids.
func ParseOutputType(id string) (OutputType, bool) {
	for _, t := range AllOutputTypes {
		if t.ID() == strings.ToLower(strings.TrimSpace(id)) {
			return t, true
		}
	}
	return 0, false
}

// Output describes the requested output artifact.
type Output struct {
	Type OutputType
	Path string
	// ForcedDAR overrides the selected video stream's display aspect
	// ratio; 0 means no override.
	ForcedDAR float64
}

// DefaultFileName derives an output file name from an input base name.
func (o *Output) DefaultFileName(inputPath string) string {
	base := filepath.Base(inputPath)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "output"
	}
	return base + o.Type.DefaultExtension()
}
