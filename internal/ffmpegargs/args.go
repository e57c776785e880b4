package ffmpegargs

import (
	"fmt"
	"strconv"

	"discforge/internal/dvd"
	"discforge/internal/media"
)

const (
	// Probe duration bounds: below 2s the analysis is useless, above
	// 2147s the microsecond conversion overflows a signed 32-bit value.
	minProbeSeconds = 2
	maxProbeSeconds = 2147

	// referenceProbeBitrate is assumed when sizing the analysis window:
	// at 8 Mbit/s the probe size in megabytes equals the probe duration
	// in seconds.
	referenceProbeBitrate = 8_000_000

	// AudioFilterVariable names the job variable the normalization pass
	// publishes and the encode pass consumes.
	AudioFilterVariable = "audio_filter"

	dvdSampleRate = 48000
)

// ProbeArgs computes the analysis-window hints for a probing run.
// durationSeconds comes from settings; divisor > 1 requests the faster,
// shallower probe run in parallel with the thorough one.
func ProbeArgs(durationSeconds, divisor int) []string {
	if divisor > 1 {
		durationSeconds /= divisor
	}
	if durationSeconds < minProbeSeconds {
		durationSeconds = minProbeSeconds
	}
	if durationSeconds > maxProbeSeconds {
		durationSeconds = maxProbeSeconds
	}
	// The true bitrate is unknown before probing; assume the reference
	// bitrate so both hints share one number.
	micros := int64(durationSeconds) * 1_000_000
	bytes := int64(durationSeconds) * referenceProbeBitrate / 8
	return []string{
		"-analyzeduration", strconv.FormatInt(micros, 10),
		"-probesize", strconv.FormatInt(bytes, 10),
	}
}

// InputArgs assembles the global flags and input specification for a
// transcoder invocation.
func InputArgs(in *media.Input) []string {
	args := []string{
		"-nostdin",
		"-stats",
		"-loglevel", "info",
		"-fflags", "+genpts",
	}
	if len(in.PaletteRGB) > 0 {
		args = append(args, "-palette", dvd.PaletteHex(in.PaletteRGB))
	}
	if !in.SpecIsPath() && in.ContainerFormat != "" {
		args = append(args, "-f", in.ContainerFormat)
	}
	args = append(args, "-i", in.FFmpegInputSpec)
	return args
}

// OutputArgs assembles the trailing output specification.
func OutputArgs(durationSeconds float64, format, path string) []string {
	var args []string
	if durationSeconds > 0 {
		args = append(args, "-t", fmt.Sprintf("%.3f", durationSeconds))
	}
	if format != "" {
		args = append(args, "-f", format)
	}
	args = append(args, "-y", path)
	return args
}

// DVDAudioArgs maps the selected audio stream to DVD-compliant AC-3 stereo.
// The job-variable placeholder is inserted so a normalization pass can splice
// an audio filter in later; when no variable is set the placeholder expands
// to nothing.
func DVDAudioArgs(in *media.Input, bitrateKbps int) []string {
	args := []string{
		"-c:a", "ac3",
		"-ac", "2",
		"-ar", strconv.Itoa(dvdSampleRate),
		"-b:a", fmt.Sprintf("%dk", bitrateKbps),
	}
	if typeIndex := in.TypeIndex(in.AudioIndex()); typeIndex >= 0 {
		args = append(args, "-map", fmt.Sprintf("0:a:%d", typeIndex))
	}
	args = append(args, "{"+AudioFilterVariable+"}")
	return args
}

// MapVideoArgs selects the chosen video stream.
func MapVideoArgs(in *media.Input) []string {
	if typeIndex := in.TypeIndex(in.VideoIndex()); typeIndex >= 0 {
		return []string{"-map", fmt.Sprintf("0:v:%d", typeIndex)}
	}
	return nil
}
