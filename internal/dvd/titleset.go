// Package dvd carries the title-set records supplied by the DVD structure
// collaborator. IFO parsing itself happens outside this module; discforge
// only consumes the result to build input specifications and demux
// parameters.
package dvd

import (
	"fmt"
	"strings"

	"discforge/internal/media"
)

// TitleSet describes one DVD title as reported by the structure collaborator.
type TitleSet struct {
	Device    string
	Title     int
	Encrypted bool
	// VOBPaths lists the physical VOB files of the title set in playback
	// order. Empty for encrypted discs read through a demuxing pipe.
	VOBPaths []string
	// DurationSeconds is the authoritative program-chain duration.
	DurationSeconds float64
	// SectorFirst/SectorLast bound the title on the device.
	SectorFirst int64
	SectorLast  int64
	// PaletteRGB holds the 16 subtitle palette entries as 0xRRGGBB.
	PaletteRGB []uint32
}

// InputSpec derives the ffmpeg input specification for the title set.
// Encrypted titles are demuxed by a collaborator and fed through a pipe;
// multi-VOB titles concatenate; single files pass through.
func (ts *TitleSet) InputSpec() string {
	if ts.Encrypted || len(ts.VOBPaths) == 0 {
		return media.StdinSpec
	}
	if len(ts.VOBPaths) == 1 {
		return ts.VOBPaths[0]
	}
	return media.ConcatPrefix + strings.Join(ts.VOBPaths, "|")
}

// PaletteHex renders the palette as comma-joined hex triples in the form the
// bitmap subtitle decoder expects.
func PaletteHex(palette []uint32) string {
	if len(palette) == 0 {
		return ""
	}
	parts := make([]string, 0, len(palette))
	for _, rgb := range palette {
		parts = append(parts, fmt.Sprintf("%06x", rgb&0xffffff))
	}
	return strings.Join(parts, ",")
}

// ApplyTo transfers the title set's facts onto an input descriptor.
func (ts *TitleSet) ApplyTo(in *media.Input) {
	in.FFmpegInputSpec = ts.InputSpec()
	if !in.SpecIsPath() {
		// Piped and concatenated VOB data cannot be sniffed reliably.
		in.ContainerFormat = "mpeg"
	}
	in.SetTitleDuration(ts.DurationSeconds)
	if len(ts.PaletteRGB) > 0 {
		in.PaletteRGB = append([]uint32(nil), ts.PaletteRGB...)
	}
}
