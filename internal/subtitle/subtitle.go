// Package subtitle provides text subtitle format detection, SSA/ASS event
// decoding and SubRip generation. It never touches external processes; the
// pipeline actions stream file contents through it.
package subtitle

import (
	"path/filepath"
	"strings"

	"discforge/internal/media"
)

// KindForPath guesses the subtitle format from a file extension.
func KindForPath(path string) media.SubtitleKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		return media.SubtitleSubRip
	case ".ssa":
		return media.SubtitleSSA
	case ".ass":
		return media.SubtitleASS
	default:
		return media.SubtitleNone
	}
}

// ExtensionForKind returns the conventional file extension, empty for kinds
// without a stand-alone text representation.
func ExtensionForKind(kind media.SubtitleKind) string {
	switch kind {
	case media.SubtitleSubRip:
		return ".srt"
	case media.SubtitleSSA:
		return ".ssa"
	case media.SubtitleASS:
		return ".ass"
	default:
		return ""
	}
}

// StripNUL removes NUL bytes in place and returns the shortened slice.
// Embedded NULs corrupt downstream text-subtitle filters.
func StripNUL(chunk []byte) []byte {
	out := chunk[:0]
	for _, b := range chunk {
		if b != 0 {
			out = append(out, b)
		}
	}
	return out
}
