package media

import (
	"math"
	"strings"

	"discforge/internal/language"
)

// Epsilon bounds float comparisons on aspect ratios and frame rates.
const Epsilon = 0.001

// StreamType classifies an elementary stream.
type StreamType int

const (
	StreamOther StreamType = iota
	StreamVideo
	StreamAudio
	StreamSubtitle
)

// SubtitleKind distinguishes subtitle encodings, which decide both the
// extraction tool and whether burn-in needs an overlay filter.
type SubtitleKind int

const (
	SubtitleNone SubtitleKind = iota
	SubtitleSubRip
	SubtitleSSA
	SubtitleASS
	SubtitleDVDBitmap
	SubtitleDVBBitmap
	SubtitleTeletext
	SubtitleClosedCaption
	SubtitleOtherKind
)

// Bitmap reports whether the subtitle is a picture overlay rather than text.
func (k SubtitleKind) Bitmap() bool {
	return k == SubtitleDVDBitmap || k == SubtitleDVBBitmap
}

// Text reports whether the subtitle is one of the plain-text formats.
func (k SubtitleKind) Text() bool {
	return k == SubtitleSubRip || k == SubtitleSSA || k == SubtitleASS
}

func (k SubtitleKind) String() string {
	switch k {
	case SubtitleSubRip:
		return "subrip"
	case SubtitleSSA:
		return "ssa"
	case SubtitleASS:
		return "ass"
	case SubtitleDVDBitmap:
		return "dvdsub"
	case SubtitleDVBBitmap:
		return "dvbsub"
	case SubtitleTeletext:
		return "teletext"
	case SubtitleClosedCaption:
		return "closed-caption"
	case SubtitleOtherKind:
		return "other"
	default:
		return "none"
	}
}

// Stream describes one elementary stream of an input.
type Stream struct {
	Type           StreamType
	CodecName      string
	Title          string
	ContainerIndex int // probing tool's stream index, -1 unknown
	PhysicalID     int // PID or stream-id, -1 unknown; merge key across probes

	// Video.
	Width      int
	Height     int
	DAR        float64 // 0 = unknown
	ForcedDAR  float64 // 0 = none
	rotation   int     // normalized to [0, 360)
	FrameRate  float64
	BitRate    int64

	// Audio.
	ChannelCount int
	SamplingRate int
	Original     bool
	Dubbed       bool

	// Subtitle.
	Kind         SubtitleKind
	TeletextPage int // -1 unknown
	CCChannel    int // -1 unknown

	// Shared flags.
	Forced     bool
	Impaired   bool
	Commentary bool

	lang string
}

// NewStream returns a stream with index fields marked unknown.
func NewStream(t StreamType) *Stream {
	return &Stream{
		Type:           t,
		ContainerIndex: -1,
		PhysicalID:     -1,
		TeletextPage:   -1,
		CCChannel:      -1,
	}
}

// SetLanguage stores the normalized language code ("und" and blanks map to empty).
func (s *Stream) SetLanguage(code string) {
	s.lang = language.Normalize(code)
}

// Language returns the normalized language code, empty when undefined.
func (s *Stream) Language() string { return s.lang }

// SetRotation stores degrees normalized into [0, 360).
func (s *Stream) SetRotation(degrees int) {
	normalized := degrees % 360
	if normalized < 0 {
		normalized += 360
	}
	s.rotation = normalized
}

// Rotation returns the normalized rotation in degrees.
func (s *Stream) Rotation() int { return s.rotation }

// EffectiveDAR resolves the display aspect ratio: the forced override wins,
// then probed DAR, then square-pixel width/height.
func (s *Stream) EffectiveDAR() float64 {
	if s.ForcedDAR > Epsilon {
		return s.ForcedDAR
	}
	if s.DAR > Epsilon {
		return s.DAR
	}
	if s.Width > 0 && s.Height > 0 {
		return float64(s.Width) / float64(s.Height)
	}
	return 0
}

// FloatEquals compares two floats within Epsilon.
func FloatEquals(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// NormalizeCodec lower-cases and trims a codec name for comparisons.
func NormalizeCodec(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
