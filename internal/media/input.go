package media

import "strings"

// StdinSpec is the ffmpeg input specification for piped input.
const StdinSpec = "-"

// ConcatPrefix marks a multi-file concatenation input specification.
const ConcatPrefix = "concat:"

// Input aggregates the probed streams of one input together with the
// selection state the scenario builder consumes.
type Input struct {
	Streams []*Stream

	// FFmpegInputSpec is a file path, StdinSpec, or a concat spec.
	FFmpegInputSpec string
	// ContainerFormat overrides format detection when the spec is not a
	// real path (pipes and concat specs cannot be sniffed reliably).
	ContainerFormat string
	// TransportStream records whether the probed container is MPEG-TS.
	TransportStream bool

	// PaletteRGB carries DVD bitmap subtitle palette entries (0xRRGGBB).
	PaletteRGB []uint32

	probedDuration float64
	titleDuration  float64 // authoritative DVD title-chain duration

	videoIndex    int
	audioIndex    int
	subtitleIndex int

	videoExplicit    bool
	audioExplicit    bool
	subtitleExplicit bool

	externalSubtitle string
}

// NewInput returns an Input with no selections.
func NewInput(spec string) *Input {
	return &Input{
		FFmpegInputSpec: spec,
		videoIndex:      -1,
		audioIndex:      -1,
		subtitleIndex:   -1,
	}
}

// SpecIsPath reports whether the input specification is a real file path.
func (in *Input) SpecIsPath() bool {
	return in.FFmpegInputSpec != StdinSpec && !strings.HasPrefix(in.FFmpegInputSpec, ConcatPrefix)
}

// SetProbedDuration stores the duration computed by the probing tool.
func (in *Input) SetProbedDuration(seconds float64) {
	if seconds > 0 {
		in.probedDuration = seconds
	}
}

// SetTitleDuration stores the authoritative DVD title-chain duration. It wins
// over the probed value because probes on piped or encrypted DVD content see
// only a prefix, and VOB timestamp discontinuities make end timestamps lie.
func (in *Input) SetTitleDuration(seconds float64) {
	if seconds > 0 {
		in.titleDuration = seconds
	}
}

// DurationSeconds returns the best known total duration, 0 when unknown.
func (in *Input) DurationSeconds() float64 {
	if in.titleDuration > 0 {
		return in.titleDuration
	}
	return in.probedDuration
}

// VideoIndex returns the selected video stream index, -1 for none.
func (in *Input) VideoIndex() int { return in.videoIndex }

// AudioIndex returns the selected audio stream index, -1 for none.
func (in *Input) AudioIndex() int { return in.audioIndex }

// SubtitleIndex returns the selected subtitle stream index, -1 for none.
func (in *Input) SubtitleIndex() int { return in.subtitleIndex }

// SelectVideo records an explicit video choice that default recomputation
// will not overwrite.
func (in *Input) SelectVideo(index int) {
	in.videoIndex = index
	in.videoExplicit = true
}

// SelectAudio records an explicit audio choice.
func (in *Input) SelectAudio(index int) {
	in.audioIndex = index
	in.audioExplicit = true
}

// SelectSubtitle records an explicit subtitle choice. The external subtitle
// file name is kept, but ExternalSubtitle reports empty while a stream index
// is selected.
func (in *Input) SelectSubtitle(index int) {
	in.subtitleIndex = index
	in.subtitleExplicit = true
}

// ClearSubtitle removes any subtitle stream selection.
func (in *Input) ClearSubtitle() {
	in.subtitleIndex = -1
	in.subtitleExplicit = true
}

// SetExternalSubtitle records a stand-alone subtitle file and clears the
// subtitle stream selection.
func (in *Input) SetExternalSubtitle(path string) {
	in.externalSubtitle = strings.TrimSpace(path)
	if in.externalSubtitle != "" {
		in.subtitleIndex = -1
		in.subtitleExplicit = true
	}
}

// ExternalSubtitle returns the effective external subtitle path: empty
// whenever a subtitle stream index is selected.
func (in *Input) ExternalSubtitle() string {
	if in.subtitleIndex >= 0 {
		return ""
	}
	return in.externalSubtitle
}

// Stream returns the stream at index, nil when out of range.
func (in *Input) Stream(index int) *Stream {
	if index < 0 || index >= len(in.Streams) {
		return nil
	}
	return in.Streams[index]
}

// SelectedVideo returns the selected video stream, nil for none.
func (in *Input) SelectedVideo() *Stream { return in.Stream(in.videoIndex) }

// SelectedAudio returns the selected audio stream, nil for none.
func (in *Input) SelectedAudio() *Stream { return in.Stream(in.audioIndex) }

// SelectedSubtitle returns the selected subtitle stream, nil for none.
func (in *Input) SelectedSubtitle() *Stream { return in.Stream(in.subtitleIndex) }

// HasStreamOfType reports whether any stream of the given type exists.
func (in *Input) HasStreamOfType(t StreamType) bool {
	for _, s := range in.Streams {
		if s.Type == t {
			return true
		}
	}
	return false
}

// TypeIndex converts an absolute stream index into the 0-based index among
// streams of the same type, as ffmpeg stream selectors count them. Returns
// -1 when the index does not name a stream.
func (in *Input) TypeIndex(index int) int {
	target := in.Stream(index)
	if target == nil {
		return -1
	}
	position := 0
	for i, s := range in.Streams {
		if i == index {
			return position
		}
		if s.Type == target.Type {
			position++
		}
	}
	return -1
}

// MergeStreams folds descriptors from a secondary search pass into the
// stream list. PhysicalID equality is the merge key; unmatched descriptors
// are appended in discovery order.
func (in *Input) MergeStreams(found []*Stream) {
	for _, candidate := range found {
		merged := false
		if candidate.PhysicalID >= 0 {
			for _, existing := range in.Streams {
				if existing.PhysicalID != candidate.PhysicalID {
					continue
				}
				mergeStream(existing, candidate)
				merged = true
				break
			}
		}
		if !merged {
			in.Streams = append(in.Streams, candidate)
		}
	}
}

func mergeStream(dst, src *Stream) {
	if dst.CodecName == "" {
		dst.CodecName = src.CodecName
	}
	if dst.Language() == "" {
		dst.SetLanguage(src.Language())
	}
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.Type == StreamSubtitle || src.Type == StreamSubtitle {
		dst.Type = StreamSubtitle
		if dst.Kind == SubtitleNone {
			dst.Kind = src.Kind
		}
		if dst.TeletextPage < 0 {
			dst.TeletextPage = src.TeletextPage
		}
		if dst.CCChannel < 0 {
			dst.CCChannel = src.CCChannel
		}
	}
	dst.Forced = dst.Forced || src.Forced
	dst.Impaired = dst.Impaired || src.Impaired
}
