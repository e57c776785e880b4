package media

import "discforge/internal/language"

// SelectionOptions tunes default stream selection.
type SelectionOptions struct {
	// AudienceLanguages lists the viewer's languages in preference order,
	// normalized codes.
	AudienceLanguages []string
	// PreferOriginalAudio applies the original-track heuristics instead of
	// simply taking the first audio stream.
	PreferOriginalAudio bool
}

func (o SelectionOptions) audience(code string) bool {
	for _, lang := range o.AudienceLanguages {
		if language.Same(lang, code) {
			return true
		}
	}
	return false
}

// SelectDefaultStreams recomputes the default video, audio and subtitle
// selections. Track types already chosen explicitly by the user are left
// untouched.
func (in *Input) SelectDefaultStreams(opts SelectionOptions) {
	if !in.videoExplicit {
		in.videoIndex = in.defaultVideo()
	}
	if !in.audioExplicit {
		in.audioIndex = in.defaultAudio(opts)
	}
	if !in.subtitleExplicit {
		in.subtitleIndex = in.defaultSubtitle(opts)
	}

	// A pure-subtitle input must still yield a selection, whatever the
	// audience rules said. Applied last, as a fallback override.
	if !in.HasStreamOfType(StreamVideo) && !in.HasStreamOfType(StreamAudio) && !in.subtitleExplicit {
		in.subtitleIndex = in.fallbackSubtitle(opts)
	}
}

// defaultVideo picks the stream with the largest pixel area, ties broken by
// discovery order; if no stream reports a size, the first video stream.
func (in *Input) defaultVideo() int {
	best := -1
	bestArea := 0
	for i, s := range in.Streams {
		if s.Type != StreamVideo {
			continue
		}
		if best < 0 {
			best = i
		}
		area := s.Width * s.Height
		if area > bestArea {
			bestArea = area
			best = i
		}
	}
	return best
}

func (in *Input) defaultAudio(opts SelectionOptions) int {
	first := -1
	for i, s := range in.Streams {
		if s.Type == StreamAudio {
			first = i
			break
		}
	}
	if first < 0 || !opts.PreferOriginalAudio {
		return first
	}

	// Marked as the original, undubbed track.
	for i, s := range in.Streams {
		if s.Type == StreamAudio && s.Original && !s.Dubbed && !s.Impaired {
			return i
		}
	}
	// A track outside the audience's languages is assumed to be the
	// original, undubbed one.
	for i, s := range in.Streams {
		if s.Type == StreamAudio && !s.Impaired && s.Language() != "" && !opts.audience(s.Language()) {
			return i
		}
	}
	for i, s := range in.Streams {
		if s.Type == StreamAudio && !s.Impaired {
			return i
		}
	}
	return first
}

func (in *Input) defaultSubtitle(opts SelectionOptions) int {
	if len(opts.AudienceLanguages) == 0 {
		return -1
	}

	audioLang := ""
	if audio := in.Stream(in.audioIndex); audio != nil {
		audioLang = audio.Language()
	}

	if audioLang != "" && opts.audience(audioLang) {
		// The viewer understands the audio; only a forced subtitle
		// (foreign dialog fragments) is worth showing.
		for i, s := range in.Streams {
			if s.Type == StreamSubtitle && s.Forced && opts.audience(s.Language()) {
				return i
			}
		}
		return -1
	}

	// Complete subtitle first, impaired-targeted second, anything in the
	// audience languages last.
	for i, s := range in.Streams {
		if s.Type == StreamSubtitle && !s.Forced && !s.Impaired && opts.audience(s.Language()) {
			return i
		}
	}
	for i, s := range in.Streams {
		if s.Type == StreamSubtitle && s.Impaired && opts.audience(s.Language()) {
			return i
		}
	}
	for i, s := range in.Streams {
		if s.Type == StreamSubtitle && opts.audience(s.Language()) {
			return i
		}
	}
	return -1
}

func (in *Input) fallbackSubtitle(opts SelectionOptions) int {
	for i, s := range in.Streams {
		if s.Type == StreamSubtitle && opts.audience(s.Language()) {
			return i
		}
	}
	for i, s := range in.Streams {
		if s.Type == StreamSubtitle {
			return i
		}
	}
	return -1
}
