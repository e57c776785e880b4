// Package probe turns the probing tool's flat tag map into stream
// descriptors and runs the tool itself, optionally racing a shallow fast
// probe against the thorough one on slow media.
package probe

import (
	"strconv"
	"strings"

	"discforge/internal/media"
)

// Result is the decoded outcome of one probing run.
type Result struct {
	Streams         []*media.Stream
	DurationSeconds float64
	FormatName      string
	TransportStream bool
}

// Decode interprets a flat tag map.
func Decode(tags *media.TagMap) *Result {
	r := &Result{
		DurationSeconds: tags.Float("format.duration", 0),
		FormatName:      tags.Str("format.format_name"),
	}
	r.TransportStream = containsFormat(r.FormatName, "mpegts")

	count := tags.StreamCount()
	for i := 0; i < count; i++ {
		r.Streams = append(r.Streams, decodeStream(tags, i))
	}
	return r
}

func decodeStream(tags *media.TagMap, index int) *media.Stream {
	s := media.NewStream(streamType(tags.StreamStr(index, "codec_type")))
	s.ContainerIndex = tags.StreamInt(index, "index", index)
	s.CodecName = tags.StreamStr(index, "codec_name")
	s.PhysicalID = parsePhysicalID(tags.StreamStr(index, "id"))
	s.Title = tags.StreamStr(index, "tags.title")
	s.SetLanguage(tags.StreamStr(index, "tags.language"))

	s.Forced = tags.StreamInt(index, "disposition.forced", 0) != 0
	s.Impaired = tags.StreamInt(index, "disposition.hearing_impaired", 0) != 0 ||
		tags.StreamInt(index, "disposition.visual_impaired", 0) != 0
	s.Commentary = tags.StreamInt(index, "disposition.comment", 0) != 0

	switch s.Type {
	case media.StreamVideo:
		s.Width = tags.StreamInt(index, "width", 0)
		s.Height = tags.StreamInt(index, "height", 0)
		s.DAR = parseAspect(tags.StreamStr(index, "display_aspect_ratio"))
		s.FrameRate = parseRational(tags.StreamStr(index, "r_frame_rate"))
		s.BitRate = int64(tags.StreamInt(index, "bit_rate", 0))
		s.SetRotation(tags.StreamInt(index, "tags.rotate", 0))
	case media.StreamAudio:
		s.ChannelCount = tags.StreamInt(index, "channels", 0)
		s.SamplingRate = tags.StreamInt(index, "sample_rate", 0)
		s.BitRate = int64(tags.StreamInt(index, "bit_rate", 0))
		s.Original = tags.StreamInt(index, "disposition.original", 0) != 0
		s.Dubbed = tags.StreamInt(index, "disposition.dub", 0) != 0
	case media.StreamSubtitle:
		s.Kind = subtitleKind(s.CodecName)
	}
	return s
}

func streamType(codecType string) media.StreamType {
	switch codecType {
	case "video":
		return media.StreamVideo
	case "audio":
		return media.StreamAudio
	case "subtitle":
		return media.StreamSubtitle
	default:
		return media.StreamOther
	}
}

func subtitleKind(codecName string) media.SubtitleKind {
	switch codecName {
	case "subrip", "srt":
		return media.SubtitleSubRip
	case "ssa":
		return media.SubtitleSSA
	case "ass":
		return media.SubtitleASS
	case "dvd_subtitle", "dvdsub":
		return media.SubtitleDVDBitmap
	case "dvb_subtitle", "dvbsub":
		return media.SubtitleDVBBitmap
	case "dvb_teletext":
		return media.SubtitleTeletext
	case "eia_608", "cc_dec":
		return media.SubtitleClosedCaption
	default:
		return media.SubtitleOtherKind
	}
}

// parsePhysicalID decodes the container-level stream id, usually a hex
// value like "0x1e0". Returns -1 when unknown.
func parsePhysicalID(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return -1
	}
	parsed, err := strconv.ParseInt(raw, 0, 64)
	if err != nil || parsed < 0 {
		return -1
	}
	return int(parsed)
}

// parseAspect decodes "16:9" style ratios, 0 when unknown.
func parseAspect(raw string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return 0
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil || n <= 0 {
		return 0
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d <= 0 {
		return 0
	}
	return n / d
}

// parseRational decodes "30000/1001" style rates, also accepting plain
// decimals. 0 when unknown.
func parseRational(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if num, den, ok := strings.Cut(raw, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil || d == 0 {
			return 0
		}
		return n / d
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func containsFormat(formatName, want string) bool {
	for _, name := range strings.Split(formatName, ",") {
		if strings.TrimSpace(name) == want {
			return true
		}
	}
	return false
}

// Apply merges the result into an input descriptor: streams are correlated
// by physical id, the probed duration recorded, and the transport-stream
// flag set from the container format.
func (r *Result) Apply(in *media.Input) {
	in.MergeStreams(r.Streams)
	in.SetProbedDuration(r.DurationSeconds)
	in.TransportStream = r.TransportStream
}
