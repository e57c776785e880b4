package media

import "testing"

func TestSpecIsPath(t *testing.T) {
	if !NewInput("/movies/a.vob").SpecIsPath() {
		t.Fatal("file path must be a path spec")
	}
	if NewInput(StdinSpec).SpecIsPath() {
		t.Fatal("stdin marker is not a path")
	}
	if NewInput("concat:/a.vob|/b.vob").SpecIsPath() {
		t.Fatal("concat spec is not a path")
	}
}

func TestDurationPrefersTitleChain(t *testing.T) {
	in := NewInput("/a.vob")
	in.SetProbedDuration(1200)
	in.SetTitleDuration(5400)
	if got := in.DurationSeconds(); got != 5400 {
		t.Fatalf("duration = %v, want title-chain value", got)
	}
}

func TestDurationFallsBackToProbe(t *testing.T) {
	in := NewInput("/a.vob")
	in.SetProbedDuration(1200)
	if got := in.DurationSeconds(); got != 1200 {
		t.Fatalf("duration = %v", got)
	}
}

func TestExternalSubtitleExclusivity(t *testing.T) {
	in := NewInput("/a.mkv")
	sub := NewStream(StreamSubtitle)
	sub.Kind = SubtitleSubRip
	in.Streams = []*Stream{sub}

	in.SetExternalSubtitle("/subs/movie.srt")
	if in.SubtitleIndex() != -1 {
		t.Fatal("external subtitle must clear the stream selection")
	}
	if in.ExternalSubtitle() != "/subs/movie.srt" {
		t.Fatalf("external subtitle = %q", in.ExternalSubtitle())
	}

	in.SelectSubtitle(0)
	if in.ExternalSubtitle() != "" {
		t.Fatal("effective external subtitle must be empty while a stream is selected")
	}
	// The stored name survives; deselecting restores it.
	in.ClearSubtitle()
	if in.ExternalSubtitle() != "/subs/movie.srt" {
		t.Fatalf("external subtitle lost: %q", in.ExternalSubtitle())
	}
}

func TestMergeStreamsByPhysicalID(t *testing.T) {
	in := NewInput("/a.ts")
	existing := NewStream(StreamOther)
	existing.PhysicalID = 0x45
	in.Streams = []*Stream{existing}

	teletext := NewStream(StreamSubtitle)
	teletext.PhysicalID = 0x45
	teletext.Kind = SubtitleTeletext
	teletext.TeletextPage = 777
	teletext.SetLanguage("eng")

	extra := NewStream(StreamSubtitle)
	extra.PhysicalID = 0x46
	extra.Kind = SubtitleClosedCaption
	extra.CCChannel = 1

	in.MergeStreams([]*Stream{teletext, extra})

	if len(in.Streams) != 2 {
		t.Fatalf("stream count = %d", len(in.Streams))
	}
	if in.Streams[0].Type != StreamSubtitle || in.Streams[0].Kind != SubtitleTeletext {
		t.Fatalf("merge did not reclassify: %v %v", in.Streams[0].Type, in.Streams[0].Kind)
	}
	if in.Streams[0].TeletextPage != 777 || in.Streams[0].Language() != "en" {
		t.Fatal("merge dropped secondary fields")
	}
	if in.Streams[1].CCChannel != 1 {
		t.Fatal("unmatched descriptor not appended")
	}
}

func TestTypeIndex(t *testing.T) {
	in := NewInput("/a.mkv")
	in.Streams = []*Stream{
		NewStream(StreamVideo),
		NewStream(StreamAudio),
		NewStream(StreamAudio),
		NewStream(StreamSubtitle),
	}
	if got := in.TypeIndex(2); got != 1 {
		t.Fatalf("TypeIndex(2) = %d", got)
	}
	if got := in.TypeIndex(3); got != 0 {
		t.Fatalf("TypeIndex(3) = %d", got)
	}
	if got := in.TypeIndex(9); got != -1 {
		t.Fatalf("TypeIndex(9) = %d", got)
	}
}

func TestRotationNormalization(t *testing.T) {
	s := NewStream(StreamVideo)
	s.SetRotation(-90)
	if s.Rotation() != 270 {
		t.Fatalf("rotation = %d", s.Rotation())
	}
	s.SetRotation(450)
	if s.Rotation() != 90 {
		t.Fatalf("rotation = %d", s.Rotation())
	}
}

func TestEffectiveDAR(t *testing.T) {
	s := NewStream(StreamVideo)
	s.Width = 720
	s.Height = 576
	if !FloatEquals(s.EffectiveDAR(), 1.25) {
		t.Fatalf("square-pixel DAR = %v", s.EffectiveDAR())
	}
	s.DAR = 16.0 / 9.0
	if !FloatEquals(s.EffectiveDAR(), 16.0/9.0) {
		t.Fatalf("probed DAR = %v", s.EffectiveDAR())
	}
	s.ForcedDAR = 4.0 / 3.0
	if !FloatEquals(s.EffectiveDAR(), 4.0/3.0) {
		t.Fatalf("forced DAR = %v", s.EffectiveDAR())
	}
}
