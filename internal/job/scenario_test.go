package job

import (
	"strings"
	"testing"

	"discforge/internal/action"
	"discforge/internal/config"
	"discforge/internal/media"
)

func testConfig() *config.Config {
	cfg := config.Default()
	return &cfg
}

func newTestJob(t *testing.T, cfg *config.Config, in *media.Input, out *media.Output) *Job {
	t.Helper()
	j := New(cfg, nil)
	j.SetInput(in)
	j.SetOutput(out)
	j.tempDir = t.TempDir()
	return j
}

func videoAudioInput(spec string) *media.Input {
	in := media.NewInput(spec)
	v := media.NewStream(media.StreamVideo)
	v.CodecName = "h264"
	v.Width, v.Height = 1920, 1080
	v.FrameRate = 25
	a := media.NewStream(media.StreamAudio)
	a.CodecName = "aac"
	in.Streams = []*media.Stream{v, a}
	in.SelectVideo(0)
	in.SelectAudio(1)
	in.SetProbedDuration(5400)
	return in
}

func descriptions(j *Job, t *testing.T) []string {
	t.Helper()
	actions, err := j.buildScenario()
	if err != nil {
		t.Fatal(err)
	}
	prefixSteps(actions)
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Description()
	}
	return out
}

func TestScenarioTabletMP4SingleAction(t *testing.T) {
	j := newTestJob(t, testConfig(),
		videoAudioInput("/media/movie.mp4"),
		&media.Output{Type: media.OutputMP4Tablet, Path: "/out/movie.mp4"})

	got := descriptions(j, t)
	if len(got) != 1 {
		t.Fatalf("actions = %v", got)
	}
	if strings.HasPrefix(got[0], "Step ") {
		t.Fatalf("single action must not get a step prefix: %q", got[0])
	}
}

func TestScenarioDVDWithASSSubtitle(t *testing.T) {
	cfg := testConfig()
	cfg.Subtitles.Cleanup = true
	cfg.Subtitles.DowngradeSSA = true

	in := videoAudioInput("/media/movie.mkv")
	sub := media.NewStream(media.StreamSubtitle)
	sub.Kind = media.SubtitleASS
	sub.SetLanguage("en")
	in.Streams = append(in.Streams, sub)
	in.SelectSubtitle(2)

	j := newTestJob(t, cfg, in, &media.Output{Type: media.OutputDVD, Path: "/out/movie.mpg"})
	got := descriptions(j, t)

	want := []string{
		"extract subtitle stream",
		"convert subtitles to SubRip",
		"clean up subtitles",
		"encode video (pass 1)",
		"encode video (pass 2)",
		"extract audio",
		"remux audio and video",
	}
	if len(got) != len(want) {
		t.Fatalf("actions = %v", got)
	}
	for i, description := range got {
		prefix := "Step " + string(rune('1'+i)) + "/7 — "
		if description != prefix+want[i] {
			t.Errorf("action %d = %q, want %q", i, description, prefix+want[i])
		}
	}
}

func TestScenarioCompliantInputRemuxesOnly(t *testing.T) {
	in := media.NewInput("-")
	in.ContainerFormat = "mpeg"
	v := media.NewStream(media.StreamVideo)
	v.CodecName = "mpeg2video"
	v.Width, v.Height = 720, 576
	v.FrameRate = 25
	v.DAR = 16.0 / 9.0
	a := media.NewStream(media.StreamAudio)
	a.CodecName = "ac3"
	in.Streams = []*media.Stream{v, a}
	in.SelectVideo(0)
	in.SelectAudio(1)
	in.SetTitleDuration(5400)

	j := newTestJob(t, testConfig(), in, &media.Output{Type: media.OutputDVD, Path: "/out/movie.mpg"})
	got := descriptions(j, t)
	if len(got) != 1 || got[0] != "remux audio and video" {
		t.Fatalf("actions = %v", got)
	}
}

func TestScenarioForceRetranscodeDefeatsComplianceCheck(t *testing.T) {
	cfg := testConfig()
	cfg.DVD.ForceRetranscode = true

	in := media.NewInput("/media/movie.mpg")
	v := media.NewStream(media.StreamVideo)
	v.CodecName = "mpeg2video"
	v.Width, v.Height = 720, 576
	v.FrameRate = 25
	v.DAR = 16.0 / 9.0
	a := media.NewStream(media.StreamAudio)
	a.CodecName = "ac3"
	in.Streams = []*media.Stream{v, a}
	in.SelectVideo(0)
	in.SelectAudio(1)
	in.SetProbedDuration(5400)

	j := newTestJob(t, cfg, in, &media.Output{Type: media.OutputDVD, Path: "/out/movie.mpg"})
	got := descriptions(j, t)
	if len(got) < 4 {
		t.Fatalf("forced retranscode must run the full encode, got %v", got)
	}
}

func TestScenarioISOBurnShortcut(t *testing.T) {
	in := media.NewInput("/media/movie.iso")
	j := newTestJob(t, testConfig(), in, &media.Output{Type: media.OutputDVDBurn})

	got := descriptions(j, t)
	if len(got) != 1 || got[0] != "burn disc" {
		t.Fatalf("actions = %v", got)
	}
}

func TestScenarioDVDISOOrdersDeleteBeforeImage(t *testing.T) {
	j := newTestJob(t, testConfig(),
		videoAudioInput("/media/movie.mkv"),
		&media.Output{Type: media.OutputDVDISO, Path: "/out/movie.iso"})

	actions, err := j.buildScenario()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, a := range actions {
		names = append(names, a.Description())
	}
	deleteIdx, isoIdx, authorIdx := -1, -1, -1
	for i, name := range names {
		switch name {
		case "delete intermediate files":
			deleteIdx = i
		case "create ISO image":
			isoIdx = i
		case "author DVD structure":
			authorIdx = i
		}
	}
	if authorIdx < 0 || deleteIdx < 0 || isoIdx < 0 {
		t.Fatalf("scenario incomplete: %v", names)
	}
	if !(authorIdx < deleteIdx && deleteIdx < isoIdx) {
		t.Fatalf("delete must sit between authoring and image creation: %v", names)
	}
}

func TestScenarioBurnAppendsBurnPass(t *testing.T) {
	j := newTestJob(t, testConfig(),
		videoAudioInput("/media/movie.mkv"),
		&media.Output{Type: media.OutputDVDBurn})

	actions, err := j.buildScenario()
	if err != nil {
		t.Fatal(err)
	}
	if actions[len(actions)-1].Description() != "burn disc" {
		t.Fatalf("last action = %q", actions[len(actions)-1].Description())
	}
}

func TestScenarioNormalizationInsertsDetectionPass(t *testing.T) {
	cfg := testConfig()
	cfg.Normalize.Enabled = true

	j := newTestJob(t, cfg,
		videoAudioInput("/media/movie.mp4"),
		&media.Output{Type: media.OutputMP4Tablet, Path: "/out/movie.mp4"})

	actions, err := j.buildScenario()
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 2 {
		t.Fatalf("actions = %d", len(actions))
	}
	if actions[0].Description() != "measure audio levels" {
		t.Fatalf("first action = %q", actions[0].Description())
	}
}

func TestScenarioRejectsUnsupportedExternalSubtitle(t *testing.T) {
	in := videoAudioInput("/media/movie.mp4")
	in.SetExternalSubtitle("/subs/movie.sub")

	j := newTestJob(t, testConfig(), in, &media.Output{Type: media.OutputMP4Tablet, Path: "/out/m.mp4"})
	if _, err := j.buildScenario(); err == nil {
		t.Fatal("unsupported subtitle format accepted")
	}
}

func TestScenarioSubtitleOnlyRequiresSelection(t *testing.T) {
	j := newTestJob(t, testConfig(),
		videoAudioInput("/media/movie.mp4"),
		&media.Output{Type: media.OutputSubtitle, Path: "/out/movie.srt"})
	if _, err := j.buildScenario(); err == nil {
		t.Fatal("subtitle-only without a subtitle accepted")
	}
}

func TestScenarioSubtitleOnlyFromASSStream(t *testing.T) {
	in := videoAudioInput("/media/movie.mkv")
	sub := media.NewStream(media.StreamSubtitle)
	sub.Kind = media.SubtitleASS
	in.Streams = append(in.Streams, sub)
	in.SelectSubtitle(2)

	j := newTestJob(t, testConfig(), in, &media.Output{Type: media.OutputSubtitle, Path: "/out/movie.srt"})
	got := descriptions(j, t)
	if len(got) != 2 {
		t.Fatalf("actions = %v", got)
	}
	if !strings.Contains(got[0], "extract subtitle stream") ||
		!strings.Contains(got[1], "convert subtitles to SubRip") {
		t.Fatalf("actions = %v", got)
	}
}

func TestScenarioBitmapSubtitleSkipsExtraction(t *testing.T) {
	in := videoAudioInput("/media/movie.ts")
	sub := media.NewStream(media.StreamSubtitle)
	sub.Kind = media.SubtitleDVDBitmap
	in.Streams = append(in.Streams, sub)
	in.SelectSubtitle(2)

	j := newTestJob(t, testConfig(), in, &media.Output{Type: media.OutputMP4Tablet, Path: "/out/m.mp4"})
	actions, err := j.buildScenario()
	if err != nil {
		t.Fatal(err)
	}
	// The bitmap stream is overlaid by the encode pass itself; no
	// extraction step appears.
	if len(actions) != 1 {
		var names []string
		for _, a := range actions {
			names = append(names, a.Description())
		}
		t.Fatalf("actions = %v", names)
	}
}

func TestScenarioBitmapBurnInMapsSingleVideoStream(t *testing.T) {
	in := videoAudioInput("/media/movie.ts")
	sub := media.NewStream(media.StreamSubtitle)
	sub.Kind = media.SubtitleDVDBitmap
	in.Streams = append(in.Streams, sub)
	in.SelectSubtitle(2)

	j := newTestJob(t, testConfig(), in, &media.Output{Type: media.OutputMP4Tablet, Path: "/out/m.mp4"})
	actions, err := j.buildScenario()
	if err != nil {
		t.Fatal(err)
	}
	encode, ok := actions[0].(*action.ProcessAction)
	if !ok {
		t.Fatalf("encode action is %T", actions[0])
	}

	// The overlay graph's -map [vout] is the one and only video selection.
	// A second -map 0:v:N would make the muxer emit the raw stream too.
	videoMaps := 0
	graphExpr := ""
	for i, arg := range encode.Args {
		if arg == "-map" && i+1 < len(encode.Args) {
			if next := encode.Args[i+1]; next == "[vout]" || strings.HasPrefix(next, "0:v") {
				videoMaps++
			}
		}
		if arg == "-filter_complex" && i+1 < len(encode.Args) {
			graphExpr = encode.Args[i+1]
		}
	}
	if videoMaps != 1 {
		t.Fatalf("encode maps %d video streams, want 1; args = %q", videoMaps, encode.Args)
	}
	if !strings.Contains(graphExpr, "[0:v:0]") {
		t.Fatalf("overlay must consume the selected video stream: %q", graphExpr)
	}
	if !strings.Contains(graphExpr, "overlay[vout]") {
		t.Fatalf("graph must end in the overlaid branch: %q", graphExpr)
	}
}
