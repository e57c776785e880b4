package ffmpegargs

import (
	"reflect"
	"testing"

	"discforge/internal/media"
)

func TestPlanResizeExactFit(t *testing.T) {
	// 16:9 square-pixel source onto the PAL 16:9 anamorphic raster fills it.
	p := PlanResize(Size{1920, 1080}, 0, Size{720, 576}, 16.0/9.0)
	if p.Scaled != (Size{720, 576}) {
		t.Fatalf("scaled = %+v", p.Scaled)
	}
	if p.NeedsPad() {
		t.Fatal("exact fit must not pad")
	}
	if p.Filter() != "scale=720:576" {
		t.Fatalf("filter = %q", p.Filter())
	}
}

func TestPlanResizeLetterbox(t *testing.T) {
	// A 2.35:1 scope source on a 16:9 raster needs bars top and bottom.
	p := PlanResize(Size{1920, 816}, 0, Size{720, 576}, 16.0/9.0)
	if p.Scaled.Width != 720 {
		t.Fatalf("scaled = %+v", p.Scaled)
	}
	if p.Scaled.Height >= 576 {
		t.Fatalf("expected letterbox, scaled = %+v", p.Scaled)
	}
	if !p.NeedsPad() {
		t.Fatal("letterbox must pad")
	}
	if p.PadX != 0 || p.PadY <= 0 {
		t.Fatalf("pad offsets = %d,%d", p.PadX, p.PadY)
	}
}

func TestPlanResizePillarbox(t *testing.T) {
	// A 4:3 source on a 16:9 raster needs bars left and right.
	p := PlanResize(Size{640, 480}, 0, Size{720, 576}, 16.0/9.0)
	if p.Scaled.Height != 576 {
		t.Fatalf("scaled = %+v", p.Scaled)
	}
	if p.Scaled.Width >= 720 {
		t.Fatalf("expected pillarbox, scaled = %+v", p.Scaled)
	}
	if p.PadY != 0 || p.PadX <= 0 {
		t.Fatalf("pad offsets = %d,%d", p.PadX, p.PadY)
	}
}

func TestPlanResizeInvariants(t *testing.T) {
	inputs := []struct {
		in     Size
		inDAR  float64
		out    Size
		outDAR float64
	}{
		{Size{1919, 1079}, 0, Size{720, 576}, 16.0 / 9.0},
		{Size{720, 576}, 4.0 / 3.0, Size{720, 480}, 16.0 / 9.0},
		{Size{100, 700}, 0, Size{720, 576}, 4.0 / 3.0},
		{Size{3840, 2160}, 2.35, Size{854, 480}, 0},
		{Size{17, 13}, 0, Size{720, 576}, 0},
	}
	for _, tc := range inputs {
		p := PlanResize(tc.in, tc.inDAR, tc.out, tc.outDAR)
		if p.Scaled.Width%2 != 0 || p.Scaled.Height%2 != 0 {
			t.Errorf("%+v: odd scaled size %+v", tc, p.Scaled)
		}
		if p.PadX%2 != 0 || p.PadY%2 != 0 {
			t.Errorf("%+v: odd pad offsets %d,%d", tc, p.PadX, p.PadY)
		}
		if p.Scaled.Width > tc.out.Width || p.Scaled.Height > tc.out.Height {
			t.Errorf("%+v: scaled %+v exceeds target", tc, p.Scaled)
		}
	}
}

func TestPlanBounded(t *testing.T) {
	p := PlanBounded(Size{1920, 1080}, 0, Size{720, 576})
	if p.Scaled != (Size{720, 404}) {
		t.Fatalf("scaled = %+v", p.Scaled)
	}
	if p.Filter() != "scale=720:404" {
		t.Fatalf("filter = %q", p.Filter())
	}
	want := []string{"-aspect", "720:404"}
	if !reflect.DeepEqual(p.AspectArgs(), want) {
		t.Fatalf("aspect = %v", p.AspectArgs())
	}
}

func TestPlanBoundedAnamorphicSource(t *testing.T) {
	// PAL 4:3 anamorphic source squeezed back to square pixels.
	p := PlanBounded(Size{720, 576}, 4.0/3.0, Size{720, 576})
	if p.Scaled != (Size{720, 540}) {
		t.Fatalf("scaled = %+v", p.Scaled)
	}
	if got := float64(p.Scaled.Width) / float64(p.Scaled.Height); got > 4.0/3.0+media.Epsilon {
		t.Fatalf("aspect overshoots: %v", got)
	}
}

func TestPlanRotation(t *testing.T) {
	s := media.NewStream(media.StreamVideo)

	if r := PlanRotation(s, true); r.Filter != "" || r.SwapDimensions {
		t.Fatalf("no rotation expected, got %+v", r)
	}

	s.SetRotation(90)
	r := PlanRotation(s, true)
	if r.Filter != "transpose=1" || !r.SwapDimensions {
		t.Fatalf("90° = %+v", r)
	}
	if len(r.MetadataArgs) == 0 {
		t.Fatal("rotation must strip the metadata tag")
	}

	s.SetRotation(270)
	if r := PlanRotation(s, true); r.Filter != "transpose=2" || !r.SwapDimensions {
		t.Fatalf("270° = %+v", r)
	}

	s.SetRotation(180)
	if r := PlanRotation(s, true); r.Filter != "rotate=PI" || r.SwapDimensions {
		t.Fatalf("180° = %+v", r)
	}

	s.SetRotation(45)
	if r := PlanRotation(s, true); r.Filter != "rotate=45*PI/180" || r.SwapDimensions {
		t.Fatalf("45° = %+v", r)
	}

	if r := PlanRotation(s, false); r.Filter != "" {
		t.Fatalf("auto-rotate off must do nothing, got %+v", r)
	}
}

func TestTextSubtitleFilter(t *testing.T) {
	got, err := TextSubtitleFilter("/tmp/movie.srt", media.SubtitleSubRip, Size{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "subtitles=filename='/tmp/movie.srt'" {
		t.Fatalf("filter = %q", got)
	}

	got, err = TextSubtitleFilter("/tmp/movie.srt", media.SubtitleSubRip, Size{720, 576})
	if err != nil {
		t.Fatal(err)
	}
	if got != "subtitles=filename='/tmp/movie.srt':original_size=720x576" {
		t.Fatalf("filter = %q", got)
	}

	got, err = TextSubtitleFilter("/tmp/it's.ass", media.SubtitleASS, Size{})
	if err != nil {
		t.Fatal(err)
	}
	if got != `ass=filename='/tmp/it'\''s.ass'` {
		t.Fatalf("filter = %q", got)
	}

	if _, err := TextSubtitleFilter("/tmp/x.sub", media.SubtitleDVDBitmap, Size{}); err == nil {
		t.Fatal("bitmap kinds must be rejected")
	}
}

func TestGraphPlainChain(t *testing.T) {
	var g Graph
	if g.Args() != nil {
		t.Fatal("empty graph must render nothing")
	}
	g.AppendVideo("scale=720:576")
	g.AppendVideo("")
	g.AppendVideo("pad=720:576:0:0")
	want := []string{"-vf", "scale=720:576,pad=720:576:0:0"}
	if !reflect.DeepEqual(g.Args(), want) {
		t.Fatalf("args = %v", g.Args())
	}
}

func TestGraphOverlayOnly(t *testing.T) {
	var g Graph
	g.BurnBitmapSubtitle(0, Size{})
	want := []string{"-filter_complex", "[0:v][0:s:0]overlay[vout]", "-map", "[vout]"}
	if !reflect.DeepEqual(g.Args(), want) {
		t.Fatalf("args = %v", g.Args())
	}
}

func TestGraphOverlayConsumesSelectedStream(t *testing.T) {
	var g Graph
	g.SetVideoSource(2)
	g.BurnBitmapSubtitle(0, Size{})
	want := []string{"-filter_complex", "[0:v:2][0:s:0]overlay[vout]", "-map", "[vout]"}
	if !reflect.DeepEqual(g.Args(), want) {
		t.Fatalf("args = %v", g.Args())
	}

	g.AppendVideo("scale=720:576")
	want = []string{
		"-filter_complex",
		"[0:v:2]scale=720:576[vmain];[vmain][0:s:0]overlay[vout]",
		"-map", "[vout]",
	}
	if !reflect.DeepEqual(g.Args(), want) {
		t.Fatalf("args = %v", g.Args())
	}
}

func TestGraphOverlayWithFiltersAndScale(t *testing.T) {
	var g Graph
	g.AppendVideo("scale=720:576")
	g.BurnBitmapSubtitle(1, Size{720, 576})
	want := []string{
		"-filter_complex",
		"[0:v]scale=720:576[vmain];[0:s:1]scale=720:576[sub];[vmain][sub]overlay[vout]",
		"-map", "[vout]",
	}
	if !reflect.DeepEqual(g.Args(), want) {
		t.Fatalf("args = %v", g.Args())
	}
}
