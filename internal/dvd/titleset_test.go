package dvd

import (
	"testing"

	"discforge/internal/media"
)

func TestInputSpecSingleVOB(t *testing.T) {
	ts := &TitleSet{VOBPaths: []string{"/dvd/VTS_01_1.VOB"}}
	if got := ts.InputSpec(); got != "/dvd/VTS_01_1.VOB" {
		t.Fatalf("spec = %q", got)
	}
}

func TestInputSpecMultiVOBConcat(t *testing.T) {
	ts := &TitleSet{VOBPaths: []string{"/dvd/VTS_01_1.VOB", "/dvd/VTS_01_2.VOB"}}
	if got := ts.InputSpec(); got != "concat:/dvd/VTS_01_1.VOB|/dvd/VTS_01_2.VOB" {
		t.Fatalf("spec = %q", got)
	}
}

func TestInputSpecEncryptedUsesPipe(t *testing.T) {
	ts := &TitleSet{Encrypted: true, VOBPaths: []string{"/dvd/VTS_01_1.VOB"}}
	if got := ts.InputSpec(); got != media.StdinSpec {
		t.Fatalf("spec = %q", got)
	}
}

func TestPaletteHex(t *testing.T) {
	got := PaletteHex([]uint32{0x112233, 0xFFFFFF, 0x000000})
	if got != "112233,ffffff,000000" {
		t.Fatalf("palette = %q", got)
	}
	if PaletteHex(nil) != "" {
		t.Fatal("empty palette must render empty")
	}
}

func TestApplyTo(t *testing.T) {
	ts := &TitleSet{
		Encrypted:       true,
		DurationSeconds: 5400,
		PaletteRGB:      []uint32{0x101010},
	}
	in := media.NewInput("")
	ts.ApplyTo(in)
	if in.FFmpegInputSpec != media.StdinSpec {
		t.Fatalf("input spec = %q", in.FFmpegInputSpec)
	}
	if in.ContainerFormat != "mpeg" {
		t.Fatalf("container format = %q", in.ContainerFormat)
	}
	if in.DurationSeconds() != 5400 {
		t.Fatalf("duration = %v", in.DurationSeconds())
	}
	if len(in.PaletteRGB) != 1 {
		t.Fatal("palette not applied")
	}
}
