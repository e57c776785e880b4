package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"discforge/internal/media"
)

func TestRootCommandListsSubcommands(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--help"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, name := range []string{"transcode", "probe", "deps", "history", "drive", "config"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("help output missing %q", name)
		}
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("sample not written: %v", err)
	}
	if !strings.Contains(string(data), "[paths]") {
		t.Fatalf("sample content unexpected: %q", data[:min(len(data), 200)])
	}

	// A second init without --overwrite must refuse.
	cmd = newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error when config exists")
	}
}

func TestParseAspect(t *testing.T) {
	cases := []struct {
		expr string
		want float64
		ok   bool
	}{
		{"16:9", 16.0 / 9.0, true},
		{"4:3", 4.0 / 3.0, true},
		{" 2.35:1 ", 2.35, true},
		{"wide", 0, false},
		{"16:0", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := parseAspect(tc.expr)
		if tc.ok != (err == nil) {
			t.Errorf("parseAspect(%q) error = %v", tc.expr, err)
			continue
		}
		if tc.ok && !media.FloatEquals(got, tc.want) {
			t.Errorf("parseAspect(%q) = %v, want %v", tc.expr, got, tc.want)
		}
	}
}

func TestProgressPrinterNonTTY(t *testing.T) {
	var out bytes.Buffer
	printer := newProgressPrinter(&out)
	obs := printer.Observer()

	obs.Started("movie.mkv to DVD ISO image")
	obs.Progress("Step 1/2 — encode video (pass 1)", 100, 1000, time.Second, time.Minute)
	obs.Progress("Step 1/2 — encode video (pass 1)", 200, 1000, time.Second, time.Minute)
	obs.Progress("Step 2/2 — create ISO image", 600, 1000, time.Second, time.Minute)
	obs.Completed(true, "job finished")

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	want := []string{
		"movie.mkv to DVD ISO image",
		"Step 1/2 — encode video (pass 1) ...",
		"Step 2/2 — create ISO image ...",
		"done",
	}
	if len(lines) != len(want) {
		t.Fatalf("output = %q", out.String())
	}
	for i, line := range lines {
		if line != want[i] {
			t.Errorf("line %d = %q, want %q", i, line, want[i])
		}
	}
}

func TestProgressPrinterFailureVerdict(t *testing.T) {
	var out bytes.Buffer
	printer := newProgressPrinter(&out)
	printer.Observer().Completed(false, "disc full")
	if got := out.String(); got != "FAILED: disc full\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestRenderTableNumericColumns(t *testing.T) {
	headers := []string{"ID", "Name"}
	rows := [][]string{{"7", "alpha"}, {"12"}}

	plain := renderTable(headers, rows)
	numeric := renderTable(headers, rows, 1)
	if plain == numeric {
		t.Fatal("numeric column must change the alignment")
	}
	if !strings.Contains(numeric, "│  7 │") {
		t.Fatalf("ID not right-aligned:\n%s", numeric)
	}
	// The short second row is padded to the full column count.
	if !strings.Contains(numeric, "│ 12 │") {
		t.Fatalf("padded row missing:\n%s", numeric)
	}

	if renderTable(nil, nil) != "" {
		t.Fatal("headerless table must render nothing")
	}
}

func TestFormatETA(t *testing.T) {
	cases := map[time.Duration]string{
		90 * time.Minute:                "1h30m0s",
		95 * time.Second:                "1m40s",
		12*time.Second + 400*time.Millisecond: "12s",
	}
	for d, want := range cases {
		if got := formatETA(d); got != want {
			t.Errorf("formatETA(%v) = %q, want %q", d, got, want)
		}
	}
}

func TestRenderStreamTable(t *testing.T) {
	in := media.NewInput("/media/movie.mkv")
	v := media.NewStream(media.StreamVideo)
	v.CodecName = "h264"
	v.Width, v.Height = 1920, 1080
	v.FrameRate = 25
	a := media.NewStream(media.StreamAudio)
	a.CodecName = "ac3"
	a.ChannelCount = 6
	a.SetLanguage("en")
	a.Commentary = true
	in.Streams = []*media.Stream{v, a}

	rendered := renderStreamTable(in)
	for _, fragment := range []string{"h264", "1920x1080", "ac3", "6 ch", "en", "commentary"} {
		if !strings.Contains(rendered, fragment) {
			t.Errorf("table missing %q:\n%s", fragment, rendered)
		}
	}
}
