package action

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCleanupActionStripsNULs(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "dirty.srt")
	out := filepath.Join(dir, "clean.srt")
	if err := os.WriteFile(in, []byte("1\n00:00:01,000 --> 00:00:02,000\nhe\x00llo\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := NewCleanupAction("cleanup", nil, in, out)
	if err := a.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if strings.ContainsRune(string(data), 0) {
		t.Fatal("NUL bytes survived cleanup")
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("content mangled: %q", data)
	}
}

func TestCleanupActionMissingInput(t *testing.T) {
	dir := t.TempDir()
	a := NewCleanupAction("cleanup", nil, filepath.Join(dir, "absent.srt"), filepath.Join(dir, "out.srt"))

	completed := false
	success := true
	a.Observe(Observer{Completed: func(ok bool, _ string) {
		completed = true
		success = ok
	}})
	if err := a.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if !completed || success {
		t.Fatal("failure must complete the action with success=false")
	}
}

func TestConvertActionProducesSRT(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "movie.ass")
	out := filepath.Join(dir, "movie.srt")
	script := "[Events]\n" +
		"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n" +
		"Dialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,First line\n" +
		"Dialogue: 0,0:00:03.00,0:00:04.00,Default,,0,0,0,,Second line\n"
	if err := os.WriteFile(in, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}

	a := NewConvertAction("convert", nil, in, out)
	if err := a.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "1\n00:00:01,000 --> 00:00:02,000\nFirst line\n") {
		t.Fatalf("output:\n%q", text)
	}
	if !strings.Contains(text, "2\n00:00:03,000 --> 00:00:04,000\nSecond line\n") {
		t.Fatalf("output:\n%q", text)
	}
}

func TestConvertActionFailsOnEmptyScript(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "empty.ass")
	out := filepath.Join(dir, "empty.srt")
	if err := os.WriteFile(in, []byte("[Script Info]\nTitle: nothing\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := NewConvertAction("convert", nil, in, out)
	if err := a.Run(context.Background()); err == nil {
		t.Fatal("script without dialogue must fail")
	}
}

func TestDeleteActionRemovesPathsAndTolerates(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "intermediate.mpg")
	sub := filepath.Join(dir, "vobs")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	a := NewDeleteAction("delete intermediates", nil, file, sub, filepath.Join(dir, "never-existed"))
	if err := a.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Fatal("file survived")
	}
	if _, err := os.Stat(sub); !os.IsNotExist(err) {
		t.Fatal("directory survived")
	}
}
