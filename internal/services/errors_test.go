package services

import (
	"context"
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	err := Wrap(ErrValidation, "job", "start", "no input selected", nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if got := UserMessage(err); got != "job: start: no input selected" {
		t.Fatalf("unexpected user message %q", got)
	}
}

func TestWrapNilMarkerDefaultsTransient(t *testing.T) {
	err := Wrap(nil, "", "", "", errors.New("boom"))
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if got := UserMessage(err); got != "service failure: boom" {
		t.Fatalf("unexpected user message %q", got)
	}
}

func TestIsFatalConfig(t *testing.T) {
	if !IsFatalConfig(Wrap(ErrConfiguration, "config", "load", "bad toml", nil)) {
		t.Fatal("configuration errors are fatal")
	}
	if IsFatalConfig(Wrap(ErrExternalTool, "ffmpeg", "run", "crash", nil)) {
		t.Fatal("tool errors are not config-fatal")
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithAction(WithJobID(context.Background(), "abc"), "encode pass 1")
	if id, ok := JobIDFromContext(ctx); !ok || id != "abc" {
		t.Fatalf("job id round trip failed: %q %v", id, ok)
	}
	if action, ok := ActionFromContext(ctx); !ok || action != "encode pass 1" {
		t.Fatalf("action round trip failed: %q %v", action, ok)
	}
}
