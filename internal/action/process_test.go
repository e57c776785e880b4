package action

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func TestProcessActionSuccess(t *testing.T) {
	var lines []string
	p := NewProcessAction("echo", nil, "sh", "-c", "echo one; echo two 1>&2")
	p.Parser = func(_ *ProcessAction, line string) {
		lines = append(lines, line)
	}

	success := false
	p.Observe(Observer{Completed: func(ok bool, _ string) { success = ok }})
	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !success {
		t.Fatal("completion must report success")
	}
	joined := strings.Join(lines, "|")
	if !strings.Contains(joined, "one") || !strings.Contains(joined, "two") {
		t.Fatalf("lines = %v", lines)
	}
}

func TestProcessActionNonZeroExit(t *testing.T) {
	p := NewProcessAction("fail", nil, "sh", "-c", "exit 3")
	success := true
	p.Observe(Observer{Completed: func(ok bool, _ string) { success = ok }})
	if err := p.Run(context.Background()); err == nil {
		t.Fatal("expected failure")
	}
	if success {
		t.Fatal("completion must report failure")
	}
}

func TestProcessActionStartFailure(t *testing.T) {
	p := NewProcessAction("missing", nil, "/nonexistent/tool-binary")
	if err := p.Run(context.Background()); err == nil {
		t.Fatal("expected start failure")
	}
}

func TestProcessActionVariableSubstitution(t *testing.T) {
	vars := NewVariables()
	vars.Set("extra", "expanded", "tokens")

	var lines []string
	p := NewProcessAction("echo", nil, "echo", "before", "{extra}", "{unset}", "after")
	p.Vars = vars
	p.Parser = func(_ *ProcessAction, line string) { lines = append(lines, line) }
	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0] != "before expanded tokens after" {
		t.Fatalf("lines = %v", lines)
	}
}

func TestProcessActionStdinAndBinaryStdout(t *testing.T) {
	p := NewProcessAction("cat", nil, "cat")
	p.StdinSource = func(w io.Writer) error {
		_, err := io.WriteString(w, "payload")
		return err
	}
	var captured string
	p.StdoutSink = func(r io.Reader) error {
		data, err := io.ReadAll(r)
		captured = string(data)
		return err
	}
	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if captured != "payload" {
		t.Fatalf("captured = %q", captured)
	}
}

func TestProcessActionAbort(t *testing.T) {
	p := NewProcessAction("sleep", nil, "sleep", "30")
	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	// Wait for the child to start, then kill it.
	for i := 0; i < 100; i++ {
		p.mu.Lock()
		started := p.cmd != nil
		p.mu.Unlock()
		if started {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	p.Abort()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("aborted run must fail")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("abort did not terminate the process")
	}
}

func TestProcessActionAbortBeforeStart(t *testing.T) {
	p := NewProcessAction("sleep", nil, "sleep", "30")
	p.Abort()

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("aborted run must fail")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("pre-start abort did not stop the process")
	}
}

func TestScanLinesCRLF(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a\nb\n", []string{"a", "b"}},
		{"a\r\nb\r\n", []string{"a", "b"}},
		{"frame=  10\rframe=  20\rdone\n", []string{"frame=  10", "frame=  20", "done"}},
		{"tail-without-newline", []string{"tail-without-newline"}},
	}
	for _, tc := range cases {
		var got []string
		data := []byte(tc.in)
		for len(data) > 0 {
			advance, token, err := scanLinesCRLF(data, true)
			if err != nil {
				t.Fatal(err)
			}
			if advance == 0 {
				break
			}
			if len(token) > 0 {
				got = append(got, string(token))
			}
			data = data[advance:]
		}
		if strings.Join(got, "|") != strings.Join(tc.want, "|") {
			t.Errorf("%q: lines = %v, want %v", tc.in, got, tc.want)
		}
	}
}
