package action

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"discforge/internal/services"
)

// LineParser handles one complete output line from a child process. Parsers
// that recognize a tool-specific progress marker call EmitProgress on the
// action; everything else should fall through to p.LogLine.
type LineParser func(p *ProcessAction, line string)

// ProcessAction runs one external tool to completion, streaming its output
// lines through a pluggable parser.
type ProcessAction struct {
	Base

	// Tool is the binary to execute, Args its argument list. Arguments of
	// the form {name} are substituted from Vars before launch.
	Tool string
	Args []string
	// Env entries are appended to the inherited environment.
	Env []string
	// Vars, when set, provides placeholder substitution for Args.
	Vars *Variables

	// StdinSource, when set, feeds the child's standard input and is run
	// on its own goroutine.
	StdinSource func(w io.Writer) error
	// StdoutSink, when set, switches standard output to binary
	// passthrough instead of line parsing.
	StdoutSink func(r io.Reader) error

	// Parser handles output lines; nil means every line is logged.
	Parser LineParser

	// Finalize, when set, runs after a successful exit and can still fail
	// the action.
	Finalize func(ctx context.Context) error

	mu     sync.Mutex
	cmd    *exec.Cmd
	killed atomic.Bool
}

// NewProcessAction builds a process action with the default line parser.
func NewProcessAction(description string, logger *slog.Logger, tool string, args ...string) *ProcessAction {
	return &ProcessAction{
		Base: NewBase(description, logger),
		Tool: tool,
		Args: args,
	}
}

// Run launches the tool and blocks until it exits and all output has been
// consumed.
func (p *ProcessAction) Run(ctx context.Context) error {
	if err := p.Begin(); err != nil {
		return err
	}

	args := p.Args
	if p.Vars != nil {
		args = p.Vars.Substitute(args)
	}

	cmd := exec.Command(p.Tool, args...)
	if len(p.Env) > 0 {
		cmd.Env = append(os.Environ(), p.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return p.fail(services.Wrap(services.ErrExternalTool, "action", "run",
			fmt.Sprintf("open stdout pipe for %s", p.Tool), err))
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return p.fail(services.Wrap(services.ErrExternalTool, "action", "run",
			fmt.Sprintf("open stderr pipe for %s", p.Tool), err))
	}
	var stdin io.WriteCloser
	if p.StdinSource != nil {
		stdin, err = cmd.StdinPipe()
		if err != nil {
			return p.fail(services.Wrap(services.ErrExternalTool, "action", "run",
				fmt.Sprintf("open stdin pipe for %s", p.Tool), err))
		}
	}

	p.Logger().Debug("starting external tool",
		"tool", p.Tool, "args", fmt.Sprintf("%q", args))
	if err := cmd.Start(); err != nil {
		return p.fail(services.Wrap(services.ErrExternalTool, "action", "run",
			fmt.Sprintf("start %s", p.Tool), err))
	}

	p.mu.Lock()
	p.cmd = cmd
	p.mu.Unlock()
	if p.killed.Load() {
		// An abort raced ahead of the launch; it found no process to
		// kill, so the kill happens here.
		_ = cmd.Process.Kill()
	}

	// ctx cancellation doubles as an abort request.
	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			p.Abort()
		case <-watchDone:
		}
	}()

	var wg sync.WaitGroup
	var sinkErr error
	if p.StdinSource != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer stdin.Close()
			if err := p.StdinSource(stdin); err != nil && !p.killed.Load() {
				p.Logger().Warn("stdin source failed", "tool", p.Tool, "error", err)
			}
		}()
	}
	if p.StdoutSink != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sinkErr = p.StdoutSink(stdout)
		}()
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.consumeLines(stdout)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.consumeLines(stderr)
	}()

	wg.Wait()
	waitErr := cmd.Wait()
	close(watchDone)

	switch {
	case p.killed.Load():
		// Read and write errors observed while we killed the process
		// ourselves are not tool failures; the abort is the outcome.
		return p.fail(services.Wrap(services.ErrExternalTool, "action", "run",
			fmt.Sprintf("%s aborted", p.Tool), nil))
	case waitErr != nil:
		return p.fail(services.Wrap(services.ErrExternalTool, "action", "run",
			fmt.Sprintf("%s failed", p.Tool), waitErr))
	case sinkErr != nil && !p.killed.Load():
		return p.fail(services.Wrap(services.ErrExternalTool, "action", "run",
			fmt.Sprintf("read %s output", p.Tool), sinkErr))
	}

	if p.Finalize != nil {
		if err := p.Finalize(ctx); err != nil {
			return p.fail(err)
		}
	}
	p.Complete(true, fmt.Sprintf("%s exited normally", p.Tool))
	return nil
}

// Abort kills the underlying process; the exit notification still fires and
// completes the action. An abort arriving before the process has started
// still takes effect: the flag stays set and Run kills right after launch.
func (p *ProcessAction) Abort() {
	first := p.killed.CompareAndSwap(false, true)
	p.mu.Lock()
	cmd := p.cmd
	p.mu.Unlock()
	if first && cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

// LogLine is the default treatment of an output line.
func (p *ProcessAction) LogLine(line string) {
	p.Logger().Debug("tool output", "tool", p.Tool, "line", line)
}

func (p *ProcessAction) fail(err error) error {
	p.Complete(false, services.UserMessage(err))
	return err
}

// consumeLines splits a stream into lines on LF or CR (transcoder progress
// updates rewrite the same line with bare carriage returns) and hands each
// complete line to the parser.
func (p *ProcessAction) consumeLines(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(scanLinesCRLF)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if p.Parser != nil {
			p.Parser(p, line)
		} else {
			p.LogLine(line)
		}
	}
}

// scanLinesCRLF terminates lines on \n, \r or \r\n.
func scanLinesCRLF(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance = i + 1
		if data[i] == '\r' && i+1 < len(data) && data[i+1] == '\n' {
			advance++
		} else if data[i] == '\r' && i+1 >= len(data) && !atEOF {
			// Might be the first half of \r\n; wait for more data.
			return 0, nil, nil
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
