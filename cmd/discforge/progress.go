package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"discforge/internal/action"
)

// progressPrinter renders job progress. On a terminal the current line
// redraws in place; otherwise one line per action keeps logs readable.
type progressPrinter struct {
	out      io.Writer
	tty      bool
	lastLen  int
	lastDesc string
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &progressPrinter{out: out, tty: tty}
}

// Observer returns the callbacks to register on a job.
func (p *progressPrinter) Observer() action.Observer {
	return action.Observer{
		Started:   p.started,
		Progress:  p.progress,
		Completed: p.completed,
	}
}

func (p *progressPrinter) started(description string) {
	fmt.Fprintf(p.out, "%s\n", description)
}

func (p *progressPrinter) progress(description string, current, maximum int64, elapsed, remaining time.Duration) {
	if !p.tty {
		// One line per action transition.
		if description != p.lastDesc {
			p.lastDesc = description
			fmt.Fprintf(p.out, "%s ...\n", description)
		}
		return
	}
	if maximum <= 0 {
		return
	}
	line := fmt.Sprintf("%s ... %d%%", description, current*100/maximum)
	if remaining > 0 {
		line += fmt.Sprintf(" (about %s left)", formatETA(remaining))
	}
	p.redraw(line)
}

func (p *progressPrinter) completed(success bool, message string) {
	verdict := "done"
	if !success {
		verdict = "FAILED"
		if message != "" {
			verdict += ": " + message
		}
	}
	if p.tty && p.lastLen > 0 {
		p.redraw(verdict)
		fmt.Fprintln(p.out)
		p.lastLen = 0
		return
	}
	fmt.Fprintln(p.out, verdict)
}

// redraw overwrites the current terminal line, blanking leftovers from a
// longer previous draw.
func (p *progressPrinter) redraw(line string) {
	pad := ""
	if n := p.lastLen - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Fprintf(p.out, "\r%s%s", line, pad)
	p.lastLen = len(line)
}

// formatETA rounds a remaining estimate to a coarse human-readable figure.
func formatETA(d time.Duration) string {
	switch {
	case d >= time.Hour:
		return d.Round(time.Minute).String()
	case d >= time.Minute:
		return d.Round(10 * time.Second).String()
	default:
		return d.Round(time.Second).String()
	}
}
