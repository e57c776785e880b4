package probe

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"discforge/internal/ffmpegargs"
	"discforge/internal/logging"
	"discforge/internal/media"
	"discforge/internal/services"
)

// Options configures a Prober.
type Options struct {
	FFprobe         string
	DurationSeconds int
	// FastDivisor > 1 additionally runs a shallower probe in parallel
	// with the thorough one, so slow media report something early.
	FastDivisor int
	// Timeout bounds one probing run; zero means a minute.
	Timeout time.Duration
	// OpticalMultiplier stretches the timeout on optical media.
	OpticalMultiplier int
}

// Prober drives the external probing tool.
type Prober struct {
	opts   Options
	logger *slog.Logger
}

// New returns a Prober.
func New(opts Options, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Minute
	}
	return &Prober{opts: opts, logger: logger}
}

// Probe analyzes the input and merges the findings into it. With a fast
// divisor configured, a shallow probe races the thorough one and its result
// is applied first; the thorough probe's result is merged on top when it
// lands.
func (p *Prober) Probe(ctx context.Context, in *media.Input, optical bool) error {
	timeout := p.opts.Timeout
	if optical && p.opts.OpticalMultiplier > 1 {
		timeout *= time.Duration(p.opts.OpticalMultiplier)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		result *Result
		err    error
	}

	var fastCh chan outcome
	if p.opts.FastDivisor > 1 {
		fastCh = make(chan outcome, 1)
		go func() {
			r, err := p.run(ctx, in, p.opts.FastDivisor)
			fastCh <- outcome{r, err}
		}()
	}

	thorough, err := p.run(ctx, in, 0)

	if fastCh != nil {
		if fast := <-fastCh; fast.err == nil && err != nil {
			// The thorough probe failed; the shallow result is
			// better than nothing.
			fast.result.Apply(in)
			p.logger.Warn("thorough probe failed, using fast probe result",
				logging.Error(err))
			return nil
		} else if fast.err == nil && err == nil {
			fast.result.Apply(in)
		}
	}
	if err != nil {
		return err
	}
	thorough.Apply(in)
	return nil
}

func (p *Prober) run(ctx context.Context, in *media.Input, divisor int) (*Result, error) {
	args := []string{"-loglevel", "quiet", "-of", "flat", "-show_format", "-show_streams"}
	args = append(args, ffmpegargs.ProbeArgs(p.opts.DurationSeconds, divisor)...)
	if !in.SpecIsPath() && in.ContainerFormat != "" {
		args = append(args, "-f", in.ContainerFormat)
	}
	args = append(args, in.FFmpegInputSpec)

	cmd := exec.CommandContext(ctx, p.opts.FFprobe, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	p.logger.Debug("probing input",
		"spec", in.FFmpegInputSpec, "divisor", divisor)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, services.Wrap(services.ErrTimeout, "probe", "run",
				fmt.Sprintf("probe of %s timed out", in.FFmpegInputSpec), ctx.Err())
		}
		return nil, services.Wrap(services.ErrExternalTool, "probe", "run",
			fmt.Sprintf("probe of %s failed: %s", in.FFmpegInputSpec,
				firstLine(stderr.String())), err)
	}

	tags := media.ParseTagMap(stdout.String())
	if tags.Len() == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "probe", "run",
			fmt.Sprintf("probe of %s produced no tags", in.FFmpegInputSpec), nil)
	}
	return Decode(tags), nil
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' || c == '\r' {
			return s[:i]
		}
	}
	return s
}
