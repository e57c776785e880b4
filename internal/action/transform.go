package action

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"discforge/internal/services"
	"discforge/internal/subtitle"
)

const transformChunkSize = 64 * 1024

// CleanupAction streams a text subtitle file chunk by chunk, strips embedded
// NUL bytes and writes the result to a new file. NULs corrupt downstream
// text-subtitle filters.
type CleanupAction struct {
	Base
	InputPath  string
	OutputPath string
}

// NewCleanupAction builds a cleanup action.
func NewCleanupAction(description string, logger *slog.Logger, inputPath, outputPath string) *CleanupAction {
	return &CleanupAction{
		Base:       NewBase(description, logger),
		InputPath:  inputPath,
		OutputPath: outputPath,
	}
}

// Run copies InputPath to OutputPath without NUL bytes, reporting progress
// at roughly 1% granularity and yielding to cancellation between chunks.
func (a *CleanupAction) Run(ctx context.Context) error {
	if err := a.Begin(); err != nil {
		return err
	}
	err := a.transform(ctx)
	if err != nil {
		a.Complete(false, services.UserMessage(err))
		return err
	}
	a.Complete(true, "subtitle cleanup finished")
	return nil
}

func (a *CleanupAction) transform(ctx context.Context) error {
	in, total, err := openWithSize(a.InputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(a.OutputPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "action", "cleanup",
			fmt.Sprintf("create %s", a.OutputPath), err)
	}
	defer out.Close()

	report := newProgressThreshold(total)
	buf := make([]byte, transformChunkSize)
	var done int64
	for {
		if err := ctx.Err(); err != nil {
			return services.Wrap(services.ErrTimeout, "action", "cleanup",
				"subtitle cleanup cancelled", err)
		}
		n, readErr := in.Read(buf)
		if n > 0 {
			if _, err := out.Write(subtitle.StripNUL(buf[:n])); err != nil {
				return services.Wrap(services.ErrValidation, "action", "cleanup",
					fmt.Sprintf("write %s", a.OutputPath), err)
			}
			done += int64(n)
			if report.due(done) {
				a.EmitProgress(done, total)
			}
		}
		if readErr == io.EOF {
			a.EmitProgress(total, total)
			return nil
		}
		if readErr != nil {
			return services.Wrap(services.ErrValidation, "action", "cleanup",
				fmt.Sprintf("read %s", a.InputPath), readErr)
		}
	}
}

// ConvertAction reads an SSA or ASS script and rewrites its dialogue events
// as SubRip.
type ConvertAction struct {
	Base
	InputPath  string
	OutputPath string
}

// NewConvertAction builds an SSA/ASS to SubRip conversion action.
func NewConvertAction(description string, logger *slog.Logger, inputPath, outputPath string) *ConvertAction {
	return &ConvertAction{
		Base:       NewBase(description, logger),
		InputPath:  inputPath,
		OutputPath: outputPath,
	}
}

// Run performs the conversion. A script with no decodable dialogue events
// fails the action: an empty SubRip file would silently drop the subtitles.
func (a *ConvertAction) Run(ctx context.Context) error {
	if err := a.Begin(); err != nil {
		return err
	}
	err := a.convert(ctx)
	if err != nil {
		a.Complete(false, services.UserMessage(err))
		return err
	}
	a.Complete(true, "subtitle conversion finished")
	return nil
}

func (a *ConvertAction) convert(ctx context.Context) error {
	in, total, err := openWithSize(a.InputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(a.OutputPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "action", "convert",
			fmt.Sprintf("create %s", a.OutputPath), err)
	}
	defer out.Close()

	buffered := bufio.NewWriterSize(out, transformChunkSize)
	writer := subtitle.NewSRTWriter(buffered)

	var decoder subtitle.SSADecoder
	report := newProgressThreshold(total)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, transformChunkSize), 1024*1024)
	var done int64
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return services.Wrap(services.ErrTimeout, "action", "convert",
				"subtitle conversion cancelled", err)
		}
		line := scanner.Text()
		done += int64(len(line)) + 1
		if cue, ok := decoder.Feed(line); ok {
			if err := writer.Append(cue); err != nil {
				return services.Wrap(services.ErrValidation, "action", "convert",
					fmt.Sprintf("write %s", a.OutputPath), err)
			}
		}
		if report.due(done) {
			a.EmitProgress(done, total)
		}
	}
	if err := scanner.Err(); err != nil {
		return services.Wrap(services.ErrValidation, "action", "convert",
			fmt.Sprintf("read %s", a.InputPath), err)
	}
	if err := buffered.Flush(); err != nil {
		return services.Wrap(services.ErrValidation, "action", "convert",
			fmt.Sprintf("write %s", a.OutputPath), err)
	}
	if writer.Count() == 0 {
		return services.Wrap(services.ErrValidation, "action", "convert",
			fmt.Sprintf("%s contains no dialogue events", a.InputPath), nil)
	}
	a.EmitProgress(total, total)
	return nil
}

// DeleteAction removes files and directories to reclaim transient disk
// space between pipeline stages. Individual deletion failures are logged
// and do not fail the action.
type DeleteAction struct {
	Base
	Paths []string
}

// NewDeleteAction builds a batch deletion action.
func NewDeleteAction(description string, logger *slog.Logger, paths ...string) *DeleteAction {
	return &DeleteAction{
		Base:  NewBase(description, logger),
		Paths: paths,
	}
}

// Run deletes every path.
func (a *DeleteAction) Run(ctx context.Context) error {
	if err := a.Begin(); err != nil {
		return err
	}
	for i, path := range a.Paths {
		if err := os.RemoveAll(path); err != nil {
			a.Logger().Warn("delete failed", "path", path, "error", err)
		}
		a.EmitProgress(int64(i+1), int64(len(a.Paths)))
	}
	a.Complete(true, "cleanup finished")
	return nil
}

func openWithSize(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrNotFound, "action", "open",
			fmt.Sprintf("open %s", path), err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, services.Wrap(services.ErrValidation, "action", "open",
			fmt.Sprintf("stat %s", path), err)
	}
	size := info.Size()
	if size <= 0 {
		size = 1
	}
	return f, size, nil
}

// progressThreshold rations progress reports to ~1% of the total, or 1KB,
// whichever is larger.
type progressThreshold struct {
	step int64
	next int64
}

func newProgressThreshold(total int64) *progressThreshold {
	step := total / 100
	if step < 1024 {
		step = 1024
	}
	return &progressThreshold{step: step, next: step}
}

func (t *progressThreshold) due(done int64) bool {
	if done < t.next {
		return false
	}
	t.next = done + t.step
	return true
}
