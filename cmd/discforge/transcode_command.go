package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"discforge/internal/action"
	"discforge/internal/config"
	"discforge/internal/drive"
	"discforge/internal/history"
	"discforge/internal/job"
	"discforge/internal/media"
	"discforge/internal/probe"
	"discforge/internal/services"
)

type transcodeFlags struct {
	outputID     string
	destPath     string
	subtitleFile string
	videoStream  int
	audioStream  int
	subStream    int
	noSubtitle   bool
	noAudio      bool
	aspect       string
}

func newTranscodeCommand(ctx *commandContext) *cobra.Command {
	flags := &transcodeFlags{}

	cmd := &cobra.Command{
		Use:   "transcode <input>",
		Short: "Transcode a media file into the selected output profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runTranscode(cmd, ctx, cfg, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.outputID, "output", "o", "", "Output profile: dvd, dvd-iso, dvd-burn, mp4-tablet, mp4-phone, mp4-android, avi, subtitle")
	cmd.Flags().StringVarP(&flags.destPath, "dest", "d", "", "Output file path (defaults to the configured output directory)")
	cmd.Flags().StringVar(&flags.subtitleFile, "subtitle-file", "", "External subtitle file to burn in or convert")
	cmd.Flags().IntVar(&flags.videoStream, "video-stream", -1, "Video stream index to use instead of the default")
	cmd.Flags().IntVar(&flags.audioStream, "audio-stream", -1, "Audio stream index to use instead of the default")
	cmd.Flags().IntVar(&flags.subStream, "subtitle-stream", -1, "Subtitle stream index to use instead of the default")
	cmd.Flags().BoolVar(&flags.noSubtitle, "no-subtitle", false, "Drop the default subtitle selection")
	cmd.Flags().BoolVar(&flags.noAudio, "no-audio", false, "Drop the default audio selection")
	cmd.Flags().StringVar(&flags.aspect, "aspect", "", "Force the display aspect ratio, e.g. 16:9")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runTranscode(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, inputPath string, flags *transcodeFlags) error {
	outputType, ok := media.ParseOutputType(flags.outputID)
	if !ok {
		return fmt.Errorf("unknown output profile %q", flags.outputID)
	}

	logger := ctx.loggerValue()
	in := media.NewInput(inputPath)

	// A finished image going straight to a burner needs no probing.
	prebuiltISO := outputType == media.OutputDVDBurn &&
		strings.EqualFold(filepath.Ext(inputPath), ".iso")
	if !prebuiltISO {
		prober := probe.New(probe.Options{
			FFprobe:           cfg.Tools.FFprobe,
			DurationSeconds:   cfg.Probe.DurationSeconds,
			FastDivisor:       cfg.Probe.FastDivisor,
			OpticalMultiplier: cfg.Probe.OpticalTimeoutMultiplier,
		}, logger)
		if err := prober.Probe(cmd.Context(), in, false); err != nil {
			return err
		}
		applySelections(in, cfg, flags)
	}

	out := &media.Output{Type: outputType, Path: strings.TrimSpace(flags.destPath)}
	if out.Path == "" && outputType != media.OutputDVDBurn {
		out.Path = filepath.Join(cfg.OutputDirFor(outputType.ID()), out.DefaultFileName(inputPath))
	}
	if flags.aspect != "" {
		dar, err := parseAspect(flags.aspect)
		if err != nil {
			return err
		}
		out.ForcedDAR = dar
	}

	if outputType == media.OutputDVDBurn && cfg.DVD.WaitForDisc {
		if err := waitForBlankDisc(cmd.Context(), ctx, cfg); err != nil {
			return err
		}
	}

	j := job.New(cfg, logger)
	j.SetInput(in)
	j.SetOutput(out)

	printer := newProgressPrinter(cmd.OutOrStdout())
	j.Observe(printer.Observer())

	runID := uuid.NewString()
	journal := openJournal(ctx, cfg)
	var recordID int64
	if journal != nil {
		defer journal.Close()
		if rec, err := journal.Begin(cmd.Context(), runID,
			inputPath, outputType.ID(), out.Path); err != nil {
			logger.Warn("job not journaled", "error", err)
			journal = nil
		} else {
			recordID = rec.ID
			j.Observe(journalObserver(journal, recordID))
		}
	}

	err := j.Run(services.WithJobID(cmd.Context(), runID))
	if journal != nil {
		status := history.StatusSucceeded
		message := "finished"
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
			status = history.StatusAborted
			message = "aborted"
		default:
			status = history.StatusFailed
			message = services.UserMessage(err)
		}
		if finishErr := journal.Finish(context.Background(), recordID, status, message); finishErr != nil {
			logger.Warn("journal not updated", "error", finishErr)
		}
	}
	if err == nil && out.Path != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Output written to %s\n", out.Path)
	}
	return err
}

// applySelections combines explicit stream picks with the configured
// default-selection heuristics.
func applySelections(in *media.Input, cfg *config.Config, flags *transcodeFlags) {
	in.SelectDefaultStreams(media.SelectionOptions{
		AudienceLanguages:   cfg.Behavior.AudienceLanguages,
		PreferOriginalAudio: cfg.Behavior.PreferOriginalAudio,
	})
	if flags.videoStream >= 0 {
		in.SelectVideo(flags.videoStream)
	}
	if flags.audioStream >= 0 {
		in.SelectAudio(flags.audioStream)
	}
	if flags.subStream >= 0 {
		in.SelectSubtitle(flags.subStream)
	}
	if flags.noSubtitle {
		in.ClearSubtitle()
	}
	if flags.noAudio {
		in.SelectAudio(-1)
	}
	if flags.subtitleFile != "" {
		in.SetExternalSubtitle(flags.subtitleFile)
	}
}

func parseAspect(expr string) (float64, error) {
	var w, h float64
	if _, err := fmt.Sscanf(strings.TrimSpace(expr), "%f:%f", &w, &h); err != nil || w <= 0 || h <= 0 {
		return 0, fmt.Errorf("invalid aspect ratio %q, expected W:H", expr)
	}
	return w / h, nil
}

// waitForBlankDisc blocks until the configured burner has media.
func waitForBlankDisc(ctx context.Context, cmdCtx *commandContext, cfg *config.Config) error {
	monitor := drive.NewMonitor(cfg.DVD.Device, cmdCtx.loggerValue())
	if monitor == nil {
		return fmt.Errorf("no burner device configured")
	}
	timeout := time.Duration(cfg.DVD.WaitForDiscTimeoutSecs) * time.Second
	return monitor.WaitForDisc(ctx, timeout)
}

// openJournal opens the history store, degrading to no journaling when the
// database is unavailable.
func openJournal(ctx *commandContext, cfg *config.Config) *history.Store {
	journal, err := history.Open(cfg)
	if err != nil {
		ctx.loggerValue().Warn("history unavailable", "error", err)
		return nil
	}
	return journal
}

// journalObserver mirrors job progress into the history record, throttled so
// frequent transcoder updates do not hammer the database.
func journalObserver(journal *history.Store, recordID int64) action.Observer {
	var last time.Time
	return action.Observer{
		Progress: func(description string, current, maximum int64, elapsed, remaining time.Duration) {
			if time.Since(last) < 2*time.Second {
				return
			}
			last = time.Now()
			_ = journal.SetProgress(context.Background(), recordID, current, description)
		},
	}
}
