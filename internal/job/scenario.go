package job

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"discforge/internal/action"
	"discforge/internal/ffmpegargs"
	"discforge/internal/media"
	"discforge/internal/services"
	"discforge/internal/subtitle"
)

// buildContext accumulates scenario state while the action list grows. The
// effective external subtitle moves forward as extraction, conversion and
// cleanup steps replace it with their outputs.
type buildContext struct {
	job     *Job
	actions []action.Action

	externalSubtitle string
	// trusted marks subtitle files written by the specialized extractors,
	// which emit clean SubRip and need no NUL scrub.
	trusted bool
}

func (b *buildContext) add(acts ...action.Action) {
	b.actions = append(b.actions, acts...)
}

// buildScenario assembles the ordered action list for the input/output pair.
func (j *Job) buildScenario() ([]action.Action, error) {
	// A pre-built image going to a disc needs nothing but the burn.
	if j.output.Type == media.OutputDVDBurn && j.isPrebuiltISO() {
		return []action.Action{j.burnAction(j.input.FFmpegInputSpec)}, nil
	}

	b := &buildContext{job: j, externalSubtitle: j.input.ExternalSubtitle()}

	if b.externalSubtitle != "" {
		if kind := subtitle.KindForPath(b.externalSubtitle); !kind.Text() {
			return nil, services.Wrap(services.ErrValidation, "job", "scenario",
				fmt.Sprintf("unsupported subtitle file format: %s", b.externalSubtitle), nil)
		}
	}

	if j.output.Type != media.OutputSubtitle {
		if err := b.prepareSubtitles(); err != nil {
			return nil, err
		}
		b.normalization()
	}

	var err error
	switch j.output.Type {
	case media.OutputDVD:
		err = b.dvdFileActions(j.output.Path)
	case media.OutputDVDISO:
		err = b.dvdISOActions(j.output.Path)
	case media.OutputDVDBurn:
		isoPath := filepath.Join(j.tempDir, "image.iso")
		if err = b.dvdISOActions(isoPath); err == nil {
			b.add(j.burnAction(isoPath))
		}
	case media.OutputMP4Tablet, media.OutputMP4Phone, media.OutputMP4Android:
		err = b.mp4Actions()
	case media.OutputAVI:
		err = b.aviActions()
	case media.OutputSubtitle:
		err = b.subtitleOnlyActions()
	default:
		err = services.Wrap(services.ErrValidation, "job", "scenario",
			fmt.Sprintf("unknown output type %q", j.output.Type.ID()), nil)
	}
	if err != nil {
		return nil, err
	}
	return b.actions, nil
}

func (j *Job) isPrebuiltISO() bool {
	return j.input.SpecIsPath() &&
		strings.EqualFold(filepath.Ext(j.input.FFmpegInputSpec), ".iso")
}

// prepareSubtitles inserts extraction, conversion and cleanup steps so that
// every later step sees a ready-to-burn external text subtitle file. Bitmap
// streams stay untouched: the encode pass overlays them straight from the
// original input.
func (b *buildContext) prepareSubtitles() error {
	j := b.job
	stream := j.input.SelectedSubtitle()
	if stream != nil && !stream.Kind.Bitmap() {
		if err := b.extractSubtitleStream(stream); err != nil {
			return err
		}
	}
	if j.cfg.Subtitles.Cleanup && b.externalSubtitle != "" && !b.trusted {
		if subtitle.KindForPath(b.externalSubtitle).Text() {
			cleaned := filepath.Join(j.tempDir, "subtitle-clean"+filepath.Ext(b.externalSubtitle))
			b.add(action.NewCleanupAction("clean up subtitles", j.logger, b.externalSubtitle, cleaned))
			b.externalSubtitle = cleaned
		}
	}
	return nil
}

// extractSubtitleStream pulls the selected stream into a temp file, which
// becomes the effective external subtitle for all later steps.
func (b *buildContext) extractSubtitleStream(stream *media.Stream) error {
	j := b.job
	switch stream.Kind {
	case media.SubtitleSSA, media.SubtitleASS:
		ext := subtitle.ExtensionForKind(stream.Kind)
		extracted := filepath.Join(j.tempDir, "subtitle"+ext)
		b.add(j.transcoderSubtitleExtract(stream, extracted, "copy"))
		b.externalSubtitle = extracted
		if j.cfg.Subtitles.DowngradeSSA {
			converted := filepath.Join(j.tempDir, "subtitle.srt")
			b.add(action.NewConvertAction("convert subtitles to SubRip", j.logger, extracted, converted))
			b.externalSubtitle = converted
		}
	case media.SubtitleTeletext:
		extracted := filepath.Join(j.tempDir, "subtitle.srt")
		b.add(j.teletextExtract(stream, extracted))
		b.externalSubtitle = extracted
		b.trusted = true
	case media.SubtitleClosedCaption:
		extracted := filepath.Join(j.tempDir, "subtitle.srt")
		b.add(j.closedCaptionExtract(stream, extracted))
		b.externalSubtitle = extracted
		b.trusted = true
	default:
		extracted := filepath.Join(j.tempDir, "subtitle.srt")
		b.add(j.transcoderSubtitleExtract(stream, extracted, "srt"))
		b.externalSubtitle = extracted
	}
	return nil
}

// transcoderSubtitleExtract runs the transcoder to pull one subtitle stream
// into a stand-alone file.
func (j *Job) transcoderSubtitleExtract(stream *media.Stream, outPath, codec string) action.Action {
	in := j.input
	args := ffmpegargs.InputArgs(in)
	if idx := in.TypeIndex(in.SubtitleIndex()); idx >= 0 {
		args = append(args, "-map", fmt.Sprintf("0:s:%d", idx))
	}
	args = append(args, "-c:s", codec)
	args = append(args, ffmpegargs.OutputArgs(0, "", outPath)...)
	return action.NewProcessAction("extract subtitle stream", j.logger, j.cfg.Tools.FFmpeg, args...)
}

func (j *Job) teletextExtract(stream *media.Stream, outPath string) action.Action {
	args := []string{"-out=srt"}
	if stream.TeletextPage > 0 {
		args = append(args, "-tpage", strconv.Itoa(stream.TeletextPage))
	}
	args = append(args, "-o", outPath, j.input.FFmpegInputSpec)
	return action.NewProcessAction("extract teletext subtitles", j.logger, j.cfg.Tools.CCExtractor, args...)
}

func (j *Job) closedCaptionExtract(stream *media.Stream, outPath string) action.Action {
	args := []string{"-out=srt"}
	if stream.CCChannel == 2 {
		args = append(args, "-cc2")
	}
	args = append(args, "-o", outPath, j.input.FFmpegInputSpec)
	return action.NewProcessAction("extract closed captions", j.logger, j.cfg.Tools.CCExtractor, args...)
}

// normalization inserts the audio-level-detection pass ahead of the encode.
// Its finalizer publishes the computed audio filter into the job variable
// the encode pass references.
func (b *buildContext) normalization() {
	j := b.job
	if !j.cfg.Normalize.Enabled {
		return
	}
	if j.input.SelectedAudio() == nil {
		return
	}

	in := j.input
	args := ffmpegargs.InputArgs(in)
	if idx := in.TypeIndex(in.AudioIndex()); idx >= 0 {
		args = append(args, "-map", fmt.Sprintf("0:a:%d", idx))
	}
	args = append(args, "-vn", "-sn", "-af", action.VolumeDetectFilter, "-f", "null", "-")

	analysis := &action.VolumeAnalysis{}
	act := action.NewProcessAction("measure audio levels", j.logger, j.cfg.Tools.FFmpeg, args...)
	act.Parser = analysis.Parser()
	act.Finalize = func(_ context.Context) error {
		filter, err := action.NormalizeFilter(*analysis, action.NormalizeTargets{
			Mode:        j.cfg.Normalize.Mode,
			MeanDB:      j.cfg.Normalize.TargetMeanDB,
			PeakDB:      j.cfg.Normalize.TargetPeakDB,
			ToleranceDB: j.cfg.Normalize.ToleranceDB,
		})
		if err != nil {
			return err
		}
		if filter == "" {
			j.logger.Info("audio already within tolerance, no normalization")
			j.vars.Set(ffmpegargs.AudioFilterVariable)
			return nil
		}
		j.logger.Info("audio normalization filter computed", "filter", filter)
		j.vars.Set(ffmpegargs.AudioFilterVariable, "-af", filter)
		return nil
	}
	b.add(act)
}

// videoGeometry returns the selected video stream's storage size and display
// aspect after applying rotation metadata.
func (j *Job) videoGeometry() (ffmpegargs.Size, float64, ffmpegargs.Rotation) {
	stream := j.input.SelectedVideo()
	if stream == nil {
		return ffmpegargs.Size{}, 0, ffmpegargs.Rotation{}
	}
	size := ffmpegargs.Size{Width: stream.Width, Height: stream.Height}
	dar := stream.EffectiveDAR()
	rot := ffmpegargs.PlanRotation(stream, j.cfg.Behavior.AutoRotate)
	if rot.SwapDimensions {
		size.Width, size.Height = size.Height, size.Width
		if dar > media.Epsilon {
			dar = 1 / dar
		}
	}
	return size, dar, rot
}

// videoSelectionArgs wires the selected video stream into an encode pass.
// With an overlay graph the stream feeds the filter branch and the graph's
// own `-map [vout]` names the output video; a plain chain maps the stream
// directly.
func (j *Job) videoSelectionArgs(g *ffmpegargs.Graph) []string {
	if idx := j.input.TypeIndex(j.input.VideoIndex()); idx >= 0 {
		g.SetVideoSource(idx)
	}
	if g.HasOverlay() {
		return nil
	}
	return ffmpegargs.MapVideoArgs(j.input)
}

// subtitleBurnIn wires the effective subtitle into the filter graph: text
// files through the subtitles/ass filters, bitmap streams through an overlay
// branch scaled to the output geometry.
func (b *buildContext) subtitleBurnIn(g *ffmpegargs.Graph, outputSize ffmpegargs.Size) error {
	j := b.job
	if b.externalSubtitle != "" {
		hint := ffmpegargs.Size{}
		if j.cfg.Subtitles.OriginalSizeHint {
			if v := j.input.SelectedVideo(); v != nil {
				hint = ffmpegargs.Size{Width: v.Width, Height: v.Height}
			}
		}
		filter, err := ffmpegargs.TextSubtitleFilter(
			b.externalSubtitle, subtitle.KindForPath(b.externalSubtitle), hint)
		if err != nil {
			return err
		}
		g.AppendVideo(filter)
		return nil
	}
	if stream := j.input.SelectedSubtitle(); stream != nil && stream.Kind.Bitmap() {
		if idx := j.input.TypeIndex(j.input.SubtitleIndex()); idx >= 0 {
			g.BurnBitmapSubtitle(idx, outputSize)
		}
	}
	return nil
}
