package job

import (
	"fmt"
	"path/filepath"

	"discforge/internal/action"
	"discforge/internal/config"
	"discforge/internal/ffmpegargs"
	"discforge/internal/media"
	"discforge/internal/services"
	"discforge/internal/subtitle"
)

// mp4Actions appends the single device-profile encode pass.
func (b *buildContext) mp4Actions() error {
	j := b.job
	profile := j.mp4Profile()

	size, dar, rot := j.videoGeometry()
	bounded := ffmpegargs.PlanBounded(size, dar,
		ffmpegargs.Size{Width: profile.MaxWidth, Height: profile.MaxHeight})

	stream := j.input.SelectedVideo()
	frameRate := 0.0
	if stream != nil {
		frameRate = stream.FrameRate
	}
	videoKbps := ffmpegargs.MP4VideoBitrateKbps(bounded.Scaled, frameRate, profile.BitsPerPixel)

	var graph ffmpegargs.Graph
	graph.AppendVideo(rot.Filter)
	graph.AppendVideo(bounded.Filter())
	if err := b.subtitleBurnIn(&graph, bounded.Scaled); err != nil {
		return err
	}

	duration := j.input.DurationSeconds()
	args := ffmpegargs.InputArgs(j.input)
	args = append(args, j.videoSelectionArgs(&graph)...)
	args = append(args, graph.Args()...)
	args = append(args, rot.MetadataArgs...)
	args = append(args, "-c:v", "libx264", "-b:v", fmt.Sprintf("%dk", videoKbps))
	args = append(args, b.mp4AudioArgs()...)
	args = append(args, "-movflags", "+faststart")
	args = append(args, ffmpegargs.OutputArgs(0, "mp4", j.output.Path)...)

	act := action.NewProcessAction("encode "+j.output.Type.DisplayName(), j.logger,
		j.cfg.Tools.FFmpeg, args...)
	act.Parser = action.TranscoderParser(duration)
	act.Vars = j.vars
	b.add(act)
	return nil
}

func (j *Job) mp4Profile() config.ScreenProfile {
	switch j.output.Type {
	case media.OutputMP4Phone:
		return j.cfg.MP4.Phone
	case media.OutputMP4Android:
		return j.cfg.MP4.Android
	default:
		return j.cfg.MP4.Tablet
	}
}

func (b *buildContext) mp4AudioArgs() []string {
	j := b.job
	if j.input.SelectedAudio() == nil {
		return []string{"-an"}
	}
	args := []string{}
	if idx := j.input.TypeIndex(j.input.AudioIndex()); idx >= 0 {
		args = append(args, "-map", fmt.Sprintf("0:a:%d", idx))
	}
	args = append(args, "-c:a", "aac", "-b:a", fmt.Sprintf("%dk", j.cfg.MP4.AudioBitrateKbps))
	args = append(args, "{"+ffmpegargs.AudioFilterVariable+"}")
	return args
}

// aviActions appends the bounded-resize two-pass encode.
func (b *buildContext) aviActions() error {
	j := b.job
	cfg := j.cfg

	size, dar, rot := j.videoGeometry()
	bounded := ffmpegargs.PlanBounded(size, dar,
		ffmpegargs.Size{Width: cfg.AVI.MaxWidth, Height: cfg.AVI.MaxHeight})

	var graph ffmpegargs.Graph
	graph.AppendVideo(rot.Filter)
	graph.AppendVideo(bounded.Filter())
	if err := b.subtitleBurnIn(&graph, bounded.Scaled); err != nil {
		return err
	}

	duration := j.input.DurationSeconds()
	passlog := filepath.Join(j.tempDir, "passlog")

	common := ffmpegargs.InputArgs(j.input)
	common = append(common, j.videoSelectionArgs(&graph)...)
	common = append(common, graph.Args()...)
	common = append(common, rot.MetadataArgs...)
	common = append(common, "-c:v", "mpeg4", "-vtag", "xvid")
	common = append(common, "-b:v", fmt.Sprintf("%dk", cfg.AVI.VideoKbps))
	common = append(common, bounded.AspectArgs()...)

	pass1 := append(append([]string{}, common...), ffmpegargs.PassArgs(1, passlog)...)
	pass1 = append(pass1, ffmpegargs.FirstPassSinkArgs("avi")...)
	encode1 := action.NewProcessAction("encode video (pass 1)", j.logger, cfg.Tools.FFmpeg, pass1...)
	encode1.Parser = action.TranscoderParser(duration)
	b.add(encode1)

	pass2 := append(append([]string{}, common...), ffmpegargs.PassArgs(2, passlog)...)
	if j.input.SelectedAudio() != nil {
		if idx := j.input.TypeIndex(j.input.AudioIndex()); idx >= 0 {
			pass2 = append(pass2, "-map", fmt.Sprintf("0:a:%d", idx))
		}
		pass2 = append(pass2, "-c:a", "libmp3lame", "-b:a", fmt.Sprintf("%dk", cfg.AVI.AudioBitrateKbps))
		pass2 = append(pass2, "{"+ffmpegargs.AudioFilterVariable+"}")
	} else {
		pass2 = append(pass2, "-an")
	}
	pass2 = append(pass2, ffmpegargs.OutputArgs(0, "avi", j.output.Path)...)
	encode2 := action.NewProcessAction("encode video (pass 2)", j.logger, cfg.Tools.FFmpeg, pass2...)
	encode2.Parser = action.TranscoderParser(duration)
	encode2.Vars = j.vars
	b.add(encode2)
	return nil
}

// subtitleOnlyActions produces a SubRip file at the output path. Conversion
// to SubRip is mandatory here: a source that cannot be converted fails the
// scenario.
func (b *buildContext) subtitleOnlyActions() error {
	j := b.job

	if b.externalSubtitle != "" {
		switch subtitle.KindForPath(b.externalSubtitle) {
		case media.SubtitleSubRip:
			b.add(action.NewCleanupAction("clean up subtitles", j.logger,
				b.externalSubtitle, j.output.Path))
		case media.SubtitleSSA, media.SubtitleASS:
			b.add(action.NewConvertAction("convert subtitles to SubRip", j.logger,
				b.externalSubtitle, j.output.Path))
		default:
			return services.Wrap(services.ErrValidation, "job", "scenario",
				fmt.Sprintf("cannot convert %s to SubRip", b.externalSubtitle), nil)
		}
		return nil
	}

	stream := j.input.SelectedSubtitle()
	if stream == nil {
		return services.Wrap(services.ErrValidation, "job", "scenario",
			"no subtitle stream or file selected", nil)
	}
	switch stream.Kind {
	case media.SubtitleSubRip:
		b.add(j.transcoderSubtitleExtract(stream, j.output.Path, "srt"))
	case media.SubtitleSSA, media.SubtitleASS:
		extracted := filepath.Join(j.tempDir, "subtitle"+subtitle.ExtensionForKind(stream.Kind))
		b.add(j.transcoderSubtitleExtract(stream, extracted, "copy"))
		b.add(action.NewConvertAction("convert subtitles to SubRip", j.logger,
			extracted, j.output.Path))
	case media.SubtitleTeletext:
		b.add(j.teletextExtract(stream, j.output.Path))
	case media.SubtitleClosedCaption:
		b.add(j.closedCaptionExtract(stream, j.output.Path))
	default:
		return services.Wrap(services.ErrValidation, "job", "scenario",
			fmt.Sprintf("subtitle kind %s cannot be converted to SubRip", stream.Kind), nil)
	}
	return nil
}
