package job

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"discforge/internal/action"
	"discforge/internal/ffmpegargs"
	"discforge/internal/fileutil"
)

// dvdFileActions appends the actions producing a dvdauthor-ready MPEG-2
// program stream at finalPath. A compliant input skips the encode entirely;
// otherwise a two-pass encode is followed by an audio-extract and remux
// pair, because dvdauthor needs audio and video re-interleaved in a way a
// direct two-stream mux does not guarantee.
func (b *buildContext) dvdFileActions(finalPath string) error {
	j := b.job
	cfg := j.cfg

	noSubtitles := j.input.SubtitleIndex() < 0 && b.externalSubtitle == ""
	if noSubtitles && !cfg.DVD.ForceRetranscode &&
		ffmpegargs.IsDVDCompliant(j.input, cfg.DVD.Standard) {
		b.add(j.remuxFromInputAction(finalPath))
		return nil
	}

	duration := j.input.DurationSeconds()
	videoKbps, err := ffmpegargs.DVDVideoBitrateKbps(duration, ffmpegargs.DVDBudget{
		MaxISOMiB:        cfg.DVD.MaxISOMiB,
		OverheadPercent:  cfg.DVD.OverheadPercent,
		AudioBitrateKbps: cfg.DVD.AudioBitrateKbps,
		MinVideoKbps:     cfg.DVD.MinVideoKbps,
		MaxVideoKbps:     cfg.DVD.MaxVideoKbps,
	})
	if err != nil {
		return err
	}

	geom := ffmpegargs.GeometryForStandard(cfg.DVD.Standard)
	size, dar, rot := j.videoGeometry()
	targetDAR := dvdTargetDAR(dar)

	var graph ffmpegargs.Graph
	graph.AppendVideo(rot.Filter)
	graph.AppendVideo(ffmpegargs.PlanResize(size, dar, geom.Frame, targetDAR).Filter())
	if err := b.subtitleBurnIn(&graph, geom.Frame); err != nil {
		return err
	}

	encodePath := filepath.Join(j.tempDir, "encode.mpg")
	audioPath := filepath.Join(j.tempDir, "audio.ac3")
	passlog := filepath.Join(j.tempDir, "passlog")

	common := ffmpegargs.InputArgs(j.input)
	common = append(common, j.videoSelectionArgs(&graph)...)
	common = append(common, graph.Args()...)
	common = append(common, rot.MetadataArgs...)
	common = append(common, ffmpegargs.DVDVideoArgs(geom, videoKbps)...)
	common = append(common, "-aspect", aspectExpr(targetDAR))

	pass1 := append(append([]string{}, common...), ffmpegargs.PassArgs(1, passlog)...)
	pass1 = append(pass1, ffmpegargs.FirstPassSinkArgs("dvd")...)
	encode1 := action.NewProcessAction("encode video (pass 1)", j.logger, cfg.Tools.FFmpeg, pass1...)
	encode1.Parser = action.TranscoderParser(duration)
	b.add(encode1)

	pass2 := append(append([]string{}, common...), ffmpegargs.PassArgs(2, passlog)...)
	pass2 = append(pass2, ffmpegargs.DVDAudioArgs(j.input, cfg.DVD.AudioBitrateKbps)...)
	pass2 = append(pass2, ffmpegargs.OutputArgs(0, "dvd", encodePath)...)
	encode2 := action.NewProcessAction("encode video (pass 2)", j.logger, cfg.Tools.FFmpeg, pass2...)
	encode2.Parser = action.TranscoderParser(duration)
	encode2.Vars = j.vars
	b.add(encode2)

	extractArgs := []string{"-nostdin", "-loglevel", "info", "-i", encodePath,
		"-vn", "-c:a", "copy", "-f", "ac3", "-y", audioPath}
	extract := action.NewProcessAction("extract audio", j.logger, cfg.Tools.FFmpeg, extractArgs...)
	extract.Parser = action.TranscoderParser(duration)
	b.add(extract)

	remuxArgs := []string{"-nostdin", "-loglevel", "info", "-fflags", "+genpts",
		"-i", encodePath, "-i", audioPath,
		"-map", "0:v:0", "-map", "1:a:0", "-c", "copy"}
	remuxArgs = append(remuxArgs, ffmpegargs.OutputArgs(0, "dvd", finalPath)...)
	remux := action.NewProcessAction("remux audio and video", j.logger, cfg.Tools.FFmpeg, remuxArgs...)
	remux.Parser = action.TranscoderParser(duration)
	if !cfg.Behavior.KeepIntermediateFiles {
		remux.Finalize = func(context.Context) error {
			for _, path := range []string{encodePath, audioPath} {
				if err := fileutil.RemoveAllRetry(path, tempDirCleanupWait); err != nil {
					j.logger.Warn("intermediate not removed", "path", path, "error", err)
				}
			}
			return nil
		}
	}
	b.add(remux)
	return nil
}

// remuxFromInputAction copies the already-compliant streams into a DVD
// program stream without re-encoding.
func (j *Job) remuxFromInputAction(finalPath string) action.Action {
	args := ffmpegargs.InputArgs(j.input)
	args = append(args, "-map", "0:v:0", "-map", "0:a:0", "-c", "copy")
	args = append(args, ffmpegargs.OutputArgs(0, "dvd", finalPath)...)
	act := action.NewProcessAction("remux audio and video", j.logger, j.cfg.Tools.FFmpeg, args...)
	act.Parser = action.TranscoderParser(j.input.DurationSeconds())
	return act
}

// dvdISOActions extends the file scenario with authoring, an intermediate
// delete to reclaim the program stream's disk space before image creation
// needs it, and the image-writing pass.
func (b *buildContext) dvdISOActions(isoPath string) error {
	j := b.job
	cfg := j.cfg

	mpgPath := filepath.Join(j.tempDir, "dvd.mpg")
	if err := b.dvdFileActions(mpgPath); err != nil {
		return err
	}

	treeDir := filepath.Join(j.tempDir, "dvdtree")
	env := []string{"VIDEO_FORMAT=" + strings.ToUpper(cfg.DVD.Standard)}

	titleArgs := []string{"-o", treeDir, "-t"}
	if chapters := chapterList(j.input.DurationSeconds(), cfg.DVD.ChapterIntervalMinutes); chapters != "" {
		titleArgs = append(titleArgs, "-c", chapters)
	}
	titleArgs = append(titleArgs, mpgPath)
	author := action.NewProcessAction("author DVD structure", j.logger, cfg.Tools.DVDAuthor, titleArgs...)
	author.Env = env
	author.Parser = action.AuthoringParser(j.projectedSizeMB())
	b.add(author)

	toc := action.NewProcessAction("author table of contents", j.logger, cfg.Tools.DVDAuthor,
		"-o", treeDir, "-T")
	toc.Env = env
	b.add(toc)

	b.add(action.NewDeleteAction("delete intermediate files", j.logger, mpgPath))

	iso := action.NewProcessAction("create ISO image", j.logger, cfg.Tools.Mkisofs,
		"-dvd-video", "-udf", "-V", volumeLabel(isoPath), "-o", isoPath, treeDir)
	iso.Parser = action.ISOImageParser()
	b.add(iso)
	return nil
}

// burnAction writes a finished image to the configured drive.
func (j *Job) burnAction(isoPath string) action.Action {
	cfg := j.cfg
	args := []string{"-dvd-compat"}
	if cfg.DVD.BurnSpeed > 0 {
		args = append(args, fmt.Sprintf("-speed=%d", cfg.DVD.BurnSpeed))
	}
	args = append(args, "-Z", cfg.DVD.Device+"="+isoPath)
	act := action.NewProcessAction("burn disc", j.logger, cfg.Tools.Growisofs, args...)
	act.Parser = action.BurnParser()
	return act
}

// projectedSizeMB estimates the authored title's size for authoring-progress
// scaling. Without a usable duration the capacity cap stands in.
func (j *Job) projectedSizeMB() int64 {
	duration := j.input.DurationSeconds()
	if duration <= 0 {
		return int64(j.cfg.DVD.MaxISOMiB)
	}
	totalKbps := j.cfg.DVD.MaxVideoKbps + j.cfg.DVD.AudioBitrateKbps
	mb := int64(duration * float64(totalKbps) / 8 / 1000)
	capMB := int64(j.cfg.DVD.MaxISOMiB)
	if mb > capMB || mb <= 0 {
		return capMB
	}
	return mb
}

// dvdTargetDAR picks the DVD aspect flag: widescreen sources author as 16:9,
// everything else as 4:3.
func dvdTargetDAR(sourceDAR float64) float64 {
	if sourceDAR > 1.555 {
		return 16.0 / 9.0
	}
	return 4.0 / 3.0
}

func aspectExpr(dar float64) string {
	if dar > 1.555 {
		return "16:9"
	}
	return "4:3"
}

// chapterList renders chapter points every interval minutes, starting at 0.
func chapterList(durationSeconds float64, intervalMinutes int) string {
	if durationSeconds <= 0 || intervalMinutes <= 0 {
		return ""
	}
	interval := intervalMinutes * 60
	var points []string
	for at := 0; float64(at) < durationSeconds; at += interval {
		points = append(points, fmt.Sprintf("%d:%02d:%02d", at/3600, at/60%60, at%60))
	}
	return strings.Join(points, ",")
}

func volumeLabel(isoPath string) string {
	base := strings.TrimSuffix(filepath.Base(isoPath), filepath.Ext(isoPath))
	base = strings.ToUpper(base)
	clean := make([]rune, 0, len(base))
	for _, r := range base {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			clean = append(clean, r)
		default:
			clean = append(clean, '_')
		}
	}
	if len(clean) > 32 {
		clean = clean[:32]
	}
	if len(clean) == 0 {
		return "DVD"
	}
	return string(clean)
}
