package ffmpegargs

import (
	"fmt"
	"math"
	"os"

	"discforge/internal/media"
	"discforge/internal/services"
)

const (
	dvdVideoCodec = "mpeg2video"
	dvdAudioCodec = "ac3"

	// VBV parameters of the DVD-Video profile.
	dvdMaxRateKbps  = 9000
	dvdBufsizeBytes = 1835008

	defaultFrameRate = 25.0
)

// DVDGeometry describes the fixed raster of one television standard.
type DVDGeometry struct {
	Frame     Size
	FrameRate float64
	RateExpr  string
	GOPSize   int
}

// GeometryForStandard returns the raster for "pal" or "ntsc".
func GeometryForStandard(standard string) DVDGeometry {
	if standard == "ntsc" {
		return DVDGeometry{
			Frame:     Size{Width: 720, Height: 480},
			FrameRate: 30000.0 / 1001.0,
			RateExpr:  "30000/1001",
			GOPSize:   18,
		}
	}
	return DVDGeometry{
		Frame:     Size{Width: 720, Height: 576},
		FrameRate: 25,
		RateExpr:  "25",
		GOPSize:   15,
	}
}

// DVDBudget carries the capacity parameters for the video bitrate computation.
type DVDBudget struct {
	MaxISOMiB        int
	OverheadPercent  int
	AudioBitrateKbps int
	MinVideoKbps     int
	MaxVideoKbps     int
}

// DVDVideoBitrateKbps computes the video bitrate that fills the medium
// without overflowing it: usable capacity (max ISO size scaled down by the
// overhead percentage) spread over the duration, minus the audio bitrate,
// capped at the configured maximum. Durations so long that even the minimum
// video bitrate would overflow the medium are rejected rather than clamped
// up, keeping the projected total size under budget for every duration this
// function accepts.
func DVDVideoBitrateKbps(durationSeconds float64, budget DVDBudget) (int, error) {
	if durationSeconds <= 0 {
		return 0, services.Wrap(services.ErrValidation, "ffmpegargs", "bitrate",
			"duration must be positive to budget a bitrate", nil)
	}
	usableBits := float64(budget.MaxISOMiB) * 1024 * 1024 * 8 *
		float64(100-budget.OverheadPercent) / 100
	totalKbps := usableBits / 1000 / durationSeconds
	videoKbps := int(math.Floor(totalKbps)) - budget.AudioBitrateKbps
	if videoKbps > budget.MaxVideoKbps {
		videoKbps = budget.MaxVideoKbps
	}
	if videoKbps < budget.MinVideoKbps {
		return 0, services.Wrap(services.ErrValidation, "ffmpegargs", "bitrate",
			fmt.Sprintf("%.0fs of material does not fit on the medium at %d kbit/s video",
				durationSeconds, budget.MinVideoKbps), nil)
	}
	return videoKbps, nil
}

// DVDVideoArgs encodes to the DVD-Video MPEG-2 profile at the budgeted rate.
func DVDVideoArgs(geom DVDGeometry, videoKbps int) []string {
	return []string{
		"-c:v", dvdVideoCodec,
		"-b:v", fmt.Sprintf("%dk", videoKbps),
		"-maxrate", fmt.Sprintf("%dk", dvdMaxRateKbps),
		"-bufsize", fmt.Sprintf("%d", dvdBufsizeBytes),
		"-r", geom.RateExpr,
		"-g", fmt.Sprintf("%d", geom.GOPSize),
	}
}

// PassArgs selects the two-pass stage; both passes must share logPrefix.
func PassArgs(pass int, logPrefix string) []string {
	return []string{"-pass", fmt.Sprintf("%d", pass), "-passlogfile", logPrefix}
}

// FirstPassSinkArgs discards the first-pass output. Audio is dropped since
// only video statistics are collected.
func FirstPassSinkArgs(format string) []string {
	return []string{"-an", "-f", format, "-y", os.DevNull}
}

// MP4VideoBitrateKbps derives a device bitrate from the encoded geometry:
// width × height × frame rate × bits-per-pixel. An unknown frame rate falls
// back to 25 fps.
func MP4VideoBitrateKbps(frame Size, frameRate, bitsPerPixel float64) int {
	if frameRate <= media.Epsilon {
		frameRate = defaultFrameRate
	}
	return int(math.Round(float64(frame.Width) * float64(frame.Height) * frameRate * bitsPerPixel / 1000))
}

// IsDVDCompliant reports whether the input can be remuxed onto a DVD without
// re-encoding: exactly one video and one audio stream, no subtitles, the
// standard's exact raster and frame rate, DVD codecs, and a 4:3 or 16:9
// display aspect.
func IsDVDCompliant(in *media.Input, standard string) bool {
	var video, audio *media.Stream
	videoCount, audioCount := 0, 0
	for _, s := range in.Streams {
		switch s.Type {
		case media.StreamVideo:
			videoCount++
			video = s
		case media.StreamAudio:
			audioCount++
			audio = s
		case media.StreamSubtitle:
			return false
		}
	}
	if videoCount != 1 || audioCount != 1 {
		return false
	}
	if video.CodecName != dvdVideoCodec || audio.CodecName != dvdAudioCodec {
		return false
	}
	geom := GeometryForStandard(standard)
	if video.Width != geom.Frame.Width || video.Height != geom.Frame.Height {
		return false
	}
	if !media.FloatEquals(video.FrameRate, geom.FrameRate) {
		return false
	}
	dar := video.EffectiveDAR()
	return media.FloatEquals(dar, 4.0/3.0) || media.FloatEquals(dar, 16.0/9.0)
}
