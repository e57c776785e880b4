package ffmpegargs

import (
	"fmt"
	"math"
	"strings"

	"discforge/internal/media"
)

// evenFloor rounds down to an even number. Codec chroma subsampling requires
// even dimensions and offsets.
func evenFloor(v int) int {
	if v < 0 {
		return 0
	}
	return v - v%2
}

// Size is a width/height pair.
type Size struct {
	Width  int
	Height int
}

// ResizePlan describes the two-step resize decided for a target geometry.
type ResizePlan struct {
	Scaled Size
	PadX   int
	PadY   int
	Target Size
}

// NeedsPad reports whether black borders are required to reach the target.
func (p ResizePlan) NeedsPad() bool {
	return p.Scaled.Width != p.Target.Width || p.Scaled.Height != p.Target.Height
}

// Filter renders the scale (and pad, when needed) filter expression.
func (p ResizePlan) Filter() string {
	expr := fmt.Sprintf("scale=%d:%d", p.Scaled.Width, p.Scaled.Height)
	if p.NeedsPad() {
		expr += fmt.Sprintf(",pad=%d:%d:%d:%d", p.Target.Width, p.Target.Height, p.PadX, p.PadY)
	}
	return expr
}

// PlanResize computes the letterbox/pillarbox resize onto an exact target
// geometry. A zero aspect ratio means square pixels. The scaled image is the
// largest even-dimensioned size that fits the target while preserving the
// source display aspect under the target's pixel aspect; centered black
// padding (even offsets) fills the rest.
func PlanResize(in Size, inDAR float64, out Size, outDAR float64) ResizePlan {
	srcDAR := effectiveDAR(in, inDAR)
	dstDAR := effectiveDAR(out, outDAR)

	// Pixel aspect of the target raster.
	par := dstDAR * float64(out.Height) / float64(out.Width)
	// Desired storage-dimension ratio of the scaled image.
	ratio := srcDAR / par

	scaledW := out.Width
	scaledH := int(math.Floor(float64(out.Width) / ratio))
	if scaledH > out.Height {
		scaledH = out.Height
		scaledW = int(math.Floor(float64(out.Height) * ratio))
	}
	scaledW = evenFloor(min(scaledW, out.Width))
	scaledH = evenFloor(min(scaledH, out.Height))
	if scaledW < 2 {
		scaledW = 2
	}
	if scaledH < 2 {
		scaledH = 2
	}

	padX := evenFloor((out.Width - scaledW) / 2)
	padY := evenFloor((out.Height - scaledH) / 2)

	return ResizePlan{
		Scaled: Size{Width: scaledW, Height: scaledH},
		PadX:   padX,
		PadY:   padY,
		Target: out,
	}
}

// BoundedPlan describes a fit-within-box resize to square pixels.
type BoundedPlan struct {
	Scaled Size
}

// Filter renders the scale expression.
func (p BoundedPlan) Filter() string {
	return fmt.Sprintf("scale=%d:%d", p.Scaled.Width, p.Scaled.Height)
}

// AspectArgs returns the explicit aspect-ratio flag reflecting the final
// (even-rounded) display aspect.
func (p BoundedPlan) AspectArgs() []string {
	return []string{"-aspect", fmt.Sprintf("%d:%d", p.Scaled.Width, p.Scaled.Height)}
}

// PlanBounded computes the largest even-dimensioned square-pixel size with
// the source display aspect that fits within the bounding box. No padding is
// added.
func PlanBounded(in Size, inDAR float64, bounds Size) BoundedPlan {
	srcDAR := effectiveDAR(in, inDAR)

	w := bounds.Width
	h := int(math.Floor(float64(bounds.Width) / srcDAR))
	if h > bounds.Height {
		h = bounds.Height
		w = int(math.Floor(float64(bounds.Height) * srcDAR))
	}
	w = evenFloor(min(w, bounds.Width))
	h = evenFloor(min(h, bounds.Height))
	if w < 2 {
		w = 2
	}
	if h < 2 {
		h = 2
	}
	return BoundedPlan{Scaled: Size{Width: w, Height: h}}
}

func effectiveDAR(s Size, dar float64) float64 {
	if dar > media.Epsilon {
		return dar
	}
	if s.Height <= 0 || s.Width <= 0 {
		return 1
	}
	return float64(s.Width) / float64(s.Height)
}

// Rotation describes the output-side handling of stored rotation metadata.
type Rotation struct {
	// Filter is the rotation filter expression, empty when nothing to do.
	Filter string
	// MetadataArgs strips the rotate tag so players do not rotate twice.
	MetadataArgs []string
	// SwapDimensions is set for ±90° rotations: width/height trade places
	// and the display aspect inverts.
	SwapDimensions bool
}

// PlanRotation inspects a video stream's rotation metadata. With auto-rotate
// disabled or no rotation stored, the zero value is returned.
func PlanRotation(stream *media.Stream, autoRotate bool) Rotation {
	if stream == nil || !autoRotate {
		return Rotation{}
	}
	degrees := stream.Rotation()
	if degrees == 0 {
		return Rotation{}
	}
	rot := Rotation{MetadataArgs: []string{"-metadata:s:v", "rotate=0"}}
	switch degrees {
	case 90:
		rot.Filter = "transpose=1"
		rot.SwapDimensions = true
	case 180:
		rot.Filter = "rotate=PI"
	case 270:
		rot.Filter = "transpose=2"
		rot.SwapDimensions = true
	default:
		rot.Filter = fmt.Sprintf("rotate=%d*PI/180", degrees)
	}
	return rot
}

// TextSubtitleFilter renders the burn-in filter for an external text subtitle
// file. SubRip uses the subtitles filter; SSA and ASS use the ass filter.
// originalSize, when non-zero, hints the canvas the subtitles were authored
// for so scaling keeps proportions.
func TextSubtitleFilter(path string, kind media.SubtitleKind, originalSize Size) (string, error) {
	escaped := EscapeFilterArg(path)
	switch kind {
	case media.SubtitleSubRip:
		expr := "subtitles=filename=" + escaped
		if originalSize.Width > 0 && originalSize.Height > 0 {
			expr += fmt.Sprintf(":original_size=%dx%d", originalSize.Width, originalSize.Height)
		}
		return expr, nil
	case media.SubtitleSSA, media.SubtitleASS:
		return "ass=filename=" + escaped, nil
	default:
		return "", fmt.Errorf("subtitle kind %s cannot be burned in from a file", kind)
	}
}

// Graph accumulates video filters and an optional bitmap subtitle overlay,
// then renders either a plain -vf chain or a -filter_complex graph.
type Graph struct {
	videoFilters []string
	videoSource  string

	overlaySubtitleIndex int // type index among subtitle streams
	overlayScale         Size
	hasOverlay           bool
}

// SetVideoSource names the video stream (type index) the graph consumes.
// Unset, the first video stream feeds the graph.
func (g *Graph) SetVideoSource(typeIndex int) {
	g.videoSource = fmt.Sprintf("0:v:%d", typeIndex)
}

// AppendVideo adds a filter stage to the main video branch.
func (g *Graph) AppendVideo(filter string) {
	if strings.TrimSpace(filter) == "" {
		return
	}
	g.videoFilters = append(g.videoFilters, filter)
}

// BurnBitmapSubtitle overlays an embedded bitmap subtitle stream onto the
// video branch. scale, when non-zero, rescales the subtitle pictures to the
// output geometry first.
func (g *Graph) BurnBitmapSubtitle(subtitleTypeIndex int, scale Size) {
	g.hasOverlay = true
	g.overlaySubtitleIndex = subtitleTypeIndex
	g.overlayScale = scale
}

// Empty reports whether no filtering is required.
func (g *Graph) Empty() bool {
	return len(g.videoFilters) == 0 && !g.hasOverlay
}

// HasOverlay reports whether Args renders a -filter_complex graph whose
// `-map [vout]` already selects the output video. Callers must not add
// their own video map in that case: the muxer would emit two video streams.
func (g *Graph) HasOverlay() bool {
	return g.hasOverlay
}

// Args renders the graph into transcoder arguments. Plain chains use -vf;
// overlays require -filter_complex with named intermediate pads and an
// explicit map of the resulting branch.
func (g *Graph) Args() []string {
	if g.Empty() {
		return nil
	}
	if !g.hasOverlay {
		return []string{"-vf", strings.Join(g.videoFilters, ",")}
	}

	var parts []string
	videoPad := g.videoSource
	if videoPad == "" {
		videoPad = "0:v"
	}
	if len(g.videoFilters) > 0 {
		parts = append(parts, fmt.Sprintf("[%s]%s[vmain]", videoPad, strings.Join(g.videoFilters, ",")))
		videoPad = "vmain"
	}
	subPad := fmt.Sprintf("0:s:%d", g.overlaySubtitleIndex)
	if g.overlayScale.Width > 0 && g.overlayScale.Height > 0 {
		parts = append(parts, fmt.Sprintf("[%s]scale=%d:%d[sub]", subPad, g.overlayScale.Width, g.overlayScale.Height))
		subPad = "sub"
	}
	parts = append(parts, fmt.Sprintf("[%s][%s]overlay[vout]", videoPad, subPad))

	return []string{"-filter_complex", strings.Join(parts, ";"), "-map", "[vout]"}
}
