package action

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"discforge/internal/services"
)

// VolumeDetectFilter is the analysis filter used by the level-detection pass.
const VolumeDetectFilter = "volumedetect"

var (
	meanVolumePattern = regexp.MustCompile(`mean_volume:\s*(-?\d+(?:\.\d+)?)\s*dB`)
	maxVolumePattern  = regexp.MustCompile(`max_volume:\s*(-?\d+(?:\.\d+)?)\s*dB`)
)

// VolumeAnalysis accumulates the measured levels from a level-detection run.
type VolumeAnalysis struct {
	MeanDB  float64
	PeakDB  float64
	HasMean bool
	HasPeak bool
}

// Complete reports whether both levels were captured.
func (a *VolumeAnalysis) Complete() bool { return a.HasMean && a.HasPeak }

// Parser returns a line parser that captures the analysis filter's summary
// lines into a.
func (a *VolumeAnalysis) Parser() LineParser {
	return func(p *ProcessAction, line string) {
		if m := meanVolumePattern.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				a.MeanDB = v
				a.HasMean = true
				return
			}
		}
		if m := maxVolumePattern.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				a.PeakDB = v
				a.HasPeak = true
				return
			}
		}
		p.LogLine(line)
	}
}

// NormalizeTargets carries the normalization configuration the filter
// computation needs. All levels are dBFS.
type NormalizeTargets struct {
	Mode        string // compress, clip, or align-peak
	MeanDB      float64
	PeakDB      float64
	ToleranceDB float64
}

// NormalizeFilter decides the audio filter for the measured levels. An empty
// filter with a nil error means the levels are already within tolerance.
func NormalizeFilter(measured VolumeAnalysis, targets NormalizeTargets) (string, error) {
	if targets.PeakDB <= targets.MeanDB {
		return "", services.Wrap(services.ErrConfiguration, "action", "normalize",
			"normalization target peak must exceed target mean", nil)
	}
	if !measured.Complete() {
		return "", services.Wrap(services.ErrExternalTool, "action", "normalize",
			"level detection produced no volume summary", nil)
	}
	if math.Abs(targets.MeanDB-measured.MeanDB) <= targets.ToleranceDB {
		return "", nil
	}

	measuredRange := measured.PeakDB - measured.MeanDB
	targetRange := targets.PeakDB - targets.MeanDB
	switch {
	case measuredRange <= targetRange || targets.Mode == "clip":
		return volumeFilter(targets.MeanDB - measured.MeanDB), nil
	case targets.Mode == "align-peak":
		return volumeFilter(targets.PeakDB - measured.PeakDB), nil
	default:
		return compandFilter(measured, targets), nil
	}
}

func volumeFilter(shiftDB float64) string {
	return fmt.Sprintf("volume=%.1fdB", shiftDB)
}

// compandFilter builds the piecewise-linear transfer function for compress
// mode: seven control points from the noise floor up to the peak. The noise
// floor maps to itself, the mean to the target mean and the peak to the
// target peak; two interior points on each side are shifted by the
// mean-level delta and then clamped so the transfer stays monotonic.
func compandFilter(measured VolumeAnalysis, targets NormalizeTargets) string {
	noise := math.Min(-70, measured.MeanDB-10)
	delta := targets.MeanDB - measured.MeanDB

	ins := []float64{
		noise,
		noise + (measured.MeanDB-noise)/3,
		noise + 2*(measured.MeanDB-noise)/3,
		measured.MeanDB,
		measured.MeanDB + (measured.PeakDB-measured.MeanDB)/3,
		measured.MeanDB + 2*(measured.PeakDB-measured.MeanDB)/3,
		measured.PeakDB,
	}
	outs := []float64{
		noise,
		ins[1] + delta,
		ins[2] + delta,
		targets.MeanDB,
		ins[4] + delta,
		ins[5] + delta,
		targets.PeakDB,
	}
	// Clamp the shifted interior points between their anchored neighbors.
	for i := 1; i < len(outs); i++ {
		if outs[i] < outs[i-1] {
			outs[i] = outs[i-1]
		}
	}
	for i := len(outs) - 2; i >= 0; i-- {
		if outs[i] > outs[i+1] {
			outs[i] = outs[i+1]
		}
	}

	points := make([]string, len(ins))
	for i := range ins {
		points[i] = fmt.Sprintf("%.1f/%.1f", ins[i], outs[i])
	}
	return fmt.Sprintf(
		"compand=attacks=0.002:decays=0.2:points=%s:soft-knee=10:gain=0:volume=0:delay=0",
		strings.Join(points, "|"))
}
