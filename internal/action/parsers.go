package action

import (
	"regexp"
	"strconv"
	"strings"
)

// The authoring tool reports two phases on one scale: megabytes written
// during VOB generation occupy 0..100, the fixup percentage occupies
// 100..200.
const authoringProgressMax = 200

var (
	vobuLinePattern    = regexp.MustCompile(`^STAT: VOBU \d+ at (\d+)MB`)
	percentTailPattern = regexp.MustCompile(`\((\d+)%\)`)
	isoPercentPattern  = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
	burnRatioPattern   = regexp.MustCompile(`^\s*(\d+)/(\d+)\s*\(`)
	frameTimePattern   = regexp.MustCompile(`^frame=.*\btime=(\d+):(\d+):(\d+(?:\.\d+)?)`)
)

// TranscoderParser recognizes the transcoder's frame-count progress lines
// and converts the embedded timestamp into seconds of processed material.
// totalSeconds scales the maximum; without a known duration every line falls
// through to the logger.
func TranscoderParser(totalSeconds float64) LineParser {
	return func(p *ProcessAction, line string) {
		if totalSeconds > 0 {
			if m := frameTimePattern.FindStringSubmatch(line); m != nil {
				h, _ := strconv.ParseFloat(m[1], 64)
				min, _ := strconv.ParseFloat(m[2], 64)
				sec, _ := strconv.ParseFloat(m[3], 64)
				done := h*3600 + min*60 + sec
				if done > totalSeconds {
					done = totalSeconds
				}
				p.EmitProgress(int64(done), int64(totalSeconds))
				return
			}
		}
		p.LogLine(line)
	}
}

// AuthoringParser recognizes the authoring tool's STAT lines.
// estimatedTotalMB is the predicted total input size; it scales the first
// phase onto the lower half of the progress range.
func AuthoringParser(estimatedTotalMB int64) LineParser {
	return func(p *ProcessAction, line string) {
		if m := vobuLinePattern.FindStringSubmatch(line); m != nil {
			mb, err := strconv.ParseInt(m[1], 10, 64)
			if err == nil && estimatedTotalMB > 0 {
				current := mb * 100 / estimatedTotalMB
				if current > 100 {
					current = 100
				}
				p.EmitProgress(current, authoringProgressMax)
				return
			}
		}
		if strings.HasPrefix(line, "STAT:") {
			if m := percentTailPattern.FindStringSubmatch(line); m != nil {
				pct, err := strconv.ParseInt(m[1], 10, 64)
				if err == nil {
					if pct > 100 {
						pct = 100
					}
					p.EmitProgress(100+pct, authoringProgressMax)
					return
				}
			}
		}
		p.LogLine(line)
	}
}

// ISOImageParser recognizes the image tool's "NN.NN% done" lines.
func ISOImageParser() LineParser {
	return func(p *ProcessAction, line string) {
		if m := isoPercentPattern.FindStringSubmatch(line); m != nil {
			pct, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				if pct > 100 {
					pct = 100
				}
				p.EmitProgress(int64(pct), 100)
				return
			}
		}
		p.LogLine(line)
	}
}

// BurnParser recognizes the burning tool's "<current>/<maximum> (...)"
// byte-count lines. Both values are divided by 1000 so large media stay
// within 32-bit progress-counter range.
func BurnParser() LineParser {
	return func(p *ProcessAction, line string) {
		if m := burnRatioPattern.FindStringSubmatch(line); m != nil {
			current, errCur := strconv.ParseInt(m[1], 10, 64)
			maximum, errMax := strconv.ParseInt(m[2], 10, 64)
			if errCur == nil && errMax == nil && maximum > 0 {
				p.EmitProgress(current/1000, maximum/1000)
				return
			}
		}
		p.LogLine(line)
	}
}
