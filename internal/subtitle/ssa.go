package subtitle

import (
	"strconv"
	"strings"
	"time"
)

// Cue is one timed subtitle frame.
type Cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// SSADecoder consumes an SSA or ASS script line by line and emits dialogue
// cues. Feed lines in file order; the decoder tracks the [Events] section and
// its Format: field layout itself.
type SSADecoder struct {
	inEvents     bool
	formatFields []string
}

// Feed processes one script line. It returns the decoded cue and true when
// the line was a dialogue event, and a zero cue and false otherwise.
func (d *SSADecoder) Feed(line string) (Cue, bool) {
	line = strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		d.inEvents = strings.EqualFold(trimmed, "[Events]")
		return Cue{}, false
	}
	if !d.inEvents {
		return Cue{}, false
	}

	if rest, ok := cutPrefixFold(trimmed, "Format:"); ok {
		d.formatFields = nil
		for _, f := range strings.Split(rest, ",") {
			d.formatFields = append(d.formatFields, strings.ToLower(strings.TrimSpace(f)))
		}
		return Cue{}, false
	}

	rest, ok := cutPrefixFold(trimmed, "Dialogue:")
	if !ok {
		return Cue{}, false
	}
	return d.decodeDialogue(rest)
}

func (d *SSADecoder) decodeDialogue(rest string) (Cue, bool) {
	fields := d.formatFields
	if len(fields) == 0 {
		// The V4+ default layout.
		fields = []string{
			"layer", "start", "end", "style", "name",
			"marginl", "marginr", "marginv", "effect", "text",
		}
	}
	// Text is always the last field and may itself contain commas.
	parts := strings.SplitN(rest, ",", len(fields))
	if len(parts) < len(fields) {
		return Cue{}, false
	}

	var cue Cue
	for i, name := range fields {
		value := strings.TrimSpace(parts[i])
		switch name {
		case "start":
			t, err := parseSSATime(value)
			if err != nil {
				return Cue{}, false
			}
			cue.Start = t
		case "end":
			t, err := parseSSATime(value)
			if err != nil {
				return Cue{}, false
			}
			cue.End = t
		case "text":
			cue.Text = cleanDialogueText(parts[i])
		}
	}
	if cue.End <= cue.Start || cue.Text == "" {
		return Cue{}, false
	}
	return cue, true
}

// parseSSATime decodes "H:MM:SS.cc" (centisecond precision).
func parseSSATime(s string) (time.Duration, error) {
	var h, m int
	var sec float64
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, strconv.ErrSyntax
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	m, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	sec, err = strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec*float64(time.Second)), nil
}

// cleanDialogueText converts SSA markup to plain text: override blocks
// {\...} are dropped, \N and \n become line breaks, \h becomes a space.
func cleanDialogueText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case depth > 0:
			// Inside an override block.
		case c == '\\' && i+1 < len(s):
			switch s[i+1] {
			case 'N', 'n':
				b.WriteByte('\n')
			case 'h':
				b.WriteByte(' ')
			default:
				b.WriteByte(c)
				b.WriteByte(s[i+1])
			}
			i++
		default:
			b.WriteByte(c)
		}
	}
	return strings.TrimSpace(b.String())
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(s[len(prefix):]), true
}
