package subtitle

import (
	"fmt"
	"io"
	"time"
)

// SRTWriter appends cues to a SubRip-format stream, numbering them as it
// goes.
type SRTWriter struct {
	w io.Writer
	n int
}

// NewSRTWriter returns a writer emitting SubRip onto w.
func NewSRTWriter(w io.Writer) *SRTWriter {
	return &SRTWriter{w: w}
}

// Append writes one cue.
func (s *SRTWriter) Append(cue Cue) error {
	s.n++
	_, err := fmt.Fprintf(s.w, "%d\n%s --> %s\n%s\n\n",
		s.n, srtTimestamp(cue.Start), srtTimestamp(cue.End), cue.Text)
	return err
}

// Count returns the number of cues written so far.
func (s *SRTWriter) Count() int { return s.n }

// srtTimestamp renders "HH:MM:SS,mmm".
func srtTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	sec := d / time.Second
	d -= sec * time.Second
	ms := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, sec, ms)
}
