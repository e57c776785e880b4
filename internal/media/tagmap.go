package media

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// TagMap is the flat key/value store produced by the probing tool. Keys are
// dotted paths such as "format.duration" or "streams.stream.0.codec_name".
type TagMap struct {
	values map[string]string
}

// ParseTagMap reads the probing tool's flat text output. Lines look like
//
//	format.duration="5414.171000"
//	streams.stream.0.codec_name="mpeg2video"
//
// Values may or may not be quoted; malformed lines are skipped.
func ParseTagMap(output string) *TagMap {
	tm := &TagMap{values: make(map[string]string)}
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])
		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}
		tm.values[key] = value
	}
	return tm
}

// NewTagMap returns an empty map, useful for tests and merges.
func NewTagMap() *TagMap {
	return &TagMap{values: make(map[string]string)}
}

// Set stores a raw value.
func (tm *TagMap) Set(key, value string) {
	tm.values[key] = value
}

// Len reports the number of stored tags.
func (tm *TagMap) Len() int { return len(tm.values) }

// Str returns the raw value for key, empty when absent.
func (tm *TagMap) Str(key string) string {
	return tm.values[key]
}

// Has reports whether key is present.
func (tm *TagMap) Has(key string) bool {
	_, ok := tm.values[key]
	return ok
}

// Int returns the integer value for key, or fallback when absent/invalid.
func (tm *TagMap) Int(key string, fallback int) int {
	raw, ok := tm.values[key]
	if !ok {
		return fallback
	}
	// Probes sometimes report integers with a fractional tail.
	if dot := strings.IndexByte(raw, '.'); dot > 0 {
		raw = raw[:dot]
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return parsed
}

// Float returns the float value for key, or fallback when absent/invalid.
func (tm *TagMap) Float(key string, fallback float64) float64 {
	raw, ok := tm.values[key]
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// StreamKey builds the dotted key for a per-stream field.
func StreamKey(index int, field string) string {
	return fmt.Sprintf("streams.stream.%d.%s", index, field)
}

// StreamStr returns a per-stream string value.
func (tm *TagMap) StreamStr(index int, field string) string {
	return tm.Str(StreamKey(index, field))
}

// StreamInt returns a per-stream integer value.
func (tm *TagMap) StreamInt(index int, field string, fallback int) int {
	return tm.Int(StreamKey(index, field), fallback)
}

// StreamFloat returns a per-stream float value.
func (tm *TagMap) StreamFloat(index int, field string, fallback float64) float64 {
	return tm.Float(StreamKey(index, field), fallback)
}

// StreamCount returns the number of probed streams, preferring the explicit
// format tag and falling back to scanning stream indices.
func (tm *TagMap) StreamCount() int {
	if n := tm.Int("format.nb_streams", -1); n >= 0 {
		return n
	}
	count := 0
	for tm.Has(StreamKey(count, "codec_type")) || tm.Has(StreamKey(count, "codec_name")) {
		count++
	}
	return count
}
