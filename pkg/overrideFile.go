package chaninfo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Lines shorter than this, once the comment is removed, carry no entry.
const minOverrideLineLength = 20

const (
	overrideWireKind   = 1
	overrideSensorKind = 2
)

// OverrideEntry pairs a detector channel with a geometry element.
type OverrideEntry struct {
	Channel  ChannelId
	Geometry GeometryId
}

// LoadOverrideFile reads a channel map override file. Each entry line has
// six integers:
//
//	crate card channel kind plane wire
//
// where kind is 1 for a wire and 2 for a photosensor (plane is then
// ignored and wire is the sensor number). '#' starts a comment.
func LoadOverrideFile(filename string) ([]OverrideEntry, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()
	return ParseOverrides(file, filename)
}

func ParseOverrides(r io.Reader, name string) ([]OverrideEntry, error) {
	entries := make([]OverrideEntry, 0)
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if len(line) < minOverrideLineLength {
			continue
		}
		entry, ok := parseOverrideLine(line)
		if !ok {
			return nil, &ErrParseOverride{Filename: name, Line: lineNumber, Text: strings.TrimSpace(line)}
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", name, err)
	}

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Read %d channel overrides from %s", len(entries), name)
		logger.Info(message, "override")
	}
	return entries, nil
}

func parseOverrideLine(line string) (OverrideEntry, bool) {
	fields := strings.Fields(line)
	if len(fields) != 6 {
		return OverrideEntry{}, false
	}
	values := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return OverrideEntry{}, false
		}
		values[i] = v
	}

	channel := NewTPCChannelId(values[0], values[1], values[2])
	var geometry GeometryId
	switch values[3] {
	case overrideWireKind:
		geometry = NewWireId(Plane(values[4]), values[5])
	case overrideSensorKind:
		geometry = NewPhotosensorId(values[5])
	}
	if !channel.IsValid() || !geometry.IsValid() {
		return OverrideEntry{}, false
	}
	return OverrideEntry{Channel: channel, Geometry: geometry}, true
}
