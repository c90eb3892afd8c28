// Package listing turns the tabular text printed by process listing tools
// into (executable path, pid) records.
package listing

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
)

// HeaderMarker must appear in the first line of a listing.
const HeaderMarker = "ExecutablePath"

// ErrNoHeader reports a listing without the expected header, which the
// listing tools print when no process carries the requested image name.
var ErrNoHeader = errors.New("listing has no " + HeaderMarker + " header")

// Record is one parsed row. ProcessID is kept as printed; numeric
// validation happens at selection time.
type Record struct {
	ExecutablePath string
	ProcessID      string
}

// Parse extracts records from a raw listing. The first line must be the
// header; the last line is the terminator (or a truncated row) and is never
// parsed. Short rows are skipped.
func Parse(raw string) ([]Record, error) {
	lines := splitLines(raw)
	if len(lines) == 0 || !HasHeader(lines[0]) {
		return nil, ErrNoHeader
	}
	if len(lines) < 3 {
		return nil, nil
	}

	records := make([]Record, 0, len(lines)-2)
	for _, line := range lines[1 : len(lines)-1] {
		rec, ok := parseRow(line)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// HasHeader reports whether line carries the header marker, ignoring case.
func HasHeader(line string) bool {
	fold := cases.Fold()
	return strings.Contains(fold.String(line), fold.String(HeaderMarker))
}

// splitLines splits on CR/LF with runs of terminators collapsed. Leading
// blank lines are dropped; a trailing terminator yields one empty line so
// the final element is always the terminator or an unterminated row.
func splitLines(raw string) []string {
	var lines []string
	start := -1
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\r' && c != '\n' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			lines = append(lines, raw[start:i])
			start = -1
		}
	}
	switch {
	case start >= 0:
		lines = append(lines, raw[start:])
	case len(lines) > 0:
		lines = append(lines, "")
	}
	return dropLeadingBlank(lines)
}

func dropLeadingBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	return lines
}

// parseRow splits a data row into path and pid. The path may contain
// spaces, so it is everything before the last token.
func parseRow(line string) (Record, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return Record{}, false
	}
	last := len(tokens) - 1
	return Record{
		ExecutablePath: strings.Join(tokens[:last], " "),
		ProcessID:      tokens[last],
	}, true
}
