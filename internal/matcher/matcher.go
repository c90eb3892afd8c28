// Package matcher decides which listing records belong to a target
// executable path.
//
// A record matches when its path, case-folded, contains the case-folded
// target. Containment rather than equality is kept for callers that rely on
// partial paths; it also means a target that is a substring of an unrelated
// longer path (C:\App\app.exe inside C:\App2\App\app.exe) matches too.
package matcher

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"killpath/internal/listing"
)

// Matches returns the records whose path contains target, in listing order.
func Matches(target string, records []listing.Record) []listing.Record {
	if strings.TrimSpace(target) == "" {
		return nil
	}
	fold := cases.Fold()
	needle := fold.String(target)

	var out []listing.Record
	for _, rec := range records {
		if strings.Contains(fold.String(rec.ExecutablePath), needle) {
			out = append(out, rec)
		}
	}
	return out
}

// Select returns the pids of records matching target in encounter order.
// Repeated pids are emitted once; pids that are not positive integers are
// dropped.
func Select(target string, records []listing.Record) []int {
	matched := Matches(target, records)
	if len(matched) == 0 {
		return nil
	}

	seen := make(map[int]struct{}, len(matched))
	pids := make([]int, 0, len(matched))
	for _, rec := range matched {
		pid, ok := ParsePID(rec.ProcessID)
		if !ok {
			continue
		}
		if _, dup := seen[pid]; dup {
			continue
		}
		seen[pid] = struct{}{}
		pids = append(pids, pid)
	}
	return pids
}

// ParsePID parses a listing pid column. Pids must fit in 32 bits, the width
// every process API here takes.
func ParsePID(raw string) (int, bool) {
	pid, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || pid <= 0 {
		return 0, false
	}
	return int(pid), true
}
