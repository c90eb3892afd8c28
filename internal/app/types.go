package app

import (
	"errors"
	"fmt"

	"killpath/internal/listing"
)

var (
	// ErrNotFound marks a target path that does not exist on disk.
	ErrNotFound = errors.New("path does not exist")
	// ErrInaccessible marks a target path that exists but cannot be checked.
	ErrInaccessible = errors.New("path is not accessible")
	// ErrListing marks a listing source that could not be run or read.
	ErrListing = errors.New("process listing failed")
)

// EventKind classifies one outcome of a kill run.
type EventKind string

const (
	EventNotFound           EventKind = "not_found"
	EventInaccessible       EventKind = "inaccessible"
	EventListingFailure     EventKind = "listing_failure"
	EventNotRunning         EventKind = "not_running"
	EventTerminateRequested EventKind = "terminate_requested"
	EventTerminateFailure   EventKind = "terminate_failure"
)

// Event describes one action taken, or skipped, for a target.
type Event struct {
	Kind   EventKind
	Path   string
	Image  string
	PID    int
	Action string
	Err    error
}

// Message renders the event as a progress line.
func (e Event) Message() string {
	switch e.Kind {
	case EventNotFound:
		return fmt.Sprintf("%s does not exist", e.Path)
	case EventInaccessible, EventListingFailure:
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	case EventNotRunning:
		return fmt.Sprintf("%s is not running", e.Image)
	case EventTerminateRequested:
		return fmt.Sprintf("%s->%s", e.Path, e.Action)
	case EventTerminateFailure:
		return fmt.Sprintf("%s->%s failed: %v", e.Path, e.Action, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Path, e.Kind)
	}
}

// FindResult is the outcome of looking up one target.
type FindResult struct {
	Path  string
	Image string
	// Records are the listing rows matching the target.
	Records []listing.Record
	// PIDs are the validated, de-duplicated pids of Records.
	PIDs []int
}

// Running reports whether at least one instance was found.
func (r FindResult) Running() bool {
	return len(r.PIDs) > 0
}

// TargetReport aggregates what happened to one target path.
type TargetReport struct {
	Path   string
	Image  string
	PIDs   []int
	Events []Event
}

// KillResult is informational only; failures never escalate to an error.
type KillResult struct {
	Targets []TargetReport
}

// Requested counts termination requests that were issued without error.
func (r KillResult) Requested() int {
	return r.count(EventTerminateRequested)
}

// Failures counts every event that is not a successful request.
func (r KillResult) Failures() int {
	total := 0
	for _, t := range r.Targets {
		total += len(t.Events)
	}
	return total - r.Requested()
}

// Diagnostics returns every event message in order.
func (r KillResult) Diagnostics() []string {
	var out []string
	for _, t := range r.Targets {
		for _, ev := range t.Events {
			out = append(out, ev.Message())
		}
	}
	return out
}

func (r KillResult) count(kind EventKind) int {
	n := 0
	for _, t := range r.Targets {
		for _, ev := range t.Events {
			if ev.Kind == kind {
				n++
			}
		}
	}
	return n
}
