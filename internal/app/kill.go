package app

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"killpath/internal/source"
	"killpath/internal/terminate"
)

// KillParams configures a kill run.
type KillParams struct {
	Paths  []string
	DryRun bool
}

// Kill finds and terminates every running instance of each path. Targets
// are processed independently; a failure on one never stops the next.
func (a *App) Kill(ctx context.Context, params KillParams) KillResult {
	term := a.terminator
	if params.DryRun {
		term = terminate.Dry{Next: a.terminator}
	}

	var result KillResult
	for _, path := range params.Paths {
		result.Targets = append(result.Targets, a.killTarget(ctx, term, path))
	}
	return result
}

func (a *App) killTarget(ctx context.Context, term terminate.Terminator, path string) TargetReport {
	found, err := a.Find(ctx, path)
	report := TargetReport{Path: path, Image: found.Image, PIDs: found.PIDs}
	base := Event{Path: path, Image: found.Image}

	switch {
	case errors.Is(err, ErrNotFound):
		a.log.Debugw("target missing", "path", path, "error", err)
		base.Kind, base.Err = EventNotFound, err
		report.Events = append(report.Events, base)
		return report
	case errors.Is(err, ErrInaccessible):
		a.log.Warnw("target inaccessible", "path", path, "error", err)
		base.Kind, base.Err = EventInaccessible, err
		report.Events = append(report.Events, base)
		return report
	case err != nil:
		a.log.Warnw("listing failed", "path", path, "error", err)
		base.Kind, base.Err = EventListingFailure, err
		report.Events = append(report.Events, base)
		return report
	case !found.Running():
		base.Kind = EventNotRunning
		report.Events = append(report.Events, base)
		return report
	}

	report.Events = a.dispatch(ctx, term, path, found.Image, found.PIDs)
	return report
}

// Terminate ends an explicit set of pids belonging to path, for callers that
// pick a subset of Find's result.
func (a *App) Terminate(ctx context.Context, path string, pids []int, dryRun bool) []Event {
	term := a.terminator
	if dryRun {
		term = terminate.Dry{Next: a.terminator}
	}
	return a.dispatch(ctx, term, path, source.ImageName(path), pids)
}

// dispatch issues one termination per pid concurrently. Every outcome is
// recorded; none is retried or rolled back.
func (a *App) dispatch(ctx context.Context, term terminate.Terminator, path, image string, pids []int) []Event {
	events := make([]Event, len(pids))
	var g errgroup.Group
	g.SetLimit(a.parallelism)
	for i, pid := range pids {
		g.Go(func() error {
			kctx, cancel := context.WithTimeout(ctx, a.killTimeout)
			defer cancel()

			ev := Event{
				Kind:   EventTerminateRequested,
				Path:   path,
				Image:  image,
				PID:    pid,
				Action: term.Describe(pid),
			}
			if err := term.Terminate(kctx, pid); err != nil {
				a.log.Warnw("terminate failed", "path", path, "pid", pid, "error", err)
				ev.Kind, ev.Err = EventTerminateFailure, err
			}
			events[i] = ev
			return nil
		})
	}
	_ = g.Wait()
	return events
}
