package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"killpath/internal/app"
	"killpath/internal/listing"
)

type stubController struct {
	killFunc func(ctx context.Context, params app.KillParams) app.KillResult
	findFunc func(ctx context.Context, path string) (app.FindResult, error)
}

func (s *stubController) Kill(ctx context.Context, params app.KillParams) app.KillResult {
	if s.killFunc != nil {
		return s.killFunc(ctx, params)
	}
	panic("Kill not implemented")
}

func (s *stubController) Find(ctx context.Context, path string) (app.FindResult, error) {
	if s.findFunc != nil {
		return s.findFunc(ctx, path)
	}
	panic("Find not implemented")
}

func (s *stubController) Terminate(ctx context.Context, path string, pids []int, dryRun bool) []app.Event {
	panic("Terminate not implemented")
}

func withController(t *testing.T, stub controllerAPI) {
	t.Helper()
	origFactory := controllerFactory
	controllerFactory = func() (controllerAPI, func(), error) {
		return stub, func() {}, nil
	}
	t.Cleanup(func() {
		controllerFactory = origFactory
		flagDryRun = false
	})
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeFull(t, args...)
	return out, err
}

func executeFull(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(errBuf)
	rootCmd.SetArgs(append([]string{}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), errBuf.String(), err
}

const notepad = `C:\WINDOWS\system32\notepad.exe`

func TestKillPrintsDiagnostics(t *testing.T) {
	var got app.KillParams
	withController(t, &stubController{
		killFunc: func(ctx context.Context, params app.KillParams) app.KillResult {
			got = params
			return app.KillResult{Targets: []app.TargetReport{
				{Path: `C:\nope.exe`, Events: []app.Event{{Kind: app.EventNotFound, Path: `C:\nope.exe`}}},
				{Path: notepad, Events: []app.Event{
					{Kind: app.EventTerminateRequested, Path: notepad, PID: 6196, Action: "taskkill /F /PID 6196"},
					{Kind: app.EventTerminateFailure, Path: notepad, PID: 6056, Action: "taskkill /F /PID 6056", Err: errors.New("access denied")},
				}},
			}}
		},
	})

	out, errOut, err := executeFull(t, `C:\nope.exe`, notepad)
	if err != nil {
		t.Fatalf("kill must succeed regardless of outcome, got %v", err)
	}
	if len(got.Paths) != 2 || got.Paths[1] != notepad || got.DryRun {
		t.Fatalf("unexpected params: %+v", got)
	}
	want := `C:\nope.exe does not exist
C:\WINDOWS\system32\notepad.exe->taskkill /F /PID 6196
C:\WINDOWS\system32\notepad.exe->taskkill /F /PID 6056 failed: access denied
`
	if out != want {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(errOut, "1 termination(s) requested, 2 problem(s)") {
		t.Fatalf("expected summary on stderr, got %q", errOut)
	}
}

func TestKillDryRunFlag(t *testing.T) {
	var got app.KillParams
	withController(t, &stubController{
		killFunc: func(ctx context.Context, params app.KillParams) app.KillResult {
			got = params
			return app.KillResult{}
		},
	})
	_, errOut, err := executeFull(t, "--dry-run", notepad)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.DryRun {
		t.Fatalf("expected dry run to be requested")
	}
	if !strings.Contains(errOut, "0 termination(s) planned, 0 problem(s)") {
		t.Fatalf("unexpected summary %q", errOut)
	}
}

func TestKillWithoutArgsShowsHelp(t *testing.T) {
	withController(t, &stubController{})
	out, err := execute(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Usage:") {
		t.Fatalf("expected usage, got %q", out)
	}
}

func TestKillControllerError(t *testing.T) {
	expected := errors.New("load config: bad yaml")
	origFactory := controllerFactory
	controllerFactory = func() (controllerAPI, func(), error) { return nil, nil, expected }
	t.Cleanup(func() { controllerFactory = origFactory })

	_, err := execute(t, notepad)
	if !errors.Is(err, expected) {
		t.Fatalf("expected %v, got %v", expected, err)
	}
}

func TestFindCommand(t *testing.T) {
	withController(t, &stubController{
		findFunc: func(ctx context.Context, path string) (app.FindResult, error) {
			switch path {
			case notepad:
				return app.FindResult{
					Path:    path,
					Image:   "notepad.exe",
					Records: []listing.Record{{ExecutablePath: path, ProcessID: "6196"}},
					PIDs:    []int{6196},
				}, nil
			case `C:\idle.exe`:
				return app.FindResult{Path: path, Image: "idle.exe"}, nil
			default:
				return app.FindResult{Path: path}, app.ErrNotFound
			}
		},
	})

	out, err := execute(t, "find", notepad, `C:\idle.exe`, `C:\gone.exe`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `pid=6196 exe=C:\WINDOWS\system32\notepad.exe
idle.exe is not running
C:\gone.exe: path does not exist
`
	if out != want {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "killpath dev\n" {
		t.Fatalf("unexpected output %q", out)
	}
}
