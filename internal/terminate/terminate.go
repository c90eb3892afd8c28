// Package terminate ends processes by pid.
package terminate

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

const (
	KindTaskkill = "taskkill"
	KindNative   = "native"
)

// Terminator forcefully ends one process.
type Terminator interface {
	Terminate(ctx context.Context, pid int) error
	// Describe renders the action for progress output.
	Describe(pid int) string
}

// DefaultKind is taskkill on Windows and native everywhere else.
func DefaultKind() string {
	if runtime.GOOS == "windows" {
		return KindTaskkill
	}
	return KindNative
}

// New returns the terminator registered under kind.
func New(kind string) (Terminator, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "":
		return New(DefaultKind())
	case KindTaskkill:
		return Taskkill{}, nil
	case KindNative:
		return Native{}, nil
	default:
		return nil, fmt.Errorf("unknown terminator %q (expected %s or %s)", kind, KindTaskkill, KindNative)
	}
}

var runTaskkill = func(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "taskkill", args...).CombinedOutput()
}

// Taskkill runs `taskkill /F /PID <pid>`.
type Taskkill struct{}

// Terminate implements Terminator.
func (Taskkill) Terminate(ctx context.Context, pid int) error {
	output, err := runTaskkill(ctx, "/F", "/PID", strconv.Itoa(pid))
	if err != nil {
		return fmt.Errorf("taskkill failed for PID %d: %w (output: %s)", pid, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Describe implements Terminator.
func (Taskkill) Describe(pid int) string {
	return "taskkill /F /PID " + strconv.Itoa(pid)
}

type killer interface {
	KillWithContext(ctx context.Context) error
}

var findProcess = func(ctx context.Context, pid int32) (killer, error) {
	return process.NewProcessWithContext(ctx, pid)
}

// Native kills through the OS process API.
type Native struct{}

// Terminate implements Terminator.
func (Native) Terminate(ctx context.Context, pid int) error {
	if pid <= 0 || pid > math.MaxInt32 {
		return fmt.Errorf("invalid PID %d", pid)
	}
	p, err := findProcess(ctx, int32(pid))
	if err != nil {
		return fmt.Errorf("unable to find PID %d: %w", pid, err)
	}
	if err := p.KillWithContext(ctx); err != nil {
		return fmt.Errorf("failed to terminate process %d: %w", pid, err)
	}
	return nil
}

// Describe implements Terminator.
func (Native) Describe(pid int) string {
	return "kill " + strconv.Itoa(pid)
}

// Dry wraps a terminator and reports what it would do without ending
// anything.
type Dry struct {
	Next Terminator
}

// Terminate implements Terminator.
func (Dry) Terminate(context.Context, int) error {
	return nil
}

// Describe implements Terminator.
func (d Dry) Describe(pid int) string {
	if d.Next == nil {
		return "(dry run) pid " + strconv.Itoa(pid)
	}
	return "(dry run) " + d.Next.Describe(pid)
}

