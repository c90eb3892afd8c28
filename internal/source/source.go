// Package source produces raw process listings in the two-column
// ExecutablePath/ProcessId table understood by package listing.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

const (
	KindWMIC       = "wmic"
	KindPowerShell = "powershell"
	KindFile       = "file"
)

// ErrInvalidName is returned for image names that cannot be embedded in a
// listing query.
var ErrInvalidName = errors.New("invalid image name")

// Source returns the listing of processes running the given image name.
type Source interface {
	Listing(ctx context.Context, image string) (string, error)
}

// New builds the source registered under kind. file is only used by the
// file source.
func New(kind, file string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindWMIC, "":
		return WMIC{}, nil
	case KindPowerShell:
		return PowerShell{}, nil
	case KindFile:
		if file == "" {
			return nil, errors.New("file source requires a listing path")
		}
		return File{Path: file}, nil
	default:
		return nil, fmt.Errorf("unknown listing source %q (expected %s, %s or %s)", kind, KindWMIC, KindPowerShell, KindFile)
	}
}

// ImageName returns the file name component of a Windows or POSIX path.
func ImageName(path string) string {
	if idx := strings.LastIndexAny(path, `\/`); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

func validateName(image string) error {
	if strings.TrimSpace(image) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if strings.ContainsAny(image, "'\"") {
		return fmt.Errorf("%w: %q contains quotes", ErrInvalidName, image)
	}
	return nil
}

// WMIC lists processes with the wmic utility.
type WMIC struct{}

// Listing implements Source.
func (WMIC) Listing(ctx context.Context, image string) (string, error) {
	if err := validateName(image); err != nil {
		return "", err
	}
	out, err := runCommand(ctx, "wmic", "process", "where", "name='"+image+"'", "get", "executablepath,processid")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// PowerShell lists processes through Get-CimInstance, for hosts where wmic
// has been removed.
type PowerShell struct{}

// Listing implements Source.
func (PowerShell) Listing(ctx context.Context, image string) (string, error) {
	if err := validateName(image); err != nil {
		return "", err
	}
	script := "Get-CimInstance Win32_Process | Where-Object Name -eq '" + image + "' | " +
		"Format-Table ExecutablePath,ProcessId -AutoSize | Out-String -Width 4096"
	out, err := runCommand(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// File serves a saved listing. Path "-" reads Stdin (os.Stdin when nil).
type File struct {
	Path  string
	Stdin io.Reader
}

// Listing implements Source. The image name is ignored; the saved listing
// is returned as is.
func (f File) Listing(ctx context.Context, image string) (string, error) {
	if f.Path == "-" {
		in := f.Stdin
		if in == nil {
			in = os.Stdin
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read listing from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("read listing file: %w", err)
	}
	return string(data), nil
}

var runCommand = execCommand

// execCommand runs name and drains its stdout until EOF.
func execCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%s stdout pipe: %w", name, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}

	var out bytes.Buffer
	_, readErr := out.ReadFrom(stdout)
	waitErr := cmd.Wait()
	if readErr != nil {
		return nil, fmt.Errorf("read %s output: %w", name, readErr)
	}
	if waitErr != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s failed: %w", name, waitErr)
		}
		return nil, fmt.Errorf("%s failed: %w (%s)", name, waitErr, msg)
	}
	return out.Bytes(), nil
}
