package app

import (
	"context"
	"io/fs"
	"os"
	"strconv"
	"sync"
)

type fakeSource struct {
	listings map[string]string
	err      error

	mu    sync.Mutex
	calls []string
}

func (f *fakeSource) Listing(ctx context.Context, image string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, image)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.listings[image], nil
}

type fakeTerminator struct {
	fail map[int]error

	mu   sync.Mutex
	pids []int
}

func (f *fakeTerminator) Terminate(ctx context.Context, pid int) error {
	f.mu.Lock()
	f.pids = append(f.pids, pid)
	f.mu.Unlock()
	return f.fail[pid]
}

func (f *fakeTerminator) Describe(pid int) string {
	return "taskkill /F /PID " + strconv.Itoa(pid)
}

func (f *fakeTerminator) terminated() map[int]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int]bool, len(f.pids))
	for _, pid := range f.pids {
		out[pid] = true
	}
	return out
}

// existing returns a stat func that only knows the given paths.
func existing(paths ...string) func(string) (os.FileInfo, error) {
	known := make(map[string]bool, len(paths))
	for _, p := range paths {
		known[p] = true
	}
	return func(name string) (os.FileInfo, error) {
		if known[name] {
			return nil, nil
		}
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
}

const notepadPath = `C:\WINDOWS\system32\notepad.exe`

const notepadListing = "ExecutablePath                   ProcessId  \r\r\n" +
	"C:\\WINDOWS\\system32\\notepad.exe  6196       \r\r\n" +
	"D:\\portable\\notepad.exe          7001       \r\r\n" +
	"C:\\WINDOWS\\system32\\notepad.exe  6056       \r\r\n" +
	"\r\r\n"
