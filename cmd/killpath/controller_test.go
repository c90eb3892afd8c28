package main

import (
	"os"
	"path/filepath"
	"testing"

	"killpath/internal/config"
)

func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		configPath, flagSource, flagListingFile, flagTerminator, flagLogLevel = "", "", "", "", ""
	})
}

func TestApplyFlagOverrides(t *testing.T) {
	resetFlags(t)
	flagSource = "powershell"
	flagListingFile = "saved.txt"
	flagTerminator = "native"
	flagLogLevel = "debug"

	cfg := config.Default()
	applyFlagOverrides(&cfg)
	if cfg.Source != "powershell" || cfg.ListingFile != "saved.txt" || cfg.Terminator != "native" || cfg.LogLevel != "debug" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
}

func TestNewControllerFromListingFile(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	listingPath := filepath.Join(dir, "listing.txt")
	target := filepath.Join(dir, "app.exe")
	for path, body := range map[string]string{
		listingPath: "ExecutablePath ProcessId\n" + target + " 4242\n\n",
		target:      "",
	} {
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	flagListingFile = listingPath
	flagTerminator = "native"

	controller, done, err := newController()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer done()

	res, err := controller.Find(t.Context(), target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.PIDs) != 1 || res.PIDs[0] != 4242 {
		t.Fatalf("unexpected pids: %v", res.PIDs)
	}
}

func TestNewControllerRejectsUnknownSource(t *testing.T) {
	resetFlags(t)
	flagSource = "tasklist"
	if _, _, err := newController(); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}
