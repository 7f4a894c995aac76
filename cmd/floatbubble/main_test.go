package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/floatbubble/internal/config"
)

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceFile, File: "/tmp/c.yaml", Line: 3, Column: 5}, "file:/tmp/c.yaml:3:5"},
		{config.Source{Kind: config.SourceFile, File: "/tmp/c.yaml"}, "file:/tmp/c.yaml"},
		{config.Source{Kind: config.SourceFile}, "file"},
		{config.Source{Kind: config.SourceDefault, Name: "defaults"}, "default:defaults"},
		{config.Source{Kind: config.SourceDefault}, "default"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Errorf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestRunMoveRejectsBadArguments(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"10"},
		{"x", "10"},
		{"10", "y"},
		{"1", "2", "3"},
	} {
		if code := runMove(args); code != 2 {
			t.Errorf("runMove(%q) = %d, want 2", args, code)
		}
	}
}

func TestNoArgCommandsRejectArguments(t *testing.T) {
	for name, run := range map[string]func([]string) int{
		"status":  runStatus,
		"metrics": runMetrics,
		"snap":    runSnap,
		"toggle":  runToggle,
		"reload":  runReload,
	} {
		if code := run([]string{"extra"}); code != 2 {
			t.Errorf("%s with an argument = %d, want 2", name, code)
		}
		if code := run([]string{"-h"}); code != 0 {
			t.Errorf("%s -h = %d, want 0", name, code)
		}
	}
}

func TestRunConfigValidate(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("bubble:\n  width: 48\n  height: 48\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if code := runConfig([]string{"validate", "--path", good}); code != 0 {
		t.Fatalf("expected valid config, got exit %d", code)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("bubble:\n  width: -1\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if code := runConfig([]string{"validate", "--path", bad}); code != 1 {
		t.Fatalf("expected invalid config to exit 1, got %d", code)
	}
}

func TestRunConfigUnknownSubcommand(t *testing.T) {
	if code := runConfig([]string{"frobnicate"}); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if code := runConfig(nil); code != 2 {
		t.Fatalf("expected usage exit 2, got %d", code)
	}
}
