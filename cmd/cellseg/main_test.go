package main

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		wantErr bool
		usage   bool
	}{
		{
			name: "valid",
			argv: []string{"in.png", "out.png", "30", "cyto", "0.4", "0.0"},
		},
		{
			name:    "too few arguments",
			argv:    []string{"in.png", "out.png", "30", "cyto", "0.4"},
			wantErr: true,
			usage:   true,
		},
		{
			name:    "too many arguments",
			argv:    []string{"in.png", "out.png", "30", "cyto", "0.4", "0.0", "extra"},
			wantErr: true,
			usage:   true,
		},
		{
			name:    "non-numeric diameter",
			argv:    []string{"in.png", "out.png", "big", "cyto", "0.4", "0.0"},
			wantErr: true,
		},
		{
			name:    "negative diameter",
			argv:    []string{"in.png", "out.png", "-3", "cyto", "0.4", "0.0"},
			wantErr: true,
		},
		{
			name:    "non-numeric flow threshold",
			argv:    []string{"in.png", "out.png", "30", "cyto", "abc", "0.0"},
			wantErr: true,
		},
		{
			name:    "non-numeric cellprob threshold",
			argv:    []string{"in.png", "out.png", "30", "cyto", "0.4", "abc"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, err := parseArgs(tc.argv)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if tc.usage != errors.Is(err, errUsage) {
					t.Errorf("errUsage = %v, want %v (err: %v)", errors.Is(err, errUsage), tc.usage, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseArgs failed: %v", err)
			}
			if a.diameter != 30 || a.model != "cyto" || a.flowThresh != 0.4 || a.probThresh != 0 {
				t.Errorf("parsed args = %+v", a)
			}
		})
	}
}

func TestRun_UsageError(t *testing.T) {
	if got := run([]string{"only", "two"}); got != 1 {
		t.Errorf("exit = %d, want 1", got)
	}
}

func TestRun_MissingInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.png")

	got := run([]string{filepath.Join(dir, "missing.png"), out, "30", "cyto", "0.4", "0.0"})
	if got != 1 {
		t.Errorf("exit = %d, want 1", got)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Error("output file must not be created on input failure")
	}
}

func TestRun_MissingModel(t *testing.T) {
	// A readable input but no model weights: decode succeeds, model load
	// fails, no output written.
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")

	img := image.NewGray(image.Rect(0, 0, 8, 8))
	img.SetGray(4, 4, color.Gray{Y: 255})
	f, err := os.Create(in)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	t.Setenv("HOME", dir) // default model dir resolves under an empty home

	got := run([]string{in, out, "30", "no-such-model", "0.4", "0.0"})
	if got != 1 {
		t.Errorf("exit = %d, want 1", got)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Error("output file must not be created on model failure")
	}
}
