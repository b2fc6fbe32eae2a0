package models

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType Type
	}{
		{"cyto", "cyto", Cyto},
		{"nuclei", "nuclei", Nuclei},
		{"cyto2", "cyto2", Cyto2},
		{"unknown falls back to custom", "livecell", Custom},
		{"empty is custom", "", Custom},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := Parse(tc.input)
			if m.Type != tc.wantType {
				t.Errorf("Parse(%q).Type = %v, want %v", tc.input, m.Type, tc.wantType)
			}
			if m.Name != tc.input {
				t.Errorf("Parse(%q).Name = %q, want the input", tc.input, m.Name)
			}
		})
	}
}

func TestDiamMean(t *testing.T) {
	if got := Parse("nuclei").DiamMean(); got != 17.0 {
		t.Errorf("nuclei DiamMean = %v, want 17", got)
	}
	if got := Parse("cyto").DiamMean(); got != 30.0 {
		t.Errorf("cyto DiamMean = %v, want 30", got)
	}
	if got := Parse("whatever").DiamMean(); got != 30.0 {
		t.Errorf("custom DiamMean = %v, want 30", got)
	}
}

func TestResolve_Convention(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cyto.onnx")
	if err := os.WriteFile(path, []byte("weights"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Resolve(Parse("cyto"), dir)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != path {
		t.Errorf("Resolve = %q, want %q", got, path)
	}
}

func TestResolve_NotFound(t *testing.T) {
	_, err := Resolve(Parse("cyto"), t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing weights")
	}
	if !errors.Is(err, ErrWeightsNotFound) {
		t.Errorf("expected ErrWeightsNotFound, got: %v", err)
	}
}

func TestResolve_Manifest(t *testing.T) {
	dir := t.TempDir()
	weights := filepath.Join(dir, "third-party.onnx")
	if err := os.WriteFile(weights, []byte("weights"), 0o644); err != nil {
		t.Fatal(err)
	}
	manifest := "models:\n  livecell: third-party.onnx\n"
	if err := os.WriteFile(filepath.Join(dir, manifestFile), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Resolve(Parse("livecell"), dir)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != weights {
		t.Errorf("Resolve = %q, want %q", got, weights)
	}
}

func TestResolve_ManifestDanglingEntry(t *testing.T) {
	dir := t.TempDir()
	manifest := "models:\n  livecell: gone.onnx\n"
	if err := os.WriteFile(filepath.Join(dir, manifestFile), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Resolve(Parse("livecell"), dir)
	if !errors.Is(err, ErrWeightsNotFound) {
		t.Errorf("expected ErrWeightsNotFound, got: %v", err)
	}
}

func TestResolve_MalformedManifest(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, manifestFile), []byte("models: ["), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Resolve(Parse("cyto"), dir)
	if err == nil {
		t.Fatal("expected error for malformed manifest")
	}
}
