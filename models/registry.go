// Package models names the pretrained Cellpose model variants and resolves
// their ONNX weight files on disk.
package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrWeightsNotFound indicates no weight file could be resolved for a
	// model name.
	ErrWeightsNotFound = errors.New("models: weight file not found")
)

// Type identifies a pretrained model variant.
type Type int

const (
	// Cyto is the generic cytoplasm model.
	Cyto Type = iota

	// Nuclei is the nucleus model.
	Nuclei

	// Cyto2 is the second-generation cytoplasm model.
	Cyto2

	// Custom is any model name outside the known set, resolved purely by
	// weight-file lookup.
	Custom
)

// Model is a named pretrained model variant.
type Model struct {
	Type Type
	Name string
}

// Parse maps a model name to its variant. Unknown names become Custom and
// carry the raw name; validity is decided at weight resolution, not here.
func Parse(name string) Model {
	switch name {
	case "cyto":
		return Model{Type: Cyto, Name: name}
	case "nuclei":
		return Model{Type: Nuclei, Name: name}
	case "cyto2":
		return Model{Type: Cyto2, Name: name}
	default:
		return Model{Type: Custom, Name: name}
	}
}

// DiamMean returns the object diameter, in pixels, the variant was trained
// at. Images are rescaled so their objects match this before inference.
func (m Model) DiamMean() float64 {
	if m.Type == Nuclei {
		return 17.0
	}
	return 30.0
}

func (m Model) String() string { return m.Name }

// DefaultDir returns the default model weight directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cellseg/models"
	}
	return filepath.Join(home, ".cellseg", "models")
}

// Resolve locates the ONNX weight file for m under dir. The manifest, when
// present, takes precedence over the <name>.onnx convention.
func Resolve(m Model, dir string) (string, error) {
	if dir == "" {
		dir = DefaultDir()
	}

	manifest, err := loadManifest(dir)
	if err != nil {
		return "", err
	}
	if p, ok := manifest.lookup(m.Name); ok {
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("%w: manifest entry %q: %s", ErrWeightsNotFound, m.Name, p)
		}
		return p, nil
	}

	p := filepath.Join(dir, m.Name+".onnx")
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("%w: %s", ErrWeightsNotFound, p)
	}
	return p, nil
}
