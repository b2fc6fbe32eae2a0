package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// manifestFile is the optional per-directory mapping of model names to
// weight files, for models whose weights do not follow the <name>.onnx
// convention.
const manifestFile = "manifest.yaml"

type manifest struct {
	// Models maps a model name to a weight path, absolute or relative to
	// the manifest's directory.
	Models map[string]string `yaml:"models"`
}

func (m *manifest) lookup(name string) (string, bool) {
	if m == nil || m.Models == nil {
		return "", false
	}
	p, ok := m.Models[name]
	return p, ok
}

// loadManifest reads dir's manifest. A missing manifest is not an error; a
// malformed one is.
func loadManifest(dir string) (*manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading model manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing model manifest: %w", err)
	}
	return &m, nil
}
