package store

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ytget/template-overlay/internal/model"
)

// ManifestVersion is written to every saved manifest
const ManifestVersion = 1

// Manifest is the on-disk form of the store
type Manifest struct {
	Version   int                               `yaml:"version"`
	Templates []model.TemplateRecord            `yaml:"templates"`
	Settings  map[string]model.TemplateSettings `yaml:"settings,omitempty"`
}

// LoadManifest reads the manifest at path. A missing file yields an empty
// manifest.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Manifest{Version: ManifestVersion, Settings: map[string]model.TemplateSettings{}}, nil
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes manifest YAML
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if len(bytes.TrimSpace(data)) == 0 {
		return Manifest{Version: ManifestVersion, Settings: map[string]model.TemplateSettings{}}, nil
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Version > ManifestVersion {
		return Manifest{}, fmt.Errorf("parse manifest: unsupported version %d", m.Version)
	}
	if m.Settings == nil {
		m.Settings = map[string]model.TemplateSettings{}
	}
	return m, nil
}

// SaveManifest writes m to path through a temporary file and rename, so
// readers never see a partial manifest. It returns the written content.
func SaveManifest(path string, m Manifest) ([]byte, error) {
	m.Version = ManifestVersion

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create manifest directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".manifest-*.yaml")
	if err != nil {
		return nil, fmt.Errorf("create temp manifest: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("replace manifest: %w", err)
	}
	return buf.Bytes(), nil
}
