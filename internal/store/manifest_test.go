package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ytget/template-overlay/internal/model"
)

func TestLoadManifest_MissingFileIsEmpty(t *testing.T) {
	m, err := LoadManifest(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(m.Templates) != 0 || m.Settings == nil {
		t.Errorf("expected empty manifest with settings map, got %+v", m)
	}
}

func TestSaveManifest_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "templates.yaml")
	in := Manifest{
		Templates: []model.TemplateRecord{record(3, "author", "Castle")},
		Settings: map[string]model.TemplateSettings{
			"3 author": {Enabled: model.BoolPtr(false), DisplayName: "Keep"},
		},
	}

	data, err := SaveManifest(path, in)
	if err != nil {
		t.Fatalf("SaveManifest failed: %v", err)
	}
	if !strings.Contains(string(data), "coords: [10, 20, 30, 40]") {
		t.Errorf("coords should be written in flow style:\n%s", data)
	}

	out, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if out.Version != ManifestVersion {
		t.Errorf("expected version %d, got %d", ManifestVersion, out.Version)
	}
	if len(out.Templates) != 1 || out.Templates[0].Coords != in.Templates[0].Coords {
		t.Errorf("templates not preserved: %+v", out.Templates)
	}
	s := out.Settings["3 author"]
	if s.EnabledOrDefault() || s.DisplayName != "Keep" {
		t.Errorf("settings not preserved: %+v", s)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %d entries", len(entries))
	}
}

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    int
		wantErr bool
	}{
		{name: "empty", data: "", want: 0},
		{name: "legacy key", data: "templates:\n  - key: \"4 bob\"\n    name: x\n", want: 1},
		{name: "future version", data: "version: 99\n", wantErr: true},
		{name: "malformed", data: "templates: [", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseManifest([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %t", err, tt.wantErr)
			}
			if err == nil && len(m.Templates) != tt.want {
				t.Errorf("expected %d templates, got %d", tt.want, len(m.Templates))
			}
		})
	}
}
