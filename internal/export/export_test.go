package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/shipyard/internal/ship"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"yaml", FormatYAML, false},
		{"YML", FormatYAML, false},
		{".json", FormatJSON, false},
		{" obj ", FormatOBJ, false},
		{"stl", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		got, err := ParseFormat(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if tc.wantErr && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ParseFormat(%q) error = %v, want ErrUnknownFormat", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWriteYAML(t *testing.T) {
	s := ship.Generate("export-yaml")
	var buf bytes.Buffer
	if err := WriteYAML(&buf, s); err != nil {
		t.Fatalf("WriteYAML() failed: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "# Ship export-yaml\n") {
		t.Errorf("missing header, got %q", out[:min(len(out), 40)])
	}

	var snap ship.Snapshot
	if err := yaml.Unmarshal(buf.Bytes(), &snap); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if snap.Seed != "export-yaml" {
		t.Errorf("Seed = %q, want export-yaml", snap.Seed)
	}
	if snap.Fingerprint != s.Fingerprint() {
		t.Errorf("Fingerprint = %q, want %q", snap.Fingerprint, s.Fingerprint())
	}
	if len(snap.Sections) != 4 {
		t.Errorf("got %d sections, want 4", len(snap.Sections))
	}
}

func TestWriteJSON(t *testing.T) {
	s := ship.Generate("export-json")
	var buf bytes.Buffer
	if err := WriteJSON(&buf, s); err != nil {
		t.Fatalf("WriteJSON() failed: %v", err)
	}

	var snap ship.Snapshot
	if err := json.Unmarshal(buf.Bytes(), &snap); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if snap.TotalLength != s.TotalLength {
		t.Errorf("TotalLength = %v, want %v", snap.TotalLength, s.TotalLength)
	}
}

func TestWriteOBJ(t *testing.T) {
	s := ship.Generate("export-obj")
	var buf bytes.Buffer
	if err := Write(&buf, FormatOBJ, s); err != nil {
		t.Fatalf("Write(obj) failed: %v", err)
	}
	if got, want := strings.Count(buf.String(), "\no "), s.Root.MeshCount(); got != want {
		t.Errorf("OBJ has %d objects, want %d", got, want)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("stl"), ship.Generate("x"))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Write(stl) error = %v, want ErrUnknownFormat", err)
	}
}

func TestContentType(t *testing.T) {
	if got := FormatOBJ.ContentType(); got != "model/obj" {
		t.Errorf("FormatOBJ.ContentType() = %q", got)
	}
	if got := Format("x").ContentType(); got != "application/octet-stream" {
		t.Errorf("unknown ContentType() = %q", got)
	}
}
