// Package export writes ships to YAML, JSON and Wavefront OBJ.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/shipyard/internal/geom"
	"github.com/lawnchairsociety/shipyard/internal/mesh"
	"github.com/lawnchairsociety/shipyard/internal/ship"
)

// Format is an export file format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatOBJ  Format = "obj"
)

// ErrUnknownFormat is returned for formats other than yaml, json and obj.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts a format name or file extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "obj":
		return FormatOBJ, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type served for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatJSON:
		return "application/json"
	case FormatOBJ:
		return "model/obj"
	default:
		return "application/octet-stream"
	}
}

// Write dispatches on format.
func Write(w io.Writer, format Format, s *ship.Ship) error {
	switch format {
	case FormatYAML:
		return WriteYAML(w, s)
	case FormatJSON:
		return WriteJSON(w, s)
	case FormatOBJ:
		return WriteOBJ(w, s)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteYAML writes the ship snapshot with a short header.
func WriteYAML(w io.Writer, s *ship.Ship) error {
	snap := s.Snapshot()

	// Write header comment
	fmt.Fprintf(w, "# Ship %s\n", snap.Seed)
	fmt.Fprintf(w, "# Mass: %.2f  Length: %.2f\n", snap.Budget.Total, snap.TotalLength)
	fmt.Fprintf(w, "# Fingerprint: %s\n\n", snap.Fingerprint)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}

// WriteJSON writes the ship snapshot as indented JSON.
func WriteJSON(w io.Writer, s *ship.Ship) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.Snapshot()); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// WriteOBJ tessellates the ship and writes it in world space.
func WriteOBJ(w io.Writer, s *ship.Ship) error {
	scene := mesh.NewScene()
	root := geom.Realize(scene, s.Root)
	defer scene.Release(root)

	fmt.Fprintf(w, "# Ship %s\n", s.Seed)
	return scene.WriteOBJ(w, root)
}
