// Package ship generates a spaceship hull from a text seed.
//
// A ship is four sections laid end to end along +Z: thrusters, engine block, cargo
// section and command deck. Every section is authored with its rear face at local z = 0
// and sized from a share of a single mass budget under a unit-density assumption, so
// volume equals mass throughout.
package ship

import (
	"math"

	"github.com/lawnchairsociety/shipyard/internal/geom"
)

// Contract ranges; changing these changes every ship.
const (
	MinShipMass = 10.0
	MaxShipMass = 1000.0

	MinThrusterPower = 5.0
	MaxThrusterPower = 250.0
	MinThrusterCount = 1
	MaxThrusterCount = 33

	// ThrusterAreaScale converts thruster power into nozzle cross-section area.
	ThrusterAreaScale = 0.05

	// MinDimension is the floor for every derived linear size.
	MinDimension = 0.05
)

// SectionKind identifies one of the four hull sections.
type SectionKind string

const (
	SectionThrusters   SectionKind = "thrusters"
	SectionEngineBlock SectionKind = "engine_block"
	SectionCargo       SectionKind = "cargo"
	SectionCommandDeck SectionKind = "command_deck"
)

// Section is the result every section generator returns.
type Section struct {
	Kind SectionKind
	Mesh *geom.Node
	// Length is the extent along +Z; Width and Height are the lateral extents.
	Length float64
	Width  float64
	Height float64
	// Mass is the share of the ship's mass budget the section consumed.
	Mass float64
}

// measure fills Length, Width and Height from the mesh, which must still sit at its origin.
func (s *Section) measure() {
	b := s.Mesh.Bounds()
	size := b.Size()
	s.Length = b.Max.Z
	s.Width = size.X
	s.Height = size.Y
}

// clampDim forces a linear dimension to be finite and at least MinDimension.
func clampDim(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < MinDimension {
		return MinDimension
	}
	return v
}

// massScale maps a ship mass onto [0, 1] across the contract range.
func massScale(mass float64) float64 {
	s := (mass - MinShipMass) / (MaxShipMass - MinShipMass)
	return math.Max(0, math.Min(1, s))
}

// radialSegments scales polygon resolution with circumference.
func radialSegments(radius float64) int {
	n := int(math.Round(2 * math.Pi * radius / 0.5))
	return max(8, min(48, n))
}

// alongZ turns a Y-axis primitive so its +Y end faces the bow.
func alongZ(n *geom.Node, centreZ float64) *geom.Node {
	return n.SetRotation(math.Pi/2, 0, 0).SetPosition(0, 0, centreZ)
}

var (
	engineMaterial   = geom.Material{Name: "engine", Color: 0x5a6270, FlatShading: true, Opacity: 1}
	thrusterMaterial = geom.Material{Name: "thruster", Color: 0x3b3f45, FlatShading: true, Opacity: 1}
	glowMaterial     = geom.Material{Name: "glow", Color: 0x66ccff, Opacity: 0.8, Emissive: true}
	cargoMaterial    = geom.Material{Name: "cargo", Color: 0xb08d57, FlatShading: true, Opacity: 1}
	strutMaterial    = geom.Material{Name: "strut", Color: 0x4d5359, FlatShading: true, Opacity: 1}
	deckMaterial     = geom.Material{Name: "deck", Color: 0xc7ccd1, FlatShading: true, Opacity: 1}
	windowMaterial   = geom.Material{Name: "window", Color: 0x9fe3ff, Opacity: 0.9, Emissive: true}
)
