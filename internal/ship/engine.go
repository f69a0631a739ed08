package ship

import (
	"math"

	"github.com/lawnchairsociety/shipyard/internal/geom"
	"github.com/lawnchairsociety/shipyard/internal/layout"
	"github.com/lawnchairsociety/shipyard/internal/rng"
)

// EngineShape is the body the engine block takes.
type EngineShape string

const (
	EngineFrustum EngineShape = "frustum"
	EngineBox     EngineShape = "box"
)

// EngineBlock sits directly in front of the thrusters and covers their footprint.
type EngineBlock struct {
	Section
	Shape EngineShape
	// RearRadius and FrontRadius are zero for a box block.
	RearRadius  float64
	FrontRadius float64
}

// EngineMassFraction draws the engine block's share of the ship mass.
// Heavier ships get a smaller share: the ceiling falls linearly from 30% to 10%.
func EngineMassFraction(shipMass float64, r *rng.Rand) float64 {
	ceiling := 0.30 - 0.20*massScale(shipMass)
	return r.Range(0.05, ceiling)
}

// FrustumDepth returns the depth a frustum needs to hold volume between two radii.
func FrustumDepth(volume, rear, front float64) float64 {
	return 3 * volume / (math.Pi * (rear*rear + rear*front + front*front))
}

// GenerateEngineBlock builds a block of the given mass whose rear face covers every thruster.
func GenerateEngineBlock(thr *ThrusterSection, mass float64, r *rng.Rand) *EngineBlock {
	radius := thr.Diameter / 2
	var e *EngineBlock

	if thr.IsRadial {
		rear := clampDim(layout.MaxRadius(thr.Positions) + radius*1.1)
		front := rear
		if r.Chance(0.5) {
			front = clampDim(rear * r.Range(0.75, 1.0))
		}
		depth := clampDim(FrustumDepth(mass, rear, front))
		body := geom.NewMesh("engine-block", geom.Cylinder{
			RadiusTop:    front,
			RadiusBottom: rear,
			Height:       depth,
			Segments:     radialSegments(rear),
		}, engineMaterial)
		e = &EngineBlock{
			Section:     Section{Kind: SectionEngineBlock, Mesh: geom.NewGroup("engine").Add(alongZ(body, depth/2))},
			Shape:       EngineFrustum,
			RearRadius:  rear,
			FrontRadius: front,
		}
	} else {
		minX, minY, maxX, maxY := layout.Bounds(thr.Positions)
		pad := thr.Diameter * 0.15
		w := clampDim(maxX - minX + thr.Diameter + 2*pad)
		h := clampDim(maxY - minY + thr.Diameter + 2*pad)
		depth := clampDim(mass / (w * h))
		body := geom.NewMesh("engine-block", geom.Box{Width: w, Height: h, Depth: depth}, engineMaterial).
			SetPosition((minX+maxX)/2, (minY+maxY)/2, depth/2)
		e = &EngineBlock{
			Section: Section{Kind: SectionEngineBlock, Mesh: geom.NewGroup("engine").Add(body)},
			Shape:   EngineBox,
		}
	}

	e.Mass = mass
	e.measure()
	return e
}
