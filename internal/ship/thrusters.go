package ship

import (
	"fmt"
	"math"

	"github.com/lawnchairsociety/shipyard/internal/geom"
	"github.com/lawnchairsociety/shipyard/internal/layout"
	"github.com/lawnchairsociety/shipyard/internal/rng"
)

// ThrusterSection is the aft-most section. Its layout feeds the engine block.
type ThrusterSection struct {
	Section
	Layout    layout.Kind
	IsRadial  bool
	Positions []layout.Point
	Count     int
	// Power is the per-thruster power after the count was rounded.
	Power    float64
	Diameter float64
}

// ThrusterPowerRange returns the allowable per-thruster power for a ship mass.
func ThrusterPowerRange(mass float64) (lo, hi float64) {
	lo = math.Max(MinThrusterPower, mass/MaxThrusterCount)
	hi = math.Min(MaxThrusterPower, mass/MinThrusterCount)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// ThrusterCount derives the number of thrusters for a drawn power, in [1, 33].
func ThrusterCount(mass, power float64) int {
	if power <= 0 {
		return MinThrusterCount
	}
	n := int(math.Round(mass / power))
	return max(MinThrusterCount, min(MaxThrusterCount, n))
}

// ThrusterDiameter maps power to nozzle diameter, preserving area = scale * power.
func ThrusterDiameter(power float64) float64 {
	area := ThrusterAreaScale * power
	return 2 * math.Sqrt(area/math.Pi)
}

// GenerateThrusters sizes and places the thrusters for the whole ship mass.
func GenerateThrusters(mass float64, r *rng.Rand) *ThrusterSection {
	lo, hi := ThrusterPowerRange(mass)
	drawn := r.Range(lo, hi)
	count := ThrusterCount(mass, drawn)
	power := mass / float64(count)
	diameter := clampDim(ThrusterDiameter(power))

	chosen := layout.Choose(count, diameter, r)

	radius := diameter / 2
	nozzleLength := clampDim(diameter * 0.9)
	glowLength := clampDim(nozzleLength * 0.5)
	segments := radialSegments(radius)

	group := geom.NewGroup("thrusters")
	for i, p := range chosen.Points {
		nozzle := geom.NewMesh("nozzle", geom.Cylinder{
			RadiusTop:    radius * 0.75,
			RadiusBottom: radius,
			Height:       nozzleLength,
			Segments:     segments,
		}, thrusterMaterial)
		// the glow's base sits in the nozzle mouth and its tip points into the hull
		glow := geom.NewMesh("glow", geom.Cone{
			Radius:   radius * 0.85,
			Height:   glowLength,
			Segments: segments,
		}, glowMaterial)

		thruster := geom.NewGroup(fmt.Sprintf("thruster-%d", i)).SetPosition(p.X, p.Y, 0)
		thruster.Add(alongZ(nozzle, nozzleLength/2), alongZ(glow, glowLength/2))
		group.Add(thruster)
	}

	s := &ThrusterSection{
		Section:   Section{Kind: SectionThrusters, Mesh: group},
		Layout:    chosen.Kind,
		IsRadial:  chosen.IsRadial(),
		Positions: chosen.Points,
		Count:     count,
		Power:     power,
		Diameter:  diameter,
	}
	s.measure()
	return s
}
