package ship

import (
	"fmt"
	"math"

	"github.com/lawnchairsociety/shipyard/internal/geom"
	"github.com/lawnchairsociety/shipyard/internal/layout"
	"github.com/lawnchairsociety/shipyard/internal/rng"
)

// CargoRequest is what the assembler asks of the cargo generator.
type CargoRequest struct {
	// TargetMass is the desired cargo mass; the realised mass may differ after prefab snapping.
	TargetMass float64
	// LimitMass is the hard ceiling on the realised mass.
	LimitMass float64
	// ShipMass scales how many pods and segments are drawn.
	ShipMass float64
}

// CargoSection is a run of identical segments, each an arrangement of identical pods.
type CargoSection struct {
	Section
	Pod            Pod
	PodsPerSegment int
	Segments       int
	Arrangement    layout.Kind
	PodPositions   []layout.Point
	// Gap is the spacing between consecutive segments; zero when segments touch.
	Gap float64
	// TunnelLength is the total length taken up by gaps.
	TunnelLength float64
	// Stagger is the Z rotation applied to every other segment.
	Stagger      float64
	TargetMass   float64
	RealizedMass float64
}

// CargoUnits draws pods per segment and segment count; both grow with ship mass.
func CargoUnits(shipMass float64, r *rng.Rand) (pods, segments int) {
	scale := massScale(shipMass)
	pods = r.Int(1, 1+int(math.Round(scale*7)))
	segments = r.Int(1, 1+int(math.Round(scale*4)))
	return pods, segments
}

// GenerateCargo builds the cargo section. The realised mass never exceeds req.LimitMass.
func GenerateCargo(req CargoRequest, r *rng.Rand) *CargoSection {
	podsPer, segments := CargoUnits(req.ShipMass, r)
	shape := pickPodShape(r)
	units := podsPer * segments

	limit := req.LimitMass
	if limit <= 0 || limit < req.TargetMass {
		limit = req.TargetMass
	}
	podMass := podMassFor(req.TargetMass, units, limit)
	pod := BuildPod(shape, podMass, r)

	arrangement, points := arrangePods(podsPer, 2*pod.Radius, r)

	gap := 0.0
	if segments > 1 && r.Chance(0.5) {
		gap = clampDim(pod.Length * r.Range(0.15, 0.5))
	}
	stagger := 0.0
	if segments > 1 && arrangement == layout.KindRadial && r.Chance(0.5) {
		stagger = math.Pi / float64(podsPer)
	}

	segment := buildCargoSegment(pod, arrangement, points)
	group := geom.NewGroup("cargo")
	pitch := pod.Length + gap
	for i := 0; i < segments; i++ {
		z := float64(i) * pitch
		seg := segment.Clone()
		seg.Name = fmt.Sprintf("cargo-segment-%d", i)
		seg.SetPosition(0, 0, z)
		if i%2 == 1 {
			seg.Rotation.Z = stagger
		}
		if i > 0 && gap > 0 {
			tunnel := geom.NewMesh(fmt.Sprintf("tunnel-%d", i), geom.Cylinder{
				RadiusTop:    clampDim(pod.Radius * 0.3),
				RadiusBottom: clampDim(pod.Radius * 0.3),
				Height:       gap,
				Segments:     radialSegments(pod.Radius * 0.3),
			}, strutMaterial)
			group.Add(alongZ(tunnel, z-gap/2))
		}
		group.Add(seg)
	}

	c := &CargoSection{
		Section:        Section{Kind: SectionCargo, Mesh: group, Mass: podMass * float64(units)},
		Pod:            pod,
		PodsPerSegment: podsPer,
		Segments:       segments,
		Arrangement:    arrangement,
		PodPositions:   points,
		Gap:            gap,
		TunnelLength:   gap * float64(segments-1),
		Stagger:        stagger,
		TargetMass:     req.TargetMass,
		RealizedMass:   podMass * float64(units),
	}
	c.measure()
	return c
}

// arrangePods lays out one segment's pods: radial or grid with equal odds,
// falling back to radial when no grid factorisation exists.
func arrangePods(count int, unit float64, r *rng.Rand) (layout.Kind, []layout.Point) {
	if count == 1 {
		return layout.KindSingle, []layout.Point{{X: 0, Y: 0}}
	}
	if r.Chance(0.5) {
		if pts, ok := layout.Grid(count, unit, r); ok {
			return layout.KindGrid, pts
		}
	}
	return layout.KindRadial, layout.Radial(count, unit, r)
}

// buildCargoSegment places pods around the axis. Pods standing off the axis by more
// than their own radius are tied to a central spine with struts.
func buildCargoSegment(pod Pod, arrangement layout.Kind, points []layout.Point) *geom.Node {
	seg := geom.NewGroup("cargo-segment")
	strutRadius := clampDim(pod.Radius * 0.12)
	struts := 0

	for i, p := range points {
		n := pod.Node.Clone()
		n.Name = fmt.Sprintf("pod-%d", i)
		n.SetPosition(p.X, p.Y, 0)
		angle := math.Atan2(p.Y, p.X)
		if arrangement == layout.KindRadial && pod.Shape == PodBox {
			n.Rotation.Z = angle
		}
		seg.Add(n)

		dist := p.Dist()
		if dist <= pod.Radius {
			continue
		}
		strut := geom.NewMesh(fmt.Sprintf("strut-%d", i), geom.Cylinder{
			RadiusTop:    strutRadius,
			RadiusBottom: strutRadius,
			Height:       dist,
			Segments:     8,
		}, strutMaterial).
			SetRotation(0, 0, angle-math.Pi/2).
			SetPosition(p.X/2, p.Y/2, pod.Length/2)
		seg.Add(strut)
		struts++
	}

	if struts > 0 {
		spine := geom.NewMesh("spine", geom.Cylinder{
			RadiusTop:    strutRadius * 1.5,
			RadiusBottom: strutRadius * 1.5,
			Height:       pod.Length,
			Segments:     radialSegments(strutRadius * 1.5),
		}, strutMaterial)
		seg.Add(alongZ(spine, pod.Length/2))
	}
	return seg
}
