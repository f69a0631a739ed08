package ship

import (
	"math"
	"sort"

	"github.com/lawnchairsociety/shipyard/internal/geom"
	"github.com/lawnchairsociety/shipyard/internal/rng"
)

// PodShape names a cargo pod design.
type PodShape string

const (
	PodBox      PodShape = "box"
	PodCylinder PodShape = "cylinder"
	PodSphere   PodShape = "sphere"
	PodBarrel   PodShape = "barrel"
)

// PrefabThreshold is the pod mass below which pods snap to a standard size.
const PrefabThreshold = 200.0

// PrefabMasses are the standard pod sizes below PrefabThreshold.
var PrefabMasses = []float64{1, 2, 3, 5, 8, 13, 21, 34, 55, 89, 144}

// Pod is one cargo container, authored with its rear at z = 0 around the Z axis.
type Pod struct {
	Shape  PodShape
	Mass   float64
	Width  float64
	Height float64
	Length float64
	// Radius bounds the pod's cross-section around its own axis.
	Radius float64
	Node   *geom.Node
}

type podBuilder func(mass float64, r *rng.Rand) Pod

var podRegistry = map[PodShape]podBuilder{
	PodBox:      boxPod,
	PodCylinder: cylinderPod,
	PodSphere:   spherePod,
	PodBarrel:   barrelPod,
}

var podWeights = []struct {
	shape  PodShape
	weight float64
}{
	{PodBox, 3},
	{PodCylinder, 3},
	{PodSphere, 2},
	{PodBarrel, 2},
}

func pickPodShape(r *rng.Rand) PodShape {
	weights := make([]float64, len(podWeights))
	for i, w := range podWeights {
		weights[i] = w.weight
	}
	return podWeights[r.WeightedIndex(weights)].shape
}

// BuildPod sizes a pod of the given shape and mass. Unknown shapes fall back to a box.
func BuildPod(shape PodShape, mass float64, r *rng.Rand) Pod {
	build, ok := podRegistry[shape]
	if !ok {
		build = boxPod
	}
	return build(mass, r)
}

// PrefabPodMass returns the standard size nearest to target; ties go to the smaller size.
// Targets at or above PrefabThreshold are returned unchanged.
func PrefabPodMass(target float64) float64 {
	if target >= PrefabThreshold {
		return target
	}
	return PrefabMasses[nearestPrefab(target)]
}

func nearestPrefab(target float64) int {
	i := sort.SearchFloat64s(PrefabMasses, target)
	switch {
	case i == 0:
		return 0
	case i == len(PrefabMasses):
		return i - 1
	case target-PrefabMasses[i-1] <= PrefabMasses[i]-target:
		return i - 1
	default:
		return i
	}
}

// podMassFor picks the per-pod mass for units pods sharing target, stepping down through
// the prefab table while the total would exceed limit. When even the smallest prefab
// overshoots, the exact share is used instead.
func podMassFor(target float64, units int, limit float64) float64 {
	share := target / float64(units)
	if share >= PrefabThreshold {
		return share
	}
	for i := nearestPrefab(share); i >= 0; i-- {
		if PrefabMasses[i]*float64(units) <= limit {
			return PrefabMasses[i]
		}
	}
	return share
}

// BoxPodDepth returns the depth of a box of volume v with width a*d and height b*d.
func BoxPodDepth(v, a, b float64) float64 {
	return math.Cbrt(v / (a * b))
}

// CylinderPodRadius returns the radius of a cylinder of volume v and length 2*aspect*r.
func CylinderPodRadius(v, aspect float64) float64 {
	return math.Cbrt(v / (2 * math.Pi * aspect))
}

// SphereRadius returns the radius of a sphere of volume v.
func SphereRadius(v float64) float64 {
	return math.Cbrt(3 * v / (4 * math.Pi))
}

// BarrelRadius returns the mid radius of two mirrored frustums of half-length aspect*R
// tapering to taper*R at both ends.
func BarrelRadius(v, aspect, taper float64) float64 {
	return math.Cbrt(3 * v / (2 * math.Pi * aspect * (1 + taper + taper*taper)))
}

func boxPod(mass float64, r *rng.Rand) Pod {
	a := r.Range(0.5, 2.0)
	b := r.Range(0.5, 2.0)
	d := clampDim(BoxPodDepth(mass, a, b))
	w, h := clampDim(a*d), clampDim(b*d)
	return Pod{
		Shape:  PodBox,
		Mass:   mass,
		Width:  w,
		Height: h,
		Length: d,
		Radius: math.Hypot(w, h) / 2,
		Node: geom.NewGroup("pod").Add(
			geom.NewMesh("crate", geom.Box{Width: w, Height: h, Depth: d}, cargoMaterial).SetPosition(0, 0, d/2),
		),
	}
}

func cylinderPod(mass float64, r *rng.Rand) Pod {
	aspect := r.Range(0.8, 2.5)
	radius := clampDim(CylinderPodRadius(mass, aspect))
	length := clampDim(2 * aspect * radius)
	body := geom.NewMesh("tank", geom.Cylinder{
		RadiusTop:    radius,
		RadiusBottom: radius,
		Height:       length,
		Segments:     radialSegments(radius),
	}, cargoMaterial)
	return Pod{
		Shape:  PodCylinder,
		Mass:   mass,
		Width:  2 * radius,
		Height: 2 * radius,
		Length: length,
		Radius: radius,
		Node:   geom.NewGroup("pod").Add(alongZ(body, length/2)),
	}
}

func spherePod(mass float64, _ *rng.Rand) Pod {
	radius := clampDim(SphereRadius(mass))
	return Pod{
		Shape:  PodSphere,
		Mass:   mass,
		Width:  2 * radius,
		Height: 2 * radius,
		Length: 2 * radius,
		Radius: radius,
		Node: geom.NewGroup("pod").Add(
			geom.NewMesh("sphere", geom.Sphere{Radius: radius, Segments: radialSegments(radius)}, cargoMaterial).
				SetPosition(0, 0, radius),
		),
	}
}

func barrelPod(mass float64, r *rng.Rand) Pod {
	taper := r.Range(0.5, 0.85)
	aspect := r.Range(0.8, 1.6)
	mid := clampDim(BarrelRadius(mass, aspect, taper))
	end := clampDim(mid * taper)
	half := clampDim(aspect * mid)
	segments := radialSegments(mid)

	rear := geom.NewMesh("barrel-rear", geom.Cylinder{RadiusTop: mid, RadiusBottom: end, Height: half, Segments: segments}, cargoMaterial)
	front := geom.NewMesh("barrel-front", geom.Cylinder{RadiusTop: end, RadiusBottom: mid, Height: half, Segments: segments}, cargoMaterial)
	// docking collar across the belly, along X
	collar := geom.NewMesh("docking", geom.Cylinder{
		RadiusTop:    end * 0.5,
		RadiusBottom: end * 0.5,
		Height:       2 * mid,
		Segments:     radialSegments(end * 0.5),
	}, strutMaterial).SetRotation(0, 0, math.Pi/2).SetPosition(0, 0, half)

	return Pod{
		Shape:  PodBarrel,
		Mass:   mass,
		Width:  2 * mid,
		Height: 2 * mid,
		Length: 2 * half,
		Radius: mid,
		Node:   geom.NewGroup("pod").Add(alongZ(rear, half/2), alongZ(front, half*1.5), collar),
	}
}
