package ship

import (
	"fmt"
	"math"

	"github.com/lawnchairsociety/shipyard/internal/geom"
	"github.com/lawnchairsociety/shipyard/internal/rng"
)

// DeckShape names a command deck design.
type DeckShape string

const (
	DeckBox        DeckShape = "box"
	DeckCylinder   DeckShape = "cylinder"
	DeckHammerhead DeckShape = "hammerhead"
	DeckTrapezoid  DeckShape = "trapezoid"
)

// CommandDeck is the bow section.
type CommandDeck struct {
	Section
	Shape   DeckShape
	Windows []Window
	// Orientation is the deck's quarter-turn rotation about the ship axis, 0 to 3.
	Orientation int
	// Taper is the front-to-rear ratio for tapered shapes, 1 when untapered.
	Taper float64
}

type deckBuilder func(mass float64, r *rng.Rand) *CommandDeck

var deckRegistry = map[DeckShape]deckBuilder{
	DeckBox:        boxDeck,
	DeckCylinder:   cylinderDeck,
	DeckHammerhead: hammerheadDeck,
	DeckTrapezoid:  trapezoidDeck,
}

var deckWeights = []struct {
	shape  DeckShape
	weight float64
}{
	{DeckBox, 3},
	{DeckCylinder, 3},
	{DeckHammerhead, 2},
	{DeckTrapezoid, 2},
}

// GenerateCommandDeck picks a deck design and sizes it to mass.
func GenerateCommandDeck(mass float64, r *rng.Rand) *CommandDeck {
	weights := make([]float64, len(deckWeights))
	for i, w := range deckWeights {
		weights[i] = w.weight
	}
	shape := deckWeights[r.WeightedIndex(weights)].shape
	return BuildCommandDeck(shape, mass, r)
}

// BuildCommandDeck sizes a deck of a specific design. Unknown designs fall back to a box.
func BuildCommandDeck(shape DeckShape, mass float64, r *rng.Rand) *CommandDeck {
	build, ok := deckRegistry[shape]
	if !ok {
		build = boxDeck
	}
	d := build(mass, r)
	d.Kind = SectionCommandDeck
	d.Mass = mass
	d.measure()
	return d
}

// PrismatoidDepth returns the depth of a prismatoid of volume v whose rear face is
// (a*D) x (b*D) and whose front face is scaled by tw and th.
func PrismatoidDepth(v, a, b, tw, th float64) float64 {
	factor := 1 + tw*th + (1+tw)*(1+th)
	return math.Cbrt(6 * v / (a * b * factor))
}

func windowDepth(w, h float64) float64 {
	return clampDim(math.Min(w, h) * 0.04)
}

func windowMeshes(windows []Window, depth float64) []*geom.Node {
	nodes := make([]*geom.Node, len(windows))
	for i, w := range windows {
		nodes[i] = geom.NewMesh(fmt.Sprintf("window-%d", i), geom.Box{Width: w.Width, Height: w.Height, Depth: depth}, windowMaterial)
	}
	return nodes
}

func boxDeck(mass float64, r *rng.Rand) *CommandDeck {
	a := r.Range(0.6, 1.6)
	b := r.Range(0.4, 1.0)
	d := clampDim(BoxPodDepth(mass, a, b))
	w, h := clampDim(a*d), clampDim(b*d)

	group := geom.NewGroup("command-deck").Add(
		geom.NewMesh("bridge", geom.Box{Width: w, Height: h, Depth: d}, deckMaterial).SetPosition(0, 0, d/2),
	)
	windows := PlanWindows(w, h, r)
	depth := windowDepth(w, h)
	for i, n := range windowMeshes(windows, depth) {
		group.Add(n.SetPosition(windows[i].X, windows[i].Y, d+depth/2))
	}
	return &CommandDeck{Section: Section{Mesh: group}, Shape: DeckBox, Windows: windows, Taper: 1}
}

func cylinderDeck(mass float64, r *rng.Rand) *CommandDeck {
	aspect := r.Range(0.8, 2.5)
	taper := 1.0
	if r.Chance(0.5) {
		taper = r.Range(0.4, 0.9)
	}
	rear := clampDim(BarrelRadius(mass, aspect, taper))
	length := clampDim(2 * aspect * rear)
	front := clampDim(rear * taper)
	segments := max(8, min(64, int(math.Round(2*math.Pi*rear/0.4))))

	body := geom.NewMesh("bridge", geom.Cylinder{
		RadiusTop:    front,
		RadiusBottom: rear,
		Height:       length,
		Segments:     segments,
	}, deckMaterial)
	return &CommandDeck{
		Section: Section{Mesh: geom.NewGroup("command-deck").Add(alongZ(body, length/2))},
		Shape:   DeckCylinder,
		Taper:   taper,
	}
}

func hammerheadDeck(mass float64, r *rng.Rand) *CommandDeck {
	aspect := r.Range(2.0, 4.0)
	vertical := r.Chance(0.5)
	radius := clampDim(CylinderPodRadius(mass, aspect))
	span := clampDim(2 * aspect * radius)

	bar := geom.NewMesh("hammerhead", geom.Cylinder{
		RadiusTop:    radius,
		RadiusBottom: radius,
		Height:       span,
		Segments:     radialSegments(radius),
	}, deckMaterial).SetPosition(0, 0, radius)
	orientation := 1
	if !vertical {
		bar.SetRotation(0, 0, math.Pi/2)
		orientation = 0
	}
	return &CommandDeck{
		Section:     Section{Mesh: geom.NewGroup("command-deck").Add(bar)},
		Shape:       DeckHammerhead,
		Orientation: orientation,
		Taper:       1,
	}
}

// trapezoidDeck is a wedge: the front face is shrunk and dropped onto the floor line,
// so the top slopes down towards the bow and carries the windows.
func trapezoidDeck(mass float64, r *rng.Rand) *CommandDeck {
	a := r.Range(0.7, 1.5)
	b := r.Range(0.4, 0.9)
	mode := r.Int(0, 2)
	tw, th := 1.0, 1.0
	if mode != 1 {
		tw = r.Range(0.4, 0.85)
	}
	if mode != 0 {
		th = r.Range(0.4, 0.85)
	}
	orientation := r.Int(0, 3)

	depth := clampDim(PrismatoidDepth(mass, a, b, tw, th))
	w, h := clampDim(a*depth), clampDim(b*depth)
	fw, fh := w*tw, h*th
	floor := -h / 2

	hull := geom.Hull{Vertices: [8]geom.Vec3{
		{X: -w / 2, Y: -h / 2, Z: 0},
		{X: w / 2, Y: -h / 2, Z: 0},
		{X: w / 2, Y: h / 2, Z: 0},
		{X: -w / 2, Y: h / 2, Z: 0},
		{X: -fw / 2, Y: floor, Z: depth},
		{X: fw / 2, Y: floor, Z: depth},
		{X: fw / 2, Y: floor + fh, Z: depth},
		{X: -fw / 2, Y: floor + fh, Z: depth},
	}}
	group := geom.NewGroup("command-deck").Add(geom.NewMesh("bridge", hull, deckMaterial))

	drop := h - fh
	wd := windowDepth(fw, fh)
	var windows []Window
	if drop <= 0 {
		// no slope, so the windows go on the front face
		windows = PlanWindows(fw, fh, r)
		for i, n := range windowMeshes(windows, wd) {
			group.Add(n.SetPosition(windows[i].X, floor+fh/2+windows[i].Y, depth+wd/2))
		}
	} else {
		slant := math.Hypot(depth, drop)
		windows = PlanWindows(fw, slant, r)
		// face frame on the sloped top: u runs down the slope towards the bow, n is outward
		centre := geom.Vec3{Y: (h/2 + floor + fh) / 2, Z: depth / 2}
		u := geom.Vec3{Y: -drop / slant, Z: depth / slant}
		n := geom.Vec3{Y: depth / slant, Z: drop / slant}
		tilt := math.Atan2(drop, depth) - math.Pi/2
		for i, m := range windowMeshes(windows, wd) {
			p := centre.Add(u.Scale(windows[i].Y)).Add(n.Scale(wd / 2))
			group.Add(m.SetPosition(windows[i].X, p.Y, p.Z).SetRotation(tilt, 0, 0))
		}
	}

	group.SetRotation(0, 0, float64(orientation)*math.Pi/2)
	return &CommandDeck{
		Section:     Section{Mesh: group},
		Shape:       DeckTrapezoid,
		Windows:     windows,
		Orientation: orientation,
		Taper:       tw * th,
	}
}
