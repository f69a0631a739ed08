package ship

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/lawnchairsociety/shipyard/internal/geom"
	"github.com/lawnchairsociety/shipyard/internal/layout"
	"github.com/lawnchairsociety/shipyard/internal/rng"
)

const eps = 1e-9

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func findMesh(n *geom.Node, name string) *geom.Node {
	var found *geom.Node
	n.Walk(func(node *geom.Node, _ int) bool {
		if found == nil && node.Name == name && node.Shape != nil {
			found = node
		}
		return found == nil
	})
	return found
}

func TestClampDim(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.5, 1.5},
		{MinDimension, MinDimension},
		{0.01, MinDimension},
		{0, MinDimension},
		{-3, MinDimension},
		{math.NaN(), MinDimension},
		{math.Inf(1), MinDimension},
		{math.Inf(-1), MinDimension},
	}

	for _, tc := range tests {
		if got := clampDim(tc.in); got != tc.want {
			t.Errorf("clampDim(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestThrusterPowerRange(t *testing.T) {
	tests := []struct {
		mass   float64
		lo, hi float64
	}{
		{10, 5, 10},
		{100, 5, 100},
		{330, 10, 250},
		{1000, 1000.0 / 33, 250},
	}

	for _, tc := range tests {
		lo, hi := ThrusterPowerRange(tc.mass)
		if !near(lo, tc.lo, eps) || !near(hi, tc.hi, eps) {
			t.Errorf("ThrusterPowerRange(%v) = [%v, %v], want [%v, %v]", tc.mass, lo, hi, tc.lo, tc.hi)
		}
	}
}

func TestThrusterCount(t *testing.T) {
	tests := []struct {
		mass, power float64
		want        int
	}{
		{10, 10, 1},
		{10, 25, 1}, // rounds to zero, forced to one
		{100, 10, 10},
		{1000, 5, 33},
		{10, 0, 1},
	}

	for _, tc := range tests {
		if got := ThrusterCount(tc.mass, tc.power); got != tc.want {
			t.Errorf("ThrusterCount(%v, %v) = %d, want %d", tc.mass, tc.power, got, tc.want)
		}
	}
}

func TestThrusterDiameterPreservesArea(t *testing.T) {
	for _, power := range []float64{5, 30, 250} {
		d := ThrusterDiameter(power)
		area := math.Pi * d * d / 4
		if !near(area, ThrusterAreaScale*power, eps) {
			t.Errorf("ThrusterDiameter(%v) gives area %v, want %v", power, area, ThrusterAreaScale*power)
		}
	}
}

func TestGenerateThrusters(t *testing.T) {
	for i := 0; i < 60; i++ {
		seed := fmt.Sprintf("thrusters-%d", i)
		mass := MinShipMass + float64(i)*(MaxShipMass-MinShipMass)/59
		s := GenerateThrusters(mass, rng.New(seed))

		if s.Count < MinThrusterCount || s.Count > MaxThrusterCount {
			t.Errorf("%s: Count = %d, out of range", seed, s.Count)
		}
		if len(s.Positions) != s.Count {
			t.Errorf("%s: %d positions for %d thrusters", seed, len(s.Positions), s.Count)
		}
		if !near(s.Power*float64(s.Count), mass, eps) {
			t.Errorf("%s: Power*Count = %v, want %v", seed, s.Power*float64(s.Count), mass)
		}
		if s.Count > 1 && layout.MinDistance(s.Positions) < s.Diameter-eps {
			t.Errorf("%s: thrusters overlap: min distance %v < diameter %v", seed, layout.MinDistance(s.Positions), s.Diameter)
		}
		if s.IsRadial != (s.Layout == layout.KindRadial || s.Layout == layout.KindSingle) {
			t.Errorf("%s: IsRadial = %v for layout %s", seed, s.IsRadial, s.Layout)
		}
		if got := s.Mesh.Bounds().Min.Z; math.Abs(got) > eps {
			t.Errorf("%s: rear face at z = %v, want 0", seed, got)
		}
		if s.Length <= 0 || s.Width <= 0 || s.Height <= 0 {
			t.Errorf("%s: non-positive extents %v x %v x %v", seed, s.Width, s.Height, s.Length)
		}
	}
}

func TestEngineBlockCoversThrusters(t *testing.T) {
	for i := 0; i < 60; i++ {
		seed := fmt.Sprintf("engine-%d", i)
		r := rng.New(seed)
		mass := MinShipMass + float64(i)*15
		thr := GenerateThrusters(mass, r)
		e := GenerateEngineBlock(thr, mass*0.2, r)

		if got := e.Mesh.Bounds().Min.Z; math.Abs(got) > eps {
			t.Errorf("%s: rear face at z = %v, want 0", seed, got)
		}

		body := findMesh(e.Mesh, "engine-block")
		if body == nil {
			t.Fatalf("%s: no engine-block mesh", seed)
		}

		switch e.Shape {
		case EngineFrustum:
			if !thr.IsRadial {
				t.Errorf("%s: frustum engine for %s layout", seed, thr.Layout)
			}
			for _, p := range thr.Positions {
				if p.Dist()+thr.Diameter/2 > e.RearRadius+eps {
					t.Errorf("%s: thruster at %v overhangs rear radius %v", seed, p, e.RearRadius)
				}
			}
			if e.FrontRadius > e.RearRadius {
				t.Errorf("%s: front radius %v wider than rear %v", seed, e.FrontRadius, e.RearRadius)
			}
			cyl := body.Shape.(geom.Cylinder)
			if cyl.Height > MinDimension && !near(cyl.Volume(), e.Mass, 1e-6) {
				t.Errorf("%s: frustum volume %v, want %v", seed, cyl.Volume(), e.Mass)
			}
		case EngineBox:
			if thr.IsRadial {
				t.Errorf("%s: box engine for radial layout", seed)
			}
			b := e.Mesh.Bounds()
			radius := thr.Diameter / 2
			for _, p := range thr.Positions {
				if p.X-radius < b.Min.X-eps || p.X+radius > b.Max.X+eps || p.Y-radius < b.Min.Y-eps || p.Y+radius > b.Max.Y+eps {
					t.Errorf("%s: thruster at %v outside engine block %v", seed, p, b)
				}
			}
		default:
			t.Errorf("%s: unknown engine shape %q", seed, e.Shape)
		}
	}
}

func TestEngineMassFraction(t *testing.T) {
	for i := 0; i < 100; i++ {
		mass := MinShipMass + float64(i)*9.9
		f := EngineMassFraction(mass, rng.New(fmt.Sprintf("fraction-%d", i)))
		ceiling := 0.30 - 0.20*massScale(mass)
		if f < 0.05 || f > ceiling {
			t.Errorf("EngineMassFraction(%v) = %v, want within [0.05, %v]", mass, f, ceiling)
		}
	}
}

func TestPrefabPodMass(t *testing.T) {
	tests := []struct {
		target float64
		want   float64
	}{
		{0.5, 1},
		{1, 1},
		{1.5, 1}, // tie goes down
		{4, 3},
		{6, 5},
		{7, 8},
		{150, 144},
		{199, 144},
		{200, 200},
		{512.5, 512.5},
	}

	for _, tc := range tests {
		if got := PrefabPodMass(tc.target); got != tc.want {
			t.Errorf("PrefabPodMass(%v) = %v, want %v", tc.target, got, tc.want)
		}
	}
}

func TestPodMassForRespectsLimit(t *testing.T) {
	tests := []struct {
		target float64
		units  int
		limit  float64
		want   float64
	}{
		{100, 10, 100, 8},
		{12, 1, 12.5, 8},
		{0.5, 1, 0.5, 0.5},
		{600, 2, 600, 300},
	}

	for _, tc := range tests {
		got := podMassFor(tc.target, tc.units, tc.limit)
		if got != tc.want {
			t.Errorf("podMassFor(%v, %d, %v) = %v, want %v", tc.target, tc.units, tc.limit, got, tc.want)
		}
		if got*float64(tc.units) > tc.limit+eps {
			t.Errorf("podMassFor(%v, %d, %v) total %v exceeds limit", tc.target, tc.units, tc.limit, got*float64(tc.units))
		}
	}
}

func TestPodVolumesMatchMass(t *testing.T) {
	const mass = 34.0

	for _, shape := range []PodShape{PodBox, PodCylinder, PodSphere, PodBarrel} {
		pod := BuildPod(shape, mass, rng.New("pods"))
		var volume float64
		switch shape {
		case PodBox:
			volume = pod.Width * pod.Height * pod.Length
		case PodCylinder:
			volume = math.Pi * pod.Radius * pod.Radius * pod.Length
		case PodSphere:
			volume = 4 * math.Pi * math.Pow(pod.Radius, 3) / 3
		case PodBarrel:
			rear := findMesh(pod.Node, "barrel-rear").Shape.(geom.Cylinder)
			front := findMesh(pod.Node, "barrel-front").Shape.(geom.Cylinder)
			volume = rear.Volume() + front.Volume()
		}
		if !near(volume, mass, 1e-6) {
			t.Errorf("%s pod volume = %v, want %v", shape, volume, mass)
		}
		if got := pod.Node.Bounds().Min.Z; math.Abs(got) > eps {
			t.Errorf("%s pod rear at z = %v, want 0", shape, got)
		}
		if got := pod.Node.Bounds().Max.Z; !near(got, pod.Length, eps) {
			t.Errorf("%s pod front at z = %v, want %v", shape, got, pod.Length)
		}
	}
}

func TestGenerateCargo(t *testing.T) {
	for i := 0; i < 80; i++ {
		seed := fmt.Sprintf("cargo-%d", i)
		r := rng.New(seed)
		shipMass := MinShipMass + float64(i)*12
		req := CargoRequest{TargetMass: shipMass * 0.4, LimitMass: shipMass * 0.75, ShipMass: shipMass}
		c := GenerateCargo(req, r)

		if c.RealizedMass > req.LimitMass+eps {
			t.Errorf("%s: realized %v exceeds limit %v", seed, c.RealizedMass, req.LimitMass)
		}
		if want := c.Pod.Mass * float64(c.PodsPerSegment*c.Segments); !near(c.RealizedMass, want, eps) {
			t.Errorf("%s: realized %v, want pods x segments x pod mass = %v", seed, c.RealizedMass, want)
		}
		if c.PodsPerSegment > 1 && layout.MinDistance(c.PodPositions) < 2*c.Pod.Radius-eps {
			t.Errorf("%s: pods overlap", seed)
		}
		if c.Segments == 1 && c.Gap != 0 {
			t.Errorf("%s: gap %v with a single segment", seed, c.Gap)
		}
		wantLength := float64(c.Segments)*c.Pod.Length + c.TunnelLength
		if !near(c.Length, wantLength, 1e-9) {
			t.Errorf("%s: Length = %v, want %v", seed, c.Length, wantLength)
		}
		if got := c.Mesh.Bounds().Min.Z; math.Abs(got) > eps {
			t.Errorf("%s: rear face at z = %v, want 0", seed, got)
		}
		if got := len(c.Mesh.Children); got != c.Segments+max(0, c.Segments-1)*boolInt(c.Gap > 0) {
			t.Errorf("%s: %d children for %d segments with gap %v", seed, got, c.Segments, c.Gap)
		}
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestCargoUnitsGrowWithMass(t *testing.T) {
	pods, segments := CargoUnits(MinShipMass, rng.NewFromSource(rng.NewSequence(0.99)))
	if pods != 1 || segments != 1 {
		t.Errorf("CargoUnits(min) = %d, %d; want 1, 1", pods, segments)
	}
	pods, segments = CargoUnits(MaxShipMass, rng.NewFromSource(rng.NewSequence(0.99)))
	if pods != 8 || segments != 5 {
		t.Errorf("CargoUnits(max) = %d, %d; want 8, 5", pods, segments)
	}
}

func TestPlanWindows(t *testing.T) {
	faces := [][2]float64{{4, 2}, {10, 1}, {1, 10}, {0.1, 0.1}, {0, 3}, {-1, 2}, {math.NaN(), 1}, {math.Inf(1), 1}}

	for i := 0; i < 50; i++ {
		for _, face := range faces {
			r := rng.New(fmt.Sprintf("windows-%d", i))
			windows := PlanWindows(face[0], face[1], r)
			for _, w := range windows {
				if w.Width <= 0 || w.Height < MinWindowSize {
					t.Errorf("PlanWindows(%v, %v): degenerate window %+v", face[0], face[1], w)
				}
				if w.X-w.Width/2 < -face[0]/2-eps || w.X+w.Width/2 > face[0]/2+eps {
					t.Errorf("PlanWindows(%v, %v): window %+v past face edge", face[0], face[1], w)
				}
				if w.Y-w.Height/2 < -face[1]/2-eps || w.Y+w.Height/2 > face[1]/2+eps {
					t.Errorf("PlanWindows(%v, %v): window %+v past face top", face[0], face[1], w)
				}
			}
		}
	}
}

func TestPlanWindowsSkipsTinyFaces(t *testing.T) {
	if got := PlanWindows(0.1, 0.1, rng.New("tiny")); got != nil {
		t.Errorf("PlanWindows(0.1, 0.1) = %v, want nil", got)
	}
}

func TestCommandDeckVolumes(t *testing.T) {
	const mass = 40.0

	for _, v := range []float64{0, 0.25, 0.5, 0.99} {
		for _, shape := range []DeckShape{DeckBox, DeckCylinder, DeckHammerhead, DeckTrapezoid} {
			d := BuildCommandDeck(shape, mass, rng.NewFromSource(rng.NewSequence(v)))

			var volume float64
			switch shape {
			case DeckBox:
				b := findMesh(d.Mesh, "bridge").Shape.(geom.Box)
				volume = b.Width * b.Height * b.Depth
			case DeckCylinder:
				volume = findMesh(d.Mesh, "bridge").Shape.(geom.Cylinder).Volume()
			case DeckHammerhead:
				volume = findMesh(d.Mesh, "hammerhead").Shape.(geom.Cylinder).Volume()
			case DeckTrapezoid:
				h := findMesh(d.Mesh, "bridge").Shape.(geom.Hull).Vertices
				w, ht := h[1].X-h[0].X, h[3].Y-h[0].Y
				fw, fh := h[5].X-h[4].X, h[7].Y-h[4].Y
				depth := h[4].Z
				volume = depth / 6 * (w*ht + fw*fh + (w+fw)*(ht+fh))
			}
			if !near(volume, mass, 1e-6) {
				t.Errorf("%s deck (draws %v): volume = %v, want %v", shape, v, volume, mass)
			}
			if got := d.Mesh.Bounds().Min.Z; math.Abs(got) > eps {
				t.Errorf("%s deck (draws %v): rear at z = %v, want 0", shape, v, got)
			}
			if d.Length <= 0 || d.Width <= 0 || d.Height <= 0 {
				t.Errorf("%s deck (draws %v): non-positive extents", shape, v)
			}
		}
	}
}

func TestBoxDeckWindowsOnFrontFace(t *testing.T) {
	d := BuildCommandDeck(DeckBox, 200, rng.NewFromSource(rng.NewSequence(0.5)))
	if len(d.Windows) == 0 {
		t.Fatal("expected windows on a mid-sized box deck")
	}
	bridge := findMesh(d.Mesh, "bridge").Shape.(geom.Box)
	if !near(d.Length, bridge.Depth+windowDepth(bridge.Width, bridge.Height), eps) {
		t.Errorf("Length = %v, want bridge depth plus window depth", d.Length)
	}
}

func TestTrapezoidWindowsFollowSlope(t *testing.T) {
	const tol = 1e-9
	sloped := 0
	for i := 0; i < 60; i++ {
		seed := fmt.Sprintf("wedge-%d", i)
		d := BuildCommandDeck(DeckTrapezoid, 20+float64(i)*15, rng.New(seed))
		v := findMesh(d.Mesh, "bridge").Shape.(geom.Hull).Vertices

		// top face runs from the rear top edge (2, 3) to the front top edge (6, 7)
		if v[2].Y-v[6].Y <= 0 {
			continue
		}
		normal := v[7].Sub(v[3]).Cross(v[2].Sub(v[3])).Normalize()
		if normal.Y < 0 {
			normal = normal.Scale(-1)
		}

		for _, n := range d.Mesh.Children {
			box, ok := n.Shape.(geom.Box)
			if !ok || !strings.HasPrefix(n.Name, "window-") {
				continue
			}
			sloped++
			facing := geom.V3(0, 0, 1).Rotate(n.Rotation)
			if facing.Sub(normal).Length() > tol {
				t.Errorf("%s %s: faces %+v, want slope normal %+v", seed, n.Name, facing, normal)
			}
			for _, corner := range []geom.Vec3{
				{X: -box.Width / 2, Y: -box.Height / 2, Z: -box.Depth / 2},
				{X: box.Width / 2, Y: -box.Height / 2, Z: -box.Depth / 2},
				{X: box.Width / 2, Y: box.Height / 2, Z: -box.Depth / 2},
				{X: -box.Width / 2, Y: box.Height / 2, Z: -box.Depth / 2},
			} {
				p := corner.Rotate(n.Rotation).Add(n.Position)
				if dist := dot(p.Sub(v[3]), normal); math.Abs(dist) > 1e-7 {
					t.Errorf("%s %s: back face %v off the slope", seed, n.Name, dist)
				}
			}
		}
	}
	if sloped == 0 {
		t.Fatal("no windows landed on a sloped trapezoid face")
	}
}

func dot(a, b geom.Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func TestCargoSegmentsAlternateStagger(t *testing.T) {
	staggered := 0
	for i := 0; i < 200; i++ {
		seed := fmt.Sprintf("stagger-%d", i)
		shipMass := 400 + float64(i%7)*90
		req := CargoRequest{TargetMass: shipMass * 0.4, LimitMass: shipMass * 0.75, ShipMass: shipMass}
		c := GenerateCargo(req, rng.New(seed))
		if c.Stagger != 0 {
			staggered++
		}

		segments := 0
		for _, seg := range c.Mesh.Children {
			var s int
			if _, err := fmt.Sscanf(seg.Name, "cargo-segment-%d", &s); err != nil {
				continue
			}
			segments++
			want := 0.0
			if s%2 == 1 {
				want = c.Stagger
			}
			if seg.Rotation.Z != want {
				t.Errorf("%s: segment %d Rotation.Z = %v, want %v", seed, s, seg.Rotation.Z, want)
			}
		}
		if segments != c.Segments {
			t.Errorf("%s: found %d segments, want %d", seed, segments, c.Segments)
		}
	}
	if staggered == 0 {
		t.Fatal("no staggered cargo generated")
	}
}

func TestDeckShapeWeights(t *testing.T) {
	seen := map[DeckShape]int{}
	for i := 0; i < 400; i++ {
		d := GenerateCommandDeck(25, rng.New(fmt.Sprintf("deck-%d", i)))
		seen[d.Shape]++
	}
	for _, w := range deckWeights {
		if seen[w.shape] == 0 {
			t.Errorf("deck shape %s never chosen in 400 seeds", w.shape)
		}
	}
}
