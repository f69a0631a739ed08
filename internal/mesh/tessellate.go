// Package mesh is a CPU geometry backend: it tessellates geom shapes into indexed
// triangle buffers and keeps the part hierarchy needed to write them out.
package mesh

import (
	"math"

	"github.com/lawnchairsociety/shipyard/internal/geom"
)

// Geometry is an indexed triangle list with per-vertex normals.
type Geometry struct {
	Positions []geom.Vec3
	Normals   []geom.Vec3
	Indices   []uint32
}

// Triangles returns the triangle count.
func (g *Geometry) Triangles() int {
	return len(g.Indices) / 3
}

func (g *Geometry) vertex(p, n geom.Vec3) uint32 {
	g.Positions = append(g.Positions, p)
	g.Normals = append(g.Normals, n)
	return uint32(len(g.Positions) - 1)
}

func (g *Geometry) triangle(a, b, c uint32) {
	g.Indices = append(g.Indices, a, b, c)
}

// hullFaces lists the quads of an 8-vertex box topology, rear then front then sides.
var hullFaces = [6][4]int{
	{0, 1, 2, 3},
	{4, 5, 6, 7},
	{0, 1, 5, 4},
	{3, 2, 6, 7},
	{0, 4, 7, 3},
	{1, 2, 6, 5},
}

// Tessellate converts a shape into triangles in the shape's local frame.
// Unknown shapes yield empty geometry.
func Tessellate(shape geom.Shape) Geometry {
	switch s := shape.(type) {
	case geom.Box:
		w, h, d := s.Width/2, s.Height/2, s.Depth/2
		return hull([8]geom.Vec3{
			{X: -w, Y: -h, Z: -d}, {X: w, Y: -h, Z: -d}, {X: w, Y: h, Z: -d}, {X: -w, Y: h, Z: -d},
			{X: -w, Y: -h, Z: d}, {X: w, Y: -h, Z: d}, {X: w, Y: h, Z: d}, {X: -w, Y: h, Z: d},
		})
	case geom.Hull:
		return hull(s.Vertices)
	case geom.Cylinder:
		return frustum(s.RadiusBottom, s.RadiusTop, s.Height, s.Segments)
	case geom.Cone:
		return frustum(s.Radius, 0, s.Height, s.Segments)
	case geom.Sphere:
		return sphere(s.Radius, s.Segments)
	default:
		return Geometry{}
	}
}

func hull(v [8]geom.Vec3) Geometry {
	var g Geometry
	var centroid geom.Vec3
	for _, p := range v {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Scale(1.0 / 8)

	for _, f := range hullFaces {
		a, b, c, d := v[f[0]], v[f[1]], v[f[2]], v[f[3]]
		n := b.Sub(a).Cross(d.Sub(a))
		if n.Length() == 0 {
			n = c.Sub(b).Cross(a.Sub(b))
		}
		centre := a.Add(b).Add(c).Add(d).Scale(0.25)
		quad := [4]geom.Vec3{a, b, c, d}
		if dot(n, centre.Sub(centroid)) < 0 {
			n = n.Scale(-1)
			quad = [4]geom.Vec3{a, d, c, b}
		}
		n = n.Normalize()
		i0 := g.vertex(quad[0], n)
		i1 := g.vertex(quad[1], n)
		i2 := g.vertex(quad[2], n)
		i3 := g.vertex(quad[3], n)
		g.triangle(i0, i1, i2)
		g.triangle(i0, i2, i3)
	}
	return g
}

func frustum(bottom, top, height float64, segments int) Geometry {
	var g Geometry
	segments = max(3, segments)
	half := height / 2
	slope := 0.0
	if height > 0 {
		slope = (bottom - top) / height
	}

	// side
	for i := 0; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		cos, sin := math.Cos(theta), math.Sin(theta)
		n := geom.Vec3{X: cos, Y: slope, Z: sin}.Normalize()
		g.vertex(geom.Vec3{X: bottom * cos, Y: -half, Z: bottom * sin}, n)
		g.vertex(geom.Vec3{X: top * cos, Y: half, Z: top * sin}, n)
	}
	for i := 0; i < segments; i++ {
		b0, t0 := uint32(2*i), uint32(2*i+1)
		b1, t1 := uint32(2*i+2), uint32(2*i+3)
		g.triangle(b0, t0, b1)
		g.triangle(b1, t0, t1)
	}

	capDisc(&g, bottom, -half, segments, -1)
	capDisc(&g, top, half, segments, 1)
	return g
}

func capDisc(g *Geometry, radius, y float64, segments int, dir float64) {
	if radius <= 0 {
		return
	}
	n := geom.Vec3{Y: dir}
	centre := g.vertex(geom.Vec3{Y: y}, n)
	first := uint32(len(g.Positions))
	for i := 0; i < segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		g.vertex(geom.Vec3{X: radius * math.Cos(theta), Y: y, Z: radius * math.Sin(theta)}, n)
	}
	for i := 0; i < segments; i++ {
		a := first + uint32(i)
		b := first + uint32((i+1)%segments)
		if dir > 0 {
			g.triangle(centre, b, a)
		} else {
			g.triangle(centre, a, b)
		}
	}
}

func sphere(radius float64, segments int) Geometry {
	var g Geometry
	lon := max(3, segments)
	lat := max(2, segments/2)

	for j := 0; j <= lat; j++ {
		phi := math.Pi * float64(j) / float64(lat)
		for i := 0; i <= lon; i++ {
			theta := 2 * math.Pi * float64(i) / float64(lon)
			n := geom.Vec3{
				X: math.Sin(phi) * math.Cos(theta),
				Y: math.Cos(phi),
				Z: math.Sin(phi) * math.Sin(theta),
			}
			g.vertex(n.Scale(radius), n)
		}
	}
	row := uint32(lon + 1)
	for j := 0; j < lat; j++ {
		for i := 0; i < lon; i++ {
			a := uint32(j)*row + uint32(i)
			b := a + row
			g.triangle(a, a+1, b)
			g.triangle(a+1, b+1, b)
		}
	}
	return g
}

func dot(a, b geom.Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}
