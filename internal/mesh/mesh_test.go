package mesh

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawnchairsociety/shipyard/internal/geom"
	"github.com/lawnchairsociety/shipyard/internal/ship"
)

func TestTessellateBox(t *testing.T) {
	g := Tessellate(geom.Box{Width: 2, Height: 4, Depth: 6})
	assert.Len(t, g.Positions, 24)
	assert.Len(t, g.Normals, 24)
	assert.Equal(t, 12, g.Triangles())

	for _, p := range g.Positions {
		assert.InDelta(t, 1, math.Abs(p.X), 1e-12)
		assert.InDelta(t, 2, math.Abs(p.Y), 1e-12)
		assert.InDelta(t, 3, math.Abs(p.Z), 1e-12)
	}
}

func TestTessellateNormalsPointOutward(t *testing.T) {
	shapes := []geom.Shape{
		geom.Box{Width: 1, Height: 2, Depth: 3},
		geom.Hull{Vertices: [8]geom.Vec3{
			{X: -1, Y: -1, Z: 0}, {X: 1, Y: -1, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: -1, Y: 1, Z: 0},
			{X: -0.5, Y: -1, Z: 2}, {X: 0.5, Y: -1, Z: 2}, {X: 0.5, Y: 0, Z: 2}, {X: -0.5, Y: 0, Z: 2},
		}},
	}
	for _, s := range shapes {
		g := Tessellate(s)
		b := s.Bounds()
		centre := b.Min.Add(b.Max).Scale(0.5)
		for i := 0; i < len(g.Indices); i += 3 {
			a, bb, c := g.Positions[g.Indices[i]], g.Positions[g.Indices[i+1]], g.Positions[g.Indices[i+2]]
			n := bb.Sub(a).Cross(c.Sub(a))
			mid := a.Add(bb).Add(c).Scale(1.0 / 3)
			assert.Greater(t, dot(n, mid.Sub(centre)), 0.0, "%s triangle %d winds inward", s.Kind(), i/3)
		}
	}
}

func TestTessellateCylinderAndCone(t *testing.T) {
	g := Tessellate(geom.Cylinder{RadiusTop: 1, RadiusBottom: 1, Height: 2, Segments: 8})
	// side strip plus two capped fans
	assert.Len(t, g.Positions, 2*9+2*9)
	assert.Equal(t, 2*8+2*8, g.Triangles())

	cone := Tessellate(geom.Cone{Radius: 1, Height: 2, Segments: 8})
	assert.Equal(t, 2*8+8, cone.Triangles(), "cone has no top cap")

	small := Tessellate(geom.Cylinder{RadiusTop: 1, RadiusBottom: 1, Height: 1, Segments: 1})
	assert.Equal(t, 2*3+2*3, small.Triangles(), "segments floor at 3")
}

func TestTessellateSphere(t *testing.T) {
	g := Tessellate(geom.Sphere{Radius: 2, Segments: 8})
	require.NotEmpty(t, g.Positions)
	for _, p := range g.Positions {
		assert.InDelta(t, 2, p.Length(), 1e-9)
	}
	assert.Equal(t, 2*8*4, g.Triangles())
}

func TestRealizeTracksBuffers(t *testing.T) {
	s := ship.Generate("spaceship-abc123")
	scene := NewScene()

	root := geom.Realize(scene, s.Root)
	require.NotNil(t, root)
	assert.Equal(t, s.Root.MeshCount(), scene.LiveBuffers())
	assert.Positive(t, scene.LiveTriangles())

	part := root.(*Part)
	assert.Len(t, part.Children(), 4)

	scene.Release(root)
	assert.Equal(t, 0, scene.LiveBuffers())
	assert.Equal(t, 0, scene.LiveTriangles())
	assert.True(t, part.Released())

	scene.Release(root)
	assert.Equal(t, 0, scene.LiveBuffers(), "double release is a no-op")
}

func TestReleaseSubtreeDetaches(t *testing.T) {
	scene := NewScene()
	root := scene.Group("root")
	a := scene.Mesh("a", geom.Box{Width: 1, Height: 1, Depth: 1}, geom.Material{Name: "m"})
	b := scene.Mesh("b", geom.Sphere{Radius: 1, Segments: 8}, geom.Material{Name: "m"})
	scene.Attach(root, a)
	scene.Attach(root, b)
	require.Equal(t, 2, scene.LiveBuffers())

	scene.Release(a)
	assert.Equal(t, 1, scene.LiveBuffers())
	assert.Len(t, root.(*Part).Children(), 1)
}

func TestWorldTransform(t *testing.T) {
	n := geom.NewGroup("outer").SetPosition(0, 0, 10).Add(
		geom.NewMesh("box", geom.Box{Width: 1, Height: 1, Depth: 1}, geom.Material{Name: "hull"}).
			SetPosition(0, 0, 0.5),
	)
	scene := NewScene()
	root := geom.Realize(scene, n).(*Part)
	box := root.Children()[0]

	for _, p := range box.Geometry.Positions {
		w := box.ToWorld(p)
		assert.GreaterOrEqual(t, w.Z, 10.0-1e-12)
		assert.LessOrEqual(t, w.Z, 11.0+1e-12)
	}
}

func TestWriteOBJ(t *testing.T) {
	s := ship.Generate("obj-export")
	scene := NewScene()
	root := geom.Realize(scene, s.Root)

	var buf bytes.Buffer
	require.NoError(t, scene.WriteOBJ(&buf, root))

	out := buf.String()
	objects := 0
	vertices := 0
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "o "):
			objects++
		case strings.HasPrefix(line, "v "):
			vertices++
		}
	}
	assert.Equal(t, s.Root.MeshCount(), objects)
	assert.Positive(t, vertices)
	assert.Contains(t, out, "usemtl thruster")

	scene.Release(root)
	assert.Error(t, scene.WriteOBJ(&buf, root))
}

func TestWriteOBJRejectsForeignHandle(t *testing.T) {
	assert.Error(t, NewScene().WriteOBJ(&bytes.Buffer{}, "nope"))
}
