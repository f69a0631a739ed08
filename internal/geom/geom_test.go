package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func assertVec(t *testing.T, want, got Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, "x")
	assert.InDelta(t, want.Y, got.Y, tol, "y")
	assert.InDelta(t, want.Z, got.Z, tol, "z")
}

func TestRotateQuarterTurnsAreExact(t *testing.T) {
	// +Y rotated a quarter turn about X lands exactly on +Z
	assert.Equal(t, V3(0, 0, 1), V3(0, 1, 0).Rotate(V3(math.Pi/2, 0, 0)))
	assert.Equal(t, V3(0, 1, 0), V3(1, 0, 0).Rotate(V3(0, 0, math.Pi/2)))
	assert.Equal(t, V3(-1, 0, 0), V3(0, 0, 1).Rotate(V3(0, -math.Pi/2, 0)))
	assert.Equal(t, V3(-1, 0, 0), V3(1, 0, 0).Rotate(V3(0, 0, math.Pi)))
}

func TestRotateArbitrary(t *testing.T) {
	v := V3(1, 0, 0).Rotate(V3(0, 0, math.Pi/4))
	assertVec(t, V3(math.Sqrt2/2, math.Sqrt2/2, 0), v)
}

func TestBox3(t *testing.T) {
	b := EmptyBox3()
	assert.True(t, b.IsEmpty())
	assert.Equal(t, Vec3{}, b.Size())

	b = b.ExpandByPoint(V3(1, 2, 3)).ExpandByPoint(V3(-1, 0, 5))
	assert.False(t, b.IsEmpty())
	assert.Equal(t, V3(-1, 0, 3), b.Min)
	assert.Equal(t, V3(1, 2, 5), b.Max)
	assert.Equal(t, V3(2, 2, 2), b.Size())

	assert.Equal(t, b, b.Union(EmptyBox3()))
}

func TestCylinderAlignedToZ(t *testing.T) {
	cyl := NewMesh("hull", Cylinder{RadiusTop: 1, RadiusBottom: 2, Height: 4, Segments: 16}, Material{})
	cyl.SetRotation(math.Pi/2, 0, 0).SetPosition(0, 0, 2)

	b := cyl.Bounds()
	assert.Equal(t, 0.0, b.Min.Z)
	assert.Equal(t, 4.0, b.Max.Z)
	assert.Equal(t, -2.0, b.Min.X)
	assert.Equal(t, 2.0, b.Max.Y)
}

func TestGroupBoundsAndClone(t *testing.T) {
	g := NewGroup("section")
	g.Add(
		NewMesh("a", Box{Width: 2, Height: 2, Depth: 2}, Material{}).SetPosition(0, 0, 1),
		NewMesh("b", Sphere{Radius: 1, Segments: 8}, Material{}).SetPosition(3, 0, 1),
	)
	g.SetPosition(0, 0, 10)

	b := g.Bounds()
	assertVec(t, V3(-1, -1, 10), b.Min)
	assertVec(t, V3(4, 1, 12), b.Max)

	c := g.Clone()
	c.Children[0].SetPosition(100, 0, 0)
	assert.Equal(t, V3(0, 0, 1), g.Children[0].Position, "clone must not alias children")
	assert.Equal(t, 2, c.MeshCount())
	assert.Equal(t, KindGroup, c.Kind())
	assert.Equal(t, KindSphere, c.Children[1].Kind())
}

func TestHullBounds(t *testing.T) {
	h := Hull{Vertices: [8]Vec3{
		{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0},
		{-0.5, -1, 3}, {0.5, -1, 3}, {0.5, 0.2, 3}, {-0.5, 0.2, 3},
	}}
	b := h.Bounds()
	assert.Equal(t, V3(-1, -1, 0), b.Min)
	assert.Equal(t, V3(1, 1, 3), b.Max)
}

func TestFrustumVolume(t *testing.T) {
	// equal radii reduce to a cylinder
	assert.InDelta(t, math.Pi*4*3, FrustumVolume(2, 2, 3), tol)
	// zero top radius reduces to a cone
	assert.InDelta(t, math.Pi*4*3/3, FrustumVolume(2, 0, 3), tol)
}

type recordingBuilder struct {
	created  []string
	attached map[string][]string
	placed   map[string]Vec3
}

func (r *recordingBuilder) Group(name string) Handle {
	r.created = append(r.created, "group:"+name)
	return name
}

func (r *recordingBuilder) Mesh(name string, shape Shape, _ Material) Handle {
	r.created = append(r.created, string(shape.Kind())+":"+name)
	return name
}

func (r *recordingBuilder) Attach(parent, child Handle) {
	p := parent.(string)
	r.attached[p] = append(r.attached[p], child.(string))
}

func (r *recordingBuilder) Place(h Handle, position, _ Vec3) {
	r.placed[h.(string)] = position
}

func (r *recordingBuilder) Release(Handle) {}

func TestRealize(t *testing.T) {
	root := NewGroup("ship").Add(
		NewGroup("cargo").Add(NewMesh("pod", Box{1, 1, 1}, Material{})).SetPosition(0, 0, 5),
		NewMesh("bridge", Sphere{Radius: 1}, Material{}),
	)
	b := &recordingBuilder{attached: map[string][]string{}, placed: map[string]Vec3{}}

	h := Realize(b, root)
	require.Equal(t, "ship", h)
	assert.Equal(t, []string{"group:ship", "group:cargo", "box:pod", "sphere:bridge"}, b.created)
	assert.Equal(t, []string{"cargo", "bridge"}, b.attached["ship"])
	assert.Equal(t, []string{"pod"}, b.attached["cargo"])
	assert.Equal(t, V3(0, 0, 5), b.placed["cargo"])
}
