package mesh

import (
	"bufio"
	"fmt"
	"io"

	"github.com/lawnchairsociety/shipyard/internal/geom"
)

// Part is a node of realised geometry. Groups carry no geometry.
type Part struct {
	Name     string
	Material geom.Material
	Geometry *Geometry
	Position geom.Vec3
	Rotation geom.Vec3
	parent   *Part
	children []*Part
	released bool
}

// Children returns the attached parts.
func (p *Part) Children() []*Part {
	return p.children
}

// Released reports whether Release has freed the part.
func (p *Part) Released() bool {
	return p.released
}

// toParent maps a local point into the parent's frame.
func (p *Part) toParent(v geom.Vec3) geom.Vec3 {
	return v.Rotate(p.Rotation).Add(p.Position)
}

// ToWorld maps a local point through every ancestor.
func (p *Part) ToWorld(v geom.Vec3) geom.Vec3 {
	for part := p; part != nil; part = part.parent {
		v = part.toParent(v)
	}
	return v
}

func (p *Part) normalToWorld(n geom.Vec3) geom.Vec3 {
	for part := p; part != nil; part = part.parent {
		n = n.Rotate(part.Rotation)
	}
	return n
}

// Scene implements geom.Builder on the CPU. It is not safe for concurrent use.
type Scene struct {
	live      int
	triangles int
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

var _ geom.Builder = (*Scene)(nil)

func (s *Scene) Group(name string) geom.Handle {
	return &Part{Name: name}
}

func (s *Scene) Mesh(name string, shape geom.Shape, mat geom.Material) geom.Handle {
	g := Tessellate(shape)
	s.live++
	s.triangles += g.Triangles()
	return &Part{Name: name, Material: mat, Geometry: &g}
}

func (s *Scene) Attach(parent, child geom.Handle) {
	p, c := parent.(*Part), child.(*Part)
	if c.parent != nil {
		c.parent.detach(c)
	}
	c.parent = p
	p.children = append(p.children, c)
}

func (s *Scene) Place(h geom.Handle, position, rotation geom.Vec3) {
	p := h.(*Part)
	p.Position = position
	p.Rotation = rotation
}

// Release detaches the part and frees every buffer in its subtree. Releasing twice is a no-op.
func (s *Scene) Release(h geom.Handle) {
	p, ok := h.(*Part)
	if !ok || p == nil || p.released {
		return
	}
	if p.parent != nil {
		p.parent.detach(p)
		p.parent = nil
	}
	s.release(p)
}

func (s *Scene) release(p *Part) {
	for _, c := range p.children {
		s.release(c)
	}
	if p.Geometry != nil {
		s.live--
		s.triangles -= p.Geometry.Triangles()
		p.Geometry = nil
	}
	p.children = nil
	p.released = true
}

func (p *Part) detach(child *Part) {
	for i, c := range p.children {
		if c == child {
			p.children = append(p.children[:i], p.children[i+1:]...)
			return
		}
	}
}

// LiveBuffers returns how many geometry buffers are currently allocated.
func (s *Scene) LiveBuffers() int {
	return s.live
}

// LiveTriangles returns the triangle count across live buffers.
func (s *Scene) LiveTriangles() int {
	return s.triangles
}

// WriteOBJ writes the subtree under root as Wavefront OBJ in world space,
// one object per mesh part.
func (s *Scene) WriteOBJ(w io.Writer, root geom.Handle) error {
	p, ok := root.(*Part)
	if !ok || p == nil {
		return fmt.Errorf("write obj: not a mesh part: %T", root)
	}
	if p.released {
		return fmt.Errorf("write obj: part %q was released", p.Name)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# shipyard mesh export\n")
	offset := 1
	count := 0
	var walk func(*Part, string)
	walk = func(part *Part, path string) {
		if path == "" {
			path = part.Name
		} else {
			path = path + "/" + part.Name
		}
		if g := part.Geometry; g != nil {
			count++
			fmt.Fprintf(bw, "o %s_%d\n", path, count)
			fmt.Fprintf(bw, "usemtl %s\n", part.Material.Name)
			for _, v := range g.Positions {
				wv := part.ToWorld(v)
				fmt.Fprintf(bw, "v %.6f %.6f %.6f\n", wv.X, wv.Y, wv.Z)
			}
			for _, n := range g.Normals {
				wn := part.normalToWorld(n)
				fmt.Fprintf(bw, "vn %.6f %.6f %.6f\n", wn.X, wn.Y, wn.Z)
			}
			for i := 0; i+2 < len(g.Indices); i += 3 {
				a := int(g.Indices[i]) + offset
				b := int(g.Indices[i+1]) + offset
				c := int(g.Indices[i+2]) + offset
				fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
			}
			offset += len(g.Positions)
		}
		for _, c := range part.children {
			walk(c, path)
		}
	}
	walk(p, "")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write obj: %w", err)
	}
	return nil
}
