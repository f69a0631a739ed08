package geom

import "math"

// Kind names a primitive, or a group when a node carries no shape.
type Kind string

const (
	KindGroup    Kind = "group"
	KindBox      Kind = "box"
	KindCylinder Kind = "cylinder"
	KindCone     Kind = "cone"
	KindSphere   Kind = "sphere"
	KindHull     Kind = "hull"
)

// Shape is a primitive's parametric description, centred on its local origin.
type Shape interface {
	Kind() Kind
	// Bounds returns the untransformed local bounding box.
	Bounds() Box3
}

// Box is a cuboid: Width along X, Height along Y, Depth along Z.
type Box struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

func (Box) Kind() Kind { return KindBox }

func (b Box) Bounds() Box3 {
	h := Vec3{b.Width / 2, b.Height / 2, b.Depth / 2}
	return Box3{Min: h.Scale(-1), Max: h}
}

// Cylinder is a (possibly tapered) cylinder along local Y. RadiusTop sits at +Y.
type Cylinder struct {
	RadiusTop    float64 `json:"radius_top"`
	RadiusBottom float64 `json:"radius_bottom"`
	Height       float64 `json:"height"`
	Segments     int     `json:"segments"`
}

func (Cylinder) Kind() Kind { return KindCylinder }

func (c Cylinder) Bounds() Box3 {
	r := math.Max(c.RadiusTop, c.RadiusBottom)
	return Box3{Min: Vec3{-r, -c.Height / 2, -r}, Max: Vec3{r, c.Height / 2, r}}
}

// Volume returns the frustum volume.
func (c Cylinder) Volume() float64 {
	return FrustumVolume(c.RadiusBottom, c.RadiusTop, c.Height)
}

// Cone is a cone along local Y with its tip at +Y.
type Cone struct {
	Radius   float64 `json:"radius"`
	Height   float64 `json:"height"`
	Segments int     `json:"segments"`
}

func (Cone) Kind() Kind { return KindCone }

func (c Cone) Bounds() Box3 {
	return Box3{Min: Vec3{-c.Radius, -c.Height / 2, -c.Radius}, Max: Vec3{c.Radius, c.Height / 2, c.Radius}}
}

// Sphere is a UV sphere.
type Sphere struct {
	Radius   float64 `json:"radius"`
	Segments int     `json:"segments"`
}

func (Sphere) Kind() Kind { return KindSphere }

func (s Sphere) Bounds() Box3 {
	r := Vec3{s.Radius, s.Radius, s.Radius}
	return Box3{Min: r.Scale(-1), Max: r}
}

// Hull is an eight-vertex solid with box topology.
// Vertices 0-3 form the rear face and 4-7 the front face, each ordered
// bottom-left, bottom-right, top-right, top-left when viewed from the front.
type Hull struct {
	Vertices [8]Vec3 `json:"vertices"`
}

func (Hull) Kind() Kind { return KindHull }

func (h Hull) Bounds() Box3 {
	b := EmptyBox3()
	for _, v := range h.Vertices {
		b = b.ExpandByPoint(v)
	}
	return b
}

// FrustumVolume is the volume of a truncated cone with the given end radii.
func FrustumVolume(r1, r2, height float64) float64 {
	return math.Pi * height * (r1*r1 + r1*r2 + r2*r2) / 3
}

// Material is an opaque surface description handed to the builder.
type Material struct {
	Name        string  `json:"name"`
	Color       uint32  `json:"color"`
	FlatShading bool    `json:"flat_shading"`
	Opacity     float64 `json:"opacity"`
	Emissive    bool    `json:"emissive,omitempty"`
}
