package geom

// Handle is a backend-specific reference to realised geometry.
type Handle any

// Builder is the geometry-construction capability a backend provides.
type Builder interface {
	Group(name string) Handle
	Mesh(name string, shape Shape, mat Material) Handle
	// Attach re-parents child under parent.
	Attach(parent, child Handle)
	Place(h Handle, position, rotation Vec3)
	// Release frees every resource held by the handle's subtree.
	Release(h Handle)
}

// Realize instantiates the node tree through b and returns the root handle.
func Realize(b Builder, n *Node) Handle {
	var h Handle
	if n.Shape == nil {
		h = b.Group(n.Name)
	} else {
		h = b.Mesh(n.Name, n.Shape, n.Material)
	}
	b.Place(h, n.Position, n.Rotation)
	for _, c := range n.Children {
		b.Attach(h, Realize(b, c))
	}
	return h
}
