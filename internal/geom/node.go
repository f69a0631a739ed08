// Package geom describes ship geometry as immutable-by-convention value records.
//
// Generators build a tree of Nodes; nothing touches a real geometry backend until
// Realize walks the tree against a Builder.
package geom

// Node is a group (Shape == nil) or a mesh, positioned relative to its parent.
type Node struct {
	Name     string
	Shape    Shape
	Material Material
	Position Vec3
	// Rotation holds Euler angles in radians, applied in XYZ order.
	Rotation Vec3
	Children []*Node
}

// NewGroup returns an empty group node.
func NewGroup(name string) *Node {
	return &Node{Name: name}
}

// NewMesh returns a mesh node for the given shape.
func NewMesh(name string, shape Shape, mat Material) *Node {
	return &Node{Name: name, Shape: shape, Material: mat}
}

// Kind returns the node's shape kind, or KindGroup.
func (n *Node) Kind() Kind {
	if n.Shape == nil {
		return KindGroup
	}
	return n.Shape.Kind()
}

// Add appends children and returns n.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// SetPosition sets the node's translation and returns n.
func (n *Node) SetPosition(x, y, z float64) *Node {
	n.Position = Vec3{x, y, z}
	return n
}

// SetRotation sets the node's Euler rotation and returns n.
func (n *Node) SetRotation(x, y, z float64) *Node {
	n.Rotation = Vec3{x, y, z}
	return n
}

// Clone returns a deep copy of the subtree.
func (n *Node) Clone() *Node {
	c := *n
	c.Children = make([]*Node, len(n.Children))
	for i, child := range n.Children {
		c.Children[i] = child.Clone()
	}
	return &c
}

// Walk visits the subtree depth first. Returning false from fn skips a node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// MeshCount returns the number of mesh nodes in the subtree.
func (n *Node) MeshCount() int {
	count := 0
	n.Walk(func(node *Node, _ int) bool {
		if node.Shape != nil {
			count++
		}
		return true
	})
	return count
}

// Transform maps a point from n's local frame into its parent's frame.
func (n *Node) Transform(p Vec3) Vec3 {
	return p.Rotate(n.Rotation).Add(n.Position)
}

// LocalBounds returns the bounds of the subtree in n's own frame,
// ignoring n's position and rotation.
func (n *Node) LocalBounds() Box3 {
	b := EmptyBox3()
	if n.Shape != nil {
		b = n.Shape.Bounds()
	}
	for _, c := range n.Children {
		b = b.Union(c.Bounds())
	}
	return b
}

// Bounds returns the bounds of the subtree in the parent's frame.
// Corner transformation is exact for the quarter-turn rotations the generators use.
func (n *Node) Bounds() Box3 {
	local := n.LocalBounds()
	if local.IsEmpty() {
		return local
	}
	b := EmptyBox3()
	for _, corner := range local.Corners() {
		b = b.ExpandByPoint(n.Transform(corner))
	}
	return b
}
