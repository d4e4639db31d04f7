package domain

// Node holds the coordinates and bathymetric depth of a single mesh node.
type Node struct {
	X     float64
	Y     float64
	Depth float64
}

// Elevation returns the node's elevation relative to the vertical datum.
func (n Node) Elevation() float64 {
	return -n.Depth
}

// Mesh is the read-only node table built from a fort.14 file.
type Mesh struct {
	Title string
	nodes []Node
}

// NewMesh creates a Mesh from nodes ordered by id, starting at id 1.
func NewMesh(title string, nodes []Node) *Mesh {
	cp := make([]Node, len(nodes))
	copy(cp, nodes)
	return &Mesh{Title: title, nodes: cp}
}

// Len returns the number of nodes.
func (m *Mesh) Len() int {
	return len(m.nodes)
}

// Contains reports whether id addresses a node in the mesh.
func (m *Mesh) Contains(id int) bool {
	return id >= 1 && id <= len(m.nodes)
}

// Node returns the node with the given 1-based id.
func (m *Mesh) Node(id int) (Node, bool) {
	if !m.Contains(id) {
		return Node{}, false
	}
	return m.nodes[id-1], true
}
