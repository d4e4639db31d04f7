package domain

import "fmt"

const (
	// ManningsAttribute is the fort.13 block name this tool edits.
	ManningsAttribute = "mannings_n_at_sea_floor"

	// DefaultNAVD is the elevation threshold (m) used by criterion 2.
	DefaultNAVD = 0.276
)

// DefaultBox is the Galveston Bay region selected by both criteria.
var DefaultBox = Box{XMin: -95.5, XMax: -94.0, YMin: 28.5, YMax: 30.0}

// Box is an axis-aligned lon/lat region, closed on all four edges.
type Box struct {
	XMin float64 `json:"xmin" yaml:"xmin"`
	XMax float64 `json:"xmax" yaml:"xmax"`
	YMin float64 `json:"ymin" yaml:"ymin"`
	YMax float64 `json:"ymax" yaml:"ymax"`
}

// Contains reports whether (x, y) lies inside the box, edges included.
func (b Box) Contains(x, y float64) bool {
	return x >= b.XMin && x <= b.XMax && y >= b.YMin && y <= b.YMax
}

func (b Box) String() string {
	return fmt.Sprintf("x[%g,%g] y[%g,%g]", b.XMin, b.XMax, b.YMin, b.YMax)
}

// Predicate decides whether the node with the given id is edited.
// Ids outside the mesh never match.
type Predicate func(id int, m *Mesh) bool

// InBox reports whether node id lies inside box.
func InBox(id int, m *Mesh, box Box) bool {
	n, ok := m.Node(id)
	if !ok {
		return false
	}
	return box.Contains(n.X, n.Y)
}

// AboveDatum reports whether node id has elevation (-depth) at or above navd.
func AboveDatum(id int, m *Mesh, navd float64) bool {
	n, ok := m.Node(id)
	if !ok {
		return false
	}
	return n.Elevation() >= navd
}

// BoxPredicate returns a Predicate matching nodes inside box.
func BoxPredicate(box Box) Predicate {
	return func(id int, m *Mesh) bool {
		return InBox(id, m, box)
	}
}

// DatumPredicate returns a Predicate matching nodes at or above navd.
func DatumPredicate(navd float64) Predicate {
	return func(id int, m *Mesh) bool {
		return AboveDatum(id, m, navd)
	}
}

// And combines predicates with short-circuit evaluation in argument order.
// With no predicates every node matches.
func And(preds ...Predicate) Predicate {
	return func(id int, m *Mesh) bool {
		for _, p := range preds {
			if !p(id, m) {
				return false
			}
		}
		return true
	}
}

// SelectCriterion maps a numeric criterion choice to its predicate and a
// human-readable description:
//   - 1: inside box
//   - 2: inside box and at or above navd (box checked first)
func SelectCriterion(choice int, box Box, navd float64) (Predicate, string, error) {
	switch choice {
	case 1:
		return BoxPredicate(box), "in box " + box.String(), nil
	case 2:
		desc := fmt.Sprintf("in box %s and elevation >= %g", box, navd)
		return And(BoxPredicate(box), DatumPredicate(navd)), desc, nil
	default:
		return nil, "", fmt.Errorf("%w: criteria %d (want 1 or 2)", ErrInvalidChoice, choice)
	}
}
