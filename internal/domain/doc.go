// Package domain models the ADCIRC mesh and nodal attribute data the
// Manning's n editor works on.
//
// # Mesh (fort.14)
//
// The mesh file describes a finite-element grid:
//
//	line 1       title (free text)
//	line 2       "NE NP" - element count, then node count
//	next NP      "id x y depth" - x is longitude, y is latitude, depth is
//	             positive below the vertical datum
//	remainder    elements and boundary tables (not used here)
//
// Node ids are dense and start at 1, so the node table is addressed by
// id-1. Depth is positive downward; the elevation of a node is -depth.
//
// # Nodal attributes (fort.13)
//
// The attribute file holds per-node model parameters in named blocks:
//
//	title
//	NumOfNodes
//	NAttr
//	mannings_n_at_sea_floor      <- first occurrence: default-value section
//	unitless
//	1
//	0.02
//	...
//	mannings_n_at_sea_floor      <- second occurrence: per-node overrides
//	M
//	id value                     <- M records
//	...
//
// Only the block introduced by the second occurrence of
// [ManningsAttribute] is edited. Everything else in the file is copied
// through byte for byte.
//
// # Selection
//
// Nodes are selected by a [Predicate] evaluated against the [Mesh]:
//
//	criterion 1: node inside a lon/lat box (closed on both ends)
//	criterion 2: inside the box AND elevation >= the NAVD threshold
//
// The default box covers Galveston Bay, x in [-95.5, -94.0],
// y in [28.5, 30.0]; the default NAVD threshold is 0.276 m.
package domain
