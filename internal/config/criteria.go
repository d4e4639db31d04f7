package config

import (
	"fmt"

	"github.com/couchcryptid/mannings-editor/internal/domain"
	"gopkg.in/gcfg.v1"
)

// Criteria holds the selection parameters used by the criterion predicates.
type Criteria struct {
	Box  domain.Box
	NAVD float64
}

// DefaultCriteria returns the built-in Galveston Bay box and NAVD threshold.
func DefaultCriteria() Criteria {
	return Criteria{Box: domain.DefaultBox, NAVD: domain.DefaultNAVD}
}

// criteriaFile mirrors the INI layout:
//
//	[box]
//	xmin = -95.5
//	xmax = -94.0
//	ymin = 28.5
//	ymax = 30.0
//
//	[datum]
//	navd = 0.276
type criteriaFile struct {
	Box struct {
		XMin, XMax, YMin, YMax float64
	}
	Datum struct {
		NAVD float64
	}
}

func defaultCriteriaFile() criteriaFile {
	var f criteriaFile
	f.Box.XMin, f.Box.XMax = domain.DefaultBox.XMin, domain.DefaultBox.XMax
	f.Box.YMin, f.Box.YMax = domain.DefaultBox.YMin, domain.DefaultBox.YMax
	f.Datum.NAVD = domain.DefaultNAVD
	return f
}

// LoadCriteria reads selection parameters from the gcfg file at path.
// Keys missing from the file keep their defaults; an empty path returns
// DefaultCriteria.
func LoadCriteria(path string) (Criteria, error) {
	if path == "" {
		return DefaultCriteria(), nil
	}
	f := defaultCriteriaFile()
	if err := gcfg.ReadFileInto(&f, path); err != nil {
		return Criteria{}, fmt.Errorf("read criteria file %s: %w", path, err)
	}
	return f.criteria()
}

// ParseCriteria is LoadCriteria for an in-memory document.
func ParseCriteria(src string) (Criteria, error) {
	f := defaultCriteriaFile()
	if err := gcfg.ReadStringInto(&f, src); err != nil {
		return Criteria{}, fmt.Errorf("parse criteria: %w", err)
	}
	return f.criteria()
}

func (f criteriaFile) criteria() (Criteria, error) {
	box := domain.Box{XMin: f.Box.XMin, XMax: f.Box.XMax, YMin: f.Box.YMin, YMax: f.Box.YMax}
	if box.XMin > box.XMax {
		return Criteria{}, fmt.Errorf("box xmin %g is greater than xmax %g", box.XMin, box.XMax)
	}
	if box.YMin > box.YMax {
		return Criteria{}, fmt.Errorf("box ymin %g is greater than ymax %g", box.YMin, box.YMax)
	}
	return Criteria{Box: box, NAVD: f.Datum.NAVD}, nil
}
