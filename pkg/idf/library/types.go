package library

import (
	"github.com/OpenTraceLab/OpenTraceIDF/pkg/idf/geometry"
)

// Header is the .HEADER section of a library .emp file.
type Header struct {
	Version     string
	SystemID    string
	Date        string
	FileVersion int
}

// ComponentKind says which section a component came from.
type ComponentKind int

const (
	Electrical ComponentKind = iota
	Mechanical
)

func (k ComponentKind) String() string {
	if k == Mechanical {
		return "MECHANICAL"
	}
	return "ELECTRICAL"
}

// Component is one .ELECTRICAL or .MECHANICAL entry: the mechanical
// outline of a package plus, for electrical components, named
// properties (capacitance, power ratings and so on).
type Component struct {
	Kind ComponentKind
	// Geometry is the package name placements refer to. Unique within
	// a library.
	Geometry   string
	PartNumber string
	// SourceUnits is the unit system the component declared; the
	// stored outline and height are millimeters.
	SourceUnits geometry.Units
	// Height above the board in millimeters.
	Height  float64
	Outline geometry.Outline
	// Properties holds PROP records. Nil for mechanical components.
	Properties map[string]float64
}

// Library is a parsed component library document.
type Library struct {
	Header     Header
	Components []Component
}

// Component returns the component with the given geometry name.
func (l *Library) Component(geometryName string) (Component, bool) {
	for _, c := range l.Components {
		if c.Geometry == geometryName {
			return c, true
		}
	}
	return Component{}, false
}
