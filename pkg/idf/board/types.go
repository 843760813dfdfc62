package board

import (
	"github.com/OpenTraceLab/OpenTraceIDF/pkg/idf/geometry"
)

// FileType distinguishes board files from panel files. Both share one
// grammar; the header says which one a file is.
type FileType int

const (
	BoardFile FileType = iota
	PanelFile
)

func (t FileType) String() string {
	if t == PanelFile {
		return "PANEL_FILE"
	}
	return "BOARD_FILE"
}

// Header is the .HEADER section of a board or panel file.
type Header struct {
	FileType    FileType
	Version     string
	SystemID    string
	Date        string
	FileVersion int
	BoardName   string
	// Units is the unit system the file declared. All geometry in the
	// parsed document is already converted to millimeters.
	Units geometry.Units
}

// Outline is the .BOARD_OUTLINE / .PANEL_OUTLINE section: the board
// shape plus its thickness.
type Outline struct {
	// Thickness of the board in millimeters.
	Thickness float64
	Shape     geometry.Outline
}

// OtherOutline is an .OTHER_OUTLINE section: an additional named shape
// such as a heatsink or stiffener.
type OtherOutline struct {
	ID string
	// ExtrudeThickness in millimeters.
	ExtrudeThickness float64
	Side             string
	Shape            geometry.Outline
}

// RoutingOutline is a .ROUTE_OUTLINE section: a region where routing is
// allowed on the given layers (TOP, BOTTOM, BOTH, INNER or ALL).
type RoutingOutline struct {
	Layers string
	Shape  geometry.Outline
}

// PlacementOutline is a .PLACE_OUTLINE section: a region where
// components may be placed, with a height limit.
type PlacementOutline struct {
	Side string
	// Height limit in millimeters. Zero means unlimited.
	Height float64
	Shape  geometry.Outline
}

// RoutingKeepout is a .ROUTE_KEEPOUT section.
type RoutingKeepout struct {
	Layers string
	Shape  geometry.Outline
}

// ViaKeepout is a .VIA_KEEPOUT section.
type ViaKeepout struct {
	Shape geometry.Outline
}

// PlacementKeepout is a .PLACE_KEEPOUT section: a region where
// components at or above the given height may not be placed.
type PlacementKeepout struct {
	Side   string
	Height float64
	Shape  geometry.Outline
}

// PlacementGroup is a .PLACE_REGION section: an area where only
// components of the named group should go.
type PlacementGroup struct {
	Side  string
	Group string
	Shape geometry.Outline
}

// Drilled hole types from the specification. Files may carry other,
// user-defined types; they are kept verbatim.
const (
	HolePin      = "PIN"
	HoleVia      = "VIA"
	HoleMounting = "MTG"
	HoleTooling  = "TOOL"
)

// Hole is one row of the .DRILLED_HOLES section.
type Hole struct {
	// Diameter in millimeters.
	Diameter float64
	Position geometry.Point
	// Plated is true for PTH (conducting) holes.
	Plated bool
	// RefDes associates the hole with a component, or BOARD, NOREFDES
	// or PANEL.
	RefDes string
	Type   string
	Owner  geometry.Owner
}

// Note is one row of the .NOTES section: a free-text annotation placed
// on the board.
type Note struct {
	Position geometry.Point
	// TextHeight and TextLength in millimeters.
	TextHeight float64
	TextLength float64
	Text       string
}

// Status is the placement state of a component.
type Status int

const (
	StatusPlaced Status = iota
	StatusUnplaced
	// StatusECAD and StatusMCAD mark placements whose position only the
	// named system may change.
	StatusECAD
	StatusMCAD
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusPlaced:
		return "PLACED"
	case StatusUnplaced:
		return "UNPLACED"
	case StatusECAD:
		return "ECAD"
	case StatusMCAD:
		return "MCAD"
	default:
		return "UNKNOWN"
	}
}

// Placement is one component instance from the .PLACEMENT section.
// A placement on a panel with RefDes "BOARD" places a whole board.
type Placement struct {
	Package    string
	PartNumber string
	RefDes     string
	Position   geometry.Point
	// MountingOffset above the board surface, in millimeters.
	MountingOffset float64
	// Rotation in degrees counterclockwise.
	Rotation float64
	Side     string
	Status   Status
}

// Board is a parsed board or panel document. It owns all nested
// entities; nothing is shared between documents.
type Board struct {
	Header            Header
	Outline           Outline
	OtherOutlines     []OtherOutline
	RoutingOutlines   []RoutingOutline
	PlacementOutlines []PlacementOutline
	RoutingKeepouts   []RoutingKeepout
	ViaKeepouts       []ViaKeepout
	PlacementKeepouts []PlacementKeepout
	PlacementGroups   []PlacementGroup
	Holes             []Hole
	Notes             []Note
	Placements        []Placement
}

// IsPanel reports whether the document is a panel rather than a single
// board.
func (b *Board) IsPanel() bool {
	return b.Header.FileType == PanelFile
}
