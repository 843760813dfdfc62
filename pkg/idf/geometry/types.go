package geometry

import (
	"fmt"
	"math"
	"strings"
)

// Units is the length unit system a file or component declares.
// Parsed documents always store millimeters; Units only describes the
// source and drives the one-time conversion on the way in.
type Units int

const (
	UnitsMM Units = iota
	UnitsTHOU
)

// thouToMM is the conversion from thousandths of an inch.
const thouToMM = 0.0254

// ParseUnits maps the IDF units keyword to a Units value.
func ParseUnits(s string) (Units, error) {
	switch strings.ToUpper(s) {
	case "MM":
		return UnitsMM, nil
	case "THOU":
		return UnitsTHOU, nil
	default:
		return UnitsMM, fmt.Errorf("unknown unit system %q (expected MM or THOU)", s)
	}
}

func (u Units) String() string {
	switch u {
	case UnitsTHOU:
		return "THOU"
	default:
		return "MM"
	}
}

// ToMM converts a length in this unit system to millimeters.
func (u Units) ToMM(v float64) float64 {
	if u == UnitsTHOU {
		return v * thouToMM
	}
	return v
}

// Owner identifies which side of the ECAD/MCAD exchange controls an
// entity.
type Owner int

const (
	OwnerUnowned Owner = iota
	OwnerECAD
	OwnerMCAD
)

// ParseOwner maps the IDF owner keyword to an Owner value.
func ParseOwner(s string) (Owner, error) {
	switch strings.ToUpper(s) {
	case "ECAD":
		return OwnerECAD, nil
	case "MCAD":
		return OwnerMCAD, nil
	case "UNOWNED":
		return OwnerUnowned, nil
	default:
		return OwnerUnowned, fmt.Errorf("unknown owner %q (expected ECAD, MCAD or UNOWNED)", s)
	}
}

func (o Owner) String() string {
	switch o {
	case OwnerECAD:
		return "ECAD"
	case OwnerMCAD:
		return "MCAD"
	default:
		return "UNOWNED"
	}
}

// Point is a 2D position in millimeters.
type Point struct {
	X, Y float64
}

// DistanceTo returns the Euclidean distance to p.
func (a Point) DistanceTo(p Point) float64 {
	return math.Hypot(a.X-p.X, a.Y-p.Y)
}

// SegmentKind discriminates the Segment variant.
type SegmentKind int

const (
	SegmentLine SegmentKind = iota
	SegmentArc
)

// Segment is one edge of an outline loop, from the previous point to
// End. A line has SweepAngle 0; an arc sweeps the signed angle from the
// previous point to End, positive counterclockwise. A sweep of ±360
// denotes a full circle, with the loop start as its center and End on
// the circumference.
type Segment struct {
	Kind       SegmentKind
	End        Point
	SweepAngle float64
}

// Loop is one closed path within an outline.
type Loop struct {
	// Label is the loop identifier from the file: 0 for the outer
	// counterclockwise loop, higher values for clockwise cutouts.
	Label int
	// Line is where the loop starts in the source file.
	Line     int
	Start    Point
	Segments []Segment
	// Closed reports that the path returns to Start within tolerance.
	Closed bool
}

// IsCircle reports whether the loop is a full circle (a single ±360
// arc around the start point).
func (l Loop) IsCircle() bool {
	return len(l.Segments) == 1 &&
		l.Segments[0].Kind == SegmentArc &&
		math.Abs(math.Abs(l.Segments[0].SweepAngle)-360) < 1e-9
}

// Points returns the number of source points in the loop, counting the
// start.
func (l Loop) Points() int {
	return len(l.Segments) + 1
}

// Outline is a closed shape built from one or more loops: an outer
// boundary plus optional cutouts.
type Outline struct {
	Owner Owner
	// Label names secondary outlines that carry an identifier in the
	// file (other outlines, placement groups). Empty otherwise.
	Label string
	Loops []Loop
	// Valid is false when any loop failed validation. The geometry is
	// retained either way so a defective outline does not block use of
	// the rest of the document.
	Valid bool
}
