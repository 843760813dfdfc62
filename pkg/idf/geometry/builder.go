package geometry

import (
	"fmt"
	"math"
)

// Defect is a recoverable geometry problem found while building an
// outline. The outline is kept, flagged invalid, and the defect is
// surfaced to the caller as a diagnostic.
type Defect struct {
	Line    int
	Loop    int
	Message string
}

func (d Defect) String() string {
	return fmt.Sprintf("loop %d: %s", d.Loop, d.Message)
}

// Builder reconstructs outline loops from the ordered point records of
// one outline section. Points are grouped into loops by their loop
// label; within a loop the first point is the start and every further
// point adds a segment, a straight line when its angle is zero and an
// arc otherwise.
//
// Coordinates are converted to millimeters as they are added, so all
// geometry leaving the builder is normalized exactly once.
type Builder struct {
	units Units
	tol   float64

	loops   []Loop
	defects []Defect
	cur     *Loop
	curEnd  Point
}

// NewBuilder creates a builder for an outline whose source coordinates
// are in units. tol is the loop closure tolerance in millimeters.
func NewBuilder(units Units, tol float64) *Builder {
	return &Builder{units: units, tol: tol}
}

// Add appends one point record (loop label, x, y, angle) in source
// units. line is the record's position in the file, for diagnostics.
func (b *Builder) Add(line, label int, x, y, angle float64) {
	p := Point{X: b.units.ToMM(x), Y: b.units.ToMM(y)}

	if b.cur == nil || b.cur.Label != label {
		b.closeCurrent()
		b.cur = &Loop{Label: label, Line: line, Start: p}
		b.curEnd = p
		return
	}

	seg := Segment{Kind: SegmentLine, End: p}
	if angle != 0 {
		seg.Kind = SegmentArc
		seg.SweepAngle = angle
		if a := math.Abs(angle); a > 360 {
			b.defects = append(b.defects, Defect{
				Line:    line,
				Loop:    label,
				Message: fmt.Sprintf("arc sweep %g exceeds 360 degrees", angle),
			})
		}
	}
	b.cur.Segments = append(b.cur.Segments, seg)
	b.curEnd = p
}

// closeCurrent validates the loop being accumulated and moves it into
// the finished list.
func (b *Builder) closeCurrent() {
	if b.cur == nil {
		return
	}
	loop := *b.cur
	b.cur = nil

	switch {
	case loop.IsCircle():
		// A center plus one ±360 point closes by definition.
		loop.Closed = true

	case loop.Points() < 3:
		b.defects = append(b.defects, Defect{
			Line:    loop.Line,
			Loop:    loop.Label,
			Message: fmt.Sprintf("loop has only %d points", loop.Points()),
		})

	default:
		gap := b.curEnd.DistanceTo(loop.Start)
		if gap <= b.tol {
			loop.Closed = true
		} else {
			b.defects = append(b.defects, Defect{
				Line:    loop.Line,
				Loop:    loop.Label,
				Message: fmt.Sprintf("loop does not close: end point is %.6g mm from start", gap),
			})
		}
	}

	b.loops = append(b.loops, loop)
}

// Outline finishes the build and returns the outline together with any
// defects found. The outline is valid only if every loop closed
// cleanly.
func (b *Builder) Outline(owner Owner, label string) (Outline, []Defect) {
	b.closeCurrent()

	valid := len(b.defects) == 0
	for _, l := range b.loops {
		if !l.Closed {
			valid = false
		}
	}
	return Outline{
		Owner: owner,
		Label: label,
		Loops: b.loops,
		Valid: valid && len(b.loops) > 0,
	}, b.defects
}
