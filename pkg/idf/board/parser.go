package board

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/OpenTraceLab/OpenTraceIDF/pkg/idf/geometry"
	"github.com/OpenTraceLab/OpenTraceIDF/pkg/idf/record"
	"github.com/OpenTraceLab/OpenTraceIDF/pkg/idf/section"
)

// SupportedVersion is the only IDF revision this parser accepts.
const SupportedVersion = "3.0"

// boardSections are the section keywords the board/panel grammar
// models. Anything else is skipped with a diagnostic.
var boardSections = map[string]bool{
	"HEADER":        true,
	"BOARD_OUTLINE": true,
	"PANEL_OUTLINE": true,
	"OTHER_OUTLINE": true,
	"ROUTE_OUTLINE": true,
	"PLACE_OUTLINE": true,
	"ROUTE_KEEPOUT": true,
	"VIA_KEEPOUT":   true,
	"PLACE_KEEPOUT": true,
	"PLACE_REGION":  true,
	"DRILLED_HOLES": true,
	"NOTES":         true,
	"PLACEMENT":     true,
}

// ParseFile reads and parses a board or panel .emn file. Input with a
// UTF-8 or UTF-16 byte order mark is decoded transparently.
func ParseFile(filename string, opts ...section.Option) (*Board, []section.Diagnostic, error) {
	if strings.ToLower(filepath.Ext(filename)) != ".emn" {
		return nil, nil, fmt.Errorf("board and panel files must end with .emn, got %q", filepath.Base(filename))
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return Parse(transform.NewReader(file, dec), opts...)
}

// ParseString parses a board or panel document from a string.
func ParseString(input string, opts ...section.Option) (*Board, []section.Diagnostic, error) {
	return Parse(strings.NewReader(input), opts...)
}

// Parse reads a board or panel document from r. It returns the parsed
// document together with the recoverable diagnostics collected along
// the way; the error is non-nil only for fatal, structural failures.
func Parse(r io.Reader, opts ...section.Option) (*Board, []section.Diagnostic, error) {
	cfg := section.NewConfig(opts...)
	rd, err := record.NewReader(r)
	if err != nil {
		return nil, nil, err
	}

	p := &parser{
		cfg: cfg,
		d:   section.NewDispatcher(rd, func(name string) bool { return boardSections[name] }, cfg),
	}

	b := &Board{}
	seenHeader := false
	seenOutline := false
	for {
		sec, err := p.d.Next()
		if err != nil {
			return nil, p.d.Diagnostics(), err
		}
		if sec == nil {
			break
		}
		if !seenHeader && sec.Name != "HEADER" {
			return nil, p.d.Diagnostics(), section.Structuralf(sec.Line, "", "expected .HEADER as the first section, got .%s", sec.Name)
		}

		switch sec.Name {
		case "HEADER":
			if seenHeader {
				return nil, p.d.Diagnostics(), section.Structuralf(sec.Line, "", "duplicate .HEADER section")
			}
			hdr, err := p.parseHeader(sec)
			if err != nil {
				return nil, p.d.Diagnostics(), err
			}
			b.Header = hdr
			p.units = hdr.Units
			seenHeader = true

		case "BOARD_OUTLINE", "PANEL_OUTLINE":
			if seenOutline {
				return nil, p.d.Diagnostics(), section.Structuralf(sec.Line, "", "duplicate .%s section", sec.Name)
			}
			if err := p.checkOutlineKind(sec, b); err != nil {
				return nil, p.d.Diagnostics(), err
			}
			out, err := p.parseBoardOutline(sec)
			if err != nil {
				return nil, p.d.Diagnostics(), err
			}
			b.Outline = out
			seenOutline = true

		case "OTHER_OUTLINE":
			out, err := p.parseOtherOutline(sec)
			if err != nil {
				return nil, p.d.Diagnostics(), err
			}
			b.OtherOutlines = append(b.OtherOutlines, out)

		case "ROUTE_OUTLINE":
			out, err := p.parseRoutingOutline(sec)
			if err != nil {
				return nil, p.d.Diagnostics(), err
			}
			b.RoutingOutlines = append(b.RoutingOutlines, out)

		case "PLACE_OUTLINE":
			out, err := p.parsePlacementOutline(sec)
			if err != nil {
				return nil, p.d.Diagnostics(), err
			}
			b.PlacementOutlines = append(b.PlacementOutlines, out)

		case "ROUTE_KEEPOUT":
			out, err := p.parseRoutingKeepout(sec)
			if err != nil {
				return nil, p.d.Diagnostics(), err
			}
			b.RoutingKeepouts = append(b.RoutingKeepouts, out)

		case "VIA_KEEPOUT":
			out, err := p.parseViaKeepout(sec)
			if err != nil {
				return nil, p.d.Diagnostics(), err
			}
			b.ViaKeepouts = append(b.ViaKeepouts, out)

		case "PLACE_KEEPOUT":
			out, err := p.parsePlacementKeepout(sec)
			if err != nil {
				return nil, p.d.Diagnostics(), err
			}
			b.PlacementKeepouts = append(b.PlacementKeepouts, out)

		case "PLACE_REGION":
			out, err := p.parsePlacementGroup(sec)
			if err != nil {
				return nil, p.d.Diagnostics(), err
			}
			b.PlacementGroups = append(b.PlacementGroups, out)

		case "DRILLED_HOLES":
			holes, err := p.parseHoles(sec)
			if err != nil {
				return nil, p.d.Diagnostics(), err
			}
			b.Holes = append(b.Holes, holes...)

		case "NOTES":
			notes, err := p.parseNotes(sec)
			if err != nil {
				return nil, p.d.Diagnostics(), err
			}
			b.Notes = append(b.Notes, notes...)

		case "PLACEMENT":
			placements, err := p.parsePlacements(sec)
			if err != nil {
				return nil, p.d.Diagnostics(), err
			}
			b.Placements = append(b.Placements, placements...)
		}
	}

	if !seenHeader {
		return nil, p.d.Diagnostics(), section.Structuralf(0, "", "missing .HEADER section")
	}
	if !seenOutline {
		return nil, p.d.Diagnostics(), section.Structuralf(0, "", "missing .%s_OUTLINE section", fileKind(b.Header.FileType))
	}
	return b, p.d.Diagnostics(), nil
}

func fileKind(t FileType) string {
	if t == PanelFile {
		return "PANEL"
	}
	return "BOARD"
}

type parser struct {
	cfg   section.Config
	d     *section.Dispatcher
	units geometry.Units
}

// checkOutlineKind rejects a panel outline in a board file and vice
// versa.
func (p *parser) checkOutlineKind(sec *section.Section, b *Board) error {
	want := fileKind(b.Header.FileType) + "_OUTLINE"
	if sec.Name != want {
		return section.Structuralf(sec.Line, "", "%s file contains .%s (expected .%s)", b.Header.FileType, sec.Name, want)
	}
	return nil
}

// parseHeader consumes the two records of a board/panel .HEADER:
//
//	BOARD_FILE 3.0 "system id" date file-version
//	board-name units
func (p *parser) parseHeader(sec *section.Section) (Header, error) {
	meta, err := p.requireRecord(sec, 5)
	if err != nil {
		return Header{}, err
	}

	var hdr Header
	switch meta.Keyword() {
	case "BOARD_FILE":
		hdr.FileType = BoardFile
	case "PANEL_FILE":
		hdr.FileType = PanelFile
	case "LIBRARY_FILE":
		return Header{}, section.Structuralf(meta.Line, meta.Raw, "file declares LIBRARY_FILE: parse it with the library entry point")
	default:
		return Header{}, section.Structuralf(meta.Line, meta.Raw, "unknown file type %q", meta.Fields[0])
	}

	hdr.Version = meta.Fields[1]
	if hdr.Version != SupportedVersion {
		return Header{}, section.Structuralf(meta.Line, meta.Raw, "unsupported IDF version %q (only %s is supported)", hdr.Version, SupportedVersion)
	}
	hdr.SystemID = meta.Fields[2]
	hdr.Date = meta.Fields[3]
	hdr.FileVersion, err = meta.Int(4)
	if err != nil {
		return Header{}, section.Structuralf(meta.Line, meta.Raw, "bad file version: %v", err)
	}

	name, err := p.requireRecord(sec, 2)
	if err != nil {
		return Header{}, err
	}
	hdr.BoardName = name.Fields[0]
	hdr.Units, err = geometry.ParseUnits(name.Fields[1])
	if err != nil {
		return Header{}, section.Structuralf(name.Line, name.Raw, "%v", err)
	}

	if err := p.drain(sec); err != nil {
		return Header{}, err
	}
	return hdr, nil
}

// requireRecord reads the next record of sec and checks it has at
// least n fields.
func (p *parser) requireRecord(sec *section.Section, n int) (record.Record, error) {
	rec, ok, err := sec.Next()
	if err != nil {
		return record.Record{}, err
	}
	if !ok {
		return record.Record{}, section.Structuralf(sec.Line, "", "section .%s ended before its %d-field record", sec.Name, n)
	}
	if rec.Len() < n {
		return record.Record{}, section.Structuralf(rec.Line, rec.Raw, "expected at least %d fields, got %d", n, rec.Len())
	}
	return rec, nil
}

// drain consumes the remainder of a section, failing on any further
// data record, then runs the section's count check.
func (p *parser) drain(sec *section.Section) error {
	rec, ok, err := sec.Next()
	if err != nil {
		return err
	}
	if ok {
		return section.Structuralf(rec.Line, rec.Raw, "unexpected record in section .%s", sec.Name)
	}
	return sec.Finish()
}

// owner extracts and parses the owner keyword from a section's start
// record arguments.
func (p *parser) owner(sec *section.Section) (geometry.Owner, error) {
	if len(sec.Args) == 0 {
		return geometry.OwnerUnowned, section.Structuralf(sec.Line, "", "section .%s is missing its owner field", sec.Name)
	}
	o, err := geometry.ParseOwner(sec.Args[0])
	if err != nil {
		return geometry.OwnerUnowned, section.Structuralf(sec.Line, "", "%v", err)
	}
	return o, nil
}

// readShape consumes point records (loop x y angle) until the section
// terminator and builds the outline. Loop closure failures become
// warning diagnostics, not errors.
func (p *parser) readShape(sec *section.Section, owner geometry.Owner, label string) (geometry.Outline, error) {
	b := geometry.NewBuilder(p.units, p.cfg.ClosureTolerance)
	for {
		rec, ok, err := sec.Next()
		if err != nil {
			return geometry.Outline{}, err
		}
		if !ok {
			break
		}
		if err := addPoint(b, rec); err != nil {
			return geometry.Outline{}, err
		}
	}
	if err := sec.Finish(); err != nil {
		return geometry.Outline{}, err
	}

	shape, defects := b.Outline(owner, label)
	for _, d := range defects {
		p.d.Report(section.Diagnostic{
			Severity: section.SeverityWarning,
			Kind:     section.KindGeometryDefect,
			Line:     d.Line,
			Message:  fmt.Sprintf("section .%s: %s", sec.Name, d),
		})
	}
	return shape, nil
}

// addPoint feeds one point record into the builder.
func addPoint(b *geometry.Builder, rec record.Record) error {
	label, err := rec.Int(0)
	if err != nil {
		return section.Structuralf(rec.Line, rec.Raw, "bad loop label: %v", err)
	}
	x, err := rec.Float(1)
	if err != nil {
		return section.Structuralf(rec.Line, rec.Raw, "bad x coordinate: %v", err)
	}
	y, err := rec.Float(2)
	if err != nil {
		return section.Structuralf(rec.Line, rec.Raw, "bad y coordinate: %v", err)
	}
	angle, err := rec.Float(3)
	if err != nil {
		return section.Structuralf(rec.Line, rec.Raw, "bad angle: %v", err)
	}
	b.Add(rec.Line, label, x, y, angle)
	return nil
}

// parseBoardOutline handles .BOARD_OUTLINE / .PANEL_OUTLINE: owner on
// the start record, a thickness record, then points.
func (p *parser) parseBoardOutline(sec *section.Section) (Outline, error) {
	owner, err := p.owner(sec)
	if err != nil {
		return Outline{}, err
	}
	rec, err := p.requireRecord(sec, 1)
	if err != nil {
		return Outline{}, err
	}
	thickness, err := rec.Float(0)
	if err != nil {
		return Outline{}, section.Structuralf(rec.Line, rec.Raw, "bad board thickness: %v", err)
	}
	shape, err := p.readShape(sec, owner, "")
	if err != nil {
		return Outline{}, err
	}
	return Outline{Thickness: p.units.ToMM(thickness), Shape: shape}, nil
}

// parseOtherOutline handles .OTHER_OUTLINE: owner, then an
// "id thickness side" record, then points.
func (p *parser) parseOtherOutline(sec *section.Section) (OtherOutline, error) {
	owner, err := p.owner(sec)
	if err != nil {
		return OtherOutline{}, err
	}
	rec, err := p.requireRecord(sec, 3)
	if err != nil {
		return OtherOutline{}, err
	}
	thickness, err := rec.Float(1)
	if err != nil {
		return OtherOutline{}, section.Structuralf(rec.Line, rec.Raw, "bad extrude thickness: %v", err)
	}
	shape, err := p.readShape(sec, owner, rec.Fields[0])
	if err != nil {
		return OtherOutline{}, err
	}
	return OtherOutline{
		ID:               rec.Fields[0],
		ExtrudeThickness: p.units.ToMM(thickness),
		Side:             strings.ToUpper(rec.Fields[2]),
		Shape:            shape,
	}, nil
}

// parseRoutingOutline handles .ROUTE_OUTLINE: owner, a routing-layers
// record, then points.
func (p *parser) parseRoutingOutline(sec *section.Section) (RoutingOutline, error) {
	owner, err := p.owner(sec)
	if err != nil {
		return RoutingOutline{}, err
	}
	rec, err := p.requireRecord(sec, 1)
	if err != nil {
		return RoutingOutline{}, err
	}
	shape, err := p.readShape(sec, owner, "")
	if err != nil {
		return RoutingOutline{}, err
	}
	return RoutingOutline{Layers: strings.ToUpper(rec.Fields[0]), Shape: shape}, nil
}

// parsePlacementOutline handles .PLACE_OUTLINE: owner, a "side height"
// record, then points.
func (p *parser) parsePlacementOutline(sec *section.Section) (PlacementOutline, error) {
	owner, err := p.owner(sec)
	if err != nil {
		return PlacementOutline{}, err
	}
	rec, err := p.requireRecord(sec, 2)
	if err != nil {
		return PlacementOutline{}, err
	}
	height, err := rec.Float(1)
	if err != nil {
		return PlacementOutline{}, section.Structuralf(rec.Line, rec.Raw, "bad outline height: %v", err)
	}
	shape, err := p.readShape(sec, owner, "")
	if err != nil {
		return PlacementOutline{}, err
	}
	return PlacementOutline{
		Side:   strings.ToUpper(rec.Fields[0]),
		Height: p.units.ToMM(height),
		Shape:  shape,
	}, nil
}

// parseRoutingKeepout handles .ROUTE_KEEPOUT, shaped like
// .ROUTE_OUTLINE.
func (p *parser) parseRoutingKeepout(sec *section.Section) (RoutingKeepout, error) {
	owner, err := p.owner(sec)
	if err != nil {
		return RoutingKeepout{}, err
	}
	rec, err := p.requireRecord(sec, 1)
	if err != nil {
		return RoutingKeepout{}, err
	}
	shape, err := p.readShape(sec, owner, "")
	if err != nil {
		return RoutingKeepout{}, err
	}
	return RoutingKeepout{Layers: strings.ToUpper(rec.Fields[0]), Shape: shape}, nil
}

// parseViaKeepout handles .VIA_KEEPOUT: owner, then points directly.
func (p *parser) parseViaKeepout(sec *section.Section) (ViaKeepout, error) {
	owner, err := p.owner(sec)
	if err != nil {
		return ViaKeepout{}, err
	}
	shape, err := p.readShape(sec, owner, "")
	if err != nil {
		return ViaKeepout{}, err
	}
	return ViaKeepout{Shape: shape}, nil
}

// parsePlacementKeepout handles .PLACE_KEEPOUT, shaped like
// .PLACE_OUTLINE.
func (p *parser) parsePlacementKeepout(sec *section.Section) (PlacementKeepout, error) {
	owner, err := p.owner(sec)
	if err != nil {
		return PlacementKeepout{}, err
	}
	rec, err := p.requireRecord(sec, 2)
	if err != nil {
		return PlacementKeepout{}, err
	}
	height, err := rec.Float(1)
	if err != nil {
		return PlacementKeepout{}, section.Structuralf(rec.Line, rec.Raw, "bad keepout height: %v", err)
	}
	shape, err := p.readShape(sec, owner, "")
	if err != nil {
		return PlacementKeepout{}, err
	}
	return PlacementKeepout{
		Side:   strings.ToUpper(rec.Fields[0]),
		Height: p.units.ToMM(height),
		Shape:  shape,
	}, nil
}

// parsePlacementGroup handles .PLACE_REGION: owner, a "side group"
// record, then points.
func (p *parser) parsePlacementGroup(sec *section.Section) (PlacementGroup, error) {
	owner, err := p.owner(sec)
	if err != nil {
		return PlacementGroup{}, err
	}
	rec, err := p.requireRecord(sec, 2)
	if err != nil {
		return PlacementGroup{}, err
	}
	shape, err := p.readShape(sec, owner, rec.Fields[1])
	if err != nil {
		return PlacementGroup{}, err
	}
	return PlacementGroup{
		Side:  strings.ToUpper(rec.Fields[0]),
		Group: rec.Fields[1],
		Shape: shape,
	}, nil
}

// parseHoles handles .DRILLED_HOLES: one hole per record, in the form
// "diameter x y plating refdes type owner".
func (p *parser) parseHoles(sec *section.Section) ([]Hole, error) {
	var holes []Hole
	for {
		rec, ok, err := sec.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if rec.Len() < 7 {
			return nil, section.Structuralf(rec.Line, rec.Raw, "drilled hole record needs 7 fields, got %d", rec.Len())
		}

		diameter, err := rec.Float(0)
		if err != nil {
			return nil, section.Structuralf(rec.Line, rec.Raw, "bad hole diameter: %v", err)
		}
		x, err := rec.Float(1)
		if err != nil {
			return nil, section.Structuralf(rec.Line, rec.Raw, "bad x coordinate: %v", err)
		}
		y, err := rec.Float(2)
		if err != nil {
			return nil, section.Structuralf(rec.Line, rec.Raw, "bad y coordinate: %v", err)
		}

		var plated bool
		switch strings.ToUpper(rec.Fields[3]) {
		case "PTH":
			plated = true
		case "NPTH":
			plated = false
		default:
			return nil, section.Structuralf(rec.Line, rec.Raw, "unknown plating style %q (expected PTH or NPTH)", rec.Fields[3])
		}

		owner, err := geometry.ParseOwner(rec.Fields[6])
		if err != nil {
			return nil, section.Structuralf(rec.Line, rec.Raw, "%v", err)
		}

		holes = append(holes, Hole{
			Diameter: p.units.ToMM(diameter),
			Position: geometry.Point{X: p.units.ToMM(x), Y: p.units.ToMM(y)},
			Plated:   plated,
			RefDes:   rec.Fields[4],
			// User-defined hole types are allowed, so the type is kept
			// as written rather than checked against the known set.
			Type:  strings.ToUpper(rec.Fields[5]),
			Owner: owner,
		})
	}
	if err := sec.Finish(); err != nil {
		return nil, err
	}
	return holes, nil
}

// parseNotes handles .NOTES: one annotation per record, in the form
// `x y text-height text-length "text"`.
func (p *parser) parseNotes(sec *section.Section) ([]Note, error) {
	var notes []Note
	for {
		rec, ok, err := sec.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if rec.Len() < 5 {
			return nil, section.Structuralf(rec.Line, rec.Raw, "note record needs 5 fields, got %d", rec.Len())
		}

		x, err := rec.Float(0)
		if err != nil {
			return nil, section.Structuralf(rec.Line, rec.Raw, "bad x coordinate: %v", err)
		}
		y, err := rec.Float(1)
		if err != nil {
			return nil, section.Structuralf(rec.Line, rec.Raw, "bad y coordinate: %v", err)
		}
		height, err := rec.Float(2)
		if err != nil {
			return nil, section.Structuralf(rec.Line, rec.Raw, "bad text height: %v", err)
		}
		length, err := rec.Float(3)
		if err != nil {
			return nil, section.Structuralf(rec.Line, rec.Raw, "bad text length: %v", err)
		}

		notes = append(notes, Note{
			Position:   geometry.Point{X: p.units.ToMM(x), Y: p.units.ToMM(y)},
			TextHeight: p.units.ToMM(height),
			TextLength: p.units.ToMM(length),
			Text:       rec.Fields[4],
		})
	}
	if err := sec.Finish(); err != nil {
		return nil, err
	}
	return notes, nil
}

// parsePlacements handles .PLACEMENT. Each placement spans two
// records:
//
//	package part-number refdes
//	x y mounting-offset rotation side status
func (p *parser) parsePlacements(sec *section.Section) ([]Placement, error) {
	var placements []Placement
	for {
		first, ok, err := sec.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if first.Len() < 3 {
			return nil, section.Structuralf(first.Line, first.Raw, "placement record needs 3 fields (package, part, refdes), got %d", first.Len())
		}

		second, ok, err := sec.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, section.Structuralf(first.Line, first.Raw, "placement of %q is missing its position record", first.Fields[2])
		}
		if second.Len() < 6 {
			return nil, section.Structuralf(second.Line, second.Raw, "placement position record needs 6 fields, got %d", second.Len())
		}

		x, err := second.Float(0)
		if err != nil {
			return nil, section.Structuralf(second.Line, second.Raw, "bad x coordinate: %v", err)
		}
		y, err := second.Float(1)
		if err != nil {
			return nil, section.Structuralf(second.Line, second.Raw, "bad y coordinate: %v", err)
		}
		offset, err := second.Float(2)
		if err != nil {
			return nil, section.Structuralf(second.Line, second.Raw, "bad mounting offset: %v", err)
		}
		rotation, err := second.Float(3)
		if err != nil {
			return nil, section.Structuralf(second.Line, second.Raw, "bad rotation: %v", err)
		}

		var status Status
		switch strings.ToUpper(second.Fields[5]) {
		case "PLACED":
			status = StatusPlaced
		case "UNPLACED":
			status = StatusUnplaced
		case "ECAD":
			status = StatusECAD
		case "MCAD":
			status = StatusMCAD
		default:
			status = StatusUnknown
		}

		placements = append(placements, Placement{
			Package:        first.Fields[0],
			PartNumber:     first.Fields[1],
			RefDes:         first.Fields[2],
			Position:       geometry.Point{X: p.units.ToMM(x), Y: p.units.ToMM(y)},
			MountingOffset: p.units.ToMM(offset),
			Rotation:       rotation,
			Side:           strings.ToUpper(second.Fields[4]),
			Status:         status,
		})
	}

	// The declared count on .PLACEMENT counts placements, not raw
	// records.
	sec.SetEntities(len(placements))
	if err := sec.Finish(); err != nil {
		return nil, err
	}
	return placements, nil
}
