package library

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

var librarySections = map[string]bool{
	"HEADER":     true,
	"ELECTRICAL": true,
	"MECHANICAL": true,
}

// ParseFile reads and parses a library .emp file. Input with a UTF-8
// or UTF-16 byte order mark is decoded transparently.
func ParseFile(filename string, opts ...section.Option) (*Library, []section.Diagnostic, error) {
	if strings.ToLower(filepath.Ext(filename)) != ".emp" {
		return nil, nil, fmt.Errorf("library files must end with .emp, got %q", filepath.Base(filename))
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return Parse(transform.NewReader(file, dec), opts...)
}

// ParseString parses a library document from a string.
func ParseString(input string, opts ...section.Option) (*Library, []section.Diagnostic, error) {
	return Parse(strings.NewReader(input), opts...)
}

// Parse reads a library document from r. It returns the parsed library
// together with the recoverable diagnostics collected along the way;
// the error is non-nil only for fatal, structural failures.
func Parse(r io.Reader, opts ...section.Option) (*Library, []section.Diagnostic, error) {
	cfg := section.NewConfig(opts...)
	rd, err := record.NewReader(r)
	if err != nil {
		return nil, nil, err
	}

	p := &parser{
		cfg:  cfg,
		d:    section.NewDispatcher(rd, func(name string) bool { return librarySections[name] }, cfg),
		seen: make(map[string]int),
	}

	lib := &Library{}
	seenHeader := false
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
			lib.Header = hdr
			seenHeader = true

		case "ELECTRICAL":
			comp, err := p.parseComponent(sec, Electrical)
			if err != nil {
				return nil, p.d.Diagnostics(), err
			}
			lib.Components = append(lib.Components, comp)

		case "MECHANICAL":
			comp, err := p.parseComponent(sec, Mechanical)
			if err != nil {
				return nil, p.d.Diagnostics(), err
			}
			lib.Components = append(lib.Components, comp)
		}
	}

	if !seenHeader {
		return nil, p.d.Diagnostics(), section.Structuralf(0, "", "missing .HEADER section")
	}
	return lib, p.d.Diagnostics(), nil
}

type parser struct {
	cfg section.Config
	d   *section.Dispatcher
	// seen maps geometry names to the line that defined them, to
	// enforce uniqueness within the library.
	seen map[string]int
}

// parseHeader consumes the single metadata record of a library
// .HEADER:
//
//	LIBRARY_FILE 3.0 "system id" date file-version
func (p *parser) parseHeader(sec *section.Section) (Header, error) {
	rec, ok, err := sec.Next()
	if err != nil {
		return Header{}, err
	}
	if !ok {
		return Header{}, section.Structuralf(sec.Line, "", "empty .HEADER section")
	}
	if rec.Len() < 5 {
		return Header{}, section.Structuralf(rec.Line, rec.Raw, "library header needs 5 fields, got %d", rec.Len())
	}

	switch rec.Keyword() {
	case "LIBRARY_FILE":
		// expected
	case "BOARD_FILE", "PANEL_FILE":
		return Header{}, section.Structuralf(rec.Line, rec.Raw, "file declares %s: parse it with the board entry point", rec.Fields[0])
	default:
		return Header{}, section.Structuralf(rec.Line, rec.Raw, "unknown file type %q", rec.Fields[0])
	}

	hdr := Header{Version: rec.Fields[1], SystemID: rec.Fields[2], Date: rec.Fields[3]}
	if hdr.Version != SupportedVersion {
		return Header{}, section.Structuralf(rec.Line, rec.Raw, "unsupported IDF version %q (only %s is supported)", hdr.Version, SupportedVersion)
	}
	hdr.FileVersion, err = rec.Int(4)
	if err != nil {
		return Header{}, section.Structuralf(rec.Line, rec.Raw, "bad file version: %v", err)
	}

	// The header must contain nothing else.
	rec, ok, err = sec.Next()
	if err != nil {
		return Header{}, err
	}
	if ok {
		return Header{}, section.Structuralf(rec.Line, rec.Raw, "unexpected record in .HEADER")
	}
	if err := sec.Finish(); err != nil {
		return Header{}, err
	}
	return hdr, nil
}

// parseComponent consumes one .ELECTRICAL or .MECHANICAL section:
//
//	geometry-name part-number units height
//	<point records>
//	PROP name value        (electrical only)
func (p *parser) parseComponent(sec *section.Section, kind ComponentKind) (Component, error) {
	meta, ok, err := sec.Next()
	if err != nil {
		return Component{}, err
	}
	if !ok {
		return Component{}, section.Structuralf(sec.Line, "", "empty .%s section", sec.Name)
	}
	if meta.Len() < 4 {
		return Component{}, section.Structuralf(meta.Line, meta.Raw, "component record needs 4 fields (geometry, part, units, height), got %d", meta.Len())
	}

	comp := Component{
		Kind:       kind,
		Geometry:   meta.Fields[0],
		PartNumber: meta.Fields[1],
	}
	if prev, dup := p.seen[comp.Geometry]; dup {
		return Component{}, section.Structuralf(meta.Line, meta.Raw, "duplicate geometry name %q (first defined at line %d)", comp.Geometry, prev)
	}
	p.seen[comp.Geometry] = meta.Line

	comp.SourceUnits, err = geometry.ParseUnits(meta.Fields[2])
	if err != nil {
		return Component{}, section.Structuralf(meta.Line, meta.Raw, "%v", err)
	}
	height, err := meta.Float(3)
	if err != nil {
		return Component{}, section.Structuralf(meta.Line, meta.Raw, "bad component height: %v", err)
	}
	comp.Height = comp.SourceUnits.ToMM(height)

	b := geometry.NewBuilder(comp.SourceUnits, p.cfg.ClosureTolerance)
	for {
		rec, ok, err := sec.Next()
		if err != nil {
			return Component{}, err
		}
		if !ok {
			break
		}

		if rec.Keyword() == "PROP" {
			if kind != Electrical {
				return Component{}, section.Structuralf(rec.Line, rec.Raw, "PROP record in .MECHANICAL section")
			}
			if rec.Len() < 3 {
				return Component{}, section.Structuralf(rec.Line, rec.Raw, "PROP record needs 3 fields, got %d", rec.Len())
			}
			value, err := rec.Float(2)
			if err != nil {
				return Component{}, section.Structuralf(rec.Line, rec.Raw, "bad property value: %v", err)
			}
			if comp.Properties == nil {
				comp.Properties = make(map[string]float64)
			}
			comp.Properties[strings.ToUpper(rec.Fields[1])] = value
			continue
		}

		label, err := rec.Int(0)
		if err != nil {
			return Component{}, section.Structuralf(rec.Line, rec.Raw, "bad loop label: %v", err)
		}
		x, err := rec.Float(1)
		if err != nil {
			return Component{}, section.Structuralf(rec.Line, rec.Raw, "bad x coordinate: %v", err)
		}
		y, err := rec.Float(2)
		if err != nil {
			return Component{}, section.Structuralf(rec.Line, rec.Raw, "bad y coordinate: %v", err)
		}
		angle, err := rec.Float(3)
		if err != nil {
			return Component{}, section.Structuralf(rec.Line, rec.Raw, "bad angle: %v", err)
		}
		b.Add(rec.Line, label, x, y, angle)
	}
	if err := sec.Finish(); err != nil {
		return Component{}, err
	}

	shape, defects := b.Outline(geometry.OwnerUnowned, comp.Geometry)
	for _, d := range defects {
		p.d.Report(section.Diagnostic{
			Severity: section.SeverityWarning,
			Kind:     section.KindGeometryDefect,
			Line:     d.Line,
			Message:  fmt.Sprintf("component %s: %s", comp.Geometry, d),
		})
	}
	comp.Outline = shape
	return comp, nil
}
