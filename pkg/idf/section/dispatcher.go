package section

import (
	"fmt"
	"io"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceIDF/pkg/idf/record"
)

// state is the dispatcher's position in the file.
type state int

const (
	stateIdle state = iota
	stateInSection
	stateError
)

// Dispatcher walks the top level of an IDF file, recognizing section
// start and end markers and routing the records in between. Each parse
// owns a fresh Dispatcher; independent parses never share state.
type Dispatcher struct {
	rd    *record.Reader
	cfg   Config
	known func(name string) bool

	state   state
	current string
	diags   []Diagnostic
}

// NewDispatcher creates a dispatcher over rd. known reports whether a
// section keyword is one the caller models; unknown sections are
// skipped through their terminator rather than failing the parse.
func NewDispatcher(rd *record.Reader, known func(name string) bool, cfg Config) *Dispatcher {
	return &Dispatcher{rd: rd, cfg: cfg, known: known, state: stateIdle}
}

// Diagnostics returns everything recoverable collected so far.
func (d *Dispatcher) Diagnostics() []Diagnostic {
	return d.diags
}

// Report appends a diagnostic. Section handlers use it to surface
// recoverable defects found below the dispatch level.
func (d *Dispatcher) Report(diag Diagnostic) {
	d.diags = append(d.diags, diag)
}

// Next returns the next section the caller models, skipping unknown
// sections. It returns (nil, nil) at end of input. Any top-level record
// that is not a section marker is a fatal error.
func (d *Dispatcher) Next() (*Section, error) {
	if d.state == stateInSection {
		return nil, fmt.Errorf("section .%s is still open", d.current)
	}
	for {
		rec, err := d.rd.Next()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			d.state = stateError
			return nil, err
		}

		if rec.IsSectionEnd() {
			d.state = stateError
			return nil, Structuralf(rec.Line, rec.Raw, "terminator .END_%s without an open section", rec.SectionName())
		}
		if !rec.IsSectionStart() {
			d.state = stateError
			return nil, Structuralf(rec.Line, rec.Raw, "unrecognized top-level content")
		}

		name := rec.SectionName()
		if !d.known(name) {
			if err := d.skip(name, rec.Line); err != nil {
				d.state = stateError
				return nil, err
			}
			d.Report(Diagnostic{
				Severity: SeverityInfo,
				Kind:     KindUnknownSection,
				Line:     rec.Line,
				Message:  fmt.Sprintf("skipped unrecognized section .%s", name),
			})
			continue
		}

		sec := &Section{
			Name:     name,
			Args:     rec.Fields[1:],
			Line:     rec.Line,
			declared: -1,
			d:        d,
		}
		// A single integer argument on the section header declares how
		// many entities the section claims to contain.
		if len(sec.Args) == 1 {
			if n, err := strconv.Atoi(sec.Args[0]); err == nil && n >= 0 {
				sec.declared = n
				sec.Args = nil
			}
		}
		d.state = stateInSection
		d.current = name
		return sec, nil
	}
}

// skip consumes an unrecognized section through its terminator. Nested
// section starts are rejected: IDF sections do not nest, and a start
// marker inside a section means the file has lost synchronization.
func (d *Dispatcher) skip(name string, startLine int) error {
	for {
		rec, err := d.rd.Next()
		if err == io.EOF {
			return Structuralf(startLine, "", "section .%s is never terminated", name)
		}
		if err != nil {
			return err
		}
		if rec.IsSectionEnd() {
			if rec.SectionName() != name {
				return Structuralf(rec.Line, rec.Raw, "terminator .END_%s does not match open section .%s", rec.SectionName(), name)
			}
			return nil
		}
		if rec.IsSectionStart() {
			return Structuralf(rec.Line, rec.Raw, "section .%s starts inside unterminated section .%s", rec.SectionName(), name)
		}
	}
}

// Section is one delimited block of records being handed to a handler.
type Section struct {
	// Name is the section keyword without the leading dot, uppercased.
	Name string
	// Args are the fields following the keyword on the start record.
	Args []string
	// Line is where the section starts.
	Line int

	declared int
	records  int
	entities int
	hasEnt   bool
	endLine  int
	done     bool
	d        *Dispatcher
}

// Next returns the next data record of the section. ok is false once
// the terminator has been consumed; the caller must then call Finish.
func (s *Section) Next() (record.Record, bool, error) {
	if s.done {
		return record.Record{}, false, nil
	}
	rec, err := s.d.rd.Next()
	if err == io.EOF {
		s.d.state = stateError
		return record.Record{}, false, Structuralf(s.Line, "", "section .%s is never terminated", s.Name)
	}
	if err != nil {
		s.d.state = stateError
		return record.Record{}, false, err
	}

	if rec.IsSectionEnd() {
		if rec.SectionName() != s.Name {
			s.d.state = stateError
			return record.Record{}, false, Structuralf(rec.Line, rec.Raw, "terminator .END_%s does not match open section .%s", rec.SectionName(), s.Name)
		}
		s.done = true
		s.endLine = rec.Line
		s.d.state = stateIdle
		return record.Record{}, false, nil
	}
	if rec.IsSectionStart() {
		s.d.state = stateError
		return record.Record{}, false, Structuralf(rec.Line, rec.Raw, "section .%s starts inside unterminated section .%s", rec.SectionName(), s.Name)
	}

	s.records++
	return rec, true, nil
}

// SetEntities overrides the entity count checked against the declared
// count, for sections where one entity spans several records.
func (s *Section) SetEntities(n int) {
	s.entities = n
	s.hasEnt = true
}

// Finish checks the declared entity count, if any, once the section has
// been fully consumed. Small mismatches are reported as diagnostics;
// gross mismatches indicate the parser has lost track of the section
// structure and fail the parse.
func (s *Section) Finish() error {
	if !s.done {
		return fmt.Errorf("section .%s not fully consumed", s.Name)
	}
	if s.declared < 0 {
		return nil
	}

	actual := s.records
	if s.hasEnt {
		actual = s.entities
	}
	if actual == s.declared {
		return nil
	}

	diff := actual - s.declared
	if diff < 0 {
		diff = -diff
	}
	if (actual == 0 && s.declared > 0) || float64(diff) > s.d.cfg.CountMismatchLimit*float64(s.declared) {
		s.d.state = stateError
		return Structuralf(s.endLine, "", "section .%s declares %d records but contains %d: likely desynchronized", s.Name, s.declared, actual)
	}

	s.d.Report(Diagnostic{
		Severity: SeverityWarning,
		Kind:     KindCountMismatch,
		Line:     s.endLine,
		Message:  fmt.Sprintf("section .%s declares %d records but contains %d", s.Name, s.declared, actual),
	})
	return nil
}
