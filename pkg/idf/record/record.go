package record

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one logical line of an IDF file split into fields.
// Quoted fields have their quotes stripped but keep embedded whitespace.
// Records are produced by the Reader and consumed immediately by the
// section layer; they are not retained in the parsed document.
type Record struct {
	Fields []string
	// Raw is the line as it appeared in the input, with runs of
	// whitespace collapsed. Kept for error reporting.
	Raw  string
	Line int
}

// Len returns the number of fields in the record.
func (r Record) Len() int {
	return len(r.Fields)
}

// Field returns field i, or an error if the record is too short.
func (r Record) Field(i int) (string, error) {
	if i >= len(r.Fields) {
		return "", fmt.Errorf("line %d: record has %d fields, need at least %d", r.Line, len(r.Fields), i+1)
	}
	return r.Fields[i], nil
}

// Float parses field i as a floating point number.
func (r Record) Float(i int) (float64, error) {
	s, err := r.Field(i)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: field %d: expected number, got %q", r.Line, i, s)
	}
	return v, nil
}

// Int parses field i as an integer.
func (r Record) Int(i int) (int, error) {
	s, err := r.Field(i)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("line %d: field %d: expected integer, got %q", r.Line, i, s)
	}
	return v, nil
}

// Keyword returns the first field uppercased, or "" for an empty record.
// IDF keywords are case-insensitive in files found in the wild.
func (r Record) Keyword() string {
	if len(r.Fields) == 0 {
		return ""
	}
	return strings.ToUpper(r.Fields[0])
}

// IsSectionStart reports whether the record opens a section (.NAME ...).
func (r Record) IsSectionStart() bool {
	kw := r.Keyword()
	return strings.HasPrefix(kw, ".") && !strings.HasPrefix(kw, ".END_")
}

// IsSectionEnd reports whether the record closes a section (.END_NAME).
func (r Record) IsSectionEnd() bool {
	return strings.HasPrefix(r.Keyword(), ".END_")
}

// SectionName returns the section keyword without the leading "." or
// ".END_" marker, uppercased. Empty for non-marker records.
func (r Record) SectionName() string {
	kw := r.Keyword()
	switch {
	case strings.HasPrefix(kw, ".END_"):
		return strings.TrimPrefix(kw, ".END_")
	case strings.HasPrefix(kw, "."):
		return strings.TrimPrefix(kw, ".")
	}
	return ""
}
