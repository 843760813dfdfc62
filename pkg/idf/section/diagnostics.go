package section

import "fmt"

// Severity ranks a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Kind classifies a diagnostic.
type Kind int

const (
	// KindUnknownSection marks a section the parser does not model and
	// skipped over. Not a defect in the file.
	KindUnknownSection Kind = iota
	// KindCountMismatch marks a section whose declared record count
	// disagrees with the records actually present, within the
	// escalation limit.
	KindCountMismatch
	// KindGeometryDefect marks an outline loop that fails validation,
	// most commonly by not closing on its starting point.
	KindGeometryDefect
)

func (k Kind) String() string {
	switch k {
	case KindUnknownSection:
		return "unknown-section"
	case KindCountMismatch:
		return "count-mismatch"
	case KindGeometryDefect:
		return "geometry-defect"
	default:
		return "unknown"
	}
}

// Diagnostic is a recoverable issue found while parsing. Diagnostics
// are accumulated and returned alongside the document so callers can
// judge file quality without losing an otherwise usable parse.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Line     int
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: line %d: %s: %s", d.Severity, d.Line, d.Kind, d.Message)
}

// StructuralError is a fatal parse failure: the file cannot be trusted
// past this point. It carries the offending line and its raw text.
type StructuralError struct {
	Line int
	Text string
	Msg  string
}

func (e *StructuralError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("line %d: %s (in %q)", e.Line, e.Msg, e.Text)
}

// Structuralf builds a StructuralError with a formatted message.
func Structuralf(line int, text, format string, args ...interface{}) *StructuralError {
	return &StructuralError{
		Line: line,
		Text: text,
		Msg:  fmt.Sprintf(format, args...),
	}
}
