package record

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Reader turns a text stream into a lazy sequence of Records, one per
// non-blank, non-comment line. A Reader consumes its stream strictly
// forward; create a fresh Reader to re-read input.
type Reader struct {
	lex  lexer.Lexer
	done bool
}

// NewReader creates a Reader over an IDF text stream.
func NewReader(r io.Reader) (*Reader, error) {
	lex, err := IDFLexer.Lex("", r)
	if err != nil {
		return nil, fmt.Errorf("failed to start lexer: %w", err)
	}
	return &Reader{lex: lex}, nil
}

// NewStringReader creates a Reader over an in-memory IDF document.
func NewStringReader(input string) (*Reader, error) {
	return NewReader(strings.NewReader(input))
}

// Next returns the next record. It returns io.EOF after the last
// record. Lexical errors (an unterminated quote, most commonly) are
// returned with the offending line number.
func (r *Reader) Next() (Record, error) {
	if r.done {
		return Record{}, io.EOF
	}

	var rec Record
	var raw []string
	for {
		tok, err := r.lex.Next()
		if err != nil {
			return Record{}, lexError(err)
		}

		if tok.EOF() {
			r.done = true
			if len(rec.Fields) > 0 {
				rec.Raw = strings.Join(raw, " ")
				return rec, nil
			}
			return Record{}, io.EOF
		}

		switch tok.Type {
		case tokNewline:
			if len(rec.Fields) > 0 {
				rec.Raw = strings.Join(raw, " ")
				return rec, nil
			}
			// Blank or comment-only line: keep scanning

		case tokComment, tokWhitespace:
			// Not part of any field

		case tokString:
			if len(rec.Fields) == 0 {
				rec.Line = tok.Pos.Line
			}
			rec.Fields = append(rec.Fields, strings.Trim(tok.Value, `"`))
			raw = append(raw, tok.Value)

		case tokField:
			if len(rec.Fields) == 0 {
				rec.Line = tok.Pos.Line
			}
			rec.Fields = append(rec.Fields, tok.Value)
			raw = append(raw, tok.Value)
		}
	}
}

// lexError rewraps a lexer failure with its line number. The only way
// to trip the lexer with this rule set is a quote that never closes.
func lexError(err error) error {
	if pe, ok := err.(interface{ Position() lexer.Position }); ok {
		return fmt.Errorf("line %d: malformed record (unterminated quote?): %w", pe.Position().Line, err)
	}
	return fmt.Errorf("malformed record: %w", err)
}
