package record

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// IDFLexer defines the lexical structure of IDF 3.0 record files.
// The format is line oriented: each logical line is a record of
// whitespace-separated fields, with double quotes protecting fields
// that contain spaces and # starting a comment.
var IDFLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments run from # to end of line
	{Name: "Comment", Pattern: `#[^\n]*`},

	// Newline ends a record; it is significant, unlike other whitespace
	{Name: "Newline", Pattern: `\n`},

	// Intra-line whitespace separates fields
	{Name: "Whitespace", Pattern: `[ \t\r]+`},

	// Quoted fields may contain spaces but never a newline
	{Name: "String", Pattern: `"[^"\n]*"`},

	// Bare fields: anything up to the next delimiter
	{Name: "Field", Pattern: `[^ \t\r\n"#]+`},
})

var (
	symbols       = IDFLexer.Symbols()
	tokComment    = symbols["Comment"]
	tokNewline    = symbols["Newline"]
	tokWhitespace = symbols["Whitespace"]
	tokString     = symbols["String"]
	tokField      = symbols["Field"]
)
