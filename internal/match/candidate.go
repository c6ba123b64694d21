// Package match holds completion candidates, the growable de-duplicated
// match set, and the post-processing pipeline that filters, sorts and
// prepares candidates for the line editor.
package match

// Type tags a candidate for coloring and for sort tie-breaks. The
// vocabulary is closed and shared as plain codes with the renderer.
type Type int

const (
	None Type = iota
	Word
	File
	Dir
	Alias
	Flag
	Arg
)

var typeCodes = map[Type]string{
	None:  "none",
	Word:  "word",
	File:  "file",
	Dir:   "dir",
	Alias: "alias",
	Flag:  "flag",
	Arg:   "arg",
}

// Code returns the wire code for the type tag.
func (t Type) Code() string {
	if code, ok := typeCodes[t]; ok {
		return code
	}
	return "none"
}

// ParseType maps a wire code back to a type tag. Unknown codes become
// None rather than an error; grammar files are best-effort input.
func ParseType(code string) Type {
	for t, c := range typeCodes {
		if c == code {
			return t
		}
	}
	return None
}

// Pathish reports whether the tag names something on the file system.
// Used by the sorter when grouping separately added batches.
func (t Type) Pathish() bool {
	return t == File || t == Dir
}

// QuoteMode controls how the pipeline quotes a candidate.
type QuoteMode int

const (
	// QuoteNormal quotes when the text needs it.
	QuoteNormal QuoteMode = iota
	// QuoteNever suppresses quoting entirely.
	QuoteNever
	// QuoteNoTrailing omits only the closing quote, for values ending
	// in characters like `%` that the shell would re-expand.
	QuoteNoTrailing
)

// Candidate is one completion suggestion. Candidates are value types;
// the Builder owns copies.
type Candidate struct {
	Text           string
	Display        string
	Description    string
	Type           Type
	Append         byte // inserted after acceptance, 0 = use policy default
	SuppressAppend bool
	Quoting        QuoteMode
}

// DisplayText returns the text shown in completion listings.
func (c Candidate) DisplayText() string {
	if c.Display != "" {
		return c.Display
	}
	return c.Text
}

// Ranked is a display-ready candidate as returned by the pipeline:
// the candidate plus the exact text to insert and the character to
// append after acceptance (0 for nothing).
type Ranked struct {
	Candidate
	Insert string
	Append byte
}

// Result is the pipeline's answer: ordered candidates plus the longest
// common prefix across them. An empty result is not an error.
type Result struct {
	Candidates   []Ranked
	CommonPrefix string
}
