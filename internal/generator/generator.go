// Package generator defines the pluggable candidate sources and the
// priority-ordered registry that schedules them.
package generator

import (
	"github.com/matcha-sh/matcha/internal/line"
	"github.com/matcha-sh/matcha/internal/match"
)

// Generator is a source of completion candidates. Generate adds
// candidates for the line's end word to the builder and reports whether
// it handled the word: a handled word with candidates stops the scan,
// while handled=false lets lower-priority generators augment the same
// set. Script-registered generators come in through the same interface
// as native ones.
type Generator interface {
	Generate(ls *line.State, b *match.Builder) bool
}

// WordBreaker is an optional capability: a generator that wants the end
// word broken differently returns the sub-span (offset and length
// relative to the raw end word) to complete instead. The raw word keeps
// its quotes so offsets stay consistent with the line text.
type WordBreaker interface {
	WordBreak(ls *line.State) (offset, length int)
}

// Classifier is an optional capability: per-word classification codes
// for the renderer. Classification never affects which candidates are
// generated.
type Classifier interface {
	Classify(ls *line.State) map[int]string
}

// Func adapts a plain function to the Generator interface.
type Func func(ls *line.State, b *match.Builder) bool

// Generate implements Generator.
func (f Func) Generate(ls *line.State, b *match.Builder) bool {
	return f(ls, b)
}
