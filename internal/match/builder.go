package match

import (
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Builder accumulates candidates for one completion request. It keeps
// insertion order, de-duplicates by match text through a patricia trie
// index, and records batch boundaries so the sorter can group batches
// that were added separately.
//
// One Builder lives per completion request: populated by generators in
// priority order, consumed once by the pipeline, then discarded (unless
// the session reuse optimization re-filters it).
type Builder struct {
	caseSensitive bool

	index *patricia.Trie
	cands []Candidate

	// batches holds the start index of every batch opened so far. The
	// first batch opens implicitly at 0.
	batches []int

	compare Comparator

	noSort          bool
	claimed         bool
	volatile        bool
	prefixIncluded  bool
	forceQuoting    bool
	suppressAppend  bool
	suppressQuoting QuoteMode
}

// NewBuilder creates an empty match set. caseSensitive controls the
// de-duplication key.
func NewBuilder(caseSensitive bool) *Builder {
	return &Builder{
		caseSensitive: caseSensitive,
		index:         patricia.NewTrie(),
		batches:       []int{0},
	}
}

func (b *Builder) key(text string) patricia.Prefix {
	if !b.caseSensitive {
		text = strings.ToLower(text)
	}
	return patricia.Prefix(text)
}

// Add inserts a candidate unless an equal match text is already
// present. Reports whether the candidate was added.
func (b *Builder) Add(c Candidate) bool {
	if c.Text == "" {
		return false
	}
	if !b.index.Insert(b.key(c.Text), len(b.cands)) {
		return false
	}
	b.cands = append(b.cands, c)
	return true
}

// AddText inserts plain word candidates.
func (b *Builder) AddText(texts ...string) int {
	added := 0
	for _, t := range texts {
		if b.Add(Candidate{Text: t, Type: Word}) {
			added++
		}
	}
	return added
}

// BeginBatch marks a batch boundary. Candidates added after the call
// belong to a new unsorted batch; the sorter only groups by type class
// across such boundaries.
func (b *Builder) BeginBatch() {
	if len(b.cands) == 0 {
		return
	}
	if b.batches[len(b.batches)-1] == len(b.cands) {
		return
	}
	b.batches = append(b.batches, len(b.cands))
}

// Len returns the number of accumulated candidates.
func (b *Builder) Len() int { return len(b.cands) }

// Candidates returns the accumulated candidates in insertion order.
func (b *Builder) Candidates() []Candidate { return b.cands }

// Contains reports whether a match text is already in the set.
func (b *Builder) Contains(text string) bool {
	return b.index.Get(b.key(text)) != nil
}

// batchOf returns the batch ordinal for candidate index i.
func (b *Builder) batchOf(i int) int {
	batch := 0
	for n, start := range b.batches {
		if i >= start {
			batch = n
		}
	}
	return batch
}

// SetCompare installs a command-specific sort comparator for this set.
func (b *Builder) SetCompare(cmp Comparator) { b.compare = cmp }

// Compare returns the set's comparator, nil for the pipeline default.
func (b *Builder) Compare() Comparator { return b.compare }

// SetClaimed records that a generator claimed the word outright, ending
// the scan even with zero candidates. This is how a nofiles grammar
// keeps the file generator out of its way.
func (b *Builder) SetClaimed() { b.claimed = true }

// Claimed reports whether the word was claimed outright.
func (b *Builder) Claimed() bool { return b.claimed }

// SetNoSort disables sorting; candidates keep insertion order.
func (b *Builder) SetNoSort() { b.noSort = true }

// NoSort reports whether sorting is disabled.
func (b *Builder) NoSort() bool { return b.noSort }

// SetVolatile vetoes the reuse optimization for this set, forcing
// regeneration on every keystroke.
func (b *Builder) SetVolatile() { b.volatile = true }

// Volatile reports whether the set may not be reused.
func (b *Builder) Volatile() bool { return b.volatile }

// SetPrefixIncluded declares that the generator already filtered the
// candidates against the end word, so the pipeline must not re-apply
// the prefix.
func (b *Builder) SetPrefixIncluded(included bool) { b.prefixIncluded = included }

// PrefixIncluded reports whether prefix filtering was done upstream.
func (b *Builder) PrefixIncluded() bool { return b.prefixIncluded }

// SetForceQuoting quotes every candidate regardless of content.
func (b *Builder) SetForceQuoting() { b.forceQuoting = true }

// ForceQuoting reports whether quoting is forced for the whole set.
func (b *Builder) ForceQuoting() bool { return b.forceQuoting }

// SetSuppressAppend disables the append character for the whole set.
func (b *Builder) SetSuppressAppend() { b.suppressAppend = true }

// SuppressAppend reports whether the append character is suppressed.
func (b *Builder) SuppressAppend() bool { return b.suppressAppend }

// SetSuppressQuoting overrides the quoting mode for the whole set.
func (b *Builder) SetSuppressQuoting(mode QuoteMode) { b.suppressQuoting = mode }

// SuppressQuoting returns the set-level quoting override.
func (b *Builder) SuppressQuoting() QuoteMode { return b.suppressQuoting }
