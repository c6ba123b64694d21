// Package argmatcher implements the declarative per-command completion
// grammar: ordered argument slots with static, nested or computed
// candidate sets, a flag pool, loop-back and chaining, plus the engine
// that walks a grammar as a generator.
package argmatcher

import (
	"github.com/samber/lo"

	"github.com/matcha-sh/matcha/internal/match"
)

// ArgFunc computes slot candidates lazily from the current word prefix.
type ArgFunc func(prefix string) []match.Candidate

// ClassifyFunc returns a classification code for a word, or "" to keep
// the engine's default. Purely coloring metadata; it never affects
// which candidates are generated.
type ClassifyFunc func(wordIndex int, word string) string

// InitFunc populates a matcher lazily. It runs exactly once per edit
// session, before the first generation request that touches the
// matcher.
type InitFunc func(m *Matcher)

// provider is one source of candidates for a slot.
type provider struct {
	static []match.Candidate
	nested *Matcher
	fn     ArgFunc
}

// Slot is one ordered argument position.
type Slot struct {
	providers []provider
	chain     bool
}

// Flag is one entry of the flag pool. Hidden flags still match and
// classify but are excluded from displayed candidates.
type Flag struct {
	Text        string
	Description string
	Hidden      bool
}

// Matcher is a directed grammar over argument slots and flags for one
// command.
type Matcher struct {
	slots []*Slot
	flags []Flag

	flagPrefixes  string
	endOfFlags    string
	flagsAnywhere bool

	loopSlot int // 1-based slot to loop back to, 0 = no loop
	noFiles  bool

	classify  ClassifyFunc
	delayInit InitFunc
	compare   match.Comparator
}

// New creates an empty matcher. Flag words are recognized by their
// first character; '-' by default.
func New() *Matcher {
	return &Matcher{
		flagPrefixes:  "-",
		flagsAnywhere: true,
	}
}

// AddArg appends one slot fed by the given values. A value may be a
// string, a match.Candidate, a nested *Matcher (delegation into its
// first slot) or an ArgFunc consulted lazily.
func (m *Matcher) AddArg(values ...interface{}) *Matcher {
	slot := &Slot{}
	slot.providers = append(slot.providers, toProviders(values)...)
	m.slots = append(m.slots, slot)
	return m
}

// ExtendArg adds values to an existing 1-based slot; used by merges.
func (m *Matcher) ExtendArg(n int, values ...interface{}) *Matcher {
	if n < 1 || n > len(m.slots) {
		return m.AddArg(values...)
	}
	slot := m.slots[n-1]
	slot.providers = append(slot.providers, toProviders(values)...)
	return m
}

func toProviders(values []interface{}) []provider {
	var out []provider
	var static []match.Candidate
	flush := func() {
		if len(static) > 0 {
			out = append(out, provider{static: static})
			static = nil
		}
	}
	for _, v := range values {
		switch val := v.(type) {
		case string:
			static = append(static, match.Candidate{Text: val, Type: match.Arg})
		case match.Candidate:
			static = append(static, val)
		case *Matcher:
			flush()
			out = append(out, provider{nested: val})
		case ArgFunc:
			flush()
			out = append(out, provider{fn: val})
		case func(prefix string) []match.Candidate:
			flush()
			out = append(out, provider{fn: val})
		}
	}
	flush()
	return out
}

// AddFlags adds flag words to the pool, "text" or "text\tdescription".
func (m *Matcher) AddFlags(flags ...string) *Matcher {
	for _, f := range flags {
		text, desc := f, ""
		for i := 0; i < len(f); i++ {
			if f[i] == '\t' {
				text, desc = f[:i], f[i+1:]
				break
			}
		}
		m.addFlag(Flag{Text: text, Description: desc})
	}
	return m
}

// AddFlag adds one described flag.
func (m *Matcher) AddFlag(text, description string) *Matcher {
	m.addFlag(Flag{Text: text, Description: description})
	return m
}

func (m *Matcher) addFlag(f Flag) {
	for i, existing := range m.flags {
		if existing.Text == f.Text {
			// Re-adding an existing flag refreshes its description but
			// keeps its hidden state.
			f.Hidden = existing.Hidden
			m.flags[i] = f
			return
		}
	}
	m.flags = append(m.flags, f)
}

// HideFlags marks flags as hidden: valid for matching and word
// classification, excluded from the displayed candidate set. Unknown
// names are added as hidden flags.
func (m *Matcher) HideFlags(names ...string) *Matcher {
	for _, name := range names {
		found := false
		for i := range m.flags {
			if m.flags[i].Text == name {
				m.flags[i].Hidden = true
				found = true
				break
			}
		}
		if !found {
			m.flags = append(m.flags, Flag{Text: name, Hidden: true})
		}
	}
	return m
}

// Loop makes slot consumption wrap back to 1-based slot k after the
// last defined slot instead of running past the end.
func (m *Matcher) Loop(k int) *Matcher {
	if k < 1 {
		k = 1
	}
	m.loopSlot = k
	return m
}

// NoFiles claims the word even with zero candidates, keeping
// lower-priority generators (notably file completion) away.
func (m *Matcher) NoFiles() *Matcher {
	m.noFiles = true
	return m
}

// Chain appends a terminal slot: once reached, the remainder of the
// line is re-parsed as an independent command line and dispatched to
// whatever grammar is registered for its command.
func (m *Matcher) Chain() *Matcher {
	m.slots = append(m.slots, &Slot{chain: true})
	return m
}

// SetClassifier installs the per-word coloring callback.
func (m *Matcher) SetClassifier(fn ClassifyFunc) *Matcher {
	m.classify = fn
	return m
}

// SetDelayInit installs the lazy population callback.
func (m *Matcher) SetDelayInit(fn InitFunc) *Matcher {
	m.delayInit = fn
	return m
}

// SetEndOfFlags sets the sentinel word after which nothing is treated
// as a flag, typically "--".
func (m *Matcher) SetEndOfFlags(sentinel string) *Matcher {
	m.endOfFlags = sentinel
	return m
}

// SetFlagPrefix replaces the set of characters that start a flag word.
func (m *Matcher) SetFlagPrefix(chars string) *Matcher {
	if chars != "" {
		m.flagPrefixes = chars
	}
	return m
}

// SetFlagsAnywhere controls whether flags are accepted after positional
// arguments have been consumed. Enabled by default.
func (m *Matcher) SetFlagsAnywhere(enabled bool) *Matcher {
	m.flagsAnywhere = enabled
	return m
}

// SetCompare installs a command-specific sort comparator, forwarded to
// the match pipeline through the builder.
func (m *Matcher) SetCompare(cmp match.Comparator) *Matcher {
	m.compare = cmp
	return m
}

// SlotCount returns the number of defined slots.
func (m *Matcher) SlotCount() int { return len(m.slots) }

// Flags returns a copy of the flag pool.
func (m *Matcher) Flags() []Flag {
	return append([]Flag(nil), m.flags...)
}

// isFlagWord reports whether the word looks like a flag under this
// matcher's prefix characters.
func (m *Matcher) isFlagWord(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(m.flagPrefixes); i++ {
		if word[0] == m.flagPrefixes[i] {
			return true
		}
	}
	return false
}

// knowsFlag reports whether the word is in the flag pool, hidden flags
// included.
func (m *Matcher) knowsFlag(word string) bool {
	return lo.ContainsBy(m.flags, func(f Flag) bool { return f.Text == word })
}

// slotIndex maps the number of positionals consumed so far to a 0-based
// slot index, honoring loop-back. Returns -1 past the end of a
// non-looping grammar.
func (m *Matcher) slotIndex(consumed int) int {
	if len(m.slots) == 0 {
		return -1
	}
	if consumed < len(m.slots) {
		return consumed
	}
	if m.loopSlot == 0 {
		return -1
	}
	k := m.loopSlot
	if k > len(m.slots) {
		k = len(m.slots)
	}
	span := len(m.slots) - k + 1
	return (k - 1) + (consumed-len(m.slots))%span
}

// merge folds other into m with the documented shallow semantics: only
// the first slot's candidate set is extended and the flag pools are
// unioned. Slots 2..N of the existing matcher are kept as they are.
func (m *Matcher) merge(other *Matcher) {
	if other == nil {
		return
	}
	if len(other.slots) > 0 {
		if len(m.slots) == 0 {
			m.slots = append(m.slots, &Slot{})
		}
		m.slots[0].providers = append(m.slots[0].providers, other.slots[0].providers...)
	}
	for _, f := range other.flags {
		m.addFlag(f)
	}
	m.flagPrefixes = uniqueChars(m.flagPrefixes + other.flagPrefixes)
	if m.endOfFlags == "" {
		m.endOfFlags = other.endOfFlags
	}
	m.noFiles = m.noFiles || other.noFiles
}

func uniqueChars(s string) string {
	return string(lo.Uniq([]byte(s)))
}
