package argmatcher

import (
	"github.com/matcha-sh/matcha/internal/line"
	"github.com/matcha-sh/matcha/internal/logger"
	"github.com/matcha-sh/matcha/internal/match"
)

// Word classification codes shared with the renderer.
const (
	ClassOther   = "o"
	ClassCommand = "c"
	ClassAlias   = "d"
	ClassArg     = "a"
	ClassFlag    = "f"
	ClassNone    = "n"
)

// Engine walks a registered grammar against the parsed line and acts
// as a generator. One engine spans one edit session: delayed grammar
// initialization runs once per session.
type Engine struct {
	reg    *Registry
	log    *logger.Logger
	inited map[*Matcher]bool
}

// NewEngine wraps a grammar registry.
func NewEngine(reg *Registry, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{reg: reg, log: log, inited: make(map[*Matcher]bool)}
}

// ResetSession forgets which grammars were lazily initialized, starting
// a new edit session.
func (e *Engine) ResetSession() {
	e.inited = make(map[*Matcher]bool)
}

// Generate implements generator.Generator.
func (e *Engine) Generate(ls *line.State, b *match.Builder) bool {
	m := e.reg.Lookup(ls.CommandWord())
	if m == nil {
		return false
	}
	return e.walk(m, ls, b)
}

// ensureInit runs the grammar's delayed init exactly once per session,
// before the first request that touches it.
func (e *Engine) ensureInit(m *Matcher) {
	if m == nil || m.delayInit == nil || e.inited[m] {
		return
	}
	e.inited[m] = true
	m.delayInit(m)
}

// walk consumes the words between the command word and the end word,
// then generates candidates for the end word from whatever state the
// grammar landed in.
func (e *Engine) walk(m *Matcher, ls *line.State, b *match.Builder) bool {
	e.ensureInit(m)

	words := ls.Words()
	consumed := 0     // positional slots consumed so far
	endFlags := false // endOfFlags sentinel seen

	for i := ls.CommandWordIndex() + 1; i < ls.EndWordIndex(); i++ {
		if words[i].Redir {
			continue
		}
		word := ls.Word(i, line.Unquoted)

		if !endFlags && m.endOfFlags != "" && word == m.endOfFlags {
			endFlags = true
			continue
		}
		if !endFlags && m.isFlagWord(word) && (m.flagsAnywhere || consumed == 0) {
			// Flags live in their own pool and consume no slot.
			continue
		}

		idx := m.slotIndex(consumed)
		if idx >= 0 && m.slots[idx].chain {
			// The rest of the line is an independent command.
			sub := ls.Slice(words[i].Offset)
			return e.Generate(sub, b)
		}
		consumed++
	}

	endWord := ls.EndWord(line.Unquoted)

	// An empty end word never looks like a flag; positionals win unless
	// the user already typed a flag prefix character.
	if !endFlags && m.isFlagWord(endWord) && (m.flagsAnywhere || consumed == 0) {
		e.addFlags(m, b)
		e.claim(m, b)
		return true
	}

	idx := m.slotIndex(consumed)
	if idx < 0 {
		// Past the end of a non-looping grammar.
		if m.noFiles {
			e.claim(m, b)
			return true
		}
		return false
	}
	slot := m.slots[idx]
	if slot.chain {
		// The end word is the chained command itself; executables are
		// the file generator's business.
		return false
	}

	added := e.addSlot(slot, endWord, b, map[*Matcher]bool{m: true})
	if m.compare != nil {
		b.SetCompare(m.compare)
	}
	if m.noFiles {
		e.claim(m, b)
		return true
	}
	return added > 0
}

func (e *Engine) claim(m *Matcher, b *match.Builder) {
	if m.noFiles {
		b.SetClaimed()
	}
}

// addSlot adds the slot's candidates: static values as-is, computed
// providers lazily with the current prefix, nested grammars by
// delegating into their first slot. seen guards grammar cycles.
func (e *Engine) addSlot(slot *Slot, prefix string, b *match.Builder, seen map[*Matcher]bool) int {
	added := 0
	for _, p := range slot.providers {
		switch {
		case p.static != nil:
			for _, c := range p.static {
				if b.Add(c) {
					added++
				}
			}
		case p.fn != nil:
			for _, c := range p.fn(prefix) {
				if c.Type == match.None {
					c.Type = match.Arg
				}
				if b.Add(c) {
					added++
				}
			}
		case p.nested != nil:
			if seen[p.nested] {
				continue
			}
			seen[p.nested] = true
			e.ensureInit(p.nested)
			if len(p.nested.slots) > 0 {
				added += e.addSlot(p.nested.slots[0], prefix, b, seen)
			}
		}
	}
	return added
}

// addFlags offers the visible flags. Hidden flags still matched during
// the walk but stay out of the displayed set.
func (e *Engine) addFlags(m *Matcher, b *match.Builder) int {
	added := 0
	for _, f := range m.flags {
		if f.Hidden {
			continue
		}
		if b.Add(match.Candidate{Text: f.Text, Description: f.Description, Type: match.Flag}) {
			added++
		}
	}
	return added
}

// Classify implements generator.Classifier: word index to
// classification code for the renderer. The grammar's classifier
// callback can override any word; classification never changes which
// candidates are generated.
func (e *Engine) Classify(ls *line.State) map[int]string {
	m := e.reg.Lookup(ls.CommandWord())
	if m == nil {
		return nil
	}
	e.ensureInit(m)

	codes := make(map[int]string)
	words := ls.Words()

	cmdIdx := ls.CommandWordIndex()
	if words[cmdIdx].Alias {
		codes[cmdIdx] = ClassAlias
	} else {
		codes[cmdIdx] = ClassCommand
	}

	consumed := 0
	for i := cmdIdx + 1; i < len(words); i++ {
		if words[i].Redir {
			codes[i] = ClassNone
			continue
		}
		word := ls.Word(i, line.Unquoted)
		switch {
		case m.isFlagWord(word) && m.knowsFlag(word):
			codes[i] = ClassFlag
		case m.isFlagWord(word):
			codes[i] = ClassOther
		default:
			idx := m.slotIndex(consumed)
			consumed++
			if idx >= 0 && slotHasValue(m.slots[idx], word) {
				codes[i] = ClassArg
			} else {
				codes[i] = ClassOther
			}
		}
		if m.classify != nil {
			if code := m.classify(i, word); code != "" {
				codes[i] = code
			}
		}
	}
	return codes
}

func slotHasValue(slot *Slot, word string) bool {
	for _, p := range slot.providers {
		for _, c := range p.static {
			if c.Text == word {
				return true
			}
		}
	}
	return false
}
