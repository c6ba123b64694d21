package generator

import (
	"fmt"
	"sort"

	"github.com/matcha-sh/matcha/internal/line"
	"github.com/matcha-sh/matcha/internal/logger"
	"github.com/matcha-sh/matcha/internal/match"
)

// Registry holds generators ordered by ascending priority, ties broken
// by registration order. One registry serves one engine; tests build
// isolated instances freely.
type Registry struct {
	entries       []entry
	caseSensitive bool
	log           *logger.Logger
}

type entry struct {
	priority int
	seq      int
	gen      Generator
}

// NewRegistry creates an empty registry.
func NewRegistry(caseSensitive bool, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{caseSensitive: caseSensitive, log: log}
}

// Add registers a generator at the given priority.
func (r *Registry) Add(priority int, g Generator) {
	r.entries = append(r.entries, entry{priority: priority, seq: len(r.entries), gen: g})
	sort.SliceStable(r.entries, func(i, j int) bool {
		if r.entries[i].priority != r.entries[j].priority {
			return r.entries[i].priority < r.entries[j].priority
		}
		return r.entries[i].seq < r.entries[j].seq
	})
}

// Len returns the number of registered generators.
func (r *Registry) Len() int { return len(r.entries) }

// Generate runs the generators against the line in priority order and
// returns the accumulated match set. The scan stops at the first
// generator that returned handled=true and either added candidates or
// claimed the word outright; a generator that added candidates but
// returned handled=false lets the scan continue so lower-priority
// generators can augment the set.
func (r *Registry) Generate(ls *line.State) *match.Builder {
	b := match.NewBuilder(r.caseSensitive)

	for _, e := range r.entries {
		b.BeginBatch()
		before := b.Len()
		handled := r.run(e.gen, ls, b)
		added := b.Len() > before

		if handled && (added || b.Claimed()) {
			break
		}
	}
	return b
}

// ApplyWordBreaks consults generators for word-break overrides. The
// caller runs this once per request, before reading the end word; the
// first override in priority order wins.
func (r *Registry) ApplyWordBreaks(ls *line.State) {
	for _, e := range r.entries {
		wb, ok := e.gen.(WordBreaker)
		if !ok {
			continue
		}
		offset, length := wb.WordBreak(ls)
		if offset < 0 {
			continue
		}
		ls.AdjustEndWord(offset, length)
		return
	}
}

// run invokes one generator, isolating failures: a panicking generator
// keeps its partial contributions, and the scan moves on.
func (r *Registry) run(g Generator, ls *line.State, b *match.Builder) (handled bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Err(fmt.Errorf("%v", rec)).Msg("generator failed; continuing with next")
			handled = false
		}
	}()
	return g.Generate(ls, b)
}

// Classify merges the per-word classification codes of every generator
// that carries the capability. Later (lower-priority) generators do not
// overwrite codes claimed by earlier ones.
func (r *Registry) Classify(ls *line.State) map[int]string {
	merged := make(map[int]string)
	for _, e := range r.entries {
		cl, ok := e.gen.(Classifier)
		if !ok {
			continue
		}
		for i, code := range cl.Classify(ls) {
			if _, taken := merged[i]; !taken {
				merged[i] = code
			}
		}
	}
	return merged
}
