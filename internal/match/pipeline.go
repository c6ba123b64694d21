package match

import (
	"os"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"

	"github.com/matcha-sh/matcha/internal/logger"
)

// SlashMode controls path separator rewriting in candidate text.
type SlashMode int

const (
	// SlashOff leaves separators alone.
	SlashOff SlashMode = iota
	// SlashNative rewrites to the platform separator.
	SlashNative
	// SlashForward rewrites to '/'.
	SlashForward
	// SlashBackward rewrites to '\'.
	SlashBackward
)

// ParseSlashMode maps a settings string to a SlashMode.
func ParseSlashMode(s string) SlashMode {
	switch strings.ToLower(s) {
	case "native", "system":
		return SlashNative
	case "forward":
		return SlashForward
	case "backward", "backslash":
		return SlashBackward
	default:
		return SlashOff
	}
}

func (m SlashMode) separator() byte {
	switch m {
	case SlashBackward:
		return '\\'
	case SlashNative:
		return os.PathSeparator
	default:
		return '/'
	}
}

// translate rewrites every path separator in s to the configured one.
func (m SlashMode) translate(s string) string {
	if m == SlashOff {
		return s
	}
	sep := string(m.separator())
	s = strings.ReplaceAll(s, "/", sep)
	return strings.ReplaceAll(s, "\\", sep)
}

// Options configures the pipeline. The zero value is usable: exact
// prefix filtering, no slash translation, default quoting set.
type Options struct {
	Case       CaseMode
	Slash      SlashMode
	QuoteChars string     // needs-quoting set, besides whitespace
	Fuzzy      bool       // fall back to fuzzy ranking on empty prefix result
	Compare    Comparator // command-specific override, nil = default
}

// Pipeline post-processes an accumulated match set against the word
// being completed. It never fails; no candidates means an empty Result.
type Pipeline struct {
	opts Options
	log  *logger.Logger
}

// NewPipeline creates a pipeline with the given options.
func NewPipeline(opts Options, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	if opts.Compare == nil {
		opts.Compare = DefaultComparator
	}
	return &Pipeline{opts: opts, log: log}
}

// survivor pairs a candidate with the batch it was added in.
type survivor struct {
	cand  Candidate
	batch int
}

// Run filters, sorts and finalizes the set for the end word. The end
// word arrives with quotes already stripped by the line model.
func (p *Pipeline) Run(endWord string, b *Builder) Result {
	if b == nil || b.Len() == 0 {
		return Result{}
	}

	word := p.opts.Slash.translate(endWord)

	var kept []survivor
	for i, c := range b.Candidates() {
		c.Text = p.opts.Slash.translate(c.Text)
		if !b.PrefixIncluded() && !p.opts.Case.hasPrefix(c.Text, word) {
			continue
		}
		kept = append(kept, survivor{cand: c, batch: b.batchOf(i)})
	}

	ranked := false
	if len(kept) == 0 && p.opts.Fuzzy && word != "" {
		kept = p.fuzzyRank(word, b)
		ranked = len(kept) > 0
	}
	if len(kept) == 0 {
		return Result{}
	}

	if !b.NoSort() && !ranked {
		cmp := b.Compare()
		if cmp == nil {
			cmp = p.opts.Compare
		}
		p.sortSurvivors(kept, cmp)
	}

	texts := lo.Map(kept, func(s survivor, _ int) string { return s.cand.Text })

	return Result{
		Candidates:   lo.Map(kept, func(s survivor, _ int) Ranked { return p.finalize(s.cand, b) }),
		CommonPrefix: commonPrefix(texts, p.opts.Case),
	}
}

// fuzzyRank ranks the whole set against the word when strict prefix
// filtering came up empty. The fuzzy order is final; the sorter is
// skipped for ranked results.
func (p *Pipeline) fuzzyRank(word string, b *Builder) []survivor {
	texts := lo.Map(b.Candidates(), func(c Candidate, _ int) string {
		return p.opts.Slash.translate(c.Text)
	})
	matches := fuzzy.Find(word, texts)

	kept := make([]survivor, 0, len(matches))
	for _, m := range matches {
		c := b.Candidates()[m.Index]
		c.Text = texts[m.Index]
		kept = append(kept, survivor{cand: c, batch: b.batchOf(m.Index)})
	}
	p.log.Debug().Str("word", word).Int("matches", len(kept)).Msg("fuzzy fallback")
	return kept
}

// sortSurvivors orders the kept candidates. Type-class grouping only
// applies across batches that were added separately and disagree on
// class; a single mixed batch sorts purely lexicographically.
func (p *Pipeline) sortSurvivors(kept []survivor, cmp Comparator) {
	classes := map[int]bool{}
	for _, s := range kept {
		classes[s.batch] = classes[s.batch] || s.cand.Type.Pathish()
	}
	sawPathish, sawWordish := false, false
	for _, pathish := range classes {
		if pathish {
			sawPathish = true
		} else {
			sawWordish = true
		}
	}
	grouped := len(classes) > 1 && sawPathish && sawWordish

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if grouped && classes[a.batch] != classes[b.batch] {
			// Word-like batches sort ahead of file-like ones.
			return !classes[a.batch]
		}
		return cmp(a.cand, b.cand)
	})
}

// finalize applies the quoting and append policies to one candidate.
func (p *Pipeline) finalize(c Candidate, b *Builder) Ranked {
	r := Ranked{Candidate: c, Insert: c.Text, Append: p.appendChar(c, b)}

	mode := c.Quoting
	if b.SuppressQuoting() != QuoteNormal {
		mode = b.SuppressQuoting()
	}
	if mode == QuoteNever {
		return r
	}
	if b.ForceQuoting() || p.needsQuoting(c.Text) {
		if mode == QuoteNoTrailing {
			r.Insert = `"` + c.Text
		} else {
			r.Insert = `"` + c.Text + `"`
		}
	}
	return r
}

func (p *Pipeline) needsQuoting(text string) bool {
	if strings.ContainsAny(text, " \t") {
		return true
	}
	return p.opts.QuoteChars != "" && strings.ContainsAny(text, p.opts.QuoteChars)
}

// appendChar picks what to insert immediately after acceptance: the
// candidate's own override, the path separator for directories, or the
// default space. Zero means append nothing.
func (p *Pipeline) appendChar(c Candidate, b *Builder) byte {
	if b.SuppressAppend() || c.SuppressAppend {
		return 0
	}
	if c.Append != 0 {
		return c.Append
	}
	if c.Type == Dir {
		return p.opts.Slash.separator()
	}
	return ' '
}

// commonPrefix computes the longest common prefix across texts under
// the case policy, keeping the first text's spelling.
func commonPrefix(texts []string, mode CaseMode) string {
	if len(texts) == 0 {
		return ""
	}
	prefix := []rune(texts[0])
	for _, t := range texts[1:] {
		for len(prefix) > 0 && !mode.hasPrefix(t, string(prefix)) {
			prefix = prefix[:len(prefix)-1]
		}
		if len(prefix) == 0 {
			break
		}
	}
	return string(prefix)
}
