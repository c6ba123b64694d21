package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matcha-sh/matcha/internal/line"
	"github.com/matcha-sh/matcha/internal/match"
)

// probe is a generator that records whether it ran and contributes a
// fixed response.
type probe struct {
	ran     bool
	texts   []string
	handled bool
	claim   bool
}

func (p *probe) Generate(ls *line.State, b *match.Builder) bool {
	p.ran = true
	b.AddText(p.texts...)
	if p.claim {
		b.SetClaimed()
	}
	return p.handled
}

func TestRegistry_PriorityOrder(t *testing.T) {
	var order []string
	mk := func(name string) Func {
		return func(ls *line.State, b *match.Builder) bool {
			order = append(order, name)
			return false
		}
	}

	r := NewRegistry(false, nil)
	r.Add(100, mk("files"))
	r.Add(25, mk("grammar"))
	r.Add(50, mk("scripts"))
	require.Equal(t, 3, r.Len())

	r.Generate(line.Parse("cmd x", 5))

	assert.Equal(t, []string{"grammar", "scripts", "files"}, order)
}

func TestRegistry_TiesKeepRegistrationOrder(t *testing.T) {
	var order []string
	mk := func(name string) Func {
		return func(ls *line.State, b *match.Builder) bool {
			order = append(order, name)
			return false
		}
	}

	r := NewRegistry(false, nil)
	r.Add(50, mk("first"))
	r.Add(50, mk("second"))
	r.Generate(line.Parse("cmd", 3))

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestRegistry_HandledWithCandidatesStopsScan(t *testing.T) {
	early := &probe{texts: []string{"alpha"}, handled: true}
	late := &probe{texts: []string{"omega"}, handled: true}

	r := NewRegistry(false, nil)
	r.Add(10, early)
	r.Add(20, late)

	b := r.Generate(line.Parse("cmd a", 5))

	assert.True(t, early.ran)
	assert.False(t, late.ran)
	assert.Equal(t, 1, b.Len())
}

func TestRegistry_UnhandledContributionsAugment(t *testing.T) {
	augment := &probe{texts: []string{"alpha"}, handled: false}
	late := &probe{texts: []string{"omega"}, handled: true}

	r := NewRegistry(false, nil)
	r.Add(10, augment)
	r.Add(20, late)

	b := r.Generate(line.Parse("cmd", 3))

	assert.True(t, late.ran)
	assert.Equal(t, 2, b.Len())
}

func TestRegistry_HandledWithoutCandidatesContinues(t *testing.T) {
	empty := &probe{handled: true}
	late := &probe{texts: []string{"omega"}, handled: true}

	r := NewRegistry(false, nil)
	r.Add(10, empty)
	r.Add(20, late)

	b := r.Generate(line.Parse("cmd", 3))

	assert.True(t, late.ran)
	assert.Equal(t, 1, b.Len())
}

func TestRegistry_ClaimStopsScanWithZeroCandidates(t *testing.T) {
	claimer := &probe{handled: true, claim: true}
	late := &probe{texts: []string{"omega"}, handled: true}

	r := NewRegistry(false, nil)
	r.Add(10, claimer)
	r.Add(20, late)

	b := r.Generate(line.Parse("cmd", 3))

	assert.False(t, late.ran)
	assert.Equal(t, 0, b.Len())
	assert.True(t, b.Claimed())
}

func TestRegistry_PanicIsolation(t *testing.T) {
	boom := Func(func(ls *line.State, b *match.Builder) bool {
		b.AddText("partial")
		panic("generator bug")
	})
	late := &probe{texts: []string{"omega"}, handled: true}

	r := NewRegistry(false, nil)
	r.Add(10, boom)
	r.Add(20, late)

	b := r.Generate(line.Parse("cmd", 3))

	// Partial contributions survive and the scan continues.
	assert.True(t, late.ran)
	assert.True(t, b.Contains("partial"))
	assert.True(t, b.Contains("omega"))
}

func TestRegistry_GeneratorsShareOneSet(t *testing.T) {
	first := &probe{texts: []string{"dup", "only-first"}}
	second := &probe{texts: []string{"dup", "only-second"}, handled: true}

	r := NewRegistry(false, nil)
	r.Add(10, first)
	r.Add(20, second)

	b := r.Generate(line.Parse("cmd", 3))

	assert.Equal(t, 3, b.Len())
}

// breaker is a generator with a word-break override.
type breaker struct {
	probe
	offset, length int
}

func (br *breaker) WordBreak(ls *line.State) (int, int) {
	return br.offset, br.length
}

func TestRegistry_ApplyWordBreaks(t *testing.T) {
	r := NewRegistry(false, nil)
	r.Add(10, &breaker{offset: 4, length: 0})

	ls := line.Parse(`plugh dir\`, 10)
	r.ApplyWordBreaks(ls)

	assert.Equal(t, "", ls.EndWord(line.Unquoted))
	assert.Equal(t, 10, ls.Words()[ls.EndWordIndex()].Offset)
}

func TestRegistry_WordBreakFirstOverrideWins(t *testing.T) {
	r := NewRegistry(false, nil)
	r.Add(10, &breaker{offset: -1})
	r.Add(20, &breaker{offset: 2, length: -1})
	r.Add(30, &breaker{offset: 4, length: -1})

	ls := line.Parse("cmd abcdef", 10)
	r.ApplyWordBreaks(ls)

	// The negative offset declines; the next override applies and ends
	// the pass.
	assert.Equal(t, "cdef", ls.EndWord(line.Unquoted))
}

// classifier tags words with fixed codes.
type classifier struct {
	probe
	codes map[int]string
}

func (c *classifier) Classify(ls *line.State) map[int]string {
	return c.codes
}

func TestRegistry_ClassifyMergesWithoutOverwrite(t *testing.T) {
	r := NewRegistry(false, nil)
	r.Add(10, &classifier{codes: map[int]string{0: "c", 1: "f"}})
	r.Add(20, &classifier{codes: map[int]string{1: "a", 2: "o"}})

	codes := r.Classify(line.Parse("cmd -v x", 8))

	assert.Equal(t, map[int]string{0: "c", 1: "f", 2: "o"}, codes)
}
