package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(r Result) []string {
	out := make([]string, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		out = append(out, c.Text)
	}
	return out
}

func inserts(r Result) []string {
	out := make([]string, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		out = append(out, c.Insert)
	}
	return out
}

func TestPipeline_PrefixFilterAndSort(t *testing.T) {
	b := NewBuilder(false)
	b.AddText("foo/bar", "foo/bark", "foo/box", "food", "fool", "bar", "dir", "xyz")

	p := NewPipeline(Options{}, nil)
	r := p.Run("fo", b)

	assert.Equal(t, []string{"foo/bar", "foo/bark", "foo/box", "food", "fool"}, texts(r))
	assert.Equal(t, "foo", r.CommonPrefix)
}

func TestPipeline_EmptyWordKeepsAll(t *testing.T) {
	b := NewBuilder(false)
	b.AddText("beta", "alpha")

	r := NewPipeline(Options{}, nil).Run("", b)

	assert.Equal(t, []string{"alpha", "beta"}, texts(r))
}

func TestPipeline_NoSurvivors(t *testing.T) {
	b := NewBuilder(false)
	b.AddText("alpha")

	r := NewPipeline(Options{}, nil).Run("zzz", b)

	assert.Empty(t, r.Candidates)
	assert.Equal(t, "", r.CommonPrefix)
}

func TestPipeline_NilAndEmptySet(t *testing.T) {
	p := NewPipeline(Options{}, nil)

	assert.Empty(t, p.Run("x", nil).Candidates)
	assert.Empty(t, p.Run("x", NewBuilder(false)).Candidates)
}

func TestPipeline_CaseInsensitiveFilter(t *testing.T) {
	b := NewBuilder(false)
	b.AddText("Makefile", "main.go", "README")

	r := NewPipeline(Options{Case: CaseInsensitive}, nil).Run("ma", b)

	assert.Equal(t, []string{"main.go", "Makefile"}, texts(r))
	// The common prefix keeps the first survivor's spelling.
	assert.Equal(t, "ma", r.CommonPrefix)
}

func TestPipeline_CaseRelaxedStripsAccents(t *testing.T) {
	b := NewBuilder(false)
	b.AddText("café", "cat")

	r := NewPipeline(Options{Case: CaseRelaxed}, nil).Run("cafe", b)

	assert.Equal(t, []string{"café"}, texts(r))
}

func TestPipeline_PrefixIncludedSkipsFiltering(t *testing.T) {
	b := NewBuilder(false)
	b.AddText("unrelated", "other")
	b.SetPrefixIncluded(true)

	r := NewPipeline(Options{}, nil).Run("zzz", b)

	assert.Len(t, r.Candidates, 2)
}

func TestPipeline_SlashTranslation(t *testing.T) {
	b := NewBuilder(false)
	b.Add(Candidate{Text: `src\sub`, Type: Dir})
	b.Add(Candidate{Text: "src/main.go", Type: File})

	r := NewPipeline(Options{Slash: SlashForward}, nil).Run(`src\`, b)

	assert.Equal(t, []string{"src/main.go", "src/sub"}, texts(r))
	// Directories append the configured separator.
	assert.Equal(t, byte('/'), r.Candidates[1].Append)
}

func TestPipeline_NoSortKeepsInsertionOrder(t *testing.T) {
	b := NewBuilder(false)
	b.AddText("zeta", "alpha", "mid")
	b.SetNoSort()

	r := NewPipeline(Options{}, nil).Run("", b)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, texts(r))
}

func TestPipeline_BatchGroupingWordsBeforeFiles(t *testing.T) {
	b := NewBuilder(false)
	b.Add(Candidate{Text: "zz.txt", Type: File})
	b.Add(Candidate{Text: "aa.txt", Type: File})
	b.BeginBatch()
	b.Add(Candidate{Text: "--verbose", Type: Flag})
	b.Add(Candidate{Text: "--all", Type: Flag})

	r := NewPipeline(Options{}, nil).Run("", b)

	assert.Equal(t, []string{"--all", "--verbose", "aa.txt", "zz.txt"}, texts(r))
}

func TestPipeline_SingleBatchNeverGroups(t *testing.T) {
	b := NewBuilder(false)
	b.Add(Candidate{Text: "zz.txt", Type: File})
	b.Add(Candidate{Text: "--all", Type: Flag})

	r := NewPipeline(Options{}, nil).Run("", b)

	assert.Equal(t, []string{"--all", "zz.txt"}, texts(r))
}

func TestPipeline_CustomComparator(t *testing.T) {
	byLength := func(a, b Candidate) bool {
		if len(a.Text) != len(b.Text) {
			return len(a.Text) < len(b.Text)
		}
		return a.Text < b.Text
	}

	b := NewBuilder(false)
	b.AddText("ccc", "a", "bb")
	b.SetCompare(byLength)

	r := NewPipeline(Options{}, nil).Run("", b)

	assert.Equal(t, []string{"a", "bb", "ccc"}, texts(r))
}

func TestPipeline_SortIsDeterministic(t *testing.T) {
	run := func(order []string) []string {
		b := NewBuilder(false)
		b.AddText(order...)
		return texts(NewPipeline(Options{}, nil).Run("", b))
	}

	want := []string{"alpha", "beta", "gamma"}
	assert.Equal(t, want, run([]string{"gamma", "alpha", "beta"}))
	assert.Equal(t, want, run([]string{"beta", "gamma", "alpha"}))
}

func TestPipeline_RunIsRepeatable(t *testing.T) {
	b := NewBuilder(false)
	b.AddText("food", "fool", "bar")
	p := NewPipeline(Options{}, nil)

	first := p.Run("fo", b)
	second := p.Run("fo", b)

	assert.Equal(t, first, second)
}

func TestPipeline_QuotingOnWhitespace(t *testing.T) {
	b := NewBuilder(false)
	b.Add(Candidate{Text: "My Documents", Type: Dir})
	b.Add(Candidate{Text: "Makefile", Type: File})

	r := NewPipeline(Options{}, nil).Run("m", b)

	require.Len(t, r.Candidates, 2)
	assert.Equal(t, "Makefile", r.Candidates[0].Insert)
	assert.Equal(t, `"My Documents"`, r.Candidates[1].Insert)
}

func TestPipeline_QuotingOnConfiguredChars(t *testing.T) {
	b := NewBuilder(false)
	b.AddText("a&b", "plain")

	r := NewPipeline(Options{QuoteChars: "&|<>"}, nil).Run("", b)

	assert.Equal(t, []string{`"a&b"`, "plain"}, inserts(r))
}

func TestPipeline_ForceQuoting(t *testing.T) {
	b := NewBuilder(false)
	b.AddText("plain")
	b.SetForceQuoting()

	r := NewPipeline(Options{}, nil).Run("", b)

	assert.Equal(t, []string{`"plain"`}, inserts(r))
}

func TestPipeline_QuoteNever(t *testing.T) {
	b := NewBuilder(false)
	b.Add(Candidate{Text: "has space", Quoting: QuoteNever})

	r := NewPipeline(Options{}, nil).Run("", b)

	assert.Equal(t, []string{"has space"}, inserts(r))
}

func TestPipeline_QuoteNoTrailing(t *testing.T) {
	b := NewBuilder(false)
	b.Add(Candidate{Text: "env var%", Quoting: QuoteNoTrailing})

	r := NewPipeline(Options{}, nil).Run("", b)

	assert.Equal(t, []string{`"env var%`}, inserts(r))
}

func TestPipeline_SetLevelQuotingOverride(t *testing.T) {
	b := NewBuilder(false)
	b.Add(Candidate{Text: "has space"})
	b.SetSuppressQuoting(QuoteNever)

	r := NewPipeline(Options{}, nil).Run("", b)

	assert.Equal(t, []string{"has space"}, inserts(r))
}

func TestPipeline_AppendPolicy(t *testing.T) {
	b := NewBuilder(false)
	b.Add(Candidate{Text: "word"})
	b.Add(Candidate{Text: "subdir", Type: Dir})
	b.Add(Candidate{Text: "key=", Append: '='})
	b.Add(Candidate{Text: "open", SuppressAppend: true})

	r := NewPipeline(Options{}, nil).Run("", b)
	require.Len(t, r.Candidates, 4)

	appends := map[string]byte{}
	for _, c := range r.Candidates {
		appends[c.Text] = c.Append
	}
	assert.Equal(t, byte(' '), appends["word"])
	assert.Equal(t, byte('/'), appends["subdir"])
	assert.Equal(t, byte('='), appends["key="])
	assert.Equal(t, byte(0), appends["open"])
}

func TestPipeline_SetLevelSuppressAppend(t *testing.T) {
	b := NewBuilder(false)
	b.AddText("word")
	b.SetSuppressAppend()

	r := NewPipeline(Options{}, nil).Run("", b)

	assert.Equal(t, byte(0), r.Candidates[0].Append)
}

func TestPipeline_FuzzyFallback(t *testing.T) {
	b := NewBuilder(false)
	b.AddText("checkout", "cherry-pick", "status")

	r := NewPipeline(Options{Fuzzy: true}, nil).Run("chk", b)

	require.NotEmpty(t, r.Candidates)
	assert.Equal(t, "checkout", r.Candidates[0].Text)
	for _, c := range r.Candidates {
		assert.NotEqual(t, "status", c.Text)
	}
}

func TestPipeline_FuzzyNotUsedWhenPrefixMatches(t *testing.T) {
	b := NewBuilder(false)
	b.AddText("checkout", "cherry-pick")

	r := NewPipeline(Options{Fuzzy: true}, nil).Run("che", b)

	assert.Equal(t, []string{"checkout", "cherry-pick"}, texts(r))
}

func TestParseSlashMode(t *testing.T) {
	assert.Equal(t, SlashOff, ParseSlashMode("off"))
	assert.Equal(t, SlashOff, ParseSlashMode(""))
	assert.Equal(t, SlashNative, ParseSlashMode("native"))
	assert.Equal(t, SlashForward, ParseSlashMode("Forward"))
	assert.Equal(t, SlashBackward, ParseSlashMode("backslash"))
}

func TestCommonPrefix(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		mode  CaseMode
		want  string
	}{
		{"single", []string{"alpha"}, CaseSensitive, "alpha"},
		{"shared", []string{"food", "fool", "foot"}, CaseSensitive, "foo"},
		{"none", []string{"abc", "xyz"}, CaseSensitive, ""},
		{"case folded", []string{"Main.go", "makefile"}, CaseInsensitive, "Ma"},
		{"empty input", nil, CaseSensitive, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, commonPrefix(tt.texts, tt.mode))
		})
	}
}
