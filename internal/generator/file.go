package generator

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matcha-sh/matcha/internal/line"
	"github.com/matcha-sh/matcha/internal/match"
)

// Entry is one file system entry as reported by an Enumerator.
type Entry struct {
	Name  string
	Dir   bool
	Size  int64
	ATime time.Time
	MTime time.Time
	CTime time.Time
}

// Enumerator lists file system entries matching a glob pattern. It is
// treated as infallible: errors surface as an empty result. The extra
// flag requests size/time metadata.
type Enumerator interface {
	Enumerate(pattern string, extra bool) []Entry
}

// OSEnumerator enumerates through the local file system.
type OSEnumerator struct{}

// Enumerate implements Enumerator over filepath.Glob and os.Stat.
func (OSEnumerator) Enumerate(pattern string, extra bool) []Entry {
	names, err := filepath.Glob(pattern)
	if err != nil {
		return nil
	}
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		e := Entry{Name: filepath.Base(name)}
		info, err := os.Stat(name)
		if err == nil {
			e.Dir = info.IsDir()
			if extra {
				e.Size = info.Size()
				e.MTime = info.ModTime()
			}
		}
		entries = append(entries, e)
	}
	return entries
}

// FileGenerator is the default lowest-priority generator: it completes
// the end word against the file system through its enumerator.
type FileGenerator struct {
	enum Enumerator
}

// NewFileGenerator creates a file generator; a nil enumerator uses the
// local file system.
func NewFileGenerator(enum Enumerator) *FileGenerator {
	if enum == nil {
		enum = OSEnumerator{}
	}
	return &FileGenerator{enum: enum}
}

// Generate implements Generator. Candidates keep the directory part the
// user already typed, so the pipeline's prefix filter sees the whole
// word.
func (f *FileGenerator) Generate(ls *line.State, b *match.Builder) bool {
	word := ls.EndWord(line.Unquoted)
	dir := dirPart(word)

	added := 0
	for _, e := range f.enum.Enumerate(word+"*", false) {
		c := match.Candidate{
			Text: dir + e.Name,
			Type: match.File,
		}
		if e.Dir {
			c.Type = match.Dir
		}
		if b.Add(c) {
			added++
		}
	}
	return added > 0
}

// dirPart returns the directory portion of the word including the
// trailing separator, honoring both separator styles.
func dirPart(word string) string {
	if i := strings.LastIndexAny(word, `/\`); i >= 0 {
		return word[:i+1]
	}
	return ""
}
