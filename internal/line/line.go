// Package line parses raw command-line text into words with offsets,
// quoting state and delimiters, and identifies the command word and the
// word being completed.
package line

// Word is one lexical unit of the line. Offsets index into the owning
// State's text; other packages only borrow read-only views.
type Word struct {
	Offset int
	Length int
	Quoted bool
	Delim  byte // delimiter immediately preceding the word, 0 for the first
	Alias  bool
	Redir  bool
}

// Mode selects how word text is returned. Generators normally want the
// quotes stripped so `"foo"ba` can complete to `"foo"bar"`; word-break
// overrides need the raw span so offsets stay consistent with the line.
type Mode int

const (
	// Unquoted strips quote characters from the word text.
	Unquoted Mode = iota
	// Raw returns the word span exactly as it appears in the line.
	Raw
)

// State owns one parsed line: the full text, the cursor, the word
// sequence, the command word index and the end word index. The end word
// is always the last word; the command word index can be greater than
// zero when redirection tokens precede the command.
type State struct {
	text    string
	cursor  int
	words   []Word
	command int
}

const (
	quoteChar  = '"'
	escapeChar = '\\'
)

func isDelim(c byte) bool {
	return c == ' ' || c == '\t'
}

func isSeparator(c byte) bool {
	return c == ';' || c == '&' || c == '|'
}

func isRedirChar(c byte) bool {
	return c == '<' || c == '>'
}

// Parse splits the text up to the cursor into words. Malformed input is
// never an error: an unterminated quote extends to the end of the line
// and yields a Word with Quoted=true.
func Parse(text string, cursor int) *State {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(text) {
		cursor = len(text)
	}

	s := &State{text: text, cursor: cursor}
	segStart := 0 // first word index of the current command segment

	var lastDelim byte
	i := 0
	for i < cursor {
		c := text[i]
		if isDelim(c) {
			lastDelim = c
			i++
			continue
		}
		if isSeparator(c) {
			lastDelim = c
			i++
			s.finishSegment(segStart)
			segStart = len(s.words)
			continue
		}

		start := i
		quoted := false
		inQuote := false
		for i < cursor {
			c = text[i]
			if c == escapeChar && i+1 < cursor && text[i+1] == quoteChar {
				quoted = true
				i += 2
				continue
			}
			if c == quoteChar {
				quoted = true
				inQuote = !inQuote
				i++
				continue
			}
			if !inQuote && (isDelim(c) || isSeparator(c)) {
				break
			}
			i++
		}

		w := Word{
			Offset: start,
			Length: i - start,
			Quoted: quoted,
			Delim:  lastDelim,
		}
		raw := text[start:i]
		if len(raw) > 0 && (isRedirChar(raw[0]) || (raw[0] == '2' && len(raw) > 1 && raw[1] == '>')) {
			w.Redir = true
		}
		s.words = append(s.words, w)
		lastDelim = 0
	}

	// A trailing delimiter (or an empty line) means the user is starting
	// a fresh word at the cursor.
	if len(s.words) == 0 || s.lastBoundary(cursor) {
		s.words = append(s.words, Word{Offset: cursor, Delim: lastDelim})
	}

	s.finishSegment(segStart)
	return s
}

// lastBoundary reports whether the character before the cursor ended the
// previous word, so an empty end word must be materialized.
func (s *State) lastBoundary(cursor int) bool {
	if cursor == 0 {
		return false
	}
	last := s.words[len(s.words)-1]
	return last.Offset+last.Length < cursor
}

// finishSegment computes the command word index for the words added
// since segStart, skipping redirection tokens and their targets.
func (s *State) finishSegment(segStart int) {
	i := segStart
	for i < len(s.words)-1 {
		w := s.words[i]
		if !w.Redir {
			break
		}
		i++
		// A bare redirection token (">", ">>", "2>", "<") takes the next
		// word as its target; ">file" embeds the target.
		if s.bareRedir(w) && i < len(s.words)-1 {
			i++
		}
	}
	if i < len(s.words) {
		s.command = i
	}
}

func (s *State) bareRedir(w Word) bool {
	raw := s.text[w.Offset : w.Offset+w.Length]
	for j := 0; j < len(raw); j++ {
		if !isRedirChar(raw[j]) && raw[j] != '2' {
			return false
		}
	}
	return true
}

// Text returns the full line text.
func (s *State) Text() string { return s.text }

// Cursor returns the cursor offset the state was parsed with.
func (s *State) Cursor() int { return s.cursor }

// WordCount returns the number of parsed words, including the end word.
func (s *State) WordCount() int { return len(s.words) }

// Words returns the parsed word sequence. Callers must treat it as
// read-only.
func (s *State) Words() []Word { return s.words }

// CommandWordIndex returns the index of the command word.
func (s *State) CommandWordIndex() int { return s.command }

// EndWordIndex returns the index of the word being completed, always
// the last word.
func (s *State) EndWordIndex() int { return len(s.words) - 1 }

// Word returns the text of word i in the requested mode. Out-of-range
// indices yield the empty string.
func (s *State) Word(i int, mode Mode) string {
	if i < 0 || i >= len(s.words) {
		return ""
	}
	w := s.words[i]
	raw := s.text[w.Offset : w.Offset+w.Length]
	if mode == Raw || !w.Quoted {
		return raw
	}
	return stripQuotes(raw)
}

// CommandWord returns the unquoted command word text.
func (s *State) CommandWord() string {
	return s.Word(s.command, Unquoted)
}

// EndWord returns the end word text in the requested mode.
func (s *State) EndWord(mode Mode) string {
	return s.Word(s.EndWordIndex(), mode)
}

// MarkAlias flags word i as an alias; the host resolves aliases, the
// parser only carries the flag.
func (s *State) MarkAlias(i int) {
	if i >= 0 && i < len(s.words) {
		s.words[i].Alias = true
	}
}

// AdjustEndWord narrows the end word to the span starting at offset
// (relative to the end word) with the given length. Used when a
// generator supplies word-break info.
func (s *State) AdjustEndWord(offset, length int) {
	i := s.EndWordIndex()
	w := &s.words[i]
	if offset < 0 || offset > w.Length {
		return
	}
	if length < 0 || offset+length > w.Length {
		length = w.Length - offset
	}
	w.Offset += offset
	w.Length = length
}

// Slice re-parses the tail of the line starting at the given text
// offset as an independent command line. Used by chained grammars.
func (s *State) Slice(offset int) *State {
	if offset < 0 {
		offset = 0
	}
	if offset > s.cursor {
		offset = s.cursor
	}
	sub := Parse(s.text[offset:], s.cursor-offset)
	sub.rebase(offset, s.text)
	return sub
}

// rebase shifts word offsets so they index the original line text.
func (s *State) rebase(offset int, text string) {
	for i := range s.words {
		s.words[i].Offset += offset
	}
	s.text = text
	s.cursor += offset
}

func stripQuotes(raw string) string {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == escapeChar && i+1 < len(raw) && raw[i+1] == quoteChar {
			out = append(out, quoteChar)
			i++
			continue
		}
		if c == quoteChar {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
