package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CaseMode is the locale policy used when comparing candidate text
// against the word being completed.
type CaseMode int

const (
	// CaseSensitive compares bytes exactly.
	CaseSensitive CaseMode = iota
	// CaseInsensitive folds letter case.
	CaseInsensitive
	// CaseRelaxed folds letter case and strips accents.
	CaseRelaxed
)

// ParseCaseMode maps a settings string to a CaseMode. Unknown values
// fall back to insensitive, the interactive default.
func ParseCaseMode(s string) CaseMode {
	switch strings.ToLower(s) {
	case "sensitive":
		return CaseSensitive
	case "relaxed":
		return CaseRelaxed
	default:
		return CaseInsensitive
	}
}

// fold normalizes s for comparison under the mode.
func (m CaseMode) fold(s string) string {
	switch m {
	case CaseSensitive:
		return s
	case CaseInsensitive:
		return strings.ToLower(s)
	default:
		return stripAccents(strings.ToLower(s))
	}
}

// hasPrefix reports whether s begins with prefix under the mode.
func (m CaseMode) hasPrefix(s, prefix string) bool {
	return strings.HasPrefix(m.fold(s), m.fold(prefix))
}

// stripAccents decomposes to NFD and drops combining marks.
func stripAccents(s string) string {
	decomposed := norm.NFD.String(s)
	var sb strings.Builder
	sb.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		sb.WriteRune(r)
	}
	return norm.NFC.String(sb.String())
}
