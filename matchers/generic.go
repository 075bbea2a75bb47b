package matchers

import (
	"strings"
	"unicode"

	"github.com/kova98/threadcorpus/enums"
)

// Matches applies keyword to text using mode, ignoring case. An empty
// keyword matches everything.
func Matches(mode enums.MatchMode, text, keyword string) bool {
	if keyword == "" {
		return true
	}
	text = strings.ToLower(text)
	keyword = strings.ToLower(keyword)
	if mode == enums.MatchModeExact {
		return MatchesWholeWord(text, keyword)
	}
	return MatchesPartially(text, keyword)
}

// MatchesWholeWord returns true if the keyword appears as a complete word in the text.
// Word boundaries are defined by non-alphanumeric characters or start/end of string.
func MatchesWholeWord(text, keyword string) bool {
	if keyword == "" {
		return false
	}
	idx := 0
	for {
		pos := strings.Index(text[idx:], keyword)
		if pos == -1 {
			return false
		}
		pos += idx

		leftOk := pos == 0 || !isWordChar(lastRune(text[:pos]))

		endPos := pos + len(keyword)
		rightOk := endPos == len(text) || !isWordChar(firstRune(text[endPos:]))

		if leftOk && rightOk {
			return true
		}

		idx = pos + 1
		if idx >= len(text) {
			return false
		}
	}
}

func lastRune(s string) rune {
	r := []rune(s)
	return r[len(r)-1]
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func MatchesPartially(text, keyword string) bool {
	return strings.Contains(text, keyword)
}
