package utils

import (
	"strings"
	"unicode"
)

// NormalizeWord lowercases and trims a dictionary line.
func NormalizeWord(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// LettersOnly drops every rune that is not a letter ("don't" -> "dont").
func LettersOnly(word string) string {
	clean := true
	for _, r := range word {
		if !unicode.IsLetter(r) {
			clean = false
			break
		}
	}
	if clean {
		return word
	}

	var b strings.Builder
	b.Grow(len(word))
	for _, r := range word {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CollapsedRune is one letter of a collapsed word. Double is set when the
// letter was repeated in the original spelling.
type CollapsedRune struct {
	Char   rune
	Double bool
}

// Collapse reduces runs of the same letter to a single entry
// ("hello" -> h e l(double) o).
func Collapse(word string) []CollapsedRune {
	out := make([]CollapsedRune, 0, len(word))
	for _, r := range word {
		if n := len(out); n > 0 && out[n-1].Char == r {
			out[n-1].Double = true
			continue
		}
		out = append(out, CollapsedRune{Char: r})
	}
	return out
}

// FirstLast returns the first and last rune of s.
func FirstLast(s string) (rune, rune, bool) {
	runes := []rune(s)
	if len(runes) == 0 {
		return 0, 0, false
	}
	return runes[0], runes[len(runes)-1], true
}
