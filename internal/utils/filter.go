package utils

import (
	"unicode"
)

// IsWordPunct reports punctuation allowed inside dictionary words.
func IsWordPunct(r rune) bool {
	return r == '\'' || r == '-'
}

// ContainsNumbers checks if a string contains any numeric digits
func ContainsNumbers(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// ContainsSpecialChars checks if a string contains characters that are
// neither letters nor word punctuation.
func ContainsSpecialChars(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !IsWordPunct(r) {
			return true
		}
	}
	return false
}

// MaxWordLetters is the longest word a dictionary keeps.
const MaxWordLetters = 22

// IsValidWord checks if a normalized dictionary line can be swiped.
// Returns false for empty strings, anything with digits or symbols, letters
// outside a-z, single letters other than "a" and "i", words longer than
// MaxWordLetters, and repetitive junk like "aaaa".
func IsValidWord(s string) bool {
	if len(s) == 0 {
		return false
	}

	if ContainsNumbers(s) || ContainsSpecialChars(s) {
		return false
	}

	letters := LettersOnly(s)
	if letters == "" || len(letters) > MaxWordLetters || !isKeyboardLetters(letters) {
		return false
	}
	if len(letters) == 1 && letters != "a" && letters != "i" {
		return false
	}

	if IsRepetitive(s) {
		return false
	}

	return true
}

// isKeyboardLetters reports whether s only uses the letters on the layouts
func isKeyboardLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

// IsRepetitive checks if a string consists of repetitive characters
// Simple version that checks for repeated characters (e.g., "aaa", "bbb")
func IsRepetitive(s string) bool {
	if len(s) <= 2 {
		return false
	}

	firstChar := s[0]
	for i := 1; i < len(s); i++ {
		if s[i] != firstChar {
			return false
		}
	}
	return true
}
