package keys

import "unicode"

// letterFrequency holds relative English letter frequencies in percent.
var letterFrequency = [26]float64{
	8.17, 1.49, 2.78, 4.25, 12.70, 2.23, 2.02, 6.09, 6.97, 0.15, 0.77, 4.03, 2.41,
	6.75, 7.51, 1.93, 0.10, 5.99, 6.33, 9.06, 2.76, 0.98, 2.36, 0.15, 1.97, 0.07,
}

// minLetterFrequency is used for characters outside a-z.
const minLetterFrequency = 0.05

// LetterFrequency returns the relative frequency of r in English text.
func LetterFrequency(r rune) float64 {
	r = unicode.ToLower(r)
	if r < 'a' || r > 'z' {
		return minLetterFrequency
	}
	return letterFrequency[r-'a']
}
