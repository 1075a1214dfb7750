package dictionary

import (
	"github.com/bastiangx/swipeserve/internal/utils"
	"github.com/charmbracelet/log"
)

// DefaultCoreSize is how many of the most frequent words are trusted without
// the excluded-word and obscurity checks.
const DefaultCoreSize = 10000

// CurateOptions controls Curate.
type CurateOptions struct {
	// CoreSize words at the head of the list only face the hard exclusions.
	CoreSize int
	// DropObscure also drops technical or archaic looking words past the core.
	DropObscure bool
}

// CurateStats counts what Curate removed.
type CurateStats struct {
	Invalid   int
	Duplicate int
	Excluded  int
	Obscure   int
}

// Dropped is the total number of removed words.
func (s CurateStats) Dropped() int {
	return s.Invalid + s.Duplicate + s.Excluded + s.Obscure
}

// Curate cleans a frequency-ordered word list for swiping and keeps the order
// of what survives. Words in the core keep their place unless they are hard
// excluded, so common short words like "am" or "oh" stay typeable.
func Curate(words []string, opts CurateOptions) ([]string, CurateStats) {
	var stats CurateStats
	seen := utils.NewSeenFilter()
	out := make([]string, 0, len(words))
	for i, raw := range words {
		word := utils.NormalizeWord(raw)
		switch {
		case !utils.IsValidWord(word):
			stats.Invalid++
		case !seen.ShouldInclude(word):
			stats.Duplicate++
		case utils.IsHardExcluded(word), i >= opts.CoreSize && utils.IsExcluded(word):
			stats.Excluded++
		case i >= opts.CoreSize && opts.DropObscure && utils.IsLikelyObscure(word):
			stats.Obscure++
		default:
			out = append(out, word)
		}
	}
	log.Debugf("Curate: kept %d of %d words (%d invalid, %d duplicate, %d excluded, %d obscure)",
		len(out), len(words), stats.Invalid, stats.Duplicate, stats.Excluded, stats.Obscure)
	return out, stats
}
