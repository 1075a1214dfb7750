package utils

import (
	"regexp"
	"strings"
)

// hardExcluded never belongs in a swipe dictionary, however frequent: archaic
// forms and proper nouns that subtitle corpora lowercase.
var hardExcluded = wordSet(`
	wouldst shouldst couldst dost doth hast hath shalt thou thee thy thine ye
	forsooth prithee perchance methinks betwixt amongst whilst
	streep claude whoo dag mala
`)

// excluded is dropped past the core of a list, where frequency alone no
// longer vouches for a word.
var excluded = wordSet(`
	hr fa md vs ok ad id tv uk eu bc dc dj gp pc pm am ph em
	um uh hm mm ah oh ha ho hi huh aw ow oy ay eh sh ya yo na la
	da ma pa oi oo ew shh hmm uhh umm ahh ohh aww ooh heh whoa woah nah yah
	yeah yep nope yup ugh mhm mmm mmhmm psst shoo boo hah tsk brr grr argh
	blah duh tut whew phew jeez geez gee

	didn doesn isn wasn wouldn couldn shouldn hadn hasn aren weren won ain
	don haven mustn needn shan ll ve re

	shit shitty shitting fuck fucking fucked fucker damn damned dammit
	goddamn goddamned ass asses asshole assholes bitch bitches bitching
	bastard bastards crap crappy crapping piss pissed pissing dick dicks
	cock cocks slut sluts whore whores wank wanker wankers bollocks
	bullshit horseshit tits titty titties boobs boobies cunt cunts twat
	twats arse arses arsehole boner boners dildo dildos douche douchebag
	jackass motherfucker motherfuckers motherfucking

	lol omg wtf idk imo tbh smh af btw gonna gotta wanna dunno lemme kinda
	sorta coulda woulda shoulda oughta hafta outta gotcha whatcha betcha

	le de el di en du et un ta tu

	wilt art wherefore whence thence hither thither hitherto unto ere oft
	nay aye begone alas hark verily nought naught twain yonder hence woe
	beseech behold hearken brethren damsel maiden cometh saith sayeth
	maketh giveth taketh goeth knoweth loveth
`)

var obscurePrefixes = strings.Fields(`
	ante alti alveol angio antero arthro basi brachi bronch
	cardi cephal cerebr cervic chondr crani derm dors
	ecto endo entero epi fibro gastr gingiv gloss
	hemo hepat histo hypo hyper infra intra irid
	laryng lingu lymph mast mening myc myel
	naso nephr neur oculo olfact ophthalm osteo oto
	palat pancreat pector periton pharyng phren pleur pneum prostat pulmon pylor
	rhin scler splanchn spondyl staphyl stern strept synov
	thorac thromb thyr trache tympan uret uterin uvul vascul vesicul viscer
`)

var obscureSuffixes = strings.Fields(`
	aceous acious atory atorial escent iform itious ulous
	iferous igenous iguous ivorous ological
`)

var greekCluster = regexp.MustCompile(`(?:ph|th|ch)(?:ph|th|ch)`)

func wordSet(list string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(list) {
		set[w] = struct{}{}
	}
	return set
}

// IsHardExcluded reports words that are dropped anywhere in a list
func IsHardExcluded(word string) bool {
	_, ok := hardExcluded[word]
	return ok
}

// IsExcluded reports interjections, abbreviations, contraction fragments,
// slang, profanity and archaic forms.
func IsExcluded(word string) bool {
	if IsHardExcluded(word) {
		return true
	}
	_, ok := excluded[word]
	return ok
}

// IsLikelyObscure guesses whether a word is technical or archaic enough that
// nobody swipes it: very long words, medical roots and suffixes, stacked
// Greek digraphs, and -eth and long -ism endings.
func IsLikelyObscure(word string) bool {
	if len(word) > 14 {
		return true
	}
	for _, p := range obscurePrefixes {
		if strings.HasPrefix(word, p) && len(word) > len(p)+3 {
			return true
		}
	}
	for _, s := range obscureSuffixes {
		if strings.HasSuffix(word, s) {
			return true
		}
	}
	if greekCluster.MatchString(word) {
		return true
	}
	if strings.HasSuffix(word, "eth") && len(word) > 5 && !strings.HasSuffix(word, "reth") {
		return true
	}
	return strings.HasSuffix(word, "ism") && len(word) > 10
}
