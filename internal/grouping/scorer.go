package grouping

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mozillazg/go-unidecode"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Scorer rates how similar two prefixes are on a 0-100 scale.
// Implementations must be symmetric. Scores are not rounded, so 89.66
// stays below a threshold of 90.
type Scorer interface {
	Score(a, b string) float64
}

// RatioScorer compares normalized strings by their indel distance
// (insertions and deletions only), scaled by their combined length.
type RatioScorer struct {
	foldDiacritics bool
}

// NewRatioScorer returns the default scorer. With foldDiacritics set, accents
// are transliterated away before comparing ("Dún" and "Dun" score 100).
func NewRatioScorer(foldDiacritics bool) *RatioScorer {
	return &RatioScorer{foldDiacritics: foldDiacritics}
}

func (s *RatioScorer) Score(a, b string) float64 {
	return s.scoreNormalized(s.Normalize(a), s.Normalize(b))
}

func (s *RatioScorer) scoreNormalized(a, b string) float64 {
	// Two blank strings carry no information; treat them as unrelated.
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	// fuzzy.Ratio rounds to an int; the threshold needs the exact value.
	// A replacement costs 2 with xcost set, which is the indel distance.
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	return 100 * float64(total-fuzzy.LevEditDistance(a, b, 1)) / float64(total)
}

// Normalize lowercases v, turns every non letter/digit into a space and
// collapses runs of whitespace.
func (s *RatioScorer) Normalize(v string) string {
	if s.foldDiacritics {
		v = unidecode.Unidecode(v)
	}
	v = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, v)
	return strings.Join(strings.Fields(v), " ")
}
