package grouping

import (
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

// DefaultThreshold is the minimum score for two prefixes to share a cluster
const DefaultThreshold = 90

// Grouper clusters similar prefixes. Every pair is scored, so the cost is
// quadratic in the number of distinct prefixes.
type Grouper struct {
	scorer    Scorer
	threshold int
}

func NewGrouper(scorer Scorer, threshold int) *Grouper {
	if scorer == nil {
		scorer = NewRatioScorer(false)
	}
	return &Grouper{
		scorer:    scorer,
		threshold: threshold,
	}
}

// Group builds the candidate cluster of every prefix (itself plus every
// prefix scoring at least the threshold against it), names it after its
// shortest member and merges it into the group of that name.
//
// Duplicate input prefixes are ignored after their first occurrence.
func (g *Grouper) Group(prefixes []string) *Groups {
	unique := dedupe(prefixes)
	groups := newGroups()
	if len(unique) == 0 {
		return groups
	}

	// neighbours[i] holds the indices similar to i in ascending order
	neighbours := make([][]int, len(unique))
	for i := 0; i < len(unique); i++ {
		for j := i + 1; j < len(unique); j++ {
			if g.scorer.Score(unique[i], unique[j]) >= float64(g.threshold) {
				neighbours[i] = append(neighbours[i], j)
				neighbours[j] = append(neighbours[j], i)
			}
		}
	}

	for i, p := range unique {
		cluster := make([]string, 0, len(neighbours[i])+1)
		self := false
		for _, j := range neighbours[i] {
			if !self && j > i {
				cluster = append(cluster, p)
				self = true
			}
			cluster = append(cluster, unique[j])
		}
		if !self {
			cluster = append(cluster, p)
		}

		key := shortest(cluster)
		groups.add(key, cluster)
		log.Trace().Str("prefix", p).Str("group_key", key).Int("cluster_size", len(cluster)).Msg("Clustered prefix")
	}

	return groups
}

// shortest returns the first string with the fewest characters
func shortest(values []string) string {
	best := values[0]
	bestLen := utf8.RuneCountInString(best)
	for _, v := range values[1:] {
		if n := utf8.RuneCountInString(v); n < bestLen {
			best, bestLen = v, n
		}
	}
	return best
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
