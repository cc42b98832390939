package grouping

import (
	"fmt"
	"sort"
	"strings"
)

// Groups maps canonical keys to their member prefixes. Keys iterate in the
// order they were first created and members in the order they joined.
//
// Clusters come from a pairwise threshold that is not transitive, so one
// prefix can be a member of more than one group.
type Groups struct {
	keys     []string
	position map[string]int
	members  map[string][]string
	seen     map[string]map[string]struct{}
	// owners lists, per prefix, the positions of every group holding it.
	owners map[string][]int
}

func newGroups() *Groups {
	return &Groups{
		position: make(map[string]int),
		members:  make(map[string][]string),
		seen:     make(map[string]map[string]struct{}),
		owners:   make(map[string][]int),
	}
}

// add merges cluster into the group named key, creating it on first use
func (g *Groups) add(key string, cluster []string) {
	pos, ok := g.position[key]
	if !ok {
		pos = len(g.keys)
		g.keys = append(g.keys, key)
		g.position[key] = pos
		g.seen[key] = make(map[string]struct{})
	}
	for _, p := range cluster {
		if _, dup := g.seen[key][p]; dup {
			continue
		}
		g.seen[key][p] = struct{}{}
		g.members[key] = append(g.members[key], p)
		g.owners[p] = append(g.owners[p], pos)
	}
}

// Keys returns the group keys in creation order
func (g *Groups) Keys() []string {
	out := make([]string, len(g.keys))
	copy(out, g.keys)
	return out
}

// Members returns the prefixes of a group, or nil for an unknown key
func (g *Groups) Members(key string) []string {
	m, ok := g.members[key]
	if !ok {
		return nil
	}
	out := make([]string, len(m))
	copy(out, m)
	return out
}

// Contains reports whether prefix is a member of the group named key
func (g *Groups) Contains(key, prefix string) bool {
	_, ok := g.seen[key][prefix]
	return ok
}

func (g *Groups) Len() int {
	return len(g.keys)
}

// Resolve returns the key of the first group, in creation order, that lists
// prefix as a member. A prefix held by no group resolves to itself. When more
// than one group holds the prefix the choice is reported back so callers can
// log it; it is not an error.
func (g *Groups) Resolve(prefix string) (string, *AmbiguousMembership) {
	positions := g.owners[prefix]
	if len(positions) == 0 {
		return prefix, nil
	}
	sorted := make([]int, len(positions))
	copy(sorted, positions)
	sort.Ints(sorted)

	chosen := g.keys[sorted[0]]
	if len(sorted) == 1 {
		return chosen, nil
	}
	keys := make([]string, len(sorted))
	for i, pos := range sorted {
		keys[i] = g.keys[pos]
	}
	return chosen, &AmbiguousMembership{Prefix: prefix, Keys: keys, Chosen: chosen}
}

// AmbiguousMembership records a prefix that belongs to several groups
type AmbiguousMembership struct {
	Prefix string
	Keys   []string
	Chosen string
}

func (a AmbiguousMembership) String() string {
	return fmt.Sprintf("prefix %q is a member of groups [%s], resolved to %q",
		a.Prefix, strings.Join(a.Keys, ", "), a.Chosen)
}
