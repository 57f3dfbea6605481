package recommend

import (
	"sort"

	"github.com/kdimtricp/cinesuggest/internal/catalog"
)

type Neighbor struct {
	Index int
	Score float64
}

// Rank orders every catalog entry by its similarity to entry idx, highest
// first with ties in index order, and returns the first k that are neither
// idx itself nor another entry carrying the same title.
func Rank(store *catalog.Store, idx, k int) []Neighbor {
	row := store.Row(idx)
	self := store.Movie(idx).Title

	pairs := make([]Neighbor, len(row))
	for j, score := range row {
		pairs[j] = Neighbor{Index: j, Score: score}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].Score > pairs[b].Score
	})

	out := make([]Neighbor, 0, k)
	for _, p := range pairs {
		if len(out) == k {
			break
		}
		if p.Index == idx || store.Movie(p.Index).Title == self {
			continue
		}
		out = append(out, p)
	}
	return out
}
