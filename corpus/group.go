package corpus

import "sort"

// Group splits items into units of size items.
//
// With size <= 1 every item becomes its own unit and enumeration order is
// kept. With a larger size the items are stable-sorted by their length hint,
// longest first, before being chunked, so the first item of each bucket is
// also its longest. lengths must be co-indexed with items.
func Group(items []Item, lengths []int64, size int) [][]Item {
	if size <= 1 {
		groups := make([][]Item, len(items))
		for i := range items {
			groups[i] = items[i : i+1 : i+1]
		}
		return groups
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return lengths[order[a]] > lengths[order[b]]
	})
	sorted := make([]Item, len(items))
	for i, idx := range order {
		sorted[i] = items[idx]
	}

	groups := make([][]Item, 0, (len(sorted)+size-1)/size)
	for start := 0; start < len(sorted); start += size {
		end := min(start+size, len(sorted))
		groups = append(groups, sorted[start:end:end])
	}
	return groups
}

// grouped is the Backend state shared by the concrete corpora.
type grouped struct {
	name      string
	groupSize int
	groups    [][]Item
}

func newGrouped(name string, items []Item, lengths []int64, groupSize int) (*grouped, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCorpus
	}
	if groupSize < 1 {
		groupSize = 1
	}
	return &grouped{
		name:      name,
		groupSize: groupSize,
		groups:    Group(items, lengths, groupSize),
	}, nil
}

func (g *grouped) Name() string { return g.name }

func (g *grouped) GroupSize() int { return g.groupSize }

func (g *grouped) Groups() [][]Item { return g.groups }
