package query

// UngroupedKey is the key of the single implicit group returned when no
// grouping is requested, so callers render grouped and ungrouped lists the
// same way.
const UngroupedKey = "All"

type Group[T any] struct {
	Key   string `json:"key"`
	Items []T    `json:"items"`
}

// Grouping is an ordered set of groups, keys in first-seen order of the
// scanned input.
type Grouping[T any] []Group[T]

// Keys returns the group keys in order.
func (g Grouping[T]) Keys() []string {
	keys := make([]string, len(g))
	for i, group := range g {
		keys[i] = group.Key
	}
	return keys
}

// GroupBy buckets items by keyFn, preserving the order keys are first seen
// while scanning the input. Grouping an empty list yields an empty grouping.
func GroupBy[T any](items []T, keyFn func(T) string) Grouping[T] {
	grouping := make(Grouping[T], 0)
	index := make(map[string]int)
	for _, item := range items {
		key := keyFn(item)
		at, seen := index[key]
		if !seen {
			at = len(grouping)
			index[key] = at
			grouping = append(grouping, Group[T]{Key: key})
		}
		grouping[at].Items = append(grouping[at].Items, item)
	}
	return grouping
}

// Ungrouped wraps items in the single implicit group.
func Ungrouped[T any](items []T) Grouping[T] {
	copied := make([]T, len(items))
	copy(copied, items)
	return Grouping[T]{{Key: UngroupedKey, Items: copied}}
}
