package audit

import "sort"

// DiffRelations computes the symmetric difference of two relation id sets.
// Duplicate ids on either side are collapsed. Results come back sorted so
// resolver queries and stored payloads are deterministic.
func DiffRelations(oldIDs, newIDs []int64) (added, removed []int64) {
	oldSet := toSet(oldIDs)
	newSet := toSet(newIDs)

	for id := range newSet {
		if _, ok := oldSet[id]; !ok {
			added = append(added, id)
		}
	}
	for id := range oldSet {
		if _, ok := newSet[id]; !ok {
			removed = append(removed, id)
		}
	}

	sort.Slice(added, func(i, j int) bool { return added[i] < added[j] })
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return added, removed
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
