package domain

// Dedupe collapses entities sharing an id. The surviving value is the last one seen for that id,
// placed at the position where the id first appeared.
func Dedupe[T Entity](items []T) []T {
	if len(items) == 0 {
		return []T{}
	}
	seen := make(map[int64]int, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		id := item.EntityID()
		if idx, ok := seen[id]; ok {
			out[idx] = item
			continue
		}
		seen[id] = len(out)
		out = append(out, item)
	}
	return out
}
