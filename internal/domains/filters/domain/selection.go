package domain

// Item wraps a catalog entity with the client side view-model fields.
// SpecificAge and AgeError are only meaningful for AgeRangeBucket items.
type Item[T Entity] struct {
	Value       T      `json:"value"`
	Selected    bool   `json:"selected"`
	SpecificAge string `json:"specificAge,omitempty"`
	AgeError    string `json:"ageError,omitempty"`
}

// ID returns the wrapped entity id.
func (i Item[T]) ID() int64 {
	return i.Value.EntityID()
}

// IDSet is a set of entity ids.
type IDSet map[int64]struct{}

// NewIDSet builds a set from the provided ids.
func NewIDSet(ids ...int64) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports membership. A nil set contains nothing.
func (s IDSet) Has(id int64) bool {
	if s == nil {
		return false
	}
	_, ok := s[id]
	return ok
}

// Fallback carries the persisted selection used when an item has no in-memory predecessor.
type Fallback struct {
	Selected IDSet
	Ages     map[int64]string
}

// Reconcile republishes fresh with the selection state of prior copied over by id.
// Items without a prior counterpart take their state from fallback, or start unselected.
func Reconcile[T Entity](fresh []T, prior []Item[T], fallback Fallback) []Item[T] {
	byID := make(map[int64]Item[T], len(prior))
	for _, p := range prior {
		byID[p.ID()] = p
	}
	out := make([]Item[T], 0, len(fresh))
	for _, value := range fresh {
		id := value.EntityID()
		item := Item[T]{Value: value}
		if p, ok := byID[id]; ok {
			item.Selected = p.Selected
			item.SpecificAge = p.SpecificAge
			item.AgeError = p.AgeError
		} else {
			item.Selected = fallback.Selected.Has(id)
			if age, ok := fallback.Ages[id]; ok {
				item.SpecificAge = age
			}
		}
		out = append(out, item)
	}
	return out
}

// SelectedIDs returns the ids of selected items in list order.
func SelectedIDs[T Entity](items []Item[T]) []int64 {
	var ids []int64
	for _, item := range items {
		if item.Selected {
			ids = append(ids, item.ID())
		}
	}
	return ids
}

// Values unwraps the entities of a list.
func Values[T Entity](items []Item[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, item.Value)
	}
	return out
}

// Toggle flips the selection of the item with the given id. It reports whether the id was found.
func Toggle[T Entity](items []Item[T], id int64) bool {
	for i := range items {
		if items[i].ID() == id {
			items[i].Selected = !items[i].Selected
			return true
		}
	}
	return false
}

// CloneItems copies a list so callers cannot alias the session state.
func CloneItems[T Entity](items []Item[T]) []Item[T] {
	if items == nil {
		return nil
	}
	out := make([]Item[T], len(items))
	copy(out, items)
	return out
}
