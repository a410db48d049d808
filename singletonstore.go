package depot

// singletonStore holds at most one value per registered singleton type
// (spec.md §4.2: "singleton components have exactly zero or one instance
// per world and are never attached to an entity"), grounded on lazyecs's
// Resources (resources.go): a slice of boxed values plus a presence set,
// generalized here to typed set/get/remove helpers keyed by the
// singleton id space in ids.go instead of a type->index map recomputed
// per Resources instance.
type singletonStore struct {
	values  []any
	present []bool
}

func newSingletonStore() *singletonStore {
	return &singletonStore{
		values:  make([]any, MaxSingletonIDCount),
		present: make([]bool, MaxSingletonIDCount),
	}
}

func setSingleton[T any](s *singletonStore, value T) {
	id := singletonID[T]()
	s.values[id] = value
	s.present[id] = true
}

func getSingleton[T any](s *singletonStore) (T, bool) {
	id := singletonID[T]()
	if !s.present[id] {
		var zero T
		return zero, false
	}
	return s.values[id].(T), true
}

func removeSingleton[T any](s *singletonStore) {
	id := singletonID[T]()
	var zero T
	s.values[id] = zero
	s.present[id] = false
}
