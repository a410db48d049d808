package depot

// Classification is the registration-time tag that replaces the source's
// Component/SharedComponent/SingletonComponent/ManualComponent class
// hierarchy (spec.md §9). A type is classified exactly once, at its
// first registration, and the classification is immutable thereafter.
type Classification int

const (
	// Ordinary components are per-entity, stored inline in chunks.
	Ordinary Classification = iota
	// Manual components are per-entity, stored like Ordinary, but flagged
	// so that removing the last component of a fully-manual archetype
	// collapses (destroys) the entity instead of moving it to the empty
	// archetype (spec.md §4.4).
	Manual
	// Shared components are interned by value; entities hold a dense
	// index into the shared-object store and only entities whose entire
	// shared tuple matches share a Combination.
	Shared
	// ManualShared combines the Shared storage strategy with the Manual
	// collapse-on-removal semantic.
	ManualShared
	// Singleton components have exactly zero or one instance per world
	// and are never attached to an entity.
	Singleton
)

func (c Classification) String() string {
	switch c {
	case Ordinary:
		return "Ordinary"
	case Manual:
		return "Manual"
	case Shared:
		return "Shared"
	case ManualShared:
		return "ManualShared"
	case Singleton:
		return "Singleton"
	default:
		return "Unknown"
	}
}

// IsManual reports whether the classification carries the manual-collapse
// semantic, regardless of storage strategy.
func (c Classification) IsManual() bool {
	return c == Manual || c == ManualShared
}

// IsShared reports whether the classification is interned-by-value rather
// than stored inline per entity.
func (c Classification) IsShared() bool {
	return c == Shared || c == ManualShared
}
