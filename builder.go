package depot

import "sort"

// ArchetypeBuilder accumulates a component/shared-component signature and
// resolves it to an Archetype handle, mirroring the boundary described in
// spec.md §6 ("Archetype builder: accepts lists of component and
// shared-component types; produces an Archetype handle") and the
// teacher's own builder-style Factory methods (factory.go).
type ArchetypeBuilder struct {
	em         *EntityManager
	components []Component
	sharedIDs  []uint32
}

func newArchetypeBuilder(em *EntityManager) *ArchetypeBuilder {
	return &ArchetypeBuilder{em: em}
}

func insertSortedUnique(ids []uint32, id uint32) []uint32 {
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= id })
	if i < len(ids) && ids[i] == id {
		return ids
	}
	ids = append(ids, 0)
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}

// MarkComponent declares an ordinary or manual per-entity component.
func MarkComponent[T any](b *ArchetypeBuilder, class Classification) *ArchetypeBuilder {
	ct := newComponentType[T](class)
	b.components = append(b.components, ct)
	return b
}

// MarkShared declares a shared (or manual-shared) component; its value
// is supplied per-entity at CreateEntity/AddSharedComponent time.
func MarkShared[T any](b *ArchetypeBuilder, class Classification) *ArchetypeBuilder {
	if class != Shared && class != ManualShared {
		class = Shared
	}
	ct := newComponentType[T](class)
	b.sharedIDs = insertSortedUnique(b.sharedIDs, ct.ID())
	return b
}

// Build resolves the accumulated signature to an Archetype, creating one
// if this is the first time it has been seen (spec.md §4.5: "Archetype
// lookup uses HashMap<ArchetypeMask, ArchetypeId>; on miss, a new
// archetype is built").
func (b *ArchetypeBuilder) Build() *Archetype {
	return b.em.archetypeFor(b.components, b.sharedIDs)
}
