package depot

import "sort"

// sharedPin is a required or rejected (shared-component id, exact value)
// pin, kept sorted by sid ascending (spec.md §4.6, invariant 7). The
// value itself is kept rather than a snapshotted shared-store index:
// sharedStore reuses freed indices, so the same value can be interned
// under a different index than it held when the filter was built.
type sharedPin struct {
	sid   uint32
	value any
}

// EntityFilter selects archetypes and, within them, combinations, by
// component/shared-component bitset membership and by specific
// shared-component values (spec.md §4.6).
type EntityFilter struct {
	require       ArchetypeMask // component + shared-component bits required present
	reject        ArchetypeMask // component + shared-component bits required absent
	requireShared []sharedPin
	rejectShared  []sharedPin
}

// FilterBuilder incrementally assembles an EntityFilter, mirroring the
// teacher's builder-pattern constructors (factory.go's NewStorage/
// NewQuery style) rather than exposing EntityFilter's fields directly.
type FilterBuilder struct {
	em     *EntityManager
	filter EntityFilter
}

func newFilterBuilder(em *EntityManager) *FilterBuilder {
	return &FilterBuilder{em: em}
}

// Require adds a required ordinary/manual component.
func Require[T any](b *FilterBuilder) *FilterBuilder {
	ct := componentTypeFor[T](Ordinary)
	b.filter.require.MarkComponent(ct.ID(), ct.Classification().IsManual())
	return b
}

// Reject adds a rejected ordinary/manual component.
func Reject[T any](b *FilterBuilder) *FilterBuilder {
	ct := componentTypeFor[T](Ordinary)
	b.filter.reject.MarkComponent(ct.ID(), ct.Classification().IsManual())
	return b
}

// RequireShared adds a required shared-component type, with no
// constraint on its value.
func RequireShared[T any](b *FilterBuilder) *FilterBuilder {
	ct := componentTypeFor[T](Shared)
	b.filter.require.MarkShared(ct.ID(), ct.Classification().IsManual())
	return b
}

// RejectShared adds a rejected shared-component type.
func RejectShared[T any](b *FilterBuilder) *FilterBuilder {
	ct := componentTypeFor[T](Shared)
	b.filter.reject.MarkShared(ct.ID(), ct.Classification().IsManual())
	return b
}

// RequireSharedValue adds a required (type, exact value) pin: only
// combinations whose shared tuple carries this exact value for T pass.
func RequireSharedValue[T any](b *FilterBuilder, value T) *FilterBuilder {
	ct := componentTypeFor[T](Shared)
	b.filter.requireShared = append(b.filter.requireShared, sharedPin{sid: ct.ID(), value: value})
	sort.Slice(b.filter.requireShared, func(i, j int) bool { return b.filter.requireShared[i].sid < b.filter.requireShared[j].sid })
	return b
}

// RejectSharedValue adds a rejected (type, exact value) pin.
func RejectSharedValue[T any](b *FilterBuilder, value T) *FilterBuilder {
	ct := componentTypeFor[T](Shared)
	b.filter.rejectShared = append(b.filter.rejectShared, sharedPin{sid: ct.ID(), value: value})
	sort.Slice(b.filter.rejectShared, func(i, j int) bool { return b.filter.rejectShared[i].sid < b.filter.rejectShared[j].sid })
	return b
}

// Build returns the assembled EntityFilter.
func (b *FilterBuilder) Build() EntityFilter {
	return b.filter
}

// matchesArchetype reports whether a's mask satisfies f's component and
// shared-component bitset constraints.
func (f EntityFilter) matchesArchetype(a *Archetype) bool {
	if !a.mask.ContainsAllComponents(f.require.components) {
		return false
	}
	if !a.mask.ContainsNoneComponents(f.reject.components) {
		return false
	}
	if !a.mask.ContainsAllShared(f.require.shared) {
		return false
	}
	if !a.mask.ContainsNoneShared(f.reject.shared) {
		return false
	}
	return true
}

// matchesCombination reports whether a combination's shared-value tuple
// satisfies f's required/rejected (sid, value) pins. sharedIDs is the
// owning archetype's ascending shared-id list, parallel to cb.shared;
// store resolves each interned index back to its value for comparison.
func (f EntityFilter) matchesCombination(sharedIDs []uint32, cb *Combination, store *sharedStore) bool {
	valueFor := func(sid uint32) (any, bool) {
		for i, id := range sharedIDs {
			if id == sid {
				return store.get(cb.shared[i]), true
			}
		}
		return nil, false
	}
	for _, pin := range f.requireShared {
		v, ok := valueFor(pin.sid)
		if !ok || v != pin.value {
			return false
		}
	}
	for _, pin := range f.rejectShared {
		if v, ok := valueFor(pin.sid); ok && v == pin.value {
			return false
		}
	}
	return true
}

// ChunkAccessor exposes one matched chunk's entity and component columns
// to a ChunkTask (spec.md §4.6): entity_array(), component_array<T>(id),
// shared_component_index(sid), entity_count().
type ChunkAccessor struct {
	archetype   *Archetype
	combination *Combination
	chunk       *Chunk
}

// EntityCount returns the number of occupied rows in the chunk.
func (a ChunkAccessor) EntityCount() int { return a.chunk.Len() }

// EntityAt returns the entity occupying row.
func (a ChunkAccessor) EntityAt(row int) Entity { return a.chunk.EntityAt(row) }

// Chunk exposes the underlying raw chunk for AccessibleComponent[T].Get.
func (a ChunkAccessor) Chunk() *Chunk { return a.chunk }

// Archetype returns the archetype this chunk belongs to.
func (a ChunkAccessor) Archetype() *Archetype { return a.archetype }

// SharedComponentIndex returns the interned shared-store index this
// chunk's combination holds for shared-component id sid (spec.md §4.6's
// shared_component_index(sid)), or ok=false if the archetype doesn't
// carry sid at all.
func (a ChunkAccessor) SharedComponentIndex(sid uint32) (index uint32, ok bool) {
	for i, id := range a.archetype.sharedIDs {
		if id == sid {
			return a.combination.shared[i], true
		}
	}
	return 0, false
}
