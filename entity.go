package depot

import "fmt"

// Entity is a lightweight, copyable handle: a recycled numeric id paired
// with a generation counter (spec.md §3 "Entity{id, version}"). Unlike
// the teacher's entity interface — which wraps a live table.Entry plus a
// parent/child relationship graph the spec has no equivalent of — Entity
// here is plain data; all behavior lives on EntityManager.
type Entity struct {
	ID      uint32
	Version uint32
}

// Nil is the invalid sentinel Entity (spec.md §3: "Invalid sentinel id =
// UINT_MAX"). Id 0 is a perfectly ordinary, assignable entity id, so Nil
// cannot be the zero value: math.MaxUint32 never appears as a live id
// since the free-list/append allocator never grows that high in
// practice, and locate() also rejects any id beyond len(versions).
var Nil = Entity{ID: ^uint32(0)}

func (e Entity) String() string {
	return fmt.Sprintf("Entity{id:%d version:%d}", e.ID, e.Version)
}

// EntityLocation pins down exactly where an entity's row currently lives:
// which archetype, which Combination within it (archetypes with no shared
// components hold their entities in a single Combination with an empty
// shared tuple), which Chunk, and which row in that chunk. An
// EntityManager keeps one of these per live entity id and rewrites it
// whenever a structural mutation or a swap-removal relocates the row
// (spec.md §3, §4.4).
type EntityLocation struct {
	archetype   *Archetype
	combination *Combination
	chunk       *Chunk
	row         int
}

func (l EntityLocation) valid() bool {
	return l.chunk != nil
}
