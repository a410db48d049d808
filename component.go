package depot

import (
	"fmt"
	"reflect"

	"github.com/TheBitDrifter/bark"
)

// Component is the registration handle for every type attached to an
// archetype: a stable dense id, the Classification it was first
// registered under, and the memory layout a Chunk needs to place it in a
// column (spec.md §4.1, §4.3). It replaces the teacher's
// table.ElementType-backed Component (component.go), since chunk columns
// here are raw byte pages rather than a reflection-driven table.Table.
type Component interface {
	ID() uint32
	Classification() Classification
	Size() uintptr
	Align() uintptr
}

// ComponentType is the concrete Component handle for a single Go type T.
type ComponentType[T any] struct {
	id    uint32
	class Classification
	size  uintptr
	align uintptr
}

func (c ComponentType[T]) ID() uint32                     { return c.id }
func (c ComponentType[T]) Classification() Classification { return c.class }
func (c ComponentType[T]) Size() uintptr                  { return c.size }
func (c ComponentType[T]) Align() uintptr                 { return c.align }

// classRegistry remembers the Classification each Go type was first
// registered under. It is written only on a type's first registration;
// later lookups for the same type (SetComponent, FactoryNewComponent,
// filter builders, ...) only read it. The map itself is not locked.
var classRegistry = make(map[reflect.Type]Classification)

// newComponentType registers T in the id space matching class and
// captures its size/alignment via reflection, once, at registration
// time (spec.md §4.1: "a type is classified once, by its first use").
// A later call for the same T under a different Classification is a
// contract violation (spec.md §3 "Component — classified at
// registration") and panics rather than silently relabeling the type.
func newComponentType[T any](class Classification) ComponentType[T] {
	var zero T
	t := reflect.TypeOf(zero)

	existing, ok := classRegistry[t]
	if ok && existing != class {
		panic(bark.AddTrace(TypeContractError{
			Type:   t.String(),
			Reason: fmt.Sprintf("registered as %s, re-registered as %s", existing, class),
		}))
	}
	if !ok {
		classRegistry[t] = class
	}

	var id uint32
	switch class {
	case Shared, ManualShared:
		id = sharedComponentID[T]()
	case Singleton:
		id = singletonID[T]()
	default:
		id = componentID[T]()
	}

	return ComponentType[T]{
		id:    id,
		class: class,
		size:  t.Size(),
		align: uintptr(t.Align()),
	}
}

// componentTypeFor resolves T's already-registered ComponentType, or
// registers it under defaultClass if this is the first use — used by
// call sites (AddComponent, FilterBuilder.Require, ...) that do not
// themselves decide a type's Classification but must still tolerate it
// having been classified earlier via an ArchetypeBuilder.
func componentTypeFor[T any](defaultClass Classification) ComponentType[T] {
	var zero T
	t := reflect.TypeOf(zero)
	class := defaultClass
	if existing, ok := classRegistry[t]; ok {
		class = existing
	}
	return newComponentType[T](class)
}

// AccessibleComponent pairs a ComponentType with chunk-column access,
// mirroring the teacher's AccessibleComponent[T] (componentaccessible.go)
// but reading/writing a raw Chunk column (chunk.go) instead of a
// table.Accessor.
type AccessibleComponent[T any] struct {
	ComponentType[T]
}

// Get returns a pointer to T's value for the entity at row in chunk. The
// caller — an EntityManager method, or a ChunkTask operating within its
// assigned chunk per spec.md §5 — is responsible for row being in range
// and chunk's archetype carrying this component; Get returns nil
// otherwise.
func (c AccessibleComponent[T]) Get(chunk *Chunk, row int) *T {
	col := column[T](chunk, c.id)
	if col == nil || row < 0 || row >= len(col) {
		return nil
	}
	return &col[row]
}

// Has reports whether chunk's layout carries this component at all.
func (c AccessibleComponent[T]) Has(chunk *Chunk) bool {
	return chunk.HasColumn(c.id)
}

// GetFromEntity resolves entity's current chunk/row via manager and
// returns a pointer to its T value, or an error if entity is stale or
// does not carry this component.
func (c AccessibleComponent[T]) GetFromEntity(manager *EntityManager, entity Entity) (*T, error) {
	loc, ok := manager.locate(entity)
	if !ok {
		return nil, InvalidEntityError{Entity: entity}
	}
	v := c.Get(loc.chunk, loc.row)
	if v == nil {
		return nil, MissingComponentError{Entity: entity, Component: typeName[T]()}
	}
	return v, nil
}

func typeName[T any]() string {
	var zero T
	return reflect.TypeOf(zero).String()
}
