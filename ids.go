package depot

import (
	"fmt"
	"reflect"

	"github.com/TheBitDrifter/bark"
)

// Bitset bounds (spec.md §9 Open Questions: "the exact bound of
// fixed-width bitsets... implementer must choose and document").
// Component and Manual ids share one 256-wide space (mask.Mask256);
// shared-component ids get their own 128-wide space; singleton ids share
// the component-sized 256-wide space since they are never combined into
// an ArchetypeMask.
const (
	MaxComponentIDCount       = 256
	MaxSharedComponentIDCount = 128
	MaxSingletonIDCount       = 256
)

// Separate id spaces for component / shared / singleton (spec.md §4.1).
// Each is a dense, append-only registry keyed by a stable type
// descriptor (the reflect.Type's string form), built on the same
// SimpleCache mechanics the teacher repo uses for general-purpose
// interning (cache.go).
var (
	componentIDs       = FactoryNewCache[reflect.Type](MaxComponentIDCount)
	sharedComponentIDs = FactoryNewCache[reflect.Type](MaxSharedComponentIDCount)
	singletonIDs       = FactoryNewCache[reflect.Type](MaxSingletonIDCount)
)

// registerID assigns the next free dense id in space for t, or returns
// the id already assigned to t. Exhausting the space is an out-of-capacity
// condition (spec.md §7 kind 5): fatal, since no caller can recover a
// usable id from it.
func registerID(space Cache[reflect.Type], t reflect.Type, name string) uint32 {
	idx, err := space.Register(t.String(), t)
	if err != nil {
		panic(bark.AddTrace(fmt.Errorf("%s id space exhausted registering %s: %w", name, t, err)))
	}
	return uint32(idx)
}

// componentID assigns (or looks up) the dense component id for T.
// Idempotent: repeated calls for the same T return the same id.
func componentID[T any]() uint32 {
	var zero T
	return registerID(componentIDs, reflect.TypeOf(zero), "component")
}

// sharedComponentID assigns (or looks up) the dense shared-component id
// for T.
func sharedComponentID[T any]() uint32 {
	var zero T
	return registerID(sharedComponentIDs, reflect.TypeOf(zero), "shared component")
}

// singletonID assigns (or looks up) the dense singleton-component id for T.
func singletonID[T any]() uint32 {
	var zero T
	return registerID(singletonIDs, reflect.TypeOf(zero), "singleton component")
}
