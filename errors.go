package depot

import "fmt"

// LockedStorageError is returned when a structural mutation is attempted
// against an EntityManager that is locked for a System's parallel update
// window.
type LockedStorageError struct{}

func (e LockedStorageError) Error() string {
	return "entity manager is currently locked"
}

// InvalidEntityError is returned by any operation addressing a stale,
// destroyed, or never-created Entity handle.
type InvalidEntityError struct {
	Entity Entity
}

func (e InvalidEntityError) Error() string {
	return fmt.Sprintf("invalid entity: %+v", e.Entity)
}

// MissingComponentError is returned by set/get operations against a
// component the entity's archetype does not carry.
type MissingComponentError struct {
	Entity    Entity
	Component string
}

func (e MissingComponentError) Error() string {
	return fmt.Sprintf("entity %+v has no component %s", e.Entity, e.Component)
}

// ComponentAlreadyPresentError is returned by AddComponent when the
// component is already attached to the entity.
type ComponentAlreadyPresentError struct {
	Entity    Entity
	Component string
}

func (e ComponentAlreadyPresentError) Error() string {
	return fmt.Sprintf("component %s already present on entity %+v", e.Component, e.Entity)
}

// TypeContractError is returned at registration or archetype-build time
// when a type is used in a way its Classification forbids.
type TypeContractError struct {
	Type   string
	Reason string
}

func (e TypeContractError) Error() string {
	return fmt.Sprintf("type contract violation for %s: %s", e.Type, e.Reason)
}

// DrainError wraps a single deferred-command failure, tagged with the
// recording worker and its position in that worker's buffer, so a batched
// drain report can point back at the offending record.
type DrainError struct {
	WorkerID int
	Index    int
	Err      error
}

func (e DrainError) Error() string {
	return fmt.Sprintf("worker %d command %d: %v", e.WorkerID, e.Index, e.Err)
}

func (e DrainError) Unwrap() error { return e.Err }
