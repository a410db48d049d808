package depot

import "github.com/TheBitDrifter/depot/task"

// factory implements the factory pattern for depot's construction
// surface: every public type is reached through the package-level
// Factory value rather than a bare struct literal, matching the
// teacher's factory.go convention.
type factory struct{}

// Factory is the global factory instance for constructing depot's core
// types.
var Factory factory

// NewEntityManager creates a new EntityManager, applying any Options in
// order.
func (f factory) NewEntityManager(cfg ...Option) *EntityManager {
	return newEntityManager(cfg...)
}

// NewArchetypeBuilder starts a new ArchetypeBuilder bound to em.
func (f factory) NewArchetypeBuilder(em *EntityManager) *ArchetypeBuilder {
	return em.NewArchetypeBuilder()
}

// NewFilterBuilder starts a new FilterBuilder bound to em.
func (f factory) NewFilterBuilder(em *EntityManager) *FilterBuilder {
	return em.NewFilterBuilder()
}

// NewWorld creates a World wrapping em and tm, with one CommandBuffer
// per configured worker (Config.WorkerCount) plus a main-thread buffer,
// ready for RegisterSystem/Start.
func (f factory) NewWorld(em *EntityManager, tm *task.Manager) *World {
	return newWorld(em, tm)
}

// NewTaskManager starts a DAG task scheduler with n workers (n <= 0
// resolves to hardware parallelism), for passing to Factory.NewWorld.
func (f factory) NewTaskManager(n int) *task.Manager {
	return task.NewManager(n)
}

// FactoryNewComponent creates a new AccessibleComponent for type T,
// classified as class the first time T is seen (spec.md §3 "a type is
// classified once, by its first use").
func FactoryNewComponent[T any](class Classification) AccessibleComponent[T] {
	return AccessibleComponent[T]{ComponentType: componentTypeFor[T](class)}
}
