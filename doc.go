/*
Package depot provides an archetype-based Entity-Component-System (ECS)
runtime for games and simulations.

Depot groups entities by their exact component signature into
Archetypes, and within an Archetype by their exact shared-component
value tuple into Combinations, storing each Combination's entities in
fixed-capacity paged Chunks laid out column-major (SoA) for cache
locality. Structural changes (add/remove component, destroy) move an
entity between Chunks; reading or writing an existing component's value
never does.

Core Concepts:

  - Entity: a (ID, Version) handle; Version invalidates an id once freed
    and reissued, so a stale handle is detected rather than silently
    aliasing a new entity.
  - Component: per-entity data, classified Ordinary, Manual, Shared,
    ManualShared, or Singleton at first registration. Shared components
    are interned by value and refcounted: every entity in a Combination
    holds the identical value. Manual components are never auto-removed
    by EntityManager bookkeeping; removing the last one from a
    fully-manual archetype destroys the entity instead of moving it to
    a smaller archetype.
  - Archetype / Combination / Chunk: the three-level storage hierarchy
    (spec.md §3). ChunkAccessor is the read/iterate handle a System gets
    back from a filter match.
  - EntityFilter: a require/reject mask over components and shared
    components, plus optional required/rejected shared values, built via
    FilterBuilder and evaluated against every live Archetype/Combination.
  - CommandBuffer: a deferred log of structural mutations recorded
    off-thread during a System's OnUpdate and replayed, main buffer
    first then worker buffers in order, at the sync-drain point between
    Systems.
  - task.Manager: a generic DAG task scheduler with no ECS knowledge;
    World.ScheduleChunkTask expands a ChunkTask into one DAG node per
    matched chunk on top of it.
  - System / World: a System's OnEnter/OnUpdate/OnExit run once per tick;
    between Systems the World waits on the prior System's scheduled
    work, drains all command buffers, and moves on.

Basic Usage:

	em := depot.Factory.NewEntityManager()

	position := depot.FactoryNewComponent[Position](depot.Ordinary)
	velocity := depot.FactoryNewComponent[Velocity](depot.Ordinary)

	moving := em.NewArchetypeBuilder()
	depot.MarkComponent[Position](moving, depot.Ordinary)
	depot.MarkComponent[Velocity](moving, depot.Ordinary)
	archetype := moving.Build()

	entity, _ := em.CreateEntity(archetype)
	depot.SetComponent[Position](em, entity, Position{X: 1, Y: 2})
	depot.SetComponent[Velocity](em, entity, Velocity{X: 0, Y: 1})

	filter := em.NewFilterBuilder()
	depot.Require[Position](filter)
	depot.Require[Velocity](filter)
	built := filter.Build()

	for _, acc := range em.FilterEntities(built) {
		chunk := acc.Chunk()
		for row := 0; row < chunk.Len(); row++ {
			pos := position.Get(chunk, row)
			vel := velocity.Get(chunk, row)
			pos.X += vel.X
			pos.Y += vel.Y
		}
	}

Depot is a standalone ECS runtime; rendering, input, asset loading and
windowing are left to callers.
*/
package depot
