package depot

// EntityManager is the single owner of entity identity, archetype
// storage, the interned shared-component store, and the singleton store
// (spec.md §4.5). Structural operations — create/destroy, add/remove/set
// for every Classification — are legal only from the main thread or
// during the sync-drain window (spec.md §5); set_component on an
// already-present column is the one exception, since it is a pure column
// write rather than a structural change.
//
// Grounded on the teacher's storage.go (storage/archetypes), but entity
// identity moves from a live table.Entry per entity to a flat free-list
// over plain Entity values, matching spec.md §3/§4.5's "id indexes into a
// dense table of EntityLocation" / "free-list; freed ids may be reissued
// with bumped version" model instead of table's recycled-entry model.
type EntityManager struct {
	locked     bool
	chunkBytes int
	freeIDs    []uint32
	versions   []uint32
	locations  []EntityLocation
	archetypes []*Archetype
	archByMask map[ArchetypeMask]ArchetypeID
	emptyArche *Archetype
	shared     *sharedStore
	singletons *singletonStore
}

// Option configures an EntityManager at construction time (spec.md §6+
// "Factory.NewEntityManager(cfg ...Option)"). Unset fields fall back to
// the package-level Config defaults.
type Option func(*EntityManager)

// WithChunkBytes overrides Config.ChunkBytes() for this manager alone,
// for callers that want a different page size than the process default
// (e.g. a test exercising chunk-overflow with a deliberately tiny page).
func WithChunkBytes(n int) Option {
	return func(em *EntityManager) { em.chunkBytes = n }
}

func newEntityManager(opts ...Option) *EntityManager {
	em := &EntityManager{
		chunkBytes: Config.ChunkBytes(),
		archByMask: make(map[ArchetypeMask]ArchetypeID),
		shared:     newSharedStore(),
		singletons: newSingletonStore(),
	}
	for _, opt := range opts {
		opt(em)
	}
	em.emptyArche = em.archetypeFor(nil, nil)
	return em
}

// NewArchetypeBuilder starts a new ArchetypeBuilder bound to this manager.
func (em *EntityManager) NewArchetypeBuilder() *ArchetypeBuilder {
	return newArchetypeBuilder(em)
}

// NewFilterBuilder starts a new FilterBuilder bound to this manager.
func (em *EntityManager) NewFilterBuilder() *FilterBuilder {
	return newFilterBuilder(em)
}

// Locked reports whether the manager is inside a System's parallel
// update window; while locked, CreateEntity, DestroyEntity and the
// component and shared-component add/remove/set operations other than
// SetComponent return LockedStorageError. The singleton operations do not
// consult the lock.
func (em *EntityManager) Locked() bool { return em.locked }

// Lock marks the start of a parallel update window (World.Start calls it
// before a System's OnUpdate, spec.md §5).
func (em *EntityManager) Lock() { em.locked = true }

// Unlock ends the parallel update window; World.Start calls it before the
// sync drain.
func (em *EntityManager) Unlock() { em.locked = false }

// archetypeFor finds or creates the Archetype for exactly this
// component/shared-id signature (spec.md §4.5 archetype lookup).
func (em *EntityManager) archetypeFor(components []Component, sharedIDs []uint32) *Archetype {
	var m ArchetypeMask
	for _, c := range components {
		m.MarkComponent(c.ID(), c.Classification().IsManual())
	}
	for _, sid := range sharedIDs {
		m.MarkShared(sid, classRegistry[*sharedComponentIDs.GetItem32(sid)].IsManual())
	}
	if id, ok := em.archByMask[m]; ok {
		return em.archetypes[id]
	}
	id := ArchetypeID(len(em.archetypes))
	a := newArchetype(id, components, sharedIDs, em.chunkBytes)
	em.archetypes = append(em.archetypes, a)
	em.archByMask[m] = id
	return a
}

func (em *EntityManager) allocate() Entity {
	if n := len(em.freeIDs); n > 0 {
		id := em.freeIDs[n-1]
		em.freeIDs = em.freeIDs[:n-1]
		return Entity{ID: id, Version: em.versions[id]}
	}
	id := uint32(len(em.versions))
	em.versions = append(em.versions, 0)
	em.locations = append(em.locations, EntityLocation{})
	return Entity{ID: id, Version: 0}
}

// locate resolves a live Entity to its current EntityLocation, reporting
// false for a stale or never-issued handle (spec.md §3 invariant 4).
func (em *EntityManager) locate(e Entity) (EntityLocation, bool) {
	if int(e.ID) >= len(em.versions) || em.versions[e.ID] != e.Version {
		return EntityLocation{}, false
	}
	loc := em.locations[e.ID]
	if !loc.valid() {
		return EntityLocation{}, false
	}
	return loc, true
}

func (em *EntityManager) patchLocation(e Entity, loc EntityLocation) {
	em.locations[e.ID] = loc
}

// CreateEntity creates a brand-new entity in archetype, supplying one
// value per shared component archetype carries, in archetype.sharedIDs
// order. Pass a nil archetype to create in the empty archetype.
func (em *EntityManager) CreateEntity(archetype *Archetype, sharedValues ...any) (Entity, error) {
	if em.locked {
		return Nil, LockedStorageError{}
	}
	if archetype == nil {
		archetype = em.emptyArche
	}
	if len(sharedValues) != len(archetype.sharedIDs) {
		return Nil, TypeContractError{
			Type:   "Entity",
			Reason: "shared value count does not match archetype's shared component count",
		}
	}
	e := em.allocate()
	sharedIdx := make([]uint32, len(sharedValues))
	for i, v := range sharedValues {
		sharedIdx[i] = em.shared.intern(v)
	}
	combo, chunk, row := archetype.AddEntity(e, sharedIdx)
	em.patchLocation(e, EntityLocation{archetype: archetype, combination: combo, chunk: chunk, row: row})
	return e, nil
}

// DestroyEntity removes e from storage and recycles its id with a bumped
// version (spec.md §4.5).
func (em *EntityManager) DestroyEntity(e Entity) error {
	if em.locked {
		return LockedStorageError{}
	}
	loc, ok := em.locate(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	for _, idx := range loc.combination.shared {
		em.shared.release(idx)
	}
	moved, movedRow, movedOK := loc.archetype.RemoveEntity(loc)
	if movedOK {
		em.patchLocation(moved, EntityLocation{archetype: loc.archetype, combination: loc.combination, chunk: loc.chunk, row: movedRow})
	}
	em.versions[e.ID]++
	em.locations[e.ID] = EntityLocation{}
	em.freeIDs = append(em.freeIDs, e.ID)
	return nil
}

// collapseIfManual implements spec.md §4.4's special rule: removing the
// last component of a fully-manual, single-element archetype destroys
// the entity instead of moving it into the (now again single-element, or
// empty) archetype that removal would otherwise produce.
func (em *EntityManager) collapseIfManual(loc EntityLocation) bool {
	return loc.archetype.mask.Single() && loc.archetype.mask.FullyManual()
}

func withoutComponent(components []Component, id uint32) []Component {
	out := make([]Component, 0, len(components))
	for _, c := range components {
		if c.ID() != id {
			out = append(out, c)
		}
	}
	return out
}

// AddComponent attaches T to e with initial value v. A no-op error
// (ComponentAlreadyPresentError) is returned if e already carries T.
func AddComponent[T any](em *EntityManager, e Entity, v T) error {
	loc, ok := em.locate(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	if em.locked {
		return LockedStorageError{}
	}
	ct := componentTypeFor[T](Ordinary)
	if loc.archetype.HasComponent(ct.ID()) {
		return ComponentAlreadyPresentError{Entity: e, Component: typeName[T]()}
	}

	destComponents := append(append([]Component(nil), loc.archetype.components...), ct)
	dest := em.archetypeFor(destComponents, loc.archetype.sharedIDs)

	newLoc, moved, movedRow, movedOK := moveEntity(e, loc, dest, append([]uint32(nil), loc.combination.shared...))
	if movedOK {
		em.patchLocation(moved, EntityLocation{archetype: loc.archetype, combination: loc.combination, chunk: loc.chunk, row: movedRow})
	}
	em.patchLocation(e, newLoc)

	col := column[T](newLoc.chunk, ct.ID())
	col[newLoc.row] = v
	return nil
}

// RemoveComponent detaches T from e. If e's archetype is fully manual and
// single-component, removal destroys e instead (spec.md §4.4).
func RemoveComponent[T any](em *EntityManager, e Entity) error {
	loc, ok := em.locate(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	if em.locked {
		return LockedStorageError{}
	}
	ct := componentTypeFor[T](Ordinary)
	if !loc.archetype.HasComponent(ct.ID()) {
		return MissingComponentError{Entity: e, Component: typeName[T]()}
	}

	if em.collapseIfManual(loc) {
		return em.DestroyEntity(e)
	}

	destComponents := withoutComponent(loc.archetype.components, ct.ID())
	dest := em.archetypeFor(destComponents, loc.archetype.sharedIDs)

	newLoc, moved, movedRow, movedOK := moveEntity(e, loc, dest, append([]uint32(nil), loc.combination.shared...))
	if movedOK {
		em.patchLocation(moved, EntityLocation{archetype: loc.archetype, combination: loc.combination, chunk: loc.chunk, row: movedRow})
	}
	em.patchLocation(e, newLoc)
	return nil
}

// SetComponent overwrites T's value for e in place. It is not a
// structural change and is legal even while locked, provided the caller
// (a ChunkTask operating within its assigned chunk) owns exclusive write
// access to that column (spec.md §4.5, §5).
func SetComponent[T any](em *EntityManager, e Entity, v T) error {
	loc, ok := em.locate(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	ct := componentTypeFor[T](Ordinary)
	col := column[T](loc.chunk, ct.ID())
	if col == nil {
		return MissingComponentError{Entity: e, Component: typeName[T]()}
	}
	col[loc.row] = v
	return nil
}

// AddSharedComponent attaches shared component T with value v to e
// (spec.md §4.4 move_adding_shared_component).
func AddSharedComponent[T any](em *EntityManager, e Entity, v T) error {
	loc, ok := em.locate(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	if em.locked {
		return LockedStorageError{}
	}
	ct := componentTypeFor[T](Shared)
	if loc.archetype.HasShared(ct.ID()) {
		return ComponentAlreadyPresentError{Entity: e, Component: typeName[T]()}
	}

	destSharedIDs := insertSortedUnique(append([]uint32(nil), loc.archetype.sharedIDs...), ct.ID())
	dest := em.archetypeFor(loc.archetype.components, destSharedIDs)

	idx := em.shared.intern(v)
	destValues := mergeSharedValues(loc.archetype.sharedIDs, loc.combination.shared, destSharedIDs, ct.ID(), idx)

	newLoc, moved, movedRow, movedOK := moveEntity(e, loc, dest, destValues)
	if movedOK {
		em.patchLocation(moved, EntityLocation{archetype: loc.archetype, combination: loc.combination, chunk: loc.chunk, row: movedRow})
	}
	em.patchLocation(e, newLoc)
	return nil
}

// RemoveSharedComponent detaches shared component T from e, releasing
// its interned value. If e's archetype is fully manual and
// single-component, removal destroys e instead (spec.md §4.4).
func RemoveSharedComponent[T any](em *EntityManager, e Entity) error {
	loc, ok := em.locate(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	if em.locked {
		return LockedStorageError{}
	}
	ct := componentTypeFor[T](Shared)
	if !loc.archetype.HasShared(ct.ID()) {
		return MissingComponentError{Entity: e, Component: typeName[T]()}
	}

	removedIdx, _ := sharedValueFor(loc.archetype.sharedIDs, loc.combination.shared, ct.ID())

	if em.collapseIfManual(loc) {
		// DestroyEntity releases every shared index of e, removedIdx included.
		return em.DestroyEntity(e)
	}

	destSharedIDs := removeSorted(loc.archetype.sharedIDs, ct.ID())
	dest := em.archetypeFor(loc.archetype.components, destSharedIDs)
	destValues := dropSharedValue(loc.archetype.sharedIDs, loc.combination.shared, ct.ID())

	newLoc, moved, movedRow, movedOK := moveEntity(e, loc, dest, destValues)
	if movedOK {
		em.patchLocation(moved, EntityLocation{archetype: loc.archetype, combination: loc.combination, chunk: loc.chunk, row: movedRow})
	}
	em.patchLocation(e, newLoc)
	em.shared.release(removedIdx)
	return nil
}

// SetSharedComponent replaces T's interned value for e, moving e to the
// (possibly new) Combination within the same archetype that matches the
// resulting shared tuple (spec.md §4.4 set_shared_component). Setting an
// identical value is a short-circuited no-op (spec.md §9 Open Question).
func SetSharedComponent[T any](em *EntityManager, e Entity, v T) error {
	loc, ok := em.locate(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	if em.locked {
		return LockedStorageError{}
	}
	ct := componentTypeFor[T](Shared)
	if !loc.archetype.HasShared(ct.ID()) {
		return MissingComponentError{Entity: e, Component: typeName[T]()}
	}

	oldIdx, _ := sharedValueFor(loc.archetype.sharedIDs, loc.combination.shared, ct.ID())
	if em.shared.get(oldIdx) == any(v) {
		return nil
	}

	newIdx := em.shared.intern(v)
	destValues := replaceSharedValue(loc.archetype.sharedIDs, loc.combination.shared, ct.ID(), newIdx)

	newLoc, moved, movedRow, movedOK := moveEntity(e, loc, loc.archetype, destValues)
	if movedOK {
		em.patchLocation(moved, EntityLocation{archetype: loc.archetype, combination: loc.combination, chunk: loc.chunk, row: movedRow})
	}
	em.patchLocation(e, newLoc)
	em.shared.release(oldIdx)
	return nil
}

// --- shared-value-tuple helpers, all operating on the ascending-by-id
// convention invariant 7 requires. ---

func sharedValueFor(ids []uint32, values []uint32, sid uint32) (uint32, bool) {
	for i, id := range ids {
		if id == sid {
			return values[i], true
		}
	}
	return 0, false
}

func removeSorted(ids []uint32, id uint32) []uint32 {
	out := make([]uint32, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func dropSharedValue(ids []uint32, values []uint32, sid uint32) []uint32 {
	out := make([]uint32, 0, len(values))
	for i, id := range ids {
		if id != sid {
			out = append(out, values[i])
		}
	}
	return out
}

// replaceSharedValue returns a copy of values with the entry at sid's
// position in ids replaced by newIdx, used by SetSharedComponent where
// the id set itself does not change.
func replaceSharedValue(ids []uint32, values []uint32, sid uint32, newIdx uint32) []uint32 {
	out := append([]uint32(nil), values...)
	for i, id := range ids {
		if id == sid {
			out[i] = newIdx
			break
		}
	}
	return out
}

// mergeSharedValues builds destIDs-ordered values by taking srcValues
// (ordered by srcIDs, with newSID already excluded) and inserting newIdx
// at newSID's ascending position.
func mergeSharedValues(srcIDs []uint32, srcValues []uint32, destIDs []uint32, newSID uint32, newIdx uint32) []uint32 {
	out := make([]uint32, len(destIDs))
	for i, id := range destIDs {
		if id == newSID {
			out[i] = newIdx
			continue
		}
		v, _ := sharedValueFor(srcIDs, srcValues, id)
		out[i] = v
	}
	return out
}

// AddSingleton installs the singleton value of T (spec.md §4.5).
func AddSingleton[T any](em *EntityManager, v T) {
	setSingleton(em.singletons, v)
}

// RemoveSingleton clears T's singleton value, if any.
func RemoveSingleton[T any](em *EntityManager) {
	removeSingleton[T](em.singletons)
}

// SetSingleton overwrites T's singleton value; reports whether one was
// already present.
func SetSingleton[T any](em *EntityManager, v T) bool {
	_, had := getSingleton[T](em.singletons)
	setSingleton(em.singletons, v)
	return had
}

// GetSingleton returns T's singleton value, and whether one is present.
func GetSingleton[T any](em *EntityManager) (T, bool) {
	return getSingleton[T](em.singletons)
}

// FilterEntities materializes one ChunkAccessor per chunk whose archetype
// and combination both match f (spec.md §4.6).
func (em *EntityManager) FilterEntities(f EntityFilter) []ChunkAccessor {
	var out []ChunkAccessor
	for _, a := range em.archetypes {
		if !f.matchesArchetype(a) {
			continue
		}
		for _, cb := range a.combos {
			if !f.matchesCombination(a.sharedIDs, cb, em.shared) {
				continue
			}
			for _, c := range cb.chunks {
				out = append(out, ChunkAccessor{archetype: a, combination: cb, chunk: c})
			}
		}
	}
	return out
}

// ChunkCount returns the total number of chunks matching f.
func (em *EntityManager) ChunkCount(f EntityFilter) int {
	return len(em.FilterEntities(f))
}

// EntityCount returns the total number of entities matching f.
func (em *EntityManager) EntityCount(f EntityFilter) int {
	n := 0
	for _, acc := range em.FilterEntities(f) {
		n += acc.EntityCount()
	}
	return n
}
