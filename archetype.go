package depot

import "strconv"

// ArchetypeID is the dense identifier an EntityManager assigns to each
// distinct component signature on first use.
type ArchetypeID uint32

// Archetype groups every entity sharing one exact component signature
// (spec.md §3 invariant 1), and further partitions them into Combinations
// by shared-component value tuple (invariant 2). All combinations in one
// Archetype share a single ChunkLayout, since the signature — and so the
// column set and capacity — is identical across them.
//
// Grounded on Archetype.cpp, collapsed from five near-duplicate C++ move
// methods (moveEntityAddingComponent, moveEntityRemovingComponent,
// moveEntityAddingSharedComponent, moveEntityRemovingSharedComponent,
// setSharedComponent's combination swap) into one generic moveEntity: all
// five are "relocate this entity into a (possibly new) archetype under a
// given shared-value tuple, copying whatever columns the two signatures
// have in common" — Go's lack of the original's per-call-site column
// enumeration makes the unification natural rather than forced.
type Archetype struct {
	id          ArchetypeID
	mask        ArchetypeMask
	components  []Component // ordinary + manual, excludes shared
	sharedIDs   []uint32    // ascending shared-component ids this archetype carries
	layout      *ChunkLayout
	combos      []*Combination
	comboIndex  map[string]int
	entityCount int
}

func newArchetype(id ArchetypeID, components []Component, sharedIDs []uint32, chunkBytes int) *Archetype {
	var m ArchetypeMask
	for _, c := range components {
		m.MarkComponent(c.ID(), c.Classification().IsManual())
	}
	for _, sid := range sharedIDs {
		m.MarkShared(sid, classRegistry[*sharedComponentIDs.GetItem32(sid)].IsManual())
	}
	return &Archetype{
		id:         id,
		mask:       m,
		components: components,
		sharedIDs:  sharedIDs,
		layout:     newChunkLayout(components, chunkBytes),
		comboIndex: make(map[string]int),
	}
}

// ID returns the archetype's dense id.
func (a *Archetype) ID() ArchetypeID { return a.id }

// Mask returns the archetype's structural identity.
func (a *Archetype) Mask() ArchetypeMask { return a.mask }

// EntityCount returns the number of entities currently stored across all
// of this archetype's combinations.
func (a *Archetype) EntityCount() int { return a.entityCount }

// ChunkCount returns the number of live chunks across all combinations.
func (a *Archetype) ChunkCount() int {
	n := 0
	for _, cb := range a.combos {
		n += cb.ChunkCount()
	}
	return n
}

// Combinations returns the archetype's live combinations, for filtering.
func (a *Archetype) Combinations() []*Combination { return a.combos }

// HasComponent reports whether the archetype carries an ordinary/manual
// component id.
func (a *Archetype) HasComponent(id uint32) bool { return a.mask.ContainsComponent(id) }

// HasShared reports whether the archetype carries a shared-component id.
func (a *Archetype) HasShared(id uint32) bool { return a.mask.ContainsShared(id) }

func sharedKey(values []uint32) string {
	if len(values) == 0 {
		return ""
	}
	b := make([]byte, 0, len(values)*6)
	for i, v := range values {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendUint(b, uint64(v), 10)
	}
	return string(b)
}

// combinationFor finds or creates the Combination for an exact
// shared-value tuple (values indexed the same way as a.sharedIDs).
func (a *Archetype) combinationFor(values []uint32) *Combination {
	key := sharedKey(values)
	if idx, ok := a.comboIndex[key]; ok {
		return a.combos[idx]
	}
	cb := newCombination(a, values)
	a.comboIndex[key] = len(a.combos)
	a.combos = append(a.combos, cb)
	return cb
}

// destroyCombination drops cb from a.combos/a.comboIndex (spec.md §3
// Lifecycles: "combinations are created on demand and destroyed when
// empty"; Archetype.cpp calls destroyCombination(srcCombination)
// wherever srcCombination->empty() after a move/remove). cb must
// already hold zero entities and, by Combination.RemoveEntity's own
// invariant, zero chunks. Order among a.combos is not meaningful, so
// the freed slot is filled by swapping in the last entry.
func (a *Archetype) destroyCombination(cb *Combination) {
	key := sharedKey(cb.shared)
	idx, ok := a.comboIndex[key]
	if !ok {
		return
	}
	delete(a.comboIndex, key)

	last := len(a.combos) - 1
	if idx != last {
		moved := a.combos[last]
		a.combos[idx] = moved
		a.comboIndex[sharedKey(moved.shared)] = idx
	}
	a.combos = a.combos[:last]
}

// AddEntity places a brand-new entity into the combination matching
// sharedValues (Archetype.cpp's addEntity).
func (a *Archetype) AddEntity(e Entity, sharedValues []uint32) (*Combination, *Chunk, int) {
	cb := a.combinationFor(sharedValues)
	chunk, row := cb.AddEntity(e)
	a.entityCount++
	return cb, chunk, row
}

// RemoveEntity deletes loc's row from its combination (Archetype.cpp's
// removeEntity). It is the caller's responsibility to patch the location
// of any entity reported as moved.
func (a *Archetype) RemoveEntity(loc EntityLocation) (moved Entity, movedRow int, ok bool) {
	moved, movedRow, ok = loc.combination.RemoveEntity(loc.chunk, loc.row)
	a.entityCount--
	if loc.combination.EntityCount() == 0 {
		a.destroyCombination(loc.combination)
	}
	return moved, movedRow, ok
}

// moveEntity relocates e from its current location into dest under
// destShared, copying every column the two archetypes have in common,
// then removes e from its source combination. It generalizes
// Archetype.cpp's moveEntityAddingComponent / moveEntityRemovingComponent
// / moveEntityAddingSharedComponent / moveEntityRemovingSharedComponent,
// and also covers SetSharedComponent's same-archetype recombination when
// dest == src.archetype.
func moveEntity(e Entity, src EntityLocation, dest *Archetype, destShared []uint32) (newLoc EntityLocation, movedBack Entity, movedBackRow int, movedBackOK bool) {
	destCombo, destChunk, destRow := dest.AddEntity(e, destShared)

	for _, c := range dest.components {
		if src.chunk.HasColumn(c.ID()) {
			copyRow(destChunk, destRow, src.chunk, src.row, c.ID(), c.Size())
		}
	}

	movedBack, movedBackRow, movedBackOK = src.archetype.RemoveEntity(src)

	newLoc = EntityLocation{
		archetype:   dest,
		combination: destCombo,
		chunk:       destChunk,
		row:         destRow,
	}
	return newLoc, movedBack, movedBackRow, movedBackOK
}
