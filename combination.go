package depot

// Combination is the storage partition for every entity in one Archetype
// that carries the exact same tuple of shared-component values (spec.md
// §3 invariant 2). It owns a growable list of fixed-capacity Chunks, all
// sharing one ChunkLayout, backed by a free-list pool so retired Chunks
// are reused rather than discarded (spec.md §3: "chunks never relocate
// once allocated").
//
// Grounded on Archetype.cpp, which partitions each archetype's chunks by
// a SharedComponentIndices key and applies the same addEntity /
// removeEntity / setComponent algorithms per-partition; Go expresses that
// partition as its own type instead of a map entry inlined into
// Archetype.
type Combination struct {
	archetype *Archetype
	shared    []uint32 // dense shared-store index per shared component id, ascending by id
	pool      *chunkPool
	chunks    []*Chunk
	count     int
}

func newCombination(archetype *Archetype, shared []uint32) *Combination {
	pool := newChunkPool(archetype.layout)
	return &Combination{
		archetype: archetype,
		shared:    append([]uint32(nil), shared...),
		pool:      pool,
	}
}

// EntityCount returns the number of entities stored across this
// combination's chunks.
func (cb *Combination) EntityCount() int { return cb.count }

// ChunkCount returns the number of chunks currently in use.
func (cb *Combination) ChunkCount() int { return len(cb.chunks) }

// Chunks returns the combination's live chunks in insertion order, for
// filtering and chunk-task expansion (spec.md §6 "schedule_chunk_task").
func (cb *Combination) Chunks() []*Chunk { return cb.chunks }

// lastChunk returns the current append target, acquiring a fresh one
// from the pool if there is none or the last is full.
func (cb *Combination) lastChunk() *Chunk {
	if n := len(cb.chunks); n > 0 {
		if last := cb.chunks[n-1]; !last.Full() {
			return last
		}
	}
	c := cb.pool.acquire()
	cb.chunks = append(cb.chunks, c)
	return c
}

// AddEntity appends e to this combination's open chunk, expanding into a
// freshly pooled chunk if the current one is full (Archetype.cpp's
// addEntity).
func (cb *Combination) AddEntity(e Entity) (*Chunk, int) {
	c := cb.lastChunk()
	row := c.appendEntity(e)
	cb.count++
	return c, row
}

// RemoveEntity removes the entity at row in chunk via swap-with-last
// (Archetype.cpp's removeEntity). The "last" entity is the last occupied
// row of the combination as a whole — the last row of its last chunk —
// not merely the last row of chunk, since spec.md §3 invariant 3 allows
// at most one non-full chunk per combination and that chunk must be the
// last one: vacating a row in an earlier chunk is refilled from the tail
// of the last chunk instead of leaving a second non-full chunk behind.
// It reports the entity that ended up at (chunk, row), if different from
// the one removed, so EntityManager can patch its EntityLocation. If the
// last chunk empties out it is released back to the pool and dropped
// from the live chunk list.
func (cb *Combination) RemoveEntity(chunk *Chunk, row int) (moved Entity, movedRow int, ok bool) {
	lastIdx := len(cb.chunks) - 1
	last := cb.chunks[lastIdx]
	cb.count--
	movedRow = row

	if chunk == last {
		moved, ok = chunk.removeRowSwapBack(row)
		if chunk.Len() == 0 {
			cb.chunks = cb.chunks[:lastIdx]
			cb.pool.release(chunk)
		}
		return moved, movedRow, ok
	}

	srcRow := last.Len() - 1
	moved = last.EntityAt(srcRow)
	for _, id := range cb.archetype.layout.order {
		copyRow(chunk, row, last, srcRow, id, cb.archetype.layout.sizes[id])
	}
	chunk.entities[row] = moved
	last.removeRowSwapBack(srcRow) // srcRow is already last's final row: this only shrinks its count

	if last.Len() == 0 {
		cb.chunks = cb.chunks[:lastIdx]
		cb.pool.release(last)
	}
	return moved, movedRow, true
}
