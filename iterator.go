package depot

// Cursor is a convenience single-threaded iterator over the chunks an
// EntityFilter matches, adapted from the teacher's Cursor
// (cursor.go/query.go's boolean QueryNode walk) to the ChunkAccessor
// model: rather than walking a boolean query tree over table.Table
// storages, it walks the already-resolved []ChunkAccessor from
// EntityManager.FilterEntities row by row. Most callers operating inside
// a System instead use ScheduleChunkTask to process chunks in parallel;
// Cursor exists for ad-hoc single-threaded iteration (tools, tests,
// the main thread outside a tick).
type Cursor struct {
	accessors []ChunkAccessor
	accIndex  int
	row       int
}

// NewCursor builds a Cursor over every chunk f currently matches.
// Archetypes/Combinations created after NewCursor is called are not
// visible to it, matching the teacher's "matched storages snapshotted
// at cursor creation" behavior.
func (em *EntityManager) NewCursor(f EntityFilter) *Cursor {
	return &Cursor{accessors: em.FilterEntities(f), row: -1}
}

// Next advances the cursor to the next entity, returning false once
// every matched chunk has been exhausted.
func (c *Cursor) Next() bool {
	for c.accIndex < len(c.accessors) {
		acc := c.accessors[c.accIndex]
		if c.row+1 < acc.EntityCount() {
			c.row++
			return true
		}
		c.accIndex++
		c.row = -1
	}
	return false
}

// Chunk returns the Chunk the cursor is currently positioned in.
func (c *Cursor) Chunk() *Chunk { return c.accessors[c.accIndex].Chunk() }

// Row returns the current row within Chunk().
func (c *Cursor) Row() int { return c.row }

// Entity returns the entity at the cursor's current position.
func (c *Cursor) Entity() Entity { return c.Chunk().EntityAt(c.row) }

// GetFromCursor retrieves c's T value at the cursor's current position.
func (c AccessibleComponent[T]) GetFromCursor(cursor *Cursor) *T {
	return c.Get(cursor.Chunk(), cursor.Row())
}
