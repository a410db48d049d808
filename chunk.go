package depot

import (
	"sort"
	"unsafe"
)

var entitySize = unsafe.Sizeof(Entity{})

// ChunkLayout is the derived column plan shared by every Chunk belonging
// to one Combination: a fixed entity capacity and a byte offset for each
// component's column, computed once from the component set and the
// configured page size (spec.md §3, "ChunkLayout derivation formula").
//
// Grounded on Archetype.cpp's ChunkLayout constructor: columns are packed
// in descending alignment order so no column starts on an address less
// aligned than its type requires, and capacity is floor(chunkBytes /
// (sum(component sizes) + sizeof(Entity))).
type ChunkLayout struct {
	capacity int
	stride   uintptr
	offsets  map[uint32]uintptr
	sizes    map[uint32]uintptr
	order    []uint32
}

func newChunkLayout(components []Component, chunkBytes int) *ChunkLayout {
	ordered := make([]Component, len(components))
	copy(ordered, components)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Align() > ordered[j].Align()
	})

	perEntity := entitySize
	for _, c := range ordered {
		perEntity += c.Size()
	}
	capacity := 1
	if perEntity > 0 {
		if n := int(uintptr(chunkBytes) / perEntity); n > 0 {
			capacity = n
		}
	}

	offsets := make(map[uint32]uintptr, len(ordered))
	sizes := make(map[uint32]uintptr, len(ordered))
	order := make([]uint32, 0, len(ordered))
	var offset uintptr
	for _, c := range ordered {
		offsets[c.ID()] = offset
		sizes[c.ID()] = c.Size()
		order = append(order, c.ID())
		offset += c.Size() * uintptr(capacity)
	}

	return &ChunkLayout{
		capacity: capacity,
		stride:   offset,
		offsets:  offsets,
		sizes:    sizes,
		order:    order,
	}
}

// Capacity returns the fixed number of entity rows a Chunk built from
// this layout can hold.
func (l *ChunkLayout) Capacity() int { return l.capacity }

// Chunk is one fixed-capacity page of column-major (SoA) component
// storage plus its parallel entity-id column (spec.md §3). Once handed
// out by a chunkPool, a Chunk's buf and entities slices never relocate;
// only their contents change as rows are appended, overwritten, or
// swap-removed.
type Chunk struct {
	layout   *ChunkLayout
	buf      []byte
	entities []Entity
	count    int
}

func newChunk(layout *ChunkLayout) *Chunk {
	return &Chunk{
		layout:   layout,
		buf:      make([]byte, layout.stride),
		entities: make([]Entity, layout.capacity),
	}
}

func (c *Chunk) reset() {
	c.count = 0
}

// Len returns the number of occupied rows.
func (c *Chunk) Len() int { return c.count }

// Capacity returns the chunk's fixed row capacity.
func (c *Chunk) Capacity() int { return c.layout.capacity }

// Full reports whether the chunk has no remaining free rows.
func (c *Chunk) Full() bool { return c.count >= c.layout.capacity }

// EntityAt returns the entity occupying row.
func (c *Chunk) EntityAt(row int) Entity { return c.entities[row] }

// HasColumn reports whether the chunk's layout carries componentID.
func (c *Chunk) HasColumn(componentID uint32) bool {
	_, ok := c.layout.offsets[componentID]
	return ok
}

// appendEntity places e in the first free row and returns that row.
// Callers must check Full() first; a full chunk never grows.
func (c *Chunk) appendEntity(e Entity) int {
	row := c.count
	c.entities[row] = e
	c.count++
	return row
}

// removeRowSwapBack removes row by swapping the last occupied row into
// its place (Archetype.cpp's removeEntity / Combination invariant: row
// order is not preserved). It reports the entity that was moved into row
// so the caller can update that entity's EntityLocation, or moved=false
// if row was already the last occupied row.
func (c *Chunk) removeRowSwapBack(row int) (movedEntity Entity, moved bool) {
	last := c.count - 1
	if row != last {
		for _, id := range c.layout.order {
			sz := int(c.layout.sizes[id])
			offset := int(c.layout.offsets[id])
			base := unsafe.Pointer(&c.buf[offset])
			dst := unsafe.Slice((*byte)(unsafe.Add(base, sz*row)), sz)
			src := unsafe.Slice((*byte)(unsafe.Add(base, sz*last)), sz)
			copy(dst, src)
		}
		c.entities[row] = c.entities[last]
		movedEntity = c.entities[row]
		moved = true
	}
	c.count--
	return movedEntity, moved
}

// copyRow copies componentID's value for row src in c into row dst of
// dstChunk, used when an entity moves between chunks of different
// archetypes (Archetype.cpp's moveEntityAddingComponent /
// moveEntityRemovingComponent).
func copyRow(dstChunk *Chunk, dst int, srcChunk *Chunk, src int, componentID uint32, size uintptr) {
	dstOff, ok := dstChunk.layout.offsets[componentID]
	if !ok {
		return
	}
	srcOff, ok := srcChunk.layout.offsets[componentID]
	if !ok {
		return
	}
	sz := int(size)
	dstBase := unsafe.Pointer(&dstChunk.buf[dstOff])
	srcBase := unsafe.Pointer(&srcChunk.buf[srcOff])
	dstSlice := unsafe.Slice((*byte)(unsafe.Add(dstBase, sz*dst)), sz)
	srcSlice := unsafe.Slice((*byte)(unsafe.Add(srcBase, sz*src)), sz)
	copy(dstSlice, srcSlice)
}

// column returns a typed view over componentID's column, or nil if the
// chunk's layout does not carry that component.
func column[T any](c *Chunk, componentID uint32) []T {
	offset, ok := c.layout.offsets[componentID]
	if !ok {
		return nil
	}
	base := unsafe.Pointer(&c.buf[offset])
	return unsafe.Slice((*T)(base), c.layout.capacity)
}

// chunkPool is a free-list of retired Chunks for one ChunkLayout. A
// Chunk that empties via removeRowSwapBack is returned to its
// Combination's pool instead of being discarded, so the backing buf and
// entities slices are reused on the next AddEntity into that
// Combination — a plain LIFO free-list rather than sync.Pool, since
// sync.Pool may silently drop entries under GC pressure and chunk
// occupancy bookkeeping (count) must never change outside Combination's
// control.
type chunkPool struct {
	layout *ChunkLayout
	free   []*Chunk
}

func newChunkPool(layout *ChunkLayout) *chunkPool {
	return &chunkPool{layout: layout}
}

func (p *chunkPool) acquire() *Chunk {
	if n := len(p.free); n > 0 {
		c := p.free[n-1]
		p.free = p.free[:n-1]
		c.reset()
		return c
	}
	return newChunk(p.layout)
}

func (p *chunkPool) release(c *Chunk) {
	c.reset()
	p.free = append(p.free, c)
}
