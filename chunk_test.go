package depot

import "testing"

// TestChunkOverflowSplitsAndSwapReleases is spec.md §8 scenario 5: create
// capacity+1 entities in one combination, expect two chunks (first full,
// second holding one), then delete an entity from chunk 0 and expect the
// swap to pull chunk 1's last entity into chunk 0's freed row and release
// chunk 1 back to the pool.
func TestChunkOverflowSplitsAndSwapReleases(t *testing.T) {
	em := Factory.NewEntityManager(WithChunkBytes(tinyChunkBytes))
	b := em.NewArchetypeBuilder()
	MarkComponent[Position](b, Ordinary)
	archetype := b.Build()

	capacity := archetype.layout.Capacity()
	if capacity < 1 {
		t.Fatalf("capacity = %d, want >= 1", capacity)
	}

	entities := make([]Entity, capacity+1)
	for i := range entities {
		e, err := em.CreateEntity(archetype)
		if err != nil {
			t.Fatalf("CreateEntity[%d]: %v", i, err)
		}
		SetComponent[Position](em, e, Position{X: float64(i)})
		entities[i] = e
	}

	if got := archetype.ChunkCount(); got != 2 {
		t.Fatalf("ChunkCount = %d, want 2", got)
	}

	combo := archetype.combos[0]
	if combo.Chunks()[0].Len() != capacity {
		t.Errorf("chunk 0 len = %d, want %d (full)", combo.Chunks()[0].Len(), capacity)
	}
	if combo.Chunks()[1].Len() != 1 {
		t.Errorf("chunk 1 len = %d, want 1", combo.Chunks()[1].Len())
	}

	// Destroy the first entity (row 0 of chunk 0); this must swap the
	// last entity (the overflow one, alone in chunk 1) into chunk 0's
	// freed row and release chunk 1.
	if err := em.DestroyEntity(entities[0]); err != nil {
		t.Fatalf("DestroyEntity: %v", err)
	}

	if got := archetype.ChunkCount(); got != 1 {
		t.Errorf("ChunkCount after destroy = %d, want 1 (chunk 1 released)", got)
	}

	position := FactoryNewComponent[Position](Ordinary)
	overflow := entities[capacity]
	loc := mustLocate(t, em, overflow)
	if pos := position.Get(loc.chunk, loc.row); pos == nil || pos.X != float64(capacity) {
		t.Errorf("overflow entity did not land at row 0 of the surviving chunk after swap")
	}
}

// tinyChunkBytes is a chunk byte budget that fits only a handful of
// Position rows, so the overflow scenario does not require thousands of
// entities to exercise.
const tinyChunkBytes = 4 * (16 + 8) // 4 rows of {Position (16 bytes) + Entity (8 bytes)}
