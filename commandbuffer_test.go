package depot

import "testing"

type Marker struct{ Value int }

// TestDrainOrderIsMainThenWorkersFIFO is spec.md §8 scenario 4: worker 1
// records create+AddComponent[Marker] before worker 2 does the same;
// after DrainAll exactly two entities exist, both in the {Marker}
// archetype, and the entity id assigned to worker 1's create precedes
// the one assigned to worker 2's (spec.md §4.7's fixed drain order: main
// first, then workers in ascending id order, FIFO within each buffer).
func TestDrainOrderIsMainThenWorkersFIFO(t *testing.T) {
	em := Factory.NewEntityManager()
	main := em.NewCommandBuffer()
	worker1 := em.NewCommandBuffer()
	worker2 := em.NewCommandBuffer()

	e1 := worker1.CreateEntity(nil)
	EnqueueAddComponent[Marker](worker1, e1, Marker{Value: 1})

	e2 := worker2.CreateEntity(nil)
	EnqueueAddComponent[Marker](worker2, e2, Marker{Value: 2})

	if errs := DrainAll(em, main, []*CommandBuffer{worker1, worker2}); len(errs) != 0 {
		t.Fatalf("DrainAll errors: %v", errs)
	}

	marker := FactoryNewComponent[Marker](Ordinary)

	m1, err := marker.GetFromEntity(em, e1)
	if err != nil {
		t.Fatalf("GetFromEntity(e1): %v", err)
	}
	if m1.Value != 1 {
		t.Errorf("e1.Marker = %+v, want {1}", *m1)
	}

	m2, err := marker.GetFromEntity(em, e2)
	if err != nil {
		t.Fatalf("GetFromEntity(e2): %v", err)
	}
	if m2.Value != 2 {
		t.Errorf("e2.Marker = %+v, want {2}", *m2)
	}

	if e1.ID >= e2.ID {
		t.Errorf("e1.ID=%d should precede e2.ID=%d (worker 1 reserved its id first)", e1.ID, e2.ID)
	}

	b := em.NewFilterBuilder()
	Require[Marker](b)
	filter := b.Build()
	if got := em.EntityCount(filter); got != 2 {
		t.Errorf("EntityCount({Marker}) = %d, want 2", got)
	}
}

// TestDrainIsDeterministicAcrossReplays is spec.md §8 P7: replaying the
// same recorded set of commands on identical pre-drain state twice
// yields identical post-drain state.
func TestDrainIsDeterministicAcrossReplays(t *testing.T) {
	run := func() (int, []uint32) {
		em := Factory.NewEntityManager()
		main := em.NewCommandBuffer()
		w1 := em.NewCommandBuffer()
		w2 := em.NewCommandBuffer()

		for i := 0; i < 3; i++ {
			e := w1.CreateEntity(nil)
			EnqueueAddComponent[Marker](w1, e, Marker{Value: i})
		}
		for i := 3; i < 6; i++ {
			e := w2.CreateEntity(nil)
			EnqueueAddComponent[Marker](w2, e, Marker{Value: i})
		}

		DrainAll(em, main, []*CommandBuffer{w1, w2})

		b := em.NewFilterBuilder()
		Require[Marker](b)
		filter := b.Build()

		ids := make([]uint32, 0, 6)
		for _, acc := range em.FilterEntities(filter) {
			for row := 0; row < acc.EntityCount(); row++ {
				ids = append(ids, acc.EntityAt(row).ID)
			}
		}
		return em.EntityCount(filter), ids
	}

	count1, ids1 := run()
	count2, ids2 := run()

	if count1 != count2 {
		t.Fatalf("entity counts differ across replays: %d vs %d", count1, count2)
	}
	if len(ids1) != len(ids2) {
		t.Fatalf("entity id sets differ in length across replays: %d vs %d", len(ids1), len(ids2))
	}
	for i := range ids1 {
		if ids1[i] != ids2[i] {
			t.Errorf("replay id[%d] = %d, want %d (matches first replay)", i, ids2[i], ids1[i])
		}
	}
}

// TestDrainCollectsPerWorkerErrorsAndStillDrainsSiblings exercises
// spec.md §7: a failing record (e.g. AddComponent on an already-present
// component) is reported as a DrainError tagged with its worker id and
// index, without preventing the rest of that buffer or sibling buffers
// from draining.
func TestDrainCollectsPerWorkerErrorsAndStillDrainsSiblings(t *testing.T) {
	em := Factory.NewEntityManager()
	main := em.NewCommandBuffer()
	w1 := em.NewCommandBuffer()
	w2 := em.NewCommandBuffer()

	bad := w1.CreateEntity(nil)
	EnqueueAddComponent[Marker](w1, bad, Marker{Value: 1})
	EnqueueAddComponent[Marker](w1, bad, Marker{Value: 2}) // duplicate add, fails

	good := w2.CreateEntity(nil)
	EnqueueAddComponent[Marker](w2, good, Marker{Value: 3})

	errs := DrainAll(em, main, []*CommandBuffer{w1, w2})
	if len(errs) != 1 {
		t.Fatalf("len(errs) = %d, want 1", len(errs))
	}
	// w1's ops: create (0), first add (1), duplicate add (2).
	if errs[0].WorkerID != 0 || errs[0].Index != 2 {
		t.Errorf("DrainError = %+v, want WorkerID=0 Index=2", errs[0])
	}

	marker := FactoryNewComponent[Marker](Ordinary)
	if _, err := marker.GetFromEntity(em, good); err != nil {
		t.Errorf("worker 2's entity was not committed despite worker 1's failure: %v", err)
	}
}
