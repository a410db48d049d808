package depot

import "testing"

// TestArchetypeMaskUniqueness is spec.md §8 P2: no two distinct component
// signatures ever resolve to the same *Archetype, and re-requesting an
// existing signature (in any declaration order) returns the same one.
func TestArchetypeMaskUniqueness(t *testing.T) {
	em := Factory.NewEntityManager()

	b1 := em.NewArchetypeBuilder()
	MarkComponent[Position](b1, Ordinary)
	MarkComponent[Velocity](b1, Ordinary)
	a1 := b1.Build()

	b2 := em.NewArchetypeBuilder()
	MarkComponent[Velocity](b2, Ordinary)
	MarkComponent[Position](b2, Ordinary)
	a2 := b2.Build()

	if a1 != a2 {
		t.Errorf("same signature in different declaration order produced distinct archetypes")
	}

	b3 := em.NewArchetypeBuilder()
	MarkComponent[Position](b3, Ordinary)
	a3 := b3.Build()

	if a1 == a3 {
		t.Errorf("different signatures resolved to the same archetype")
	}
	if a1.Mask() == a3.Mask() {
		t.Errorf("different signatures produced equal ArchetypeMask values")
	}
}

// TestCombinationUniqueness is spec.md §8 P3: within one archetype, no two
// distinct shared-value tuples ever share a Combination, and repeating a
// tuple returns the existing one.
func TestCombinationUniqueness(t *testing.T) {
	em := Factory.NewEntityManager()
	b := em.NewArchetypeBuilder()
	MarkShared[Team](b, Shared)
	archetype := b.Build()

	a, _ := em.CreateEntity(archetype, Team{ID: 1})
	c, _ := em.CreateEntity(archetype, Team{ID: 2})
	d, _ := em.CreateEntity(archetype, Team{ID: 1})

	aLoc := mustLocate(t, em, a)
	cLoc := mustLocate(t, em, c)
	dLoc := mustLocate(t, em, d)

	if aLoc.combination != dLoc.combination {
		t.Errorf("identical shared tuples landed in different combinations")
	}
	if aLoc.combination == cLoc.combination {
		t.Errorf("distinct shared tuples shared a combination")
	}
	if got := len(archetype.Combinations()); got != 2 {
		t.Errorf("len(Combinations()) = %d, want 2", got)
	}
}

// TestSharedRefcountTracksLiveness is spec.md §8 P5: a live (sid, index)
// pair has refcount >= 1; once every referencing combination is gone the
// slot is freed and a subsequent intern of an equal value may reuse it.
func TestSharedRefcountTracksLiveness(t *testing.T) {
	em := Factory.NewEntityManager()
	b := em.NewArchetypeBuilder()
	MarkShared[Team](b, Shared)
	archetype := b.Build()

	e, _ := em.CreateEntity(archetype, Team{ID: 9})
	loc := mustLocate(t, em, e)
	idx := loc.combination.shared[0]

	if em.shared.refs[idx] < 1 {
		t.Fatalf("refs[%d] = %d, want >= 1 while entity is live", idx, em.shared.refs[idx])
	}

	if err := em.DestroyEntity(e); err != nil {
		t.Fatalf("DestroyEntity: %v", err)
	}

	if em.shared.refs[idx] != 0 {
		t.Errorf("refs[%d] = %d after last reference destroyed, want 0", idx, em.shared.refs[idx])
	}
	if _, stillInterned := em.shared.byValue[Team{ID: 9}]; stillInterned {
		t.Errorf("Team{9} still present in byValue index after refcount hit zero")
	}
}

type MonsterHealth struct{ Value int }
type PersistentDamage struct{ Value int }
type ManualDamageCounter struct{ Count int }

// TestMonsterDamageScenario is spec.md §8 scenario 1: four entities with
// (Health, Damage) pairs (3,2), (8,3), (4,1), (6,2) take H -= D each tick
// unless H <= D, in which case they are destroyed that tick instead; a
// ManualDamageCounter tracks how many ticks each entity was processed
// (including its destruction tick). After enough ticks every entity is
// destroyed with damage_taken_count {0:2, 1:3, 2:4, 3:3}.
func TestMonsterDamageScenario(t *testing.T) {
	em := Factory.NewEntityManager()
	b := em.NewArchetypeBuilder()
	MarkComponent[MonsterHealth](b, Ordinary)
	MarkComponent[PersistentDamage](b, Ordinary)
	MarkComponent[ManualDamageCounter](b, Manual)
	archetype := b.Build()

	type seed struct{ h, d int }
	seeds := []seed{{3, 2}, {8, 3}, {4, 1}, {6, 2}}

	entities := make([]Entity, len(seeds))
	for i, s := range seeds {
		e, err := em.CreateEntity(archetype)
		if err != nil {
			t.Fatalf("CreateEntity[%d]: %v", i, err)
		}
		SetComponent[MonsterHealth](em, e, MonsterHealth{Value: s.h})
		SetComponent[PersistentDamage](em, e, PersistentDamage{Value: s.d})
		SetComponent[ManualDamageCounter](em, e, ManualDamageCounter{Count: 0})
		entities[i] = e
	}

	health := FactoryNewComponent[MonsterHealth](Ordinary)
	damage := FactoryNewComponent[PersistentDamage](Ordinary)
	counter := FactoryNewComponent[ManualDamageCounter](Manual)

	alive := make([]bool, len(entities))
	for i := range alive {
		alive[i] = true
	}
	finalCounts := make([]int, len(entities))

	for tick, anyAlive := 0, true; anyAlive && tick < 100; tick++ {
		anyAlive = false
		for i, e := range entities {
			if !alive[i] {
				continue
			}
			anyAlive = true

			loc := mustLocate(t, em, e)
			h := health.Get(loc.chunk, loc.row)
			d := damage.Get(loc.chunk, loc.row)
			c := counter.Get(loc.chunk, loc.row)

			c.Count++
			finalCounts[i] = c.Count

			if h.Value <= d.Value {
				alive[i] = false
				if err := em.DestroyEntity(e); err != nil {
					t.Fatalf("DestroyEntity(%d): %v", i, err)
				}
				continue
			}
			h.Value -= d.Value
		}
	}

	for i := range alive {
		if alive[i] {
			t.Errorf("entity %d still alive after 100 ticks", i)
		}
	}

	want := []int{2, 3, 4, 3}
	for i, w := range want {
		if finalCounts[i] != w {
			t.Errorf("entity %d damage_taken_count = %d, want %d", i, finalCounts[i], w)
		}
	}
}
