package depot

// bufferedOp is one recorded deferred mutation, closing over its
// arguments so a single slice can hold create/destroy/add/remove/set
// records for every Classification without reflection — a function
// value stands in for the teacher's EntityOperation interface
// (operation_queue.go's "type EntityOperation interface{ Apply(Storage)
// error }"), since Go generics make one closure per call site simpler
// than one struct type per operation kind.
type bufferedOp func(em *EntityManager) error

// CommandBuffer is a per-worker (or main-thread) log of deferred
// structural mutations (spec.md §4.7). Recording appends to ops; the one
// recorder that touches the EntityManager is CreateEntity, which reserves
// the new entity's id through it. Structural placement happens only at
// replay, at the sync-drain point.
type CommandBuffer struct {
	em  *EntityManager
	ops []bufferedOp
}

// NewCommandBuffer creates a CommandBuffer bound to em. WorkerID is
// supplied separately at drain time (DrainAll) rather than stored here,
// since the same buffer type serves both the main buffer and every
// worker buffer.
func (em *EntityManager) NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{em: em}
}

// CreateEntity reserves an entity id immediately — so it is resolvable
// by any command recorded later in the same tick, per spec.md §4.7 ("an
// entity id created inside a buffer must be resolvable immediately after
// drain... achieved by reserving ids at record time") — and defers
// actual archetype placement to replay.
func (cb *CommandBuffer) CreateEntity(archetype *Archetype, sharedValues ...any) Entity {
	if archetype == nil {
		archetype = cb.em.emptyArche
	}
	e := cb.em.allocate()
	cb.ops = append(cb.ops, func(em *EntityManager) error {
		if len(sharedValues) != len(archetype.sharedIDs) {
			return TypeContractError{
				Type:   "Entity",
				Reason: "shared value count does not match archetype's shared component count",
			}
		}
		sharedIdx := make([]uint32, len(sharedValues))
		for i, v := range sharedValues {
			sharedIdx[i] = em.shared.intern(v)
		}
		combo, chunk, row := archetype.AddEntity(e, sharedIdx)
		em.patchLocation(e, EntityLocation{archetype: archetype, combination: combo, chunk: chunk, row: row})
		return nil
	})
	return e
}

// DestroyEntity defers destruction of e.
func (cb *CommandBuffer) DestroyEntity(e Entity) {
	cb.ops = append(cb.ops, func(em *EntityManager) error {
		return em.DestroyEntity(e)
	})
}

// EnqueueAddComponent defers AddComponent[T](em, e, v).
func EnqueueAddComponent[T any](cb *CommandBuffer, e Entity, v T) {
	cb.ops = append(cb.ops, func(em *EntityManager) error {
		return AddComponent[T](em, e, v)
	})
}

// EnqueueRemoveComponent defers RemoveComponent[T](em, e).
func EnqueueRemoveComponent[T any](cb *CommandBuffer, e Entity) {
	cb.ops = append(cb.ops, func(em *EntityManager) error {
		return RemoveComponent[T](em, e)
	})
}

// EnqueueSetComponent defers SetComponent[T](em, e, v). Note SetComponent
// itself is legal outside the buffer too, for in-place writes to a
// column the calling task already owns exclusively; EnqueueSetComponent
// exists for callers that want every mutation funneled through one
// deterministic replay order regardless of kind.
func EnqueueSetComponent[T any](cb *CommandBuffer, e Entity, v T) {
	cb.ops = append(cb.ops, func(em *EntityManager) error {
		return SetComponent[T](em, e, v)
	})
}

// EnqueueAddSharedComponent defers AddSharedComponent[T](em, e, v).
func EnqueueAddSharedComponent[T any](cb *CommandBuffer, e Entity, v T) {
	cb.ops = append(cb.ops, func(em *EntityManager) error {
		return AddSharedComponent[T](em, e, v)
	})
}

// EnqueueRemoveSharedComponent defers RemoveSharedComponent[T](em, e).
func EnqueueRemoveSharedComponent[T any](cb *CommandBuffer, e Entity) {
	cb.ops = append(cb.ops, func(em *EntityManager) error {
		return RemoveSharedComponent[T](em, e)
	})
}

// EnqueueSetSharedComponent defers SetSharedComponent[T](em, e, v).
func EnqueueSetSharedComponent[T any](cb *CommandBuffer, e Entity, v T) {
	cb.ops = append(cb.ops, func(em *EntityManager) error {
		return SetSharedComponent[T](em, e, v)
	})
}

// EnqueueAddSingleton defers AddSingleton[T](em, v).
func EnqueueAddSingleton[T any](cb *CommandBuffer, v T) {
	cb.ops = append(cb.ops, func(em *EntityManager) error {
		AddSingleton[T](em, v)
		return nil
	})
}

// EnqueueRemoveSingleton defers RemoveSingleton[T](em).
func EnqueueRemoveSingleton[T any](cb *CommandBuffer) {
	cb.ops = append(cb.ops, func(em *EntityManager) error {
		RemoveSingleton[T](em)
		return nil
	})
}

// DrainAll replays main's records first, then each worker buffer's
// records in ascending worker-id order, each buffer strictly FIFO
// (spec.md §4.7's fixed drain order). Individual failures are collected
// rather than aborting the drain, so one bad record in worker 2's buffer
// never prevents worker 3's buffer from replaying.
//
// DrainAll assumes em is already Unlock()ed: draining only ever runs at
// the main-thread sync point between system phases (spec.md §5), the one
// place structural mutation is legal outside of this replay itself.
func DrainAll(em *EntityManager, main *CommandBuffer, workers []*CommandBuffer) []DrainError {
	var errs []DrainError
	drain := func(workerID int, cb *CommandBuffer) {
		if cb == nil {
			return
		}
		for i, op := range cb.ops {
			if err := op(em); err != nil {
				errs = append(errs, DrainError{WorkerID: workerID, Index: i, Err: err})
			}
		}
		cb.ops = cb.ops[:0]
	}

	drain(-1, main)
	for i, w := range workers {
		drain(i, w)
	}
	return errs
}
