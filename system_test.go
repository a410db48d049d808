package depot

import (
	"sync/atomic"
	"testing"
	"time"
)

// movementSystem advances every entity carrying {Position, Velocity} by
// one ScheduleChunkTask per matched chunk, exercising the System/World/
// Runtime surface spec.md §6 describes (OnEnter/OnUpdate/OnExit,
// schedule/predecessor, ChunkTask.Execute).
type movementSystem struct {
	filter EntityFilter
	ticks  int32
}

func (s *movementSystem) OnEnter(rt *Runtime) {}

func (s *movementSystem) OnUpdate(rt *Runtime) {
	position := FactoryNewComponent[Position](Ordinary)
	velocity := FactoryNewComponent[Velocity](Ordinary)

	ct := ChunkTaskFunc(func(acc ChunkAccessor, chunkIndex, firstEntityIndex int, cb *CommandBuffer) error {
		chunk := acc.Chunk()
		for row := 0; row < chunk.Len(); row++ {
			pos := position.Get(chunk, row)
			vel := velocity.Get(chunk, row)
			pos.X += vel.X
			pos.Y += vel.Y
		}
		return nil
	})

	rt.ScheduleChunkTask(ct, s.filter, rt.Predecessor(), rt.MainBuffer())
}

func (s *movementSystem) OnExit(rt *Runtime) {
	atomic.AddInt32(&s.ticks, 1)
	if s.ticks >= 3 {
		rt.world.Quit()
	}
}

func TestWorldRunsSystemAcrossScheduledChunkTasks(t *testing.T) {
	em := Factory.NewEntityManager()
	tasks := Factory.NewTaskManager(2)
	defer tasks.Close()
	world := Factory.NewWorld(em, tasks)

	b := em.NewArchetypeBuilder()
	MarkComponent[Position](b, Ordinary)
	MarkComponent[Velocity](b, Ordinary)
	archetype := b.Build()

	e, _ := em.CreateEntity(archetype)
	SetComponent[Position](em, e, Position{X: 0, Y: 0})
	SetComponent[Velocity](em, e, Velocity{X: 1, Y: 2})

	fb := em.NewFilterBuilder()
	Require[Position](fb)
	Require[Velocity](fb)
	filter := fb.Build()

	world.RegisterSystem(&movementSystem{filter: filter})

	tickNumber := 0
	world.Start(func() time.Time {
		tickNumber++
		return time.Date(2026, 1, 1, 0, 0, tickNumber, 0, time.UTC)
	})

	position := FactoryNewComponent[Position](Ordinary)
	pos, err := position.GetFromEntity(em, e)
	if err != nil {
		t.Fatalf("GetFromEntity: %v", err)
	}
	if pos.X != 3 || pos.Y != 6 {
		t.Errorf("Position after 3 ticks = %+v, want {3 6}", *pos)
	}
}

func TestTimeDeltaIsZeroOnFirstTick(t *testing.T) {
	var tm Time
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tm.advance(base)
	if tm.DeltaTime() != 0 {
		t.Errorf("first-tick DeltaTime = %v, want 0", tm.DeltaTime())
	}
	tm.advance(base.Add(time.Second))
	if tm.DeltaTime() != time.Second {
		t.Errorf("second-tick DeltaTime = %v, want 1s", tm.DeltaTime())
	}
}

func TestWorkerBufferIndexing(t *testing.T) {
	em := Factory.NewEntityManager()
	tasks := Factory.NewTaskManager(2)
	defer tasks.Close()
	world := Factory.NewWorld(em, tasks)

	if got := world.WorkerBuffer(-1); got != world.mainBuffer {
		t.Errorf("WorkerBuffer(-1) did not fall back to main buffer")
	}
	if got := world.WorkerBuffer(len(world.workerBuffers)); got != world.mainBuffer {
		t.Errorf("WorkerBuffer(out of range) did not fall back to main buffer")
	}
	if got := world.WorkerBuffer(0); got == nil {
		t.Errorf("WorkerBuffer(0) returned nil")
	}
}
