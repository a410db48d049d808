package depot

import (
	"runtime"
	"time"

	"github.com/TheBitDrifter/depot/task"
)

// Time is the World's wall-clock: delta_time updated once per tick,
// monotonic, with a well-defined (zero) first-tick delta (spec.md §6).
type Time struct {
	delta   time.Duration
	last    time.Time
	started bool
}

// DeltaTime returns the duration of the most recently completed tick.
func (t Time) DeltaTime() time.Duration { return t.delta }

func (t *Time) advance(now time.Time) {
	if !t.started {
		t.delta = 0
		t.started = true
	} else {
		t.delta = now.Sub(t.last)
	}
	t.last = now
}

// ChunkTask is executed once per chunk matched by a filter passed to
// ScheduleChunkTask (spec.md §6 "ChunkTask trait").
type ChunkTask interface {
	Execute(acc ChunkAccessor, chunkIndex int, firstEntityIndex int, cb *CommandBuffer) error
}

// ChunkTaskFunc adapts a plain function to ChunkTask.
type ChunkTaskFunc func(acc ChunkAccessor, chunkIndex int, firstEntityIndex int, cb *CommandBuffer) error

func (f ChunkTaskFunc) Execute(acc ChunkAccessor, chunkIndex int, firstEntityIndex int, cb *CommandBuffer) error {
	return f(acc, chunkIndex, firstEntityIndex, cb)
}

// System is implemented by every unit of per-tick game logic (spec.md §6
// "System trait"). OnEnter/OnUpdate/OnExit run, in that order, once per
// tick for every registered System, with a sync-drain inserted by the
// World after the System's OnUpdate work has finished and before its
// OnExit (spec.md §5).
type System interface {
	OnEnter(rt *Runtime)
	OnUpdate(rt *Runtime)
	OnExit(rt *Runtime)
}

// Runtime is the accessor handle a System receives each phase: its own
// EntityManager view, a way to schedule work, and the running
// "predecessor" handle of everything it has scheduled so far this tick
// (spec.md §6: "schedule(task, filter, predecessor)" and "predecessor()
// (mutable handle updated after each schedule)").
type Runtime struct {
	world       *World
	predecessor *task.Handle
}

// EntityManager returns the World's EntityManager.
func (rt *Runtime) EntityManager() *EntityManager { return rt.world.em }

// Time returns the World's current Time.
func (rt *Runtime) Time() Time { return rt.world.time }

// Predecessor returns the join of every task scheduled so far this tick
// by this System.
func (rt *Runtime) Predecessor() *task.Handle { return rt.predecessor }

// SetPredecessor overwrites the running predecessor handle, letting a
// System fan out into an explicit sub-DAG before rejoining.
func (rt *Runtime) SetPredecessor(h *task.Handle) { rt.predecessor = h }

// MainBuffer returns the World's single main-thread command buffer.
func (rt *Runtime) MainBuffer() *CommandBuffer { return rt.world.mainBuffer }

// Schedule adds fn as a DAG node depending on predecessor (nil for
// immediately runnable), and folds the result into rt's running
// predecessor via Combine so a System's later schedule calls
// automatically depend on everything scheduled earlier this phase.
func (rt *Runtime) Schedule(fn func(workerID int) error, predecessor *task.Handle) *task.Handle {
	h := rt.world.tasks.Schedule(fn, predecessor)
	rt.foldPredecessor(h)
	return h
}

// Combine joins handles into one handle and folds it into rt's running
// predecessor.
func (rt *Runtime) Combine(handles ...*task.Handle) *task.Handle {
	h := rt.world.tasks.Combine(handles...)
	rt.foldPredecessor(h)
	return h
}

func (rt *Runtime) foldPredecessor(h *task.Handle) {
	if rt.predecessor == nil {
		rt.predecessor = h
		return
	}
	rt.predecessor = rt.world.tasks.Combine(rt.predecessor, h)
}

// ScheduleChunkTask expands to one task per chunk matched by filter,
// each depending on predecessor, and returns their join (spec.md §4.8
// "schedule_chunk_task"). workerBuffer assigns which per-worker
// CommandBuffer each expanded task records into; passing the same
// buffer for every call serializes their deferred writes into one FIFO
// log, which is the common case for a single-purpose task.
func (rt *Runtime) ScheduleChunkTask(ct ChunkTask, filter EntityFilter, predecessor *task.Handle, workerBuffer *CommandBuffer) *task.Handle {
	accessors := rt.world.em.FilterEntities(filter)
	handles := make([]*task.Handle, 0, len(accessors))
	firstIndex := 0
	for i, acc := range accessors {
		acc, idx, first := acc, i, firstIndex
		h := rt.world.tasks.Schedule(func(workerID int) error {
			return ct.Execute(acc, idx, first, workerBuffer)
		}, predecessor)
		handles = append(handles, h)
		firstIndex += acc.EntityCount()
	}
	joined := rt.world.tasks.Combine(handles...)
	rt.foldPredecessor(joined)
	return joined
}

// World owns the EntityManager, the task.Manager worker pool, the
// registered Systems, and the command buffers they record into,
// orchestrating the onEnter/onUpdate/onExit + sync-drain tick loop
// (spec.md §5), grounded on libMelonCore/Instance.h's
// registerSystem/start/quit surface.
type World struct {
	em            *EntityManager
	tasks         *task.Manager
	time          Time
	systems       []System
	mainBuffer    *CommandBuffer
	workerBuffers []*CommandBuffer
	quit          bool
}

func newWorld(em *EntityManager, tasks *task.Manager) *World {
	// One CommandBuffer per worker thread keeps recording contention-free;
	// the count comes from Config.WorkerCount with the same "0 = hardware
	// parallelism" default task.NewManager applies. It is not read from
	// tasks, so it matches tasks' pool size only when both were given the
	// same worker count.
	workerCount := Config.WorkerCount()
	if workerCount <= 0 {
		workerCount = runtime.GOMAXPROCS(0)
	}
	w := &World{
		em:         em,
		tasks:      tasks,
		mainBuffer: em.NewCommandBuffer(),
	}
	for i := 0; i < workerCount; i++ {
		w.workerBuffers = append(w.workerBuffers, em.NewCommandBuffer())
	}
	return w
}

// EntityManager returns the World's EntityManager.
func (w *World) EntityManager() *EntityManager { return w.em }

// RegisterSystem appends s to the World's ordered system list (spec.md
// §6 "register_system<T>(args…)").
func (w *World) RegisterSystem(s System) {
	w.systems = append(w.systems, s)
}

// WorkerBuffer returns the command buffer owned by workerID, for systems
// that dispatch ScheduleChunkTask calls themselves and need to route
// each worker's writes to its own buffer.
func (w *World) WorkerBuffer(workerID int) *CommandBuffer {
	if workerID < 0 || workerID >= len(w.workerBuffers) {
		return w.mainBuffer
	}
	return w.workerBuffers[workerID]
}

// Quit requests cooperative shutdown: the flag is checked between ticks,
// and the in-flight tick always completes normally (spec.md §5
// "Cancellation & timeouts: none").
func (w *World) Quit() { w.quit = true }

// Start runs the tick loop until Quit is called. Each tick runs every
// registered System's OnEnter, then OnUpdate (which may schedule
// parallel work), then waits on that System's predecessor handle, drains
// every command buffer at the resulting sync point, and runs OnExit,
// before moving on to the next System (spec.md §5: "Between successive
// Systems, the runtime inserts a sync node that (1) waits... (2) drains
// ...(3) clears").
func (w *World) Start(now func() time.Time) {
	for !w.quit {
		w.time.advance(now())
		for _, s := range w.systems {
			rt := &Runtime{world: w}
			s.OnEnter(rt)
			w.em.Lock()
			s.OnUpdate(rt)
			if rt.predecessor != nil {
				rt.predecessor.Wait()
			}
			w.em.Unlock()
			DrainAll(w.em, w.mainBuffer, w.workerBuffers)
			s.OnExit(rt)
		}
	}
}
