package task

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestScheduleRunsImmediatelyWithNilPredecessor exercises the base case:
// a task with no predecessor becomes runnable right away.
func TestScheduleRunsImmediatelyWithNilPredecessor(t *testing.T) {
	m := NewManager(2)
	defer m.Close()

	var ran int32
	h := m.Schedule(func(workerID int) error {
		atomic.StoreInt32(&ran, 1)
		return nil
	}, nil)

	if err := h.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if atomic.LoadInt32(&ran) != 1 {
		t.Errorf("task did not run")
	}
}

// TestPredecessorOrderingIsHappenBefore is spec.md §8 P8: a task scheduled
// with a predecessor never observes memory writes the predecessor hadn't
// made yet. A successor reading a shared counter the predecessor wrote
// must see the written value every time, across many repetitions (race
// conditions would only intermittently reorder it).
func TestPredecessorOrderingIsHappenBefore(t *testing.T) {
	m := NewManager(4)
	defer m.Close()

	for i := 0; i < 200; i++ {
		var value int32
		pred := m.Schedule(func(workerID int) error {
			atomic.StoreInt32(&value, 42)
			return nil
		}, nil)

		succ := m.Schedule(func(workerID int) error {
			if atomic.LoadInt32(&value) != 42 {
				return errors.New("successor observed stale predecessor write")
			}
			return nil
		}, pred)

		if err := succ.Wait(); err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
	}
}

// TestCombineJoinsAllPredecessors is spec.md §4.8's combine: the joined
// handle only becomes runnable once every input handle has finished.
func TestCombineJoinsAllPredecessors(t *testing.T) {
	m := NewManager(4)
	defer m.Close()

	const n = 8
	var finished int32
	handles := make([]*Handle, n)
	for i := 0; i < n; i++ {
		handles[i] = m.Schedule(func(workerID int) error {
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&finished, 1)
			return nil
		}, nil)
	}

	joined := m.Combine(handles...)
	if err := joined.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	if got := atomic.LoadInt32(&finished); got != n {
		t.Errorf("finished = %d at join time, want %d", got, n)
	}
}

// TestCombineOfEmptySliceIsImmediatelyRunnable covers the degenerate case
// spec.md §4.8 implies: combine([]) is a no-op join.
func TestCombineOfEmptySliceIsImmediatelyRunnable(t *testing.T) {
	m := NewManager(1)
	defer m.Close()

	h := m.Combine()
	if err := h.Wait(); err != nil {
		t.Fatalf("Wait on empty Combine: %v", err)
	}
}

// TestSuccessorAttachedAfterPredecessorFinishedStillRuns guards against a
// race between a predecessor finishing and a successor being attached to
// it: addSuccessor must resolve immediately rather than stranding the
// successor forever.
func TestSuccessorAttachedAfterPredecessorFinishedStillRuns(t *testing.T) {
	m := NewManager(2)
	defer m.Close()

	pred := m.Schedule(func(workerID int) error { return nil }, nil)
	pred.Wait() // guarantee pred has already finished before scheduling succ

	var ran int32
	succ := m.Schedule(func(workerID int) error {
		atomic.StoreInt32(&ran, 1)
		return nil
	}, pred)

	if err := succ.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if atomic.LoadInt32(&ran) != 1 {
		t.Errorf("successor attached post-finish never ran")
	}
}

// TestTaskPanicIsCapturedAndSiblingsStillRun is spec.md §7 kind 6: a
// panicking task poisons only its own handle; sibling tasks with no edge
// to it still run to completion.
func TestTaskPanicIsCapturedAndSiblingsStillRun(t *testing.T) {
	m := NewManager(4)
	defer m.Close()

	panicking := m.Schedule(func(workerID int) error {
		panic("boom")
	}, nil)

	var siblingRan int32
	sibling := m.Schedule(func(workerID int) error {
		atomic.StoreInt32(&siblingRan, 1)
		return nil
	}, nil)

	if err := panicking.Wait(); err == nil {
		t.Errorf("expected panicking task's Wait to surface an error")
	}
	if err := sibling.Wait(); err != nil {
		t.Fatalf("sibling Wait: %v", err)
	}
	if atomic.LoadInt32(&siblingRan) != 1 {
		t.Errorf("sibling task did not run after predecessor-less peer panicked")
	}
}

// TestManyChunkLikeTasksAllComplete simulates ScheduleChunkTask's fan-out
// shape directly against task.Manager: N independent tasks joined by one
// Combine, verifying every one of them actually executed by the time the
// join resolves.
func TestManyChunkLikeTasksAllComplete(t *testing.T) {
	m := NewManager(0) // hardware parallelism default
	defer m.Close()

	const n = 64
	var mu sync.Mutex
	seen := make(map[int]bool, n)

	handles := make([]*Handle, n)
	for i := 0; i < n; i++ {
		i := i
		handles[i] = m.Schedule(func(workerID int) error {
			mu.Lock()
			seen[i] = true
			mu.Unlock()
			return nil
		}, nil)
	}

	m.Combine(handles...).Wait()

	if len(seen) != n {
		t.Errorf("len(seen) = %d, want %d", len(seen), n)
	}
}
