package task

import "sync"

// worker pulls Handles from its Manager's ready queue and runs them to
// completion, grounded on TaskWorker.cpp's loop (pull from the ready
// queue, execute, notify finished): the only suspension point is the
// blocking channel receive (spec.md §5 "worker threads block only in
// the ready-queue wait").
type worker struct {
	id int
	m  *Manager
}

func newWorker(id int, m *Manager) *worker {
	return &worker{id: id, m: m}
}

func (w *worker) loop(wg *sync.WaitGroup) {
	defer wg.Done()
	for h := range w.m.ready {
		h.run(w.id)
	}
}
