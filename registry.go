package rstb

import (
	"fmt"
	"sync"
)

// waiterEntry is one task parked on a callbackGroup. edgeKind is only
// meaningful for edge groups.
type waiterEntry struct {
	task     *Task
	edgeKind EdgeKind
}

// callbackGroup coalesces every waiter on one distinct simulator event
// (one absolute timer deadline, one signal's edges, the read-only phase,
// or the read-write phase) behind a single outstanding backend callback.
type callbackGroup struct {
	handle    CallbackHandle
	hasHandle bool
	waiters   []waiterEntry
}

// triggerRegistry is the callback multiplexer: the four event-class
// registries plus the logic that demultiplexes a single fired simulator
// callback out to every waiter registered against it. Process-wide
// mutable state, guarded by a mutex for formal thread-safety even though
// only the simulator callback thread ever touches it.
type triggerRegistry struct {
	mu        sync.Mutex
	timers    map[uint64]*callbackGroup // key: absolute step count
	edges     map[ObjectHandle]*callbackGroup
	readOnly  *callbackGroup
	readWrite *callbackGroup
}

func newTriggerRegistry() *triggerRegistry {
	return &triggerRegistry{
		timers:    make(map[uint64]*callbackGroup),
		edges:     make(map[ObjectHandle]*callbackGroup),
		readOnly:  &callbackGroup{},
		readWrite: &callbackGroup{},
	}
}

func (r *triggerRegistry) armTimer(rt *Runtime, relSteps uint64, task *Task) {
	abs := rt.backend.GetSimTimeSteps() + relSteps
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.timers[abs]
	if !ok {
		h, err := rt.backend.RegisterCallbackTime(relSteps)
		if err != nil {
			panic(fmt.Errorf("rstb: registering timer callback: %w", err))
		}
		g = &callbackGroup{handle: h, hasHandle: true}
		r.timers[abs] = g
	}
	g.waiters = append(g.waiters, waiterEntry{task: task})
}

func (r *triggerRegistry) armEdge(rt *Runtime, obj ObjectHandle, kind EdgeKind, task *Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.edges[obj]
	if !ok {
		h, err := rt.backend.RegisterCallbackEdge(obj)
		if err != nil {
			panic(fmt.Errorf("rstb: registering edge callback: %w", err))
		}
		g = &callbackGroup{handle: h, hasHandle: true}
		r.edges[obj] = g
	}
	g.waiters = append(g.waiters, waiterEntry{task: task, edgeKind: kind})
}

func (r *triggerRegistry) armReadOnly(rt *Runtime, task *Task, priority bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := r.readOnly
	if !g.hasHandle {
		h, err := rt.backend.RegisterCallbackReadOnly()
		if err != nil {
			panic(fmt.Errorf("rstb: registering read-only callback: %w", err))
		}
		g.handle = h
		g.hasHandle = true
	}
	if priority {
		g.waiters = append([]waiterEntry{{task: task}}, g.waiters...)
	} else {
		g.waiters = append(g.waiters, waiterEntry{task: task})
	}
}

func (r *triggerRegistry) armReadWrite(rt *Runtime, task *Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := r.readWrite
	if !g.hasHandle {
		h, err := rt.backend.RegisterCallbackReadWrite()
		if err != nil {
			panic(fmt.Errorf("rstb: registering read-write callback: %w", err))
		}
		g.handle = h
		g.hasHandle = true
	}
	g.waiters = append(g.waiters, waiterEntry{task: task})
}

// reactTimer demultiplexes a fired timer callback, waking every waiter
// coalesced on absSteps.
func (r *triggerRegistry) reactTimer(absSteps uint64) {
	r.mu.Lock()
	g, ok := r.timers[absSteps]
	if ok {
		delete(r.timers, absSteps)
	}
	r.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("rstb: unexpected timer callback at step %d", absSteps))
	}
	wakeAll(g.waiters)
}

// reactEdge demultiplexes a fired edge callback. Waiters whose requested
// direction matches (or is EdgeAny) are woken; the rest are rearmed with
// a fresh one-shot registration, unless every remaining waiter has
// meanwhile been cancelled or has finished, in which case the group is
// simply dropped.
func (r *triggerRegistry) reactEdge(rt *Runtime, obj ObjectHandle, observed EdgeKind) {
	r.mu.Lock()
	g, ok := r.edges[obj]
	if ok {
		delete(r.edges, obj)
	}
	r.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("rstb: unexpected edge callback on object %d", obj))
	}

	if observed == EdgeAny {
		wakeAll(g.waiters)
		return
	}

	var wake, resched []waiterEntry
	for _, w := range g.waiters {
		w.task.mu.Lock()
		dead := w.task.state != TaskPending
		w.task.mu.Unlock()
		switch {
		case w.edgeKind == EdgeAny || w.edgeKind == observed:
			wake = append(wake, w)
		case dead:
			// dead waiter (cancelled, or already unwound after cancellation),
			// drop rather than keep the callback alive for it
		default:
			resched = append(resched, w)
		}
	}
	if len(resched) > 0 {
		h, err := rt.backend.RegisterCallbackEdge(obj)
		if err != nil {
			panic(fmt.Errorf("rstb: re-registering edge callback: %w", err))
		}
		r.mu.Lock()
		r.edges[obj] = &callbackGroup{handle: h, hasHandle: true, waiters: resched}
		r.mu.Unlock()
	}
	wakeAll(wake)
}

// reactReadOnly demultiplexes a fired read-only-phase callback.
func (r *triggerRegistry) reactReadOnly() {
	r.mu.Lock()
	g := r.readOnly
	g.hasHandle = false
	waiters := g.waiters
	g.waiters = nil
	r.mu.Unlock()
	wakeAll(waiters)
}

// reactReadWrite demultiplexes a fired read-write-phase callback.
func (r *triggerRegistry) reactReadWrite() {
	r.mu.Lock()
	g := r.readWrite
	g.hasHandle = false
	waiters := g.waiters
	g.waiters = nil
	r.mu.Unlock()
	wakeAll(waiters)
}

// cancelAll tears down every registry, cancelling any still-outstanding
// backend callback, and discards every waiter. Called between tests by
// the orchestrator, after assertions and before the ready queue.
func (r *triggerRegistry) cancelAll(rt *Runtime) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.readOnly.hasHandle {
		_ = rt.backend.CancelCallback(r.readOnly.handle)
	}
	r.readOnly = &callbackGroup{}

	if r.readWrite.hasHandle {
		_ = rt.backend.CancelCallback(r.readWrite.handle)
	}
	r.readWrite = &callbackGroup{}

	for abs, g := range r.timers {
		_ = rt.backend.CancelCallback(g.handle)
		delete(r.timers, abs)
	}
	for obj, g := range r.edges {
		_ = rt.backend.CancelCallback(g.handle)
		delete(r.edges, obj)
	}
}

func wakeAll(waiters []waiterEntry) {
	for _, w := range waiters {
		w.task.wake()
	}
}
