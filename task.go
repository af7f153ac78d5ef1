package rstb

import (
	"sync"

	"github.com/google/uuid"
)

// TaskState is the lifecycle state of a Task.
type TaskState int

const (
	TaskPending TaskState = iota
	TaskCancelled
	TaskDone
)

func (s TaskState) String() string {
	switch s {
	case TaskCancelled:
		return "cancelled"
	case TaskDone:
		return "done"
	default:
		return "pending"
	}
}

// CoroutineFunc is the body of a Task. It runs on its own goroutine but is
// only ever executing while the Executor has handed it the baton; it
// suspends by calling TaskContext.Await.
type CoroutineFunc func(tc *TaskContext) (Val, error)

// Task is one cooperatively scheduled coroutine. Every Task owns a real
// goroutine, parked on resumeCh whenever it does not hold the baton.
type Task struct {
	id   uuid.UUID
	name string
	rt   *Runtime

	resumeCh chan struct{}
	yieldCh  chan struct{}

	mu     sync.Mutex
	state  TaskState
	queued bool

	resultMu   sync.Mutex
	resultSent bool
	joinCh     chan taskResult
}

type taskResult struct {
	val Val
	err error
}

// TaskContext is the handle a CoroutineFunc uses to suspend itself on a
// Trigger and observe its own cancellation.
type TaskContext struct {
	task *Task
}

// ID returns the identity of the task owning this context.
func (tc *TaskContext) ID() uuid.UUID { return tc.task.id }

// newTask allocates a Task and starts its goroutine, which immediately
// parks until the executor grants it the baton for the first time.
func newTask(rt *Runtime, name string, fn CoroutineFunc) *Task {
	t := &Task{
		id:       uuid.New(),
		name:     name,
		rt:       rt,
		resumeCh: make(chan struct{}),
		yieldCh:  make(chan struct{}),
		joinCh:   make(chan taskResult, 1),
	}
	go t.loop(fn)
	return t
}

func (t *Task) loop(fn CoroutineFunc) {
	<-t.resumeCh
	tc := &TaskContext{task: t}
	val, err := fn(tc)
	t.finish(val, err)
	t.yieldCh <- struct{}{}
}

func (t *Task) finish(val Val, err error) {
	t.mu.Lock()
	cancelled := t.state == TaskCancelled
	t.state = TaskDone
	t.mu.Unlock()
	if cancelled {
		val, err = Neutral, nil
	}
	t.sendResult(val, err)
	t.rt.executor.untrack(t)
}

func (t *Task) sendResult(val Val, err error) {
	t.resultMu.Lock()
	defer t.resultMu.Unlock()
	if t.resultSent {
		return
	}
	t.resultSent = true
	t.joinCh <- taskResult{val: val, err: err}
}

// wake schedules t onto the ready queue if it is not already queued and
// has not finished. It is the only path by which anything outside t's own
// goroutine causes it to run: trigger registries call it when their event
// fires, and cancel calls it to let a cancelled task unwind.
func (t *Task) wake() {
	t.mu.Lock()
	if t.state == TaskDone || t.queued {
		t.mu.Unlock()
		return
	}
	t.queued = true
	t.mu.Unlock()
	t.rt.executor.enqueue(t)
}

// wakeFront is wake, but places t at the front of the ready queue.
// ReadOnly priority ordering does not go through it: armReadOnly puts
// priority waiters at the front of the waiter list instead.
func (t *Task) wakeFront() {
	t.mu.Lock()
	if t.state == TaskDone || t.queued {
		t.mu.Unlock()
		return
	}
	t.queued = true
	t.mu.Unlock()
	t.rt.executor.enqueueFront(t)
}

func (t *Task) cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == TaskCancelled
}

// cancel marks t cancelled, makes its JoinHandle observe the neutral
// result immediately, and wakes it so its goroutine gets a chance to
// unwind the next time it holds the baton. Idempotent.
func (t *Task) cancel() {
	t.mu.Lock()
	if t.state != TaskPending {
		t.mu.Unlock()
		return
	}
	t.state = TaskCancelled
	t.mu.Unlock()
	t.sendResult(Neutral, nil)
	t.wake()
}

// Await suspends the calling coroutine until the given Trigger fires, or
// until the task is cancelled. It is the only suspension point in the
// runtime: every blocking wait, however composed, bottoms out here.
func (tc *TaskContext) Await(trig Trigger) (Val, error) {
	task := tc.task
	if task.cancelled() {
		return Neutral, ErrTaskCancelled
	}
	trig.arm(task.rt, task)
	task.yieldCh <- struct{}{}
	<-task.resumeCh
	if task.cancelled() {
		return Neutral, ErrTaskCancelled
	}
	return Neutral, nil
}

// Executor holds the FIFO ready queue shared by every Task in a Runtime.
// It is process-wide mutable state protected by a mutex for formal
// thread-safety even though, by construction, only the single simulator
// callback thread ever touches it.
type Executor struct {
	mu    sync.Mutex
	ready []*Task
	live  map[*Task]struct{}
}

func newExecutor() *Executor { return &Executor{live: make(map[*Task]struct{})} }

func (e *Executor) track(t *Task) {
	e.mu.Lock()
	e.live[t] = struct{}{}
	e.mu.Unlock()
}

func (e *Executor) untrack(t *Task) {
	e.mu.Lock()
	delete(e.live, t)
	e.mu.Unlock()
}

// cancelAllLive cancels every task this executor has spawned and not yet
// finished. Used at test teardown: unlike a dropped Rust future, a parked
// Go goroutine must be handed the baton at least once more to observe its
// own cancellation and return, so this only wakes them — the drain loop
// already in progress (every caller of this runs from inside one) is what
// actually resumes and unwinds them.
func (e *Executor) cancelAllLive() {
	e.mu.Lock()
	tasks := make([]*Task, 0, len(e.live))
	for t := range e.live {
		tasks = append(tasks, t)
	}
	e.mu.Unlock()
	for _, t := range tasks {
		t.cancel()
	}
}

func (e *Executor) enqueue(t *Task) {
	e.mu.Lock()
	e.ready = append(e.ready, t)
	e.mu.Unlock()
}

func (e *Executor) enqueueFront(t *Task) {
	e.mu.Lock()
	e.ready = append([]*Task{t}, e.ready...)
	e.mu.Unlock()
}

func (e *Executor) dequeue() (*Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.ready) == 0 {
		return nil, false
	}
	t := e.ready[0]
	e.ready = e.ready[1:]
	return t, true
}

// drain runs every currently-ready task to its next suspension point (or
// completion), repeating until the ready queue is empty. Every react_*
// entrypoint ends by calling this, which is what makes "after any react_*
// call returns, the ready queue is empty" hold.
func (e *Executor) drain() {
	for {
		t, ok := e.dequeue()
		if !ok {
			return
		}
		t.mu.Lock()
		t.queued = false
		done := t.state == TaskDone
		t.mu.Unlock()
		if done {
			continue
		}
		t.resumeCh <- struct{}{}
		<-t.yieldCh
	}
}

// spawn creates a Task from fn, schedules it onto the ready queue, and
// returns a JoinHandle for it. It does not drain the queue itself; the
// caller (Runtime.Spawn, or a react_* entrypoint's own drain) is
// responsible for eventually running it.
func (e *Executor) spawn(rt *Runtime, name string, fn CoroutineFunc) *JoinHandle {
	t := newTask(rt, name, fn)
	e.track(t)
	t.mu.Lock()
	t.queued = true
	t.mu.Unlock()
	e.enqueue(t)
	return &JoinHandle{task: t}
}

// JoinHandle observes the eventual result of a forked Task.
type JoinHandle struct {
	task *Task
}

// Await blocks the calling goroutine until the task completes or is
// cancelled. It is a plain channel receive, not a Trigger: called from a
// Task's coroutine before the joined task has finished, it blocks without
// yielding the baton, so the executor cannot run the joined task. It may
// be called at most once; the underlying channel is single-consumer, the
// same as the oneshot channel it mirrors.
func (h *JoinHandle) Await() (Val, error) {
	r := <-h.task.joinCh
	return r.val, r.err
}

// Cancel marks the underlying task cancelled. Its JoinHandle immediately
// observes the neutral result; the task's goroutine unwinds the next time
// it is given the baton. Cancelling an already-cancelled or completed
// task is a no-op.
func (h *JoinHandle) Cancel() {
	h.task.cancel()
}
