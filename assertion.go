package rstb

import (
	"errors"
	"fmt"
	"sync"
)

// ConditionFunc synchronously decides, once an assertion's trigger has
// fired and the simulation has settled (read-only phase), whether this
// occurrence is one the assertion cares about. Returning false skips the
// occurrence entirely: no stats change, no checker spawned.
type ConditionFunc func(ac *AssertionContext) bool

// CheckerFunc runs as its own Task once ConditionFunc has accepted an
// occurrence. A nil error counts as passed; any other error counts as
// failed.
type CheckerFunc func(tc *TaskContext, ac *AssertionContext) error

// AssertionContext is the handle a ConditionFunc or CheckerFunc uses to
// read an assertion's sampled signal history.
type AssertionContext struct {
	a *Assertion
}

// SigHist returns the value of obj sampled k ticks before the assertion's
// most recent trigger (k == 0 is the most recent sample). obj must have
// been named in WatchSignals when the assertion was registered, and k
// must be within the configured history depth.
func (ac *AssertionContext) SigHist(obj *SimObject, k int) (Val, error) {
	ac.a.mu.Lock()
	defer ac.a.mu.Unlock()
	buf, ok := ac.a.history[obj.handle]
	if !ok {
		return Neutral, fmt.Errorf("rstb: %s is not watched by assertion %q", obj.Name(), ac.a.name)
	}
	if k < 0 || k >= len(buf) {
		return Neutral, fmt.Errorf("rstb: history depth %d out of range for assertion %q", k, ac.a.name)
	}
	return buf[k], nil
}

// Rose reports whether obj's sampled value was 0 one cycle ago and is
// non-zero now.
func (ac *AssertionContext) Rose(obj *SimObject) (bool, error) {
	now, prev, err := ac.curAndPrev(obj)
	if err != nil {
		return false, err
	}
	return prev.U32 == 0 && now.U32 != 0, nil
}

// Fell reports whether obj's sampled value was non-zero one cycle ago and
// is 0 now.
func (ac *AssertionContext) Fell(obj *SimObject) (bool, error) {
	now, prev, err := ac.curAndPrev(obj)
	if err != nil {
		return false, err
	}
	return prev.U32 != 0 && now.U32 == 0, nil
}

// Stable reports whether obj's sampled value is unchanged from one cycle
// ago.
func (ac *AssertionContext) Stable(obj *SimObject) (bool, error) {
	now, prev, err := ac.curAndPrev(obj)
	if err != nil {
		return false, err
	}
	return now.U32 == prev.U32, nil
}

// Changed reports whether obj's sampled value differs from one cycle ago.
func (ac *AssertionContext) Changed(obj *SimObject) (bool, error) {
	stable, err := ac.Stable(obj)
	return !stable, err
}

func (ac *AssertionContext) curAndPrev(obj *SimObject) (now, prev Val, err error) {
	if now, err = ac.SigHist(obj, 0); err != nil {
		return
	}
	prev, err = ac.SigHist(obj, 1)
	return
}

// Trigger returns the assertion's arm trigger, re-awaitable by a checker
// coroutine that wants to wait for the next occurrence itself (e.g. "ack
// within 3 clock edges").
func (ac *AssertionContext) Trigger() Trigger { return ac.a.trigger }

// Dut returns the top-level design scope, as a convenience for checkers
// that need to resolve further signals.
func (ac *AssertionContext) Dut() (*SimObject, error) { return ac.a.rt.GetRootObject() }

// Assertion is a named, long-lived checker: it arms on a Trigger,
// evaluates a synchronous condition once the simulation settles, and, if
// accepted, forks a checker coroutine whose outcome is tallied.
type Assertion struct {
	name      string
	rt        *Runtime
	trigger   Trigger
	condition ConditionFunc
	checker   CheckerFunc
	watch     []*SimObject
	histDepth int

	mu      sync.Mutex
	enabled bool
	history map[ObjectHandle][]Val

	stats struct {
		mu                        sync.Mutex
		triggered, passed, failed int
	}

	runTask     *JoinHandle
	historyTask *JoinHandle
}

// Enable re-enables an assertion previously disabled with Disable.
func (a *Assertion) Enable() {
	a.mu.Lock()
	a.enabled = true
	a.mu.Unlock()
}

// Disable suspends this assertion: its run loop still arms on the trigger
// each occurrence, but no checker is spawned and no stats change. This
// mirrors testbenches that want to silence an assertion during known-bad
// windows (e.g. reset) without tearing down its wiring.
func (a *Assertion) Disable() {
	a.mu.Lock()
	a.enabled = false
	a.mu.Unlock()
}

func (a *Assertion) isEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// Stats returns the assertion's triggered/passed/failed counters.
func (a *Assertion) Stats() (triggered, passed, failed int) {
	a.stats.mu.Lock()
	defer a.stats.mu.Unlock()
	return a.stats.triggered, a.stats.passed, a.stats.failed
}

func (a *Assertion) recordTrigger() {
	a.stats.mu.Lock()
	a.stats.triggered++
	a.stats.mu.Unlock()
}

func (a *Assertion) recordPass() {
	a.stats.mu.Lock()
	a.stats.passed++
	a.stats.mu.Unlock()
}

func (a *Assertion) recordFail() {
	a.stats.mu.Lock()
	a.stats.failed++
	a.stats.mu.Unlock()
}

func (a *Assertion) resultString() string {
	triggered, passed, failed := a.Stats()
	return fmt.Sprintf("assertion %s: triggered=%d passed=%d failed=%d", a.name, triggered, passed, failed)
}

// runLoop is the assertion's own coroutine body: arm, settle, maybe
// check, repeat, forever, until cancelled at test teardown.
func (a *Assertion) runLoop(tc *TaskContext) (Val, error) {
	for {
		if a.histDepth > 0 && a.historyTask == nil {
			a.historyTask = a.rt.Spawn(a.name+":history", a.historySampler)
		}

		if _, err := tc.Await(a.trigger); err != nil {
			return Neutral, err
		}
		if _, err := tc.Await(ReadOnly()); err != nil {
			return Neutral, err
		}

		if !a.isEnabled() {
			continue
		}

		ac := &AssertionContext{a: a}
		cond, chk := a.condition, a.checker
		a.rt.Spawn(a.name+":check", func(tc2 *TaskContext) (Val, error) {
			if !cond(ac) {
				return Neutral, nil
			}
			a.recordTrigger()
			err := chk(tc2, ac)
			if errors.Is(err, ErrTaskCancelled) {
				// Cancelled mid-check at test teardown: tearDownAll already
				// folded this occurrence into failed before waking us, so
				// counting it again here would double it.
				return Neutral, err
			}
			if err != nil {
				a.recordFail()
			} else {
				a.recordPass()
			}
			return Neutral, nil
		})
	}
}

// historySampler keeps the bounded per-signal history current: it arms on
// the same trigger as runLoop, but samples at ReadOnlyPriority so its
// values are in place before the checker coroutine (armed at ReadOnly,
// one step behind) ever observes them.
func (a *Assertion) historySampler(tc *TaskContext) (Val, error) {
	for {
		if _, err := tc.Await(a.trigger); err != nil {
			return Neutral, err
		}
		if _, err := tc.Await(ReadOnlyPriority()); err != nil {
			return Neutral, err
		}
		a.sampleHistory()
	}
}

func (a *Assertion) sampleHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, obj := range a.watch {
		v, err := obj.Uint32()
		if err != nil {
			continue
		}
		buf := a.history[obj.handle]
		copy(buf[1:], buf[:len(buf)-1])
		buf[0] = Uint(v)
	}
}

// assertionRegistry is the process-wide, name-keyed set of declared
// assertions. Declarations persist for the life of the simulation run;
// only their running tasks are started and torn down per test.
type assertionRegistry struct {
	mu               sync.Mutex
	byName           map[string]*Assertion
	defaultHistDepth int
}

func newAssertionRegistry(defaultDepth int) *assertionRegistry {
	return &assertionRegistry{byName: make(map[string]*Assertion), defaultHistDepth: defaultDepth}
}

func (r *assertionRegistry) register(rt *Runtime, name string, trig Trigger, cond ConditionFunc, chk CheckerFunc, opts []AssertionOption) (*Assertion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAssertion, name)
	}
	cfg := resolveAssertionOptions(r.defaultHistDepth, opts)
	a := &Assertion{
		name:      name,
		rt:        rt,
		trigger:   trig,
		condition: cond,
		checker:   chk,
		watch:     cfg.watch,
		histDepth: cfg.historyDepth,
		enabled:   true,
		history:   make(map[ObjectHandle][]Val),
	}
	for _, obj := range a.watch {
		buf := make([]Val, cfg.historyDepth+1)
		for i := range buf {
			buf[i] = Neutral
		}
		a.history[obj.handle] = buf
	}
	r.byName[name] = a
	return a, nil
}

// runAll starts every declared assertion's runLoop. Called once per test
// by the orchestrator.
func (r *assertionRegistry) runAll(rt *Runtime) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byName {
		a.runTask = rt.Spawn(a.name, a.runLoop)
	}
}

// tearDownAll cancels every assertion's running tasks and folds any
// triggered-but-never-concluded checker into the failed count, so that
// triggered == passed + failed holds for every assertion once teardown
// returns.
func (r *assertionRegistry) tearDownAll(rt *Runtime) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byName {
		if a.runTask != nil {
			a.runTask.Cancel()
			a.runTask = nil
		}
		if a.historyTask != nil {
			a.historyTask.Cancel()
			a.historyTask = nil
		}
		a.stats.mu.Lock()
		a.stats.failed += a.stats.triggered - a.stats.passed - a.stats.failed
		a.stats.mu.Unlock()
	}
}

func (r *assertionRegistry) logSummary() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byName {
		a.rt.backend.Log(a.resultString())
	}
}

// RegisterAssertion declares a named assertion against rt's process-wide
// registry. Registering the same name twice returns ErrDuplicateAssertion;
// the first registration wins.
func (rt *Runtime) RegisterAssertion(name string, trig Trigger, cond ConditionFunc, chk CheckerFunc, opts ...AssertionOption) (*Assertion, error) {
	return rt.assertions.register(rt, name, trig, cond, chk, opts)
}

// RegisterAssertion declares a named assertion against the process's
// installed Runtime.
func RegisterAssertion(name string, trig Trigger, cond ConditionFunc, chk CheckerFunc, opts ...AssertionOption) (*Assertion, error) {
	return currentRuntime().RegisterAssertion(name, trig, cond, chk, opts...)
}
