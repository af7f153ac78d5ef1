package rstb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertion_ConditionFalseSkipsOccurrence(t *testing.T) {
	rt, backend := newTestRuntime(t)

	a, err := rt.RegisterAssertion("never",
		ReadWrite(),
		func(ac *AssertionContext) bool { return false },
		func(tc *TaskContext, ac *AssertionContext) error { return nil },
	)
	require.NoError(t, err)

	rt.assertions.runAll(rt)
	rt.Drain()

	backend.FireReadWrite()
	backend.FireReadOnly()

	triggered, passed, failed := a.Stats()
	assert.Equal(t, 0, triggered)
	assert.Equal(t, 0, passed)
	assert.Equal(t, 0, failed)
}

func TestAssertion_CheckerFailureUpdatesStats(t *testing.T) {
	rt, backend := newTestRuntime(t)

	wantFail := errors.New("mismatch")
	a, err := rt.RegisterAssertion("check",
		ReadWrite(),
		func(ac *AssertionContext) bool { return true },
		func(tc *TaskContext, ac *AssertionContext) error { return wantFail },
	)
	require.NoError(t, err)

	rt.assertions.runAll(rt)
	rt.Drain()

	backend.FireReadWrite()
	backend.FireReadOnly()

	triggered, passed, failed := a.Stats()
	assert.Equal(t, 1, triggered)
	assert.Equal(t, 0, passed)
	assert.Equal(t, 1, failed)
}

func TestAssertion_HistorySamplingTracksRiseAndFall(t *testing.T) {
	rt, backend := newTestRuntime(t)
	backend.declare("tb.sig", KindInteger, 1)
	sig, err := rt.GetObjectByName("tb.sig")
	require.NoError(t, err)

	var gotRose, gotFell bool
	a, err := rt.RegisterAssertion("edges",
		ReadWrite(),
		func(ac *AssertionContext) bool { return true },
		func(tc *TaskContext, ac *AssertionContext) error {
			gotRose, _ = ac.Rose(sig)
			gotFell, _ = ac.Fell(sig)
			return nil
		},
		WithHistoryDepth(1),
		WatchSignals(sig),
	)
	require.NoError(t, err)

	rt.assertions.runAll(rt)
	rt.Drain()

	backend.SetValueUint32(backend.handleFor("tb.sig"), 1, false)
	backend.FireReadWrite()
	backend.FireReadOnly()

	assert.True(t, gotRose)
	assert.False(t, gotFell)
	_, _, _ = a.Stats()
}

func TestAssertionRegistry_DuplicateNameIsRejected(t *testing.T) {
	rt, _ := newTestRuntime(t)

	_, err := rt.RegisterAssertion("dup", ReadWrite(),
		func(ac *AssertionContext) bool { return true },
		func(tc *TaskContext, ac *AssertionContext) error { return nil },
	)
	require.NoError(t, err)

	_, err = rt.RegisterAssertion("dup", ReadWrite(),
		func(ac *AssertionContext) bool { return true },
		func(tc *TaskContext, ac *AssertionContext) error { return nil },
	)
	assert.ErrorIs(t, err, ErrDuplicateAssertion)
}

func TestAssertionRegistry_TearDownReconcilesUnconcludedCheckerAsFailed(t *testing.T) {
	rt, backend := newTestRuntime(t)

	a, err := rt.RegisterAssertion("hangs",
		ReadWrite(),
		func(ac *AssertionContext) bool { return true },
		func(tc *TaskContext, ac *AssertionContext) error {
			// Blocks forever: this checker never concludes pass or fail on
			// its own, modeling a checker whose own test run ended first.
			_, err := tc.Await(TimerSteps(1_000_000))
			return err
		},
	)
	require.NoError(t, err)

	rt.assertions.runAll(rt)
	rt.Drain()

	backend.FireReadWrite()
	backend.FireReadOnly()

	triggered, passed, failed := a.Stats()
	require.Equal(t, 1, triggered)
	require.Equal(t, 0, passed)
	require.Equal(t, 0, failed)

	rt.assertions.tearDownAll(rt)
	rt.executor.drain()

	triggered, passed, failed = a.Stats()
	assert.Equal(t, 1, triggered)
	assert.Equal(t, 0, passed)
	assert.Equal(t, 1, failed, "triggered-but-unconcluded checkers must fold into failed at teardown")
	assert.Equal(t, triggered, passed+failed)
}

func TestAssertion_DisableSuspendsAccountingWithoutStoppingTrigger(t *testing.T) {
	rt, backend := newTestRuntime(t)

	a, err := rt.RegisterAssertion("toggle",
		ReadWrite(),
		func(ac *AssertionContext) bool { return true },
		func(tc *TaskContext, ac *AssertionContext) error { return nil },
	)
	require.NoError(t, err)
	a.Disable()

	rt.assertions.runAll(rt)
	rt.Drain()

	backend.FireReadWrite()
	backend.FireReadOnly()

	triggered, _, _ := a.Stats()
	assert.Equal(t, 0, triggered, "a disabled assertion must not record stats")

	a.Enable()
	backend.FireReadWrite()
	backend.FireReadOnly()

	triggered, passed, _ := a.Stats()
	assert.Equal(t, 1, triggered)
	assert.Equal(t, 1, passed)
}
