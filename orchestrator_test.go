package rstb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrchestrator_RunsTestsInRegistrationOrderAndAutoPasses(t *testing.T) {
	rt, _ := newTestRuntime(t)

	var ran []string
	rt.RegisterTest("first", func(tc *TaskContext, dut *SimObject) (Val, error) {
		ran = append(ran, "first")
		return Neutral, nil
	})
	rt.RegisterTest("second", func(tc *TaskContext, dut *SimObject) (Val, error) {
		ran = append(ran, "second")
		return Neutral, nil
	})

	StartOfSimulation()

	assert.Equal(t, []string{"first", "second"}, ran)

	results := rt.orchestrator.results()
	require.Len(t, results, 2)
	assert.True(t, results[0].Ran())
	assert.True(t, results[0].Passed())
	assert.True(t, results[1].Ran())
	assert.True(t, results[1].Passed())
}

func TestOrchestrator_ReturnedErrorFailsTest(t *testing.T) {
	rt, _ := newTestRuntime(t)

	wantErr := errors.New("boom")
	rt.RegisterTest("failing", func(tc *TaskContext, dut *SimObject) (Val, error) {
		return Neutral, wantErr
	})

	StartOfSimulation()

	results := rt.orchestrator.results()
	require.Len(t, results, 1)
	assert.True(t, results[0].Ran())
	assert.False(t, results[0].Passed())
	assert.ErrorIs(t, results[0].Err(), wantErr)
}

func TestOrchestrator_SkippedTestNeverRuns(t *testing.T) {
	rt, _ := newTestRuntime(t)

	var ran bool
	rt.RegisterTest("skip-me", func(tc *TaskContext, dut *SimObject) (Val, error) {
		ran = true
		return Neutral, nil
	}, WithSkip("not relevant on this target"))
	rt.RegisterTest("runs", func(tc *TaskContext, dut *SimObject) (Val, error) {
		return Neutral, nil
	})

	StartOfSimulation()

	assert.False(t, ran)
	results := rt.orchestrator.results()
	require.Len(t, results, 2)
	assert.True(t, results[0].Skipped())
	assert.False(t, results[0].Passed())
	assert.True(t, results[1].Ran())
	assert.True(t, results[1].Passed())
}

func TestOrchestrator_PassTestFromForkedTaskCancelsSiblingMonitor(t *testing.T) {
	rt, backend := newTestRuntime(t)

	var monitorObservedCancel bool
	rt.RegisterTest("early-pass", func(tc *TaskContext, dut *SimObject) (Val, error) {
		Spawn("monitor", func(mtc *TaskContext) (Val, error) {
			_, err := mtc.Await(TimerSteps(1_000_000))
			if errors.Is(err, ErrTaskCancelled) {
				monitorObservedCancel = true
			}
			return Neutral, err
		})

		if err := PassTest("good enough"); err != nil {
			return Neutral, err
		}
		// The test body keeps running after calling PassTest directly; it
		// must not block forever waiting on its own conclusion.
		return Neutral, nil
	})

	StartOfSimulation()

	results := rt.orchestrator.results()
	require.Len(t, results, 1)
	assert.True(t, results[0].Passed())
	assert.True(t, monitorObservedCancel, "forked monitor must be cancelled once PassTest concludes the test")
	assert.Empty(t, backend.timerCBs, "teardown must cancel the monitor's outstanding timer callback")
}

func TestOrchestrator_FailTestRecordsReason(t *testing.T) {
	rt, _ := newTestRuntime(t)

	rt.RegisterTest("explicit-fail", func(tc *TaskContext, dut *SimObject) (Val, error) {
		if err := FailTest("assertion mismatch"); err != nil {
			return Neutral, err
		}
		return Neutral, nil
	})

	StartOfSimulation()

	results := rt.orchestrator.results()
	require.Len(t, results, 1)
	assert.False(t, results[0].Passed())
	require.Error(t, results[0].Err())
	assert.Equal(t, "assertion mismatch", results[0].Err().Error())
}

func TestOrchestrator_SecondConcludeAttemptReturnsErrNoCurrentTest(t *testing.T) {
	rt, _ := newTestRuntime(t)

	rt.RegisterTest("double-conclude", func(tc *TaskContext, dut *SimObject) (Val, error) {
		require.NoError(t, PassTest("first"))
		return Neutral, errors.New("this return must be a no-op conclusion")
	})

	StartOfSimulation()

	// The test function's own error return reaches advanceLocked's
	// wrapper; since PassTest already concluded the test, the wrapper must
	// skip its own conclude rather than overwrite the already-recorded pass.
	results := rt.orchestrator.results()
	require.Len(t, results, 1)
	assert.True(t, results[0].Passed())

	err := rt.FailTest("too late")
	assert.ErrorIs(t, err, ErrNoCurrentTest)
}

func TestOrchestrator_TimeoutFailsTestThatNeverConcludes(t *testing.T) {
	rt, backend := newTestRuntime(t)

	rt.RegisterTest("hangs", func(tc *TaskContext, dut *SimObject) (Val, error) {
		_, err := tc.Await(TimerSteps(1_000_000))
		return Neutral, err
	}, WithTimeoutSteps(50))

	StartOfSimulation()
	backend.AdvanceTo(50)

	results := rt.orchestrator.results()
	require.Len(t, results, 1)
	assert.True(t, results[0].Ran())
	assert.False(t, results[0].Passed())
	require.Error(t, results[0].Err())
}
