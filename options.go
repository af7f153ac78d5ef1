package rstb

// runtimeOptions holds configuration applied when the runtime is
// initialized via Init.
type runtimeOptions struct {
	logger           Logger
	historyDepthHint int
	junitPath        string
}

// RuntimeOption configures the runtime at Init time.
type RuntimeOption interface {
	applyRuntime(*runtimeOptions)
}

type runtimeOptionFunc func(*runtimeOptions)

func (f runtimeOptionFunc) applyRuntime(o *runtimeOptions) { f(o) }

// WithLogger installs a structured logger other than the package default.
// See SetLogger for installing one after Init as well.
func WithLogger(l Logger) RuntimeOption {
	return runtimeOptionFunc(func(o *runtimeOptions) { o.logger = l })
}

// WithDefaultHistoryDepth sets the bounded per-signal history length used
// by assertions that don't specify their own via WithHistoryDepth.
func WithDefaultHistoryDepth(n int) RuntimeOption {
	return runtimeOptionFunc(func(o *runtimeOptions) { o.historyDepthHint = n })
}

// WithJUnitPath sets the path the orchestrator writes its results.xml to
// at the end of the run. Empty disables JUnit output.
func WithJUnitPath(path string) RuntimeOption {
	return runtimeOptionFunc(func(o *runtimeOptions) { o.junitPath = path })
}

func resolveRuntimeOptions(opts []RuntimeOption) *runtimeOptions {
	cfg := &runtimeOptions{
		historyDepthHint: defaultHistoryDepth,
		junitPath:        "results.xml",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyRuntime(cfg)
	}
	return cfg
}

// assertionOptions holds per-assertion configuration.
type assertionOptions struct {
	historyDepth int
	watch        []*SimObject
}

// AssertionOption configures an Assertion at registration time.
type AssertionOption interface {
	applyAssertion(*assertionOptions)
}

type assertionOptionFunc func(*assertionOptions)

func (f assertionOptionFunc) applyAssertion(o *assertionOptions) { f(o) }

// WithHistoryDepth bounds the per-signal value history this assertion
// samples before evaluating its condition. Zero disables history.
func WithHistoryDepth(n int) AssertionOption {
	return assertionOptionFunc(func(o *assertionOptions) { o.historyDepth = n })
}

// WatchSignals names the signals sampled into history on every arm,
// prior to the checker coroutine observing them.
func WatchSignals(objs ...*SimObject) AssertionOption {
	return assertionOptionFunc(func(o *assertionOptions) { o.watch = append(o.watch, objs...) })
}

func resolveAssertionOptions(defaultDepth int, opts []AssertionOption) *assertionOptions {
	cfg := &assertionOptions{historyDepth: defaultDepth}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyAssertion(cfg)
	}
	return cfg
}

// orchestratorOptions holds configuration for a Test registration.
type orchestratorOptions struct {
	timeout   uint64
	skip      bool
	skipCause string
}

// OrchestratorOption configures a Test at registration time.
type OrchestratorOption interface {
	applyOrchestrator(*orchestratorOptions)
}

type orchestratorOptionFunc func(*orchestratorOptions)

func (f orchestratorOptionFunc) applyOrchestrator(o *orchestratorOptions) { f(o) }

// WithTimeoutSteps fails the test if it has not called PassTest/FailTest
// within the given number of simulation steps of its own start.
func WithTimeoutSteps(steps uint64) OrchestratorOption {
	return orchestratorOptionFunc(func(o *orchestratorOptions) { o.timeout = steps })
}

// WithSkip marks the test skipped; it is recorded in results.xml but its
// body never runs.
func WithSkip(cause string) OrchestratorOption {
	return orchestratorOptionFunc(func(o *orchestratorOptions) {
		o.skip = true
		o.skipCause = cause
	})
}

func resolveOrchestratorOptions(opts []OrchestratorOption) *orchestratorOptions {
	cfg := &orchestratorOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyOrchestrator(cfg)
	}
	return cfg
}

const defaultHistoryDepth = 8
