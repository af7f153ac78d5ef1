package rstb

import "errors"

// Sentinel errors returned by the core subsystems. Callers should match
// these with errors.Is rather than string comparison.
var (
	// ErrUnknownSignal is returned by SimBackend.GetObjectByName (and
	// wrapped by GetObjectByName) when no such hierarchical path exists in
	// the design.
	ErrUnknownSignal = errors.New("rstb: unknown signal or scope")

	// ErrWidthMismatch is returned when a signal accessor is used with a
	// value whose width does not match the signal's declared width, e.g.
	// SimObject.SetBitString with a string of the wrong length.
	ErrWidthMismatch = errors.New("rstb: value width does not match signal width")

	// ErrInvalidBitChar is returned when a bit-string value contains a
	// character outside {0,1,x,z}.
	ErrInvalidBitChar = errors.New("rstb: invalid bit-string character")

	// ErrUnsupportedKind is returned when an accessor is used on a
	// SimObject whose ObjectKind does not support it, e.g. calling Int32
	// on a Real or an Array.
	ErrUnsupportedKind = errors.New("rstb: unsupported operation for object kind")

	// ErrWidthTooWide is returned by Int32/Uint32/Int64/Uint64 when the
	// signal's width exceeds the accessor's range.
	ErrWidthTooWide = errors.New("rstb: signal width exceeds accessor range")

	// ErrZeroDelay is the panic value of TimerSteps (and so of Timer) when
	// the delay is zero steps: a zero-delta
	// timer trigger is meaningless (it is indistinguishable from the
	// current instant) and is rejected rather than silently treated as an
	// immediate wake.
	ErrZeroDelay = errors.New("rstb: timer delay must be non-zero")

	// ErrInexactTimeConversion is the panic value GetSimTime/GetSimSteps
	// wrap when a conversion would lose precision, e.g. converting 3
	// simulation steps at ns precision into seconds.
	ErrInexactTimeConversion = errors.New("rstb: time conversion is not exact")

	// ErrPrecisionTooFine is the panic value GetSimTime wraps when the
	// requested time unit is finer than the simulator's reported
	// precision. GetSimSteps has no such check.
	ErrPrecisionTooFine = errors.New("rstb: requested unit is finer than simulator precision")

	// ErrUnknownTimeUnit is returned for a time unit string other than
	// fs, ps, ns, us, ms, s.
	ErrUnknownTimeUnit = errors.New("rstb: unknown time unit")

	// ErrTaskCancelled is the error a suspended Await returns once its
	// owning Task has been cancelled via JoinHandle.Cancel.
	ErrTaskCancelled = errors.New("rstb: task was cancelled")

	// ErrRuntimeNotInitialized is the panic value of package-level helpers
	// called before Init.
	ErrRuntimeNotInitialized = errors.New("rstb: runtime not initialized")

	// ErrBorrowConflict is a programmer-error panic value for a reentrant
	// borrow of a Cell; see Cell.With/WithMut.
	ErrBorrowConflict = errors.New("rstb: cell already borrowed")

	// ErrDuplicateAssertion is returned by RegisterAssertion for a name
	// that is already registered (duplicate registrations are ignored,
	// first wins, per the engine's contract).
	ErrDuplicateAssertion = errors.New("rstb: assertion already registered")

	// ErrNoCurrentTest is returned by PassTest/FailTest when there is no
	// test currently in flight (it has already concluded).
	ErrNoCurrentTest = errors.New("rstb: no test is currently running")
)
