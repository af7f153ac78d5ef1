package rstb

import "fmt"

// ObjectKind classifies a design object as reported by the simulator.
type ObjectKind int

const (
	KindUnknown ObjectKind = iota
	KindInteger
	KindReal
	KindBitVector
	KindArray
)

func (k ObjectKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindBitVector:
		return "bit_vector"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// ObjectHandle is an opaque, backend-assigned identifier for a design
// object (signal, net, scope). It has no meaning outside the SimBackend
// implementation that issued it.
type ObjectHandle uintptr

// CallbackHandle is an opaque, backend-assigned identifier for a single
// outstanding simulator callback registration.
type CallbackHandle uintptr

// SimCallback identifies the simulator event a callback is registered
// against, matching one of the four CallbackGroup keys the trigger
// multiplexer coalesces on.
type SimCallback struct {
	Kind  SimCallbackKind
	Steps uint64       // valid when Kind == SimCallbackTime: absolute step count
	Obj   ObjectHandle // valid when Kind == SimCallbackEdge
}

// SimCallbackKind discriminates a SimCallback.
type SimCallbackKind int

const (
	SimCallbackTime SimCallbackKind = iota
	SimCallbackEdge
	SimCallbackReadOnly
	SimCallbackReadWrite
)

func (c SimCallback) String() string {
	switch c.Kind {
	case SimCallbackTime:
		return fmt.Sprintf("time@%d", c.Steps)
	case SimCallbackEdge:
		return fmt.Sprintf("edge@%d", c.Obj)
	case SimCallbackReadOnly:
		return "read_only"
	case SimCallbackReadWrite:
		return "read_write"
	default:
		return "invalid"
	}
}

// SimBackend is the sole interface the core requires from the outside
// world: a VPI, VHPI, or Verilator DPI shim implements it and drives the
// runtime's four react entrypoints from its native callback dispatch.
// Every operation is synchronous; the backend is never asked to block.
type SimBackend interface {
	// GetObjectByName resolves a hierarchical dotted path to a handle.
	// Returns ErrUnknownSignal if no such object exists.
	GetObjectByName(path string) (ObjectHandle, error)
	// GetRootObject returns the top-level design scope handle.
	GetRootObject() (ObjectHandle, error)
	// GetFullName returns the canonical hierarchical path of obj.
	GetFullName(obj ObjectHandle) (string, error)
	// GetKind classifies obj.
	GetKind(obj ObjectHandle) ObjectKind
	// GetSize returns obj's bit width, or 0 if not applicable.
	GetSize(obj ObjectHandle) int

	// GetValueInt32 reads obj as a signed scalar.
	GetValueInt32(obj ObjectHandle) (int32, error)
	// GetValueUint32 reads obj as an unsigned scalar.
	GetValueUint32(obj ObjectHandle) (uint32, error)
	// GetValueInt64 reads obj as a signed scalar, for widths beyond the
	// 32-bit path's range.
	GetValueInt64(obj ObjectHandle) (int64, error)
	// GetValueUint64 reads obj as an unsigned scalar, for widths beyond
	// the 32-bit path's range.
	GetValueUint64(obj ObjectHandle) (uint64, error)
	// GetValueBitString reads obj as a {0,1,x,z} string, MSB first.
	GetValueBitString(obj ObjectHandle) (string, error)

	// SetValueInt32 writes obj. force distinguishes a forced assignment
	// (overrides the driver until Release) from an inertial one.
	SetValueInt32(obj ObjectHandle, v int32, force bool) error
	// SetValueUint32 writes obj. force as above.
	SetValueUint32(obj ObjectHandle, v uint32, force bool) error
	// SetValueInt64 writes obj. force as above.
	SetValueInt64(obj ObjectHandle, v int64, force bool) error
	// SetValueUint64 writes obj. force as above.
	SetValueUint64(obj ObjectHandle, v uint64, force bool) error
	// SetValueBitString writes obj from a {0,1,x,z} string. force as above.
	SetValueBitString(obj ObjectHandle, v string, force bool) error
	// Release releases a previously forced value on obj.
	Release(obj ObjectHandle) error

	// GetSimTimeSteps returns the current simulator time in precision
	// units (steps).
	GetSimTimeSteps() uint64
	// GetSimPrecision returns the simulator's time precision as a
	// power-of-ten exponent, e.g. -12 for picoseconds.
	GetSimPrecision() int8

	// RegisterCallbackTime arms a one-shot callback delta steps from now.
	RegisterCallbackTime(delta uint64) (CallbackHandle, error)
	// RegisterCallbackEdge arms a one-shot callback on the next value
	// change of obj (the caller inspects the new value to classify the
	// edge direction; the backend does not filter by direction).
	RegisterCallbackEdge(obj ObjectHandle) (CallbackHandle, error)
	// RegisterCallbackReadOnly arms a one-shot callback at the next
	// read-only phase of the simulation cycle.
	RegisterCallbackReadOnly() (CallbackHandle, error)
	// RegisterCallbackReadWrite arms a one-shot callback at the next
	// read-write phase of the simulation cycle.
	RegisterCallbackReadWrite() (CallbackHandle, error)
	// CancelCallback is an idempotent, best-effort cancellation.
	CancelCallback(cb CallbackHandle) error

	// Log emits a line to the simulator's own log/stdout, distinct from
	// the structured Logger used for the runtime's own diagnostics.
	Log(s string)
}
