package rstb

import "fmt"

// ValKind discriminates the payload carried by a [Val].
type ValKind int

const (
	// ValNone is the neutral value: no payload. Returned by cancelled
	// tasks, misfired assertion conditions, and any coroutine that simply
	// has nothing to report.
	ValNone ValKind = iota
	// ValUint is an unsigned 32-bit scalar, e.g. a signal sampled via
	// SimObject.Uint32.
	ValUint
	// ValInt is a signed 32-bit scalar, e.g. a signal sampled via
	// SimObject.Int32.
	ValInt
	// ValBitString is an arbitrary-width signal value encoded as a string
	// over the alphabet {0,1,x,z}.
	ValBitString
	// ValString is a free-form string payload (log messages, names).
	ValString
)

// Val is the language-neutral result value coroutines and signal accessors
// exchange, mirroring the original implementation's Val enum. Every
// CoroutineFunc and TestFunc returns one, and JoinHandle.Await and
// AssertionContext.SigHist yield one; the Rose/Fell/Stable/Changed helpers
// return plain bools. Neutral gives cancellation and misfire paths a
// well-defined, comparable "nothing happened" value.
type Val struct {
	Kind ValKind
	U32  uint32
	I32  int32
	Str  string
}

// Neutral is the zero value of Val: [ValNone] with no payload. It is what
// a cancelled Task's JoinHandle resolves with.
var Neutral = Val{Kind: ValNone}

// Uint returns a Val carrying an unsigned 32-bit scalar.
func Uint(v uint32) Val { return Val{Kind: ValUint, U32: v} }

// Int returns a Val carrying a signed 32-bit scalar.
func Int(v int32) Val { return Val{Kind: ValInt, I32: v} }

// BitString returns a Val carrying an arbitrary-width bit string.
func BitString(s string) Val { return Val{Kind: ValBitString, Str: s} }

// String returns a Val carrying a free-form string.
func String(s string) Val { return Val{Kind: ValString, Str: s} }

func (v Val) String() string {
	switch v.Kind {
	case ValNone:
		return "<none>"
	case ValUint:
		return fmt.Sprintf("%d", v.U32)
	case ValInt:
		return fmt.Sprintf("%d", v.I32)
	case ValBitString, ValString:
		return v.Str
	default:
		return "<invalid>"
	}
}
