package rstb

// TrigKind discriminates a Trigger. Trigger is a closed tagged union, not
// an interface: the runtime only ever needs to dispatch on these four
// cases, and a closed set keeps the callback multiplexer (registry.go)
// exhaustive and simple.
type TrigKind int

const (
	TrigTimer TrigKind = iota
	TrigEdge
	TrigReadOnly
	TrigReadWrite
)

// EdgeKind filters which value transitions wake an edge waiter.
type EdgeKind int

const (
	EdgeAny EdgeKind = iota
	EdgeRising
	EdgeFalling
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	default:
		return "any"
	}
}

// Trigger is an awaitable simulator event: a fixed delay, a signal edge,
// or a read-only/read-write phase boundary. Constructed with Timer,
// TimerSteps, RisingEdge, FallingEdge, AnyEdge, ReadOnly,
// ReadOnlyPriority, or ReadWrite, and consumed with TaskContext.Await.
//
// A Trigger value may be awaited more than once (each call is an
// independent blocking registration); it carries no "already awaited"
// flag because, unlike a polled future, TaskContext.Await blocks directly
// on a channel and so can only ever be woken once per call.
type Trigger struct {
	kind     TrigKind
	relSteps uint64
	obj      *SimObject
	edgeKind EdgeKind
	priority bool
}

// Timer returns a Trigger that fires once value units of simulation time
// have elapsed from the moment it is awaited. Panics if value converts to
// zero steps at the runtime's current precision: a zero-delta timer is
// indistinguishable from the current instant and is rejected rather than
// silently treated as an immediate wake. Also panics (via GetSimSteps) if
// value in unit does not convert to a whole number of steps, and panics
// with ErrUnknownTimeUnit for an unrecognised unit.
func Timer(value uint64, unit string) Trigger {
	steps, err := GetSimSteps(currentRuntime().backend, value, unit)
	if err != nil {
		panic(err)
	}
	return TimerSteps(steps)
}

// TimerSteps is Timer expressed directly in the backend's native step
// unit, bypassing unit conversion.
func TimerSteps(steps uint64) Trigger {
	if steps == 0 {
		panic(ErrZeroDelay)
	}
	return Trigger{kind: TrigTimer, relSteps: steps}
}

// RisingEdge returns a Trigger that fires on the next value change of obj
// classified as a rising edge. On a multi-bit signal, direction is
// undefined and any change wakes the waiter.
func RisingEdge(obj *SimObject) Trigger {
	return Trigger{kind: TrigEdge, obj: obj, edgeKind: EdgeRising}
}

// FallingEdge is RisingEdge for falling transitions.
func FallingEdge(obj *SimObject) Trigger {
	return Trigger{kind: TrigEdge, obj: obj, edgeKind: EdgeFalling}
}

// AnyEdge fires on any value change of obj, regardless of direction.
func AnyEdge(obj *SimObject) Trigger {
	return Trigger{kind: TrigEdge, obj: obj, edgeKind: EdgeAny}
}

// ReadOnly fires at the next read-only phase of the simulation cycle.
func ReadOnly() Trigger { return Trigger{kind: TrigReadOnly} }

// ReadOnlyPriority is ReadOnly, but the waiter is woken ahead of every
// non-priority ReadOnly waiter already registered for the same phase.
// Used by the assertion engine to sample signal history before checker
// coroutines observe it.
func ReadOnlyPriority() Trigger { return Trigger{kind: TrigReadOnly, priority: true} }

// ReadWrite fires at the next read-write phase of the simulation cycle.
func ReadWrite() Trigger { return Trigger{kind: TrigReadWrite} }

// RisingEdge returns a Trigger for the next rising edge of o.
func (o *SimObject) RisingEdge() Trigger { return RisingEdge(o) }

// FallingEdge returns a Trigger for the next falling edge of o.
func (o *SimObject) FallingEdge() Trigger { return FallingEdge(o) }

// AnyEdge returns a Trigger for the next value change of o, either direction.
func (o *SimObject) AnyEdge() Trigger { return AnyEdge(o) }

// arm registers task as a waiter for trig with rt's callback multiplexer.
func (trig Trigger) arm(rt *Runtime, task *Task) {
	switch trig.kind {
	case TrigTimer:
		rt.registry.armTimer(rt, trig.relSteps, task)
	case TrigEdge:
		rt.registry.armEdge(rt, trig.obj.handle, trig.edgeKind, task)
	case TrigReadOnly:
		rt.registry.armReadOnly(rt, task, trig.priority)
	case TrigReadWrite:
		rt.registry.armReadWrite(rt, task)
	}
}
