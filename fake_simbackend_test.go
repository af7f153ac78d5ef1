package rstb

import (
	"sort"
	"sync"
)

// fakeSignal is one named, sized signal in the fake design under test.
type fakeSignal struct {
	name  string
	kind  ObjectKind
	size  int
	value int64
	bits  string
}

// fakeBackend is a minimal, fully in-process SimBackend: a hand-driven
// stand-in for a real VPI/VHPI/Verilator shim, used to exercise the
// runtime without an actual simulator. Tests drive it directly (set a
// signal, then call FireEdge/FireTimer/FireReadOnly/FireReadWrite to
// simulate the backend invoking the corresponding react_* entrypoint) and
// assert on the resulting behavior.
type fakeBackend struct {
	mu        sync.Mutex
	precision int8
	steps     uint64
	nextH     ObjectHandle
	nextCB    CallbackHandle
	byHandle  map[ObjectHandle]*fakeSignal
	byName    map[string]ObjectHandle
	logs      []string

	timerCBs map[CallbackHandle]uint64 // handle -> absolute step
	edgeCBs  map[CallbackHandle]ObjectHandle
	roCB     CallbackHandle
	roArmed  bool
	rwCB     CallbackHandle
	rwArmed  bool
	canceled map[CallbackHandle]bool
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{
		precision: -9, // ns
		byHandle:  make(map[ObjectHandle]*fakeSignal),
		byName:    make(map[string]ObjectHandle),
		timerCBs:  make(map[CallbackHandle]uint64),
		edgeCBs:   make(map[CallbackHandle]ObjectHandle),
		canceled:  make(map[CallbackHandle]bool),
	}
	b.declare("tb", KindUnknown, 0)
	return b
}

// declare registers a new named signal and returns its handle.
func (b *fakeBackend) declare(name string, kind ObjectKind, size int) ObjectHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextH++
	h := b.nextH
	b.byHandle[h] = &fakeSignal{name: name, kind: kind, size: size}
	b.byName[name] = h
	return h
}

func (b *fakeBackend) GetObjectByName(path string) (ObjectHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	h, ok := b.byName[path]
	if !ok {
		return 0, ErrUnknownSignal
	}
	return h, nil
}

func (b *fakeBackend) GetRootObject() (ObjectHandle, error) {
	return b.byName["tb"], nil
}

func (b *fakeBackend) GetFullName(obj ObjectHandle) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.byHandle[obj]
	if !ok {
		return "", ErrUnknownSignal
	}
	return s.name, nil
}

func (b *fakeBackend) GetKind(obj ObjectHandle) ObjectKind {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.byHandle[obj].kind
}

func (b *fakeBackend) GetSize(obj ObjectHandle) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.byHandle[obj].size
}

func (b *fakeBackend) GetValueInt32(obj ObjectHandle) (int32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int32(b.byHandle[obj].value), nil
}

func (b *fakeBackend) GetValueUint32(obj ObjectHandle) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return uint32(b.byHandle[obj].value), nil
}

func (b *fakeBackend) GetValueInt64(obj ObjectHandle) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.byHandle[obj].value, nil
}

func (b *fakeBackend) GetValueUint64(obj ObjectHandle) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return uint64(b.byHandle[obj].value), nil
}

func (b *fakeBackend) GetValueBitString(obj ObjectHandle) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.byHandle[obj].bits, nil
}

func (b *fakeBackend) SetValueInt32(obj ObjectHandle, v int32, force bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byHandle[obj].value = int64(v)
	return nil
}

func (b *fakeBackend) SetValueUint32(obj ObjectHandle, v uint32, force bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byHandle[obj].value = int64(v)
	return nil
}

func (b *fakeBackend) SetValueInt64(obj ObjectHandle, v int64, force bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byHandle[obj].value = v
	return nil
}

func (b *fakeBackend) SetValueUint64(obj ObjectHandle, v uint64, force bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byHandle[obj].value = int64(v)
	return nil
}

func (b *fakeBackend) SetValueBitString(obj ObjectHandle, v string, force bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byHandle[obj].bits = v
	return nil
}

func (b *fakeBackend) Release(obj ObjectHandle) error { return nil }

func (b *fakeBackend) GetSimTimeSteps() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.steps
}

func (b *fakeBackend) GetSimPrecision() int8 { return b.precision }

func (b *fakeBackend) RegisterCallbackTime(delta uint64) (CallbackHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextCB++
	h := b.nextCB
	b.timerCBs[h] = b.steps + delta
	return h, nil
}

func (b *fakeBackend) RegisterCallbackEdge(obj ObjectHandle) (CallbackHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextCB++
	h := b.nextCB
	b.edgeCBs[h] = obj
	return h, nil
}

func (b *fakeBackend) RegisterCallbackReadOnly() (CallbackHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextCB++
	b.roCB = b.nextCB
	b.roArmed = true
	return b.roCB, nil
}

func (b *fakeBackend) RegisterCallbackReadWrite() (CallbackHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextCB++
	b.rwCB = b.nextCB
	b.rwArmed = true
	return b.rwCB, nil
}

func (b *fakeBackend) CancelCallback(cb CallbackHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.canceled[cb] = true
	delete(b.timerCBs, cb)
	delete(b.edgeCBs, cb)
	if b.roCB == cb {
		b.roArmed = false
	}
	if b.rwCB == cb {
		b.rwArmed = false
	}
	return nil
}

func (b *fakeBackend) Log(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logs = append(b.logs, s)
}

// AdvanceTo moves simulated time forward and fires any timer callback
// whose absolute deadline has been reached, in deadline order.
func (b *fakeBackend) AdvanceTo(steps uint64) {
	for {
		b.mu.Lock()
		b.steps = steps
		var due []CallbackHandle
		for h, abs := range b.timerCBs {
			if abs <= steps {
				due = append(due, h)
			}
		}
		sort.Slice(due, func(i, j int) bool { return b.timerCBs[due[i]] < b.timerCBs[due[j]] })
		b.mu.Unlock()
		if len(due) == 0 {
			return
		}
		for _, h := range due {
			b.mu.Lock()
			abs, ok := b.timerCBs[h]
			if ok {
				delete(b.timerCBs, h)
			}
			b.mu.Unlock()
			if ok {
				ReactTimer(abs)
			}
		}
	}
}

// SetAndFireEdge writes v to the named signal and, if an edge callback is
// outstanding on it, fires ReactEdge with the direction implied by the
// old/new value.
func (b *fakeBackend) SetAndFireEdge(name string, v int32) {
	b.mu.Lock()
	h := b.byName[name]
	old := b.byHandle[h].value
	b.byHandle[h].value = int64(v)
	var cb CallbackHandle
	var found bool
	for c, obj := range b.edgeCBs {
		if obj == h {
			cb = c
			found = true
			break
		}
	}
	if found {
		delete(b.edgeCBs, cb)
	}
	b.mu.Unlock()
	if !found {
		return
	}
	kind := EdgeFalling
	if v != 0 && old == 0 {
		kind = EdgeRising
	} else if v != 0 {
		kind = EdgeAny
	}
	ReactEdge(h, kind)
}

// FireReadOnly invokes ReactReadOnly if a read-only callback is armed.
func (b *fakeBackend) FireReadOnly() {
	b.mu.Lock()
	armed := b.roArmed
	b.mu.Unlock()
	if armed {
		ReactReadOnly()
	}
}

// FireReadWrite invokes ReactReadWrite if a read-write callback is armed.
func (b *fakeBackend) FireReadWrite() {
	b.mu.Lock()
	armed := b.rwArmed
	b.mu.Unlock()
	if armed {
		ReactReadWrite()
	}
}

func (b *fakeBackend) handleFor(name string) ObjectHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.byName[name]
}

func (b *fakeBackend) valueOf(name string) int32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int32(b.byHandle[b.byName[name]].value)
}
