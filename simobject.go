package rstb

import (
	"fmt"
	"strings"
	"sync"
)

// SimObject is a handle to a design signal or scope, interned by handle and
// by full hierarchical name so repeated lookups of the same path are free
// after the first. Values are copied freely; the handle and its cached
// metadata never change for the lifetime of a simulation run.
type SimObject struct {
	backend SimBackend
	handle  ObjectHandle
	kind    ObjectKind
	size    int
}

// Handle returns the backend-assigned object handle.
func (o *SimObject) Handle() ObjectHandle { return o.handle }

// Kind returns the object's classification as reported by the backend.
func (o *SimObject) Kind() ObjectKind { return o.kind }

// Size returns the object's bit width, or 0 if not applicable.
func (o *SimObject) Size() int { return o.size }

// Name returns the object's canonical hierarchical path.
func (o *SimObject) Name() string {
	name, err := o.backend.GetFullName(o.handle)
	if err != nil {
		// The backend guaranteed this handle was valid at intern time;
		// losing it afterward indicates a backend/runtime bug.
		panic(fmt.Sprintf("rstb: lost name of interned object %d: %v", o.handle, err))
	}
	return name
}

// simObjectCache interns SimObjects by handle and by full name so repeated
// lookups share one instance, mirroring the registries every other core
// subsystem keeps (see registry.go, task.go).
type simObjectCache struct {
	mu       sync.Mutex
	byHandle map[ObjectHandle]*SimObject
	byName   map[string]*SimObject
}

func newSimObjectCache() *simObjectCache {
	return &simObjectCache{
		byHandle: make(map[ObjectHandle]*SimObject),
		byName:   make(map[string]*SimObject),
	}
}

// getByName resolves path via the backend on first lookup, and from the
// interning cache on every subsequent one.
func (c *simObjectCache) getByName(backend SimBackend, path string) (*SimObject, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if o, ok := c.byName[path]; ok {
		return o, nil
	}
	handle, err := backend.GetObjectByName(path)
	if err != nil {
		return nil, fmt.Errorf("rstb: resolving %q: %w", path, err)
	}
	return c.internLocked(backend, handle)
}

// getByHandle resolves handle via the backend on first lookup, and from
// the interning cache on every subsequent one.
func (c *simObjectCache) getByHandle(backend SimBackend, handle ObjectHandle) (*SimObject, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if o, ok := c.byHandle[handle]; ok {
		return o, nil
	}
	return c.internLocked(backend, handle)
}

func (c *simObjectCache) internLocked(backend SimBackend, handle ObjectHandle) (*SimObject, error) {
	o := &SimObject{
		backend: backend,
		handle:  handle,
		kind:    backend.GetKind(handle),
		size:    backend.GetSize(handle),
	}
	name, err := backend.GetFullName(handle)
	if err != nil {
		return nil, fmt.Errorf("rstb: naming newly interned object %d: %w", handle, err)
	}
	c.byHandle[handle] = o
	c.byName[name] = o
	return o, nil
}

func (c *simObjectCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byHandle = make(map[ObjectHandle]*SimObject)
	c.byName = make(map[string]*SimObject)
}

// Child resolves name relative to o's own hierarchical path, e.g.
// o.Child("valid") on an object named "tb.dut" resolves "tb.dut.valid".
func (o *SimObject) Child(name string) (*SimObject, error) {
	return GetObjectByName(o.Name() + "." + name)
}

// Int32 reads o as a signed scalar, sign-extending from its declared
// width. Some simulators (notably Questa, over VHPI) never return a
// negative raw value for a vector regardless of its top bit, so the sign
// extension is always performed explicitly here rather than trusted to
// the backend.
func (o *SimObject) Int32() (int32, error) {
	if o.kind != KindBitVector && o.kind != KindInteger {
		return 0, fmt.Errorf("rstb: Int32 on %s: %w", o.Name(), ErrUnsupportedKind)
	}
	if o.size > 32 {
		return 0, fmt.Errorf("rstb: Int32 on %s: %w", o.Name(), ErrWidthTooWide)
	}
	raw, err := o.backend.GetValueInt32(o.handle)
	if err != nil {
		return 0, err
	}
	if o.size == 0 || o.size == 32 {
		return raw, nil
	}
	v := int64(raw)
	ceil := int64(1) << uint(o.size-1)
	if v >= ceil {
		return int32(v - 2*ceil), nil
	}
	return int32(v), nil
}

// Uint32 reads o as an unsigned scalar, wrapping a negative raw backend
// value back into range for its declared width.
func (o *SimObject) Uint32() (uint32, error) {
	if o.kind != KindBitVector && o.kind != KindInteger {
		return 0, fmt.Errorf("rstb: Uint32 on %s: %w", o.Name(), ErrUnsupportedKind)
	}
	if o.size > 32 {
		return 0, fmt.Errorf("rstb: Uint32 on %s: %w", o.Name(), ErrWidthTooWide)
	}
	raw, err := o.backend.GetValueInt32(o.handle)
	if err != nil {
		return 0, err
	}
	if o.size == 0 || o.size == 32 {
		return uint32(raw), nil
	}
	v := int64(raw)
	if v < 0 {
		v += int64(1) << uint(o.size)
	}
	return uint32(v), nil
}

// Int64 reads o as a signed scalar for widths beyond Int32's 32-bit range,
// sign-extending from its declared width.
func (o *SimObject) Int64() (int64, error) {
	if o.kind != KindBitVector && o.kind != KindInteger {
		return 0, fmt.Errorf("rstb: Int64 on %s: %w", o.Name(), ErrUnsupportedKind)
	}
	if o.size > 64 {
		return 0, fmt.Errorf("rstb: Int64 on %s: %w", o.Name(), ErrWidthTooWide)
	}
	raw, err := o.backend.GetValueInt64(o.handle)
	if err != nil {
		return 0, err
	}
	if o.size == 0 || o.size == 64 {
		return raw, nil
	}
	ceil := int64(1) << uint(o.size-1)
	if raw >= ceil {
		return raw - 2*ceil, nil
	}
	return raw, nil
}

// Uint64 reads o as an unsigned scalar for widths beyond Uint32's 32-bit
// range, wrapping a negative raw backend value back into range.
func (o *SimObject) Uint64() (uint64, error) {
	if o.kind != KindBitVector && o.kind != KindInteger {
		return 0, fmt.Errorf("rstb: Uint64 on %s: %w", o.Name(), ErrUnsupportedKind)
	}
	if o.size > 64 {
		return 0, fmt.Errorf("rstb: Uint64 on %s: %w", o.Name(), ErrWidthTooWide)
	}
	raw, err := o.backend.GetValueInt64(o.handle)
	if err != nil {
		return 0, err
	}
	if o.size == 0 || o.size == 64 {
		return uint64(raw), nil
	}
	if raw < 0 {
		raw += int64(1) << uint(o.size)
	}
	return uint64(raw), nil
}

// Bin reads o as a {0,1,x,z} bit string, MSB first.
func (o *SimObject) Bin() (string, error) {
	return o.backend.GetValueBitString(o.handle)
}

// Set writes o to val using an inertial (non-forcing) assignment.
func (o *SimObject) Set(val int32) error {
	return o.backend.SetValueInt32(o.handle, val, false)
}

// Force writes o to val as a forced assignment, overriding its driver
// until Release is called.
func (o *SimObject) Force(val int32) error {
	return o.backend.SetValueInt32(o.handle, val, true)
}

// Release releases a previously forced value on o.
func (o *SimObject) Release() error {
	return o.backend.Release(o.handle)
}

// Set64 writes o to val using an inertial (non-forcing) assignment, for
// widths beyond Set's 32-bit range.
func (o *SimObject) Set64(val int64) error {
	return o.backend.SetValueInt64(o.handle, val, false)
}

// Force64 writes o to val as a forced assignment, for widths beyond
// Force's 32-bit range.
func (o *SimObject) Force64(val int64) error {
	return o.backend.SetValueInt64(o.handle, val, true)
}

// SetBitString writes o from a {0,1,x,z} bit string, inertial.
func (o *SimObject) SetBitString(val string) error {
	return o.setBitString(val, false)
}

// ForceBitString writes o from a {0,1,x,z} bit string, forced.
func (o *SimObject) ForceBitString(val string) error {
	return o.setBitString(val, true)
}

func (o *SimObject) setBitString(val string, force bool) error {
	stripped := strings.NewReplacer("0b", "", "_", "").Replace(val)
	if len(stripped) != o.size {
		return fmt.Errorf("rstb: setting %s to %q: %w", o.Name(), val, ErrWidthMismatch)
	}
	for _, c := range stripped {
		switch c {
		case '0', '1', 'x', 'z', 'X', 'Z':
		default:
			return fmt.Errorf("rstb: setting %s to %q: %w", o.Name(), val, ErrInvalidBitChar)
		}
	}
	return o.backend.SetValueBitString(o.handle, stripped, force)
}
