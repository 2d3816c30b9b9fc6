// Package live provides observable values that form a derived state graph.
//
// A Value holds the latest emission of a stream and a version that grows by
// one on every emission. Observers attach with Observe and receive the current
// value synchronously, then every later emission in attachment order. Derived
// values (Map, SwitchMap) only subscribe upstream while they have observers of
// their own, so an unobserved graph does no work.
package live

import (
	"sync"
	"sync/atomic"
)

// Source is implemented by every observable value in this package.
type Source[T any] interface {
	value() *Value[T]
}

// Value is a read-only observable value.
type Value[T any] struct {
	mu        sync.Mutex
	current   T
	set       bool
	version   uint64
	observers []*observer[T]
	closed    bool

	// fired outside the lock on the 0->1 and 1->0 observer transitions
	onActive   func()
	onInactive func()
}

type observer[T any] struct {
	fn     func(T, uint64)
	seen   uint64 // guarded by Value.mu
	active atomic.Bool
}

func (v *Value[T]) value() *Value[T] { return v }

// Get returns the current value and whether one has been emitted.
func (v *Value[T]) Get() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current, v.set
}

// Version returns the number of emissions so far.
func (v *Value[T]) Version() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.version
}

// HasObservers reports whether at least one observer is attached.
func (v *Value[T]) HasObservers() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.observers) > 0
}

// Observe attaches fn and returns a function that detaches it. If a value is
// already set it is delivered before Observe returns. The cancel function is
// idempotent.
func (v *Value[T]) Observe(fn func(T)) func() {
	return v.observe(0, func(val T, _ uint64) { fn(val) })
}

// observe attaches fn, skipping any version <= since.
func (v *Value[T]) observe(since uint64, fn func(T, uint64)) func() {
	o := &observer[T]{fn: fn, seen: since}
	o.active.Store(true)

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return func() {}
	}
	v.observers = append(v.observers, o)
	first := len(v.observers) == 1
	onActive := v.onActive
	v.mu.Unlock()

	if first && onActive != nil {
		onActive()
	}

	// activation may already have delivered a fresh value to o
	v.mu.Lock()
	deliver := v.set && o.active.Load() && o.seen < v.version
	val, ver := v.current, v.version
	if deliver {
		o.seen = ver
	}
	v.mu.Unlock()
	if deliver {
		fn(val, ver)
	}

	var once sync.Once
	return func() {
		once.Do(func() { v.detach(o) })
	}
}

func (v *Value[T]) detach(o *observer[T]) {
	o.active.Store(false)

	v.mu.Lock()
	idx := -1
	for i, cur := range v.observers {
		if cur == o {
			idx = i
			break
		}
	}
	if idx < 0 {
		v.mu.Unlock()
		return
	}
	v.observers = append(v.observers[:idx:idx], v.observers[idx+1:]...)
	last := len(v.observers) == 0
	onInactive := v.onInactive
	v.mu.Unlock()

	if last && onInactive != nil {
		onInactive()
	}
}

// emit stores val as a new version and delivers it to the attached observers.
func (v *Value[T]) emit(val T) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.current = val
	v.set = true
	v.version++
	ver := v.version
	targets := make([]*observer[T], 0, len(v.observers))
	for _, o := range v.observers {
		if o.seen < ver {
			o.seen = ver
			targets = append(targets, o)
		}
	}
	v.mu.Unlock()

	for _, o := range targets {
		if o.active.Load() {
			o.fn(val, ver)
		}
	}
}

// Close detaches every observer and stops further emissions. Observe on a
// closed value returns a no-op cancel function.
func (v *Value[T]) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	had := len(v.observers) > 0
	for _, o := range v.observers {
		o.active.Store(false)
	}
	v.observers = nil
	onInactive := v.onInactive
	v.mu.Unlock()

	if had && onInactive != nil {
		onInactive()
	}
}

// Closed reports whether Close has been called.
func (v *Value[T]) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// Mutable is a root value that can be written directly.
type Mutable[T any] struct {
	*Value[T]
}

// NewMutable returns a Mutable with no value set.
func NewMutable[T any]() *Mutable[T] {
	return &Mutable[T]{Value: &Value[T]{}}
}

// NewMutableOf returns a Mutable holding initial.
func NewMutableOf[T any](initial T) *Mutable[T] {
	m := NewMutable[T]()
	m.current = initial
	m.set = true
	m.version = 1
	return m
}

// NewLazy returns a Mutable that calls start once, the first time it gains an
// observer.
func NewLazy[T any](start func()) *Mutable[T] {
	m := NewMutable[T]()
	var once sync.Once
	m.onActive = func() { once.Do(start) }
	return m
}

// Set emits val unconditionally.
func (m *Mutable[T]) Set(val T) {
	m.emit(val)
}

// SetIfChanged emits val unless a value is set and eq(old, val) holds.
// It reports whether val was emitted.
func (m *Mutable[T]) SetIfChanged(val T, eq func(a, b T) bool) bool {
	m.mu.Lock()
	same := m.set && eq(m.current, val)
	m.mu.Unlock()
	if same {
		return false
	}
	m.emit(val)
	return true
}

// Post schedules val to be emitted through d.
func (m *Mutable[T]) Post(d Dispatcher, val T) {
	d.Dispatch(func() { m.emit(val) })
}
