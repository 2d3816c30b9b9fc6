package live

import "sync"

// Map returns a value that emits fn(a) for every new emission a of src.
// While the result has no observers it holds no subscription on src; when
// observed again it only recomputes if src emitted in the meantime.
func Map[A, B any](src Source[A], fn func(A) B) *Value[B] {
	in := src.value()
	out := &Value[B]{}
	l := &mapLink{}

	out.onActive = func() {
		l.mu.Lock()
		since := l.seen
		l.mu.Unlock()

		cancel := in.observe(since, func(a A, ver uint64) {
			l.mu.Lock()
			l.seen = ver
			l.mu.Unlock()
			out.emit(fn(a))
		})

		l.mu.Lock()
		l.cancel = cancel
		l.mu.Unlock()
	}
	out.onInactive = l.detach
	return out
}

type mapLink struct {
	mu     sync.Mutex
	cancel func()
	seen   uint64
}

func (l *mapLink) detach() {
	l.mu.Lock()
	cancel := l.cancel
	l.cancel = nil
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// SwitchMap returns a value that mirrors the inner value fn(a) for the latest
// emission a of src. On every switch the subscription to the previous inner
// value is cancelled before the next one is attached, and anything the
// previous inner value delivers afterwards is dropped. A nil inner value
// leaves the result silent until the next switch.
func SwitchMap[A, B any](src Source[A], fn func(A) Source[B]) *Value[B] {
	in := src.value()
	out := &Value[B]{}
	l := &switchLink[B]{out: out}

	out.onActive = func() {
		l.mu.Lock()
		since := l.srcSeen
		inner := l.inner
		innerSeen := l.innerSeen
		gen := l.gen
		l.mu.Unlock()

		cancel := in.observe(since, func(a A, ver uint64) {
			var next *Value[B]
			if s := fn(a); s != nil {
				next = s.value()
			}
			l.switchTo(next, ver)
		})

		l.mu.Lock()
		l.srcCancel = cancel
		resume := inner != nil && gen == l.gen
		l.mu.Unlock()

		// src did not move while inactive: pick the old inner back up
		if resume {
			l.attach(inner, gen, innerSeen)
		}
	}
	out.onInactive = l.detach
	return out
}

type switchLink[B any] struct {
	out *Value[B]

	mu          sync.Mutex
	srcCancel   func()
	srcSeen     uint64
	inner       *Value[B]
	innerCancel func()
	innerSeen   uint64
	gen         uint64
}

func (l *switchLink[B]) switchTo(next *Value[B], srcVer uint64) {
	l.mu.Lock()
	l.srcSeen = srcVer
	prev := l.innerCancel
	l.innerCancel = nil
	l.gen++
	gen := l.gen
	if next != l.inner {
		l.inner = next
		l.innerSeen = 0
	}
	since := l.innerSeen
	l.mu.Unlock()

	if prev != nil {
		prev()
	}
	if next != nil {
		l.attach(next, gen, since)
	}
}

func (l *switchLink[B]) attach(inner *Value[B], gen, since uint64) {
	cancel := inner.observe(since, func(b B, ver uint64) {
		l.mu.Lock()
		stale := gen != l.gen
		if !stale {
			l.innerSeen = ver
		}
		l.mu.Unlock()
		if stale {
			return
		}
		l.out.emit(b)
	})

	l.mu.Lock()
	if gen == l.gen {
		l.innerCancel = cancel
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()
	cancel()
}

func (l *switchLink[B]) detach() {
	l.mu.Lock()
	srcCancel, innerCancel := l.srcCancel, l.innerCancel
	l.srcCancel, l.innerCancel = nil, nil
	l.gen++
	l.mu.Unlock()

	if innerCancel != nil {
		innerCancel()
	}
	if srcCancel != nil {
		srcCancel()
	}
}
