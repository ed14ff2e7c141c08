package store

import "sync"

// Status is the lifecycle state of a facet
type Status string

const (
	StatusIdle    Status = "IDLE"
	StatusLoading Status = "LOADING"
	StatusReady   Status = "READY"
	StatusFailed  Status = "FAILED"
)

// Snapshot is an immutable view of a facet at one transition.
//
// Version increases by one with every transition. Deliveries from
// overlapping operations can reach a subscriber out of order; a snapshot
// with a lower Version than one already seen is stale.
//
// Data keeps the last value that was written, so a failed refresh still
// shows the previous device state next to the error. Err is the most
// recent failure message and is only cleared by a success.
type Snapshot[T any] struct {
	Name    string
	Status  Status
	Loading bool
	Data    T
	Err     string
	Version uint64
}

// Facet holds one piece of observable client state
type Facet[T any] struct {
	name string

	mu   sync.RWMutex
	snap Snapshot[T]
	subs map[uint64]func(Snapshot[T])
	next uint64
}

func newFacet[T any](name string) *Facet[T] {
	return &Facet[T]{
		name: name,
		snap: Snapshot[T]{Name: name, Status: StatusIdle},
		subs: make(map[uint64]func(Snapshot[T])),
	}
}

// Name returns the facet name
func (f *Facet[T]) Name() string {
	return f.name
}

// Snapshot returns the current state
func (f *Facet[T]) Snapshot() Snapshot[T] {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snap
}

// Subscribe registers fn to be called with every transition. fn runs on
// the goroutine that caused the transition and must not block. Calls
// from different operations are not ordered; use Version or re-read
// Snapshot to find the current state. The
// returned function removes the subscription; transitions after that
// are not delivered.
func (f *Facet[T]) Subscribe(fn func(Snapshot[T])) (unsubscribe func()) {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

func (f *Facet[T]) begin() {
	f.update(func(s *Snapshot[T]) {
		s.Status = StatusLoading
		s.Loading = true
	})
}

func (f *Facet[T]) succeed(data T) {
	f.update(func(s *Snapshot[T]) {
		s.Status = StatusReady
		s.Loading = false
		s.Data = data
		s.Err = ""
	})
}

func (f *Facet[T]) fail(msg string) {
	f.update(func(s *Snapshot[T]) {
		s.Status = StatusFailed
		s.Loading = false
		s.Err = msg
	})
}

func (f *Facet[T]) failWith(data T, msg string) {
	f.update(func(s *Snapshot[T]) {
		s.Status = StatusFailed
		s.Loading = false
		s.Data = data
		s.Err = msg
	})
}

func (f *Facet[T]) update(mutate func(*Snapshot[T])) {
	f.mu.Lock()
	mutate(&f.snap)
	f.snap.Version++
	snap := f.snap
	subs := make([]func(Snapshot[T]), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
