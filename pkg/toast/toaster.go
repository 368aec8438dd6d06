// pkg/toast/toaster.go
package toast

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type timeoutKind int

const (
	timeoutDefault timeoutKind = iota
	timeoutNone
	timeoutAfter
)

type timeoutPolicy struct {
	kind timeoutKind
	d    time.Duration
}

// TimeoutPolicy selects how long a toast lives before deferred dismissal.
type TimeoutPolicy struct {
	policy timeoutPolicy
}

// DefaultTimeout defers dismissal by the store's configured default.
func DefaultTimeout() TimeoutPolicy {
	return TimeoutPolicy{policy: timeoutPolicy{kind: timeoutDefault}}
}

// NoTimeout keeps the toast until explicitly dismissed.
func NoTimeout() TimeoutPolicy {
	return TimeoutPolicy{policy: timeoutPolicy{kind: timeoutNone}}
}

// After defers dismissal by an explicit duration.
func After(d time.Duration) TimeoutPolicy {
	return TimeoutPolicy{policy: timeoutPolicy{kind: timeoutAfter, d: d}}
}

// EventKind discriminates store events.
type EventKind int

const (
	// EventCreated fires when a toast is added.
	EventCreated EventKind = iota
	// EventUpdated fires when a live toast's content is replaced.
	EventUpdated
	// EventDismissed fires when a toast is dismissed.
	EventDismissed
)

// Event is one store notification delivered to subscribers.
type Event struct {
	Kind   EventKind
	Handle Handle
	// Reason is set for EventDismissed only.
	Reason DismissReason
}

type subscriber struct {
	id uint64
	fn func(Event)
}

// Options configure a Toaster.
type Options struct {
	// timeout is the default deferred-dismiss delay; nil disables it.
	timeout *time.Duration
	logger  *zap.Logger
}

// DefaultOptions returns the stock configuration: four second default
// timeout, nop logger.
func DefaultOptions() Options {
	d := 4 * time.Second
	return Options{timeout: &d}
}

// WithTimeout sets the default deferred-dismiss delay.
func (o Options) WithTimeout(d time.Duration) Options {
	o.timeout = &d
	return o
}

// WithoutTimeout disables the default deferred dismissal.
func (o Options) WithoutTimeout() Options {
	o.timeout = nil
	return o
}

// WithLogger sets the store logger.
func (o Options) WithLogger(l *zap.Logger) Options {
	o.logger = l
	return o
}

// Toaster is a thread-safe toast store with pub/sub change notification.
// Copies share state.
type Toaster struct {
	state *toasterState
}

type toasterState struct {
	mu sync.Mutex

	opts   Options
	logger *zap.Logger

	toasts  map[Handle]Toast
	subs    []subscriber
	subSeq  uint64
	// timers tracks live dismissal timers so Shutdown can stop them.
	timers map[Handle]*time.Timer
}

// New creates an empty store.
func New(opts Options) Toaster {
	logger := opts.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return Toaster{state: &toasterState{
		opts:   opts,
		logger: logger,
		toasts: make(map[Handle]Toast),
		timers: make(map[Handle]*time.Timer),
	}}
}

// Add inserts a toast, arms its dismissal timer per the toast's timeout
// policy, and publishes a created event. Returns the toast's handle.
func (t Toaster) Add(toast Toast) Handle {
	st := t.state
	st.mu.Lock()

	handle := newHandle()
	st.toasts[handle] = toast

	var delay *time.Duration
	switch toast.timeout.kind {
	case timeoutDefault:
		delay = st.opts.timeout
	case timeoutAfter:
		d := toast.timeout.d
		delay = &d
	case timeoutNone:
		delay = nil
	}
	if delay != nil {
		st.timers[handle] = time.AfterFunc(*delay, func() {
			t.Dismiss(handle, DismissTimeout)
		})
	}

	subs := st.snapshotSubs()
	st.mu.Unlock()

	st.logger.Debug("toast added", zap.Stringer("handle", handle), zap.String("title", toast.Title))
	publish(subs, Event{Kind: EventCreated, Handle: handle})
	return handle
}

// Update replaces the content of a live toast and publishes an updated
// event. Returns false when the handle is unknown or already dismissed.
func (t Toaster) Update(handle Handle, toast Toast) bool {
	st := t.state
	st.mu.Lock()
	existing, ok := st.toasts[handle]
	if !ok || existing.Dismiss != nil {
		st.mu.Unlock()
		return false
	}
	toast.Dismiss = nil
	toast.timeout = existing.timeout
	st.toasts[handle] = toast
	subs := st.snapshotSubs()
	st.mu.Unlock()

	publish(subs, Event{Kind: EventUpdated, Handle: handle})
	return true
}

// Dismiss marks a toast dismissed with the given reason and publishes the
// dismissal. Returns false when no toast has the handle; dismissing an
// already-dismissed toast is a no-op that returns true.
func (t Toaster) Dismiss(handle Handle, reason DismissReason) bool {
	st := t.state
	st.mu.Lock()
	toast, ok := st.toasts[handle]
	if !ok {
		st.mu.Unlock()
		return false
	}
	if toast.Dismiss != nil {
		st.mu.Unlock()
		return true
	}

	r := reason
	toast.Dismiss = &r
	st.toasts[handle] = toast
	if timer, ok := st.timers[handle]; ok {
		timer.Stop()
		delete(st.timers, handle)
	}
	subs := st.snapshotSubs()
	st.mu.Unlock()

	st.logger.Debug("toast dismissed", zap.Stringer("handle", handle), zap.Stringer("reason", reason))
	publish(subs, Event{Kind: EventDismissed, Handle: handle, Reason: reason})
	return true
}

// Get returns a copy of the toast for the handle.
func (t Toaster) Get(handle Handle) (Toast, bool) {
	st := t.state
	st.mu.Lock()
	defer st.mu.Unlock()
	toast, ok := st.toasts[handle]
	return toast, ok
}

// Subscribe registers a callback for store events and returns a token for
// Unsubscribe. Callbacks run outside the store lock, on whichever goroutine
// triggered the event (including timer goroutines for timeout dismissals).
func (t Toaster) Subscribe(fn func(Event)) uint64 {
	st := t.state
	st.mu.Lock()
	defer st.mu.Unlock()
	st.subSeq++
	st.subs = append(st.subs, subscriber{id: st.subSeq, fn: fn})
	return st.subSeq
}

// Unsubscribe removes a subscription. Unknown tokens are ignored.
func (t Toaster) Unsubscribe(token uint64) {
	st := t.state
	st.mu.Lock()
	defer st.mu.Unlock()
	for i, s := range st.subs {
		if s.id == token {
			st.subs = append(st.subs[:i], st.subs[i+1:]...)
			return
		}
	}
}

// Shutdown stops all pending dismissal timers. Toast state is left intact;
// no further timeout dismissals fire.
func (t Toaster) Shutdown() {
	st := t.state
	st.mu.Lock()
	defer st.mu.Unlock()
	for handle, timer := range st.timers {
		timer.Stop()
		delete(st.timers, handle)
	}
}

func (st *toasterState) snapshotSubs() []subscriber {
	out := make([]subscriber, len(st.subs))
	copy(out, st.subs)
	return out
}

func publish(subs []subscriber, ev Event) {
	for _, s := range subs {
		s.fn(ev)
	}
}
