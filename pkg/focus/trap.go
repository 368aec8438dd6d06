// pkg/focus/trap.go
package focus

import (
	"sync"

	"github.com/xkilldash9x/keyfence/pkg/dom"
)

// InitialFocusKind selects how a trap resolves its initial focus target on
// activation.
type InitialFocusKind int

const (
	// InitialNone leaves focus where it is.
	InitialNone InitialFocusKind = iota
	// InitialAuto focuses the first focus candidate inside the target.
	InitialAuto
	// InitialSelector focuses the first document-wide match of a selector.
	InitialSelector
	// InitialElement focuses a specific element.
	InitialElement
	// InitialFunc focuses the element returned by a callback.
	InitialFunc
)

// InitialFocus is the policy evaluated once per activation. The zero value is
// InitialNone; use the constructors for the other variants.
type InitialFocus struct {
	kind     InitialFocusKind
	selector string
	element  *dom.Element
	fn       func() *dom.Element
}

// NoInitialFocus keeps focus untouched on activation.
func NoInitialFocus() InitialFocus { return InitialFocus{kind: InitialNone} }

// AutoInitialFocus focuses the first focus candidate inside the target.
func AutoInitialFocus() InitialFocus { return InitialFocus{kind: InitialAuto} }

// SelectorInitialFocus focuses the first document match of the selector;
// ignored when nothing matches.
func SelectorInitialFocus(selector string) InitialFocus {
	return InitialFocus{kind: InitialSelector, selector: selector}
}

// ElementInitialFocus focuses the given element verbatim.
func ElementInitialFocus(el *dom.Element) InitialFocus {
	return InitialFocus{kind: InitialElement, element: el}
}

// FuncInitialFocus focuses whatever the callback returns at activation time.
func FuncInitialFocus(fn func() *dom.Element) InitialFocus {
	return InitialFocus{kind: InitialFunc, fn: fn}
}

// Hooks are optional callbacks observing trap transitions. They run while the
// trap's state is held exclusively: calling back into the same trap from a
// hook deadlocks and is a caller error, not a supported pattern.
type Hooks struct {
	Activate   func()
	Deactivate func()
}

// Options configure one trap. Immutable once the trap is created.
type Options struct {
	// ReturnFocus restores focus to the element focused before activation
	// when the trap deactivates.
	ReturnFocus bool
	// InitialFocus picks the element focused on activation.
	InitialFocus InitialFocus
	// DeactivateOnEscape deactivates the trap when Escape is pressed inside
	// the scope.
	DeactivateOnEscape bool
	// Hooks observe activation and deactivation.
	Hooks Hooks
	// Scope is the subtree the interceptor listens on, and the universe for
	// the scope-aware tab wrap. Defaults to the document body.
	Scope *dom.Element
	// Target is the subtree focus is confined to. Required.
	Target *dom.Element
}

// OptionsBuilder assembles Options with the defaults of the engine:
// return focus on, auto initial focus, no escape deactivation, body scope.
type OptionsBuilder struct {
	opts Options
}

// NewOptions starts a builder.
func NewOptions() *OptionsBuilder {
	return &OptionsBuilder{opts: Options{
		ReturnFocus:  true,
		InitialFocus: AutoInitialFocus(),
	}}
}

func (b *OptionsBuilder) ReturnFocus(v bool) *OptionsBuilder {
	b.opts.ReturnFocus = v
	return b
}

func (b *OptionsBuilder) InitialFocus(p InitialFocus) *OptionsBuilder {
	b.opts.InitialFocus = p
	return b
}

func (b *OptionsBuilder) DeactivateOnEscape(v bool) *OptionsBuilder {
	b.opts.DeactivateOnEscape = v
	return b
}

func (b *OptionsBuilder) Hooks(h Hooks) *OptionsBuilder {
	b.opts.Hooks = h
	return b
}

func (b *OptionsBuilder) Scope(el *dom.Element) *OptionsBuilder {
	b.opts.Scope = el
	return b
}

func (b *OptionsBuilder) Target(el *dom.Element) *OptionsBuilder {
	b.opts.Target = el
	return b
}

// Build finalizes the options. It panics if no target was set; a trap without
// a target is a construction error, never a runtime condition.
func (b *OptionsBuilder) Build() Options {
	opts := b.opts
	if opts.Target == nil {
		panic("focus: target must be set to build trap options")
	}
	if opts.Scope == nil {
		opts.Scope = opts.Target.Document().Body()
	}
	return opts
}

// state is the single source of truth for one trap. It is owned exclusively
// by one Trap identity and reached only under its mutex; interceptor
// listeners close over it and bail out once the trap is released, so
// late-firing callbacks of a destroyed trap degrade to no-ops.
type state struct {
	mu sync.Mutex

	opts      Options
	activated bool
	released  bool

	// lastFocus is the most recent in-bounds focus target; always a
	// descendant of the target at the time of capture.
	lastFocus *dom.Element
	// returnTo is the element focused before activation.
	returnTo *dom.Element

	listeners []dom.Listener
}

// Trap is a freely copyable handle to shared trap state. All mutating
// operations hold the state exclusively for their duration.
type Trap struct {
	state *state
}

// New creates a deactivated trap from the options.
func New(opts Options) *Trap {
	return &Trap{state: &state{opts: opts}}
}

// Options returns the options the trap was constructed with.
func (t *Trap) Options() Options {
	t.state.mu.Lock()
	defer t.state.mu.Unlock()
	return t.state.opts
}

// IsActivated reports whether the trap is currently active.
func (t *Trap) IsActivated() bool {
	t.state.mu.Lock()
	defer t.state.mu.Unlock()
	return t.state.activated
}

// Activate turns the trap on. No-op when already activated.
func (t *Trap) Activate() {
	t.state.mu.Lock()
	defer t.state.mu.Unlock()
	t.state.activate()
}

// Deactivate turns the trap off. No-op when already deactivated.
func (t *Trap) Deactivate() {
	t.state.mu.Lock()
	defer t.state.mu.Unlock()
	t.state.deactivate()
}

// Close releases the trap: listeners are force-removed regardless of state so
// no dangling scope-level registrations survive, and in-flight deferred
// callbacks referencing the trap become no-ops. A closed trap cannot be
// reactivated.
func (t *Trap) Close() {
	t.state.mu.Lock()
	defer t.state.mu.Unlock()
	t.state.removeListeners()
	t.state.activated = false
	t.state.released = true
}

func (s *state) activate() {
	if s.activated || s.released {
		return
	}
	s.activated = true

	s.returnTo = s.opts.Target.Document().ActiveElement()
	s.addListeners()
	s.initialFocus()

	if s.opts.Hooks.Activate != nil {
		s.opts.Hooks.Activate()
	}
}

func (s *state) deactivate() {
	if !s.activated {
		return
	}
	s.activated = false

	s.removeListeners()
	if s.opts.ReturnFocus && s.returnTo != nil {
		scheduleFocus(s.opts.Target.Document(), s.returnTo)
	}

	if s.opts.Hooks.Deactivate != nil {
		s.opts.Hooks.Deactivate()
	}
}

// addListeners registers the full interceptor set on the scope in one shot;
// registration is all-or-nothing so the count is always zero or the fixed
// constant. Keydown is registered in both capture and bubble phase because
// some hosts only honor preventDefault for tab traversal from the bubble
// handler; the handler tolerates running twice per logical keypress.
func (s *state) addListeners() {
	scope := s.opts.Scope
	s.listeners = []dom.Listener{
		scope.AddListener(dom.EventFocusIn, true, s.handler((*state).handleFocusIn)),
		scope.AddListener(dom.EventMouseDown, true, s.handler((*state).handlePointerDown)),
		scope.AddListener(dom.EventTouchStart, true, s.handler((*state).handlePointerDown)),
		scope.AddListener(dom.EventClick, true, s.handler((*state).handleClick)),
		scope.AddListener(dom.EventKeyDown, true, s.handler((*state).handleKeyDown)),
		scope.AddListener(dom.EventKeyDown, false, s.handler((*state).handleKeyDown)),
	}
}

func (s *state) removeListeners() {
	for _, l := range s.listeners {
		l.Remove()
	}
	s.listeners = nil
}

// handler wraps a state method as a dom.Handler that acquires the state and
// no-ops once the trap has been released.
func (s *state) handler(fn func(*state, *dom.Event)) dom.Handler {
	return func(ev *dom.Event) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.released || !s.activated {
			return
		}
		fn(s, ev)
	}
}

// initialFocus resolves the policy once and schedules the focus assignment to
// run after the current turn; focus is never reassigned synchronously inside
// activation.
func (s *state) initialFocus() {
	var el *dom.Element
	switch s.opts.InitialFocus.kind {
	case InitialNone:
		return
	case InitialAuto:
		el = FirstFocusCandidate(s.opts.Target)
	case InitialSelector:
		el = s.opts.Target.Document().QuerySelector(s.opts.InitialFocus.selector)
	case InitialElement:
		el = s.opts.InitialFocus.element
	case InitialFunc:
		el = s.opts.InitialFocus.fn()
	}
	if el == nil {
		return
	}
	scheduleFocus(s.opts.Target.Document(), el)
}

// handleFocusIn records in-bounds focus movement; an escape is suppressed
// from further listeners and focus is steered back to the last in-bounds
// element.
func (s *state) handleFocusIn(ev *dom.Event) {
	target := ev.Target
	if target == nil {
		return
	}

	if s.opts.Target.Contains(target) {
		s.lastFocus = target
		return
	}

	ev.StopImmediatePropagation()
	if s.lastFocus != nil {
		scheduleFocus(s.opts.Target.Document(), s.lastFocus)
	}
}

// handlePointerDown blocks native focus-follows-pointer on elements outside
// the target without stopping propagation.
func (s *state) handlePointerDown(ev *dom.Event) {
	if ev.Target == nil {
		return
	}
	if !s.opts.Target.Contains(ev.Target) {
		ev.PreventDefault()
	}
}

// handleClick fully suppresses clicks landing outside the target.
func (s *state) handleClick(ev *dom.Event) {
	if ev.Target == nil {
		return
	}
	if !s.opts.Target.Contains(ev.Target) {
		ev.PreventDefault()
		ev.StopImmediatePropagation()
	}
}

func (s *state) handleKeyDown(ev *dom.Event) {
	switch ev.Key {
	case dom.KeyTab:
		s.handleTab(ev)
	case dom.KeyEscape:
		if s.opts.DeactivateOnEscape {
			ev.PreventDefault()
			s.deactivate()
		}
	}
}

// handleTab enforces the cyclic, scope-aware tab order. The candidate
// sequences are recomputed on every keypress; the tree may have mutated since
// the last one. The wrap universe is the body-wide tab sequence filtered to
// elements either outside the scope or inside the target, so sibling targets
// within the same scope are skipped while foreign elements stay reachable.
func (s *state) handleTab(ev *dom.Event) {
	target := ev.Target
	if target == nil {
		return
	}

	inTarget := TabCandidates(s.opts.Target)
	if len(inTarget) == 0 {
		// No tab candidates at all: pin focus in place.
		ev.PreventDefault()
		return
	}

	doc := s.opts.Target.Document()
	wrap := Candidates(doc.Body(), func(el *dom.Element) bool {
		return IsTabbable(el) &&
			(!s.opts.Scope.Contains(el) || s.opts.Target.Contains(el))
	})

	if ev.ShiftKey {
		if target != inTarget[0] {
			return
		}
		ev.PreventDefault()
		scheduleFocus(doc, previousInWrap(wrap, target))
	} else {
		if target != inTarget[len(inTarget)-1] {
			return
		}
		ev.PreventDefault()
		scheduleFocus(doc, nextInWrap(wrap, target))
	}
}

func indexOf(seq []*dom.Element, el *dom.Element) int {
	for i, v := range seq {
		if v == el {
			return i
		}
	}
	return -1
}

func previousInWrap(wrap []*dom.Element, from *dom.Element) *dom.Element {
	if len(wrap) == 0 {
		return nil
	}
	pos := indexOf(wrap, from)
	if pos <= 0 {
		return wrap[len(wrap)-1]
	}
	return wrap[pos-1]
}

func nextInWrap(wrap []*dom.Element, from *dom.Element) *dom.Element {
	if len(wrap) == 0 {
		return nil
	}
	pos := indexOf(wrap, from)
	if pos == -1 || pos == len(wrap)-1 {
		return wrap[0]
	}
	return wrap[pos+1]
}

// scheduleFocus submits a deferred one-shot focus assignment. There is no
// cancellation: a later deactivation does not retract the callback, and
// focusing a by-then-detached element is a silent no-op.
func scheduleFocus(doc *dom.Document, el *dom.Element) {
	if el == nil {
		return
	}
	doc.Schedule(el.Focus)
}
