// pkg/dom/events.go
package dom

import "golang.org/x/net/html"

// Event types dispatched by the document's synthetic gestures.
const (
	EventFocusIn    = "focusin"
	EventMouseDown  = "mousedown"
	EventTouchStart = "touchstart"
	EventClick      = "click"
	EventKeyDown    = "keydown"
)

// Key values carried by keydown events, mirroring the host convention.
const (
	KeyTab    = "Tab"
	KeyEscape = "Escape"
)

// Event is one dispatched occurrence. Handlers mutate its control flags via
// PreventDefault / StopPropagation / StopImmediatePropagation.
type Event struct {
	Type   string
	Target *Element

	// Key and ShiftKey are set for keydown events only.
	Key      string
	ShiftKey bool

	defaultPrevented   bool
	stopped            bool
	stoppedImmediately bool
}

// PreventDefault cancels the host's default action for the gesture that
// produced this event.
func (ev *Event) PreventDefault() { ev.defaultPrevented = true }

// DefaultPrevented reports whether a handler cancelled the default action.
func (ev *Event) DefaultPrevented() bool { return ev.defaultPrevented }

// StopPropagation prevents the event from reaching listeners on any further
// node; listeners already running on the current node still complete.
func (ev *Event) StopPropagation() { ev.stopped = true }

// StopImmediatePropagation prevents any further listener, including remaining
// listeners on the current node, from seeing the event.
func (ev *Event) StopImmediatePropagation() {
	ev.stopped = true
	ev.stoppedImmediately = true
}

// Handler receives a dispatched event.
type Handler func(*Event)

type listener struct {
	id      int
	typ     string
	capture bool
	fn      Handler
}

// Listener identifies one registration for later removal.
type Listener struct {
	el *Element
	id int
}

// AddListener registers a handler on the element for one event type, in
// either the capture or bubble phase. The returned Listener removes exactly
// this registration.
func (e *Element) AddListener(typ string, capture bool, fn Handler) Listener {
	e.doc.listenerSeq++
	l := &listener{id: e.doc.listenerSeq, typ: typ, capture: capture, fn: fn}
	e.listeners = append(e.listeners, l)
	return Listener{el: e, id: l.id}
}

// Remove unregisters the listener. Removing twice is harmless.
func (l Listener) Remove() {
	if l.el == nil {
		return
	}
	for i, reg := range l.el.listeners {
		if reg.id == l.id {
			l.el.listeners = append(l.el.listeners[:i], l.el.listeners[i+1:]...)
			return
		}
	}
}

// ListenerCount returns the number of registrations on the element.
func (e *Element) ListenerCount() int {
	return len(e.listeners)
}

// dispatch walks the capture path (root towards target) then the bubble path
// (target towards root), invoking matching listeners. Listener sets are
// snapshotted per node so handlers may add or remove registrations without
// perturbing the in-flight dispatch.
func (d *Document) dispatch(ev *Event) {
	var path []*Element
	for n := ev.Target.node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode {
			if el, ok := d.elements[n]; ok {
				path = append(path, el)
			}
		}
	}

	// Capture phase: outermost ancestor first, target last.
	for i := len(path) - 1; i >= 0; i-- {
		if !d.invoke(path[i], ev, true) {
			return
		}
		if ev.stopped && path[i] != ev.Target {
			return
		}
	}

	// Bubble phase: target first, outermost ancestor last.
	for _, el := range path {
		if !d.invoke(el, ev, false) {
			return
		}
		if ev.stopped {
			return
		}
	}
}

// invoke runs the element's listeners for one phase. It returns false once
// the event has been stopped immediately.
func (d *Document) invoke(el *Element, ev *Event, capture bool) bool {
	snapshot := make([]*listener, len(el.listeners))
	copy(snapshot, el.listeners)
	for _, l := range snapshot {
		if l.typ != ev.Type || l.capture != capture {
			continue
		}
		if ev.stoppedImmediately {
			return false
		}
		l.fn(ev)
	}
	return !ev.stoppedImmediately
}

// Click performs a full pointer activation on the element: mousedown, then
// focus-follows-pointer unless the mousedown default was prevented, then the
// click itself. An unprevented click on an anchor with an href records a
// navigation. Scheduled tasks run after the whole gesture.
func (d *Document) Click(el *Element) {
	d.beginTurn()
	defer d.endTurn()

	down := &Event{Type: EventMouseDown, Target: el}
	d.dispatch(down)
	if !down.defaultPrevented {
		el.Focus()
	}

	click := &Event{Type: EventClick, Target: el}
	d.dispatch(click)
	if !click.defaultPrevented && el.TagName() == "a" {
		if href, ok := el.Attr("href"); ok {
			d.Navigations = append(d.Navigations, href)
		}
	}
}

// TouchStart performs the touch analogue of a pointer press: touchstart, then
// focus-follows-pointer unless prevented.
func (d *Document) TouchStart(el *Element) {
	d.beginTurn()
	defer d.endTurn()

	ev := &Event{Type: EventTouchStart, Target: el}
	d.dispatch(ev)
	if !ev.defaultPrevented {
		el.Focus()
	}
}

// Keydown dispatches a key press targeting the focused element (or the body
// when nothing holds focus). An unprevented Tab runs the installed native tab
// navigator. Scheduled tasks run after the gesture.
func (d *Document) Keydown(key string, shift bool) {
	d.beginTurn()
	defer d.endTurn()

	target := d.ActiveElement()
	if target == nil {
		target = d.Body()
	}

	ev := &Event{Type: EventKeyDown, Target: target, Key: key, ShiftKey: shift}
	d.dispatch(ev)

	if !ev.defaultPrevented && key == KeyTab && d.tabNav != nil {
		if next := d.tabNav(target, shift); next != nil {
			next.Focus()
		}
	}
}
