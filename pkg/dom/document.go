// pkg/dom/document.go
// Package dom provides the headless document model the containment engine
// operates on: a parsed HTML tree with attribute access, ancestry queries,
// capture/bubble event dispatch, focus tracking, and a cooperative
// run-after-this-turn scheduler.
//
// A Document models the single-threaded, callback-driven event loop of a
// browsing host. It is NOT safe for concurrent use; all gestures, focus
// changes, and scheduled tasks must run from one goroutine.
package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// TabNavigator resolves the host's native tab traversal: given the currently
// focused element and the direction, it returns the element focus would move
// to when no handler prevents the default. A nil navigator disables native
// traversal (the Tab key changes nothing unless a listener intervenes).
type TabNavigator func(from *Element, backward bool) *Element

// Document owns a parsed HTML tree and the event/focus machinery around it.
type Document struct {
	root *html.Node
	body *html.Node

	// Stable Element wrappers so refs stay pointer-comparable across queries.
	elements map[*html.Node]*Element

	active *Element

	tabNav TabNavigator

	// Navigations records targets of anchor clicks whose default was not
	// prevented. Observability hook for tests and the demo; a real host would
	// load the URL.
	Navigations []string

	// Deferred one-shot callbacks, drained FIFO after the outermost
	// synthetic event of the current turn returns.
	tasks    []func()
	depth    int
	draining bool

	listenerSeq int
}

// Parse reads an HTML document and wraps it in a Document. The input is
// normalized by the html5 parsing algorithm, so fragments gain html/head/body
// shells automatically.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	body := findElement(root, "body")
	if body == nil {
		return nil, fmt.Errorf("parsed document has no body")
	}

	return &Document{
		root:     root,
		body:     body,
		elements: make(map[*html.Node]*Element),
	}, nil
}

// MustParse parses an HTML string, panicking on error. Intended for tests and
// fixtures where the markup is a literal.
func MustParse(markup string) *Document {
	doc, err := Parse(strings.NewReader(markup))
	if err != nil {
		panic(err)
	}
	return doc
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// Body returns the document body element.
func (d *Document) Body() *Element {
	return d.element(d.body)
}

// element interns the wrapper for a node so two lookups of the same node
// compare equal by pointer.
func (d *Document) element(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	if el, ok := d.elements[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	d.elements[n] = el
	return el
}

// QuerySelector returns the first document-wide match of a CSS selector, or
// nil if nothing matches or the selector is invalid.
func (d *Document) QuerySelector(selector string) *Element {
	return d.Body().First(selector)
}

// QuerySelectorAll returns every document-wide match of a CSS selector in
// depth-first document order. Invalid selectors yield an empty result.
func (d *Document) QuerySelectorAll(selector string) []*Element {
	return d.Body().Find(selector)
}

// ActiveElement returns the element holding focus, or nil if none does. A
// stale focus target (removed from the tree since it was focused) is treated
// as no focus.
func (d *Document) ActiveElement() *Element {
	if d.active != nil && !d.active.Attached() {
		d.active = nil
	}
	return d.active
}

// SetTabNavigator installs the native tab traversal used when a Tab keydown
// completes without preventDefault.
func (d *Document) SetTabNavigator(nav TabNavigator) {
	d.tabNav = nav
}

// Schedule queues fn to run after the current event-handling turn completes.
// Outside a turn, fn runs on the next gesture or explicit Flush. Tasks run
// FIFO; tasks scheduled while draining join the same drain.
func (d *Document) Schedule(fn func()) {
	d.tasks = append(d.tasks, fn)
}

// Flush runs any pending scheduled tasks. Gestures flush automatically; this
// is for callers that scheduled work outside any turn.
func (d *Document) Flush() {
	if d.depth == 0 && !d.draining {
		d.drain()
	}
}

// beginTurn opens an event-handling turn. Tasks scheduled outside any turn
// (e.g. by a programmatic activation) are drained first, so deferred work
// always runs before the next user-initiated event is processed.
func (d *Document) beginTurn() {
	if d.depth == 0 && !d.draining && len(d.tasks) > 0 {
		d.drain()
	}
	d.depth++
}

func (d *Document) endTurn() {
	d.depth--
	if d.depth == 0 && !d.draining {
		d.drain()
	}
}

func (d *Document) drain() {
	d.draining = true
	for len(d.tasks) > 0 {
		task := d.tasks[0]
		d.tasks = d.tasks[1:]
		task()
	}
	d.draining = false
}
