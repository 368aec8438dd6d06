// pkg/dom/element.go
package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Element is an opaque, non-owning reference to one node of a Document's
// tree. The document owns the node; an Element stays valid as a handle even
// after its node is detached, but focus and queries treat detached elements
// as absent. Elements from the same Document compare equal by pointer.
type Element struct {
	doc  *Document
	node *html.Node

	listeners []*listener
}

// Document returns the owning document.
func (e *Element) Document() *Document {
	return e.doc
}

// TagName returns the lowercase tag name.
func (e *Element) TagName() string {
	return e.node.Data
}

// Attr returns the value of an attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether an attribute is present, regardless of value.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(name, value string) {
	for i, a := range e.node.Attr {
		if a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(name string) {
	for i, a := range e.node.Attr {
		if a.Key == name {
			e.node.Attr = append(e.node.Attr[:i], e.node.Attr[i+1:]...)
			return
		}
	}
}

// ID returns the id attribute, or "".
func (e *Element) ID() string {
	id, _ := e.Attr("id")
	return id
}

// Parent returns the parent element, or nil at the tree root.
func (e *Element) Parent() *Element {
	for p := e.node.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return e.doc.element(p)
		}
	}
	return nil
}

// Contains reports whether other is e itself or a descendant of e.
func (e *Element) Contains(other *Element) bool {
	if other == nil {
		return false
	}
	for n := other.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// Attached reports whether the element is still part of its document's tree.
func (e *Element) Attached() bool {
	for n := e.node; n != nil; n = n.Parent {
		if n == e.doc.root {
			return true
		}
	}
	return false
}

// Detach removes the element's subtree from the document. Listener
// registrations on detached elements are kept but become unreachable by
// dispatch, matching the stale-reference tolerance the engine requires.
func (e *Element) Detach() {
	if e.node.Parent != nil {
		e.node.Parent.RemoveChild(e.node)
	}
}

// Find returns the descendants of e matching a CSS selector, in depth-first
// document order. An invalid selector or detached subtree yields an empty
// result rather than an error.
func (e *Element) Find(selector string) []*Element {
	sel := goquery.NewDocumentFromNode(e.node).Find(selector)
	out := make([]*Element, 0, len(sel.Nodes))
	for _, n := range sel.Nodes {
		if n.Type == html.ElementNode {
			out = append(out, e.doc.element(n))
		}
	}
	return out
}

// First returns the first descendant of e matching a CSS selector, or nil.
func (e *Element) First(selector string) *Element {
	matches := e.Find(selector)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// Focus moves document focus to the element and dispatches a bubbling focusin
// event. Focusing a detached element is a silent no-op; so is refocusing the
// element that already holds focus.
func (e *Element) Focus() {
	d := e.doc
	if !e.Attached() {
		return
	}
	if d.ActiveElement() == e {
		return
	}

	d.beginTurn()
	defer d.endTurn()

	d.active = e
	d.dispatch(&Event{Type: EventFocusIn, Target: e})
}

// String renders a short description for logs: tag plus id when present.
func (e *Element) String() string {
	var sb strings.Builder
	sb.WriteString(e.node.Data)
	if id := e.ID(); id != "" {
		sb.WriteString("#")
		sb.WriteString(id)
	}
	return sb.String()
}
