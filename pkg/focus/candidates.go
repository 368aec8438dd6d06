// pkg/focus/candidates.go
// Package focus implements focus containment for document trees: a Trap
// confines keyboard and pointer focus to a target subtree, enforces a cyclic
// tab order inside it, intercepts escaping interactions, and restores focus
// on release. Traps sharing a wider scope compose so activation can move
// between sibling targets without losing scope-wide behavior.
package focus

import (
	"strconv"

	"github.com/xkilldash9x/keyfence/pkg/dom"
)

// candidateSelector enumerates every element shape eligible for focus. The
// scan deliberately keeps natural document order; no re-sorting by tabindex
// value is performed, matching native subtree tab order for non-positive
// indices.
const candidateSelector = `input:not([inert]),` +
	`select:not([inert]),` +
	`textarea:not([inert]),` +
	`a[href]:not([inert]),` +
	`button:not([inert]),` +
	`[tabindex]:not(slot):not([inert]),` +
	`audio[controls]:not([inert]),` +
	`video[controls]:not([inert]),` +
	`[contenteditable]:not([contenteditable="false"]):not([inert]),` +
	`details>summary:first-of-type:not([inert]),` +
	`details:not([inert])`

// nativelyFocusable lists tags that participate in tab order without an
// explicit tabindex attribute.
var nativelyFocusable = map[string]bool{
	"input":    true,
	"select":   true,
	"textarea": true,
	"button":   true,
	"summary":  true,
	"details":  true,
}

func isDisabled(el *dom.Element) bool {
	v, ok := el.Attr("disabled")
	return ok && v == "true"
}

func isInert(el *dom.Element) bool {
	v, ok := el.Attr("inert")
	return ok && v == "true"
}

func hasInertAncestor(el *dom.Element) bool {
	for p := el.Parent(); p != nil; p = p.Parent() {
		if isInert(p) {
			return true
		}
	}
	return false
}

func isHiddenInput(el *dom.Element) bool {
	if el.TagName() != "input" {
		return false
	}
	t, _ := el.Attr("type")
	return t == "hidden"
}

// TabIndex resolves the element's effective tab index: an explicit parseable
// tabindex attribute wins; otherwise natively focusable elements default to 0
// and everything else to -1.
func TabIndex(el *dom.Element) int {
	if raw, ok := el.Attr("tabindex"); ok {
		if idx, err := strconv.Atoi(raw); err == nil {
			return idx
		}
	}
	tag := el.TagName()
	if nativelyFocusable[tag] {
		return 0
	}
	if tag == "a" && el.HasAttr("href") {
		return 0
	}
	if (tag == "audio" || tag == "video") && el.HasAttr("controls") {
		return 0
	}
	if v, ok := el.Attr("contenteditable"); ok && v != "false" {
		return 0
	}
	return -1
}

// IsFocusable reports whether the element can receive focus: not disabled,
// not inert, no inert ancestor, and not a hidden input.
func IsFocusable(el *dom.Element) bool {
	return !isDisabled(el) && !isInert(el) && !hasInertAncestor(el) && !isHiddenInput(el)
}

// IsTabbable reports whether the element is reachable by keyboard traversal:
// focusable with a non-negative tab index.
func IsTabbable(el *dom.Element) bool {
	return TabIndex(el) >= 0 && IsFocusable(el)
}

// Candidates scans the container subtree for focus candidates passing the
// filter, in depth-first document order. The scan is never cached; callers
// re-run it per keypress because the tree may mutate between events. A failed
// or invalid subtree query degrades to an empty sequence.
func Candidates(container *dom.Element, filter func(*dom.Element) bool) []*dom.Element {
	matches := container.Find(candidateSelector)
	out := make([]*dom.Element, 0, len(matches))
	for _, el := range matches {
		if filter(el) {
			out = append(out, el)
		}
	}
	return out
}

func firstCandidate(container *dom.Element, filter func(*dom.Element) bool) *dom.Element {
	for _, el := range container.Find(candidateSelector) {
		if filter(el) {
			return el
		}
	}
	return nil
}

// TabCandidates returns the container's keyboard-reachable candidates.
func TabCandidates(container *dom.Element) []*dom.Element {
	return Candidates(container, IsTabbable)
}

// FocusCandidates returns the container's focusable candidates.
func FocusCandidates(container *dom.Element) []*dom.Element {
	return Candidates(container, IsFocusable)
}

// FirstTabCandidate returns the first keyboard-reachable candidate without
// materializing the full sequence filter pass.
func FirstTabCandidate(container *dom.Element) *dom.Element {
	return firstCandidate(container, IsTabbable)
}

// FirstFocusCandidate returns the first focusable candidate. Hot path of
// trap activation under the Auto initial-focus policy.
func FirstFocusCandidate(container *dom.Element) *dom.Element {
	return firstCandidate(container, IsFocusable)
}

// Navigator adapts the locator into the document's native tab traversal:
// plain document-order cycling over the body-wide tab candidates. Hosts
// install it with Document.SetTabNavigator.
func Navigator(doc *dom.Document) dom.TabNavigator {
	return func(from *dom.Element, backward bool) *dom.Element {
		seq := TabCandidates(doc.Body())
		if len(seq) == 0 {
			return nil
		}
		pos := -1
		for i, el := range seq {
			if el == from {
				pos = i
				break
			}
		}
		if backward {
			if pos <= 0 {
				return seq[len(seq)-1]
			}
			return seq[pos-1]
		}
		if pos == -1 || pos == len(seq)-1 {
			return seq[0]
		}
		return seq[pos+1]
	}
}
