// pkg/dom/dom_test.go
package dom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basicMarkup = `<html><body>
	<div id="outer">
		<div id="inner">
			<button id="btn">Press</button>
		</div>
	</div>
	<a id="link" href="/away">Away</a>
</body></html>`

func TestParseAndQueries(t *testing.T) {
	doc := MustParse(basicMarkup)

	require.NotNil(t, doc.Body())
	assert.Equal(t, "body", doc.Body().TagName())

	btn := doc.QuerySelector("#btn")
	require.NotNil(t, btn)
	assert.Equal(t, "button", btn.TagName())
	assert.Equal(t, "btn", btn.ID())

	// Element interning: two lookups of the same node compare equal.
	again := doc.QuerySelector("#btn")
	assert.Same(t, btn, again)

	// Invalid selectors degrade to empty results, not errors.
	assert.Nil(t, doc.QuerySelector("p:::nope"))
	assert.Empty(t, doc.QuerySelectorAll("[unclosed"))
}

func TestFindDocumentOrder(t *testing.T) {
	doc := MustParse(`<html><body>
		<button id="a"></button>
		<div><button id="b"></button></div>
		<button id="c"></button>
	</body></html>`)

	var ids []string
	for _, el := range doc.QuerySelectorAll("button") {
		ids = append(ids, el.ID())
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, ids); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestContainsAndAttached(t *testing.T) {
	doc := MustParse(basicMarkup)
	outer := doc.QuerySelector("#outer")
	inner := doc.QuerySelector("#inner")
	btn := doc.QuerySelector("#btn")
	link := doc.QuerySelector("#link")

	assert.True(t, outer.Contains(btn))
	assert.True(t, outer.Contains(outer), "an element contains itself")
	assert.False(t, inner.Contains(link))

	assert.True(t, btn.Attached())
	inner.Detach()
	assert.False(t, btn.Attached(), "descendants of a detached subtree are detached")
	assert.True(t, outer.Attached())
}

func TestAttributes(t *testing.T) {
	doc := MustParse(basicMarkup)
	btn := doc.QuerySelector("#btn")

	_, ok := btn.Attr("data-mark")
	assert.False(t, ok)

	btn.SetAttr("data-mark", "1")
	v, ok := btn.Attr("data-mark")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	btn.SetAttr("data-mark", "2")
	v, _ = btn.Attr("data-mark")
	assert.Equal(t, "2", v)

	btn.RemoveAttr("data-mark")
	assert.False(t, btn.HasAttr("data-mark"))
}

func TestDispatchPhaseOrder(t *testing.T) {
	doc := MustParse(basicMarkup)
	body := doc.Body()
	inner := doc.QuerySelector("#inner")
	btn := doc.QuerySelector("#btn")

	var order []string
	record := func(name string) Handler {
		return func(*Event) { order = append(order, name) }
	}

	body.AddListener(EventClick, true, record("body-capture"))
	inner.AddListener(EventClick, true, record("inner-capture"))
	btn.AddListener(EventClick, true, record("target-capture"))
	btn.AddListener(EventClick, false, record("target-bubble"))
	inner.AddListener(EventClick, false, record("inner-bubble"))
	body.AddListener(EventClick, false, record("body-bubble"))

	doc.Click(btn)

	want := []string{
		"body-capture", "inner-capture", "target-capture",
		"target-bubble", "inner-bubble", "body-bubble",
	}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("dispatch order mismatch (-want +got):\n%s", diff)
	}
}

func TestStopImmediatePropagation(t *testing.T) {
	doc := MustParse(basicMarkup)
	body := doc.Body()
	btn := doc.QuerySelector("#btn")

	var reached []string
	body.AddListener(EventClick, true, func(ev *Event) {
		reached = append(reached, "first")
		ev.StopImmediatePropagation()
	})
	body.AddListener(EventClick, true, func(*Event) {
		reached = append(reached, "second")
	})
	btn.AddListener(EventClick, false, func(*Event) {
		reached = append(reached, "target")
	})

	doc.Click(btn)
	assert.Equal(t, []string{"first"}, reached,
		"nothing after StopImmediatePropagation sees the event")
}

func TestStopPropagationFinishesCurrentNode(t *testing.T) {
	doc := MustParse(basicMarkup)
	body := doc.Body()
	btn := doc.QuerySelector("#btn")

	var reached []string
	body.AddListener(EventClick, true, func(ev *Event) {
		reached = append(reached, "first")
		ev.StopPropagation()
	})
	body.AddListener(EventClick, true, func(*Event) {
		reached = append(reached, "second")
	})
	btn.AddListener(EventClick, false, func(*Event) {
		reached = append(reached, "target")
	})

	doc.Click(btn)
	assert.Equal(t, []string{"first", "second"}, reached,
		"listeners on the stopping node still run; other nodes do not")
}

func TestFocusDispatchesFocusIn(t *testing.T) {
	doc := MustParse(basicMarkup)
	btn := doc.QuerySelector("#btn")

	var count int
	doc.Body().AddListener(EventFocusIn, true, func(ev *Event) {
		count++
		assert.Same(t, btn, ev.Target)
	})

	btn.Focus()
	assert.Same(t, btn, doc.ActiveElement())
	assert.Equal(t, 1, count)

	// Refocusing the active element is a no-op.
	btn.Focus()
	assert.Equal(t, 1, count)
}

func TestFocusDetachedIsNoOp(t *testing.T) {
	doc := MustParse(basicMarkup)
	btn := doc.QuerySelector("#btn")
	link := doc.QuerySelector("#link")

	link.Focus()
	btn.Detach()
	btn.Focus()
	assert.Same(t, link, doc.ActiveElement(), "focusing a detached element changes nothing")
}

func TestActiveElementClearsWhenDetached(t *testing.T) {
	doc := MustParse(basicMarkup)
	btn := doc.QuerySelector("#btn")

	btn.Focus()
	require.Same(t, btn, doc.ActiveElement())

	btn.Detach()
	assert.Nil(t, doc.ActiveElement())
}

func TestClickDefaults(t *testing.T) {
	t.Run("focus follows pointer", func(t *testing.T) {
		doc := MustParse(basicMarkup)
		btn := doc.QuerySelector("#btn")
		doc.Click(btn)
		assert.Same(t, btn, doc.ActiveElement())
	})

	t.Run("prevented mousedown keeps focus", func(t *testing.T) {
		doc := MustParse(basicMarkup)
		btn := doc.QuerySelector("#btn")
		doc.Body().AddListener(EventMouseDown, true, func(ev *Event) {
			ev.PreventDefault()
		})
		doc.Click(btn)
		assert.Nil(t, doc.ActiveElement())
	})

	t.Run("anchor click records navigation", func(t *testing.T) {
		doc := MustParse(basicMarkup)
		doc.Click(doc.QuerySelector("#link"))
		assert.Equal(t, []string{"/away"}, doc.Navigations)
	})

	t.Run("prevented click suppresses navigation", func(t *testing.T) {
		doc := MustParse(basicMarkup)
		doc.Body().AddListener(EventClick, true, func(ev *Event) {
			ev.PreventDefault()
		})
		doc.Click(doc.QuerySelector("#link"))
		assert.Empty(t, doc.Navigations)
	})
}

func TestListenerRemoval(t *testing.T) {
	doc := MustParse(basicMarkup)
	btn := doc.QuerySelector("#btn")

	var count int
	l := btn.AddListener(EventClick, false, func(*Event) { count++ })
	assert.Equal(t, 1, btn.ListenerCount())

	doc.Click(btn)
	assert.Equal(t, 1, count)

	l.Remove()
	assert.Equal(t, 0, btn.ListenerCount())
	doc.Click(btn)
	assert.Equal(t, 1, count)

	// Removing twice is harmless.
	l.Remove()
}

func TestSchedulerRunsAfterTurn(t *testing.T) {
	doc := MustParse(basicMarkup)
	btn := doc.QuerySelector("#btn")

	var order []string
	btn.AddListener(EventClick, false, func(*Event) {
		order = append(order, "handler")
		doc.Schedule(func() { order = append(order, "task-1") })
		doc.Schedule(func() { order = append(order, "task-2") })
	})

	doc.Click(btn)
	assert.Equal(t, []string{"handler", "task-1", "task-2"}, order,
		"scheduled tasks run FIFO after the turn's handlers")
}

func TestSchedulerTasksChain(t *testing.T) {
	doc := MustParse(basicMarkup)
	btn := doc.QuerySelector("#btn")

	var order []string
	btn.AddListener(EventClick, false, func(*Event) {
		doc.Schedule(func() {
			order = append(order, "outer")
			doc.Schedule(func() { order = append(order, "nested") })
		})
	})

	doc.Click(btn)
	assert.Equal(t, []string{"outer", "nested"}, order,
		"tasks scheduled while draining join the same drain")
}

func TestPendingTasksRunBeforeNextGesture(t *testing.T) {
	doc := MustParse(basicMarkup)
	btn := doc.QuerySelector("#btn")

	var order []string
	doc.Schedule(func() { order = append(order, "pending") })
	btn.AddListener(EventClick, false, func(*Event) {
		order = append(order, "handler")
	})

	doc.Click(btn)
	assert.Equal(t, []string{"pending", "handler"}, order,
		"deferred work runs strictly before the next user-initiated event")
}

func TestFlushOutsideTurn(t *testing.T) {
	doc := MustParse(basicMarkup)

	var ran bool
	doc.Schedule(func() { ran = true })
	assert.False(t, ran)
	doc.Flush()
	assert.True(t, ran)
}

func TestKeydownNativeTabNavigation(t *testing.T) {
	doc := MustParse(basicMarkup)
	btn := doc.QuerySelector("#btn")
	link := doc.QuerySelector("#link")

	doc.SetTabNavigator(func(from *Element, backward bool) *Element {
		if from == btn {
			return link
		}
		return btn
	})

	btn.Focus()
	doc.Keydown(KeyTab, false)
	assert.Same(t, link, doc.ActiveElement())

	// A prevented Tab suppresses the native move.
	doc.Body().AddListener(EventKeyDown, true, func(ev *Event) {
		if ev.Key == KeyTab {
			ev.PreventDefault()
		}
	})
	doc.Keydown(KeyTab, false)
	assert.Same(t, link, doc.ActiveElement())
}

func TestKeydownTargetsBodyWithoutFocus(t *testing.T) {
	doc := MustParse(basicMarkup)

	var target *Element
	doc.Body().AddListener(EventKeyDown, true, func(ev *Event) {
		target = ev.Target
	})
	doc.Keydown(KeyEscape, false)
	assert.Same(t, doc.Body(), target)
}
