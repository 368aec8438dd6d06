// pkg/form/form.go
// Package form implements a headless multi-stage form controller on top of
// the focus containment engine. Each stage owns one trap whose scope is the
// whole form container, so tab order composes across stages while focus stays
// confined to the current one. The controller owns switching order: the
// outgoing stage's trap is always deactivated strictly before the incoming
// one is activated.
package form

import (
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/keyfence/pkg/dom"
	"github.com/xkilldash9x/keyfence/pkg/focus"
)

// Attributes mirrored onto the document for styling hooks. Observable side
// channel only; correctness never depends on them.
const (
	// AttrFormActive marks the form container while the form is activated.
	AttrFormActive = "data-form-active"
	// AttrStageRelative carries each stage's index relative to the current
	// one: 0 for the active stage, -1 for the previous, 1 for the next.
	AttrStageRelative = "data-stage-relative"
)

// Stage is one bounded region of the form.
type Stage struct {
	container *dom.Element
}

// NewStage wraps a container element as a stage.
func NewStage(container *dom.Element) Stage {
	return Stage{container: container}
}

// Container returns the stage's subtree root.
func (s Stage) Container() *dom.Element {
	return s.container
}

type inner struct {
	mu sync.Mutex

	logger    *zap.Logger
	container *dom.Element
	stages    []Stage
	traps     []*focus.Trap

	current   int
	activated bool
	locked    bool
}

// Form is a freely copyable handle to one multi-stage form instance.
type Form struct {
	inner *inner
}

// Current returns the active stage index.
func (f *Form) Current() int {
	f.inner.mu.Lock()
	defer f.inner.mu.Unlock()
	return f.inner.current
}

// IsActivated reports whether the form is activated.
func (f *Form) IsActivated() bool {
	f.inner.mu.Lock()
	defer f.inner.mu.Unlock()
	return f.inner.activated
}

// Next advances to the following stage.
func (f *Form) Next() {
	f.inner.mu.Lock()
	defer f.inner.mu.Unlock()
	f.inner.updateStage(f.inner.current + 1)
}

// Previous returns to the preceding stage.
func (f *Form) Previous() {
	f.inner.mu.Lock()
	defer f.inner.mu.Unlock()
	f.inner.updateStage(f.inner.current - 1)
}

// SetStage jumps to a specific stage index.
func (f *Form) SetStage(stage int) {
	f.inner.mu.Lock()
	defer f.inner.mu.Unlock()
	f.inner.updateStage(stage)
}

// Lock freezes stage navigation, e.g. while asynchronous validation of the
// current stage is in flight. Switching calls are ignored until Unlock.
func (f *Form) Lock() {
	f.inner.mu.Lock()
	defer f.inner.mu.Unlock()
	f.inner.locked = true
}

// Unlock re-enables stage navigation.
func (f *Form) Unlock() {
	f.inner.mu.Lock()
	defer f.inner.mu.Unlock()
	f.inner.locked = false
}

// Activate turns the form on, activating the current stage's trap and
// mirroring the active marker. No-op when already activated.
func (f *Form) Activate() {
	f.inner.mu.Lock()
	defer f.inner.mu.Unlock()
	in := f.inner
	if in.activated {
		return
	}
	in.activated = true

	in.traps[in.current].Activate()
	in.container.SetAttr(AttrFormActive, "")
	in.updateRelatives()
	in.logger.Debug("form activated", zap.Int("stage", in.current))
}

// Deactivate turns the form off. No-op when already deactivated.
func (f *Form) Deactivate() {
	f.inner.mu.Lock()
	defer f.inner.mu.Unlock()
	in := f.inner
	if !in.activated {
		return
	}
	in.activated = false

	in.traps[in.current].Deactivate()
	in.container.RemoveAttr(AttrFormActive)
	in.logger.Debug("form deactivated")
}

// Close releases every stage trap, force-removing their listeners.
func (f *Form) Close() {
	f.inner.mu.Lock()
	defer f.inner.mu.Unlock()
	in := f.inner
	in.activated = false
	for _, t := range in.traps {
		t.Close()
	}
}

// updateStage swaps the active trap. Out-of-range targets and locked or
// deactivated forms are ignored.
func (in *inner) updateStage(target int) {
	if in.locked || !in.activated {
		return
	}
	if target < 0 || target >= len(in.stages) || target == in.current {
		return
	}

	// Outgoing strictly before incoming; two active traps on one scope
	// would race over escaping focus events.
	in.traps[in.current].Deactivate()
	in.traps[target].Activate()

	in.current = target
	in.updateRelatives()
	in.logger.Debug("form stage changed", zap.Int("stage", target))
}

func (in *inner) updateRelatives() {
	for i, stage := range in.stages {
		stage.container.SetAttr(AttrStageRelative, strconv.Itoa(i-in.current))
	}
}

// Builder assembles a Form.
type Builder struct {
	initialStage int
	container    *dom.Element
	stages       []Stage
	logger       *zap.Logger
}

// NewBuilder starts a form builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// InitialStage sets the stage index the form starts on.
func (b *Builder) InitialStage(i int) *Builder {
	b.initialStage = i
	return b
}

// Container sets the form's root element. Required; it becomes the shared
// scope of every stage trap.
func (b *Builder) Container(el *dom.Element) *Builder {
	b.container = el
	return b
}

// AddStage appends one stage.
func (b *Builder) AddStage(s Stage) *Builder {
	b.stages = append(b.stages, s)
	return b
}

// AddStages appends several stages in order.
func (b *Builder) AddStages(stages ...Stage) *Builder {
	b.stages = append(b.stages, stages...)
	return b
}

// Logger sets the logger; defaults to a nop logger.
func (b *Builder) Logger(l *zap.Logger) *Builder {
	b.logger = l
	return b
}

// Build finalizes the form in the deactivated state. It panics when the
// container is unset or the initial stage is out of range: both are
// construction errors, never runtime conditions.
func (b *Builder) Build() *Form {
	if b.container == nil {
		panic("form: container must be set to build a form")
	}
	if b.initialStage < 0 || b.initialStage >= len(b.stages) {
		panic(fmt.Sprintf("form: initial stage %d out of range for %d stages", b.initialStage, len(b.stages)))
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	traps := make([]*focus.Trap, len(b.stages))
	for i, stage := range b.stages {
		traps[i] = focus.New(focus.NewOptions().
			ReturnFocus(false).
			DeactivateOnEscape(false).
			Scope(b.container).
			Target(stage.container).
			Build())
	}

	return &Form{inner: &inner{
		logger:    logger,
		container: b.container,
		stages:    b.stages,
		traps:     traps,
		current:   b.initialStage,
	}}
}
