// pkg/toast/toast.go
// Package toast implements the notification store: a dependency-injected
// pub/sub state holder with deferred dismissal. The store never assumes it is
// unique; applications wanting global-style access assemble a single instance
// themselves.
package toast

import "github.com/google/uuid"

// Handle identifies one toast in a store.
type Handle struct {
	id uuid.UUID
}

// String renders the handle for logs.
func (h Handle) String() string { return h.id.String() }

func newHandle() Handle {
	return Handle{id: uuid.New()}
}

// DismissReason records why a toast was dismissed.
type DismissReason int

const (
	// DismissTimeout marks a toast dismissed by its deferred timer.
	DismissTimeout DismissReason = iota
	// DismissUser marks a toast dismissed explicitly.
	DismissUser
)

func (r DismissReason) String() string {
	switch r {
	case DismissTimeout:
		return "timeout"
	case DismissUser:
		return "user"
	default:
		return "unknown"
	}
}

// Toast is one notification. Dismiss is nil while the toast is live and set
// to the reason once it has been dismissed.
type Toast struct {
	Title       string
	Description string
	Dismiss     *DismissReason

	timeout timeoutPolicy
}

// Builder assembles a Toast.
type Builder struct {
	toast Toast
}

// NewBuilder starts a toast builder with the store's default timeout policy.
func NewBuilder() *Builder {
	return &Builder{toast: Toast{timeout: timeoutPolicy{kind: timeoutDefault}}}
}

// Title sets the toast title.
func (b *Builder) Title(title string) *Builder {
	b.toast.Title = title
	return b
}

// Description sets the optional body text.
func (b *Builder) Description(desc string) *Builder {
	b.toast.Description = desc
	return b
}

// Timeout overrides the store's default dismissal policy for this toast.
func (b *Builder) Timeout(p TimeoutPolicy) *Builder {
	b.toast.timeout = p.policy
	return b
}

// Build finalizes the toast.
func (b *Builder) Build() Toast {
	return b.toast
}
