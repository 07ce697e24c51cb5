package event

// Target is anything listeners can be registered against: tree nodes,
// window, abort signals, XHR objects. Identity is pointer identity of the
// implementing value.
type Target interface {
	EventListeners() *Listeners
}

// TreeTarget is a Target that participates in tree propagation via a
// parent link. A nil parent marks the end of the walk.
type TreeTarget interface {
	Target
	ParentTarget() Target
}

// FragmentTarget is implemented by targets that may be document fragments.
// The path builder consults it when the parent walk ends: a parent-less
// fragment with a host continues propagation at the host (shadow trees),
// one without a host stops it (isolated fragment).
type FragmentTarget interface {
	Target
	IsDocumentFragment() bool
	// HostTarget returns the hosting element's target, or nil.
	HostTarget() Target
	// ShadowClosed reports whether the fragment is a closed shadow root.
	ShadowClosed() bool
}

// Basic is a free-standing event target with no tree position: the Go
// analogue of `new EventTarget()`. Window, XHR objects, and abort signals
// are Basic targets (or embed one).
type Basic struct {
	listeners Listeners
}

// NewTarget creates a free-standing event target.
func NewTarget() *Basic {
	return &Basic{}
}

func (b *Basic) EventListeners() *Listeners {
	return &b.listeners
}
