package event

import "sync/atomic"

// HandlerID is a stable, comparable identity for a callback. JS function
// values cannot be compared structurally from Go, so every distinct
// JS-visible function is issued exactly one ID and equality compares IDs.
type HandlerID uint64

var handlerIDCounter atomic.Uint64

// NextHandlerID issues a fresh handler identity.
func NextHandlerID() HandlerID {
	return HandlerID(handlerIDCounter.Add(1))
}

// Handler is an invocable listener callback with a stable identity.
type Handler interface {
	ID() HandlerID
	HandleEvent(e *Event)
}

// FuncHandler adapts a Go function to Handler, issuing it an identity on
// creation. Two FuncHandlers wrapping the same function are still distinct
// listeners; reuse the FuncHandler value to deduplicate.
type FuncHandler struct {
	id HandlerID
	fn func(*Event)
}

// HandlerFunc wraps fn as a Handler with a fresh identity.
func HandlerFunc(fn func(*Event)) *FuncHandler {
	return &FuncHandler{id: NextHandlerID(), fn: fn}
}

func (h *FuncHandler) ID() HandlerID { return h.id }

func (h *FuncHandler) HandleEvent(e *Event) { h.fn(e) }

// AddOptions mirrors the addEventListener options dictionary.
type AddOptions struct {
	Capture bool
	Once    bool
	// Passive is recorded and exposed but enforces nothing; there is no
	// scroll machinery consulting it.
	Passive bool
	// Signal, when non-nil, scopes the listener's lifetime to the signal:
	// an already-aborted signal skips registration entirely, a live one
	// removes the listener when it aborts.
	Signal *Signal
}

// Record is one registered listener: immutable after creation, owned by
// its target's Listeners list, linked intrusively so iteration can capture
// the next pointer before invoking the callback.
type Record struct {
	Type    string
	Handler Handler
	Capture bool
	Once    bool
	Passive bool

	signal *Signal
	// abortRec is the abort-linked listener installed on the signal's own
	// target; kept so removal of the primary can tear it down eagerly.
	abortRec *Record

	list       *Listeners
	prev, next *Record
	removed    bool
}

// Removed reports whether the record has been detached from its list.
func (r *Record) Removed() bool { return r.removed }
