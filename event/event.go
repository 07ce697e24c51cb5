// Package event implements DOM event dispatch: listener registration with
// once/capture/passive/signal options, three-phase propagation over a target
// tree, and mutation-safe registry iteration.
//
// The package is single-threaded by contract. Dispatch is synchronous and
// re-entrant: a listener callback may add or remove listeners, or dispatch
// further events, on the same or related targets while a dispatch is in
// flight. There is no cross-goroutine posting of events.
package event

import (
	"time"
)

// Phase represents the phase of event dispatch.
type Phase int

const (
	PhaseNone      Phase = 0
	PhaseCapturing Phase = 1
	PhaseAtTarget  Phase = 2
	PhaseBubbling  Phase = 3
)

// Kind identifies the concrete variant of an Event. The variant set is
// closed: a Kind plus the matching data field stands in for a subtype
// hierarchy.
type Kind int

const (
	KindPlain Kind = iota
	KindCustom
	KindProgress
	KindMouse
)

// CustomData carries the detail payload of a CustomEvent.
type CustomData struct {
	Detail any
}

// ProgressData carries ProgressEvent fields (XHR progress/load/error).
type ProgressData struct {
	LengthComputable bool
	Loaded           int64
	Total            int64
}

// MouseData carries MouseEvent coordinates and button state.
type MouseData struct {
	ClientX, ClientY float64
	ScreenX, ScreenY float64
	Button, Buttons  int
	CtrlKey, ShiftKey, AltKey, MetaKey bool
}

// Event represents a single event occurrence being propagated.
//
// An Event is created fresh per dispatch, mutated only while that dispatch
// is active, and inert afterwards. It must not be used concurrently.
type Event struct {
	Type       string
	Bubbles    bool
	Cancelable bool
	Composed   bool
	IsTrusted  bool
	TimeStamp  time.Time

	// Target is set once at dispatch start; CurrentTarget is updated for
	// every node the dispatcher visits.
	Target        Target
	CurrentTarget Target
	Phase         Phase

	// Ext is a slot for a binding-layer companion object (the goja event
	// wrapper in the js package). The core never touches it.
	Ext any

	kind     Kind
	custom   *CustomData
	progress *ProgressData
	mouse    *MouseData

	defaultPrevented   bool
	propagationStopped bool
	immediateStopped   bool

	// Propagation path, set at dispatch start. hiddenBefore is the index of
	// the first entry visible from outside a closed shadow tree.
	path         []Target
	hiddenBefore int
}

// Options configures a new Event.
type Options struct {
	Bubbles    bool
	Cancelable bool
	Composed   bool
}

// New creates a plain Event of the given type.
func New(eventType string, opts Options) *Event {
	return &Event{
		Type:       eventType,
		Bubbles:    opts.Bubbles,
		Cancelable: opts.Cancelable,
		Composed:   opts.Composed,
		TimeStamp:  time.Now(),
		kind:       KindPlain,
	}
}

// NewCustom creates a CustomEvent carrying a detail payload.
func NewCustom(eventType string, detail any, opts Options) *Event {
	e := New(eventType, opts)
	e.kind = KindCustom
	e.custom = &CustomData{Detail: detail}
	return e
}

// NewProgress creates a ProgressEvent.
func NewProgress(eventType string, lengthComputable bool, loaded, total int64) *Event {
	e := New(eventType, Options{})
	e.kind = KindProgress
	e.progress = &ProgressData{LengthComputable: lengthComputable, Loaded: loaded, Total: total}
	return e
}

// NewMouse creates a MouseEvent.
func NewMouse(eventType string, data MouseData, opts Options) *Event {
	e := New(eventType, opts)
	e.kind = KindMouse
	e.mouse = &data
	return e
}

// Kind returns the variant tag of the event.
func (e *Event) Kind() Kind {
	return e.kind
}

// Variant returns the variant data matching the event's Kind, or nil for a
// plain Event. This is the single tag-to-variant conversion point.
func (e *Event) Variant() any {
	switch e.kind {
	case KindCustom:
		return e.custom
	case KindProgress:
		return e.progress
	case KindMouse:
		return e.mouse
	}
	return nil
}

// AsCustom returns the custom variant data if the event is a CustomEvent.
func (e *Event) AsCustom() (*CustomData, bool) {
	return e.custom, e.kind == KindCustom
}

// AsProgress returns the progress variant data if the event is a ProgressEvent.
func (e *Event) AsProgress() (*ProgressData, bool) {
	return e.progress, e.kind == KindProgress
}

// AsMouse returns the mouse variant data if the event is a MouseEvent.
func (e *Event) AsMouse() (*MouseData, bool) {
	return e.mouse, e.kind == KindMouse
}

// PreventDefault cancels the event's default action. It has no effect on a
// non-cancelable event.
func (e *Event) PreventDefault() {
	if e.Cancelable {
		e.defaultPrevented = true
	}
}

// DefaultPrevented reports whether PreventDefault was called on a
// cancelable event.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation prevents the event from reaching further targets.
// Remaining listeners on the current target still run.
func (e *Event) StopPropagation() {
	e.propagationStopped = true
}

// StopImmediatePropagation prevents any further listener from running,
// including remaining listeners on the current target.
func (e *Event) StopImmediatePropagation() {
	e.propagationStopped = true
	e.immediateStopped = true
}

// PropagationStopped reports whether StopPropagation or
// StopImmediatePropagation was called.
func (e *Event) PropagationStopped() bool {
	return e.propagationStopped
}

// ImmediatePropagationStopped reports whether StopImmediatePropagation was
// called.
func (e *Event) ImmediatePropagationStopped() bool {
	return e.immediateStopped
}

// ComposedPath returns the event's propagation path, ordered from the
// dispatch target up to the root. When the path crossed a closed shadow
// boundary, observers outside the closed tree see the path truncated at the
// host; a listener whose current target sits inside the closed tree sees
// the full path.
func (e *Event) ComposedPath() []Target {
	if len(e.path) == 0 {
		return nil
	}
	if e.hiddenBefore == 0 {
		return e.path
	}
	for i := 0; i < e.hiddenBefore; i++ {
		if e.path[i] == e.CurrentTarget {
			return e.path
		}
	}
	return e.path[e.hiddenBefore:]
}
