package event

import (
	"time"

	"go.uber.org/zap"
)

// Dispatcher drives the three-phase propagation state machine
// (none → capturing → at-target → bubbling → none) over a target tree.
//
// The zero Dispatcher is not usable; construct with NewDispatcher.
type Dispatcher struct {
	window Target
	logger *zap.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithWindow sets the synthetic window root. Window receives capture
// events first and bubble events last even though it is not a tree
// ancestor of any node.
func WithWindow(w Target) DispatcherOption {
	return func(d *Dispatcher) { d.window = w }
}

// WithLogger sets the logger used for swallowed listener errors.
func WithLogger(l *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher creates a Dispatcher. Without WithLogger, listener errors
// are discarded via a no-op logger.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Window returns the synthetic window root, or nil.
func (d *Dispatcher) Window() Target {
	return d.window
}

// Dispatch propagates ev from t and reports whether the default action
// should proceed (false when a listener called PreventDefault on a
// cancelable event).
//
// Non-tree targets (signals, XHR objects, the window itself) receive a
// single at-target delivery. Tree targets get the full capture → target →
// bubble walk over the propagation path.
func (d *Dispatcher) Dispatch(t Target, ev *Event) bool {
	ev.Target = t
	if ev.TimeStamp.IsZero() {
		ev.TimeStamp = time.Now()
	}

	if _, ok := t.(TreeTarget); !ok {
		ev.Phase = PhaseAtTarget
		dispatchAt(t, ev, filterAny, d.logger)
		ev.Phase = PhaseNone
		return !ev.defaultPrevented
	}

	ev.path, ev.hiddenBefore = buildPath(t, d.window)

	// Capture phase: root down to the target's parent.
	ev.Phase = PhaseCapturing
	for i := len(ev.path) - 1; i >= 1; i-- {
		dispatchAt(ev.path[i], ev, filterCapture, d.logger)
		if ev.propagationStopped {
			ev.Phase = PhaseNone
			return !ev.defaultPrevented
		}
	}

	// At-target: both capture and non-capture listeners fire.
	ev.Phase = PhaseAtTarget
	dispatchAt(t, ev, filterAny, d.logger)
	if ev.propagationStopped {
		ev.Phase = PhaseNone
		return !ev.defaultPrevented
	}

	if ev.Bubbles {
		ev.Phase = PhaseBubbling
		for i := 1; i < len(ev.path); i++ {
			dispatchAt(ev.path[i], ev, filterBubble, d.logger)
			if ev.propagationStopped {
				break
			}
		}
	}

	ev.Phase = PhaseNone
	return !ev.defaultPrevented
}

// DispatchWithHandler delivers ev at t only (no phase walk), first through
// the single-slot on<event> handler if one is assigned, then through the
// full listener registry. Used for internal non-bubbling events such as
// readystatechange and progress, where the property slot and
// addEventListener registrations coexist.
func (d *Dispatcher) DispatchWithHandler(t Target, ev *Event, handler func(*Event)) {
	ev.Target = t
	if ev.TimeStamp.IsZero() {
		ev.TimeStamp = time.Now()
	}
	ev.Phase = PhaseAtTarget
	ev.CurrentTarget = t
	if handler != nil {
		invoke(HandlerFunc(handler), ev, d.logger)
	}
	if !ev.immediateStopped {
		dispatchAt(t, ev, filterAny, d.logger)
	}
	ev.Phase = PhaseNone
}
