package event

// Signal is an AbortSignal: an event target in its own right, so the
// {signal} listener option self-hosts on the same registry machinery as
// everything else.
type Signal struct {
	Basic

	aborted bool
	reason  any

	// OnAbort is the single-slot onabort handler, fired alongside
	// registered "abort" listeners.
	OnAbort func(*Event)
}

// Aborted reports whether the signal's controller has aborted.
func (s *Signal) Aborted() bool {
	return s.aborted
}

// Reason returns the value passed to Abort, or nil.
func (s *Signal) Reason() any {
	return s.reason
}

// AbortedSignal returns a signal that is already aborted with the given
// reason (AbortSignal.abort static).
func AbortedSignal(reason any) *Signal {
	return &Signal{aborted: true, reason: reason}
}

// Controller is an AbortController owning a single Signal.
type Controller struct {
	signal     *Signal
	dispatcher *Dispatcher
}

// NewController creates a controller with a fresh signal. The dispatcher
// delivers the "abort" event; nil uses a private no-op-logging dispatcher.
func NewController(d *Dispatcher) *Controller {
	if d == nil {
		d = NewDispatcher()
	}
	return &Controller{signal: &Signal{}, dispatcher: d}
}

// Signal returns the controller's signal.
func (c *Controller) Signal() *Signal {
	return c.signal
}

// Abort moves the signal to the aborted state and fires "abort" at it.
// Aborting twice is a no-op; the reason of the first call wins.
func (c *Controller) Abort(reason any) {
	s := c.signal
	if s.aborted {
		return
	}
	s.aborted = true
	s.reason = reason

	ev := New("abort", Options{})
	ev.IsTrusted = true
	c.dispatcher.DispatchWithHandler(s, ev, s.OnAbort)
}
