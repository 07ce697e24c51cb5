package event

import (
	"fmt"

	"go.uber.org/zap"
)

// Listeners is an ordered list of listener Records for one target.
// Insertion order is dispatch order for listeners of the same type and
// phase. The list is intrusive: removal during dispatch never invalidates
// an iteration that captured its next pointer first, because a detached
// record keeps its outgoing next link.
type Listeners struct {
	head, tail *Record
	count      int
}

// Len returns the number of registered records.
func (l *Listeners) Len() int {
	return l.count
}

// Has reports whether any record is registered for the event type.
func (l *Listeners) Has(eventType string) bool {
	for rec := l.head; rec != nil; rec = rec.next {
		if rec.Type == eventType {
			return true
		}
	}
	return false
}

func (l *Listeners) find(eventType string, id HandlerID, capture bool) *Record {
	for rec := l.head; rec != nil; rec = rec.next {
		if rec.Type == eventType && rec.Handler.ID() == id && rec.Capture == capture {
			return rec
		}
	}
	return nil
}

func (l *Listeners) append(rec *Record) {
	rec.list = l
	rec.prev = l.tail
	if l.tail != nil {
		l.tail.next = rec
	} else {
		l.head = rec
	}
	l.tail = rec
	l.count++
}

// detach unlinks rec from its neighbours. rec.next is deliberately left
// pointing into the list so that a dispatch holding rec as its captured
// next pointer can still walk forward.
func (l *Listeners) detach(rec *Record) {
	if rec.removed {
		return
	}
	if rec.prev != nil {
		rec.prev.next = rec.next
	} else {
		l.head = rec.next
	}
	if rec.next != nil {
		rec.next.prev = rec.prev
	} else {
		l.tail = rec.prev
	}
	rec.prev = nil
	rec.removed = true
	l.count--
}

// Add registers a listener on t. Registration is idempotent: if a record
// with the same (type, handler identity, capture) already exists, Add
// returns nil and changes nothing. A listener tied to an already-aborted
// signal is skipped entirely.
func Add(t Target, eventType string, h Handler, opts AddOptions) *Record {
	if eventType == "" || h == nil {
		return nil
	}
	l := t.EventListeners()
	if l.find(eventType, h.ID(), opts.Capture) != nil {
		return nil
	}
	if opts.Signal != nil && opts.Signal.Aborted() {
		return nil
	}

	rec := &Record{
		Type:    eventType,
		Handler: h,
		Capture: opts.Capture,
		Once:    opts.Once,
		Passive: opts.Passive,
		signal:  opts.Signal,
	}

	// The abort-linked listener goes in before the primary record so it
	// exists before any dispatch could observe the primary.
	if opts.Signal != nil {
		sigList := opts.Signal.EventListeners()
		abortRec := &Record{
			Type: "abort",
		}
		abortRec.Handler = HandlerFunc(func(*Event) {
			if !rec.removed {
				l.detach(rec)
			}
			sigList.detach(abortRec)
		})
		sigList.append(abortRec)
		rec.abortRec = abortRec
	}

	l.append(rec)
	return rec
}

// Remove unregisters the listener matching (type, handler identity,
// capture). It is a no-op when no such record exists. The associated
// abort-linked listener, if any, is torn down eagerly so no back-reference
// outlives the primary record.
func Remove(t Target, eventType string, h Handler, capture bool) {
	if h == nil {
		return
	}
	l := t.EventListeners()
	rec := l.find(eventType, h.ID(), capture)
	if rec == nil {
		return
	}
	l.detach(rec)
	if rec.abortRec != nil && !rec.abortRec.removed {
		rec.signal.EventListeners().detach(rec.abortRec)
	}
}

type phaseFilter int

const (
	filterAny phaseFilter = iota
	filterCapture
	filterBubble
)

func (f phaseFilter) matches(capture bool) bool {
	switch f {
	case filterCapture:
		return capture
	case filterBubble:
		return !capture
	}
	return true
}

// dispatchAt runs every matching listener registered on t for ev, in
// registration order. The next pointer is captured before each invocation
// so callbacks may freely mutate the list. Callback panics are logged and
// swallowed; they never abort the remaining listeners.
func dispatchAt(t Target, ev *Event, filter phaseFilter, logger *zap.Logger) {
	l := t.EventListeners()
	if l == nil || l.head == nil {
		return
	}
	for rec := l.head; rec != nil; {
		next := rec.next
		if rec.removed || rec.Type != ev.Type || !filter.matches(rec.Capture) {
			rec = next
			continue
		}
		// Lazy cleanup: a record whose signal aborted mid-flight is
		// dropped without running.
		if rec.signal != nil && rec.signal.Aborted() {
			l.detach(rec)
			if rec.abortRec != nil && !rec.abortRec.removed {
				rec.signal.EventListeners().detach(rec.abortRec)
			}
			rec = next
			continue
		}

		ev.CurrentTarget = t
		invoke(rec.Handler, ev, logger)

		// once removal happens after the call returns, so the callback
		// still observed itself as registered.
		if rec.Once && !rec.removed {
			l.detach(rec)
			if rec.abortRec != nil && !rec.abortRec.removed {
				rec.signal.EventListeners().detach(rec.abortRec)
			}
		}
		if ev.immediateStopped {
			return
		}
		rec = next
	}
}

// invoke calls a handler, containing any panic so the dispatch survives a
// throwing listener.
func invoke(h Handler, ev *Event, logger *zap.Logger) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("event listener panicked",
				zap.String("event", ev.Type),
				zap.Error(fmt.Errorf("%v", p)))
		}
	}()
	h.HandleEvent(ev)
}
