package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testNode is a tree target for dispatch tests.
type testNode struct {
	Basic
	parent Target
}

func (n *testNode) ParentTarget() Target {
	return n.parent
}

// testFragment is a parent-less document fragment, optionally hosted.
type testFragment struct {
	Basic
	host   Target
	closed bool
}

func (f *testFragment) ParentTarget() Target     { return nil }
func (f *testFragment) IsDocumentFragment() bool { return true }
func (f *testFragment) HostTarget() Target       { return f.host }
func (f *testFragment) ShadowClosed() bool       { return f.closed }

// chain builds root → ... → leaf and returns the nodes root-first.
func chain(depth int) []*testNode {
	nodes := make([]*testNode, depth)
	for i := range nodes {
		nodes[i] = &testNode{}
		if i > 0 {
			nodes[i].parent = nodes[i-1]
		}
	}
	return nodes
}

func recorder(log *[]string, label string) Handler {
	return HandlerFunc(func(*Event) {
		*log = append(*log, label)
	})
}

func TestDispatchAtTarget(t *testing.T) {
	d := NewDispatcher()
	target := NewTarget()

	calls := 0
	Add(target, "ping", HandlerFunc(func(ev *Event) {
		calls++
		assert.Equal(t, PhaseAtTarget, ev.Phase)
		assert.Same(t, target, ev.Target)
		assert.Same(t, target, ev.CurrentTarget)
	}), AddOptions{})

	ok := d.Dispatch(target, New("ping", Options{}))
	assert.True(t, ok)
	assert.Equal(t, 1, calls)
}

func TestAddDeduplicates(t *testing.T) {
	d := NewDispatcher()
	target := NewTarget()

	calls := 0
	h := HandlerFunc(func(*Event) { calls++ })
	require.NotNil(t, Add(target, "click", h, AddOptions{}))
	assert.Nil(t, Add(target, "click", h, AddOptions{}))
	assert.Equal(t, 1, target.EventListeners().Len())

	d.Dispatch(target, New("click", Options{}))
	assert.Equal(t, 1, calls)

	// Same handler with a different capture flag is a distinct listener.
	require.NotNil(t, Add(target, "click", h, AddOptions{Capture: true}))
	assert.Equal(t, 2, target.EventListeners().Len())
}

func TestRegistrationOrder(t *testing.T) {
	d := NewDispatcher()
	target := NewTarget()

	var log []string
	Add(target, "click", recorder(&log, "a"), AddOptions{})
	Add(target, "click", recorder(&log, "b"), AddOptions{})
	Add(target, "click", recorder(&log, "c"), AddOptions{})

	d.Dispatch(target, New("click", Options{}))
	assert.Equal(t, []string{"a", "b", "c"}, log)
}

func TestCaptureBeforeBubble(t *testing.T) {
	d := NewDispatcher()
	nodes := chain(3)
	a, target := nodes[0], nodes[2]

	var log []string
	Add(a, "click", recorder(&log, "a-capture"), AddOptions{Capture: true})
	Add(a, "click", recorder(&log, "a-bubble"), AddOptions{})
	Add(target, "click", recorder(&log, "target"), AddOptions{})

	d.Dispatch(target, New("click", Options{Bubbles: true}))
	assert.Equal(t, []string{"a-capture", "target", "a-bubble"}, log)
}

func TestNonBubblingSkipsBubblePhase(t *testing.T) {
	d := NewDispatcher()
	nodes := chain(2)
	parent, target := nodes[0], nodes[1]

	var log []string
	Add(parent, "focus", recorder(&log, "parent-bubble"), AddOptions{})
	Add(parent, "focus", recorder(&log, "parent-capture"), AddOptions{Capture: true})
	Add(target, "focus", recorder(&log, "target"), AddOptions{})

	d.Dispatch(target, New("focus", Options{Bubbles: false}))
	assert.Equal(t, []string{"parent-capture", "target"}, log)
}

func TestAtTargetFiresBothCaptureFlags(t *testing.T) {
	d := NewDispatcher()
	nodes := chain(2)
	target := nodes[1]

	var log []string
	Add(target, "click", recorder(&log, "capture"), AddOptions{Capture: true})
	Add(target, "click", recorder(&log, "bubble"), AddOptions{})

	d.Dispatch(target, New("click", Options{Bubbles: true}))
	assert.Equal(t, []string{"capture", "bubble"}, log)
}

func TestStopPropagationInCaptureBlocksDescendants(t *testing.T) {
	d := NewDispatcher()
	nodes := chain(3)
	content, para := nodes[1], nodes[2]

	var log []string
	Add(content, "click", HandlerFunc(func(ev *Event) {
		log = append(log, "content-capture")
		ev.StopPropagation()
	}), AddOptions{Capture: true})
	Add(para, "click", recorder(&log, "para"), AddOptions{})
	Add(content, "click", recorder(&log, "content-bubble"), AddOptions{})

	ok := d.Dispatch(para, New("click", Options{Bubbles: true}))
	assert.True(t, ok)
	assert.Equal(t, []string{"content-capture"}, log)
}

func TestStopPropagationAtTargetBlocksBubble(t *testing.T) {
	d := NewDispatcher()
	nodes := chain(2)
	parent, target := nodes[0], nodes[1]

	var log []string
	Add(target, "click", HandlerFunc(func(ev *Event) {
		log = append(log, "first")
		ev.StopPropagation()
	}), AddOptions{})
	Add(target, "click", recorder(&log, "second"), AddOptions{})
	Add(parent, "click", recorder(&log, "parent"), AddOptions{})

	d.Dispatch(target, New("click", Options{Bubbles: true}))
	// Remaining listeners on the same target still run.
	assert.Equal(t, []string{"first", "second"}, log)
}

func TestStopImmediatePropagation(t *testing.T) {
	d := NewDispatcher()
	target := NewTarget()

	var log []string
	Add(target, "click", HandlerFunc(func(ev *Event) {
		log = append(log, "first")
		ev.StopImmediatePropagation()
	}), AddOptions{})
	Add(target, "click", recorder(&log, "second"), AddOptions{})

	d.Dispatch(target, New("click", Options{}))
	assert.Equal(t, []string{"first"}, log)
}

func TestOnceFiresExactlyOnce(t *testing.T) {
	d := NewDispatcher()
	target := NewTarget()

	calls := 0
	h := HandlerFunc(func(*Event) { calls++ })
	Add(target, "tick", h, AddOptions{Once: true})

	for i := 0; i < 3; i++ {
		d.Dispatch(target, New("tick", Options{}))
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, target.EventListeners().Len())

	// Already auto-removed; removal is a no-op, re-adding works again.
	Remove(target, "tick", h, false)
	require.NotNil(t, Add(target, "tick", h, AddOptions{Once: true}))
	d.Dispatch(target, New("tick", Options{}))
	assert.Equal(t, 2, calls)
}

func TestAbortSignalRemovesListener(t *testing.T) {
	d := NewDispatcher()
	target := NewTarget()
	controller := NewController(d)

	calls := 0
	Add(target, "tick", HandlerFunc(func(*Event) { calls++ }), AddOptions{Signal: controller.Signal()})

	d.Dispatch(target, New("tick", Options{}))
	d.Dispatch(target, New("tick", Options{}))
	assert.Equal(t, 2, calls)

	controller.Abort(nil)
	d.Dispatch(target, New("tick", Options{}))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, target.EventListeners().Len())
	assert.Equal(t, 0, controller.Signal().EventListeners().Len())
}

func TestAlreadyAbortedSignalSkipsRegistration(t *testing.T) {
	d := NewDispatcher()
	target := NewTarget()
	controller := NewController(d)
	controller.Abort("done")

	calls := 0
	rec := Add(target, "tick", HandlerFunc(func(*Event) { calls++ }), AddOptions{Signal: controller.Signal()})
	assert.Nil(t, rec)
	assert.Equal(t, 0, target.EventListeners().Len())
	assert.Equal(t, 0, controller.Signal().EventListeners().Len())

	d.Dispatch(target, New("tick", Options{}))
	assert.Equal(t, 0, calls)
}

func TestRemoveTearsDownAbortLink(t *testing.T) {
	d := NewDispatcher()
	target := NewTarget()
	controller := NewController(d)

	h := HandlerFunc(func(*Event) {})
	Add(target, "tick", h, AddOptions{Signal: controller.Signal()})
	assert.Equal(t, 1, controller.Signal().EventListeners().Len())

	Remove(target, "tick", h, false)
	assert.Equal(t, 0, target.EventListeners().Len())
	assert.Equal(t, 0, controller.Signal().EventListeners().Len())

	// Aborting afterwards must be harmless.
	controller.Abort(nil)
	d.Dispatch(target, New("tick", Options{}))
}

func TestAbortFromListenerDuringDispatch(t *testing.T) {
	d := NewDispatcher()
	target := NewTarget()
	controller := NewController(d)

	calls := 0
	Add(target, "tick", HandlerFunc(func(*Event) {
		controller.Abort(nil)
	}), AddOptions{Signal: controller.Signal()})
	Add(target, "tick", HandlerFunc(func(*Event) { calls++ }), AddOptions{Signal: controller.Signal()})

	d.Dispatch(target, New("tick", Options{}))
	assert.Equal(t, 0, calls)
}

func TestAbortSignalFiresOnAbortSlotAndListeners(t *testing.T) {
	d := NewDispatcher()
	controller := NewController(d)
	signal := controller.Signal()

	var log []string
	signal.OnAbort = func(ev *Event) {
		log = append(log, "slot")
		assert.Equal(t, "abort", ev.Type)
	}
	Add(signal, "abort", recorder(&log, "listener"), AddOptions{})

	controller.Abort("why")
	assert.Equal(t, []string{"slot", "listener"}, log)
	assert.True(t, signal.Aborted())
	assert.Equal(t, "why", signal.Reason())

	// Second abort is a no-op and keeps the first reason.
	controller.Abort("again")
	assert.Equal(t, []string{"slot", "listener"}, log)
	assert.Equal(t, "why", signal.Reason())
}

func TestPreventDefault(t *testing.T) {
	d := NewDispatcher()
	target := NewTarget()

	Add(target, "submit", HandlerFunc(func(ev *Event) {
		ev.PreventDefault()
	}), AddOptions{})

	cancelable := New("submit", Options{Cancelable: true})
	assert.False(t, d.Dispatch(target, cancelable))
	assert.True(t, cancelable.DefaultPrevented())

	rigid := New("submit", Options{Cancelable: false})
	assert.True(t, d.Dispatch(target, rigid))
	assert.False(t, rigid.DefaultPrevented())
}

func TestRemoveUnregisteredIsNoop(t *testing.T) {
	target := NewTarget()
	Remove(target, "click", HandlerFunc(func(*Event) {}), false)
	assert.Equal(t, 0, target.EventListeners().Len())
}

func TestReentrantSelfRemoval(t *testing.T) {
	d := NewDispatcher()
	target := NewTarget()

	var log []string
	var first *FuncHandler
	first = HandlerFunc(func(*Event) {
		log = append(log, "first")
		Remove(target, "click", first, false)
	})
	Add(target, "click", first, AddOptions{})
	Add(target, "click", recorder(&log, "second"), AddOptions{})

	d.Dispatch(target, New("click", Options{}))
	assert.Equal(t, []string{"first", "second"}, log)

	d.Dispatch(target, New("click", Options{}))
	assert.Equal(t, []string{"first", "second", "second"}, log)
}

func TestReentrantRemovalOfSibling(t *testing.T) {
	d := NewDispatcher()
	target := NewTarget()

	var log []string
	second := recorder(&log, "second")
	Add(target, "click", HandlerFunc(func(*Event) {
		log = append(log, "first")
		Remove(target, "click", second, false)
	}), AddOptions{})
	Add(target, "click", second, AddOptions{})
	Add(target, "click", recorder(&log, "third"), AddOptions{})

	d.Dispatch(target, New("click", Options{}))
	// The removed sibling is skipped, the one after it still runs.
	assert.Equal(t, []string{"first", "third"}, log)
}

func TestReentrantAddDuringDispatch(t *testing.T) {
	d := NewDispatcher()
	target := NewTarget()

	var log []string
	Add(target, "click", HandlerFunc(func(*Event) {
		log = append(log, "first")
		Add(target, "click", recorder(&log, "added"), AddOptions{})
	}), AddOptions{})
	Add(target, "click", recorder(&log, "second"), AddOptions{})

	d.Dispatch(target, New("click", Options{}))
	// Next-capture iteration reaches the appended record: it joined the
	// list before iteration passed the tail.
	assert.Equal(t, []string{"first", "second", "added"}, log)

	log = nil
	d.Dispatch(target, New("click", Options{}))
	assert.Equal(t, []string{"first", "second", "added", "added"}, log)
}

func TestPanickingListenerDoesNotAbortDispatch(t *testing.T) {
	d := NewDispatcher()
	target := NewTarget()

	var log []string
	Add(target, "click", HandlerFunc(func(*Event) {
		log = append(log, "boom")
		panic("listener failure")
	}), AddOptions{})
	Add(target, "click", recorder(&log, "after"), AddOptions{})

	assert.NotPanics(t, func() {
		d.Dispatch(target, New("click", Options{}))
	})
	assert.Equal(t, []string{"boom", "after"}, log)
}

func TestDispatchWithHandler(t *testing.T) {
	d := NewDispatcher()
	target := NewTarget()

	var log []string
	Add(target, "readystatechange", recorder(&log, "listener"), AddOptions{})

	ev := New("readystatechange", Options{})
	d.DispatchWithHandler(target, ev, func(e *Event) {
		log = append(log, "slot")
		assert.Same(t, target, e.CurrentTarget)
	})
	assert.Equal(t, []string{"slot", "listener"}, log)
	assert.Equal(t, PhaseNone, ev.Phase)

	// Nil slot still runs the registry.
	d.DispatchWithHandler(target, New("readystatechange", Options{}), nil)
	assert.Equal(t, []string{"slot", "listener", "listener"}, log)
}
