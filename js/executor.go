package js

import (
	"fmt"

	"github.com/ajmills/ghostdom/dom"
	"github.com/ajmills/ghostdom/event"
	ghtml "github.com/ajmills/ghostdom/html"
)

// ScriptExecutor wires a runtime, its event binder, and its DOM binder
// into one session: bind a document, run its scripts, dispatch synthetic
// events.
type ScriptExecutor struct {
	runtime *Runtime
	events  *EventBinder
	dom     *DOMBinder
}

// NewScriptExecutor sets up the full binding stack on a runtime: event
// constructors, XHR, and the window event target.
func NewScriptExecutor(runtime *Runtime) *ScriptExecutor {
	events := NewEventBinder(runtime)
	events.SetupEventConstructors()
	events.SetupXHR(nil)
	events.BindEventTarget(runtime.vm.GlobalObject(), runtime.windowTarget)

	return &ScriptExecutor{
		runtime: runtime,
		events:  events,
		dom:     NewDOMBinder(runtime, events),
	}
}

// Runtime returns the underlying runtime.
func (se *ScriptExecutor) Runtime() *Runtime {
	return se.runtime
}

// Events returns the event binder.
func (se *ScriptExecutor) Events() *EventBinder {
	return se.events
}

// DOM returns the DOM binder.
func (se *ScriptExecutor) DOM() *DOMBinder {
	return se.dom
}

// SetupDocument binds doc as the runtime's document global.
func (se *ScriptExecutor) SetupDocument(doc *dom.Document) {
	se.dom.BindDocument(doc)
}

// RunScripts executes every inline script in the document, in order.
// Script errors are collected, not fatal.
func (se *ScriptExecutor) RunScripts(doc *dom.Document) []error {
	var errs []error
	for i, code := range ghtml.ScriptContents(doc) {
		if err := se.runtime.ExecuteScript(code, fmt.Sprintf("inline-script-%d", i)); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Click dispatches a trusted click at the element through the full
// capture/target/bubble walk and reports whether the default action
// should proceed.
func (se *ScriptExecutor) Click(el *dom.Element) bool {
	ev := event.NewMouse("click", event.MouseData{}, event.Options{Bubbles: true, Cancelable: true})
	ev.IsTrusted = true
	return se.runtime.dispatcher.Dispatch(el.AsNode(), ev)
}

// DispatchSimple dispatches a trusted plain event of the given type at a
// node; used for synthetic lifecycle events such as load and
// readystatechange on the document.
func (se *ScriptExecutor) DispatchSimple(n *dom.Node, eventType string, bubbles bool) bool {
	ev := event.New(eventType, event.Options{Bubbles: bubbles})
	ev.IsTrusted = true
	return se.runtime.dispatcher.Dispatch(n, ev)
}
