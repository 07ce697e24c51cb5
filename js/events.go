package js

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/ajmills/ghostdom/event"
)

// EventBinder bridges the event dispatch core into JavaScript: it binds
// EventTarget methods onto goja objects, wraps core events as JS event
// objects, and installs the Event/CustomEvent/ProgressEvent/MouseEvent,
// EventTarget, AbortController and AbortSignal constructors.
type EventBinder struct {
	runtime *Runtime

	// targets maps a core target back to its JS object so target,
	// currentTarget, and composedPath resolve to script-visible values.
	targets map[event.Target]*goja.Object
	// coreOf maps JS event objects to the core event they wrap.
	coreOf map[*goja.Object]*event.Event
	// signals maps JS AbortSignal objects to their core signal.
	signals map[*goja.Object]*event.Signal

	// handlers gives each distinct JS function value one stable handler
	// identity. goja values are not map keys, so lookup scans with SameAs
	// the way registration dedup does.
	handlers []*jsHandler
}

// NewEventBinder creates an event binder for the runtime.
func NewEventBinder(runtime *Runtime) *EventBinder {
	return &EventBinder{
		runtime: runtime,
		targets: make(map[event.Target]*goja.Object),
		coreOf:  make(map[*goja.Object]*event.Event),
		signals: make(map[*goja.Object]*event.Signal),
	}
}

// jsHandler adapts a JS function value to an event.Handler with a stable
// identity, so the registry's (type, handler, capture) dedup works on JS
// function identity.
type jsHandler struct {
	id       event.HandlerID
	binder   *EventBinder
	callable goja.Callable
	value    goja.Value
}

func (h *jsHandler) ID() event.HandlerID {
	return h.id
}

func (h *jsHandler) HandleEvent(ev *event.Event) {
	jsEv := h.binder.jsEvent(ev)
	this := h.binder.jsTarget(ev.CurrentTarget)
	if _, err := h.callable(this, jsEv); err != nil {
		h.binder.runtime.logger.Error("event listener threw",
			zap.String("event", ev.Type),
			zap.Error(err))
	}
}

// handlerFor returns the handler wrapping value, creating one on first
// sight. The same JS function always maps to the same HandlerID.
func (eb *EventBinder) handlerFor(value goja.Value, callable goja.Callable) *jsHandler {
	for _, h := range eb.handlers {
		if h.value.SameAs(value) {
			return h
		}
	}
	h := &jsHandler{
		id:       event.NextHandlerID(),
		binder:   eb,
		callable: callable,
		value:    value,
	}
	eb.handlers = append(eb.handlers, h)
	return h
}

// jsTarget resolves a core target to its bound JS object, or null.
func (eb *EventBinder) jsTarget(t event.Target) goja.Value {
	if t == nil {
		return goja.Null()
	}
	if obj, ok := eb.targets[t]; ok {
		return obj
	}
	return goja.Null()
}

// jsEvent resolves the JS wrapper for a core event, creating one for
// events constructed internally (abort, readystatechange, progress).
func (eb *EventBinder) jsEvent(ev *event.Event) *goja.Object {
	if obj, ok := ev.Ext.(*goja.Object); ok {
		return obj
	}
	return eb.wrapEvent(ev)
}

// wrapEvent builds the JS event object over a core event. State reads go
// through accessors so mutation during dispatch (phase, currentTarget,
// stop flags) is always visible to script.
func (eb *EventBinder) wrapEvent(ev *event.Event) *goja.Object {
	vm := eb.runtime.vm
	obj := vm.NewObject()

	obj.Set("type", ev.Type)
	obj.Set("bubbles", ev.Bubbles)
	obj.Set("cancelable", ev.Cancelable)
	obj.Set("composed", ev.Composed)
	obj.Set("isTrusted", ev.IsTrusted)

	getter := func(get func() goja.Value) goja.Value {
		return vm.ToValue(func(call goja.FunctionCall) goja.Value { return get() })
	}
	obj.DefineAccessorProperty("target",
		getter(func() goja.Value { return eb.jsTarget(ev.Target) }),
		goja.Undefined(), goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("currentTarget",
		getter(func() goja.Value { return eb.jsTarget(ev.CurrentTarget) }),
		goja.Undefined(), goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("eventPhase",
		getter(func() goja.Value { return vm.ToValue(int(ev.Phase)) }),
		goja.Undefined(), goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("defaultPrevented",
		getter(func() goja.Value { return vm.ToValue(ev.DefaultPrevented()) }),
		goja.Undefined(), goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("timeStamp",
		getter(func() goja.Value { return vm.ToValue(eb.runtime.eventTimeStamp(ev.TimeStamp)) }),
		goja.Undefined(), goja.FLAG_FALSE, goja.FLAG_TRUE)

	switch ev.Kind() {
	case event.KindCustom:
		data, _ := ev.AsCustom()
		if detail, ok := data.Detail.(goja.Value); ok {
			obj.Set("detail", detail)
		} else {
			obj.Set("detail", vm.ToValue(data.Detail))
		}
	case event.KindProgress:
		data, _ := ev.AsProgress()
		obj.Set("lengthComputable", data.LengthComputable)
		obj.Set("loaded", data.Loaded)
		obj.Set("total", data.Total)
	case event.KindMouse:
		data, _ := ev.AsMouse()
		obj.Set("clientX", data.ClientX)
		obj.Set("clientY", data.ClientY)
		obj.Set("screenX", data.ScreenX)
		obj.Set("screenY", data.ScreenY)
		obj.Set("button", data.Button)
		obj.Set("buttons", data.Buttons)
		obj.Set("ctrlKey", data.CtrlKey)
		obj.Set("shiftKey", data.ShiftKey)
		obj.Set("altKey", data.AltKey)
		obj.Set("metaKey", data.MetaKey)
	}

	obj.Set("preventDefault", func(call goja.FunctionCall) goja.Value {
		ev.PreventDefault()
		return goja.Undefined()
	})
	obj.Set("stopPropagation", func(call goja.FunctionCall) goja.Value {
		ev.StopPropagation()
		return goja.Undefined()
	})
	obj.Set("stopImmediatePropagation", func(call goja.FunctionCall) goja.Value {
		ev.StopImmediatePropagation()
		return goja.Undefined()
	})
	obj.Set("composedPath", func(call goja.FunctionCall) goja.Value {
		var path []goja.Value
		for _, t := range ev.ComposedPath() {
			if jsObj, ok := eb.targets[t]; ok {
				path = append(path, jsObj)
			}
		}
		return vm.ToValue(path)
	})

	obj.Set("NONE", int(event.PhaseNone))
	obj.Set("CAPTURING_PHASE", int(event.PhaseCapturing))
	obj.Set("AT_TARGET", int(event.PhaseAtTarget))
	obj.Set("BUBBLING_PHASE", int(event.PhaseBubbling))

	ev.Ext = obj
	eb.coreOf[obj] = ev
	return obj
}

// coreEvent resolves the core event behind a JS event object. Events not
// created by this binder's constructors get a plain core event built from
// their visible properties.
func (eb *EventBinder) coreEvent(obj *goja.Object) *event.Event {
	if ev, ok := eb.coreOf[obj]; ok {
		return ev
	}
	ev := event.New(propString(obj, "type"), event.Options{
		Bubbles:    propBool(obj, "bubbles"),
		Cancelable: propBool(obj, "cancelable"),
		Composed:   propBool(obj, "composed"),
	})
	ev.Ext = obj
	eb.coreOf[obj] = ev
	return ev
}

// BindEventTarget adds addEventListener, removeEventListener, and
// dispatchEvent to a JS object, backed by the core target's registry.
func (eb *EventBinder) BindEventTarget(obj *goja.Object, target event.Target) {
	vm := eb.runtime.vm
	eb.targets[target] = obj

	obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		eventType := call.Arguments[0].String()
		callable, ok := goja.AssertFunction(call.Arguments[1])
		if !ok {
			return goja.Undefined()
		}

		opts := eb.parseAddOptions(call.Arguments[2:])
		handler := eb.handlerFor(call.Arguments[1], callable)
		event.Add(target, eventType, handler, opts)
		return goja.Undefined()
	})

	obj.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		eventType := call.Arguments[0].String()
		if _, ok := goja.AssertFunction(call.Arguments[1]); !ok {
			return goja.Undefined()
		}

		capture := false
		if len(call.Arguments) > 2 {
			capture = parseCaptureArg(vm, call.Arguments[2])
		}
		// An unseen function value was never registered; nothing to do.
		for _, h := range eb.handlers {
			if h.value.SameAs(call.Arguments[1]) {
				event.Remove(target, eventType, h, capture)
				break
			}
		}
		return goja.Undefined()
	})

	obj.Set("dispatchEvent", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return vm.ToValue(true)
		}
		jsEv := call.Arguments[0].ToObject(vm)
		if jsEv == nil {
			return vm.ToValue(true)
		}
		ev := eb.coreEvent(jsEv)
		return vm.ToValue(eb.runtime.dispatcher.Dispatch(target, ev))
	})
}

// parseAddOptions interprets the third addEventListener argument: either
// a capture boolean or an options object. A present-but-null signal is a
// TypeError per WebIDL.
func (eb *EventBinder) parseAddOptions(rest []goja.Value) event.AddOptions {
	vm := eb.runtime.vm
	var opts event.AddOptions
	if len(rest) == 0 || goja.IsUndefined(rest[0]) || goja.IsNull(rest[0]) {
		return opts
	}
	arg := rest[0]
	if isBoolValue(arg) {
		opts.Capture = arg.ToBoolean()
		return opts
	}
	optObj := arg.ToObject(vm)
	if optObj == nil {
		return opts
	}
	if v := optObj.Get("capture"); v != nil {
		opts.Capture = v.ToBoolean()
	}
	if v := optObj.Get("once"); v != nil {
		opts.Once = v.ToBoolean()
	}
	if v := optObj.Get("passive"); v != nil {
		opts.Passive = v.ToBoolean()
	}
	if v := optObj.Get("signal"); v != nil && !goja.IsUndefined(v) {
		if goja.IsNull(v) {
			panic(vm.NewTypeError("signal must be an AbortSignal"))
		}
		sigObj := v.ToObject(vm)
		signal, ok := eb.signals[sigObj]
		if !ok {
			panic(vm.NewTypeError("signal must be an AbortSignal"))
		}
		opts.Signal = signal
	}
	return opts
}

func parseCaptureArg(vm *goja.Runtime, arg goja.Value) bool {
	if goja.IsUndefined(arg) || goja.IsNull(arg) {
		return false
	}
	if isBoolValue(arg) {
		return arg.ToBoolean()
	}
	if obj := arg.ToObject(vm); obj != nil {
		if v := obj.Get("capture"); v != nil {
			return v.ToBoolean()
		}
	}
	return false
}

func isBoolValue(v goja.Value) bool {
	t := v.ExportType()
	return t != nil && t.Kind().String() == "bool"
}

func propString(obj *goja.Object, name string) string {
	if v := obj.Get(name); v != nil && !goja.IsUndefined(v) {
		return v.String()
	}
	return ""
}

func propBool(obj *goja.Object, name string) bool {
	if v := obj.Get(name); v != nil && !goja.IsUndefined(v) {
		return v.ToBoolean()
	}
	return false
}

func propInt64(obj *goja.Object, name string) int64 {
	if v := obj.Get(name); v != nil && !goja.IsUndefined(v) {
		return v.ToInteger()
	}
	return 0
}

func propFloat(obj *goja.Object, name string) float64 {
	if v := obj.Get(name); v != nil && !goja.IsUndefined(v) {
		return v.ToFloat()
	}
	return 0
}
