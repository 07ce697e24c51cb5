package js

import (
	"errors"

	"github.com/dop251/goja"

	"github.com/ajmills/ghostdom/event"
)

var errAborted = errors.New("signal is aborted without reason")

// SetupEventConstructors installs Event, CustomEvent, ProgressEvent,
// MouseEvent, EventTarget, AbortController, and AbortSignal on the global
// object.
func (eb *EventBinder) SetupEventConstructors() {
	vm := eb.runtime.vm

	vm.Set("Event", func(call goja.ConstructorCall) *goja.Object {
		return eb.wrapEvent(event.New(ctorType(call), eb.ctorOptions(call)))
	})

	vm.Set("CustomEvent", func(call goja.ConstructorCall) *goja.Object {
		var detail goja.Value = goja.Null()
		if opts := eb.ctorOptionsObject(call); opts != nil {
			if v := opts.Get("detail"); v != nil && !goja.IsUndefined(v) {
				detail = v
			}
		}
		return eb.wrapEvent(event.NewCustom(ctorType(call), detail, eb.ctorOptions(call)))
	})

	vm.Set("ProgressEvent", func(call goja.ConstructorCall) *goja.Object {
		var lengthComputable bool
		var loaded, total int64
		if opts := eb.ctorOptionsObject(call); opts != nil {
			lengthComputable = propBool(opts, "lengthComputable")
			loaded = propInt64(opts, "loaded")
			total = propInt64(opts, "total")
		}
		return eb.wrapEvent(event.NewProgress(ctorType(call), lengthComputable, loaded, total))
	})

	vm.Set("MouseEvent", func(call goja.ConstructorCall) *goja.Object {
		var data event.MouseData
		if opts := eb.ctorOptionsObject(call); opts != nil {
			data.ClientX = propFloat(opts, "clientX")
			data.ClientY = propFloat(opts, "clientY")
			data.ScreenX = propFloat(opts, "screenX")
			data.ScreenY = propFloat(opts, "screenY")
			data.Button = int(propInt64(opts, "button"))
			data.Buttons = int(propInt64(opts, "buttons"))
			data.CtrlKey = propBool(opts, "ctrlKey")
			data.ShiftKey = propBool(opts, "shiftKey")
			data.AltKey = propBool(opts, "altKey")
			data.MetaKey = propBool(opts, "metaKey")
		}
		return eb.wrapEvent(event.NewMouse(ctorType(call), data, eb.ctorOptions(call)))
	})

	vm.Set("EventTarget", func(call goja.ConstructorCall) *goja.Object {
		obj := vm.NewObject()
		eb.BindEventTarget(obj, event.NewTarget())
		return obj
	})

	vm.Set("AbortController", func(call goja.ConstructorCall) *goja.Object {
		controller := event.NewController(eb.runtime.dispatcher)
		signalObj := eb.bindSignal(controller.Signal())

		obj := vm.NewObject()
		obj.Set("signal", signalObj)
		obj.Set("abort", func(call goja.FunctionCall) goja.Value {
			var reason goja.Value = goja.Undefined()
			if len(call.Arguments) > 0 {
				reason = call.Arguments[0]
			}
			controller.Abort(reason)
			return goja.Undefined()
		})
		return obj
	})

	abortSignal := vm.NewObject()
	abortSignal.Set("abort", func(call goja.FunctionCall) goja.Value {
		var reason goja.Value = goja.Undefined()
		if len(call.Arguments) > 0 {
			reason = call.Arguments[0]
		}
		return eb.bindSignal(event.AbortedSignal(reason))
	})
	vm.Set("AbortSignal", abortSignal)
}

// bindSignal wraps a core signal as a JS AbortSignal: an event target with
// aborted/reason/throwIfAborted and the onabort single-slot handler.
func (eb *EventBinder) bindSignal(signal *event.Signal) *goja.Object {
	vm := eb.runtime.vm
	obj := vm.NewObject()
	eb.BindEventTarget(obj, signal)
	eb.signals[obj] = signal

	obj.DefineAccessorProperty("aborted",
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(signal.Aborted())
		}),
		goja.Undefined(), goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("reason",
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if reason, ok := signal.Reason().(goja.Value); ok {
				return reason
			}
			return goja.Undefined()
		}),
		goja.Undefined(), goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.Set("throwIfAborted", func(call goja.FunctionCall) goja.Value {
		if signal.Aborted() {
			if reason, ok := signal.Reason().(goja.Value); ok && !goja.IsUndefined(reason) {
				panic(reason)
			}
			panic(vm.NewGoError(errAborted))
		}
		return goja.Undefined()
	})

	// onabort: single-slot handler fired alongside registered listeners.
	var onabortValue goja.Value = goja.Null()
	obj.DefineAccessorProperty("onabort",
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return onabortValue
		}),
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 1 || goja.IsNull(call.Arguments[0]) || goja.IsUndefined(call.Arguments[0]) {
				onabortValue = goja.Null()
				signal.OnAbort = nil
				return goja.Undefined()
			}
			callable, ok := goja.AssertFunction(call.Arguments[0])
			if !ok {
				return goja.Undefined()
			}
			onabortValue = call.Arguments[0]
			handler := &jsHandler{
				id:       event.NextHandlerID(),
				binder:   eb,
				callable: callable,
				value:    call.Arguments[0],
			}
			signal.OnAbort = handler.HandleEvent
			return goja.Undefined()
		}),
		goja.FLAG_FALSE, goja.FLAG_TRUE)

	return obj
}

func ctorType(call goja.ConstructorCall) string {
	if len(call.Arguments) > 0 {
		return call.Arguments[0].String()
	}
	return ""
}

func (eb *EventBinder) ctorOptionsObject(call goja.ConstructorCall) *goja.Object {
	if len(call.Arguments) < 2 || goja.IsUndefined(call.Arguments[1]) || goja.IsNull(call.Arguments[1]) {
		return nil
	}
	return call.Arguments[1].ToObject(eb.runtime.vm)
}

func (eb *EventBinder) ctorOptions(call goja.ConstructorCall) event.Options {
	opts := eb.ctorOptionsObject(call)
	if opts == nil {
		return event.Options{}
	}
	return event.Options{
		Bubbles:    propBool(opts, "bubbles"),
		Cancelable: propBool(opts, "cancelable"),
		Composed:   propBool(opts, "composed"),
	}
}
