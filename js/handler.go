package js

import (
	"github.com/dop251/goja"

	"github.com/ajmills/ghostdom/event"
)

// DefineEventHandler installs an on<event> accessor property on obj. The
// slot holds at most one function, stored separately from addEventListener
// registrations: both fire on dispatch and each is removable without
// affecting the other. Assignment replaces the previous slot listener;
// assigning null clears it.
func (eb *EventBinder) DefineEventHandler(obj *goja.Object, target event.Target, eventType string) {
	vm := eb.runtime.vm

	var current goja.Value = goja.Null()
	var slot *jsHandler

	obj.DefineAccessorProperty("on"+eventType,
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return current
		}),
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if slot != nil {
				event.Remove(target, eventType, slot, false)
				slot = nil
			}
			current = goja.Null()
			if len(call.Arguments) < 1 || goja.IsNull(call.Arguments[0]) || goja.IsUndefined(call.Arguments[0]) {
				return goja.Undefined()
			}
			callable, ok := goja.AssertFunction(call.Arguments[0])
			if !ok {
				return goja.Undefined()
			}
			current = call.Arguments[0]
			// A fresh identity per assignment: the slot never collides
			// with an addEventListener registration of the same function.
			slot = &jsHandler{
				id:       event.NextHandlerID(),
				binder:   eb,
				callable: callable,
				value:    call.Arguments[0],
			}
			event.Add(target, eventType, slot, event.AddOptions{})
			return goja.Undefined()
		}),
		goja.FLAG_FALSE, goja.FLAG_TRUE)
}
