package js

import (
	"github.com/dop251/goja"

	"github.com/ajmills/ghostdom/dom"
	"github.com/ajmills/ghostdom/event"
)

// elementHandlerNames are the on<event> slots defined on every bound
// element object.
var elementHandlerNames = []string{"click", "input", "change", "load", "error"}

// DOMBinder exposes a dom tree to JavaScript: the document object, node
// and element wrappers, and their EventTarget surface.
type DOMBinder struct {
	runtime  *Runtime
	events   *EventBinder
	document *dom.Document
	nodes    map[*dom.Node]*goja.Object
}

// NewDOMBinder creates a DOM binder sharing the event binder's target map.
func NewDOMBinder(runtime *Runtime, events *EventBinder) *DOMBinder {
	return &DOMBinder{
		runtime: runtime,
		events:  events,
		nodes:   make(map[*dom.Node]*goja.Object),
	}
}

// BindDocument makes doc the runtime's document global and returns its JS
// object.
func (b *DOMBinder) BindDocument(doc *dom.Document) *goja.Object {
	vm := b.runtime.vm
	b.document = doc

	obj := vm.NewObject()
	b.events.BindEventTarget(obj, doc.AsNode())

	obj.Set("nodeType", int(dom.DocumentNode))
	obj.Set("nodeName", "#document")

	obj.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(vm.NewTypeError("createElement requires a tag name"))
		}
		el := doc.CreateElement(call.Arguments[0].String())
		return b.NodeObject(el.AsNode())
	})
	obj.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		text := ""
		if len(call.Arguments) > 0 {
			text = call.Arguments[0].String()
		}
		return b.NodeObject(doc.CreateTextNode(text))
	})
	obj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Null()
		}
		el := doc.GetElementById(call.Arguments[0].String())
		if el == nil {
			return goja.Null()
		}
		return b.NodeObject(el.AsNode())
	})
	obj.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return vm.ToValue([]goja.Value{})
		}
		var out []goja.Value
		for _, el := range doc.GetElementsByTagName(call.Arguments[0].String()) {
			out = append(out, b.NodeObject(el.AsNode()))
		}
		return vm.ToValue(out)
	})

	obj.DefineAccessorProperty("documentElement",
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if root := doc.DocumentElement(); root != nil {
				return b.NodeObject(root.AsNode())
			}
			return goja.Null()
		}),
		goja.Undefined(), goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("body",
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if body := doc.Body(); body != nil {
				return b.NodeObject(body.AsNode())
			}
			return goja.Null()
		}),
		goja.Undefined(), goja.FLAG_FALSE, goja.FLAG_TRUE)

	vm.Set("document", obj)
	return obj
}

// NodeObject returns the JS wrapper for a dom node, creating and caching
// it on first use so node identity is stable across lookups.
func (b *DOMBinder) NodeObject(n *dom.Node) *goja.Object {
	if obj, ok := b.nodes[n]; ok {
		return obj
	}
	vm := b.runtime.vm
	obj := vm.NewObject()
	b.nodes[n] = obj
	b.events.BindEventTarget(obj, n)

	obj.Set("nodeType", int(n.NodeType()))
	obj.Set("nodeName", n.NodeName())

	obj.DefineAccessorProperty("parentNode",
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if parent := n.ParentNode(); parent != nil {
				return b.NodeObject(parent)
			}
			return goja.Null()
		}),
		goja.Undefined(), goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("firstChild",
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if child := n.FirstChild(); child != nil {
				return b.NodeObject(child)
			}
			return goja.Null()
		}),
		goja.Undefined(), goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("nextSibling",
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if sibling := n.NextSibling(); sibling != nil {
				return b.NodeObject(sibling)
			}
			return goja.Null()
		}),
		goja.Undefined(), goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("textContent",
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(n.TextContent())
		}),
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 1 {
				return goja.Undefined()
			}
			for n.FirstChild() != nil {
				n.RemoveChild(n.FirstChild())
			}
			if doc := n.OwnerDocument(); doc != nil {
				n.AppendChild(doc.CreateTextNode(call.Arguments[0].String()))
			}
			return goja.Undefined()
		}),
		goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		child := b.nodeArg(call, 0)
		if child == nil {
			panic(vm.NewTypeError("appendChild requires a node"))
		}
		n.AppendChild(child)
		return b.NodeObject(child)
	})
	obj.Set("insertBefore", func(call goja.FunctionCall) goja.Value {
		child := b.nodeArg(call, 0)
		if child == nil {
			panic(vm.NewTypeError("insertBefore requires a node"))
		}
		n.InsertBefore(child, b.nodeArg(call, 1))
		return b.NodeObject(child)
	})
	obj.Set("removeChild", func(call goja.FunctionCall) goja.Value {
		child := b.nodeArg(call, 0)
		if child == nil {
			panic(vm.NewTypeError("removeChild requires a node"))
		}
		n.RemoveChild(child)
		return b.NodeObject(child)
	})

	if el := n.AsElement(); el != nil {
		b.bindElement(obj, el)
	}
	return obj
}

// bindElement adds the element-specific surface to a node wrapper.
func (b *DOMBinder) bindElement(obj *goja.Object, el *dom.Element) {
	vm := b.runtime.vm
	n := el.AsNode()

	obj.Set("tagName", el.TagName())

	obj.DefineAccessorProperty("id",
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(el.Id())
		}),
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) > 0 {
				el.SetAttribute("id", call.Arguments[0].String())
			}
			return goja.Undefined()
		}),
		goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Null()
		}
		name := call.Arguments[0].String()
		if !el.HasAttribute(name) {
			return goja.Null()
		}
		return vm.ToValue(el.GetAttribute(name))
	})
	obj.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) >= 2 {
			el.SetAttribute(call.Arguments[0].String(), call.Arguments[1].String())
		}
		return goja.Undefined()
	})
	obj.Set("removeAttribute", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) >= 1 {
			el.RemoveAttribute(call.Arguments[0].String())
		}
		return goja.Undefined()
	})
	obj.Set("hasAttribute", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return vm.ToValue(false)
		}
		return vm.ToValue(el.HasAttribute(call.Arguments[0].String()))
	})

	obj.Set("attachShadow", func(call goja.FunctionCall) goja.Value {
		mode := dom.ShadowRootModeOpen
		if len(call.Arguments) > 0 {
			if optObj := call.Arguments[0].ToObject(vm); optObj != nil {
				if v := optObj.Get("mode"); v != nil && v.String() == "closed" {
					mode = dom.ShadowRootModeClosed
				}
			}
		}
		sr := el.AttachShadow(mode)
		srObj := b.NodeObject(sr.AsNode())
		srObj.Set("mode", string(sr.Mode()))
		return srObj
	})
	obj.DefineAccessorProperty("shadowRoot",
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if sr := el.ShadowRoot(); sr != nil {
				return b.NodeObject(sr.AsNode())
			}
			return goja.Null()
		}),
		goja.Undefined(), goja.FLAG_FALSE, goja.FLAG_TRUE)

	// click() dispatches a trusted MouseEvent through the full tree walk.
	obj.Set("click", func(call goja.FunctionCall) goja.Value {
		ev := event.NewMouse("click", event.MouseData{}, event.Options{Bubbles: true, Cancelable: true})
		ev.IsTrusted = true
		b.runtime.dispatcher.Dispatch(n, ev)
		return goja.Undefined()
	})

	for _, name := range elementHandlerNames {
		b.events.DefineEventHandler(obj, n, name)
	}
}

// nodeArg resolves a JS argument back to its dom node.
func (b *DOMBinder) nodeArg(call goja.FunctionCall, idx int) *dom.Node {
	if len(call.Arguments) <= idx {
		return nil
	}
	obj := call.Arguments[idx].ToObject(b.runtime.vm)
	if obj == nil {
		return nil
	}
	for node, candidate := range b.nodes {
		if candidate == obj {
			return node
		}
	}
	return nil
}
