package js

import (
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/ajmills/ghostdom/event"
)

// XHR ready states.
const (
	XHRReadyStateUnsent          = 0
	XHRReadyStateOpened          = 1
	XHRReadyStateHeadersReceived = 2
	XHRReadyStateLoading         = 3
	XHRReadyStateDone            = 4
)

// XMLHttpRequest implements the XHR surface over net/http. The object is
// a non-tree event target: readystatechange and the progress events are
// delivered at-target only, through both the on<event> slots and the
// listener registry.
//
// Requests are performed synchronously on send(); there is no event loop
// to defer to in a headless session.
type XMLHttpRequest struct {
	runtime *Runtime
	binder  *EventBinder

	target   *event.Basic
	jsObject *goja.Object
	client   *http.Client

	method string
	url    string

	readyState      int
	status          int
	statusText      string
	responseText    string
	requestHeaders  map[string]string
	responseHeaders http.Header
	opened          bool
	errorFlag       bool

	onreadystatechange goja.Callable
	onload             goja.Callable
	onerror            goja.Callable
	onprogress         goja.Callable
	onloadend          goja.Callable
	onabort            goja.Callable
}

// SetupXHR installs the XMLHttpRequest constructor.
func (eb *EventBinder) SetupXHR(client *http.Client) {
	vm := eb.runtime.vm
	if client == nil {
		client = http.DefaultClient
	}

	vm.Set("XMLHttpRequest", func(call goja.ConstructorCall) *goja.Object {
		xhr := &XMLHttpRequest{
			runtime:        eb.runtime,
			binder:         eb,
			target:         event.NewTarget(),
			client:         client,
			requestHeaders: make(map[string]string),
		}
		xhr.jsObject = vm.NewObject()
		eb.BindEventTarget(xhr.jsObject, xhr.target)
		xhr.defineProperties()
		xhr.defineMethods()
		return xhr.jsObject
	})
}

func (xhr *XMLHttpRequest) defineProperties() {
	vm := xhr.runtime.vm
	obj := xhr.jsObject

	readonly := func(name string, get func() goja.Value) {
		obj.DefineAccessorProperty(name,
			vm.ToValue(func(call goja.FunctionCall) goja.Value { return get() }),
			goja.Undefined(), goja.FLAG_FALSE, goja.FLAG_TRUE)
	}
	readonly("readyState", func() goja.Value { return vm.ToValue(xhr.readyState) })
	readonly("status", func() goja.Value { return vm.ToValue(xhr.status) })
	readonly("statusText", func() goja.Value { return vm.ToValue(xhr.statusText) })
	readonly("responseText", func() goja.Value { return vm.ToValue(xhr.responseText) })
	readonly("response", func() goja.Value { return vm.ToValue(xhr.responseText) })

	obj.Set("UNSENT", XHRReadyStateUnsent)
	obj.Set("OPENED", XHRReadyStateOpened)
	obj.Set("HEADERS_RECEIVED", XHRReadyStateHeadersReceived)
	obj.Set("LOADING", XHRReadyStateLoading)
	obj.Set("DONE", XHRReadyStateDone)

	xhr.defineEventHandler("onreadystatechange", &xhr.onreadystatechange)
	xhr.defineEventHandler("onload", &xhr.onload)
	xhr.defineEventHandler("onerror", &xhr.onerror)
	xhr.defineEventHandler("onprogress", &xhr.onprogress)
	xhr.defineEventHandler("onloadend", &xhr.onloadend)
	xhr.defineEventHandler("onabort", &xhr.onabort)
}

// defineEventHandler creates getter/setter for an event handler property.
func (xhr *XMLHttpRequest) defineEventHandler(name string, handler *goja.Callable) {
	vm := xhr.runtime.vm
	xhr.jsObject.DefineAccessorProperty(name,
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if *handler == nil {
				return goja.Null()
			}
			return vm.ToValue(*handler)
		}),
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 1 || goja.IsNull(call.Arguments[0]) || goja.IsUndefined(call.Arguments[0]) {
				*handler = nil
				return goja.Undefined()
			}
			if fn, ok := goja.AssertFunction(call.Arguments[0]); ok {
				*handler = fn
			}
			return goja.Undefined()
		}),
		goja.FLAG_FALSE, goja.FLAG_TRUE)
}

func (xhr *XMLHttpRequest) defineMethods() {
	vm := xhr.runtime.vm
	obj := xhr.jsObject

	obj.Set("open", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			panic(vm.NewTypeError("XMLHttpRequest.open requires at least 2 arguments"))
		}
		xhr.method = strings.ToUpper(call.Arguments[0].String())
		xhr.url = call.Arguments[1].String()
		xhr.opened = true
		xhr.errorFlag = false
		xhr.status = 0
		xhr.statusText = ""
		xhr.responseText = ""
		xhr.setReadyState(XHRReadyStateOpened)
		return goja.Undefined()
	})

	obj.Set("setRequestHeader", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) >= 2 {
			xhr.requestHeaders[call.Arguments[0].String()] = call.Arguments[1].String()
		}
		return goja.Undefined()
	})

	obj.Set("getResponseHeader", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 || xhr.responseHeaders == nil {
			return goja.Null()
		}
		value := xhr.responseHeaders.Get(call.Arguments[0].String())
		if value == "" {
			return goja.Null()
		}
		return vm.ToValue(value)
	})

	obj.Set("getAllResponseHeaders", func(call goja.FunctionCall) goja.Value {
		if xhr.responseHeaders == nil {
			return vm.ToValue("")
		}
		names := make([]string, 0, len(xhr.responseHeaders))
		for name := range xhr.responseHeaders {
			names = append(names, name)
		}
		sort.Strings(names)
		var sb strings.Builder
		for _, name := range names {
			sb.WriteString(strings.ToLower(name))
			sb.WriteString(": ")
			sb.WriteString(xhr.responseHeaders.Get(name))
			sb.WriteString("\r\n")
		}
		return vm.ToValue(sb.String())
	})

	obj.Set("send", func(call goja.FunctionCall) goja.Value {
		if !xhr.opened || xhr.readyState != XHRReadyStateOpened {
			panic(vm.NewTypeError("XMLHttpRequest state must be OPENED"))
		}
		var body io.Reader
		if len(call.Arguments) > 0 && !goja.IsNull(call.Arguments[0]) && !goja.IsUndefined(call.Arguments[0]) {
			body = strings.NewReader(call.Arguments[0].String())
		}
		xhr.send(body)
		return goja.Undefined()
	})

	obj.Set("abort", func(call goja.FunctionCall) goja.Value {
		xhr.errorFlag = true
		if xhr.readyState != XHRReadyStateUnsent {
			xhr.readyState = XHRReadyStateUnsent
			xhr.fireProgressEvent("abort", xhr.onabort, false, 0, 0)
		}
		return goja.Undefined()
	})
}

func (xhr *XMLHttpRequest) send(body io.Reader) {
	req, err := http.NewRequest(xhr.method, xhr.url, body)
	if err != nil {
		xhr.handleError(err)
		return
	}
	for name, value := range xhr.requestHeaders {
		req.Header.Set(name, value)
	}

	resp, err := xhr.client.Do(req)
	if err != nil {
		xhr.handleError(err)
		return
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		xhr.handleError(err)
		return
	}

	xhr.status = resp.StatusCode
	xhr.statusText = http.StatusText(resp.StatusCode)
	xhr.responseHeaders = resp.Header

	xhr.setReadyState(XHRReadyStateHeadersReceived)
	xhr.setReadyState(XHRReadyStateLoading)
	xhr.fireProgressEvent("progress", xhr.onprogress, true, int64(len(data)), int64(len(data)))
	xhr.responseText = string(data)
	xhr.setReadyState(XHRReadyStateDone)
	xhr.fireProgressEvent("load", xhr.onload, true, int64(len(data)), int64(len(data)))
	xhr.fireProgressEvent("loadend", xhr.onloadend, false, int64(len(data)), int64(len(data)))
}

func (xhr *XMLHttpRequest) handleError(err error) {
	xhr.runtime.logger.Error("xhr request failed",
		zap.String("method", xhr.method),
		zap.String("url", xhr.url),
		zap.Error(err))
	xhr.errorFlag = true
	xhr.setReadyState(XHRReadyStateDone)
	xhr.fireProgressEvent("error", xhr.onerror, false, 0, 0)
	xhr.fireProgressEvent("loadend", xhr.onloadend, false, 0, 0)
}

// setReadyState advances the state machine and fires readystatechange at
// the XHR target: the single-slot handler first, then registered
// listeners, with no tree walk.
func (xhr *XMLHttpRequest) setReadyState(state int) {
	xhr.readyState = state
	ev := event.New("readystatechange", event.Options{})
	ev.IsTrusted = true
	xhr.runtime.dispatcher.DispatchWithHandler(xhr.target, ev, xhr.slot(xhr.onreadystatechange))
}

func (xhr *XMLHttpRequest) fireProgressEvent(eventType string, slot goja.Callable, lengthComputable bool, loaded, total int64) {
	ev := event.NewProgress(eventType, lengthComputable, loaded, total)
	ev.IsTrusted = true
	xhr.runtime.dispatcher.DispatchWithHandler(xhr.target, ev, xhr.slot(slot))
}

// slot adapts an on<event> callable to the dispatcher's handler function.
func (xhr *XMLHttpRequest) slot(callable goja.Callable) func(*event.Event) {
	if callable == nil {
		return nil
	}
	return func(ev *event.Event) {
		jsEv := xhr.binder.jsEvent(ev)
		if _, err := callable(xhr.jsObject, jsEv); err != nil {
			xhr.runtime.logger.Error("xhr event handler threw",
				zap.String("event", ev.Type),
				zap.Error(err))
		}
	}
}
