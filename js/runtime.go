// Package js binds the dom tree and the event dispatch core to the goja
// JavaScript engine (pure Go ES5.1+ implementation), exposing the
// EventTarget surface, event constructors, and XMLHttpRequest to script.
package js

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/ajmills/ghostdom/event"
)

// Runtime wraps a goja runtime with the event dispatcher and browser
// globals. A Runtime and everything bound to it must be driven from a
// single goroutine; dispatch is synchronous and re-entrant, not
// thread-safe.
type Runtime struct {
	vm           *goja.Runtime
	logger       *zap.Logger
	dispatcher   *event.Dispatcher
	windowTarget *event.Basic
	startTime    time.Time
	errors       []error
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithLogger routes console output and swallowed listener errors to l.
func WithLogger(l *zap.Logger) RuntimeOption {
	return func(r *Runtime) { r.logger = l }
}

// NewRuntime creates a JavaScript runtime with window, console, and
// performance globals set up.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		vm:           goja.New(),
		logger:       zap.NewNop(),
		windowTarget: event.NewTarget(),
		startTime:    time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.dispatcher = event.NewDispatcher(
		event.WithWindow(r.windowTarget),
		event.WithLogger(r.logger),
	)

	r.setupConsole()
	r.setupWindow()
	return r
}

// VM returns the underlying goja runtime.
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// Dispatcher returns the event dispatcher shared by all bindings.
func (r *Runtime) Dispatcher() *event.Dispatcher {
	return r.dispatcher
}

// WindowTarget returns the synthetic window root event target.
func (r *Runtime) WindowTarget() *event.Basic {
	return r.windowTarget
}

// Execute runs JavaScript code and returns the result. Panics from the
// goja parser or runtime are recovered into errors.
func (r *Runtime) Execute(code string) (result goja.Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script execution panic: %v", p)
			r.errors = append(r.errors, err)
		}
	}()

	result, err = r.vm.RunString(code)
	if err != nil {
		r.errors = append(r.errors, err)
	}
	return result, err
}

// ExecuteScript runs script-element code, compiled in sloppy mode with a
// source name for error reporting. Errors are recorded and returned, not
// fatal: subsequent scripts still run.
func (r *Runtime) ExecuteScript(code, src string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script compilation panic in %s: %v", src, p)
			r.errors = append(r.errors, err)
		}
	}()

	program, err := goja.Compile(src, code, false)
	if err != nil {
		r.errors = append(r.errors, err)
		return err
	}
	if _, err = r.vm.RunProgram(program); err != nil {
		r.errors = append(r.errors, err)
	}
	return err
}

// Errors returns all errors recorded during execution.
func (r *Runtime) Errors() []error {
	return append([]error{}, r.errors...)
}

// setupConsole wires the console object into the structured logger.
func (r *Runtime) setupConsole() {
	console := r.vm.NewObject()

	logAt := func(log func(msg string, fields ...zap.Field)) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			log(formatArgs(call.Arguments))
			return goja.Undefined()
		}
	}

	console.Set("log", logAt(r.logger.Info))
	console.Set("info", logAt(r.logger.Info))
	console.Set("debug", logAt(r.logger.Debug))
	console.Set("warn", logAt(r.logger.Warn))
	console.Set("error", logAt(r.logger.Error))
	console.Set("trace", logAt(r.logger.Debug))
	console.Set("assert", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 || !call.Arguments[0].ToBoolean() {
			msg := "assertion failed"
			if len(call.Arguments) > 1 {
				msg = formatArgs(call.Arguments[1:])
			}
			r.logger.Error(msg, zap.String("source", "console.assert"))
		}
		return goja.Undefined()
	})

	r.vm.Set("console", console)
}

// setupWindow makes the global object double as window/self/globalThis
// and installs the performance global.
func (r *Runtime) setupWindow() {
	window := r.vm.GlobalObject()
	r.vm.Set("window", window)
	r.vm.Set("self", window)
	r.vm.Set("globalThis", window)

	performance := r.vm.NewObject()
	performance.Set("now", func(call goja.FunctionCall) goja.Value {
		return r.vm.ToValue(float64(time.Since(r.startTime).Nanoseconds()) / 1e6)
	})
	performance.Set("timeOrigin", float64(r.startTime.UnixNano())/1e6)
	r.vm.Set("performance", performance)
}

// eventTimeStamp converts an event creation time to a DOMHighResTimeStamp
// relative to the runtime's time origin.
func (r *Runtime) eventTimeStamp(t time.Time) float64 {
	return float64(t.Sub(r.startTime).Nanoseconds()) / 1e6
}

// formatArgs formats function call arguments for console output.
func formatArgs(args []goja.Value) string {
	result := ""
	for i, arg := range args {
		if i > 0 {
			result += " "
		}
		result += formatValue(arg)
	}
	return result
}

// formatValue formats a single value for output.
func formatValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	return v.String()
}
