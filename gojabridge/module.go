package gojabridge

import (
	"fmt"

	"github.com/dop251/goja"
	jsbridge "github.com/joeycumines/go-jsbridge"
)

// Module exposes a [jsbridge.Bridge] to a [goja.Runtime]. Each Module is
// bound to a single runtime, which must only be accessed from the bridge's
// event loop.
type Module struct {
	runtime *goja.Runtime
	bridge  *jsbridge.Bridge
}

// New creates a new [Module] bound to the given [goja.Runtime].
//
// New panics if runtime is nil, as this is a programming error. It returns
// an error if option validation fails or if required options are missing.
func New(runtime *goja.Runtime, opts ...Option) (*Module, error) {
	if runtime == nil {
		panic("gojabridge: runtime must not be nil")
	}

	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	return &Module{
		runtime: runtime,
		bridge:  cfg.bridge,
	}, nil
}

// Runtime returns the [goja.Runtime] this module is bound to.
func (m *Module) Runtime() *goja.Runtime {
	return m.runtime
}

// Bridge returns the bridge this module exposes.
func (m *Module) Bridge() *jsbridge.Bridge {
	return m.bridge
}

// SetupExports wires the module's JS API onto the given exports object.
// This is equivalent to the setup performed by [Require] but allows
// external consumers to configure exports without the require() mechanism.
func (m *Module) SetupExports(exports *goja.Object) {
	m.setupExports(exports)
}

// Enable sets a global object named name, carrying the module's JS API.
// Hosts that inject script strings address the entry points through it,
// e.g. `jsbridge._handleMessageFromNative("evt", {...})`.
func (m *Module) Enable(name string) error {
	exports := m.runtime.NewObject()
	m.setupExports(exports)
	return m.runtime.Set(name, exports)
}

// setupExports wires the module's JS API onto the given exports object.
//
// Exports:
//   - on(name, fn), off(name, fn), emit(name, data)
//   - _handleMessageFromNative(name, payload)
//   - _handleFunctionCall(reqId, path, args)
//   - _fetchQueue(id)
func (m *Module) setupExports(exports *goja.Object) {
	_ = exports.Set("on", m.runtime.ToValue(m.jsOn))
	_ = exports.Set("off", m.runtime.ToValue(m.jsOff))
	_ = exports.Set("emit", m.runtime.ToValue(m.jsEmit))
	_ = exports.Set("_handleMessageFromNative", m.runtime.ToValue(m.jsHandleMessageFromNative))
	_ = exports.Set("_handleFunctionCall", m.runtime.ToValue(m.jsHandleFunctionCall))
	_ = exports.Set("_fetchQueue", m.runtime.ToValue(m.jsFetchQueue))
}

// jsOn subscribes a JS function. The function may return false to stop
// the dispatch. The function value is the registration's key, so any
// module over the same bridge may remove it.
//
// JS: bridge.on(name, fn)
func (m *Module) jsOn(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	fnVal := call.Argument(1)
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		panic(m.runtime.NewTypeError("on: handler for %q is not a function", name))
	}

	_, err := m.bridge.OnWithKey(name, fnVal, func(data any) bool {
		ret, err := fn(goja.Undefined(), m.runtime.ToValue(data))
		if err != nil {
			panic(m.thrown(err))
		}
		if b, ok := ret.Export().(bool); ok && !b {
			return false
		}
		return true
	})
	if err != nil {
		panic(m.runtime.NewTypeError("on: %v", err))
	}

	return goja.Undefined()
}

// jsOff removes the first registration of fn for name.
//
// JS: bridge.off(name, fn)
func (m *Module) jsOff(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	fnVal := call.Argument(1)

	m.bridge.OffKey(name, func(key any) bool {
		v, ok := key.(goja.Value)
		return ok && v.SameAs(fnVal)
	})

	return goja.Undefined()
}

// jsEmit sends data to the host. Strings are sent verbatim, other values
// are encoded with JSON.stringify.
//
// JS: bridge.emit(name, data)
func (m *Module) jsEmit(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	payload, err := m.stringify(call.Argument(1))
	if err != nil {
		panic(m.thrown(err))
	}
	if err := m.bridge.Emit(name, jsbridge.RawPayload(payload)); err != nil {
		panic(m.runtime.NewGoError(fmt.Errorf("emit %q: %w", name, err)))
	}
	return goja.Undefined()
}

// jsHandleMessageFromNative schedules dispatch of an inbound event.
//
// JS: bridge._handleMessageFromNative(name, payload)
func (m *Module) jsHandleMessageFromNative(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	if err := m.bridge.DeliverEvent(name, exportValue(call.Argument(1))); err != nil {
		panic(m.runtime.NewGoError(err))
	}
	return goja.Undefined()
}

// jsHandleFunctionCall schedules an inbound call, the response to which is
// emitted as [jsbridge.ResponseEvent].
//
// JS: bridge._handleFunctionCall(reqId, path, args)
func (m *Module) jsHandleFunctionCall(call goja.FunctionCall) goja.Value {
	reqID := call.Argument(0).ToInteger()
	path := call.Argument(1).String()

	var args []any
	if v := call.Argument(2); !goja.IsUndefined(v) && !goja.IsNull(v) {
		if err := m.runtime.ExportTo(v, &args); err != nil {
			panic(m.runtime.NewTypeError("_handleFunctionCall: args must be an array: %v", err))
		}
	}

	if err := m.bridge.DeliverCall(reqID, path, args); err != nil {
		panic(m.runtime.NewGoError(err))
	}
	return goja.Undefined()
}

// jsFetchQueue returns, and consumes, a staged payload, or null.
//
// JS: bridge._fetchQueue(id)
func (m *Module) jsFetchQueue(call goja.FunctionCall) goja.Value {
	payload, ok := m.bridge.FetchStaged(call.Argument(0).ToInteger())
	if !ok {
		return goja.Null()
	}
	return m.runtime.ToValue(payload)
}

func (m *Module) stringify(v goja.Value) (string, error) {
	if v == nil || goja.IsUndefined(v) {
		return `null`, nil
	}
	if s, ok := v.Export().(string); ok {
		return s, nil
	}
	stringify, ok := goja.AssertFunction(m.runtime.Get("JSON").ToObject(m.runtime).Get("stringify"))
	if !ok {
		return ``, fmt.Errorf("gojabridge: JSON.stringify is not a function")
	}
	ret, err := stringify(goja.Undefined(), v)
	if err != nil {
		return ``, err
	}
	if goja.IsUndefined(ret) {
		return `null`, nil
	}
	return ret.String(), nil
}
