package gojabridge

import (
	"github.com/dop251/goja"
	jsbridge "github.com/joeycumines/go-jsbridge"
)

// GlobalNamespace returns a [jsbridge.Namespace] backed by the runtime's
// global object. Functions are resolved as [jsbridge.Callable] values,
// invoked with the global object as `this`. Objects are walked as
// nested namespaces.
//
// The namespace must only be used from the goroutine that owns runtime,
// i.e. the bridge's event loop.
func GlobalNamespace(runtime *goja.Runtime) jsbridge.Namespace {
	return objectNamespace{runtime: runtime, obj: runtime.GlobalObject()}
}

type objectNamespace struct {
	runtime *goja.Runtime
	obj     *goja.Object
}

func (x objectNamespace) Lookup(name string) (any, bool) {
	v := x.obj.Get(name)
	if v == nil {
		return nil, false
	}
	if !v.ToBoolean() {
		return nil, true
	}
	if fn, ok := goja.AssertFunction(v); ok {
		return &jsCallable{runtime: x.runtime, fn: fn, this: x.runtime.GlobalObject()}, true
	}
	if obj, ok := v.(*goja.Object); ok {
		return objectNamespace{runtime: x.runtime, obj: obj}, true
	}
	return v.Export(), true
}

// jsCallable is a JS function, reachable through a namespace.
type jsCallable struct {
	runtime *goja.Runtime
	fn      goja.Callable
	this    goja.Value
}

func (x *jsCallable) Call(args []any) (jsbridge.Result, error) {
	values := make([]goja.Value, len(args))
	for i, arg := range args {
		values[i] = x.runtime.ToValue(arg)
	}

	ret, err := x.fn(x.this, values...)
	if err != nil {
		return jsbridge.Result{}, thrownError(err)
	}

	if isThenable(ret) {
		return jsbridge.Deferred(&thenableFuture{runtime: x.runtime, value: ret}), nil
	}

	return jsbridge.Immediate(exportValue(ret)), nil
}
