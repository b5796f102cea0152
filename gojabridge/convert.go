package gojabridge

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

// ThrownError is a value thrown by JS code, converted to an error. Its
// message is the thrown value, or the message of a thrown Error.
type ThrownError struct {
	Value any
}

func (e *ThrownError) Error() string {
	return fmt.Sprint(e.Value)
}

// thrownError converts a failed JS call to an error, preserving the thrown
// value.
func thrownError(err error) error {
	var jsExcept *goja.Exception
	if errors.As(err, &jsExcept) {
		return &ThrownError{Value: reason(jsExcept.Value())}
	}
	return err
}

// thrown converts an error back to a JS value that may be thrown.
func (m *Module) thrown(err error) goja.Value {
	var jsExcept *goja.Exception
	if errors.As(err, &jsExcept) {
		return jsExcept.Value()
	}
	return m.runtime.NewGoError(err)
}

// reason converts a rejection reason or thrown value to the form sent to
// the host. Error objects become their message.
func reason(v goja.Value) any {
	if obj, ok := v.(*goja.Object); ok && obj.ClassName() == "Error" {
		if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
			return msg.String()
		}
		return obj.String()
	}
	return exportValue(v)
}

func exportValue(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	return v.Export()
}

// isThenable checks if a goja.Value has a callable "then" method.
func isThenable(val goja.Value) bool {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return false
	}
	obj, ok := val.(*goja.Object)
	if !ok {
		return false
	}
	thenVal := obj.Get("then")
	if thenVal == nil || goja.IsUndefined(thenVal) {
		return false
	}
	_, ok = goja.AssertFunction(thenVal)
	return ok
}

// thenableFuture adapts a JS thenable to [jsbridge.Future]. Then must be
// called from the goroutine that owns runtime.
type thenableFuture struct {
	runtime *goja.Runtime
	value   goja.Value
}

func (x *thenableFuture) Then(onFulfilled func(value any), onRejected func(reason any)) {
	obj := x.value.(*goja.Object)
	thenFn, _ := goja.AssertFunction(obj.Get("then"))

	fulfilled := x.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		onFulfilled(exportValue(call.Argument(0)))
		return goja.Undefined()
	})
	rejected := x.runtime.ToValue(func(call goja.FunctionCall) goja.Value {
		onRejected(reason(call.Argument(0)))
		return goja.Undefined()
	})

	if _, err := thenFn(x.value, fulfilled, rejected); err != nil {
		onRejected(thrownError(err))
	}
}
