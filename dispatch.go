package jsbridge

import (
	"fmt"
	"sync/atomic"
)

// DeliverCall is the inbound entry point for remote procedure calls. The
// call is scheduled on the loop, where path is resolved against the
// namespace and invoked with args. The outcome is sent to the host as a
// [Response], emitted as [ResponseEvent], correlated by reqID.
//
// Calls to paths that fail to resolve are handled per the configured
// [UnresolvedPolicy]. Failures of the callable itself (returned errors,
// panics, rejected futures) are always reported as error responses.
func (b *Bridge) DeliverCall(reqID int64, path string, args []any) error {
	if b.closed.Load() {
		return ErrClosed
	}
	if err := b.loop.Submit(func() {
		b.dispatchCall(reqID, path, args)
	}); err != nil {
		return fmt.Errorf("jsbridge: deliver call %q: %w", path, err)
	}
	return nil
}

func (b *Bridge) dispatchCall(reqID int64, path string, args []any) {
	if b.closed.Load() {
		return
	}

	fn, ok := b.resolver.Resolve(b.namespace, path)
	if !ok {
		if b.allowWarning(unresolvedCategory(path)) {
			b.logger.Warning().
				Int64(`reqId`, reqID).
				Str(`path`, path).
				Bool(`dropped`, b.unresolved == DropUnresolved).
				Log(`call to unresolved function`)
		}
		if b.unresolved == ReportUnresolved {
			b.respond(reqID, &NotFoundError{Path: path}, true)
		}
		return
	}

	result, err := invoke(fn, args)
	if err != nil {
		b.logger.Debug().
			Int64(`reqId`, reqID).
			Str(`path`, path).
			Err(err).
			Log(`call failed`)
		b.respond(reqID, err, true)
		return
	}

	if !result.IsDeferred() {
		b.respond(reqID, result.Value(), false)
		return
	}

	var settled atomic.Bool
	settle := func(value any, isError bool) {
		if !settled.CompareAndSwap(false, true) {
			return
		}
		if err := b.loop.Submit(func() {
			b.respond(reqID, value, isError)
		}); err != nil {
			b.logger.Err().
				Int64(`reqId`, reqID).
				Err(err).
				Log(`failed to schedule deferred response`)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			settle(PanicError{Value: r}, true)
		}
	}()

	result.Future().Then(
		func(value any) { settle(value, false) },
		func(reason any) { settle(reason, true) },
	)
}

// invoke calls fn, converting panics to errors.
func invoke(fn Callable, args []any) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = PanicError{Value: r}
		}
	}()
	return fn.Call(args)
}

func (b *Bridge) respond(reqID int64, value any, isError bool) {
	if isError {
		value = errorReason(value)
	}

	payload, err := EncodePayload(Response{
		ReqID:    reqID,
		Response: value,
		IsError:  isError,
	})
	if err != nil {
		// the value is not representable, report that instead
		payload, _ = EncodePayload(Response{
			ReqID:    reqID,
			Response: fmt.Sprintf("jsbridge: encode response: %v", err),
			IsError:  true,
		})
	}

	if err := b.emit(ResponseEvent, RawPayload(payload)); err != nil {
		b.logger.Err().
			Int64(`reqId`, reqID).
			Err(err).
			Log(`failed to send response`)
	}
}

type unresolvedCategory string
