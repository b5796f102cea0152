// Package jsbridge implements a bidirectional message bridge between code
// running on an embedded, single-threaded execution surface (the "web side")
// and the host application embedding it.
//
// The two sides are connected by asymmetric native transports. The host may
// always deliver events and calls into the bridge ([Bridge.DeliverEvent],
// [Bridge.DeliverCall]). In the other direction, a host either exposes an
// entry point that accepts pushed calls ([PushTarget]), or it can only
// observe navigation attempts made through its [Document], after which it
// must pull the payload ([Bridge.FetchStaged]). The bridge selects the
// strategy on every emission.
//
// # Components
//
//   - [Router]: ordered, named subscriptions, dispatch stops when a handler
//     returns false
//   - [Resolver]: resolves a dotted path such as "window.math.add" to a
//     [Callable], by walking a [Namespace], without evaluating code
//   - [PendingStore]: staged payloads keyed by a monotonic id, each fetched at
//     most once
//   - the call dispatcher: resolves, invokes, and responds via
//     [ResponseEvent], correlated by request id
//
// # Results
//
// A [Callable] returns an explicitly tagged [Result], either [Immediate], or
// [Deferred] over a [Future], such as an [eventloop.ChainedPromise] adapted
// by [FromPromise].
//
// # Thread Safety
//
// Inbound work is executed on the [eventloop.Loop] passed to [New]. Emit and
// FetchStaged are safe to call from any goroutine.
//
// # Usage
//
//	loop, err := eventloop.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	b, err := jsbridge.New(loop, env, jsbridge.MapNamespace{
//	    "math": map[string]any{
//	        "add": jsbridge.Func(func(args []any) (jsbridge.Result, error) {
//	            return jsbridge.Immediate(args[0].(float64) + args[1].(float64)), nil
//	        }),
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	_ = b.DeliverCall(7, "window.math.add", []any{2.0, 3.0})
//	// env receives _jsbridge_response {"reqId":7,"response":5,"isError":false}
//
//	go loop.Run(ctx)
package jsbridge
