// Package gojabridge exposes a [jsbridge.Bridge] to JavaScript running in a
// [goja.Runtime], with the runtime's global object serving as the namespace
// resolved by inbound calls.
//
// # JavaScript API
//
// The exports object, obtained via require() (see [Require]) or as a global
// (see [Module.Enable]), provides:
//
//	bridge.on(name, fn)       // fn(data) may return false to stop dispatch
//	bridge.off(name, fn)      // removes the first registration of fn
//	bridge.emit(name, data)   // strings verbatim, otherwise JSON.stringify
//
// Hosts that can only inject script strings use the entry points:
//
//	bridge._handleMessageFromNative(name, payload)
//	bridge._handleFunctionCall(reqId, path, args)
//	bridge._fetchQueue(id)    // the staged payload, or null
//
// # Calls
//
// Functions reachable from the global object, e.g. "window.math.add", are
// invoked with the global object as this. A returned thenable is
// treated as a deferred result. Thrown values and rejection reasons are sent
// as error responses, Error objects as their message.
//
// # Thread Safety
//
// The runtime must only be accessed from the bridge's event loop.
package gojabridge
