// Package host implements the native side of a [jsbridge.Bridge], for both
// kinds of host.
//
// A [PushHost] exposes an entry point the bridge calls directly. A
// [PullHost] only observes navigations: it intercepts handshake signals,
// then pulls each staged payload, draining its queue in batches. Either
// delivers to a [Receiver].
//
// A [Caller] is a Receiver that implements the host's half of remote
// procedure calls, correlating [jsbridge.ResponseEvent] payloads with the
// calls it made.
package host
