package jsbridge

import (
	"fmt"
)

type (
	// Environment exposes the native capabilities of the host. It is
	// consulted on every emission, and the answer may change between calls.
	Environment interface {
		// PushTarget returns the host's injected entry point, or nil if the
		// host cannot receive pushed calls.
		PushTarget() PushTarget

		// Document returns the document used to signal a pull-only host, or
		// nil if unavailable.
		Document() Document
	}

	// PushTarget is the direct strategy capability, a synchronous call into
	// the host.
	PushTarget interface {
		Call(eventName, payload string) error
	}

	// Document attaches navigable elements, which a pull-only host is able
	// to intercept.
	Document interface {
		// Attach inserts a navigable element with the given source.
		Attach(src string) (Element, error)
	}

	// Element is a navigable element, attached to a [Document].
	Element interface {
		Detach() error
	}

	// PushTargetFunc adapts a function to [PushTarget].
	PushTargetFunc func(eventName, payload string) error

	// StaticEnvironment is an [Environment] with fixed capabilities.
	StaticEnvironment struct {
		Push PushTarget
		Doc  Document
	}

	// transport is an outbound strategy, selected per emission.
	transport interface {
		send(eventName, payload string) error
	}

	directTransport struct {
		target PushTarget
	}

	handshakeTransport struct {
		store    *PendingStore
		document Document
		scheme   string
	}
)

var (
	_ Environment = StaticEnvironment{}
	_ PushTarget  = PushTargetFunc(nil)
	_ transport   = directTransport{}
	_ transport   = handshakeTransport{}
)

// Call implements [PushTarget].
func (f PushTargetFunc) Call(eventName, payload string) error {
	return f(eventName, payload)
}

// PushTarget implements [Environment].
func (x StaticEnvironment) PushTarget() PushTarget { return x.Push }

// Document implements [Environment].
func (x StaticEnvironment) Document() Document { return x.Doc }

func (x directTransport) send(eventName, payload string) error {
	return x.target.Call(eventName, payload)
}

// send stages payload, then signals the host, using an element that is
// attached then immediately detached.
func (x handshakeTransport) send(eventName, payload string) error {
	id := x.store.Stage(payload)

	element, err := x.document.Attach(EncodeSignal(x.scheme, Signal{
		EventName: eventName,
		ResID:     id,
	}))
	if err != nil {
		x.store.Discard(id)
		return fmt.Errorf("jsbridge: handshake signal: %w", err)
	}

	if element != nil {
		if err := element.Detach(); err != nil {
			// the signal was delivered, the payload must remain fetchable
			return fmt.Errorf("jsbridge: handshake detach: %w", err)
		}
	}

	return nil
}

func selectTransport(env Environment, store *PendingStore, scheme string) (transport, error) {
	if env == nil {
		return nil, ErrNoTransport
	}
	if target := env.PushTarget(); target != nil {
		return directTransport{target: target}, nil
	}
	if document := env.Document(); document != nil {
		return handshakeTransport{store: store, document: document, scheme: scheme}, nil
	}
	return nil, ErrNoTransport
}
