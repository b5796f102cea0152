package host

import (
	"context"
	"fmt"
	"sync"

	jsbridge "github.com/joeycumines/go-jsbridge"
	"github.com/joeycumines/logiface"
)

type (
	// Deliverer schedules calls on the web side, see
	// [jsbridge.Bridge.DeliverCall].
	Deliverer interface {
		DeliverCall(reqID int64, path string, args []any) error
	}

	// DelivererFunc adapts a function to [Deliverer].
	DelivererFunc func(reqID int64, path string, args []any) error

	// Caller is the host side of remote procedure calls. It allocates
	// request ids, and correlates the responses it receives. Events other
	// than [jsbridge.ResponseEvent] are forwarded to the next receiver.
	Caller struct {
		deliverer Deliverer
		next      Receiver
		logger    *logiface.Logger[logiface.Event]
		pending   map[int64]chan jsbridge.Response
		lastID    int64
		mu        sync.Mutex
	}

	// RemoteError is a call that completed with an error response.
	RemoteError struct {
		// Reason is the decoded error payload, typically a string.
		Reason any
		Path   string
		ReqID  int64
	}
)

var (
	_ Receiver  = (*Caller)(nil)
	_ Deliverer = DelivererFunc(nil)
)

// DeliverCall implements [Deliverer].
func (f DelivererFunc) DeliverCall(reqID int64, path string, args []any) error {
	return f(reqID, path, args)
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("host: call %d to %q failed: %v", e.ReqID, e.Path, e.Reason)
}

// NewCaller returns a Caller that sends calls via deliverer. The next
// receiver is optional.
func NewCaller(deliverer Deliverer, next Receiver, opts ...Option) (*Caller, error) {
	if deliverer == nil {
		panic("host: deliverer must not be nil")
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Caller{
		deliverer: deliverer,
		next:      next,
		logger:    cfg.logger,
		pending:   make(map[int64]chan jsbridge.Response),
	}, nil
}

// Call invokes the function at path with args, and waits for the response.
// Failed calls return a *RemoteError. Calls that are never answered, e.g.
// to unresolved functions, when the bridge drops them, block until ctx is
// done.
func (c *Caller) Call(ctx context.Context, path string, args ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := make(chan jsbridge.Response, 1)

	c.mu.Lock()
	c.lastID++
	reqID := c.lastID
	c.pending[reqID] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, reqID)
		c.mu.Unlock()
	}()

	if args == nil {
		args = []any{}
	}
	if err := c.deliverer.DeliverCall(reqID, path, args); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.IsError {
			return nil, &RemoteError{Reason: res.Response, Path: path, ReqID: reqID}
		}
		return res.Response, nil
	}
}

// Receive implements [Receiver].
func (c *Caller) Receive(eventName, payload string) error {
	if eventName != jsbridge.ResponseEvent {
		if c.next == nil {
			return nil
		}
		return c.next.Receive(eventName, payload)
	}

	res, err := jsbridge.DecodeResponse(payload)
	if err != nil {
		c.logger.Warning().
			Err(err).
			Log(`malformed response`)
		return nil
	}

	c.mu.Lock()
	ch, ok := c.pending[res.ReqID]
	delete(c.pending, res.ReqID)
	c.mu.Unlock()

	if !ok {
		c.logger.Debug().
			Int64(`reqId`, res.ReqID).
			Log(`response without pending call`)
		return nil
	}

	ch <- res
	return nil
}
