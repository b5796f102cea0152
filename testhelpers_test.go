package jsbridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	eventloop "github.com/joeycumines/go-eventloop"
	"github.com/stretchr/testify/require"
)

// newRunningLoop starts a loop that is shut down on test cleanup.
func newRunningLoop(t *testing.T) *eventloop.Loop {
	t.Helper()

	loop, err := eventloop.New()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- loop.Run(context.Background())
	}()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = loop.Shutdown(ctx)
		select {
		case <-done:
		case <-ctx.Done():
			t.Error("loop did not stop")
		}
	})

	return loop
}

// runOnLoop runs fn on the loop, waiting for it to complete.
func runOnLoop(t *testing.T, loop *eventloop.Loop, fn func()) {
	t.Helper()
	done := make(chan struct{})
	require.NoError(t, loop.Submit(func() {
		defer close(done)
		fn()
	}))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the loop")
	}
}

type message struct {
	EventName string
	Payload   string
}

// pushRecorder is a push-capable host, recording calls.
type pushRecorder struct {
	ch  chan message
	err error
}

func newPushRecorder() *pushRecorder {
	return &pushRecorder{ch: make(chan message, 64)}
}

func (x *pushRecorder) Call(eventName, payload string) error {
	if x.err != nil {
		return x.err
	}
	x.ch <- message{EventName: eventName, Payload: payload}
	return nil
}

func (x *pushRecorder) PushTarget() PushTarget { return x }

func (x *pushRecorder) Document() Document { return nil }

func (x *pushRecorder) next(t *testing.T) message {
	t.Helper()
	select {
	case m := <-x.ch:
		return m
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a message")
		panic("unreachable")
	}
}

func (x *pushRecorder) none(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case m := <-x.ch:
		t.Fatalf("unexpected message: %+v", m)
	case <-time.After(wait):
	}
}

func (x *pushRecorder) response(t *testing.T) Response {
	t.Helper()
	m := x.next(t)
	require.Equal(t, ResponseEvent, m.EventName)
	res, err := DecodeResponse(m.Payload)
	require.NoError(t, err)
	return res
}

// fakeDocument records attached element sources.
type fakeDocument struct {
	err      error
	sources  []string
	detached int
	mu       sync.Mutex
}

type fakeElement struct {
	doc *fakeDocument
}

func (x *fakeDocument) Attach(src string) (Element, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.err != nil {
		return nil, x.err
	}
	x.sources = append(x.sources, src)
	return fakeElement{x}, nil
}

func (x fakeElement) Detach() error {
	x.doc.mu.Lock()
	defer x.doc.mu.Unlock()
	x.doc.detached++
	return nil
}

func (x *fakeDocument) Sources() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string(nil), x.sources...)
}

var errTest = errors.New("test error")
