package gojabridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dop251/goja"
	eventloop "github.com/joeycumines/go-eventloop"
	jsbridge "github.com/joeycumines/go-jsbridge"
	"github.com/stretchr/testify/require"
)

type message struct {
	EventName string
	Payload   string
}

// recorder is a host supporting either transport, depending on push.
type recorder struct {
	ch      chan message
	sources []string
	push    bool
	mu      sync.Mutex
}

func (x *recorder) Call(eventName, payload string) error {
	x.ch <- message{EventName: eventName, Payload: payload}
	return nil
}

func (x *recorder) Attach(src string) (jsbridge.Element, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.sources = append(x.sources, src)
	return nil, nil
}

func (x *recorder) PushTarget() jsbridge.PushTarget {
	if x.push {
		return x
	}
	return nil
}

func (x *recorder) Document() jsbridge.Document {
	if x.push {
		return nil
	}
	return x
}

func (x *recorder) Sources() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string(nil), x.sources...)
}

func (x *recorder) next(t *testing.T) message {
	t.Helper()
	select {
	case m := <-x.ch:
		return m
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a message")
		panic("unreachable")
	}
}

func (x *recorder) none(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case m := <-x.ch:
		t.Fatalf("unexpected message: %+v", m)
	case <-time.After(wait):
	}
}

func (x *recorder) response(t *testing.T) jsbridge.Response {
	t.Helper()
	m := x.next(t)
	require.Equal(t, jsbridge.ResponseEvent, m.EventName)
	res, err := jsbridge.DecodeResponse(m.Payload)
	require.NoError(t, err)
	return res
}

// testEnv wires a running loop, a runtime, a bridge using the runtime's
// global namespace, and the module, enabled as the global "bridge".
type testEnv struct {
	loop    *eventloop.Loop
	runtime *goja.Runtime
	host    *recorder
	bridge  *jsbridge.Bridge
	mod     *Module
}

func newTestEnv(t *testing.T, push bool, opts ...jsbridge.Option) *testEnv {
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

	runtime := goja.New()
	host := &recorder{ch: make(chan message, 64), push: push}

	b, err := jsbridge.New(loop, host, GlobalNamespace(runtime), opts...)
	require.NoError(t, err)

	mod, err := New(runtime, WithBridge(b))
	require.NoError(t, err)

	env := &testEnv{
		loop:    loop,
		runtime: runtime,
		host:    host,
		bridge:  b,
		mod:     mod,
	}
	env.onLoop(t, func() {
		require.NoError(t, mod.Enable("bridge"))
	})
	return env
}

// onLoop runs fn on the loop, waiting for it to complete.
func (e *testEnv) onLoop(t *testing.T, fn func()) {
	t.Helper()
	done := make(chan struct{})
	require.NoError(t, e.loop.Submit(func() {
		defer close(done)
		fn()
	}))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the loop")
	}
}

// run evaluates script on the loop.
func (e *testEnv) run(t *testing.T, script string) (value any, err error) {
	t.Helper()
	e.onLoop(t, func() {
		var v goja.Value
		v, err = e.runtime.RunString(script)
		if err == nil {
			value = exportValue(v)
		}
	})
	return
}

func (e *testEnv) mustRun(t *testing.T, script string) any {
	t.Helper()
	v, err := e.run(t, script)
	require.NoError(t, err)
	return v
}
