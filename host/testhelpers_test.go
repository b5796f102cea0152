package host

import (
	"context"
	"testing"
	"time"

	eventloop "github.com/joeycumines/go-eventloop"
	jsbridge "github.com/joeycumines/go-jsbridge"
	"github.com/stretchr/testify/require"
)

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

func testNamespace() jsbridge.MapNamespace {
	return jsbridge.MapNamespace{
		"math": map[string]any{
			"add": jsbridge.Func(func(args []any) (jsbridge.Result, error) {
				return jsbridge.Immediate(args[0].(float64) + args[1].(float64)), nil
			}),
			"fail": jsbridge.Func(func(args []any) (jsbridge.Result, error) {
				return jsbridge.Result{}, errTest
			}),
		},
	}
}

type event struct {
	Name    string
	Payload string
}

// eventSink is a Receiver recording events.
type eventSink chan event

func (x eventSink) Receive(eventName, payload string) error {
	x <- event{Name: eventName, Payload: payload}
	return nil
}

func (x eventSink) next(t *testing.T) event {
	t.Helper()
	select {
	case e := <-x:
		return e
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for an event")
		panic("unreachable")
	}
}

type testError string

func (e testError) Error() string { return string(e) }

const errTest = testError("test error")
