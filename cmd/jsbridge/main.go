// Command jsbridge runs a script in an embedded JavaScript runtime, bound to
// a message bridge, with a host of either kind, then optionally calls a
// function in the script and prints the response.
//
// Usage:
//
//	jsbridge -script app.js [-transport push|pull] [-call math.add -args '[2,3]']
//
// Events emitted by the script are printed to stdout, one per line, as
// "<event> <payload>". The script has access to the bridge as the global
// `jsbridge`, to `require`, `console`, and `setTimeout`.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
	eventloop "github.com/joeycumines/go-eventloop"
	jsbridge "github.com/joeycumines/go-jsbridge"
	"github.com/joeycumines/go-jsbridge/gojabridge"
	"github.com/joeycumines/go-jsbridge/host"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type config struct {
	script    string
	transport string
	call      string
	args      string
	scheme    string
	timeout   time.Duration
	verbose   bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.script, "script", "", "path of the script to run (required)")
	flag.StringVar(&cfg.transport, "transport", "push", "host kind: push or pull")
	flag.StringVar(&cfg.call, "call", "", "function path to call after the script has run, e.g. window.math.add")
	flag.StringVar(&cfg.args, "args", "[]", "JSON array of call arguments")
	flag.StringVar(&cfg.scheme, "scheme", jsbridge.DefaultScheme, "handshake signal scheme")
	flag.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "call timeout")
	flag.BoolVar(&cfg.verbose, "v", false, "enable debug logging")
	flag.Parse()

	if cfg.script == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "jsbridge:", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *logiface.Logger[logiface.Event] {
	level := logiface.LevelInformational
	if verbose {
		level = logiface.LevelTrace
	}
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(os.Stderr)),
		stumpy.L.WithLevel(level),
	).Logger()
}

func run(ctx context.Context, cfg config, stdout io.Writer) error {
	source, err := os.ReadFile(cfg.script)
	if err != nil {
		return err
	}

	var args []any
	if err := json.UnmarshalFromString(cfg.args, &args); err != nil {
		return fmt.Errorf("invalid -args: %w", err)
	}

	logger := newLogger(cfg.verbose)

	loop, err := eventloop.New()
	if err != nil {
		return err
	}
	js, err := eventloop.NewJS(loop)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	defer wg.Wait()

	loopErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		loopErr <- loop.Run(ctx)
	}()
	defer func() {
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := loop.Shutdown(shutdownCtx); err != nil && !errors.Is(err, eventloop.ErrLoopTerminated) {
			logger.Warning().Err(err).Log(`loop shutdown failed`)
		}
	}()

	printer := host.ReceiverFunc(func(eventName, payload string) error {
		_, err := fmt.Fprintln(stdout, eventName, payload)
		return err
	})

	var bridge *jsbridge.Bridge
	caller, err := host.NewCaller(host.DelivererFunc(func(reqID int64, path string, args []any) error {
		return bridge.DeliverCall(reqID, path, args)
	}), printer, host.WithLogger(logger))
	if err != nil {
		return err
	}

	var (
		env      jsbridge.Environment
		pullHost *host.PullHost
	)
	switch cfg.transport {
	case "push":
		env, err = host.NewPushHost(caller, host.WithLogger(logger))
	case "pull":
		pullHost, err = host.NewPullHost(caller, host.WithLogger(logger), host.WithScheme(cfg.scheme))
		env = pullHost
	default:
		err = fmt.Errorf("unknown -transport %q", cfg.transport)
	}
	if err != nil {
		return err
	}

	runtime := goja.New()

	bridge, err = jsbridge.New(loop, env, gojabridge.GlobalNamespace(runtime),
		jsbridge.WithLogger(logger),
		jsbridge.WithScheme(cfg.scheme),
	)
	if err != nil {
		return err
	}
	defer bridge.Close()

	if pullHost != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := pullHost.Run(ctx, bridge); err != nil && !errors.Is(err, context.Canceled) {
				logger.Err().Err(err).Log(`pull host stopped`)
				cancel()
			}
		}()
	}

	module, err := gojabridge.New(runtime, gojabridge.WithBridge(bridge))
	if err != nil {
		return err
	}

	scriptErr := make(chan error, 1)
	if err := loop.Submit(func() {
		scriptErr <- setupRuntime(runtime, module, js, cfg.script, string(source))
	}); err != nil {
		return err
	}

	select {
	case err := <-scriptErr:
		if err != nil {
			return err
		}
	case err := <-loopErr:
		return err
	}

	logger.Debug().
		Str(`script`, cfg.script).
		Str(`transport`, cfg.transport).
		Log(`script loaded`)

	if cfg.call == "" {
		// run until interrupted, the script may emit events from timers
		<-ctx.Done()
		return nil
	}

	callCtx, callCancel := context.WithTimeout(ctx, cfg.timeout)
	defer callCancel()

	result, err := caller.Call(callCtx, cfg.call, args...)
	if err != nil {
		return err
	}

	out, err := json.MarshalToString(result)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, out)
	return err
}

// setupRuntime installs the globals available to scripts, then runs the
// script. It must be called on the loop.
func setupRuntime(runtime *goja.Runtime, module *gojabridge.Module, js *eventloop.JS, name, source string) error {
	registry := require.NewRegistry()
	registry.RegisterNativeModule("jsbridge", func(_ *goja.Runtime, mod *goja.Object) {
		module.SetupExports(mod.Get("exports").(*goja.Object))
	})
	registry.Enable(runtime)
	console.Enable(runtime)

	if err := module.Enable("jsbridge"); err != nil {
		return err
	}

	if err := runtime.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(runtime.NewTypeError("setTimeout: callback is not a function"))
		}
		id, err := js.SetTimeout(func() {
			if _, err := fn(goja.Undefined()); err != nil {
				fmt.Fprintln(os.Stderr, "jsbridge: uncaught:", err)
			}
		}, int(call.Argument(1).ToInteger()))
		if err != nil {
			panic(runtime.NewGoError(err))
		}
		return runtime.ToValue(id)
	}); err != nil {
		return err
	}

	_, err := runtime.RunScript(name, source)
	return err
}
