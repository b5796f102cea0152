package gojabridge

import (
	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"
)

// Require returns a [require.ModuleLoader] that initialises the bridge
// module when loaded by a [goja.Runtime]. The integrator registers the
// loader under whatever module name they choose:
//
//	registry := require.NewRegistry()
//	registry.RegisterNativeModule("jsbridge", gojabridge.Require(
//	    gojabridge.WithBridge(b),
//	))
//	registry.Enable(runtime)
//
// After registration, JavaScript code loads the module by name:
//
//	const bridge = require('jsbridge');
//	bridge.on('ready', (data) => { ... });
func Require(opts ...Option) require.ModuleLoader {
	return func(runtime *goja.Runtime, module *goja.Object) {
		m, err := New(runtime, opts...)
		if err != nil {
			panic(runtime.NewGoError(err))
		}
		exports := module.Get("exports").(*goja.Object)
		m.setupExports(exports)
	}
}
