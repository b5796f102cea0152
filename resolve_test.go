package jsbridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNamespace(fn Func) MapNamespace {
	return MapNamespace{
		"a": map[string]any{
			"b": MapNamespace{
				"fn": fn,
			},
			"zero":  0,
			"empty": ``,
			"no":    false,
			"nil":   nil,
			"str":   "not a namespace",
		},
		"top":   fn,
		"plain": func(args []any) (Result, error) { return Immediate(len(args)), nil },
		"value": 42,
	}
}

func callValue(t *testing.T, fn Callable, args ...any) any {
	t.Helper()
	res, err := fn.Call(args)
	require.NoError(t, err)
	require.False(t, res.IsDeferred())
	return res.Value()
}

func TestResolve_withAndWithoutRootPrefix(t *testing.T) {
	ns := testNamespace(func(args []any) (Result, error) { return Immediate(`target`), nil })

	withPrefix, ok := Resolve(ns, "window.a.b.fn")
	require.True(t, ok)
	withoutPrefix, ok := Resolve(ns, "a.b.fn")
	require.True(t, ok)

	assert.Equal(t, `target`, callValue(t, withPrefix))
	assert.Equal(t, `target`, callValue(t, withoutPrefix))
}

func TestResolve_topLevelAndPlainFunc(t *testing.T) {
	ns := testNamespace(func(args []any) (Result, error) { return Immediate(`top`), nil })

	fn, ok := Resolve(ns, " window.top ")
	require.True(t, ok)
	assert.Equal(t, `top`, callValue(t, fn))

	fn, ok = Resolve(ns, "plain")
	require.True(t, ok)
	assert.Equal(t, 2, callValue(t, fn, 1, 2))
}

func TestResolve_notFound(t *testing.T) {
	ns := testNamespace(func(args []any) (Result, error) { return Immediate(nil), nil })

	for _, path := range []string{
		``,
		`   `,
		"\t\n",
		`window`,
		`window.`,
		`missing`,
		`a.missing.fn`,
		`a.b.missing`,
		`a..fn`,
		`a. .b.fn`,
		`.a.b.fn`,
		`a.b.fn.`,
		`a.zero.fn`,
		`a.empty.fn`,
		`a.no.fn`,
		`a.nil.fn`,
		`a.str.length`,
		`a.b`,
		`value`,
		`window.window.a.b.fn`,
		`constructor`,
		`a.b.fn()`,
		`eval("a.b.fn")`,
	} {
		t.Run(path, func(t *testing.T) {
			fn, ok := Resolve(ns, path)
			assert.False(t, ok)
			assert.Nil(t, fn)
		})
	}
}

func TestResolve_nilNamespace(t *testing.T) {
	_, ok := Resolve(nil, "a.b.fn")
	assert.False(t, ok)
}

func TestResolver_customDelimiterAndRoot(t *testing.T) {
	ns := testNamespace(func(args []any) (Result, error) { return Immediate(`ok`), nil })

	r := Resolver{RootName: `self`, Delimiter: `/`}

	fn, ok := r.Resolve(ns, "self/a/b/fn")
	require.True(t, ok)
	assert.Equal(t, `ok`, callValue(t, fn))

	_, ok = r.Resolve(ns, "window/a/b/fn")
	assert.False(t, ok)

	_, ok = r.Resolve(ns, "a.b.fn")
	assert.False(t, ok)
}

func TestResolver_zeroValueDoesNotStripRoot(t *testing.T) {
	ns := testNamespace(func(args []any) (Result, error) { return Immediate(`ok`), nil })

	_, ok := Resolver{}.Resolve(ns, "a.b.fn")
	assert.True(t, ok)

	_, ok = Resolver{}.Resolve(ns, "window.a.b.fn")
	assert.False(t, ok)
}

func TestResolver_maxDepth(t *testing.T) {
	leaf := Func(func(args []any) (Result, error) { return Immediate(`deep`), nil })
	ns := MapNamespace{"d": map[string]any{"d": map[string]any{"fn": leaf}}}

	_, ok := Resolver{MaxDepth: 3}.Resolve(ns, "d.d.fn")
	assert.True(t, ok)

	_, ok = Resolver{MaxDepth: 2}.Resolve(ns, "d.d.fn")
	assert.False(t, ok)
}

func TestIsFalsy(t *testing.T) {
	var (
		nilMap  map[string]any
		nilFunc Func
		nilPtr  *int
	)
	for _, v := range []any{
		nil, false, ``,
		0, int8(0), int16(0), int32(0), int64(0),
		uint(0), uint8(0), uint16(0), uint32(0), uint64(0), uintptr(0),
		0.0, float32(0),
		nilMap, nilFunc, nilPtr,
	} {
		assert.True(t, isFalsy(v), "%T %v", v, v)
	}
	for _, v := range []any{true, `x`, 1, -1, int8(-1), uint8(1), uint16(1), uintptr(1), 0.5, map[string]any{}, MapNamespace{}, struct{}{}} {
		assert.False(t, isFalsy(v), "%T %v", v, v)
	}
}
