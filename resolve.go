package jsbridge

import (
	"reflect"
	"strings"
)

const (
	defaultRootName  = "window"
	defaultDelimiter = "."
	defaultMaxDepth  = 32
)

// Namespace is a name to value mapping, walked one segment at a time by a
// [Resolver]. It models the web side's global object graph.
//
// Lookup must not have side effects beyond reading the named member.
type Namespace interface {
	Lookup(name string) (any, bool)
}

// MapNamespace is a [Namespace] backed by a map. Nested map[string]any
// values are walked as namespaces.
type MapNamespace map[string]any

// Lookup implements [Namespace].
func (x MapNamespace) Lookup(name string) (any, bool) {
	v, ok := x[name]
	return v, ok
}

// Callable is a function reachable through a [Namespace].
type Callable interface {
	Call(args []any) (Result, error)
}

// Func adapts an ordinary function to [Callable].
type Func func(args []any) (Result, error)

// Call implements [Callable].
func (f Func) Call(args []any) (Result, error) {
	return f(args)
}

// Resolver resolves dotted function paths against a [Namespace], without
// evaluating the path as code. The zero value is usable, and does not strip
// any root prefix.
type Resolver struct {
	// RootName is an optional leading segment, stripped if present, e.g.
	// "window" for "window.a.b.fn".
	RootName string

	// Delimiter separates segments. Defaults to ".".
	Delimiter string

	// MaxDepth bounds the number of segments walked. Defaults to 32.
	MaxDepth int
}

// DefaultResolver strips the "window" prefix and splits on ".".
var DefaultResolver = Resolver{RootName: defaultRootName}

// Resolve is shorthand for DefaultResolver.Resolve.
func Resolve(root Namespace, path string) (Callable, bool) {
	return DefaultResolver.Resolve(root, path)
}

// Resolve walks path through root, returning the callable at its end. Any
// empty segment, missing or falsy member, non-namespace intermediate value,
// or non-callable final value results in false. Resolve never panics on
// untrusted input.
func (r Resolver) Resolve(root Namespace, path string) (Callable, bool) {
	if root == nil {
		return nil, false
	}

	path = strings.TrimSpace(path)
	if path == `` {
		return nil, false
	}

	delim := r.Delimiter
	if delim == `` {
		delim = defaultDelimiter
	}
	maxDepth := r.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	if r.RootName != `` {
		if rest, ok := strings.CutPrefix(path, r.RootName+delim); ok {
			path = rest
		}
	}

	segments := strings.Split(path, delim)
	if len(segments) > maxDepth {
		return nil, false
	}

	var (
		ns    = root
		value any
	)
	for i, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == `` || ns == nil {
			return nil, false
		}

		v, ok := ns.Lookup(segment)
		if !ok || isFalsy(v) {
			return nil, false
		}

		if i == len(segments)-1 {
			value = v
			break
		}

		ns = asNamespace(v)
	}

	switch fn := value.(type) {
	case Callable:
		return fn, true
	case func(args []any) (Result, error):
		return Func(fn), true
	default:
		return nil, false
	}
}

func asNamespace(v any) Namespace {
	switch v := v.(type) {
	case Namespace:
		return v
	case map[string]any:
		return MapNamespace(v)
	default:
		return nil
	}
}

// isFalsy approximates javascript truthiness for Go values.
func isFalsy(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ``
	case int:
		return v == 0
	case int8:
		return v == 0
	case int16:
		return v == 0
	case int32:
		return v == 0
	case int64:
		return v == 0
	case uint:
		return v == 0
	case uint8:
		return v == 0
	case uint16:
		return v == 0
	case uint32:
		return v == 0
	case uint64:
		return v == 0
	case uintptr:
		return v == 0
	case float64:
		return v == 0 || v != v
	case float32:
		return v == 0 || v != v
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
