package jsbridge

import (
	"sync"
)

// Handler receives inbound event data. Returning false stops the dispatch,
// i.e. later handlers registered for the same event are not invoked.
type Handler func(data any) bool

// ListenerID identifies a registration, for removal. Go functions cannot be
// compared for equality, so each registration is assigned a unique ID.
type ListenerID uint64

type listenerEntry struct {
	handler Handler
	// key is an optional identity, e.g. a function value of a scripting
	// runtime, used by UnsubscribeKey.
	key any
	id  ListenerID
}

// Router is an ordered, named subscription table.
//
// Handlers for an event are invoked in registration order. The same function
// may be registered more than once, and will be invoked once per
// registration.
//
// Router is safe for concurrent use, though the bridge only dispatches from
// the event loop goroutine.
type Router struct {
	listeners map[string][]listenerEntry
	nextID    ListenerID
	mu        sync.RWMutex
}

// NewRouter returns an empty Router.
func NewRouter() *Router {
	return &Router{
		listeners: make(map[string][]listenerEntry),
		nextID:    1,
	}
}

// Subscribe appends handler to the sequence for eventName. A nil handler is
// ignored, and 0 is returned.
func (x *Router) Subscribe(eventName string, handler Handler) ListenerID {
	return x.SubscribeWithKey(eventName, nil, handler)
}

// SubscribeWithKey behaves like Subscribe, additionally associating key
// with the registration, for removal via UnsubscribeKey. The key is
// released when the registration is removed, including by Clear.
func (x *Router) SubscribeWithKey(eventName string, key any, handler Handler) ListenerID {
	if handler == nil {
		return 0
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	id := x.nextID
	x.nextID++

	x.listeners[eventName] = append(x.listeners[eventName], listenerEntry{
		handler: handler,
		key:     key,
		id:      id,
	})

	return id
}

// Unsubscribe removes the registration identified by id. It returns false,
// and does nothing, if there was no such registration.
func (x *Router) Unsubscribe(eventName string, id ListenerID) bool {
	return x.UnsubscribeFunc(eventName, func(entryID ListenerID, _ Handler) bool {
		return entryID == id
	})
}

// UnsubscribeFunc removes the first registration for eventName, in
// registration order, accepted by match.
func (x *Router) UnsubscribeFunc(eventName string, match func(id ListenerID, handler Handler) bool) bool {
	if match == nil {
		return false
	}
	return x.unsubscribe(eventName, func(entry listenerEntry) bool {
		return match(entry.id, entry.handler)
	})
}

// UnsubscribeKey removes the first registration for eventName, in
// registration order, whose key (see SubscribeWithKey) is accepted by
// match. Registrations without a key are never matched.
func (x *Router) UnsubscribeKey(eventName string, match func(key any) bool) bool {
	if match == nil {
		return false
	}
	return x.unsubscribe(eventName, func(entry listenerEntry) bool {
		return entry.key != nil && match(entry.key)
	})
}

func (x *Router) unsubscribe(eventName string, match func(entry listenerEntry) bool) bool {

	x.mu.Lock()
	defer x.mu.Unlock()

	entries := x.listeners[eventName]
	for i, entry := range entries {
		if !match(entry) {
			continue
		}
		if len(entries) == 1 {
			delete(x.listeners, eventName)
		} else {
			// copy, dispatch may hold a snapshot of the old slice
			updated := make([]listenerEntry, 0, len(entries)-1)
			updated = append(updated, entries[:i]...)
			updated = append(updated, entries[i+1:]...)
			x.listeners[eventName] = updated
		}
		return true
	}

	return false
}

// Dispatch invokes the handlers registered for eventName, in order, until
// one returns false. The set of handlers is fixed at the start of the call.
// Panics propagate to the caller.
func (x *Router) Dispatch(eventName string, data any) {
	x.mu.RLock()
	entries := x.listeners[eventName]
	x.mu.RUnlock()

	for _, entry := range entries {
		if !entry.handler(data) {
			return
		}
	}
}

// ListenerCount returns the number of registrations for eventName.
func (x *Router) ListenerCount(eventName string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.listeners[eventName])
}

// Clear removes all registrations.
func (x *Router) Clear() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.listeners = make(map[string][]listenerEntry)
}
