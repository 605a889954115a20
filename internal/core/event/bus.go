package event

import (
	"reflect"
)

// Bus is the session-scoped observer registry. Publish delivers
// synchronously, Emit defers delivery to the next Flush. The bus is owned
// by the game loop and is not safe for concurrent use.
type Bus struct {
	pending  map[reflect.Type][]any
	order    []reflect.Type
	handlers map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{
		pending:  make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]any),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := typeOf[T]()
	b.handlers[t] = append(b.handlers[t], fn)
}

// Publish delivers ev to every handler for T immediately, in
// subscription order.
func Publish[T any](b *Bus, ev T) {
	for _, h := range b.handlers[typeOf[T]()] {
		h.(func(T))(ev)
	}
}

// Emit queues ev for the next Flush.
func Emit[T any](b *Bus, ev T) {
	t := typeOf[T]()
	if _, ok := b.pending[t]; !ok {
		b.order = append(b.order, t)
	}
	b.pending[t] = append(b.pending[t], ev)
}

// Flush delivers every queued event. Types are delivered in the order
// they were first emitted; events emitted by handlers wait for the next
// Flush.
func (b *Bus) Flush() {
	pending, order := b.pending, b.order
	b.pending = make(map[reflect.Type][]any, len(pending))
	b.order = nil
	for _, t := range order {
		handlers := b.handlers[t]
		for _, ev := range pending[t] {
			for _, h := range handlers {
				callHandler(h, ev)
			}
		}
	}
}

// Count returns the number of handlers registered for T.
func Count[T any](b *Bus) int {
	return len(b.handlers[typeOf[T]()])
}

// Reset drops every handler and queued event. Called when designer
// scripts are reloaded so stale observers do not survive.
func (b *Bus) Reset() {
	b.handlers = make(map[reflect.Type][]any)
	b.pending = make(map[reflect.Type][]any)
	b.order = nil
}

func callHandler(handler any, ev any) {
	reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(ev)})
}
