// Copyright (c) 2017 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package dievent defines the events emitted by containers and registries,
// and the Logger interface that observes them. Containers never log on their
// own; they hand events to whatever Logger was injected.
package dievent

// Logger defines the interface used for observing container events.
type Logger interface {
	// LogEvent is called when an event is emitted.
	LogEvent(Event)
}

// Event is a marker for the event structs below.
type Event interface{}

// BoundEvent is emitted whenever an instance is bound under its type key.
type BoundEvent struct {
	Key string
}

// RegisteredEvent is emitted whenever a constructor is registered.
type RegisteredEvent struct {
	Key         string
	Constructor any
}

// InstantiatedEvent is emitted whenever a new instance is constructed and
// memoized.
type InstantiatedEvent struct {
	Key string
}

// ProvidedEvent is emitted whenever a value is provided under a name. TypeKey
// is empty when no type key was derived.
type ProvidedEvent struct {
	Name    string
	TypeKey string
}

// DelegatedEvent is emitted whenever a registration is swapped for a
// replacement.
type DelegatedEvent struct {
	Name     string
	Replaced bool
}

// AnnotatedEvent is emitted whenever a callable is annotated and its
// arguments resolved. Cache hits do not re-emit.
type AnnotatedEvent struct {
	Target string
}

// ResolveErrorEvent is emitted whenever a resolution fails.
type ResolveErrorEvent struct {
	Key string
	Err error
}

// NopLogger discards all events. It is every container's default.
var NopLogger Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) LogEvent(Event) {}
