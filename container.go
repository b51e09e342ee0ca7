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

package di

import (
	"reflect"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/lord2800/di/dievent"
	"github.com/lord2800/di/internal/direflect"
)

// Container is the strict-identity container. Dependencies are keyed by
// exact type identity only; there is no fallback by parameter name.
// Lookups chain to an optional parent container, and constructed instances
// are memoized as singletons in the container that constructed them.
//
// Re-binding a key silently overwrites the previous binding. This is the
// strict-identity policy; see Registry for the named policy where
// duplicates are errors.
//
// A Container is safe for concurrent use: every public operation runs under
// a single lock.
type Container struct {
	mu sync.Mutex

	parent       *Container
	instances    map[reflect.Type]reflect.Value
	constructors map[reflect.Type]*ctorNode
	building     map[reflect.Type]struct{}
	funcCache    map[string]*Invocation
	logger       dievent.Logger
}

// ctorNode is a registered constructor: the function, its parameter
// descriptors, and whether it reports errors.
type ctorNode struct {
	ctor       reflect.Value
	params     []direflect.Param
	returnsErr bool
}

// Option configures a Container.
type Option func(*Container)

// WithParent chains lookups to an enclosing container. The parent is not
// owned and is never mutated by the child.
func WithParent(parent *Container) Option {
	return func(c *Container) {
		c.parent = parent
	}
}

// WithLogger injects an event observer. The default discards all events.
func WithLogger(logger dievent.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// New returns an empty Container.
func New(opts ...Option) *Container {
	c := &Container{
		instances:    make(map[reflect.Type]reflect.Value),
		constructors: make(map[reflect.Type]*ctorNode),
		building:     make(map[reflect.Type]struct{}),
		funcCache:    make(map[string]*Invocation),
		logger:       dievent.NopLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Child returns an empty container whose lookups fall back to c. Bindings
// made on the child shadow c's bindings for the same key.
func (c *Container) Child() *Container {
	return New(WithParent(c), WithLogger(c.logger))
}

// Bind binds each value under its concrete type, overwriting any previous
// binding for that type. Values must be pointers. Errors for individual
// values are aggregated; valid values are still bound.
func (c *Container) Bind(values ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs error
	for _, value := range values {
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || rv.Kind() != reflect.Ptr {
			errs = multierr.Append(errs, errors.Wrapf(errBindKind, "binding %T", value))
			continue
		}
		c.instances[rv.Type()] = rv
		c.logger.LogEvent(dievent.BoundEvent{Key: rv.Type().String()})
	}
	return errs
}

// Register registers constructor functions. A constructor takes
// pointer-or-interface dependencies and returns exactly one
// pointer-or-interface value, optionally followed by an error; it is keyed
// by that return type. Registering a second constructor for the same type
// overwrites the first.
func (c *Container) Register(ctors ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs error
	for _, ctor := range ctors {
		if err := c.register(ctor); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (c *Container) register(ctor any) error {
	rv := reflect.ValueOf(ctor)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return errors.Wrapf(errCtorKind, "registering %T", ctor)
	}

	t := rv.Type()
	switch t.NumOut() {
	case 1:
		if direflect.IsError(t.Out(0)) {
			return errors.Wrapf(errReturnCount, "registering %v", t)
		}
	case 2:
		if !direflect.IsError(t.Out(1)) {
			return errors.Wrapf(errReturnCount, "registering %v", t)
		}
	default:
		return errors.Wrapf(errReturnCount, "registering %v", t)
	}

	key := t.Out(0)
	if key.Kind() != reflect.Ptr && key.Kind() != reflect.Interface {
		return errors.Wrapf(errReturnKind, "registering %v", t)
	}

	params := direflect.Signature(t)
	for _, p := range params {
		if p.Type.Kind() != reflect.Ptr && p.Type.Kind() != reflect.Interface {
			return errors.Wrapf(errArgKind, "registering %v", t)
		}
	}

	c.constructors[key] = &ctorNode{
		ctor:       rv,
		params:     params,
		returnsErr: t.NumOut() == 2,
	}
	c.logger.LogEvent(dievent.RegisteredEvent{Key: key.String(), Constructor: ctor})
	return nil
}

// Resolve fills target, which must be a pointer to the wanted type, with
// the bound instance for that type. When no binding exists in the parent
// chain, the type is constructed, bound locally, and returned; subsequent
// resolutions of the same key yield the identical instance. A failed
// construction surfaces as a NotFoundError chaining the cause.
func (c *Container) Resolve(target any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.Wrapf(errResolveTarget, "resolving %T", target)
	}

	key := rv.Type().Elem()
	v, err := c.get(key)
	if err != nil {
		c.logger.LogEvent(dievent.ResolveErrorEvent{Key: key.String(), Err: err})
		return err
	}
	rv.Elem().Set(v)
	return nil
}

// Instantiate builds a new instance of the type target points to,
// regardless of any existing binding, memoizes it locally, and fills
// target with it.
func (c *Container) Instantiate(target any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.Wrapf(errResolveTarget, "instantiating %T", target)
	}

	key := rv.Type().Elem()
	v, err := c.instantiate(key)
	if err != nil {
		c.logger.LogEvent(dievent.ResolveErrorEvent{Key: key.String(), Err: err})
		return err
	}
	rv.Elem().Set(v)
	return nil
}

// Has reports whether a binding for the type of target's pointee exists in
// the container or its parent chain.
func (c *Container) Has(target any) bool {
	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr {
		return false
	}

	key := rv.Type().Elem()
	for s := c; s != nil; s = s.parent {
		if _, ok := s.peekInstance(key); ok {
			return true
		}
	}
	return false
}

// get returns the instance bound for key anywhere in the parent chain, or
// constructs one, binds it locally, and returns it. The caller must hold
// c.mu.
func (c *Container) get(key reflect.Type) (reflect.Value, error) {
	if v, ok := c.instances[key]; ok {
		return v, nil
	}
	for s := c.parent; s != nil; s = s.parent {
		if v, ok := s.peekInstance(key); ok {
			return v, nil
		}
	}

	v, err := c.instantiate(key)
	if err != nil {
		return reflect.Value{}, &NotFoundError{Key: key.String(), Cause: err}
	}
	return v, nil
}

// instantiate constructs a fresh instance of key, memoizes it locally, and
// returns it. Types without a registered constructor must be
// pointer-to-struct and are built with a trivial zero-value construction.
// The caller must hold c.mu.
func (c *Container) instantiate(key reflect.Type) (reflect.Value, error) {
	if _, ok := c.building[key]; ok {
		return reflect.Value{}, &CycleError{Key: key.String()}
	}

	node, ok := c.findCtor(key)
	if !ok {
		if !direflect.Constructible(key) {
			return reflect.Value{}, &NotInstantiableError{Key: key.String()}
		}
		v := reflect.New(key.Elem())
		c.instances[key] = v
		c.logger.LogEvent(dievent.InstantiatedEvent{Key: key.String()})
		return v, nil
	}

	c.building[key] = struct{}{}
	defer delete(c.building, key)

	args := make([]reflect.Value, len(node.params))
	for i, p := range node.params {
		v, err := c.get(p.Type)
		if err != nil {
			return reflect.Value{}, err
		}
		args[i] = v
	}

	out := node.ctor.Call(args)
	if node.returnsErr && !out[1].IsNil() {
		return reflect.Value{}, out[1].Interface().(error)
	}

	v := out[0]
	c.instances[key] = v
	c.logger.LogEvent(dievent.InstantiatedEvent{Key: key.String()})
	return v, nil
}

// findCtor looks up a registered constructor for key in this container and
// its parents.
func (c *Container) findCtor(key reflect.Type) (*ctorNode, bool) {
	if n, ok := c.constructors[key]; ok {
		return n, true
	}
	for s := c.parent; s != nil; s = s.parent {
		if n, ok := s.peekCtor(key); ok {
			return n, true
		}
	}
	return nil, false
}

// peekInstance reads a local binding under the container's own lock. Used
// by children walking the parent chain.
func (c *Container) peekInstance(key reflect.Type) (reflect.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.instances[key]
	return v, ok
}

func (c *Container) peekCtor(key reflect.Type) (*ctorNode, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.constructors[key]
	return n, ok
}

// Get resolves an instance of T through the container, constructing and
// memoizing one if needed.
func Get[T any](c *Container) (T, error) {
	var target T
	err := c.Resolve(&target)
	return target, err
}

// Build constructs a fresh instance of T, memoizing it in place of any
// previous binding.
func Build[T any](c *Container) (T, error) {
	var target T
	err := c.Instantiate(&target)
	return target, err
}

// BindAs binds value under the type T rather than its concrete type,
// letting an implementation satisfy lookups for an interface key.
func BindAs[T any](c *Container, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := reflect.TypeOf((*T)(nil)).Elem()
	c.instances[key] = reflect.ValueOf(value)
	c.logger.LogEvent(dievent.BoundEvent{Key: key.String()})
}
