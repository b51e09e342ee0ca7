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
	"sort"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/lord2800/di/dievent"
	"github.com/lord2800/di/internal/direflect"
)

// Registry is the named-or-typed container. Every value is registered under
// an explicit name and, when the value is an object, under its concrete type
// as well; both slots are kept in sync on delegation. Registering into an
// occupied slot is a DuplicateError — the opposite policy of Container's
// silent overwrite.
//
// Parameter resolution tries the declared type first, then the parameter
// name. A found value that is a plain function is treated as a deferred
// factory and invoked with zero arguments; an object exposing an Invoke
// method is passed through un-invoked, so provided invokable service
// objects arrive as-is.
//
// A Registry is safe for concurrent use: every public operation runs under
// a single lock. Delegation factories run outside the lock and may call
// back into the registry.
type Registry struct {
	mu sync.Mutex

	names      map[string]any
	types      map[string]any
	classes    map[string]reflect.Type
	namespaces []string
	funcCache  map[string]*Invocation
	logger     dievent.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger injects an event observer. The default discards all
// events.
func WithRegistryLogger(logger dievent.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithNamespaces seeds the namespace list used by Make.
func WithNamespaces(namespaces ...string) RegistryOption {
	return func(r *Registry) {
		r.namespaces = append(r.namespaces, namespaces...)
	}
}

// NewRegistry returns an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		names:     make(map[string]any),
		types:     make(map[string]any),
		classes:   make(map[string]reflect.Type),
		funcCache: make(map[string]*Invocation),
		logger:    dievent.NopLogger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Provide registers value under name and, when the value is an object, under
// its derived concrete-type key too. Either slot being occupied is a
// DuplicateError naming the occupied slot, and nothing is registered.
func (r *Registry) Provide(name string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	typeKey := deriveTypeKey(value)
	if _, ok := r.names[name]; ok {
		return &DuplicateError{Key: name}
	}
	if typeKey != "" {
		if _, ok := r.types[typeKey]; ok {
			return &DuplicateError{Key: typeKey}
		}
	}

	r.names[name] = value
	if typeKey != "" {
		r.types[typeKey] = value
	}
	r.logger.LogEvent(dievent.ProvidedEvent{Name: name, TypeKey: typeKey})
	return nil
}

// ProvideAll registers every entry of values, in key order. Failures are
// aggregated; entries that do not collide are still registered.
func (r *Registry) ProvideAll(values map[string]any) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs error
	for _, name := range names {
		if err := r.Provide(name, values[name]); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Lookup probes for key, first as a registration name, then as a type key.
// It never fails; the second return reports whether the key was found.
func (r *Registry) Lookup(key string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(key)
}

func (r *Registry) lookup(key string) (any, bool) {
	if v, ok := r.names[key]; ok {
		return v, true
	}
	if v, ok := r.types[key]; ok {
		return v, true
	}
	return nil, false
}

// Has reports whether key is registered as a name or a type.
func (r *Registry) Has(key string) bool {
	_, ok := r.Lookup(key)
	return ok
}

// Delegate swaps the registration under name for a replacement produced by
// factory. The current record is removed from both the name and
// derived-type slots, factory is invoked, and a non-nil replacement is
// re-registered under the same name and its own derived type. Resolved
// closures that have not been re-annotated keep whatever they already
// captured; new resolutions against name see the replacement.
func (r *Registry) Delegate(name string, factory func() any) {
	r.mu.Lock()
	if current, ok := r.names[name]; ok {
		delete(r.names, name)
		if tk := deriveTypeKey(current); tk != "" {
			delete(r.types, tk)
		}
	}
	r.mu.Unlock()

	// The factory is user code and may read the registry.
	replacement := factory()

	r.mu.Lock()
	defer r.mu.Unlock()
	if replacement != nil {
		r.names[name] = replacement
		if tk := deriveTypeKey(replacement); tk != "" {
			r.types[tk] = replacement
		}
	}
	r.logger.LogEvent(dievent.DelegatedEvent{Name: name, Replaced: replacement != nil})
}

// RegisterTypes adds the concrete types of the given values to the class
// catalog under their qualified "namespace.Class" names, so Make can
// construct them by name. The values themselves are not registered.
func (r *Registry) RegisterTypes(values ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, value := range values {
		t := reflect.TypeOf(value)
		if t == nil {
			continue
		}
		if t.Kind() != reflect.Ptr {
			t = reflect.PtrTo(t)
		}
		r.classes[direflect.QualifiedName(t)] = t
	}
}

// AddNamespace appends a namespace to the list Make searches for bare class
// names.
func (r *Registry) AddNamespace(ns string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.namespaces = append(r.namespaces, ns)
}

// Make resolves a class name to an instance. A qualified name
// ("pkg.Class") is looked up directly; a bare name is tried against every
// registered namespace in order. A bound instance for the class's type is
// returned when present; otherwise the class is trivially constructed.
// Exhausting the candidates is a ClassNotFoundError listing the namespaces
// tried.
func (r *Registry) Make(class string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ns, bare := direflect.SplitClass(class)
	candidates := []string{class}
	if ns == "" {
		candidates = candidates[:0]
		for _, n := range r.namespaces {
			candidates = append(candidates, n+"."+bare)
		}
	}

	for _, candidate := range candidates {
		t, ok := r.classes[candidate]
		if !ok {
			continue
		}
		if v, ok := r.types[t.String()]; ok {
			return v, nil
		}
		if !direflect.Constructible(t) {
			return nil, &NotInstantiableError{Key: t.String()}
		}
		return reflect.New(t.Elem()).Interface(), nil
	}

	return nil, &ClassNotFoundError{Class: class, Namespaces: r.namespaces}
}

// resolveParams turns parameter descriptors into arguments: type key first,
// then name, then failure. Deferred factories are invoked zero-arg;
// invokable objects pass through. The caller must hold r.mu.
func (r *Registry) resolveParams(params []direflect.Param) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(params))
	for i, p := range params {
		var (
			value any
			found bool
		)
		if p.Type != nil {
			value, found = r.types[p.Type.String()]
		}
		if !found && p.Name != "" {
			value, found = r.names[p.Name]
		}
		if !found {
			return nil, &UnsatisfiedError{Param: p.Key()}
		}

		rv := reflect.ValueOf(value)
		if !rv.IsValid() {
			// A nil record satisfies nothing.
			return nil, &UnsatisfiedError{Param: p.Key()}
		}
		if rv.Kind() == reflect.Func {
			if rv.Type().NumIn() != 0 {
				return nil, errors.Wrapf(errFactoryArgs, "resolving %s", p.Key())
			}
			out := rv.Call(nil)
			if len(out) == 0 {
				return nil, errors.Wrapf(errFactoryReturn, "resolving %s", p.Key())
			}
			rv = out[0]
		}
		if p.Type != nil && !rv.Type().AssignableTo(p.Type) {
			return nil, &UnsatisfiedError{Param: p.Key()}
		}
		args[i] = rv
	}
	return args, nil
}

// deriveTypeKey returns the concrete-type key for an object value, or ""
// when the value occupies only its name slot: deferred functions and plain
// scalars have no class of their own.
func deriveTypeKey(value any) string {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Struct, reflect.Map, reflect.Slice, reflect.Chan:
		return rv.Type().String()
	default:
		return ""
	}
}
