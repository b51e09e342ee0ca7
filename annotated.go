// Copyright (c) 2020-2021 Uber Technologies, Inc.
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
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"

	"github.com/lord2800/di/dievent"
	"github.com/lord2800/di/internal/direflect"
)

// Bound names a method on a receiver so the pair can be annotated as a
// single callable.
type Bound = direflect.Bound

// Param is a hand-declared parameter descriptor: a name and an optional
// declared type.
type Param = direflect.Param

// Invocation is a zero-argument deferred invocation: a callable plus its
// arguments, resolved once at annotation time. Calling it re-executes the
// callable with those same arguments every time.
type Invocation struct {
	fn   reflect.Value
	args []reflect.Value
	name string
}

// Call executes the underlying callable with the already-resolved
// arguments and returns its results.
func (i *Invocation) Call() []any {
	out := i.fn.Call(i.args)
	results := make([]any, len(out))
	for n, v := range out {
		results[n] = v.Interface()
	}
	return results
}

func (i *Invocation) String() string {
	return fmt.Sprintf("di.Invocation{%s}", i.name)
}

// Annotation adjusts how a callable's signature is interpreted before its
// arguments are resolved.
type Annotation interface {
	apply(*annotationConfig)
}

type annotationConfig struct {
	names    []string
	params   []Param
	declared bool
}

type paramNamesAnnotation struct {
	names []string
}

func (a paramNamesAnnotation) apply(cfg *annotationConfig) {
	cfg.names = a.names
}

// ParamNames assigns names to a callable's parameters positionally, so the
// named-or-typed resolver can fall back from type matches to name matches.
// Extra names beyond the parameter count are ignored.
func ParamNames(names ...string) Annotation {
	return paramNamesAnnotation{names: names}
}

type paramsAnnotation struct {
	params []Param
}

func (a paramsAnnotation) apply(cfg *annotationConfig) {
	cfg.params = a.params
	cfg.declared = true
}

// Params replaces the reflected signature with a hand-declared descriptor
// list. The list must match the callable's parameter count.
func Params(params ...Param) Annotation {
	return paramsAnnotation{params: params}
}

// signatureOf merges the reflected signature of a callable with any
// annotations. Hand-declared descriptors win wholesale; ParamNames only
// fills in names.
func signatureOf(call direflect.Callable, cfg annotationConfig) ([]direflect.Param, error) {
	reflected := direflect.Signature(call.Func.Type())
	if cfg.declared {
		if len(cfg.params) != len(reflected) {
			return nil, errors.Errorf(
				"declared %d parameter descriptors for a callable with %d parameters",
				len(cfg.params), len(reflected))
		}
		return cfg.params, nil
	}
	for i, name := range cfg.names {
		if i >= len(reflected) {
			break
		}
		reflected[i].Name = name
	}
	return reflected, nil
}

// fingerprintOf extends a callable's fingerprint with the annotation
// digest, so the same callable annotated with different descriptors gets
// its own cache slot.
func fingerprintOf(call direflect.Callable, cfg annotationConfig) string {
	fp := call.Fingerprint()
	if len(cfg.names) > 0 {
		fp += " names:" + strings.Join(cfg.names, ",")
	}
	if cfg.declared {
		keys := make([]string, len(cfg.params))
		for i, p := range cfg.params {
			keys[i] = p.Key()
		}
		fp += " params:" + strings.Join(keys, ",")
	}
	return fp
}

func buildConfig(anns []Annotation) annotationConfig {
	var cfg annotationConfig
	for _, ann := range anns {
		ann.apply(&cfg)
	}
	return cfg
}

// Annotate classifies target into one of the three callable shapes,
// resolves its arguments once through the container's strict type-keyed
// lookup, and returns the deferred invocation. Results are memoized by the
// callable's signature fingerprint: annotating the same callable twice
// returns the identical Invocation. Every parameter must carry a declared
// type; the strict resolver has no name fallback.
func (c *Container) Annotate(target any, anns ...Annotation) (*Invocation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	call, ok := direflect.Classify(target)
	if !ok {
		return nil, &AmbiguousCallableError{Target: target}
	}
	cfg := buildConfig(anns)

	fp := fingerprintOf(call, cfg)
	if inv, ok := c.funcCache[fp]; ok {
		return inv, nil
	}

	params, err := signatureOf(call, cfg)
	if err != nil {
		return nil, err
	}

	args := make([]reflect.Value, len(params))
	for i, p := range params {
		if p.Type == nil {
			return nil, &UnsatisfiedError{Param: p.Key()}
		}
		v, err := c.get(p.Type)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	inv := &Invocation{fn: call.Func, args: args, name: fp}
	c.funcCache[fp] = inv
	c.logger.LogEvent(dievent.AnnotatedEvent{Target: fp})
	return inv, nil
}

// Annotate classifies target, resolves its arguments once through the
// registry's type-then-name lookup, and returns the deferred invocation.
// Results are memoized by the callable's signature fingerprint.
func (r *Registry) Annotate(target any, anns ...Annotation) (*Invocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	call, ok := direflect.Classify(target)
	if !ok {
		return nil, &AmbiguousCallableError{Target: target}
	}
	cfg := buildConfig(anns)

	fp := fingerprintOf(call, cfg)
	if inv, ok := r.funcCache[fp]; ok {
		return inv, nil
	}

	params, err := signatureOf(call, cfg)
	if err != nil {
		return nil, err
	}

	args, err := r.resolveParams(params)
	if err != nil {
		return nil, err
	}

	inv := &Invocation{fn: call.Func, args: args, name: fp}
	r.funcCache[fp] = inv
	r.logger.LogEvent(dievent.AnnotatedEvent{Target: fp})
	return inv, nil
}
