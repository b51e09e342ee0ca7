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

// Package direflect is the signature reflector: it turns callables and
// constructible types into ordered parameter descriptors and classifies
// callables into the shapes the injector knows how to invoke.
package direflect

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// Param describes a single callable or constructor parameter: its name and
// optional declared type. Go reflection does not surface parameter names, so
// Name is empty unless declared by hand.
type Param struct {
	Name string
	Type reflect.Type
}

// Key returns the identifier used in diagnostics: the name when declared,
// the type otherwise.
func (p Param) Key() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Type != nil {
		return p.Type.String()
	}
	return "<unnamed>"
}

// Shape identifies how a callable dispatches.
type Shape int

const (
	// Func is a plain function value.
	Func Shape = iota
	// BoundMethod is an object + method name pair.
	BoundMethod
	// Invokable is a non-func object whose type declares an Invoke method.
	Invokable
)

// InvokeMethod is the method name that makes a plain object callable.
const InvokeMethod = "Invoke"

// Bound names a method on a receiver object so the pair can be annotated as
// a single callable.
type Bound struct {
	Target any
	Method string
}

// Callable is the result of classifying a target once, at wrap time. Func
// holds the value to reflect.Call regardless of shape; for bound methods and
// invokables it is already bound to its receiver.
type Callable struct {
	Shape Shape
	Func  reflect.Value

	fingerprint string
}

// Classify resolves a target into one of the three callable shapes. The
// second return is false when the target fits none of them.
func Classify(target any) (Callable, bool) {
	switch t := target.(type) {
	case nil:
		return Callable{}, false
	case Bound:
		if t.Target == nil || t.Method == "" {
			return Callable{}, false
		}
		rv := reflect.ValueOf(t.Target)
		m := rv.MethodByName(t.Method)
		if !m.IsValid() {
			return Callable{}, false
		}
		return Callable{
			Shape:       BoundMethod,
			Func:        m,
			fingerprint: fmt.Sprintf("method:%s.%s", rv.Type(), t.Method),
		}, true
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() == reflect.Func {
		return Callable{
			Shape:       Func,
			Func:        rv,
			fingerprint: fmt.Sprintf("func:%s %s", FuncName(target), rv.Type()),
		}, true
	}

	if m := rv.MethodByName(InvokeMethod); m.IsValid() {
		return Callable{
			Shape:       Invokable,
			Func:        m,
			fingerprint: fmt.Sprintf("invokable:%s", rv.Type()),
		}, true
	}

	return Callable{}, false
}

// Fingerprint is a stable identifier for a callable's signature, used to
// memoize annotation results. Two classifications of the same function,
// bound method, or invokable object produce equal fingerprints.
func (c Callable) Fingerprint() string {
	return c.fingerprint
}

// Signature returns the ordered parameter descriptors of a func type. Names
// are left empty; reflection only knows the types.
func Signature(t reflect.Type) []Param {
	params := make([]Param, t.NumIn())
	for i := 0; i < t.NumIn(); i++ {
		params[i] = Param{Type: t.In(i)}
	}
	return params
}

// Constructible reports whether a type can be trivially constructed when no
// constructor is registered for it: pointer-to-struct only. Interfaces and
// everything else need an explicit constructor or binding.
func Constructible(t reflect.Type) bool {
	return t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct
}

// FuncName returns a func's formatted name.
func FuncName(fn any) string {
	fnV := reflect.ValueOf(fn)
	if fnV.Kind() != reflect.Func {
		return "n/a"
	}

	fnName := runtime.FuncForPC(fnV.Pointer()).Name()
	return fmt.Sprintf("%s()", fnName)
}

// ReturnTypes takes a func and returns a slice of string'd return types,
// skipping any trailing error. Non-funcs have none.
func ReturnTypes(t any) []string {
	rtypes := []string{}
	fnV := reflect.ValueOf(t)
	if fnV.Kind() != reflect.Func {
		return rtypes
	}
	fn := fnV.Type()

	for i := 0; i < fn.NumOut(); i++ {
		if !IsError(fn.Out(i)) {
			rtypes = append(rtypes, fn.Out(i).String())
		}
	}

	return rtypes
}

// IsError reports whether a type satisfies the error interface.
func IsError(t reflect.Type) bool {
	errInterface := reflect.TypeOf((*error)(nil)).Elem()
	return t.Implements(errInterface)
}

// QualifiedName returns the "namespace.Class" form of a concrete type,
// dereferencing one level of pointer. "*pkg.Foo" and "pkg.Foo" both yield
// "pkg.Foo".
func QualifiedName(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.String()
}

// SplitClass separates a qualified class name into namespace and bare class.
// A bare name has an empty namespace.
func SplitClass(qualified string) (ns, class string) {
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		return qualified[:i], qualified[i+1:]
	}
	return "", qualified
}
