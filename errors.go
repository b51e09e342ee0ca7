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
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	errBindKind      = errors.New("bound values must be pointers")
	errCtorKind      = errors.New("constructors must be functions")
	errReturnCount   = errors.New("constructors must return exactly one value, optionally followed by an error")
	errReturnKind    = errors.New("constructor return type must be a pointer or an interface")
	errArgKind       = errors.New("constructor arguments must be pointers or interfaces")
	errResolveTarget = errors.New("resolve target must be a non-nil pointer")
	errFactoryReturn = errors.New("deferred factories must return at least one value")
	errFactoryArgs   = errors.New("deferred factories must take no arguments")
)

// NotFoundError is returned when no binding exists anywhere in the parent
// chain and construction also failed. The construction failure is chained as
// the cause and can be recovered with errors.Unwrap.
type NotFoundError struct {
	Key   string
	Cause error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("reference not found: %s", e.Key)
}

func (e *NotFoundError) Unwrap() error { return e.Cause }

// NotInstantiableError is returned when a type cannot be constructed:
// an interface with no binding or constructor, or any other
// non-constructible kind.
type NotInstantiableError struct {
	Key string
}

func (e *NotInstantiableError) Error() string {
	return fmt.Sprintf("type is not instantiable: %s", e.Key)
}

// UnsatisfiedError is returned when a parameter could not be matched by
// type or by name.
type UnsatisfiedError struct {
	Param string
}

func (e *UnsatisfiedError) Error() string {
	return fmt.Sprintf("unsatisfied dependency: %s", e.Param)
}

// DuplicateError is returned when a registration would occupy a name or
// derived-type slot that is already taken.
type DuplicateError struct {
	Key string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate registration: %s", e.Key)
}

// AmbiguousCallableError is returned when a target fits none of the three
// callable shapes.
type AmbiguousCallableError struct {
	Target any
}

func (e *AmbiguousCallableError) Error() string {
	return fmt.Sprintf("target %T is not a function, a bound method, or an invokable object", e.Target)
}

// CycleError is returned when instantiation re-enters a type that is
// already under construction.
type CycleError struct {
	Key string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic constructor dependency: %s", e.Key)
}

// ClassNotFoundError is returned when class-name resolution exhausted every
// registered namespace.
type ClassNotFoundError struct {
	Class      string
	Namespaces []string
}

func (e *ClassNotFoundError) Error() string {
	return fmt.Sprintf("class %s not found in namespaces [%s]",
		e.Class, strings.Join(e.Namespaces, ", "))
}
