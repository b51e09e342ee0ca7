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

// Package ditest provides container and registry wrappers for unit tests:
// the Must variants fail the test instead of returning errors.
package ditest

import (
	"testing"

	"github.com/lord2800/di"
)

// Container wraps di.Container and fails the test on misuse.
type Container struct {
	*di.Container

	tb testing.TB
}

// New returns a Container bound to tb.
func New(tb testing.TB, opts ...di.Option) *Container {
	return &Container{
		Container: di.New(opts...),
		tb:        tb,
	}
}

// MustBind binds values, failing the test on error.
func (c *Container) MustBind(values ...any) {
	c.tb.Helper()
	if err := c.Bind(values...); err != nil {
		c.tb.Fatalf("bind failed: %v", err)
	}
}

// MustRegister registers constructors, failing the test on error.
func (c *Container) MustRegister(ctors ...any) {
	c.tb.Helper()
	if err := c.Register(ctors...); err != nil {
		c.tb.Fatalf("register failed: %v", err)
	}
}

// MustResolve resolves into target, failing the test on error.
func (c *Container) MustResolve(target any) {
	c.tb.Helper()
	if err := c.Resolve(target); err != nil {
		c.tb.Fatalf("resolve failed: %v", err)
	}
}

// MustAnnotate annotates target, failing the test on error.
func (c *Container) MustAnnotate(target any, anns ...di.Annotation) *di.Invocation {
	c.tb.Helper()
	inv, err := c.Annotate(target, anns...)
	if err != nil {
		c.tb.Fatalf("annotate failed: %v", err)
	}
	return inv
}

// Registry wraps di.Registry and fails the test on misuse.
type Registry struct {
	*di.Registry

	tb testing.TB
}

// NewRegistry returns a Registry bound to tb.
func NewRegistry(tb testing.TB, opts ...di.RegistryOption) *Registry {
	return &Registry{
		Registry: di.NewRegistry(opts...),
		tb:       tb,
	}
}

// MustProvide provides a value, failing the test on error.
func (r *Registry) MustProvide(name string, value any) {
	r.tb.Helper()
	if err := r.Provide(name, value); err != nil {
		r.tb.Fatalf("provide failed: %v", err)
	}
}

// MustAnnotate annotates target, failing the test on error.
func (r *Registry) MustAnnotate(target any, anns ...di.Annotation) *di.Invocation {
	r.tb.Helper()
	inv, err := r.Annotate(target, anns...)
	if err != nil {
		r.tb.Fatalf("annotate failed: %v", err)
	}
	return inv
}
