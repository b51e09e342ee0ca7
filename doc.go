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

// Package di is a dependency-injection container.
//
// Given a function or a constructor, it reflects the parameter list,
// resolves each parameter against previously registered or lazily
// constructed values, and invokes the target with those values supplied
// automatically. Registration is always explicit and imperative: nothing is
// scanned, nothing is read from configuration.
//
// Two resolution policies exist, as two separate types:
//
// • Container keys dependencies by exact type identity, chains lookups to an
// optional parent container, memoizes constructed singletons, and silently
// overwrites re-bound keys.
//
//	c := di.New()
//	c.Register(NewServer, NewStore)
//	_ = c.Bind(&Config{Addr: ":8080"})
//
//	var srv *Server
//	err := c.Resolve(&srv)
//
// • Registry keys dependencies by explicit registration name and, for
// object values, by concrete type. Parameter resolution tries the type
// first, then the name. Registering into an occupied slot is an error, and
// registrations can be swapped with Delegate.
//
//	r := di.NewRegistry()
//	_ = r.Provide("store", store)
//	inv, err := r.Annotate(handler, di.ParamNames("store"))
//	if err == nil {
//	    inv.Call()
//	}
//
// Annotate wraps a callable — a plain function, a di.Bound receiver/method
// pair, or an object with an Invoke method — into a zero-argument deferred
// invocation whose arguments were resolved exactly once.
//
// Containers are explicit, passed-by-reference objects; the package holds
// no ambient global state.
package di
