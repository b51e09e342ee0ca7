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
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/lord2800/di/dievent"
)

type apple struct{ n int }

type banana struct{ n int }

type crate struct {
	A *apple
	B *banana
}

func newCrate(a *apple, b *banana) *crate {
	return &crate{A: a, B: b}
}

type delivery struct {
	C *crate
}

func newDelivery(c *crate) *delivery {
	return &delivery{C: c}
}

func TestContainerBind(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		c := New()
		a := &apple{n: 1}
		require.NoError(t, c.Bind(a))

		got, err := Get[*apple](c)
		require.NoError(t, err)
		assert.True(t, got == a, "expected the exact bound instance")
	})
	t.Run("SilentOverwrite", func(t *testing.T) {
		c := New()
		first := &apple{n: 1}
		second := &apple{n: 2}
		require.NoError(t, c.Bind(first))
		require.NoError(t, c.Bind(second))

		got, err := Get[*apple](c)
		require.NoError(t, err)
		assert.True(t, got == second, "rebinding must overwrite")
	})
	t.Run("RejectsNonPointers", func(t *testing.T) {
		c := New()
		err := c.Bind(apple{}, 42, nil)
		require.Error(t, err)
		assert.Len(t, multierr.Errors(err), 3)
	})
	t.Run("BindAsInterface", func(t *testing.T) {
		c := New()
		var buf myReader
		BindAs[io.Reader](c, &buf)

		got, err := Get[io.Reader](c)
		require.NoError(t, err)
		assert.True(t, got == &buf)
	})
}

type myReader struct{}

func (*myReader) Read([]byte) (int, error) { return 0, io.EOF }

func TestContainerRegister(t *testing.T) {
	t.Run("ValidatesConstructors", func(t *testing.T) {
		c := New()

		// Not a function, no return value, non-pointer return, non-pointer
		// argument, and a second return that is not an error.
		err := c.Register(
			42,
			func() {},
			func() apple { return apple{} },
			func(n int) *apple { return &apple{} },
			func() (*apple, *banana) { return nil, nil },
		)
		require.Error(t, err)
		assert.Len(t, multierr.Errors(err), 5)
	})
	t.Run("AcceptsErrorReturningConstructors", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Register(func() (*apple, error) { return &apple{}, nil }))
	})
	t.Run("OverwritesSilently", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Register(func() *apple { return &apple{n: 1} }))
		require.NoError(t, c.Register(func() *apple { return &apple{n: 2} }))

		got, err := Get[*apple](c)
		require.NoError(t, err)
		assert.Equal(t, 2, got.n)
	})
}

func TestContainerResolve(t *testing.T) {
	t.Run("MemoizesSingleton", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Register(func() *apple { return &apple{} }))

		first, err := Get[*apple](c)
		require.NoError(t, err)
		second, err := Get[*apple](c)
		require.NoError(t, err)
		assert.True(t, first == second, "expected the memoized instance on the second resolve")
	})
	t.Run("PrefersBoundInstanceOverConstruction", func(t *testing.T) {
		c := New()
		a := &apple{n: 7}
		require.NoError(t, c.Bind(a))
		require.NoError(t, c.Register(newCrate))

		cr, err := Get[*crate](c)
		require.NoError(t, err)
		assert.True(t, cr.A == a, "expected the bound apple, not a fresh one")
		assert.NotNil(t, cr.B, "banana has no binding and must be constructed")
	})
	t.Run("TransitiveConstruction", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Register(newCrate, newDelivery))

		d, err := Build[*delivery](c)
		require.NoError(t, err)
		require.NotNil(t, d.C)
		assert.NotNil(t, d.C.A)
		assert.NotNil(t, d.C.B)
	})
	t.Run("TrivialConstructionWithoutConstructor", func(t *testing.T) {
		c := New()
		a, err := Build[*apple](c)
		require.NoError(t, err)
		assert.NotNil(t, a)
	})
	t.Run("NotInstantiableInterface", func(t *testing.T) {
		c := New()
		_, err := Get[io.Reader](c)
		require.Error(t, err)

		var nf *NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, "io.Reader", nf.Key)

		var ni *NotInstantiableError
		assert.True(t, errors.As(err, &ni), "cause must be chained, not swallowed")
	})
	t.Run("ConstructorErrorIsChained", func(t *testing.T) {
		c := New()
		boom := errors.New("boom")
		require.NoError(t, c.Register(func() (*apple, error) { return nil, boom }))

		_, err := Get[*apple](c)
		require.Error(t, err)
		assert.Equal(t, "reference not found: *di.apple", err.Error())
		assert.True(t, errors.Is(err, boom), "root cause must survive the reclassification")
	})
	t.Run("RejectsBadTargets", func(t *testing.T) {
		c := New()
		assert.Error(t, c.Resolve(nil))
		assert.Error(t, c.Resolve(apple{}))
		var a *apple
		assert.Error(t, c.Instantiate(a))
	})
}

func TestContainerInstantiate(t *testing.T) {
	t.Run("InstantiateThenResolveIsIdentity", func(t *testing.T) {
		c := New()
		built, err := Build[*apple](c)
		require.NoError(t, err)

		resolved, err := Get[*apple](c)
		require.NoError(t, err)
		assert.True(t, built == resolved, "resolve must return the instance memoized by the build")
	})
	t.Run("AlwaysConstructsFresh", func(t *testing.T) {
		c := New()
		first, err := Build[*apple](c)
		require.NoError(t, err)
		second, err := Build[*apple](c)
		require.NoError(t, err)
		assert.False(t, first == second, "instantiate must not return the memoized instance")
	})
}

func TestContainerParentChain(t *testing.T) {
	t.Run("ParentBindingVisibleFromChild", func(t *testing.T) {
		parent := New()
		a := &apple{n: 1}
		require.NoError(t, parent.Bind(a))

		child := parent.Child()
		got, err := Get[*apple](child)
		require.NoError(t, err)
		assert.True(t, got == a)
	})
	t.Run("ChildShadowsParent", func(t *testing.T) {
		parent := New()
		child := parent.Child()
		pa := &apple{n: 1}
		ca := &apple{n: 2}
		require.NoError(t, parent.Bind(pa))
		require.NoError(t, child.Bind(ca))

		got, err := Get[*apple](child)
		require.NoError(t, err)
		assert.True(t, got == ca, "child binding shadows the parent's")

		got, err = Get[*apple](parent)
		require.NoError(t, err)
		assert.True(t, got == pa, "parent keeps its own binding")
	})
	t.Run("ChildNeverMutatesParent", func(t *testing.T) {
		parent := New()
		require.NoError(t, parent.Register(func() *apple { return &apple{} }))

		child := parent.Child()
		_, err := Get[*apple](child)
		require.NoError(t, err)

		var a *apple
		assert.True(t, child.Has(&a), "instance memoized on the child")
		assert.False(t, parent.Has(&a), "parent store must stay untouched")
	})
}

type pingT struct{ pong *pongT }

type pongT struct{ ping *pingT }

func TestContainerCycleDetection(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(
		func(p *pongT) *pingT { return &pingT{pong: p} },
		func(p *pingT) *pongT { return &pongT{ping: p} },
	))

	_, err := Get[*pingT](c)
	require.Error(t, err)

	var cycle *CycleError
	assert.True(t, errors.As(err, &cycle))
}

func TestContainerEvents(t *testing.T) {
	spy := new(dievent.Spy)
	c := New(WithLogger(spy))

	require.NoError(t, c.Bind(&apple{}))
	require.NoError(t, c.Register(newCrate))
	_, err := Get[*crate](c)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"BoundEvent",
		"RegisteredEvent",
		"InstantiatedEvent", // banana
		"InstantiatedEvent", // crate
	}, spy.EventTypes())
}
