package lisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFFIMathUnary(t *testing.T) {
	ctx := NewContext()
	val, err := ctx.ExecuteLast(`(ffi-math 'sqrt 16.0)`)
	require.NoError(t, err)
	f, ok := val.Float()
	require.True(t, ok, "expected a float result")
	assert.Equal(t, 4.0, f)
}

func TestFFIMathBinary(t *testing.T) {
	ctx := NewContext()
	val, err := ctx.ExecuteLast(`(ffi-math 'pow 2.0 10.0)`)
	require.NoError(t, err)
	f, ok := val.Float()
	require.True(t, ok)
	assert.Equal(t, 1024.0, f)
}

// TestFFIMathAcceptsIntegerArgs exercises the *big.Int branch of
// toHostFloat/datumToHost: an integer literal, not a float literal,
// must still bridge correctly to a host math call.
func TestFFIMathAcceptsIntegerArgs(t *testing.T) {
	ctx := NewContext()
	val, err := ctx.ExecuteLast(`(ffi-math 'sqrt 9)`)
	require.NoError(t, err)
	f, ok := val.Float()
	require.True(t, ok)
	assert.Equal(t, 3.0, f)
}

func TestFFIMathUnknownFunction(t *testing.T) {
	ctx := NewContext()
	_, err := ctx.ExecuteLast(`(ffi-math 'nonexistent 1.0)`)
	require.Error(t, err)
}

// TestApplyRoutesThroughFFI confirms apply on an FFI-flagged procedure
// converts its argument list the same way a direct call does (the
// documented divergence from the original's op_apply).
func TestApplyRoutesThroughFFI(t *testing.T) {
	ctx := NewContext()
	val, err := ctx.ExecuteLast(`(apply ffi-math (cons 'sqrt (cons 25.0 '())))`)
	require.NoError(t, err)
	f, ok := val.Float()
	require.True(t, ok)
	assert.Equal(t, 5.0, f)
}

func TestHostToDatumConvertsSequence(t *testing.T) {
	d, err := hostToDatum([]interface{}{int64(1), "two", nil, true})
	require.NoError(t, err)
	require.True(t, IsPair(d))

	items, err := ListToSlice(d)
	require.NoError(t, err)
	require.Len(t, items, 4)

	i, ok := items[0].Integer()
	require.True(t, ok)
	assert.Equal(t, int64(1), i.Int64())

	s, ok := items[1].RawString()
	require.True(t, ok)
	assert.Equal(t, "two", s)

	assert.True(t, IsNil(items[2]))
	assert.Equal(t, True, items[3])
}
