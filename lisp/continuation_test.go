package lisp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCallCCEscapesEarly(t *testing.T) {
	ctx := NewContext()
	src := `
		(define (find-first pred items k)
		  (cond ((null? items) ())
		        ((pred (car items)) (k (car items)))
		        (#t (find-first pred (cdr items) k))))
		(call/cc
		  (lambda (return)
		    (find-first (lambda (x) (eq? x 'c))
		                (cons 'a (cons 'b (cons 'c (cons 'd '()))))
		                return)))`
	val, err := ctx.ExecuteLast(src)
	require.NoError(t, err)
	require.Equal(t, "c", Stringify(val))
}

// TestCallCCZeroArgSugar confirms `(call/cc)` with no arguments returns
// the reified continuation directly, instead of requiring the caller
// to supply an identity lambda (spec §4.4).
func TestCallCCZeroArgSugar(t *testing.T) {
	ctx := NewContext()
	val, err := ctx.ExecuteLast("(define k (call/cc)) (type k)")
	require.NoError(t, err)
	require.Equal(t, "continuation", Stringify(val))
}

// TestCallCCResumesLater verifies invoking a captured continuation
// outside the dynamic extent of its call/cc still resumes correctly,
// the defining property of a first-class continuation rather than an
// ordinary escape-only exception.
func TestCallCCResumesLater(t *testing.T) {
	ctx := NewContext()
	src := `
		(define saved ())
		(define (gen)
		  (set! saved (call/cc (lambda (k) k)))
		  1)
		(gen)`
	val, err := ctx.ExecuteLast(src)
	require.NoError(t, err)
	require.Equal(t, "1", Stringify(val))

	resumed, err := ctx.ExecuteLast("(saved 99)")
	require.NoError(t, err)
	require.Equal(t, "1", Stringify(resumed))
}

func TestCallCCRejectsNonProcedure(t *testing.T) {
	ctx := NewContext()
	_, err := ctx.ExecuteLast("(call/cc 5)")
	require.Error(t, err)
}
