package lisp

import (
	"testing"

	"github.com/pkg/errors"
)

func eval(t *testing.T, ctx *Context, src string) string {
	t.Helper()
	val, err := ctx.ExecuteLast(src)
	if err != nil {
		t.Fatalf("Execute(%q) error: %v", src, err)
	}
	return Stringify(val)
}

var evalTests = []struct {
	in, out string
}{
	{"(quote (a b c))", "(a b c)"},
	{"'(a b c)", "(a b c)"},
	{"(cons 1 2)", "(1 2)"}, // dotted tails render space-separated, not with a dot
	{"(cons 'a (cons 'b '()))", "(a b)"},
	{"(car '(1 2 3))", "1"},
	{"(cdr '(1 2 3))", "(2 3)"},
	{"(if #t 1 2)", "1"},
	{"(if () 1 2)", "2"},
	{"(if 0 1 2)", "1"}, // only () is falsy
	{"(cond (() 1) (#t 2))", "2"},
	{"(cond (() 1) (() 2))", "()"},
	{"(begin 1 2 3)", "3"},
	{"(begin)", "()"},
	{"(define x 10) x", "10"},
	{"(define (sq x) (mul x x)) (sq 6)", "36"},
	{"((lambda (x y) (cons x y)) 1 2)", "(1 2)"},
	{"(define x 1) (set! x 2) x", "2"},
	{"(sub 5 3)", "2"},
	{"(sub 5)", "-5"},
	{"(mul 6 7)", "42"},
	{"(div 10 3)", "3"},
	{"(div -7 2)", "-4"},  // floor division, not truncation: -7 // 2 is -4
	{"(div 7 -2)", "-4"},
	{"(div -7 -2)", "3"},
	{"(/ 7.0 2)", "3.5"},
	{"(lt? 1 2)", "#t"},
	{"(< 2 1)", "()"},
	{"(eq? 'a 'a)", "#t"},
	{"(equal? '(1 2) '(1 2))", "#t"},
	{"(eq? '(1 2) '(1 2))", "()"},
	{"(null? '())", "#t"},
	{"(atom? '())", "#t"},
	{"(atom? '(1))", "()"},
	{"(type 1)", "integer"},
	{"(type 1.0)", "float"},
	{"(type \"s\")", "string"},
	{"(type 'a)", "symbol"},
	{"(type '())", "()"},
	{"(type #t)", "#t"},
	{"(type '(1))", "pair"},
	{"(type (lambda (x) x))", "lambda"},
	{"(range 0 5 1)", "(0 1 2 3 4)"},
	{"(range 5 0 -1)", "(5 4 3 2 1)"},
	{"(apply cons (cons 1 (cons 2 '())))", "(1 2)"},
	{"(car (trap (obj>string (cons 1 2))))", "()"}, // the trampolined renderer rejects a dotted tail
}

func TestEval(t *testing.T) {
	for _, test := range evalTests {
		ctx := NewContext()
		if got := eval(t, ctx, test.in); got != test.out {
			t.Errorf("%s = %s, want %s", test.in, got, test.out)
		}
	}
}

// TestSetBangUnbound verifies set! on a name that was never defined is
// a NameError rather than a silent global define (spec §9 Open
// Question #1, the stack-based set!).
func TestSetBangUnbound(t *testing.T) {
	ctx := NewContext()
	_, err := ctx.ExecuteLast("(set! never-defined 1)")
	if err == nil {
		t.Fatal("expected NameError, got nil")
	}
	var ne *NameError
	if !errors.As(err, &ne) {
		t.Errorf("got %T, want *NameError", err)
	}
}

// TestSetBangOuterScope confirms set! mutates the nearest enclosing
// binding rather than shadowing it in the current frame.
func TestSetBangOuterScope(t *testing.T) {
	ctx := NewContext()
	src := `
		(define counter 0)
		(define (inc) (set! counter (sub counter -1)))
		(inc) (inc) (inc)
		counter`
	if got := eval(t, ctx, src); got != "3" {
		t.Errorf("counter = %s, want 3", got)
	}
}

// TestTailCallDoesNotGrowStack drives a self-recursive tail loop deep
// enough that a non-trampolined (host call stack) implementation would
// overflow, verifying spec §5's O(1) tail-call guarantee.
func TestTailCallDoesNotGrowStack(t *testing.T) {
	ctx := NewContext()
	src := `
		(define (count n acc)
		  (if (lt? n 1) acc (count (sub n 1) (cons n acc))))
		(car (count 200000 '()))`
	if got := eval(t, ctx, src); got != "1" {
		t.Errorf("car of the built list = %s, want 1", got)
	}
}

func TestDefineFunctionShorthand(t *testing.T) {
	ctx := NewContext()
	if got := eval(t, ctx, "(define (id x) x) (id 42)"); got != "42" {
		t.Errorf("got %s, want 42", got)
	}
}

func TestVariadicParams(t *testing.T) {
	ctx := NewContext()
	if got := eval(t, ctx, "(define (f a & rest) rest) (f 1 2 3)"); got != "(2 3)" {
		t.Errorf("got %s, want (2 3)", got)
	}
}

// TestVariadicParamsRejectsTrailingJunk verifies a parameter list with
// something after the "& rest" pair is a SyntaxError, raised when the
// closure is applied and its parameters are bound, rather than
// silently dropping the extra name.
func TestVariadicParamsRejectsTrailingJunk(t *testing.T) {
	ctx := NewContext()
	_, err := ctx.ExecuteLast("((lambda (a & b c) a) 1 2 3)")
	if err == nil {
		t.Fatal("expected SyntaxError, got nil")
	}
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Errorf("got %T, want *SyntaxError", err)
	}
}

// TestCondRestoresEnvBetweenClauses guards against a previous clause's
// predicate (here a zero-arg lambda call) leaving ctx.Env pointing at
// its own callee frame: the next clause's predicate must still see the
// enclosing lambda's parameters, not the stale frame left behind by the
// earlier tail call.
func TestCondRestoresEnvBetweenClauses(t *testing.T) {
	ctx := NewContext()
	src := `
		(define always-false (lambda () ()))
		(define (outer y) (cond ((always-false) 1) (y 2) (#t 3)))
		(outer 5)`
	if got := eval(t, ctx, src); got != "2" {
		t.Errorf("got %s, want 2", got)
	}
}

func TestTrapCatchesError(t *testing.T) {
	ctx := NewContext()
	if got := eval(t, ctx, "(car (trap (error \"boom\")))"); got != "()" {
		t.Errorf("trap success flag = %s, want ()", got)
	}
}

func TestTrapCatchesSuccess(t *testing.T) {
	ctx := NewContext()
	if got := eval(t, ctx, "(car (trap (cons 1 2)))"); got != "#t" {
		t.Errorf("trap success flag = %s, want #t", got)
	}
}

// TestExecuteReturnsOneValuePerForm verifies Execute's spec §6 contract:
// it returns the list of values produced, one per top-level form in
// source order, not just the value of the last one (that convenience
// lives in ExecuteLast).
func TestExecuteReturnsOneValuePerForm(t *testing.T) {
	ctx := NewContext()
	vals, err := ctx.Execute("(define x 1) (sub x 1) (mul 6 7)")
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(vals) != 3 {
		t.Fatalf("got %d values, want 3", len(vals))
	}
	want := []string{"()", "0", "42"}
	for i, w := range want {
		if got := Stringify(vals[i]); got != w {
			t.Errorf("value %d = %s, want %s", i, got, w)
		}
	}
}

func TestExecuteEmptyTextYieldsNoValues(t *testing.T) {
	ctx := NewContext()
	vals, err := ctx.Execute("; just a comment\n")
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(vals) != 0 {
		t.Errorf("got %d values, want 0", len(vals))
	}
}

func TestSpecialFormCustomMacro(t *testing.T) {
	ctx := NewContext()
	// A fexpr: its argument is unevaluated, so 'noeval receives the raw
	// symbol y rather than y's value.
	src := `
		(special (noeval x) (quote quoted))
		(define y 10)
		(noeval y)`
	if got := eval(t, ctx, src); got != "quoted" {
		t.Errorf("got %s, want quoted", got)
	}
}
