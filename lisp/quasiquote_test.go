package lisp

import "testing"

var quasiquoteTests = []struct {
	in, out string
}{
	{"`5", "5"},
	{"`a", "a"},
	{"`(a b c)", "(a b c)"},
	{"(define x 2) `(a ,x c)", "(a 2 c)"},
	{"(define xs (cons 4 (cons 5 '()))) `(1 ,@xs 6)", "(1 4 5 6)"},
	{"`(1 ,(sub 5 3) ,@(cons 4 (cons 5 '())) 6)", "(1 2 4 5 6)"},
	{"``(a ,b)", "(quasiquote (a (unquote b)))"},
}

func TestQuasiquote(t *testing.T) {
	for _, test := range quasiquoteTests {
		ctx := NewContext()
		if got := eval(t, ctx, test.in); got != test.out {
			t.Errorf("%s = %s, want %s", test.in, got, test.out)
		}
	}
}

func TestQuasiquoteSplicingOfEmptyList(t *testing.T) {
	ctx := NewContext()
	if got := eval(t, ctx, "`(1 ,@'() 2)"); got != "(1 2)" {
		t.Errorf("got %s, want (1 2)", got)
	}
}

func TestQuasiquoteUnquoteSplicingOutsideList(t *testing.T) {
	ctx := NewContext()
	_, err := ctx.ExecuteLast("`,@(cons 1 '())")
	if err == nil {
		t.Fatal("expected error for top-level unquote-splicing, got nil")
	}
}
