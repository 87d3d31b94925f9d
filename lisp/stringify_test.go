package lisp

import "testing"

func TestStringifyAtoms(t *testing.T) {
	ctx := NewContext()
	tests := []struct {
		d   *Datum
		out string
	}{
		{Nil, "()"},
		{True, "#t"},
		{NewIntegerInt64(42), "42"},
		{NewFloat(1.5), "1.5"},
		{NewString("hi"), "hi"},
		{ctx.Intern("foo"), "foo"},
	}
	for _, test := range tests {
		if got := Stringify(test.d); got != test.out {
			t.Errorf("Stringify(%v) = %s, want %s", test.d, got, test.out)
		}
	}
}

func TestStringifyPair(t *testing.T) {
	d := Cons(NewIntegerInt64(1), Cons(NewIntegerInt64(2), Nil))
	if got := Stringify(d); got != "(1 2)" {
		t.Errorf("got %s, want (1 2)", got)
	}
}

func TestStringifyDottedPair(t *testing.T) {
	d := Cons(NewIntegerInt64(1), NewIntegerInt64(2))
	if got := Stringify(d); got != "(1 2)" {
		t.Errorf("got %s, want (1 2)", got)
	}
}

func TestStringifyLambda(t *testing.T) {
	ctx := NewContext()
	val, err := ctx.ExecuteLast("(lambda (x y) (cons x y))")
	if err != nil {
		t.Fatal(err)
	}
	if got := Stringify(val); got != "(lambda (x y) (cons x y))" {
		t.Errorf("got %s", got)
	}
}

// TestStringifyDeepMatchesStringify checks the trampolined renderer
// agrees with the plain recursive one on a representative proper list
// (the two entry points produce identical text for proper lists; only
// Stringify renders a dotted tail).
func TestStringifyDeepMatchesStringify(t *testing.T) {
	ctx := NewContext()
	d := Cons(NewIntegerInt64(1), Cons(ctx.Intern("a"), Cons(NewString("s"), Nil)))
	want := Stringify(d)
	got, err := ctx.StringifyDeep(d)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("StringifyDeep = %s, want %s", got, want)
	}
}
