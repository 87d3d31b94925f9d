package lisp

import "testing"

func readAll(t *testing.T, ctx *Context, src string) []*Datum {
	t.Helper()
	var forms []*Datum
	if err := ctx.Read(src, func(d *Datum) { forms = append(forms, d) }); err != nil {
		t.Fatalf("Read(%q) error: %v", src, err)
	}
	return forms
}

var readerRoundTripTests = []struct {
	in, out string
}{
	{"a", "a"},
	{"()", "()"},
	{"(a b c)", "(a b c)"},
	{"(a (b c) d)", "(a (b c) d)"},
	{"123", "123"},
	{"-5", "-5"},
	{"0x1F", "31"},
	{"0o17", "15"},
	{"0b101", "5"},
	{"3.5", "3.5"},
	{`"hello"`, "hello"},
	{`"a\nb"`, "a\nb"},
	{"'a", "(quote a)"},
	{"'(a b)", "(quote (a b))"},
	{"`(a ,b)", "(quasiquote (a (unquote b)))"},
	{"`(a ,@b)", "(quasiquote (a (unquote-splicing b)))"},
	{"[a b]", "(a b)"},
	{"; a comment\na", "a"},
}

func TestReaderRoundTrip(t *testing.T) {
	ctx := NewContext()
	for _, test := range readerRoundTripTests {
		forms := readAll(t, ctx, test.in)
		if len(forms) != 1 {
			t.Errorf("Read(%q) produced %d forms, want 1", test.in, len(forms))
			continue
		}
		if got := Stringify(forms[0]); got != test.out {
			t.Errorf("Read(%q) = %s, want %s", test.in, got, test.out)
		}
	}
}

func TestReaderMultipleForms(t *testing.T) {
	ctx := NewContext()
	forms := readAll(t, ctx, "a b (c d)")
	if len(forms) != 3 {
		t.Fatalf("got %d forms, want 3", len(forms))
	}
	want := []string{"a", "b", "(c d)"}
	for i, w := range want {
		if got := Stringify(forms[i]); got != w {
			t.Errorf("form %d = %s, want %s", i, got, w)
		}
	}
}

var readerErrorTests = []string{
	"(a b",
	"a)",
	`"unterminated`,
}

func TestReaderErrors(t *testing.T) {
	for _, src := range readerErrorTests {
		ctx := NewContext()
		err := ctx.Read(src, func(*Datum) {})
		if err == nil {
			t.Errorf("Read(%q): expected error, got nil", src)
		}
	}
}

func TestSymbolsInternAcrossReads(t *testing.T) {
	ctx := NewContext()
	a := readAll(t, ctx, "foo")[0]
	b := readAll(t, ctx, "foo")[0]
	if !Eq(a, b) {
		t.Errorf("two reads of the same symbol spelling are not eq?")
	}
}
