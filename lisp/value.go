// Package lisp implements the evaluation core of a small Lisp: a reader,
// a trampolined evaluator with tail calls and first-class continuations,
// and the primitive/special-form set that makes the language self-hosting.
package lisp

import "math/big"

// Kind discriminates the variants of Datum, the universal value
// representation (spec §3). There is no separate list type: a list is
// either Nil or a pair whose tail is a list.
type Kind uint8

const (
	KindNil Kind = iota
	KindTrue
	KindSymbol
	KindInteger
	KindFloat
	KindString
	KindPair
	KindProcedure
)

// Datum is a discriminated union over the fields below; which fields are
// valid is determined entirely by kind. This mirrors the teacher's Expr
// struct (a single type with atom/car/cdr fields, only some populated)
// generalized to the larger set of atom kinds the spec requires.
type Datum struct {
	kind Kind
	sym  *Symbol
	i    *big.Int
	f    float64
	s    string
	pair *pairCell
	proc *Procedure
}

type pairCell struct {
	head, tail *Datum
}

// Nil is the unique empty-list marker. It is the only falsy value.
var Nil = &Datum{kind: KindNil}

// True is the unique boolean-truth marker, bound globally as #t.
var True = &Datum{kind: KindTrue}

// Kind reports the datum's discriminant.
func (d *Datum) Kind() Kind { return d.kind }

// NewInteger wraps an arbitrary-precision integer as a Datum.
func NewInteger(i *big.Int) *Datum { return &Datum{kind: KindInteger, i: i} }

// NewIntegerInt64 is a convenience wrapper for small host integers.
func NewIntegerInt64(i int64) *Datum { return NewInteger(big.NewInt(i)) }

// NewFloat wraps a host float as a Datum.
func NewFloat(f float64) *Datum { return &Datum{kind: KindFloat, f: f} }

// NewString wraps a host string as a Datum.
func NewString(s string) *Datum { return &Datum{kind: KindString, s: s} }

// NewProcedure wraps a Procedure as a Datum.
func NewProcedure(p *Procedure) *Datum { return &Datum{kind: KindProcedure, proc: p} }

// Cons allocates a new mutable pair. Pairs are shared-mutable cells; two
// Cons results are never the same cell even with identical contents.
func Cons(head, tail *Datum) *Datum {
	return &Datum{kind: KindPair, pair: &pairCell{head: head, tail: tail}}
}

// IsPair reports whether d is a pair (cons cell).
func IsPair(d *Datum) bool { return d.kind == KindPair }

// IsNil reports whether d is the empty list.
func IsNil(d *Datum) bool { return d == Nil }

// IsSymbol reports whether d is a symbol.
func IsSymbol(d *Datum) bool { return d.kind == KindSymbol }

// IsProcedure reports whether d is a procedure (primitive, closure, or
// continuation).
func IsProcedure(d *Datum) bool { return d.kind == KindProcedure }

// Procedure returns the underlying *Procedure, or nil if d is not one.
func (d *Datum) Procedure() *Procedure {
	if d.kind != KindProcedure {
		return nil
	}
	return d.proc
}

// Integer returns the underlying *big.Int and true if d is an integer.
func (d *Datum) Integer() (*big.Int, bool) {
	if d.kind != KindInteger {
		return nil, false
	}
	return d.i, true
}

// Float returns the underlying float64 and true if d is a float.
func (d *Datum) Float() (float64, bool) {
	if d.kind != KindFloat {
		return 0, false
	}
	return d.f, true
}

// RawString returns the underlying host string and true if d is a string.
func (d *Datum) RawString() (string, bool) {
	if d.kind != KindString {
		return "", false
	}
	return d.s, true
}

// SymbolName returns the spelling of d if it is a symbol, else "".
func (d *Datum) SymbolName() string {
	if d.kind != KindSymbol {
		return ""
	}
	return d.sym.name
}

// IsAtom reports whether d is not a pair (spec GLOSSARY "Atom").
func IsAtom(d *Datum) bool { return d.kind != KindPair }

// Car returns the head of a pair. A non-pair (including Nil) is a type
// error: list-consuming operations never special-case Nil for car.
func Car(d *Datum) (*Datum, error) {
	if !IsPair(d) {
		return nil, newTypeError("expected pair, got %s", Stringify(d))
	}
	return d.pair.head, nil
}

// Cdr returns the tail of a pair. Cdr(Nil) is Nil, matching the source's
// cdr(EL) = EL shortcut; any other non-pair is a type error.
func Cdr(d *Datum) (*Datum, error) {
	if IsNil(d) {
		return Nil, nil
	}
	if !IsPair(d) {
		return nil, newTypeError("expected pair, got %s", Stringify(d))
	}
	return d.pair.tail, nil
}

// carCdr is a convenience combining Car and Cdr, used throughout the
// special-form and evaluator code to destructure a list's head and tail
// in one step.
func carCdr(d *Datum) (*Datum, *Datum, error) {
	head, err := Car(d)
	if err != nil {
		return nil, nil, err
	}
	tail, err := Cdr(d)
	if err != nil {
		return nil, nil, err
	}
	return head, tail, nil
}

// SetHead implements set-head!/set-car!, mutating the pair in place.
func SetHead(d, v *Datum) error {
	if !IsPair(d) {
		return newTypeError("expected pair, got %s", Stringify(d))
	}
	d.pair.head = v
	return nil
}

// SetTail implements set-tail!/set-cdr!, mutating the pair in place.
func SetTail(d, v *Datum) error {
	if !IsPair(d) {
		return newTypeError("expected pair, got %s", Stringify(d))
	}
	d.pair.tail = v
	return nil
}

// Eq implements eq?: identity on symbols, Nil, and True (spec §3
// "Symbol identity"). Every other kind (integer, float, string, pair,
// procedure) is never eq to anything, even itself by value -- only
// pointer identity of the three atom kinds above counts, and Nil/True
// are process-wide singletons so that degenerates to Go pointer
// equality. Grounded on lcore.py's is_atom()-gated eq().
func Eq(x, y *Datum) bool {
	switch x.kind {
	case KindNil, KindTrue, KindSymbol:
		return x == y
	default:
		return false
	}
}

// Equal implements equal?: structural equality, descending through pairs
// and comparing atoms by value.
func Equal(x, y *Datum) bool {
	if x == y {
		return true
	}
	if x.kind != y.kind {
		return false
	}
	switch x.kind {
	case KindNil, KindTrue:
		return true
	case KindSymbol:
		return x.sym == y.sym
	case KindInteger:
		return x.i.Cmp(y.i) == 0
	case KindFloat:
		return x.f == y.f
	case KindString:
		return x.s == y.s
	case KindPair:
		return Equal(x.pair.head, y.pair.head) && Equal(x.pair.tail, y.pair.tail)
	case KindProcedure:
		return x.proc == y.proc
	default:
		return false
	}
}

// IsTrue reports whether d is truthy. Nil is the only falsy value
// (spec §4.5, "if"): every other datum, including integer 0 and the
// empty string, takes the consequent branch.
func IsTrue(d *Datum) bool { return d != Nil }

// ListLength reports the number of elements in the top level of a proper
// list, or an error if the tail is not Nil-terminated.
func ListLength(d *Datum) (int, error) {
	n := 0
	for !IsNil(d) {
		if !IsPair(d) {
			return 0, newTypeError("expected list, got %s", Stringify(d))
		}
		n++
		d = d.pair.tail
	}
	return n, nil
}

// ListToSlice flattens a proper list into a slice of its elements.
func ListToSlice(d *Datum) ([]*Datum, error) {
	var out []*Datum
	for !IsNil(d) {
		if !IsPair(d) {
			return nil, newTypeError("expected list, got %s", Stringify(d))
		}
		out = append(out, d.pair.head)
		d = d.pair.tail
	}
	return out, nil
}

// SliceToList builds a proper list from a slice, in order, with an
// O(n) head/tail builder (spec §4.6).
func SliceToList(items []*Datum) *Datum {
	b := newListBuilder()
	for _, it := range items {
		b.append(it)
	}
	return b.get()
}

// listBuilder is the append-efficient list builder the reader and FFI
// bridge use (spec §4.1 "List stack", §4.6).
type listBuilder struct {
	head, tail *Datum
}

func newListBuilder() *listBuilder { return &listBuilder{head: Nil, tail: Nil} }

func (b *listBuilder) append(x *Datum) {
	n := Cons(x, Nil)
	if IsNil(b.head) {
		b.head = n
	} else {
		b.tail.pair.tail = n
	}
	b.tail = n
}

func (b *listBuilder) get() *Datum { return b.head }
