package lisp

import "math/big"

// installPrimitives binds the host-implemented procedure set spec §2's
// "Primitive operators" row names, evaluated-argument procedures (as
// opposed to the unevaluated-argument special forms in special.go).
// Grounded one-for-one on lisp.py's @glbl-decorated op_* functions.
func installPrimitives(ctx *Context) {
	def := func(name string, call Step) {
		ctx.Global.Define(ctx.Intern(name), newPrimitive(name, false, false, call))
	}
	def("apply", opApply)
	def("atom?", unary(opAtom))
	def("car", unary(opCar))
	def("cdr", unary(opCdr))
	def("cons", binary(opCons))
	def("/", opDiv)
	def("div", opDiv)
	def("eq?", binary(opEq))
	def("equal?", binary(opEqual))
	def("error", opError)
	def("eval", opEval)
	def("exit", opExit)
	def("lt?", opLt)
	def("<", opLt)
	def("mul", opMul)
	def("*", opMul)
	def("nand", opNand)
	def("null?", unary(opNull))
	def("obj>string", opObjString)
	def("print", opPrint)
	def("range", opRange)
	def("set-car!", binarySetter(opSetCarPrim))
	def("set-cdr!", binarySetter(opSetCdrPrim))
	def("sub", opSub)
	def("-", opSub)
	def("type", opType)
	def("while", opWhile)
}

// unary adapts a plain (*Datum) (*Datum, error) function into a Step
// that unpacks exactly one argument first, matching lisp.py's unary()
// helper (SPEC_FULL.md "Arity-checked primitives").
func unary(f func(*Datum) (*Datum, error)) Step {
	return func(ctx *Context) (Step, error) {
		x, err := ctx.Unpack1()
		if err != nil {
			return nil, err
		}
		val, err := f(x)
		if err != nil {
			return nil, err
		}
		ctx.Val = val
		return ctx.Cont, nil
	}
}

// binary is unary's two-argument counterpart (lisp.py's binary()).
func binary(f func(x, y *Datum) (*Datum, error)) Step {
	return func(ctx *Context) (Step, error) {
		x, y, err := ctx.Unpack2()
		if err != nil {
			return nil, err
		}
		val, err := f(x, y)
		if err != nil {
			return nil, err
		}
		ctx.Val = val
		return ctx.Cont, nil
	}
}

// binarySetter adapts a (x, y) error mutator (set-car!/set-cdr!, which
// return no useful value) into a binary Step that yields Nil.
func binarySetter(f func(x, y *Datum) error) Step {
	return binary(func(x, y *Datum) (*Datum, error) {
		if err := f(x, y); err != nil {
			return nil, err
		}
		return Nil, nil
	})
}

func opAtom(x *Datum) (*Datum, error) {
	if IsAtom(x) {
		return True, nil
	}
	return Nil, nil
}

func opCar(x *Datum) (*Datum, error) { return Car(x) }
func opCdr(x *Datum) (*Datum, error) { return Cdr(x) }
func opCons(x, y *Datum) (*Datum, error) { return Cons(x, y), nil }

func opSetCarPrim(x, y *Datum) error { return SetHead(x, y) }
func opSetCdrPrim(x, y *Datum) error { return SetTail(x, y) }

func opEq(x, y *Datum) (*Datum, error) {
	if Eq(x, y) {
		return True, nil
	}
	return Nil, nil
}

func opEqual(x, y *Datum) (*Datum, error) {
	if Equal(x, y) {
		return True, nil
	}
	return Nil, nil
}

func opNull(x *Datum) (*Datum, error) {
	if IsNil(x) {
		return True, nil
	}
	return Nil, nil
}

func opType(ctx *Context) (Step, error) {
	x, err := ctx.Unpack1()
	if err != nil {
		return nil, err
	}
	ctx.Val = typeTag(ctx, x)
	return ctx.Cont, nil
}

// typeTag implements the full type-tag vocabulary the original
// enumerates for op_type (SPEC_FULL.md "type primitive's full tag
// set"), kept in lockstep with the stringifier's opaque-kind names. It
// interns tag symbols against ctx's own symbol table -- the same one
// the reader uses -- so `(eq? (type x) 'pair)` holds: a tag symbol
// interned from a second, separate table would never be eq? to the
// quoted 'pair a caller reads (spec §3 "Symbol identity"). Grounded on
// lisp.py's op_type, which likewise calls ctx.symbol(...) rather than
// minting its own table.
func typeTag(ctx *Context, x *Datum) *Datum {
	switch x.Kind() {
	case KindNil:
		return ctx.Intern("()")
	case KindTrue:
		return ctx.Intern("#t")
	case KindPair:
		return ctx.Intern("pair")
	case KindSymbol:
		return ctx.Intern("symbol")
	case KindInteger:
		return ctx.Intern("integer")
	case KindFloat:
		return ctx.Intern("float")
	case KindString:
		return ctx.Intern("string")
	case KindProcedure:
		p := x.Procedure()
		switch {
		case p.LambdaBody != nil || p.LambdaParams != nil:
			return ctx.Intern("lambda")
		case p.IsContinuation:
			return ctx.Intern("continuation")
		default:
			return ctx.Intern("primitive")
		}
	default:
		return ctx.Intern("opaque")
	}
}

// opApply implements apply (spec §2). Unlike the original's op_apply
// (which skips the FFI conversion path entirely), tern routes an
// FFI-flagged target through kFFI so `(apply ffi-math (list 'sqrt 4))`
// behaves the same whether called directly or via apply.
func opApply(ctx *Context) (Step, error) {
	procDatum, args, err := ctx.Unpack2()
	if err != nil {
		return nil, err
	}
	if !IsProcedure(procDatum) {
		return nil, newSyntaxError("expected proc, got %s", Stringify(procDatum))
	}
	ctx.Argl = args
	proc := procDatum.Procedure()
	if proc.FFI {
		ctx.Exp = procDatum
		return kFFI, nil
	}
	return proc.Call, nil
}

func opError(ctx *Context) (Step, error) {
	x, err := ctx.Unpack1()
	if err != nil {
		return nil, err
	}
	return nil, newUserError("%s", Stringify(x))
}

// opEval implements eval (spec §2, SPEC_FULL.md keeps the original's
// string-source and frame-count forms): `(eval expr)` evaluates expr in
// the calling environment; `(eval expr n)` walks n frames outward
// first (used by let/let*/letrec's macro expansions, which eval in the
// defining frame's parent); a string expr is read and the last
// top-level form is evaluated.
func opEval(ctx *Context) (Step, error) {
	items, err := ListToSlice(ctx.Argl)
	if err != nil {
		return nil, err
	}
	var x *Datum
	nUp := 0
	switch len(items) {
	case 1:
		x = items[0]
	case 2:
		x = items[0]
		n, ok := items[1].Integer()
		if !ok {
			return nil, newSyntaxError("eval: expected integer frame count")
		}
		nUp = int(n.Int64())
	default:
		return nil, newSyntaxError("eval expected one or two args")
	}

	if s, ok := x.RawString(); ok {
		var forms []*Datum
		if err := ctx.Read(s, func(d *Datum) { forms = append(forms, d) }); err != nil {
			return nil, err
		}
		if len(forms) == 0 {
			x = Nil
		} else {
			x = forms[len(forms)-1]
		}
	}

	env := ctx.Env
	for i := 0; i < nUp; i++ {
		if env.Parent() == nil {
			return nil, newSyntaxError("no frame available")
		}
		env = env.Parent()
	}
	ctx.Exp = x
	ctx.Env = env
	return kLeval, nil
}

func opExit(ctx *Context) (Step, error) {
	x, err := ctx.Unpack1()
	if err != nil {
		return nil, err
	}
	if n, ok := x.Integer(); ok {
		return nil, &ExitError{HasCode: true, Code: int(n.Int64())}
	}
	return nil, &ExitError{Value: x}
}

func opNumCompare(x, y *Datum) (int, error) {
	xf, xok := numericFloat(x)
	yf, yok := numericFloat(y)
	if xok && yok {
		switch {
		case xf < yf:
			return -1, nil
		case xf > yf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	xs, xok := x.RawString()
	ys, yok := y.RawString()
	if xok && yok {
		switch {
		case xs < ys:
			return -1, nil
		case xs > ys:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, newTypeError("expected comparable values, got %s and %s", Stringify(x), Stringify(y))
}

func opLt(ctx *Context) (Step, error) {
	x, y, err := ctx.Unpack2()
	if err != nil {
		return nil, err
	}
	cmp, err := opNumCompare(x, y)
	if err != nil {
		return nil, err
	}
	if cmp < 0 {
		ctx.Val = True
	} else {
		ctx.Val = Nil
	}
	return ctx.Cont, nil
}

func numericFloat(x *Datum) (float64, bool) {
	if i, ok := x.Integer(); ok {
		f := new(big.Float).SetInt(i)
		v, _ := f.Float64()
		return v, true
	}
	if f, ok := x.Float(); ok {
		return f, true
	}
	return 0, false
}

func bothInt(x, y *Datum) (*big.Int, *big.Int, bool) {
	xi, xok := x.Integer()
	yi, yok := y.Integer()
	if xok && yok {
		return xi, yi, true
	}
	return nil, nil, false
}

func opSub(ctx *Context) (Step, error) {
	items, err := ListToSlice(ctx.Argl)
	if err != nil {
		return nil, err
	}
	var x, y *Datum
	switch len(items) {
	case 1:
		x, y = NewIntegerInt64(0), items[0]
	case 2:
		x, y = items[0], items[1]
	default:
		return nil, newSyntaxError("expected one or two args")
	}
	if xi, yi, ok := bothInt(x, y); ok {
		ctx.Val = NewInteger(new(big.Int).Sub(xi, yi))
		return ctx.Cont, nil
	}
	xf, xok := numericFloat(x)
	yf, yok := numericFloat(y)
	if !xok || !yok {
		return nil, newTypeError("expected numbers, got %s and %s", Stringify(x), Stringify(y))
	}
	ctx.Val = NewFloat(xf - yf)
	return ctx.Cont, nil
}

func opMul(ctx *Context) (Step, error) {
	x, y, err := ctx.Unpack2()
	if err != nil {
		return nil, err
	}
	if xi, yi, ok := bothInt(x, y); ok {
		ctx.Val = NewInteger(new(big.Int).Mul(xi, yi))
		return ctx.Cont, nil
	}
	xf, xok := numericFloat(x)
	yf, yok := numericFloat(y)
	if !xok || !yok {
		return nil, newTypeError("expected numbers, got %s and %s", Stringify(x), Stringify(y))
	}
	ctx.Val = NewFloat(xf * yf)
	return ctx.Cont, nil
}

func opDiv(ctx *Context) (Step, error) {
	x, y, err := ctx.Unpack2()
	if err != nil {
		return nil, err
	}
	if xi, yi, ok := bothInt(x, y); ok {
		if yi.Sign() == 0 {
			return nil, newTypeError("division by zero")
		}
		ctx.Val = NewInteger(floorDivInt(xi, yi))
		return ctx.Cont, nil
	}
	xf, xok := numericFloat(x)
	yf, yok := numericFloat(y)
	if !xok || !yok {
		return nil, newTypeError("expected numbers, got %s and %s", Stringify(x), Stringify(y))
	}
	ctx.Val = NewFloat(xf / yf)
	return ctx.Cont, nil
}

// floorDivInt divides toward negative infinity, matching Python's //
// that lisp.py's op_div_f relies on -- not big.Int.Quo's truncation
// toward zero, which disagrees with it on mixed-sign operands (e.g.
// -7 // 2 is -4, not -3). big.Int.QuoRem truncates toward zero, so
// when the remainder is nonzero and its sign disagrees with the
// divisor's, the truncated quotient is one too high and gets
// decremented.
func floorDivInt(x, y *big.Int) *big.Int {
	q, r := new(big.Int), new(big.Int)
	q.QuoRem(x, y, r)
	if r.Sign() != 0 && (r.Sign() < 0) != (y.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
	}
	return q
}

func opNand(ctx *Context) (Step, error) {
	x, y, err := ctx.Unpack2()
	if err != nil {
		return nil, err
	}
	xi, yi, ok := bothInt(x, y)
	if !ok {
		return nil, newTypeError("expected integers, got %s and %s", Stringify(x), Stringify(y))
	}
	and := new(big.Int).And(xi, yi)
	ctx.Val = NewInteger(new(big.Int).Not(and))
	return ctx.Cont, nil
}

// opRange is a primitive rather than an ffi bridge because converting
// a large list element-by-element through the host bridge is no
// cheaper than building it directly (SPEC_FULL.md "range as a
// primitive, not FFI").
func opRange(ctx *Context) (Step, error) {
	startD, stopD, stepD, err := ctx.Unpack3()
	if err != nil {
		return nil, err
	}
	start, ok1 := startD.Integer()
	stop, ok2 := stopD.Integer()
	step, ok3 := stepD.Integer()
	if !ok1 || !ok2 || !ok3 {
		return nil, newTypeError("range expects integers")
	}
	if step.Sign() == 0 {
		return nil, newTypeError("range: step must be nonzero")
	}
	b := newListBuilder()
	cur := new(big.Int).Set(start)
	if step.Sign() > 0 {
		for cur.Cmp(stop) < 0 {
			b.append(NewInteger(new(big.Int).Set(cur)))
			cur.Add(cur, step)
		}
	} else {
		for cur.Cmp(stop) > 0 {
			b.append(NewInteger(new(big.Int).Set(cur)))
			cur.Add(cur, step)
		}
	}
	ctx.Val = b.get()
	return ctx.Cont, nil
}

func opObjString(ctx *Context) (Step, error) {
	x, err := ctx.Unpack1()
	if err != nil {
		return nil, err
	}
	ctx.Exp = x
	return kStringify, nil
}

// opPrint implements print (spec §2): each argument is stringified and
// written space-separated, terminated by a newline, to ctx.stdout.
// Grounded on lisp.py's op_print/k_op_print, trampolined through
// kStringify rather than recursing for each argument.
func opPrint(ctx *Context) (Step, error) {
	args := ctx.Argl
	if IsNil(args) {
		writeStdout(ctx, "\n")
		ctx.Val = Nil
		return ctx.Cont, nil
	}
	first, rest, err := carCdr(args)
	if err != nil {
		return nil, err
	}
	ctx.push(ctx.Cont)
	ctx.push(rest)
	ctx.Exp = first
	ctx.Cont = kOpPrint
	return kStringify, nil
}

func kOpPrint(ctx *Context) (Step, error) {
	rest := ctx.pop().(*Datum)
	s, _ := ctx.Val.RawString()
	if IsNil(rest) {
		writeStdout(ctx, s+"\n")
		cont := ctx.pop().(Step)
		ctx.Val = Nil
		return cont, nil
	}
	writeStdout(ctx, s+" ")
	next, tail, err := carCdr(rest)
	if err != nil {
		return nil, err
	}
	ctx.push(tail)
	ctx.Exp = next
	ctx.Cont = kOpPrint
	return kStringify, nil
}

func writeStdout(ctx *Context, s string) {
	_, _ = ctx.stdout.Write([]byte(s))
}

// opWhile implements while (spec §2, SPEC_FULL.md "while/loop
// primitives"): its one argument is a zero-arg procedure, called
// repeatedly in tail position via the same continuation until it
// returns Nil. Grounded on lisp.py's op_while/k_op_while.
func opWhile(ctx *Context) (Step, error) {
	proc, err := ctx.Unpack1()
	if err != nil {
		return nil, err
	}
	if !IsProcedure(proc) {
		return nil, newTypeError("expected callable, got %s", Stringify(proc))
	}
	ctx.push(ctx.Cont)
	ctx.push(proc)
	ctx.push(ctx.Env)
	ctx.Argl = Nil
	ctx.Cont = kOpWhile
	return proc.Procedure().Call, nil
}

func kOpWhile(ctx *Context) (Step, error) {
	env := ctx.pop().(*Environment)
	proc := ctx.pop().(*Datum)
	ctx.Env = env
	if IsNil(ctx.Val) {
		cont := ctx.pop().(Step)
		return cont, nil
	}
	ctx.push(proc)
	ctx.push(env)
	ctx.Argl = Nil
	ctx.Cont = kOpWhile
	return proc.Procedure().Call, nil
}
