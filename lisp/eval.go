package lisp

// sentinel marks a list-boundary on the generic value stack: it is never
// equal to any *Datum, *Environment, or Step, so a pop loop can safely
// test for it with ==. Grounded on lcore.py's SENTINEL object.
var sentinel = new(struct{})

// kLeval is the evaluator's dispatch step (spec §4.2). A symbol
// evaluates to its binding; any other non-pair datum is self-evaluating;
// a pair is an application, whose operator may be a bound special form
// (operands passed unevaluated) or an ordinary procedure (operands
// evaluated left to right by kLevalNext/kLevalLast before the call).
// Grounded on lcore.py's k_leval.
func kLeval(ctx *Context) (Step, error) {
	x := ctx.Exp
	if IsSymbol(x) {
		v, ok := ctx.Env.Get(x)
		if !ok {
			return nil, newNameError("%s", x.SymbolName())
		}
		ctx.Val = v
		return ctx.Cont, nil
	}
	if !IsPair(x) {
		ctx.Val = x
		return ctx.Cont, nil
	}

	op, err := Car(x)
	if err != nil {
		return nil, err
	}
	args, err := Cdr(x)
	if err != nil {
		return nil, err
	}

	if IsSymbol(op) {
		resolved, ok := ctx.Env.Get(op)
		if !ok {
			return nil, newNameError("%s", op.SymbolName())
		}
		op = resolved
		if IsProcedure(op) && op.Procedure().Special {
			ctx.Argl = args
			return op.Procedure().Call, nil
		}
	}

	ctx.push(ctx.Cont)
	ctx.push(ctx.Env)
	ctx.push(args)

	if IsProcedure(op) {
		ctx.Val = op
		return kLevalProcDone, nil
	}
	if IsPair(op) {
		ctx.Cont = kLevalProcDone
		ctx.Exp = op
		return kLeval, nil
	}
	return nil, newSyntaxError("expected list or proc, got %s", Stringify(op))
}

// kLevalProcDone runs once the operator has been resolved to a
// procedure Datum (ctx.Val). A special form, or a call with no
// arguments, invokes its Call (or, if FFI-flagged, kFFI) immediately in
// tail position; otherwise
// the argument expressions are evaluated left to right by
// kLevalNext/kLevalLast before Call runs.
func kLevalProcDone(ctx *Context) (Step, error) {
	procDatum := ctx.Val
	if !IsProcedure(procDatum) {
		return nil, newSyntaxError("expected callable, got %s", Stringify(procDatum))
	}
	proc := procDatum.Procedure()

	ctx.Argl = ctx.pop().(*Datum)
	ctx.Env = ctx.pop().(*Environment)

	if IsNil(ctx.Argl) || proc.Special {
		ctx.Cont = ctx.pop().(Step)
		if proc.FFI {
			ctx.Exp = procDatum
			return kFFI, nil
		}
		return proc.Call, nil
	}

	first, err := Car(ctx.Argl)
	if err != nil {
		return nil, err
	}
	rest, err := Cdr(ctx.Argl)
	if err != nil {
		return nil, err
	}

	ctx.push(procDatum)
	ctx.push(sentinel)
	ctx.push(ctx.Env)

	ctx.Exp = first
	switch {
	case IsNil(rest):
		ctx.Cont = kLevalLast
	case IsPair(rest):
		ctx.push(rest)
		ctx.Cont = kLevalNext
	default:
		return nil, newTypeError("expected list, got %s", Stringify(rest))
	}
	return kLeval, nil
}

// kLevalNext runs after evaluating one argument that is not the last;
// it records the value and moves on to the next argument expression.
func kLevalNext(ctx *Context) (Step, error) {
	remaining := ctx.pop().(*Datum)
	env := ctx.pop().(*Environment)
	ctx.Env = env
	ctx.push(ctx.Val)
	ctx.push(env)

	first, err := Car(remaining)
	if err != nil {
		return nil, err
	}
	rest, err := Cdr(remaining)
	if err != nil {
		return nil, err
	}
	ctx.Exp = first
	switch {
	case IsNil(rest):
		ctx.Cont = kLevalLast
	case IsPair(rest):
		ctx.push(rest)
		ctx.Cont = kLevalNext
	default:
		return nil, newTypeError("expected list, got %s", Stringify(rest))
	}
	return kLeval, nil
}

// kLevalLast runs after the final argument has been evaluated. It
// unwinds the accumulated argument values off the stack back to the
// sentinel, reassembles them (in left-to-right order) into ctx.Argl,
// and hands control to the resolved procedure -- through the FFI
// conversion step if the procedure is FFI-flagged.
func kLevalLast(ctx *Context) (Step, error) {
	env := ctx.pop().(*Environment)
	ctx.Env = env

	values := []*Datum{ctx.Val}
	for {
		v := ctx.pop()
		if v == sentinel {
			break
		}
		values = append(values, v.(*Datum))
	}
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
	ctx.Argl = SliceToList(values)

	procDatum := ctx.pop().(*Datum)
	ctx.Cont = ctx.pop().(Step)

	proc := procDatum.Procedure()
	if proc.FFI {
		ctx.Exp = procDatum
		return kFFI, nil
	}
	return proc.Call, nil
}
