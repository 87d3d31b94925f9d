package lisp

// opQuasiquote implements `` `form `` (spec §4.7). It is registered as
// the special form `quasiquote` and hands off to qq, the walker that
// does the actual substitution work. Grounded on lisp.py's op_quasiquote
// / qq_ family, ported to explicit trampoline steps.
func opQuasiquote(ctx *Context) (Step, error) {
	x, err := ctx.Unpack1()
	if err != nil {
		return nil, err
	}
	ctx.Exp = x
	return qq, nil
}

// qq walks one quasiquoted form. A non-pair is returned verbatim; an
// (unquote x) form evaluates x in the surrounding environment; an
// (unquote-splicing x) form is only legal as a list element and is
// rejected here; a nested (quasiquote x) is returned as a literal datum
// rather than processed recursively (spec §4.7 "Nested quasi-quotation
// is supported to one level as a data-preserving recursion").
func qq(ctx *Context) (Step, error) {
	form := ctx.Exp
	if !IsPair(form) {
		ctx.Val = form
		return ctx.Cont, nil
	}
	head, err := Car(form)
	if err != nil {
		return nil, err
	}
	if IsSymbol(head) {
		switch head.SymbolName() {
		case "quasiquote":
			ctx.Val = form
			return ctx.Cont, nil
		case "unquote":
			_, operand, err := unpack2List(form)
			if err != nil {
				return nil, err
			}
			ctx.Exp = operand
			return kLeval, nil
		case "unquote-splicing":
			return nil, newSyntaxError("cannot use unquote-splicing here")
		}
	}
	ctx.push(ctx.Cont)
	ctx.push(ctx.Env)
	ctx.push(sentinel)
	return qqSetup(ctx, form)
}

// qqSetup processes one element of a quasiquoted list, splicing in the
// result of an (unquote-splicing x) element or recursively walking any
// other element, then continues to the next element of form.
func qqSetup(ctx *Context, form *Datum) (Step, error) {
	elt, rest, err := carCdr(form)
	if err != nil {
		return nil, err
	}
	if !IsPair(rest) && !IsNil(rest) {
		return nil, newTypeError("expected list, got %s", Stringify(rest))
	}
	ctx.push(rest)
	ctx.push(ctx.Env)

	if IsPair(elt) {
		if eltHead, err := Car(elt); err == nil && IsSymbol(eltHead) && eltHead.SymbolName() == "unquote-splicing" {
			_, operand, err := unpack2List(elt)
			if err != nil {
				return nil, err
			}
			ctx.Exp = operand
			ctx.Cont = qqSpliced
			return kLeval, nil
		}
	}
	ctx.Exp = elt
	ctx.Cont = qqNext
	return qq, nil
}

func qqSpliced(ctx *Context) (Step, error) {
	env := ctx.pop().(*Environment)
	rest := ctx.pop().(*Datum)
	ctx.Env = env
	value := ctx.Val
	if IsNil(value) {
		if IsNil(rest) {
			return qqFinish, nil
		}
		return qqSetup(ctx, rest)
	}
	items, err := ListToSlice(value)
	if err != nil {
		return nil, newTypeError("expected list, got %s", Stringify(value))
	}
	for _, it := range items[:len(items)-1] {
		ctx.push(it)
	}
	ctx.Val = items[len(items)-1]
	ctx.push(rest)
	ctx.push(env)
	return qqNext, nil
}

func qqNext(ctx *Context) (Step, error) {
	env := ctx.pop().(*Environment)
	rest := ctx.pop().(*Datum)
	ctx.Env = env
	ctx.push(ctx.Val)
	if IsNil(rest) {
		return qqFinish, nil
	}
	return qqSetup(ctx, rest)
}

func qqFinish(ctx *Context) (Step, error) {
	result := Nil
	for {
		v := ctx.pop()
		if v == sentinel {
			break
		}
		result = Cons(v.(*Datum), result)
	}
	ctx.Env = ctx.pop().(*Environment)
	ctx.Cont = ctx.pop().(Step)
	ctx.Val = result
	return ctx.Cont, nil
}

// unpack2List requires form to be a proper two-element list and returns
// its elements, used by the unquote/unquote-splicing head dispatch
// above (which sees the raw (unquote x) form, not ctx.Argl).
func unpack2List(form *Datum) (*Datum, *Datum, error) {
	items, err := ListToSlice(form)
	if err != nil {
		return nil, nil, err
	}
	if len(items) != 2 {
		return nil, nil, newSyntaxError("expected two elements, got %d", len(items))
	}
	return items[0], items[1], nil
}
