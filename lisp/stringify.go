package lisp

import (
	"strconv"
	"strings"
)

// Stringify renders any datum back to text (spec §4.8). It is a plain
// recursive renderer, not a trampoline step: the evaluator's own
// stringification (the obj>string and print primitives) instead drives
// kStringify below so that a long list does not consume host stack, but
// Stringify itself is used from error messages and tests where the
// input is known to be small and acyclic.
func Stringify(d *Datum) string {
	switch d.kind {
	case KindNil:
		return "()"
	case KindTrue:
		return "#t"
	case KindSymbol:
		return d.sym.name
	case KindInteger:
		return d.i.String()
	case KindFloat:
		return strconv.FormatFloat(d.f, 'g', -1, 64)
	case KindString:
		return d.s
	case KindPair:
		return stringifyPair(d)
	case KindProcedure:
		return stringifyProcedure(d.proc)
	default:
		return "<opaque>"
	}
}

func stringifyPair(d *Datum) string {
	var b strings.Builder
	b.WriteByte('(')
	first := true
	for !IsNil(d) {
		if !IsPair(d) {
			// Dotted tail: list-consuming operations reject this
			// elsewhere, but the renderer must still terminate.
			if !first {
				b.WriteByte(' ')
			}
			b.WriteString(Stringify(d))
			break
		}
		if !first {
			b.WriteByte(' ')
		}
		b.WriteString(Stringify(d.pair.head))
		first = false
		d = d.pair.tail
	}
	b.WriteByte(')')
	return b.String()
}

func stringifyProcedure(p *Procedure) string {
	if p.IsContinuation {
		return "<continuation>"
	}
	if p.LambdaBody != nil || p.LambdaParams != nil {
		return "(lambda " + Stringify(p.LambdaParams) + " " + Stringify(p.LambdaBody) + ")"
	}
	return "<primitive>"
}

// kStringify is the trampolined counterpart of Stringify (spec §4.8),
// used by print/obj>string/exit so that stringifying a very long list
// costs heap, not host stack. It stashes host strings through ctx.Val
// by wrapping them as string Datums between steps and unwraps them at
// the call sites (StringifyDeep, kOpPrint). Grounded on lcore.py's
// k_stringify family. Unlike Stringify, it does not render a dotted
// tail: a pair whose tail is neither a pair nor Nil is an error here.
func kStringify(ctx *Context) (Step, error) {
	x := ctx.Exp
	if IsPair(x) {
		ctx.push(ctx.Cont)
		ctx.push(sentinel)
		return kStringifySetup(ctx, x)
	}
	if IsProcedure(x) && (x.proc.LambdaBody != nil || x.proc.LambdaParams != nil) {
		return kStringifyLambda(ctx)
	}
	ctx.Val = NewString(Stringify(x))
	return ctx.Cont, nil
}

func kStringifySetup(ctx *Context, items *Datum) (Step, error) {
	head, tail, err := carCdr(items)
	if err != nil {
		return nil, newSyntaxError("expected list, got %s", Stringify(items))
	}
	ctx.Exp = head
	if IsNil(tail) {
		ctx.Cont = kStringifyLast
	} else {
		ctx.push(tail)
		ctx.Cont = kStringifyNext
	}
	return kStringify, nil
}

func kStringifyNext(ctx *Context) (Step, error) {
	items := ctx.pop().(*Datum)
	s, _ := ctx.Val.RawString()
	ctx.push(s)
	return kStringifySetup(ctx, items)
}

func kStringifyLast(ctx *Context) (Step, error) {
	last, _ := ctx.Val.RawString()
	parts := []string{last}
	for {
		v := ctx.pop()
		if v == sentinel {
			break
		}
		parts = append([]string{v.(string)}, parts...)
	}
	result := "(" + strings.Join(parts, " ") + ")"
	cont := ctx.pop().(Step)
	ctx.Val = NewString(result)
	return cont, nil
}

func kStringifyLambda(ctx *Context) (Step, error) {
	proc := ctx.Exp.Procedure()
	ctx.push(ctx.Cont)
	ctx.push(proc.LambdaBody)
	ctx.Exp = proc.LambdaParams
	ctx.Cont = kStringifyLambdaParams
	return kStringify, nil
}

func kStringifyLambdaParams(ctx *Context) (Step, error) {
	body := ctx.pop().(*Datum)
	paramStr, _ := ctx.Val.RawString()
	ctx.Exp = body
	ctx.push(paramStr)
	ctx.Cont = kStringifyLambdaBody
	return kStringify, nil
}

func kStringifyLambdaBody(ctx *Context) (Step, error) {
	paramStr := ctx.pop().(string)
	bodyStr, _ := ctx.Val.RawString()
	result := "(lambda " + paramStr + " " + bodyStr + ")"
	cont := ctx.pop().(Step)
	ctx.Val = NewString(result)
	return cont, nil
}

// StringifyDeep drives kStringify to completion and unwraps the final
// host string (spec §6 "stringify" entry point).
func (ctx *Context) StringifyDeep(d *Datum) (string, error) {
	ctx.Exp, ctx.Cont = d, land
	val, err := ctx.run(kStringify)
	if err != nil {
		return "", err
	}
	s, _ := val.RawString()
	return s, nil
}
