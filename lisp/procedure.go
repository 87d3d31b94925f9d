package lisp

// Procedure is anything callable from Lisp: a host primitive, a closure
// built by lambda/special, or a reified continuation. Call is itself a
// Step -- invoking a procedure is just handing the trampoline driver its
// Call value as the next Step, so applying a procedure costs no host
// stack frame regardless of whether the call is in tail position.
type Procedure struct {
	Name string

	// Special marks a fexpr: its operands are passed to Call
	// unevaluated, in ctx.Argl, and it is invoked in the caller's
	// environment rather than its own (spec §4.3, §4.5 "special").
	Special bool

	// FFI marks a procedure that receives its arguments (and returns
	// its result) converted to/from host Go values rather than Datums
	// (spec §4.6).
	FFI bool

	// IsContinuation marks a reified continuation (spec §4.4); type
	// and the stringifier both special-case it.
	IsContinuation bool

	// LambdaParams/LambdaBody are set for closures built by lambda or
	// special, and nil for primitives and continuations; the
	// stringifier and type use their presence to print "(lambda ...)"
	// and report the "lambda" type tag (mirrors lcore.py's lambda_
	// attribute).
	LambdaParams *Datum
	LambdaBody   *Datum

	Call Step

	// HostFunc is set instead of Call for FFI-flagged procedures: it
	// receives already-converted host Go values and returns a host Go
	// value for the reverse conversion (spec §4.6). kFFI drives this
	// instead of the trampoline's usual Call dispatch.
	HostFunc func([]interface{}) (interface{}, error)
}

// newPrimitive registers a host-implemented procedure.
func newPrimitive(name string, special, ffiFlag bool, call Step) *Datum {
	return NewProcedure(&Procedure{Name: name, Special: special, FFI: ffiFlag, Call: call})
}

// newFFIPrimitive registers a host-bridged procedure (spec §4.6): its
// Lisp-side argument list is converted to host values before hostFunc
// runs, and its return value is converted back.
func newFFIPrimitive(name string, hostFunc func([]interface{}) (interface{}, error)) *Datum {
	return NewProcedure(&Procedure{Name: name, FFI: true, HostFunc: hostFunc})
}

// createLambda builds a closure over params/body/env (spec §4.3). When
// special is true the resulting procedure is a fexpr: its Call ignores
// its own defining Env as the new frame's parent and instead parents on
// the caller's environment, and its arguments arrive unevaluated.
// Grounded on lcore.py's create_lambda.
func createLambda(params, body *Datum, env *Environment, special bool) *Datum {
	proc := &Procedure{Special: special, LambdaParams: params, LambdaBody: body, Name: "lambda"}
	proc.Call = func(ctx *Context) (Step, error) {
		parent := env
		if proc.Special {
			parent = ctx.Env
		}
		newEnv, err := bindParams(parent, params, ctx.Argl)
		if err != nil {
			return nil, err
		}
		ctx.Env = newEnv
		ctx.Exp = body
		return kLeval, nil
	}
	return NewProcedure(proc)
}

// createContinuation captures the current register file and stack as a
// one-argument procedure that, when invoked, discards the caller's
// context and resumes exactly where call/cc captured it (spec §4.4).
// Grounded on lcore.py's create_continuation.
func createContinuation(ctx *Context) *Datum {
	snap := ctx.save()
	proc := &Procedure{Name: "continuation", IsContinuation: true}
	proc.Call = func(ctx *Context) (Step, error) {
		x, err := ctx.Unpack1()
		if err != nil {
			return nil, err
		}
		ctx.restore(snap)
		ctx.Val = x
		return ctx.Cont, nil
	}
	return NewProcedure(proc)
}
