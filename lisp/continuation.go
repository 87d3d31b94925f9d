package lisp

// installContinuationPrimitive binds call/cc (and its long alias) into
// the global environment. The capture/invoke machinery itself lives in
// createContinuation (procedure.go); this is the primitive surface spec
// §4.4 describes, including the zero-argument sugar.
func installContinuationPrimitive(ctx *Context) {
	def := func(name string) {
		ctx.Global.Define(ctx.Intern(name), newPrimitive(name, false, false, opCallCC))
	}
	def("call/cc")
	def("call-with-current-continuation")
}

// opCallCC implements call/cc (spec §4.4). Called with zero arguments
// it returns the reified continuation directly -- the zero-argument
// shortcut from lisp.py's op_callcc, letting `(define c (call/cc))` skip
// constructing and immediately applying an identity lambda. Called with
// one procedure argument, it invokes that procedure with the
// continuation as its sole argument.
func opCallCC(ctx *Context) (Step, error) {
	if IsNil(ctx.Argl) {
		ctx.Val = createContinuation(ctx)
		return ctx.Cont, nil
	}
	proc, err := ctx.Unpack1()
	if err != nil {
		return nil, err
	}
	if !IsProcedure(proc) {
		return nil, newSyntaxError("expected callable, got %s", Stringify(proc))
	}
	ctx.Argl = Cons(createContinuation(ctx), Nil)
	return proc.Procedure().Call, nil
}
