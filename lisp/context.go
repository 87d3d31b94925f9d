package lisp

import (
	"io"
	"os"

	"go.uber.org/zap"
)

// Step is one state of the trampolined evaluator: given the current
// Context registers, it returns the next Step to run (or nil to signal
// completion) and an error. The driver loop in run calls these as plain
// function values -- never as nested Go calls -- so an arbitrarily long
// chain of tail calls or a captured continuation costs O(1) host stack,
// matching spec §4.2/§5. This is the Go rendering of lcore.py's
// trampoline()/land() pair.
type Step func(ctx *Context) (Step, error)

// stackFrame is one cons cell of the persistent (never-mutated) value
// stack ctx.S. Because nodes are never mutated after construction,
// capturing ctx.S for a continuation and later resuming it is a pointer
// copy: pushes made after the snapshot don't affect it (spec §4.4,
// "O(1) capture").
type stackFrame struct {
	val  interface{}
	next *stackFrame
}

// snapshot is the saved register file a reified continuation restores
// on invocation (spec §4.4).
type snapshot struct {
	argl *Datum
	cont Step
	env  *Environment
	exp  *Datum
	val  *Datum
	s    *stackFrame

	stackSize int
}

// Context holds the evaluator's six registers, the persistent value
// stack, the symbol table, the global environment, and the ambient
// configuration (logging, stack-depth guard) described in SPEC_FULL.md.
// It is the Go analogue of lcore.py's Context class and of the teacher's
// lisp1_5.Context, generalized to the trampolined register set spec §3
// requires.
type Context struct {
	Exp  *Datum
	Env  *Environment
	Cont Step
	Val  *Datum
	Argl *Datum
	S    *stackFrame

	symbols *symbolTable
	Global  *Environment

	quote           *Datum
	quasiquote      *Datum
	unquote         *Datum
	unquoteSplicing *Datum
	ampersand       *Datum

	logger        *zap.Logger
	argStackLimit int
	stackSize     int
	stdout        io.Writer
}

// NewContext builds a Context with a fresh symbol table and global
// environment, applies opts, and installs the special-form and
// primitive bindings (spec §6 "make_context").
func NewContext(opts ...Option) *Context {
	ctx := &Context{symbols: newSymbolTable(), Exp: Nil, Val: Nil, Argl: Nil, stdout: os.Stdout}
	ctx.quote = ctx.Intern("quote")
	ctx.quasiquote = ctx.Intern("quasiquote")
	ctx.unquote = ctx.Intern("unquote")
	ctx.unquoteSplicing = ctx.Intern("unquote-splicing")
	ctx.ampersand = ctx.Intern("&")
	ctx.Global = NewEnvironment(nil)
	ctx.Global.Define(ctx.Intern("#t"), True)
	for _, opt := range opts {
		opt(ctx)
	}
	installSpecialForms(ctx)
	installPrimitives(ctx)
	installContinuationPrimitive(ctx)
	installFFI(ctx)
	return ctx
}

// Intern returns the canonical symbol Datum for name.
func (ctx *Context) Intern(name string) *Datum { return ctx.symbols.Intern(name) }

func (ctx *Context) push(v interface{}) {
	ctx.S = &stackFrame{val: v, next: ctx.S}
	ctx.stackSize++
}

func (ctx *Context) pop() interface{} {
	v := ctx.S.val
	ctx.S = ctx.S.next
	ctx.stackSize--
	return v
}

// peek reads the top of the value stack without popping it, for steps
// that need to restore a register from a saved slot that other frames
// above it still depend on (e.g. opCond's per-clause env restore).
func (ctx *Context) peek() interface{} {
	return ctx.S.val
}

func (ctx *Context) save() *snapshot {
	return &snapshot{argl: ctx.Argl, cont: ctx.Cont, env: ctx.Env, exp: ctx.Exp, val: ctx.Val, s: ctx.S, stackSize: ctx.stackSize}
}

func (ctx *Context) restore(s *snapshot) {
	ctx.Argl, ctx.Cont, ctx.Env, ctx.Exp, ctx.Val, ctx.S = s.argl, s.cont, s.env, s.exp, s.val, s.s
	ctx.stackSize = s.stackSize
}

// land is the terminal continuation: reaching it means the trampoline
// is done and ctx.Val holds the result.
func land(ctx *Context) (Step, error) { return nil, nil }

// run drives the trampoline from start until a Step returns nil,
// returning ctx.Val, or the first error any Step produces.
func (ctx *Context) run(start Step) (*Datum, error) {
	step := start
	for step != nil {
		if ctx.argStackLimit > 0 && ctx.stackSize > ctx.argStackLimit {
			return nil, newSyntaxError("value stack depth exceeded %d", ctx.argStackLimit)
		}
		if ctx.logger != nil {
			ctx.traceStep()
		}
		var err error
		step, err = step(ctx)
		if err != nil {
			return nil, err
		}
	}
	return ctx.Val, nil
}

// Evaluate is the evaluate(expr, env) operation of spec §6: it drives
// the trampoline from expr in env (or the global environment if env is
// nil) to a value.
func (ctx *Context) Evaluate(expr *Datum, env *Environment) (*Datum, error) {
	if env == nil {
		env = ctx.Global
	}
	ctx.Exp, ctx.Env, ctx.Cont = expr, env, land
	return ctx.run(kLeval)
}

// unpackN requires ctx.Argl to be a proper list of exactly n elements,
// else a SyntaxError (wrong arity). Grounded on lcore.py's
// unpack1/unpack2/unpack3 helpers (SPEC_FULL.md "Arity-checked
// primitives").
func (ctx *Context) unpackN(n int) ([]*Datum, error) {
	items, err := ListToSlice(ctx.Argl)
	if err != nil {
		return nil, err
	}
	if len(items) != n {
		return nil, newSyntaxError("expected %d argument(s), got %d", n, len(items))
	}
	return items, nil
}

// Unpack1 requires exactly one argument.
func (ctx *Context) Unpack1() (*Datum, error) {
	items, err := ctx.unpackN(1)
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

// Unpack2 requires exactly two arguments.
func (ctx *Context) Unpack2() (*Datum, *Datum, error) {
	items, err := ctx.unpackN(2)
	if err != nil {
		return nil, nil, err
	}
	return items[0], items[1], nil
}

// Unpack3 requires exactly three arguments.
func (ctx *Context) Unpack3() (*Datum, *Datum, *Datum, error) {
	items, err := ctx.unpackN(3)
	if err != nil {
		return nil, nil, nil, err
	}
	return items[0], items[1], items[2], nil
}

// UnpackAtLeast requires at least min arguments and returns them all.
func (ctx *Context) UnpackAtLeast(min int) ([]*Datum, error) {
	items, err := ListToSlice(ctx.Argl)
	if err != nil {
		return nil, err
	}
	if len(items) < min {
		return nil, newSyntaxError("expected at least %d argument(s), got %d", min, len(items))
	}
	return items, nil
}
