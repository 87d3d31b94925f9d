package lisp

import (
	"io"

	"go.uber.org/zap"
)

// Option configures a Context at construction time. This is the
// functional-options rendering of the teacher's package-level flag
// variables (-sexpr, -doprompt, -prompt, -depth in main.go): a value
// that is set once per process, but here threaded explicitly through
// NewContext instead of read from a global.
type Option func(*Context)

// WithLogger turns on per-step trampoline tracing (SPEC_FULL.md
// "Logging"). A nil logger (the default) disables tracing entirely and
// costs nothing per step.
func WithLogger(logger *zap.Logger) Option {
	return func(ctx *Context) { ctx.logger = logger }
}

// WithArgEvalLimit bounds the depth of the persistent value stack ctx.S,
// guarding heap growth from a runaway non-tail computation. The
// teacher's -depth flag bounds host call-stack recursion directly;
// tern's trampoline never recurses through the host stack, so the
// equivalent resource to bound is the heap-allocated value stack. Zero
// (the default) means unlimited.
func WithArgEvalLimit(limit int) Option {
	return func(ctx *Context) { ctx.argStackLimit = limit }
}

// WithStdout redirects the print primitive's output, the idiomatic Go
// analogue of the teacher binding its single global *os.Stdout: tests
// and embedders that need to capture output pass a bytes.Buffer here
// instead of monkeypatching a package-level writer.
func WithStdout(w io.Writer) Option {
	return func(ctx *Context) { ctx.stdout = w }
}
