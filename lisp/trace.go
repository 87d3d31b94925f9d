package lisp

import "go.uber.org/zap"

// traceStep emits one Debug record per trampoline step when a logger is
// configured (SPEC_FULL.md "Logging"). It logs register kinds and sizes,
// not full printed values, since a step-by-step dump of large structures
// would make tracing itself quadratic in the size of the data being
// evaluated.
func (ctx *Context) traceStep() {
	argc, _ := ListLength(ctx.Argl)
	ctx.logger.Debug("step",
		zap.String("exp_kind", kindName(ctx.Exp.Kind())),
		zap.Int("stack_size", ctx.stackSize),
		zap.Int("argl_len", argc),
	)
}

func kindName(k Kind) string {
	switch k {
	case KindNil:
		return "nil"
	case KindTrue:
		return "true"
	case KindSymbol:
		return "symbol"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindPair:
		return "pair"
	case KindProcedure:
		return "procedure"
	default:
		return "unknown"
	}
}
