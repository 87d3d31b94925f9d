package lisp

import (
	"fmt"

	"github.com/pkg/errors"
)

// The engine distinguishes the five error kinds spec §7 names. Each is a
// distinct Go type so callers (and trap, §4.5) can tell them apart with
// errors.As; every constructor wraps the underlying message with
// errors.WithStack so a top-level handler can print a cause chain, which
// the teacher's bare string Error type cannot.

// SyntaxError reports malformed source: an unmatched paren, a bad dotted
// pair, an ill-formed special form.
type SyntaxError struct{ msg string }

func (e *SyntaxError) Error() string { return "SyntaxError: " + e.msg }

// TypeError reports an operation applied to a datum of the wrong kind.
type TypeError struct{ msg string }

func (e *TypeError) Error() string { return "TypeError: " + e.msg }

// NameError reports a reference to, or set! of, an unbound symbol.
type NameError struct{ msg string }

func (e *NameError) Error() string { return "NameError: " + e.msg }

// UserError is raised by the (error ...) primitive.
type UserError struct{ msg string }

func (e *UserError) Error() string { return "Error: " + e.msg }

// EOFError signals that the reader ran out of input mid-expression. It
// is not itself a malformed-source error: a caller feeding text
// incrementally (a REPL) treats it as "need more input", matching the
// teacher's EOF sentinel type.
type EOFError struct{ msg string }

func (e *EOFError) Error() string { return "EOF: " + e.msg }

// ExitError unwinds the trampoline to request process exit, carrying an
// optional value for the (exit ...) primitive's argument.
type ExitError struct {
	Value   *Datum
	HasCode bool
	Code    int
}

func (e *ExitError) Error() string { return "exit requested" }

func newSyntaxError(format string, args ...interface{}) error {
	return errors.WithStack(&SyntaxError{msg: fmt.Sprintf(format, args...)})
}

func newTypeError(format string, args ...interface{}) error {
	return errors.WithStack(&TypeError{msg: fmt.Sprintf(format, args...)})
}

func newNameError(format string, args ...interface{}) error {
	return errors.WithStack(&NameError{msg: fmt.Sprintf(format, args...)})
}

func newUserError(format string, args ...interface{}) error {
	return errors.WithStack(&UserError{msg: fmt.Sprintf(format, args...)})
}

func newEOFError(format string, args ...interface{}) error {
	return errors.WithStack(&EOFError{msg: fmt.Sprintf(format, args...)})
}

// errorKindAndMessage reifies a Go error into the (kind . message) shape
// trap (spec §4.5) hands back to Lisp code: a kind symbol name and a
// plain message string, independent of any pkg/errors stack frames.
func errorKindAndMessage(err error) (kind, msg string) {
	var se *SyntaxError
	var te *TypeError
	var ne *NameError
	var ue *UserError
	var ee *EOFError
	switch {
	case errors.As(err, &se):
		return "SyntaxError", se.msg
	case errors.As(err, &te):
		return "TypeError", te.msg
	case errors.As(err, &ne):
		return "NameError", ne.msg
	case errors.As(err, &ue):
		return "Error", ue.msg
	case errors.As(err, &ee):
		return "EOF", ee.msg
	default:
		return "Error", err.Error()
	}
}
