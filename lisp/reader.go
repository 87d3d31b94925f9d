package lisp

import (
	"bufio"
	"io"
	"math/big"
	"strconv"
	"strings"
)

// readerState names the five states of the reader FSM (spec §4.1).
type readerState uint8

const (
	stateSym readerState = iota
	stateComment
	stateString
	stateEsc
	stateComma
)

// quoteMark distinguishes a pending reader-quote wrapper from the
// sentinel that marks a list boundary on the quote stack (spec §4.1
// "Quote stack"), so a wrapper never leaks across an enclosing list.
type quoteMark struct {
	sym      *Datum // nil for the list-boundary sentinel
	sentinel bool
}

// quoteFrame is one cons cell of the reader's quote stack.
type quoteFrame struct {
	mark quoteMark
	next *quoteFrame
}

// parenFrame is one cons cell of the reader's bracket stack, recording
// the closer a `(` or `[` expects.
type parenFrame struct {
	closer byte
	next   *parenFrame
}

// listFrame is one cons cell of the reader's list-builder stack (spec
// §4.1 "List stack"): each currently open list gets its own
// append-efficient builder.
type listFrame struct {
	builder *listBuilder
	next    *listFrame
}

// Reader is the character-at-a-time state machine of spec §4.1: it
// consumes runes one at a time and delivers completed top-level datums
// to a sink callback, tracking balanced brackets, pending quote
// wrappers, and in-progress list builders across calls to Feed.
// Grounded on lcore.py's Parser class, ported to Go's rune-at-a-time
// idiom (bufio.Reader/io.RuneScanner) in place of Python's string
// slicing.
type Reader struct {
	ctx   *Context
	sink  func(*Datum)
	state readerState
	token strings.Builder

	parens *parenFrame
	quotes *quoteFrame
	lists  *listFrame
}

// NewReader constructs a Reader that interns symbols against ctx and
// delivers completed datums to sink.
func NewReader(ctx *Context, sink func(*Datum)) *Reader {
	return &Reader{ctx: ctx, sink: sink}
}

// Feed consumes every rune of text, updating the reader's state and
// delivering any datums completed along the way. Runes are consumed
// whole (not truncated to a byte) so multi-byte UTF-8 content inside
// strings and symbols survives intact (spec §6, "ASCII-or-UTF-8 text").
func (r *Reader) Feed(text string) error {
	for _, ch := range text {
		if err := r.feedRune(ch); err != nil {
			return err
		}
	}
	return nil
}

// FeedReader drains rd rune by rune, as Feed does for a string. Useful
// for streaming a *bufio.Reader (a file, stdin) directly without first
// materializing its contents.
func (r *Reader) FeedReader(rd io.RuneScanner) error {
	for {
		ch, _, err := rd.ReadRune()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := r.feedRune(ch); err != nil {
			return err
		}
	}
}

// End signals end of input: it flushes any pending token and requires
// the bracket and quote stacks to be empty (spec §4.1 "End-of-input").
func (r *Reader) End() error {
	if err := r.flushToken(); err != nil {
		return err
	}
	if r.state != stateSym && r.state != stateComment {
		return newEOFError("eof in the middle of a token")
	}
	if r.parens != nil {
		return newEOFError("eof expecting %c", r.parens.closer)
	}
	if r.quotes != nil {
		return newEOFError("unclosed quasiquote")
	}
	return nil
}

func (r *Reader) feedRune(ch rune) error {
	switch r.state {
	case stateSym:
		return r.doSym(ch)
	case stateComment:
		r.doComment(ch)
		return nil
	case stateString:
		return r.doString(ch)
	case stateEsc:
		return r.doEsc(ch)
	case stateComma:
		return r.doComma(ch)
	}
	return nil
}

const delimiters = "()[] \n\r\t;\"',`"

func isDelimiter(ch rune) bool {
	return ch < 128 && strings.IndexByte(delimiters, byte(ch)) >= 0
}

func (r *Reader) doSym(ch rune) error {
	if !isDelimiter(ch) {
		r.token.WriteRune(ch)
		return nil
	}
	switch {
	case ch == '(' || ch == '[':
		if err := r.flushToken(); err != nil {
			return err
		}
		closer := byte(')')
		if ch == '[' {
			closer = ']'
		}
		r.parens = &parenFrame{closer: closer, next: r.parens}
		r.quotes = &quoteFrame{mark: quoteMark{sentinel: true}, next: r.quotes}
		r.lists = &listFrame{builder: newListBuilder(), next: r.lists}
		return nil
	case ch == ')' || ch == ']':
		if err := r.flushToken(); err != nil {
			return err
		}
		if r.parens == nil {
			return newSyntaxError("too many %c", ch)
		}
		if r.parens.closer != byte(ch) {
			return newSyntaxError("unexpected %c", ch)
		}
		r.parens = r.parens.next
		r.quotes = r.quotes.next
		lb := r.lists.builder
		r.lists = r.lists.next
		r.deliver(lb.get())
		return nil
	case ch == ' ' || ch == '\n' || ch == '\r' || ch == '\t':
		return r.flushToken()
	case ch == ';':
		if err := r.flushToken(); err != nil {
			return err
		}
		r.state = stateComment
		return nil
	default:
		if r.token.Len() > 0 {
			return newSyntaxError("%q is not a delimiter here", ch)
		}
		switch ch {
		case '"':
			r.state = stateString
		case '\'':
			r.pushQuote(r.ctx.quote)
		case '`':
			r.pushQuote(r.ctx.quasiquote)
		default: // ','
			r.state = stateComma
		}
		return nil
	}
}

func (r *Reader) doComment(ch rune) {
	if ch == '\n' || ch == '\r' {
		r.state = stateSym
	}
}

var stringEscapes = map[rune]rune{
	'\\': '\\',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'"':  '"',
}

func (r *Reader) doString(ch rune) error {
	switch ch {
	case '"':
		r.deliver(NewString(r.token.String()))
		r.token.Reset()
		r.state = stateSym
	case '\\':
		r.state = stateEsc
	default:
		r.token.WriteRune(ch)
	}
	return nil
}

func (r *Reader) doEsc(ch rune) error {
	c, ok := stringEscapes[ch]
	if !ok {
		return newSyntaxError("bad escape %q", ch)
	}
	r.token.WriteRune(c)
	r.state = stateString
	return nil
}

func (r *Reader) doComma(ch rune) error {
	if ch == '@' {
		r.pushQuote(r.ctx.unquoteSplicing)
		r.state = stateSym
		return nil
	}
	r.pushQuote(r.ctx.unquote)
	r.state = stateSym
	// Re-read ch through the ordinary state: a comma not followed by
	// '@' means the next character was never consumed by the comma
	// handling itself (spec §4.1 step 5, "the input cursor is rewound
	// by one").
	return r.doSym(ch)
}

func (r *Reader) pushQuote(sym *Datum) {
	r.quotes = &quoteFrame{mark: quoteMark{sym: sym}, next: r.quotes}
}

func (r *Reader) flushToken() error {
	if r.token.Len() == 0 {
		return nil
	}
	t := r.token.String()
	r.token.Reset()
	r.deliver(classifyToken(r.ctx, t))
	return nil
}

// parseInteger implements spec §4.1 point 6's auto-base detection: a
// "0x"/"0o"/"0b" prefix (after an optional sign) selects base 16, 8, or
// 2; otherwise the token is parsed as base 10. Any parse failure (a
// float, or a bare symbol like "-" or "+") reports ok=false so the
// caller falls through to the next classification.
func parseInteger(t string) (*big.Int, bool) {
	s := t
	neg := false
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	base := 10
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		base, s = 16, s[2:]
	case strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0O"):
		base, s = 8, s[2:]
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		base, s = 2, s[2:]
	}
	if s == "" {
		return nil, false
	}
	i, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, false
	}
	if neg {
		i.Neg(i)
	}
	return i, true
}

// classifyToken implements spec §4.1 step 6: a token starting with one
// of "0-9 - . + a-f" is tried as an integer (with auto-base detection),
// then a float, falling back to a symbol; any other token is a symbol
// outright.
func classifyToken(ctx *Context, t string) *Datum {
	if len(t) > 0 && strings.IndexByte("0123456789-.+abcdefABCDEF", t[0]) >= 0 {
		if i, ok := parseInteger(t); ok {
			return NewInteger(i)
		}
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return NewFloat(f)
		}
	}
	return ctx.Intern(t)
}

// deliver applies any pending quote wrappers (draining the quote stack
// up to the nearest list sentinel) and hands the datum to the
// innermost open list builder, or to the sink if no list is open (spec
// §4.1 step 7).
func (r *Reader) deliver(x *Datum) {
	for r.quotes != nil && !r.quotes.mark.sentinel {
		x = Cons(r.quotes.mark.sym, Cons(x, Nil))
		r.quotes = r.quotes.next
	}
	if r.lists == nil {
		r.sink(x)
		return
	}
	r.lists.builder.append(x)
}

// Read parses every top-level form in text and calls sink once per
// form, in source order (spec §6 "read(ctx, text, sink)"). Text must
// contain no unterminated token, string, or bracket: Read is the
// whole-buffer entry point opEval and Execute use, as distinct from a
// Reader fed incrementally by a REPL driving Feed itself.
func (ctx *Context) Read(text string, sink func(*Datum)) error {
	rd := NewReader(ctx, sink)
	if err := rd.Feed(text); err != nil {
		return err
	}
	return rd.End()
}

// Execute reads every top-level form in text and evaluates each in
// turn against the global environment, returning the list of values
// produced, one per form in source order (spec §6 "execute(ctx, text)").
// An empty or all-comment text yields an empty slice.
func (ctx *Context) Execute(text string) ([]*Datum, error) {
	var forms []*Datum
	if err := ctx.Read(text, func(d *Datum) { forms = append(forms, d) }); err != nil {
		return nil, err
	}
	results := make([]*Datum, 0, len(forms))
	for _, form := range forms {
		v, err := ctx.Evaluate(form, nil)
		if err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, nil
}

// ExecuteLast is Execute's single-value convenience: it returns the
// value of the last top-level form (Nil if text has none), the shape a
// script-loading caller that only cares about the final result wants.
func (ctx *Context) ExecuteLast(text string) (*Datum, error) {
	results, err := ctx.Execute(text)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return Nil, nil
	}
	return results[len(results)-1], nil
}

// ReadFrom streams a full io.Reader (a file, stdin) through the same
// FSM as Read, for callers that want to avoid reading the whole
// source into memory first.
func (ctx *Context) ReadFrom(src io.Reader, sink func(*Datum)) error {
	rd := NewReader(ctx, sink)
	br := bufio.NewReader(src)
	if err := rd.FeedReader(br); err != nil {
		return err
	}
	return rd.End()
}
