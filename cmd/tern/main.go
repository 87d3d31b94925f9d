// Tern is a REPL and script runner for the tern Lisp, the trampolined
// evaluation core in package lisp. It loads any files named on the
// command line, then reads expressions from standard input until EOF,
// printing the value of each.
package main // import "github.com/tern-lang/tern/cmd/tern"

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/tern-lang/tern/lisp"
)

var (
	printSExpr = flag.Bool("sexpr", false, "always print S-expressions")
	doPrompt   = flag.Bool("doprompt", true, "show interactive prompt")
	prompt     = flag.String("prompt", "> ", "interactive prompt")
	argStack   = flag.Int("depth", 0, "maximum value-stack depth; 0 means no limit")
	verbose    = flag.Bool("v", false, "trace every trampoline step to stderr")
)

var loading bool

func main() {
	flag.Parse()

	opts := []lisp.Option{lisp.WithArgEvalLimit(*argStack)}
	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer logger.Sync()
		opts = append(opts, lisp.WithLogger(logger))
	}
	ctx := lisp.NewContext(opts...)

	loading = true
	for _, file := range flag.Args() {
		load(ctx, file)
	}
	loading = false

	repl(ctx, bufio.NewReader(os.Stdin))
}

// load reads and executes the named source file in its entirety.
func load(ctx *lisp.Context, file string) {
	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if _, err := ctx.ExecuteLast(string(data)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// repl reads one top-level form at a time from in and prints its
// value, recovering at each top-level error the way the teacher's
// handler recovers at each panic: a single malformed or failing form
// does not end the session, only a true EOF does.
func repl(ctx *lisp.Context, in *bufio.Reader) {
	for {
		if *doPrompt {
			fmt.Print(*prompt)
		}
		form, ok := readForm(ctx, in)
		if !ok {
			if !loading {
				os.Exit(0)
			}
			return
		}
		val, err := ctx.Evaluate(form, nil)
		if err != nil {
			reportError(err)
			continue
		}
		printValue(ctx, val)
	}
}

// readForm reads one top-level form, returning ok=false on EOF. A
// malformed form reports its error and resets to try again, the same
// recover-and-continue behavior as the teacher's panic handler.
func readForm(ctx *lisp.Context, in *bufio.Reader) (*lisp.Datum, bool) {
restart:
	var form *lisp.Datum
	got := false
	r := lisp.NewReader(ctx, func(d *lisp.Datum) {
		if !got {
			form = d
			got = true
		}
	})
	for !got {
		ch, _, err := in.ReadRune()
		if err != nil {
			return nil, false
		}
		if err := r.Feed(string(ch)); err != nil {
			reportError(err)
			goto restart
		}
	}
	return form, true
}

func printValue(ctx *lisp.Context, val *lisp.Datum) {
	s, err := ctx.StringifyDeep(val)
	if err != nil {
		reportError(err)
		return
	}
	fmt.Println(s)
}

func reportError(err error) {
	fmt.Fprintln(os.Stderr, err)
}
