package lisp

import (
	"math"
	"math/big"
)

// installFFI binds the one representative host-bridge primitive spec
// §1 calls for ("a representative few" FFI primitives are engine
// scope): ffi-math, bridging by name into Go's math package the same
// way lisp.py's module_ffi dispatches into Python's math module
// (SPEC_FULL.md "FFI module bridges").
func installFFI(ctx *Context) {
	ctx.Global.Define(ctx.Intern("ffi-math"), newFFIPrimitive("ffi-math", ffiMath))
}

// mathFuncs is the explicit name->func dispatch table standing in for
// Python's getattr(module, name); Go has no reflection-free analogue,
// so each bridged function is named once here.
var mathFuncs = map[string]func([]interface{}) (interface{}, error){
	"sqrt":  unaryMath(math.Sqrt),
	"sin":   unaryMath(math.Sin),
	"cos":   unaryMath(math.Cos),
	"tan":   unaryMath(math.Tan),
	"atan":  unaryMath(math.Atan),
	"log":   unaryMath(math.Log),
	"log10": unaryMath(math.Log10),
	"exp":   unaryMath(math.Exp),
	"floor": unaryMath(math.Floor),
	"ceil":  unaryMath(math.Ceil),
	"pow":   binaryMath(math.Pow),
	"atan2": binaryMath(math.Atan2),
	"hypot": binaryMath(math.Hypot),
}

func unaryMath(f func(float64) float64) func([]interface{}) (interface{}, error) {
	return func(args []interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, newSyntaxError("expected one arg")
		}
		x, err := toHostFloat(args[0])
		if err != nil {
			return nil, err
		}
		return f(x), nil
	}
}

func binaryMath(f func(x, y float64) float64) func([]interface{}) (interface{}, error) {
	return func(args []interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, newSyntaxError("expected two args")
		}
		x, err := toHostFloat(args[0])
		if err != nil {
			return nil, err
		}
		y, err := toHostFloat(args[1])
		if err != nil {
			return nil, err
		}
		return f(x, y), nil
	}
}

func toHostFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case *big.Int:
		f := new(big.Float).SetInt(x)
		r, _ := f.Float64()
		return r, nil
	default:
		if d, ok := v.(*Datum); ok {
			if f, ok := numericFloat(d); ok {
				return f, nil
			}
		}
		return 0, newTypeError("expected a number")
	}
}

// ffiMath is module_ffi specialized to the math table: the first
// argument names the function, the rest are its arguments.
func ffiMath(args []interface{}) (interface{}, error) {
	if len(args) < 1 {
		return nil, newTypeError("at least one arg required")
	}
	sym, ok := args[0].(*Datum)
	if !ok || !IsSymbol(sym) {
		return nil, newTypeError("expected symbol naming a math function")
	}
	fn, ok := mathFuncs[sym.SymbolName()]
	if !ok {
		return nil, newSyntaxError("unknown math function %s", sym.SymbolName())
	}
	return fn(args[1:])
}

// kFFI drives the host bridge (spec §4.6): ctx.Exp holds the FFI
// procedure datum, ctx.Argl its unconverted Lisp argument list. Unlike
// lcore.py's k_ffi/k_lisp_value_to_py_value chain, the conversions here
// are plain recursive Go functions rather than further trampoline
// steps: the argument lists they walk are bounded by what a caller
// physically wrote in source, not by unbounded Lisp-level recursion,
// so host-stack use here does not violate spec §4.2/§5's TCO guarantee.
func kFFI(ctx *Context) (Step, error) {
	procDatum := ctx.Exp
	proc := procDatum.Procedure()
	hostArgs, err := datumListToHost(ctx.Argl)
	if err != nil {
		return nil, err
	}
	result, err := proc.HostFunc(hostArgs)
	if err != nil {
		return nil, err
	}
	val, err := hostToDatum(result)
	if err != nil {
		return nil, err
	}
	ctx.Val = val
	return ctx.Cont, nil
}

// datumListToHost converts a proper Lisp list into a []interface{} of
// converted host values (spec §4.6 "pair -> ordered sequence").
func datumListToHost(d *Datum) ([]interface{}, error) {
	items, err := ListToSlice(d)
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, len(items))
	for i, it := range items {
		v, err := datumToHost(it)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// datumToHost converts one Lisp datum to its host representation (spec
// §4.6): Nil->nil, True->true, pair->recursively-converted slice,
// atoms (symbols, integers, floats, strings, procedures) pass through
// -- numbers and strings as their native Go values, symbols and
// procedures as the Datum itself, since Go has no opaque-handle
// equivalent cheaper than the pointer it already is.
func datumToHost(d *Datum) (interface{}, error) {
	switch d.Kind() {
	case KindNil:
		return nil, nil
	case KindTrue:
		return true, nil
	case KindPair:
		return datumListToHost(d)
	case KindInteger:
		i, _ := d.Integer()
		return i, nil
	case KindFloat:
		f, _ := d.Float()
		return f, nil
	case KindString:
		s, _ := d.RawString()
		return s, nil
	default:
		return d, nil
	}
}

// hostToDatum converts a host Go value back to a Lisp datum (spec
// §4.6): nil/false->Nil, true->True, empty sequence->Nil, non-empty
// sequence->proper list (built with the O(n) list builder).
func hostToDatum(v interface{}) (*Datum, error) {
	switch x := v.(type) {
	case nil:
		return Nil, nil
	case bool:
		if x {
			return True, nil
		}
		return Nil, nil
	case *Datum:
		return x, nil
	case int:
		return NewIntegerInt64(int64(x)), nil
	case int64:
		return NewIntegerInt64(x), nil
	case *big.Int:
		return NewInteger(x), nil
	case float64:
		return NewFloat(x), nil
	case string:
		return NewString(x), nil
	case []interface{}:
		if len(x) == 0 {
			return Nil, nil
		}
		items := make([]*Datum, len(x))
		for i, e := range x {
			d, err := hostToDatum(e)
			if err != nil {
				return nil, err
			}
			items[i] = d
		}
		return SliceToList(items), nil
	default:
		return nil, newTypeError("cannot convert host value to datum")
	}
}
