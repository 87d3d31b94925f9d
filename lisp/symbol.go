package lisp

// Symbol is an interned atom. Two symbols read (or interned) from the
// same spelling are the same *Symbol, so eq? on symbols is pointer
// comparison (spec §3 "Symbol identity").
type Symbol struct {
	name  string
	datum *Datum
}

// Name returns the symbol's spelling.
func (s *Symbol) Name() string { return s.name }

// symbolTable is the process-wide (per-Context) intern map. Grounded on
// lcore.py's create_symbol_table: a single dict from spelling to Symbol,
// consulted by the reader and by every special form that needs to
// compare or bind identifiers.
type symbolTable struct {
	table map[string]*Symbol
}

func newSymbolTable() *symbolTable {
	return &symbolTable{table: make(map[string]*Symbol)}
}

// Intern returns the canonical Datum for name, creating it on first use.
func (t *symbolTable) Intern(name string) *Datum {
	if sym, ok := t.table[name]; ok {
		return sym.datum
	}
	sym := &Symbol{name: name}
	d := &Datum{kind: KindSymbol, sym: sym}
	sym.datum = d
	t.table[name] = d.sym
	return d
}
