// Package symtab implements the mmn14 symbol table (component E of
// spec.md §2): an insertion-ordered record of every label declared,
// externed, or entered in a source file, together with the
// redefinition/upgrade lifecycle spec.md §3 and §4.3 require.
//
// Output file order depends on insertion order (spec.md §9), so the
// table is a map for O(1) lookup plus a parallel ordered slice of
// names, the Go analogue of the original's singly linked symbol list.
package symtab

import (
	"errors"
	"fmt"
)

// ErrRedundant wraps a declaration error that is only a warning: the
// symbol is already in the state being declared, so the declaration
// has no effect (spec.md §4.3).
var ErrRedundant = errors.New("redundant declaration")

// Kind classifies a symbol's role. A symbol can start as Code or Data
// and later be upgraded to EntryCode/EntryData once an ".entry"
// declaration names it (spec.md §4.3).
type Kind int

const (
	Code Kind = iota
	Data
	Extern
	Entry // declared via .entry before its defining line has been seen
	EntryCode
	EntryData
)

func (k Kind) String() string {
	switch k {
	case Code:
		return "code"
	case Data:
		return "data"
	case Extern:
		return "external"
	case Entry:
		return "entry"
	case EntryCode:
		return "entry+code"
	case EntryData:
		return "entry+data"
	default:
		return "unknown"
	}
}

// IsEntry reports whether k carries entry status, in any combination,
// including a bare Entry still awaiting its defining line. Output code
// uses IsResolvedEntry instead.
func (k Kind) IsEntry() bool {
	return k == Entry || k == EntryCode || k == EntryData
}

// IsResolvedEntry reports whether k is an entry symbol that was also
// defined in this file (EntryCode/EntryData). A bare Entry was declared
// via .entry but never defined, and spec.md excludes it from the
// entries count and the ".ent" file.
func (k Kind) IsResolvedEntry() bool {
	return k == EntryCode || k == EntryData
}

// Symbol is one symbol table row.
type Symbol struct {
	Name         string
	Kind         Kind
	Address      int
	DeclaredLine int
}

// Table is the ordered symbol table for one source file.
type Table struct {
	byName map[string]*Symbol
	order  []string
}

// New returns an empty table.
func New() *Table {
	return &Table{byName: make(map[string]*Symbol)}
}

// Lookup returns the symbol named name, or nil if undeclared.
func (t *Table) Lookup(name string) *Symbol {
	return t.byName[name]
}

// All returns every symbol in insertion order.
func (t *Table) All() []*Symbol {
	out := make([]*Symbol, 0, len(t.order))
	for _, n := range t.order {
		out = append(out, t.byName[n])
	}
	return out
}

func (t *Table) insert(s *Symbol) {
	t.byName[s.Name] = s
	t.order = append(t.order, s.Name)
}

// DefineCode records a label attached to an instruction line at
// address addr. It is an error to redefine an already-declared
// ordinary (non-.entry-forward) symbol.
func (t *Table) DefineCode(name string, addr, line int) error {
	return t.define(name, Code, EntryCode, addr, line)
}

// DefineData records a label attached to a .data/.string line at addr.
func (t *Table) DefineData(name string, addr, line int) error {
	return t.define(name, Data, EntryData, addr, line)
}

func (t *Table) define(name string, plainKind, entryKind Kind, addr, line int) error {
	existing := t.byName[name]
	if existing == nil {
		t.insert(&Symbol{Name: name, Kind: plainKind, Address: addr, DeclaredLine: line})
		return nil
	}
	switch existing.Kind {
	case Entry:
		// An .entry declaration for this name arrived before its
		// defining line; now that the definition has been seen,
		// upgrade in place and fill in the address.
		existing.Kind = entryKind
		existing.Address = addr
		return nil
	case Extern:
		return fmt.Errorf("symbol %q is already declared external", name)
	default:
		return fmt.Errorf("symbol %q is already defined at line %d", name, existing.DeclaredLine)
	}
}

// DefineExtern records an ".extern" declaration. A symbol may not be
// both extern and locally defined.
func (t *Table) DefineExtern(name string, line int) error {
	existing := t.byName[name]
	if existing == nil {
		t.insert(&Symbol{Name: name, Kind: Extern, DeclaredLine: line})
		return nil
	}
	if existing.Kind == Extern {
		return fmt.Errorf("symbol %q is already declared external: %w", name, ErrRedundant)
	}
	return fmt.Errorf("symbol %q is already defined locally, cannot be external", name)
}

// DeclareEntry records an ".entry" declaration. If the symbol is
// already defined (Code/Data), it is upgraded in place to the
// corresponding Entry* kind. Otherwise a placeholder Entry row is
// inserted, to be upgraded later by DefineCode/DefineData when the
// symbol's defining line is reached.
func (t *Table) DeclareEntry(name string, line int) error {
	existing := t.byName[name]
	if existing == nil {
		t.insert(&Symbol{Name: name, Kind: Entry, DeclaredLine: line})
		return nil
	}
	switch existing.Kind {
	case Code:
		existing.Kind = EntryCode
	case Data:
		existing.Kind = EntryData
	case Entry, EntryCode, EntryData:
		return fmt.Errorf("symbol %q is already declared an entry: %w", name, ErrRedundant)
	case Extern:
		return fmt.Errorf("symbol %q is external, cannot also be an entry", name)
	}
	return nil
}

// RelocateData shifts the address of every Data/EntryData symbol by
// delta. Called once at the end of pass 1 once the final instruction
// count is known, so data symbols can be placed after the code image
// (spec.md §4.3).
func (t *Table) RelocateData(delta int) {
	for _, n := range t.order {
		s := t.byName[n]
		if s.Kind == Data || s.Kind == EntryData {
			s.Address += delta
		}
	}
}
