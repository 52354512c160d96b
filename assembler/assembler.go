// Package assembler drives the mmn14 two-pass assembly process
// (components F, G, H of spec.md §2): it walks the lexer's AST nodes
// to build the symbol table and a partially-resolved code image (pass
// 1), patches forward references (pass 2), and presents the finished
// object for the §6 writers.
package assembler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/openu-sysprog/mmn14asm/diag"
	"github.com/openu-sysprog/mmn14asm/encoder"
	"github.com/openu-sysprog/mmn14asm/isa"
	"github.com/openu-sysprog/mmn14asm/lexer"
	"github.com/openu-sysprog/mmn14asm/symtab"
)

// Object is the finished assembly result, ready to be handed to the
// ".ob"/".ent"/".ext" writers (spec.md §4.6).
type Object struct {
	IC           int
	DC           int
	CodeImage    []isa.Word
	DataImage    []isa.Word
	EntriesCount int
	ExternUses   []encoder.ExternUse
	Symbols      *symtab.Table
}

type assembler struct {
	lines     []string
	sink      *diag.Sink
	table     *symtab.Table
	codeImage []isa.Word
	dataImage []isa.Word
	pending   []encoder.PendingReference
	externs   []encoder.ExternUse
	verbose   bool
}

// Assemble runs the full two-pass pipeline over already macro-expanded
// source text. It always returns a diagnostic sink; obj is nil if any
// error-severity diagnostic was raised, per spec.md §4.5's "no output
// files are written" rule.
func Assemble(expanded, filename string, verbose bool) (obj *Object, sink *diag.Sink) {
	a := &assembler{
		lines:   strings.Split(expanded, "\n"),
		sink:    diag.NewSink(filename),
		table:   symtab.New(),
		verbose: verbose,
	}

	steps := []func(a *assembler) error{
		(*assembler).passOne,
		(*assembler).finalizeDataAddresses,
		(*assembler).passTwo,
	}
	for _, step := range steps {
		if err := step(a); err != nil {
			return nil, a.sink
		}
		if a.sink.HasErrors() {
			return nil, a.sink
		}
	}

	return &Object{
		IC:           len(a.codeImage),
		DC:           len(a.dataImage),
		CodeImage:    a.codeImage,
		DataImage:    a.dataImage,
		EntriesCount: countEntries(a.table),
		ExternUses:   a.externs,
		Symbols:      a.table,
	}, a.sink
}

// passOne walks every source line, growing the code/data images and
// the symbol table, and enqueuing pending references for labels not
// yet defined (spec.md §4.3).
func (a *assembler) passOne() error {
	a.logSection("Pass 1: scanning and encoding")
	for i, text := range a.lines {
		row := i + 1
		node, ok := lexer.Scan(row, text)
		if !ok {
			continue
		}

		switch n := node.(type) {
		case *lexer.Instruction:
			a.log("%3d | instruction %q, %d operand(s)", row, n.Op.Mnemonic, n.NumOps)
			a.passOneInstruction(n, row)
		case *lexer.Directive:
			a.log("%3d | directive kind=%d", row, n.Kind)
			a.passOneDirective(n, row)
		case *lexer.SyntaxError:
			a.log("%3d | syntax error: %s", row, n.Message)
			a.sink.Errorf(row, "%s", n.Message)
		}

		// Checked after the line is processed (not just before the next
		// one) so a line that is itself the one pushing the total over
		// the limit — including the last line in the file — is caught.
		if len(a.codeImage)+len(a.dataImage) > isa.MemorySize {
			a.sink.Errorf(row, "program exceeds the %d word memory limit", isa.MemorySize)
			return nil
		}
	}
	return nil
}

func (a *assembler) passOneInstruction(n *lexer.Instruction, row int) {
	if n.Label() != "" {
		if err := a.table.DefineCode(n.Label(), len(a.codeImage)+isa.BeginningAddress, row); err != nil {
			a.sink.Errorf(row, "%s", err.Error())
			return
		}
		a.logSymbol(row, n.Label())
	}

	ic := len(a.codeImage)
	words, pending, externs := encoder.Encode(n, ic, a.table, row)
	a.codeImage = append(a.codeImage, words...)
	a.pending = append(a.pending, pending...)
	a.externs = append(a.externs, externs...)
}

func (a *assembler) passOneDirective(n *lexer.Directive, row int) {
	switch n.Kind {
	case lexer.DirData:
		if n.Label() != "" {
			if err := a.table.DefineData(n.Label(), len(a.dataImage), row); err != nil {
				a.sink.Errorf(row, "%s", err.Error())
				return
			}
			a.logSymbol(row, n.Label())
		}
		for _, v := range n.Ints {
			a.dataImage = append(a.dataImage, isa.Word(uint16(v)&0x0fff))
		}

	case lexer.DirString:
		if n.Label() != "" {
			if err := a.table.DefineData(n.Label(), len(a.dataImage), row); err != nil {
				a.sink.Errorf(row, "%s", err.Error())
				return
			}
			a.logSymbol(row, n.Label())
		}
		for i := 0; i < len(n.Str); i++ {
			a.dataImage = append(a.dataImage, isa.Word(n.Str[i]))
		}
		a.dataImage = append(a.dataImage, 0)

	case lexer.DirExtern:
		if n.Label() != "" {
			a.sink.Warnf(row, "label on an .extern line is ignored")
		}
		if err := a.table.DefineExtern(n.Name, row); err != nil {
			a.reportSymbolError(row, err)
		} else {
			a.logSymbol(row, n.Name)
		}

	case lexer.DirEntry:
		if n.Label() != "" {
			a.sink.Warnf(row, "label on an .entry line is ignored")
		}
		if err := a.table.DeclareEntry(n.Name, row); err != nil {
			a.reportSymbolError(row, err)
		} else {
			a.logSymbol(row, n.Name)
		}
	}
}

// logSymbol traces a symbol table change in verbose mode, using
// symtab.Kind.String() the way the teacher's modeName table feeds
// asm.go's verbose opcode/mode tracing.
func (a *assembler) logSymbol(row int, name string) {
	sym := a.table.Lookup(name)
	a.log("%3d | symbol %q -> kind=%s addr=%d", row, name, sym.Kind, sym.Address)
}

// reportSymbolError demotes a symtab.ErrRedundant condition to a
// warning and reports everything else as an error (spec.md §4.3).
func (a *assembler) reportSymbolError(row int, err error) {
	if errors.Is(err, symtab.ErrRedundant) {
		a.sink.Warnf(row, "%s", err.Error())
		return
	}
	a.sink.Errorf(row, "%s", err.Error())
}

// finalizeDataAddresses relocates every data symbol's address by the
// final instruction count plus isa.BeginningAddress, placing the data
// image directly after the code image (spec.md §4.3's end-of-pass-1
// step). Entry symbols are counted separately, by countEntries.
func (a *assembler) finalizeDataAddresses() error {
	a.logSection("Finalizing data addresses")
	delta := len(a.codeImage) + isa.BeginningAddress
	a.table.RelocateData(delta)
	a.log("data symbols shifted by %d", delta)
	return nil
}

// passTwo resolves every pending reference left by pass 1, in
// insertion order, and appends any resulting extern-use records
// (spec.md §4.5).
func (a *assembler) passTwo() error {
	a.logSection("Pass 2: resolving pending references")
	for _, ref := range a.pending {
		extern, ok := encoder.Resolve(a.codeImage, ref, a.table)
		if !ok {
			a.sink.Errorf(ref.Line, "label %q used but not defined", ref.Name)
			continue
		}
		if sym := a.table.Lookup(ref.Name); sym != nil {
			a.log("%3d | resolved %q -> kind=%s addr=%d", ref.Line, ref.Name, sym.Kind, sym.Address)
		}
		if extern != nil {
			a.externs = append(a.externs, *extern)
		}
	}
	return nil
}

// log writes a trace line to standard output when --verbose is set
// (grounded on the teacher's asm.go log/logSection pair).
func (a *assembler) log(format string, args ...interface{}) {
	if a.verbose {
		fmt.Printf(format, args...)
		fmt.Println()
	}
}

// logSection writes a verbose-mode section header.
func (a *assembler) logSection(name string) {
	if a.verbose {
		fmt.Println(strings.Repeat("-", len(name)+6))
		fmt.Printf("-- %s --\n", name)
		fmt.Println(strings.Repeat("-", len(name)+6))
	}
}

// countEntries counts symbols that are both declared .entry and defined
// in this file. A bare Entry (declared but never defined) does not
// count (spec.md's ".ent" file lists EntryCode/EntryData only).
func countEntries(table *symtab.Table) int {
	n := 0
	for _, s := range table.All() {
		if s.Kind.IsResolvedEntry() {
			n++
		}
	}
	return n
}
