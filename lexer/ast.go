package lexer

import "github.com/openu-sysprog/mmn14asm/isa"

// Node is the tagged union of the three AST shapes a source line can
// produce: an instruction, a directive, or a syntax error. A line that
// is only whitespace produces no Node at all (spec.md §4.2).
//
// Using a small interface with one implementing type per variant
// (rather than a single struct with an arbitrary unused-field union,
// as the original C AST does) eliminates the sentinel-field bugs the
// spec calls out in §9 — the compiler refuses to let an Instruction
// be read as though it carried Directive fields.
type Node interface {
	isNode()
	// Label returns the line's label prefix, or "" if none.
	Label() string
}

// Operand is one parsed operand slot.
type Operand struct {
	Mode      isa.Mode
	Immediate int    // meaningful when Mode == isa.Immediate
	LabelName string // meaningful when Mode == isa.Label
	Register  int    // meaningful when Mode == isa.Register, 0..7
}

// Instruction is an AST node for an opcode line, fully parsed: the
// opcode and up to two operands with their addressing modes resolved.
type Instruction struct {
	label    string
	Op       *isa.Instruction
	Operands [2]Operand // Operands[0] = first operand in source text, Operands[1] = second
	NumOps   int
}

func (i *Instruction) isNode()       {}
func (i *Instruction) Label() string { return i.label }

// DirectiveKind distinguishes the four mmn14 directives.
type DirectiveKind byte

const (
	DirData DirectiveKind = iota
	DirString
	DirExtern
	DirEntry
)

// Directive is an AST node for a ".data"/".string"/".extern"/".entry" line.
type Directive struct {
	label string
	Kind  DirectiveKind
	Ints  []int  // populated for DirData
	Str   string // populated for DirString
	Name  string // populated for DirExtern / DirEntry
}

func (d *Directive) isNode()       {}
func (d *Directive) Label() string { return d.label }

// SyntaxError is an AST node standing in for a line the lexer could not
// parse. It carries no label of its own.
type SyntaxError struct {
	Message string
}

func (e *SyntaxError) isNode()       {}
func (e *SyntaxError) Label() string { return "" }
