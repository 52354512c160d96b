// Package isa describes the mmn14 instruction set: its 12-bit word
// format, its fixed opcode table, and the addressing modes each operand
// position accepts.
package isa

// Word is a single 12-bit machine word. Only the low 12 bits are ever
// significant; callers must mask after arithmetic that might overflow.
type Word uint16

// Mask keeps a Word to its 12 significant bits.
const Mask Word = 0x0fff

const (
	// BeginningAddress is the address the final code image is
	// logically relocated to start at when emitted.
	BeginningAddress = 100

	// MemorySize is the combined code+data word cap.
	MemorySize = 1024

	// LabelMaxLength is the maximum number of characters in a label
	// or macro name.
	LabelMaxLength = 31

	// MaxLineLength is the maximum number of characters (excluding
	// the line terminator) in one source line.
	MaxLineLength = 80
)

// Mode tags an operand's addressing mode.
type Mode byte

const (
	// NoOperand marks an absent operand slot.
	NoOperand Mode = 0
	// Immediate is a signed literal in [-512, 511], encoding value 1.
	Immediate Mode = 1
	// Label is a symbolic reference, encoding value 3.
	Label Mode = 3
	// Register is an @r0..@r7 operand, encoding value 5.
	Register Mode = 5
)

// ModeSet is a bitset of allowed Modes for one operand position.
type ModeSet byte

// modeBit assigns each non-empty Mode a distinct bit; NoOperand is
// represented by the empty set rather than a bit of its own.
func modeBit(m Mode) ModeSet {
	switch m {
	case Immediate:
		return 1 << 0
	case Label:
		return 1 << 1
	case Register:
		return 1 << 2
	default:
		return 0
	}
}

func setOf(modes ...Mode) ModeSet {
	var s ModeSet
	for _, m := range modes {
		s |= modeBit(m)
	}
	return s
}

// Has reports whether m is a member of the set.
func (s ModeSet) Has(m Mode) bool {
	if m == NoOperand {
		return s == 0
	}
	return s&modeBit(m) != 0
}

var (
	modeNone   = setOf()
	modeUnary  = setOf(Label, Register)
	modeSrc2   = setOf(Immediate, Label, Register)
	modeDst2   = setOf(Label, Register)
	modeCmpAny = setOf(Immediate, Label, Register)
	modeLea    = setOf(Label)
	modePrn    = setOf(Immediate, Label, Register)
)

// Instruction describes one mmn14 opcode: its mnemonic, numeric opcode,
// and the addressing modes each operand position accepts. For a
// two-operand instruction, the first operand in source text always
// fills the source role and the second the destination role
// (spec.md §4.4, §8 scenario 1).
type Instruction struct {
	Opcode   int
	Mnemonic string
	Src      ModeSet // allowed modes for the SOURCE role (first text operand, if 2 operands)
	Dst      ModeSet // allowed modes for the DESTINATION role (second text operand, or the only operand)
}

// instructionTable is the canonical opcode numbering from spec.md §6:
// mov=0, cmp=1, add=2, sub=3, not=4, clr=5, lea=6, inc=7, dec=8, jmp=9,
// bne=10, red=11, prn=12, jsr=13, rts=14, stop=15.
var instructionTable = []Instruction{
	{0, "mov", modeSrc2, modeDst2},
	{1, "cmp", modeCmpAny, modeCmpAny},
	{2, "add", modeSrc2, modeDst2},
	{3, "sub", modeSrc2, modeDst2},
	{4, "not", modeNone, modeUnary},
	{5, "clr", modeNone, modeUnary},
	{6, "lea", modeLea, modeDst2},
	{7, "inc", modeNone, modeUnary},
	{8, "dec", modeNone, modeUnary},
	{9, "jmp", modeNone, modeUnary},
	{10, "bne", modeNone, modeUnary},
	{11, "red", modeNone, modeUnary},
	{12, "prn", modeNone, modePrn},
	{13, "jsr", modeNone, modeUnary},
	{14, "rts", modeNone, modeNone},
	{15, "stop", modeNone, modeNone},
}

var byMnemonic = func() map[string]*Instruction {
	m := make(map[string]*Instruction, len(instructionTable))
	for i := range instructionTable {
		m[instructionTable[i].Mnemonic] = &instructionTable[i]
	}
	return m
}()

// Lookup returns the Instruction for a mnemonic, or nil if it is not a
// recognized mmn14 opcode.
func Lookup(mnemonic string) *Instruction {
	return byMnemonic[mnemonic]
}

// IsOpcode reports whether name is a recognized instruction mnemonic.
func IsOpcode(name string) bool {
	return byMnemonic[name] != nil
}

// directiveNames lists the recognized assembler directives (spec.md §4.2).
var directiveNames = map[string]bool{
	".data":   true,
	".string": true,
	".extern": true,
	".entry":  true,
}

// IsDirective reports whether name (including its leading '.') is a
// recognized directive.
func IsDirective(name string) bool {
	return directiveNames[name]
}

// NumOperands returns how many operand slots an instruction's addressing
// signature has: 0, 1 (destination only), or 2 (source and destination).
func (in *Instruction) NumOperands() int {
	switch {
	case in.Src == modeNone && in.Dst == modeNone:
		return 0
	case in.Src == modeNone:
		return 1
	default:
		return 2
	}
}

// TextSlotModes returns the allowed ModeSet for operand slot 0 or 1 as
// the operands appear in source text. For a one-operand instruction,
// slot must be 0 and the destination modes are returned.
func (in *Instruction) TextSlotModes(slot int) ModeSet {
	if in.NumOperands() == 1 {
		return in.Dst
	}
	if slot == 0 {
		return in.Src
	}
	return in.Dst
}

// SourceSlot returns the text-operand slot index (always 0) holding
// the source-role operand, or -1 if this instruction has no source
// operand.
func (in *Instruction) SourceSlot() int {
	if in.NumOperands() != 2 {
		return -1
	}
	return 0
}

// DestSlot returns the text-operand slot index holding the
// destination-role operand, or -1 if this instruction has no
// destination operand.
func (in *Instruction) DestSlot() int {
	switch in.NumOperands() {
	case 1:
		return 0
	case 2:
		return 1
	default:
		return -1
	}
}
