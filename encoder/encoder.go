// Package encoder implements the mmn14 bit encoder (component D of
// spec.md §2): it turns one parsed instruction node into its 12-bit
// machine words, resolving labels that are already defined (with an
// extern-use record for each external one) and enqueuing pending
// references for the ones that are not (spec.md §4.4).
package encoder

import (
	"github.com/openu-sysprog/mmn14asm/isa"
	"github.com/openu-sysprog/mmn14asm/lexer"
	"github.com/openu-sysprog/mmn14asm/symtab"
)

// PendingReference is a forward label use awaiting pass-2 resolution.
type PendingReference struct {
	Name      string
	CodeIndex int // index into the code image of the word to patch
	Line      int
}

// ExternUse records one use of an externally-defined symbol, for the
// ".ext" writer.
type ExternUse struct {
	Name    string
	Address int
}

// Encode produces the machine words for node. ic is the instruction
// counter's value before this instruction (== the code image's current
// length), used to compute word addresses for extern-use records and
// code indices for pending references.
func Encode(node *lexer.Instruction, ic int, table *symtab.Table, line int) (words []isa.Word, pending []PendingReference, externs []ExternUse) {
	instr := node.Op
	srcSlot, dstSlot := instr.SourceSlot(), instr.DestSlot()

	srcMode, dstMode := isa.NoOperand, isa.NoOperand
	if srcSlot >= 0 {
		srcMode = node.Operands[srcSlot].Mode
	}
	if dstSlot >= 0 {
		dstMode = node.Operands[dstSlot].Mode
	}

	words = append(words, firstWord(instr, srcMode, dstMode))

	if srcMode == isa.Register && dstMode == isa.Register {
		words = append(words, registerPairWord(node.Operands[srcSlot].Register, node.Operands[dstSlot].Register))
		return words, pending, externs
	}

	if srcSlot >= 0 && srcMode != isa.NoOperand {
		w, p, e := encodeOperand(node.Operands[srcSlot], true, ic+len(words), table, line)
		words = append(words, w)
		appendOutcome(&pending, &externs, p, e)
	}
	if dstSlot >= 0 && dstMode != isa.NoOperand {
		w, p, e := encodeOperand(node.Operands[dstSlot], false, ic+len(words), table, line)
		words = append(words, w)
		appendOutcome(&pending, &externs, p, e)
	}
	return words, pending, externs
}

func appendOutcome(pending *[]PendingReference, externs *[]ExternUse, p *PendingReference, e *ExternUse) {
	if p != nil {
		*pending = append(*pending, *p)
	}
	if e != nil {
		*externs = append(*externs, *e)
	}
}

// firstWord builds the leading word common to every instruction:
// source mode in bits 11..9, opcode in bits 8..5, destination mode in
// bits 4..2, ARE (always 0) in bits 1..0.
func firstWord(instr *isa.Instruction, srcMode, dstMode isa.Mode) isa.Word {
	w := isa.Word(srcMode)<<9 | isa.Word(instr.Opcode)<<5 | isa.Word(dstMode)<<2
	return w & isa.Mask
}

// registerPairWord packs two register operands into the single shared
// extra word mov/add/sub/cmp emit when both operands are registers.
func registerPairWord(srcReg, dstReg int) isa.Word {
	return (isa.Word(srcReg)<<7 | isa.Word(dstReg)<<2) & isa.Mask
}

// encodeOperand produces the extra word for one non-register-pair
// operand. codeIndex is the code image index the word will occupy.
func encodeOperand(op lexer.Operand, isSource bool, codeIndex int, table *symtab.Table, line int) (word isa.Word, pending *PendingReference, extern *ExternUse) {
	switch op.Mode {
	case isa.Immediate:
		return encodeImmediate(op.Immediate), nil, nil

	case isa.Register:
		if isSource {
			return (isa.Word(op.Register) << 7) & isa.Mask, nil, nil
		}
		return (isa.Word(op.Register) << 2) & isa.Mask, nil, nil

	case isa.Label:
		return encodeLabel(op.LabelName, codeIndex, table, line)

	default:
		return 0, nil, nil
	}
}

// encodeImmediate two's-complements a signed value into the 10-bit
// field used by immediate operands.
func encodeImmediate(n int) isa.Word {
	return (isa.Word(uint16(n)&0x3ff) << 2) & isa.Mask
}

func encodeLabel(name string, codeIndex int, table *symtab.Table, line int) (isa.Word, *PendingReference, *ExternUse) {
	sym := table.Lookup(name)
	if sym == nil || sym.Kind == symtab.Entry {
		return 0, &PendingReference{Name: name, CodeIndex: codeIndex, Line: line}, nil
	}

	are := isa.Word(2)
	var extern *ExternUse
	if sym.Kind == symtab.Extern {
		are = 1
		// Extern-use addresses are 1-based word positions (spec.md §4.4's
		// "current_word_address"), hence the +1 beyond the 0-based
		// codeIndex — the same convention pass-2's Resolve applies.
		extern = &ExternUse{Name: name, Address: codeIndex + isa.BeginningAddress + 1}
	}
	word := (isa.Word(sym.Address)<<2 | are) & isa.Mask
	return word, nil, extern
}

// Resolve patches a pass-2 pending reference into the code image,
// returning the extern-use record to append if the symbol turned out
// to be external, and ok=false if the symbol is still undefined.
func Resolve(code []isa.Word, ref PendingReference, table *symtab.Table) (extern *ExternUse, ok bool) {
	sym := table.Lookup(ref.Name)
	if sym == nil || sym.Kind == symtab.Entry {
		return nil, false
	}

	are := isa.Word(2)
	if sym.Kind == symtab.Extern {
		are = 1
		extern = &ExternUse{Name: ref.Name, Address: ref.CodeIndex + isa.BeginningAddress + 1}
	}
	code[ref.CodeIndex] = (isa.Word(sym.Address)<<2 | are) & isa.Mask
	return extern, true
}
