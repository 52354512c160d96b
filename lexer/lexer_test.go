package lexer

import (
	"testing"

	"github.com/openu-sysprog/mmn14asm/isa"
)

func scanOK(t *testing.T, line string) Node {
	t.Helper()
	node, ok := Scan(1, line)
	if !ok {
		t.Fatalf("Scan(%q) returned ok=false, want a node", line)
	}
	return node
}

func TestBlankLineProducesNoNode(t *testing.T) {
	for _, line := range []string{"", "   ", "\t", "; just a comment"} {
		if _, ok := Scan(1, line); ok {
			t.Errorf("Scan(%q) ok = true, want false", line)
		}
	}
}

func TestRegisterRegisterMov(t *testing.T) {
	node := scanOK(t, "MAIN: mov @r3, @r5")
	instr, isInstr := node.(*Instruction)
	if !isInstr {
		t.Fatalf("got %T, want *Instruction", node)
	}
	if instr.Label() != "MAIN" {
		t.Errorf("Label() = %q, want MAIN", instr.Label())
	}
	if instr.Op.Mnemonic != "mov" {
		t.Errorf("Mnemonic = %q, want mov", instr.Op.Mnemonic)
	}
	if instr.NumOps != 2 {
		t.Fatalf("NumOps = %d, want 2", instr.NumOps)
	}
	if instr.Operands[0].Mode != isa.Register || instr.Operands[0].Register != 3 {
		t.Errorf("Operands[0] = %+v, want register 3", instr.Operands[0])
	}
	if instr.Operands[1].Mode != isa.Register || instr.Operands[1].Register != 5 {
		t.Errorf("Operands[1] = %+v, want register 5", instr.Operands[1])
	}
}

func TestImmediateAndLabelOperands(t *testing.T) {
	node := scanOK(t, "START: add #5, END")
	instr := node.(*Instruction)
	if instr.Operands[0].Mode != isa.Immediate || instr.Operands[0].Immediate != 5 {
		t.Errorf("Operands[0] = %+v, want immediate 5", instr.Operands[0])
	}
	if instr.Operands[1].Mode != isa.Label || instr.Operands[1].LabelName != "END" {
		t.Errorf("Operands[1] = %+v, want label END", instr.Operands[1])
	}
}

func TestNullaryInstruction(t *testing.T) {
	node := scanOK(t, "stop")
	instr := node.(*Instruction)
	if instr.Op.Mnemonic != "stop" || instr.NumOps != 0 {
		t.Errorf("got %+v, want nullary stop", instr)
	}
}

func TestDataDirective(t *testing.T) {
	node := scanOK(t, "LIST: .data 7, -3, 0")
	dir := node.(*Directive)
	if dir.Kind != DirData {
		t.Fatalf("Kind = %v, want DirData", dir.Kind)
	}
	want := []int{7, -3, 0}
	if len(dir.Ints) != len(want) {
		t.Fatalf("Ints = %v, want %v", dir.Ints, want)
	}
	for i, v := range want {
		if dir.Ints[i] != v {
			t.Errorf("Ints[%d] = %d, want %d", i, dir.Ints[i], v)
		}
	}
}

func TestStringDirective(t *testing.T) {
	node := scanOK(t, `STR: .string "A"`)
	dir := node.(*Directive)
	if dir.Kind != DirString || dir.Str != "A" {
		t.Errorf("got %+v, want DirString \"A\"", dir)
	}
}

func TestExternAndEntryDirectives(t *testing.T) {
	node := scanOK(t, ".extern EXT")
	dir := node.(*Directive)
	if dir.Kind != DirExtern || dir.Name != "EXT" {
		t.Errorf("got %+v, want DirExtern EXT", dir)
	}

	node = scanOK(t, ".entry LBL")
	dir = node.(*Directive)
	if dir.Kind != DirEntry || dir.Name != "LBL" {
		t.Errorf("got %+v, want DirEntry LBL", dir)
	}
}

func TestSecondColonIsOneSyntaxError(t *testing.T) {
	node := scanOK(t, "A: B: mov @r0, @r1")
	if _, isErr := node.(*SyntaxError); !isErr {
		t.Fatalf("got %T, want *SyntaxError", node)
	}
}

func TestLabelOnlyLineIsSyntaxError(t *testing.T) {
	node := scanOK(t, "LBL:")
	if _, isErr := node.(*SyntaxError); !isErr {
		t.Fatalf("got %T, want *SyntaxError", node)
	}
}

func TestLabelLengthBoundary(t *testing.T) {
	ok31 := "A234567890123456789012345678901" // 31 chars
	if len(ok31) != 31 {
		t.Fatalf("test fixture has length %d, want 31", len(ok31))
	}
	node := scanOK(t, ok31+": stop")
	if _, isErr := node.(*SyntaxError); isErr {
		t.Errorf("31-char label rejected: %+v", node)
	}

	bad32 := ok31 + "X"
	node = scanOK(t, bad32+": stop")
	if _, isErr := node.(*SyntaxError); !isErr {
		t.Errorf("32-char label accepted, want SyntaxError")
	}
}

func TestImmediateRangeBoundary(t *testing.T) {
	node := scanOK(t, "cmp #511, #-512")
	if _, isErr := node.(*SyntaxError); isErr {
		t.Errorf("511/-512 rejected: %+v", node)
	}

	node = scanOK(t, "cmp #512, #0")
	if _, isErr := node.(*SyntaxError); !isErr {
		t.Errorf("512 accepted, want SyntaxError")
	}

	node = scanOK(t, "cmp #-513, #0")
	if _, isErr := node.(*SyntaxError); !isErr {
		t.Errorf("-513 accepted, want SyntaxError")
	}
}

func TestAddressingModeRejectedForOpcode(t *testing.T) {
	// lea's first (text) operand must be a Label, not a register.
	node := scanOK(t, "lea @r1, TARGET")
	if _, isErr := node.(*SyntaxError); !isErr {
		t.Errorf("lea with register source accepted, want SyntaxError")
	}
}

func TestUnknownMnemonic(t *testing.T) {
	node := scanOK(t, "frobnicate @r0")
	if _, isErr := node.(*SyntaxError); !isErr {
		t.Errorf("unknown mnemonic accepted, want SyntaxError")
	}
}

func TestCommentStrippedRespectingQuotes(t *testing.T) {
	node := scanOK(t, `STR: .string "a;b"`)
	dir := node.(*Directive)
	if dir.Str != "a;b" {
		t.Errorf("Str = %q, want \"a;b\" (semicolon inside quotes kept)", dir.Str)
	}
}
