// Package lexer turns one expanded logical source line into an AST node
// describing a label, instruction, or directive with fully parsed
// operands (components A and C of spec.md §2).
package lexer

import (
	"strconv"
	"strings"

	"github.com/openu-sysprog/mmn14asm/isa"
)

// Scan classifies one already macro-expanded source line. ok is false
// for a blank (whitespace/comment-only) line, which produces no AST
// node at all.
func Scan(row int, rawLine string) (node Node, ok bool) {
	line := newFstring(row, rawLine)
	line = stripTrailingComment(line)

	if strings.TrimSpace(line.str) == "" {
		return nil, false
	}
	line = line.consumeWhitespace()

	label, rest, labelErr := scanLabel(line)
	if labelErr != "" {
		return &SyntaxError{Message: labelErr}, true
	}

	if rest.isEmpty() {
		return &SyntaxError{Message: "only the label is present in the line"}, true
	}

	if rest.startsWithChar('.') {
		return scanDirective(label, rest)
	}
	return scanInstruction(label, rest)
}

// stripTrailingComment removes a ';' comment tail, honoring double
// quotes so a ';' inside a ".string" literal is not mistaken for one.
func stripTrailingComment(l fstring) fstring {
	inQuotes := false
	for i := 0; i < len(l.str); i++ {
		c := l.str[i]
		if c == '"' {
			inQuotes = !inQuotes
			continue
		}
		if c == ';' && !inQuotes {
			return l.trunc(i)
		}
	}
	return l
}

// scanLabel extracts an optional "NAME:" prefix. errMsg is non-empty
// when the line has malformed label syntax.
func scanLabel(line fstring) (label string, rest fstring, errMsg string) {
	tok, _ := line.consumeUntil(isSpace)
	colons := strings.Count(tok.str, ":")

	switch {
	case colons == 0:
		return "", line, ""

	case colons > 1 || !strings.HasSuffix(tok.str, ":"):
		return "", line, "a line may contain at most one label, terminated by a single ':'"

	default:
		name := tok.str[:len(tok.str)-1]
		if msg := validateLabelName(name); msg != "" {
			return "", line, msg
		}
		remain := line.consume(len(tok.str)).consumeWhitespace()
		if !remain.isEmpty() {
			nextTok, _ := remain.consumeUntil(isSpace)
			if strings.Contains(nextTok.str, ":") {
				return "", line, "a line may contain at most one label, terminated by a single ':'"
			}
		}
		return name, remain, ""
	}
}

// validateLabelName applies the label-naming rule shared by label
// declarations, macro names, and label operands: first char alphabetic,
// subsequent chars alphanumeric, length <= isa.LabelMaxLength.
func validateLabelName(name string) string {
	if name == "" {
		return "label name is empty"
	}
	if !isLabelStart(name[0]) {
		return "label name: first char not letter"
	}
	for i := 1; i < len(name); i++ {
		if !isLabelChar(name[i]) {
			return "label name: contains char that is not letter or number"
		}
	}
	if len(name) > isa.LabelMaxLength {
		return "label name: longer than maximum"
	}
	return ""
}

//
// directives
//

func scanDirective(label string, line fstring) (Node, bool) {
	tok, rest := line.consumeWhile(isWordChar)
	rest = rest.consumeWhitespace()

	if !isa.IsDirective(tok.str) {
		return &SyntaxError{Message: "unrecognized directive '" + tok.str + "'"}, true
	}

	switch tok.str {
	case ".string":
		return scanStringDirective(label, rest)
	case ".data":
		return scanDataDirective(label, rest)
	case ".entry":
		return scanLabelOperandDirective(label, DirEntry, rest)
	case ".extern":
		return scanLabelOperandDirective(label, DirExtern, rest)
	default:
		return &SyntaxError{Message: "unrecognized directive '" + tok.str + "'"}, true
	}
}

func scanStringDirective(label string, line fstring) (Node, bool) {
	if !line.startsWithChar('"') {
		return &SyntaxError{Message: ".string requires a double-quoted string"}, true
	}
	body, remain := line.consume(1).consumeUntilChar('"')
	if !remain.startsWithChar('"') {
		return &SyntaxError{Message: ".string is missing its closing quote"}, true
	}
	remain = remain.consume(1)
	if strings.TrimSpace(remain.str) != "" {
		return &SyntaxError{Message: "unexpected characters after .string literal"}, true
	}
	return &Directive{label: label, Kind: DirString, Str: body.str}, true
}

func scanDataDirective(label string, line fstring) (Node, bool) {
	if line.isEmpty() {
		return &SyntaxError{Message: ".data requires at least one value"}, true
	}

	var ints []int
	remain := line
	for {
		var field fstring
		field, remain = remain.consumeUntilChar(',')
		n, err := parseSignedNumber(strings.TrimSpace(field.str))
		if err != "" {
			return &SyntaxError{Message: err}, true
		}
		ints = append(ints, n)

		if remain.isEmpty() {
			break
		}
		remain = remain.consume(1).consumeWhitespace() // skip ','
		if remain.isEmpty() {
			return &SyntaxError{Message: ".data has a trailing comma with no following value"}, true
		}
	}
	return &Directive{label: label, Kind: DirData, Ints: ints}, true
}

func scanLabelOperandDirective(label string, kind DirectiveKind, line fstring) (Node, bool) {
	tok, remain := line.consumeUntil(isSpace)
	if strings.TrimSpace(remain.str) != "" {
		return &SyntaxError{Message: "directive takes exactly one label operand"}, true
	}
	if tok.isEmpty() {
		return &SyntaxError{Message: "directive requires a label operand"}, true
	}
	if msg := validateLabelName(tok.str); msg != "" {
		return &SyntaxError{Message: msg}, true
	}
	return &Directive{label: label, Kind: kind, Name: tok.str}, true
}

//
// instructions
//

func scanInstruction(label string, line fstring) (Node, bool) {
	opTok, rest := line.consumeWhile(isWordChar)
	rest = rest.consumeWhitespace()

	instr := isa.Lookup(opTok.str)
	if instr == nil {
		return &SyntaxError{Message: "unknown instruction '" + opTok.str + "'"}, true
	}

	n := instr.NumOperands()
	if n == 0 {
		if !rest.isEmpty() {
			return &SyntaxError{Message: opTok.str + " takes no operands"}, true
		}
		return &Instruction{label: label, Op: instr, NumOps: 0}, true
	}

	fields, err := splitOperands(rest, n)
	if err != "" {
		return &SyntaxError{Message: err}, true
	}

	var ops [2]Operand
	for i, f := range fields {
		op, errMsg := parseOperand(f)
		if errMsg != "" {
			return &SyntaxError{Message: errMsg}, true
		}
		if !instr.TextSlotModes(i).Has(op.Mode) {
			return &SyntaxError{Message: "operand " + strconv.Itoa(i+1) + " addressing mode not allowed for " + opTok.str}, true
		}
		ops[i] = op
	}

	return &Instruction{label: label, Op: instr, Operands: ops, NumOps: n}, true
}

// splitOperands splits a comma-separated operand list into exactly
// want fields, catching missing/extra commas and missing operands.
func splitOperands(line fstring, want int) ([]fstring, string) {
	if line.isEmpty() {
		return nil, "missing required operand"
	}

	var fields []fstring
	remain := line
	for {
		var f fstring
		f, remain = remain.consumeUntilChar(',')
		fields = append(fields, f)
		if remain.isEmpty() {
			break
		}
		remain = remain.consume(1).consumeWhitespace()
		if remain.isEmpty() {
			return nil, "extra comma with no following operand"
		}
	}

	if len(fields) < want {
		return nil, "missing required operand"
	}
	if len(fields) > want {
		return nil, "too many operands"
	}
	return fields, ""
}

func parseOperand(f fstring) (Operand, string) {
	s := strings.TrimSpace(f.str)
	switch {
	case s == "":
		return Operand{}, "missing required operand"

	case s[0] == '@':
		return parseRegisterOperand(s)

	case s[0] == '#':
		return parseImmediateOperand(s[1:])

	case isLabelStart(s[0]):
		if msg := validateLabelName(s); msg != "" {
			return Operand{}, msg
		}
		return Operand{Mode: isa.Label, LabelName: s}, ""

	default:
		return Operand{}, "unknown operand '" + s + "'"
	}
}

func parseRegisterOperand(s string) (Operand, string) {
	if len(s) != 3 || s[1] != 'r' || !isDigit(s[2]) {
		return Operand{}, "unknown operand '" + s + "'"
	}
	n := int(s[2] - '0')
	if n > 7 {
		return Operand{}, "register out of range (0..7)"
	}
	return Operand{Mode: isa.Register, Register: n}, ""
}

func parseImmediateOperand(s string) (Operand, string) {
	if strings.ContainsAny(s, "+-") && strings.IndexAny(s, "+-") != 0 {
		return Operand{}, "unknown operand '" + s + "'"
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Operand{}, "unknown operand '" + s + "'"
	}
	if n < -512 || n > 511 {
		return Operand{}, "out of range"
	}
	return Operand{Mode: isa.Immediate, Immediate: n}, ""
}

func parseSignedNumber(s string) (int, string) {
	if s == "" {
		return 0, "expected a number in .data list"
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, "invalid number '" + s + "' in .data list"
	}
	if n < -512 || n > 511 {
		return 0, "number out of range in .data list"
	}
	return n, ""
}
