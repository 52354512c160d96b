// Package macro implements the mmn14 macro preprocessor (component B of
// spec.md §2): it collects "mcro ... endmcro" bodies and substitutes
// them verbatim at each call site, producing the expanded source that
// the lexer consumes.
//
// Macros have no parameters, no nesting, and no hygiene concerns
// (spec.md §4.1) — a nested "mcro" line is simply captured as an
// ordinary body line, left for the lexer to reject later.
package macro

import (
	"bufio"
	"io"
	"strings"

	"github.com/openu-sysprog/mmn14asm/diag"
	"github.com/openu-sysprog/mmn14asm/isa"
)

// A definition holds one macro's body as an ordered sequence of source
// lines, exactly as the original_source/preprocessor.c stores it (one
// list node per body line, in order).
type definition struct {
	lines []string
}

// Expand reads raw source from r and returns the macro-expanded source
// text, plus any diagnostics raised while scanning macro definitions.
// Expansion never fails "fatally": a malformed macro header or a bare
// endmcro is reported and the offending line is dropped from the
// output, but scanning continues so later diagnostics are still found.
func Expand(r io.Reader, sink *diag.Sink) string {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, isa.MaxLineLength+64), isa.MaxLineLength+64)

	macros := make(map[string]*definition)

	var out strings.Builder
	var inMacro bool
	var current *definition
	var currentName string

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := stripComment(raw)

		if inMacro {
			if isEndMacro(line) {
				macros[currentName] = current
				inMacro = false
				current = nil
				currentName = ""
				continue
			}
			current.lines = append(current.lines, raw)
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			out.WriteString("\n")
			continue
		}

		fields := strings.Fields(trimmed)
		first := fields[0]

		switch {
		case first == "mcro":
			name, ok := parseMacroHeader(fields)
			if !ok {
				sink.Errorf(lineNo, "incorrect_definition_of_a_macro")
				continue
			}
			if _, exists := macros[name]; exists {
				sink.Errorf(lineNo, "macro_exists_already_its_redefinition")
				continue
			}
			inMacro = true
			currentName = name
			current = &definition{}

		case first == "endmcro":
			sink.Errorf(lineNo, "incorrect_definition_of_a_endmacro")

		default:
			if def, ok := macros[first]; ok && trimmed == first {
				for _, bodyLine := range def.lines {
					out.WriteString(bodyLine)
					out.WriteString("\n")
				}
				continue
			}
			out.WriteString(raw)
			out.WriteString("\n")
		}
	}

	return out.String()
}

// parseMacroHeader validates "mcro <name>" and returns the macro name.
func parseMacroHeader(fields []string) (string, bool) {
	if len(fields) != 2 {
		return "", false
	}
	name := fields[1]
	if !validMacroName(name) {
		return "", false
	}
	return name, true
}

func validMacroName(name string) bool {
	if len(name) == 0 || len(name) > isa.LabelMaxLength {
		return false
	}
	if !isAlpha(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isAlphaNumeric(name[i]) {
			return false
		}
	}
	return true
}

func isEndMacro(line string) bool {
	return strings.TrimSpace(line) == "endmcro"
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		return line[:i]
	}
	return line
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || (c >= '0' && c <= '9')
}
