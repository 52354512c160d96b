package macro

import (
	"strings"
	"testing"

	"github.com/openu-sysprog/mmn14asm/diag"
)

func expand(t *testing.T, src string) (string, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink("test")
	return Expand(strings.NewReader(src), sink), sink
}

func TestSimpleMacroCallExpandsTwice(t *testing.T) {
	src := "mcro M\n" +
		"inc @r1\n" +
		"endmcro\n" +
		"M\n" +
		"M\n"

	out, sink := expand(t, src)
	if len(sink.All) != 0 {
		t.Fatalf("unexpected diagnostics: %v", sink.All)
	}
	if got := strings.Count(out, "inc @r1"); got != 2 {
		t.Errorf("expanded source has %d occurrences of 'inc @r1', want 2:\n%s", got, out)
	}
	if strings.Contains(out, "mcro") {
		t.Errorf("macro header leaked into expanded output:\n%s", out)
	}
}

func TestRedefinedMacroIsError(t *testing.T) {
	src := "mcro M\n" +
		"inc @r1\n" +
		"endmcro\n" +
		"mcro M\n" +
		"dec @r1\n" +
		"endmcro\n"

	// The rejected header does not open a macro, so its closing endmcro
	// is reported as a bare endmcro as well.
	_, sink := expand(t, src)
	if len(sink.All) != 2 {
		t.Fatalf("got %d diagnostics, want 2: %v", len(sink.All), sink.All)
	}
	if !strings.Contains(sink.All[0].Message, "macro_exists_already_its_redefinition") {
		t.Errorf("message = %q, want macro_exists_already_its_redefinition", sink.All[0].Message)
	}
}

func TestBareEndmcroIsError(t *testing.T) {
	_, sink := expand(t, "endmcro\n")
	if len(sink.All) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(sink.All))
	}
	if !strings.Contains(sink.All[0].Message, "incorrect_definition_of_a_endmacro") {
		t.Errorf("message = %q, want incorrect_definition_of_a_endmacro", sink.All[0].Message)
	}
}

func TestMalformedMacroHeaderIsError(t *testing.T) {
	// The rejected header does not open a macro, so the following endmcro
	// is reported as a bare endmcro as well.
	_, sink := expand(t, "mcro\nendmcro\n")
	if len(sink.All) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(sink.All))
	}
	if !strings.Contains(sink.All[0].Message, "incorrect_definition_of_a_macro") {
		t.Errorf("message = %q, want incorrect_definition_of_a_macro", sink.All[0].Message)
	}
}

func TestNonMacroLinesPassThroughUnchanged(t *testing.T) {
	src := "MAIN: mov @r1, @r2\nstop\n"
	out, sink := expand(t, src)
	if len(sink.All) != 0 {
		t.Fatalf("unexpected diagnostics: %v", sink.All)
	}
	if out != src {
		t.Errorf("out = %q, want %q", out, src)
	}
}
