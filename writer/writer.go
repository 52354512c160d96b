// Package writer renders an assembled object into the text formats
// spec.md §6 defines for the ".ob", ".ent" and ".ext" output files.
// It only builds the text; actual file creation belongs to the CLI
// driver (spec.md calls file I/O an external collaborator).
package writer

import (
	"fmt"
	"strings"

	"github.com/openu-sysprog/mmn14asm/assembler"
	"github.com/openu-sysprog/mmn14asm/isa"
)

// base64Alphabet is the word encoding alphabet spec.md §6 requires for
// ".ob" words: not standard byte-stream Base64, but a bespoke 2
// characters - 12 bits packing (high 6 bits, then low 6 bits). Modeled
// on the teacher's byteString/hex alphabet-indexing idiom rather than
// encoding/base64, since that package encodes byte streams, not
// individual 12-bit words.
const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// encodeWord renders one 12-bit word as its two-character encoding.
func encodeWord(w isa.Word) string {
	w &= isa.Mask
	hi := (w >> 6) & 0x3f
	lo := w & 0x3f
	return string([]byte{base64Alphabet[hi], base64Alphabet[lo]})
}

// ObjectText renders the ".ob" file: header line "<IC> <DC>", then one
// line per code word, then one line per data word.
func ObjectText(obj *assembler.Object) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %d\n", obj.IC, obj.DC)
	for _, w := range obj.CodeImage {
		b.WriteString(encodeWord(w))
		b.WriteByte('\n')
	}
	for _, w := range obj.DataImage {
		b.WriteString(encodeWord(w))
		b.WriteByte('\n')
	}
	return b.String()
}

// EntriesText renders the ".ent" file: one "<name>\t<address>" line
// per entry-kind symbol, in symbol-table insertion order. ok is false
// when there are no entries, meaning the file should be omitted.
func EntriesText(obj *assembler.Object) (text string, ok bool) {
	if obj.EntriesCount == 0 {
		return "", false
	}
	var b strings.Builder
	for _, s := range obj.Symbols.All() {
		if !s.Kind.IsResolvedEntry() {
			continue
		}
		fmt.Fprintf(&b, "%s\t%d\n", s.Name, s.Address)
	}
	return b.String(), true
}

// ExternsText renders the ".ext" file: one "<name>\t<address>" line
// per extern-use record, in the order they were recorded. ok is false
// when there were no extern uses, meaning the file should be omitted.
func ExternsText(obj *assembler.Object) (text string, ok bool) {
	if len(obj.ExternUses) == 0 {
		return "", false
	}
	var b strings.Builder
	for _, u := range obj.ExternUses {
		fmt.Fprintf(&b, "%s\t%d\n", u.Name, u.Address)
	}
	return b.String(), true
}
