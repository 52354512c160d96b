// Command mmn14asm is the two-pass mmn14 assembler CLI (spec.md §6).
// For every positional file base name B it reads B.as, writes B.am,
// and on successful assembly writes B.ob plus the conditional B.ent
// and B.ext files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openu-sysprog/mmn14asm/assembler"
	"github.com/openu-sysprog/mmn14asm/diag"
	"github.com/openu-sysprog/mmn14asm/macro"
	"github.com/openu-sysprog/mmn14asm/writer"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:   "mmn14asm <base>...",
		Short: "Assemble mmn14 source files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run,
	}
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "log each processing step")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, bases []string) error {
	failed := false
	for _, base := range bases {
		if err := assembleOne(base); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", base, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
	return nil
}

func assembleOne(base string) error {
	srcPath := base + ".as"
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", srcPath, err)
	}
	defer src.Close()

	sink := diag.NewSink(srcPath)
	expanded := macro.Expand(src, sink)

	if err := os.WriteFile(base+".am", []byte(expanded), 0644); err != nil {
		return fmt.Errorf("cannot write %s.am: %w", base, err)
	}

	if sink.HasErrors() {
		sink.Print(os.Stderr)
		return fmt.Errorf("macro expansion failed")
	}

	obj, asmSink := assembler.Assemble(expanded, base+".as", verbose)
	asmSink.Print(os.Stderr)
	if obj == nil {
		return fmt.Errorf("assembly failed")
	}

	if err := os.WriteFile(base+".ob", []byte(writer.ObjectText(obj)), 0644); err != nil {
		return fmt.Errorf("cannot write %s.ob: %w", base, err)
	}
	if text, ok := writer.EntriesText(obj); ok {
		if err := os.WriteFile(base+".ent", []byte(text), 0644); err != nil {
			return fmt.Errorf("cannot write %s.ent: %w", base, err)
		}
	}
	if text, ok := writer.ExternsText(obj); ok {
		if err := os.WriteFile(base+".ext", []byte(text), 0644); err != nil {
			return fmt.Errorf("cannot write %s.ext: %w", base, err)
		}
	}
	return nil
}
