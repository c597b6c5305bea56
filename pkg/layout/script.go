package layout

import (
	"fmt"
	"io"
	"strings"
)

// scriptName is the spelling the boot assembly binds against.
func scriptName(name string) string {
	if name == SymGlobalPointer {
		return "__global_pointer$"
	}
	return "__" + name
}

// WriteScript renders the layout contract as an equivalent GNU linker
// script, for builds that still link with ld and for eyeballing what
// the planner computes.
func WriteScript(cfg Config, w io.Writer) error {
	b := &strings.Builder{}

	fmt.Fprintf(b, "OUTPUT_ARCH(riscv)\n")
	fmt.Fprintf(b, "ENTRY(_boot)\n\n")
	fmt.Fprintf(b, "SECTIONS\n{\n")
	fmt.Fprintf(b, "\t. = %#x;\n", cfg.Base)
	fmt.Fprintf(b, "\t%s = .;\n\n", scriptName(SymKernelStart))

	fmt.Fprintf(b, "\t.text : {\n")
	fmt.Fprintf(b, "\t\t%s = .;\n", scriptName(SymTextStart))
	fmt.Fprintf(b, "\t\t*(.text.init)\n")
	fmt.Fprintf(b, "\t\t*(.text .text.*)\n")
	fmt.Fprintf(b, "\t}\n")
	fmt.Fprintf(b, "\t. = ALIGN(%#x);\n", uint64(PageSize))
	fmt.Fprintf(b, "\t%s = .;\n\n", scriptName(SymTextEnd))

	fmt.Fprintf(b, "\t.rodata : {\n")
	fmt.Fprintf(b, "\t\t%s = .;\n", scriptName(SymRodataStart))
	fmt.Fprintf(b, "\t\t*(.rodata .rodata.*)\n")
	fmt.Fprintf(b, "\t}\n")
	fmt.Fprintf(b, "\t. = ALIGN(%#x);\n", uint64(PageSize))
	fmt.Fprintf(b, "\t%s = .;\n\n", scriptName(SymRodataEnd))

	fmt.Fprintf(b, "\t.data : {\n")
	fmt.Fprintf(b, "\t\t%s = .;\n", scriptName(SymDataStart))
	fmt.Fprintf(b, "\t\t%s = . + %#x;\n", scriptName(SymGlobalPointer), uint64(GpAnchorOffset))
	fmt.Fprintf(b, "\t\t*(.sdata .sdata.* .srodata .srodata.*)\n")
	fmt.Fprintf(b, "\t\t*(.data .data.* .got .got.*)\n")
	fmt.Fprintf(b, "\t}\n")
	fmt.Fprintf(b, "\t%s = .;\n\n", scriptName(SymDataEnd))

	fmt.Fprintf(b, "\t.tdata : {\n")
	fmt.Fprintf(b, "\t\t%s = .;\n", scriptName(SymTdataStart))
	fmt.Fprintf(b, "\t\t*(.tdata .tdata.* .tbss .tbss.*)\n")
	fmt.Fprintf(b, "\t}\n")
	fmt.Fprintf(b, "\t%s = .;\n\n", scriptName(SymTdataEnd))

	fmt.Fprintf(b, "\t.dynsym : ALIGN(8) {\n")
	fmt.Fprintf(b, "\t\t%s = .;\n", scriptName(SymDynSymStart))
	fmt.Fprintf(b, "\t\t*(.dynsym .dynstr .hash .gnu.hash)\n")
	fmt.Fprintf(b, "\t}\n")
	fmt.Fprintf(b, "\t%s = .;\n\n", scriptName(SymDynSymEnd))

	fmt.Fprintf(b, "\t.rela.dyn : ALIGN(8) {\n")
	fmt.Fprintf(b, "\t\t%s = .;\n", scriptName(SymRelDynStart))
	fmt.Fprintf(b, "\t\t*(.rela.dyn .rela.* .rel.* .dynamic)\n")
	fmt.Fprintf(b, "\t}\n")
	fmt.Fprintf(b, "\t%s = .;\n\n", scriptName(SymRelDynEnd))

	fmt.Fprintf(b, "\t. = ALIGN(%#x);\n", uint64(PageSize))
	fmt.Fprintf(b, "\t.bss : {\n")
	fmt.Fprintf(b, "\t\t%s = .;\n", scriptName(SymBssStart))
	fmt.Fprintf(b, "\t\t*(.bss .bss.* .sbss .sbss.*)\n")
	fmt.Fprintf(b, "\t}\n")
	fmt.Fprintf(b, "\t%s = .;\n\n", scriptName(SymBssEnd))

	fmt.Fprintf(b, "\t. = ALIGN(%#x);\n", uint64(PageSize))
	fmt.Fprintf(b, "\t.stack (NOLOAD) : {\n")
	fmt.Fprintf(b, "\t\t%s = .;\n", scriptName(SymStackStart))
	fmt.Fprintf(b, "\t\t. += %#x;\n", cfg.StackSize)
	fmt.Fprintf(b, "\t\t%s = .;\n", scriptName(SymStackEnd))
	fmt.Fprintf(b, "\t}\n\n")

	fmt.Fprintf(b, "\t. = ALIGN(%#x);\n", uint64(PageSize))
	fmt.Fprintf(b, "\t%s = .;\n\n", scriptName(SymKernelEnd))

	fmt.Fprintf(b, "\t/DISCARD/ : { %s }\n", discardPatterns(cfg.Discard))
	fmt.Fprintf(b, "}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func discardPatterns(patterns []string) string {
	parts := make([]string, 0, len(patterns))
	for _, pat := range patterns {
		parts = append(parts, fmt.Sprintf("*(%s)", pat))
	}
	return strings.Join(parts, " ")
}
