package layout

import (
	"fmt"
	"io"
	"strings"
)

// WriteMap renders a human readable listing of the computed layout,
// one line per bucket and member section, followed by the boundary
// symbol table.
func WriteMap(l *Layout, w io.Writer) error {
	b := &strings.Builder{}

	fmt.Fprintf(b, "image base %#x\n", l.Base)
	fmt.Fprintf(b, "image end  %#x\n\n", l.End)

	for _, bkt := range l.Buckets {
		fmt.Fprintf(b, "%-12s %#010x %#10x  align %#x\n",
			bkt.Name, bkt.Addr, bkt.Size, bkt.AddrAlign)
		for _, m := range bkt.Members {
			sec := m.Section
			fmt.Fprintf(b, "    %-20s %#010x %#10x\n",
				sec.Name, bkt.Addr+m.Offset, sec.Size())
		}
	}

	fmt.Fprintf(b, "\nsymbols:\n")
	for _, sym := range l.Symbols {
		fmt.Fprintf(b, "    %-22s %#010x\n", sym.Name, sym.Addr)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
