package layout

import "rvkld/pkg/utils"

const (
	// Fixed load address of the firmware contract: OpenSBI fw_jump
	// transfers control here.
	DefaultBase = 0x80200000

	// Boot stack used by the entry code until the kernel switches to
	// its own stack. Existing boot code expects exactly 8 KiB.
	DefaultStackSize = 0x2000

	// The global pointer is anchored a fixed 0x800 bytes into the
	// small-data window so that 12-bit signed offsets reach both ways.
	GpAnchorOffset = 0x800
)

// Canonical boundary symbol names. Boot assembly binds to these by
// name, so they are part of the output contract.
const (
	SymKernelStart   = "kernel_start"
	SymTextStart     = "text_start"
	SymTextEnd       = "text_end"
	SymRodataStart   = "rodata_start"
	SymRodataEnd     = "rodata_end"
	SymGlobalPointer = "global_pointer_anchor"
	SymDataStart     = "data_start"
	SymDataEnd       = "data_end"
	SymTdataStart    = "tdata_start"
	SymTdataEnd      = "tdata_end"
	SymDynSymStart   = "dyn_sym_start"
	SymDynSymEnd     = "dyn_sym_end"
	SymRelDynStart   = "rel_dyn_start"
	SymRelDynEnd     = "rel_dyn_end"
	SymBssStart      = "bss_start"
	SymBssEnd        = "bss_end"
	SymStackStart    = "stack_start"
	SymStackEnd      = "stack_end"
	SymKernelEnd     = "kernel_end"
)

type Config struct {
	Base      uint64
	StackSize uint64
	Discard   []string
}

func NewConfig() Config {
	return Config{
		Base:      DefaultBase,
		StackSize: DefaultStackSize,
		Discard:   DefaultDiscard,
	}
}

type Symbol struct {
	Name string
	Addr uint64
}

// SectionRange is one placed section in the final image.
type SectionRange struct {
	Section *Section
	Start   uint64
	End     uint64
}

// Layout is the computed image: buckets in canonical order with
// absolute addresses, plus the boundary symbol table. It is an
// immutable value; downstream emission steps only read it.
type Layout struct {
	Base    uint64
	End     uint64
	Buckets []*Bucket
	Symbols []Symbol

	symtab map[string]uint64
}

func (l *Layout) Symbol(name string) (uint64, bool) {
	addr, ok := l.symtab[name]
	return addr, ok
}

func (l *Layout) Bucket(kind ContentKind) *Bucket {
	for _, b := range l.Buckets {
		if b.Kind == kind {
			return b
		}
	}
	return nil
}

// Placements flattens the layout into (section, start, end) ranges in
// address order.
func (l *Layout) Placements() []SectionRange {
	ranges := make([]SectionRange, 0)
	for _, b := range l.Buckets {
		for _, m := range b.Members {
			start := b.Addr + m.Offset
			ranges = append(ranges, SectionRange{
				Section: m.Section,
				Start:   start,
				End:     start + m.Section.Size(),
			})
		}
	}
	return ranges
}

// Compute produces the image layout for the given input sections: a
// pure function of its arguments, invoked once per build. Sections
// keep their caller order inside each bucket; the planner only places
// buckets.
func Compute(cfg Config, sections []*Section) (*Layout, error) {
	if cfg.Base%PageSize != 0 {
		return nil, &AlignmentViolationError{
			Section: "<base address>",
			Align:   cfg.Base,
		}
	}
	if cfg.StackSize == 0 || cfg.StackSize%PageSize != 0 {
		return nil, &AlignmentViolationError{
			Section: "<boot stack>",
			Align:   cfg.StackSize,
		}
	}

	buckets, err := binSections(cfg, sections)
	if err != nil {
		return nil, err
	}

	for _, b := range buckets {
		if err := b.computeSize(); err != nil {
			return nil, err
		}
	}

	// The boot stack is a reservation, not an input section. Page
	// aligned so the class change away from it never splits a page.
	stack := buckets[len(buckets)-1]
	utils.Assert(stack.Kind == ContentKindStack)
	stack.Size = cfg.StackSize
	stack.AddrAlign = PageSize

	end := assignAddresses(cfg.Base, buckets)

	l := &Layout{
		Base:    cfg.Base,
		End:     end,
		Buckets: buckets,
	}
	l.buildSymbols()

	if err := l.checkOverlap(); err != nil {
		return nil, err
	}

	return l, nil
}

func binSections(cfg Config, sections []*Section) ([]*Bucket, error) {
	buckets := make([]*Bucket, 0, len(bucketOrder))
	byKind := make(map[ContentKind]*Bucket)
	for _, kind := range bucketOrder {
		b := newBucket(kind)
		buckets = append(buckets, b)
		byKind[kind] = b
	}

	for _, sec := range sections {
		if MatchesDiscard(sec.Name, cfg.Discard) {
			continue
		}

		b, ok := byKind[sec.Kind]
		if !ok || sec.Kind == ContentKindStack {
			return nil, &UnknownSectionKindError{Section: sec.Name}
		}
		b.Members = append(b.Members, Placement{Section: sec})
	}

	return buckets, nil
}

// assignAddresses walks the buckets in canonical order from the base
// address, padding to a page boundary whenever the protection class
// changes. Empty buckets collapse onto the start of the following
// bucket. Returns the page-aligned end of the image.
func assignAddresses(base uint64, buckets []*Bucket) uint64 {
	addr := base
	haveLast := false
	var lastClass protClass

	for _, b := range buckets {
		if b.Size == 0 {
			continue
		}

		if haveLast && b.Class() != lastClass {
			addr = utils.AlignTo(addr, PageSize)
		}
		addr = utils.AlignTo(addr, b.AddrAlign)

		b.Addr = addr
		addr += b.Size

		lastClass = b.Class()
		haveLast = true
	}

	end := utils.AlignTo(addr, PageSize)

	// Degenerate empty buckets resolve to the following bucket start.
	next := end
	for i := len(buckets) - 1; i >= 0; i-- {
		if buckets[i].Size == 0 {
			buckets[i].Addr = next
		} else {
			next = buckets[i].Addr
		}
	}

	return end
}

func (l *Layout) buildSymbols() {
	bucket := func(kind ContentKind) *Bucket {
		b := l.Bucket(kind)
		utils.Assert(b != nil)
		return b
	}

	text := bucket(ContentKindCode)
	rodata := bucket(ContentKindReadOnly)
	sdata := bucket(ContentKindSmallData)
	_ = bucket(ContentKindData)
	tdata := bucket(ContentKindThreadData)
	dynsym := bucket(ContentKindDynSymbols)
	reldyn := bucket(ContentKindRelocations)
	bss := bucket(ContentKindBss)
	stack := bucket(ContentKindStack)

	// A bucket's end symbol is the next bucket's start, so padding
	// belongs to the region it closes and the ranges tile the image.
	l.Symbols = []Symbol{
		{SymKernelStart, l.Base},
		{SymTextStart, text.Addr},
		{SymTextEnd, rodata.Addr},
		{SymRodataStart, rodata.Addr},
		{SymRodataEnd, sdata.Addr},
		{SymGlobalPointer, sdata.Addr + GpAnchorOffset},
		{SymDataStart, sdata.Addr},
		{SymDataEnd, tdata.Addr},
		{SymTdataStart, tdata.Addr},
		{SymTdataEnd, dynsym.Addr},
		{SymDynSymStart, dynsym.Addr},
		{SymDynSymEnd, reldyn.Addr},
		{SymRelDynStart, reldyn.Addr},
		{SymRelDynEnd, bss.Addr},
		{SymBssStart, bss.Addr},
		{SymBssEnd, stack.Addr},
		{SymStackStart, stack.Addr},
		{SymStackEnd, stack.Addr + stack.Size},
		{SymKernelEnd, l.End},
	}

	l.symtab = make(map[string]uint64, len(l.Symbols))
	for _, sym := range l.Symbols {
		l.symtab[sym.Name] = sym.Addr
	}
}

// checkOverlap is a defensive invariant check: emitted sections must
// tile the image without overlapping. A failure here is a planner
// bug, not bad input.
func (l *Layout) checkOverlap() error {
	prevEnd := l.Base
	prevName := "<image base>"

	for _, r := range l.Placements() {
		if r.Start < prevEnd {
			return &OverlapError{A: prevName, B: r.Section.Name}
		}
		prevEnd = r.End
		prevName = r.Section.Name
	}

	if prevEnd > l.End {
		return &OverlapError{A: prevName, B: "<image end>"}
	}
	return nil
}
