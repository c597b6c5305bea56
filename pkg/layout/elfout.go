package layout

import (
	"debug/elf"
	"io"
	"rvkld/pkg/utils"
)

// The image body starts one page into the file so that every PT_LOAD
// keeps p_offset congruent to p_vaddr modulo the page size.
const elfBodyOffset = PageSize

func ToPhdrFlags(b *Bucket) uint32 {
	switch b.Class() {
	case classCode:
		return uint32(elf.PF_R | elf.PF_X)
	case classReadOnly:
		return uint32(elf.PF_R)
	}
	return uint32(elf.PF_R | elf.PF_W)
}

func (b *Bucket) isZero() bool {
	return b.Class() == classZero
}

func CreatePhdrs(l *Layout) []ProgramHeader {
	vec := make([]ProgramHeader, 0)

	define := func(typ uint64, flags uint32, minAlign uint64, b *Bucket) {
		vec = append(vec, ProgramHeader{})
		phdr := &vec[len(vec)-1]
		phdr.Type = uint32(typ)
		phdr.Flags = flags
		phdr.Align = minAlign
		if b.AddrAlign > minAlign {
			phdr.Align = b.AddrAlign
		}
		phdr.Offset = b.Addr - l.Base + elfBodyOffset
		if b.isZero() {
			phdr.FileSize = 0
		} else {
			phdr.FileSize = b.Size
		}
		phdr.VAddr = b.Addr
		phdr.PAddr = b.Addr
		phdr.MemSize = b.Size
	}

	push := func(b *Bucket) {
		phdr := &vec[len(vec)-1]
		if phdr.Align < b.AddrAlign {
			phdr.Align = b.AddrAlign
		}
		if !b.isZero() {
			phdr.FileSize = b.End() - phdr.VAddr
		}
		phdr.MemSize = b.End() - phdr.VAddr
	}

	chunks := make([]*Bucket, 0, len(l.Buckets))
	for _, b := range l.Buckets {
		if b.Size > 0 {
			chunks = append(chunks, b)
		}
	}

	end := len(chunks)
	for i := 0; i < end; {
		first := chunks[i]
		i++

		flags := ToPhdrFlags(first)
		define(uint64(elf.PT_LOAD), flags, PageSize, first)

		if !first.isZero() {
			for i < end && !chunks[i].isZero() && ToPhdrFlags(chunks[i]) == flags {
				push(chunks[i])
				i++
			}
		}

		for i < end && chunks[i].isZero() && ToPhdrFlags(chunks[i]) == flags {
			push(chunks[i])
			i++
		}
	}

	if tdata := l.Bucket(ContentKindThreadData); tdata != nil && tdata.Size > 0 {
		define(uint64(elf.PT_TLS), ToPhdrFlags(tdata), 1, tdata)
	}

	return vec
}

// EmitELF renders the layout as a minimal executable ELF, which is
// what qemu -kernel loads. Only program headers are emitted; a boot
// image has no use for a section header table.
func EmitELF(l *Layout) []byte {
	phdrs := CreatePhdrs(l)
	utils.Assert(uint64(ELFHeaderSize)+
		uint64(len(phdrs))*uint64(ProgramHeaderSize) <= elfBodyOffset)

	flat := EmitFlat(l)
	buf := make([]byte, elfBodyOffset+uint64(len(flat)))

	entry, ok := l.Symbol(SymTextStart)
	utils.Assert(ok)

	ehdr := Header64{}
	WriteMagic(ehdr.Ident[:])
	ehdr.Ident[elf.EI_CLASS] = uint8(elf.ELFCLASS64)
	ehdr.Ident[elf.EI_DATA] = uint8(elf.ELFDATA2LSB)
	ehdr.Ident[elf.EI_VERSION] = uint8(elf.EV_CURRENT)
	ehdr.Ident[elf.EI_OSABI] = 0
	ehdr.Ident[elf.EI_ABIVERSION] = 0

	ehdr.Type = uint16(elf.ET_EXEC)
	ehdr.Machine = uint16(elf.EM_RISCV)
	ehdr.Version = uint32(elf.EV_CURRENT)
	ehdr.Entry = entry
	ehdr.Phoff = uint64(ELFHeaderSize)
	ehdr.Ehsize = uint16(ELFHeaderSize)
	ehdr.Phentsize = uint16(ProgramHeaderSize)
	ehdr.Phnum = uint16(len(phdrs))

	utils.Write(buf, ehdr)
	utils.Write(buf[ELFHeaderSize:], phdrs)
	copy(buf[elfBodyOffset:], flat)

	return buf
}

func WriteELF(l *Layout, w io.Writer) error {
	_, err := w.Write(EmitELF(l))
	return err
}
