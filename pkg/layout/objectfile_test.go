package layout

import (
	"bytes"
	"debug/elf"
	"fmt"
	"rvkld/pkg/utils"
	"testing"
)

// buildObject assembles a minimal riscv64 relocatable in memory:
// .text (8 bytes), .bss (16 bytes nobits) and a non-alloc .comment.
func buildObject() []byte {
	shstrtab := []byte("\x00.text\x00.bss\x00.comment\x00.shstrtab\x00")
	textData := []byte{0x93, 0x00, 0x00, 0x00, 0x13, 0x01, 0x01, 0xff}

	const (
		textOff    = 64
		commentOff = 72
		strtabOff  = 76
		shoff      = 112
	)
	buf := make([]byte, shoff+5*int(SectionHeaderSize))

	var ident [16]byte
	copy(ident[:], "\x7fELF")
	ident[elf.EI_CLASS] = uint8(elf.ELFCLASS64)
	ident[elf.EI_DATA] = uint8(elf.ELFDATA2LSB)
	ident[elf.EI_VERSION] = uint8(elf.EV_CURRENT)

	utils.Write(buf, Header64{
		Ident:     ident,
		Type:      uint16(elf.ET_REL),
		Machine:   uint16(elf.EM_RISCV),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     shoff,
		Ehsize:    uint16(ELFHeaderSize),
		Shentsize: uint16(SectionHeaderSize),
		Shnum:     5,
		Shstrndx:  4,
	})
	copy(buf[textOff:], textData)
	copy(buf[commentOff:], "gcc\x00")
	copy(buf[strtabOff:], shstrtab)

	write := func(idx int, hdr SectionHeader) {
		utils.Write(buf[shoff+idx*int(SectionHeaderSize):], hdr)
	}
	write(1, SectionHeader{
		Name:      1, // .text
		Type:      uint32(elf.SHT_PROGBITS),
		Flags:     uint64(elf.SHF_ALLOC | elf.SHF_EXECINSTR),
		Offset:    textOff,
		Size:      8,
		Addralign: 4,
	})
	write(2, SectionHeader{
		Name:      7, // .bss
		Type:      uint32(elf.SHT_NOBITS),
		Flags:     uint64(elf.SHF_ALLOC | elf.SHF_WRITE),
		Offset:    commentOff,
		Size:      16,
		Addralign: 8,
	})
	write(3, SectionHeader{
		Name:      12, // .comment
		Type:      uint32(elf.SHT_PROGBITS),
		Offset:    commentOff,
		Size:      4,
		Addralign: 1,
	})
	write(4, SectionHeader{
		Name:      21, // .shstrtab
		Type:      uint32(elf.SHT_STRTAB),
		Offset:    strtabOff,
		Size:      uint64(len(shstrtab)),
		Addralign: 1,
	})

	return buf
}

func TestObjectFileCollectSections(t *testing.T) {
	contents := buildObject()

	if GetFileType(contents) != FileTypeObject {
		t.Fatalf("not detected as an object")
	}
	if GetMachineTypeFromContents(contents) != MachineTypeRISCV64 {
		t.Fatalf("not detected as riscv64")
	}

	obj := NewObjectFile(&File{Name: "test.o", Contents: contents})
	secs := obj.CollectSections()

	if len(secs) != 2 {
		t.Fatalf("got %d sections, want 2 (non-alloc skipped)", len(secs))
	}

	text := secs[0]
	if text.Name != ".text" || text.Kind != ContentKindCode {
		t.Errorf("first section = %s (%s)", text.Name,
			ContentKindStringer{text.Kind})
	}
	if text.AddrAlign != 4 || text.Size() != 8 {
		t.Errorf(".text align %d size %d", text.AddrAlign, text.Size())
	}
	if !bytes.Equal(text.Contents, contents[64:72]) {
		t.Errorf(".text contents = % x", text.Contents)
	}

	bss := secs[1]
	if bss.Name != ".bss" || bss.Kind != ContentKindBss {
		t.Errorf("second section = %s", bss.Name)
	}
	if bss.Size() != 16 || bss.HasContents() {
		t.Errorf(".bss size %d", bss.Size())
	}
}

func TestObjectSectionsThroughPlanner(t *testing.T) {
	obj := NewObjectFile(&File{Name: "test.o", Contents: buildObject()})

	l := mustCompute(t, NewConfig(), obj.CollectSections())

	if got := symbol(t, l, SymTextStart); got != DefaultBase {
		t.Errorf("text_start = %#x", got)
	}
	bss := l.Bucket(ContentKindBss)
	if bss.Size != 16 || bss.Addr%PageSize != 0 {
		t.Errorf("bss at %#x size %#x", bss.Addr, bss.Size)
	}
}

func arMember(name string, data []byte) []byte {
	hdr := fmt.Sprintf("%-16s%-12d%-6d%-6d%-8s%-10d`\n",
		name+"/", 0, 0, 0, "644", len(data))
	return append([]byte(hdr), data...)
}

func TestReadArchiveMembers(t *testing.T) {
	obj := buildObject()

	ar := []byte("!<arch>\n")
	ar = append(ar, arMember("a.o", obj)...)
	if len(ar)%2 == 1 {
		ar = append(ar, '\n')
	}
	ar = append(ar, arMember("b.o", obj)...)

	if GetFileType(ar) != FileTypeArchive {
		t.Fatalf("not detected as an archive")
	}

	files := ReadArchiveMembers(&File{Name: "libk.a", Contents: ar})
	if len(files) != 2 {
		t.Fatalf("got %d members, want 2", len(files))
	}
	if files[0].Name != "a.o" || files[1].Name != "b.o" {
		t.Errorf("member names = %s, %s", files[0].Name, files[1].Name)
	}
	if !bytes.Equal(files[0].Contents, obj) {
		t.Errorf("member contents corrupted")
	}

	objs := ReadFile(&File{Name: "libk.a", Contents: ar})
	if len(objs) != 2 {
		t.Fatalf("ReadFile extracted %d objects", len(objs))
	}
}

func TestPromoteBootSections(t *testing.T) {
	sections := []*Section{
		sec(".rodata", 8, 8),
		sec(".text", 8, 4),
		sec(".text.init", 8, 4),
	}

	ordered := PromoteBootSections(sections)
	if ordered[0].Name != ".text.init" {
		t.Errorf("first section = %s, want .text.init", ordered[0].Name)
	}
	if ordered[1].Name != ".rodata" || ordered[2].Name != ".text" {
		t.Errorf("relative order of remaining sections not preserved")
	}
}
