package layout

import "debug/elf"

type ObjectFile struct {
	InputFile
}

func NewObjectFile(file *File) *ObjectFile {
	o := &ObjectFile{InputFile: NewInputFile(file)}
	return o
}

// CollectSections extracts the loadable sections in header order as
// planner inputs. Zero-initialized sections keep their size through a
// zeroed contents slice; nothing from them is written to the image.
func (o *ObjectFile) CollectSections() []*Section {
	secs := make([]*Section, 0)

	for i := 1; i < len(o.Sections); i++ {
		shdr := &o.Sections[i]
		if shdr.Flags&uint64(elf.SHF_ALLOC) == 0 {
			continue
		}

		var contents []byte
		if shdr.Type == uint32(elf.SHT_NOBITS) {
			contents = make([]byte, shdr.Size)
		} else {
			contents = o.GetBytesFromShdr(shdr)
		}

		name := GetNameFromTable(o.StrTable, shdr.Name)
		secs = append(secs, NewSection(name, contents, shdr.Addralign))
	}

	return secs
}
