package layout

import (
	"rvkld/pkg/utils"
	"strconv"
	"strings"
	"unsafe"
)

type ArHeader struct {
	Name [16]byte
	Date [12]byte
	Uid  [6]byte
	Gid  [6]byte
	Mode [8]byte
	Size [10]byte
	Fmag [2]byte
}

const ArHeaderSize = unsafe.Sizeof(ArHeader{})

func (a *ArHeader) hasPrefix(s string) bool {
	return strings.HasPrefix(string(a.Name[:]), s)
}

func (a *ArHeader) IsStrtab() bool {
	return a.hasPrefix("// ")
}

func (a *ArHeader) IsSymtab() bool {
	return a.hasPrefix("/ ") || a.hasPrefix("/SYM64/ ")
}

func (a *ArHeader) GetSize() int {
	size, err := strconv.Atoi(strings.TrimSpace(string(a.Size[:])))
	utils.MustNo(err)
	return size
}

func (a *ArHeader) ReadName(strTab []byte) string {
	// long filename, the name field holds an offset into the strtab
	if a.hasPrefix("/") {
		start, err := strconv.Atoi(
			strings.TrimSpace(string(a.Name[1:])))
		utils.MustNo(err)
		end := start + strings.Index(string(strTab[start:]), "/\n")
		return string(strTab[start:end])
	}

	// short filename
	end := strings.Index(string(a.Name[:]), "/")
	utils.Assert(end != -1)
	return string(a.Name[:end])
}

func ReadArchiveMembers(file *File) []*File {
	utils.Assert(GetFileType(file.Contents) == FileTypeArchive)

	// skip 8 bytes "!<arch>\n"
	pos := 8

	var strTab []byte
	var files []*File
	// Members of odd length are padded with "\n" to a 2-byte boundary
	for len(file.Contents)-pos > 1 {
		if pos%2 == 1 {
			pos++
		}

		hdr := utils.Read[ArHeader](file.Contents[pos:])
		dataStart := pos + int(ArHeaderSize)
		pos = dataStart + hdr.GetSize()
		dataEnd := pos
		contents := file.Contents[dataStart:dataEnd]

		if hdr.IsSymtab() {
			continue
		} else if hdr.IsStrtab() {
			strTab = contents
			continue
		}

		files = append(files, &File{
			Name:     hdr.ReadName(strTab),
			Contents: contents,
			Parent:   file,
		})
	}

	return files
}
