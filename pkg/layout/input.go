package layout

import (
	"rvkld/pkg/utils"
	"strings"
)

// ReadInputFiles turns the non-option command line arguments into the
// planner's input section list. Sections keep object order, except
// that the boot entry sections are promoted to the front of the list
// so they land first in the code bucket.
func ReadInputFiles(libraryPaths, remaining []string) []*Section {
	objs := make([]*ObjectFile, 0)

	for _, arg := range remaining {
		var ok bool

		if arg, ok = utils.RemovePrefix(arg, "-l"); ok {
			objs = append(objs, ReadFile(FindLibrary(libraryPaths, arg))...)
		} else {
			objs = append(objs, ReadFile(MustNewFile(arg))...)
		}
	}

	sections := make([]*Section, 0)
	for _, obj := range objs {
		sections = append(sections, obj.CollectSections()...)
	}

	return PromoteBootSections(sections)
}

func ReadFile(file *File) []*ObjectFile {
	ft := GetFileType(file.Contents)

	switch ft {
	case FileTypeObject:
		return []*ObjectFile{CreateObjectFile(file)}
	case FileTypeArchive:
		objs := make([]*ObjectFile, 0)
		for _, child := range ReadArchiveMembers(file) {
			utils.Assert(GetFileType(child.Contents) == FileTypeObject)
			objs = append(objs, CreateObjectFile(child))
		}
		return objs
	default:
		utils.Fatal("unknown file type")
		return nil
	}
}

func CreateObjectFile(file *File) *ObjectFile {
	mt := GetMachineTypeFromContents(file.Contents)
	if mt != MachineTypeRISCV64 {
		utils.Fatal("incompatible file type")
	}

	return NewObjectFile(file)
}

// PromoteBootSections moves .text.init to the front. The entry code
// must be the first bytes of the image because firmware jumps to the
// load address itself.
func PromoteBootSections(sections []*Section) []*Section {
	isBoot := func(sec *Section) bool {
		return sec.Name == ".text.init" ||
			strings.HasPrefix(sec.Name, ".text.init.")
	}

	ordered := make([]*Section, 0, len(sections))
	for _, sec := range sections {
		if isBoot(sec) {
			ordered = append(ordered, sec)
		}
	}
	for _, sec := range sections {
		if !isBoot(sec) {
			ordered = append(ordered, sec)
		}
	}

	return ordered
}
