package layout

import (
	"path"
	"rvkld/pkg/utils"
	"strings"
)

type ContentKind = uint8

const (
	ContentKindNone ContentKind = iota
	ContentKindCode
	ContentKindReadOnly
	ContentKindSmallData
	ContentKindData
	ContentKindThreadData
	ContentKindDynSymbols
	ContentKindRelocations
	ContentKindBss
	ContentKindStack
)

type ContentKindStringer struct {
	ContentKind
}

func (c ContentKindStringer) String() string {
	switch c.ContentKind {
	case ContentKindCode:
		return "code"
	case ContentKindReadOnly:
		return "read-only"
	case ContentKindSmallData:
		return "small-data"
	case ContentKindData:
		return "data"
	case ContentKindThreadData:
		return "thread-data"
	case ContentKindDynSymbols:
		return "dyn-symbols"
	case ContentKindRelocations:
		return "relocations"
	case ContentKindBss:
		return "bss"
	case ContentKindStack:
		return "stack"
	}

	utils.Assert(c.ContentKind == ContentKindNone)
	return "none"
}

// Section is a named byte range handed over by the compile step. The
// planner positions sections but never edits their contents.
type Section struct {
	Name      string
	Kind      ContentKind
	Contents  []byte
	AddrAlign uint64
}

func NewSection(name string, contents []byte, addrAlign uint64) *Section {
	if addrAlign == 0 {
		addrAlign = 1
	}

	return &Section{
		Name:      name,
		Kind:      ClassifyName(name),
		Contents:  contents,
		AddrAlign: addrAlign,
	}
}

func (s *Section) Size() uint64 {
	return uint64(len(s.Contents))
}

// HasContents reports whether the section carries loaded bytes, as
// opposed to a zero-initialized range.
func (s *Section) HasContents() bool {
	switch s.Kind {
	case ContentKindBss, ContentKindStack:
		return false
	}
	return true
}

var kindPrefixes = []struct {
	prefix string
	kind   ContentKind
}{
	{".text.", ContentKindCode},
	{".rodata.", ContentKindReadOnly},
	{".srodata.", ContentKindSmallData},
	{".sdata.", ContentKindSmallData},
	{".data.", ContentKindData},
	{".got.", ContentKindData},
	{".tdata.", ContentKindThreadData},
	{".tbss.", ContentKindThreadData},
	{".rela.", ContentKindRelocations},
	{".rel.", ContentKindRelocations},
	{".sbss.", ContentKindBss},
	{".bss.", ContentKindBss},
}

// ClassifyName maps an input section name to the content-kind bucket
// it is placed in. Returns ContentKindNone for names outside the
// layout contract.
func ClassifyName(name string) ContentKind {
	switch name {
	case ".dynsym", ".dynstr", ".hash", ".gnu.hash":
		return ContentKindDynSymbols
	case ".dynamic":
		return ContentKindRelocations
	}

	for _, p := range kindPrefixes {
		stem := p.prefix[:len(p.prefix)-1]
		if name == stem || strings.HasPrefix(name, p.prefix) {
			return p.kind
		}
	}

	return ContentKindNone
}

// DefaultDiscard drops unwind metadata; there is no unwinder in the
// kernel to consume it.
var DefaultDiscard = []string{
	".eh_frame", ".eh_frame_hdr", ".eh_frame.*",
	".gcc_except_table", ".gcc_except_table.*",
}

func MatchesDiscard(name string, patterns []string) bool {
	for _, pat := range patterns {
		if ok, err := path.Match(pat, name); err == nil && ok {
			return true
		}
	}
	return false
}
