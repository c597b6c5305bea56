package layout

import "rvkld/pkg/utils"

const PageSize = 0x1000

// protClass is the memory-protection class of a bucket. Adjacent
// buckets of different classes must not share a page, so the address
// assignment pads to a page boundary on every class change.
type protClass uint8

const (
	classCode protClass = iota
	classReadOnly
	classWritable
	classZero
)

// Placement positions a section inside its bucket without touching
// the section itself.
type Placement struct {
	Section *Section
	Offset  uint64
}

// Bucket is one region of the output image: the concatenation, in
// caller order, of all sections of one content kind.
type Bucket struct {
	Kind      ContentKind
	Name      string
	Addr      uint64
	Size      uint64
	AddrAlign uint64
	Members   []Placement
}

var bucketOrder = []ContentKind{
	ContentKindCode,
	ContentKindReadOnly,
	ContentKindSmallData,
	ContentKindData,
	ContentKindThreadData,
	ContentKindDynSymbols,
	ContentKindRelocations,
	ContentKindBss,
	ContentKindStack,
}

func bucketName(kind ContentKind) string {
	switch kind {
	case ContentKindCode:
		return ".text"
	case ContentKindReadOnly:
		return ".rodata"
	case ContentKindSmallData:
		return ".sdata"
	case ContentKindData:
		return ".data"
	case ContentKindThreadData:
		return ".tdata"
	case ContentKindDynSymbols:
		return ".dynsym"
	case ContentKindRelocations:
		return ".rela.dyn"
	case ContentKindBss:
		return ".bss"
	case ContentKindStack:
		return ".stack"
	}

	utils.Assert(false)
	return ""
}

func (b *Bucket) Class() protClass {
	switch b.Kind {
	case ContentKindCode:
		return classCode
	case ContentKindReadOnly:
		return classReadOnly
	case ContentKindBss, ContentKindStack:
		return classZero
	}
	// Small data, data, tdata and the dynamic metadata all live in
	// the writable region; the metadata buckets only demand 8-byte
	// alignment, not a fresh page.
	return classWritable
}

func (b *Bucket) isMetadata() bool {
	return b.Kind == ContentKindDynSymbols ||
		b.Kind == ContentKindRelocations
}

func newBucket(kind ContentKind) *Bucket {
	b := &Bucket{
		Kind:      kind,
		Name:      bucketName(kind),
		AddrAlign: 1,
	}
	if b.isMetadata() {
		b.AddrAlign = 8
	}
	return b
}

// computeSize lays the members out inside the bucket, each at its own
// declared alignment, and raises the bucket alignment to the largest
// member alignment.
func (b *Bucket) computeSize() error {
	offset := uint64(0)
	for i := range b.Members {
		sec := b.Members[i].Section
		if !utils.IsPowerOfTwo(sec.AddrAlign) || sec.AddrAlign > PageSize {
			return &AlignmentViolationError{
				Section: sec.Name,
				Align:   sec.AddrAlign,
			}
		}

		offset = utils.AlignTo(offset, sec.AddrAlign)
		b.Members[i].Offset = offset
		offset += sec.Size()

		if b.AddrAlign < sec.AddrAlign {
			b.AddrAlign = sec.AddrAlign
		}
	}

	b.Size = offset
	return nil
}

func (b *Bucket) End() uint64 {
	return b.Addr + b.Size
}
