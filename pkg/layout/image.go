package layout

import "io"

// EmitFlat renders the raw image the firmware loader copies to the
// base address. Zero-initialized regions carry no file bytes, so the
// image ends at the last content-bearing byte.
func EmitFlat(l *Layout) []byte {
	size := uint64(0)
	for _, r := range l.Placements() {
		if r.Section.HasContents() && r.End-l.Base > size {
			size = r.End - l.Base
		}
	}

	buf := make([]byte, size)
	for _, r := range l.Placements() {
		if !r.Section.HasContents() {
			continue
		}
		copy(buf[r.Start-l.Base:], r.Section.Contents)
	}

	return buf
}

func WriteFlat(l *Layout, w io.Writer) error {
	_, err := w.Write(EmitFlat(l))
	return err
}
