package layout

import "fmt"

// All planner failures are fatal build errors: the computation is
// deterministic, so a retry with the same inputs cannot succeed.

type UnknownSectionKindError struct {
	Section string
}

func (e *UnknownSectionKindError) Error() string {
	return fmt.Sprintf("unknown section kind: %s", e.Section)
}

type AlignmentViolationError struct {
	Section string
	Align   uint64
}

func (e *AlignmentViolationError) Error() string {
	return fmt.Sprintf(
		"alignment violation: section %s declares alignment %#x",
		e.Section, e.Align)
}

type OverlapError struct {
	A, B string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("overlap detected: sections %s and %s", e.A, e.B)
}
