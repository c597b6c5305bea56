package utils

import (
	"reflect"
	"testing"
)

func TestAlignTo(t *testing.T) {
	tests := []struct {
		val, align, want uint64
	}{
		{0, 0x1000, 0},
		{1, 0x1000, 0x1000},
		{0x1000, 0x1000, 0x1000},
		{0x1001, 0x1000, 0x2000},
		{7, 8, 8},
		{8, 8, 8},
		{9, 1, 9},
		{9, 0, 9},
	}

	for _, tt := range tests {
		if got := AlignTo(tt.val, tt.align); got != tt.want {
			t.Errorf("AlignTo(%#x, %#x) = %#x, want %#x",
				tt.val, tt.align, got, tt.want)
		}
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, val := range []uint64{1, 2, 4, 8, 0x1000, 1 << 40} {
		if !IsPowerOfTwo(val) {
			t.Errorf("IsPowerOfTwo(%#x) = false, want true", val)
		}
	}
	for _, val := range []uint64{0, 3, 6, 12, 0x1001} {
		if IsPowerOfTwo(val) {
			t.Errorf("IsPowerOfTwo(%#x) = true, want false", val)
		}
	}
}

func TestRemoveIf(t *testing.T) {
	got := RemoveIf([]int{1, 2, 3, 4, 5}, func(v int) bool {
		return v%2 == 0
	})
	if !reflect.DeepEqual(got, []int{1, 3, 5}) {
		t.Errorf("RemoveIf = %v, want [1 3 5]", got)
	}
}

func TestRemovePrefix(t *testing.T) {
	if s, ok := RemovePrefix("-lc", "-l"); !ok || s != "c" {
		t.Errorf("RemovePrefix(-lc, -l) = %q, %v", s, ok)
	}
	if s, ok := RemovePrefix("a.o", "-l"); ok || s != "a.o" {
		t.Errorf("RemovePrefix(a.o, -l) = %q, %v", s, ok)
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	type pair struct {
		A uint32
		B uint64
	}

	buf := make([]byte, 12)
	Write(buf, pair{A: 0xdeadbeef, B: 0x8020000000000000})

	got := Read[pair](buf)
	if got.A != 0xdeadbeef || got.B != 0x8020000000000000 {
		t.Errorf("round trip = %+v", got)
	}
}
