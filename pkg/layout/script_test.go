package layout

import (
	"strings"
	"testing"
)

func TestWriteScript(t *testing.T) {
	b := &strings.Builder{}
	if err := WriteScript(NewConfig(), b); err != nil {
		t.Fatalf("WriteScript: %v", err)
	}
	script := b.String()

	for _, want := range []string{
		"OUTPUT_ARCH(riscv)",
		"ENTRY(_boot)",
		". = 0x80200000;",
		"__kernel_start = .;",
		"*(.text.init)",
		"__global_pointer$ = . + 0x800;",
		". += 0x2000;",
		"/DISCARD/ : { *(.eh_frame)",
		"__kernel_end = .;",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q", want)
		}
	}

	// entry code pattern must precede the general code pattern
	if strings.Index(script, "*(.text.init)") > strings.Index(script, "*(.text .text.*)") {
		t.Errorf("entry sections not placed first")
	}
}

func TestWriteScriptCustomConfig(t *testing.T) {
	cfg := NewConfig()
	cfg.Base = 0x80000000
	cfg.StackSize = 0x4000
	cfg.Discard = append(cfg.Discard, ".note.*")

	b := &strings.Builder{}
	if err := WriteScript(cfg, b); err != nil {
		t.Fatalf("WriteScript: %v", err)
	}
	script := b.String()

	for _, want := range []string{
		". = 0x80000000;",
		". += 0x4000;",
		"*(.note.*)",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q", want)
		}
	}
}

func TestWriteMap(t *testing.T) {
	l := mustCompute(t, NewConfig(), kernelSections())

	b := &strings.Builder{}
	if err := WriteMap(l, b); err != nil {
		t.Fatalf("WriteMap: %v", err)
	}
	out := b.String()

	for _, want := range []string{
		"image base 0x80200000",
		".text",
		".text.init",
		".rela.dyn",
		"kernel_start",
		"global_pointer_anchor",
		"stack_end",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("map missing %q", want)
		}
	}
}
