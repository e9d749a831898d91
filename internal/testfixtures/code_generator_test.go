package testfixtures

import "testing"

func TestCodeGeneratorProducesSequentialCodes(t *testing.T) {
	gen := NewCodeGenerator()

	first := gen.Next()
	second := gen.Next()

	if first != "000001" || second != "000002" {
		t.Fatalf("unexpected codes: %q, %q", first, second)
	}
}

func TestCodeGeneratorCanReset(t *testing.T) {
	gen := NewCodeGenerator()
	_ = gen.Next()
	gen.SetCounter(41)

	if next := gen.Next(); next != "000042" {
		t.Fatalf("expected 000042 after reset, got %q", next)
	}
}
