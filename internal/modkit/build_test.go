package modkit

import "testing"

func TestBuild_Defaults(t *testing.T) {
	t.Parallel()

	b := Build()
	if b.Name != "" {
		t.Fatalf("default Name = %q, want empty", b.Name)
	}
	if b.Ports != nil {
		t.Fatalf("default Ports non-nil")
	}
}

func TestBuild_WithOptions(t *testing.T) {
	t.Parallel()

	type ports struct {
		X int
		Y string
	}
	p := ports{X: 7, Y: "ok"}

	b := Build(
		WithName("segment"),
		WithPorts[ports](p),
	)

	if b.Name != "segment" {
		t.Fatalf("Name = %q", b.Name)
	}
	if got, ok := b.Ports.(ports); !ok || got != p {
		t.Fatalf("Ports mismatch after Build")
	}
}

func TestDeps_ZeroOK(t *testing.T) {
	t.Parallel()

	var d Deps
	if !d.ZeroOK() {
		t.Fatalf("zero Deps must be usable in tests")
	}
}
