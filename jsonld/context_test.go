package jsonld

import "testing"

func TestInitialContextIsEmptyAndUnique(t *testing.T) {
	c1 := initialContext("")
	c2 := initialContext("")

	if c1.ProcessingMode != ProcessingMode11 {
		t.Fatalf("default processing mode = %q, want %q", c1.ProcessingMode, ProcessingMode11)
	}
	if len(c1.Terms) != 0 {
		t.Fatal("initial context must have no term definitions")
	}
	if c1.ID == c2.ID {
		t.Fatal("two initial contexts must not share an ID")
	}
}

func TestCtxWithTermDoesNotMutateOriginal(t *testing.T) {
	base := initialContext(ProcessingMode11)
	def := newTermDefinition()
	def.IRIMapping = "http://example.org/name"

	next := base.withTerm("name", def)

	if base.getTerm("name") != nil {
		t.Fatal("withTerm must not mutate the receiver")
	}
	if next.getTerm("name") == nil || next.getTerm("name").IRIMapping != "http://example.org/name" {
		t.Fatal("withTerm must return a snapshot carrying the new term")
	}
	if next.ID == base.ID {
		t.Fatal("withTerm must produce a fresh snapshot ID")
	}
}

func TestCtxCloneIsIndependent(t *testing.T) {
	base := initialContext(ProcessingMode11)
	base = base.withTerm("name", newTermDefinition())

	clone := base.clone()
	clone.Terms["other"] = newTermDefinition()

	if base.getTerm("other") != nil {
		t.Fatal("mutating a clone's Terms map must not affect the original")
	}
	if clone.getTerm("name") == nil {
		t.Fatal("clone must retain the original's term definitions")
	}
}

func TestHasProtectedTerms(t *testing.T) {
	base := initialContext(ProcessingMode11)
	if base.hasProtectedTerms() {
		t.Fatal("a fresh context has no protected terms")
	}

	protected := newTermDefinition()
	protected.Protected = true
	withProtected := base.withTerm("name", protected)
	if !withProtected.hasProtectedTerms() {
		t.Fatal("expected hasProtectedTerms() to report the protected term")
	}
}
