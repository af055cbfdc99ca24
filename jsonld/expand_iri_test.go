package jsonld

import (
	"context"
	"testing"
)

// Protected term redefinition fails unless overriding is allowed.
func TestProtectedTermRedefinitionFails(t *testing.T) {
	p := NewProcessor(nil)
	local := []interface{}{
		map[string]interface{}{"@protected": true, "x": "http://ex/x"},
		map[string]interface{}{"x": "http://ex/y"},
	}
	_, err := p.resolver.ProcessContext(context.Background(), initialContext(ProcessingMode11), local, "", false)
	if err == nil {
		t.Fatal("expected protected-term-redefinition error")
	}
	if !Is(err, ErrProtectedTermRedefinition) {
		t.Fatalf("error = %v, want kind %s", err, ErrProtectedTermRedefinition)
	}
}

func TestProtectedTermRedefinitionSucceedsWithOverride(t *testing.T) {
	p := NewProcessor(nil)
	local := []interface{}{
		map[string]interface{}{"@protected": true, "x": "http://ex/x"},
	}
	active, err := p.resolver.ProcessContext(context.Background(), initialContext(ProcessingMode11), local, "", false)
	if err != nil {
		t.Fatalf("ProcessContext: %v", err)
	}
	active, err = p.resolver.ProcessContext(context.Background(), active, map[string]interface{}{"x": "http://ex/y"}, "", true)
	if err != nil {
		t.Fatalf("ProcessContext with override_protected: %v", err)
	}
	if active.getTerm("x").IRIMapping != "http://ex/y" {
		t.Fatalf("x mapping = %q, want http://ex/y", active.getTerm("x").IRIMapping)
	}
}

func TestExpandIRIUsesVocabMapping(t *testing.T) {
	p := NewProcessor(nil)
	local := map[string]interface{}{"@vocab": "http://ex/"}
	active, err := p.resolver.ProcessContext(context.Background(), initialContext(ProcessingMode11), local, "", false)
	if err != nil {
		t.Fatalf("ProcessContext: %v", err)
	}
	iri, err := ExpandIRI(active, "name", false, true)
	if err != nil {
		t.Fatalf("ExpandIRI: %v", err)
	}
	if iri != "http://ex/name" {
		t.Fatalf("ExpandIRI(name) = %q, want http://ex/name", iri)
	}
}

func TestExpandIRILeadingColonNeverTreatedAsPrefix(t *testing.T) {
	active := initialContext(ProcessingMode11)
	iri, err := ExpandIRI(active, ":suffix", false, false)
	if err != nil {
		t.Fatalf("ExpandIRI: %v", err)
	}
	if iri != ":suffix" {
		t.Fatalf("ExpandIRI(%q) = %q, a leading colon must not be treated as a prefix separator", ":suffix", iri)
	}
}

func TestCompactIRIPicksShortestTerm(t *testing.T) {
	p := NewProcessor(nil)
	local := map[string]interface{}{
		"name":  "http://ex/name",
		"short": "http://ex/name",
	}
	active, err := p.resolver.ProcessContext(context.Background(), initialContext(ProcessingMode11), local, "", false)
	if err != nil {
		t.Fatalf("ProcessContext: %v", err)
	}
	term := CompactIRI(active, "http://ex/name", nil, true, false)
	if term != "name" {
		t.Fatalf("CompactIRI returned %q, want the shortest alias \"name\"", term)
	}
}
