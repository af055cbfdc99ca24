package jsonld

import "testing"

func TestToRDFEmitsTypeAndPropertyQuads(t *testing.T) {
	expanded := []interface{}{
		map[string]interface{}{
			"@id":   "http://ex/alice",
			"@type": []interface{}{"http://ex/Person"},
			"http://ex/name": []interface{}{
				map[string]interface{}{"@value": "Alice"},
			},
		},
	}
	ds, err := ToRDF(expanded, ToRDFOptions{})
	if err != nil {
		t.Fatalf("ToRDF: %v", err)
	}
	quads := ds.Graphs[DefaultGraphName]
	if len(quads) != 2 {
		t.Fatalf("expected 2 quads (rdf:type + name), got %d: %#v", len(quads), quads)
	}
	var sawType, sawName bool
	for _, q := range quads {
		if q.Predicate.Value == rdfType {
			sawType = true
			if q.Object.(IRI).Value != "http://ex/Person" {
				t.Fatalf("rdf:type object = %v, want http://ex/Person", q.Object)
			}
		}
		if q.Predicate.Value == "http://ex/name" {
			sawName = true
			lit := q.Object.(Literal)
			if lit.Lexical != "Alice" {
				t.Fatalf("name literal = %q, want Alice", lit.Lexical)
			}
		}
	}
	if !sawType || !sawName {
		t.Fatalf("missing expected quads: sawType=%v sawName=%v", sawType, sawName)
	}
}

func TestToRDFListProducesRDFCollection(t *testing.T) {
	expanded := []interface{}{
		map[string]interface{}{
			"@id": "http://ex/s",
			"http://ex/p": []interface{}{
				map[string]interface{}{"@list": []interface{}{
					map[string]interface{}{"@value": float64(1)},
					map[string]interface{}{"@value": float64(2)},
				}},
			},
		},
	}
	ds, err := ToRDF(expanded, ToRDFOptions{})
	if err != nil {
		t.Fatalf("ToRDF: %v", err)
	}
	quads := ds.Graphs[DefaultGraphName]
	var firsts, rests int
	for _, q := range quads {
		switch q.Predicate.Value {
		case rdfFirst:
			firsts++
		case rdfRest:
			rests++
		}
	}
	if firsts != 2 || rests != 2 {
		t.Fatalf("expected 2 rdf:first and 2 rdf:rest quads for a 2-element list, got first=%d rest=%d", firsts, rests)
	}
}

func TestToRDFEmptyListIsRDFNil(t *testing.T) {
	expanded := []interface{}{
		map[string]interface{}{
			"@id": "http://ex/s",
			"http://ex/p": []interface{}{
				map[string]interface{}{"@list": []interface{}{}},
			},
		},
	}
	ds, err := ToRDF(expanded, ToRDFOptions{})
	if err != nil {
		t.Fatalf("ToRDF: %v", err)
	}
	quads := ds.Graphs[DefaultGraphName]
	if len(quads) != 1 {
		t.Fatalf("expected exactly one quad for an empty list, got %d", len(quads))
	}
	obj, ok := quads[0].Object.(IRI)
	if !ok || obj.Value != rdfNil {
		t.Fatalf("expected the empty list's object to be rdf:nil, got %#v", quads[0].Object)
	}
}

func TestCanonicalDoubleLexicalForm(t *testing.T) {
	cases := map[float64]string{
		1.0: "1.0E0",
		-2.5E10: "-2.5E10",
	}
	for in, want := range cases {
		if got := canonicalDouble(in); got != want {
			t.Errorf("canonicalDouble(%v) = %q, want %q", in, got, want)
		}
	}
}
