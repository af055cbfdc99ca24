package jsonld

import (
	"strings"
	"testing"
)

func TestParseNQuadsBasic(t *testing.T) {
	input := `<http://example.org/s> <http://example.org/p> "o" .
<http://example.org/s> <http://example.org/p> <http://example.org/o2> <http://example.org/g> .
`
	ds, err := ParseNQuads(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseNQuads: %v", err)
	}
	if len(ds.Graphs[DefaultGraphName]) != 1 {
		t.Fatalf("expected 1 default-graph quad, got %d", len(ds.Graphs[DefaultGraphName]))
	}
	if len(ds.Graphs["http://example.org/g"]) != 1 {
		t.Fatalf("expected 1 quad in the named graph")
	}
}

func TestParseNQuadsLiteralWithLanguage(t *testing.T) {
	ds, err := datasetFromNQuads(`<http://example.org/s> <http://example.org/p> "hello"@EN-us .` + "\n")
	if err != nil {
		t.Fatalf("ParseNQuads: %v", err)
	}
	lit, ok := ds.Graphs[DefaultGraphName][0].Object.(Literal)
	if !ok {
		t.Fatalf("object is not a Literal")
	}
	if lit.Lang != "en-us" {
		t.Fatalf("language tag = %q, want canonicalized %q", lit.Lang, "en-us")
	}
}

func TestParseNQuadsRejectsMissingDot(t *testing.T) {
	_, err := datasetFromNQuads(`<http://example.org/s> <http://example.org/p> "o"` + "\n")
	if err == nil {
		t.Fatal("expected an error for a statement missing its trailing '.'")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("expected a *ParseError, got %T", err)
	}
}

func TestSerializeNQuadsRoundTrip(t *testing.T) {
	ds := NewDataset()
	ds.AddQuad(&Quad{
		Subject:   IRI{Value: "http://example.org/s"},
		Predicate: IRI{Value: "http://example.org/p"},
		Object:    Literal{Lexical: "café \"quoted\"\n", Lang: "fr"},
	})
	ds.AddQuad(&Quad{
		Subject:   BlankNode{ID: "b0"},
		Predicate: IRI{Value: "http://example.org/knows"},
		Object:    IRI{Value: "http://example.org/other"},
		Graph:     IRI{Value: "http://example.org/g"},
	})

	out, err := NQuadsString(ds)
	if err != nil {
		t.Fatalf("NQuadsString: %v", err)
	}

	roundTripped, err := datasetFromNQuads(out)
	if err != nil {
		t.Fatalf("re-parsing serialized output failed: %v\noutput:\n%s", err, out)
	}
	if len(roundTripped.Graphs[DefaultGraphName]) != 1 || len(roundTripped.Graphs["http://example.org/g"]) != 1 {
		t.Fatalf("round trip lost quads: %+v", roundTripped.Graphs)
	}
	lit := roundTripped.Graphs[DefaultGraphName][0].Object.(Literal)
	if lit.Lexical != "café \"quoted\"\n" {
		t.Fatalf("escaped lexical form did not round trip: %q", lit.Lexical)
	}
}

func TestSerializeNQuadsIsDeterministic(t *testing.T) {
	ds1 := NewDataset()
	ds1.AddQuad(&Quad{Subject: IRI{Value: "http://example.org/s"}, Predicate: IRI{Value: "http://example.org/p"}, Object: IRI{Value: "http://example.org/o"}, Graph: IRI{Value: "http://example.org/z"}})
	ds1.AddQuad(&Quad{Subject: IRI{Value: "http://example.org/s"}, Predicate: IRI{Value: "http://example.org/p"}, Object: IRI{Value: "http://example.org/o"}, Graph: IRI{Value: "http://example.org/a"}})

	ds2 := NewDataset()
	ds2.AddQuad(&Quad{Subject: IRI{Value: "http://example.org/s"}, Predicate: IRI{Value: "http://example.org/p"}, Object: IRI{Value: "http://example.org/o"}, Graph: IRI{Value: "http://example.org/a"}})
	ds2.AddQuad(&Quad{Subject: IRI{Value: "http://example.org/s"}, Predicate: IRI{Value: "http://example.org/p"}, Object: IRI{Value: "http://example.org/o"}, Graph: IRI{Value: "http://example.org/z"}})

	out1, err := NQuadsString(ds1)
	if err != nil {
		t.Fatalf("NQuadsString: %v", err)
	}
	out2, err := NQuadsString(ds2)
	if err != nil {
		t.Fatalf("NQuadsString: %v", err)
	}
	if out1 != out2 {
		t.Fatalf("serialization is not insertion-order independent:\n%s\n---\n%s", out1, out2)
	}
}

func datasetFromNQuads(s string) (*Dataset, error) {
	return ParseNQuads(strings.NewReader(s))
}
