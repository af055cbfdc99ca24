package jsonld

import (
	"context"
	"reflect"
	"testing"
)

// Simple compaction: a single property picks up its term.
func TestCompactSimple(t *testing.T) {
	p := NewProcessor(nil)
	doc := map[string]interface{}{"http://schema.org/name": "Manu"}
	localCtx := map[string]interface{}{"name": "http://schema.org/name"}

	out, err := p.Compact(context.Background(), doc, localCtx)
	if err != nil {
		t.Fatalf("Compact: %v", err)
	}
	want := map[string]interface{}{
		"@context": localCtx,
		"name":     "Manu",
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("Compact() = %#v, want %#v", out, want)
	}
}

func TestCompactRoundTripsExpansion(t *testing.T) {
	p := NewProcessor(nil)
	localCtx := map[string]interface{}{
		"name": "http://schema.org/name",
		"age":  map[string]interface{}{"@id": "http://schema.org/age", "@type": "http://www.w3.org/2001/XMLSchema#integer"},
	}
	doc := map[string]interface{}{
		"@context": localCtx,
		"name":     "Manu",
		"age":      float64(42),
	}

	expanded, err := p.Expand(context.Background(), doc)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	c := NewCompactor(p.resolver)
	active, err := p.resolver.ProcessContext(context.Background(), initialContext(ProcessingMode11), localCtx, "", false)
	if err != nil {
		t.Fatalf("ProcessContext: %v", err)
	}
	compacted, err := c.Compact(context.Background(), active, expanded)
	if err != nil {
		t.Fatalf("Compact: %v", err)
	}
	if compacted["name"] != "Manu" {
		t.Fatalf("name = %v, want Manu", compacted["name"])
	}
	if compacted["age"] != float64(42) {
		t.Fatalf("age = %v, want 42", compacted["age"])
	}
}

func TestCompactUsesSetContainerArrayForm(t *testing.T) {
	localCtx := map[string]interface{}{
		"tags": map[string]interface{}{"@id": "http://ex/tags", "@container": "@set"},
	}
	p := NewProcessor(nil)
	active, err := p.resolver.ProcessContext(context.Background(), initialContext(ProcessingMode11), localCtx, "", false)
	if err != nil {
		t.Fatalf("ProcessContext: %v", err)
	}
	expanded := []interface{}{
		map[string]interface{}{
			"http://ex/tags": []interface{}{
				map[string]interface{}{"@value": "x"},
			},
		},
	}
	c := NewCompactor(p.resolver)
	compacted, err := c.Compact(context.Background(), active, expanded)
	if err != nil {
		t.Fatalf("Compact: %v", err)
	}
	arr, ok := compacted["tags"].([]interface{})
	if !ok {
		t.Fatalf("tags = %#v (%T), want an array (forced by @container: @set)", compacted["tags"], compacted["tags"])
	}
	if len(arr) != 1 || arr[0] != "x" {
		t.Fatalf("tags = %#v, want [\"x\"]", arr)
	}
}

// A term whose definition carries @nest compacts back under its nest
// property.
func TestCompactPlacesTermUnderItsNestProperty(t *testing.T) {
	p := NewProcessor(nil)
	localCtx := map[string]interface{}{
		"data":  "@nest",
		"label": map[string]interface{}{"@id": "http://ex/label", "@nest": "data"},
	}
	doc := map[string]interface{}{
		"@context": localCtx,
		"data":     map[string]interface{}{"label": "a"},
	}
	expanded, err := p.Expand(context.Background(), doc)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	out, err := p.Compact(context.Background(), expanded, localCtx)
	if err != nil {
		t.Fatalf("Compact: %v", err)
	}
	nested, ok := out["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("compacted output missing the nest object: %#v", out)
	}
	if nested["label"] != "a" {
		t.Fatalf("nested label = %v, want \"a\"", nested["label"])
	}
}
