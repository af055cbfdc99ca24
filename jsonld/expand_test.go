package jsonld

import (
	"context"
	"reflect"
	"testing"
)

func expandFixture(t *testing.T, doc interface{}) []interface{} {
	t.Helper()
	p := NewProcessor(nil)
	out, err := p.Expand(context.Background(), doc)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	return out
}

// Expansion drops an unmapped key and reports it once.
func TestExpandDropsUnmappedKey(t *testing.T) {
	doc := map[string]interface{}{
		"@context": map[string]interface{}{"name": "http://schema.org/name"},
		"name":     "A",
		"foo":      "B",
	}

	var dropped []string
	p := NewProcessor(nil)
	p.Options.KeyDropped = func(key string) error {
		dropped = append(dropped, key)
		return nil
	}

	out, err := p.Expand(context.Background(), doc)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	want := []interface{}{
		map[string]interface{}{
			"http://schema.org/name": []interface{}{
				map[string]interface{}{"@value": "A"},
			},
		},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("Expand() = %#v, want %#v", out, want)
	}
	if len(dropped) != 1 || dropped[0] != "foo" {
		t.Fatalf("key-dropped callback fired with %v, want exactly [\"foo\"]", dropped)
	}
}

func TestExpandKeyDroppedCallbackAbortsOnError(t *testing.T) {
	doc := map[string]interface{}{
		"@context": map[string]interface{}{"name": "http://schema.org/name"},
		"name":     "A",
		"foo":      "B",
	}
	sentinel := newError(ErrInvalidContextEntry, "boom", nil)
	p := NewProcessor(nil)
	p.Options.KeyDropped = func(key string) error { return sentinel }

	_, err := p.Expand(context.Background(), doc)
	if err != sentinel {
		t.Fatalf("Expand() error = %v, want the sentinel raised by the callback", err)
	}
}

// A relative @id resolves against the base IRI.
func TestExpandRelativeBase(t *testing.T) {
	p := NewProcessor(nil)
	p.Options.Base = "http://example.org/a/b"
	doc := map[string]interface{}{"@id": "c", "@type": "T"}

	out, err := p.Expand(context.Background(), doc)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected exactly one expanded node, got %d", len(out))
	}
	node := out[0].(map[string]interface{})
	if node["@id"] != "http://example.org/a/c" {
		t.Fatalf("@id = %v, want http://example.org/a/c", node["@id"])
	}
}

// Lists of lists expand to nested list objects.
func TestExpandListOfLists(t *testing.T) {
	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"p": map[string]interface{}{"@id": "http://ex/p", "@container": "@list"},
		},
		"p": []interface{}{
			[]interface{}{float64(1), float64(2)},
			[]interface{}{float64(3)},
		},
	}
	out := expandFixture(t, doc)
	node := out[0].(map[string]interface{})
	values := node["http://ex/p"].([]interface{})
	listObj := values[0].(map[string]interface{})
	inner := listObj["@list"].([]interface{})
	if len(inner) != 2 {
		t.Fatalf("expected 2 nested lists, got %d", len(inner))
	}
	for _, item := range inner {
		if !isListObject(item) {
			t.Fatalf("expected a nested list object, got %#v", item)
		}
	}
}

func TestExpandValueObjectWithLanguage(t *testing.T) {
	doc := map[string]interface{}{
		"@context": map[string]interface{}{"@language": "EN"},
		"http://ex/name": "Manu",
	}
	out := expandFixture(t, doc)
	node := out[0].(map[string]interface{})
	v := node["http://ex/name"].([]interface{})[0].(map[string]interface{})
	if v["@language"] != "en" {
		t.Fatalf("@language = %v, want lowercased \"en\"", v["@language"])
	}
}

func TestExpandTypeScopedContextAppliesInLexicographicTypeOrder(t *testing.T) {
	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"A": map[string]interface{}{"@id": "http://ex/A", "@context": map[string]interface{}{"name": "http://ex/nameA"}},
			"B": map[string]interface{}{"@id": "http://ex/B", "@context": map[string]interface{}{"name": "http://ex/nameB"}},
		},
		"@type": []interface{}{"B", "A"},
		"name":  "x",
	}
	out := expandFixture(t, doc)
	node := out[0].(map[string]interface{})
	// Types are processed in lexicographic order ("A" before "B"), each
	// merging its scoped context on top of the last, so B's mapping (applied
	// last) wins the "name" conflict.
	if _, has := node["http://ex/nameB"]; !has {
		t.Fatalf("expected http://ex/nameB to win via lexicographic type ordering, got %#v", node)
	}
}

func TestExpandRejectsInvalidDirectionValue(t *testing.T) {
	doc := map[string]interface{}{
		"@value":     "hi",
		"@direction": "sideways",
	}
	p := NewProcessor(nil)
	_, err := p.Expand(context.Background(), doc)
	if err == nil {
		t.Fatal("expected an error for an @direction value other than ltr/rtl")
	}
	if !Is(err, ErrInvalidContextEntry) {
		t.Fatalf("error = %v, want kind %s", err, ErrInvalidContextEntry)
	}
}

// Entries under a nest property expand as if they were entries of the node
// itself, to arbitrary nesting depth.
func TestExpandLiftsNestedProperties(t *testing.T) {
	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"data":  "@nest",
			"label": "http://ex/label",
		},
		"@id": "http://ex/thing",
		"data": map[string]interface{}{
			"label": "a",
			"@nest": map[string]interface{}{"label": "b"},
		},
	}
	out := expandFixture(t, doc)
	node := out[0].(map[string]interface{})
	labels, ok := node["http://ex/label"].([]interface{})
	if !ok || len(labels) != 2 {
		t.Fatalf("http://ex/label = %#v, want both nested values lifted", node["http://ex/label"])
	}
}

func TestExpandRejectsValueInsideNest(t *testing.T) {
	doc := map[string]interface{}{
		"@context": map[string]interface{}{"data": "@nest"},
		"data":     map[string]interface{}{"@value": "x"},
	}
	p := NewProcessor(nil)
	_, err := p.Expand(context.Background(), doc)
	if err == nil {
		t.Fatal("expected an error for @value inside a nest value")
	}
}
