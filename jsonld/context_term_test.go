package jsonld

import (
	"context"
	"testing"
)

func TestCreateTermDefinitionSimpleMapping(t *testing.T) {
	r := NewContextResolver(nil)
	active := initialContext(ProcessingMode11)

	result, err := r.ProcessContext(context.Background(), active, map[string]interface{}{
		"name": "http://schema.org/name",
	}, "", false)
	if err != nil {
		t.Fatalf("ProcessContext: %v", err)
	}
	def := result.getTerm("name")
	if def == nil || def.IRIMapping != "http://schema.org/name" {
		t.Fatalf("term 'name' = %+v", def)
	}
}

func TestCreateTermDefinitionReverseProperty(t *testing.T) {
	r := NewContextResolver(nil)
	active := initialContext(ProcessingMode11)

	result, err := r.ProcessContext(context.Background(), active, map[string]interface{}{
		"children": map[string]interface{}{
			"@reverse":  "http://schema.org/parent",
			"@container": "@set",
		},
	}, "", false)
	if err != nil {
		t.Fatalf("ProcessContext: %v", err)
	}
	def := result.getTerm("children")
	if def == nil || !def.Reverse || def.IRIMapping != "http://schema.org/parent" {
		t.Fatalf("term 'children' = %+v", def)
	}
	if !def.Container["@set"] {
		t.Fatal("expected @set container on the reverse term")
	}
}

func TestCreateTermDefinitionContainerList(t *testing.T) {
	r := NewContextResolver(nil)
	active := initialContext(ProcessingMode11)

	result, err := r.ProcessContext(context.Background(), active, map[string]interface{}{
		"items": map[string]interface{}{
			"@id":        "http://example.org/items",
			"@container": "@list",
		},
	}, "", false)
	if err != nil {
		t.Fatalf("ProcessContext: %v", err)
	}
	def := result.getTerm("items")
	if def == nil || !def.Container["@list"] {
		t.Fatalf("term 'items' = %+v", def)
	}
}

func TestCreateTermDefinitionRejectsProtectedRedefinition(t *testing.T) {
	r := NewContextResolver(nil)
	active := initialContext(ProcessingMode11)

	withProtected, err := r.ProcessContext(context.Background(), active, map[string]interface{}{
		"name": map[string]interface{}{
			"@id":        "http://schema.org/name",
			"@protected": true,
		},
	}, "", false)
	if err != nil {
		t.Fatalf("ProcessContext: %v", err)
	}

	_, err = r.ProcessContext(context.Background(), withProtected, map[string]interface{}{
		"name": "http://example.org/otherName",
	}, "", false)
	if err == nil || !Is(err, ErrProtectedTermRedefinition) {
		t.Fatalf("expected ErrProtectedTermRedefinition, got %v", err)
	}
}

func TestCreateTermDefinitionAllowsIdenticalProtectedRedefinition(t *testing.T) {
	r := NewContextResolver(nil)
	active := initialContext(ProcessingMode11)

	local := map[string]interface{}{
		"name": map[string]interface{}{
			"@id":        "http://schema.org/name",
			"@protected": true,
		},
	}
	withProtected, err := r.ProcessContext(context.Background(), active, local, "", false)
	if err != nil {
		t.Fatalf("ProcessContext: %v", err)
	}

	_, err = r.ProcessContext(context.Background(), withProtected, map[string]interface{}{
		"name": "http://schema.org/name",
	}, "", false)
	if err != nil {
		t.Fatalf("restating an identical protected term definition should succeed, got %v", err)
	}
}

func TestCreateTermDefinitionRejectsKeywordRedefinition(t *testing.T) {
	r := NewContextResolver(nil)
	active := initialContext(ProcessingMode11)

	_, err := r.ProcessContext(context.Background(), active, map[string]interface{}{
		"@id": "http://example.org/id",
	}, "", false)
	if err == nil || !Is(err, ErrKeywordRedefinition) {
		t.Fatalf("expected ErrKeywordRedefinition, got %v", err)
	}
}
