package jsonld

import (
	"context"
	"testing"
)

func TestProcessContextSetsBaseVocabLanguage(t *testing.T) {
	r := NewContextResolver(nil)
	active := initialContext(ProcessingMode11)

	local := map[string]interface{}{
		"@vocab":    "http://example.org/",
		"@language": "EN-US",
		"@direction": "ltr",
	}

	result, err := r.ProcessContext(context.Background(), active, local, "http://example.org/doc", false)
	if err != nil {
		t.Fatalf("ProcessContext: %v", err)
	}
	if result.Vocab != "http://example.org/" {
		t.Fatalf("Vocab = %q", result.Vocab)
	}
	if result.DefaultLanguage != "en-us" {
		t.Fatalf("DefaultLanguage = %q, want canonicalized en-us", result.DefaultLanguage)
	}
	if result.DefaultDirection != DirLTR {
		t.Fatalf("DefaultDirection = %q", result.DefaultDirection)
	}
}

func TestProcessContextNullResetsContext(t *testing.T) {
	r := NewContextResolver(nil)
	active := initialContext(ProcessingMode11)
	active.Vocab = "http://example.org/"

	result, err := r.ProcessContext(context.Background(), active, nil, "", false)
	if err != nil {
		t.Fatalf("ProcessContext: %v", err)
	}
	if result.Vocab != "" {
		t.Fatal("a null @context must reset the vocabulary mapping")
	}
}

func TestProcessContextRejectsNullifyingProtectedTerms(t *testing.T) {
	r := NewContextResolver(nil)
	active := initialContext(ProcessingMode11)
	protected := newTermDefinition()
	protected.IRIMapping = "http://example.org/name"
	protected.Protected = true
	active = active.withTerm("name", protected)

	_, err := r.ProcessContext(context.Background(), active, nil, "", false)
	if err == nil || !Is(err, ErrInvalidContextNullification) {
		t.Fatalf("expected ErrInvalidContextNullification, got %v", err)
	}
}

func TestProcessContextDefinesSimpleTerm(t *testing.T) {
	r := NewContextResolver(nil)
	active := initialContext(ProcessingMode11)

	local := map[string]interface{}{
		"name": "http://schema.org/name",
	}
	result, err := r.ProcessContext(context.Background(), active, local, "", false)
	if err != nil {
		t.Fatalf("ProcessContext: %v", err)
	}
	def := result.getTerm("name")
	if def == nil || def.IRIMapping != "http://schema.org/name" {
		t.Fatalf("term definition for 'name' = %+v", def)
	}
}

type stubLoader struct {
	docs map[string]*RemoteDocument
}

func (s *stubLoader) LoadDocument(ctx context.Context, url string) (*RemoteDocument, error) {
	if d, ok := s.docs[url]; ok {
		return d, nil
	}
	return nil, newError(ErrLoadingDocumentFailed, url, nil)
}

func TestProcessContextResolvesRemoteContext(t *testing.T) {
	loader := &stubLoader{docs: map[string]*RemoteDocument{
		"http://example.org/ctx.jsonld": {
			Document: map[string]interface{}{
				"@context": map[string]interface{}{
					"name": "http://schema.org/name",
				},
			},
		},
	}}
	r := NewContextResolver(loader)
	active := initialContext(ProcessingMode11)

	result, err := r.ProcessContext(context.Background(), active, "http://example.org/ctx.jsonld", "", false)
	if err != nil {
		t.Fatalf("ProcessContext: %v", err)
	}
	if result.getTerm("name") == nil {
		t.Fatal("expected the remote context's term to be merged in")
	}
}

func TestProcessContextImportMergesLocalKeysOverImported(t *testing.T) {
	loader := &stubLoader{docs: map[string]*RemoteDocument{
		"http://example.org/imported.jsonld": {
			Document: map[string]interface{}{
				"@context": map[string]interface{}{
					"title": "http://schema.org/title",
					"name":  "http://schema.org/oldName",
				},
			},
		},
	}}
	r := NewContextResolver(loader)
	active := initialContext(ProcessingMode11)

	local := map[string]interface{}{
		"@import": "http://example.org/imported.jsonld",
		"name":    "http://schema.org/name",
	}
	result, err := r.ProcessContext(context.Background(), active, local, "", false)
	if err != nil {
		t.Fatalf("ProcessContext: %v", err)
	}
	if def := result.getTerm("title"); def == nil || def.IRIMapping != "http://schema.org/title" {
		t.Fatalf("imported term 'title' missing or wrong: %+v", def)
	}
	if def := result.getTerm("name"); def == nil || def.IRIMapping != "http://schema.org/name" {
		t.Fatalf("local term 'name' should override the imported definition, got %+v", def)
	}
}

func TestProcessContextDetectsCyclicRemoteContext(t *testing.T) {
	loader := &stubLoader{docs: map[string]*RemoteDocument{
		"http://example.org/a.jsonld": {
			Document: map[string]interface{}{"@context": "http://example.org/b.jsonld"},
		},
		"http://example.org/b.jsonld": {
			Document: map[string]interface{}{"@context": "http://example.org/a.jsonld"},
		},
	}}
	r := NewContextResolver(loader)
	active := initialContext(ProcessingMode11)

	_, err := r.ProcessContext(context.Background(), active, "http://example.org/a.jsonld", "", false)
	if err == nil || !Is(err, ErrContextOverflow) {
		t.Fatalf("expected ErrContextOverflow for a cyclic remote context, got %v", err)
	}
}
