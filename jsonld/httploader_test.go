package jsonld

import (
	"net/http"
	"testing"
)

func TestContextLinkHeaderExtractsSingleURL(t *testing.T) {
	h := http.Header{}
	h.Set("Link", `<http://ex/ctx.jsonld>; rel="http://www.w3.org/ns/json-ld#context"`)
	url, err := contextLinkHeader(h)
	if err != nil {
		t.Fatalf("contextLinkHeader: %v", err)
	}
	if url != "http://ex/ctx.jsonld" {
		t.Fatalf("url = %q, want http://ex/ctx.jsonld", url)
	}
}

func TestContextLinkHeaderIgnoresUnrelatedLinks(t *testing.T) {
	h := http.Header{}
	h.Set("Link", `<http://ex/other>; rel="alternate"`)
	url, err := contextLinkHeader(h)
	if err != nil {
		t.Fatalf("contextLinkHeader: %v", err)
	}
	if url != "" {
		t.Fatalf("url = %q, want empty", url)
	}
}

func TestContextLinkHeaderRejectsMultipleContextLinks(t *testing.T) {
	h := http.Header{}
	h.Add("Link", `<http://ex/a>; rel="http://www.w3.org/ns/json-ld#context"`)
	h.Add("Link", `<http://ex/b>; rel="http://www.w3.org/ns/json-ld#context"`)
	_, err := contextLinkHeader(h)
	if !Is(err, ErrMultipleContextLinkHeaders) {
		t.Fatalf("error = %v, want kind %s", err, ErrMultipleContextLinkHeaders)
	}
}
