// Package jsonld implements the core algorithms of a JSON-LD 1.1 processor:
// context resolution, expansion, compaction, flattening, framing, ToRDF/FromRDF,
// and URDNA2015 RDF dataset canonicalization.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// Author: Stephane Fellah (stephanef@geoknoesis.com)
// Geosemantic-AI expert with 30 years of experience
//
// The package consumes already-parsed JSON values (the shapes produced by
// encoding/json: nil, bool, float64, string, []interface{}, map[string]interface{})
// and a caller-supplied DocumentLoader; it performs no I/O of its own beyond
// that collaborator.
//
//   - Expand / Compact / Flatten / Frame transform a document per the
//     published JSON-LD 1.1 algorithms.
//   - ToRDF / FromRDF convert between the expanded form and an RDF Dataset.
//   - Normalize chains ToRDF, URDNA2015 canonicalization, and N-Quads
//     serialization into canonical N-Quads text.
//
// Example (expand then compact):
//
//	proc := jsonld.NewProcessor(loader)
//	expanded, err := proc.Expand(ctx, doc)
//	if err != nil {
//	    // handle error
//	}
//	compacted, err := proc.Compact(ctx, doc, context)
//
// Example (canonicalize a dataset):
//
//	nquads, err := proc.Normalize(ctx, doc)
//
// Context processing is the sole suspension point: ProcessContext yields to
// the document loader when a remote @context must be dereferenced. Every
// other algorithm runs to completion on the calling goroutine over owned,
// immutable data (see the concurrency notes on ContextResolver).
package jsonld
