package jsonld

import (
	"context"
	"strings"
)

// Options carries the per-call processing flags shared across the
// Processor's operations.
type Options struct {
	Base                      string
	CompactArrays             bool
	CompactToRelative         bool
	Graph                     bool
	ExpandContext             interface{}
	ProcessingMode            string
	ProduceGeneralizedRDF     bool
	RDFDirection              RDFDirectionMode
	UseNativeTypes            bool
	UseRDFType                bool
	Embed                     string
	Explicit                  bool
	RequireAll                bool
	OmitDefault               bool
	OmitGraph                 bool
	PruneBlankNodeIdentifiers bool
	DocumentLoader            DocumentLoader

	// KeyDropped, when non-nil, is invoked once per
	// object key that Expand ignores because it maps to neither a keyword
	// nor an absolute IRI. A non-nil return aborts expansion with that error.
	KeyDropped func(key string) error
}

// DefaultOptions returns the default flag values.
func DefaultOptions() Options {
	return Options{
		CompactArrays:             true,
		CompactToRelative:         true,
		ProcessingMode:            ProcessingMode11,
		Embed:                     "@once",
		OmitGraph:                 true,
		PruneBlankNodeIdentifiers: true,
	}
}

// Processor bundles a document loader, a shared context resolver, and a
// set of Options into the package's entry point for the standard JSON-LD
// operations.
type Processor struct {
	Options  Options
	resolver *ContextResolver
}

// NewProcessor creates a Processor with default options and a fresh
// context resolver backed by loader.
func NewProcessor(loader DocumentLoader) *Processor {
	opts := DefaultOptions()
	opts.DocumentLoader = loader
	return &Processor{
		Options:  opts,
		resolver: NewContextResolver(loader),
	}
}

// Expand implements the Expansion operation end to end: resolve
// any expandContext option, then expand doc.
func (p *Processor) Expand(ctx context.Context, doc interface{}) ([]interface{}, error) {
	active := initialContext(p.Options.ProcessingMode)
	if p.Options.Base != "" {
		active.Base = p.Options.Base
	}
	if p.Options.ExpandContext != nil {
		next, err := p.resolver.ProcessContext(ctx, active, p.Options.ExpandContext, p.Options.Base, false)
		if err != nil {
			return nil, err
		}
		active = next
	}
	exp := NewExpander(p.resolver)
	exp.Base = p.Options.Base
	exp.ProcessingMode = p.Options.ProcessingMode
	exp.OnKeyDropped = p.Options.KeyDropped
	return exp.Expand(ctx, active, doc)
}

// Compact implements the Compaction operation: expand doc, then
// compact against localContext.
func (p *Processor) Compact(ctx context.Context, doc interface{}, localContext interface{}) (map[string]interface{}, error) {
	expanded, err := p.Expand(ctx, doc)
	if err != nil {
		return nil, err
	}
	active := initialContext(p.Options.ProcessingMode)
	active, err = p.resolver.ProcessContext(ctx, active, localContext, p.Options.Base, false)
	if err != nil {
		return nil, err
	}
	c := NewCompactor(p.resolver)
	c.CompactArrays = p.Options.CompactArrays
	c.CompactToRelative = p.Options.CompactToRelative
	out, err := c.Compact(ctx, active, expanded)
	if err != nil {
		return nil, err
	}
	if localContext != nil {
		out["@context"] = localContext
	}
	return out, nil
}

// Flatten implements the Flattening operation: expand doc, then
// flatten, optionally compacting the result against localContext.
func (p *Processor) Flatten(ctx context.Context, doc interface{}, localContext interface{}) (interface{}, error) {
	expanded, err := p.Expand(ctx, doc)
	if err != nil {
		return nil, err
	}
	flattened := Flatten(expanded)
	if localContext == nil {
		return flattened, nil
	}
	active := initialContext(p.Options.ProcessingMode)
	active, err = p.resolver.ProcessContext(ctx, active, localContext, p.Options.Base, false)
	if err != nil {
		return nil, err
	}
	c := NewCompactor(p.resolver)
	c.CompactArrays = p.Options.CompactArrays
	result, err := c.compactElement(active, "", flattened, false)
	if err != nil {
		return nil, err
	}
	out, ok := result.(map[string]interface{})
	if !ok {
		out = map[string]interface{}{"@graph": arrayify(result)}
	}
	out["@context"] = localContext
	return out, nil
}

// Frame implements the Framing operation: expand both doc and
// frame, then match.
func (p *Processor) Frame(ctx context.Context, doc interface{}, frame map[string]interface{}) ([]interface{}, error) {
	expandedDoc, err := p.Expand(ctx, doc)
	if err != nil {
		return nil, err
	}
	frameCtx := frame["@context"]
	active := initialContext(p.Options.ProcessingMode)
	if p.Options.Base != "" {
		active.Base = p.Options.Base
	}
	exp := NewExpander(p.resolver)
	exp.Base = p.Options.Base
	exp.ProcessingMode = p.Options.ProcessingMode
	exp.FrameExpansion = true
	expandedFrame, err := exp.Expand(ctx, active, frame)
	if err != nil {
		return nil, err
	}
	fopts := FrameOptions{
		Embed:                     p.Options.Embed,
		Explicit:                  p.Options.Explicit,
		RequireAll:                p.Options.RequireAll,
		OmitDefault:               p.Options.OmitDefault,
		OmitGraph:                 p.Options.OmitGraph,
		PruneBlankNodeIdentifiers: p.Options.PruneBlankNodeIdentifiers,
	}
	framed, err := Frame(expandedDoc, expandedFrame, fopts)
	if err != nil {
		return nil, err
	}
	if frameCtx == nil {
		return framed, nil
	}
	active = initialContext(p.Options.ProcessingMode)
	active, err = p.resolver.ProcessContext(ctx, active, frameCtx, p.Options.Base, false)
	if err != nil {
		return nil, err
	}
	c := NewCompactor(p.resolver)
	var out []interface{}
	for _, node := range framed {
		compacted, err := c.compactElement(active, "", node, false)
		if err != nil {
			return nil, err
		}
		out = append(out, compacted)
	}
	return out, nil
}

// ToRDF implements the ToRDF operation: expand doc, then
// convert to an RDF Dataset.
func (p *Processor) ToRDF(ctx context.Context, doc interface{}) (*Dataset, error) {
	expanded, err := p.Expand(ctx, doc)
	if err != nil {
		return nil, err
	}
	return ToRDF(expanded, ToRDFOptions{
		ProduceGeneralizedRDF: p.Options.ProduceGeneralizedRDF,
		RDFDirection:          p.Options.RDFDirection,
	})
}

// FromRDF converts ds into a JSON-LD document in expanded form.
func (p *Processor) FromRDF(ds *Dataset) ([]interface{}, error) {
	return FromRDF(ds, FromRDFOptions{
		UseNativeTypes: p.Options.UseNativeTypes,
		UseRDFType:     p.Options.UseRDFType,
		RDFDirection:   p.Options.RDFDirection,
	})
}

// Normalize implements the URDNA2015 canonicalization operation end to end
//: expand doc, convert to RDF, then canonicalize.
func (p *Processor) Normalize(ctx context.Context, doc interface{}) (string, error) {
	ds, err := p.ToRDF(ctx, doc)
	if err != nil {
		return "", err
	}
	return NormalizeToNQuads(ds)
}

// rdfParserRegistry lets collaborators register additional quad-format
// parsers keyed by content type. This package
// registers no parsers beyond N-Quads itself; the registry exists purely
// as an extension point for collaborators adding e.g. TriG support.
var rdfParserRegistry = map[string]func(string) (*Dataset, error){
	"application/n-quads": func(s string) (*Dataset, error) {
		return ParseNQuads(strings.NewReader(s))
	},
}

// RegisterRDFParser adds (or replaces) the parser used for contentType.
func RegisterRDFParser(contentType string, parse func(string) (*Dataset, error)) {
	rdfParserRegistry[contentType] = parse
}

// UnregisterRDFParser removes the parser registered for contentType.
func UnregisterRDFParser(contentType string) {
	delete(rdfParserRegistry, contentType)
}
