package jsonld

import (
	"context"
	"fmt"
)

// RemoteDocument is the result of dereferencing a URL.
type RemoteDocument struct {
	ContextURL  string
	DocumentURL string
	Document    interface{}
	ContentType string
	Profile     string
}

// DocumentLoader resolves remote documents and contexts. It is the sole
// collaborator the library performs I/O through; the algorithms never
// dereferences a URL itself.
type DocumentLoader interface {
	LoadDocument(ctx context.Context, url string) (*RemoteDocument, error)
}

// maxContextDepth bounds recursive remote-context resolution so a
// pathological chain of @context references cannot recurse unboundedly.
const maxContextDepth = 10

// defaultProcessedContextCacheSize bounds the processed-context LRU.
const defaultProcessedContextCacheSize = 100

// ContextResolver dereferences, validates, and merges contexts into active
// contexts, caching remote documents and processed results. A
// resolver may be shared across calls and goroutines: its caches are
// read-mostly; callers needing per-call isolation should
// construct a fresh one.
type ContextResolver struct {
	Loader DocumentLoader

	remoteDocs *lruCache // url -> *RemoteDocument
	processed  *lruCache // "remoteIRI|parentCtxID" -> *Ctx
}

// NewContextResolver creates a resolver with the default cache sizes.
func NewContextResolver(loader DocumentLoader) *ContextResolver {
	return &ContextResolver{
		Loader:     loader,
		remoteDocs: newLRUCache(defaultProcessedContextCacheSize),
		processed:  newLRUCache(defaultProcessedContextCacheSize),
	}
}

// contextProcessingOptions carries the per-call flags ProcessContext needs
// beyond the active/local context pair.
type contextProcessingOptions struct {
	base              string
	overrideProtected bool
	propagate         bool
	validateScopedCtx bool
	remoteContexts    map[string]bool
	depth             int
}

// ProcessContext implements the Context Processing algorithm:
// given a raw @context value plus a parent active context and base URL,
// produce a fully processed active context.
func (r *ContextResolver) ProcessContext(ctx context.Context, active *Ctx, local interface{}, baseURL string, overrideProtected bool) (*Ctx, error) {
	return r.processContext(ctx, active, local, &contextProcessingOptions{
		base:              baseURL,
		overrideProtected: overrideProtected,
		propagate:         true,
		remoteContexts:    map[string]bool{},
	})
}

func (r *ContextResolver) processContext(ctx context.Context, active *Ctx, local interface{}, opts *contextProcessingOptions) (*Ctx, error) {
	// 3) array: fold left.
	if arr, ok := local.([]interface{}); ok {
		result := active
		var err error
		for _, entry := range arr {
			result, err = r.processContext(ctx, result, entry, opts)
			if err != nil {
				return nil, err
			}
		}
		return result, nil
	}

	// 2) string: remote context.
	if s, ok := local.(string); ok {
		return r.processRemoteContext(ctx, active, s, opts)
	}

	// 1) null: reset, subject to protected-term rules.
	if local == nil {
		if !opts.overrideProtected && active.hasProtectedTerms() {
			return nil, newError(ErrInvalidContextNullification,
				"cannot nullify a context containing protected terms", nil)
		}
		result := initialContext(active.ProcessingMode)
		if !opts.propagate {
			result.Previous = active
		}
		return result, nil
	}

	obj, ok := local.(map[string]interface{})
	if !ok {
		return nil, newError(ErrInvalidLocalContext, fmt.Sprintf("unexpected @context value %T", local), nil)
	}
	return r.processContextObject(ctx, active, obj, opts)
}

func (r *ContextResolver) processRemoteContext(ctx context.Context, active *Ctx, iri string, opts *contextProcessingOptions) (*Ctx, error) {
	resolved := resolveIRI(opts.base, iri)
	if opts.remoteContexts[resolved] {
		return nil, newError(ErrContextOverflow, "cyclic remote context reference: "+resolved, nil)
	}
	if opts.depth >= maxContextDepth {
		return nil, newError(ErrContextOverflow, "remote context resolution depth exceeded", nil)
	}

	cacheKey := resolved + "|" + active.ID
	if cached, ok := r.processed.get(cacheKey); ok {
		return cached.(*Ctx), nil
	}

	rd, err := r.loadDocument(ctx, resolved)
	if err != nil {
		return nil, newError(ErrLoadingRemoteContextFailed, resolved, err)
	}
	docMap, ok := rd.Document.(map[string]interface{})
	if !ok {
		return nil, newError(ErrInvalidRemoteContext, "remote document is not a JSON object: "+resolved, nil)
	}
	inner, has := docMap["@context"]
	if !has {
		return nil, newError(ErrInvalidRemoteContext, "remote document has no @context: "+resolved, nil)
	}

	nextRemote := make(map[string]bool, len(opts.remoteContexts)+1)
	for k := range opts.remoteContexts {
		nextRemote[k] = true
	}
	nextRemote[resolved] = true

	result, err := r.processContext(ctx, active, inner, &contextProcessingOptions{
		base:              resolved,
		overrideProtected: opts.overrideProtected,
		propagate:         opts.propagate,
		remoteContexts:    nextRemote,
		depth:             opts.depth + 1,
	})
	if err != nil {
		return nil, err
	}
	r.processed.set(cacheKey, result)
	return result, nil
}

func (r *ContextResolver) loadDocument(ctx context.Context, iri string) (*RemoteDocument, error) {
	if cached, ok := r.remoteDocs.get(iri); ok {
		return cached.(*RemoteDocument), nil
	}
	if r.Loader == nil {
		return nil, newError(ErrLoadingDocumentFailed, "no document loader configured for "+iri, nil)
	}
	rd, err := r.Loader.LoadDocument(ctx, iri)
	if err != nil {
		return nil, err
	}
	r.remoteDocs.set(iri, rd)
	return rd, nil
}

// processContextObject handles step 4 of the algorithm: @version, @import,
// @base, @vocab, @language, @direction, @propagate, @protected, then terms.
func (r *ContextResolver) processContextObject(ctx context.Context, active *Ctx, obj map[string]interface{}, opts *contextProcessingOptions) (*Ctx, error) {
	propagate := opts.propagate
	if v, has := obj["@propagate"]; has {
		b, ok := v.(bool)
		if !ok {
			return nil, newError(ErrInvalidContextEntry, "@propagate must be a boolean", nil)
		}
		propagate = b
	}

	result := active.clone()
	if !propagate {
		result.Previous = active
	}

	if v, has := obj["@version"]; has {
		if num, ok := v.(float64); !ok || num != 1.1 {
			return nil, newError(ErrInvalidContextEntry, "@version must be 1.1", nil)
		}
		result.ProcessingMode = ProcessingMode11
	}

	protected := false
	if v, has := obj["@protected"]; has {
		b, ok := v.(bool)
		if !ok {
			return nil, newError(ErrInvalidContextEntry, "@protected must be a boolean", nil)
		}
		protected = b
	}

	if imp, has := obj["@import"]; has {
		imported, err := r.applyImport(ctx, imp, opts)
		if err != nil {
			return nil, err
		}
		merged := make(map[string]interface{}, len(imported)+len(obj))
		for k, v := range imported {
			merged[k] = v
		}
		for k, v := range obj {
			if k == "@import" {
				continue
			}
			merged[k] = v
		}
		obj = merged
	}

	if v, has := obj["@base"]; has {
		switch b := v.(type) {
		case nil:
			result.Base = ""
		case string:
			result.Base = resolveIRI(result.Base, b)
		default:
			return nil, newError(ErrInvalidBaseIRI, "@base must be a string or null", nil)
		}
	} else if opts.base != "" && result.Base == "" {
		result.Base = opts.base
	}

	if v, has := obj["@vocab"]; has {
		switch vv := v.(type) {
		case nil:
			result.Vocab = ""
		case string:
			if isRelativeIRI(vv) && !isBlankNodeLabel(vv) && vv != "" {
				result.Vocab = resolveIRI(result.Base, vv)
			} else {
				result.Vocab = vv
			}
		default:
			return nil, newError(ErrInvalidVocabMapping, "@vocab must be a string or null", nil)
		}
	}

	if v, has := obj["@language"]; has {
		switch lv := v.(type) {
		case nil:
			result.DefaultLanguage = ""
		case string:
			result.DefaultLanguage = canonicalLangTag(lv)
		default:
			return nil, newError(ErrInvalidDefaultLanguage, "@language must be a string or null", nil)
		}
	}

	if v, has := obj["@direction"]; has {
		switch dv := v.(type) {
		case nil:
			result.DefaultDirection = DirNone
		case string:
			d := Direction(dv)
			if d != DirLTR && d != DirRTL {
				return nil, newError(ErrInvalidContextEntry, "@direction must be ltr, rtl, or null", nil)
			}
			result.DefaultDirection = d
		default:
			return nil, newError(ErrInvalidContextEntry, "@direction must be a string or null", nil)
		}
	}

	defined := map[string]int{} // absent/0=not started, -1=in progress, 1=done
	for _, term := range sortedKeys(obj) {
		switch term {
		case "@base", "@vocab", "@language", "@direction", "@version", "@propagate", "@protected", "@import":
			continue
		}
		if err := r.createTermDefinition(ctx, result, obj, term, defined, opts.overrideProtected, protected, opts.base); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// applyImport merges a remote @import context's object in before the local
// keys; @import inside the imported context is forbidden.
func (r *ContextResolver) applyImport(ctx context.Context, imp interface{}, opts *contextProcessingOptions) (map[string]interface{}, error) {
	iri, ok := imp.(string)
	if !ok {
		return nil, newError(ErrInvalidImportValue, "@import must be a string", nil)
	}
	resolved := resolveIRI(opts.base, iri)
	rd, err := r.loadDocument(ctx, resolved)
	if err != nil {
		return nil, newError(ErrInvalidRemoteContext, resolved, err)
	}
	docMap, ok := rd.Document.(map[string]interface{})
	if !ok {
		return nil, newError(ErrInvalidRemoteContext, "@import target is not a JSON object: "+resolved, nil)
	}
	innerCtx, has := docMap["@context"]
	if !has {
		return nil, newError(ErrInvalidRemoteContext, "@import target has no @context: "+resolved, nil)
	}
	innerObj, ok := innerCtx.(map[string]interface{})
	if !ok {
		return nil, newError(ErrInvalidImportValue, "@import target @context must be an object", nil)
	}
	if _, has := innerObj["@import"]; has {
		return nil, newError(ErrInvalidContextEntry, "@import cannot itself contain @import", nil)
	}
	return innerObj, nil
}
