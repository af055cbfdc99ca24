package jsonld

import (
	"context"
	"strings"
)

// createTermDefinition implements the Create Term Definition algorithm
//. active is mutated in place: it is always a fresh clone
// produced by processContextObject for the duration of one @context object,
// so mutating its Terms map here is safe and lets sibling term definitions
// see each other without threading return values through every call.
func (r *ContextResolver) createTermDefinition(ctx context.Context, active *Ctx, localCtx map[string]interface{}, term string, defined map[string]int, overrideProtected, protectedByDefault bool, baseURL string) error {
	switch defined[term] {
	case 1:
		return nil
	case -1:
		return newError(ErrCyclicIRIMapping, "cyclic IRI mapping detected for term "+term, nil)
	}
	defined[term] = -1

	value, has := localCtx[term]
	if !has {
		return newError(ErrInvalidContextEntry, "no definition for term "+term, nil)
	}

	if term == "" {
		return newError(ErrInvalidTermDefinition, "term must not be the empty string", nil)
	}
	if looksLikeKeyword(term) && term != "@type" {
		return newError(ErrKeywordRedefinition, "cannot redefine keyword "+term, nil)
	}
	if term == "@type" {
		obj, ok := value.(map[string]interface{})
		if !ok {
			return newError(ErrKeywordRedefinition, "@type redefinition must be an object", nil)
		}
		for k, v := range obj {
			if k == "@protected" {
				continue
			}
			if k == "@container" {
				if s, ok := v.(string); !ok || s != "@set" {
					return newError(ErrKeywordRedefinition, "@type container must be @set", nil)
				}
				continue
			}
			return newError(ErrKeywordRedefinition, "@type may only redefine @container/@protected", nil)
		}
		defined[term] = 1
		return nil
	}

	previous := active.getTerm(term)
	if previous != nil && previous.Protected && !overrideProtected {
		if simpleTermOverridesMatch(previous, value) {
			defined[term] = 1
			return nil
		}
		return newError(ErrProtectedTermRedefinition, "term "+term+" is protected", nil)
	}

	delete(active.Terms, term)

	var valueMap map[string]interface{}
	switch v := value.(type) {
	case nil:
		valueMap = map[string]interface{}{"@id": nil}
	case string:
		valueMap = map[string]interface{}{"@id": v}
	case map[string]interface{}:
		valueMap = v
	default:
		return newError(ErrInvalidTermDefinition, "term definition for "+term+" must be a string, object, or null", nil)
	}

	def := newTermDefinition()
	def.BaseURL = baseURL

	if raw, has := valueMap["@protected"]; has {
		b, ok := raw.(bool)
		if !ok {
			return newError(ErrInvalidTermDefinition, "@protected must be a boolean", nil)
		}
		def.Protected = b
	} else {
		def.Protected = protectedByDefault
	}

	if lc, has := valueMap["@context"]; has {
		if _, err := r.processContext(ctx, active, lc, &contextProcessingOptions{base: baseURL, remoteContexts: map[string]bool{}}); err != nil {
			return newError(ErrInvalidScopedContext, term, err)
		}
		def.HasLocalContext = true
		def.LocalContext = lc
	}

	if raw, hasType := valueMap["@type"]; hasType {
		ts, ok := raw.(string)
		if !ok {
			return newError(ErrInvalidTypeMapping, "@type must be a string", nil)
		}
		switch ts {
		case "@id", "@vocab", "@json", "@none":
			def.TypeMapping = ts
		default:
			expanded, err := r.expandIRI(ctx, active, ts, false, true, localCtx, defined)
			if err != nil || !isAbsoluteIRI(expanded) && !isKeyword(expanded) {
				return newError(ErrInvalidTypeMapping, "cannot expand @type mapping "+ts, err)
			}
			def.TypeMapping = expanded
		}
	}

	if raw, hasReverse := valueMap["@reverse"]; hasReverse {
		if _, hasID := valueMap["@id"]; hasID {
			return newError(ErrInvalidReverseProperty, "term cannot have both @id and @reverse", nil)
		}
		rs, ok := raw.(string)
		if !ok {
			return newError(ErrInvalidIRIMapping, "@reverse must be a string", nil)
		}
		expanded, err := r.expandIRI(ctx, active, rs, false, true, localCtx, defined)
		if err != nil || (!isAbsoluteIRI(expanded) && !isBlankNodeLabel(expanded)) {
			return newError(ErrInvalidIRIMapping, "cannot expand @reverse mapping "+rs, err)
		}
		def.IRIMapping = expanded
		def.Reverse = true
		if raw, has := valueMap["@container"]; has {
			if err := applyContainer(def, raw); err != nil {
				return err
			}
			for c := range def.Container {
				if c != "@set" && c != "@index" {
					return newError(ErrInvalidReverseProperty, "@reverse term container must be @set or @index", nil)
				}
			}
		}
		defined[term] = 1
		active.Terms[term] = def
		return nil
	}

	switch idVal, hasID := valueMap["@id"]; {
	case hasID && idVal == nil:
		def.IRIMappingNull = true
	case hasID:
		idStr, ok := idVal.(string)
		if !ok {
			return newError(ErrInvalidIRIMapping, "@id must be a string or null", nil)
		}
		if idStr != term {
			if isKeyword(idStr) || looksLikeKeyword(idStr) {
				def.IRIMapping = idStr
			} else {
				expanded, err := r.expandIRI(ctx, active, idStr, false, true, localCtx, defined)
				if err != nil || (!isAbsoluteIRI(expanded) && !isBlankNodeLabel(expanded) && !isKeyword(expanded)) {
					return newError(ErrInvalidIRIMapping, "cannot expand @id mapping "+idStr, err)
				}
				def.IRIMapping = expanded
			}
			if def.IRIMapping == "@context" {
				return newError(ErrInvalidKeywordAlias, "@context cannot be aliased", nil)
			}
		}
	default:
		if idx := strings.IndexRune(term, ':'); idx > 0 {
			prefix, suffix := term[:idx], term[idx+1:]
			if !strings.HasPrefix(suffix, "//") {
				if _, has := localCtx[prefix]; has && defined[prefix] == 0 {
					if err := r.createTermDefinition(ctx, active, localCtx, prefix, defined, overrideProtected, protectedByDefault, baseURL); err != nil {
						return err
					}
				}
				if pd := active.getTerm(prefix); pd != nil && pd.IRIMapping != "" {
					def.IRIMapping = pd.IRIMapping + suffix
				}
			}
		}
		if def.IRIMapping == "" {
			if active.Vocab != "" {
				def.IRIMapping = active.Vocab + term
			} else if !strings.ContainsRune(term, ':') {
				return newError(ErrInvalidIRIMapping, "term "+term+" cannot be expanded relative to a vocabulary mapping", nil)
			} else {
				def.IRIMapping = term
			}
		}
	}

	if raw, has := valueMap["@container"]; has {
		if err := applyContainer(def, raw); err != nil {
			return err
		}
		if def.Container["@list"] && (def.Container["@set"] || len(def.Container) > 1) {
			return newError(ErrInvalidContainerMapping, "@list cannot combine with other container forms", nil)
		}
	}

	if raw, has := valueMap["@index"]; has {
		if !def.Container["@index"] {
			return newError(ErrInvalidTermDefinition, "@index requires an @index container", nil)
		}
		s, ok := raw.(string)
		if !ok {
			return newError(ErrInvalidTermDefinition, "@index must be a string", nil)
		}
		def.IndexMapping = s
	}

	if raw, has := valueMap["@language"]; has {
		def.LanguageSet = true
		switch lv := raw.(type) {
		case nil:
			def.Language = ""
		case string:
			def.Language = canonicalLangTag(lv)
		default:
			return newError(ErrInvalidLanguageMapping, "@language must be a string or null", nil)
		}
	}

	if raw, has := valueMap["@direction"]; has {
		def.DirectionSet = true
		switch dv := raw.(type) {
		case nil:
			def.Direction = DirNone
		case string:
			d := Direction(dv)
			if d != DirLTR && d != DirRTL {
				return newError(ErrInvalidTermDefinition, "@direction must be ltr, rtl, or null", nil)
			}
			def.Direction = d
		default:
			return newError(ErrInvalidTermDefinition, "@direction must be a string or null", nil)
		}
	}

	if raw, has := valueMap["@nest"]; has {
		s, ok := raw.(string)
		if !ok || (s != "@nest" && looksLikeKeyword(s)) {
			return newError(ErrInvalidTermDefinition, "@nest must be @nest or a non-keyword term", nil)
		}
		def.Nest = s
	}

	if raw, has := valueMap["@prefix"]; has {
		b, ok := raw.(bool)
		if !ok {
			return newError(ErrInvalidTermDefinition, "@prefix must be a boolean", nil)
		}
		if strings.ContainsRune(term, ':') || strings.ContainsRune(term, '/') {
			return newError(ErrInvalidTermDefinition, "@prefix cannot be set on a compact-IRI-shaped or slash-containing term", nil)
		}
		def.Prefix = b
	} else if !strings.ContainsRune(term, ':') && !strings.ContainsAny(term, "/") && isSimpleIRITerm(def) {
		def.Prefix = true
	}

	for k := range valueMap {
		switch k {
		case "@id", "@reverse", "@type", "@language", "@direction", "@container", "@context",
			"@prefix", "@index", "@nest", "@protected":
		default:
			return newError(ErrInvalidTermDefinition, "unknown term definition entry "+k+" for term "+term, nil)
		}
	}

	defined[term] = 1
	active.Terms[term] = def
	return nil
}

func applyContainer(def *TermDefinition, raw interface{}) error {
	add := func(s string) error {
		switch s {
		case "@list", "@set", "@index", "@language", "@type", "@id", "@graph":
			def.Container[s] = true
			return nil
		default:
			return newError(ErrInvalidContainerMapping, "unknown container keyword "+s, nil)
		}
	}
	switch v := raw.(type) {
	case string:
		return add(v)
	case []interface{}:
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return newError(ErrInvalidContainerMapping, "@container array entries must be strings", nil)
			}
			if err := add(s); err != nil {
				return err
			}
		}
	default:
		return newError(ErrInvalidContainerMapping, "@container must be a string or array of strings", nil)
	}
	return nil
}

// isSimpleIRITerm reports whether def's IRI mapping ends in a URI gendelim,
// the condition under which a term lacking an explicit @prefix still
// defaults to being usable as a compact-IRI prefix.
func isSimpleIRITerm(def *TermDefinition) bool {
	if def.IRIMapping == "" {
		return false
	}
	last := def.IRIMapping[len(def.IRIMapping)-1]
	return strings.IndexByte(":/?#[]@", last) >= 0
}

// simpleTermOverridesMatch reports whether a redefinition of a protected
// term is a harmless no-op restating the same definition.
func simpleTermOverridesMatch(previous *TermDefinition, newValue interface{}) bool {
	s, ok := newValue.(string)
	if ok {
		return previous.IRIMapping == s
	}
	obj, ok := newValue.(map[string]interface{})
	if !ok {
		return false
	}
	for k, v := range obj {
		switch k {
		case "@id":
			if s, ok := v.(string); !ok || s != previous.IRIMapping {
				return false
			}
		case "@protected":
			continue
		default:
			return false
		}
	}
	return true
}
