package jsonld

import (
	"context"
)

// Expander runs the Expansion algorithm against a shared
// ContextResolver, so type-scoped and property-scoped contexts encountered
// mid-document resolve remote references through the same caches as the
// top-level @context.
type Expander struct {
	Resolver       *ContextResolver
	Base           string
	ProcessingMode string

	// OnKeyDropped is invoked once per ignored object key: a key that
	// expands to neither a keyword nor
	// an absolute IRI. Returning a non-nil error aborts expansion with it.
	OnKeyDropped func(key string) error

	// FrameExpansion relaxes the @id/@type/@value rules so frame patterns
	// survive expansion: empty objects stay as wildcards, empty arrays mean
	// "match none", @default entries are kept, and @id/@type accept arrays.
	FrameExpansion bool
}

// NewExpander creates an Expander sharing resolver's caches.
func NewExpander(resolver *ContextResolver) *Expander {
	return &Expander{Resolver: resolver, ProcessingMode: ProcessingMode11}
}

// Expand implements the top-level Expansion algorithm entry point:
// resolve any initial @context, then recursively expand element
// under the resulting active context with active property "".
func (e *Expander) Expand(ctx context.Context, active *Ctx, element interface{}) ([]interface{}, error) {
	expanded, err := e.expandElement(ctx, active, "", element, nil)
	if err != nil {
		return nil, err
	}
	result := arrayify(expanded)
	if len(result) == 1 {
		if m, ok := result[0].(map[string]interface{}); ok {
			if _, has := m["@value"]; !has {
				if len(m) == 1 {
					if _, has := m["@graph"]; has {
						return arrayify(m["@graph"]), nil
					}
				}
			}
		}
	}
	return result, nil
}

// expandElement implements Algorithm 4.5 steps for a single element.
// typeScopedCtx, when nil, is set to the context in effect after this node's
// own @context was applied: @type values are expanded relative to the
// context as it existed before any type-scoped contexts were applied.
func (e *Expander) expandElement(ctx context.Context, active *Ctx, activeProperty string, element interface{}, typeScopedCtx *Ctx) (interface{}, error) {
	if element == nil {
		return nil, nil
	}

	if !isObject(element) && !isArray(element) {
		if activeProperty == "@graph" {
			return nil, nil
		}
		return e.expandValue(active, activeProperty, element)
	}

	if arr, ok := element.([]interface{}); ok {
		def := active.getTerm(activeProperty)
		var out []interface{}
		for _, item := range arr {
			expanded, err := e.expandElement(ctx, active, activeProperty, item, typeScopedCtx)
			if err != nil {
				return nil, err
			}
			if expanded == nil {
				continue
			}
			if def.hasContainer("@list") {
				// A list container whose array value contains nested arrays
				// (lists of lists, JSON-LD 1.1) recurses into this same
				// branch one level down; wrap that nested array as its own
				// list object so it survives as a distinct list rather than
				// collapsing into a single flat array.
				if ea, ok := expanded.([]interface{}); ok {
					expanded = map[string]interface{}{"@list": ea}
				}
				out = append(out, expanded)
				continue
			}
			if ea, ok := expanded.([]interface{}); ok {
				out = append(out, ea...)
			} else {
				out = append(out, expanded)
			}
		}
		return out, nil
	}

	obj := element.(map[string]interface{})

	if localCtx, has := obj["@context"]; has {
		next, err := e.Resolver.ProcessContext(ctx, active, localCtx, e.Base, false)
		if err != nil {
			return nil, err
		}
		active = next
	}

	if typeScopedCtx == nil {
		typeScopedCtx = active
	}

	propagated := active
	propagated, err := e.applyPropertyScopedContext(ctx, propagated, activeProperty)
	if err != nil {
		return nil, err
	}
	active = propagated

	for _, key := range sortedKeys(obj) {
		if key == "@type" {
			types := sortedStrings(stringsOf(arrayify(obj[key])))
			for _, t := range types {
				def := typeScopedCtx.getTerm(t)
				if def != nil && def.HasLocalContext {
					merged, err := e.Resolver.ProcessContext(ctx, active, def.LocalContext, def.BaseURL, false)
					if err != nil {
						return nil, err
					}
					active = merged
				}
			}
		}
	}

	result := map[string]interface{}{}
	var nests []interface{}

	for _, key := range sortedKeys(obj) {
		value := obj[key]
		if key == "@context" {
			continue
		}

		expandedProperty, err := e.Resolver.expandIRI(ctx, active, key, false, true, nil, map[string]int{})
		if err != nil {
			return nil, err
		}

		if expandedProperty == "" || (!isAbsoluteIRI(expandedProperty) && !isKeyword(expandedProperty)) {
			if e.OnKeyDropped != nil {
				if err := e.OnKeyDropped(key); err != nil {
					return nil, err
				}
			}
			continue
		}

		if isKeyword(expandedProperty) {
			if expandedProperty == "@nest" {
				nests = append(nests, arrayify(value)...)
				continue
			}
			if err := e.expandKeywordEntry(ctx, active, result, expandedProperty, key, value, typeScopedCtx); err != nil {
				return nil, err
			}
			continue
		}

		def := active.getTerm(key)
		if err := e.expandPropertyEntry(ctx, active, result, def, expandedProperty, key, value, typeScopedCtx); err != nil {
			return nil, err
		}
	}

	// Nested entries expand as if they were entries of the node itself; a
	// nest value may itself contain further nest properties, so this is a
	// queue rather than a single pass.
	for i := 0; i < len(nests); i++ {
		nvObj, ok := nests[i].(map[string]interface{})
		if !ok {
			return nil, newError(ErrInvalidContextEntry, "@nest value must be an object", nil)
		}
		for _, key := range sortedKeys(nvObj) {
			expandedProperty, err := e.Resolver.expandIRI(ctx, active, key, false, true, nil, map[string]int{})
			if err != nil {
				return nil, err
			}
			if expandedProperty == "@value" {
				return nil, newError(ErrInvalidContextEntry, "@nest value must not contain @value", nil)
			}
			if expandedProperty == "" || (!isAbsoluteIRI(expandedProperty) && !isKeyword(expandedProperty)) {
				if e.OnKeyDropped != nil {
					if err := e.OnKeyDropped(key); err != nil {
						return nil, err
					}
				}
				continue
			}
			if expandedProperty == "@nest" {
				nests = append(nests, arrayify(nvObj[key])...)
				continue
			}
			if isKeyword(expandedProperty) {
				if err := e.expandKeywordEntry(ctx, active, result, expandedProperty, key, nvObj[key], typeScopedCtx); err != nil {
					return nil, err
				}
				continue
			}
			def := active.getTerm(key)
			if err := e.expandPropertyEntry(ctx, active, result, def, expandedProperty, key, nvObj[key], typeScopedCtx); err != nil {
				return nil, err
			}
		}
	}

	if lst, has := result["@list"]; has {
		for k := range result {
			switch k {
			case "@list", "@index":
			default:
				return nil, newError(ErrInvalidSetOrListObject, "list object cannot contain "+k, nil)
			}
		}
		return map[string]interface{}{"@list": lst}, nil
	}

	if v, hasValue := result["@value"]; hasValue {
		if !e.FrameExpansion {
			if err := validateValueObject(result); err != nil {
				return nil, err
			}
			if v == nil {
				return nil, nil
			}
		}
	}

	if len(result) == 0 {
		if e.FrameExpansion {
			return result, nil
		}
		return nil, nil
	}
	if len(result) == 1 {
		if _, has := result["@language"]; has {
			return nil, nil
		}
	}

	return result, nil
}

func stringsOf(arr []interface{}) []string {
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// applyPropertyScopedContext applies activeProperty's own scoped @context,
// if the active context defines one for that term.
func (e *Expander) applyPropertyScopedContext(ctx context.Context, active *Ctx, activeProperty string) (*Ctx, error) {
	if activeProperty == "" {
		return active, nil
	}
	def := active.getTerm(activeProperty)
	if def == nil || !def.HasLocalContext {
		return active, nil
	}
	return e.Resolver.ProcessContext(ctx, active, def.LocalContext, def.BaseURL, false)
}

func (e *Expander) expandKeywordEntry(ctx context.Context, active *Ctx, result map[string]interface{}, expandedProperty, key string, value interface{}, typeScopedCtx *Ctx) error {
	switch expandedProperty {
	case "@id":
		if e.FrameExpansion {
			ids := []interface{}{}
			for _, v := range arrayify(value) {
				if m, ok := v.(map[string]interface{}); ok && len(m) == 0 {
					ids = append(ids, m)
					continue
				}
				s, ok := v.(string)
				if !ok {
					return newError(ErrInvalidIDValue, "@id frame values must be strings or the empty object", nil)
				}
				expanded, err := e.Resolver.expandIRI(ctx, active, s, true, false, nil, map[string]int{})
				if err != nil {
					return err
				}
				ids = append(ids, expanded)
			}
			result["@id"] = ids
			return nil
		}
		s, ok := value.(string)
		if !ok {
			return newError(ErrInvalidIDValue, "@id value must be a string", nil)
		}
		expanded, err := e.Resolver.expandIRI(ctx, active, s, true, false, nil, map[string]int{})
		if err != nil {
			return err
		}
		result["@id"] = expanded
	case "@type":
		if e.FrameExpansion {
			types := []interface{}{}
			for _, v := range arrayify(value) {
				if m, ok := v.(map[string]interface{}); ok && len(m) == 0 {
					types = append(types, m)
					continue
				}
				s, ok := v.(string)
				if !ok {
					return newError(ErrInvalidTypeValue, "@type values must be strings", nil)
				}
				expanded, err := e.Resolver.expandIRI(ctx, typeScopedCtx, s, true, true, nil, map[string]int{})
				if err != nil {
					return err
				}
				types = append(types, expanded)
			}
			result["@type"] = types
			return nil
		}
		var types []string
		for _, v := range arrayify(value) {
			s, ok := v.(string)
			if !ok {
				return newError(ErrInvalidTypeValue, "@type values must be strings", nil)
			}
			expanded, err := e.Resolver.expandIRI(ctx, typeScopedCtx, s, true, true, nil, map[string]int{})
			if err != nil {
				return err
			}
			types = append(types, expanded)
		}
		mergeKeywordArray(result, "@type", types)
	case "@graph":
		expanded, err := e.expandElement(ctx, active, "@graph", value, nil)
		if err != nil {
			return err
		}
		result["@graph"] = arrayify(expanded)
	case "@value":
		result["@value"] = value
	case "@language":
		s, ok := value.(string)
		if !ok {
			return newError(ErrInvalidLanguageTaggedString, "@language value must be a string", nil)
		}
		result["@language"] = canonicalLangTag(s)
	case "@direction":
		s, ok := value.(string)
		if !ok || (s != string(DirLTR) && s != string(DirRTL)) {
			return newError(ErrInvalidContextEntry, "@direction value must be \"ltr\" or \"rtl\"", nil)
		}
		result["@direction"] = s
	case "@index":
		result["@index"] = value
	case "@list":
		expanded, err := e.expandElement(ctx, active, "@list", value, nil)
		if err != nil {
			return err
		}
		list := arrayify(expanded)
		for _, item := range list {
			if isListObject(item) {
				return newError(ErrListOfLists, "a list may not contain another list", nil)
			}
		}
		result["@list"] = list
	case "@set":
		expanded, err := e.expandElement(ctx, active, "", value, nil)
		if err != nil {
			return err
		}
		result["@set"] = arrayify(expanded)
	case "@reverse":
		obj, ok := value.(map[string]interface{})
		if !ok {
			return newError(ErrInvalidReversePropertyValue, "@reverse value must be an object", nil)
		}
		expanded, err := e.expandElement(ctx, active, "@reverse", obj, nil)
		if err != nil {
			return err
		}
		expandedObj, _ := expanded.(map[string]interface{})
		reverseResult, _ := result["@reverse"].(map[string]interface{})
		if reverseResult == nil {
			reverseResult = map[string]interface{}{}
		}
		for k, v := range expandedObj {
			if k == "@reverse" {
				mergeForward(result, v.(map[string]interface{}))
				continue
			}
			reverseResult[k] = mergeArrayValue(reverseResult[k], v)
		}
		if len(reverseResult) > 0 {
			result["@reverse"] = reverseResult
		}
	case "@included":
		expanded, err := e.expandElement(ctx, active, "", value, nil)
		if err != nil {
			return err
		}
		result["@included"] = arrayify(expanded)
	default:
		result[expandedProperty] = value
	}
	return nil
}

func mergeForward(result map[string]interface{}, forward map[string]interface{}) {
	for k, v := range forward {
		result[k] = mergeArrayValue(result[k], v)
	}
}

func mergeArrayValue(existing, addition interface{}) []interface{} {
	out := arrayify(existing)
	out = append(out, arrayify(addition)...)
	return out
}

func mergeKeywordArray(result map[string]interface{}, key string, values []string) {
	existing := arrayify(result[key])
	for _, v := range values {
		existing = append(existing, v)
	}
	result[key] = existing
}

func (e *Expander) expandPropertyEntry(ctx context.Context, active *Ctx, result map[string]interface{}, def *TermDefinition, expandedProperty, key string, value interface{}, typeScopedCtx *Ctx) error {
	if def != nil && def.Reverse {
		expanded, err := e.expandElement(ctx, active, key, value, nil)
		if err != nil {
			return err
		}
		reverseResult, _ := result["@reverse"].(map[string]interface{})
		if reverseResult == nil {
			reverseResult = map[string]interface{}{}
		}
		reverseResult[expandedProperty] = mergeArrayValue(reverseResult[expandedProperty], expanded)
		result["@reverse"] = reverseResult
		return nil
	}

	if def != nil && def.hasContainer("@language") && isObject(value) {
		langMap := value.(map[string]interface{})
		var out []interface{}
		for _, lang := range sortedKeys(langMap) {
			for _, item := range arrayify(langMap[lang]) {
				s, ok := item.(string)
				if !ok {
					continue
				}
				v := map[string]interface{}{"@value": s}
				if lang != "@none" {
					v["@language"] = canonicalLangTag(lang)
				}
				out = append(out, v)
			}
		}
		result[expandedProperty] = mergeArrayValue(result[expandedProperty], out)
		return nil
	}

	if def != nil && def.hasContainer("@index") && isObject(value) {
		indexMap := value.(map[string]interface{})
		var out []interface{}
		for _, idx := range sortedKeys(indexMap) {
			expanded, err := e.expandElement(ctx, active, key, indexMap[idx], nil)
			if err != nil {
				return err
			}
			for _, item := range arrayify(expanded) {
				m, ok := item.(map[string]interface{})
				if ok && def.IndexMapping != "" && def.IndexMapping != "@index" {
					idxIRI, err := e.Resolver.expandIRI(ctx, active, def.IndexMapping, false, true, nil, map[string]int{})
					if err == nil {
						m[idxIRI] = idx
					}
				} else if ok {
					m["@index"] = idx
				}
				out = append(out, item)
			}
		}
		result[expandedProperty] = mergeArrayValue(result[expandedProperty], out)
		return nil
	}

	expanded, err := e.expandElement(ctx, active, key, value, nil)
	if err != nil {
		return err
	}
	if def != nil && def.TypeMapping == "@json" {
		expanded = map[string]interface{}{"@value": value, "@type": "@json"}
	} else if def != nil && def.hasContainer("@list") && !isListObject(expanded) {
		// Container @list always yields exactly one list object per entry
		//: the whole (possibly multi-valued) property value
		// becomes the single @list array, never a bare expanded array.
		expanded = map[string]interface{}{"@list": arrayify(expanded)}
	}
	result[expandedProperty] = mergeArrayValue(result[expandedProperty], expanded)
	return nil
}

// expandValue implements "Value Expansion": wrap a scalar into
// an expanded value object using activeProperty's term definition.
func (e *Expander) expandValue(active *Ctx, activeProperty string, value interface{}) (interface{}, error) {
	def := active.getTerm(activeProperty)

	if def != nil && def.TypeMapping == "@id" {
		if s, ok := value.(string); ok {
			expanded, err := ExpandIRI(active, s, true, false)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"@id": expanded}, nil
		}
	}
	if def != nil && def.TypeMapping == "@vocab" {
		if s, ok := value.(string); ok {
			expanded, err := ExpandIRI(active, s, true, true)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"@id": expanded}, nil
		}
	}

	result := map[string]interface{}{"@value": value}

	if def != nil && def.TypeMapping != "" && def.TypeMapping != "@id" && def.TypeMapping != "@vocab" && def.TypeMapping != "@json" {
		result["@type"] = def.TypeMapping
		return result, nil
	}

	if s, ok := value.(string); ok {
		lang := active.DefaultLanguage
		dir := active.DefaultDirection
		if def != nil && def.LanguageSet {
			lang = def.Language
		}
		if def != nil && def.DirectionSet {
			dir = def.Direction
		}
		if lang != "" {
			result["@language"] = lang
		}
		if dir != DirNone {
			result["@direction"] = string(dir)
		}
		_ = s
	}

	return result, nil
}

// validateValueObject checks the invariants of an expanded value object.
func validateValueObject(v map[string]interface{}) error {
	for k := range v {
		switch k {
		case "@value", "@type", "@language", "@direction", "@index":
		default:
			return newError(ErrInvalidValueObjectValue, "value object cannot contain "+k, nil)
		}
	}
	if _, hasLang := v["@language"]; hasLang {
		if t, hasType := v["@type"]; hasType {
			_ = t
			return newError(ErrInvalidValueObjectValue, "value object cannot have both @language and @type", nil)
		}
	}
	if t, hasType := v["@type"].(string); hasType {
		if t != "@json" && !isAbsoluteIRI(t) {
			return newError(ErrInvalidTypedValue, "@type in a value object must be an absolute IRI or @json", nil)
		}
	}
	return nil
}
