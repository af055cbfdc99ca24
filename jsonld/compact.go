package jsonld

import "context"

// Compactor runs the Compaction algorithm against expanded
// JSON-LD, producing a document that uses the terms and aliases of a given
// context.
type Compactor struct {
	Resolver         *ContextResolver
	CompactArrays    bool // collapse single-element arrays to their sole value
	CompactToRelative bool // compact @id IRIs relative to Base
}

// NewCompactor creates a Compactor with the default flags.
func NewCompactor(resolver *ContextResolver) *Compactor {
	return &Compactor{Resolver: resolver, CompactArrays: true, CompactToRelative: true}
}

// Compact implements the top-level Compaction entry point:
// apply active context to element, which must already be fully expanded.
func (c *Compactor) Compact(ctx context.Context, active *Ctx, element interface{}) (map[string]interface{}, error) {
	compacted, err := c.compactElement(active, "", element, true)
	if err != nil {
		return nil, err
	}
	result, ok := compacted.(map[string]interface{})
	if !ok {
		if arr, ok := compacted.([]interface{}); ok && len(arr) == 0 {
			return map[string]interface{}{}, nil
		}
		result = map[string]interface{}{"@graph": arrayify(compacted)}
	}
	return result, nil
}

// compactElement is the recursive core of the Compaction algorithm.
func (c *Compactor) compactElement(active *Ctx, activeProperty string, element interface{}, insideReverse bool) (interface{}, error) {
	if arr, ok := element.([]interface{}); ok {
		var out []interface{}
		for _, item := range arr {
			compacted, err := c.compactElement(active, activeProperty, item, insideReverse)
			if err != nil {
				return nil, err
			}
			if compacted == nil {
				continue
			}
			out = append(out, compacted)
		}
		def := active.getTerm(activeProperty)
		if c.CompactArrays && len(out) == 1 && def == nil {
			return out[0], nil
		}
		if def != nil && (def.hasContainer("@list") || def.hasContainer("@set")) {
			return out, nil
		}
		if c.CompactArrays && len(out) == 1 {
			return out[0], nil
		}
		if out == nil {
			return []interface{}{}, nil
		}
		return out, nil
	}

	obj, ok := element.(map[string]interface{})
	if !ok {
		return element, nil
	}

	if isValueObject(obj) || isListObject(obj) {
		return c.compactValue(active, activeProperty, obj)
	}

	def := active.getTerm(activeProperty)
	insideReverse = def != nil && def.Reverse

	result := map[string]interface{}{}

	for _, expandedProperty := range sortedKeys(obj) {
		value := obj[expandedProperty]

		if expandedProperty == "@id" || expandedProperty == "@type" {
			iriCtx := active
			if !c.CompactToRelative && active.Base != "" {
				noBase := *active
				noBase.Base = ""
				iriCtx = &noBase
			}
			var compactedValues []interface{}
			for _, v := range arrayify(value) {
				s, ok := v.(string)
				if !ok {
					continue
				}
				vocab := expandedProperty == "@type"
				term := CompactIRI(iriCtx, s, nil, vocab, false)
				compactedValues = append(compactedValues, term)
			}
			alias := CompactIRI(active, expandedProperty, nil, true, false)
			if expandedProperty == "@type" {
				if len(compactedValues) == 1 && c.CompactArrays {
					result[alias] = compactedValues[0]
				} else {
					result[alias] = compactedValues
				}
			} else if len(compactedValues) > 0 {
				result[alias] = compactedValues[0]
			}
			continue
		}

		if expandedProperty == "@reverse" {
			reverseObj, _ := value.(map[string]interface{})
			alias := CompactIRI(active, "@reverse", nil, true, false)
			reverseResult := map[string]interface{}{}
			for prop, v := range reverseObj {
				compacted, err := c.compactElement(active, prop, v, true)
				if err != nil {
					return nil, err
				}
				term := CompactIRI(active, prop, v, true, true)
				reverseResult[term] = compacted
			}
			result[alias] = reverseResult
			continue
		}

		if expandedProperty == "@graph" || expandedProperty == "@included" {
			alias := CompactIRI(active, expandedProperty, nil, true, false)
			compacted, err := c.compactElement(active, expandedProperty, value, false)
			if err != nil {
				return nil, err
			}
			result[alias] = compacted
			continue
		}

		if isKeyword(expandedProperty) {
			alias := CompactIRI(active, expandedProperty, nil, true, false)
			result[alias] = value
			continue
		}

		for _, v := range arrayify(value) {
			term := CompactIRI(active, expandedProperty, v, true, insideReverse)
			compacted, err := c.compactElement(active, term, v, insideReverse)
			if err != nil {
				return nil, err
			}
			def := active.getTerm(term)
			target := result
			if def != nil && def.Nest != "" {
				target = nestTarget(result, def.Nest)
			}
			if def != nil && def.hasContainer("@language") {
				c.addLanguageMapEntry(target, term, v, compacted)
				continue
			}
			if def != nil && def.hasContainer("@index") && isObject(v) {
				c.addIndexMapEntry(target, term, v, compacted, def)
				continue
			}
			existing, has := target[term]
			if !has {
				if c.CompactArrays && !needsArrayForm(def) {
					target[term] = compacted
				} else {
					target[term] = []interface{}{compacted}
				}
				continue
			}
			target[term] = mergeArrayValue(existing, compacted)
		}
	}

	return result, nil
}

func needsArrayForm(def *TermDefinition) bool {
	return def != nil && (def.hasContainer("@set") || def.hasContainer("@list"))
}

// nestTarget returns (creating if absent) the nested object a term's
// compacted entries are placed under when its definition carries @nest.
func nestTarget(result map[string]interface{}, nestTerm string) map[string]interface{} {
	if m, ok := result[nestTerm].(map[string]interface{}); ok {
		return m
	}
	m := map[string]interface{}{}
	result[nestTerm] = m
	return m
}

func (c *Compactor) addLanguageMapEntry(result map[string]interface{}, term string, expandedValue, compacted interface{}) {
	m, _ := result[term].(map[string]interface{})
	if m == nil {
		m = map[string]interface{}{}
		result[term] = m
	}
	vobj, _ := expandedValue.(map[string]interface{})
	lang := "@none"
	if l, ok := vobj["@language"].(string); ok {
		lang = l
	}
	m[lang] = append(arrayify(m[lang]), compacted)
}

func (c *Compactor) addIndexMapEntry(result map[string]interface{}, term string, expandedValue, compacted interface{}, def *TermDefinition) {
	m, _ := result[term].(map[string]interface{})
	if m == nil {
		m = map[string]interface{}{}
		result[term] = m
	}
	vobj, _ := expandedValue.(map[string]interface{})
	idx := "@none"
	if def.IndexMapping != "" && def.IndexMapping != "@index" {
		if s, ok := vobj[def.IndexMapping].(string); ok {
			idx = s
		}
	} else if s, ok := vobj["@index"].(string); ok {
		idx = s
	}
	m[idx] = append(arrayify(m[idx]), compacted)
}

// compactValue implements "Value Compaction": collapse an
// expanded value or list object into its shortest native JSON form for
// activeProperty under active.
func (c *Compactor) compactValue(active *Ctx, activeProperty string, obj map[string]interface{}) (interface{}, error) {
	if isListObject(obj) {
		list := arrayify(obj["@list"])
		var out []interface{}
		for _, item := range list {
			v, err := c.compactElement(active, activeProperty, item, false)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		def := active.getTerm(activeProperty)
		if def != nil && def.hasContainer("@list") {
			if out == nil {
				return []interface{}{}, nil
			}
			return out, nil
		}
		alias := CompactIRI(active, "@list", nil, true, false)
		return map[string]interface{}{alias: out}, nil
	}

	def := active.getTerm(activeProperty)
	value := obj["@value"]
	typ, hasType := obj["@type"].(string)
	lang, hasLang := obj["@language"].(string)

	if hasType && def != nil && def.TypeMapping == typ {
		return value, nil
	}
	if hasLang && def != nil && def.LanguageSet && def.Language == lang && !hasType {
		return value, nil
	}
	if !hasType && !hasLang {
		if def == nil || (def.TypeMapping == "" && !def.LanguageSet) {
			if _, isStr := value.(string); isStr {
				if active.DefaultLanguage == "" {
					return value, nil
				}
			} else {
				return value, nil
			}
		}
	}

	result := map[string]interface{}{}
	valueAlias := CompactIRI(active, "@value", nil, true, false)
	result[valueAlias] = value
	if hasType {
		typeAlias := CompactIRI(active, "@type", nil, true, false)
		result[typeAlias] = CompactIRI(active, typ, nil, true, false)
	}
	if hasLang {
		langAlias := CompactIRI(active, "@language", nil, true, false)
		result[langAlias] = lang
	}
	if dir, has := obj["@direction"]; has {
		dirAlias := CompactIRI(active, "@direction", nil, true, false)
		result[dirAlias] = dir
	}
	if idx, has := obj["@index"]; has {
		idxAlias := CompactIRI(active, "@index", nil, true, false)
		result[idxAlias] = idx
	}
	return result, nil
}
