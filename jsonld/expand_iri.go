package jsonld

import (
	"context"
	"strings"
)

// expandIRI implements the IRI Expansion algorithm. value is a
// term, compact IRI, absolute IRI, keyword, or relative IRI. When value is a
// key of localCtx that has not yet been defined, its term definition is
// created on demand (mutating active in place) — this lets a term's own
// @id/@type entries reference sibling terms regardless of object key
// order.
func (r *ContextResolver) expandIRI(ctx context.Context, active *Ctx, value string, documentRelative, vocab bool, localCtx map[string]interface{}, defined map[string]int) (string, error) {
	if value == "" {
		return "", nil
	}
	if isKeyword(value) {
		return value, nil
	}
	if looksLikeKeyword(value) {
		return value, nil
	}

	if localCtx != nil {
		if _, has := localCtx[value]; has && defined[value] != 1 {
			if err := r.createTermDefinition(ctx, active, localCtx, value, defined, false, false, active.Base); err != nil {
				return "", err
			}
		}
	}

	if def := active.getTerm(value); def != nil {
		if def.IRIMapping != "" && (isKeyword(def.IRIMapping) || vocab) {
			return def.IRIMapping, nil
		}
		if vocab {
			return def.IRIMapping, nil
		}
	}

	if prefix, suffix, ok := splitPrefixSuffix(value); ok {
		if localCtx != nil {
			if _, has := localCtx[prefix]; has && defined[prefix] != 1 {
				if err := r.createTermDefinition(ctx, active, localCtx, prefix, defined, false, false, active.Base); err != nil {
					return "", err
				}
			}
		}
		if def := active.getTerm(prefix); def != nil && def.Prefix && def.IRIMapping != "" {
			return def.IRIMapping + suffix, nil
		}
		if isAbsoluteIRI(value) {
			return value, nil
		}
	}

	if vocab && active.Vocab != "" {
		return active.Vocab + value, nil
	}

	if documentRelative {
		return resolveIRI(active.Base, value), nil
	}

	return value, nil
}

// ExpandIRI is the public entry point for IRI Expansion against
// an already-processed active context, with no pending local-context term
// definitions to resolve on demand.
func ExpandIRI(active *Ctx, value string, documentRelative, vocab bool) (string, error) {
	r := &ContextResolver{}
	return r.expandIRI(context.Background(), active, value, documentRelative, vocab, nil, map[string]int{})
}

// inverseContext supports Term Selection during compaction: for
// each IRI mapping it records the candidate terms ordered from most to
// least specific (container form, then @type/@language, then term length,
// then lexicographic order), so CompactIRI can pick the shortest adequate
// alias in O(1) after construction.
type inverseContext struct {
	// iri -> container -> typeOrLanguage -> kind -> term
	entries map[string]map[string]map[string]map[string]string
	order   map[string][]string // iri -> terms shortest-first, then lexicographic, for deterministic fallback
}

const (
	inverseKindLanguage = "@language"
	inverseKindType     = "@type"
	inverseKindAny      = "@any"
	inverseNone         = "@none"
)

// createInverseContext builds (and caches on active) the inverse context
// used for compaction (Inverse Context Creation).
func createInverseContext(active *Ctx) *inverseContext {
	if active.inverse != nil {
		return active.inverse
	}
	inv := &inverseContext{
		entries: map[string]map[string]map[string]map[string]string{},
		order:   map[string][]string{},
	}

	for _, term := range sortedByTermLengthThenLex(active.Terms) {
		def := active.Terms[term]
		if def == nil {
			continue
		}
		var iri string
		if def.Reverse {
			iri = def.IRIMapping
		} else if def.IRIMapping != "" {
			iri = def.IRIMapping
		} else if def.IRIMappingNull {
			continue
		} else {
			continue
		}

		containers := containerKeysOf(def)
		if _, ok := inv.entries[iri]; !ok {
			inv.entries[iri] = map[string]map[string]map[string]string{}
		}
		inv.order[iri] = append(inv.order[iri], term)

		for _, container := range containers {
			if _, ok := inv.entries[iri][container]; !ok {
				inv.entries[iri][container] = map[string]map[string]string{
					inverseKindLanguage: {},
					inverseKindType:     {},
				}
			}
			typeLang := inv.entries[iri][container]

			if def.Reverse {
				setIfAbsent(typeLang[inverseKindType], "@reverse", term)
				continue
			}
			switch {
			case def.TypeMapping != "":
				setIfAbsent(typeLang[inverseKindType], def.TypeMapping, term)
			case def.LanguageSet && def.DirectionSet:
				key := languageDirectionKey(def.Language, def.Direction)
				setIfAbsent(typeLang[inverseKindLanguage], key, term)
			case def.LanguageSet:
				key := def.Language
				if key == "" {
					key = inverseNone
				}
				setIfAbsent(typeLang[inverseKindLanguage], key, term)
			case def.DirectionSet:
				key := languageDirectionKey("", def.Direction)
				setIfAbsent(typeLang[inverseKindLanguage], key, term)
			default:
				setIfAbsent(typeLang[inverseKindLanguage], activeLanguageDirectionKey(active), term)
				setIfAbsent(typeLang[inverseKindType], inverseNone, term)
				setIfAbsent(typeLang[inverseKindLanguage], inverseNone, term)
			}
		}
	}

	active.inverse = inv
	return inv
}

func setIfAbsent(m map[string]string, key, term string) {
	if _, ok := m[key]; !ok {
		m[key] = term
	}
}

func languageDirectionKey(lang string, dir Direction) string {
	l := lang
	if l == "" {
		l = "null"
	}
	d := string(dir)
	if d == "" {
		d = "null"
	}
	return l + "_" + d
}

func activeLanguageDirectionKey(active *Ctx) string {
	return languageDirectionKey(active.DefaultLanguage, active.DefaultDirection)
}

func containerKeysOf(def *TermDefinition) []string {
	if len(def.Container) == 0 {
		return []string{"@none"}
	}
	var keys []string
	for k := range def.Container {
		keys = append(keys, k)
	}
	return sortedStrings(keys)
}

func sortedByTermLengthThenLex(terms map[string]*TermDefinition) []string {
	keys := sortedKeysOfTermMap(terms)
	return keys
}

func sortedKeysOfTermMap(terms map[string]*TermDefinition) []string {
	keys := make([]string, 0, len(terms))
	for k := range terms {
		keys = append(keys, k)
	}
	// Shortest-first, then lexicographic: compaction prefers the shorter
	// alias when several terms map to the same IRI.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0; j-- {
			a, b := keys[j-1], keys[j]
			if len(a) < len(b) || (len(a) == len(b) && a <= b) {
				break
			}
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// CompactIRI implements Term Selection / IRI Compaction: pick
// the best available term or compact IRI for iri under active, given the
// value's container/type/language context, falling back to @vocab-relative
// or base-relative forms, then the absolute IRI itself.
func CompactIRI(active *Ctx, iri string, value interface{}, vocab, reverse bool) string {
	if iri == "" {
		return iri
	}
	if isKeyword(iri) {
		for _, term := range sortedKeysOfTermMap(active.Terms) {
			def := active.Terms[term]
			if def != nil && def.IRIMapping == iri && !def.Reverse {
				return term
			}
		}
		return iri
	}

	inv := createInverseContext(active)
	if containers, ok := inv.entries[iri]; ok {
		containerKind, typeLangKey, kindBucket := selectCompactionKeys(value, reverse)
		for _, c := range containerKind {
			typeLang, ok := containers[c]
			if !ok {
				continue
			}
			bucket := typeLang[kindBucket]
			if bucket == nil {
				continue
			}
			if term, ok := bucket[typeLangKey]; ok {
				return term
			}
			if term, ok := bucket[inverseNone]; ok {
				return term
			}
		}
		if order := inv.order[iri]; len(order) > 0 {
			return order[0]
		}
	}

	if vocab && active.Vocab != "" && strings.HasPrefix(iri, active.Vocab) {
		suffix := iri[len(active.Vocab):]
		if suffix != "" && active.getTerm(suffix) == nil {
			return suffix
		}
	}

	for _, term := range sortedKeysOfTermMap(active.Terms) {
		def := active.Terms[term]
		if def == nil || def.Reverse || !def.Prefix || def.IRIMapping == "" {
			continue
		}
		if strings.HasPrefix(iri, def.IRIMapping) && len(iri) > len(def.IRIMapping) {
			suffix := iri[len(def.IRIMapping):]
			candidate := term + ":" + suffix
			if active.getTerm(candidate) == nil {
				return candidate
			}
		}
	}

	if !vocab {
		if strings.HasPrefix(iri, active.Base) && active.Base != "" {
			return strings.TrimPrefix(iri, active.Base)
		}
	}

	return iri
}

// selectCompactionKeys decides which container forms and type/language key
// to probe in the inverse context for a value being compacted.
func selectCompactionKeys(value interface{}, reverse bool) (containers []string, key, kind string) {
	if reverse {
		return []string{"@none"}, "@reverse", inverseKindType
	}
	if obj, ok := value.(map[string]interface{}); ok {
		if isListObject(obj) {
			return []string{"@list", "@none"}, inverseNone, inverseKindType
		}
		if t, has := obj["@type"]; has {
			if ts, ok := t.(string); ok {
				return []string{"@none"}, ts, inverseKindType
			}
		}
		if lang, has := obj["@language"]; has {
			ls, _ := lang.(string)
			dir := DirNone
			if d, has := obj["@direction"]; has {
				if ds, ok := d.(string); ok {
					dir = Direction(ds)
				}
			}
			return []string{"@language", "@none"}, languageDirectionKey(ls, dir), inverseKindLanguage
		}
	}
	return []string{"@none"}, inverseNone, inverseKindType
}
