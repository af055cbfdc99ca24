package jsonld

import "sort"

// keywords is the set of JSON-LD keywords recognized by this processor.
var keywords = map[string]bool{
	"@base":        true,
	"@container":   true,
	"@context":     true,
	"@default":     true,
	"@direction":   true,
	"@embed":       true,
	"@explicit":    true,
	"@graph":       true,
	"@id":          true,
	"@import":      true,
	"@included":    true,
	"@index":       true,
	"@json":        true,
	"@language":    true,
	"@list":        true,
	"@nest":        true,
	"@none":        true,
	"@omitDefault": true,
	"@prefix":      true,
	"@preserve":    true,
	"@propagate":   true,
	"@protected":   true,
	"@requireAll":  true,
	"@reverse":     true,
	"@set":         true,
	"@type":        true,
	"@value":       true,
	"@version":     true,
	"@vocab":       true,
}

// isKeyword reports whether v is a recognized JSON-LD keyword string.
func isKeyword(v string) bool {
	return keywords[v]
}

// looksLikeKeyword reports whether v has the syntactic shape of a keyword
// ("@" followed by one or more ASCII letters) without necessarily being one
// of the recognized keywords above. Terms of this shape must be rejected.
func looksLikeKeyword(v string) bool {
	if len(v) < 2 || v[0] != '@' {
		return false
	}
	for _, r := range v[1:] {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return true
}

func isObject(v interface{}) bool {
	_, ok := v.(map[string]interface{})
	return ok
}

func isArray(v interface{}) bool {
	_, ok := v.([]interface{})
	return ok
}

func isString(v interface{}) bool {
	_, ok := v.(string)
	return ok
}

func isBool(v interface{}) bool {
	_, ok := v.(bool)
	return ok
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case float64, int, int64:
		return true
	default:
		return false
	}
}

func isEmptyObject(v interface{}) bool {
	m, ok := v.(map[string]interface{})
	return ok && len(m) == 0
}

// isValueObject reports whether v is an expanded value object (has an "@value" key).
func isValueObject(v interface{}) bool {
	m, ok := v.(map[string]interface{})
	if !ok {
		return false
	}
	_, has := m["@value"]
	return has
}

// isListObject reports whether v is an expanded list object.
func isListObject(v interface{}) bool {
	m, ok := v.(map[string]interface{})
	if !ok {
		return false
	}
	_, has := m["@list"]
	return has
}

// isGraphObject reports whether v is an expanded graph object: has "@graph"
// and, besides "@id"/"@index"/"@context", nothing else.
func isGraphObject(v interface{}) bool {
	m, ok := v.(map[string]interface{})
	if !ok {
		return false
	}
	if _, has := m["@graph"]; !has {
		return false
	}
	for k := range m {
		switch k {
		case "@graph", "@id", "@index", "@context":
		default:
			return false
		}
	}
	return true
}

// isSimpleGraphObject is a graph object with no @id.
func isSimpleGraphObject(v interface{}) bool {
	m, ok := v.(map[string]interface{})
	if !ok || !isGraphObject(v) {
		return false
	}
	_, hasID := m["@id"]
	return !hasID
}

// isBlankNodeLabel reports whether s looks like a blank node identifier ("_:...").
func isBlankNodeLabel(s string) bool {
	return len(s) >= 2 && s[0] == '_' && s[1] == ':'
}

// arrayify wraps v in a single-element array unless it is already an array.
func arrayify(v interface{}) []interface{} {
	if arr, ok := v.([]interface{}); ok {
		return arr
	}
	if v == nil {
		return []interface{}{}
	}
	return []interface{}{v}
}

// cloneValue performs a deep copy of a parsed JSON value.
func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, sub := range val {
			out[k] = cloneValue(sub)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, sub := range val {
			out[i] = cloneValue(sub)
		}
		return out
	default:
		return v
	}
}

// compareValues reports whether two expanded values are JSON-LD value-equal:
// structurally identical value/node/list objects, order-insensitive for
// object keys.
func compareValues(a, b interface{}) bool {
	switch av := a.(type) {
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, sub := range av {
			other, has := bv[k]
			if !has || !compareValues(sub, other) {
				return false
			}
		}
		return true
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !compareValues(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// sortedKeys returns the keys of an object in lexicographic order, used
// wherever an algorithm iterates an object's entries and requires a stable
// order (context processing, expansion, compaction, node-map generation,
// framing, ToRDF).
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortedStrings returns a sorted copy of ss.
func sortedStrings(ss []string) []string {
	out := make([]string, len(ss))
	copy(out, ss)
	sort.Strings(out)
	return out
}
