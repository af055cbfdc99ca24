package jsonld

import (
	"strconv"
	"strings"
)

// FromRDFOptions carries the FromRDF flags.
type FromRDFOptions struct {
	UseNativeTypes bool
	UseRDFType     bool
	RDFDirection   RDFDirectionMode
}

// FromRDF implements the Serialize RDF as JSON-LD algorithm: convert a
// Dataset into expanded JSON-LD, one graph object per
// named graph plus the default graph's node set, reconstructing RDF
// Collections back into @list values.
func FromRDF(ds *Dataset, opts FromRDFOptions) ([]interface{}, error) {
	graphs := map[string]map[string]map[string]interface{}{}
	order := map[string][]string{}

	ensureNode := func(graphName, id string) map[string]interface{} {
		if _, ok := graphs[graphName]; !ok {
			graphs[graphName] = map[string]map[string]interface{}{}
		}
		node, ok := graphs[graphName][id]
		if !ok {
			node = map[string]interface{}{"@id": id}
			graphs[graphName][id] = node
			order[graphName] = append(order[graphName], id)
		}
		return node
	}

	listNodes := map[string]map[string]map[string]interface{}{}     // graph -> bnode id -> {first, rest}
	compoundNodes := map[string]map[string]map[string]interface{}{} // graph -> bnode id -> {value, language, direction}

	for _, graphName := range ds.GraphNames() {
		if graphName != DefaultGraphName {
			ensureNode(DefaultGraphName, graphName)
		}
		for _, q := range ds.Graphs[graphName] {
			subjectID := q.Subject.String()

			if q.Predicate.Value == rdfFirst || q.Predicate.Value == rdfRest {
				g, ok := listNodes[graphName]
				if !ok {
					g = map[string]map[string]interface{}{}
					listNodes[graphName] = g
				}
				entry, ok := g[subjectID]
				if !ok {
					entry = map[string]interface{}{}
					g[subjectID] = entry
				}
				if q.Predicate.Value == rdfFirst {
					entry["first"] = rdfTermToValue(q.Object, opts)
				} else {
					entry["rest"] = q.Object.String()
				}
				continue
			}

			if opts.RDFDirection == RDFDirectionCompoundLiteral && isBlankNodeLabel(subjectID) {
				if key, ok := compoundEntryKey(q.Predicate.Value); ok {
					if lit, ok := q.Object.(Literal); ok {
						g, ok := compoundNodes[graphName]
						if !ok {
							g = map[string]map[string]interface{}{}
							compoundNodes[graphName] = g
						}
						entry, ok := g[subjectID]
						if !ok {
							entry = map[string]interface{}{}
							g[subjectID] = entry
						}
						entry[key] = lit.Lexical
						continue
					}
				}
			}

			node := ensureNode(graphName, subjectID)
			if q.Predicate.Value == rdfType && !opts.UseRDFType {
				node["@type"] = append(arrayify(node["@type"]), q.Object.String())
				continue
			}
			value := rdfTermToValue(q.Object, opts)
			node[q.Predicate.Value] = append(arrayify(node[q.Predicate.Value]), value)
		}
	}

	var result []interface{}
	defaultOrder := order[DefaultGraphName]
	for _, id := range sortedStrings(defaultOrder) {
		node := graphs[DefaultGraphName][id]
		if subGraph, has := graphs[id]; has {
			var subNodes []interface{}
			for _, subID := range sortedStrings(order[id]) {
				subNodes = append(subNodes, materializeNode(subGraph[subID], listNodes[id], compoundNodes[id]))
			}
			node["@graph"] = subNodes
		}
		result = append(result, materializeNode(node, listNodes[DefaultGraphName], compoundNodes[DefaultGraphName]))
	}

	return result, nil
}

// compoundEntryKey maps a compound-literal component predicate to its cell
// key, or ok=false for every other predicate.
func compoundEntryKey(predicate string) (string, bool) {
	switch predicate {
	case rdfValue:
		return "value", true
	case rdfLanguage:
		return "language", true
	case rdfDirection:
		return "direction", true
	}
	return "", false
}

// materializeNode resolves bare blank-node references that are actually
// RDF Collection heads into @list values (walking the rest-chain recorded
// in listCells) and compound-literal blank nodes into direction-carrying
// value objects.
func materializeNode(node map[string]interface{}, listCells, compoundCells map[string]map[string]interface{}) map[string]interface{} {
	if node == nil {
		return nil
	}
	out := map[string]interface{}{}
	for k, v := range node {
		switch k {
		case "@id", "@type":
			out[k] = v
			continue
		}
		var newValues []interface{}
		for _, item := range arrayify(v) {
			if ref, ok := item.(map[string]interface{}); ok {
				if id, has := ref["@id"].(string); has {
					if list, ok := resolveList(id, listCells); ok {
						newValues = append(newValues, map[string]interface{}{"@list": list})
						continue
					}
					if vobj, ok := resolveCompoundLiteral(id, compoundCells); ok {
						newValues = append(newValues, vobj)
						continue
					}
				}
			}
			newValues = append(newValues, item)
		}
		out[k] = newValues
	}
	return out
}

// resolveCompoundLiteral rebuilds a direction-carrying value object from a
// compound-literal cell: a blank node carrying rdf:value plus rdf:direction
// (and usually rdf:language).
func resolveCompoundLiteral(id string, compoundCells map[string]map[string]interface{}) (map[string]interface{}, bool) {
	if compoundCells == nil {
		return nil, false
	}
	entry, ok := compoundCells[id]
	if !ok {
		return nil, false
	}
	value, hasValue := entry["value"]
	dir, hasDir := entry["direction"]
	if !hasValue || !hasDir {
		return nil, false
	}
	result := map[string]interface{}{"@value": value, "@direction": dir}
	if lang, has := entry["language"]; has {
		result["@language"] = lang
	}
	return result, true
}

// resolveList walks the rdf:first/rdf:rest chain starting at head, returning
// the resulting JSON-LD value array if head is the start of a well-formed
// list (ends at rdf:nil), or ok=false if head isn't a list cell at all.
func resolveList(head string, listCells map[string]map[string]interface{}) ([]interface{}, bool) {
	if listCells == nil {
		return nil, false
	}
	if head == rdfNil {
		return []interface{}{}, true
	}
	if _, ok := listCells[head]; !ok {
		return nil, false
	}
	var out []interface{}
	cur := head
	for {
		entry, ok := listCells[cur]
		if !ok {
			break
		}
		out = append(out, entry["first"])
		rest, _ := entry["rest"].(string)
		if rest == "" || rest == rdfNil {
			break
		}
		cur = rest
	}
	return out, true
}

// rdfTermToValue converts a single RDF term into its JSON-LD object/value
// representation, honoring useNativeTypes for
// XSD boolean/integer/double literals.
func rdfTermToValue(term Term, opts FromRDFOptions) interface{} {
	switch t := term.(type) {
	case IRI:
		return map[string]interface{}{"@id": t.Value}
	case BlankNode:
		return map[string]interface{}{"@id": "_:" + t.ID}
	case Literal:
		result := map[string]interface{}{"@value": t.Lexical}
		if t.Lang != "" {
			result["@language"] = t.Lang
			return result
		}
		if t.Datatype.Value == "" || t.Datatype.Value == xsdString {
			return result
		}
		if t.Datatype.Value == rdfLangString {
			result["@language"] = t.Lang
			return result
		}
		if opts.RDFDirection == RDFDirectionI18nDatatype && strings.HasPrefix(t.Datatype.Value, i18nNamespace) {
			rest := strings.TrimPrefix(t.Datatype.Value, i18nNamespace)
			parts := strings.SplitN(rest, "_", 2)
			if len(parts) == 2 {
				if parts[0] != "" {
					result["@language"] = parts[0]
				}
				result["@direction"] = parts[1]
				return result
			}
		}
		if opts.UseNativeTypes {
			switch t.Datatype.Value {
			case "http://www.w3.org/2001/XMLSchema#boolean":
				if t.Lexical == "true" {
					result["@value"] = true
				} else if t.Lexical == "false" {
					result["@value"] = false
				} else {
					result["@type"] = t.Datatype.Value
				}
				return result
			case "http://www.w3.org/2001/XMLSchema#integer":
				if n, err := strconv.ParseInt(t.Lexical, 10, 64); err == nil {
					result["@value"] = float64(n)
				} else {
					result["@type"] = t.Datatype.Value
				}
				return result
			case "http://www.w3.org/2001/XMLSchema#double":
				if f, err := strconv.ParseFloat(t.Lexical, 64); err == nil {
					result["@value"] = f
				} else {
					result["@type"] = t.Datatype.Value
				}
				return result
			}
		}
		result["@type"] = t.Datatype.Value
		return result
	default:
		return nil
	}
}
