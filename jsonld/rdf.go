package jsonld

import (
	"strconv"
	"strings"
)

// RDFDirectionMode selects how a literal's base direction is represented
// in the output dataset: unset, "i18n-datatype", or "compound-literal".
type RDFDirectionMode string

const (
	RDFDirectionNone            RDFDirectionMode = ""
	RDFDirectionI18nDatatype    RDFDirectionMode = "i18n-datatype"
	RDFDirectionCompoundLiteral RDFDirectionMode = "compound-literal"
)

// ToRDFOptions carries the ToRDF flags.
type ToRDFOptions struct {
	ProduceGeneralizedRDF bool
	RDFDirection          RDFDirectionMode
}

const rdfLangString = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
const rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
const xsdString = "http://www.w3.org/2001/XMLSchema#string"
const rdfFirst = "http://www.w3.org/1999/02/22-rdf-syntax-ns#first"
const rdfRest = "http://www.w3.org/1999/02/22-rdf-syntax-ns#rest"
const rdfNil = "http://www.w3.org/1999/02/22-rdf-syntax-ns#nil"
const rdfValue = "http://www.w3.org/1999/02/22-rdf-syntax-ns#value"
const rdfLanguage = "http://www.w3.org/1999/02/22-rdf-syntax-ns#language"
const rdfDirection = "http://www.w3.org/1999/02/22-rdf-syntax-ns#direction"
const i18nNamespace = "https://www.w3.org/ns/i18n#"

// ToRDF implements "Deep Node Map to RDF Conversion": given an
// already-expanded document, build the node map, then emit one Dataset
// covering the default graph and every named graph.
func ToRDF(expanded interface{}, opts ToRDFOptions) (*Dataset, error) {
	gen := NewNodeMapGenerator()
	nodeMap := gen.GenerateNodeMap(expanded)
	ds := NewDataset()

	for _, graphName := range sortedGraphNames(nodeMap) {
		var graphTerm Term
		if graphName != DefaultGraphName {
			if isBlankNodeLabel(graphName) {
				graphTerm = BlankNode{ID: strings.TrimPrefix(graphName, "_:")}
			} else {
				graphTerm = IRI{Value: graphName}
			}
		}
		for _, subjectID := range sortedKeysOfNodeMap(nodeMap[graphName]) {
			node := nodeMap[graphName][subjectID]
			if err := nodeToRDF(node, subjectID, graphTerm, ds, gen.Issuer, opts); err != nil {
				return nil, err
			}
		}
	}
	return ds, nil
}

func subjectTerm(id string) Term {
	if isBlankNodeLabel(id) {
		return BlankNode{ID: strings.TrimPrefix(id, "_:")}
	}
	return IRI{Value: id}
}

func nodeToRDF(node map[string]interface{}, subjectID string, graph Term, ds *Dataset, issuer *IdentifierIssuer, opts ToRDFOptions) error {
	subject := subjectTerm(subjectID)

	for _, t := range arrayify(node["@type"]) {
		ts, ok := t.(string)
		if !ok || !isAbsoluteIRI(ts) {
			continue
		}
		ds.AddQuad(&Quad{Subject: subject, Predicate: IRI{Value: rdfType}, Object: IRI{Value: ts}, Graph: graph})
	}

	for _, property := range sortedKeys(node) {
		switch property {
		case "@id", "@type", "@index":
			continue
		}
		if !isAbsoluteIRI(property) {
			if !opts.ProduceGeneralizedRDF {
				continue
			}
		}
		for _, item := range arrayify(node[property]) {
			obj, err := valueToRDF(item, ds, issuer, graph, opts)
			if err != nil {
				return err
			}
			if obj == nil {
				continue
			}
			ds.AddQuad(&Quad{Subject: subject, Predicate: IRI{Value: property}, Object: obj, Graph: graph})
		}
	}
	return nil
}

// valueToRDF converts a single expanded value (node reference, list object,
// or value object) into an RDF term, emitting any supporting quads (list
// cells, compound-literal blank nodes) into ds as a side effect.
func valueToRDF(item interface{}, ds *Dataset, issuer *IdentifierIssuer, graph Term, opts ToRDFOptions) (Term, error) {
	obj, ok := item.(map[string]interface{})
	if !ok {
		return nil, nil
	}

	if isListObject(obj) {
		return listToRDF(arrayify(obj["@list"]), ds, issuer, graph, opts)
	}

	if id, has := obj["@id"]; has && !isValueObject(obj) {
		s, ok := id.(string)
		if !ok {
			return nil, nil
		}
		if !isAbsoluteIRI(s) && !isBlankNodeLabel(s) {
			return nil, nil
		}
		return subjectTerm(s), nil
	}

	if isValueObject(obj) {
		return valueObjectToRDF(obj, ds, issuer, graph, opts)
	}

	return nil, nil
}

// listToRDF materializes an RDF Collection (rdf:first/rdf:rest/rdf:nil) for
// a JSON-LD list object (List to RDF Conversion). An empty list is
// represented by the single term rdf:nil.
func listToRDF(items []interface{}, ds *Dataset, issuer *IdentifierIssuer, graph Term, opts ToRDFOptions) (Term, error) {
	if len(items) == 0 {
		return IRI{Value: rdfNil}, nil
	}

	var head Term
	var prev Term
	for i, item := range items {
		node := BlankNode{ID: issuer.GetID("")[2:]}
		if i == 0 {
			head = node
		}
		if prev != nil {
			ds.AddQuad(&Quad{Subject: prev, Predicate: IRI{Value: rdfRest}, Object: node, Graph: graph})
		}
		obj, err := valueToRDF(item, ds, issuer, graph, opts)
		if err != nil {
			return nil, err
		}
		if obj != nil {
			ds.AddQuad(&Quad{Subject: node, Predicate: IRI{Value: rdfFirst}, Object: obj, Graph: graph})
		}
		prev = node
	}
	ds.AddQuad(&Quad{Subject: prev, Predicate: IRI{Value: rdfRest}, Object: IRI{Value: rdfNil}, Graph: graph})
	return head, nil
}

// valueObjectToRDF implements literal conversion: numbers and
// booleans get canonical XSD lexical forms, @json values get a JCS lexical
// form with datatype rdf:JSON, and language/direction-tagged strings follow
// the configured rdfDirection mode.
func valueObjectToRDF(obj map[string]interface{}, ds *Dataset, issuer *IdentifierIssuer, graph Term, opts ToRDFOptions) (Term, error) {
	value := obj["@value"]
	typ, hasType := obj["@type"].(string)
	lang, hasLang := obj["@language"].(string)
	dir, hasDir := obj["@direction"].(string)

	if hasType && typ == "@json" {
		canon, err := CanonicalizeJSON(value)
		if err != nil {
			return nil, err
		}
		return Literal{Lexical: canon, Datatype: IRI{Value: "http://www.w3.org/1999/02/22-rdf-syntax-ns#JSON"}}, nil
	}

	lexical, datatype := canonicalLexicalForm(value, typ, hasType)

	if hasLang {
		if hasDir && dir != "" && opts.RDFDirection == RDFDirectionI18nDatatype {
			return Literal{Lexical: lexical, Datatype: IRI{Value: i18nNamespace + canonicalLangTag(lang) + "_" + dir}}, nil
		}
		if hasDir && dir != "" && opts.RDFDirection == RDFDirectionCompoundLiteral {
			node := BlankNode{ID: issuer.GetID("")[2:]}
			ds.AddQuad(&Quad{Subject: node, Predicate: IRI{Value: rdfValue}, Object: Literal{Lexical: lexical, Datatype: IRI{Value: xsdString}}, Graph: graph})
			ds.AddQuad(&Quad{Subject: node, Predicate: IRI{Value: rdfLanguage}, Object: Literal{Lexical: canonicalLangTag(lang), Datatype: IRI{Value: xsdString}}, Graph: graph})
			ds.AddQuad(&Quad{Subject: node, Predicate: IRI{Value: rdfDirection}, Object: Literal{Lexical: dir, Datatype: IRI{Value: xsdString}}, Graph: graph})
			return node, nil
		}
		return Literal{Lexical: lexical, Lang: canonicalLangTag(lang), Datatype: IRI{Value: rdfLangString}}, nil
	}

	return Literal{Lexical: lexical, Datatype: IRI{Value: datatype}}, nil
}

// canonicalLexicalForm implements the XSD lexical-form mapping used by
// ToRDF for native JSON booleans/numbers.
func canonicalLexicalForm(value interface{}, typ string, hasType bool) (lexical, datatype string) {
	if hasType {
		if s, ok := value.(string); ok {
			return s, typ
		}
	}
	switch v := value.(type) {
	case bool:
		if v {
			return "true", "http://www.w3.org/2001/XMLSchema#boolean"
		}
		return "false", "http://www.w3.org/2001/XMLSchema#boolean"
	case float64:
		if v == float64(int64(v)) && !hasType {
			return strconv.FormatInt(int64(v), 10), "http://www.w3.org/2001/XMLSchema#integer"
		}
		return canonicalDouble(v), "http://www.w3.org/2001/XMLSchema#double"
	case string:
		return v, xsdString
	default:
		return "", xsdString
	}
}

// canonicalDouble renders v in the exponential form required by XSD
// double's canonical lexical mapping, e.g. "1.0E0".
func canonicalDouble(v float64) string {
	s := strconv.FormatFloat(v, 'E', -1, 64)
	parts := strings.SplitN(s, "E", 2)
	mantissa, exp := parts[0], parts[1]
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	expVal, _ := strconv.Atoi(exp)
	return mantissa + "E" + strconv.Itoa(expVal)
}
