package jsonld

// NodeMapGenerator builds the graph-name-to-subject-to-node map used by
// Flatten and as the basis for ToRDF (Node Map Generation).
type NodeMapGenerator struct {
	Issuer *IdentifierIssuer
}

// NewNodeMapGenerator creates a generator with a fresh blank-node issuer
// using the "_:b" prefix.
func NewNodeMapGenerator() *NodeMapGenerator {
	return &NodeMapGenerator{Issuer: NewIdentifierIssuer("_:b")}
}

// GenerateNodeMap runs Algorithm "Node Map Generation" over already-expanded
// element, returning graphName -> subject -> node.
func (g *NodeMapGenerator) GenerateNodeMap(element interface{}) map[string]map[string]map[string]interface{} {
	nodeMap := map[string]map[string]map[string]interface{}{
		DefaultGraphName: {},
	}
	g.generateNodeMap(element, nodeMap, DefaultGraphName, nil, nil, nil)
	return nodeMap
}

func (g *NodeMapGenerator) graph(nodeMap map[string]map[string]map[string]interface{}, name string) map[string]map[string]interface{} {
	if _, ok := nodeMap[name]; !ok {
		nodeMap[name] = map[string]map[string]interface{}{}
	}
	return nodeMap[name]
}

// generateNodeMap processes element into nodeMap[activeGraph], recording
// activeSubject/activeProperty as the enclosing reference when element is
// itself a list to embed.
func (g *NodeMapGenerator) generateNodeMap(element interface{}, nodeMap map[string]map[string]map[string]interface{}, activeGraph string, activeSubject, activeProperty interface{}, list *[]interface{}) {
	if arr, ok := element.([]interface{}); ok {
		for _, item := range arr {
			g.generateNodeMap(item, nodeMap, activeGraph, activeSubject, activeProperty, list)
		}
		return
	}

	obj, ok := element.(map[string]interface{})
	if !ok {
		return
	}

	g.graph(nodeMap, activeGraph)

	if isValueObject(obj) {
		if list != nil {
			*list = append(*list, obj)
		} else {
			g.addProperty(nodeMap, activeGraph, activeSubject, activeProperty, obj)
		}
		return
	}

	if isListObject(obj) {
		var result []interface{}
		g.generateNodeMap(obj["@list"], nodeMap, activeGraph, activeSubject, activeProperty, &result)
		if list != nil {
			*list = append(*list, map[string]interface{}{"@list": result})
		} else {
			g.addProperty(nodeMap, activeGraph, activeSubject, activeProperty, map[string]interface{}{"@list": result})
		}
		return
	}

	var id string
	if idVal, has := obj["@id"]; has {
		if s, ok := idVal.(string); ok {
			id = s
		}
	}
	if id == "" {
		id = g.Issuer.GetID("")
	}

	node := g.ensureNode(nodeMap, activeGraph, id)

	if activeSubject != nil {
		ref := map[string]interface{}{"@id": id}
		if list != nil {
			*list = append(*list, ref)
		} else {
			g.addProperty(nodeMap, activeGraph, activeSubject, activeProperty, ref)
		}
	}

	if types, has := obj["@type"]; has {
		var relabeled []interface{}
		for _, t := range arrayify(types) {
			s, ok := t.(string)
			if ok && isBlankNodeLabel(s) {
				s = g.Issuer.GetID(s)
			}
			relabeled = append(relabeled, s)
		}
		mergeTypes(node, relabeled)
	}

	if idx, has := obj["@index"]; has {
		node["@index"] = idx
	}

	if rev, has := obj["@reverse"]; has {
		revObj, _ := rev.(map[string]interface{})
		refToSubject := map[string]interface{}{"@id": id}
		for property, values := range revObj {
			for _, value := range arrayify(values) {
				g.generateNodeMap(value, nodeMap, activeGraph, refToSubject, property, nil)
			}
		}
	}

	if graphVal, has := obj["@graph"]; has {
		g.generateNodeMap(graphVal, nodeMap, id, nil, nil, nil)
	}

	if included, has := obj["@included"]; has {
		g.generateNodeMap(included, nodeMap, activeGraph, nil, nil, nil)
	}

	for _, property := range sortedKeys(obj) {
		switch property {
		case "@id", "@type", "@index", "@reverse", "@graph", "@included", "@value", "@list":
			continue
		}
		values := obj[property]
		if isBlankNodeLabel(property) {
			property = g.Issuer.GetID(property)
		}
		if _, has := node[property]; !has {
			node[property] = []interface{}{}
		}
		g.generateNodeMap(values, nodeMap, activeGraph, id, property, nil)
	}
}

func mergeTypes(node map[string]interface{}, types []interface{}) {
	existing := arrayify(node["@type"])
	for _, t := range types {
		found := false
		for _, e := range existing {
			if e == t {
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, t)
		}
	}
	node["@type"] = existing
}

func (g *NodeMapGenerator) ensureNode(nodeMap map[string]map[string]map[string]interface{}, graphName, id string) map[string]interface{} {
	graph := nodeMap[graphName]
	node, ok := graph[id]
	if !ok {
		node = map[string]interface{}{"@id": id}
		graph[id] = node
	}
	return node
}

// addProperty implements "Property Addition": append value to
// subject's property, merging identical node references and respecting
// @list containers untouched.
func (g *NodeMapGenerator) addProperty(nodeMap map[string]map[string]map[string]interface{}, graphName string, subject, property, value interface{}) {
	subjectID, ok := subject.(string)
	if !ok {
		return
	}
	propertyName, ok := property.(string)
	if !ok {
		return
	}
	node := g.ensureNode(nodeMap, graphName, subjectID)
	existing := arrayify(node[propertyName])

	if ref, isRef := value.(map[string]interface{}); isRef {
		if refID, has := ref["@id"]; has && len(ref) == 1 {
			for _, e := range existing {
				if em, ok := e.(map[string]interface{}); ok && em["@id"] == refID {
					return
				}
			}
		}
	}
	node[propertyName] = append(existing, value)
}

// Flatten implements the top-level Flattening algorithm: expand
// (by the caller), build the node map, then assemble the flattened array —
// default graph nodes first, each carrying an @graph entry for any named
// graph sharing its @id.
func Flatten(expanded interface{}) []interface{} {
	gen := NewNodeMapGenerator()
	nodeMap := gen.GenerateNodeMap(expanded)

	defaultGraph := nodeMap[DefaultGraphName]
	for _, graphName := range sortedGraphNames(nodeMap) {
		if graphName == DefaultGraphName {
			continue
		}
		entry, ok := defaultGraph[graphName]
		if !ok {
			entry = map[string]interface{}{"@id": graphName}
			defaultGraph[graphName] = entry
		}
		var nodes []interface{}
		for _, nodeID := range sortedKeysOfNodeMap(nodeMap[graphName]) {
			nodes = append(nodes, nodeMap[graphName][nodeID])
		}
		entry["@graph"] = nodes
	}

	var flattened []interface{}
	for _, nodeID := range sortedKeysOfNodeMap(defaultGraph) {
		node := defaultGraph[nodeID]
		if len(node) == 1 {
			continue // bare {"@id": ...} reference with no other properties
		}
		flattened = append(flattened, node)
	}
	if flattened == nil {
		flattened = []interface{}{}
	}
	return flattened
}

func sortedGraphNames(nodeMap map[string]map[string]map[string]interface{}) []string {
	names := make([]string, 0, len(nodeMap))
	for name := range nodeMap {
		names = append(names, name)
	}
	return sortedStrings(names)
}

func sortedKeysOfNodeMap(m map[string]map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return sortedStrings(keys)
}

// CompareValues reports whether two already-expanded values are JSON-LD
// value-equal: scalars by ==, and value, node and list objects structurally
// (every key and nested value must match; object key order is ignored).
func CompareValues(a, b interface{}) bool {
	return compareValues(a, b)
}

// HasValue reports whether node's property entry contains value.
func HasValue(node map[string]interface{}, property string, value interface{}) bool {
	for _, v := range arrayify(node[property]) {
		if compareValues(v, value) {
			return true
		}
	}
	return false
}

// HasProperty reports whether node has a non-empty entry for property.
func HasProperty(node map[string]interface{}, property string) bool {
	v, has := node[property]
	return has && len(arrayify(v)) > 0
}

// AddValue appends value to node's property entry, deduplicating when
// allowDuplicate is false and an equal value is already present.
func AddValue(node map[string]interface{}, property string, value interface{}, propertyIsArray, allowDuplicate bool) {
	existing, has := node[property]
	if !propertyIsArray && !has {
		node[property] = value
		return
	}
	arr := arrayify(existing)
	for _, v := range arrayify(value) {
		if !allowDuplicate {
			dup := false
			for _, e := range arr {
				if compareValues(e, v) {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
		}
		arr = append(arr, v)
	}
	node[property] = arr
}

// GetValues returns node's property entry as an array, or an empty array
// if absent.
func GetValues(node map[string]interface{}, property string) []interface{} {
	return arrayify(node[property])
}
