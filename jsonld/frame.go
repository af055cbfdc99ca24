package jsonld

// FrameOptions carries the framing flags: embed, explicit, requireAll,
// omitDefault, omitGraph, and pruneBlankNodeIdentifiers.
type FrameOptions struct {
	Embed                     string // "@once" (default), "@always", "@never"
	Explicit                  bool
	RequireAll                bool
	OmitDefault               bool
	OmitGraph                 bool
	PruneBlankNodeIdentifiers bool
}

// DefaultFrameOptions returns the default framing flags. OmitGraph defaults
// to true: framed nodes are returned directly rather than wrapped in a
// top-level @graph entry.
func DefaultFrameOptions() FrameOptions {
	return FrameOptions{Embed: "@once", OmitGraph: true, PruneBlankNodeIdentifiers: true}
}

// framingState threads the node map and per-run embed bookkeeping through
// the recursive matcher.
type framingState struct {
	opts       FrameOptions
	graphMap   map[string]map[string]map[string]interface{}
	graph      string
	embedded   map[string]bool
	issuer     *IdentifierIssuer
	link       map[string]map[string]interface{} // per-graph subject -> already-embedded output node
}

// Frame implements the top-level Framing algorithm: expand
// input and frame (done by the caller), build their node maps, then match
// the default graph's nodes against the frame recursively.
func Frame(expandedInput, expandedFrame interface{}, opts FrameOptions) ([]interface{}, error) {
	gen := NewNodeMapGenerator()
	graphMap := gen.GenerateNodeMap(expandedInput)

	frameArr := arrayify(expandedFrame)
	var frameObj map[string]interface{}
	if len(frameArr) > 0 {
		frameObj, _ = frameArr[0].(map[string]interface{})
	}
	if frameObj == nil {
		frameObj = map[string]interface{}{}
	}

	state := &framingState{
		opts:     opts,
		graphMap: graphMap,
		graph:    DefaultGraphName,
		embedded: map[string]bool{},
		issuer:   NewIdentifierIssuer("_:b"),
		link:     map[string]map[string]interface{}{},
	}

	var subjects []string
	for _, id := range sortedKeysOfNodeMap(graphMap[DefaultGraphName]) {
		subjects = append(subjects, id)
	}

	var result []interface{}
	if err := state.matchFrame(subjects, frameObj, &result, nil); err != nil {
		return nil, err
	}

	result = removePreserve(result)

	if opts.PruneBlankNodeIdentifiers {
		result = pruneBlankNodeRefs(result)
	}

	if !opts.OmitGraph {
		result = []interface{}{map[string]interface{}{"@graph": result}}
	}

	return result, nil
}

// removePreserve unwraps the @preserve markers embedNode leaves behind for
// frame-defaulted properties: a preserved @null disappears along with its
// property, any other preserved value replaces its wrapper.
func removePreserve(result []interface{}) []interface{} {
	cleaned := stripPreserve(result)
	out, _ := cleaned.([]interface{})
	return out
}

func stripPreserve(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		if p, has := val["@preserve"]; has && len(val) == 1 {
			if p == "@null" {
				return nil
			}
			return stripPreserve(p)
		}
		out := map[string]interface{}{}
		for k, sub := range val {
			cleaned := stripPreserve(sub)
			if cleaned == nil {
				continue
			}
			out[k] = cleaned
		}
		return out
	case []interface{}:
		out := []interface{}{}
		for _, item := range val {
			if cleaned := stripPreserve(item); cleaned != nil {
				out = append(out, cleaned)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return v
	}
}

func (s *framingState) node(graph, id string) map[string]interface{} {
	m := s.graphMap[graph]
	if m == nil {
		return nil
	}
	return m[id]
}

// matchFrame implements "Framing Algorithm" steps: filter
// subjects by the frame's property/type constraints, then recursively embed
// matches, appending output nodes to *result.
func (s *framingState) matchFrame(subjects []string, frame map[string]interface{}, result *[]interface{}, parent *string) error {
	requireAll := s.opts.RequireAll
	if v, has := frame["@requireAll"]; has {
		if b, ok := v.([]interface{}); ok && len(b) > 0 {
			if bb, ok := b[0].(bool); ok {
				requireAll = bb
			}
		}
	}

	for _, id := range subjects {
		node := s.node(s.graph, id)
		if node == nil {
			continue
		}
		if !s.filterSubject(node, frame, requireAll) {
			continue
		}
		embedded, err := s.embedNode(id, frame)
		if err != nil {
			return err
		}
		if embedded != nil {
			*result = append(*result, embedded)
		}
	}
	return nil
}

// filterSubject reports whether node matches frame's @type and property
// constraints (Frame Matching).
func (s *framingState) filterSubject(node map[string]interface{}, frame map[string]interface{}, requireAll bool) bool {
	if ids, has := frame["@id"]; has {
		wanted := arrayify(ids)
		if len(wanted) > 0 && !matchesWildcard(wanted) {
			matched := false
			for _, w := range wanted {
				if w == node["@id"] {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}

	if types, has := frame["@type"]; has {
		wanted := arrayify(types)
		if len(wanted) == 0 {
			if _, typed := node["@type"]; typed {
				return false
			}
		} else {
			if !matchesWildcard(wanted) {
				have := arrayify(node["@type"])
				if !anyTypeMatches(wanted, have) {
					return false
				}
			}
		}
	}

	for property := range frame {
		switch property {
		case "@id", "@type", "@embed", "@explicit", "@requireAll", "@omitDefault", "@default":
			continue
		}
		frameVal := frame[property]
		fvals := arrayify(frameVal)
		isWildcard := matchesWildcard(fvals)
		_, hasProperty := node[property]
		if !hasProperty {
			if requireAll && !isWildcard && len(fvals) > 0 && !hasDefaultValue(frameVal) {
				return false
			}
			continue
		}
		// An empty array pattern requires the property to be absent.
		if len(fvals) == 0 {
			return false
		}
		if pattern := valuePattern(fvals); pattern != nil {
			if !anyValueMatches(pattern, arrayify(node[property])) {
				return false
			}
		}
	}
	return true
}

// valuePattern returns the frame's value-object pattern for a property, or
// nil when the frame constrains the property with a subframe instead.
func valuePattern(fvals []interface{}) map[string]interface{} {
	for _, fv := range fvals {
		if m, ok := fv.(map[string]interface{}); ok {
			if _, has := m["@value"]; has {
				return m
			}
		}
	}
	return nil
}

func anyValueMatches(pattern map[string]interface{}, values []interface{}) bool {
	for _, v := range values {
		vobj, ok := v.(map[string]interface{})
		if !ok || !isValueObject(vobj) {
			continue
		}
		if valueMatchesPattern(pattern, vobj) {
			return true
		}
	}
	return false
}

// valueMatchesPattern checks a candidate value object against a frame's
// value pattern: each of @value/@type/@language may be a wildcard (empty
// object, entry must be present), an empty array (entry must be absent), or
// a list of allowed values.
func valueMatchesPattern(pattern, value map[string]interface{}) bool {
	for _, key := range []string{"@value", "@type", "@language"} {
		pv, has := pattern[key]
		if !has {
			continue
		}
		pvals := arrayify(pv)
		if matchesWildcard(pvals) {
			if _, has := value[key]; !has {
				return false
			}
			continue
		}
		if len(pvals) == 0 {
			if _, has := value[key]; has {
				return false
			}
			continue
		}
		matched := false
		for _, p := range pvals {
			if p == value[key] {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func matchesWildcard(vals []interface{}) bool {
	if len(vals) != 1 {
		return false
	}
	m, ok := vals[0].(map[string]interface{})
	return ok && len(m) == 0
}

func hasDefaultValue(frameVal interface{}) bool {
	for _, v := range arrayify(frameVal) {
		if m, ok := v.(map[string]interface{}); ok {
			if _, has := m["@default"]; has {
				return true
			}
		}
	}
	return false
}

func anyTypeMatches(wanted, have []interface{}) bool {
	for _, w := range wanted {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}

// embedNode recursively embeds subject per the frame's @embed directive
// (@once/@always/@never), descending into each
// framed property.
func (s *framingState) embedNode(id string, frame map[string]interface{}) (map[string]interface{}, error) {
	embed := s.opts.Embed
	if v, has := frame["@embed"]; has {
		if arr, ok := v.([]interface{}); ok && len(arr) > 0 {
			if m, ok := arr[0].(map[string]interface{}); ok {
				if ev, ok := m["@value"].(string); ok {
					embed = ev
				}
			}
			if s, ok := arr[0].(string); ok {
				embed = s
			}
		}
	}

	if embed == "@never" {
		return map[string]interface{}{"@id": id}, nil
	}
	if embed == "@once" && s.embedded[id] {
		if out, ok := s.link[s.graph]; ok {
			if node, ok := out[id].(map[string]interface{}); ok {
				return map[string]interface{}{"@id": node["@id"]}, nil
			}
		}
		return map[string]interface{}{"@id": id}, nil
	}

	s.embedded[id] = true
	node := s.node(s.graph, id)
	if node == nil {
		return map[string]interface{}{"@id": id}, nil
	}

	output := map[string]interface{}{"@id": id}
	if types, has := node["@type"]; has {
		output["@type"] = cloneValue(types)
	}

	explicit := s.opts.Explicit
	if v, has := frame["@explicit"]; has {
		if arr, ok := v.([]interface{}); ok && len(arr) > 0 {
			if b, ok := arr[0].(bool); ok {
				explicit = b
			}
		}
	}

	omitDefault := s.opts.OmitDefault
	if v, has := frame["@omitDefault"]; has {
		if arr, ok := v.([]interface{}); ok && len(arr) > 0 {
			if b, ok := arr[0].(bool); ok {
				omitDefault = b
			}
		}
	}

	for _, property := range sortedKeys(node) {
		switch property {
		case "@id", "@type":
			continue
		}
		frameValue, framed := frame[property]
		if !framed {
			if explicit {
				continue
			}
			// Unframed properties embed referenced nodes under an implicit
			// empty frame; a node already embedded in this run stays a reference.
			var values []interface{}
			for _, v := range arrayify(node[property]) {
				if ref, ok := v.(map[string]interface{}); ok && isNodeReference(ref) && !s.embedded[ref["@id"].(string)] {
					embedded, err := s.embedNode(ref["@id"].(string), map[string]interface{}{})
					if err != nil {
						return nil, err
					}
					values = append(values, embedded)
					continue
				}
				values = append(values, cloneValue(v))
			}
			output[property] = values
			continue
		}
		embeddedValues, err := s.embedValues(node[property], frameValue)
		if err != nil {
			return nil, err
		}
		output[property] = embeddedValues
	}

	// Properties the frame asks for but the node lacks are preserved as
	// their @default value, or as @null when the frame gives none; the
	// @preserve wrappers are unwrapped (and @null entries dropped) by the
	// post-processing pass in Frame.
	for property, frameValue := range frame {
		switch property {
		case "@id", "@type", "@embed", "@explicit", "@requireAll", "@omitDefault", "@default":
			continue
		}
		if _, has := output[property]; has {
			continue
		}
		if omitDefault {
			continue
		}
		preserve := interface{}("@null")
		if hasDefaultValue(frameValue) {
			for _, v := range arrayify(frameValue) {
				if m, ok := v.(map[string]interface{}); ok {
					if def, has := m["@default"]; has {
						preserve = cloneValue(def)
					}
				}
			}
		}
		output[property] = []interface{}{map[string]interface{}{"@preserve": preserve}}
	}

	if s.link[s.graph] == nil {
		s.link[s.graph] = map[string]interface{}{}
	}
	s.link[s.graph][id] = output

	return output, nil
}

// embedValues recursively frames each value of a matched property, matching
// node references against nested frames and passing literals through.
func (s *framingState) embedValues(nodeValues interface{}, frameValue interface{}) ([]interface{}, error) {
	var subframe map[string]interface{}
	for _, fv := range arrayify(frameValue) {
		if m, ok := fv.(map[string]interface{}); ok {
			subframe = m
			break
		}
	}

	var out []interface{}
	for _, v := range arrayify(nodeValues) {
		ref, ok := v.(map[string]interface{})
		if ok && isNodeReference(ref) {
			if subframe == nil {
				subframe = map[string]interface{}{}
			}
			embedded, err := s.embedNode(ref["@id"].(string), subframe)
			if err != nil {
				return nil, err
			}
			out = append(out, embedded)
			continue
		}
		out = append(out, cloneValue(v))
	}
	return out, nil
}

// isNodeReference reports whether v is a bare {"@id": ...} reference (as
// opposed to a value object or fully embedded node).
func isNodeReference(v map[string]interface{}) bool {
	if len(v) != 1 {
		return false
	}
	_, has := v["@id"]
	return has
}

// pruneBlankNodeRefs removes blank node identifiers that occur exactly once
// in the framed output when pruneBlankNodeIdentifiers is set: a label only
// ever used as a node's own @id carries no information.
func pruneBlankNodeRefs(result []interface{}) []interface{} {
	counts := map[string]int{}
	var walk func(v interface{})
	walk = func(v interface{}) {
		switch val := v.(type) {
		case map[string]interface{}:
			for k, sub := range val {
				if k == "@id" {
					if s, ok := sub.(string); ok {
						counts[s]++
					}
				}
				walk(sub)
			}
		case []interface{}:
			for _, sub := range val {
				walk(sub)
			}
		}
	}
	for _, node := range result {
		walk(node)
	}

	var prune func(v interface{}) interface{}
	prune = func(v interface{}) interface{} {
		switch val := v.(type) {
		case map[string]interface{}:
			out := map[string]interface{}{}
			for k, sub := range val {
				if k == "@id" {
					if s, ok := sub.(string); ok && isBlankNodeLabel(s) && counts[s] == 1 {
						continue
					}
				}
				out[k] = prune(sub)
			}
			return out
		case []interface{}:
			out := make([]interface{}, len(val))
			for i, sub := range val {
				out[i] = prune(sub)
			}
			return out
		default:
			return v
		}
	}

	out := make([]interface{}, len(result))
	for i, node := range result {
		out[i] = prune(node)
	}
	return out
}
