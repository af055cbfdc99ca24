package jsonld

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Normalize implements URDNA2015 canonicalization: given a
// dataset, assign a canonical blank node identifier to every blank node so
// that isomorphic datasets produce byte-identical N-Quads.
func Normalize(ds *Dataset) (*Dataset, error) {
	c := &canonicalizer{
		blankNodeToQuads: map[string][]*Quad{},
		hashToBlankNodes: map[string][]string{},
		canonicalIssuer:  NewIdentifierIssuer("_:c14n"),
	}

	for _, q := range ds.AllQuads() {
		c.indexQuad(q)
	}

	c.issueCanonicalIDs()

	out := NewDataset()
	for name, quads := range ds.Graphs {
		for _, q := range quads {
			out.AddQuad(c.relabelQuad(q, name))
		}
	}
	return out, nil
}

// NormalizeToNQuads runs Normalize and serializes the result in canonical
// (sorted) N-Quads form, the typical entry point for producing a
// normalization-form document hash.
func NormalizeToNQuads(ds *Dataset) (string, error) {
	normalized, err := Normalize(ds)
	if err != nil {
		return "", err
	}
	var lines []string
	for _, q := range normalized.AllQuads() {
		lines = append(lines, renderQuadLine(q))
	}
	sort.Strings(lines)
	return strings.Join(lines, ""), nil
}

type canonicalizer struct {
	blankNodeToQuads map[string][]*Quad
	hashToBlankNodes map[string][]string
	canonicalIssuer  *IdentifierIssuer
}

func (c *canonicalizer) indexQuad(q *Quad) {
	for _, term := range []Term{q.Subject, q.Object, q.Graph} {
		if bn, ok := term.(BlankNode); ok {
			key := "_:" + bn.ID
			c.blankNodeToQuads[key] = append(c.blankNodeToQuads[key], q)
		}
	}
}

// issueCanonicalIDs implements the main URDNA2015 loop: hash every blank node by its first-degree quads, group by hash,
// canonicalize unique-hash nodes immediately, then resolve remaining ties
// via hash-N-degree-quads with a permutation search.
func (c *canonicalizer) issueCanonicalIDs() {
	var nonUnique []string

	for _, bnode := range sortedBlankNodeKeys(c.blankNodeToQuads) {
		hash := c.hashFirstDegreeQuads(bnode)
		c.hashToBlankNodes[hash] = append(c.hashToBlankNodes[hash], bnode)
	}

	var hashes []string
	for h := range c.hashToBlankNodes {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)

	for _, hash := range hashes {
		nodes := c.hashToBlankNodes[hash]
		if len(nodes) != 1 {
			nonUnique = append(nonUnique, hash)
			continue
		}
		c.canonicalIssuer.GetID(nodes[0])
	}

	for _, hash := range nonUnique {
		nodes := c.hashToBlankNodes[hash]
		var hashPathList []hashPathResult
		for _, bnode := range nodes {
			if c.canonicalIssuer.HasID(bnode) {
				continue
			}
			tempIssuer := NewIdentifierIssuer("_:b")
			tempIssuer.GetID(bnode)
			h, issuer := c.hashNDegreeQuads(bnode, tempIssuer)
			hashPathList = append(hashPathList, hashPathResult{hash: h, issuer: issuer})
		}
		sort.Slice(hashPathList, func(i, j int) bool { return hashPathList[i].hash < hashPathList[j].hash })
		for _, hp := range hashPathList {
			for _, old := range hp.issuer.Order() {
				c.canonicalIssuer.GetID(old)
			}
		}
	}
}

type hashPathResult struct {
	hash   string
	issuer *IdentifierIssuer
}

// hashFirstDegreeQuads implements "Hash First Degree Quads":
// hash the nquads produced by replacing the reference blank node with "_:a"
// and every other blank node with "_:z", sorted, SHA-256'd.
func (c *canonicalizer) hashFirstDegreeQuads(ref string) string {
	var lines []string
	for _, q := range c.blankNodeToQuads[ref] {
		relabel := func(t Term) Term {
			if bn, ok := t.(BlankNode); ok {
				if "_:"+bn.ID == ref {
					return BlankNode{ID: "a"}
				}
				return BlankNode{ID: "z"}
			}
			return t
		}
		nq := &Quad{
			Subject:   relabel(q.Subject),
			Predicate: q.Predicate,
			Object:    relabel(q.Object),
		}
		if q.Graph != nil {
			nq.Graph = relabel(q.Graph)
		}
		lines = append(lines, renderQuadLine(nq))
	}
	sort.Strings(lines)
	return sha256Hex(strings.Join(lines, ""))
}

// hashRelatedBlankNode implements the per-related-node hash used inside
// Hash N-Degree Quads: the related node's canonical or temporary identifier
// when one has been issued, otherwise its own first-degree hash, combined
// with the position and (except at the graph position) the predicate
// connecting it to the reference node.
func (c *canonicalizer) hashRelatedBlankNode(related string, q *Quad, issuer *IdentifierIssuer, position string) string {
	var id string
	if c.canonicalIssuer.HasID(related) {
		id, _ = c.canonicalIssuer.ExistingID(related)
	} else if issuer.HasID(related) {
		id, _ = issuer.ExistingID(related)
	} else {
		id = c.hashFirstDegreeQuads(related)
	}
	input := position
	if position != "g" {
		input += "<" + q.Predicate.Value + ">"
	}
	input += id
	return sha256Hex(input)
}

// hashNDegreeQuads implements "Hash N-Degree Quads": explore
// the graph neighborhood of ref by related-node hash order, trying every
// permutation of same-hash siblings to find the lexicographically least
// assignment, recursing when siblings are themselves unresolved blank
// nodes.
func (c *canonicalizer) hashNDegreeQuads(ref string, issuer *IdentifierIssuer) (string, *IdentifierIssuer) {
	hashToRelated := map[string][]string{}

	for _, q := range c.blankNodeToQuads[ref] {
		c.collectRelated(ref, q, q.Subject, "s", issuer, hashToRelated)
		c.collectRelated(ref, q, q.Object, "o", issuer, hashToRelated)
		c.collectRelated(ref, q, q.Graph, "g", issuer, hashToRelated)
	}

	var dataToHash strings.Builder
	var hashes []string
	for h := range hashToRelated {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)

	for _, hash := range hashes {
		dataToHash.WriteString(hash)
		related := hashToRelated[hash]

		var chosenPath string
		var chosenIssuer *IdentifierIssuer

		for _, perm := range permutations(related) {
			tempIssuer := issuer.Clone()
			var path strings.Builder
			var recursionList []string
			skip := false

			for _, related2 := range perm {
				if c.canonicalIssuer.HasID(related2) {
					id, _ := c.canonicalIssuer.ExistingID(related2)
					path.WriteString(id)
				} else {
					if !tempIssuer.HasID(related2) {
						recursionList = append(recursionList, related2)
					}
					id := tempIssuer.GetID(related2)
					path.WriteString(id)
				}
				if chosenPath != "" && path.Len() >= len(chosenPath) && path.String() > chosenPath {
					skip = true
					break
				}
			}

			if skip {
				continue
			}

			for _, related2 := range recursionList {
				resultHash, resultIssuer := c.hashNDegreeQuads(related2, tempIssuer)
				path.WriteString(tempIssuer.GetID(related2))
				path.WriteString("<" + resultHash + ">")
				tempIssuer = resultIssuer
			}

			if chosenPath == "" || path.String() < chosenPath {
				chosenPath = path.String()
				chosenIssuer = tempIssuer
			}
		}

		dataToHash.WriteString(chosenPath)
		if chosenIssuer != nil {
			issuer = chosenIssuer
		}
	}

	return sha256Hex(dataToHash.String()), issuer
}

func (c *canonicalizer) collectRelated(ref string, q *Quad, term Term, position string, issuer *IdentifierIssuer, hashToRelated map[string][]string) {
	bn, ok := term.(BlankNode)
	if !ok {
		return
	}
	key := "_:" + bn.ID
	if key == ref {
		return
	}
	hash := c.hashRelatedBlankNode(key, q, issuer, position)
	hashToRelated[hash] = appendUnique(hashToRelated[hash], key)
}

func appendUnique(list []string, v string) []string {
	for _, e := range list {
		if e == v {
			return list
		}
	}
	return append(list, v)
}

// permutations returns every ordering of items (small sets only: URDNA2015
// relies on graphs having a tractable number of same-hash related nodes per
// reference node).
func permutations(items []string) [][]string {
	if len(items) == 0 {
		return [][]string{{}}
	}
	var out [][]string
	for i := range items {
		rest := make([]string, 0, len(items)-1)
		rest = append(rest, items[:i]...)
		rest = append(rest, items[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]string{items[i]}, p...))
		}
	}
	return out
}

func (c *canonicalizer) relabelQuad(q *Quad, graphName string) *Quad {
	relabel := func(t Term) Term {
		if bn, ok := t.(BlankNode); ok {
			if id, ok := c.canonicalIssuer.ExistingID("_:" + bn.ID); ok {
				return BlankNode{ID: strings.TrimPrefix(id, "_:")}
			}
		}
		return t
	}
	nq := &Quad{Subject: relabel(q.Subject), Predicate: q.Predicate, Object: relabel(q.Object)}
	if q.Graph != nil {
		nq.Graph = relabel(q.Graph)
	}
	return nq
}

func sortedBlankNodeKeys(m map[string][]*Quad) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// renderQuadLine renders a quad as one N-Quads line including its
// terminating newline, used for hashing and canonical output.
func renderQuadLine(q *Quad) string {
	var sb strings.Builder
	sb.WriteString(renderTerm(q.Subject))
	sb.WriteByte(' ')
	sb.WriteString(renderIRI(q.Predicate))
	sb.WriteByte(' ')
	sb.WriteString(renderTerm(q.Object))
	if q.Graph != nil {
		sb.WriteByte(' ')
		sb.WriteString(renderTerm(q.Graph))
	}
	sb.WriteString(" .\n")
	return sb.String()
}
