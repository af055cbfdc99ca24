package jsonld

import (
	"net/url"
	"strings"
)

// resolveIRI resolves a relative IRI against a base IRI according to
// RFC 3986.
func resolveIRI(baseStr, relative string) string {
	if baseStr == "" {
		return relative
	}
	baseURL, err := url.Parse(baseStr)
	if err != nil {
		return concatFallback(baseStr, relative)
	}
	relURL, err := url.Parse(relative)
	if err != nil {
		return concatFallback(baseStr, relative)
	}
	if relURL.Scheme != "" {
		return relative
	}
	return baseURL.ResolveReference(relURL).String()
}

func concatFallback(baseStr, relative string) string {
	if strings.HasSuffix(baseStr, "/") {
		return baseStr + relative
	}
	if idx := strings.LastIndex(baseStr, "/"); idx >= 0 {
		return baseStr[:idx+1] + relative
	}
	return baseStr + "/" + relative
}

// isAbsoluteIRI reports whether v has an IRI scheme (contains ':' with a
// well-formed scheme before it, and is not a blank node label).
func isAbsoluteIRI(v string) bool {
	if isBlankNodeLabel(v) {
		return false
	}
	idx := strings.IndexByte(v, ':')
	if idx <= 0 {
		return false
	}
	scheme := v[:idx]
	for i, r := range scheme {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isSchemeChar := isAlpha || (r >= '0' && r <= '9') || r == '+' || r == '-' || r == '.'
		if i == 0 && !isAlpha {
			return false
		}
		if !isSchemeChar {
			return false
		}
	}
	return true
}

// isRelativeIRI reports whether v looks like a relative IRI reference: not
// absolute, not a blank node label, not a compact-IRI-shaped prefix:suffix.
func isRelativeIRI(v string) bool {
	return !isAbsoluteIRI(v) && !isBlankNodeLabel(v)
}

// splitPrefixSuffix splits "prefix:suffix" into its two halves. A leading
// colon never introduces a prefix.
func splitPrefixSuffix(v string) (prefix, suffix string, ok bool) {
	idx := strings.IndexByte(v, ':')
	if idx <= 0 {
		return "", "", false
	}
	// "//" immediately after the colon marks a network-path / absolute IRI,
	// not a compact IRI (e.g. "http://example.org").
	if idx+2 < len(v) && v[idx+1] == '/' && v[idx+2] == '/' {
		return "", "", false
	}
	return v[:idx], v[idx+1:], true
}
