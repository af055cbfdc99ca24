package jsonld

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
)

// CanonicalizeJSON serializes a JSON value in the canonical form defined by
// the JSON Canonicalization Scheme (RFC 8785). ToRDF uses this as the
// lexical form of "@type": "@json" literals, so that structurally-equal
// JSON values produce identical RDF literals regardless of input key order
// or number formatting.
func CanonicalizeJSON(value interface{}) (string, error) {
	var b strings.Builder
	if err := writeCanonicalValue(&b, value); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeCanonicalValue(b *strings.Builder, value interface{}) error {
	switch v := value.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		if v {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case string:
		writeCanonicalString(b, v)
	case float64:
		s, err := canonicalNumber(v)
		if err != nil {
			return err
		}
		b.WriteString(s)
	case []interface{}:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeCanonicalValue(b, item); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return utf16Less(keys[i], keys[j]) })
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonicalString(b, k)
			b.WriteByte(':')
			if err := writeCanonicalValue(b, v[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	default:
		return newError(ErrInvalidTypedValue, fmt.Sprintf("cannot canonicalize a value of type %T as a JSON literal", value), nil)
	}
	return nil
}

// utf16Less orders object keys by their UTF-16 code units, the member sort
// RFC 8785 requires (not a byte-wise or rune-wise comparison: supplementary
// characters sort by their surrogate pairs).
func utf16Less(a, b string) bool {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return ua[i] < ub[i]
		}
	}
	return len(ua) < len(ub)
}

// writeCanonicalString emits s with the RFC 8785 escape set: two-character
// escapes for the JSON control shorthands, \u00xx for the remaining control
// characters, everything else verbatim UTF-8.
func writeCanonicalString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, c := range []byte(s) {
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				fmt.Fprintf(b, "\\u%04x", c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
}

const nonFinitePattern uint64 = 0x7ff0000000000000

// canonicalNumber renders a float64 the way ECMAScript Number::toString
// does, which is the number serialization RFC 8785 mandates. NaN and the
// infinities have no JSON representation and are rejected.
func canonicalNumber(f float64) (string, error) {
	bits := math.Float64bits(f)
	if (bits & nonFinitePattern) == nonFinitePattern {
		return "", newError(ErrInvalidTypedValue, "NaN and Infinity cannot appear in a JSON literal", nil)
	}
	if f == 0 {
		return "0", nil
	}
	sign := ""
	if f < 0 {
		f = -f
		sign = "-"
	}
	format := byte('e')
	if f < 1e+21 && f >= 1e-6 {
		format = 'f'
	}
	formatted := strconv.FormatFloat(f, format, -1, 64)
	exponent := strings.IndexByte(formatted, 'e')
	if exponent > 0 {
		// Go prints "1e+30" where ES6 prints "1e+30" too, but Go's
		// shortest form may differ from the 17-digit form ES6 falls back
		// to; prefer the 'g' rendering when both have the same length.
		gform := strconv.FormatFloat(f, 'g', 17, 64)
		if len(gform) == len(formatted) {
			formatted = gform
		}
		if formatted[exponent+2] == '0' {
			formatted = formatted[:exponent+2] + formatted[exponent+3:]
		}
	} else if strings.IndexByte(formatted, '.') < 0 && len(formatted) >= 12 {
		// Large integers: ES6 rounds the shortest representation at the
		// last nonzero digit, which Go's 'f' form can disagree with by
		// one unit in the last place.
		i := len(formatted)
		for formatted[i-1] == '0' {
			i--
		}
		if i != len(formatted) {
			fix := strconv.FormatFloat(f, 'f', 0, 64)
			if fix[i] >= '5' {
				formatted = fix[:i-1] + string(fix[i-1]+1) + formatted[i:]
			}
		}
	}
	return sign + formatted, nil
}
