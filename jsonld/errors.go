package jsonld

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is a tagged JSON-LD error code, matching the error codes
// defined by the JSON-LD 1.1 API specification.
type ErrorKind string

const (
	// Context errors.
	ErrInvalidContextEntry        ErrorKind = "invalid-context-entry"
	ErrInvalidContextNullification ErrorKind = "invalid-context-nullification"
	ErrInvalidBaseIRI             ErrorKind = "invalid-base-iri"
	ErrInvalidVocabMapping        ErrorKind = "invalid-vocab-mapping"
	ErrInvalidDefaultLanguage     ErrorKind = "invalid-default-language"
	ErrInvalidContainerMapping    ErrorKind = "invalid-container-mapping"
	ErrInvalidTypeMapping         ErrorKind = "invalid-type-mapping"
	ErrInvalidLanguageMapping     ErrorKind = "invalid-language-mapping"
	ErrInvalidReverseProperty     ErrorKind = "invalid-reverse-property"
	ErrCyclicIRIMapping           ErrorKind = "cyclic-iri-mapping"
	ErrKeywordRedefinition        ErrorKind = "keyword-redefinition"
	ErrProtectedTermRedefinition  ErrorKind = "protected-term-redefinition"
	ErrInvalidLocalContext        ErrorKind = "invalid-local-context"
	ErrInvalidRemoteContext       ErrorKind = "invalid-remote-context"
	ErrInvalidImportValue         ErrorKind = "invalid-import-value"
	ErrInvalidContextMember       ErrorKind = "invalid-context-member"
	ErrContextOverflow            ErrorKind = "context-overflow"
	ErrInvalidTermDefinition      ErrorKind = "invalid-term-definition"
	ErrInvalidScopedContext       ErrorKind = "invalid-scoped-context"
	ErrInvalidKeywordAlias        ErrorKind = "invalid-keyword-alias"

	// Expansion/compaction errors.
	ErrInvalidSetOrListObject    ErrorKind = "invalid-set-or-list-object"
	ErrInvalidReversePropertyValue ErrorKind = "invalid-reverse-property-value"
	ErrCollidingKeywords         ErrorKind = "collidin-keywords"
	ErrInvalidTypeValue          ErrorKind = "invalid-type-value"
	ErrListOfLists               ErrorKind = "list-of-lists"
	ErrInvalidLanguageMapValue   ErrorKind = "invalid-language-map-value"
	ErrInvalidValueObjectValue   ErrorKind = "invalid-value-object-value"
	ErrInvalidIDValue            ErrorKind = "invalid-id-value"

	// toRDF/fromRDF errors.
	ErrInvalidIRIMapping           ErrorKind = "invalid-iri-mapping"
	ErrInvalidLanguageTaggedString ErrorKind = "invalid-language-tagged-string"
	ErrInvalidTypedValue           ErrorKind = "invalid-typed-value"

	// I/O errors.
	ErrLoadingDocumentFailed       ErrorKind = "loading-document-failed"
	ErrLoadingRemoteContextFailed  ErrorKind = "loading-remote-context-failed"
	ErrMultipleContextLinkHeaders  ErrorKind = "multiple-context-link-headers"

	// Framing errors.
	ErrInvalidFrame ErrorKind = "invalid-frame"
)

// Error is the tagged error value every JSON-LD algorithm in this package
// returns on failure.
type Error struct {
	Kind    ErrorKind
	Details string
	Cause   error
}

func (e *Error) Error() string {
	if e.Details == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Details)
}

func (e *Error) Unwrap() error { return e.Cause }

// newError builds an *Error, optionally wrapping a cause.
func newError(kind ErrorKind, details string, cause error) *Error {
	return &Error{Kind: kind, Details: details, Cause: cause}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ParseError provides structured context for N-Quads lexical parse
// failures.
type ParseError struct {
	Format    string // "nquads" or "ntriples"
	Statement string // offending statement or input excerpt
	Line      int    // 1-based line number (0 if unknown)
	Column    int    // 1-based column number (0 if unknown)
	Offset    int    // byte offset in input (0 if unknown)
	Err       error
}

func (e *ParseError) Error() string {
	var msg strings.Builder
	msg.WriteString(e.Format)
	if e.Line > 0 {
		if e.Column > 0 {
			fmt.Fprintf(&msg, ":%d:%d", e.Line, e.Column)
		} else {
			fmt.Fprintf(&msg, ":%d", e.Line)
		}
	}
	msg.WriteString(": ")
	msg.WriteString(e.Err.Error())
	if e.Statement != "" {
		excerpt := e.Statement
		const maxLen = 80
		if len(excerpt) > maxLen {
			excerpt = excerpt[:maxLen] + "..."
		}
		msg.WriteString("\n  ")
		msg.WriteString(excerpt)
	}
	return msg.String()
}

func (e *ParseError) Unwrap() error { return e.Err }
