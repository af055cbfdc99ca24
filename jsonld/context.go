package jsonld

import "github.com/google/uuid"

// TermDefinition is the per-term record produced by Create Term Definition.
type TermDefinition struct {
	IRIMapping     string // absolute IRI, blank node label, or keyword
	IRIMappingNull bool   // term explicitly mapped to null
	Reverse        bool
	TypeMapping    string // "@id", "@json", "@vocab", "@none", an absolute IRI, or ""
	LanguageSet    bool   // language mapping explicitly present (possibly "")
	Language       string
	DirectionSet   bool
	Direction      Direction
	Container      map[string]bool
	IndexMapping   string
	Nest           string
	Prefix         bool
	Protected      bool
	LocalContext   interface{} // raw scoped @context, if any
	HasLocalContext bool
	BaseURL        string // base IRI in effect when this term was defined
}

func newTermDefinition() *TermDefinition {
	return &TermDefinition{Container: map[string]bool{}}
}

func (t *TermDefinition) clone() *TermDefinition {
	if t == nil {
		return nil
	}
	c := *t
	c.Container = make(map[string]bool, len(t.Container))
	for k, v := range t.Container {
		c.Container[k] = v
	}
	return &c
}

// hasContainer reports whether the term's container set contains kind.
func (t *TermDefinition) hasContainer(kind string) bool {
	return t != nil && t.Container[kind]
}

// Ctx is an immutable active-context snapshot. ProcessContext and withTerm
// return a new Ctx with a fresh ID rather than mutating the one they were
// given, so snapshots can be cached by ID without locking. Term definitions
// are written into the fresh clone that processContextObject owns for the
// duration of one @context object.
type Ctx struct {
	ID               string
	Terms            map[string]*TermDefinition
	Base             string
	OriginalBase     string
	Vocab            string
	DefaultLanguage  string
	DefaultDirection Direction
	ProcessingMode   string
	Previous         *Ctx

	inverse *inverseContext
}

const (
	ProcessingMode10 = "json-ld-1.0"
	ProcessingMode11 = "json-ld-1.1"
)

// initialContext returns the fixed constant context: empty term
// map, processing mode set, no base, no vocab. It is deliberately
// independent of any document URL.
func initialContext(mode string) *Ctx {
	if mode == "" {
		mode = ProcessingMode11
	}
	return &Ctx{
		ID:             uuid.NewString(),
		Terms:          map[string]*TermDefinition{},
		ProcessingMode: mode,
	}
}

// clone returns a new Ctx snapshot that shares term definitions structurally
// (they are treated as immutable once created) but gets a fresh ID.
func (c *Ctx) clone() *Ctx {
	terms := make(map[string]*TermDefinition, len(c.Terms))
	for k, v := range c.Terms {
		terms[k] = v
	}
	return &Ctx{
		ID:               uuid.NewString(),
		Terms:            terms,
		Base:             c.Base,
		OriginalBase:     c.OriginalBase,
		Vocab:            c.Vocab,
		DefaultLanguage:  c.DefaultLanguage,
		DefaultDirection: c.DefaultDirection,
		ProcessingMode:   c.ProcessingMode,
		Previous:         c.Previous,
	}
}

// withTerm returns a new snapshot with term bound to def.
func (c *Ctx) withTerm(term string, def *TermDefinition) *Ctx {
	next := c.clone()
	next.Terms[term] = def
	return next
}

// hasProtectedTerms reports whether any term in the context is protected.
func (c *Ctx) hasProtectedTerms() bool {
	for _, def := range c.Terms {
		if def != nil && def.Protected {
			return true
		}
	}
	return false
}

// getTerm returns the term definition for name, or nil if undefined.
func (c *Ctx) getTerm(name string) *TermDefinition {
	return c.Terms[name]
}
