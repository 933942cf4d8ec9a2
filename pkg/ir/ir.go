package ir

// Kind discriminates the variants of Struct
type Kind string

const (
	KindObject       Kind = "object"
	KindArray        Kind = "array"
	KindUnion        Kind = "union"
	KindIntersection Kind = "intersection"
	KindReference    Kind = "reference"
	KindString       Kind = "string"
	KindNumber       Kind = "number"
	KindBoolean      Kind = "boolean"
	KindNull         Kind = "null"
	KindAny          Kind = "any"
	KindNever        Kind = "never"
	KindUndefined    Kind = "undefined"
)

// Struct is the normalized, language-agnostic shape of a schema.
// Only the fields relevant to Kind are populated.
type Struct struct {
	Kind Kind `json:"kind"`

	// Object
	Properties []Property `json:"properties,omitempty"`
	Index      *Struct    `json:"index,omitempty"`

	// Array
	Element *Struct `json:"element,omitempty"`

	// Union / Intersection
	Members []Struct `json:"members,omitempty"`

	// Reference holds a resolved declaration name, never a pointer
	Name string `json:"name,omitempty"`

	// String / Number literal values (string or float64)
	Enum []any `json:"enum,omitempty"`
}

// Property is a named member of an object Struct
type Property struct {
	Name     string `json:"name"`
	Struct   Struct `json:"struct"`
	Optional bool   `json:"optional"`
	Comment  string `json:"comment,omitempty"`
}

// Object returns an object Struct with the given properties
func Object(props ...Property) Struct {
	return Struct{Kind: KindObject, Properties: props}
}

// Array returns an array Struct of element
func Array(element Struct) Struct {
	return Struct{Kind: KindArray, Element: &element}
}

// Reference returns a reference Struct to a declaration name
func Reference(name string) Struct {
	return Struct{Kind: KindReference, Name: name}
}

// Primitive returns a member-less Struct of the given kind
func Primitive(kind Kind) Struct {
	return Struct{Kind: kind}
}

// Never is the empty type
func Never() Struct { return Struct{Kind: KindNever} }

// Undefined is the absent sentinel
func Undefined() Struct { return Struct{Kind: KindUndefined} }

// Union collapses members into the smallest equivalent Struct: never when
// empty, the member itself when there is exactly one.
func Union(members ...Struct) Struct {
	switch len(members) {
	case 0:
		return Never()
	case 1:
		return members[0]
	}
	return Struct{Kind: KindUnion, Members: members}
}

// Intersection combines members; a single member is returned as is
func Intersection(members ...Struct) Struct {
	if len(members) == 1 {
		return members[0]
	}
	return Struct{Kind: KindIntersection, Members: members}
}

// Nullable wraps s as s|null once. Null structs and unions already
// carrying a null member are returned unchanged.
func Nullable(s Struct) Struct {
	if s.Kind == KindNull || s.HasNullMember() {
		return s
	}
	return Struct{Kind: KindUnion, Members: []Struct{s, {Kind: KindNull}}}
}

// HasNullMember reports whether s is a union with a direct null member
func (s Struct) HasNullMember() bool {
	if s.Kind != KindUnion {
		return false
	}
	for _, m := range s.Members {
		if m.Kind == KindNull {
			return true
		}
	}
	return false
}

// IsEmptyObject reports whether s is an object without properties or index signature
func (s Struct) IsEmptyObject() bool {
	return s.Kind == KindObject && len(s.Properties) == 0 && s.Index == nil
}

// References returns every declaration name referenced from s, in traversal order
func (s Struct) References() []string {
	var out []string
	var walk func(Struct)
	walk = func(n Struct) {
		switch n.Kind {
		case KindReference:
			out = append(out, n.Name)
		case KindObject:
			for _, p := range n.Properties {
				walk(p.Struct)
			}
			if n.Index != nil {
				walk(*n.Index)
			}
		case KindArray:
			if n.Element != nil {
				walk(*n.Element)
			}
		case KindUnion, KindIntersection:
			for _, m := range n.Members {
				walk(m)
			}
		}
	}
	walk(s)
	return out
}

// Entry records one resolved $ref occurrence
type Entry struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Name   string `json:"name"`
}

// Declaration is a named structural type, declared once per run
type Declaration struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
	// Location is the document-relative location of the declared schema
	Location string `json:"location"`
	Struct   Struct `json:"struct"`
	Comment  string `json:"comment,omitempty"`
}

// QualifiedName is the name used by reference Structs
func (d Declaration) QualifiedName() string {
	if d.Namespace == "" {
		return d.Name
	}
	return d.Namespace + "." + d.Name
}

// MediaStruct pairs a content type with the Struct of its schema
type MediaStruct struct {
	ContentType string `json:"contentType"`
	Struct      Struct `json:"struct"`
}

// NamedStruct is an entry of a per-operation name→struct table
type NamedStruct struct {
	Name   string `json:"name"`
	Struct Struct `json:"struct"`
}

// ParameterType is the single argument type of an operation
type ParameterType struct {
	// Absent is set when the operation takes no arguments at all
	Absent bool   `json:"absent"`
	Name   string `json:"name,omitempty"`
	// Parameter is the object of path and query parameters, nil when none
	Parameter           *Struct       `json:"parameter,omitempty"`
	RequestBodies       []MediaStruct `json:"requestBodies,omitempty"`
	RequestBodyRequired bool          `json:"requestBodyRequired,omitempty"`
	// RequestContentType is the request discriminator slot; empty when not needed
	RequestContentType string `json:"requestContentType,omitempty"`
	// ResponseContentTypes is the response discriminator slot; nil when not needed
	ResponseContentTypes []string `json:"responseContentTypes,omitempty"`
}

// HasSlots reports whether any content-type discriminator slot is present
func (p ParameterType) HasSlots() bool {
	return p.RequestContentType != "" || len(p.ResponseContentTypes) > 0
}

// Headers returns the object of discriminator slots, false when there are none
func (p ParameterType) Headers() (Struct, bool) {
	if !p.HasSlots() {
		return Struct{}, false
	}
	var headers []Property
	if p.RequestContentType != "" {
		headers = append(headers, Property{Name: "Content-Type", Struct: Struct{Kind: KindString, Enum: []any{p.RequestContentType}}})
	}
	if len(p.ResponseContentTypes) > 0 {
		lits := make([]any, 0, len(p.ResponseContentTypes))
		for _, ct := range p.ResponseContentTypes {
			lits = append(lits, ct)
		}
		headers = append(headers, Property{Name: "Accept", Struct: Struct{Kind: KindString, Enum: lits}})
	}
	return Object(headers...), true
}

// Struct flattens the argument type into one Struct
func (p ParameterType) Struct() Struct {
	if p.Absent {
		return Undefined()
	}
	var props []Property
	if headers, ok := p.Headers(); ok {
		props = append(props, Property{Name: "headers", Struct: headers})
	}
	if p.Parameter != nil {
		props = append(props, Property{Name: "parameter", Struct: *p.Parameter})
	}
	if body, ok := p.RequestBody(); ok {
		props = append(props, Property{Name: "requestBody", Struct: body, Optional: !p.RequestBodyRequired})
	}
	return Object(props...)
}

// RequestBody returns the body selected by the request slot, or the union of
// all bodies when there is no slot
func (p ParameterType) RequestBody() (Struct, bool) {
	if len(p.RequestBodies) == 0 {
		return Struct{}, false
	}
	if p.RequestContentType != "" {
		for _, b := range p.RequestBodies {
			if b.ContentType == p.RequestContentType {
				return b.Struct, true
			}
		}
	}
	members := make([]Struct, 0, len(p.RequestBodies))
	for _, b := range p.RequestBodies {
		members = append(members, b.Struct)
	}
	return Union(members...), true
}

// Contract is the per-(method, URI) record of one operation
type Contract struct {
	OperationID          string        `json:"operationId"`
	Method               string        `json:"method"`
	RequestURI           string        `json:"requestUri"`
	Tags                 []string      `json:"tags,omitempty"`
	Summary              string        `json:"summary,omitempty"`
	Deprecated           bool          `json:"deprecated,omitempty"`
	Parameters           ParameterType `json:"parameters"`
	Response             Struct        `json:"response"`
	RequestContentTypes  []string      `json:"requestContentTypes,omitempty"`
	ResponseContentTypes []string      `json:"responseContentTypes,omitempty"`
	ErrorResponses       []NamedStruct `json:"errorResponses,omitempty"`
}

// IR is the complete output of one generation run
type IR struct {
	Declarations []Declaration `json:"declarations"`
	Contracts    []Contract    `json:"contracts"`
	Entries      []Entry       `json:"entries,omitempty"`
}

// Operations returns the aggregate map keyed by operation identifier
func (in IR) Operations() map[string]Contract {
	out := make(map[string]Contract, len(in.Contracts))
	for _, c := range in.Contracts {
		out[c.OperationID] = c
	}
	return out
}

// Namespaces groups declarations by namespace, preserving their order
func (in IR) Namespaces() map[string][]Declaration {
	out := make(map[string][]Declaration)
	for _, d := range in.Declarations {
		out[d.Namespace] = append(out[d.Namespace], d)
	}
	return out
}
