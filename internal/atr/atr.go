// Package atr defines the Abstract Type Representation: the closed set of
// tagged node variants that stages 3-5 produce and mutate, and from which
// stage 6 (the emitter) renders source text. Nothing outside this package
// reasons about target-language syntax; atr only models shape and identity.
package atr

// RefKind distinguishes the interior forms a TypeRef can take.
type RefKind int

const (
	// RefNamed references a nominal type emitted elsewhere in the module.
	RefNamed RefKind = iota
	// RefPrimitive references one of the built-in primitives (see Primitive*).
	RefPrimitive
	// RefOptional wraps Elem, meaning "may be absent or null".
	RefOptional
	// RefArray wraps Elem, an ordered sequence.
	RefArray
	// RefMap wraps Elem, a string-keyed map (OpenAPI's additionalProperties).
	RefMap
	// RefUnique wraps Elem with set semantics (uniqueItems:true).
	RefUnique
	// RefIndirect wraps Elem with an ownership-breaking indirection, used to
	// keep a self-referential RecordType representable as a Go struct.
	RefIndirect
)

// Primitive enumerates the ATR's built-in scalar kinds (§6.2).
type Primitive string

const (
	PrimitiveString   Primitive = "string"
	PrimitiveI32      Primitive = "i32"
	PrimitiveI64      Primitive = "i64"
	PrimitiveF64      Primitive = "f64"
	PrimitiveBool     Primitive = "bool"
	PrimitiveBytes    Primitive = "bytes"
	PrimitiveInstant  Primitive = "instant"
	PrimitiveDate     Primitive = "date"
	PrimitiveTime     Primitive = "time"
	PrimitiveDuration Primitive = "duration"
	PrimitiveUUID     Primitive = "uuid"
	PrimitiveAny      Primitive = "any"
)

// TypeRef is the ATR's interior language: either a name, a primitive, or a
// constructor applied to another TypeRef.
type TypeRef struct {
	Kind      RefKind
	Name      string    // set when Kind == RefNamed
	Primitive Primitive // set when Kind == RefPrimitive
	Elem      *TypeRef  // set for every constructor kind
}

func Named(name string) *TypeRef         { return &TypeRef{Kind: RefNamed, Name: name} }
func PrimitiveRef(p Primitive) *TypeRef  { return &TypeRef{Kind: RefPrimitive, Primitive: p} }
func Optional(elem *TypeRef) *TypeRef    { return &TypeRef{Kind: RefOptional, Elem: elem} }
func Array(elem *TypeRef) *TypeRef       { return &TypeRef{Kind: RefArray, Elem: elem} }
func Map(elem *TypeRef) *TypeRef         { return &TypeRef{Kind: RefMap, Elem: elem} }
func Unique(elem *TypeRef) *TypeRef      { return &TypeRef{Kind: RefUnique, Elem: elem} }
func Indirect(elem *TypeRef) *TypeRef    { return &TypeRef{Kind: RefIndirect, Elem: elem} }

// IsOptional reports whether the ref is directly wrapped in Optional.
func (r *TypeRef) IsOptional() bool { return r != nil && r.Kind == RefOptional }

// Unwrap returns the element of a constructor ref, or the ref itself if it
// is not a constructor.
func (r *TypeRef) Unwrap() *TypeRef {
	if r == nil {
		return nil
	}
	switch r.Kind {
	case RefOptional, RefArray, RefMap, RefUnique, RefIndirect:
		return r.Elem
	default:
		return r
	}
}

// NodeKind tags the variant a Node carries.
type NodeKind int

const (
	NodeRecord NodeKind = iota
	NodeEnum
	NodeDiscriminatedUnion
	NodeResponseEnum
	NodeAlias
)

// Usage records whether a nominal type is reachable from a request body or
// parameter (serialize side) and/or from a response body (deserialize
// side). Populated by stage 4, propagated to a fixed point by stage 5.
type Usage struct {
	InRequestPosition  bool
	InResponsePosition bool
}

// SerdeMode is derived from Usage by the postprocessor.
type SerdeMode int

const (
	SerdeBoth SerdeMode = iota
	SerdeSerializeOnly
	SerdeDeserializeOnly
)

// Field is one member of a RecordType.
type Field struct {
	Name       string // target-language identifier
	WireName   string // original JSON key
	Type       *TypeRef
	Required   bool
	Validation Validation
	Default    *Literal
	Deprecated bool
	Docs       string
	ReadOnly   bool
	WriteOnly  bool

	// ValidateNested is set by the postprocessor (§4.5.4) when Type's
	// underlying record carries its own validation constraints.
	ValidateNested bool
}

// Validation collects the format/range/length constraints extracted from a
// schema (§4.3.2).
type Validation struct {
	MinLength        *int
	MaxLength        *int
	Pattern          string // regex constant table key, not the pattern text itself
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum bool
	ExclusiveMaximum bool
	MinItems         *int
	MaxItems         *int
	Format           string // "email", "uri", ... kept for docs/validation annotations
}

// Literal is a typed literal expression, used for default values (§4.3.3).
type Literal struct {
	Kind  Primitive
	Value any
}

// RecordType is a named, ordered list of fields (§3.2).
type RecordType struct {
	Name    string
	Fields  []Field
	Docs    string
	Usage   Usage
	Mode    SerdeMode
	// Cyclic marks a record whose schema belongs to the registry's cyclic
	// set (any reference cycle, through required fields or not); only a
	// required field of the record's own type is wrapped in Indirect.
	Cyclic bool
}

// EnumVariantKind tags one EnumType variant.
type EnumVariantKind int

const (
	VariantUnit EnumVariantKind = iota
	VariantPayload
	VariantCatchAll
)

// EnumVariant is one member of an EnumType.
type EnumVariant struct {
	Kind    EnumVariantKind
	Name    string   // target-language identifier
	Wire    any      // string or integer wire value, for VariantUnit
	Aliases []any    // additional wire values that deserialize to this variant (Merge mode)
	Payload *TypeRef // set for VariantPayload/VariantCatchAll
}

// EnumType is a closed set of named variants (§3.2, §4.3.4).
type EnumType struct {
	Name      string
	Variants  []EnumVariant
	CaseMode  int // mirrors config.EnumMode without importing config (kept decoupled)
	Docs      string
	Usage     Usage
	Mode      SerdeMode
}

// UnionVariant is one member of a DiscriminatedUnionType.
type UnionVariant struct {
	DiscriminatorValue string
	Type               *TypeRef // always RefNamed, a RecordType
}

// DiscriminatedUnionType is a closed set of variants keyed by discriminator
// value, plus a fallback (§3.2, §4.3.5 Discriminated).
type DiscriminatedUnionType struct {
	Name              string
	DiscriminatorName string
	Variants          []UnionVariant
	FallbackVariant   string // sentinel name for the Unknown/any-payload fallback
	Docs              string
	Usage             Usage
	Mode              SerdeMode
}

// ResponseVariant is one (status, content-type) entry of a ResponseEnumType.
type ResponseVariant struct {
	Status      string // status code token, e.g. "200", or "default"
	ContentType string // e.g. "application/json", or "" for bodiless
	Payload     *TypeRef
}

// ResponseEnumType models one operation's response surface (§3.2, §4.4).
// The final entry in Variants always has an empty Status: the Unknown
// fallback stage 4 appends to every response type, which absorbs any
// (status, content-type) pair none of the preceding variants match.
type ResponseEnumType struct {
	Name     string
	Variants []ResponseVariant
	Docs     string
	Usage    Usage
	Mode     SerdeMode
}

// TypeAlias is a pure rename from a logical name to a TypeRef (§3.2).
type TypeAlias struct {
	Name string
	Type *TypeRef
	Docs string
}

// Node is one ATR node, tagged by Kind; exactly one of the pointer fields
// matching Kind is non-nil.
type Node struct {
	Kind              NodeKind
	Record            *RecordType
	Enum              *EnumType
	DiscriminatedUnion *DiscriminatedUnionType
	ResponseEnum      *ResponseEnumType
	Alias             *TypeAlias
}

// Name returns the nominal name of whichever variant the node carries.
func (n *Node) Name() string {
	switch n.Kind {
	case NodeRecord:
		return n.Record.Name
	case NodeEnum:
		return n.Enum.Name
	case NodeDiscriminatedUnion:
		return n.DiscriminatedUnion.Name
	case NodeResponseEnum:
		return n.ResponseEnum.Name
	case NodeAlias:
		return n.Alias.Name
	default:
		return ""
	}
}

// Usage returns a pointer to the node's usage bits so the postprocessor can
// mutate them in place during fixed-point iteration.
func (n *Node) Usage() *Usage {
	switch n.Kind {
	case NodeRecord:
		return &n.Record.Usage
	case NodeEnum:
		return &n.Enum.Usage
	case NodeDiscriminatedUnion:
		return &n.DiscriminatedUnion.Usage
	case NodeResponseEnum:
		return &n.ResponseEnum.Usage
	default:
		return nil
	}
}

// SetMode assigns the derived serde mode (§4.5.2).
func (n *Node) SetMode(m SerdeMode) {
	switch n.Kind {
	case NodeRecord:
		n.Record.Mode = m
	case NodeEnum:
		n.Enum.Mode = m
	case NodeDiscriminatedUnion:
		n.DiscriminatedUnion.Mode = m
	case NodeResponseEnum:
		n.ResponseEnum.Mode = m
	}
}

// Dependencies returns the nominal names this node's TypeRefs reach into,
// used by the postprocessor's usage-propagation graph walk.
func (n *Node) Dependencies() []string {
	var names []string
	add := func(ref *TypeRef) {
		for ref != nil {
			if ref.Kind == RefNamed {
				names = append(names, ref.Name)
				return
			}
			ref = ref.Elem
		}
	}
	switch n.Kind {
	case NodeRecord:
		for _, f := range n.Record.Fields {
			add(f.Type)
		}
	case NodeDiscriminatedUnion:
		for _, v := range n.DiscriminatedUnion.Variants {
			add(v.Type)
		}
	case NodeResponseEnum:
		for _, v := range n.ResponseEnum.Variants {
			add(v.Payload)
		}
	case NodeEnum:
		for _, v := range n.Enum.Variants {
			add(v.Payload)
		}
	case NodeAlias:
		add(n.Alias.Type)
	}
	return names
}
