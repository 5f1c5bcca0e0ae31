package convert

import (
	"fmt"

	"github.com/talav/openapi-codegen/config"
	"github.com/talav/openapi-codegen/debug"
	"github.com/talav/openapi-codegen/internal/atr"
	"github.com/talav/openapi-codegen/internal/registry"
)

// Context is the inherited-naming hint threaded through TypeResolver.Resolve
// (§4.3.1): the enclosing nominal type's name and the field name that
// introduced this schema, used to derive names for any inline type hoisted
// out of it.
type Context struct {
	ParentName string
	FieldName  string
	// RequiredHere is true when the field that introduced this schema is
	// required on its parent, used by rule 3's cycle-breaking test.
	RequiredHere bool
}

// Converter is stage 3's SchemaConverter: it owns the TypeCache/NameRegistry
// for the duration of the run and accumulates every ATR node it produces.
type Converter struct {
	spec     *registry.ResolvedSpec
	cfg      config.GeneratorConfig
	warnings *debug.Warnings

	names *NameRegistry
	cache *TypeCache

	nodes    []*atr.Node
	byName   map[string]*atr.Node
	regexes  *RegexTable
}

// NewConverter constructs a Converter over a resolved spec.
func NewConverter(spec *registry.ResolvedSpec, cfg config.GeneratorConfig, warnings *debug.Warnings) *Converter {
	names := NewNameRegistry()
	return &Converter{
		spec:     spec,
		cfg:      cfg,
		warnings: warnings,
		names:    names,
		cache:    NewTypeCache(names),
		byName:   map[string]*atr.Node{},
		regexes:  NewRegexTable(),
	}
}

// Nodes returns every ATR node produced so far, in registration order.
func (c *Converter) Nodes() []*atr.Node { return c.nodes }

// Regexes returns the module-level deduplicated regex constant table.
func (c *Converter) Regexes() *RegexTable { return c.regexes }

// RegisterNode exposes register to stage 4 (opconvert), which builds its
// own request/response nodes directly rather than through Resolve.
func (c *Converter) RegisterNode(n *atr.Node) { c.register(n) }

// MarkUsage seeds the usage bits of the named node at the root of ref
// (unwrapping any constructor) with the given positions — the initial
// seeding OperationConverter performs (§4.4) before the postprocessor's
// fixed-point propagation (§4.5.1) carries it through the dependency graph.
func (c *Converter) MarkUsage(ref *atr.TypeRef, inRequest, inResponse bool) {
	if ref == nil {
		return
	}
	name := rootName(ref)
	if name == "" {
		return
	}
	node, ok := c.byName[name]
	if !ok {
		return
	}
	u := node.Usage()
	if u == nil {
		return
	}
	if inRequest {
		u.InRequestPosition = true
	}
	if inResponse {
		u.InResponsePosition = true
	}
}

func rootName(ref *atr.TypeRef) string {
	for ref != nil {
		if ref.Kind == atr.RefNamed {
			return ref.Name
		}
		ref = ref.Elem
	}
	return ""
}

// register adds a node to the converter's output set, indexed by name.
func (c *Converter) register(n *atr.Node) {
	c.nodes = append(c.nodes, n)
	c.byName[n.Name()] = n
}

// ConvertNamed converts a top-level component schema (by name) into its
// TypeRef, registering whatever ATR nodes are needed. Safe to call more
// than once for the same name; subsequent calls are a cache hit.
func (c *Converter) ConvertNamed(name string) (*atr.TypeRef, error) {
	schema, ok := c.spec.SchemasByName[name]
	if !ok {
		return nil, fmt.Errorf("convert: unknown schema %q", name)
	}
	if _, ok := c.byName[name]; ok {
		return atr.Named(name), nil
	}
	return c.Resolve(schema, Context{ParentName: name})
}

// Resolve implements TypeResolver.resolve (§4.3.1): the ten-rule ordered
// dispatch from a ResolvedSchema to a TypeRef, registering new ATR nodes as
// a side effect.
func (c *Converter) Resolve(s *registry.ResolvedSchema, ctx Context) (*atr.TypeRef, error) {
	// Rule 1: named reference.
	if s.Ref != "" {
		// Rule 3 applied to a reference: a required field naming its own
		// cyclic parent type is wrapped in Indirect.
		if c.spec.Cyclic[s.Ref] && ctx.RequiredHere && ctx.ParentName == s.Ref {
			return atr.Indirect(atr.Named(s.Ref)), nil
		}
		return atr.Named(s.Ref), nil
	}

	// Rule 2: nullable union (anyOf/oneOf == [T, null]).
	if len(s.AnyOf) > 0 || len(s.OneOf) > 0 {
		members := s.AnyOf
		if len(members) == 0 {
			members = s.OneOf
		}
		if registry.ClassifyUnion(members, s.Discriminator) == registry.UnionNullable {
			inner := nonNullMember(members)
			ref, err := c.Resolve(inner, ctx)
			if err != nil {
				return nil, err
			}
			return atr.Optional(ref), nil
		}
	}

	// Rule 3: cycle breaking. A schema participating in the cyclic set,
	// reached through a required field of the same ultimate nominal type,
	// is wrapped in Indirect instead of inlined directly.
	if s.Ref == "" && s.Name != "" && c.spec.Cyclic[s.Name] && ctx.RequiredHere && ctx.ParentName == s.Name {
		return atr.Indirect(atr.Named(s.Name)), nil
	}

	// Rule 4: primitive (including string-with-format).
	if isPrimitive(s) {
		return c.resolvePrimitive(s), nil
	}

	// Rule 5: array.
	if s.Items != nil || s.Type == "array" {
		elem, err := c.Resolve(s.Items, Context{ParentName: ctx.ParentName, FieldName: ctx.FieldName})
		if err != nil {
			return nil, err
		}
		ref := atr.Array(elem)
		if s.UniqueItems {
			ref = atr.Unique(elem)
		}
		return ref, nil
	}

	// Rule 6: map-only object (no declared properties, additionalProperties set).
	if s.Type == "object" && len(s.Properties) == 0 && (s.AdditionalSchema != nil || (s.AdditionalAllowed != nil && *s.AdditionalAllowed)) {
		var valueRef *atr.TypeRef
		var err error
		if s.AdditionalSchema != nil {
			valueRef, err = c.Resolve(s.AdditionalSchema, ctx)
			if err != nil {
				return nil, err
			}
		} else {
			valueRef = atr.PrimitiveRef(atr.PrimitiveAny)
		}
		return atr.Map(valueRef), nil
	}

	// Rule 7: general object -> StructConverter.
	if s.Type == "object" || len(s.Properties) > 0 {
		return c.convertStruct(s, ctx)
	}

	// Rule 8: string-enum -> EnumConverter.
	if s.Type == "string" && len(s.Enum) > 0 {
		return c.convertEnum(s, ctx)
	}

	// Rule 9: oneOf/anyOf -> UnionConverter.
	if len(s.OneOf) > 0 || len(s.AnyOf) > 0 {
		return c.convertUnion(s, ctx)
	}

	// Rule 10: fallback.
	*c.warnings = append(*c.warnings, debug.NewWarning(debug.WarnUnrepresentableShape, ctx.ParentName+"."+ctx.FieldName,
		fmt.Sprintf("schema shape could not be classified; falling back to any")))
	return atr.PrimitiveRef(atr.PrimitiveAny), nil
}

func nonNullMember(members []*registry.ResolvedSchema) *registry.ResolvedSchema {
	for _, m := range members {
		if m.Type != "null" {
			return m
		}
	}
	return members[0]
}

func isPrimitive(s *registry.ResolvedSchema) bool {
	switch s.Type {
	case "string", "integer", "number", "boolean":
		return true
	default:
		return false
	}
}

// resolvePrimitive implements the §6.2 OpenAPI-to-ATR primitive map,
// honoring any config.Customize override for a format key.
func (c *Converter) resolvePrimitive(s *registry.ResolvedSchema) *atr.TypeRef {
	if custom, ok := c.cfg.Customize[s.Format]; ok && custom != "" {
		return atr.Named(custom)
	}

	switch s.Type {
	case "string":
		switch s.Format {
		case "date-time":
			return atr.PrimitiveRef(atr.PrimitiveInstant)
		case "date":
			return atr.PrimitiveRef(atr.PrimitiveDate)
		case "time":
			return atr.PrimitiveRef(atr.PrimitiveTime)
		case "duration":
			return atr.PrimitiveRef(atr.PrimitiveDuration)
		case "uuid":
			return atr.PrimitiveRef(atr.PrimitiveUUID)
		case "binary", "byte":
			return atr.PrimitiveRef(atr.PrimitiveBytes)
		case "email", "uri":
			return atr.PrimitiveRef(atr.PrimitiveString)
		case "":
			return atr.PrimitiveRef(atr.PrimitiveString)
		default:
			*c.warnings = append(*c.warnings, debug.NewWarning(debug.WarnUnrecognizedFormat, "",
				fmt.Sprintf("unrecognized string format %q; falling back to string", s.Format)))
			return atr.PrimitiveRef(atr.PrimitiveString)
		}
	case "integer":
		if s.Format == "int32" {
			return atr.PrimitiveRef(atr.PrimitiveI32)
		}
		return atr.PrimitiveRef(atr.PrimitiveI64)
	case "number":
		return atr.PrimitiveRef(atr.PrimitiveF64)
	case "boolean":
		return atr.PrimitiveRef(atr.PrimitiveBool)
	default:
		return atr.PrimitiveRef(atr.PrimitiveAny)
	}
}
