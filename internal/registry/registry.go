// Package registry implements stage 1: turning a raw OpenAPI document into a
// normalized, closed-world ResolvedSpec — $ref chased, allOf flattened,
// unions classified, and cycles detected ahead of type synthesis.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/imdario/mergo"

	"github.com/talav/openapi-codegen/debug"
	"github.com/talav/openapi-codegen/document"
)

// ResolvedSchema is a normalized view of an OpenAPI schema: $ref chased,
// allOf flattened into the same object. It is created once and never
// mutated afterward (§3.5).
type ResolvedSchema struct {
	Name string // component name, if this schema was reached by $ref; "" for inline

	Type        string
	Nullable    bool
	Format      string
	Description string
	Deprecated  bool
	ReadOnly    bool
	WriteOnly   bool

	Pattern          string
	MinLength        *int
	MaxLength        *int
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum bool
	ExclusiveMaximum bool
	MultipleOf       *float64

	Items       *ResolvedSchema
	MinItems    *int
	MaxItems    *int
	UniqueItems bool

	Properties        map[string]*ResolvedSchema
	PropertyOrder      []string
	Required          []string
	DependentRequired map[string][]string

	AdditionalAllowed *bool
	AdditionalSchema  *ResolvedSchema

	MinProperties *int
	MaxProperties *int

	AnyOf []*ResolvedSchema
	OneOf []*ResolvedSchema

	Enum    []any
	Const   any
	Default any

	Discriminator *Discriminator

	Ref string // original $ref target name, if this node is itself a ref pointer
}

// Discriminator carries polymorphism hints for a oneOf/anyOf list.
type Discriminator struct {
	PropertyName string
	Mapping      map[string]string
}

// UnionKind classifies a oneOf/anyOf member list (§4.1 classify_union).
type UnionKind int

const (
	UnionNullable UnionKind = iota
	UnionDiscriminated
	UnionClosedEnumLike
	UnionRelaxedEnum
	UnionTagged
	UnionUntagged
)

// ResolvedSpec is the output of stage 1 (§4.1).
type ResolvedSpec struct {
	SchemasByName map[string]*ResolvedSchema
	SchemaNames   []string // sorted, lexicographic (§4.2 contract)

	Graph    map[string][]string // dependency_graph: schema name -> referenced schema names
	Cyclic   map[string]bool     // cyclic_set
	Document *document.RawDocument
}

// Registry resolves a raw document into a ResolvedSpec.
type Registry struct {
	doc      *document.RawDocument
	warnings *debug.Warnings

	resolved map[string]*ResolvedSchema // component name -> resolved (cache, read-first-write-on-miss)
	resolving map[string]bool           // cycle guard for resolve()
}

// New constructs a Registry over doc. warnings receives non-fatal
// advisories (e.g. allOf scalar conflicts) collected during Resolve.
func New(doc *document.RawDocument, warnings *debug.Warnings) *Registry {
	return &Registry{
		doc:       doc,
		warnings:  warnings,
		resolved:  map[string]*ResolvedSchema{},
		resolving: map[string]bool{},
	}
}

// Resolve runs the full stage-1 pipeline: resolve every component schema,
// build the dependency graph, and detect cycles.
func (r *Registry) Resolve() (*ResolvedSpec, error) {
	names := make([]string, 0, len(r.doc.Components.Schemas))
	for name := range r.doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names) // §4.2: schema ordering is lexicographic, never map iteration order

	for _, name := range names {
		if _, err := r.resolveNamed(name); err != nil {
			return nil, err
		}
	}

	graph := map[string][]string{}
	for _, name := range names {
		graph[name] = r.edges(r.resolved[name])
	}

	cyclic := detectCycles(graph)

	return &ResolvedSpec{
		SchemasByName: r.resolved,
		SchemaNames:   names,
		Graph:         graph,
		Cyclic:        cyclic,
		Document:      r.doc,
	}, nil
}

// resolveNamed resolves schema `name` from the document's component map,
// following $ref chains and flattening allOf. A placeholder is registered
// before recursing so a cyclic $ref chain (A -> B -> A with no concrete
// schema in between) is detected rather than infinitely recursing.
func (r *Registry) resolveNamed(name string) (*ResolvedSchema, error) {
	if existing, ok := r.resolved[name]; ok {
		return existing, nil
	}
	if r.resolving[name] {
		return nil, &resolveError{path: "#/components/schemas/" + name, err: fmt.Errorf("cyclic reference chain: %s", name)}
	}

	raw, ok := r.doc.Components.Schemas[name]
	if !ok {
		return nil, &resolveError{path: "#/components/schemas/" + name, err: fmt.Errorf("unresolvable reference")}
	}

	r.resolving[name] = true
	resolved, err := r.resolveSchema(raw, "#/components/schemas/"+name)
	delete(r.resolving, name)
	if err != nil {
		return nil, err
	}

	resolved.Name = name
	r.resolved[name] = resolved
	return resolved, nil
}

// ResolveInline resolves an ad hoc schema that does not live in the
// component map — an operation parameter or request/response body schema —
// through the same $ref-chasing and allOf-flattening logic as a named
// component (§4.4: these schemas are reached from the raw document, not
// the component registry, but must be normalized identically before
// conversion). path is used only for error context.
func (r *Registry) ResolveInline(raw *document.RawSchema, path string) (*ResolvedSchema, error) {
	return r.resolveSchema(raw, path)
}

// resolveSchema resolves one schema node: chases $ref, merges allOf, and
// recurses into composition/property/items members. path is used only for
// error context.
func (r *Registry) resolveSchema(raw *document.RawSchema, path string) (*ResolvedSchema, error) {
	if raw == nil {
		return &ResolvedSchema{Type: "null"}, nil
	}

	if raw.Ref != "" {
		name := refName(raw.Ref)
		if r.resolving[name] {
			// A $ref nested inside a schema back to a component still being
			// resolved is a structural cycle: return a reference stub. Only a
			// component that is itself a bare $ref falls through to the
			// cyclic-chain error in resolveNamed.
			isRoot := false
			for _, s := range r.doc.Components.Schemas {
				if s == raw {
					isRoot = true
					break
				}
			}
			if !isRoot {
				typ, _ := normalizeType(r.doc.Components.Schemas[name].Type)
				return &ResolvedSchema{Ref: name, Name: name, Type: typ}, nil
			}
		}
		target, err := r.resolveNamed(name)
		if err != nil {
			return nil, err
		}
		return &ResolvedSchema{Ref: name, Name: target.Name, Type: target.Type}, nil
	}

	if len(raw.AllOf) > 0 {
		return r.mergeAllOf(raw, path)
	}

	out := &ResolvedSchema{
		Format:            raw.Format,
		Description:       raw.Description,
		Deprecated:        raw.Deprecated,
		ReadOnly:          raw.ReadOnly,
		WriteOnly:         raw.WriteOnly,
		Pattern:           raw.Pattern,
		MinLength:         raw.MinLength,
		MaxLength:         raw.MaxLength,
		Minimum:           raw.Minimum,
		Maximum:           raw.Maximum,
		MultipleOf:        raw.MultipleOf,
		MinItems:          raw.MinItems,
		MaxItems:          raw.MaxItems,
		UniqueItems:       raw.UniqueItems,
		Required:          raw.Required,
		DependentRequired: raw.DependentRequired,
		MinProperties:     raw.MinProperties,
		MaxProperties:     raw.MaxProperties,
		Enum:              raw.Enum,
		Const:             raw.Const,
		Default:           raw.Default,
	}

	out.Type, out.Nullable = normalizeType(raw.Type)
	if b, ok := raw.ExclusiveMinimum.(bool); ok {
		out.ExclusiveMinimum = b
	} else if out.Minimum == nil {
		if f, ok := raw.ExclusiveMinimum.(float64); ok {
			out.Minimum = &f
			out.ExclusiveMinimum = true
		}
	}
	if b, ok := raw.ExclusiveMaximum.(bool); ok {
		out.ExclusiveMaximum = b
	} else if out.Maximum == nil {
		if f, ok := raw.ExclusiveMaximum.(float64); ok {
			out.Maximum = &f
			out.ExclusiveMaximum = true
		}
	}

	if raw.Items != nil {
		items, err := r.resolveSchema(raw.Items, path+"/items")
		if err != nil {
			return nil, err
		}
		out.Items = items
	}

	if len(raw.Properties) > 0 {
		out.Properties = map[string]*ResolvedSchema{}
		keys := make([]string, 0, len(raw.Properties))
		for k := range raw.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			prop, err := r.resolveSchema(raw.Properties[k], path+"/properties/"+k)
			if err != nil {
				return nil, err
			}
			out.Properties[k] = prop
			out.PropertyOrder = append(out.PropertyOrder, k)
		}
	}

	switch v := raw.AdditionalProperties.(type) {
	case bool:
		out.AdditionalAllowed = &v
	case *document.RawSchema:
		schema, err := r.resolveSchema(v, path+"/additionalProperties")
		if err != nil {
			return nil, err
		}
		out.AdditionalSchema = schema
	}

	for i, m := range raw.AnyOf {
		resolved, err := r.resolveSchema(m, fmt.Sprintf("%s/anyOf/%d", path, i))
		if err != nil {
			return nil, err
		}
		out.AnyOf = append(out.AnyOf, resolved)
	}
	for i, m := range raw.OneOf {
		resolved, err := r.resolveSchema(m, fmt.Sprintf("%s/oneOf/%d", path, i))
		if err != nil {
			return nil, err
		}
		out.OneOf = append(out.OneOf, resolved)
	}

	if raw.Discriminator != nil {
		out.Discriminator = &Discriminator{
			PropertyName: raw.Discriminator.PropertyName,
			Mapping:      raw.Discriminator.Mapping,
		}
	}

	return out, nil
}

// mergeAllOf recursively flattens allOf members into one object (§4.1).
func (r *Registry) mergeAllOf(raw *document.RawSchema, path string) (*ResolvedSchema, error) {
	out := &ResolvedSchema{
		Type:              "object",
		Properties:        map[string]*ResolvedSchema{},
		Description:       raw.Description,
	}
	required := map[string]bool{}

	members := make([]*document.RawSchema, len(raw.AllOf))
	copy(members, raw.AllOf)
	if raw.Properties != nil || len(raw.Required) > 0 {
		// Sibling keys alongside allOf behave as one more implicit member.
		members = append(members, &document.RawSchema{
			Properties: raw.Properties,
			Required:   raw.Required,
		})
	}

	var mostPermissive *bool
	for i, m := range members {
		member, err := r.resolveSchema(m, fmt.Sprintf("%s/allOf/%d", path, i))
		if err != nil {
			return nil, err
		}

		keys := append([]string(nil), member.PropertyOrder...)
		sort.Strings(keys)
		for _, k := range keys {
			prop := member.Properties[k]
			if existing, ok := out.Properties[k]; ok {
				merged, conflict := mergeProperty(existing, prop)
				if conflict {
					*r.warnings = append(*r.warnings, mergeConflictWarning(path, k))
				}
				out.Properties[k] = merged
			} else {
				out.Properties[k] = prop
				out.PropertyOrder = append(out.PropertyOrder, k)
			}
		}
		for _, req := range member.Required {
			required[req] = true
		}

		if member.AdditionalAllowed != nil {
			if mostPermissive == nil || *member.AdditionalAllowed {
				mostPermissive = member.AdditionalAllowed
			}
		}
		if member.AdditionalSchema != nil {
			out.AdditionalSchema = member.AdditionalSchema
		}
	}

	out.Required = sortedKeys(required)
	out.AdditionalAllowed = mostPermissive
	return out, nil
}

// mergeProperty combines two property definitions seen for the same key
// across allOf members. Object-shaped fields deep-merge (union of nested
// properties); scalar conflicts report a warning and keep the later value
// (§9 Open Question: warn-only, last-wins).
func mergeProperty(a, b *ResolvedSchema) (merged *ResolvedSchema, conflict bool) {
	if a.Type == "object" && b.Type == "object" {
		out := &ResolvedSchema{Type: "object", Properties: map[string]*ResolvedSchema{}}
		for k, v := range a.Properties {
			out.Properties[k] = v
		}
		// b's nested properties win on key conflicts, matching mergeAllOf's
		// own later-member-wins rule one level up.
		if err := mergo.Merge(&out.Properties, b.Properties, mergo.WithOverride); err != nil {
			for k, v := range b.Properties {
				out.Properties[k] = v
			}
		}
		out.PropertyOrder = append(append([]string{}, a.PropertyOrder...), diffKeys(b.PropertyOrder, a.PropertyOrder)...)
		out.Required = append(append([]string{}, a.Required...), b.Required...)
		return out, false
	}
	if a.Type != b.Type || a.Format != b.Format {
		return b, true
	}
	return b, false
}

func diffKeys(keys, exclude []string) []string {
	excluded := map[string]bool{}
	for _, k := range exclude {
		excluded[k] = true
	}
	var out []string
	for _, k := range keys {
		if !excluded[k] {
			out = append(out, k)
		}
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func mergeConflictWarning(path, field string) debug.Warning {
	return debug.NewWarning(debug.WarnAllOfConflict, path+"/properties/"+field,
		fmt.Sprintf("allOf members disagree on property %q; the later member's type wins", field))
}

// ClassifyUnion examines a oneOf/anyOf member list and its discriminator
// (if any) and returns its UnionKind (§4.1 classify_union).
func ClassifyUnion(members []*ResolvedSchema, discriminator *Discriminator) UnionKind {
	if isNullableUnion(members) {
		return UnionNullable
	}
	if discriminator != nil {
		return UnionDiscriminated
	}
	if allConstStrings(members) {
		return UnionClosedEnumLike
	}
	if isRelaxedEnum(members) {
		return UnionRelaxedEnum
	}
	if allRefsOrObjects(members) {
		return UnionTagged
	}
	return UnionUntagged
}

func isNullableUnion(members []*ResolvedSchema) bool {
	nonNull := 0
	for _, m := range members {
		if m.Type != "null" {
			nonNull++
		}
	}
	return len(members) >= 1 && nonNull == len(members)-1 && len(members) > nonNull
}

func allConstStrings(members []*ResolvedSchema) bool {
	for _, m := range members {
		if _, ok := m.Const.(string); ok {
			continue
		}
		if len(m.Enum) == 1 {
			continue
		}
		return false
	}
	return len(members) > 0
}

func isRelaxedEnum(members []*ResolvedSchema) bool {
	hasFreeform := false
	hasClosed := false
	for _, m := range members {
		if m.Type == "string" && len(m.Enum) == 0 && m.Const == nil {
			hasFreeform = true
		} else if len(m.Enum) > 0 || m.Const != nil {
			hasClosed = true
		}
	}
	return hasFreeform && hasClosed
}

func allRefsOrObjects(members []*ResolvedSchema) bool {
	for _, m := range members {
		if m.Ref == "" && m.Type != "object" {
			return false
		}
	}
	return true
}

// IsReachable computes the transitive closure of schema names reachable
// from the given roots over the dependency graph (§4.1 is_reachable).
func IsReachable(graph map[string][]string, roots []string) map[string]bool {
	seen := map[string]bool{}
	var stack []string
	stack = append(stack, roots...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, graph[n]...)
	}
	return seen
}

// edges lists the schema names reachable from resolved by one non-trivial
// hop: any $ref in properties, items, oneOf, or anyOf (§3.1).
func (r *Registry) edges(s *ResolvedSchema) []string {
	seen := map[string]bool{}
	var out []string
	add := func(ref string) {
		if ref != "" && !seen[ref] {
			seen[ref] = true
			out = append(out, ref)
		}
	}
	var walk func(*ResolvedSchema)
	walk = func(s *ResolvedSchema) {
		if s == nil {
			return
		}
		if s.Ref != "" {
			add(s.Ref)
			return
		}
		walk(s.Items)
		for _, p := range s.Properties {
			walk(p)
		}
		for _, m := range s.AnyOf {
			walk(m)
		}
		for _, m := range s.OneOf {
			walk(m)
		}
	}
	walk(s)
	sort.Strings(out)
	return out
}

func normalizeType(t any) (typ string, nullable bool) {
	switch v := t.(type) {
	case string:
		return v, false
	case []any:
		var types []string
		for _, e := range v {
			if s, ok := e.(string); ok {
				types = append(types, s)
			}
		}
		for _, s := range types {
			if s == "null" {
				nullable = true
				continue
			}
			typ = s
		}
		return typ, nullable
	default:
		return "", false
	}
}

func refName(ref string) string {
	const prefix = "#/components/schemas/"
	return strings.TrimPrefix(ref, prefix)
}

type resolveError struct {
	path string
	err  error
}

func (e *resolveError) Error() string { return fmt.Sprintf("while resolving %s: %s", e.path, e.err) }
func (e *resolveError) Unwrap() error { return e.err }
