package convert

import (
	"strings"

	"github.com/talav/openapi-codegen/internal/atr"
	"github.com/talav/openapi-codegen/internal/registry"
)

// convertStruct implements StructConverter (§4.3.2): a ResolvedSchema with
// declared properties becomes a RecordType, one field per property, in
// schema (post-allOf-merge) order.
func (c *Converter) convertStruct(s *registry.ResolvedSchema, ctx Context) (*atr.TypeRef, error) {
	name := c.nameFor(s, ctx, "")
	if _, done := c.byName[name]; done && s.Name == "" {
		return atr.Named(name), nil
	}

	required := map[string]bool{}
	for _, r := range s.Required {
		required[r] = true
	}

	order := s.PropertyOrder
	if len(order) == 0 {
		order = sortedSchemaNames(s.Properties)
	}

	record := &atr.RecordType{Name: name}
	if c.spec.Cyclic[s.Name] {
		record.Cyclic = true
	}

	for _, fieldName := range order {
		propSchema := s.Properties[fieldName]
		isRequired := required[fieldName]

		if c.cfg.ODataSupport && strings.HasPrefix(fieldName, "@odata.") && s.Discriminator == nil {
			isRequired = false
		}

		fieldRef, err := c.Resolve(propSchema, Context{
			ParentName:   name,
			FieldName:    fieldName,
			RequiredHere: isRequired,
		})
		if err != nil {
			return nil, &fieldError{schema: name, field: fieldName, err: err}
		}

		if !isRequired && !fieldRef.IsOptional() {
			fieldRef = atr.Optional(fieldRef)
		}

		field := atr.Field{
			Name:       goIdentifier(fieldName),
			WireName:   fieldName,
			Type:       fieldRef,
			Required:   isRequired,
			Deprecated: propSchema.Deprecated,
			Docs:       propSchema.Description,
			ReadOnly:   propSchema.ReadOnly,
			WriteOnly:  propSchema.WriteOnly,
			Validation: c.extractValidation(propSchema),
		}
		if propSchema.Default != nil {
			field.Default = coerceLiteral(fieldRef, propSchema.Default)
		}

		record.Fields = append(record.Fields, field)
	}

	node := &atr.Node{Kind: atr.NodeRecord, Record: record}
	c.register(node)
	return atr.Named(name), nil
}

// extractValidation collects the constraints StructConverter attaches to a
// field (§4.3.2): length/pattern for strings, range for numbers, size for
// arrays, plus format-derived annotations (email, uri).
func (c *Converter) extractValidation(s *registry.ResolvedSchema) atr.Validation {
	v := atr.Validation{
		MinLength: s.MinLength,
		MaxLength: s.MaxLength,
		Minimum:   s.Minimum,
		Maximum:   s.Maximum,
		ExclusiveMinimum: s.ExclusiveMinimum,
		ExclusiveMaximum: s.ExclusiveMaximum,
		MinItems:  s.MinItems,
		MaxItems:  s.MaxItems,
	}
	if s.Pattern != "" {
		v.Pattern = c.regexes.Intern(s.Pattern)
	}
	if s.Format == "email" || s.Format == "uri" {
		v.Format = s.Format
	}
	return v
}

// nameFor produces the nominal name for a schema being converted: the
// component name if it has one, otherwise a hoisted inline name derived
// from context, resolved through the TypeCache/NameRegistry for dedup
// (§4.3.6).
func (c *Converter) nameFor(s *registry.ResolvedSchema, ctx Context, suffix string) string {
	if s.Name != "" {
		return s.Name
	}
	fp := registry.Fingerprint(s)
	if name, ok := c.cache.Lookup(fp); ok {
		return name
	}
	base := inlineName(ctx.ParentName, ctx.FieldName, suffix)
	return c.cache.Register(fp, base)
}

type fieldError struct {
	schema string
	field  string
	err    error
}

func (e *fieldError) Error() string {
	return "while converting schema " + e.schema + ", field " + e.field + ": " + e.err.Error()
}

func (e *fieldError) Unwrap() error { return e.err }
