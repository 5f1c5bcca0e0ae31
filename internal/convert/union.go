package convert

import (
	"fmt"
	"strings"

	"github.com/talav/openapi-codegen/internal/atr"
	"github.com/talav/openapi-codegen/internal/registry"
)

// convertUnion implements UnionConverter (§4.3.5): a oneOf/anyOf member
// list is classified and dispatched to the matching construction strategy.
func (c *Converter) convertUnion(s *registry.ResolvedSchema, ctx Context) (*atr.TypeRef, error) {
	members := s.AnyOf
	if len(members) == 0 {
		members = s.OneOf
	}

	switch registry.ClassifyUnion(members, s.Discriminator) {
	case registry.UnionNullable:
		inner, err := c.Resolve(nonNullMember(members), ctx)
		if err != nil {
			return nil, err
		}
		return atr.Optional(inner), nil

	case registry.UnionDiscriminated:
		return c.convertDiscriminated(members, s.Discriminator, ctx)

	case registry.UnionClosedEnumLike:
		return c.convertClosedEnumLike(members, ctx)

	case registry.UnionRelaxedEnum:
		return c.convertRelaxedEnum(members, ctx)

	case registry.UnionTagged, registry.UnionUntagged:
		return c.convertTaggedUnion(members, ctx, s.Name != "")
	}

	return atr.PrimitiveRef(atr.PrimitiveAny), nil
}

// convertClosedEnumLike produces a value EnumType from an all-const-string
// member list (§4.3.5 ClosedEnumLike).
func (c *Converter) convertClosedEnumLike(members []*registry.ResolvedSchema, ctx Context) (*atr.TypeRef, error) {
	name := inlineName(ctx.ParentName, ctx.FieldName, "")
	enumType := &atr.EnumType{Name: name}
	for _, m := range members {
		v := m.Const
		if v == nil && len(m.Enum) == 1 {
			v = m.Enum[0]
		}
		enumType.Variants = append(enumType.Variants, atr.EnumVariant{
			Kind: atr.VariantUnit,
			Name: goIdentifier(fmt.Sprint(v)),
			Wire: v,
		})
	}
	c.register(&atr.Node{Kind: atr.NodeEnum, Enum: enumType})
	return atr.Named(name), nil
}

// convertDiscriminated produces a DiscriminatedUnionType (§4.3.5
// Discriminated): every member is lifted to a named RecordType if it is
// not already a $ref, the discriminator value for each variant is taken
// from an explicit mapping entry or inferred from the schema name (§9),
// and a fallback variant absorbs any value the mapping doesn't name.
func (c *Converter) convertDiscriminated(members []*registry.ResolvedSchema, disc *registry.Discriminator, ctx Context) (*atr.TypeRef, error) {
	name := inlineName(ctx.ParentName, ctx.FieldName, "")
	if ctx.FieldName == "" {
		name = ctx.ParentName
	}

	union := &atr.DiscriminatedUnionType{
		Name:              name,
		DiscriminatorName: disc.PropertyName,
		FallbackVariant:   "Unknown",
	}

	// Invert the mapping so each member schema name can look up its
	// discriminator value; members absent from the mapping fall back to
	// their own schema name (§9: explicit mapping wins, else infer by name).
	valueForSchema := map[string]string{}
	for value, schemaRef := range disc.Mapping {
		valueForSchema[lastSegment(schemaRef)] = value
	}

	for _, m := range members {
		ref, err := c.Resolve(m, Context{ParentName: name})
		if err != nil {
			return nil, err
		}
		value, ok := valueForSchema[m.Name]
		if !ok {
			value = m.Name
		}
		union.Variants = append(union.Variants, atr.UnionVariant{
			DiscriminatorValue: value,
			Type:               ref,
		})
	}

	c.register(&atr.Node{Kind: atr.NodeDiscriminatedUnion, DiscriminatedUnion: union})
	return atr.Named(name), nil
}

// convertTaggedUnion produces an enum-of-payloads for Tagged/Untagged
// union kinds (§4.3.5): each member becomes a payload variant, named by
// stripping any common lexical prefix from the member schema names.
func (c *Converter) convertTaggedUnion(members []*registry.ResolvedSchema, ctx Context, _ bool) (*atr.TypeRef, error) {
	name := inlineName(ctx.ParentName, ctx.FieldName, "")

	var memberNames []string
	for _, m := range members {
		n := m.Name
		if n == "" {
			n = inlineName(ctx.ParentName, ctx.FieldName, "Variant")
		}
		memberNames = append(memberNames, n)
	}
	prefix := commonPrefix(memberNames)

	enumType := &atr.EnumType{Name: name}
	for i, m := range members {
		ref, err := c.Resolve(m, Context{ParentName: name})
		if err != nil {
			return nil, err
		}
		variantName := strings.TrimPrefix(memberNames[i], prefix)
		if variantName == "" {
			variantName = fmt.Sprintf("Member%d", i)
		} else {
			variantName = goIdentifier(variantName)
		}
		enumType.Variants = append(enumType.Variants, atr.EnumVariant{
			Kind:    atr.VariantPayload,
			Name:    variantName,
			Payload: ref,
		})
	}

	c.register(&atr.Node{Kind: atr.NodeEnum, Enum: enumType})
	return atr.Named(name), nil
}

func lastSegment(ref string) string {
	parts := strings.Split(ref, "/")
	return parts[len(parts)-1]
}
