package convert

import (
	"fmt"
	"strings"

	"github.com/talav/openapi-codegen/config"
	"github.com/talav/openapi-codegen/internal/atr"
	"github.com/talav/openapi-codegen/internal/registry"
)

// convertEnum implements EnumConverter (§4.3.4): a closed list of wire
// values becomes an EnumType, with variant merging/suffixing governed by
// the configured CasePolicy.
func (c *Converter) convertEnum(s *registry.ResolvedSchema, ctx Context) (*atr.TypeRef, error) {
	name := c.nameFor(s, ctx, "")

	enumType := &atr.EnumType{Name: name, CaseMode: int(c.cfg.EnumMode)}

	// byIdentifier tracks, in first-seen order, which canonical variant
	// owns a given sanitized identifier — the mechanism behind Merge mode's
	// first-seen-wins resolution (§9).
	byIdentifier := map[string]int{}

	for _, v := range s.Enum {
		wireValue := v
		ident := goIdentifier(fmt.Sprint(v))

		switch config.EnumMode(enumType.CaseMode) {
		case config.EnumModePreserve:
			ident = uniqueVariantName(enumType, ident)
			enumType.Variants = append(enumType.Variants, atr.EnumVariant{
				Kind: atr.VariantUnit,
				Name: ident,
				Wire: wireValue,
			})
		case config.EnumModeMerge, config.EnumModeRelaxed:
			if idx, ok := byIdentifier[ident]; ok {
				enumType.Variants[idx].Aliases = append(enumType.Variants[idx].Aliases, wireValue)
				continue
			}
			byIdentifier[ident] = len(enumType.Variants)
			enumType.Variants = append(enumType.Variants, atr.EnumVariant{
				Kind: atr.VariantUnit,
				Name: ident,
				Wire: wireValue,
			})
		}
	}

	node := &atr.Node{Kind: atr.NodeEnum, Enum: enumType}
	c.register(node)

	ref := atr.Named(name)
	if s.Nullable {
		return atr.Optional(ref), nil
	}
	return ref, nil
}

// convertRelaxedEnum builds an EnumType for a RelaxedEnum union kind (§4.3.5):
// closed string constants plus a catch-all Other(string) variant absorbing
// any value outside the closed set.
func (c *Converter) convertRelaxedEnum(members []*registry.ResolvedSchema, ctx Context) (*atr.TypeRef, error) {
	name := inlineName(ctx.ParentName, ctx.FieldName, "")

	enumType := &atr.EnumType{Name: name}
	seen := map[string]bool{}
	for _, m := range members {
		values := m.Enum
		if m.Const != nil {
			values = []any{m.Const}
		}
		for _, v := range values {
			ident := goIdentifier(fmt.Sprint(v))
			if seen[ident] {
				continue
			}
			seen[ident] = true
			enumType.Variants = append(enumType.Variants, atr.EnumVariant{Kind: atr.VariantUnit, Name: ident, Wire: v})
		}
	}
	enumType.Variants = append(enumType.Variants, atr.EnumVariant{
		Kind:    atr.VariantCatchAll,
		Name:    "Other",
		Payload: atr.PrimitiveRef(atr.PrimitiveString),
	})

	node := &atr.Node{Kind: atr.NodeEnum, Enum: enumType}
	c.register(node)
	return atr.Named(name), nil
}

func uniqueVariantName(e *atr.EnumType, ident string) string {
	taken := map[string]bool{}
	for _, v := range e.Variants {
		taken[v.Name] = true
	}
	if !taken[ident] {
		return ident
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s%d", ident, n)
		if !taken[candidate] {
			return candidate
		}
	}
}

func commonPrefix(names []string) string {
	if len(names) == 0 {
		return ""
	}
	prefix := names[0]
	for _, n := range names[1:] {
		for !strings.HasPrefix(n, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return ""
			}
		}
	}
	return prefix
}
