package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Fingerprint computes a canonical hash over a normalized schema: field
// order canonicalized, references replaced by their component name. Two
// schemas with the same fingerprint produce the same nominal type (§3.3).
//
// crypto/sha256 plus a deterministically key-sorted JSON encoding is the
// idiomatic stdlib combination for this; no example in the corpus hashes
// structural trees, so there is no third-party library to prefer over it
// (see DESIGN.md).
func Fingerprint(s *ResolvedSchema) string {
	h := sha256.New()
	encodeCanonical(h, s)
	return hex.EncodeToString(h.Sum(nil))
}

type canonicalSchema struct {
	Ref               string              `json:"ref,omitempty"`
	Type              string              `json:"type,omitempty"`
	Nullable          bool                `json:"nullable,omitempty"`
	Format            string              `json:"format,omitempty"`
	Pattern           string              `json:"pattern,omitempty"`
	MinLength         *int                `json:"minLength,omitempty"`
	MaxLength         *int                `json:"maxLength,omitempty"`
	Minimum           *float64            `json:"minimum,omitempty"`
	Maximum           *float64            `json:"maximum,omitempty"`
	MinItems          *int                `json:"minItems,omitempty"`
	MaxItems          *int                `json:"maxItems,omitempty"`
	UniqueItems       bool                `json:"uniqueItems,omitempty"`
	Items             *canonicalSchema    `json:"items,omitempty"`
	Properties        map[string]string   `json:"properties,omitempty"` // name -> nested fingerprint
	PropertyOrder     []string            `json:"propertyOrder,omitempty"`
	Required          []string            `json:"required,omitempty"`
	AdditionalAllowed *bool               `json:"additionalAllowed,omitempty"`
	AdditionalSchema  *canonicalSchema    `json:"additionalSchema,omitempty"`
	AnyOf             []string            `json:"anyOf,omitempty"`
	OneOf             []string            `json:"oneOf,omitempty"`
	Enum              []any               `json:"enum,omitempty"`
	Const             any                 `json:"const,omitempty"`
}

func encodeCanonical(h interface{ Write([]byte) (int, error) }, s *ResolvedSchema) {
	c := toCanonical(s)
	b, _ := json.Marshal(c)
	h.Write(b)
}

func toCanonical(s *ResolvedSchema) *canonicalSchema {
	if s == nil {
		return nil
	}
	c := &canonicalSchema{
		Ref:               s.Ref,
		Type:              s.Type,
		Nullable:          s.Nullable,
		Format:            s.Format,
		Pattern:           s.Pattern,
		MinLength:         s.MinLength,
		MaxLength:         s.MaxLength,
		Minimum:           s.Minimum,
		Maximum:           s.Maximum,
		MinItems:          s.MinItems,
		MaxItems:          s.MaxItems,
		UniqueItems:       s.UniqueItems,
		Items:             toCanonical(s.Items),
		Required:          append([]string(nil), s.Required...),
		AdditionalAllowed: s.AdditionalAllowed,
		AdditionalSchema:  toCanonical(s.AdditionalSchema),
		Enum:              s.Enum,
		Const:             s.Const,
	}
	sort.Strings(c.Required)

	if len(s.Properties) > 0 {
		c.Properties = map[string]string{}
		keys := make([]string, 0, len(s.Properties))
		for k := range s.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		c.PropertyOrder = keys
		for _, k := range keys {
			c.Properties[k] = Fingerprint(s.Properties[k])
		}
	}

	for _, m := range s.AnyOf {
		c.AnyOf = append(c.AnyOf, Fingerprint(m))
	}
	for _, m := range s.OneOf {
		c.OneOf = append(c.OneOf, Fingerprint(m))
	}

	return c
}
