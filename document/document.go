// Package document defines the raw, syntactic OpenAPI 3.1 document IR: the
// "upstream spec loader" output that stage 1 (schema resolution) consumes.
// Nothing in this package resolves $ref, merges allOf, or otherwise
// normalizes a schema — it only decodes JSON/YAML bytes into Go values
// shaped like the document on the wire.
package document

import "sort"

// RawDocument is a syntactic, pre-resolution view of an OpenAPI 3.1
// document: paths, webhooks, and component schemas exactly as written,
// with $ref strings left untouched.
type RawDocument struct {
	Info       Info                 `yaml:"info"`
	Paths      map[string]*PathItem `yaml:"paths"`
	Webhooks   map[string]*PathItem `yaml:"webhooks"`
	Components Components           `yaml:"components"`

	// pathOrder/webhookOrder record the document-order key sequence of Paths
	// and Webhooks, since Go map iteration order is randomized and §4.2
	// requires operations to preserve document order. Populated by
	// [LoadDocument]; empty when a RawDocument is built directly (e.g. in
	// tests), in which case PathOrder/WebhookOrder fall back to sorted keys.
	pathOrder    []string
	webhookOrder []string
}

// SetOrder records the document-order key sequences for Paths and
// Webhooks. Called by [LoadDocument] after unmarshalling.
func (d *RawDocument) SetOrder(paths, webhooks []string) {
	d.pathOrder = paths
	d.webhookOrder = webhooks
}

// PathOrder returns the path template keys of d.Paths in document order,
// falling back to a lexicographic order if none was recorded.
func (d *RawDocument) PathOrder() []string {
	return resolveOrder(d.pathOrder, d.Paths)
}

// WebhookOrder returns the webhook keys of d.Webhooks in document order,
// falling back to a lexicographic order if none was recorded.
func (d *RawDocument) WebhookOrder() []string {
	return resolveOrder(d.webhookOrder, d.Webhooks)
}

// Info carries the document's title/version metadata, unused by the core
// pipeline but retained since a loader that silently dropped it would not
// be a faithful syntactic parse.
type Info struct {
	Title       string `yaml:"title"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

// Components holds the named, referenceable definitions of the document.
type Components struct {
	Schemas map[string]*RawSchema `yaml:"schemas"`
}

// PathItem groups the operations defined at one path template.
type PathItem struct {
	Get    *RawOperation `yaml:"get"`
	Put    *RawOperation `yaml:"put"`
	Post   *RawOperation `yaml:"post"`
	Delete *RawOperation `yaml:"delete"`
	Options *RawOperation `yaml:"options"`
	Head   *RawOperation `yaml:"head"`
	Patch  *RawOperation `yaml:"patch"`
	Trace  *RawOperation `yaml:"trace"`
}

// RawOperation is one HTTP operation's syntactic document entry.
type RawOperation struct {
	OperationID string                   `yaml:"operationId"`
	Summary     string                   `yaml:"summary"`
	Description string                   `yaml:"description"`
	Tags        []string                 `yaml:"tags"`
	Deprecated  bool                     `yaml:"deprecated"`
	Parameters  []*RawParameter          `yaml:"parameters"`
	RequestBody *RawRequestBody          `yaml:"requestBody"`
	Responses   map[string]*RawResponse  `yaml:"responses"`
	Security    []map[string][]string    `yaml:"security"`
}

// RawParameter is one path/query/header/cookie parameter declaration.
type RawParameter struct {
	Name     string     `yaml:"name"`
	In       string     `yaml:"in"` // "path", "query", "header", "cookie"
	Required bool       `yaml:"required"`
	Schema   *RawSchema `yaml:"schema"`
}

// RawRequestBody is a request body declaration keyed by media type.
type RawRequestBody struct {
	Required bool                       `yaml:"required"`
	Content  map[string]*RawMediaType   `yaml:"content"`
}

// RawResponse is a response declaration keyed by media type, for one
// status code (the map key in RawOperation.Responses).
type RawResponse struct {
	Description string                     `yaml:"description"`
	Content     map[string]*RawMediaType   `yaml:"content"`
}

// RawMediaType pairs a media type with its schema.
type RawMediaType struct {
	Schema *RawSchema `yaml:"schema"`
}

// RawSchema covers every JSON-Schema-shaped field an OpenAPI 3.1 document
// may declare, with $ref strings and composition lists left exactly as
// written: this package only decodes, it never resolves or merges.
type RawSchema struct {
	Ref  string `yaml:"$ref"`
	Type any    `yaml:"type"` // string, or []string for 3.1's ["T","null"] nullable form

	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Format      string `yaml:"format"`
	Deprecated  bool   `yaml:"deprecated"`
	ReadOnly    bool   `yaml:"readOnly"`
	WriteOnly   bool   `yaml:"writeOnly"`

	Pattern   string `yaml:"pattern"`
	MinLength *int   `yaml:"minLength"`
	MaxLength *int   `yaml:"maxLength"`

	Minimum          *float64 `yaml:"minimum"`
	Maximum          *float64 `yaml:"maximum"`
	ExclusiveMinimum any      `yaml:"exclusiveMinimum"` // bool (3.0) or number (3.1)
	ExclusiveMaximum any      `yaml:"exclusiveMaximum"`
	MultipleOf       *float64 `yaml:"multipleOf"`

	Items       *RawSchema `yaml:"items"`
	MinItems    *int       `yaml:"minItems"`
	MaxItems    *int       `yaml:"maxItems"`
	UniqueItems bool       `yaml:"uniqueItems"`

	Properties        map[string]*RawSchema `yaml:"properties"`
	Required          []string              `yaml:"required"`
	DependentRequired map[string][]string   `yaml:"dependentRequired"`

	AdditionalProperties any `yaml:"additionalProperties"` // bool or *RawSchema

	MinProperties *int `yaml:"minProperties"`
	MaxProperties *int `yaml:"maxProperties"`

	AllOf []*RawSchema `yaml:"allOf"`
	AnyOf []*RawSchema `yaml:"anyOf"`
	OneOf []*RawSchema `yaml:"oneOf"`
	Not   *RawSchema   `yaml:"not"`

	Enum    []any `yaml:"enum"`
	Const   any   `yaml:"const"`
	Default any   `yaml:"default"`

	Discriminator *RawDiscriminator `yaml:"discriminator"`

	Extensions map[string]any `yaml:",inline"`
}

// RawDiscriminator is the polymorphism hint attached to a oneOf/anyOf list.
type RawDiscriminator struct {
	PropertyName string            `yaml:"propertyName"`
	Mapping      map[string]string `yaml:"mapping"`
}

func resolveOrder(recorded []string, m map[string]*PathItem) []string {
	if len(recorded) > 0 {
		return recorded
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
