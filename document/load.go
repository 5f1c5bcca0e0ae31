package document

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// LoadDocument reads an OpenAPI 3.1 document from r, auto-detecting JSON
// versus YAML, and returns its syntactic (pre-resolution) form.
//
// github.com/goccy/go-yaml accepts JSON as a valid YAML subset, so a single
// decode path serves both formats: detection only decides how the document
// order of paths and webhooks is recovered (see extractKeyOrder), not which
// unmarshaller runs.
func LoadDocument(r io.Reader) (*RawDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var doc RawDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	if len(doc.Paths) == 0 && len(doc.Components.Schemas) == 0 {
		return nil, fmt.Errorf("parse document: no paths or component schemas found")
	}

	doc.SetOrder(extractKeyOrder(data, "paths"), extractKeyOrder(data, "webhooks"))

	return &doc, nil
}

// looksLikeJSON reports whether data's first non-whitespace byte opens a
// JSON object or array. It selects how key order is recovered and which
// decoder ValidateMetaSchema uses; LoadDocument's YAML decoder already
// accepts either format natively.
func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// ValidateMetaSchema validates raw document bytes against the official
// OpenAPI 3.1 JSON meta-schema before any attempt is made to unmarshal them
// into a [RawDocument]. Opt-in (see config.WithValidateMetaSchema): this is
// ambient pre-flight tooling, not a generator correctness feature, and a
// failure here is reported with the validator's own structured path rather
// than this package's looser decode-error text.
func ValidateMetaSchema(metaSchemaJSON, data []byte) error {
	compiler := jsonschema.NewCompiler()

	schemaDoc, err := jsonschema.UnmarshalJSON(bytes.NewReader(metaSchemaJSON))
	if err != nil {
		return fmt.Errorf("parse meta-schema: %w", err)
	}
	if err := compiler.AddResource("openapi-3.1-meta-schema.json", schemaDoc); err != nil {
		return fmt.Errorf("load meta-schema: %w", err)
	}
	schema, err := compiler.Compile("openapi-3.1-meta-schema.json")
	if err != nil {
		return fmt.Errorf("compile meta-schema: %w", err)
	}

	var instance any
	if looksLikeJSON(data) {
		instance, err = jsonschema.UnmarshalJSON(bytes.NewReader(data))
	} else {
		var generic any
		if yerr := yaml.Unmarshal(data, &generic); yerr != nil {
			return fmt.Errorf("parse document for validation: %w", yerr)
		}
		instance = generic
	}
	if err != nil {
		return fmt.Errorf("parse document for validation: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("document does not conform to the OpenAPI 3.1 meta-schema: %w", err)
	}
	return nil
}
