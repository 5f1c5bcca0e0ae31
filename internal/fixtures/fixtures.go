// Package fixtures embeds the end-to-end scenario documents used to
// exercise the full pipeline in tests, rather than building them as
// programmatically-constructed Go literals: a YAML fixture is far closer to
// what a real caller hands the loader, so scenario tests built on it
// exercise the loader package along with whichever stage is under test.
package fixtures

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/talav/openapi-codegen/document"
)

//go:embed testdata/*.yaml
var testdataFS embed.FS

// Scenario names one of the seven testable end-to-end scenarios.
type Scenario string

const (
	PetstoreBasic              Scenario = "petstore_basic"
	ForwardCompatibleEnum      Scenario = "forward_compatible_enum"
	NullableAnyOfNull          Scenario = "nullable_anyof_null"
	DiscriminatedUnionFallback Scenario = "discriminated_union_fallback"
	Cycle                      Scenario = "cycle"
	StructuralDedup            Scenario = "structural_dedup"
	OperationOrdering          Scenario = "operation_ordering"
)

// All lists every embedded scenario, in the order they appear in §8.
var All = []Scenario{
	PetstoreBasic,
	ForwardCompatibleEnum,
	NullableAnyOfNull,
	DiscriminatedUnionFallback,
	Cycle,
	StructuralDedup,
	OperationOrdering,
}

// Load reads and parses the named scenario's embedded document.
func Load(name Scenario) (*document.RawDocument, error) {
	data, err := testdataFS.ReadFile(fmt.Sprintf("testdata/%s.yaml", name))
	if err != nil {
		return nil, fmt.Errorf("load fixture %q: %w", name, err)
	}
	doc, err := document.LoadDocument(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse fixture %q: %w", name, err)
	}
	return doc, nil
}
