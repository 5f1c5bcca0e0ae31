package codegen

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talav/openapi-codegen/internal/fixtures"
)

// These tests drive the §8 scenario fixtures through the complete pipeline,
// end to end, rather than asserting on programmatically-built Go literals:
// each fixture is a YAML document an upstream caller could plausibly hand
// the loader.

func generateFixture(t *testing.T, name fixtures.Scenario) *GenerateResult {
	t.Helper()
	doc, err := fixtures.Load(name)
	require.NoError(t, err)

	gen := NewGenerator()
	result, err := gen.Generate(context.Background(), doc)
	require.NoError(t, err)
	return result
}

func TestScenario_PetstoreBasic(t *testing.T) {
	result := generateFixture(t, fixtures.PetstoreBasic)
	types := result.Files["types.go"]
	assert.Contains(t, types, "type Pet struct")
	assert.Contains(t, types, `Id int64 `+"`json:\"id\"`")
	assert.Contains(t, types, `Name string `+"`json:\"name\"`")
	assert.Contains(t, types, `Tag *string `+"`json:\"tag,omitempty\"`")
}

func TestScenario_ForwardCompatibleEnum(t *testing.T) {
	result := generateFixture(t, fixtures.ForwardCompatibleEnum)
	types := result.Files["types.go"]
	assert.Contains(t, types, "type Color struct")
	assert.Contains(t, types, `case "red":`)
	assert.Contains(t, types, "v.Other = &s", "an unrecognized wire value falls back to the catch-all variant")
}

func TestScenario_NullableAnyOfNull(t *testing.T) {
	result := generateFixture(t, fixtures.NullableAnyOfNull)
	types := result.Files["types.go"]
	assert.Contains(t, types, "type Owner struct")
	assert.Contains(t, types, "Pet *Pet", "anyOf [Pet, null] lowers to Optional<Pet>, not a new named type")
	assert.NotContains(t, types, "type PetOrNull")
}

func TestScenario_DiscriminatedUnionFallback(t *testing.T) {
	result := generateFixture(t, fixtures.DiscriminatedUnionFallback)
	types := result.Files["types.go"]
	assert.Contains(t, types, "type Pet struct")
	assert.Contains(t, types, `case "cat":`)
	assert.Contains(t, types, `case "dog":`)
	assert.Contains(t, types, "Unknown json.RawMessage", "an unmapped discriminator value falls back to Unknown")
}

func TestScenario_Cycle(t *testing.T) {
	result := generateFixture(t, fixtures.Cycle)
	types := result.Files["types.go"]
	assert.Contains(t, types, "type Node struct")
	assert.Contains(t, types, "Children *[]Node", "a repeated self-reference breaks the cycle through Array, needing no indirection")
	assert.Contains(t, types, "Child *Node", "a required direct self-reference needs Indirect, rendered as a Go pointer")
}

func TestScenario_StructuralDedup(t *testing.T) {
	result := generateFixture(t, fixtures.StructuralDedup)
	types := result.Files["types.go"]
	assert.Equal(t, 1, strings.Count(types, "struct {\n\tX string"),
		"two structurally identical inline objects must collapse to exactly one RecordType")
}

func TestScenario_OperationOrdering(t *testing.T) {
	result := generateFixture(t, fixtures.OperationOrdering)
	client := result.Files["client.go"]
	listIdx := strings.Index(client, "func (c *Client) ListPets(")
	createIdx := strings.Index(client, "func (c *Client) CreatePet(")
	deleteIdx := strings.Index(client, "func (c *Client) DeletePet(")
	require.True(t, listIdx >= 0 && createIdx >= 0 && deleteIdx >= 0)
	assert.True(t, listIdx < createIdx && createIdx < deleteIdx,
		"methods must appear in document order regardless of schema name sort")
}
