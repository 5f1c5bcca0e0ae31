package codegen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talav/openapi-codegen/config"
	"github.com/talav/openapi-codegen/debug"
	"github.com/talav/openapi-codegen/document"
	"github.com/talav/openapi-codegen/internal/operation"
)

func petStoreDoc() *document.RawDocument {
	return &document.RawDocument{
		Components: document.Components{
			Schemas: map[string]*document.RawSchema{
				"Pet": {
					Type: "object",
					Properties: map[string]*document.RawSchema{
						"name": {Type: "string"},
						"id":   {Type: "string", Format: "uuid"},
					},
					Required: []string{"name"},
				},
				"Orphan": {Type: "object", Properties: map[string]*document.RawSchema{
					"note": {Type: "string"},
				}},
			},
		},
		Paths: map[string]*document.PathItem{
			"/pets/{petId}": {
				Get: &document.RawOperation{
					OperationID: "getPet",
					Parameters: []*document.RawParameter{
						{Name: "petId", In: "path", Required: true, Schema: &document.RawSchema{Type: "string"}},
					},
					Responses: map[string]*document.RawResponse{
						"200": {Content: map[string]*document.RawMediaType{
							"application/json": {Schema: &document.RawSchema{Ref: "#/components/schemas/Pet"}},
						}},
					},
				},
			},
		},
	}
}

func TestGenerate_EndToEndProducesTypesClientServer(t *testing.T) {
	gen := NewGenerator()
	result, err := gen.Generate(context.Background(), petStoreDoc())
	require.NoError(t, err)

	assert.Contains(t, result.Files, "types.go")
	assert.Contains(t, result.Files, "client.go")
	assert.Contains(t, result.Files, "server.go")
	assert.Contains(t, result.Files["types.go"], "type Pet struct")
	assert.Contains(t, result.Files["client.go"], "func (c *Client) GetPet(")
}

func TestGenerate_UnreachableSchemaExcludedByDefault(t *testing.T) {
	gen := NewGenerator()
	result, err := gen.Generate(context.Background(), petStoreDoc())
	require.NoError(t, err)
	assert.NotContains(t, result.Files["types.go"], "type Orphan struct")
}

func TestGenerate_AllSchemasIncludesUnreachableAndWarns(t *testing.T) {
	gen := NewGenerator(config.WithAllSchemas(true))
	result, err := gen.Generate(context.Background(), petStoreDoc())
	require.NoError(t, err)
	assert.Contains(t, result.Files["types.go"], "type Orphan struct")
	assert.True(t, result.Warnings.Has(debug.WarnUnreachableSchema))
}

func TestGenerate_EmptyDocumentIsAnError(t *testing.T) {
	gen := NewGenerator()
	_, err := gen.Generate(context.Background(), &document.RawDocument{})
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestGenerate_OnlyAndExcludeBothSetIsAnError(t *testing.T) {
	gen := NewGenerator(config.WithOnly("getPet"), config.WithExclude("getPet"))
	_, err := gen.Generate(context.Background(), petStoreDoc())
	assert.ErrorIs(t, err, ErrOnlyAndExcludeBothSet)
}

func TestGenerate_OnlyFilterSelectingNothingIsAnError(t *testing.T) {
	gen := NewGenerator(config.WithOnly("doesNotExist"))
	_, err := gen.Generate(context.Background(), petStoreDoc())
	assert.ErrorIs(t, err, ErrNoOperations)
}

func TestGenerate_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := NewGenerator()
	_, err := gen.Generate(ctx, petStoreDoc())
	assert.Error(t, err)
}

func TestGenerate_SchemaOnlyDocumentWithNoOperationsStillGeneratesTypes(t *testing.T) {
	doc := &document.RawDocument{
		Components: document.Components{
			Schemas: map[string]*document.RawSchema{
				"Pet": {Type: "object", Properties: map[string]*document.RawSchema{"name": {Type: "string"}}},
			},
		},
	}
	gen := NewGenerator(config.WithAllSchemas(true))
	result, err := gen.Generate(context.Background(), doc)
	require.NoError(t, err)
	assert.Contains(t, result.Files, "types.go")
	assert.NotContains(t, result.Files, "client.go")
}

func TestOperationSchemaRoots_CollectsRefsFromParamsBodyAndResponses(t *testing.T) {
	doc := petStoreDoc()
	ops, err := operation.Build(doc, operation.Filter{})
	require.NoError(t, err)
	roots := operationSchemaRoots(ops)
	assert.Contains(t, roots, "Pet")
}

func TestRefComponentName_StripsPrefix(t *testing.T) {
	assert.Equal(t, "Pet", refComponentName("#/components/schemas/Pet"))
	assert.Equal(t, "Pet", refComponentName("Pet"))
}
