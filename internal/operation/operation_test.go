package operation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talav/openapi-codegen/document"
)

func petSchema() *document.RawSchema {
	return &document.RawSchema{Ref: "#/components/schemas/Pet"}
}

func docWithTwoPaths() *document.RawDocument {
	doc := &document.RawDocument{
		Paths: map[string]*document.PathItem{
			"/pets": {
				Get: &document.RawOperation{
					OperationID: "listPets",
					Parameters: []*document.RawParameter{
						{Name: "limit", In: "query", Schema: petSchema()},
						{Name: "X-Request-Id", In: "header", Schema: petSchema()},
						{Name: "petId", In: "path", Required: true, Schema: petSchema()},
					},
				},
				Post: &document.RawOperation{
					OperationID: "createPet",
					RequestBody: &document.RawRequestBody{
						Required: true,
						Content: map[string]*document.RawMediaType{
							"application/json": {Schema: petSchema()},
						},
					},
					Responses: map[string]*document.RawResponse{
						"201": {Content: map[string]*document.RawMediaType{
							"application/json": {Schema: petSchema()},
						}},
						"204": {},
					},
				},
			},
			"/pets/{petId}": {
				Delete: &document.RawOperation{},
			},
		},
	}
	doc.SetOrder([]string{"/pets", "/pets/{petId}"}, nil)
	return doc
}

func TestBuild_DocumentOrderAndMethodOrder(t *testing.T) {
	ops, err := Build(docWithTwoPaths(), Filter{})
	require.NoError(t, err)
	require.Len(t, ops, 3)

	assert.Equal(t, "listPets", ops[0].ID)
	assert.Equal(t, "GET", ops[0].Method)
	assert.Equal(t, "createPet", ops[1].ID)
	assert.Equal(t, "POST", ops[1].Method)
	assert.Equal(t, "delete_pets_petId", ops[2].ID)
	assert.Equal(t, "DELETE", ops[2].Method)
}

func TestBuild_ParametersOrderedByLocation(t *testing.T) {
	ops, err := Build(docWithTwoPaths(), Filter{})
	require.NoError(t, err)

	params := ops[0].Parameters
	require.Len(t, params, 3)
	assert.Equal(t, LocationPath, params[0].Location)
	assert.Equal(t, "petId", params[0].Name)
	assert.Equal(t, LocationQuery, params[1].Location)
	assert.Equal(t, "limit", params[1].Name)
	assert.Equal(t, LocationHeader, params[2].Location)
	assert.Equal(t, "X-Request-Id", params[2].Name)
}

func TestBuild_RequestBodyAndResponsesSortedByKey(t *testing.T) {
	ops, err := Build(docWithTwoPaths(), Filter{})
	require.NoError(t, err)

	create := ops[1]
	require.Len(t, create.RequestBody, 1)
	assert.Equal(t, "application/json", create.RequestBody[0].MediaType)

	require.Len(t, create.Responses, 2)
	assert.Equal(t, "201", create.Responses[0].Status)
	assert.Equal(t, "application/json", create.Responses[0].MediaType)
	assert.Equal(t, "204", create.Responses[1].Status)
	assert.Empty(t, create.Responses[1].MediaType, "a contentless response still gets one ResponseContent entry with no schema")
}

func TestBuild_SynthesizesOperationIDWhenAbsent(t *testing.T) {
	ops, err := Build(docWithTwoPaths(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, "delete_pets_petId", ops[2].ID)
}

func TestBuild_OnlyFilter(t *testing.T) {
	ops, err := Build(docWithTwoPaths(), Filter{Only: []string{"createPet"}})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "createPet", ops[0].ID)
}

func TestBuild_ExcludeFilter(t *testing.T) {
	ops, err := Build(docWithTwoPaths(), Filter{Exclude: []string{"createPet"}})
	require.NoError(t, err)
	for _, op := range ops {
		assert.NotEqual(t, "createPet", op.ID)
	}
	assert.Len(t, ops, 2)
}

func TestBuild_OnlyAndExcludeBothSetIsAnError(t *testing.T) {
	_, err := Build(docWithTwoPaths(), Filter{Only: []string{"a"}, Exclude: []string{"b"}})
	assert.Error(t, err)
}

func TestBuild_WebhooksAppendedAfterPathsAndMarked(t *testing.T) {
	doc := docWithTwoPaths()
	doc.Webhooks = map[string]*document.PathItem{
		"petAdopted": {Post: &document.RawOperation{OperationID: "onPetAdopted"}},
	}
	doc.SetOrder([]string{"/pets", "/pets/{petId}"}, []string{"petAdopted"})

	ops, err := Build(doc, Filter{})
	require.NoError(t, err)
	require.Len(t, ops, 4)
	last := ops[3]
	assert.Equal(t, "onPetAdopted", last.ID)
	assert.True(t, last.IsWebhook)
	for _, op := range ops[:3] {
		assert.False(t, op.IsWebhook)
	}
}

func TestBuild_UnrecognizedParameterLocationIsSkipped(t *testing.T) {
	doc := &document.RawDocument{
		Paths: map[string]*document.PathItem{
			"/x": {Get: &document.RawOperation{
				OperationID: "op",
				Parameters: []*document.RawParameter{
					{Name: "weird", In: "body", Schema: petSchema()},
				},
			}},
		},
	}
	doc.SetOrder([]string{"/x"}, nil)

	ops, err := Build(doc, Filter{})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Empty(t, ops[0].Parameters)
}
