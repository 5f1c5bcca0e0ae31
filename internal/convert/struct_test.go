package convert

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talav/openapi-codegen/config"
	"github.com/talav/openapi-codegen/debug"
	"github.com/talav/openapi-codegen/internal/atr"
	"github.com/talav/openapi-codegen/internal/registry"
)

func TestConvertStruct_FieldOrderFollowsPropertyOrder(t *testing.T) {
	c, _ := newTestConverter(nil)
	s := &registry.ResolvedSchema{
		Name: "Pet",
		Type: "object",
		Properties: map[string]*registry.ResolvedSchema{
			"name": {Type: "string"},
			"age":  {Type: "integer"},
		},
		PropertyOrder: []string{"age", "name"},
		Required:      []string{"name"},
	}
	ref, err := c.Resolve(s, Context{ParentName: "Pet"})
	require.NoError(t, err)
	assert.Equal(t, "Pet", ref.Name)

	node := c.Nodes()[0]
	require.Equal(t, atr.NodeRecord, node.Kind)
	require.Len(t, node.Record.Fields, 2)
	assert.Equal(t, "Age", node.Record.Fields[0].Name)
	assert.Equal(t, "Name", node.Record.Fields[1].Name)
}

func TestConvertStruct_RequiredFieldIsNotWrappedOptional(t *testing.T) {
	c, _ := newTestConverter(nil)
	s := &registry.ResolvedSchema{
		Name:          "Pet",
		Type:          "object",
		Properties:    map[string]*registry.ResolvedSchema{"name": {Type: "string"}},
		PropertyOrder: []string{"name"},
		Required:      []string{"name"},
	}
	_, err := c.Resolve(s, Context{ParentName: "Pet"})
	require.NoError(t, err)

	field := c.Nodes()[0].Record.Fields[0]
	assert.True(t, field.Required)
	assert.NotEqual(t, atr.RefOptional, field.Type.Kind)
}

func TestConvertStruct_OptionalFieldIsWrappedOptional(t *testing.T) {
	c, _ := newTestConverter(nil)
	s := &registry.ResolvedSchema{
		Name:          "Pet",
		Type:          "object",
		Properties:    map[string]*registry.ResolvedSchema{"nickname": {Type: "string"}},
		PropertyOrder: []string{"nickname"},
	}
	_, err := c.Resolve(s, Context{ParentName: "Pet"})
	require.NoError(t, err)

	field := c.Nodes()[0].Record.Fields[0]
	assert.False(t, field.Required)
	assert.Equal(t, atr.RefOptional, field.Type.Kind)
}

func TestConvertStruct_ODataFieldDemotedToOptional(t *testing.T) {
	spec := &registry.ResolvedSpec{SchemasByName: map[string]*registry.ResolvedSchema{}, Cyclic: map[string]bool{}}
	var warnings debug.Warnings
	cfg := config.New(config.WithODataSupport(true))
	c := NewConverter(spec, cfg, &warnings)

	s := &registry.ResolvedSchema{
		Name: "Pet",
		Type: "object",
		Properties: map[string]*registry.ResolvedSchema{
			"@odata.type": {Type: "string"},
		},
		PropertyOrder: []string{"@odata.type"},
		Required:      []string{"@odata.type"},
	}
	_, err := c.Resolve(s, Context{ParentName: "Pet"})
	require.NoError(t, err)

	field := c.Nodes()[0].Record.Fields[0]
	assert.False(t, field.Required, "@odata.* fields are demoted to optional when ODataSupport is on")
}

func TestConvertStruct_CyclicFlagCarriedFromSpec(t *testing.T) {
	spec := &registry.ResolvedSpec{
		SchemasByName: map[string]*registry.ResolvedSchema{},
		Cyclic:        map[string]bool{"Pet": true},
	}
	c, _ := newTestConverter(spec)
	s := &registry.ResolvedSchema{Name: "Pet", Type: "object"}
	_, err := c.Resolve(s, Context{ParentName: "Pet"})
	require.NoError(t, err)
	assert.True(t, c.Nodes()[0].Record.Cyclic)
}

func TestConvertStruct_DefaultValueBecomesLiteral(t *testing.T) {
	c, _ := newTestConverter(nil)
	s := &registry.ResolvedSchema{
		Name: "Pet",
		Type: "object",
		Properties: map[string]*registry.ResolvedSchema{
			"age": {Type: "integer", Default: float64(3)},
		},
		PropertyOrder: []string{"age"},
	}
	_, err := c.Resolve(s, Context{ParentName: "Pet"})
	require.NoError(t, err)

	field := c.Nodes()[0].Record.Fields[0]
	require.NotNil(t, field.Default)
	assert.Equal(t, int64(3), field.Default.Value)
}

func TestExtractValidation_InternsPattern(t *testing.T) {
	c, _ := newTestConverter(nil)
	v := c.extractValidation(&registry.ResolvedSchema{Pattern: "^[a-z]+$"})
	assert.NotEmpty(t, v.Pattern)
	assert.Len(t, c.Regexes().Entries(), 1)
}

func TestExtractValidation_FormatAnnotationOnlyForEmailOrURI(t *testing.T) {
	c, _ := newTestConverter(nil)
	assert.Equal(t, "email", c.extractValidation(&registry.ResolvedSchema{Format: "email"}).Format)
	assert.Equal(t, "uri", c.extractValidation(&registry.ResolvedSchema{Format: "uri"}).Format)
	assert.Equal(t, "", c.extractValidation(&registry.ResolvedSchema{Format: "date-time"}).Format)
}

func TestFieldError_WrapsUnderlyingError(t *testing.T) {
	fe := &fieldError{schema: "Pet", field: "owner", err: errBoom}
	assert.Equal(t, "while converting schema Pet, field owner: boom", fe.Error())
	assert.Equal(t, errBoom, fe.Unwrap())
}

var errBoom = errors.New("boom")
