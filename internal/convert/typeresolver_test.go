package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talav/openapi-codegen/config"
	"github.com/talav/openapi-codegen/debug"
	"github.com/talav/openapi-codegen/internal/atr"
	"github.com/talav/openapi-codegen/internal/registry"
)

func newTestConverter(spec *registry.ResolvedSpec) (*Converter, *debug.Warnings) {
	if spec == nil {
		spec = &registry.ResolvedSpec{SchemasByName: map[string]*registry.ResolvedSchema{}, Cyclic: map[string]bool{}}
	}
	var warnings debug.Warnings
	return NewConverter(spec, config.DefaultConfig(), &warnings), &warnings
}

func TestResolve_Rule1_NamedReference(t *testing.T) {
	c, _ := newTestConverter(nil)
	ref, err := c.Resolve(&registry.ResolvedSchema{Ref: "Pet"}, Context{})
	require.NoError(t, err)
	assert.Equal(t, atr.RefNamed, ref.Kind)
	assert.Equal(t, "Pet", ref.Name)
}

func TestResolve_Rule2_NullableUnion(t *testing.T) {
	c, _ := newTestConverter(nil)
	s := &registry.ResolvedSchema{
		AnyOf: []*registry.ResolvedSchema{
			{Type: "string"},
			{Type: "null"},
		},
	}
	ref, err := c.Resolve(s, Context{})
	require.NoError(t, err)
	assert.True(t, ref.IsOptional())
	assert.Equal(t, atr.PrimitiveString, ref.Elem.Primitive)
}

func TestResolve_Rule3_CycleBreaking(t *testing.T) {
	spec := &registry.ResolvedSpec{
		SchemasByName: map[string]*registry.ResolvedSchema{},
		Cyclic:        map[string]bool{"Node": true},
	}
	c, _ := newTestConverter(spec)
	s := &registry.ResolvedSchema{Name: "Node"}
	ref, err := c.Resolve(s, Context{ParentName: "Node", RequiredHere: true})
	require.NoError(t, err)
	assert.Equal(t, atr.RefIndirect, ref.Kind)
	assert.Equal(t, "Node", ref.Elem.Name)
}

func TestResolve_Rule3_NotAppliedWhenNotRequired(t *testing.T) {
	spec := &registry.ResolvedSpec{
		SchemasByName: map[string]*registry.ResolvedSchema{},
		Cyclic:        map[string]bool{"Node": true},
	}
	c, _ := newTestConverter(spec)
	s := &registry.ResolvedSchema{Name: "Node", Type: "object"}
	ref, err := c.Resolve(s, Context{ParentName: "Node", RequiredHere: false})
	require.NoError(t, err)
	assert.NotEqual(t, atr.RefIndirect, ref.Kind, "optional cyclic field is not wrapped in Indirect")
}

func TestResolve_Rule4_PrimitiveWithFormat(t *testing.T) {
	c, _ := newTestConverter(nil)
	ref, err := c.Resolve(&registry.ResolvedSchema{Type: "string", Format: "date-time"}, Context{})
	require.NoError(t, err)
	assert.Equal(t, atr.PrimitiveInstant, ref.Primitive)
}

func TestResolve_Rule4_HonorsCustomizeOverride(t *testing.T) {
	spec := &registry.ResolvedSpec{SchemasByName: map[string]*registry.ResolvedSchema{}, Cyclic: map[string]bool{}}
	var warnings debug.Warnings
	cfg := config.New(config.WithCustomize("date-time", "mypkg.Timestamp"))
	c := NewConverter(spec, cfg, &warnings)
	ref, err := c.Resolve(&registry.ResolvedSchema{Type: "string", Format: "date-time"}, Context{})
	require.NoError(t, err)
	assert.Equal(t, atr.RefNamed, ref.Kind)
	assert.Equal(t, "mypkg.Timestamp", ref.Name)
}

func TestResolve_Rule5_Array(t *testing.T) {
	c, _ := newTestConverter(nil)
	s := &registry.ResolvedSchema{Type: "array", Items: &registry.ResolvedSchema{Type: "string"}}
	ref, err := c.Resolve(s, Context{})
	require.NoError(t, err)
	assert.Equal(t, atr.RefArray, ref.Kind)
}

func TestResolve_Rule5_UniqueArrayBecomesSet(t *testing.T) {
	c, _ := newTestConverter(nil)
	s := &registry.ResolvedSchema{Type: "array", Items: &registry.ResolvedSchema{Type: "string"}, UniqueItems: true}
	ref, err := c.Resolve(s, Context{})
	require.NoError(t, err)
	assert.Equal(t, atr.RefUnique, ref.Kind)
}

func TestResolve_Rule6_MapOnlyObject(t *testing.T) {
	c, _ := newTestConverter(nil)
	allowed := true
	s := &registry.ResolvedSchema{Type: "object", AdditionalAllowed: &allowed}
	ref, err := c.Resolve(s, Context{})
	require.NoError(t, err)
	assert.Equal(t, atr.RefMap, ref.Kind)
	assert.Equal(t, atr.PrimitiveAny, ref.Elem.Primitive)
}

func TestResolve_Rule6_MapWithAdditionalSchema(t *testing.T) {
	c, _ := newTestConverter(nil)
	s := &registry.ResolvedSchema{Type: "object", AdditionalSchema: &registry.ResolvedSchema{Type: "integer"}}
	ref, err := c.Resolve(s, Context{})
	require.NoError(t, err)
	assert.Equal(t, atr.RefMap, ref.Kind)
	assert.Equal(t, atr.PrimitiveI64, ref.Elem.Primitive)
}

func TestResolve_Rule7_GeneralObjectBecomesStruct(t *testing.T) {
	c, _ := newTestConverter(nil)
	s := &registry.ResolvedSchema{
		Type: "object",
		Properties: map[string]*registry.ResolvedSchema{
			"name": {Type: "string"},
		},
		PropertyOrder: []string{"name"},
	}
	ref, err := c.Resolve(s, Context{ParentName: "Pet"})
	require.NoError(t, err)
	assert.Equal(t, atr.RefNamed, ref.Kind)
	require.Len(t, c.Nodes(), 1)
	assert.Equal(t, atr.NodeRecord, c.Nodes()[0].Kind)
}

func TestResolve_Rule8_StringEnum(t *testing.T) {
	c, _ := newTestConverter(nil)
	s := &registry.ResolvedSchema{Type: "string", Enum: []any{"a", "b"}}
	ref, err := c.Resolve(s, Context{ParentName: "Status"})
	require.NoError(t, err)
	assert.Equal(t, atr.RefNamed, ref.Kind)
	require.Len(t, c.Nodes(), 1)
	assert.Equal(t, atr.NodeEnum, c.Nodes()[0].Kind)
}

func TestResolve_Rule9_UnionFallsThroughToUnionConverter(t *testing.T) {
	c, _ := newTestConverter(nil)
	s := &registry.ResolvedSchema{
		OneOf: []*registry.ResolvedSchema{
			{Type: "string"},
			{Type: "integer"},
		},
	}
	_, err := c.Resolve(s, Context{ParentName: "Mixed"})
	require.NoError(t, err)
	require.Len(t, c.Nodes(), 1)
	assert.Equal(t, atr.NodeEnum, c.Nodes()[0].Kind, "untagged union of scalars resolves to an enum-of-payloads")
}

func TestResolve_Rule10_UnrepresentableShapeFallsBackToAny(t *testing.T) {
	c, warnings := newTestConverter(nil)
	s := &registry.ResolvedSchema{}
	ref, err := c.Resolve(s, Context{ParentName: "Weird", FieldName: "thing"})
	require.NoError(t, err)
	assert.Equal(t, atr.PrimitiveAny, ref.Primitive)
	assert.True(t, warnings.Has(debug.WarnUnrepresentableShape))
}

func TestResolvePrimitive_AllFormats(t *testing.T) {
	c, _ := newTestConverter(nil)
	tests := []struct {
		typ, format string
		want        atr.Primitive
	}{
		{"string", "", atr.PrimitiveString},
		{"string", "date", atr.PrimitiveDate},
		{"string", "time", atr.PrimitiveTime},
		{"string", "duration", atr.PrimitiveDuration},
		{"string", "uuid", atr.PrimitiveUUID},
		{"string", "binary", atr.PrimitiveBytes},
		{"string", "byte", atr.PrimitiveBytes},
		{"string", "email", atr.PrimitiveString},
		{"string", "uri", atr.PrimitiveString},
		{"integer", "", atr.PrimitiveI64},
		{"integer", "int32", atr.PrimitiveI32},
		{"number", "", atr.PrimitiveF64},
		{"boolean", "", atr.PrimitiveBool},
	}
	for _, tt := range tests {
		got := c.resolvePrimitive(&registry.ResolvedSchema{Type: tt.typ, Format: tt.format})
		assert.Equal(t, tt.want, got.Primitive, "%s/%s", tt.typ, tt.format)
	}
}

func TestResolvePrimitive_UnrecognizedFormatWarnsAndFallsBackToString(t *testing.T) {
	c, warnings := newTestConverter(nil)
	ref := c.resolvePrimitive(&registry.ResolvedSchema{Type: "string", Format: "exotic"})
	assert.Equal(t, atr.PrimitiveString, ref.Primitive)
	assert.True(t, warnings.Has(debug.WarnUnrecognizedFormat))
}

func TestConvertNamed_CachesAcrossCalls(t *testing.T) {
	spec := &registry.ResolvedSpec{
		SchemasByName: map[string]*registry.ResolvedSchema{
			"Pet": {Name: "Pet", Type: "object"},
		},
		Cyclic: map[string]bool{},
	}
	c, _ := newTestConverter(spec)

	ref1, err := c.ConvertNamed("Pet")
	require.NoError(t, err)
	ref2, err := c.ConvertNamed("Pet")
	require.NoError(t, err)
	assert.Equal(t, ref1, ref2)
	assert.Len(t, c.Nodes(), 1, "second call is a cache hit and registers no new node")
}

func TestConvertNamed_UnknownSchemaIsAnError(t *testing.T) {
	c, _ := newTestConverter(nil)
	_, err := c.ConvertNamed("Missing")
	assert.Error(t, err)
}

func TestMarkUsage_SeedsRootNamedNode(t *testing.T) {
	c, _ := newTestConverter(nil)
	node := &atr.Node{Kind: atr.NodeRecord, Record: &atr.RecordType{Name: "Pet"}}
	c.RegisterNode(node)

	ref := atr.Array(atr.Optional(atr.Named("Pet")))
	c.MarkUsage(ref, true, false)

	assert.True(t, node.Record.Usage.InRequestPosition)
	assert.False(t, node.Record.Usage.InResponsePosition)
}

func TestMarkUsage_NilRefIsNoop(t *testing.T) {
	c, _ := newTestConverter(nil)
	c.MarkUsage(nil, true, true) // must not panic
}

func TestMarkUsage_UnknownNameIsNoop(t *testing.T) {
	c, _ := newTestConverter(nil)
	c.MarkUsage(atr.Named("Ghost"), true, true) // must not panic
}
