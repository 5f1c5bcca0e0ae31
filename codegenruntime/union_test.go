package codegenruntime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCat struct {
	Name string `json:"name"`
}

func TestMarshalDiscriminated_InjectsDiscriminatorIntoObject(t *testing.T) {
	data, err := MarshalDiscriminated(testCat{Name: "Tom"}, "kind", "cat")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "cat", got["kind"])
	assert.Equal(t, "Tom", got["name"])
}

func TestMarshalDiscriminated_OverridesExistingDiscriminatorField(t *testing.T) {
	type taggedCat struct {
		Kind string `json:"kind"`
		Name string `json:"name"`
	}
	data, err := MarshalDiscriminated(taggedCat{Kind: "stale", Name: "Tom"}, "kind", "cat")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "cat", got["kind"])
}

func TestDiscriminatorValue_ExtractsMatchingProperty(t *testing.T) {
	v, err := DiscriminatorValue([]byte(`{"kind":"dog","name":"Rex"}`), "kind")
	require.NoError(t, err)
	assert.Equal(t, "dog", v)
}

func TestDiscriminatorValue_MissingPropertyReturnsEmptyNoError(t *testing.T) {
	v, err := DiscriminatorValue([]byte(`{"name":"Rex"}`), "kind")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestDiscriminatorValue_MalformedJSONIsAnError(t *testing.T) {
	_, err := DiscriminatorValue([]byte(`not json`), "kind")
	assert.Error(t, err)
}
