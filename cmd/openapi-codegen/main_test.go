package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	codegen "github.com/talav/openapi-codegen"
	"github.com/talav/openapi-codegen/config"
)

func TestGenerateFlags_ToOptions_DefaultsToPublicAndMerge(t *testing.T) {
	f := &generateFlags{input: "spec.json"}
	opts, err := f.toOptions()
	require.NoError(t, err)
	c := config.New(opts...)
	assert.Equal(t, config.VisibilityPublic, c.Visibility)
	assert.Equal(t, config.EnumModeMerge, c.EnumMode)
}

func TestGenerateFlags_ToOptions_RejectsUnknownVisibility(t *testing.T) {
	f := &generateFlags{visibility: "bogus"}
	_, err := f.toOptions()
	assert.ErrorContains(t, err, "unknown --visibility")
}

func TestGenerateFlags_ToOptions_RejectsUnknownEnumMode(t *testing.T) {
	f := &generateFlags{enumMode: "bogus"}
	_, err := f.toOptions()
	assert.ErrorContains(t, err, "unknown --enum-mode")
}

func TestGenerateFlags_ToOptions_RejectsMalformedCustomize(t *testing.T) {
	f := &generateFlags{customize: []string{"no-equals-sign"}}
	_, err := f.toOptions()
	assert.ErrorContains(t, err, "--customize expects format=type")
}

func TestGenerateFlags_ToOptions_ParsesCustomizeKeyValue(t *testing.T) {
	f := &generateFlags{customize: []string{"uuid=github.com/google/uuid.UUID"}}
	opts, err := f.toOptions()
	require.NoError(t, err)
	assert.NotEmpty(t, opts)
}

func TestRunGenerate_RejectsUnknownMode(t *testing.T) {
	err := runGenerate("bogus", &generateFlags{input: "spec.json"})
	var usageErr usageError
	assert.True(t, errors.As(err, &usageErr))
}

func TestRunGenerate_RequiresInput(t *testing.T) {
	err := runGenerate("types", &generateFlags{})
	var usageErr usageError
	assert.True(t, errors.As(err, &usageErr))
}

func TestRunGenerate_RequiresMetaSchemaFileWhenValidateMetaSchemaSet(t *testing.T) {
	err := runGenerate("types", &generateFlags{input: "spec.json", validateMetaSchema: true})
	var usageErr usageError
	assert.True(t, errors.As(err, &usageErr))
}

func TestLoadDocument_MissingFileIsLoadError(t *testing.T) {
	_, err := loadDocument(filepath.Join(t.TempDir(), "missing.json"), "")
	var loadErr *codegen.LoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestLoadDocument_ParsesValidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"openapi":"3.1.0","info":{"title":"t","version":"1"},"paths":{"/pets":{"get":{"operationId":"listPets"}}}}`), 0o644))

	doc, err := loadDocument(path, "")
	require.NoError(t, err)
	assert.NotNil(t, doc)
}

func TestLoadDocument_MalformedJSONIsLoadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))

	_, err := loadDocument(path, "")
	var loadErr *codegen.LoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestSelectFiles_TypesModeKeepsOnlyTypes(t *testing.T) {
	files := map[string]string{"types.go": "types", "client.go": "client", "server.go": "server"}
	out := selectFiles("types", files)
	assert.Contains(t, out, "types.go")
	assert.NotContains(t, out, "client.go")
	assert.NotContains(t, out, "server.go")
}

func TestSelectFiles_ClientModeKeepsTypesAndClient(t *testing.T) {
	files := map[string]string{"types.go": "types", "client.go": "client", "server.go": "server"}
	out := selectFiles("client-mod", files)
	assert.Contains(t, out, "types.go")
	assert.Contains(t, out, "client.go")
	assert.NotContains(t, out, "server.go")
}

func TestSelectFiles_ServerModeKeepsTypesAndServer(t *testing.T) {
	files := map[string]string{"types.go": "types", "client.go": "client", "server.go": "server"}
	out := selectFiles("server-mod", files)
	assert.Contains(t, out, "types.go")
	assert.Contains(t, out, "server.go")
	assert.NotContains(t, out, "client.go")
}

func TestWriteFiles_ModSuffixRequiresOutputDir(t *testing.T) {
	err := writeFiles("client-mod", "", map[string]string{"types.go": "x"})
	assert.ErrorContains(t, err, "--output directory is required")
}

func TestWriteFiles_ModSuffixWritesOneFilePerEntry(t *testing.T) {
	dir := t.TempDir()
	err := writeFiles("server-mod", dir, map[string]string{"types.go": "package x", "server.go": "package x"})
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dir, "types.go"))
	require.NoError(t, err)
	assert.Equal(t, "package x", string(got))
}

func TestWriteFiles_SingleFileModeConcatenatesInNameOrder(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.go")
	err := writeFiles("types", out, map[string]string{"b.go": "second", "a.go": "first"})
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(got))
}

func TestExitCodeFor_UsageError(t *testing.T) {
	assert.Equal(t, exitUsage, exitCodeFor(usageError{errors.New("bad flag")}))
}

func TestExitCodeFor_OnlyAndExcludeBothSet(t *testing.T) {
	assert.Equal(t, exitUsage, exitCodeFor(codegen.ErrOnlyAndExcludeBothSet))
}

func TestExitCodeFor_LoadError(t *testing.T) {
	assert.Equal(t, exitLoad, exitCodeFor(&codegen.LoadError{Path: "x", Err: errors.New("boom")}))
}

func TestExitCodeFor_EmitError(t *testing.T) {
	assert.Equal(t, exitEmit, exitCodeFor(&codegen.EmitError{NodeDump: "x", Err: errors.New("boom")}))
}

func TestExitCodeFor_ConversionError(t *testing.T) {
	assert.Equal(t, exitConvert, exitCodeFor(&codegen.ConversionError{SchemaPath: "x", Err: errors.New("boom")}))
}

func TestExitCodeFor_UnknownErrorDefaultsToUsage(t *testing.T) {
	assert.Equal(t, exitUsage, exitCodeFor(errors.New("unrecognized")))
}

func TestNewRootCmd_RegistersGenerateAndListCommands(t *testing.T) {
	root := newRootCmd()
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["generate"])
	assert.True(t, names["list"])
}
