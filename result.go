package codegen

import "github.com/talav/openapi-codegen/debug"

// GenerateResult is the output of a single [Generator.Generate] call.
type GenerateResult struct {
	// Files maps a relative output path (e.g. "types.go", "client/client.go")
	// to its full generated source text.
	Files map[string]string

	// Warnings contains informational, non-fatal issues encountered while
	// generating. These are advisory only and do not indicate failure.
	Warnings debug.Warnings
}
