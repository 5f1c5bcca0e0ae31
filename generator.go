// Package codegen drives the six-stage pipeline (§4) that turns a parsed
// OpenAPI 3.1 document into generated Go source text: schema resolution,
// operation extraction, schema conversion, operation conversion,
// postprocessing, and emission.
package codegen

import (
	"context"
	"sort"

	"github.com/talav/openapi-codegen/config"
	"github.com/talav/openapi-codegen/debug"
	"github.com/talav/openapi-codegen/document"
	"github.com/talav/openapi-codegen/internal/convert"
	"github.com/talav/openapi-codegen/internal/emit"
	"github.com/talav/openapi-codegen/internal/opconvert"
	"github.com/talav/openapi-codegen/internal/operation"
	"github.com/talav/openapi-codegen/internal/postprocess"
	"github.com/talav/openapi-codegen/internal/registry"
)

// Generator drives the pipeline for one set of [config.GeneratorConfig]
// options. It holds no mutable state of its own between calls: every
// Generate call builds a fresh stage-1..6 pipeline over the given document:
// a pure "functional core", never a stateful object threaded across calls.
type Generator struct {
	cfg config.GeneratorConfig
}

// Option configures a [Generator].
type Option = config.Option

// NewGenerator builds a Generator from [config.DefaultConfig] plus opts.
func NewGenerator(opts ...Option) *Generator {
	return &Generator{cfg: config.New(opts...)}
}

// Generate runs the full pipeline against an already-parsed document. ctx
// is accepted for API symmetry with the rest of the ecosystem; per the
// concurrency model (§5) the pipeline is single-threaded and CPU-bound, so
// it is only consulted for early cancellation, never blocked on.
func (g *Generator) Generate(ctx context.Context, doc *document.RawDocument) (*GenerateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(g.cfg.Only) > 0 && len(g.cfg.Exclude) > 0 {
		return nil, ErrOnlyAndExcludeBothSet
	}
	if len(doc.Paths) == 0 && len(doc.Components.Schemas) == 0 {
		return nil, ErrEmptyDocument
	}

	var warnings debug.Warnings

	reg := registry.New(doc, &warnings)
	spec, err := reg.Resolve()
	if err != nil {
		return nil, &ResolveError{SchemaPath: "#/components/schemas", Err: err}
	}

	ops, err := operation.Build(doc, operation.Filter{Only: g.cfg.Only, Exclude: g.cfg.Exclude})
	if err != nil {
		return nil, err
	}
	if (len(g.cfg.Only) > 0 || len(g.cfg.Exclude) > 0) && len(ops) == 0 {
		return nil, ErrNoOperations
	}

	conv := convert.NewConverter(spec, g.cfg, &warnings)

	roots := operationSchemaRoots(ops)
	reachable := registry.IsReachable(spec.Graph, roots)

	names := spec.SchemaNames
	if !g.cfg.AllSchemas {
		var filtered []string
		for _, n := range names {
			if reachable[n] {
				filtered = append(filtered, n)
			}
		}
		names = filtered
	} else {
		for _, n := range names {
			if !reachable[n] {
				warnings.Append(debug.NewWarning(debug.WarnUnreachableSchema,
					"#/components/schemas/"+n,
					"schema is unreachable from any selected operation; emitted only because all-schemas is set"))
			}
		}
	}

	for _, name := range names {
		if _, err := conv.ConvertNamed(name); err != nil {
			return nil, &ConversionError{SchemaPath: name, Err: err}
		}
	}

	opTypes, err := opconvert.New(reg, conv).Convert(ops)
	if err != nil {
		return nil, &ConversionError{SchemaPath: "operations", Err: err}
	}

	nodes, renamed := postprocess.Run(conv.Nodes(), g.cfg)
	applyOperationRename(opTypes, renamed)

	files := emit.Files(nodes, opTypes, conv.Regexes().Entries())

	return &GenerateResult{Files: files, Warnings: warnings}, nil
}

// operationSchemaRoots collects the component schema names directly
// referenced (by $ref) from any selected operation's parameters, request
// bodies, or responses — the root set for reachability analysis (§4.1
// is_reachable) that decides, absent --all-schemas, which component
// schemas actually need converting.
func operationSchemaRoots(ops []operation.Operation) []string {
	var roots []string
	add := func(s *document.RawSchema) {
		if s != nil && s.Ref != "" {
			roots = append(roots, refComponentName(s.Ref))
		}
	}
	for _, op := range ops {
		for _, p := range op.Parameters {
			add(p.Schema)
		}
		for _, b := range op.RequestBody {
			add(b.Schema)
		}
		for _, r := range op.Responses {
			add(r.Schema)
		}
	}
	sort.Strings(roots)
	return roots
}

func refComponentName(ref string) string {
	const prefix = "#/components/schemas/"
	if len(ref) > len(prefix) && ref[:len(prefix)] == prefix {
		return ref[len(prefix):]
	}
	return ref
}

// applyOperationRename rewrites any OperationTypes.ResponseTypeName that
// the postprocessor's response-enum dedup (§4.5.3) collapsed into a
// survivor under a different name.
func applyOperationRename(ops []opconvert.OperationTypes, renamed map[string]string) {
	if len(renamed) == 0 {
		return
	}
	for i := range ops {
		if to, ok := renamed[ops[i].ResponseTypeName]; ok {
			ops[i].ResponseTypeName = to
		}
	}
}
