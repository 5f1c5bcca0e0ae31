// Command openapi-codegen is the thin CLI surface documented as a contract
// in §6.1: flag parsing and file I/O only, calling straight into the
// library's codegen.Generator. No business logic lives here.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	codegen "github.com/talav/openapi-codegen"
	"github.com/talav/openapi-codegen/config"
	"github.com/talav/openapi-codegen/document"
	"github.com/talav/openapi-codegen/internal/operation"
)

const (
	exitUsage   = 1
	exitLoad    = 2
	exitConvert = 3
	exitEmit    = 4
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCodeFor(err)
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "openapi-codegen",
		Short:         "Generate idiomatic Go source from an OpenAPI 3.1 document",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newGenerateCmd(), newListCmd())
	return root
}

// usageError marks a failure the CLI itself detected before ever calling
// into the generator (bad flags, bad mode) — exit code 1 per §6.1.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }

var validModes = map[string]bool{
	"types":      true,
	"client":     true,
	"client-mod": true,
	"server-mod": true,
}

type generateFlags struct {
	input              string
	output             string
	visibility         string
	enumMode           string
	helpers            bool
	odata              bool
	customize          []string
	only               []string
	exclude            []string
	allSchemas         bool
	allHeaders         bool
	builders           bool
	validateMetaSchema bool
	metaSchemaFile     string
}

func (f *generateFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.input, "input", "", "path to the OpenAPI document (required)")
	fs.StringVar(&f.output, "output", "", "output file (types/client) or directory (client-mod/server-mod)")
	fs.StringVar(&f.visibility, "visibility", "public", "one of public, crate, file")
	fs.StringVar(&f.enumMode, "enum-mode", "merge", "one of merge, preserve, relaxed")
	fs.BoolVar(&f.helpers, "helpers", false, "emit enum helper constructors")
	fs.BoolVar(&f.odata, "odata", false, "enable @odata.* field-optionality override")
	fs.StringArrayVar(&f.customize, "customize", nil, "format=type-path override, repeatable")
	fs.StringArrayVar(&f.only, "only", nil, "restrict generation to these operation ids")
	fs.StringArrayVar(&f.exclude, "exclude", nil, "exclude these operation ids")
	fs.BoolVar(&f.allSchemas, "all-schemas", false, "emit schemas unreachable from any selected operation")
	fs.BoolVar(&f.allHeaders, "all-headers", false, "emit header constants for every component-level header")
	fs.BoolVar(&f.builders, "builders", false, "emit builder-style constructors for record types")
	fs.BoolVar(&f.validateMetaSchema, "validate-meta-schema", false, "validate the input document against an OpenAPI 3.1 meta-schema before parsing")
	fs.StringVar(&f.metaSchemaFile, "meta-schema-file", "", "path to the meta-schema JSON used by --validate-meta-schema (required when that flag is set)")
}

func (f *generateFlags) toOptions() ([]config.Option, error) {
	opts := []config.Option{
		config.WithInput(f.input),
		config.WithOutput(f.output),
		config.WithHelpers(f.helpers),
		config.WithODataSupport(f.odata),
		config.WithOnly(f.only...),
		config.WithExclude(f.exclude...),
		config.WithAllSchemas(f.allSchemas),
		config.WithAllHeaders(f.allHeaders),
		config.WithBuilders(f.builders),
		config.WithValidateMetaSchema(f.validateMetaSchema),
	}

	switch strings.ToLower(f.visibility) {
	case "", "public":
		opts = append(opts, config.WithVisibility(config.VisibilityPublic))
	case "crate":
		opts = append(opts, config.WithVisibility(config.VisibilityCrate))
	case "file":
		opts = append(opts, config.WithVisibility(config.VisibilityFile))
	default:
		return nil, fmt.Errorf("unknown --visibility %q", f.visibility)
	}

	switch strings.ToLower(f.enumMode) {
	case "", "merge":
		opts = append(opts, config.WithEnumMode(config.EnumModeMerge))
	case "preserve":
		opts = append(opts, config.WithEnumMode(config.EnumModePreserve))
	case "relaxed":
		opts = append(opts, config.WithEnumMode(config.EnumModeRelaxed))
	default:
		return nil, fmt.Errorf("unknown --enum-mode %q", f.enumMode)
	}

	for _, kv := range f.customize {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--customize expects format=type, got %q", kv)
		}
		opts = append(opts, config.WithCustomize(key, value))
	}

	return opts, nil
}

func newGenerateCmd() *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate <mode>",
		Short: "Generate types, a client, or a server from an OpenAPI document",
		Long:  "mode is one of: types, client, client-mod, server-mod.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runGenerate(args[0], &f)
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func runGenerate(mode string, f *generateFlags) error {
	if !validModes[mode] {
		return usageError{fmt.Errorf("unknown mode %q (want one of types, client, client-mod, server-mod)", mode)}
	}
	if f.input == "" {
		return usageError{errors.New("--input is required")}
	}

	if f.validateMetaSchema && f.metaSchemaFile == "" {
		return usageError{errors.New("--meta-schema-file is required when --validate-meta-schema is set")}
	}

	opts, err := f.toOptions()
	if err != nil {
		return usageError{err}
	}

	metaSchemaFile := ""
	if f.validateMetaSchema {
		metaSchemaFile = f.metaSchemaFile
	}
	doc, err := loadDocument(f.input, metaSchemaFile)
	if err != nil {
		return err
	}

	gen := codegen.NewGenerator(opts...)
	result, err := gen.Generate(context.Background(), doc)
	if err != nil {
		return err
	}

	if err := writeFiles(mode, f.output, selectFiles(mode, result.Files)); err != nil {
		return &codegen.EmitError{NodeDump: mode, Err: err}
	}

	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, w.String())
	}
	return nil
}

// loadDocument reads path and, when metaSchemaFile is non-empty, validates
// the raw bytes against it before attempting to parse them (§6.1
// --validate-meta-schema / --meta-schema-file).
func loadDocument(path, metaSchemaFile string) (*document.RawDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &codegen.LoadError{Path: path, Err: err}
	}

	if metaSchemaFile != "" {
		metaSchema, err := os.ReadFile(metaSchemaFile)
		if err != nil {
			return nil, &codegen.LoadError{Path: metaSchemaFile, Err: err}
		}
		if err := document.ValidateMetaSchema(metaSchema, raw); err != nil {
			return nil, &codegen.LoadError{Path: path, Err: err}
		}
	}

	doc, err := document.LoadDocument(strings.NewReader(string(raw)))
	if err != nil {
		return nil, &codegen.LoadError{Path: path, Err: err}
	}
	return doc, nil
}

// selectFiles projects the full generated file set down to what mode asks
// for: a types-only build skips the client/server surface entirely.
func selectFiles(mode string, files map[string]string) map[string]string {
	out := map[string]string{"types.go": files["types.go"]}
	switch mode {
	case "client", "client-mod":
		if c, ok := files["client.go"]; ok {
			out["client.go"] = c
		}
	case "server-mod":
		if s, ok := files["server.go"]; ok {
			out["server.go"] = s
		}
	}
	return out
}

// writeFiles renders single-file modes (types, client) as one concatenated
// file at output (or stdout, if output is empty) and directory modes
// (client-mod, server-mod) as one file per entry under output.
func writeFiles(mode, output string, files map[string]string) error {
	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)

	if strings.HasSuffix(mode, "-mod") {
		if output == "" {
			return fmt.Errorf("--output directory is required for mode %q", mode)
		}
		if err := os.MkdirAll(output, 0o755); err != nil {
			return err
		}
		for _, n := range names {
			if err := os.WriteFile(filepath.Join(output, n), []byte(files[n]), 0o644); err != nil {
				return err
			}
		}
		return nil
	}

	var b strings.Builder
	for _, n := range names {
		b.WriteString(files[n])
		b.WriteString("\n")
	}
	if output == "" {
		_, err := fmt.Fprint(os.Stdout, b.String())
		return err
	}
	return os.WriteFile(output, []byte(b.String()), 0o644)
}

func newListCmd() *cobra.Command {
	list := &cobra.Command{
		Use:   "list",
		Short: "List introspectable facts about the input document",
	}

	var input, metaSchemaFile string
	var validateMetaSchema bool
	operations := &cobra.Command{
		Use:   "operations",
		Short: "List every operation id, in document order",
		RunE: func(_ *cobra.Command, _ []string) error {
			if validateMetaSchema && metaSchemaFile == "" {
				return usageError{errors.New("--meta-schema-file is required when --validate-meta-schema is set")}
			}
			if !validateMetaSchema {
				metaSchemaFile = ""
			}
			return runListOperations(input, metaSchemaFile)
		},
	}
	operations.Flags().StringVar(&input, "input", "", "path to the OpenAPI document (required)")
	operations.Flags().BoolVar(&validateMetaSchema, "validate-meta-schema", false, "validate the input document against an OpenAPI 3.1 meta-schema before parsing")
	operations.Flags().StringVar(&metaSchemaFile, "meta-schema-file", "", "path to the meta-schema JSON used by --validate-meta-schema")
	list.AddCommand(operations)
	return list
}

func runListOperations(input, metaSchemaFile string) error {
	if input == "" {
		return usageError{errors.New("--input is required")}
	}
	doc, err := loadDocument(input, metaSchemaFile)
	if err != nil {
		return err
	}
	ops, err := operation.Build(doc, operation.Filter{})
	if err != nil {
		return &codegen.ConversionError{SchemaPath: "operations", Err: err}
	}
	for _, op := range ops {
		fmt.Println(op.ID)
	}
	return nil
}

func exitCodeFor(err error) int {
	var usageErr usageError
	var loadErr *codegen.LoadError
	var emitErr *codegen.EmitError
	var resolveErr *codegen.ResolveError
	var convErr *codegen.ConversionError
	var nameErr *codegen.NameCollisionError

	switch {
	case errors.As(err, &usageErr):
		return exitUsage
	case errors.Is(err, codegen.ErrOnlyAndExcludeBothSet), errors.Is(err, codegen.ErrNoOperations):
		return exitUsage
	case errors.As(err, &loadErr):
		return exitLoad
	case errors.As(err, &emitErr):
		return exitEmit
	case errors.As(err, &resolveErr), errors.As(err, &convErr), errors.As(err, &nameErr):
		return exitConvert
	default:
		return exitUsage
	}
}
