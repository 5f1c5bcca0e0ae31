// Package emit implements stage 6: rendering the finalized ATR set into Go
// source text. Each output file (types, client, server) is produced as one
// deterministic string; nothing downstream of this package reasons about
// ATR shapes.
package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/talav/openapi-codegen/internal/atr"
	"github.com/talav/openapi-codegen/internal/convert"
	"github.com/talav/openapi-codegen/internal/opconvert"
)

// Files renders the complete generated module: one "types.go" covering
// every nominal ATR type, and — when ops is non-empty — a "client.go" and
// "server.go" covering the client/server surface. Keyed by file name, ready
// to hand back as [codegen.GenerateResult.Files].
func Files(nodes []*atr.Node, ops []opconvert.OperationTypes, regexes []convert.RegexEntry) map[string]string {
	sorted := append([]*atr.Node(nil), nodes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })

	files := map[string]string{
		"types.go": typesFile(sorted, regexes),
	}
	if len(ops) > 0 {
		files["client.go"] = clientFile(ops)
		files["server.go"] = serverFile(ops)
	}
	return files
}

// goType renders a TypeRef as Go type syntax.
func goType(ref *atr.TypeRef) string {
	if ref == nil {
		return "any"
	}
	switch ref.Kind {
	case atr.RefNamed:
		return ref.Name
	case atr.RefPrimitive:
		return primitiveGoType(ref.Primitive)
	case atr.RefOptional, atr.RefIndirect:
		return "*" + goType(ref.Elem)
	case atr.RefArray, atr.RefUnique:
		return "[]" + goType(ref.Elem)
	case atr.RefMap:
		return "map[string]" + goType(ref.Elem)
	default:
		return "any"
	}
}

func primitiveGoType(p atr.Primitive) string {
	switch p {
	case atr.PrimitiveString:
		return "string"
	case atr.PrimitiveI32:
		return "int32"
	case atr.PrimitiveI64:
		return "int64"
	case atr.PrimitiveF64:
		return "float64"
	case atr.PrimitiveBool:
		return "bool"
	case atr.PrimitiveBytes:
		return "[]byte"
	case atr.PrimitiveInstant:
		return "time.Time"
	case atr.PrimitiveDate:
		return "codegenruntime.Date"
	case atr.PrimitiveTime:
		return "codegenruntime.TimeOfDay"
	case atr.PrimitiveDuration:
		return "time.Duration"
	case atr.PrimitiveUUID:
		return "uuid.UUID"
	default:
		return "any"
	}
}

// usesPackage reports whether any node's reachable TypeRefs render through
// primitiveGoType to a type living in pkgHint ("time.", "uuid.",
// "codegenruntime."), so the import block only ever lists what the ATR set
// actually needs (§4.6).
func usesPackage(nodes []*atr.Node, pkgHint string) bool {
	found := false
	visit := func(ref *atr.TypeRef) {
		for r := ref; r != nil; r = r.Elem {
			if r.Kind == atr.RefPrimitive && strings.HasPrefix(primitiveGoType(r.Primitive), pkgHint) {
				found = true
			}
		}
	}
	for _, n := range nodes {
		switch n.Kind {
		case atr.NodeRecord:
			for _, f := range n.Record.Fields {
				visit(f.Type)
			}
		case atr.NodeDiscriminatedUnion:
			for _, v := range n.DiscriminatedUnion.Variants {
				visit(v.Type)
			}
		case atr.NodeEnum:
			for _, v := range n.Enum.Variants {
				visit(v.Payload)
			}
		case atr.NodeResponseEnum:
			for _, v := range n.ResponseEnum.Variants {
				visit(v.Payload)
			}
		case atr.NodeAlias:
			visit(n.Alias.Type)
		}
	}
	return found
}

func writeDocComment(b *strings.Builder, docs string) {
	if docs == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(docs, "\n"), "\n") {
		fmt.Fprintf(b, "// %s\n", line)
	}
}
