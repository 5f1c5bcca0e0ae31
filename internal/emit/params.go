package emit

import (
	"fmt"
	"strings"

	"github.com/talav/openapi-codegen/internal/atr"
	"github.com/talav/openapi-codegen/internal/opconvert"
)

// paramScalar unwraps one Optional layer (the only wrapping buildRequestType
// applies to a parameter field) and reports the primitive kind driving how
// the server must parse a wire string into it, or isPrimitive=false when the field
// is a named type (an enum-valued parameter), which gets a bare Go type
// conversion instead of a strconv call.
func paramScalar(t *atr.TypeRef) (primitive atr.Primitive, isPrimitive bool, named string) {
	if t == nil {
		return "", false, ""
	}
	if t.Kind == atr.RefOptional {
		t = t.Elem
	}
	if t == nil {
		return "", false, ""
	}
	switch t.Kind {
	case atr.RefPrimitive:
		return t.Primitive, true, ""
	case atr.RefNamed:
		return "", false, t.Name
	default:
		return "", false, ""
	}
}

// paramImports scans every Query/Header/Cookie field across ops for the
// packages server-side coercion needs, so server_file.go only imports what
// the operation set actually exercises.
func paramImports(ops []opconvert.OperationTypes) (needsStrconv, needsTime, needsUUID, needsRuntime bool) {
	visit := func(f opconvert.ParamField) {
		p, isPrimitive, _ := paramScalar(f.Type)
		if !isPrimitive {
			return
		}
		switch p {
		case atr.PrimitiveBool, atr.PrimitiveI64, atr.PrimitiveF64:
			needsStrconv = true
		case atr.PrimitiveI32, atr.PrimitiveDate, atr.PrimitiveTime:
			needsRuntime = true
		case atr.PrimitiveDuration, atr.PrimitiveInstant:
			needsTime = true
		case atr.PrimitiveUUID:
			needsUUID = true
		}
	}
	for _, op := range ops {
		for _, f := range op.QueryParams {
			visit(f)
		}
		for _, f := range op.HeaderParams {
			visit(f)
		}
		for _, f := range op.CookieParams {
			visit(f)
		}
	}
	return
}

// needsRequestBodyDecode reports whether Mount's body will contain at least
// one json.NewDecoder call, so server_file.go only imports "encoding/json"
// when some non-webhook operation actually has a request body.
func needsRequestBodyDecode(ops []opconvert.OperationTypes) bool {
	for _, op := range ops {
		if !op.Operation.IsWebhook && op.HasRequestBody {
			return true
		}
	}
	return false
}

// serverParseExpr renders the Go expression that parses raw (a string
// variable) into f's declared type, plus whether parsing can fail. String
// fields and named (enum) fields never fail: a named parameter type is
// always backed by a plain string per convertEnum, so a bare conversion
// suffices.
func serverParseExpr(raw string, f opconvert.ParamField) (expr string, fallible bool) {
	p, isPrimitive, named := paramScalar(f.Type)
	if named != "" {
		return fmt.Sprintf("%s(%s)", named, raw), false
	}
	if !isPrimitive {
		return raw, false
	}
	switch p {
	case atr.PrimitiveBool:
		return fmt.Sprintf("strconv.ParseBool(%s)", raw), true
	case atr.PrimitiveI32:
		return fmt.Sprintf("codegenruntime.ParseInt32(%s)", raw), true
	case atr.PrimitiveI64:
		return fmt.Sprintf("strconv.ParseInt(%s, 10, 64)", raw), true
	case atr.PrimitiveF64:
		return fmt.Sprintf("strconv.ParseFloat(%s, 64)", raw), true
	case atr.PrimitiveUUID:
		return fmt.Sprintf("uuid.Parse(%s)", raw), true
	case atr.PrimitiveDate:
		return fmt.Sprintf("codegenruntime.ParseDate(%s)", raw), true
	case atr.PrimitiveTime:
		return fmt.Sprintf("codegenruntime.ParseTimeOfDay(%s)", raw), true
	case atr.PrimitiveDuration:
		return fmt.Sprintf("time.ParseDuration(%s)", raw), true
	case atr.PrimitiveInstant:
		return fmt.Sprintf("time.Parse(time.RFC3339, %s)", raw), true
	case atr.PrimitiveBytes:
		return fmt.Sprintf("[]byte(%s)", raw), false
	default:
		return raw, false
	}
}

// renderServerAssign writes the statements assigning a raw wire string,
// already extracted into the Go variable named rawVar, into dst — parsing
// it through serverParseExpr when the field isn't a bare string, and
// reporting a 400 on a parse failure.
func renderServerAssign(b *strings.Builder, indent, rawVar, dst string, f opconvert.ParamField, optional bool) {
	local := "parsed" + f.Name
	expr, fallible := serverParseExpr(rawVar, f)
	if !fallible {
		if optional {
			fmt.Fprintf(b, "%s%s := %s\n", indent, local, expr)
			fmt.Fprintf(b, "%s%s = &%s\n", indent, dst, local)
			return
		}
		fmt.Fprintf(b, "%s%s = %s\n", indent, dst, expr)
		return
	}
	fmt.Fprintf(b, "%s%s, err%s := %s\n", indent, local, f.Name, expr)
	fmt.Fprintf(b, "%sif err%s != nil {\n", indent, f.Name)
	fmt.Fprintf(b, "%s\thttp.Error(w, %q+err%s.Error(), http.StatusBadRequest)\n", indent, "parsing "+f.WireName+": ", f.Name)
	fmt.Fprintf(b, "%s\treturn\n", indent)
	fmt.Fprintf(b, "%s}\n", indent)
	if optional {
		fmt.Fprintf(b, "%s%s = &%s\n", indent, dst, local)
	} else {
		fmt.Fprintf(b, "%s%s = %s\n", indent, dst, local)
	}
}
