package emit

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/talav/openapi-codegen/internal/atr"
	"github.com/talav/openapi-codegen/internal/convert"
)

// typesFile renders every nominal ATR type, stable-sorted by name (§4.6),
// preceded by the deduplicated regex and HTTP-header constant tables.
func typesFile(nodes []*atr.Node, regexes []convert.RegexEntry) string {
	var b strings.Builder
	b.WriteString("// Code generated by openapi-codegen. DO NOT EDIT.\n\n")
	b.WriteString("package codegentypes\n\n")
	writeImports(&b, nodes, len(regexes) > 0)

	if len(regexes) > 0 {
		b.WriteString("var (\n")
		for _, r := range regexes {
			fmt.Fprintf(&b, "\t%s = regexp.MustCompile(%q)\n", r.Name, r.Pattern)
		}
		b.WriteString(")\n\n")
	}

	if headers := headerConstants(nodes); len(headers) > 0 {
		b.WriteString("const (\n")
		for _, h := range headers {
			b.WriteString(h)
			b.WriteByte('\n')
		}
		b.WriteString(")\n\n")
	}

	for _, n := range nodes {
		b.WriteString(renderNode(n))
		b.WriteByte('\n')
	}

	return b.String()
}

// writeImports lists only the packages this particular ATR set actually
// needs (§4.6): "encoding/json"/"fmt"/"strings" are pulled in only by the
// custom (Un)MarshalJSON methods rendered for payload enums, discriminated
// unions, and response enums, not unconditionally.
func writeImports(b *strings.Builder, nodes []*atr.Node, hasRegexes bool) {
	needsJSON, needsFmt, needsStrings := typesFileImportFlags(nodes)

	var imports []string
	if usesPackage(nodes, "time.") {
		imports = append(imports, `"time"`)
	}
	if usesPackage(nodes, "uuid.") {
		imports = append(imports, `"github.com/google/uuid"`)
	}
	if usesPackage(nodes, "codegenruntime.") || hasDiscriminatedUnion(nodes) {
		imports = append(imports, `"github.com/talav/openapi-codegen/codegenruntime"`)
	}
	if needsJSON {
		imports = append(imports, `"encoding/json"`)
	}
	if needsFmt {
		imports = append(imports, `"fmt"`)
	}
	if hasRegexes {
		imports = append(imports, `"regexp"`)
	}
	if needsStrings {
		imports = append(imports, `"strings"`)
	}
	sort.Strings(imports)

	if len(imports) == 0 {
		return
	}
	b.WriteString("import (\n")
	for _, i := range imports {
		fmt.Fprintf(b, "\t%s\n", i)
	}
	b.WriteString(")\n\n")
}

// typesFileImportFlags scans for the node shapes that get generated
// (Un)MarshalJSON methods, so the import list tracks exactly what those
// methods reference.
func typesFileImportFlags(nodes []*atr.Node) (needsJSON, needsFmt, needsStrings bool) {
	for _, n := range nodes {
		switch n.Kind {
		case atr.NodeDiscriminatedUnion:
			needsJSON, needsFmt = true, true
		case atr.NodeEnum:
			for _, v := range n.Enum.Variants {
				if v.Kind != atr.VariantUnit {
					needsJSON, needsFmt = true, true
				}
			}
		case atr.NodeResponseEnum:
			needsJSON, needsFmt = true, true
			for _, v := range n.ResponseEnum.Variants {
				if v.ContentType != "" {
					needsStrings = true
				}
			}
		}
	}
	return needsJSON, needsFmt, needsStrings
}

func hasDiscriminatedUnion(nodes []*atr.Node) bool {
	for _, n := range nodes {
		if n.Kind == atr.NodeDiscriminatedUnion {
			return true
		}
	}
	return false
}

func renderNode(n *atr.Node) string {
	switch n.Kind {
	case atr.NodeRecord:
		return renderRecord(n.Record)
	case atr.NodeEnum:
		return renderEnum(n.Enum)
	case atr.NodeDiscriminatedUnion:
		return renderDiscriminatedUnion(n.DiscriminatedUnion)
	case atr.NodeResponseEnum:
		return renderResponseEnum(n.ResponseEnum)
	case atr.NodeAlias:
		return renderAlias(n.Alias)
	default:
		return ""
	}
}

func renderRecord(r *atr.RecordType) string {
	var b strings.Builder
	writeDocComment(&b, r.Docs)
	fmt.Fprintf(&b, "type %s struct {\n", r.Name)
	for _, f := range r.Fields {
		writeDocComment(&b, indentDocLine(f.Docs))
		tag := "`json:\"" + f.WireName
		if !f.Required {
			tag += ",omitempty"
		}
		tag += "\"`"
		fmt.Fprintf(&b, "\t%s %s %s\n", f.Name, goType(f.Type), tag)
	}
	b.WriteString("}\n")
	return b.String()
}

func indentDocLine(s string) string { return s }

// renderEnum dispatches on whether every variant is a bare wire value
// (unit enum -> a defined string/int type plus constants) or whether at
// least one variant carries a payload (relaxed/tagged -> a struct with one
// optional field per payload-carrying variant, plus hand-written
// (Un)MarshalJSON dispatching on Kind, the simplest representable Go
// encoding of a closed sum type without a native union construct).
func renderEnum(e *atr.EnumType) string {
	for _, v := range e.Variants {
		if v.Kind != atr.VariantUnit {
			return renderPayloadEnum(e)
		}
	}
	return renderUnitEnum(e)
}

func renderUnitEnum(e *atr.EnumType) string {
	var b strings.Builder
	writeDocComment(&b, e.Docs)
	fmt.Fprintf(&b, "type %s string\n\n", e.Name)
	b.WriteString("const (\n")
	for _, v := range e.Variants {
		fmt.Fprintf(&b, "\t%s%s %s = %q\n", e.Name, v.Name, e.Name, fmt.Sprint(v.Wire))
	}
	b.WriteString(")\n")
	return b.String()
}

// renderPayloadEnum renders a mixed enum (relaxed Unit+CatchAll, or an
// all-Payload tagged/untagged union) as a struct with one pointer field per
// payload-carrying variant, plus custom JSON methods: unit variants have no
// struct field of their own, since Kind plus their literal wire value is
// all a marshaler needs to reproduce them.
func renderPayloadEnum(e *atr.EnumType) string {
	var b strings.Builder
	writeDocComment(&b, e.Docs)
	fmt.Fprintf(&b, "type %s struct {\n", e.Name)
	b.WriteString("\t// Kind reports which of the fields below is populated.\n")
	b.WriteString("\tKind string `json:\"-\"`\n")
	for _, v := range e.Variants {
		if v.Payload == nil {
			continue
		}
		fmt.Fprintf(&b, "\t%s *%s `json:\"-\"`\n", v.Name, goType(v.Payload))
	}
	b.WriteString("}\n\n")

	if e.Mode != atr.SerdeDeserializeOnly {
		b.WriteString(renderEnumMarshalJSON(e))
		b.WriteByte('\n')
	}
	if e.Mode != atr.SerdeSerializeOnly {
		b.WriteString(renderEnumUnmarshalJSON(e))
	}
	return b.String()
}

// renderEnumMarshalJSON renders whichever variant of e is set as its bare
// wire value: unit variants as their literal, payload/catch-all variants as
// their field's own JSON encoding.
func renderEnumMarshalJSON(e *atr.EnumType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// MarshalJSON renders whichever variant of %s is set as its bare wire\n", e.Name)
	b.WriteString("// value — a closed sum type has no shorter natural Go encoding.\n")
	fmt.Fprintf(&b, "func (v %s) MarshalJSON() ([]byte, error) {\n", e.Name)
	b.WriteString("\tswitch v.Kind {\n")
	for _, variant := range e.Variants {
		fmt.Fprintf(&b, "\tcase %q:\n", variant.Name)
		if variant.Kind == atr.VariantUnit {
			fmt.Fprintf(&b, "\t\treturn json.Marshal(%s)\n", enumWireLiteral(variant.Wire))
		} else {
			fmt.Fprintf(&b, "\t\treturn json.Marshal(v.%s)\n", variant.Name)
		}
	}
	b.WriteString("\t}\n")
	fmt.Fprintf(&b, "\treturn nil, fmt.Errorf(%q)\n", e.Name+": no variant set")
	b.WriteString("}\n")
	return b.String()
}

// renderEnumUnmarshalJSON splits on whether e mixes unit variants with a
// catch-all (a relaxed enum: decode as a bare string, match known values,
// fall back to the catch-all) or is all payload variants (a tagged/untagged
// union: try each candidate type in declaration order).
func renderEnumUnmarshalJSON(e *atr.EnumType) string {
	hasUnit := false
	var catchAll *atr.EnumVariant
	for i, v := range e.Variants {
		if v.Kind == atr.VariantUnit {
			hasUnit = true
		}
		if v.Kind == atr.VariantCatchAll {
			catchAll = &e.Variants[i]
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// UnmarshalJSON populates %s from its bare wire value.\n", e.Name)
	fmt.Fprintf(&b, "func (v *%s) UnmarshalJSON(data []byte) error {\n", e.Name)

	if hasUnit {
		b.WriteString("\tvar s string\n")
		b.WriteString("\tif err := json.Unmarshal(data, &s); err != nil {\n")
		fmt.Fprintf(&b, "\t\treturn fmt.Errorf(\"%s: %%w\", err)\n", e.Name)
		b.WriteString("\t}\n")
		b.WriteString("\tswitch s {\n")
		for _, variant := range e.Variants {
			if variant.Kind != atr.VariantUnit {
				continue
			}
			fmt.Fprintf(&b, "\tcase %s:\n", enumWireLiteral(variant.Wire))
			fmt.Fprintf(&b, "\t\tv.Kind = %q\n", variant.Name)
			b.WriteString("\t\treturn nil\n")
		}
		b.WriteString("\t}\n")
		if catchAll != nil {
			fmt.Fprintf(&b, "\tv.Kind = %q\n", catchAll.Name)
			fmt.Fprintf(&b, "\tv.%s = &s\n", catchAll.Name)
			b.WriteString("\treturn nil\n")
		} else {
			fmt.Fprintf(&b, "\treturn fmt.Errorf(\"%s: %%q is not a known variant\", s)\n", e.Name)
		}
		b.WriteString("}\n")
		return b.String()
	}

	for _, variant := range e.Variants {
		local := strings.ToLower(variant.Name)
		fmt.Fprintf(&b, "\tvar %s %s\n", local, goType(variant.Payload))
		fmt.Fprintf(&b, "\tif err := json.Unmarshal(data, &%s); err == nil {\n", local)
		fmt.Fprintf(&b, "\t\tv.Kind = %q\n", variant.Name)
		fmt.Fprintf(&b, "\t\tv.%s = &%s\n", variant.Name, local)
		b.WriteString("\t\treturn nil\n")
		b.WriteString("\t}\n")
	}
	fmt.Fprintf(&b, "\treturn fmt.Errorf(%q)\n", e.Name+": no variant matched")
	b.WriteString("}\n")
	return b.String()
}

// enumWireLiteral renders a unit variant's wire value as a quoted Go string
// literal. Unit variants in this generator are always wire strings (Merge
// and Preserve enums come from string `enum` arrays; relaxed enums come
// from string `const`s alongside a string catch-all), so this always
// produces a comparable string literal rather than a typed numeric one.
func enumWireLiteral(wire any) string {
	return fmt.Sprintf("%q", fmt.Sprint(wire))
}

func renderDiscriminatedUnion(u *atr.DiscriminatedUnionType) string {
	var b strings.Builder
	writeDocComment(&b, u.Docs)
	fmt.Fprintf(&b, "type %s struct {\n", u.Name)
	fmt.Fprintf(&b, "\t%s string `json:\"%s\"`\n", convert.Identifier(u.DiscriminatorName), u.DiscriminatorName)
	for _, v := range u.Variants {
		fmt.Fprintf(&b, "\t%s *%s `json:\"-\"`\n", convert.Identifier(v.DiscriminatorValue), goType(v.Type))
	}
	fmt.Fprintf(&b, "\t// %s carries the raw payload when the discriminator matches no known variant.\n", u.FallbackVariant)
	fmt.Fprintf(&b, "\t%s json.RawMessage `json:\"-\"`\n", u.FallbackVariant)
	b.WriteString("}\n\n")

	if u.Mode != atr.SerdeDeserializeOnly {
		b.WriteString(renderDiscriminatedMarshalJSON(u))
		b.WriteByte('\n')
	}
	if u.Mode != atr.SerdeSerializeOnly {
		b.WriteString(renderDiscriminatedUnmarshalJSON(u))
	}
	return b.String()
}

// renderDiscriminatedMarshalJSON renders whichever variant of u is set,
// injecting the discriminator property into its JSON object via
// codegenruntime.MarshalDiscriminated.
func renderDiscriminatedMarshalJSON(u *atr.DiscriminatedUnionType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// MarshalJSON renders whichever variant of %s is set, injecting the\n", u.Name)
	b.WriteString("// discriminator property into its JSON object.\n")
	fmt.Fprintf(&b, "func (u *%s) MarshalJSON() ([]byte, error) {\n", u.Name)
	b.WriteString("\tswitch {\n")
	for _, v := range u.Variants {
		field := convert.Identifier(v.DiscriminatorValue)
		fmt.Fprintf(&b, "\tcase u.%s != nil:\n", field)
		fmt.Fprintf(&b, "\t\treturn codegenruntime.MarshalDiscriminated(u.%s, %q, %q)\n", field, u.DiscriminatorName, v.DiscriminatorValue)
	}
	b.WriteString("\t}\n")
	fmt.Fprintf(&b, "\tif u.%s != nil {\n", u.FallbackVariant)
	fmt.Fprintf(&b, "\t\treturn u.%s, nil\n", u.FallbackVariant)
	b.WriteString("\t}\n")
	fmt.Fprintf(&b, "\treturn nil, fmt.Errorf(%q)\n", u.Name+": no variant set")
	b.WriteString("}\n")
	return b.String()
}

// renderDiscriminatedUnmarshalJSON dispatches on the discriminator property
// (read via codegenruntime.DiscriminatorValue, never a host type switch, so
// the decision never depends on Go's own reflection/type system) to decode
// into the matching variant, falling back to the raw bytes.
func renderDiscriminatedUnmarshalJSON(u *atr.DiscriminatedUnionType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// UnmarshalJSON dispatches on the %s discriminator property to decode\n", u.DiscriminatorName)
	fmt.Fprintf(&b, "// into the matching %s variant.\n", u.Name)
	fmt.Fprintf(&b, "func (u *%s) UnmarshalJSON(data []byte) error {\n", u.Name)
	fmt.Fprintf(&b, "\tdisc, err := codegenruntime.DiscriminatorValue(data, %q)\n", u.DiscriminatorName)
	b.WriteString("\tif err != nil {\n\t\treturn err\n\t}\n")
	fmt.Fprintf(&b, "\tu.%s = disc\n", convert.Identifier(u.DiscriminatorName))
	b.WriteString("\tswitch disc {\n")
	for _, v := range u.Variants {
		field := convert.Identifier(v.DiscriminatorValue)
		fmt.Fprintf(&b, "\tcase %q:\n", v.DiscriminatorValue)
		fmt.Fprintf(&b, "\t\tvar variant %s\n", goType(v.Type))
		b.WriteString("\t\tif err := json.Unmarshal(data, &variant); err != nil {\n\t\t\treturn err\n\t\t}\n")
		fmt.Fprintf(&b, "\t\tu.%s = &variant\n", field)
		b.WriteString("\t\treturn nil\n")
	}
	b.WriteString("\t}\n")
	fmt.Fprintf(&b, "\tu.%s = append(json.RawMessage(nil), data...)\n", u.FallbackVariant)
	b.WriteString("\treturn nil\n")
	b.WriteString("}\n")
	return b.String()
}

func renderResponseEnum(r *atr.ResponseEnumType) string {
	var b strings.Builder
	writeDocComment(&b, r.Docs)
	fmt.Fprintf(&b, "type %s struct {\n", r.Name)
	b.WriteString("\tStatusCode int `json:\"-\"`\n")
	b.WriteString("\tContentType string `json:\"-\"`\n")
	for _, v := range r.Variants {
		if v.Payload == nil {
			continue
		}
		fmt.Fprintf(&b, "\t%s *%s `json:\"-\"`\n", responseVariantFieldName(v), goType(v.Payload))
	}
	b.WriteString("}\n\n")

	if r.Mode != atr.SerdeSerializeOnly {
		b.WriteString(renderResponseUnmarshalHTTP(r))
		b.WriteByte('\n')
	}
	if r.Mode != atr.SerdeDeserializeOnly {
		b.WriteString(renderResponseMarshalHTTP(r))
	}
	return b.String()
}

// renderResponseUnmarshalHTTP builds the decode-dispatch method a generated
// client uses to populate a ResponseEnumType from a completed HTTP
// response: one branch per (status, content-type) variant in declaration
// order, falling back to the trailing Unknown variant for anything
// unmatched (§8 "response enum totality").
func renderResponseUnmarshalHTTP(r *atr.ResponseEnumType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// UnmarshalHTTP decodes an HTTP response into the %s variant matching\n", r.Name)
	b.WriteString("// its status code and content type.\n")
	fmt.Fprintf(&b, "func (r *%s) UnmarshalHTTP(statusCode int, contentType string, body []byte) error {\n", r.Name)
	b.WriteString("\tr.StatusCode = statusCode\n")
	b.WriteString("\tr.ContentType = contentType\n\n")

	for i, v := range r.Variants {
		last := i == len(r.Variants)-1
		if last {
			if i > 0 {
				b.WriteString("\t}\n")
			}
			b.WriteString("\traw := append([]byte(nil), body...)\n")
			fmt.Fprintf(&b, "\tr.%s = &raw\n", responseVariantFieldName(v))
			b.WriteString("\treturn nil\n")
			break
		}

		cond := responseVariantCondition(v)
		if i == 0 {
			fmt.Fprintf(&b, "\tif %s {\n", cond)
		} else {
			fmt.Fprintf(&b, "\t} else if %s {\n", cond)
		}
		if v.Payload == nil {
			b.WriteString("\t\treturn nil\n")
			continue
		}
		field := responseVariantFieldName(v)
		if isBytesPayload(v.Payload) {
			b.WriteString("\t\traw := append([]byte(nil), body...)\n")
			fmt.Fprintf(&b, "\t\tr.%s = &raw\n", field)
			b.WriteString("\t\treturn nil\n")
			continue
		}
		fmt.Fprintf(&b, "\t\tvar payload %s\n", goType(v.Payload))
		b.WriteString("\t\tif len(body) > 0 {\n")
		b.WriteString("\t\t\tif err := json.Unmarshal(body, &payload); err != nil {\n")
		fmt.Fprintf(&b, "\t\t\t\treturn fmt.Errorf(\"decoding %s: %%w\", err)\n", field)
		b.WriteString("\t\t\t}\n")
		b.WriteString("\t\t}\n")
		fmt.Fprintf(&b, "\t\tr.%s = &payload\n", field)
		b.WriteString("\t\treturn nil\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// renderResponseMarshalHTTP builds the encode-dispatch method a generated
// server handler uses to turn a populated ResponseEnumType back into a
// status code, content type, and body. Variants with no field (bodiless
// responses) fall through to the final r.StatusCode/r.ContentType return,
// which also covers the Unknown fallback and any handler that only set
// StatusCode directly.
func renderResponseMarshalHTTP(r *atr.ResponseEnumType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// MarshalHTTP renders %s back to a status code, content type, and body.\n", r.Name)
	fmt.Fprintf(&b, "func (r *%s) MarshalHTTP() (statusCode int, contentType string, body []byte, err error) {\n", r.Name)
	for _, v := range r.Variants {
		if v.Payload == nil {
			continue
		}
		field := responseVariantFieldName(v)
		status := "r.StatusCode"
		if code, ok := parseStatusCode(v.Status); ok {
			status = strconv.Itoa(code)
		}
		ct := "r.ContentType"
		if v.ContentType != "" {
			ct = fmt.Sprintf("%q", v.ContentType)
		}
		fmt.Fprintf(&b, "\tif r.%s != nil {\n", field)
		if isBytesPayload(v.Payload) {
			fmt.Fprintf(&b, "\t\treturn %s, %s, *r.%s, nil\n", status, ct, field)
		} else {
			fmt.Fprintf(&b, "\t\tencoded, err := json.Marshal(r.%s)\n", field)
			b.WriteString("\t\tif err != nil {\n")
			fmt.Fprintf(&b, "\t\t\treturn 0, \"\", nil, fmt.Errorf(\"encoding %s: %%w\", err)\n", field)
			b.WriteString("\t\t}\n")
			fmt.Fprintf(&b, "\t\treturn %s, %s, encoded, nil\n", status, ct)
		}
		b.WriteString("\t}\n")
	}
	b.WriteString("\treturn r.StatusCode, r.ContentType, nil, nil\n")
	b.WriteString("}\n")
	return b.String()
}

// responseVariantCondition builds the if-condition matching one (status,
// content-type) variant. A variant with status "default" (or the
// zero-value empty status reserved for the trailing Unknown entry, handled
// separately by the caller) matches unconditionally once reached, per §9's
// "infer when mapping absent" spirit applied to response dispatch.
func responseVariantCondition(v atr.ResponseVariant) string {
	var parts []string
	if code, ok := parseStatusCode(v.Status); ok {
		parts = append(parts, fmt.Sprintf("statusCode == %d", code))
	}
	if v.ContentType != "" {
		parts = append(parts, fmt.Sprintf("strings.HasPrefix(contentType, %q)", v.ContentType))
	}
	if len(parts) == 0 {
		return "true"
	}
	return strings.Join(parts, " && ")
}

func parseStatusCode(status string) (int, bool) {
	if status == "" || status == "default" {
		return 0, false
	}
	n, err := strconv.Atoi(status)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isBytesPayload(ref *atr.TypeRef) bool {
	return ref != nil && ref.Kind == atr.RefPrimitive && ref.Primitive == atr.PrimitiveBytes
}

func responseVariantFieldName(v atr.ResponseVariant) string {
	if v.Status == "" {
		return "Unknown"
	}
	name := "Status" + v.Status
	if v.ContentType != "" {
		name += convert.Identifier(v.ContentType)
	}
	return name
}

func renderAlias(a *atr.TypeAlias) string {
	var b strings.Builder
	writeDocComment(&b, a.Docs)
	fmt.Fprintf(&b, "type %s = %s\n", a.Name, goType(a.Type))
	return b.String()
}

// headerConstants collects the wire header names carried by every
// request-parameter sub-record named "*Header" into a sorted constant
// table (§4.6: "module-level HTTP-header name constants referenced by the
// request types").
func headerConstants(nodes []*atr.Node) []string {
	seen := map[string]bool{}
	var names []string
	for _, n := range nodes {
		if n.Kind != atr.NodeRecord || !strings.HasSuffix(n.Record.Name, "Header") {
			continue
		}
		for _, f := range n.Record.Fields {
			if seen[f.WireName] {
				continue
			}
			seen[f.WireName] = true
			names = append(names, f.WireName)
		}
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, fmt.Sprintf("\tHeader%s = %q", convert.Identifier(n), n))
	}
	return out
}
