// Package postprocess implements stage 5: usage propagation, serde mode
// assignment, response-enum structural deduplication, and nested-validation
// marking over the complete ATR node set produced by stages 3 and 4.
package postprocess

import (
	"strings"

	"github.com/talav/openapi-codegen/config"
	"github.com/talav/openapi-codegen/internal/atr"
)

// Run applies the full §4.5 pipeline in order and returns the final node
// list (response-enum survivors only) plus the rename map the caller must
// apply to anything outside this package that still refers to a collapsed
// response-enum type by its pre-dedup name (opconvert.OperationTypes).
func Run(nodes []*atr.Node, cfg config.GeneratorConfig) ([]*atr.Node, map[string]string) {
	propagateUsage(nodes)
	assignModes(nodes, cfg.AllSchemas)

	nodes, rename := dedupResponseEnums(nodes)
	applyRename(nodes, rename)

	markNestedValidation(nodes)
	return nodes, rename
}

// propagateUsage implements §4.5.1: treating ATR nodes as graph nodes and
// TypeRefs as edges, a type inherits the usage of anything that contains
// it, iterated to a fixed point.
func propagateUsage(nodes []*atr.Node) {
	byName := map[string]*atr.Node{}
	for _, n := range nodes {
		byName[n.Name()] = n
	}

	for changed := true; changed; {
		changed = false
		for _, n := range nodes {
			u := n.Usage()
			if u == nil || (!u.InRequestPosition && !u.InResponsePosition) {
				continue
			}
			for _, dep := range n.Dependencies() {
				depNode, ok := byName[dep]
				if !ok {
					continue
				}
				du := depNode.Usage()
				if du == nil {
					continue
				}
				if u.InRequestPosition && !du.InRequestPosition {
					du.InRequestPosition = true
					changed = true
				}
				if u.InResponsePosition && !du.InResponsePosition {
					du.InResponsePosition = true
					changed = true
				}
			}
		}
	}
}

// assignModes implements §4.5.2's serde mode table. allSchemas is not
// consulted: a type usage propagation never reached (kept only because
// --all-schemas forced its emission) defaults to SerdeBoth whatever its
// value, conservatively generating both directions.
func assignModes(nodes []*atr.Node, allSchemas bool) {
	_ = allSchemas // the "neither" branch below is reached only when allSchemas kept an otherwise-unreachable node
	for _, n := range nodes {
		u := n.Usage()
		if u == nil {
			continue
		}
		switch {
		case u.InRequestPosition && u.InResponsePosition:
			n.SetMode(atr.SerdeBoth)
		case u.InRequestPosition:
			n.SetMode(atr.SerdeSerializeOnly)
		case u.InResponsePosition:
			n.SetMode(atr.SerdeDeserializeOnly)
		default:
			n.SetMode(atr.SerdeBoth)
		}
	}
}

// dedupResponseEnums implements §4.5.3: response-enum nodes with identical
// (status, content-type, payload-shape) variant sequences collapse to the
// first-seen survivor. The returned map carries old name -> survivor name
// for every collapsed node, for callers holding the name by reference.
func dedupResponseEnums(nodes []*atr.Node) ([]*atr.Node, map[string]string) {
	seen := map[string]string{}
	rename := map[string]string{}
	out := make([]*atr.Node, 0, len(nodes))

	for _, n := range nodes {
		if n.Kind != atr.NodeResponseEnum {
			out = append(out, n)
			continue
		}
		fp := responseEnumFingerprint(n.ResponseEnum)
		if survivor, ok := seen[fp]; ok {
			rename[n.Name()] = survivor
			continue
		}
		seen[fp] = n.Name()
		out = append(out, n)
	}
	return out, rename
}

func responseEnumFingerprint(r *atr.ResponseEnumType) string {
	var sb strings.Builder
	for _, v := range r.Variants {
		sb.WriteString(v.Status)
		sb.WriteByte('|')
		sb.WriteString(v.ContentType)
		sb.WriteByte('|')
		sb.WriteString(refKey(v.Payload))
		sb.WriteByte(';')
	}
	return sb.String()
}

// refKey renders a TypeRef as a structural string, used only for dedup
// comparison, never for emission.
func refKey(ref *atr.TypeRef) string {
	if ref == nil {
		return "-"
	}
	switch ref.Kind {
	case atr.RefNamed:
		return "N:" + ref.Name
	case atr.RefPrimitive:
		return "P:" + string(ref.Primitive)
	case atr.RefOptional:
		return "O<" + refKey(ref.Elem) + ">"
	case atr.RefArray:
		return "A<" + refKey(ref.Elem) + ">"
	case atr.RefMap:
		return "M<" + refKey(ref.Elem) + ">"
	case atr.RefUnique:
		return "U<" + refKey(ref.Elem) + ">"
	case atr.RefIndirect:
		return "I<" + refKey(ref.Elem) + ">"
	default:
		return "?"
	}
}

// applyRename rewrites every TypeRef in the surviving node set that points
// at a collapsed response-enum name onto its survivor.
func applyRename(nodes []*atr.Node, rename map[string]string) {
	if len(rename) == 0 {
		return
	}
	rewrite := func(ref *atr.TypeRef) {
		for r := ref; r != nil; r = r.Elem {
			if r.Kind == atr.RefNamed {
				if to, ok := rename[r.Name]; ok {
					r.Name = to
				}
				return
			}
		}
	}
	for _, n := range nodes {
		switch n.Kind {
		case atr.NodeRecord:
			for i := range n.Record.Fields {
				rewrite(n.Record.Fields[i].Type)
			}
		case atr.NodeDiscriminatedUnion:
			for i := range n.DiscriminatedUnion.Variants {
				rewrite(n.DiscriminatedUnion.Variants[i].Type)
			}
		case atr.NodeEnum:
			for i := range n.Enum.Variants {
				if n.Enum.Variants[i].Payload != nil {
					rewrite(n.Enum.Variants[i].Payload)
				}
			}
		case atr.NodeResponseEnum:
			for i := range n.ResponseEnum.Variants {
				rewrite(n.ResponseEnum.Variants[i].Payload)
			}
		case atr.NodeAlias:
			rewrite(n.Alias.Type)
		}
	}
}

// markNestedValidation implements §4.5.4: a field whose type resolves
// (through any wrapper) to a record carrying its own field-level validation
// constraints is marked ValidateNested. The flag is recorded on the ATR
// only; the emitter renders no validation code and does not read it.
func markNestedValidation(nodes []*atr.Node) {
	hasValidation := map[string]bool{}
	for _, n := range nodes {
		if n.Kind != atr.NodeRecord {
			continue
		}
		for _, f := range n.Record.Fields {
			if fieldHasValidation(f.Validation) {
				hasValidation[n.Record.Name] = true
				break
			}
		}
	}

	for _, n := range nodes {
		if n.Kind != atr.NodeRecord {
			continue
		}
		for i := range n.Record.Fields {
			if hasValidation[rootName(n.Record.Fields[i].Type)] {
				n.Record.Fields[i].ValidateNested = true
			}
		}
	}
}

func fieldHasValidation(v atr.Validation) bool {
	return v.MinLength != nil || v.MaxLength != nil || v.Pattern != "" ||
		v.Minimum != nil || v.Maximum != nil || v.MinItems != nil || v.MaxItems != nil
}

func rootName(ref *atr.TypeRef) string {
	for ref != nil {
		if ref.Kind == atr.RefNamed {
			return ref.Name
		}
		ref = ref.Elem
	}
	return ""
}
