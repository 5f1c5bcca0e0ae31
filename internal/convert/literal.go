package convert

import "github.com/talav/openapi-codegen/internal/atr"

// coerceLiteral implements the §4.3.3 numeric coercion table: a JSON
// default value is captured as a typed literal expression targeting the
// field's resolved type.
func coerceLiteral(ref *atr.TypeRef, value any) *atr.Literal {
	target := ref.Unwrap()
	if target == nil || target.Kind != atr.RefPrimitive {
		return &atr.Literal{Kind: atr.PrimitiveAny, Value: value}
	}

	switch target.Primitive {
	case atr.PrimitiveI32, atr.PrimitiveI64:
		if f, ok := value.(float64); ok && f == float64(int64(f)) {
			return &atr.Literal{Kind: target.Primitive, Value: int64(f)}
		}
		return &atr.Literal{Kind: atr.PrimitiveAny, Value: value}
	case atr.PrimitiveF64:
		if f, ok := value.(float64); ok {
			return &atr.Literal{Kind: atr.PrimitiveF64, Value: f}
		}
		return &atr.Literal{Kind: atr.PrimitiveAny, Value: value}
	case atr.PrimitiveString:
		if s, ok := value.(string); ok {
			return &atr.Literal{Kind: atr.PrimitiveString, Value: s}
		}
		return &atr.Literal{Kind: atr.PrimitiveAny, Value: value}
	case atr.PrimitiveBool:
		if b, ok := value.(bool); ok {
			return &atr.Literal{Kind: atr.PrimitiveBool, Value: b}
		}
		return &atr.Literal{Kind: atr.PrimitiveAny, Value: value}
	default:
		return &atr.Literal{Kind: atr.PrimitiveAny, Value: value}
	}
}
