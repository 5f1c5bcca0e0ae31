package codegenruntime

import "encoding/json"

// MarshalDiscriminated marshals value, then sets discriminatorKey to
// discriminatorValue in the resulting JSON object — the standard wire shape
// for a discriminated-union variant whose own schema may or may not already
// carry the discriminator property among its fields.
func MarshalDiscriminated(value any, discriminatorKey, discriminatorValue string) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	tagged, err := json.Marshal(discriminatorValue)
	if err != nil {
		return nil, err
	}
	fields[discriminatorKey] = tagged
	return json.Marshal(fields)
}

// DiscriminatorValue extracts the discriminator property from a raw JSON
// object without decoding the rest of it, so a discriminated union can pick
// which variant to decode into before committing to a concrete type. An
// object that lacks the property returns "", nil rather than an error, so
// callers can fall through to their fallback variant.
func DiscriminatorValue(data []byte, discriminatorKey string) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return "", err
	}
	raw, ok := fields[discriminatorKey]
	if !ok {
		return "", nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", err
	}
	return value, nil
}
