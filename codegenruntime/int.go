package codegenruntime

import "strconv"

// ParseInt32 parses a decimal string into an int32, the shape generated
// code needs wherever strconv's own ParseInt (which only returns int64)
// doesn't match the field's declared width.
func ParseInt32(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}
