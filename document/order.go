package document

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
)

// extractKeyOrder recovers the document-order key sequence of one top-level
// mapping key (e.g. "paths", "webhooks") from the raw input bytes. Go's
// map type and this module's YAML library both discard key order on
// decode, but §4.2 requires operations to preserve document order, so the
// order has to be recovered from the source text itself.
//
// For JSON input this is exact (encoding/json's Decoder is a token stream
// that preserves object key order natively). For YAML input it is a
// best-effort indentation scan: once the "key:" line introducing the
// mapping is found, every subsequent line indented exactly one step deeper
// whose own line matches "name:" is a sibling key, in the order it appears.
func extractKeyOrder(data []byte, topKey string) []string {
	if looksLikeJSON(data) {
		if order, ok := extractJSONKeyOrder(data, topKey); ok {
			return order
		}
		return nil
	}
	return extractYAMLKeyOrder(data, topKey)
}

func extractJSONKeyOrder(data []byte, topKey string) ([]string, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var walk func() ([]string, bool)
	walk = func() ([]string, bool) {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		delim, ok := tok.(json.Delim)
		if !ok || delim != '{' {
			return nil, false
		}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, false
			}
			key, _ := keyTok.(string)
			if key == topKey {
				return collectObjectKeys(dec)
			}
			if err := skipValue(dec); err != nil {
				return nil, false
			}
		}
		return nil, false
	}
	return walk()
}

func collectObjectKeys(dec *json.Decoder) ([]string, bool) {
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return nil, false
	}
	var keys []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, _ := keyTok.(string)
		keys = append(keys, key)
		if err := skipValue(dec); err != nil {
			return nil, false
		}
	}
	// consume closing delimiter
	if _, err := dec.Token(); err != nil {
		return nil, false
	}
	return keys, true
}

// skipValue advances dec past one JSON value, whatever its shape.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil // scalar value already consumed
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	_ = delim
	return nil
}

func extractYAMLKeyOrder(data []byte, topKey string) []string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	topIndent := -1
	childIndent := -1
	var keys []string
	inSection := false

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" || strings.HasPrefix(strings.TrimSpace(trimmed), "#") {
			continue
		}
		indent := len(line) - len(trimmed)

		if !inSection {
			if indent == 0 && (trimmed == topKey+":" || strings.HasPrefix(trimmed, topKey+":")) {
				inSection = true
				topIndent = indent
			}
			continue
		}

		if indent <= topIndent {
			break // left the section
		}

		if childIndent == -1 {
			childIndent = indent
		}
		if indent != childIndent {
			continue // nested content under a sibling key
		}

		key, ok := yamlMappingKey(trimmed)
		if ok {
			keys = append(keys, key)
		}
	}

	return keys
}

func yamlMappingKey(line string) (string, bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", false
	}
	key := strings.TrimSpace(line[:idx])
	key = strings.Trim(key, `"'`)
	if key == "" {
		return "", false
	}
	return key, true
}
