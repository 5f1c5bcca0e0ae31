// Package convert implements stage 3: converting ResolvedSchemas into
// nominal ATR types plus TypeRefs, including inline-type hoisting,
// fingerprint-based deduplication, and name uniqueness.
package convert

import (
	"fmt"
	"sort"
	"unicode"

	"github.com/talav/openapi-codegen/internal/registry"
)

// TypeCache maps schema fingerprints to the nominal type name already
// registered for them, so structurally identical schemas anywhere in the
// document produce exactly one generated type (§3.3, §4.3.6). It is
// stage-local and single-writer (§5): only the Converter that owns it
// mutates it, and every mutation reads first, writes on miss.
type TypeCache struct {
	byFingerprint map[string]string
	names         *NameRegistry
}

// NewTypeCache constructs an empty cache backed by the given name registry.
func NewTypeCache(names *NameRegistry) *TypeCache {
	return &TypeCache{byFingerprint: map[string]string{}, names: names}
}

// Lookup returns the name already registered for fingerprint, if any.
func (c *TypeCache) Lookup(fingerprint string) (string, bool) {
	name, ok := c.byFingerprint[fingerprint]
	return name, ok
}

// Register binds fingerprint to baseName, resolving any collision in the
// underlying NameRegistry by numeric suffixing unless the colliding name's
// fingerprint already matches (§4.3.6 steps 2-3).
func (c *TypeCache) Register(fingerprint, baseName string) string {
	if name, ok := c.byFingerprint[fingerprint]; ok {
		return name
	}
	name := c.names.Reserve(baseName, fingerprint)
	c.byFingerprint[fingerprint] = name
	return name
}

// NameRegistry ensures every chosen nominal name is a unique target-language
// identifier, tracking which fingerprint currently owns each name so a
// re-request for the same shape reuses it instead of suffixing needlessly.
type NameRegistry struct {
	owners map[string]string // name -> fingerprint that owns it
}

// NewNameRegistry constructs an empty registry.
func NewNameRegistry() *NameRegistry {
	return &NameRegistry{owners: map[string]string{}}
}

// Reserve returns a unique name derived from base for fingerprint. If base
// is unclaimed, or already claimed by the same fingerprint, it is returned
// as-is; otherwise it is suffixed with 2, 3, … until free.
func (r *NameRegistry) Reserve(base, fingerprint string) string {
	if owner, ok := r.owners[base]; !ok || owner == fingerprint {
		r.owners[base] = fingerprint
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s%d", base, n)
		if owner, ok := r.owners[candidate]; !ok || owner == fingerprint {
			r.owners[candidate] = fingerprint
			return candidate
		}
	}
}

// Reserved reports whether name is already claimed by some fingerprint.
func (r *NameRegistry) Reserved(name string) bool {
	_, ok := r.owners[name]
	return ok
}

// Identifier exposes goIdentifier to other stage packages (e.g. opconvert)
// that need the same schema/property-name-to-Go-identifier sanitization
// without duplicating it.
func Identifier(name string) string { return goIdentifier(name) }

// goIdentifier sanitizes an arbitrary schema/property name into an
// exported Go identifier: non-letter/digit runes are treated as word
// separators and the first rune of each word is upper-cased.
func goIdentifier(name string) string {
	if name == "" {
		return "Value"
	}
	var out []rune
	upperNext := true
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if upperNext {
				out = append(out, unicode.ToUpper(r))
				upperNext = false
			} else {
				out = append(out, r)
			}
		default:
			upperNext = true
		}
	}
	if len(out) == 0 {
		return "Value"
	}
	if unicode.IsDigit(out[0]) {
		out = append([]rune{'X'}, out...)
	}
	return string(out)
}

// inlineName derives a hoisted nominal name for an inline schema from its
// naming context (§4.3.6): parent type name plus a context-specific
// suffix, e.g. "PetTag", "PetItem", "ColorVariant".
func inlineName(parent, field, suffix string) string {
	base := parent
	if field != "" {
		base += goIdentifier(field)
	}
	if suffix != "" {
		base += suffix
	}
	return goIdentifier(base)
}

// sortedSchemaNames is a small helper shared by converters that need a
// deterministic walk order over a ResolvedSchema's properties, since
// §5 forbids any hash-ordered container from affecting output.
func sortedSchemaNames(m map[string]*registry.ResolvedSchema) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
