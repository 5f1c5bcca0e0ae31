package convert

import "sort"

// RegexTable deduplicates validation patterns into a module-level constant
// table keyed by pattern source (§4.3.2), so two fields sharing the same
// regex emit one constant instead of two identical literals.
//
// Patterns are stored as source strings and not compiled here (the emitted
// code compiles them with regexp.MustCompile); sort is the only library
// used, and no example in the corpus reaches for a third-party regex
// library for constant-table deduplication (see DESIGN.md).
type RegexTable struct {
	byPattern map[string]string // pattern source -> constant name
	order     []string          // pattern sources, first-seen order
}

// NewRegexTable constructs an empty table.
func NewRegexTable() *RegexTable {
	return &RegexTable{byPattern: map[string]string{}}
}

// Intern registers pattern (if new) and returns its constant name.
func (t *RegexTable) Intern(pattern string) string {
	if name, ok := t.byPattern[pattern]; ok {
		return name
	}
	name := patternConstantName(len(t.order))
	t.byPattern[pattern] = name
	t.order = append(t.order, pattern)
	return name
}

// Entries returns (constant name, pattern) pairs in a stable, sorted-by-name
// order suitable for deterministic emission.
func (t *RegexTable) Entries() []RegexEntry {
	entries := make([]RegexEntry, 0, len(t.order))
	for _, pattern := range t.order {
		entries = append(entries, RegexEntry{Name: t.byPattern[pattern], Pattern: pattern})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// RegexEntry is one module-level regex constant.
type RegexEntry struct {
	Name    string
	Pattern string
}

func patternConstantName(index int) string {
	const base = 26
	name := ""
	n := index
	for {
		name = string(rune('A'+n%base)) + name
		n = n/base - 1
		if n < 0 {
			break
		}
	}
	return "pattern" + name
}
