package registry

import "sort"

// detectCycles runs Tarjan's strongly-connected-components algorithm over
// the dependency graph and marks a schema cyclic iff it participates in an
// SCC of size ≥2 or has a self-edge (§4.1 detect_cycles).
func detectCycles(graph map[string][]string) map[string]bool {
	names := make([]string, 0, len(graph))
	for n := range graph {
		names = append(names, n)
	}
	sort.Strings(names)

	t := &tarjan{
		graph:   graph,
		index:   map[string]int{},
		lowlink: map[string]int{},
		onStack: map[string]bool{},
		cyclic:  map[string]bool{},
	}
	for _, n := range names {
		if _, seen := t.index[n]; !seen {
			t.strongConnect(n)
		}
	}
	return t.cyclic
}

type tarjan struct {
	graph   map[string][]string
	index   map[string]int
	lowlink map[string]int
	onStack map[string]bool
	stack   []string
	counter int
	cyclic  map[string]bool
}

func (t *tarjan) strongConnect(v string) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.graph[v] {
		if w == v {
			t.cyclic[v] = true // self-edge
		}
		if _, seen := t.index[w]; !seen {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] != t.index[v] {
		return
	}

	var component []string
	for {
		n := len(t.stack) - 1
		w := t.stack[n]
		t.stack = t.stack[:n]
		t.onStack[w] = false
		component = append(component, w)
		if w == v {
			break
		}
	}

	if len(component) >= 2 {
		for _, n := range component {
			t.cyclic[n] = true
		}
	}
}
