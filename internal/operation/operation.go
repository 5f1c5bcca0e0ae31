// Package operation implements stage 2: building the ordered list of
// operations (and webhooks) that will receive generated request/response
// types and client/server methods.
package operation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/talav/openapi-codegen/document"
)

// ParamLocation is where a parameter is carried on the wire.
type ParamLocation int

const (
	LocationPath ParamLocation = iota
	LocationQuery
	LocationHeader
	LocationCookie
)

// locationOrder fixes the path → query → header → cookie ordering contract.
var locationOrder = map[string]ParamLocation{
	"path":   LocationPath,
	"query":  LocationQuery,
	"header": LocationHeader,
	"cookie": LocationCookie,
}

// Parameter is one bound path/query/header/cookie parameter.
type Parameter struct {
	Name     string
	Location ParamLocation
	Required bool
	Schema   *document.RawSchema
}

// RequestBodyContent is one media-type entry of a request body.
type RequestBodyContent struct {
	MediaType string
	Schema    *document.RawSchema
}

// ResponseContent is one media-type entry of a response, for a given
// status code.
type ResponseContent struct {
	Status      string
	MediaType   string
	Schema      *document.RawSchema
}

// Operation is one HTTP operation bound to its parameters, body, and
// responses (§4.2).
type Operation struct {
	ID         string
	Method     string
	Path       string
	Summary    string
	Deprecated bool

	Parameters []Parameter
	RequestBody []RequestBodyContent
	Responses   []ResponseContent

	IsWebhook bool
}

// Filter restricts the operation set to only/exclude, mutually exclusive.
type Filter struct {
	Only    []string
	Exclude []string
}

var methodOrder = []struct {
	name string
	get  func(*document.PathItem) *document.RawOperation
}{
	{"GET", func(p *document.PathItem) *document.RawOperation { return p.Get }},
	{"PUT", func(p *document.PathItem) *document.RawOperation { return p.Put }},
	{"POST", func(p *document.PathItem) *document.RawOperation { return p.Post }},
	{"DELETE", func(p *document.PathItem) *document.RawOperation { return p.Delete }},
	{"OPTIONS", func(p *document.PathItem) *document.RawOperation { return p.Options }},
	{"HEAD", func(p *document.PathItem) *document.RawOperation { return p.Head }},
	{"PATCH", func(p *document.PathItem) *document.RawOperation { return p.Patch }},
	{"TRACE", func(p *document.PathItem) *document.RawOperation { return p.Trace }},
}

// Build produces the ordered operation list from a raw document, preserving
// document order (the key contract of §4.2: operations order by document
// position, schemas order lexicographically — these are deliberately
// decoupled so spec reordering never perturbs the types file).
func Build(doc *document.RawDocument, filter Filter) ([]Operation, error) {
	if len(filter.Only) > 0 && len(filter.Exclude) > 0 {
		return nil, fmt.Errorf("operation filter: only and exclude are mutually exclusive")
	}

	var ops []Operation
	for _, path := range doc.PathOrder() {
		item := doc.Paths[path]
		for _, m := range methodOrder {
			raw := m.get(item)
			if raw == nil {
				continue
			}
			ops = append(ops, buildOperation(raw, m.name, path, false))
		}
	}
	for _, path := range doc.WebhookOrder() {
		item := doc.Webhooks[path]
		for _, m := range methodOrder {
			raw := m.get(item)
			if raw == nil {
				continue
			}
			ops = append(ops, buildOperation(raw, m.name, path, true))
		}
	}

	return applyFilter(ops, filter), nil
}

func applyFilter(ops []Operation, filter Filter) []Operation {
	if len(filter.Only) == 0 && len(filter.Exclude) == 0 {
		return ops
	}
	only := toSet(filter.Only)
	exclude := toSet(filter.Exclude)
	var out []Operation
	for _, op := range ops {
		if len(only) > 0 && !only[op.ID] {
			continue
		}
		if exclude[op.ID] {
			continue
		}
		out = append(out, op)
	}
	return out
}

func toSet(ids []string) map[string]bool {
	m := map[string]bool{}
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func buildOperation(raw *document.RawOperation, method, path string, webhook bool) Operation {
	op := Operation{
		ID:         operationID(raw, method, path),
		Method:     method,
		Path:       path,
		Summary:    raw.Summary,
		Deprecated: raw.Deprecated,
		IsWebhook:  webhook,
	}

	for _, p := range raw.Parameters {
		loc, ok := locationOrder[p.In]
		if !ok {
			continue
		}
		op.Parameters = append(op.Parameters, Parameter{
			Name:     p.Name,
			Location: loc,
			Required: p.Required,
			Schema:   p.Schema,
		})
	}
	sort.SliceStable(op.Parameters, func(i, j int) bool {
		return op.Parameters[i].Location < op.Parameters[j].Location
	})

	if raw.RequestBody != nil {
		mediaTypes := make([]string, 0, len(raw.RequestBody.Content))
		for mt := range raw.RequestBody.Content {
			mediaTypes = append(mediaTypes, mt)
		}
		sort.Strings(mediaTypes)
		for _, mt := range mediaTypes {
			op.RequestBody = append(op.RequestBody, RequestBodyContent{
				MediaType: mt,
				Schema:    raw.RequestBody.Content[mt].Schema,
			})
		}
	}

	statuses := make([]string, 0, len(raw.Responses))
	for s := range raw.Responses {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		resp := raw.Responses[status]
		if len(resp.Content) == 0 {
			op.Responses = append(op.Responses, ResponseContent{Status: status})
			continue
		}
		mediaTypes := make([]string, 0, len(resp.Content))
		for mt := range resp.Content {
			mediaTypes = append(mediaTypes, mt)
		}
		sort.Strings(mediaTypes)
		for _, mt := range mediaTypes {
			op.Responses = append(op.Responses, ResponseContent{
				Status:    status,
				MediaType: mt,
				Schema:    resp.Content[mt].Schema,
			})
		}
	}

	return op
}

// operationID sanitizes raw.OperationID, or synthesizes one from the
// method and path when absent.
func operationID(raw *document.RawOperation, method, path string) string {
	if raw.OperationID != "" {
		return raw.OperationID
	}
	cleaned := strings.NewReplacer("/", "_", "{", "", "}", "").Replace(path)
	return strings.ToLower(method) + cleaned
}
