// Package opconvert implements stage 4: converting each Operation into its
// request type, response type, and path-render metadata, and seeding the
// request/response usage bits the postprocessor (stage 5) propagates to a
// fixed point.
package opconvert

import (
	"fmt"
	"strings"

	"github.com/talav/openapi-codegen/document"
	"github.com/talav/openapi-codegen/internal/atr"
	"github.com/talav/openapi-codegen/internal/convert"
	"github.com/talav/openapi-codegen/internal/operation"
	"github.com/talav/openapi-codegen/internal/registry"
)

// OperationTypes names the ATR types stage 4 produced for one operation,
// plus the metadata the emitter needs to render a client/server method.
type OperationTypes struct {
	Operation operation.Operation

	// RequestTypeName is "" when the operation takes no parameters or body.
	RequestTypeName string
	// ResponseTypeName is "" when the operation declares no responses.
	ResponseTypeName string

	// PathTemplate is the OpenAPI path template, e.g. "/pets/{petId}".
	PathTemplate string
	// PathParams lists, in declaration order, the names of the path-located
	// parameters the render helper must substitute into PathTemplate.
	PathParams []string

	// QueryParams, HeaderParams, and CookieParams describe the fields of the
	// nested Query/Header/Cookie sub-records on RequestTypeName (§4.4), so
	// the client/server renderers can build and extract them by name without
	// re-deriving the sub-record shape from the ATR node list.
	QueryParams  []ParamField
	HeaderParams []ParamField
	CookieParams []ParamField

	// HasRequestBody reports whether RequestTypeName carries a Body field.
	HasRequestBody bool
}

// ParamField names one field of a Path/Query/Header/Cookie sub-record: its
// Go identifier, its wire name, whether it is required, and the resolved
// type the emitter needs to parse a wire string into the field's Go type.
type ParamField struct {
	Name     string
	WireName string
	Required bool
	Type     *atr.TypeRef
}

// locationGroups fixes the nested-struct naming and ordering contract for
// request sub-records (§4.4): every populated location becomes one nested
// struct, named by title-casing the location.
var locationGroups = []struct {
	loc  operation.ParamLocation
	name string
}{
	{operation.LocationPath, "Path"},
	{operation.LocationQuery, "Query"},
	{operation.LocationHeader, "Header"},
	{operation.LocationCookie, "Cookie"},
}

// Converter is stage 4's OperationConverter.
type Converter struct {
	reg  *registry.Registry
	conv *convert.Converter
}

// New constructs a Converter. reg must be the same Registry that produced
// the ResolvedSpec conv was built over, so ad hoc operation schemas (which
// live in the raw document rather than the component map) resolve through
// the identical $ref-chasing and allOf-flattening logic as named schemas.
func New(reg *registry.Registry, conv *convert.Converter) *Converter {
	return &Converter{reg: reg, conv: conv}
}

// Convert builds request/response ATR types for every operation, in the
// order given — document order, per §4.2's operation-ordering contract.
func (c *Converter) Convert(ops []operation.Operation) ([]OperationTypes, error) {
	out := make([]OperationTypes, 0, len(ops))
	for _, op := range ops {
		ot, err := c.convertOne(op)
		if err != nil {
			return nil, fmt.Errorf("while converting operation %q: %w", op.ID, err)
		}
		out = append(out, ot)
	}
	return out, nil
}

func (c *Converter) convertOne(op operation.Operation) (OperationTypes, error) {
	id := convert.Identifier(op.ID)
	ot := OperationTypes{Operation: op, PathTemplate: op.Path}

	for _, p := range op.Parameters {
		if p.Location == operation.LocationPath {
			ot.PathParams = append(ot.PathParams, p.Name)
		}
	}

	if err := c.buildRequestType(&ot, id, op); err != nil {
		return OperationTypes{}, err
	}

	respName, err := c.buildResponseType(id, op)
	if err != nil {
		return OperationTypes{}, err
	}
	ot.ResponseTypeName = respName

	return ot, nil
}

// buildRequestType implements the request half of §4.4: one RecordType
// whose fields are the union of path/query/header/cookie parameters (each
// location grouped into its own nested sub-record) plus an optional body
// field, with every reachable type seeded in_request_position. The
// Go-identifier/wire-name/required triples for each populated location are
// additionally recorded onto ot so the client/server renderers can build
// and extract them without re-deriving sub-record shape from the ATR.
func (c *Converter) buildRequestType(ot *OperationTypes, id string, op operation.Operation) error {
	byLocation := map[operation.ParamLocation][]operation.Parameter{}
	for _, p := range op.Parameters {
		byLocation[p.Location] = append(byLocation[p.Location], p)
	}

	record := &atr.RecordType{Name: id + "Request"}
	present := false

	for _, g := range locationGroups {
		params := byLocation[g.loc]
		if len(params) == 0 {
			continue
		}
		present = true

		subName := id + g.name
		sub := &atr.RecordType{Name: subName}
		var fields []ParamField
		for _, p := range params {
			fieldRef, err := c.resolveSchema(subName, p.Name, p.Schema)
			if err != nil {
				return err
			}
			c.conv.MarkUsage(fieldRef, true, false)
			if !p.Required && !fieldRef.IsOptional() {
				fieldRef = atr.Optional(fieldRef)
			}
			sub.Fields = append(sub.Fields, atr.Field{
				Name:     convert.Identifier(p.Name),
				WireName: p.Name,
				Type:     fieldRef,
				Required: p.Required,
			})
			fields = append(fields, ParamField{
				Name:     convert.Identifier(p.Name),
				WireName: p.Name,
				Required: p.Required,
				Type:     fieldRef,
			})
		}
		c.conv.RegisterNode(&atr.Node{Kind: atr.NodeRecord, Record: sub})
		c.conv.MarkUsage(atr.Named(subName), true, false)

		record.Fields = append(record.Fields, atr.Field{
			Name:     g.name,
			WireName: strings.ToLower(g.name),
			Type:     atr.Named(subName),
			Required: true,
		})

		switch g.loc {
		case operation.LocationQuery:
			ot.QueryParams = fields
		case operation.LocationHeader:
			ot.HeaderParams = fields
		case operation.LocationCookie:
			ot.CookieParams = fields
		}
	}

	if len(op.RequestBody) > 0 {
		present = true
		// The first (lexicographically earliest) media type is the request
		// body's canonical representation; additional media types on the
		// same operation are a documentation nicety this generator does not
		// model as alternative wire encodings.
		body := op.RequestBody[0]
		bodyRef, err := c.resolveSchema(id, "Body", body.Schema)
		if err != nil {
			return err
		}
		c.conv.MarkUsage(bodyRef, true, false)
		record.Fields = append(record.Fields, atr.Field{
			Name:     "Body",
			WireName: "body",
			Type:     bodyRef,
			Required: true,
		})
		ot.HasRequestBody = true
	}

	if !present {
		return nil
	}

	c.conv.RegisterNode(&atr.Node{Kind: atr.NodeRecord, Record: record})
	c.conv.MarkUsage(atr.Named(record.Name), true, false)
	ot.RequestTypeName = record.Name
	return nil
}

// buildResponseType implements the response half of §4.4: a
// ResponseEnumType whose variants are (status, content-type) pairs, plus
// the Unknown fallback, with every reachable type seeded
// in_response_position. Webhooks go through the identical construction
// (§4.4: "emit webhook types identically to response types").
func (c *Converter) buildResponseType(id string, op operation.Operation) (string, error) {
	if len(op.Responses) == 0 {
		return "", nil
	}

	kind := "Response"
	if op.IsWebhook {
		kind = "Webhook"
	}
	name := id + kind

	resp := &atr.ResponseEnumType{Name: name}
	for _, r := range op.Responses {
		var payload *atr.TypeRef
		if r.Schema != nil {
			fieldName := r.Status + "_" + sanitizeContentType(r.MediaType)
			var err error
			payload, err = c.resolveSchema(name, fieldName, r.Schema)
			if err != nil {
				return "", err
			}
			c.conv.MarkUsage(payload, false, true)
		}
		resp.Variants = append(resp.Variants, atr.ResponseVariant{
			Status:      r.Status,
			ContentType: r.MediaType,
			Payload:     payload,
		})
	}

	// Unknown fallback (§4.4): an empty-Status entry absorbing any
	// (status, content-type) pair the declared variants don't cover.
	resp.Variants = append(resp.Variants, atr.ResponseVariant{
		Payload: atr.PrimitiveRef(atr.PrimitiveBytes),
	})

	c.conv.RegisterNode(&atr.Node{Kind: atr.NodeResponseEnum, ResponseEnum: resp})
	c.conv.MarkUsage(atr.Named(name), false, true)
	return name, nil
}

// resolveSchema normalizes an ad hoc document schema through the registry
// and converts it through the shared stage-3 Converter, so parameter and
// body schemas benefit from the same dedup/naming discipline as component
// schemas.
func (c *Converter) resolveSchema(parent, field string, raw *document.RawSchema) (*atr.TypeRef, error) {
	resolved, err := c.reg.ResolveInline(raw, "#/"+parent+"/"+field)
	if err != nil {
		return nil, err
	}
	return c.conv.Resolve(resolved, convert.Context{ParentName: parent, FieldName: field, RequiredHere: true})
}

func sanitizeContentType(ct string) string {
	r := strings.NewReplacer("/", "_", "+", "_", ".", "_", "-", "_")
	return r.Replace(ct)
}
