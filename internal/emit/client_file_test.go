package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talav/openapi-codegen/internal/opconvert"
	"github.com/talav/openapi-codegen/internal/operation"
)

func TestClientFile_SkipsWebhooks(t *testing.T) {
	ops := []opconvert.OperationTypes{
		{Operation: operation.Operation{ID: "listPets", Method: "GET", Path: "/pets"}, PathTemplate: "/pets"},
		{Operation: operation.Operation{ID: "petCreated", Method: "POST", Path: "/hooks/pet", IsWebhook: true}, PathTemplate: "/hooks/pet"},
	}
	out := clientFile(ops)
	assert.Contains(t, out, "func (c *Client) ListPets(")
	assert.NotContains(t, out, "func (c *Client) PetCreated(")
}

func TestRenderClientMethod_UsesSummaryWhenPresent(t *testing.T) {
	op := opconvert.OperationTypes{
		Operation:    operation.Operation{ID: "listPets", Method: "GET", Path: "/pets", Summary: "List all pets"},
		PathTemplate: "/pets",
	}
	out := renderClientMethod(op)
	assert.Contains(t, out, "// List all pets")
}

func TestRenderClientMethod_DefaultsRequestAndResponseTypesWhenEmpty(t *testing.T) {
	op := opconvert.OperationTypes{
		Operation:    operation.Operation{ID: "ping", Method: "GET", Path: "/ping"},
		PathTemplate: "/ping",
	}
	out := renderClientMethod(op)
	assert.Contains(t, out, "req *struct{}")
	assert.Contains(t, out, ") (any, error)")
	assert.Contains(t, out, "io.Copy(io.Discard, httpResp.Body)")
}

func TestRenderClientMethod_NamesRequestAndResponseTypesWhenPresent(t *testing.T) {
	op := opconvert.OperationTypes{
		Operation:        operation.Operation{ID: "getPet", Method: "GET", Path: "/pets/{petId}"},
		PathTemplate:     "/pets/{petId}",
		PathParams:       []string{"petId"},
		RequestTypeName:  "GetPetRequest",
		ResponseTypeName: "GetPetResponse",
	}
	out := renderClientMethod(op)
	assert.Contains(t, out, "req *GetPetRequest")
	assert.Contains(t, out, "*GetPetResponse, error")
	assert.Contains(t, out, "resp.UnmarshalHTTP(httpResp.StatusCode, httpResp.Header.Get(\"Content-Type\"), bodyBytes)")
}

func TestRenderClientMethod_BuildsQueryStringFromOptionalAndRequiredParams(t *testing.T) {
	op := opconvert.OperationTypes{
		Operation:        operation.Operation{ID: "listPets", Method: "GET", Path: "/pets"},
		PathTemplate:     "/pets",
		RequestTypeName:  "ListPetsRequest",
		ResponseTypeName: "ListPetsResponse",
		QueryParams: []opconvert.ParamField{
			{Name: "Limit", WireName: "limit", Required: false},
			{Name: "Tag", WireName: "tag", Required: true},
		},
	}
	out := renderClientMethod(op)
	assert.Contains(t, out, "queryValues := url.Values{}")
	assert.Contains(t, out, "if req.Query.Limit != nil {")
	assert.Contains(t, out, `queryValues.Set("limit", fmt.Sprint(*req.Query.Limit))`)
	assert.Contains(t, out, `queryValues.Set("tag", fmt.Sprint(req.Query.Tag))`)
	assert.Contains(t, out, `query = "?" + queryValues.Encode()`)
}

func TestRenderClientMethod_EncodesRequestBodyAndSetsContentType(t *testing.T) {
	op := opconvert.OperationTypes{
		Operation:        operation.Operation{ID: "createPet", Method: "POST", Path: "/pets"},
		PathTemplate:     "/pets",
		RequestTypeName:  "CreatePetRequest",
		ResponseTypeName: "CreatePetResponse",
		HasRequestBody:   true,
	}
	out := renderClientMethod(op)
	assert.Contains(t, out, "json.Marshal(req.Body)")
	assert.Contains(t, out, "bytes.NewReader(bodyBytesOut)")
	assert.Contains(t, out, `httpReq.Header.Set("Content-Type", "application/json")`)
}

func TestRenderClientMethod_SetsHeadersAndCookies(t *testing.T) {
	op := opconvert.OperationTypes{
		Operation:        operation.Operation{ID: "getPet", Method: "GET", Path: "/pets/{petId}"},
		PathTemplate:     "/pets/{petId}",
		PathParams:       []string{"petId"},
		RequestTypeName:  "GetPetRequest",
		ResponseTypeName: "GetPetResponse",
		HeaderParams: []opconvert.ParamField{
			{Name: "XRequestId", WireName: "X-Request-Id", Required: true},
		},
		CookieParams: []opconvert.ParamField{
			{Name: "SessionId", WireName: "session_id", Required: false},
		},
	}
	out := renderClientMethod(op)
	assert.Contains(t, out, `httpReq.Header.Set("X-Request-Id", fmt.Sprint(req.Header.XRequestId))`)
	assert.Contains(t, out, "if req.Cookie.SessionId != nil {")
	assert.Contains(t, out, `http.Cookie{Name: "session_id", Value: fmt.Sprint(*req.Cookie.SessionId)}`)
}

func TestRenderPathExpr_NoParamsIsLiteral(t *testing.T) {
	op := opconvert.OperationTypes{PathTemplate: "/pets"}
	assert.Equal(t, `"/pets"`, renderPathExpr(op))
}

func TestRenderPathExpr_SubstitutesPathParams(t *testing.T) {
	op := opconvert.OperationTypes{PathTemplate: "/pets/{petId}", PathParams: []string{"petId"}}
	out := renderPathExpr(op)
	assert.Contains(t, out, `"{petId}"`)
	assert.Contains(t, out, "req.Path.PetId")
	assert.Contains(t, out, "strings.NewReplacer(")
}
