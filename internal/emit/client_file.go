package emit

import (
	"fmt"
	"strings"

	"github.com/talav/openapi-codegen/internal/convert"
	"github.com/talav/openapi-codegen/internal/opconvert"
)

// clientFile renders one Client method per non-webhook operation, in
// document order (§4.2, §4.6).
func clientFile(ops []opconvert.OperationTypes) string {
	var hasMethod bool
	for _, op := range ops {
		if !op.Operation.IsWebhook {
			hasMethod = true
			break
		}
	}

	var b strings.Builder
	b.WriteString("// Code generated by openapi-codegen. DO NOT EDIT.\n\n")
	b.WriteString("package codegentypes\n\n")
	b.WriteString("import (\n")
	b.WriteString("\t\"net/http\"\n")
	if hasMethod {
		b.WriteString("\t\"bytes\"\n")
		b.WriteString("\t\"context\"\n")
		b.WriteString("\t\"encoding/json\"\n")
		b.WriteString("\t\"fmt\"\n")
		b.WriteString("\t\"io\"\n")
		b.WriteString("\t\"net/url\"\n")
		b.WriteString("\t\"strings\"\n")
	}
	b.WriteString(")\n\n")

	b.WriteString("// Client issues requests for every generated operation against baseURL.\n")
	b.WriteString("type Client struct {\n")
	b.WriteString("\tbaseURL    string\n")
	b.WriteString("\thttpClient *http.Client\n")
	b.WriteString("}\n\n")
	b.WriteString("// NewClient constructs a Client bound to baseURL, using http.DefaultClient\n")
	b.WriteString("// when httpClient is nil.\n")
	b.WriteString("func NewClient(baseURL string, httpClient *http.Client) *Client {\n")
	b.WriteString("\tif httpClient == nil {\n\t\thttpClient = http.DefaultClient\n\t}\n")
	b.WriteString("\treturn &Client{baseURL: baseURL, httpClient: httpClient}\n")
	b.WriteString("}\n\n")

	for _, op := range ops {
		if op.Operation.IsWebhook {
			continue
		}
		b.WriteString(renderClientMethod(op))
	}

	return b.String()
}

func renderClientMethod(op opconvert.OperationTypes) string {
	var b strings.Builder
	id := convert.Identifier(op.Operation.ID)

	reqType := "struct{}"
	if op.RequestTypeName != "" {
		reqType = op.RequestTypeName
	}
	hasResp := op.ResponseTypeName != ""
	respType := "any"
	if hasResp {
		respType = op.ResponseTypeName
	}

	if op.Operation.Summary != "" {
		fmt.Fprintf(&b, "// %s calls %s %s.\n// %s\n", id, op.Operation.Method, op.Operation.Path, op.Operation.Summary)
	} else {
		fmt.Fprintf(&b, "// %s calls %s %s.\n", id, op.Operation.Method, op.Operation.Path)
	}

	if hasResp {
		fmt.Fprintf(&b, "func (c *Client) %s(ctx context.Context, req *%s) (*%s, error) {\n", id, reqType, respType)
	} else {
		fmt.Fprintf(&b, "func (c *Client) %s(ctx context.Context, req *%s) (any, error) {\n", id, reqType)
	}

	fmt.Fprintf(&b, "\tpath := %s\n", renderPathExpr(op))
	b.WriteString(renderClientQueryExpr(op))
	b.WriteString(renderClientBodyExpr(op))
	fmt.Fprintf(&b, "\thttpReq, err := http.NewRequestWithContext(ctx, %q, c.baseURL+path+query, bodyReader)\n", op.Operation.Method)
	b.WriteString("\tif err != nil {\n\t\treturn nil, fmt.Errorf(\"building request: %w\", err)\n\t}\n")
	b.WriteString(renderClientHeaderStmts(op))
	b.WriteString(renderClientCookieStmts(op))
	if op.HasRequestBody {
		b.WriteString("\thttpReq.Header.Set(\"Content-Type\", \"application/json\")\n")
	}
	b.WriteString("\thttpResp, err := c.httpClient.Do(httpReq)\n")
	b.WriteString("\tif err != nil {\n\t\treturn nil, fmt.Errorf(\"performing request: %w\", err)\n\t}\n")
	b.WriteString("\tdefer httpResp.Body.Close()\n")

	if !hasResp {
		b.WriteString("\tio.Copy(io.Discard, httpResp.Body)\n")
		b.WriteString("\treturn nil, nil\n")
		b.WriteString("}\n\n")
		return b.String()
	}

	b.WriteString("\tbodyBytes, err := io.ReadAll(httpResp.Body)\n")
	b.WriteString("\tif err != nil {\n\t\treturn nil, fmt.Errorf(\"reading response body: %w\", err)\n\t}\n")
	fmt.Fprintf(&b, "\tresp := &%s{}\n", respType)
	b.WriteString("\tif err := resp.UnmarshalHTTP(httpResp.StatusCode, httpResp.Header.Get(\"Content-Type\"), bodyBytes); err != nil {\n")
	b.WriteString("\t\treturn nil, fmt.Errorf(\"decoding response: %w\", err)\n\t}\n")
	b.WriteString("\treturn resp, nil\n")
	b.WriteString("}\n\n")
	return b.String()
}

// renderClientQueryExpr builds the "query" local (a leading "?"-prefixed
// query string, or "" when the operation has none) from req.Query's fields.
func renderClientQueryExpr(op opconvert.OperationTypes) string {
	if len(op.QueryParams) == 0 {
		return "\tquery := \"\"\n"
	}
	var b strings.Builder
	b.WriteString("\tqueryValues := url.Values{}\n")
	for _, p := range op.QueryParams {
		if p.Required {
			fmt.Fprintf(&b, "\tqueryValues.Set(%q, fmt.Sprint(req.Query.%s))\n", p.WireName, p.Name)
			continue
		}
		fmt.Fprintf(&b, "\tif req.Query.%s != nil {\n", p.Name)
		fmt.Fprintf(&b, "\t\tqueryValues.Set(%q, fmt.Sprint(*req.Query.%s))\n", p.WireName, p.Name)
		b.WriteString("\t}\n")
	}
	b.WriteString("\tquery := \"\"\n")
	b.WriteString("\tif len(queryValues) > 0 {\n\t\tquery = \"?\" + queryValues.Encode()\n\t}\n")
	return b.String()
}

// renderClientBodyExpr builds the "bodyReader" local passed to
// http.NewRequestWithContext: the JSON-encoded request body, or a nil
// io.Reader for operations with no body.
func renderClientBodyExpr(op opconvert.OperationTypes) string {
	if !op.HasRequestBody {
		return "\tvar bodyReader io.Reader\n"
	}
	var b strings.Builder
	b.WriteString("\tbodyBytesOut, err := json.Marshal(req.Body)\n")
	b.WriteString("\tif err != nil {\n\t\treturn nil, fmt.Errorf(\"encoding request body: %w\", err)\n\t}\n")
	b.WriteString("\tbodyReader := bytes.NewReader(bodyBytesOut)\n")
	return b.String()
}

func renderClientHeaderStmts(op opconvert.OperationTypes) string {
	var b strings.Builder
	for _, p := range op.HeaderParams {
		if p.Required {
			fmt.Fprintf(&b, "\thttpReq.Header.Set(%q, fmt.Sprint(req.Header.%s))\n", p.WireName, p.Name)
			continue
		}
		fmt.Fprintf(&b, "\tif req.Header.%s != nil {\n", p.Name)
		fmt.Fprintf(&b, "\t\thttpReq.Header.Set(%q, fmt.Sprint(*req.Header.%s))\n", p.WireName, p.Name)
		b.WriteString("\t}\n")
	}
	return b.String()
}

func renderClientCookieStmts(op opconvert.OperationTypes) string {
	var b strings.Builder
	for _, p := range op.CookieParams {
		if p.Required {
			fmt.Fprintf(&b, "\thttpReq.AddCookie(&http.Cookie{Name: %q, Value: fmt.Sprint(req.Cookie.%s)})\n", p.WireName, p.Name)
			continue
		}
		fmt.Fprintf(&b, "\tif req.Cookie.%s != nil {\n", p.Name)
		fmt.Fprintf(&b, "\t\thttpReq.AddCookie(&http.Cookie{Name: %q, Value: fmt.Sprint(*req.Cookie.%s)})\n", p.WireName, p.Name)
		b.WriteString("\t}\n")
	}
	return b.String()
}

// renderPathExpr builds the Go expression that substitutes every
// "{name}" placeholder in the path template with its percent-encoded,
// formatted parameter value (§4.4's path-render helper).
func renderPathExpr(op opconvert.OperationTypes) string {
	if len(op.PathParams) == 0 {
		return fmt.Sprintf("%q", op.PathTemplate)
	}
	var pairs []string
	for _, p := range op.PathParams {
		pairs = append(pairs, fmt.Sprintf("%q, url.PathEscape(fmt.Sprint(req.Path.%s))", "{"+p+"}", convert.Identifier(p)))
	}
	return fmt.Sprintf("strings.NewReplacer(%s).Replace(%q)", strings.Join(pairs, ", "), op.PathTemplate)
}
