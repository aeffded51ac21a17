package operation

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/griffnb/core-openapi/internal/domain"
	"github.com/griffnb/core-openapi/internal/schema"
)

const (
	// MimeJSON is the media type of every synthesized body.
	MimeJSON = "application/json"

	successDescription = "Successful response"
)

// Operation is a synthesized operation, still holding schema trees.
type Operation struct {
	// ID is "<path>-<method>", computed from the method the endpoint declared
	ID string

	Path string

	// Method may differ from the endpoint's method after a GET to POST rewrite
	Method string

	Summary      string
	Description  string
	ExternalDocs *domain.ExternalDocs
	Tags         []string
	Security     []map[string][]string
	Parameters   []*schema.Parameter
	RequestBody  *schema.Schema

	// Responses ordered by status code
	Responses []Response
}

// Response is one response of an operation.
type Response struct {
	Code        int
	Description string
	Schema      *schema.Schema
}

// Parameter returns the named parameter.
func (o *Operation) Parameter(name string) (*schema.Parameter, bool) {
	for _, p := range o.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Response returns the response of a status code.
func (o *Operation) Response(code int) (Response, bool) {
	for _, r := range o.Responses {
		if r.Code == code {
			return r, true
		}
	}
	return Response{}, false
}

func (o *Operation) addResponse(r Response) {
	for i := range o.Responses {
		if o.Responses[i].Code == r.Code {
			o.Responses[i] = r
			return
		}
	}
	o.Responses = append(o.Responses, r)
	sort.SliceStable(o.Responses, func(i, j int) bool {
		return o.Responses[i].Code < o.Responses[j].Code
	})
}

// ToOpenAPI converts the operation to the OpenAPI 3 model.
func (o *Operation) ToOpenAPI() *openapi3.Operation {
	out := &openapi3.Operation{
		Tags:        o.Tags,
		Summary:     o.Summary,
		Description: o.Description,
		OperationID: o.ID,
		Responses:   make(openapi3.Responses, len(o.Responses)),
	}

	if o.ExternalDocs != nil {
		out.ExternalDocs = &openapi3.ExternalDocs{
			URL:         o.ExternalDocs.URL,
			Description: o.ExternalDocs.Description,
		}
	}

	if len(o.Security) > 0 {
		requirements := openapi3.NewSecurityRequirements()
		for _, requirement := range o.Security {
			requirements.With(openapi3.SecurityRequirement(requirement))
		}
		out.Security = requirements
	}

	for _, p := range o.Parameters {
		out.Parameters = append(out.Parameters, &openapi3.ParameterRef{Value: schema.ParameterToOpenAPI(p)})
	}

	if o.RequestBody != nil {
		body := openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchema(schema.ToOpenAPI(o.RequestBody))
		out.RequestBody = &openapi3.RequestBodyRef{Value: body}
	}

	for _, r := range o.Responses {
		response := openapi3.NewResponse().WithDescription(r.Description)
		if r.Schema != nil {
			response.WithJSONSchema(schema.ToOpenAPI(r.Schema))
		}
		out.Responses[strconv.Itoa(r.Code)] = &openapi3.ResponseRef{Value: response}
	}
	return out
}

func statusDescription(code int) string {
	if code == http.StatusOK {
		return successDescription
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Response " + strconv.Itoa(code)
}
