package orchestrator

import (
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/griffnb/core-openapi/internal/domain"
	"github.com/griffnb/core-openapi/internal/parser/operation"
)

// openAPIVersion is the version of the emitted documents.
const openAPIVersion = "3.0.0"

// newDocument creates the document of a specification with its info, servers and tags.
// Paths are added as endpoints are synthesized; security schemes once all of them are.
func newDocument(spec *domain.Specification) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: openAPIVersion,
		Info: &openapi3.Info{
			Title:       spec.DisplayTitle(),
			Description: spec.DisplayDescription(),
			Version:     spec.Version,
		},
		Paths: openapi3.Paths{},
	}

	if spec.ExternalDocs != nil {
		doc.ExternalDocs = &openapi3.ExternalDocs{
			URL:         spec.ExternalDocs.URL,
			Description: spec.ExternalDocs.Description,
		}
	}

	for _, server := range spec.Servers {
		doc.Servers = append(doc.Servers, &openapi3.Server{
			URL:         server.URL,
			Description: server.Description,
		})
	}

	for _, tag := range spec.Tags {
		t := &openapi3.Tag{Name: tag.Name, Description: tag.Description}
		if tag.ExternalDocs != "" {
			t.ExternalDocs = &openapi3.ExternalDocs{URL: tag.ExternalDocs}
		}
		doc.Tags = append(doc.Tags, t)
	}

	return doc
}

// addOperation registers op under its path and method. An operation already registered
// for the same path and method is replaced.
func addOperation(doc *openapi3.T, op *operation.Operation) error {
	item := doc.Paths[op.Path]
	if item == nil {
		item = &openapi3.PathItem{}
	}

	converted := op.ToOpenAPI()
	switch op.Method {
	case http.MethodGet:
		item.Get = converted
	case http.MethodPost:
		item.Post = converted
	case http.MethodPut:
		item.Put = converted
	case http.MethodDelete:
		item.Delete = converted
	case http.MethodPatch:
		item.Patch = converted
	case http.MethodOptions:
		item.Options = converted
	case http.MethodHead:
		item.Head = converted
	case http.MethodTrace:
		item.Trace = converted
	default:
		return fmt.Errorf("unsupported HTTP method %q", op.Method)
	}

	doc.Paths[op.Path] = item
	return nil
}

// setSecuritySchemes lists the specification's security schemes in the document's components.
func setSecuritySchemes(doc *openapi3.T, spec *domain.Specification) {
	if len(spec.SecuritySchemes) == 0 {
		return
	}

	schemes := make(openapi3.SecuritySchemes, len(spec.SecuritySchemes))
	for _, scheme := range spec.SecuritySchemes {
		schemes[scheme.ID] = &openapi3.SecuritySchemeRef{Value: securityScheme(scheme)}
	}

	if doc.Components == nil {
		doc.Components = &openapi3.Components{}
	}
	doc.Components.SecuritySchemes = schemes
}

func securityScheme(scheme domain.SecurityScheme) *openapi3.SecurityScheme {
	out := &openapi3.SecurityScheme{
		Type:        scheme.Type,
		Description: scheme.Description,
	}

	switch scheme.Type {
	case domain.SecurityAPIKey:
		out.Name = scheme.Name
		out.In = scheme.In
	case domain.SecurityHTTP:
		out.Scheme = scheme.Scheme
		out.BearerFormat = scheme.BearerFormat
	case domain.SecurityOAuth2:
		if scheme.Flows != nil {
			out.Flows = &openapi3.OAuthFlows{
				Implicit:          oauthFlow(scheme.Flows.Implicit),
				Password:          oauthFlow(scheme.Flows.Password),
				ClientCredentials: oauthFlow(scheme.Flows.ClientCredentials),
				AuthorizationCode: oauthFlow(scheme.Flows.AuthorizationCode),
			}
		}
	case domain.SecurityOpenIDConnect:
		out.OpenIdConnectUrl = scheme.OpenIDConnectURL
	}
	return out
}

func oauthFlow(flow *domain.OAuthFlow) *openapi3.OAuthFlow {
	if flow == nil {
		return nil
	}
	scopes := make(map[string]string, len(flow.Scopes))
	for name, description := range flow.Scopes {
		scopes[name] = description
	}
	return &openapi3.OAuthFlow{
		AuthorizationURL: flow.AuthorizationURL,
		TokenURL:         flow.TokenURL,
		RefreshURL:       flow.RefreshURL,
		Scopes:           scopes,
	}
}
