package domain

import "fmt"

// Security scheme types.
const (
	SecurityAPIKey        = "apiKey"
	SecurityHTTP          = "http"
	SecurityOAuth2        = "oauth2"
	SecurityOpenIDConnect = "openIdConnect"
)

// Specification is the scraped description of one API version or module.
type Specification struct {
	// Version identifies the document (e.g., "v1")
	Version string

	// Title of the API, "API" when empty
	Title string

	// Description of the API, "API version <version>" when empty
	Description string

	// ExternalDocs is an optional link to external documentation
	ExternalDocs *ExternalDocs

	Tags            []Tag
	Endpoints       []*Endpoint
	Servers         []Server
	SecuritySchemes []SecurityScheme
}

// DisplayTitle returns the title with its default applied.
func (s *Specification) DisplayTitle() string {
	if s.Title == "" {
		return "API"
	}
	return s.Title
}

// DisplayDescription returns the description with its default applied.
func (s *Specification) DisplayDescription() string {
	if s.Description == "" {
		return fmt.Sprintf("API version %s", s.Version)
	}
	return s.Description
}

// HasSecurityScheme reports whether a scheme with the given id is declared.
func (s *Specification) HasSecurityScheme(id string) bool {
	for _, scheme := range s.SecuritySchemes {
		if scheme.ID == id {
			return true
		}
	}
	return false
}

// EnsureSecurityScheme adds the scheme unless one with the same id exists.
// It reports whether the scheme was added.
func (s *Specification) EnsureSecurityScheme(scheme SecurityScheme) bool {
	if s.HasSecurityScheme(scheme.ID) {
		return false
	}
	s.SecuritySchemes = append(s.SecuritySchemes, scheme)
	return true
}

// ExternalDocs links to documentation outside the generated document.
type ExternalDocs struct {
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

// Tag groups operations.
type Tag struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	ExternalDocs string `yaml:"externalDocs"`
}

// Server is a base URL the API is served from.
type Server struct {
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

// SecurityScheme declares one way of authenticating.
type SecurityScheme struct {
	// ID is the key the scheme is registered under
	ID string `yaml:"id"`

	// Type is one of apiKey, http, oauth2 or openIdConnect
	Type        string `yaml:"type"`
	Description string `yaml:"description"`

	// Name and In apply to apiKey schemes
	Name string `yaml:"name"`
	In   string `yaml:"in"`

	// Scheme and BearerFormat apply to http schemes
	Scheme       string `yaml:"scheme"`
	BearerFormat string `yaml:"bearerFormat"`

	// Flows apply to oauth2 schemes
	Flows *OAuthFlows `yaml:"flows"`

	// OpenIDConnectURL applies to openIdConnect schemes
	OpenIDConnectURL string `yaml:"openIdConnectUrl"`
}

// OAuthFlows lists the supported oauth2 flows.
type OAuthFlows struct {
	Implicit          *OAuthFlow `yaml:"implicit"`
	Password          *OAuthFlow `yaml:"password"`
	ClientCredentials *OAuthFlow `yaml:"clientCredentials"`
	AuthorizationCode *OAuthFlow `yaml:"authorizationCode"`
}

// OAuthFlow configures one oauth2 flow.
type OAuthFlow struct {
	AuthorizationURL string            `yaml:"authorizationUrl"`
	TokenURL         string            `yaml:"tokenUrl"`
	RefreshURL       string            `yaml:"refreshUrl"`
	Scopes           map[string]string `yaml:"scopes"`
}
