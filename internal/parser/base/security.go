package base

import (
	"fmt"
	"strings"

	"github.com/griffnb/core-openapi/internal/domain"
)

// parseSecurityDefinition reads the definition starting at lines[*index] and the
// attribute lines following it, leaving *index on the last line consumed.
func (s *Service) parseSecurityDefinition(context string, lines []string, index *int) (domain.SecurityScheme, error) {
	const (
		in               = "@in"
		name             = "@name"
		descriptionAttr  = "@description"
		tokenURL         = "@tokenurl"
		authorizationURL = "@authorizationurl"
		refreshURL       = "@refreshurl"
		bearerFormat     = "@bearerformat"
		connectURL       = "@openidconnecturl"
	)

	var search, optional []string

	attribute := strings.ToLower(FieldsByAnySpace(lines[*index], 2)[0])
	switch attribute {
	case "@securitydefinitions.bearer":
		optional = []string{bearerFormat}
	case "@securitydefinitions.apikey":
		search = []string{in, name}
	case "@securitydefinitions.oauth2.application", "@securitydefinitions.oauth2.password":
		search = []string{tokenURL}
		optional = []string{refreshURL}
	case "@securitydefinitions.oauth2.implicit":
		search = []string{authorizationURL}
		optional = []string{refreshURL}
	case "@securitydefinitions.oauth2.accesscode":
		search = []string{tokenURL, authorizationURL}
		optional = []string{refreshURL}
	case "@securitydefinitions.openidconnect":
		search = []string{connectURL}
	}

	// For the first line we get the attributes in the context parameter, so we skip to the next one
	*index++

	attrMap, scopes := make(map[string]string), make(map[string]string)
	description := ""

loopline:
	for ; *index < len(lines); *index++ {
		v := strings.TrimSpace(lines[*index])
		if len(v) == 0 {
			continue
		}

		fields := FieldsByAnySpace(v, 2)
		securityAttr := strings.ToLower(fields[0])
		var value string
		if len(fields) > 1 {
			value = fields[1]
		}

		for _, findterm := range append(search, optional...) {
			if securityAttr == findterm {
				attrMap[securityAttr] = value
				continue loopline
			}
		}

		if isExists, err := isExistsScope(securityAttr); err != nil {
			return domain.SecurityScheme{}, err
		} else if isExists {
			scopes[securityAttr[len("@scope."):]] = value
			continue
		}

		if securityAttr == descriptionAttr {
			description = AppendDescription(description, value)
			continue
		}

		// Any other attribute ends the definition
		*index--
		break
	}

	for _, required := range search {
		if _, ok := attrMap[required]; !ok {
			return domain.SecurityScheme{}, fmt.Errorf("%s is %v required", context, search)
		}
	}

	scheme := domain.SecurityScheme{Description: description}
	flow := &domain.OAuthFlow{
		AuthorizationURL: attrMap[authorizationURL],
		TokenURL:         attrMap[tokenURL],
		RefreshURL:       attrMap[refreshURL],
		Scopes:           scopes,
	}

	switch attribute {
	case "@securitydefinitions.basic":
		scheme.Type = domain.SecurityHTTP
		scheme.Scheme = "basic"
	case "@securitydefinitions.bearer":
		scheme.Type = domain.SecurityHTTP
		scheme.Scheme = "bearer"
		scheme.BearerFormat = attrMap[bearerFormat]
	case "@securitydefinitions.apikey":
		scheme.Type = domain.SecurityAPIKey
		scheme.Name = attrMap[name]
		scheme.In = attrMap[in]
	case "@securitydefinitions.oauth2.application":
		scheme.Type = domain.SecurityOAuth2
		scheme.Flows = &domain.OAuthFlows{ClientCredentials: flow}
	case "@securitydefinitions.oauth2.password":
		scheme.Type = domain.SecurityOAuth2
		scheme.Flows = &domain.OAuthFlows{Password: flow}
	case "@securitydefinitions.oauth2.implicit":
		scheme.Type = domain.SecurityOAuth2
		scheme.Flows = &domain.OAuthFlows{Implicit: flow}
	case "@securitydefinitions.oauth2.accesscode":
		scheme.Type = domain.SecurityOAuth2
		scheme.Flows = &domain.OAuthFlows{AuthorizationCode: flow}
	case "@securitydefinitions.openidconnect":
		scheme.Type = domain.SecurityOpenIDConnect
		scheme.OpenIDConnectURL = attrMap[connectURL]
	}

	return scheme, nil
}

func isExistsScope(scope string) (bool, error) {
	s := strings.Fields(scope)
	for _, v := range s {
		if strings.HasPrefix(v, "@scope.") {
			if strings.Contains(v, ",") {
				return false, fmt.Errorf("@scope can't use comma(,) get=%s", v)
			}
		}
	}

	return strings.HasPrefix(scope, "@scope."), nil
}
