package operation

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/griffnb/core-openapi/internal/domain"
	"github.com/griffnb/core-openapi/internal/introspect"
	"github.com/griffnb/core-openapi/internal/parser/docblock"
	"github.com/griffnb/core-openapi/internal/schema"
	"github.com/griffnb/core-openapi/internal/typespec"
)

// envelope is the synthesized result wrapper of an endpoint.
type envelope struct {
	schema   *schema.Schema
	property string
}

// wrap nests every branch in a copy of the envelope and combines the branches. Without
// branches the bare envelope is the result; without an envelope the branches are used as is.
func (e *envelope) wrap(branches []*schema.Schema) *schema.Schema {
	if e != nil {
		if len(branches) == 0 {
			return e.schema.DeepCopy()
		}
		for i, branch := range branches {
			branches[i] = &schema.Schema{
				AllOf: []*schema.Schema{
					e.schema.DeepCopy(),
					schema.ObjectSchema(schema.Property{Name: e.property, Schema: branch}),
				},
			}
		}
	}

	switch len(branches) {
	case 0:
		return nil
	case 1:
		return branches[0]
	default:
		return schema.OneOfSchema(branches...)
	}
}

// responses builds the success response and the alternative ones.
func (s *Service) responses(op *Operation, endpoint *domain.Endpoint, method *introspect.MethodInfo, doc *docblock.DocBlock, location string) {
	declaring := method.Declaring
	env := s.envelope(endpoint, declaring, location)

	if result := env.wrap(s.resultBranches(endpoint, declaring, doc, location)); result != nil {
		op.addResponse(Response{Code: http.StatusOK, Description: successDescription, Schema: result})
	}

	codes := make([]int, 0, len(s.alternatives))
	for code := range s.alternatives {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		branches := s.branches(declaring, s.alternatives[code], "")
		op.addResponse(Response{Code: code, Description: statusDescription(code), Schema: env.wrap(branches)})
	}

	for _, tag := range doc.TagsByName("throws") {
		throws, err := docblock.ParseThrows(tag)
		if err != nil {
			s.invalidTag(err, location)
			continue
		}
		description := throws.Description
		if description == "" {
			description = statusDescription(throws.Code)
		}
		branches := s.branches(declaring, throws.Type, "")
		op.addResponse(Response{Code: throws.Code, Description: description, Schema: env.wrap(branches)})
	}
}

func (s *Service) envelope(endpoint *domain.Endpoint, declaring, location string) *envelope {
	wrapper := endpoint.ResultWrapper
	if wrapper == nil {
		return nil
	}

	sch, _ := s.types.Synthesize(declaring, wrapper.WrapperType, nil, false)
	if sch == nil {
		s.notifier.Notify(domain.LevelWarning, fmt.Sprintf("%s: result wrapper %q has no schema, responses are not wrapped", location, wrapper.WrapperType))
		return nil
	}
	return &envelope{schema: sch, property: wrapper.ResultingProperty}
}

// resultBranches describes what the handler returns: the endpoint's override when set,
// otherwise the @return tag.
func (s *Service) resultBranches(endpoint *domain.Endpoint, declaring string, doc *docblock.DocBlock, location string) []*schema.Schema {
	if override := endpoint.Result; override != nil {
		if override.Instance != nil {
			if sch := s.types.SynthesizeValue(declaring, override.Instance); sch != nil {
				return []*schema.Schema{sch}
			}
			return nil
		}
		return s.branches(declaring, override.Type, "")
	}

	tag, ok := doc.FirstTag("return")
	if !ok {
		return nil
	}
	ret, err := docblock.ParseReturn(tag)
	if err != nil {
		s.invalidTag(err, location)
		return nil
	}
	return s.branches(declaring, ret.Type, ret.Description)
}

// branches synthesizes each member of a union on its own. Null members and members
// without a schema are left out.
func (s *Service) branches(declaring, typeSpec, description string) []*schema.Schema {
	if strings.TrimSpace(typeSpec) == "" {
		return nil
	}

	var out []*schema.Schema
	for _, member := range typespec.Members(typeSpec) {
		if strings.EqualFold(member, "null") {
			continue
		}
		sch, _ := s.types.Synthesize(declaring, member, nil, false)
		if sch == nil {
			continue
		}
		if description != "" {
			if sch.Description == "" {
				sch.Description = description
			} else {
				sch.Description += "\n" + description
			}
		}
		out = append(out, sch)
	}
	return out
}
