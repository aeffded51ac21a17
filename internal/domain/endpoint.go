// Package domain contains the data exchanged between scrapers, the synthesis core and its observers.
package domain

import (
	"net/http"
	"strings"
)

// Callback points at the handler a route is served by.
type Callback struct {
	// Type is the fully qualified name of the receiver type (e.g., "github.com/acme/api/users.Controller").
	// Empty when the handler is a package-level function.
	Type string

	// Method is the method name on Type, or the fully qualified function name when Type is empty.
	Method string
}

// IsFunction reports whether the callback refers to a package-level function.
func (c Callback) IsFunction() bool {
	return c.Type == ""
}

// String renders the callback as Type.Method or as the function name.
func (c Callback) String() string {
	if c.IsFunction() {
		return c.Method
	}
	return c.Type + "." + c.Method
}

// ResultWrapper describes the envelope every response of an endpoint is nested inside.
type ResultWrapper struct {
	// WrapperType is the type describing the envelope itself (e.g., "{status, data}")
	WrapperType string

	// ResultingProperty is the envelope property that carries the real result
	ResultingProperty string
}

// ResultOverride replaces the documented return type of a handler.
type ResultOverride struct {
	// Type is an explicit type specification such as "User[]|Error"
	Type string

	// Instance is a live value whose shape describes the result
	Instance interface{}
}

// Endpoint is one route discovered by a scraper.
type Endpoint struct {
	// ID is the route path (e.g., "/users/{id}")
	ID string

	// HTTPMethod defaults to GET
	HTTPMethod string

	// Callback to introspect
	Callback Callback

	// Tags for grouping operations
	Tags []string

	// SecuritySchemes holds the ids of security schemes required by the endpoint
	SecuritySchemes []string

	// SecurityDefinitions declares schemes referenced by SecuritySchemes that the specification
	// does not list yet; they are added to it lazily.
	SecurityDefinitions []SecurityScheme

	// ResultWrapper is the optional response envelope
	ResultWrapper *ResultWrapper

	// Result optionally overrides the documented return type
	Result *ResultOverride
}

// Method returns the upper-cased HTTP method, GET when unset.
func (e *Endpoint) Method() string {
	if e.HTTPMethod == "" {
		return http.MethodGet
	}
	return strings.ToUpper(e.HTTPMethod)
}

// OperationID returns the identifier used for the endpoint's operation.
func (e *Endpoint) OperationID() string {
	return e.ID + "-" + strings.ToLower(e.Method())
}
