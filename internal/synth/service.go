// Package synth turns type specifications and classes into schema trees.
//
// TypeService synthesizes a type specification ("int", "User[]", "?Page|Error") and hands
// class references to ClassService, which describes a class from its fields, its
// "@property" tags and its redirection tag. Schemas are built inline; a class that
// refers to itself is cut short with a plain object.
//
// The services keep per-call state and are not safe for concurrent use.
package synth

import (
	"github.com/griffnb/core-openapi/internal/domain"
	"github.com/griffnb/core-openapi/internal/introspect"
	"github.com/griffnb/core-openapi/internal/resolver"
)

// Debugger provides debug logging interface.
type Debugger interface {
	Printf(format string, v ...interface{})
}

type noOpDebugger struct{}

func (noOpDebugger) Printf(string, ...interface{}) {}

// Option configures the services.
type Option func(*config)

type config struct {
	rules    []Rule
	notifier domain.Notifier
	debug    Debugger
}

// WithRules registers describing rules in order; later rules win.
func WithRules(rules ...Rule) Option {
	return func(c *config) {
		c.rules = append(c.rules, rules...)
	}
}

// WithNotifier sets where notices go.
func WithNotifier(n domain.Notifier) Option {
	return func(c *config) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithDebugger sets the trace output.
func WithDebugger(d Debugger) Option {
	return func(c *config) {
		if d != nil {
			c.debug = d
		}
	}
}

// NewServices wires a TypeService and a ClassService to each other.
func NewServices(in introspect.Introspector, names *resolver.Service, options ...Option) (*TypeService, *ClassService) {
	cfg := &config{
		rules:    []Rule{DefaultRule},
		notifier: domain.Discard,
		debug:    noOpDebugger{},
	}
	for _, opt := range options {
		opt(cfg)
	}

	types := &TypeService{
		resolver: names,
		notifier: cfg.notifier,
		debug:    cfg.debug,
	}
	classes := &ClassService{
		introspector: in,
		resolver:     names,
		types:        types,
		rules:        cfg.rules,
		notifier:     cfg.notifier,
		debug:        cfg.debug,
		describing:   make(map[string]struct{}),
	}
	types.classes = classes
	return types, classes
}
