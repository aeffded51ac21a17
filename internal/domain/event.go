package domain

import (
	"fmt"
	"strings"
)

// Level is the severity of a notice, ordered from least to most severe.
type Level int

const (
	// LevelSuccess reports a completed unit of work
	LevelSuccess Level = iota + 1
	// LevelImportant highlights a result the user should look at
	LevelImportant
	// LevelInfo is an informational message about a choice made during synthesis
	LevelInfo
	// LevelWarning reports missing metadata; the affected element is skipped
	LevelWarning
	// LevelError reports malformed metadata or a failed endpoint; the run continues
	LevelError
)

// String returns the lower-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelImportant:
		return "important"
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name back to its Level.
func ParseLevel(name string) (Level, error) {
	for l := LevelSuccess; l <= LevelError; l++ {
		if strings.EqualFold(l.String(), name) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown notice level %q", name)
}

// Notifier receives diagnostics raised while synthesizing.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, message string)

// Notify calls f.
func (f NotifierFunc) Notify(level Level, message string) {
	f(level, message)
}

// Discard drops every notice.
var Discard Notifier = NotifierFunc(func(Level, string) {})

// EventKind identifies an event in the generation stream.
type EventKind int

const (
	RunStarted EventKind = iota + 1
	RunFinished
	SpecificationStarted
	SpecificationFinished
	PathStarted
	PathFinished
	Notice
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case RunStarted:
		return "run-started"
	case RunFinished:
		return "run-finished"
	case SpecificationStarted:
		return "specification-started"
	case SpecificationFinished:
		return "specification-finished"
	case PathStarted:
		return "path-started"
	case PathFinished:
		return "path-finished"
	case Notice:
		return "notice"
	default:
		return "unknown"
	}
}

// Summary counts the outcome of one specification.
type Summary struct {
	Succeeded int
	Failed    int
}

// Event is one entry of the generation stream. Which fields are set depends on Kind.
type Event struct {
	Kind  EventKind
	RunID string

	// Specification is set for specification, path and notice events
	Specification *Specification

	// Endpoint is set for path events and for notices raised while synthesizing an endpoint
	Endpoint *Endpoint

	// Level, Message and Trace are set for notices
	Level   Level
	Message string
	Trace   string

	// Summary is set when a specification finishes
	Summary *Summary
}

// Observer consumes events.
type Observer interface {
	Observe(event Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(event Event)

// Observe calls f.
func (f ObserverFunc) Observe(event Event) {
	f(event)
}

// Observers fans an event out to several observers.
type Observers []Observer

// Observe forwards the event to every observer in order.
func (o Observers) Observe(event Event) {
	for _, observer := range o {
		observer.Observe(event)
	}
}
