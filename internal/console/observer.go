package console

import (
	"github.com/rs/zerolog"

	"github.com/griffnb/core-openapi/internal/domain"
)

// Observer prints the generation event stream. Notices below MinLevel are dropped and
// lifecycle events only show in debug mode. The stack trace of a failed endpoint is
// logged with its notice.
type Observer struct {
	Logger   *ConsoleLogger
	MinLevel domain.Level
}

// NewObserver creates an observer printing notices of at least minLevel.
func NewObserver(logger *ConsoleLogger, minLevel domain.Level) *Observer {
	return &Observer{Logger: logger, MinLevel: minLevel}
}

// Observe implements domain.Observer.
func (o *Observer) Observe(e domain.Event) {
	switch e.Kind {
	case domain.Notice:
		if e.Level < o.MinLevel {
			return
		}
		o.notice(e)

	case domain.SpecificationStarted:
		o.debug(e, "Generating $Bold{%s}", version(e))
	case domain.PathStarted:
		if e.Endpoint != nil {
			o.debug(e, "Synthesizing %s %s", e.Endpoint.Method(), e.Endpoint.ID)
		}
	case domain.RunStarted:
		o.debug(e, "Run started")
	case domain.RunFinished:
		o.debug(e, "Run finished")
	}
}

func (o *Observer) notice(e domain.Event) {
	l := o.Logger
	message := Escape(e.Message)
	level := zerolog.InfoLevel

	switch e.Level {
	case domain.LevelSuccess:
		message = "$Green{" + message + "}"
	case domain.LevelImportant:
		message = "$Bold{" + message + "}"
	case domain.LevelWarning:
		level = zerolog.WarnLevel
	case domain.LevelError:
		level = zerolog.ErrorLevel
	}

	event := l.log.WithLevel(level).Str("run", e.RunID)
	if v := version(e); v != "" {
		event = event.Str("spec", v)
	}
	event.Msg(l.Markup(message))

	if e.Trace != "" {
		l.log.WithLevel(level).Str("run", e.RunID).Msg(e.Trace)
	}
}

func (o *Observer) debug(e domain.Event, format string, args ...interface{}) {
	if o.Logger.DebugLevel == 0 {
		return
	}
	o.Logger.write(o.Logger.log.Debug().Str("run", e.RunID), format, args...)
}

func version(e domain.Event) string {
	if e.Specification == nil {
		return ""
	}
	return e.Specification.Version
}
