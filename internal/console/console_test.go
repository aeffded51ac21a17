package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/griffnb/core-openapi/internal/domain"
)

func TestMarkup(t *testing.T) {
	plain := &ConsoleLogger{}
	colored := &ConsoleLogger{color: true}

	tests := []struct {
		name    string
		input   string
		plain   string
		colored string
	}{
		{"no markup", "users", "users", "users"},
		{"single", "$Bold{users}", "users", "\x1b[1musers\x1b[0m"},
		{"nested", "$Red{failed $Bold{v1}}", "failed v1", "\x1b[31mfailed \x1b[1mv1\x1b[0m\x1b[0m"},
		{"unknown colour is kept", "$Pink{x}", "$Pink{x}", "$Pink{x}"},
		{"escaped text is literal", "$Green{" + Escape("GET /users/{id} $Red{x}") + "}", "GET /users/{id} $Red{x}", "\x1b[32mGET /users/{id} $Red{x}\x1b[0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.plain, plain.Markup(tt.input))
			assert.Equal(t, tt.colored, colored.Markup(tt.input))
		})
	}
}

func TestConsoleLogger(t *testing.T) {
	t.Run("debug output needs DebugLevel", func(t *testing.T) {
		// Arrange
		var buf bytes.Buffer
		logger := New(&buf)

		// Act
		logger.Debug("hidden %d", 1)
		logger.DebugLevel = 1
		logger.Printf("shown %d", 2)

		// Assert
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown 2")
	})

	t.Run("levels and markup", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf)

		logger.Info("wrote $Bold{%s}", "v1.json")
		logger.Warn("careful")
		logger.Error("broken")

		out := buf.String()
		assert.Contains(t, out, "wrote v1.json")
		assert.NotContains(t, out, "$Bold")
		assert.Contains(t, out, "WRN")
		assert.Contains(t, out, "ERR")
	})
}

func TestObserver(t *testing.T) {
	spec := &domain.Specification{Version: "v1"}
	endpoint := &domain.Endpoint{ID: "/users"}

	t.Run("filters notices by level", func(t *testing.T) {
		// Arrange
		var buf bytes.Buffer
		observer := NewObserver(New(&buf), domain.LevelWarning)

		// Act
		observer.Observe(domain.Event{Kind: domain.Notice, Level: domain.LevelInfo, Message: "chatty", Specification: spec})
		observer.Observe(domain.Event{Kind: domain.Notice, Level: domain.LevelError, Message: "v1:/users: boom", Specification: spec, RunID: "run-1", Trace: "goroutine 1"})

		// Assert
		out := buf.String()
		assert.NotContains(t, out, "chatty")
		assert.Contains(t, out, "v1:/users: boom")
		assert.Contains(t, out, "run-1")
		assert.Contains(t, out, "goroutine 1")
	})

	t.Run("notice text is not markup", func(t *testing.T) {
		var buf bytes.Buffer
		observer := NewObserver(New(&buf), domain.LevelSuccess)

		observer.Observe(domain.Event{Kind: domain.Notice, Level: domain.LevelSuccess, Message: "GET /users/{id} done"})
		observer.Observe(domain.Event{Kind: domain.Notice, Level: domain.LevelError, Message: "bad tag $Red{x}"})

		out := buf.String()
		assert.Contains(t, out, "GET /users/{id} done")
		assert.NotContains(t, out, "$Green")
		assert.Contains(t, out, "bad tag $Red{x}")
	})

	t.Run("arguments are not markup", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf)

		logger.Info("wrote $Bold{%s}", "users_{id}.json")

		assert.Contains(t, buf.String(), "wrote users_{id}.json")
		assert.NotContains(t, buf.String(), "$Bold")
	})

	t.Run("lifecycle in debug mode", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf)
		logger.DebugLevel = 1
		observer := NewObserver(logger, domain.LevelSuccess)

		observer.Observe(domain.Event{Kind: domain.SpecificationStarted, Specification: spec})
		observer.Observe(domain.Event{Kind: domain.PathStarted, Specification: spec, Endpoint: endpoint})
		observer.Observe(domain.Event{Kind: domain.Notice, Level: domain.LevelSuccess, Message: "3 paths generated", Specification: spec})
		observer.Observe(domain.Event{Kind: domain.Notice, Level: domain.LevelError, Message: "failed", Trace: "goroutine 7"})

		out := buf.String()
		assert.Contains(t, out, "Generating v1")
		assert.Contains(t, out, "Synthesizing GET /users")
		assert.Contains(t, out, "3 paths generated")
		assert.Contains(t, out, "goroutine 7")
		assert.Equal(t, 5, strings.Count(out, "\n"))
	})
}
