package orchestrator

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/griffnb/core-openapi/internal/domain"
	"github.com/griffnb/core-openapi/internal/introspect"
	"github.com/griffnb/core-openapi/internal/introspect/manifest"
	"github.com/griffnb/core-openapi/internal/parser/operation"
	"github.com/griffnb/core-openapi/internal/schema"
)

const fixtures = `
classes:
  - name: example.com/shop/api.Users
    imports:
      - path: example.com/shop/models
    methods:
      - name: Get
        doc: |
          Get returns one user.
          @param int $id
          @return models.User
        params:
          - name: id
            type: int
      - name: Search
        doc: |
          @param models.Filter $filter
          @return models.User[]
        params:
          - name: filter
  - name: example.com/shop/models.User
    properties:
      - name: id
        doc: "@var int"
      - name: name
        doc: "@var string"
  - name: example.com/shop/models.Filter
    properties:
      - name: q
        doc: "@var string"
functions:
  - name: example.com/shop/api.Health
    doc: "@return string"
`

const users = "example.com/shop/api.Users"

type fakeScraper struct {
	specs []*domain.Specification
	err   error
}

func (f *fakeScraper) Scrape(ctx context.Context, _ string) ([]*domain.Specification, error) {
	return f.specs, f.err
}

type configuringScraper struct {
	fakeScraper
	settings     map[string]bool
	introspector introspect.Introspector
}

func (c *configuringScraper) Settings() map[string]bool {
	return c.settings
}

func (c *configuringScraper) Introspector(context.Context) (introspect.Introspector, error) {
	return c.introspector, nil
}

type recorder struct {
	events []domain.Event
}

func (r *recorder) Observe(event domain.Event) {
	r.events = append(r.events, event)
}

func (r *recorder) notices(level domain.Level) []domain.Event {
	var out []domain.Event
	for _, e := range r.events {
		if e.Kind == domain.Notice && e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

func newBackend(t *testing.T) *manifest.Backend {
	t.Helper()
	backend, err := manifest.Parse([]byte(fixtures))
	require.NoError(t, err)
	return backend
}

func shopSpecification() *domain.Specification {
	return &domain.Specification{
		Version: "v1",
		Servers: []domain.Server{{URL: "https://api.example.com", Description: "production"}},
		Tags:    []domain.Tag{{Name: "users", Description: "User accounts", ExternalDocs: "https://docs.example.com/users"}},
		Endpoints: []*domain.Endpoint{
			{
				ID:              "/users/{id}",
				Callback:        domain.Callback{Type: users, Method: "Get"},
				Tags:            []string{"users"},
				SecuritySchemes: []string{"bearer"},
				SecurityDefinitions: []domain.SecurityScheme{
					{ID: "bearer", Type: domain.SecurityHTTP, Scheme: "bearer", BearerFormat: "JWT"},
				},
			},
			{
				ID:       "/users/{id}/missing",
				Callback: domain.Callback{Type: users, Method: "Missing"},
			},
			{
				ID:         "/health",
				HTTPMethod: "get",
				Callback:   domain.Callback{Method: "example.com/shop/api.Health"},
			},
		},
	}
}

func TestGenerate(t *testing.T) {
	t.Run("assembles a document per specification", func(t *testing.T) {
		// Arrange
		rec := &recorder{}
		service := New(&Config{
			Introspector: newBackend(t),
			Observer:     rec,
			Settings:     Settings{operation.Settings{ExtractPathParameters: true}},
		})
		scr := &fakeScraper{specs: []*domain.Specification{shopSpecification()}}

		// Act
		results, err := service.Generate(context.Background(), scr)

		// Assert
		require.NoError(t, err)
		require.Len(t, results, 1)
		result := results[0]
		assert.Equal(t, "v1", result.ID)
		assert.Equal(t, "API", result.Title)

		doc := result.Document
		assert.Equal(t, "3.0.0", doc.OpenAPI)
		assert.Equal(t, "API", doc.Info.Title)
		assert.Equal(t, "API version v1", doc.Info.Description)
		assert.Equal(t, "v1", doc.Info.Version)
		require.Len(t, doc.Servers, 1)
		assert.Equal(t, "https://api.example.com", doc.Servers[0].URL)
		require.Len(t, doc.Tags, 1)
		assert.Equal(t, "https://docs.example.com/users", doc.Tags[0].ExternalDocs.URL)

		require.Len(t, doc.Paths, 2)
		get := doc.Paths["/users/{id}"].Get
		require.NotNil(t, get)
		assert.Equal(t, "/users/{id}-get", get.OperationID)
		require.Len(t, get.Parameters, 1)
		assert.Equal(t, "path", get.Parameters[0].Value.In)
		require.NotNil(t, get.Security)
		assert.Contains(t, (*get.Security)[0], "bearer")
		assert.NotNil(t, doc.Paths["/health"].Get)
		assert.NotContains(t, doc.Paths, "/users/{id}/missing")

		require.NotNil(t, doc.Components)
		bearer := doc.Components.SecuritySchemes["bearer"]
		require.NotNil(t, bearer)
		assert.Equal(t, "http", bearer.Value.Type)
		assert.Equal(t, "JWT", bearer.Value.BearerFormat)
	})

	t.Run("reports failing endpoints and keeps going", func(t *testing.T) {
		// Arrange
		rec := &recorder{}
		service := New(&Config{Introspector: newBackend(t), Observer: rec})
		scr := &fakeScraper{specs: []*domain.Specification{shopSpecification()}}

		// Act
		_, err := service.Generate(context.Background(), scr)

		// Assert
		require.NoError(t, err)
		errs := rec.notices(domain.LevelError)
		require.Len(t, errs, 1)
		assert.True(t, strings.HasPrefix(errs[0].Message, "v1:/users/{id}/missing: "), errs[0].Message)
		assert.NotEmpty(t, errs[0].Trace)
		require.NotNil(t, errs[0].Endpoint)
		assert.Equal(t, "/users/{id}/missing", errs[0].Endpoint.ID)

		important := rec.notices(domain.LevelImportant)
		require.Len(t, important, 1)
		assert.Equal(t, "2 paths generated, 1 errors", important[0].Message)
		assert.Empty(t, rec.notices(domain.LevelSuccess))
	})

	t.Run("emits the event stream in order", func(t *testing.T) {
		// Arrange
		rec := &recorder{}
		service := New(&Config{Introspector: newBackend(t), Observer: rec})
		spec := &domain.Specification{
			Version: "v2",
			Endpoints: []*domain.Endpoint{
				{ID: "/health", Callback: domain.Callback{Method: "example.com/shop/api.Health"}},
			},
		}

		// Act
		_, err := service.Generate(context.Background(), &fakeScraper{specs: []*domain.Specification{spec}})

		// Assert
		require.NoError(t, err)
		var kinds []domain.EventKind
		for _, e := range rec.events {
			kinds = append(kinds, e.Kind)
			assert.Equal(t, rec.events[0].RunID, e.RunID)
		}
		assert.Equal(t, []domain.EventKind{
			domain.RunStarted,
			domain.SpecificationStarted,
			domain.PathStarted,
			domain.PathFinished,
			domain.Notice,
			domain.SpecificationFinished,
			domain.RunFinished,
		}, kinds)
		assert.NotEmpty(t, rec.events[0].RunID)

		finished := rec.events[5]
		require.NotNil(t, finished.Summary)
		assert.Equal(t, domain.Summary{Succeeded: 1}, *finished.Summary)
		assert.Same(t, spec, finished.Specification)
		assert.Equal(t, "1 paths generated", rec.events[4].Message)
		assert.Equal(t, domain.LevelSuccess, rec.events[4].Level)
	})

	t.Run("isolates panics", func(t *testing.T) {
		// Arrange
		rec := &recorder{}
		service := New(&Config{
			Introspector: newBackend(t),
			Observer:     rec,
			Extractors: []operation.Registration{{
				Match: func(string) bool { return true },
				Extractor: operation.ExtractorFunc(func(*introspect.MethodInfo, introspect.ParamInfo) ([]operation.Entry, error) {
					panic("extractor exploded")
				}),
			}},
		})
		spec := &domain.Specification{
			Version: "v1",
			Endpoints: []*domain.Endpoint{
				{ID: "/search", Callback: domain.Callback{Type: users, Method: "Search"}},
				{ID: "/health", Callback: domain.Callback{Method: "example.com/shop/api.Health"}},
			},
		}

		// Act
		results, err := service.Generate(context.Background(), &fakeScraper{specs: []*domain.Specification{spec}})

		// Assert
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.NotContains(t, results[0].Document.Paths, "/search")
		assert.Contains(t, results[0].Document.Paths, "/health")

		errs := rec.notices(domain.LevelError)
		require.Len(t, errs, 1)
		assert.Equal(t, "v1:/search: panic: extractor exploded", errs[0].Message)
		assert.Contains(t, errs[0].Trace, "goroutine")
	})

	t.Run("adds each lazy security scheme once", func(t *testing.T) {
		// Arrange
		rec := &recorder{}
		service := New(&Config{Introspector: newBackend(t), Observer: rec})
		bearer := domain.SecurityScheme{ID: "bearer", Type: domain.SecurityHTTP, Scheme: "bearer"}
		spec := &domain.Specification{
			Version: "v1",
			Endpoints: []*domain.Endpoint{
				{ID: "/a", Callback: domain.Callback{Method: "example.com/shop/api.Health"}, SecuritySchemes: []string{"bearer"}, SecurityDefinitions: []domain.SecurityScheme{bearer}},
				{ID: "/b", Callback: domain.Callback{Method: "example.com/shop/api.Health"}, SecuritySchemes: []string{"bearer"}, SecurityDefinitions: []domain.SecurityScheme{bearer}},
				{ID: "/c", Callback: domain.Callback{Method: "example.com/shop/api.Health"}, SecuritySchemes: []string{"apiKey"}},
			},
		}

		// Act
		results, err := service.Generate(context.Background(), &fakeScraper{specs: []*domain.Specification{spec}})

		// Assert
		require.NoError(t, err)
		assert.Len(t, spec.SecuritySchemes, 1)
		assert.Len(t, results[0].Document.Components.SecuritySchemes, 1)

		warnings := rec.notices(domain.LevelWarning)
		require.Len(t, warnings, 1)
		assert.Equal(t, `v1:/c: security scheme "apiKey" is not declared`, warnings[0].Message)
	})

	t.Run("uses the scraper's introspector and settings", func(t *testing.T) {
		// Arrange
		service := New(nil)
		scr := &configuringScraper{
			fakeScraper: fakeScraper{specs: []*domain.Specification{{
				Version: "v1",
				Endpoints: []*domain.Endpoint{
					{ID: "/search", Callback: domain.Callback{Type: users, Method: "Search"}},
				},
			}}},
			settings:     map[string]bool{SettingTreatComplexArgumentsAsBody: true, SettingRewriteGetWithBodyToPost: true},
			introspector: newBackend(t),
		}

		// Act
		results, err := service.Generate(context.Background(), scr)

		// Assert
		require.NoError(t, err)
		item := results[0].Document.Paths["/search"]
		require.NotNil(t, item)
		assert.Nil(t, item.Get)
		require.NotNil(t, item.Post)
		assert.Equal(t, "/search-get", item.Post.OperationID)
		assert.NotNil(t, item.Post.RequestBody)
	})

	t.Run("skips filtered specifications", func(t *testing.T) {
		rec := &recorder{}
		service := New(&Config{
			Introspector: newBackend(t),
			Observer:     rec,
			Filter:       func(spec *domain.Specification) bool { return spec.Version == "v2" },
		})
		scr := &fakeScraper{specs: []*domain.Specification{
			shopSpecification(),
			{Version: "v2", Endpoints: []*domain.Endpoint{{ID: "/health", Callback: domain.Callback{Method: "example.com/shop/api.Health"}}}},
		}}

		results, err := service.Generate(context.Background(), scr)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "v2", results[0].ID)
		assert.Empty(t, rec.notices(domain.LevelError))
	})
}

func TestGenerateAborts(t *testing.T) {
	t.Run("on an unknown setting", func(t *testing.T) {
		scr := &configuringScraper{settings: map[string]bool{"inlineEverything": true}, introspector: newBackend(t)}

		_, err := New(nil).Generate(context.Background(), scr)

		require.ErrorIs(t, err, ErrUnknownSetting)
		assert.Contains(t, err.Error(), "inlineEverything")
	})

	t.Run("without an introspector", func(t *testing.T) {
		_, err := New(nil).Generate(context.Background(), &fakeScraper{})

		require.ErrorIs(t, err, ErrNoIntrospector)
	})

	t.Run("when scraping fails", func(t *testing.T) {
		boom := errors.New("boom")

		_, err := New(&Config{Root: "./app"}).Generate(context.Background(), &fakeScraper{err: boom})

		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "./app")
	})

	t.Run("when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		scr := &fakeScraper{specs: []*domain.Specification{shopSpecification()}}

		_, err := New(&Config{Introspector: newBackend(t)}).Generate(ctx, scr)

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestSettingsSet(t *testing.T) {
	var settings Settings

	require.NoError(t, settings.Set(SettingTreatComplexArgumentsAsBody, true))
	require.NoError(t, settings.Set(SettingRewriteGetWithBodyToPost, true))
	require.NoError(t, settings.Set(SettingExtractPathParameters, true))
	assert.True(t, settings.TreatComplexArgumentsAsBody)
	assert.True(t, settings.RewriteGetWithBodyToPost)
	assert.True(t, settings.ExtractPathParameters)

	require.NoError(t, settings.Set(SettingExtractPathParameters, false))
	assert.False(t, settings.ExtractPathParameters)

	err := settings.Set("nope", true)
	require.ErrorIs(t, err, ErrUnknownSetting)
}

func TestInspect(t *testing.T) {
	service := New(&Config{Introspector: newBackend(t)})

	t.Run("type", func(t *testing.T) {
		sch, err := service.InspectType(context.Background(), &fakeScraper{}, "", "example.com/shop/models.User[]")

		require.NoError(t, err)
		assert.Equal(t, schema.ARRAY, sch.Type)
		require.NotNil(t, sch.Items)
		assert.Equal(t, schema.OBJECT, sch.Items.Type)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := service.InspectType(context.Background(), &fakeScraper{}, "", "example.com/shop/models.Nope")

		assert.Error(t, err)
	})

	t.Run("handler", func(t *testing.T) {
		endpoint := &domain.Endpoint{ID: "/users/{id}", Callback: domain.Callback{Type: users, Method: "Get"}}

		op, err := service.InspectHandler(context.Background(), &fakeScraper{}, endpoint)

		require.NoError(t, err)
		assert.Equal(t, http.MethodGet, op.Method)
		assert.Equal(t, "Get returns one user.", op.Summary)
		_, ok := op.Response(http.StatusOK)
		assert.True(t, ok)
	})
}
