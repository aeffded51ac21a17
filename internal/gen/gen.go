// Package gen drives document generation for the command line. It reads the project
// file, picks a scraper, runs the orchestrator and writes every document in the
// requested output types.
package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"sigs.k8s.io/yaml"

	"github.com/griffnb/core-openapi/internal/console"
	"github.com/griffnb/core-openapi/internal/domain"
	"github.com/griffnb/core-openapi/internal/introspect/source"
	"github.com/griffnb/core-openapi/internal/loader"
	"github.com/griffnb/core-openapi/internal/orchestrator"
	"github.com/griffnb/core-openapi/internal/scraper"
)

// Version of the generator.
const Version = "v0.4.0"

// Stdout as the output directory writes documents to standard output.
const Stdout = "-"

type genTypeWriter func(*Config, orchestrator.Result) error

// Gen presents a generate tool for OpenAPI documents.
type Gen struct {
	json          func(data interface{}) ([]byte, error)
	jsonIndent    func(data interface{}) ([]byte, error)
	jsonToYAML    func(data []byte) ([]byte, error)
	outputTypeMap map[string]genTypeWriter
	stdout        io.Writer
	debug         Debugger
}

// Debugger is the interface that wraps the basic Printf method.
type Debugger interface {
	Printf(format string, v ...interface{})
}

// New creates a new Gen.
func New() *Gen {
	gen := Gen{
		json: json.Marshal,
		jsonIndent: func(data interface{}) ([]byte, error) {
			return json.MarshalIndent(data, "", "    ")
		},
		jsonToYAML: yaml.JSONToYAML,
		stdout:     os.Stdout,
		debug:      console.Logger,
	}

	gen.outputTypeMap = map[string]genTypeWriter{
		"json":     gen.writeJSON,
		"yaml":     gen.writeYAML,
		"yml":      gen.writeYAML,
		"swagger2": gen.writeSwagger2,
	}

	return &gen
}

// Config presents Gen configurations.
type Config struct {
	Debugger Debugger

	// SearchDir is the root of the Go sources to scrape
	SearchDir string

	// Manifest is an endpoint manifest read instead of scraping SearchDir
	Manifest string

	// ProjectFile holds settings, common parameters, formats and describing rules
	ProjectFile string

	// excludes dirs and files in SearchDir, comma separated
	Excludes string

	// ParseExtension is the extension of the source files to parse
	ParseExtension string

	// Parse only packages whose import path match the given prefix, comma separated
	PackagePrefix string

	// ParseVendor whether vendor folders are parsed
	ParseVendor bool

	// ParseInternal whether standard library packages are loaded as dependencies
	ParseInternal bool

	// ParseDependency is the depth of imported packages to load, 0 disables it
	ParseDependency int

	// ParseGoPackages whether golang.org/x/tools/go/packages is used to load sources
	ParseGoPackages bool

	// MarkdownFilesDir used to find markdown files, which can be used for descriptions
	MarkdownFilesDir string

	// DefaultVersion is the version of handlers without @Version
	DefaultVersion string

	// OutputDir represents the output directory for all the generated files, Stdout to print
	OutputDir string

	// OutputTypes define types of files which should be generated
	OutputTypes []string

	// Specification is a glob selecting the versions to generate, all when empty
	Specification string

	// MinLevel is the least severe notice that is logged
	MinLevel domain.Level
}

// Build generates the documents of every selected specification and writes them.
func (g *Gen) Build(ctx context.Context, config *Config) error {
	if config.Debugger != nil {
		g.debug = config.Debugger
	}

	if config.Specification != "" {
		if _, err := path.Match(config.Specification, ""); err != nil {
			return fmt.Errorf("invalid specification pattern %q: %w", config.Specification, err)
		}
	}

	orc, scr, err := g.prepare(config)
	if err != nil {
		return err
	}

	console.Logger.Debug("Generate OpenAPI docs....")

	results, err := orc.Generate(ctx, scr)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		console.Logger.Warn("no specification matches %q", config.Specification)
		return nil
	}

	if config.OutputDir != Stdout {
		if err := os.MkdirAll(config.OutputDir, os.ModePerm); err != nil {
			return err
		}
	}

	for _, result := range results {
		for _, outputType := range config.OutputTypes {
			outputType = strings.ToLower(strings.TrimSpace(outputType))
			if typeWriter, ok := g.outputTypeMap[outputType]; ok {
				if err := typeWriter(config, result); err != nil {
					return err
				}
			} else {
				console.Logger.Warn("output type '%s' not supported", outputType)
			}
		}
	}

	return nil
}

// Scrape lists the specifications and endpoints without synthesizing them.
func (g *Gen) Scrape(ctx context.Context, config *Config) ([]*domain.Specification, error) {
	if config.Debugger != nil {
		g.debug = config.Debugger
	}
	if err := checkRoot(config); err != nil {
		return nil, err
	}
	scr := g.scraper(config, &Project{})
	return scr.Scrape(ctx, g.root(config))
}

// prepare reads the project file and builds the orchestrator and scraper of a run.
func (g *Gen) prepare(config *Config) (*orchestrator.Service, scraper.Scraper, error) {
	if err := checkRoot(config); err != nil {
		return nil, nil, err
	}

	project, err := LoadProject(config.ProjectFile)
	if err != nil {
		return nil, nil, err
	}
	if config.ProjectFile != "" {
		console.Logger.Debug("Using project settings from %s", config.ProjectFile)
	}

	minLevel := config.MinLevel
	if minLevel == 0 {
		minLevel = domain.LevelWarning
	}

	orcConfig := &orchestrator.Config{
		Root:     g.root(config),
		Observer: console.NewObserver(console.Logger, minLevel),
		Debug:    g.debug,
	}
	if config.Specification != "" {
		pattern := config.Specification
		orcConfig.Filter = func(spec *domain.Specification) bool {
			matched, _ := path.Match(pattern, spec.Version)
			return matched
		}
	}
	if err := project.apply(orcConfig); err != nil {
		return nil, nil, err
	}

	return orchestrator.New(orcConfig), g.scraper(config, project), nil
}

// checkRoot reports a missing manifest or search dir. go/packages accepts patterns like ./...
func checkRoot(config *Config) error {
	if config.Manifest == "" && config.ParseGoPackages {
		return nil
	}
	root := config.Manifest
	if root == "" {
		root = config.SearchDir
	}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return fmt.Errorf("dir: %s does not exist", root)
	}
	return nil
}

func (g *Gen) root(config *Config) string {
	if config.Manifest != "" {
		return config.Manifest
	}
	return config.SearchDir
}

func (g *Gen) scraper(config *Config, project *Project) scraper.Scraper {
	if config.Manifest != "" {
		return &scraper.Manifest{Path: config.Manifest}
	}

	loaderOptions := []loader.Option{
		loader.WithExcludes(parseExcludes(config.Excludes)),
		loader.WithPackagePrefix(parsePackagePrefix(config.PackagePrefix)),
		loader.WithParseVendor(config.ParseVendor),
		loader.WithParseInternal(config.ParseInternal),
		loader.WithGoPackages(config.ParseGoPackages),
		loader.WithDependencyDepth(config.ParseDependency),
	}
	if config.ParseExtension != "" {
		loaderOptions = append(loaderOptions, loader.WithParseExtension(config.ParseExtension))
	}

	var sourceOptions []source.Option
	if len(project.IgnoredTypes) > 0 {
		ignored := append(append([]string(nil), source.DefaultIgnoredTypes...), project.IgnoredTypes...)
		sourceOptions = append(sourceOptions, source.WithIgnoredTypes(ignored))
	}

	return &scraper.Annotations{
		DefaultVersion:  config.DefaultVersion,
		MarkdownFileDir: config.MarkdownFilesDir,
		LoaderOptions:   loaderOptions,
		SourceOptions:   sourceOptions,
		Debug:           g.debug,
	}
}

func (g *Gen) writeJSON(config *Config, result orchestrator.Result) error {
	b, err := g.jsonIndent(result.Document)
	if err != nil {
		return err
	}

	return g.output(config, result.ID+".json", b)
}

func (g *Gen) writeYAML(config *Config, result orchestrator.Result) error {
	b, err := g.json(result.Document)
	if err != nil {
		return err
	}

	y, err := g.jsonToYAML(b)
	if err != nil {
		return fmt.Errorf("cannot covert json to yaml error: %s", err)
	}

	return g.output(config, result.ID+".yaml", y)
}

func (g *Gen) writeSwagger2(config *Config, result orchestrator.Result) error {
	doc := *result.Document
	if doc.Components == nil {
		doc.Components = &openapi3.Components{}
	}

	swagger, err := openapi2conv.FromV3(&doc)
	if err != nil {
		return fmt.Errorf("cannot convert %s to swagger 2.0: %w", result.ID, err)
	}

	b, err := g.jsonIndent(swagger)
	if err != nil {
		return err
	}

	return g.output(config, result.ID+".swagger.json", b)
}

// output writes b to a file named after the document, or to stdout.
func (g *Gen) output(config *Config, filename string, b []byte) error {
	if config.OutputDir == Stdout {
		if _, err := g.stdout.Write(b); err != nil {
			return err
		}
		_, err := io.WriteString(g.stdout, "\n")
		return err
	}

	fileName := filepath.Join(config.OutputDir, strings.ReplaceAll(filename, "/", "_"))
	if err := g.writeFile(b, fileName); err != nil {
		return err
	}

	console.Logger.Debug("create %s at %+v", filename, fileName)

	return nil
}

func (g *Gen) writeFile(b []byte, file string) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}

	defer f.Close()

	_, err = f.Write(b)

	return err
}

// parseExcludes converts comma-separated exclude string to map.
func parseExcludes(excludes string) map[string]struct{} {
	result := make(map[string]struct{})
	if excludes == "" {
		return result
	}

	for _, exclude := range strings.Split(excludes, ",") {
		exclude = strings.TrimSpace(exclude)
		if exclude != "" {
			result[exclude] = struct{}{}
		}
	}
	return result
}

// parsePackagePrefix converts comma-separated prefix string to slice.
func parsePackagePrefix(packagePrefix string) []string {
	if packagePrefix == "" {
		return []string{}
	}

	result := []string{}
	for _, prefix := range strings.Split(packagePrefix, ",") {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" {
			result = append(result, prefix)
		}
	}
	return result
}
