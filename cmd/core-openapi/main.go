package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/griffnb/core-openapi/internal/console"
	"github.com/griffnb/core-openapi/internal/domain"
	"github.com/griffnb/core-openapi/internal/gen"
)

const (
	searchDirFlag            = "dir"
	manifestFlag             = "manifest"
	projectFlag              = "project"
	excludeFlag              = "exclude"
	outputFlag               = "output"
	outputTypesFlag          = "outputTypes"
	specificationFlag        = "specification"
	defaultVersionFlag       = "defaultVersion"
	parseVendorFlag          = "parseVendor"
	parseDependencyFlag      = "parseDependency"
	parseDependencyLevelFlag = "parseDependencyLevel"
	markdownFilesFlag        = "markdownFiles"
	parseInternalFlag        = "parseInternal"
	parseExtensionFlag       = "parseExtension"
	packagePrefixFlag        = "packagePrefix"
	parseGoPackagesFlag      = "parseGoPackages"
	levelFlag                = "level"
	quietFlag                = "quiet"
	debugFlag                = "debug"
	typeFlag                 = "type"
	declaringFlag            = "declaring"
	handlerFlag              = "handler"
)

var sourceFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    searchDirFlag,
		Aliases: []string{"d"},
		Value:   "./",
		Usage:   "Directory of the Go sources to scrape",
	},
	&cli.StringFlag{
		Name:    manifestFlag,
		Aliases: []string{"m"},
		Usage:   "Endpoint manifest to read instead of scraping Go sources",
	},
	&cli.StringFlag{
		Name:  projectFlag,
		Value: gen.DefaultProjectFile,
		Usage: "Project file with settings, common parameters, formats and describing rules",
	},
	&cli.StringFlag{
		Name:  excludeFlag,
		Usage: "Exclude directories and files when searching, comma separated",
	},
	&cli.StringFlag{
		Name:  defaultVersionFlag,
		Usage: "Version of handlers without @Version, v1 by default",
	},
	&cli.BoolFlag{
		Name:  parseVendorFlag,
		Usage: "Parse go files in 'vendor' folder, disabled by default",
	},
	&cli.IntFlag{
		Name:    parseDependencyLevelFlag,
		Aliases: []string{"pdl"},
		Usage:   "Depth of imported packages to parse, 0 disabled",
	},
	&cli.BoolFlag{
		Name:    parseDependencyFlag,
		Aliases: []string{"pd"},
		Usage:   "Parse packages imported by the sources, disabled by default",
	},
	&cli.StringFlag{
		Name:    markdownFilesFlag,
		Aliases: []string{"md"},
		Usage:   "Parse folder containing markdown files to use as description, disabled by default",
	},
	&cli.BoolFlag{
		Name:  parseInternalFlag,
		Usage: "Parse standard library packages as dependencies, disabled by default",
	},
	&cli.StringFlag{
		Name:  parseExtensionFlag,
		Usage: "Parse only files with the given extension",
	},
	&cli.StringFlag{
		Name:  packagePrefixFlag,
		Usage: "Parse only packages whose import path match the given prefix, comma separated",
	},
	&cli.BoolFlag{
		Name:  parseGoPackagesFlag,
		Usage: "Parse Go sources by golang.org/x/tools/go/packages, disabled by default",
	},
	&cli.StringFlag{
		Name:    levelFlag,
		Aliases: []string{"l"},
		Value:   domain.LevelWarning.String(),
		Usage:   "Least severe notice to log: success, important, info, warning or error",
	},
	&cli.BoolFlag{
		Name:    quietFlag,
		Aliases: []string{"q"},
		Usage:   "Log errors only.",
	},
	&cli.BoolFlag{
		Name:  debugFlag,
		Usage: "Enable debug mode, disabled by default",
	},
}

var generateFlags = append([]cli.Flag{
	&cli.StringFlag{
		Name:    outputFlag,
		Aliases: []string{"o"},
		Value:   "./docs",
		Usage:   "Output directory for all the generated files, - for stdout",
	},
	&cli.StringFlag{
		Name:    outputTypesFlag,
		Aliases: []string{"ot"},
		Value:   "json,yaml",
		Usage:   "Output types of generated files like json,yaml,swagger2",
	},
	&cli.StringFlag{
		Name:    specificationFlag,
		Aliases: []string{"s"},
		Usage:   "Generate only the versions matching this glob",
	},
}, sourceFlags...)

var inspectFlags = append([]cli.Flag{
	&cli.StringFlag{
		Name:    typeFlag,
		Aliases: []string{"t"},
		Usage:   "Type specification to describe, e.g. 'models.User[]|null'",
	},
	&cli.StringFlag{
		Name:  declaringFlag,
		Usage: "Type or function whose imports resolve --type",
	},
	&cli.StringFlag{
		Name:  handlerFlag,
		Usage: "Handler to describe as pkg.Type.Method or pkg.Func",
	},
}, sourceFlags...)

func config(ctx *cli.Context) (*gen.Config, error) {
	if ctx.Bool(debugFlag) {
		console.Logger.DebugLevel = 1
	}

	level, err := domain.ParseLevel(ctx.String(levelFlag))
	if err != nil {
		return nil, err
	}
	if ctx.Bool(quietFlag) {
		level = domain.LevelError
	}

	pdv := ctx.Int(parseDependencyLevelFlag)
	if pdv == 0 {
		if ctx.Bool(parseDependencyFlag) {
			pdv = 1
		}
	}

	return &gen.Config{
		SearchDir:        ctx.String(searchDirFlag),
		Manifest:         ctx.String(manifestFlag),
		ProjectFile:      ctx.String(projectFlag),
		Excludes:         ctx.String(excludeFlag),
		ParseExtension:   ctx.String(parseExtensionFlag),
		PackagePrefix:    ctx.String(packagePrefixFlag),
		ParseVendor:      ctx.Bool(parseVendorFlag),
		ParseInternal:    ctx.Bool(parseInternalFlag),
		ParseDependency:  pdv,
		ParseGoPackages:  ctx.Bool(parseGoPackagesFlag),
		MarkdownFilesDir: ctx.String(markdownFilesFlag),
		DefaultVersion:   ctx.String(defaultVersionFlag),
		MinLevel:         level,
	}, nil
}

func generateAction(ctx *cli.Context) error {
	c, err := config(ctx)
	if err != nil {
		return err
	}

	outputTypes := strings.Split(ctx.String(outputTypesFlag), ",")
	if len(outputTypes) == 0 {
		return fmt.Errorf("no output types specified")
	}
	c.OutputDir = ctx.String(outputFlag)
	c.OutputTypes = outputTypes
	c.Specification = ctx.String(specificationFlag)

	return gen.New().Build(ctx.Context, c)
}

func scrapeAction(ctx *cli.Context) error {
	c, err := config(ctx)
	if err != nil {
		return err
	}

	specs, err := gen.New().Scrape(ctx.Context, c)
	if err != nil {
		return err
	}

	for _, spec := range specs {
		fmt.Fprintf(ctx.App.Writer, "%s  %s (%d endpoints)\n", spec.Version, spec.DisplayTitle(), len(spec.Endpoints))
		for _, endpoint := range spec.Endpoints {
			fmt.Fprintf(ctx.App.Writer, "  %-7s %-30s %s\n", endpoint.Method(), endpoint.ID, endpoint.Callback)
		}
	}
	return nil
}

func inspectAction(ctx *cli.Context) error {
	c, err := config(ctx)
	if err != nil {
		return err
	}

	var result interface{}
	switch {
	case ctx.String(typeFlag) != "":
		result, err = gen.New().InspectType(ctx.Context, c, ctx.String(declaringFlag), ctx.String(typeFlag))
	case ctx.String(handlerFlag) != "":
		result, err = gen.New().InspectHandler(ctx.Context, c, ctx.String(handlerFlag))
	default:
		return fmt.Errorf("one of --%s or --%s is required", typeFlag, handlerFlag)
	}
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(result, "", "    ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(ctx.App.Writer, string(b))
	return err
}

func main() {
	app := cli.NewApp()
	app.Version = gen.Version
	app.Usage = "Automatically generate OpenAPI 3 documentation for Go handlers."
	app.Commands = []*cli.Command{
		{
			Name:    "generate",
			Aliases: []string{"g"},
			Usage:   "Generate one document per specification",
			Action:  generateAction,
			Flags:   generateFlags,
		},
		{
			Name:   "scrape",
			Usage:  "List the specifications and endpoints found, without describing them",
			Action: scrapeAction,
			Flags:  sourceFlags,
		},
		{
			Name:    "inspect",
			Aliases: []string{"i"},
			Usage:   "Describe a single type or handler",
			Action:  inspectAction,
			Flags:   inspectFlags,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
