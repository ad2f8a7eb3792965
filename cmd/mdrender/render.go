package main

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/alnah/go-mdrender"
	"github.com/alnah/go-mdrender/internal/assets"
	"github.com/alnah/go-mdrender/internal/config"
)

// mergeRenderFlags applies explicitly set render flags on top of cfg.
func mergeRenderFlags(f *renderFlags, cfg *config.Config) {
	if len(f.extensions) > 0 {
		cfg.Render.Extensions = f.extensions
	}
	if f.noEmails {
		cfg.Render.LinkEmails = false
	}
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
}

// runRender renders files, or stdin to stdout when no files are given.
func runRender(args []string, env *Environment) error {
	flags, inputs, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	mergeRenderFlags(flags, cfg)

	renderer, err := mdrender.NewRenderer(buildPolicy(cfg.Render))
	if err != nil {
		return err
	}

	var doc *documentWriter
	if flags.standalone {
		resolver, err := assets.NewAssetResolver(cfg.Assets.BasePath)
		if err != nil {
			return err
		}
		if doc, err = newDocumentWriter(resolver); err != nil {
			return err
		}
	}

	if len(inputs) == 0 {
		return renderStdin(renderer, doc, flags.output, env)
	}

	files, err := discoverFiles(inputs, flags.output)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no Markdown files found in %v", ErrNoInput, inputs)
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	results := renderBatch(ctx, renderer, flags.workers, files, doc)
	summary := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed: %w", summary.Failed, len(results), firstError(results))
	}
	return nil
}

// renderStdin renders standard input to standard output, or to --output
// when it names an .html file.
func renderStdin(r Renderer, doc *documentWriter, output string, env *Environment) error {
	if output != "" && !strings.HasSuffix(output, htmlExt) {
		return fmt.Errorf("%w: with stdin input, --output must name an %s file", ErrUsage, htmlExt)
	}

	content, err := io.ReadAll(env.Stdin)
	if err != nil {
		return fmt.Errorf("%w: stdin: %v", ErrReadMarkdown, err)
	}

	out := r.Render(string(content))
	if doc != nil {
		if out, err = doc.Wrap(string(content), "", out); err != nil {
			return err
		}
	}

	if output == "" {
		if _, err := io.WriteString(env.Stdout, out); err != nil {
			return fmt.Errorf("%w: stdout: %v", ErrWriteHTML, err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(output), dirPermissions); err != nil {
		return fmt.Errorf("%w: creating output directory: %v", ErrWriteHTML, err)
	}
	// #nosec G306 -- HTML files are meant to be readable
	if err := os.WriteFile(output, []byte(out), filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteHTML, err)
	}
	return nil
}

func firstError(results []RenderResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// documentWriter wraps rendered fragments in a standalone HTML page.
type documentWriter struct {
	tmpl  *template.Template
	style template.CSS
}

type documentData struct {
	Title    string
	Rendered template.HTML
	Style    template.CSS
	Version  string
}

func newDocumentWriter(l assets.AssetLoader) (*documentWriter, error) {
	doc, err := assets.LoadDocument(l)
	if err != nil {
		return nil, fmt.Errorf("loading document assets: %w", err)
	}
	tmpl, err := template.New(assets.DocumentTemplate).Parse(doc.Template)
	if err != nil {
		return nil, fmt.Errorf("parsing document template: %w", err)
	}
	return &documentWriter{
		tmpl:  tmpl,
		style: template.CSS(doc.Style), // #nosec G203 -- stylesheet ships with the binary or the operator's asset dir
	}, nil
}

// Wrap executes the document template around rendered, which must already
// be sanitized.
func (d *documentWriter) Wrap(markdown, path, rendered string) (string, error) {
	var buf bytes.Buffer
	err := d.tmpl.Execute(&buf, documentData{
		Title:    documentTitle(markdown, path),
		Rendered: template.HTML(rendered), // #nosec G203 -- sanitized by the renderer
		Style:    d.style,
		Version:  Version,
	})
	if err != nil {
		return "", fmt.Errorf("executing document template: %w", err)
	}
	return buf.String(), nil
}

// firstHeadingPattern matches the first # heading in Markdown content.
var firstHeadingPattern = regexp.MustCompile(`(?m)^#\s+(.+?)\s*#*\s*$`)

// documentTitle uses the first H1, else the file name in title case.
func documentTitle(markdown, path string) string {
	if m := firstHeadingPattern.FindStringSubmatch(markdown); m != nil {
		return m[1]
	}
	if path == "" {
		return "Untitled"
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return cases.Title(language.English).String(base)
}
