package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file discovery.
var (
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

const htmlExt = ".html"

// FileToRender is one input file and where its HTML goes.
type FileToRender struct {
	InputPath  string
	OutputPath string
}

// isMarkdown reports whether path has a Markdown extension.
func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// discoverFiles expands file and directory arguments into render jobs.
// Directories are walked recursively for Markdown files; explicit files
// must have a Markdown extension.
func discoverFiles(inputs []string, output string) ([]FileToRender, error) {
	var files []FileToRender

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if !isMarkdown(input) {
				return nil, fmt.Errorf("%w: %s", ErrInvalidExtension, input)
			}
			files = append(files, FileToRender{
				InputPath:  input,
				OutputPath: resolveOutputPath(input, output, ""),
			})
			continue
		}

		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			if d.IsDir() || !isMarkdown(path) {
				return nil
			}
			files = append(files, FileToRender{
				InputPath:  path,
				OutputPath: resolveOutputPath(path, output, input),
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if strings.HasSuffix(output, htmlExt) && len(files) > 1 {
		return nil, fmt.Errorf("%w: --output %s names one file but %d inputs were found", ErrUsage, output, len(files))
	}
	return files, nil
}

// resolveOutputPath determines the HTML output path for a Markdown file.
// Inputs found under baseInputDir keep their relative layout in outputDir.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base+htmlExt)
	}
	if strings.HasSuffix(outputDir, htmlExt) {
		return outputDir
	}

	if baseInputDir != "" {
		if rel, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return filepath.Join(outputDir, filepath.Dir(rel), base+htmlExt)
		}
	}
	return filepath.Join(outputDir, base+htmlExt)
}
