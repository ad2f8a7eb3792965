package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks invalid command-line input.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common    commonFlags
	addr      string
	assetPath string
	logFormat string
	noMetrics bool
}

// renderFlags holds flags for the render command.
type renderFlags struct {
	common     commonFlags
	output     string
	workers    int
	extensions []string
	noEmails   bool
	standalone bool
	assetPath  string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging and per-file timing")
}

// newFlagSet returns a FlagSet that reports errors instead of exiting and
// prints usage to w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, w io.Writer) (*serveFlags, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve", w, printServeUsage)

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (overrides config)")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory overriding the embedded page assets")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text, json")
	fs.BoolVar(&f.noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, usageError(err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: serve takes no arguments, got %v", ErrUsage, fs.Args())
	}
	return f, nil
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, w io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := newFlagSet("render", w, printRenderUsage)

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringSliceVar(&f.extensions, "ext", nil, "Markdown extensions, comma-separated (overrides config)")
	fs.BoolVar(&f.noEmails, "no-link-emails", false, "do not turn bare email addresses into links")
	fs.BoolVar(&f.standalone, "standalone", false, "wrap output in a full HTML page")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory overriding the embedded page assets")
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

// parseConfigFlags parses config command flags.
func parseConfigFlags(args []string, w io.Writer) (*commonFlags, error) {
	f := &commonFlags{}
	fs := newFlagSet("config", w, printConfigUsage)
	addCommonFlags(fs, f)

	if err := fs.Parse(args); err != nil {
		return nil, usageError(err)
	}
	return f, nil
}

// usageError wraps a flag parse error with ErrUsage, leaving ErrHelp as is.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}
