package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdrender <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Run the web renderer and JSON API")
	fmt.Fprintln(w, "  render     Render Markdown files (or stdin) to HTML")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdrender help <command>' for details on a specific command.")
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <path>       Config file (default: $MDRENDER_CONFIG)")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging and per-file timing")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdrender serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve the editor page on / and the JSON API on /api/render.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default :8989, $MDRENDER_ADDR)")
	fmt.Fprintln(w, "      --asset-path <dir>    Directory overriding embedded templates, styles, samples")
	fmt.Fprintln(w, "      --log-format <s>      Log format: text, json")
	fmt.Fprintln(w, "      --no-metrics          Disable GET /metrics")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdrender render [files or directories] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render Markdown to sanitized HTML. With no arguments, reads stdin and")
	fmt.Fprintln(w, "writes stdout. Each input.md is written next to it as input.html unless")
	fmt.Fprintln(w, "--output is given.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (.html) or directory")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --ext <list>          Extensions: extra, admonition, sane_lists, toc, nl2br, highlight")
	fmt.Fprintln(w, "      --no-link-emails      Leave bare email addresses as text")
	fmt.Fprintln(w, "      --standalone          Wrap output in a full HTML page with styles and MathJax")
	fmt.Fprintln(w, "      --asset-path <dir>    Directory overriding the embedded page assets")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdrender config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration after applying the config file, .env, and")
	fmt.Fprintln(w, "MDRENDER_* environment variables.")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "render":
		printRenderUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdrender version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdrender help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
