package main

import (
	"errors"
	"fmt"
	"os"
	"slices"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Configure GOMAXPROCS from the container CPU quota, logging only with -v.
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS is invalid, in
	// which case the runtime default applies.
	verbose := slices.Contains(os.Args, "-v") || slices.Contains(os.Args, "--verbose")
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		if verbose {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}))

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches to a command and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	var err error

	switch cmd {
	case "serve":
		err = runServe(rest, env)
	case "render":
		err = runRender(rest, env)
	case "config":
		err = runConfig(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "mdrender %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(rest, env)
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	}
	return exitCodeFor(err)
}
