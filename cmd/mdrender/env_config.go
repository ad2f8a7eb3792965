package main

import (
	"fmt"

	"github.com/alnah/go-mdrender"
	"github.com/alnah/go-mdrender/internal/config"
)

// loadConfig builds the effective configuration.
// Priority: CLI flags > environment (.env included) > config file > defaults.
// CLI flags are applied by each command after this returns.
func loadConfig(flagPath string, env *Environment) (*config.Config, error) {
	if err := config.LoadDotEnv(env.DotEnvFiles...); err != nil {
		return nil, err
	}
	warnUnknownEnvVars(env)

	path := flagPath
	if path == "" {
		if v, ok := env.LookupEnv(config.EnvConfig); ok {
			path = v
		}
	}

	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	config.ApplyEnv(cfg, env.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// warnUnknownEnvVars prints a warning for each unrecognized MDRENDER_* variable.
func warnUnknownEnvVars(env *Environment) {
	if env.Environ == nil {
		return
	}
	for _, name := range config.UnknownEnvVars(env.Environ()) {
		fmt.Fprintf(env.Stderr, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// buildPolicy derives the render policy from config. Extensions replace
// the default set only when listed.
func buildPolicy(rc config.RenderConfig) mdrender.Policy {
	p := mdrender.DefaultPolicy()
	if len(rc.Extensions) > 0 {
		p.Extensions = append([]string(nil), rc.Extensions...)
	}
	p.LinkEmails = rc.LinkEmails
	return p
}

// runConfig prints the effective configuration as YAML.
func runConfig(args []string, env *Environment) error {
	flags, err := parseConfigFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.config, env)
	if err != nil {
		return err
	}
	// Policy errors surface here rather than at the next serve.
	if _, err := mdrender.NewRenderer(buildPolicy(cfg.Render)); err != nil {
		return err
	}

	out, err := cfg.YAML()
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = env.Stdout.Write(out)
	return err
}
