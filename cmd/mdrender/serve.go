package main

import (
	"context"
	"fmt"

	"github.com/alnah/go-mdrender"
	"github.com/alnah/go-mdrender/internal/assets"
	"github.com/alnah/go-mdrender/internal/config"
	"github.com/alnah/go-mdrender/internal/hints"
	"github.com/alnah/go-mdrender/internal/server"
)

// mergeServeFlags applies explicitly set serve flags on top of cfg.
func mergeServeFlags(f *serveFlags, cfg *config.Config) {
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	if f.noMetrics {
		cfg.Server.Metrics = false
	}
	switch {
	case f.common.verbose:
		cfg.Log.Level = "debug"
	case f.common.quiet:
		cfg.Log.Level = "error"
	}
}

// runServe starts the HTTP server and blocks until SIGINT/SIGTERM.
func runServe(args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	mergeServeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if hint := hints.ForContainerBind(cfg.Server.Addr); hint != "" {
		fmt.Fprintf(env.Stderr, "warning: %s is not reachable from outside the container%s\n", cfg.Server.Addr, hint)
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	srv, err := newServer(cfg, env)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}

// newServer wires config, policy, assets, and logging into a server.
func newServer(cfg *config.Config, env *Environment) (*server.Server, error) {
	logger, err := server.NewLogger(cfg.Log.Level, cfg.Log.Format, env.Stderr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	renderer, err := mdrender.NewRenderer(buildPolicy(cfg.Render))
	if err != nil {
		return nil, err
	}

	resolver, err := assets.NewAssetResolver(cfg.Assets.BasePath)
	if err != nil {
		return nil, err
	}
	page, err := assets.LoadPage(resolver)
	if err != nil {
		return nil, fmt.Errorf("loading page assets: %w", err)
	}
	if resolver.HasCustomLoader() {
		logger.WithField("path", cfg.Assets.BasePath).Info("using custom assets")
	}

	return server.New(renderer, server.Options{
		Config:  cfg.Server,
		Page:    page,
		Logger:  logger,
		Version: Version,
	})
}
