// Package container provides dependency injection for the application.
// Grounded on reglet's internal/infrastructure/container (Options struct,
// New(Options) (*Container, error), adapters wired in one place).
package container

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cyrup-ai/kargo/internal/application/bridge"
	"github.com/cyrup-ai/kargo/internal/application/composer"
	"github.com/cyrup-ai/kargo/internal/application/dispatcher"
	"github.com/cyrup-ai/kargo/internal/application/registry"
	"github.com/cyrup-ai/kargo/internal/application/tasks"
	"github.com/cyrup-ai/kargo/internal/infrastructure/build"
	"github.com/cyrup-ai/kargo/internal/infrastructure/config"
	"github.com/cyrup-ai/kargo/internal/infrastructure/discovery"
	"github.com/cyrup-ai/kargo/internal/infrastructure/sandbox"
)

// Options configure the container.
type Options struct {
	Logger     *slog.Logger
	ConfigPath string
}

// Container holds every wired dependency for one process lifetime.
type Container struct {
	Config     *config.Config
	Registry   *registry.Registry
	Dispatcher *dispatcher.Dispatcher
	Root       *cobra.Command

	sandboxRuntime *sandbox.Runtime
	taskRegistry   *tasks.Registry
}

// New builds the full dependency graph: config → task registry → capability
// bridge → sandbox runtime → registry → discovery → dispatcher → composer
// → root command. Discovery runs synchronously here so Root is ready to
// execute by the time New returns.
func New(ctx context.Context, opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		opts.Logger.Warn("failed to load config, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	taskRegistry := tasks.NewRegistry(tasks.BuiltinFactories())
	capBridge := bridge.New(taskRegistry, bridge.DefaultCapacity)

	sandboxRuntime, err := sandbox.NewRuntime(ctx, capBridge)
	if err != nil {
		return nil, fmt.Errorf("container: sandbox runtime: %w", err)
	}

	reg := registry.New()
	builder := build.New()
	disco := discovery.New(sandboxRuntime, builder)

	configDir, err := os.UserHomeDir()
	if err == nil {
		configDir = filepath.Join(configDir, ".kargo")
	}

	disco.Run(ctx, reg, config.SearchPaths(cfg))

	passthroughName := cfg.PassthroughName

	disp := dispatcher.New(reg, nil, passthroughName, cfg.WrappedTool, configDir)
	comp := composer.New(reg, disp, passthroughName)

	root, err := comp.Build("kargo", "Plugin-extensible build and package tool dispatcher")
	if err != nil {
		return nil, fmt.Errorf("container: compose command surface: %w", err)
	}
	disp.SetRoot(root)

	return &Container{
		Config:         cfg,
		Registry:       reg,
		Dispatcher:     disp,
		Root:           root,
		sandboxRuntime: sandboxRuntime,
		taskRegistry:   taskRegistry,
	}, nil
}

// Close tears down the sandbox runtime (and, through it, the Capability
// Bridge consumer goroutine) and every registered extension.
func (c *Container) Close(ctx context.Context) error {
	c.Registry.CloseAll(ctx)
	return c.sandboxRuntime.Close(ctx)
}

// Tasks exposes the Task Registry for diagnostics commands.
func (c *Container) Tasks() *tasks.Registry {
	return c.taskRegistry
}
