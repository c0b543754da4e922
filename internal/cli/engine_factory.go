package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/rootseek"
	"github.com/aretw0/rootseek/internal/config"
	"github.com/aretw0/rootseek/pkg/domain"
	"github.com/aretw0/rootseek/pkg/observability"
)

// NewEngine initializes an explorer engine with standard CLI conventions.
// In debug mode every lifecycle event is logged; extra hooks (e.g. metrics)
// are merged in.
func NewEngine(cfg config.Config, logger *slog.Logger, debug bool, extra ...domain.LifecycleHooks) (*rootseek.Engine, error) {
	hooks := extra
	if debug {
		hooks = append(hooks, createDebugHooks(logger))
	}

	opts := cfg.EngineOptions()
	opts = append(opts,
		rootseek.WithLogger(logger),
		rootseek.WithLifecycleHooks(observability.MergeHooks(hooks...)),
	)

	engine, err := rootseek.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}
