package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/NoahInCloud/devops-sentinel-multi-agent/internal/agent"
	"github.com/NoahInCloud/devops-sentinel-multi-agent/internal/config"
	"github.com/NoahInCloud/devops-sentinel-multi-agent/internal/orchestrator"
	"github.com/NoahInCloud/devops-sentinel-multi-agent/internal/redis"
)

// buildOrchestrator assembles and initializes the full agent stack from
// a loaded config. The returned redis client may be disabled; callers
// must Shutdown the orchestrator and Close the client when done.
func buildOrchestrator(ctx context.Context, cfg config.Config) (*orchestrator.Orchestrator, *redis.Client, error) {
	specs, err := agent.LoadSpecs(cfg.Agents.SpecsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading agent specs: %w", err)
	}

	cache := redis.New(redis.Config{
		URL:      cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	orch := orchestrator.New(func(opts *orchestrator.Options) {
		opts.GlobalTimeout = time.Duration(cfg.Orchestrator.GlobalTimeoutSeconds) * time.Second
		opts.TaskRetention = time.Duration(cfg.Orchestrator.TaskRetentionMinutes) * time.Minute
		opts.HeartbeatInterval = time.Duration(cfg.Orchestrator.HeartbeatSeconds) * time.Second
		opts.SubscriptionID = cfg.Agents.SubscriptionID
		opts.ClusterName = cfg.Agents.ClusterName
		opts.Specs = specs
		opts.Cache = cache
	})

	if err := orch.Initialize(ctx); err != nil {
		cache.Close()
		return nil, nil, fmt.Errorf("initializing orchestrator: %w", err)
	}
	return orch, cache, nil
}
