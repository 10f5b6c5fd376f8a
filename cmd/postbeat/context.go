package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"postbeat/internal/config"
	"postbeat/internal/intake"
	"postbeat/internal/logging"
	"postbeat/internal/notifications"
	"postbeat/internal/publish"
	"postbeat/internal/services/mediastore"
	"postbeat/internal/services/meta"
	"postbeat/internal/store"
	"postbeat/internal/workflow"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) openLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}

// buildRunner assembles the full publishing pipeline. The page token
// exchange happens here so every command shares the same startup sequence.
func (c *commandContext) buildRunner(ctx context.Context, logger *slog.Logger) (*workflow.Runner, *store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(cfg)
	if err != nil {
		return nil, nil, err
	}

	uploader, err := mediastore.New(ctx, cfg, logger)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	client := meta.NewClient(cfg, logger)
	client.ExchangePageToken(ctx)

	mgr := intake.NewManager(cfg, st, logger)
	pub := publish.NewPublisher(cfg, st, client, uploader, logger)
	notifier := notifications.NewService(cfg)

	return workflow.NewRunner(cfg, st, mgr, pub, notifier, logger), st, nil
}
