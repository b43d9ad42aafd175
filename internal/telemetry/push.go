/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog"
)

// PushConfig describes where batch metrics go once a command finishes.
type PushConfig struct {
	GatewayURL string
	Job        string
	Instance   string
}

// Enabled reports whether a pushgateway is configured.
func (c PushConfig) Enabled() bool {
	return c.GatewayURL != ""
}

// Push sends the default registry to the configured pushgateway. It is a
// no-op when no gateway is configured.
func Push(ctx context.Context, cfg PushConfig, logger zerolog.Logger) error {
	if !cfg.Enabled() {
		return nil
	}

	job := cfg.Job
	if job == "" {
		job = "smartlists"
	}

	pusher := push.New(cfg.GatewayURL, job).Gatherer(prometheus.DefaultGatherer)
	if cfg.Instance != "" {
		pusher = pusher.Grouping("instance", cfg.Instance)
	}

	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", cfg.GatewayURL, err)
	}

	logger.Debug().Str("gateway", cfg.GatewayURL).Str("job", job).Msg("metrics pushed")
	return nil
}
