// Package alert raises out-of-band alerts for freshly stored
// notifications. Every channel failure is logged and swallowed; alert
// dispatch never propagates an error into the pipeline.
package alert

import (
	"context"

	"vascomart-client/internal/common/errors"
	"vascomart-client/internal/common/logger"
	"vascomart-client/internal/common/metrics"
	"vascomart-client/internal/models"
)

// Channel delivers one notification over one medium.
type Channel interface {
	Name() string
	Notify(ctx context.Context, n *models.Notification) error
}

type Dispatcher struct {
	channels []Channel
	log      logger.Logger
}

func NewDispatcher(log logger.Logger, channels ...Channel) *Dispatcher {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Dispatcher{channels: channels, log: log}
}

// Dispatch fans the notification out to every configured channel.
func (d *Dispatcher) Dispatch(ctx context.Context, n *models.Notification) {
	for _, ch := range d.channels {
		if err := ch.Notify(ctx, n); err != nil {
			alertErr := errors.NewAlertFailedError(ch.Name(), err)
			d.log.Warn("alert dispatch failed", map[string]interface{}{
				"channel": ch.Name(),
				"error":   alertErr.Details,
			})
			metrics.AlertsDispatched.WithLabelValues(ch.Name(), "error").Inc()
			continue
		}
		metrics.AlertsDispatched.WithLabelValues(ch.Name(), "ok").Inc()
	}
}
