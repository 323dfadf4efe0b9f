// Package ingest runs the per-message path of a device: normalize, discover
// new fields, evaluate alert rules and fan the results out.
package ingest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"telemetry-hub/internal/broker"
	"telemetry-hub/internal/db"
	"telemetry-hub/internal/hub"
	"telemetry-hub/internal/metrics"
	"telemetry-hub/internal/processors/alerts"
	"telemetry-hub/internal/processors/normalizer"
)

type payloadNormalizer interface {
	Normalize(ctx context.Context, deviceID int64, payload []byte) (normalizer.Result, error)
}

type metadataRegistry interface {
	Has(key string) bool
	Discover(ctx context.Context, key string, sample any) error
}

type ruleEvaluator interface {
	Evaluate(ctx context.Context, ownerID, sensorType string, value float64) ([]alerts.Alert, error)
}

type broadcaster interface {
	Broadcast(ctx context.Context, ev hub.Event, ownerID string) int
}

type Config struct {
	Normalizer  payloadNormalizer
	Registry    metadataRegistry
	Evaluator   ruleEvaluator
	Broadcaster broadcaster
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

type Pipeline struct {
	normalizer  payloadNormalizer
	registry    metadataRegistry
	evaluator   ruleEvaluator
	broadcaster broadcaster
	metrics     *metrics.Metrics
	now         func() time.Time
}

func New(cfg Config) *Pipeline {
	p := &Pipeline{
		normalizer:  cfg.Normalizer,
		registry:    cfg.Registry,
		evaluator:   cfg.Evaluator,
		broadcaster: cfg.Broadcaster,
		metrics:     cfg.Metrics,
		now:         cfg.Now,
	}
	if p.metrics == nil {
		p.metrics = metrics.NewNop()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// HandleMessage never fails the connection: an unparseable message is
// dropped, and a store failure only skips the affected step of one reading.
func (p *Pipeline) HandleMessage(ctx context.Context, device db.Device, msg broker.Message) {
	result, err := p.normalizer.Normalize(ctx, device.ID, msg.Payload)
	if err != nil {
		p.metrics.ParseErrors.WithLabelValues(protocol(device)).Inc()
		slog.WarnContext(ctx, "Dropping unparseable message",
			"device_id", device.ID,
			"topic", msg.Topic,
			"error", err,
		)
		return
	}

	receivedAt := msg.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = p.now()
	}
	p.broadcaster.Broadcast(ctx, hub.RawUpdate(device.ID, string(db.StatusConnected), result.Raw, receivedAt), device.OwnerID)

	for _, r := range result.Readings {
		p.dispatch(ctx, device, r)
	}
}

func (p *Pipeline) dispatch(ctx context.Context, device db.Device, r normalizer.Reading) {
	kind := "string"
	if r.IsNumeric() {
		kind = "numeric"
	}
	p.metrics.Readings.WithLabelValues(kind).Inc()

	if !p.registry.Has(r.Type) {
		if err := p.registry.Discover(ctx, r.Type, r.Sample()); err != nil {
			slog.ErrorContext(ctx, "Metadata discovery failed", "device_id", device.ID, "type", r.Type, "error", err)
		}
	}

	var fired []alerts.Alert
	if r.IsNumeric() {
		var err error
		fired, err = p.evaluator.Evaluate(ctx, device.OwnerID, r.Type, *r.Value)
		if err != nil {
			slog.ErrorContext(ctx, "Alert check failed", "device_id", device.ID, "owner_id", device.OwnerID, "type", r.Type, "error", err)
		}
	}

	p.broadcaster.Broadcast(ctx, hub.ReadingUpdate(device.ID, string(db.StatusConnected), r), device.OwnerID)

	for _, a := range fired {
		p.metrics.Alerts.WithLabelValues(a.Severity).Inc()
		slog.InfoContext(ctx, "Alert fired", "device_id", device.ID, "rule", a.RuleName, "severity", a.Severity)
		p.broadcaster.Broadcast(ctx, hub.Alert(device.ID, a.RuleName, a.Severity, a.Message), device.OwnerID)
	}
}

func protocol(d db.Device) string {
	if p := strings.ToLower(strings.TrimSpace(d.Protocol)); p != "" {
		return p
	}
	return "mqtt"
}
