package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"telemetry-hub/internal/db"
)

var ErrLoadRules = errors.New("alert rules load failed")

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

type ruleStore interface {
	ListAlertRules(ctx context.Context, userID string) ([]db.AlertRule, error)
}

type Config struct {
	Store ruleStore
}

type Evaluator struct {
	store ruleStore
}

// Alert is one satisfied rule for one reading.
type Alert struct {
	RuleID   int64
	RuleName string
	Severity string
	Message  string
}

func New(cfg Config) *Evaluator {
	return &Evaluator{store: cfg.Store}
}

// Evaluate checks value against the owner's enabled rules for sensorType.
// Every satisfied rule yields one alert; nothing is debounced.
func (e *Evaluator) Evaluate(ctx context.Context, ownerID, sensorType string, value float64) ([]Alert, error) {
	const fn = "Evaluator:Evaluate"

	rules, err := e.store.ListAlertRules(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrLoadRules, err)
	}

	var alerts []Alert
	for _, rule := range rules {
		if !rule.Enabled || !strings.EqualFold(rule.SensorType, sensorType) {
			continue
		}
		if !Compare(rule.Operator, value, rule.Threshold) {
			continue
		}
		alerts = append(alerts, Alert{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Severity: rule.Severity,
			Message:  Message(sensorType, value, rule.Severity),
		})
	}
	return alerts, nil
}

// Compare applies operator. Unknown operators never match.
func Compare(operator string, value, threshold float64) bool {
	switch strings.TrimSpace(operator) {
	case ">":
		return value > threshold
	case "<":
		return value < threshold
	case "=":
		return value == threshold
	case ">=":
		return value >= threshold
	case "<=":
		return value <= threshold
	default:
		return false
	}
}

func Message(sensorType string, value float64, severity string) string {
	msg := fmt.Sprintf("ALERT: %s is %.2f", sensorType, value)
	if severity == SeverityCritical {
		msg += " !!!"
	}
	return msg
}
