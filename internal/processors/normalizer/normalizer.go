package normalizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

var (
	ErrParsePayload    = errors.New("payload parse failed")
	ErrNonNumericValue = errors.New("non-numeric canonical value")
)

type Config struct {
	// Extractors are tried in order per item. Defaults to DefaultExtractors.
	Extractors []Extractor
	Now        func() time.Time
	NewID      func() string
}

type Normalizer struct {
	extractors []Extractor
	now        func() time.Time
	newID      func() string
}

// Result is everything extracted from one message.
type Result struct {
	Raw      json.RawMessage
	Readings []Reading
}

func New(cfg Config) *Normalizer {
	n := &Normalizer{
		extractors: cfg.Extractors,
		now:        cfg.Now,
		newID:      cfg.NewID,
	}
	if len(n.extractors) == 0 {
		n.extractors = DefaultExtractors()
	}
	if n.now == nil {
		n.now = time.Now
	}
	if n.newID == nil {
		n.newID = uuid.NewString
	}
	return n
}

// Normalize parses one device message. A payload that is not JSON fails with
// ErrParsePayload. Items whose values cannot be read are skipped and logged;
// they never fail the message.
func (n *Normalizer) Normalize(ctx context.Context, deviceID int64, payload []byte) (Result, error) {
	const fn = "Normalizer:Normalize"

	items, err := splitItems(payload)
	if err != nil {
		return Result{}, fmt.Errorf("%s:%w:%w", fn, ErrParsePayload, err)
	}

	result := Result{Raw: json.RawMessage(payload)}
	for i, item := range items {
		for _, ex := range n.extractors {
			fields, ok, err := ex.Extract(item)
			if !ok {
				continue
			}
			if err != nil {
				slog.DebugContext(ctx, "Skipping unreadable item",
					"device_id", deviceID,
					"item", i,
					"extractor", ex.Name(),
					"error", err,
				)
			}
			for _, f := range fields {
				result.Readings = append(result.Readings, n.reading(deviceID, f))
			}
			break
		}
	}
	return result, nil
}

func (n *Normalizer) reading(deviceID int64, f Field) Reading {
	return Reading{
		ID:          n.newID(),
		DeviceID:    deviceID,
		Type:        f.Type,
		Value:       f.Value,
		StringValue: f.StringValue,
		Unit:        f.Unit,
		Timestamp:   n.now(),
	}
}
