package normalizer

import "time"

// Reading is one normalized observation. Exactly one of Value and StringValue
// is set. Readings are never persisted.
type Reading struct {
	ID          string    `json:"id"`
	DeviceID    int64     `json:"deviceId"`
	Type        string    `json:"type"`
	Value       *float64  `json:"value"`
	StringValue *string   `json:"stringValue"`
	Unit        string    `json:"unit"`
	Timestamp   time.Time `json:"timestamp"`
}

func (r Reading) IsNumeric() bool {
	return r.Value != nil
}

// Sample is the raw value handed to metadata inference.
func (r Reading) Sample() any {
	if r.Value != nil {
		return *r.Value
	}
	if r.StringValue != nil {
		return *r.StringValue
	}
	return nil
}

// Field is what an Extractor produces; the Normalizer stamps identity and time.
type Field struct {
	Type        string
	Value       *float64
	StringValue *string
	Unit        string
}

func numeric(v float64) Field {
	return Field{Value: &v}
}

func text(s string) Field {
	return Field{StringValue: &s}
}
