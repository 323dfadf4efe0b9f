package normalizer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Extractor turns one payload item into fields. ok reports whether the item
// had the extractor's shape; a matching extractor ends the search even if it
// produced no fields.
type Extractor interface {
	Name() string
	Extract(item object) (fields []Field, ok bool, err error)
}

// DefaultExtractors is the order shapes are tried in.
func DefaultExtractors() []Extractor {
	return []Extractor{CanonicalExtractor{}, KeyValueExtractor{}}
}

// CanonicalExtractor handles {"type": "temp", "value": "72.4", "unit": "F"}.
type CanonicalExtractor struct{}

func (CanonicalExtractor) Name() string { return "canonical" }

func (CanonicalExtractor) Extract(item object) ([]Field, bool, error) {
	rawType, ok := item.get("type")
	if !ok {
		return nil, false, nil
	}
	typ, ok := rawType.(string)
	if !ok || typ == "" {
		return nil, false, nil
	}
	rawValue, ok := item.get("value")
	if !ok {
		return nil, false, nil
	}

	typ = strings.ToLower(typ)
	value, err := parseCanonicalValue(rawValue)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %s: %v", ErrNonNumericValue, typ, err)
	}

	field := numeric(value)
	field.Type = typ
	if unit, ok := item.get("unit"); ok {
		if s, ok := unit.(string); ok {
			field.Unit = s
		}
	}
	return []Field{field}, true, nil
}

func parseCanonicalValue(raw any) (float64, error) {
	var s string
	switch v := raw.(type) {
	case json.Number:
		s = v.String()
	case string:
		s = strings.TrimSpace(v)
	default:
		return 0, fmt.Errorf("unsupported value %v", raw)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return f, nil
}

// KeyValueExtractor handles flat hardware payloads like {"temp": 21.5, "relay": true}.
// It matches every object.
type KeyValueExtractor struct{}

func (KeyValueExtractor) Name() string { return "key-value" }

func (KeyValueExtractor) Extract(item object) ([]Field, bool, error) {
	fields := make([]Field, 0, len(item))
	for _, m := range item {
		field, ok := Classify(m.Value)
		if !ok {
			continue
		}
		field.Type = strings.ToLower(m.Key)
		fields = append(fields, field)
	}
	return fields, true, nil
}

// Classify maps one raw JSON value to a field. Objects, arrays and null are
// not classifiable.
func Classify(raw any) (Field, bool) {
	switch v := raw.(type) {
	case bool:
		if v {
			return numeric(1), true
		}
		return numeric(0), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Field{}, false
		}
		return numeric(f), true
	case float64:
		return numeric(v), true
	case string:
		if hours, ok := parseClock(v); ok {
			return numeric(hours), true
		}
		if f, ok := parseNumericString(v); ok {
			return numeric(f), true
		}
		return text(v), true
	default:
		return Field{}, false
	}
}

// parseClock reads "h:m" or "h:m:s" as decimal hours.
func parseClock(s string) (float64, bool) {
	if !strings.Contains(s, ":") {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, false
	}

	var units [3]int
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return 0, false
		}
		units[i] = n
	}
	return float64(units[0]) + float64(units[1])/60 + float64(units[2])/3600, true
}

func parseNumericString(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
