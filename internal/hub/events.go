package hub

import (
	"encoding/json"
	"time"

	"telemetry-hub/internal/processors/normalizer"
)

const (
	EventUpdate = "update"
	EventAlert  = "alert"
)

// Event is the envelope every subscriber receives.
type Event struct {
	Type     string `json:"type"`
	DeviceID int64  `json:"deviceId"`
	Data     any    `json:"data"`
}

type UpdateData struct {
	Status    string              `json:"status"`
	Reading   *normalizer.Reading `json:"reading,omitempty"`
	Raw       json.RawMessage     `json:"raw,omitempty"`
	Timestamp *time.Time          `json:"timestamp,omitempty"`
}

type AlertData struct {
	RuleName string `json:"ruleName"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

func RawUpdate(deviceID int64, status string, raw json.RawMessage, at time.Time) Event {
	return Event{
		Type:     EventUpdate,
		DeviceID: deviceID,
		Data:     UpdateData{Status: status, Raw: raw, Timestamp: &at},
	}
}

func ReadingUpdate(deviceID int64, status string, r normalizer.Reading) Event {
	return Event{
		Type:     EventUpdate,
		DeviceID: deviceID,
		Data:     UpdateData{Status: status, Reading: &r},
	}
}

func Alert(deviceID int64, ruleName, severity, message string) Event {
	return Event{
		Type:     EventAlert,
		DeviceID: deviceID,
		Data:     AlertData{RuleName: ruleName, Severity: severity, Message: message},
	}
}
