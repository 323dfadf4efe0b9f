package db

import "time"

type DeviceStatus string

const (
	StatusOffline   DeviceStatus = "offline"
	StatusConnected DeviceStatus = "connected"
	StatusError     DeviceStatus = "error"
)

// SystemScope owns auto-discovered metadata that belongs to no specific user.
const SystemScope = "system"

const (
	CategorySensor    = "sensor"
	CategoryStatus    = "status"
	CategoryTechnical = "technical"
	CategoryOther     = "other"
)

type Device struct {
	ID       int64        `db:"id" json:"id"`
	OwnerID  string       `db:"owner_id" json:"ownerId"`
	Name     string       `db:"name" json:"name"`
	Broker   string       `db:"broker" json:"broker"`
	Protocol string       `db:"protocol" json:"protocol"`
	Topic    string       `db:"topic" json:"topic"`
	Username string       `db:"username" json:"-"`
	Password string       `db:"password" json:"-"`
	Status   DeviceStatus `db:"status" json:"status"`
	LastSeen *time.Time   `db:"last_seen" json:"lastSeen,omitempty"`
}

type AlertRule struct {
	ID         int64   `db:"id" json:"id"`
	UserID     string  `db:"user_id" json:"userId"`
	Name       string  `db:"name" json:"name"`
	SensorType string  `db:"sensor_type" json:"sensorType"`
	Operator   string  `db:"condition_operator" json:"operator"`
	Threshold  float64 `db:"condition_value" json:"threshold"`
	Severity   string  `db:"severity" json:"severity"`
	Enabled    bool    `db:"enabled" json:"enabled"`
}

// MetadataEntry is unique per (OriginalKey, UserID). UserID is the scope.
type MetadataEntry struct {
	ID          int64     `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	OriginalKey string    `db:"original_key" json:"originalKey"`
	Label       string    `db:"label" json:"label"`
	Unit        string    `db:"unit" json:"unit"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type Session struct {
	ID      string `db:"session_id"`
	Expires int64  `db:"expires"`
	Data    string `db:"data"`
}

type User struct {
	ID       string `db:"id"`
	Username string `db:"username"`
	Role     string `db:"role"`
}
