package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/pgxscan"
)

var (
	ErrInsertFailed = errors.New("insert operation failed")
	ErrUpdateFailed = errors.New("update operation failed")
	ErrSelectFailed = errors.New("select operation failed")
	ErrNotFound     = errors.New("record not found")
)

const deviceColumns = `
	id,
	owner_id,
	name,
	COALESCE(broker, '') AS broker,
	COALESCE(protocol, '') AS protocol,
	COALESCE(topic, '') AS topic,
	COALESCE(username, '') AS username,
	COALESCE(password, '') AS password,
	status,
	last_seen`

const metadataColumns = `
	id,
	user_id,
	original_key,
	label,
	COALESCE(unit, '') AS unit,
	COALESCE(description, '') AS description,
	category,
	created_at,
	updated_at`

func (db *DB) ListDevices(ctx context.Context) ([]Device, error) {
	const fn = "DB:ListDevices"
	var devices []Device
	err := pgxscan.Select(ctx, db.pool, &devices, `SELECT `+deviceColumns+` FROM devices ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrSelectFailed, err)
	}
	return devices, nil
}

// UpdateDeviceStatus also stamps last_seen. Returns ErrNotFound when the
// device was deleted in the meantime.
func (db *DB) UpdateDeviceStatus(ctx context.Context, id int64, status DeviceStatus) error {
	const fn = "DB:UpdateDeviceStatus"
	tag, err := db.pool.Exec(ctx, `
		UPDATE devices
		SET status = $2, last_seen = now()
		WHERE id = $1
	`, id, string(status))
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrUpdateFailed, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", fn, ErrNotFound)
	}
	return nil
}

func (db *DB) ListAlertRules(ctx context.Context, userID string) ([]AlertRule, error) {
	const fn = "DB:ListAlertRules"
	var rules []AlertRule
	err := pgxscan.Select(ctx, db.pool, &rules, `
		SELECT
			id,
			user_id,
			name,
			sensor_type,
			condition_operator,
			condition_value,
			severity,
			enabled
		FROM alert_rules
		WHERE user_id = $1
		ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrSelectFailed, err)
	}
	return rules, nil
}

func (db *DB) ListMetadata(ctx context.Context, scope string) ([]MetadataEntry, error) {
	const fn = "DB:ListMetadata"
	var entries []MetadataEntry
	err := pgxscan.Select(ctx, db.pool, &entries, `SELECT `+metadataColumns+`
		FROM metadata
		WHERE user_id = $1
		ORDER BY original_key ASC
	`, scope)
	if err != nil {
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrSelectFailed, err)
	}
	return entries, nil
}

func (db *DB) GetMetadata(ctx context.Context, key, scope string) (MetadataEntry, error) {
	const fn = "DB:GetMetadata"
	var entry MetadataEntry
	err := pgxscan.Get(ctx, db.pool, &entry, `SELECT `+metadataColumns+`
		FROM metadata
		WHERE original_key = $1 AND user_id = $2
	`, key, scope)
	if err != nil {
		if pgxscan.NotFound(err) {
			return MetadataEntry{}, fmt.Errorf("%s:%w", fn, ErrNotFound)
		}
		return MetadataEntry{}, fmt.Errorf("%s:%w:%w", fn, ErrSelectFailed, err)
	}
	return entry, nil
}

// UpsertMetadata relies on the (original_key, user_id) unique constraint.
func (db *DB) UpsertMetadata(ctx context.Context, entry MetadataEntry) error {
	const fn = "DB:UpsertMetadata"
	_, err := db.pool.Exec(ctx, `
		INSERT INTO metadata (
			user_id,
			original_key,
			label,
			unit,
			description,
			category
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (original_key, user_id) DO UPDATE SET
			label = EXCLUDED.label,
			unit = EXCLUDED.unit,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			updated_at = now()
	`, entry.UserID, entry.OriginalKey, entry.Label, entry.Unit, entry.Description, entry.Category)
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrInsertFailed, err)
	}
	return nil
}

func (db *DB) GetSession(ctx context.Context, sessionID string) (Session, error) {
	const fn = "DB:GetSession"
	var session Session
	err := pgxscan.Get(ctx, db.pool, &session, `
		SELECT session_id, expires, COALESCE(data, '') AS data
		FROM sessions
		WHERE session_id = $1
	`, sessionID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return Session{}, fmt.Errorf("%s:%w", fn, ErrNotFound)
		}
		return Session{}, fmt.Errorf("%s:%w:%w", fn, ErrSelectFailed, err)
	}
	return session, nil
}

func (db *DB) GetUser(ctx context.Context, id string) (User, error) {
	const fn = "DB:GetUser"
	var user User
	err := pgxscan.Get(ctx, db.pool, &user, `
		SELECT id, username, role
		FROM users
		WHERE id = $1
	`, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return User{}, fmt.Errorf("%s:%w", fn, ErrNotFound)
		}
		return User{}, fmt.Errorf("%s:%w:%w", fn, ErrSelectFailed, err)
	}
	return user, nil
}
