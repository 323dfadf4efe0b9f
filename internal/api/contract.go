package api

import (
	"time"

	"telemetry-hub/internal/connmgr"
	"telemetry-hub/internal/db"
)

type HealthResponse struct {
	Status      string `json:"status"`
	Subscribers int    `json:"subscribers"`
	Devices     int    `json:"devices"`
}

type SyncResponse struct {
	Opened    []int64 `json:"opened"`
	Closed    []int64 `json:"closed"`
	Untouched []int64 `json:"untouched"`
}

type LiveDevicesResponse struct {
	Devices []connmgr.LiveConn `json:"devices"`
}

type MetadataResponse struct {
	Key         string     `json:"key"`
	Label       string     `json:"label"`
	Unit        string     `json:"unit,omitempty"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Scope       string     `json:"scope"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func syncResponse(r connmgr.Result) SyncResponse {
	return SyncResponse{
		Opened:    nonNil(r.Opened),
		Closed:    nonNil(r.Closed),
		Untouched: nonNil(r.Untouched),
	}
}

func metadataResponse(e db.MetadataEntry) MetadataResponse {
	resp := MetadataResponse{
		Key:         e.OriginalKey,
		Label:       e.Label,
		Unit:        e.Unit,
		Description: e.Description,
		Category:    e.Category,
		Scope:       e.UserID,
	}
	if !e.UpdatedAt.IsZero() {
		at := e.UpdatedAt
		resp.UpdatedAt = &at
	}
	return resp
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
