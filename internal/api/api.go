// Package api exposes the subscriber websocket endpoint and the small
// operational HTTP surface around it.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"telemetry-hub/internal/auth"
	"telemetry-hub/internal/cache"
	"telemetry-hub/internal/connmgr"
	"telemetry-hub/internal/db"
	"telemetry-hub/internal/hub"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const closeWait = time.Second

type authenticator interface {
	Authenticate(r *http.Request) (auth.Identity, error)
}

type subscriberHub interface {
	Register(identity auth.Identity) *hub.Client
	Serve(c *hub.Client, conn *websocket.Conn)
	Len() int
}

type deviceSyncer interface {
	Sync(ctx context.Context) (connmgr.Result, error)
	Live() []connmgr.LiveConn
}

type metadataLookup interface {
	Effective(ctx context.Context, userID, key string) (db.MetadataEntry, error)
}

type Config struct {
	Auth     authenticator
	Hub      subscriberHub
	Devices  deviceSyncer
	Metadata metadataLookup
	Gatherer prometheus.Gatherer
	// CheckOrigin defaults to accepting every origin.
	CheckOrigin func(r *http.Request) bool
}

type API struct {
	auth     authenticator
	hub      subscriberHub
	devices  deviceSyncer
	metadata metadataLookup
	gatherer prometheus.Gatherer
	upgrader websocket.Upgrader
}

func New(cfg Config) *API {
	a := &API{
		auth:     cfg.Auth,
		hub:      cfg.Hub,
		devices:  cfg.Devices,
		metadata: cfg.Metadata,
		gatherer: cfg.Gatherer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.CheckOrigin,
		},
	}
	if a.upgrader.CheckOrigin == nil {
		a.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}
	if a.gatherer == nil {
		a.gatherer = prometheus.DefaultGatherer
	}
	return a
}

func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/ws", a.ServeWS)
	r.Get("/health", a.GetHealth)
	r.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	r.Post("/devices/sync", a.SyncDevices)
	r.Get("/devices/live", a.GetLiveDevices)
	r.Get("/metadata/{key}", a.GetMetadata)
	return r
}

// ServeWS upgrades the request and authenticates the subscriber. A rejected
// credential closes the socket with 1008, a resolver failure with 1011.
func (a *API) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "Websocket upgrade failed", "error", err)
		return
	}

	identity, err := a.auth.Authenticate(r)
	if err != nil {
		code, reason := websocket.ClosePolicyViolation, "Unauthorized"
		if !auth.IsRejected(err) {
			code, reason = websocket.CloseInternalServerErr, "Internal error"
			slog.ErrorContext(r.Context(), "Subscriber authentication failed", "error", err)
		} else {
			slog.InfoContext(r.Context(), "Subscriber rejected", "error", err)
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason),
			time.Now().Add(closeWait))
		conn.Close()
		return
	}

	a.hub.Serve(a.hub.Register(identity), conn)
}

func (a *API) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Subscribers: a.hub.Len(),
		Devices:     len(a.devices.Live()),
	})
}

// SyncDevices re-reads the device set and reconciles live connections.
func (a *API) SyncDevices(w http.ResponseWriter, r *http.Request) {
	result, err := a.devices.Sync(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Device sync failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "device sync failed"})
		return
	}
	writeJSON(w, http.StatusOK, syncResponse(result))
}

func (a *API) GetLiveDevices(w http.ResponseWriter, r *http.Request) {
	live := a.devices.Live()
	if live == nil {
		live = []connmgr.LiveConn{}
	}
	writeJSON(w, http.StatusOK, LiveDevicesResponse{Devices: live})
}

// GetMetadata returns the caller's effective entry for key.
func (a *API) GetMetadata(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	identity, err := a.auth.Authenticate(r)
	if err != nil {
		if auth.IsRejected(err) {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}
		slog.ErrorContext(r.Context(), "Metadata caller authentication failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	entry, err := a.metadata.Effective(r.Context(), identity.UserID, key)
	switch {
	case errors.Is(err, cache.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "metadata not found"})
	case err != nil:
		slog.ErrorContext(r.Context(), "Metadata lookup failed", "key", key, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "metadata lookup failed"})
	default:
		writeJSON(w, http.StatusOK, metadataResponse(entry))
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
