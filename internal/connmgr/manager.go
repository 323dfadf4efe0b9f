// Package connmgr keeps one broker subscription per configured device and
// reconciles the live set against the devices in the store.
package connmgr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"sync"
	"time"

	"telemetry-hub/internal/broker"
	"telemetry-hub/internal/db"
	"telemetry-hub/internal/metrics"
	"telemetry-hub/internal/worker"
)

var ErrListDevices = errors.New("device list failed")

const (
	DefaultReconnectDelay = 10 * time.Second
	DefaultResyncInterval = 30 * time.Second
	DefaultClientIDPrefix = "telemetry-hub"
	DefaultInboxSize      = 1024

	statusWriteTimeout = 5 * time.Second
)

type deviceStore interface {
	ListDevices(ctx context.Context) ([]db.Device, error)
	UpdateDeviceStatus(ctx context.Context, id int64, status db.DeviceStatus) error
}

// Handler processes one message of one device. Calls for the same device are
// sequential and in arrival order.
type Handler interface {
	HandleMessage(ctx context.Context, device db.Device, msg broker.Message)
}

type Config struct {
	Store          deviceStore
	Handler        Handler
	Dial           broker.Dialer
	ReconnectDelay time.Duration
	ResyncInterval time.Duration
	ClientIDPrefix string
	InboxSize      int
	Metrics        *metrics.Metrics
}

type Manager struct {
	store          deviceStore
	handler        Handler
	dial           broker.Dialer
	reconnectDelay time.Duration
	resyncInterval time.Duration
	clientIDPrefix string
	inboxSize      int
	metrics        *metrics.Metrics

	mu      sync.Mutex
	baseCtx context.Context
	live    map[int64]*conn

	kick chan struct{}
	wg   sync.WaitGroup
}

// Result lists the device ids a reconcile pass acted on.
type Result struct {
	Opened    []int64
	Closed    []int64
	Untouched []int64
}

// LiveConn describes one entry of the live set.
type LiveConn struct {
	DeviceID int64           `json:"deviceId"`
	Name     string          `json:"name"`
	URL      string          `json:"url"`
	Status   db.DeviceStatus `json:"status"`
}

func New(cfg Config) *Manager {
	m := &Manager{
		store:          cfg.Store,
		handler:        cfg.Handler,
		dial:           cfg.Dial,
		reconnectDelay: cfg.ReconnectDelay,
		resyncInterval: cfg.ResyncInterval,
		clientIDPrefix: cfg.ClientIDPrefix,
		inboxSize:      cfg.InboxSize,
		metrics:        cfg.Metrics,
		baseCtx:        context.Background(),
		live:           make(map[int64]*conn),
		kick:           make(chan struct{}, 1),
	}
	if m.dial == nil {
		m.dial = broker.Dial
	}
	if m.reconnectDelay <= 0 {
		m.reconnectDelay = DefaultReconnectDelay
	}
	if m.resyncInterval <= 0 {
		m.resyncInterval = DefaultResyncInterval
	}
	if m.clientIDPrefix == "" {
		m.clientIDPrefix = DefaultClientIDPrefix
	}
	if m.inboxSize <= 0 {
		m.inboxSize = DefaultInboxSize
	}
	if m.metrics == nil {
		m.metrics = metrics.NewNop()
	}
	return m
}

// Start resets statuses left over from a previous process, then opens a
// connection for every configured device. Connections live until Close,
// independent of ctx.
func (m *Manager) Start(ctx context.Context) error {
	const fn = "Manager:Start"

	m.mu.Lock()
	m.baseCtx = context.WithoutCancel(ctx)
	m.mu.Unlock()

	devices, err := m.store.ListDevices(ctx)
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrListDevices, err)
	}

	for _, d := range devices {
		if d.Status != db.StatusConnected && d.Status != db.StatusError {
			continue
		}
		if m.isLive(d.ID) {
			continue
		}
		if err := m.store.UpdateDeviceStatus(ctx, d.ID, db.StatusOffline); err != nil {
			slog.ErrorContext(ctx, "Error resetting stale device status", "device_id", d.ID, "error", err)
			continue
		}
		slog.InfoContext(ctx, "Reset stale device status", "device_id", d.ID, "previous", d.Status)
	}

	m.Reconcile(ctx, devices)
	return nil
}

// Run resyncs periodically and whenever Kick is called, until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.resyncInterval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Connection manager started...", "resync_interval", m.resyncInterval)
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Connection manager stopped...")
			return
		case <-ticker.C:
		case <-m.kick:
		}
		if _, err := m.Sync(ctx); err != nil {
			slog.ErrorContext(ctx, "Device resync failed", "error", err)
		}
	}
}

// Kick requests a resync from Run without blocking.
func (m *Manager) Kick() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

// Sync reads the device set from the store and reconciles against it.
func (m *Manager) Sync(ctx context.Context) (Result, error) {
	const fn = "Manager:Sync"

	devices, err := m.store.ListDevices(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%s:%w:%w", fn, ErrListDevices, err)
	}
	return m.Reconcile(ctx, devices), nil
}

// Reconcile converges the live set on devices. Devices without a broker or
// topic are not desired. A live connection whose device is unchanged is left
// alone; one whose connection settings changed is reopened. Opening happens
// in the background, so Reconcile never blocks on a broker.
func (m *Manager) Reconcile(ctx context.Context, devices []db.Device) Result {
	desired := make(map[int64]db.Device, len(devices))
	for _, d := range devices {
		if d.Broker != "" && d.Topic != "" {
			desired[d.ID] = d
		}
	}

	var (
		result   Result
		toClose  []*conn
		toOpen   []*conn
		replaced = make(map[int64]bool)
	)

	m.mu.Lock()
	for id, c := range m.live {
		d, ok := desired[id]
		switch {
		case !ok:
			toClose = append(toClose, c)
			delete(m.live, id)
			result.Closed = append(result.Closed, id)
		case fingerprint(d) != c.fingerprint:
			toClose = append(toClose, c)
			delete(m.live, id)
			replaced[id] = true
			result.Closed = append(result.Closed, id)
		default:
			c.device = d
			result.Untouched = append(result.Untouched, id)
		}
	}
	for id, d := range desired {
		if _, ok := m.live[id]; ok {
			continue
		}
		c := m.newConn(d)
		m.live[id] = c
		toOpen = append(toOpen, c)
		result.Opened = append(result.Opened, id)
	}
	m.metrics.LiveConnections.Set(float64(len(m.live)))
	m.mu.Unlock()

	for _, c := range toClose {
		reason := "device removed"
		if replaced[c.id] {
			reason = "device settings changed"
		}
		slog.InfoContext(ctx, "Closing device connection", "device_id", c.id, "reason", reason)
		// A replaced device gets its status from the new connection.
		m.stop(c, !replaced[c.id])
	}
	for _, c := range toOpen {
		m.wg.Add(1)
		go func(c *conn) {
			defer m.wg.Done()
			m.open(c)
		}(c)
	}

	slices.Sort(result.Opened)
	slices.Sort(result.Closed)
	slices.Sort(result.Untouched)
	return result
}

// Live returns a snapshot of the live set ordered by device id.
func (m *Manager) Live() []LiveConn {
	m.mu.Lock()
	conns := make([]*conn, 0, len(m.live))
	for _, c := range m.live {
		conns = append(conns, c)
	}
	m.mu.Unlock()

	out := make([]LiveConn, 0, len(conns))
	for _, c := range conns {
		out = append(out, c.snapshot())
	}
	slices.SortFunc(out, func(a, b LiveConn) int {
		switch {
		case a.DeviceID < b.DeviceID:
			return -1
		case a.DeviceID > b.DeviceID:
			return 1
		}
		return 0
	})
	return out
}

// Close tears down every connection, marks the devices offline and waits for
// pending opens to finish.
func (m *Manager) Close() {
	m.mu.Lock()
	conns := make([]*conn, 0, len(m.live))
	for id, c := range m.live {
		conns = append(conns, c)
		delete(m.live, id)
	}
	m.metrics.LiveConnections.Set(0)
	m.mu.Unlock()

	for _, c := range conns {
		m.stop(c, true)
	}
	m.wg.Wait()
}

func (m *Manager) isLive(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.live[id]
	return ok
}

// remove drops c from the live set if it is still the current entry for its
// device. Callbacks from replaced connections are ignored this way.
func (m *Manager) remove(c *conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.live[c.id]; !ok || cur != c {
		return false
	}
	delete(m.live, c.id)
	m.metrics.LiveConnections.Set(float64(len(m.live)))
	return true
}

func (m *Manager) setStatus(ctx context.Context, id int64, status db.DeviceStatus) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
	defer cancel()
	if err := m.store.UpdateDeviceStatus(ctx, id, status); err != nil {
		slog.ErrorContext(ctx, "Error updating device status", "device_id", id, "status", status, "error", err)
	}
}

func (m *Manager) retryLater() {
	time.AfterFunc(m.reconnectDelay, m.Kick)
}

func (m *Manager) clientID(id int64) string {
	return fmt.Sprintf("%s-device-%d", m.clientIDPrefix, id)
}

func protocolLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return "unknown"
	}
	return u.Scheme
}

var _ worker.Processor = (*conn)(nil)
