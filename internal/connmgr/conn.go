package connmgr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"telemetry-hub/internal/broker"
	"telemetry-hub/internal/db"
	"telemetry-hub/internal/worker"
)

// conn is one entry of the live set. Its mutex serializes the status writes
// of the open, loss and teardown paths so a closed entry never reports
// itself connected.
type conn struct {
	manager     *Manager
	id          int64
	device      db.Device // guarded by manager.mu
	fingerprint string
	url         string
	inbox       chan broker.Message

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	transport broker.Transport
	status    db.DeviceStatus
	closed    bool
}

// fingerprint covers every device field a connection depends on.
func fingerprint(d db.Device) string {
	return strings.Join([]string{
		d.OwnerID,
		d.Broker,
		strings.ToLower(strings.TrimSpace(d.Protocol)),
		d.Topic,
		d.Username,
		d.Password,
	}, "\x00")
}

func (m *Manager) newConn(d db.Device) *conn {
	ctx, cancel := context.WithCancel(m.baseCtx)
	return &conn{
		manager:     m,
		id:          d.ID,
		device:      d,
		fingerprint: fingerprint(d),
		url:         broker.BrokerURL(d.Broker, d.Protocol),
		inbox:       make(chan broker.Message, m.inboxSize),
		ctx:         ctx,
		cancel:      cancel,
		status:      db.StatusOffline,
	}
}

func (m *Manager) open(c *conn) {
	ctx := c.ctx
	d := c.snapshotDevice()
	slog.InfoContext(ctx, "Opening device connection", "device_id", d.ID, "url", c.url, "topic", d.Topic)

	transport, err := m.dial(broker.Options{
		URL:      c.url,
		Topic:    d.Topic,
		Username: d.Username,
		Password: d.Password,
		ClientID: m.clientID(d.ID),
		Handlers: broker.Handlers{
			OnMessage: c.enqueue,
			OnConnectionLost: func(err error) {
				go m.lost(c, err)
			},
		},
	})
	if err != nil {
		m.failed(c, err)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		transport.Close()
		return
	}
	c.transport = transport
	c.mu.Unlock()

	if err := transport.Connect(ctx); err != nil {
		m.failed(c, err)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		// Torn down while connecting; the teardown's Close may have
		// raced the handshake.
		transport.Close()
		return
	}
	c.status = db.StatusConnected
	m.setStatus(ctx, d.ID, db.StatusConnected)
	c.mu.Unlock()

	slog.InfoContext(ctx, "Device connected", "device_id", d.ID, "topic", d.Topic)

	w := worker.New(worker.Config{
		Name:      fmt.Sprintf("device-%d", d.ID),
		Processor: c,
	})
	w.Run(ctx)
}

// failed handles a connect or subscribe error: status error, out of the live
// set, and a resync scheduled after the reconnect delay.
func (m *Manager) failed(c *conn, err error) {
	slog.ErrorContext(c.ctx, "Device connection failed", "device_id", c.id, "url", c.url, "error", err)
	if !m.teardown(c, db.StatusError) {
		return
	}
	m.retryLater()
}

// lost handles an unexpected close after a successful connect.
func (m *Manager) lost(c *conn, err error) {
	slog.WarnContext(c.ctx, "Device connection lost", "device_id", c.id, "error", err)
	if !m.teardown(c, db.StatusOffline) {
		return
	}
	m.retryLater()
}

// teardown removes c from the live set and closes it with status. It reports
// false when c had already been closed or replaced.
func (m *Manager) teardown(c *conn, status db.DeviceStatus) bool {
	if !m.remove(c) {
		return false
	}
	return m.closeConn(c, &status)
}

// stop closes a connection that reconcile or shutdown already took out of the
// live set. markOffline is false when a replacement connection owns the status.
func (m *Manager) stop(c *conn, markOffline bool) {
	var status *db.DeviceStatus
	if markOffline {
		offline := db.StatusOffline
		status = &offline
	}
	m.closeConn(c, status)
}

func (m *Manager) closeConn(c *conn, status *db.DeviceStatus) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.closed = true
	transport := c.transport
	if status != nil {
		c.status = *status
		m.setStatus(c.ctx, c.id, *status)
	}
	c.mu.Unlock()

	c.cancel()
	if transport != nil {
		transport.Close()
	}
	return true
}

// enqueue runs on transport goroutines. It never blocks the transport: when
// the worker falls behind, the message is dropped.
func (c *conn) enqueue(msg broker.Message) {
	c.manager.metrics.MessagesReceived.WithLabelValues(protocolLabel(c.url)).Inc()
	select {
	case c.inbox <- msg:
	default:
		slog.Warn("Device inbox full, dropping message", "device_id", c.id)
	}
}

// ProcessMessage hands the next queued message to the handler.
func (c *conn) ProcessMessage(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case msg := <-c.inbox:
		c.manager.handler.HandleMessage(ctx, c.snapshotDevice(), msg)
		return nil
	}
}

func (c *conn) snapshotDevice() db.Device {
	c.manager.mu.Lock()
	defer c.manager.mu.Unlock()
	return c.device
}

func (c *conn) snapshot() LiveConn {
	d := c.snapshotDevice()
	c.mu.Lock()
	defer c.mu.Unlock()
	return LiveConn{
		DeviceID: d.ID,
		Name:     d.Name,
		URL:      c.url,
		Status:   c.status,
	}
}
