package connmgr

import (
	"context"
	"errors"
	"sync"

	"telemetry-hub/internal/broker"
	"telemetry-hub/internal/db"
)

type memStore struct {
	mu       sync.Mutex
	devices  []db.Device
	statuses map[int64][]db.DeviceStatus
	listErr  error
}

func newMemStore(devices ...db.Device) *memStore {
	return &memStore{devices: devices, statuses: make(map[int64][]db.DeviceStatus)}
}

func (s *memStore) ListDevices(context.Context) ([]db.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]db.Device(nil), s.devices...), nil
}

func (s *memStore) UpdateDeviceStatus(_ context.Context, id int64, status db.DeviceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[id] = append(s.statuses[id], status)
	return nil
}

func (s *memStore) status(id int64) db.DeviceStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.statuses[id]
	if len(h) == 0 {
		return ""
	}
	return h[len(h)-1]
}

func (s *memStore) history(id int64) []db.DeviceStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]db.DeviceStatus(nil), s.statuses[id]...)
}

type fakeTransport struct {
	opts       broker.Options
	connectErr error

	// gate, when set, holds Connect until it is closed. The handshake then
	// completes even if Close ran meanwhile, like a real broker client.
	gate    chan struct{}
	started chan struct{}
	done    chan struct{}

	mu        sync.Mutex
	connected bool
	closed    bool
}

func (t *fakeTransport) Connect(ctx context.Context) error {
	if t.gate != nil {
		close(t.started)
		<-t.gate
		t.mu.Lock()
		t.connected = true
		t.mu.Unlock()
		close(t.done)
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.connectErr != nil {
		return t.connectErr
	}
	if t.closed {
		return errors.New("closed")
	}
	t.connected = true
	return nil
}

func (t *fakeTransport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.connected = false
}

func (t *fakeTransport) isOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

func (t *fakeTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// deliver simulates an inbound message.
func (t *fakeTransport) deliver(payload string) {
	t.opts.Handlers.OnMessage(broker.Message{Topic: t.opts.Topic, Payload: []byte(payload)})
}

// drop simulates the broker going away.
func (t *fakeTransport) drop() {
	t.opts.Handlers.OnConnectionLost(errors.New("connection reset"))
}

type fakeDialer struct {
	mu         sync.Mutex
	transports map[string][]*fakeTransport
	failURLs   map[string]error
	held       map[string]*fakeTransport
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{
		transports: make(map[string][]*fakeTransport),
		failURLs:   make(map[string]error),
		held:       make(map[string]*fakeTransport),
	}
}

func (d *fakeDialer) Dial(opts broker.Options) (broker.Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := &fakeTransport{opts: opts, connectErr: d.failURLs[opts.URL]}
	if h, ok := d.held[opts.ClientID]; ok {
		delete(d.held, opts.ClientID)
		t.gate, t.started, t.done = h.gate, h.started, h.done
	}
	d.transports[opts.ClientID] = append(d.transports[opts.ClientID], t)
	return t, nil
}

func (d *fakeDialer) fail(url string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.failURLs, url)
		return
	}
	d.failURLs[url] = err
}

// hold makes the next dial for clientID block in Connect until the returned
// transport's gate is closed.
func (d *fakeDialer) hold(clientID string) *fakeTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	h := &fakeTransport{
		gate:    make(chan struct{}),
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}
	d.held[clientID] = h
	return h
}

func (d *fakeDialer) dials(clientID string) []*fakeTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*fakeTransport(nil), d.transports[clientID]...)
}

func (d *fakeDialer) openCount(clientID string) int {
	n := 0
	for _, t := range d.dials(clientID) {
		if t.isOpen() {
			n++
		}
	}
	return n
}

type recordingHandler struct {
	mu       sync.Mutex
	payloads map[int64][]string
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{payloads: make(map[int64][]string)}
}

func (h *recordingHandler) HandleMessage(_ context.Context, d db.Device, msg broker.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.payloads[d.ID] = append(h.payloads[d.ID], string(msg.Payload))
}

func (h *recordingHandler) received(id int64) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.payloads[id]...)
}
