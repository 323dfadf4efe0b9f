package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

type natsTransport struct {
	opts Options

	mu     sync.Mutex
	conn   *nats.Conn
	closed bool
	lost   bool
}

func newNATS(opts Options) *natsTransport {
	return &natsTransport{opts: opts}
}

func (t *natsTransport) Connect(ctx context.Context) error {
	const fn = "NATS:Connect"

	natsOpts := []nats.Option{
		nats.Name(t.opts.ClientID),
		nats.Timeout(t.opts.ConnectTimeout),
		nats.PingInterval(t.opts.KeepAlive),
		nats.NoReconnect(),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			t.connectionLost(err)
		}),
	}
	if t.opts.Username != "" {
		natsOpts = append(natsOpts, nats.UserInfo(t.opts.Username, t.opts.Password))
	}

	conn, err := nats.Connect(t.opts.URL, natsOpts...)
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrConnect, err)
	}
	if err := ctx.Err(); err != nil {
		conn.Close()
		return fmt.Errorf("%s:%w:%w", fn, ErrConnect, err)
	}

	_, err = conn.Subscribe(t.opts.Topic, func(m *nats.Msg) {
		t.opts.Handlers.OnMessage(Message{
			Topic:      m.Subject,
			Payload:    m.Data,
			ReceivedAt: time.Now(),
		})
	})
	if err != nil {
		conn.Close()
		return fmt.Errorf("%s:%w:%w", fn, ErrSubscribe, err)
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		conn.Close()
		return fmt.Errorf("%s:%w: transport closed", fn, ErrConnect)
	}
	t.conn = conn
	t.mu.Unlock()
	return nil
}

func (t *natsTransport) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	conn := t.conn
	t.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

func (t *natsTransport) connectionLost(err error) {
	t.mu.Lock()
	if t.closed || t.lost {
		t.mu.Unlock()
		return
	}
	t.lost = true
	t.mu.Unlock()
	if err == nil {
		err = nats.ErrConnectionClosed
	}
	t.opts.Handlers.OnConnectionLost(err)
}
