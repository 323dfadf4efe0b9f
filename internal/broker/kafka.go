package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// Reader is the subset of *kafka.Reader the transport uses.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type kafkaTransport struct {
	opts   Options
	broker string

	newReader     func() Reader
	waitForBroker func(ctx context.Context) error

	mu     sync.Mutex
	reader Reader
	cancel context.CancelFunc
	closed bool
}

func newKafka(opts Options, broker string) *kafkaTransport {
	t := &kafkaTransport{opts: opts, broker: broker}
	dialer := t.dialer()

	t.newReader = func() Reader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:     []string{broker},
			GroupID:     opts.ClientID,
			Topic:       opts.Topic,
			StartOffset: kafka.LastOffset,
			Dialer:      dialer,
		})
	}
	t.waitForBroker = func(ctx context.Context) error {
		return waitForBroker(ctx, dialer, broker, opts.ConnectTimeout, 5*time.Second)
	}
	return t
}

func (t *kafkaTransport) dialer() *kafka.Dialer {
	d := &kafka.Dialer{
		ClientID:  t.opts.ClientID,
		Timeout:   t.opts.ConnectTimeout,
		KeepAlive: t.opts.KeepAlive,
		DualStack: true,
	}
	if t.opts.Username != "" {
		d.SASLMechanism = plain.Mechanism{Username: t.opts.Username, Password: t.opts.Password}
	}
	return d
}

// Connect waits for the broker to accept connections, then starts the read
// loop. Kafka subscriptions are lazy, so a reachable broker is treated as
// subscribed.
func (t *kafkaTransport) Connect(ctx context.Context) error {
	const fn = "Kafka:Connect"

	if err := t.waitForBroker(ctx); err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrConnect, err)
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return fmt.Errorf("%s:%w: transport closed", fn, ErrConnect)
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	t.reader = t.newReader()
	t.cancel = cancel
	reader := t.reader
	t.mu.Unlock()

	go t.readLoop(loopCtx, reader)
	return nil
}

func (t *kafkaTransport) readLoop(ctx context.Context, reader Reader) {
	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			t.connectionLost(err)
			return
		}
		t.opts.Handlers.OnMessage(Message{
			Topic:      m.Topic,
			Payload:    m.Value,
			ReceivedAt: time.Now(),
		})
	}
}

func (t *kafkaTransport) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	reader, cancel := t.reader, t.cancel
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			slog.Warn("Error closing kafka reader", "broker", t.broker, "error", err)
		}
	}
}

func (t *kafkaTransport) connectionLost(err error) {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if !closed {
		t.opts.Handlers.OnConnectionLost(err)
	}
}

func waitForBroker(ctx context.Context, dialer *kafka.Dialer, broker string, maxWait, interval time.Duration) error {
	deadline := time.Now().Add(maxWait)
	for {
		dialCtx, cancel := context.WithTimeout(ctx, interval)
		conn, err := dialer.DialContext(dialCtx, "tcp", broker)
		cancel()
		if err == nil {
			conn.Close()
			return nil
		}
		slog.DebugContext(ctx, "Broker not ready", "broker", broker, "error", err)
		if time.Now().Add(interval).After(deadline) {
			return fmt.Errorf("broker not reachable after %s: %w", maxWait, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
