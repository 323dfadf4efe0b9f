package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type mqttTransport struct {
	opts   Options
	client mqtt.Client

	mu     sync.Mutex
	closed bool
	lost   bool
}

func newMQTT(opts Options) *mqttTransport {
	t := &mqttTransport{opts: opts}

	clientOpts := mqtt.NewClientOptions().
		AddBroker(opts.URL).
		SetClientID(opts.ClientID).
		SetConnectTimeout(opts.ConnectTimeout).
		SetKeepAlive(opts.KeepAlive).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetCleanSession(true).
		SetOrderMatters(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			t.connectionLost(err)
		})
	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
		clientOpts.SetPassword(opts.Password)
	}
	t.client = mqtt.NewClient(clientOpts)
	return t
}

func (t *mqttTransport) Connect(ctx context.Context) error {
	const fn = "MQTT:Connect"

	if err := wait(ctx, t.client.Connect(), t.opts.ConnectTimeout); err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrConnect, err)
	}

	token := t.client.Subscribe(t.opts.Topic, 0, func(_ mqtt.Client, m mqtt.Message) {
		t.opts.Handlers.OnMessage(Message{
			Topic:      m.Topic(),
			Payload:    m.Payload(),
			ReceivedAt: time.Now(),
		})
	})
	if err := wait(ctx, token, t.opts.ConnectTimeout); err != nil {
		t.client.Disconnect(0)
		return fmt.Errorf("%s:%w:%w", fn, ErrSubscribe, err)
	}

	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		t.client.Disconnect(0)
		return fmt.Errorf("%s:%w: transport closed", fn, ErrConnect)
	}
	return nil
}

func (t *mqttTransport) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()

	// Disconnect also stops an attempt still in its handshake.
	if t.client.IsConnected() {
		t.client.Unsubscribe(t.opts.Topic)
	}
	t.client.Disconnect(250)
}

func (t *mqttTransport) connectionLost(err error) {
	t.mu.Lock()
	if t.closed || t.lost {
		t.mu.Unlock()
		return
	}
	t.lost = true
	t.mu.Unlock()
	t.opts.Handlers.OnConnectionLost(err)
}

// wait blocks on a paho token, giving up on ctx cancellation or timeout.
func wait(ctx context.Context, token mqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("timed out after %s", timeout)
	}
}
