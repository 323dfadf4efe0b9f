// Package broker opens outbound subscriptions to the message brokers devices
// publish on. One Transport serves one device topic.
package broker

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var (
	ErrConnect             = errors.New("broker connect failed")
	ErrSubscribe           = errors.New("broker subscribe failed")
	ErrUnsupportedProtocol = errors.New("unsupported broker protocol")
)

const (
	DefaultConnectTimeout = 30 * time.Second
	DefaultKeepAlive      = 60 * time.Second
)

type Message struct {
	Topic      string
	Payload    []byte
	ReceivedAt time.Time
}

// Handlers are invoked from transport goroutines. OnConnectionLost fires at
// most once per Transport and never after Close.
type Handlers struct {
	OnMessage        func(Message)
	OnConnectionLost func(error)
}

type Options struct {
	URL            string
	Topic          string
	Username       string
	Password       string
	ClientID       string
	ConnectTimeout time.Duration
	KeepAlive      time.Duration
	Handlers       Handlers
}

func (o Options) withDefaults() Options {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.KeepAlive <= 0 {
		o.KeepAlive = DefaultKeepAlive
	}
	if o.Handlers.OnMessage == nil {
		o.Handlers.OnMessage = func(Message) {}
	}
	if o.Handlers.OnConnectionLost == nil {
		o.Handlers.OnConnectionLost = func(error) {}
	}
	return o
}

// Transport is a live subscription. Connect blocks until the topic is
// subscribed or fails with ErrConnect or ErrSubscribe.
type Transport interface {
	Connect(ctx context.Context) error
	Close()
}

// Dialer builds a Transport without connecting it.
type Dialer func(opts Options) (Transport, error)

// Dial picks the transport for the scheme of opts.URL.
func Dial(opts Options) (Transport, error) {
	const fn = "Broker:Dial"

	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrConnect, err)
	}
	opts = opts.withDefaults()

	switch strings.ToLower(u.Scheme) {
	case "mqtt", "mqtts", "tcp", "ssl", "tls", "ws", "wss":
		return newMQTT(opts), nil
	case "nats":
		return newNATS(opts), nil
	case "kafka":
		return newKafka(opts, u.Host), nil
	default:
		return nil, fmt.Errorf("%s:%w: %q", fn, ErrUnsupportedProtocol, u.Scheme)
	}
}

// BrokerURL derives the connection URL for a device. A broker that already
// carries a scheme is used verbatim; a bare host[:port] gets the prefix for
// protocol. Unknown protocols fall back to plain MQTT.
func BrokerURL(broker, protocol string) string {
	broker = strings.TrimSpace(broker)
	if strings.Contains(broker, "://") {
		return broker
	}
	return schemePrefix(protocol) + broker
}

func schemePrefix(protocol string) string {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "mqtts":
		return "mqtts://"
	case "websocket", "ws":
		return "ws://"
	case "websocket secure", "wss":
		return "wss://"
	case "nats":
		return "nats://"
	case "kafka":
		return "kafka://"
	default:
		return "mqtt://"
	}
}
