package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/nats-io/nats.go"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/pflag"
)

// Publishes sample telemetry in the shapes real hardware sends, so a device
// row pointing at the same broker and topic shows live data in the hub.
//
//	go run ./scripts/publisher --broker mqtt://localhost:1883 --topic plant/boiler
//	go run ./scripts/publisher --protocol kafka --broker localhost:9092 --topic boiler

func main() {
	protocol := pflag.String("protocol", "mqtt", "mqtt, nats or kafka")
	broker := pflag.String("broker", "tcp://localhost:1883", "broker address")
	topic := pflag.String("topic", "devices/demo", "topic to publish to")
	count := pflag.Int("count", 10, "number of messages, 0 publishes forever")
	interval := pflag.Duration("interval", 2*time.Second, "delay between messages")
	pflag.Parse()

	publish, closeFn, err := newPublisher(*protocol, *broker, *topic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer closeFn()

	for i := 0; *count == 0 || i < *count; i++ {
		payload, err := json.Marshal(sample(i))
		if err != nil {
			panic(err)
		}
		if err := publish(payload); err != nil {
			fmt.Fprintf(os.Stderr, "publish failed: %v\n", err)
		} else {
			fmt.Println("Published:", string(payload))
		}
		time.Sleep(*interval)
	}
}

// sample alternates between the key/value object shape and the canonical
// {type, value} array shape.
func sample(i int) any {
	temp := 18 + rand.Float64()*12
	if i%2 == 0 {
		return map[string]any{
			"temperature": temp,
			"humidity":    fmt.Sprintf("%.1f", 30+rand.Float64()*40),
			"relay":       i%4 == 0,
			"uptime":      fmt.Sprintf("%d:%02d", i/60, i%60),
			"firmware":    "v1.4.2",
		}
	}
	return []map[string]any{
		{"type": "temperature", "value": fmt.Sprintf("%.2f", temp), "unit": "C"},
		{"type": "pressure", "value": 1000 + rand.Float64()*30, "unit": "hPa"},
	}
}

func newPublisher(protocol, broker, topic string) (func([]byte) error, func(), error) {
	switch strings.ToLower(protocol) {
	case "mqtt":
		opts := mqtt.NewClientOptions().
			AddBroker(broker).
			SetClientID(fmt.Sprintf("telemetry-publisher-%d", time.Now().UnixNano())).
			SetConnectTimeout(10 * time.Second)
		client := mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			return nil, nil, token.Error()
		}
		return func(payload []byte) error {
				token := client.Publish(topic, 0, false, payload)
				token.Wait()
				return token.Error()
			}, func() {
				client.Disconnect(250)
			}, nil
	case "nats":
		nc, err := nats.Connect(broker, nats.Timeout(10*time.Second))
		if err != nil {
			return nil, nil, err
		}
		return func(payload []byte) error {
				return nc.Publish(topic, payload)
			}, func() {
				_ = nc.Drain()
			}, nil
	case "kafka":
		writer := &kafka.Writer{
			Addr:                   kafka.TCP(broker),
			Topic:                  topic,
			AllowAutoTopicCreation: true,
		}
		return func(payload []byte) error {
				return writer.WriteMessages(context.Background(), kafka.Message{Value: payload})
			}, func() {
				_ = writer.Close()
			}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported protocol %q", protocol)
	}
}
