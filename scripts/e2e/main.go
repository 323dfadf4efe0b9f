package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"telemetry-hub/internal/auth"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
	"github.com/spf13/pflag"
)

// Steps:
// 1. Open a subscriber websocket against the running hub
// 2. Publish one probe message to the MQTT topic of a configured device
// 3. Wait for the raw update, the probe reading and, with --threshold, an alert
// 4. Exit non-zero if anything is missing before the deadline
//
// The device row (broker, topic) must already exist and be live. Either
// --jwt-secret (auth.mode jwt) or --cookie (session modes) authenticates.

type event struct {
	Type     string          `json:"type"`
	DeviceID int64           `json:"deviceId"`
	Data     json.RawMessage `json:"data"`
}

type updateData struct {
	Raw     json.RawMessage `json:"raw"`
	Reading *struct {
		Type  string   `json:"type"`
		Value *float64 `json:"value"`
	} `json:"reading"`
}

func main() {
	hubURL := pflag.String("hub", "ws://localhost:8080/ws", "subscriber websocket url")
	broker := pflag.String("broker", "tcp://localhost:1883", "MQTT broker of the device")
	topic := pflag.String("topic", "devices/demo", "MQTT topic of the device")
	deviceID := pflag.Int64("device-id", 0, "id of the device row bound to broker and topic")
	jwtSecret := pflag.String("jwt-secret", "", "sign a bearer token with this secret")
	userID := pflag.String("user", "e2e", "user id for the bearer token")
	cookie := pflag.String("cookie", "", "connect.sid cookie value for session auth")
	sensorType := pflag.String("type", "e2e_probe", "sensor type of the probe reading; alert rules match on it")
	threshold := pflag.Float64("threshold", 0, "expect an alert; probe value is threshold+1")
	timeout := pflag.Duration("timeout", 30*time.Second, "overall deadline")
	pflag.Parse()

	header := http.Header{}
	switch {
	case *jwtSecret != "":
		token, err := auth.IssueToken(*jwtSecret, auth.Identity{UserID: *userID, Role: auth.RoleAdmin}, time.Hour)
		if err != nil {
			panic(err)
		}
		header.Set("Authorization", "Bearer "+token)
	case *cookie != "":
		header.Set("Cookie", auth.DefaultCookieName+"="+*cookie)
	}

	conn, _, err := websocket.DefaultDialer.Dial(*hubURL, header)
	if err != nil {
		fail("failed to open subscriber socket: %v", err)
	}
	defer conn.Close()
	fmt.Println("Subscriber connected to", *hubURL)

	client := mqtt.NewClient(mqtt.NewClientOptions().
		AddBroker(*broker).
		SetClientID(fmt.Sprintf("telemetry-e2e-%d", time.Now().UnixNano())))
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		fail("failed to connect to broker: %v", token.Error())
	}
	defer client.Disconnect(250)

	probeType := strings.ToLower(*sensorType)
	nonce := fmt.Sprintf("%d", time.Now().UnixNano())
	value := *threshold + 1
	payload := fmt.Sprintf(`[{"type":%q,"value":"%g","probe":%q}]`, probeType, value, nonce)
	if token := client.Publish(*topic, 0, false, payload); token.Wait() && token.Error() != nil {
		fail("failed to publish probe: %v", token.Error())
	}
	fmt.Println("Published probe:", payload)

	var gotRaw, gotReading, gotAlert bool
	wantAlert := pflag.CommandLine.Changed("threshold")
	deadline := time.Now().Add(*timeout)
	for !(gotRaw && gotReading && (gotAlert || !wantAlert)) {
		_ = conn.SetReadDeadline(deadline)
		_, frame, err := conn.ReadMessage()
		if err != nil {
			fail("stopped waiting (raw=%t reading=%t alert=%t): %v", gotRaw, gotReading, gotAlert, err)
		}
		var ev event
		if err := json.Unmarshal(frame, &ev); err != nil {
			fmt.Printf("failed to decode frame: %v\n", err)
			continue
		}
		if *deviceID != 0 && ev.DeviceID != *deviceID {
			continue
		}

		switch ev.Type {
		case "update":
			var data updateData
			if err := json.Unmarshal(ev.Data, &data); err != nil {
				continue
			}
			if len(data.Raw) > 0 && strings.Contains(string(data.Raw), nonce) {
				gotRaw = true
				fmt.Println("Received raw update")
			}
			if gotRaw && data.Reading != nil && data.Reading.Type == probeType {
				if data.Reading.Value == nil || *data.Reading.Value != value {
					fail("probe reading has wrong value: %s", string(ev.Data))
				}
				gotReading = true
				fmt.Println("Received reading:", string(ev.Data))
			}
		case "alert":
			if gotReading && strings.Contains(string(ev.Data), probeType) {
				gotAlert = true
				fmt.Println("Received alert:", string(ev.Data))
			}
		}
	}

	fmt.Println("E2E test completed")
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
