// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sink delivers decoded samples to the outside world.
package sink

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/inertial_telemetry/internal/imu"
)

// DefaultPublishTimeout bounds how long Publish waits for the broker.
const DefaultPublishTimeout = 2 * time.Second

// MQTT publishes each sample as retained JSON on one topic.
type MQTT struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration
}

// DialMQTT connects to broker and returns a sink publishing on topic.
func DialMQTT(broker, clientID, topic string) (*MQTT, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warnf("mqtt sink: connection lost: %v", err)
		})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt sink: connect %s: %w", broker, token.Error())
	}
	log.Infof("mqtt sink: connected to %s, topic %s", broker, topic)
	return NewMQTT(client, topic), nil
}

// NewMQTT wraps an already connected client.
func NewMQTT(client mqtt.Client, topic string) *MQTT {
	return &MQTT{client: client, topic: topic, timeout: DefaultPublishTimeout}
}

func (m *MQTT) Publish(s imu.Sample) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("mqtt sink: marshal: %w", err)
	}
	token := m.client.Publish(m.topic, 0, true, payload)
	if !token.WaitTimeout(m.timeout) {
		return fmt.Errorf("mqtt sink: publish %s: timed out after %s", m.topic, m.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt sink: publish %s: %w", m.topic, err)
	}
	return nil
}

func (m *MQTT) Close() error {
	m.client.Disconnect(250)
	return nil
}
