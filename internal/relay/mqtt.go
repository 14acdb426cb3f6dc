package relay

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	DefaultTopic    = "soundboard/commands"
	DefaultClientID = "soundboard"
	DefaultTimeout  = 5 * time.Second
)

// MQTT publishes commands to a broker over one long-lived connection.
// paho reconnects on its own if the broker drops.
type MQTT struct {
	client  pahomqtt.Client
	topic   string
	qos     byte
	retain  bool
	payload string
	timeout time.Duration
	log     *slog.Logger
}

// NewMQTT connects to opts.Broker.
func NewMQTT(opts Options) (*MQTT, error) {
	if opts.Broker == "" {
		return nil, errors.New("mqtt: broker is required")
	}
	if opts.QoS > 2 {
		return nil, fmt.Errorf("mqtt: invalid qos %d", opts.QoS)
	}
	switch opts.Payload {
	case "", PayloadByte, PayloadText, PayloadMsgpack:
	default:
		return nil, fmt.Errorf("mqtt: unknown payload format %q", opts.Payload)
	}
	m := &MQTT{
		topic:   opts.Topic,
		qos:     opts.QoS,
		retain:  opts.Retain,
		payload: opts.Payload,
		timeout: opts.Timeout,
		log:     opts.Log,
	}
	if m.topic == "" {
		m.topic = DefaultTopic
	}
	if m.timeout <= 0 {
		m.timeout = DefaultTimeout
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	clientID := opts.ClientID
	if clientID == "" {
		clientID = DefaultClientID
	}

	co := pahomqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(clientID).
		SetConnectTimeout(m.timeout).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			m.log.Warn("mqtt connection lost", "broker", opts.Broker, "err", err)
		})
	if opts.Username != "" {
		co.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		co.SetPassword(opts.Password)
	}

	m.client = pahomqtt.NewClient(co)
	tok := m.client.Connect()
	if !tok.WaitTimeout(m.timeout) {
		return nil, fmt.Errorf("mqtt: connect timeout")
	}
	if tok.Error() != nil {
		return nil, fmt.Errorf("mqtt: connect: %w", tok.Error())
	}
	m.log.Info("mqtt relay connected", "broker", opts.Broker, "topic", m.topic)
	return m, nil
}

// Send publishes action and waits for the broker to acknowledge it (QoS 1
// and 2) or for the write to complete (QoS 0).
func (m *MQTT) Send(action string) error {
	payload, err := Encode(m.payload, action)
	if err != nil {
		return err
	}
	pub := m.client.Publish(m.topic, m.qos, m.retain, payload)
	if !pub.WaitTimeout(m.timeout) {
		return fmt.Errorf("mqtt: publish timeout")
	}
	if pub.Error() != nil {
		return fmt.Errorf("mqtt: publish: %w", pub.Error())
	}
	m.log.Debug("command relayed", "action", normalize(action), "topic", m.topic)
	return nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() error {
	m.client.Disconnect(250)
	return nil
}
