package telemetry

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/sgctrl/go-pvcam/internal/config"
	"github.com/sgctrl/go-pvcam/internal/log"
)

// ErrNotConnected is returned when publishing before Connect, or after
// the broker connection has gone away.
var ErrNotConnected = errors.New("telemetry: not connected")

// Config holds the publisher's broker settings. An empty BrokerURL
// disables publishing entirely: every call succeeds without touching
// the network, so instruments can run with telemetry off.
type Config struct {
	BrokerURL      string
	ClientID       string
	BaseTopic      string
	QoS            byte
	ConnectTimeout time.Duration
}

// DefaultConfig builds a config from the environment, falling back to
// a local broker.
func DefaultConfig() Config {
	return Config{
		BrokerURL:      config.MQTTURL(),
		ClientID:       "go-pvcam-" + uuid.New().String()[:8],
		BaseTopic:      config.MQTTTopic(),
		QoS:            byte(config.MQTTQoS()),
		ConnectTimeout: 5 * time.Second,
	}
}

// Publisher sends telemetry messages to an MQTT broker.
type Publisher struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	client mqtt.Client
}

// NewPublisher creates an unconnected publisher.
func NewPublisher(cfg Config) *Publisher {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	return &Publisher{
		cfg:    cfg,
		logger: log.Component("telemetry"),
	}
}

// Enabled reports whether the publisher has a broker configured.
func (p *Publisher) Enabled() bool {
	return p.cfg.BrokerURL != ""
}

// Connect dials the broker. It is a no-op for a disabled publisher.
func (p *Publisher) Connect() error {
	if !p.Enabled() {
		p.logger.Info("telemetry disabled, no broker configured")
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(p.cfg.BrokerURL).
		SetClientID(p.cfg.ClientID)
	opts.SetConnectTimeout(p.cfg.ConnectTimeout)
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(p.cfg.ConnectTimeout) {
		return fmt.Errorf("telemetry: connect to %s timed out", p.cfg.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("telemetry: connect to %s: %w", p.cfg.BrokerURL, err)
	}

	p.client = client
	p.logger.Info("connected to broker",
		"broker", p.cfg.BrokerURL,
		"base_topic", p.cfg.BaseTopic,
		"qos", p.cfg.QoS,
	)
	return nil
}

// Close disconnects from the broker, letting in-flight messages drain
// briefly.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return
	}
	p.client.Disconnect(250)
	p.client = nil
	p.logger.Info("disconnected from broker")
}

// topic builds the per-camera topic for a message kind.
func (p *Publisher) topic(camera string, kind MessageType) string {
	return p.cfg.BaseTopic + "/" + camera + "/" + string(kind)
}

// publish wraps data in an envelope and sends it. Disabled publishers
// drop the message after building it, so payload bugs surface in tests
// even with no broker.
func (p *Publisher) publish(camera string, msgType MessageType, data any) error {
	msg, err := NewMessage(msgType, data)
	if err != nil {
		return err
	}
	payload, err := msg.Bytes()
	if err != nil {
		return fmt.Errorf("telemetry: encode message: %w", err)
	}

	if !p.Enabled() {
		return nil
	}

	p.mu.Lock()
	client := p.client
	p.mu.Unlock()
	if client == nil {
		return ErrNotConnected
	}

	token := client.Publish(p.topic(camera, msgType), p.cfg.QoS, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("telemetry: publish %s: %w", msgType, err)
	}
	return nil
}

// PublishState sends an acquisition state transition.
func (p *Publisher) PublishState(camera string, data StateData) error {
	return p.publish(camera, TypeState, data)
}

// PublishStats sends an engine throughput block.
func (p *Publisher) PublishStats(camera string, data StatsData) error {
	return p.publish(camera, TypeStats, data)
}

// PublishPreview sends a rendered preview frame.
func (p *Publisher) PublishPreview(camera string, data PreviewData) error {
	return p.publish(camera, TypePreview, data)
}

// PublishEvent sends a free-form operational event.
func (p *Publisher) PublishEvent(camera string, data EventData) error {
	return p.publish(camera, TypeEvent, data)
}
