package telemetry

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestPublisher_Disabled(t *testing.T) {
	p := NewPublisher(Config{})

	if p.Enabled() {
		t.Error("Enabled: got true, want false for empty broker")
	}
	if err := p.Connect(); err != nil {
		t.Errorf("Connect: got %v, want nil", err)
	}
	if err := p.PublishState("FakeCam00", StateData{Camera: "FakeCam00", State: "live"}); err != nil {
		t.Errorf("PublishState: got %v, want nil", err)
	}
	if err := p.PublishStats("FakeCam00", StatsData{Camera: "FakeCam00"}); err != nil {
		t.Errorf("PublishStats: got %v, want nil", err)
	}
	if err := p.PublishPreview("FakeCam00", PreviewData{Camera: "FakeCam00"}); err != nil {
		t.Errorf("PublishPreview: got %v, want nil", err)
	}
	if err := p.PublishEvent("FakeCam00", EventData{Camera: "FakeCam00", Event: "opened"}); err != nil {
		t.Errorf("PublishEvent: got %v, want nil", err)
	}
	p.Close()
}

func TestPublisher_NotConnected(t *testing.T) {
	p := NewPublisher(Config{
		BrokerURL: "tcp://broker.invalid:1883",
		BaseTopic: "pvcam",
	})

	err := p.PublishStats("FakeCam00", StatsData{Camera: "FakeCam00"})
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishStats: got %v, want %v", err, ErrNotConnected)
	}
}

func TestPublisher_Topic(t *testing.T) {
	p := NewPublisher(Config{
		BrokerURL: "tcp://broker.invalid:1883",
		BaseTopic: "lab/pvcam",
	})

	if got := p.topic("FakeCam00", TypeStats); got != "lab/pvcam/FakeCam00/stats" {
		t.Errorf("topic: got %q, want lab/pvcam/FakeCam00/stats", got)
	}
	if got := p.topic("CamB", TypePreview); got != "lab/pvcam/CamB/preview" {
		t.Errorf("topic: got %q, want lab/pvcam/CamB/preview", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("PVCAM_MQTT_URL", "tcp://broker.lab:1883")
	t.Setenv("PVCAM_MQTT_TOPIC", "lab/cameras")
	t.Setenv("PVCAM_MQTT_QOS", "1")

	cfg := DefaultConfig()
	if cfg.BrokerURL != "tcp://broker.lab:1883" {
		t.Errorf("BrokerURL = %v", cfg.BrokerURL)
	}
	if cfg.BaseTopic != "lab/cameras" {
		t.Errorf("BaseTopic = %v", cfg.BaseTopic)
	}
	if cfg.QoS != 1 {
		t.Errorf("QoS = %v, want 1", cfg.QoS)
	}
	if !strings.HasPrefix(cfg.ClientID, "go-pvcam-") {
		t.Errorf("ClientID = %v, want go-pvcam- prefix", cfg.ClientID)
	}
	if cfg.ConnectTimeout != 5*time.Second {
		t.Errorf("ConnectTimeout = %v, want 5s", cfg.ConnectTimeout)
	}
}
