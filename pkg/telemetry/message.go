// Package telemetry publishes camera state, throughput and preview
// frames over MQTT for dashboards and lab monitoring. Payloads are
// JSON envelopes on a per-camera topic tree; consumers subscribe to
// <base>/<camera>/<kind>.
package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageType identifies the kind of telemetry message.
type MessageType string

const (
	TypeState   MessageType = "state"   // Acquisition state transition
	TypeStats   MessageType = "stats"   // Engine throughput block
	TypePreview MessageType = "preview" // Rendered preview frame
	TypeEvent   MessageType = "event"   // Free-form operational event
)

// Message is the base wrapper for all telemetry messages.
type Message struct {
	Type      MessageType     `json:"type"`
	ID        string          `json:"id,omitempty"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with a fresh ID and the current
// timestamp.
func NewMessage(msgType MessageType, data any) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("telemetry: marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		ID:        uuid.New().String(),
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct.
func (m *Message) ParseData(v any) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message.
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("telemetry: parse message: %w", err)
	}
	return &msg, nil
}

// StateData reports an acquisition state transition.
type StateData struct {
	Camera     string `json:"camera"`
	State      string `json:"state"` // "idle", "live", "sequence"
	SessionID  string `json:"session_id,omitempty"`
	FrameCount int    `json:"frame_count,omitempty"`
	OutputDir  string `json:"output_dir,omitempty"`
}

// StatsData carries the engine throughput numbers. Disk fields stay
// zero for live runs.
type StatsData struct {
	Camera          string  `json:"camera"`
	AcqFPS          float64 `json:"acq_fps"`
	AcqFramesValid  uint64  `json:"acq_frames_valid"`
	AcqFramesLost   uint64  `json:"acq_frames_lost"`
	DiskFPS         float64 `json:"disk_fps,omitempty"`
	DiskFramesValid uint64  `json:"disk_frames_valid,omitempty"`
	DiskFramesLost  uint64  `json:"disk_frames_lost,omitempty"`
}

// PreviewData carries a rendered preview frame. Width and Height are
// the source frame's dimensions; the encoded image may be downscaled.
type PreviewData struct {
	Camera      string `json:"camera"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Format      string `json:"format"` // "png"
	Data        string `json:"data"`   // base64 encoded
	FrameNumber uint32 `json:"frame_number,omitempty"`
}

// EventData carries a free-form operational event.
type EventData struct {
	Camera string `json:"camera"`
	Event  string `json:"event"`
	Detail string `json:"detail,omitempty"`
}
