// Package config provides environment-based configuration helpers for
// go-pvcam. Libraries embedding this module can ignore it and pass
// settings explicitly; the helpers exist for lab scripts and services
// that configure everything through the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults for telemetry publishing.
const (
	DefaultMQTTURL   = "tcp://localhost:1883"
	DefaultMQTTTopic = "pvcam"
	DefaultMQTTQoS   = 2
)

// GetEnv returns the value of key, or fallback if unset or empty.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt returns the integer value of key, or fallback if unset
// or unparseable.
func GetEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// GetEnvBool returns the boolean value of key, or fallback if unset
// or unparseable. Accepts the forms strconv.ParseBool accepts.
func GetEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// GetEnvDuration returns the duration value of key (e.g. "500ms", "2s"),
// or fallback if unset or unparseable.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// MQTTURL returns the telemetry broker URL from PVCAM_MQTT_URL.
func MQTTURL() string {
	return GetEnv("PVCAM_MQTT_URL", DefaultMQTTURL)
}

// MQTTTopic returns the telemetry base topic from PVCAM_MQTT_TOPIC.
func MQTTTopic() string {
	return GetEnv("PVCAM_MQTT_TOPIC", DefaultMQTTTopic)
}

// MQTTQoS returns the telemetry QoS level from PVCAM_MQTT_QOS.
func MQTTQoS() int {
	return GetEnvInt("PVCAM_MQTT_QOS", DefaultMQTTQoS)
}

// LogLevel returns the log level from PVCAM_LOG_LEVEL.
func LogLevel() string {
	return GetEnv("PVCAM_LOG_LEVEL", "info")
}
