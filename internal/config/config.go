// Package config provides environment-variable configuration helpers for
// mascotcore commands: read an override, fall back to a caller-supplied
// default, same env-var-with-fallback shape the pack uses throughout for
// small standalone binaries (ports, seeds, endpoint URLs).
package config

import (
	"os"
	"strconv"
)

// Default telemetry/demo configuration.
const (
	DefaultTelemetryPort = "8090"
	DefaultBPM           = 120.0
	DefaultWidth         = 800
	DefaultHeight        = 600
)

// TelemetryPort returns the debug server port from MASCOT_TELEMETRY_PORT,
// or the provided default if unset.
func TelemetryPort(defaultPort string) string {
	if p := os.Getenv("MASCOT_TELEMETRY_PORT"); p != "" {
		return p
	}
	return defaultPort
}

// InitialBPM returns the starting tempo from MASCOT_BPM, or defaultBPM if
// unset or unparseable.
func InitialBPM(defaultBPM float64) float64 {
	v := os.Getenv("MASCOT_BPM")
	if v == "" {
		return defaultBPM
	}
	bpm, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultBPM
	}
	return bpm
}

// AudioWebsocketURL returns the PCM ingestion websocket URL from
// MASCOT_AUDIO_WS, or "" (no audio tap) if unset.
func AudioWebsocketURL() string {
	return os.Getenv("MASCOT_AUDIO_WS")
}
