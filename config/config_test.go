package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"900ms", 900 * time.Millisecond},
		{"4s", 4 * time.Second},
		{"1d", 24 * time.Hour},
		{"1w", 7 * 24 * time.Hour},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if err != nil {
			t.Errorf("ParseDuration(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseDuration("soon"); err == nil {
		t.Errorf("ParseDuration(soon) succeeded")
	}
}

func TestDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()

	if got := SendDelay(); got != 900*time.Millisecond {
		t.Errorf("SendDelay = %v", got)
	}
	if got := StatusDuration(); got != 4*time.Second {
		t.Errorf("StatusDuration = %v", got)
	}
	if got := SQLConnector(); got != ConnectorBuiltin {
		t.Errorf("SQLConnector = %q", got)
	}
}

func TestBadDurationFallsBack(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()
	viper.Set("send_delay", "whenever")
	if got := SendDelay(); got != 900*time.Millisecond {
		t.Errorf("SendDelay = %v", got)
	}
	viper.Set("status_duration", "2d")
	if got := StatusDuration(); got != 48*time.Hour {
		t.Errorf("StatusDuration = %v", got)
	}
}
