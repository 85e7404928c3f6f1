package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd", "-a", "127.0.0.1:9090", "-r", "127.0.0.1:6380", "-d", "/tmp/d", "-s", "/tmp/s.db", "-p", "3", "-t", "7", "-l", "debug"}, expectPanic: false,
			expected: &Config{ServerEndpointAddr: "127.0.0.1:9090", DirectoryAddr: "127.0.0.1:6380", DataDir: "/tmp/d", SecureStorePath: "/tmp/s.db",
				PollInterval: 3 * time.Second, RequestTimeout: 7 * time.Second, LogLevel: "debug"}},
		{name: "Test2 unknown flags are ignored", args: []string{"cmd", "-x", "1", "-a", "h:1"}, expectPanic: false,
			expected: &Config{ServerEndpointAddr: "h:1"}},
		{name: "Test3 incorrect poll interval", args: []string{"cmd", "-a", "127.0.0.1:9090", "-p", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}

func TestParseFlags_KeepsSubSecondDurationsWithoutFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd", "-a", "h:1"}

	cfg := &Config{PollInterval: 1500 * time.Millisecond, RequestTimeout: 500 * time.Millisecond}
	parseFlags(cfg)

	assert.Equal(t, 1500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.RequestTimeout)
	assert.Equal(t, "h:1", cfg.ServerEndpointAddr)
}

func TestParseFlags_ExplicitDurationOverrides(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd", "-t", "4"}

	cfg := &Config{PollInterval: 1500 * time.Millisecond, RequestTimeout: 500 * time.Millisecond}
	parseFlags(cfg)

	assert.Equal(t, 1500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 4*time.Second, cfg.RequestTimeout)
}
