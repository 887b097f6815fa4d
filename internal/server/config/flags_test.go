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
		name        string
		args        []string
		expected    *Config
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-g", "127.0.0.1:9091", "-m", "/api", "-d", "db", "-s", "secret",
				"-t", "60", "-bc", "4", "-ms", "2048", "-as", "s3",
				"-u", "user", "-p", "password", "-b", "bucket", "-r", "us-west-1", "-e", "http://endpoint",
				"-ra", "localhost:6379", "-lr", "3", "-lw", "30", "-o", "http://a.example,http://b.example",
				"-tp", "10.0.0.0/8",
				"-ll", "debug", "-lf", "text", "-lb", "zap",
			},
			expected: &Config{
				EndpointAddrHTTP:      "127.0.0.1:9090",
				EndpointAddrGRPC:      "127.0.0.1:9091",
				BasePath:              "/api",
				DatabaseDSN:           "db",
				SecretKey:             "secret",
				TokenValidityDuration: time.Hour,
				BcryptCost:            4,
				MaxAvatarBytes:        2048,
				AvatarStorage:         "s3",
				S3RootUser:            "user",
				S3RootPassword:        "password",
				S3Bucket:              "bucket",
				S3Region:              "us-west-1",
				S3BaseEndpoint:        "http://endpoint",
				RedisAddr:             "localhost:6379",
				LoginRateLimit:        3,
				LoginRateWindow:       30 * time.Second,
				AllowedOrigins:        []string{"http://a.example", "http://b.example"},
				TrustedProxies:        []string{"10.0.0.0/8"},
				LogLevel:              "debug",
				LogFormat:             "text",
				LogBackend:            "zap",
			},
		},
		{
			name:        "non numeric duration panics",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}

			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseFlags_IgnoresConfigFlag(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd", "-c", "conf.json", "-a", ":7070"}

	config := &Config{}
	config.LoadDefaults()
	require.NotPanics(t, func() { parseFlags(config) })
	assert.Equal(t, ":7070", config.EndpointAddrHTTP)
	assert.Equal(t, 7*24*time.Hour, config.TokenValidityDuration)
}
