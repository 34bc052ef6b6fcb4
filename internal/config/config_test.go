package config

import (
	"flag"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	type want struct {
		apiBaseURL  string
		socketURL   string
		statePath   string
		httpTimeout int
	}

	tests := []struct {
		name  string
		env   map[string]string
		flags []string
		want  want
	}{
		{
			name:  "defaults",
			env:   map[string]string{},
			flags: []string{},
			want: want{
				apiBaseURL:  "http://localhost:5000",
				statePath:   "picker-state.db",
				httpTimeout: 10,
			},
		},
		{
			name: "env only",
			env: map[string]string{
				"API_BASE_URL": "http://api.example.com",
				"SOCKET_URL":   "ws://api.example.com/socket",
				"STATE_PATH":   "/var/lib/picker/state.db",
				"HTTP_TIMEOUT": "30",
			},
			flags: []string{},
			want: want{
				apiBaseURL:  "http://api.example.com",
				socketURL:   "ws://api.example.com/socket",
				statePath:   "/var/lib/picker/state.db",
				httpTimeout: 30,
			},
		},
		{
			name: "flags only",
			env:  map[string]string{},
			flags: []string{
				"-a", "http://flag.example.com",
				"-s", "ws://flag.example.com/socket",
				"-f", "flag-state.db",
				"-t", "5",
			},
			want: want{
				apiBaseURL:  "http://flag.example.com",
				socketURL:   "ws://flag.example.com/socket",
				statePath:   "flag-state.db",
				httpTimeout: 5,
			},
		},
		{
			name: "env overrides flags",
			env: map[string]string{
				"API_BASE_URL": "http://env.example.com",
				"SOCKET_URL":   "ws://env.example.com/socket",
			},
			flags: []string{
				"-a", "http://flag.example.com",
				"-s", "ws://flag.example.com/socket",
			},
			want: want{
				apiBaseURL:  "http://env.example.com",
				socketURL:   "ws://env.example.com/socket",
				statePath:   "picker-state.db",
				httpTimeout: 10,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			os.Args = append([]string{"test"}, tt.flags...)

			cfg, err := Parse()
			require.NoError(t, err)

			assert.Equal(t, tt.want.apiBaseURL, cfg.APIBaseURL)
			assert.Equal(t, tt.want.socketURL, cfg.SocketURL)
			assert.Equal(t, tt.want.statePath, cfg.StatePath)
			assert.Equal(t, tt.want.httpTimeout, cfg.HTTPTimeoutSeconds)
		})
	}
}
