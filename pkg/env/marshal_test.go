package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Token    string        `env:"TOKEN,required" secret:"true"`
	Cooldown time.Duration `env:"COOLDOWN"`
	Limit    int           `env:"LIMIT"`
	Chats    []int64       `env:"CHATS" envSeparator:";"`
	Enabled  bool          `env:"ENABLED"`
	Empty    string        `env:"EMPTY"`
	Untagged string
}

func TestMarshalEnv(t *testing.T) {
	cfg := &sample{
		Token:    "secret-token",
		Cooldown: 3 * time.Second,
		Limit:    45,
		Chats:    []int64{1, 2},
		Enabled:  true,
		Untagged: "ignored",
	}

	tests := []struct {
		name   string
		redact bool
		want   string
	}{
		{
			name:   "plain",
			redact: false,
			want:   "TOKEN=secret-token\nCOOLDOWN=3s\nLIMIT=45\nCHATS=1;2\nENABLED=true\n",
		},
		{
			name:   "redacted",
			redact: true,
			want:   "TOKEN=********\nCOOLDOWN=3s\nLIMIT=45\nCHATS=1;2\nENABLED=true\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalEnv(cfg, tt.redact)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarshalEnv_NotStruct(t *testing.T) {
	_, err := MarshalEnv(42, false)
	assert.Error(t, err)
}

func TestMarshalEnv_AllZero(t *testing.T) {
	got, err := MarshalEnv(sample{}, false)
	require.NoError(t, err)
	assert.Empty(t, got)
}
