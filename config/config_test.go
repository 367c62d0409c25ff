package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opd-ai/avlink/av/video"
	"github.com/opd-ai/avlink/jitter"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := FromViper(New())
	require.NoError(t, err)

	assert.Empty(t, cfg.Peer)
	assert.Equal(t, 8080, cfg.Video.Port)
	assert.Equal(t, 8081, cfg.Audio.Port)
	assert.Equal(t, 640, cfg.Video.Width)
	assert.Equal(t, 480, cfg.Video.Height)
	assert.Equal(t, 30, cfg.Video.FPS)
	assert.Equal(t, 85, cfg.Video.Quality)
	assert.Equal(t, 5, cfg.Video.BufferFrames)
	assert.Equal(t, 48000, cfg.Audio.SampleRate)
	assert.Equal(t, 960, cfg.Audio.FrameSize)
	assert.Equal(t, 5, cfg.Audio.BufferPeriods)
	assert.Equal(t, "pcm", cfg.Audio.Decoder)
	assert.Equal(t, 100*time.Millisecond, cfg.Receive.Timeout)
	assert.Equal(t, 30, cfg.Rate.Every)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "drop-oldest", cfg.Buffer.Policy)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("AVLINK_PEER", "10.0.0.2")
	t.Setenv("AVLINK_VIDEO_PORT", "9000")
	t.Setenv("AVLINK_RECEIVE_TIMEOUT", "250ms")
	t.Setenv("AVLINK_AUDIO_DECODER", "opus")

	cfg, err := FromViper(New())
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2", cfg.Peer)
	assert.Equal(t, 9000, cfg.Video.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Receive.Timeout)
	assert.Equal(t, "opus", cfg.Audio.Decoder)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avlink.yaml")
	data := []byte(`peer: 192.168.1.20
buffer:
  policy: drop-newest
video:
  width: 320
  height: 240
  quality: 60
audio:
  port: 9001
log:
  format: json
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.20", cfg.Peer)
	assert.Equal(t, 9001, cfg.Audio.Port)
	assert.Equal(t, 8080, cfg.Video.Port)

	sc := cfg.Session()
	assert.Equal(t, video.Resolution{Width: 320, Height: 240}, sc.Resolution)
	assert.Equal(t, 60, sc.Quality)
	assert.Equal(t, jitter.DropNewest, sc.Policy)
	assert.Equal(t, 9001, sc.AudioPort)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"video port zero", func(c *Config) { c.Video.Port = 0 }},
		{"audio port too large", func(c *Config) { c.Audio.Port = 70000 }},
		{"same ports", func(c *Config) { c.Audio.Port = c.Video.Port }},
		{"quality low", func(c *Config) { c.Video.Quality = 0 }},
		{"quality high", func(c *Config) { c.Video.Quality = 101 }},
		{"bad resolution", func(c *Config) { c.Video.Width = 0 }},
		{"zero buffer", func(c *Config) { c.Video.BufferFrames = 0 }},
		{"negative periods", func(c *Config) { c.Audio.BufferPeriods = -1 }},
		{"odd frame size", func(c *Config) { c.Audio.FrameSize = 1000 }},
		{"unknown decoder", func(c *Config) { c.Audio.Decoder = "aac" }},
		{"unknown policy", func(c *Config) { c.Buffer.Policy = "drop-all" }},
		{"zero timeout", func(c *Config) { c.Receive.Timeout = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromViper(New())
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfigureLogging(t *testing.T) {
	defer logrus.SetLevel(logrus.GetLevel())
	defer logrus.SetFormatter(logrus.StandardLogger().Formatter)

	cfg, err := FromViper(New())
	require.NoError(t, err)
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"

	require.NoError(t, cfg.ConfigureLogging())
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)
}
