// Package config loads avlink settings from defaults, an optional YAML file
// and AVLINK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/opd-ai/avlink/av"
	"github.com/opd-ai/avlink/av/audio"
	"github.com/opd-ai/avlink/av/video"
	"github.com/opd-ai/avlink/jitter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. AVLINK_VIDEO_PORT.
const EnvPrefix = "AVLINK"

// ErrInvalidConfig indicates a setting outside its allowed range.
var ErrInvalidConfig = errors.New("invalid configuration")

// VideoConfig holds the video capture and transport settings.
type VideoConfig struct {
	Port         int `mapstructure:"port"`
	Width        int `mapstructure:"width"`
	Height       int `mapstructure:"height"`
	FPS          int `mapstructure:"fps"`
	Quality      int `mapstructure:"quality"`
	BufferFrames int `mapstructure:"buffer_frames"`
}

// AudioConfig holds the audio period layout and transport settings.
type AudioConfig struct {
	Port          int    `mapstructure:"port"`
	SampleRate    int    `mapstructure:"sample_rate"`
	FrameSize     int    `mapstructure:"frame_size"`
	BufferPeriods int    `mapstructure:"buffer_periods"`
	Decoder       string `mapstructure:"decoder"`
	UplinkQueue   int    `mapstructure:"uplink_queue"`
}

// Config is the complete avlink configuration.
type Config struct {
	Peer   string `mapstructure:"peer"`
	Listen struct {
		Host string `mapstructure:"host"`
	} `mapstructure:"listen"`
	Buffer struct {
		Policy string `mapstructure:"policy"`
	} `mapstructure:"buffer"`
	Video   VideoConfig `mapstructure:"video"`
	Audio   AudioConfig `mapstructure:"audio"`
	Receive struct {
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"receive"`
	Rate struct {
		Every int `mapstructure:"every"`
	} `mapstructure:"rate"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

// New returns a viper instance with every default and environment binding set.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("peer", "")
	v.SetDefault("listen.host", "")
	v.SetDefault("buffer.policy", jitter.DropOldest.String())

	v.SetDefault("video.port", av.DefaultVideoPort)
	v.SetDefault("video.width", video.DefaultResolution.Width)
	v.SetDefault("video.height", video.DefaultResolution.Height)
	v.SetDefault("video.fps", av.DefaultFPS)
	v.SetDefault("video.quality", video.DefaultQuality)
	v.SetDefault("video.buffer_frames", av.DefaultBufferFrames)

	v.SetDefault("audio.port", av.DefaultAudioPort)
	v.SetDefault("audio.sample_rate", audio.SampleRate)
	v.SetDefault("audio.frame_size", audio.FrameSize)
	v.SetDefault("audio.buffer_periods", av.DefaultBufferPeriods)
	v.SetDefault("audio.decoder", "pcm")
	v.SetDefault("audio.uplink_queue", av.DefaultUplinkQueue)

	v.SetDefault("receive.timeout", av.DefaultReceiveTimeout)
	v.SetDefault("rate.every", av.DefaultRateEvery)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Read loads path into v. An empty path searches ./avlink.yaml and
// $HOME/.avlink/avlink.yaml and silently keeps the defaults when neither exists.
func Read(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("avlink")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".avlink"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "config.Read",
		"file":     v.ConfigFileUsed(),
	}).Debug("Configuration file loaded")
	return nil
}

// FromViper decodes and validates the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads defaults, the optional file at path and the environment.
func Load(path string) (*Config, error) {
	v := New()
	if err := Read(v, path); err != nil {
		return nil, err
	}
	return FromViper(v)
}

// Validate rejects settings the pipeline cannot run with. The peer address
// is checked separately when endpoints are built.
func (c *Config) Validate() error {
	for name, port := range map[string]int{"video.port": c.Video.Port, "audio.port": c.Audio.Port} {
		if port <= 0 || port > 65535 {
			return fmt.Errorf("%w: %s %d out of range", ErrInvalidConfig, name, port)
		}
	}
	if c.Video.Port == c.Audio.Port {
		return fmt.Errorf("%w: video and audio ports must differ", ErrInvalidConfig)
	}
	if !(video.Resolution{Width: c.Video.Width, Height: c.Video.Height}).Valid() {
		return fmt.Errorf("%w: resolution %dx%d", ErrInvalidConfig, c.Video.Width, c.Video.Height)
	}
	if c.Video.Quality < video.MinQuality || c.Video.Quality > video.MaxQuality {
		return fmt.Errorf("%w: video.quality %d not in %d..%d", ErrInvalidConfig, c.Video.Quality, video.MinQuality, video.MaxQuality)
	}

	positive := []struct {
		name  string
		value int
	}{
		{"video.fps", c.Video.FPS},
		{"video.buffer_frames", c.Video.BufferFrames},
		{"audio.sample_rate", c.Audio.SampleRate},
		{"audio.frame_size", c.Audio.FrameSize},
		{"audio.buffer_periods", c.Audio.BufferPeriods},
		{"audio.uplink_queue", c.Audio.UplinkQueue},
		{"rate.every", c.Rate.Every},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, p.name, p.value)
		}
	}

	if err := audio.ValidateFrameSize(c.Audio.FrameSize, c.Audio.SampleRate); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.Audio.Decoder {
	case "pcm", "opus":
	default:
		return fmt.Errorf("%w: audio.decoder %q", ErrInvalidConfig, c.Audio.Decoder)
	}
	if _, err := jitter.ParsePolicy(c.Buffer.Policy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Receive.Timeout <= 0 {
		return fmt.Errorf("%w: receive.timeout must be positive", ErrInvalidConfig)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// Session converts the settings into the pipeline configuration.
func (c *Config) Session() av.Config {
	policy, _ := jitter.ParsePolicy(c.Buffer.Policy)
	return av.Config{
		ListenHost:     c.Listen.Host,
		VideoPort:      c.Video.Port,
		AudioPort:      c.Audio.Port,
		Resolution:     video.Resolution{Width: c.Video.Width, Height: c.Video.Height},
		FPS:            c.Video.FPS,
		Quality:        c.Video.Quality,
		BufferFrames:   c.Video.BufferFrames,
		SampleRate:     c.Audio.SampleRate,
		FrameSize:      c.Audio.FrameSize,
		BufferPeriods:  c.Audio.BufferPeriods,
		UplinkQueue:    c.Audio.UplinkQueue,
		Decoder:        c.Audio.Decoder,
		Policy:         policy,
		ReceiveTimeout: c.Receive.Timeout,
		RateEvery:      c.Rate.Every,
	}
}

// ConfigureLogging applies the log level and format to the standard logger.
func (c *Config) ConfigureLogging() error {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	if c.Log.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
