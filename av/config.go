package av

import (
	"time"

	"github.com/opd-ai/avlink/av/audio"
	"github.com/opd-ai/avlink/av/video"
	"github.com/opd-ai/avlink/jitter"
)

// Default pipeline settings.
const (
	DefaultVideoPort      = 8080
	DefaultAudioPort      = 8081
	DefaultFPS            = 30
	DefaultBufferFrames   = 5
	DefaultBufferPeriods  = 5
	DefaultUplinkQueue    = 5
	DefaultReceiveTimeout = 100 * time.Millisecond
	DefaultRateEvery      = 30

	// KeyPollInterval is how long the controller waits for a quit key per frame.
	KeyPollInterval = time.Millisecond
)

// Config holds the tunables of a Session.
type Config struct {
	// ListenHost is the address receive sockets bind to; empty means all interfaces.
	ListenHost string
	VideoPort  int
	AudioPort  int

	Resolution   video.Resolution
	FPS          int
	Quality      int
	BufferFrames int

	SampleRate    int
	FrameSize     int
	BufferPeriods int
	UplinkQueue   int
	// Decoder selects the incoming audio decoder ("pcm" or "opus").
	Decoder string

	Policy         jitter.Policy
	ReceiveTimeout time.Duration
	RateEvery      int
}

// DefaultConfig returns 640x480 video at 30 fps and 20 ms mono audio periods at 48 kHz.
func DefaultConfig() Config {
	return Config{
		VideoPort:      DefaultVideoPort,
		AudioPort:      DefaultAudioPort,
		Resolution:     video.DefaultResolution,
		FPS:            DefaultFPS,
		Quality:        video.DefaultQuality,
		BufferFrames:   DefaultBufferFrames,
		SampleRate:     audio.SampleRate,
		FrameSize:      audio.FrameSize,
		BufferPeriods:  DefaultBufferPeriods,
		UplinkQueue:    DefaultUplinkQueue,
		Decoder:        "pcm",
		Policy:         jitter.DropOldest,
		ReceiveTimeout: DefaultReceiveTimeout,
		RateEvery:      DefaultRateEvery,
	}
}

// withDefaults fills zero fields so a partially populated Config is usable.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if !c.Resolution.Valid() {
		c.Resolution = d.Resolution
	}
	if c.FPS <= 0 {
		c.FPS = d.FPS
	}
	if c.Quality == 0 {
		c.Quality = d.Quality
	}
	if c.BufferFrames <= 0 {
		c.BufferFrames = d.BufferFrames
	}
	if c.SampleRate <= 0 {
		c.SampleRate = d.SampleRate
	}
	if c.FrameSize <= 0 {
		c.FrameSize = d.FrameSize
	}
	if c.BufferPeriods <= 0 {
		c.BufferPeriods = d.BufferPeriods
	}
	if c.UplinkQueue <= 0 {
		c.UplinkQueue = d.UplinkQueue
	}
	if c.ReceiveTimeout <= 0 {
		c.ReceiveTimeout = d.ReceiveTimeout
	}
	if c.RateEvery <= 0 {
		c.RateEvery = d.RateEvery
	}
	return c
}
