package av

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/opd-ai/avlink/av/audio"
	"github.com/opd-ai/avlink/av/video"
	"github.com/opd-ai/avlink/interfaces"
	"github.com/opd-ai/avlink/jitter"
	"github.com/opd-ai/avlink/transport"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// SessionDeps are the collaborators a Session drives. Camera, Renderer and
// Audio are required; the codecs and clock fall back to defaults.
type SessionDeps struct {
	Camera   interfaces.Camera
	Renderer interfaces.Renderer
	Audio    interfaces.AudioDevice

	VideoCodec video.Codec
	AudioCodec audio.Codec
	Clock      TimeProvider
}

// Session is one two-way audio/video exchange with a single peer. It owns
// the send sockets, both receive loops, the buffers and the devices, and
// releases all of them when Run returns.
type Session struct {
	id    string
	cfg   Config
	peers transport.PeerEndpoints
	deps  SessionDeps
	log   *logrus.Entry

	videoBuf *jitter.Buffer[image.Image]
	audioBuf *jitter.SampleBuffer

	videoRecv *Receiver
	audioRecv *Receiver
	playout   *AudioPlayout
	display   *VideoDisplay
	rate      *RateTracker

	mu          sync.Mutex
	videoSender *Sender
	audioSender *Sender
	uplink      *AudioUplink
	cancel      context.CancelFunc

	started  atomic.Bool
	running  atomic.Bool
	stopOnce sync.Once
}

// NewSession wires the pipeline for cfg and peers. No socket is opened
// until Run.
func NewSession(cfg Config, peers transport.PeerEndpoints, deps SessionDeps) (*Session, error) {
	if deps.Camera == nil || deps.Renderer == nil || deps.Audio == nil {
		return nil, ErrMissingDevice
	}
	if peers.Video == nil || peers.Audio == nil {
		return nil, fmt.Errorf("%w: missing endpoint", transport.ErrInvalidPeer)
	}

	cfg = cfg.withDefaults()
	if err := audio.ValidateFrameSize(cfg.FrameSize, cfg.SampleRate); err != nil {
		return nil, err
	}

	if deps.VideoCodec == nil {
		deps.VideoCodec = video.NewJPEGCodec()
	}
	if deps.AudioCodec == nil {
		codec, err := audio.NewCodec(cfg.Decoder, cfg.SampleRate)
		if err != nil {
			return nil, err
		}
		deps.AudioCodec = codec
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}

	s := &Session{
		id:       id,
		cfg:      cfg,
		peers:    peers,
		deps:     deps,
		log:      logrus.WithField("session", id),
		videoBuf: jitter.New[image.Image](cfg.BufferFrames, cfg.Policy),
		audioBuf: jitter.NewSampleBuffer(cfg.BufferPeriods * cfg.FrameSize),
		rate:     NewRateTracker(cfg.RateEvery, deps.Clock),
	}

	s.videoRecv = NewReceiver(transport.MediaVideo, cfg.ListenHost, cfg.VideoPort,
		NewVideoSink(deps.VideoCodec, cfg.Resolution, s.videoBuf), cfg.ReceiveTimeout)
	s.audioRecv = NewReceiver(transport.MediaAudio, cfg.ListenHost, cfg.AudioPort,
		NewAudioSink(deps.AudioCodec, s.audioBuf), cfg.ReceiveTimeout)
	s.playout = NewAudioPlayout(s.audioBuf)
	s.display = NewVideoDisplay(s.videoBuf, cfg.Resolution)

	s.log.WithFields(logrus.Fields{
		"function":   "NewSession",
		"video_peer": peers.Video.String(),
		"audio_peer": peers.Audio.String(),
		"resolution": cfg.Resolution.String(),
		"decoder":    cfg.Decoder,
	}).Info("Session created")

	return s, nil
}

// ID returns the random session identifier used in log entries.
func (s *Session) ID() string {
	return s.id
}

// Running reports whether the session is between startup and shutdown.
// It becomes false exactly once.
func (s *Session) Running() bool {
	return s.running.Load()
}

// Run starts the receive loops, the audio uplink and the audio device, then
// drives the capture/display loop until the user quits, capture fails or ctx
// is cancelled. Every resource is released before Run returns.
func (s *Session) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	log := s.log.WithField("function", "Session.Run")

	if err := s.openSenders(ctx); err != nil {
		log.WithError(err).Error("Startup failed")
		s.closeDevices()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(runCtx)
	for _, r := range []*Receiver{s.videoRecv, s.audioRecv} {
		r := r
		if err := r.Bind(gctx); err != nil {
			log.WithFields(logrus.Fields{
				"media": r.Media().String(),
				"error": err.Error(),
			}).Error("Receive disabled for this media")
			continue
		}
		g.Go(func() error { return r.Run(gctx) })
	}
	g.Go(func() error { return s.uplink.Run(gctx) })

	s.rate.Start()
	s.running.Store(true)

	var err error
	if startErr := s.deps.Audio.Start(s.uplink.Capture, s.playout.Fill); startErr != nil {
		err = fmt.Errorf("start audio device: %w", startErr)
		log.WithError(err).Error("Startup failed")
	} else {
		log.Info("Session running")
		err = s.controlLoop(gctx)
	}

	s.shutdown(cancel, g)
	return err
}

func (s *Session) openSenders(ctx context.Context) error {
	videoSender, err := NewSender(ctx, transport.MediaVideo, s.peers.Video)
	if err != nil {
		return err
	}
	audioSender, err := NewSender(ctx, transport.MediaAudio, s.peers.Audio)
	if err != nil {
		_ = videoSender.Close()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoSender = videoSender
	s.audioSender = audioSender
	s.uplink = NewAudioUplink(audioSender, s.deps.AudioCodec, s.cfg.FrameSize, s.cfg.UplinkQueue)
	return nil
}

// controlLoop runs capture, send, display and quit polling once per frame.
func (s *Session) controlLoop(ctx context.Context) error {
	log := s.log.WithField("function", "Session.controlLoop")

	for {
		if ctx.Err() != nil {
			log.Info("Session cancelled")
			return nil
		}

		img, err := s.deps.Camera.Grab()
		if err == nil && img == nil {
			err = interfaces.ErrEmptyFrame
		}
		if err != nil {
			log.WithError(err).Error("Could not capture frame")
			return fmt.Errorf("%w: %v", ErrCaptureFailed, err)
		}

		s.sendFrame(video.Fit(img, s.cfg.Resolution))

		if err := s.deps.Renderer.Show(s.display.Next()); err != nil {
			log.WithError(err).Warn("Failed to display frame")
		}

		if s.deps.Renderer.WaitKey(KeyPollInterval) {
			log.Info("Quit requested")
			return nil
		}

		s.rate.Tick()
	}
}

func (s *Session) sendFrame(frame image.Image) {
	encoded, err := s.deps.VideoCodec.Encode(frame, s.cfg.Quality)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"function": "Session.sendFrame",
			"error":    fmt.Errorf("%w: %v", ErrEncodeFailed, err).Error(),
		}).Warn("Skipping local frame")
		return
	}
	if err := s.videoSender.Send(encoded); err != nil {
		s.log.WithFields(logrus.Fields{
			"function": "Session.sendFrame",
			"length":   len(encoded),
			"error":    err.Error(),
		}).Warn("Failed to send video frame")
	}
}

// Stop asks a running session to shut down. Run performs the teardown.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// shutdown tears the session down in a fixed order: flag, cancel, audio
// device, task join, renderer, camera, senders.
func (s *Session) shutdown(cancel context.CancelFunc, g *errgroup.Group) {
	s.stopOnce.Do(func() {
		log := s.log.WithField("function", "Session.shutdown")
		s.running.Store(false)
		cancel()

		if err := s.deps.Audio.Stop(); err != nil {
			log.WithError(err).Error("Failed to stop audio device")
		}
		if err := g.Wait(); err != nil {
			log.WithError(err).Error("Session task failed")
		}

		s.closeDevices()

		s.mu.Lock()
		senders := []*Sender{s.videoSender, s.audioSender}
		s.mu.Unlock()
		for _, sender := range senders {
			if err := sender.Close(); err != nil {
				log.WithFields(logrus.Fields{
					"media": sender.Media().String(),
					"error": err.Error(),
				}).Error("Failed to close send socket")
			}
		}

		log.WithFields(s.Stats().Fields()).Info("Session stopped")
	})
}

func (s *Session) closeDevices() {
	log := s.log.WithField("function", "Session.closeDevices")
	if err := s.deps.Renderer.Close(); err != nil {
		log.WithError(err).Error("Failed to close renderer")
	}
	if err := s.deps.Camera.Close(); err != nil {
		log.WithError(err).Error("Failed to close camera")
	}
	if err := s.deps.Audio.Close(); err != nil {
		log.WithError(err).Error("Failed to close audio device")
	}
	if err := s.deps.AudioCodec.Close(); err != nil {
		log.WithError(err).Error("Failed to close audio codec")
	}
}
