package av

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/opd-ai/avlink/av/video"
	"github.com/opd-ai/avlink/device"
	"github.com/opd-ai/avlink/interfaces"
	"github.com/opd-ai/avlink/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// freePort reserves an ephemeral loopback port and releases it again.
func freePort(t *testing.T) int {
	t.Helper()
	conn, err := transport.Listen(context.Background(), "127.0.0.1", 0)
	require.NoError(t, err)
	port := conn.LocalAddr().(*net.UDPAddr).Port
	require.NoError(t, conn.Close())
	return port
}

type testRig struct {
	cfg      Config
	peers    transport.PeerEndpoints
	camera   *device.PatternCamera
	renderer *device.HeadlessRenderer
	audio    *device.ToneDevice
}

// loopbackRig builds a session configuration that sends to its own receive ports.
func loopbackRig(t *testing.T, camera device.PatternConfig, maxFrames int) *testRig {
	t.Helper()

	cfg := DefaultConfig()
	cfg.ListenHost = "127.0.0.1"
	cfg.VideoPort = freePort(t)
	cfg.AudioPort = freePort(t)
	cfg.Resolution = video.Resolution{Width: 160, Height: 120}
	cfg.ReceiveTimeout = 20 * time.Millisecond

	peers, err := transport.NewPeerEndpoints("127.0.0.1", cfg.VideoPort, cfg.AudioPort)
	require.NoError(t, err)

	camera.Width, camera.Height = 160, 120
	return &testRig{
		cfg:      cfg,
		peers:    peers,
		camera:   device.NewPatternCamera(camera),
		renderer: device.NewHeadlessRenderer(maxFrames),
		audio: device.NewToneDevice(interfaces.AudioDeviceConfig{
			SampleRate: cfg.SampleRate,
			FrameSize:  cfg.FrameSize,
			Channels:   1,
		}, 440),
	}
}

func (r *testRig) deps() SessionDeps {
	return SessionDeps{Camera: r.camera, Renderer: r.renderer, Audio: r.audio}
}

func TestNewSessionRequiresDevices(t *testing.T) {
	peers, err := transport.NewPeerEndpoints("127.0.0.1", 8080, 8081)
	require.NoError(t, err)

	_, err = NewSession(DefaultConfig(), peers, SessionDeps{})
	assert.ErrorIs(t, err, ErrMissingDevice)
}

func TestNewSessionRejectsBadConfig(t *testing.T) {
	rig := loopbackRig(t, device.PatternConfig{}, 1)
	defer rig.camera.Close()

	_, err := NewSession(rig.cfg, transport.PeerEndpoints{}, rig.deps())
	assert.ErrorIs(t, err, transport.ErrInvalidPeer)

	cfg := rig.cfg
	cfg.FrameSize = 100
	_, err = NewSession(cfg, rig.peers, rig.deps())
	assert.Error(t, err)

	cfg = rig.cfg
	cfg.Decoder = "vorbis"
	_, err = NewSession(cfg, rig.peers, rig.deps())
	assert.Error(t, err)
}

func TestSessionLoopback(t *testing.T) {
	defer goleak.VerifyNone(t)

	rig := loopbackRig(t, device.PatternConfig{FPS: 100}, 0)
	s, err := NewSession(rig.cfg, rig.peers, rig.deps())
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())
	assert.False(t, s.Running())

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	require.Eventually(t, func() bool {
		st := s.Stats()
		return st.VideoReceived.Buffered > 0 && st.AudioReceived.Buffered > 0 && st.Display.Frames > st.Display.Placeholders
	}, 5*time.Second, 10*time.Millisecond)
	assert.True(t, s.Running())

	rig.renderer.Quit()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop after quit")
	}

	st := s.Stats()
	assert.False(t, st.Running)
	assert.Positive(t, st.VideoSent.Sent)
	assert.Positive(t, st.AudioSent.Sent)
	assert.Zero(t, st.VideoReceived.Invalid)
	assert.Zero(t, st.AudioReceived.Invalid)
	assert.Equal(t, ReceiverShutdown, st.VideoState)
	assert.Equal(t, ReceiverShutdown, st.AudioState)
	assert.Positive(t, rig.audio.Stats().Periods)

	_, err = rig.camera.Grab()
	assert.ErrorIs(t, err, device.ErrClosed)
	assert.ErrorIs(t, s.Run(context.Background()), ErrAlreadyRunning)
}

func TestSessionCaptureFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	rig := loopbackRig(t, device.PatternConfig{FPS: 100, FailAfter: 3}, 0)
	s, err := NewSession(rig.cfg, rig.peers, rig.deps())
	require.NoError(t, err)

	err = s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCaptureFailed)
	assert.False(t, s.Running())
	assert.Equal(t, 3, rig.renderer.Shown())
}

func TestSessionContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	rig := loopbackRig(t, device.PatternConfig{FPS: 100}, 0)
	s, err := NewSession(rig.cfg, rig.peers, rig.deps())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, s.Running, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop after cancellation")
	}
	assert.False(t, s.Running())
}

func TestSessionStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	rig := loopbackRig(t, device.PatternConfig{FPS: 100}, 0)
	s, err := NewSession(rig.cfg, rig.peers, rig.deps())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	require.Eventually(t, s.Running, 2*time.Second, time.Millisecond)
	s.Stop()
	require.NoError(t, <-done)
}

func TestSessionQuitAfterFrames(t *testing.T) {
	defer goleak.VerifyNone(t)

	rig := loopbackRig(t, device.PatternConfig{FPS: 200}, 5)
	rig.cfg.RateEvery = 2
	s, err := NewSession(rig.cfg, rig.peers, rig.deps())
	require.NoError(t, err)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 5, rig.renderer.Shown())
	// The quitting frame is not counted.
	assert.Equal(t, 4, s.Stats().Frames)
	assert.Positive(t, s.Stats().FPS)
}
