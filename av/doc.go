// Package av implements two-way audio/video streaming between two peers over
// plain UDP.
//
// Each side sends JPEG frames to the peer's video port and raw PCM periods to
// its audio port, and plays back whatever arrives on its own ports. There is
// no handshake, no encryption and no retransmission: a lost datagram is a
// lost frame.
//
// # Architecture
//
// The package consists of several cooperating parts:
//
//   - Sender: frames one payload per datagram and writes it to a fixed peer endpoint
//   - Receiver: per-media receive loop that validates, classifies and decodes datagrams
//   - VideoSink / AudioSink: decode payloads into the bounded jitter buffers
//   - AudioUplink: hands captured periods from the device callback to a sender task
//   - AudioPlayout: fills the device output callback, padding underruns with silence
//   - VideoDisplay: pops the next received frame or a blank placeholder
//   - RateTracker: reports the capture frame rate every N frames
//   - Session: owns all of the above plus the devices, and runs the controller loop
//
// # Sub-Packages
//
//   - av/audio: PCM codec, Opus decoder and period helpers
//   - av/video: JPEG codec, resolution and frame fitting
//
// # Session Usage
//
//	peers, err := transport.NewPeerEndpoints("192.0.2.10", 8080, 8081)
//	if err != nil {
//	    return err
//	}
//	session, err := av.NewSession(av.DefaultConfig(), peers, av.SessionDeps{
//	    Camera:   camera,
//	    Renderer: renderer,
//	    Audio:    audioDevice,
//	})
//	if err != nil {
//	    return err
//	}
//	return session.Run(ctx)
//
// Run returns nil when the user quits or ctx is cancelled, and an error
// wrapping ErrCaptureFailed when the camera stops producing frames. In every
// case the devices and sockets have been released when Run returns.
//
// # Concurrency
//
// A running session has one goroutine per bound receive loop, one for the
// audio uplink sender, the audio device's own callback context and the
// goroutine calling Run. Receive loops use a 100 ms read deadline so they
// observe cancellation promptly. The jitter buffers are the only state shared
// between these contexts.
package av
