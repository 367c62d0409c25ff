package av

import (
	"github.com/opd-ai/avlink/jitter"
	"github.com/sirupsen/logrus"
)

// Stats is a point-in-time view of every pipeline counter in a session.
// The counters are diagnostic only; nothing in the pipeline reads them back.
type Stats struct {
	SessionID string
	Running   bool

	VideoSent SenderStats
	AudioSent SenderStats

	VideoReceived ReceiverStats
	AudioReceived ReceiverStats
	VideoState    ReceiverState
	AudioState    ReceiverState

	VideoBuffer jitter.Stats
	AudioBuffer jitter.Stats

	Uplink  UplinkStats
	Playout PlayoutStats
	Display DisplayStats

	Frames int
	FPS    float64
}

// Stats aggregates sender, receiver, buffer and device-side counters.
func (s *Session) Stats() Stats {
	st := Stats{
		SessionID:     s.id,
		Running:       s.Running(),
		VideoReceived: s.videoRecv.Stats(),
		AudioReceived: s.audioRecv.Stats(),
		VideoState:    s.videoRecv.State(),
		AudioState:    s.audioRecv.State(),
		VideoBuffer:   s.videoBuf.Stats(),
		AudioBuffer:   s.audioBuf.Stats(),
		Playout:       s.playout.Stats(),
		Display:       s.display.Stats(),
		Frames:        s.rate.Frames(),
		FPS:           s.rate.Rate(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.videoSender != nil {
		st.VideoSent = s.videoSender.Stats()
	}
	if s.audioSender != nil {
		st.AudioSent = s.audioSender.Stats()
	}
	if s.uplink != nil {
		st.Uplink = s.uplink.Stats()
	}
	return st
}

// Fields flattens the headline counters for a single log entry.
func (st Stats) Fields() logrus.Fields {
	return logrus.Fields{
		"frames":              st.Frames,
		"fps":                 st.FPS,
		"video_sent":          st.VideoSent.Sent,
		"video_send_failed":   st.VideoSent.Failed,
		"audio_sent":          st.AudioSent.Sent,
		"audio_send_failed":   st.AudioSent.Failed,
		"video_received":      st.VideoReceived.Received,
		"video_invalid":       st.VideoReceived.Invalid,
		"video_decode_fail":   st.VideoReceived.DecodeFailed,
		"audio_received":      st.AudioReceived.Received,
		"audio_invalid":       st.AudioReceived.Invalid,
		"audio_decode_fail":   st.AudioReceived.DecodeFailed,
		"video_dropped":       st.VideoBuffer.Dropped,
		"audio_dropped":       st.AudioBuffer.Dropped,
		"uplink_dropped":      st.Uplink.Dropped,
		"playout_underruns":   st.Playout.Underruns,
		"display_placeholder": st.Display.Placeholders,
	}
}
