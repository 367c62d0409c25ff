package av

import (
	"fmt"
	"image"

	"github.com/opd-ai/avlink/av/audio"
	"github.com/opd-ai/avlink/av/video"
	"github.com/opd-ai/avlink/jitter"
	"github.com/sirupsen/logrus"
)

// Sink decodes a validated payload and stores the result for playback.
// The payload is only valid for the duration of the call.
type Sink interface {
	Deliver(payload []byte) error
}

// VideoSink decodes JPEG payloads into frames for the display.
type VideoSink struct {
	codec  video.Codec
	res    video.Resolution
	buffer jitter.Queue[image.Image]
}

// NewVideoSink creates a sink that fits decoded frames to res before buffering them.
func NewVideoSink(codec video.Codec, res video.Resolution, buffer jitter.Queue[image.Image]) *VideoSink {
	return &VideoSink{codec: codec, res: res, buffer: buffer}
}

// Deliver decodes one complete image and pushes it into the frame buffer.
func (s *VideoSink) Deliver(payload []byte) error {
	img, err := s.codec.Decode(payload)
	if err != nil {
		return fmt.Errorf("%w: video: %v", ErrDecodeFailed, err)
	}

	if dropped := s.buffer.Push(video.Fit(img, s.res)); dropped > 0 {
		logrus.WithFields(logrus.Fields{
			"function": "VideoSink.Deliver",
			"dropped":  dropped,
		}).Debug("Video buffer full, frame dropped")
	}
	return nil
}

// AudioSink decodes audio payloads into the sample buffer.
type AudioSink struct {
	decoder audio.Decoder
	buffer  *jitter.SampleBuffer
}

// NewAudioSink creates a sink feeding buffer.
func NewAudioSink(decoder audio.Decoder, buffer *jitter.SampleBuffer) *AudioSink {
	return &AudioSink{decoder: decoder, buffer: buffer}
}

// Deliver decodes one audio frame and appends its samples.
func (s *AudioSink) Deliver(payload []byte) error {
	pcm, err := s.decoder.Decode(payload)
	if err != nil {
		return fmt.Errorf("%w: audio: %v", ErrDecodeFailed, err)
	}

	if dropped := s.buffer.Push(pcm); dropped > 0 {
		logrus.WithFields(logrus.Fields{
			"function": "AudioSink.Deliver",
			"dropped":  dropped,
		}).Debug("Audio buffer full, oldest samples dropped")
	}
	return nil
}
