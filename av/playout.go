package av

import (
	"image"
	"sync/atomic"

	"github.com/opd-ai/avlink/av/audio"
	"github.com/opd-ai/avlink/av/video"
	"github.com/opd-ai/avlink/jitter"
)

// PlayoutStats counts playback periods and how many needed silence.
type PlayoutStats struct {
	Periods   uint64
	Underruns uint64
}

// AudioPlayout drains the sample buffer into the device output callback.
type AudioPlayout struct {
	buffer    *jitter.SampleBuffer
	periods   atomic.Uint64
	underruns atomic.Uint64
}

// NewAudioPlayout creates a playout reading from buffer.
func NewAudioPlayout(buffer *jitter.SampleBuffer) *AudioPlayout {
	return &AudioPlayout{buffer: buffer}
}

// Fill is the device output callback. It copies buffered samples into out
// and pads the remainder with silence. It does not allocate.
func (p *AudioPlayout) Fill(out []int16) {
	n := p.buffer.PopInto(out)
	if audio.PadSilence(out, n) > 0 {
		p.underruns.Add(1)
	}
	p.periods.Add(1)
}

// Stats returns a snapshot of the playout counters.
func (p *AudioPlayout) Stats() PlayoutStats {
	return PlayoutStats{
		Periods:   p.periods.Load(),
		Underruns: p.underruns.Load(),
	}
}

// DisplayStats counts shown frames and placeholder substitutions.
type DisplayStats struct {
	Frames       uint64
	Placeholders uint64
}

// VideoDisplay selects the next frame to show from the video buffer.
type VideoDisplay struct {
	buffer       jitter.Queue[image.Image]
	placeholder  image.Image
	frames       atomic.Uint64
	placeholders atomic.Uint64
}

// NewVideoDisplay creates a display drawing from buffer, falling back to a
// blank frame of res when nothing has arrived.
func NewVideoDisplay(buffer jitter.Queue[image.Image], res video.Resolution) *VideoDisplay {
	return &VideoDisplay{
		buffer:      buffer,
		placeholder: video.Placeholder(res),
	}
}

// Next pops one frame or returns the placeholder when the buffer is empty.
func (d *VideoDisplay) Next() image.Image {
	d.frames.Add(1)
	if img, ok := d.buffer.PopOne(); ok {
		return img
	}
	d.placeholders.Add(1)
	return d.placeholder
}

// Stats returns a snapshot of the display counters.
func (d *VideoDisplay) Stats() DisplayStats {
	return DisplayStats{
		Frames:       d.frames.Load(),
		Placeholders: d.placeholders.Load(),
	}
}
