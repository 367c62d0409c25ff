package av

import (
	"context"
	"sync/atomic"

	"github.com/opd-ai/avlink/av/audio"
	"github.com/opd-ai/avlink/jitter"
	"github.com/sirupsen/logrus"
)

// PayloadSender transmits one encoded payload as one datagram.
type PayloadSender interface {
	Send(payload []byte) error
}

// UplinkStats counts captured and transmitted audio periods.
type UplinkStats struct {
	Captured uint64
	Sent     uint64
	Failed   uint64
	Dropped  uint64
}

// AudioUplink moves captured audio from the device callback to the network.
// Capture only copies into a recycled period buffer and enqueues; Run encodes
// and sends exactly one packet per period, so no socket I/O or allocation
// happens in the real-time context.
type AudioUplink struct {
	sender    PayloadSender
	encoder   audio.Encoder
	frameSize int
	queue     *jitter.Buffer[[]int16]
	ready     chan struct{}
	// free holds depth+2 period buffers: enough for a full queue, the one
	// being sent and the one being filled.
	free chan []int16

	captured atomic.Uint64
	sent     atomic.Uint64
	failed   atomic.Uint64
	dropped  atomic.Uint64
}

// NewAudioUplink creates an uplink that holds at most depth pending periods,
// evicting the oldest when the sender falls behind.
func NewAudioUplink(sender PayloadSender, encoder audio.Encoder, frameSize, depth int) *AudioUplink {
	if frameSize <= 0 {
		frameSize = audio.FrameSize
	}
	u := &AudioUplink{
		sender:    sender,
		encoder:   encoder,
		frameSize: frameSize,
		queue:     jitter.New[[]int16](depth, jitter.DropOldest),
		ready:     make(chan struct{}, 1),
	}
	u.free = make(chan []int16, u.queue.Cap()+2)
	for i := 0; i < cap(u.free); i++ {
		u.free <- make([]int16, frameSize)
	}
	return u
}

// Capture is the device input callback. Input longer than one period is
// split; a short tail is padded with silence so every packet is a full period.
// When the queue is full the oldest period is evicted and its buffer reused.
func (u *AudioUplink) Capture(in []int16) {
	for len(in) > 0 {
		period := u.acquire()
		n := copy(period, in)
		audio.PadSilence(period, n)
		in = in[n:]

		u.captured.Add(1)
		if u.queue.Len() >= u.queue.Cap() {
			if oldest, ok := u.queue.PopOne(); ok {
				u.dropped.Add(1)
				u.release(oldest)
			}
		}
		u.queue.Push(period)
	}

	select {
	case u.ready <- struct{}{}:
	default:
	}
}

func (u *AudioUplink) acquire() []int16 {
	select {
	case period := <-u.free:
		return period
	default:
		return make([]int16, u.frameSize)
	}
}

func (u *AudioUplink) release(period []int16) {
	select {
	case u.free <- period:
	default:
	}
}

// Run drains queued periods until ctx is cancelled.
func (u *AudioUplink) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-u.ready:
		}

		for {
			period, ok := u.queue.PopOne()
			if !ok {
				break
			}
			u.sendPeriod(period)
			u.release(period)
		}
	}
}

func (u *AudioUplink) sendPeriod(period []int16) {
	payload, err := u.encoder.Encode(period)
	if err == nil {
		err = u.sender.Send(payload)
	}
	if err != nil {
		u.failed.Add(1)
		logrus.WithFields(logrus.Fields{
			"function": "AudioUplink.sendPeriod",
			"samples":  len(period),
			"error":    err.Error(),
		}).Warn("Failed to send audio period")
		return
	}
	u.sent.Add(1)
}

// Stats returns a snapshot of the uplink counters.
func (u *AudioUplink) Stats() UplinkStats {
	return UplinkStats{
		Captured: u.captured.Load(),
		Sent:     u.sent.Load(),
		Failed:   u.failed.Load(),
		Dropped:  u.dropped.Load(),
	}
}
