package device

import (
	"image"
	"sync"
	"time"

	"github.com/opd-ai/avlink/interfaces"
	"github.com/sirupsen/logrus"
)

// HeadlessRenderer counts frames instead of drawing them. It reports quit
// once Quit is called or after MaxFrames frames have been shown.
type HeadlessRenderer struct {
	mu        sync.Mutex
	maxFrames int
	shown     int
	last      image.Rectangle
	quit      chan struct{}
	quitOnce  sync.Once
	closed    bool
}

// NewHeadlessRenderer creates a renderer; maxFrames 0 means unlimited.
func NewHeadlessRenderer(maxFrames int) *HeadlessRenderer {
	return &HeadlessRenderer{
		maxFrames: maxFrames,
		quit:      make(chan struct{}),
	}
}

// Show records the frame.
func (r *HeadlessRenderer) Show(img image.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.shown++
	if img != nil {
		r.last = img.Bounds()
	}
	if r.maxFrames > 0 && r.shown >= r.maxFrames {
		r.requestQuit()
	}
	return nil
}

// WaitKey waits up to d, returning true as soon as quit has been requested.
func (r *HeadlessRenderer) WaitKey(d time.Duration) bool {
	if d <= 0 {
		select {
		case <-r.quit:
			return true
		default:
			return false
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-r.quit:
		return true
	case <-timer.C:
		return false
	}
}

// Quit simulates the user pressing the quit key.
func (r *HeadlessRenderer) Quit() {
	r.requestQuit()
}

func (r *HeadlessRenderer) requestQuit() {
	r.quitOnce.Do(func() { close(r.quit) })
}

// Shown returns the number of frames displayed.
func (r *HeadlessRenderer) Shown() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shown
}

// LastBounds returns the bounds of the most recent frame.
func (r *HeadlessRenderer) LastBounds() image.Rectangle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Close tears down the renderer.
func (r *HeadlessRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closed = true
		logrus.WithFields(logrus.Fields{
			"function": "HeadlessRenderer.Close",
			"shown":    r.shown,
		}).Info("Renderer closed")
	}
	return nil
}

var _ interfaces.Renderer = (*HeadlessRenderer)(nil)
