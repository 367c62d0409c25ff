package device

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/opd-ai/avlink/interfaces"
	"github.com/sirupsen/logrus"
)

// ErrClosed is returned by devices used after Close.
var ErrClosed = errors.New("device closed")

// PatternConfig configures a PatternCamera.
type PatternConfig struct {
	Width  int
	Height int
	// FPS paces Grab; 0 returns frames as fast as they are requested.
	FPS int
	// FailAfter makes Grab return an empty frame after this many frames; 0 never fails.
	FailAfter int
}

// PatternCamera is a headless camera producing scrolling colour bars.
type PatternCamera struct {
	cfg    PatternConfig
	mu     sync.Mutex
	ticker *time.Ticker
	count  int
	closed bool
	done   chan struct{}
}

var barColors = []color.RGBA{
	{255, 255, 255, 255},
	{255, 255, 0, 255},
	{0, 255, 255, 255},
	{0, 255, 0, 255},
	{255, 0, 255, 255},
	{255, 0, 0, 255},
	{0, 0, 255, 255},
	{16, 16, 16, 255},
}

// NewPatternCamera opens a pattern camera.
func NewPatternCamera(cfg PatternConfig) *PatternCamera {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}

	c := &PatternCamera{cfg: cfg, done: make(chan struct{})}
	if cfg.FPS > 0 {
		c.ticker = time.NewTicker(time.Second / time.Duration(cfg.FPS))
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewPatternCamera",
		"width":    cfg.Width,
		"height":   cfg.Height,
		"fps":      cfg.FPS,
	}).Info("Pattern camera opened")

	return c
}

// Grab waits for the next frame tick and renders the pattern.
func (c *PatternCamera) Grab() (image.Image, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.cfg.FailAfter > 0 && c.count >= c.cfg.FailAfter {
		c.mu.Unlock()
		return nil, interfaces.ErrEmptyFrame
	}
	c.count++
	n := c.count
	ticker := c.ticker
	c.mu.Unlock()

	if ticker != nil {
		select {
		case <-ticker.C:
		case <-c.done:
			return nil, ErrClosed
		}
	}
	return renderBars(c.cfg.Width, c.cfg.Height, n), nil
}

// Frames returns how many frames were produced.
func (c *PatternCamera) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Close stops the camera. Safe to call more than once.
func (c *PatternCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	if c.ticker != nil {
		c.ticker.Stop()
	}
	logrus.WithFields(logrus.Fields{
		"function": "PatternCamera.Close",
		"frames":   c.count,
	}).Info("Pattern camera closed")
	return nil
}

func renderBars(w, h, frame int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	barWidth := max(w/len(barColors), 1)
	shift := frame * 4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, barColors[((x+shift)/barWidth)%len(barColors)])
		}
	}
	return img
}

var _ interfaces.Camera = (*PatternCamera)(nil)
