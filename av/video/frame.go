package video

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
)

var (
	placeholderMu    sync.Mutex
	placeholderCache = map[Resolution]*image.RGBA{}
)

// Placeholder returns a cached blank frame shown when no remote frame is
// available. Callers must not modify it.
func Placeholder(res Resolution) *image.RGBA {
	placeholderMu.Lock()
	defer placeholderMu.Unlock()

	if img, ok := placeholderCache[res]; ok {
		return img
	}
	img := image.NewRGBA(image.Rect(0, 0, res.Width, res.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	placeholderCache[res] = img
	return img
}

// Fit returns img unchanged when it already has res, otherwise a bilinear
// scaled copy.
func Fit(img image.Image, res Resolution) image.Image {
	if img == nil || !res.Valid() || ResolutionOf(img) == res {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, res.Width, res.Height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
