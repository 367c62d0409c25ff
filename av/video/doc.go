// Package video provides the JPEG codec and frame helpers used by the avlink
// video path.
//
// The capture loop encodes each frame and sends the JPEG stream as-is; the
// stream's own FF D8 start marker identifies it as video on the wire:
//
//	codec := video.NewJPEGCodec()
//	data, err := codec.Encode(frame, 85)
//	img, err := codec.Decode(data)   // same dimensions, lossy content
//
// Fit scales frames that do not match the configured Resolution, and
// Placeholder supplies the blank frame displayed when the remote buffer is
// empty, so rendering never stalls on the network.
package video
