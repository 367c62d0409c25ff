// Package audio provides the audio codec and period helpers for avlink.
//
// # Periods
//
// The audio device delivers and requests fixed periods of FrameSize (960)
// mono samples at SampleRate (48 kHz), i.e. 20 ms. The uplink encodes exactly
// one period per packet; playback pops exactly one period per callback and
// pads any shortfall with silence:
//
//	n := samples.PopInto(out)
//	audio.PadSilence(out, n)
//
// # Codecs
//
// PCMCodec carries little-endian 16-bit samples and is what two avlink peers
// exchange by default. NewCodec("opus", rate) keeps the PCM encoder but decodes
// incoming frames with pion/opus, resampling its output to the playback rate:
//
//	codec, err := audio.NewCodec("pcm", audio.SampleRate)
//	frame, err := codec.Encode(period)
//	pcm, err := codec.Decode(frame)
//
// A decode error is not fatal; the receive loop logs it and drops the frame.
package audio
