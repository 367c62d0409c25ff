// Package jitter implements the bounded stream buffers of the avlink pipeline.
//
// A receive loop decodes each datagram and pushes the result here; a display
// loop or audio callback pops at its own cadence. The buffer absorbs arrival
// jitter and never stalls either side:
//
//	frames := jitter.New[image.Image](5, jitter.DropOldest)
//	frames.Push(img)              // never blocks, evicts the oldest on overflow
//	img, ok := frames.PopOne()    // ok == false on an empty buffer
//
//	pcm := jitter.NewSampleBuffer(5 * 960)
//	pcm.Push(samples)
//	n := pcm.PopInto(period)      // n < len(period) is an underrun
//
// There are no sequence numbers: arrival order is preserved, but a consumer
// cannot tell overflow drops from an idle sender except through Stats.
package jitter
