package audio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCMCodecRoundTrip(t *testing.T) {
	codec := NewPCMCodec()
	in := []int16{0, 1, -1, 32767, -32768, 1234}

	data, err := codec.Encode(in)
	require.NoError(t, err)
	assert.Len(t, data, len(in)*2)
	assert.Equal(t, []byte{0x01, 0x00}, data[2:4])

	out, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestPCMCodecErrors(t *testing.T) {
	codec := NewPCMCodec()

	_, err := codec.Encode(nil)
	assert.ErrorIs(t, err, ErrEmptyFrame)

	_, err = codec.Decode(nil)
	assert.ErrorIs(t, err, ErrEmptyFrame)

	_, err = codec.Decode([]byte{1, 2, 3})
	assert.True(t, errors.Is(err, ErrOddLength))
}

func TestNewCodec(t *testing.T) {
	for _, name := range []string{"", "pcm", "opus"} {
		codec, err := NewCodec(name, SampleRate)
		require.NoError(t, err, name)
		require.NotNil(t, codec)

		frame, err := codec.Encode(make([]int16, FrameSize))
		require.NoError(t, err)
		assert.Len(t, frame, FrameSize*2)
		assert.NoError(t, codec.Close())
	}

	_, err := NewCodec("speex", SampleRate)
	assert.ErrorIs(t, err, ErrUnknownCodec)
}

func TestOpusDecoderRejectsEmpty(t *testing.T) {
	d := NewOpusDecoder(SampleRate)
	_, err := d.Decode(nil)
	assert.ErrorIs(t, err, ErrEmptyFrame)
}
