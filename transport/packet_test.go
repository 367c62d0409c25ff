package transport

import (
	"bytes"
	"errors"
	"testing"

	"github.com/opd-ai/avlink/limits"
)

// TestClassify tests marker classification and payload stripping.
func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		wantMedia   MediaType
		wantPayload []byte
		wantErr     error
	}{
		{
			name:        "video marker keeps whole stream",
			data:        []byte{0xFF, 0xD8, 0xFF, 0xE0, 1, 2},
			wantMedia:   MediaVideo,
			wantPayload: []byte{0xFF, 0xD8, 0xFF, 0xE0, 1, 2},
		},
		{
			name:        "video marker only",
			data:        []byte{0xFF, 0xD8},
			wantMedia:   MediaVideo,
			wantPayload: []byte{0xFF, 0xD8},
		},
		{
			name:        "audio marker stripped",
			data:        []byte{0xAA, 0xBB, 7, 8, 9},
			wantMedia:   MediaAudio,
			wantPayload: []byte{7, 8, 9},
		},
		{
			name:        "audio marker only",
			data:        []byte{0xAA, 0xBB},
			wantMedia:   MediaAudio,
			wantPayload: []byte{},
		},
		{
			name:    "unknown header",
			data:    []byte{0x00, 0x01, 0x02},
			wantErr: ErrInvalidPacket,
		},
		{
			name:    "swapped audio marker",
			data:    []byte{0xBB, 0xAA, 0x02},
			wantErr: ErrInvalidPacket,
		},
		{
			name:    "empty",
			data:    []byte{},
			wantErr: limits.ErrDatagramTooSmall,
		},
		{
			name:    "one byte",
			data:    []byte{0xFF},
			wantErr: limits.ErrDatagramTooSmall,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			media, payload, err := Classify(tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Classify() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify() unexpected error: %v", err)
			}
			if media != tt.wantMedia {
				t.Errorf("Classify() media = %v, want %v", media, tt.wantMedia)
			}
			if !bytes.Equal(payload, tt.wantPayload) {
				t.Errorf("Classify() payload = %v, want %v", payload, tt.wantPayload)
			}
		})
	}
}

// TestClassifyInvalidReportsLength verifies the diagnostic length on invalid headers.
func TestClassifyInvalidReportsLength(t *testing.T) {
	_, _, err := Classify([]byte{1, 2, 3, 4, 5})

	var invalid *InvalidPacketError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidPacketError, got %T", err)
	}
	if invalid.Length != 5 {
		t.Errorf("Length = %d, want 5", invalid.Length)
	}
	if invalid.Reason != "unrecognized header" {
		t.Errorf("Reason = %q, want %q", invalid.Reason, "unrecognized header")
	}
}

// TestClassifyOversizeBeforeHeader verifies oversize rejection happens before
// the marker is inspected, even when the marker is valid.
func TestClassifyOversizeBeforeHeader(t *testing.T) {
	data := make([]byte, limits.MaxDatagramSize+1)
	data[0], data[1] = VideoMarker[0], VideoMarker[1]

	_, _, err := Classify(data)
	if !errors.Is(err, limits.ErrDatagramTooLarge) {
		t.Fatalf("Classify() error = %v, want ErrDatagramTooLarge", err)
	}
	if errors.Is(err, ErrInvalidPacket) {
		t.Error("oversize datagram must not be reported as an invalid header")
	}
}

// TestFrameAudioRoundTrip verifies audio framing is undone by Classify.
func TestFrameAudioRoundTrip(t *testing.T) {
	payload := []byte{10, 20, 30}
	packet := FrameAudio(payload)

	if !bytes.HasPrefix(packet, AudioMarker[:]) {
		t.Fatalf("packet %v missing audio marker", packet)
	}

	media, got, err := Classify(packet)
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if media != MediaAudio || !bytes.Equal(got, payload) {
		t.Errorf("Classify() = %v %v, want audio %v", media, got, payload)
	}
}

// TestFrameVideo tests video payload checks.
func TestFrameVideo(t *testing.T) {
	if _, err := FrameVideo([]byte{0xFF, 0xD8, 0xFF}); err != nil {
		t.Errorf("FrameVideo() unexpected error: %v", err)
	}
	if _, err := FrameVideo([]byte{0x89, 0x50, 0x4E}); !errors.Is(err, ErrInvalidPacket) {
		t.Errorf("FrameVideo() error = %v, want ErrInvalidPacket", err)
	}
	if _, err := FrameVideo(nil); !errors.Is(err, limits.ErrDatagramTooSmall) {
		t.Errorf("FrameVideo(nil) error = %v, want ErrDatagramTooSmall", err)
	}
}

// TestMediaTypeString tests log names.
func TestMediaTypeString(t *testing.T) {
	if MediaVideo.String() != "video" || MediaAudio.String() != "audio" {
		t.Errorf("unexpected names %q %q", MediaVideo, MediaAudio)
	}
	if MediaType(9).String() != "media(9)" {
		t.Errorf("unexpected unknown name %q", MediaType(9))
	}
}
