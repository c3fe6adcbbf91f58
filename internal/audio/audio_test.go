package audio

import (
	"testing"
	"time"
)

// --- Constants ---

func TestConstants(t *testing.T) {
	// 48kHz * 20ms = 960 samples per channel
	if got := SampleRate * int(FrameDuration/time.Millisecond) / 1000; got != FrameSize {
		t.Errorf("FrameSize mismatch: want %d, got %d", got, FrameSize)
	}
	if FrameSamples != FrameSize*Channels {
		t.Errorf("FrameSamples = %d, want %d", FrameSamples, FrameSize*Channels)
	}
	if FrameBytes != FrameSamples*2 {
		t.Errorf("FrameBytes = %d, want %d", FrameBytes, FrameSamples*2)
	}
}

// --- ClipToInt16 ---

func TestClipToInt16(t *testing.T) {
	tests := []struct {
		input float64
		want  int16
	}{
		{0, 0},
		{1000.4, 1000},
		{-1000.4, -1000},
		{32767, 32767},
		{-32768, -32768},
		{40000, 32767},
		{-40000, -32768},
	}
	for _, tt := range tests {
		if got := ClipToInt16(tt.input); got != tt.want {
			t.Errorf("ClipToInt16(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

// --- SamplesToBytes / round-trip ---

func TestSamplesToBytes(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 256}
	buf := SamplesToBytes(samples)
	if len(buf) != len(samples)*2 {
		t.Fatalf("SamplesToBytes length = %d, want %d", len(buf), len(samples)*2)
	}

	// Verify little-endian encoding manually for a few values
	// 256 = 0x0100 -> bytes [0x00, 0x01]
	idx := 5 * 2
	if buf[idx] != 0x00 || buf[idx+1] != 0x01 {
		t.Errorf("Sample 256 encoded as [%02x, %02x], want [00, 01]", buf[idx], buf[idx+1])
	}
}

func TestSamplesBytesRoundTrip(t *testing.T) {
	original := []int16{0, 1, -1, 32767, -32768, 12345, -6789}
	buf := SamplesToBytes(original)
	recovered := BytesToSamples(buf)

	if len(recovered) != len(original) {
		t.Fatalf("Round-trip length = %d, want %d", len(recovered), len(original))
	}
	for i, v := range original {
		if recovered[i] != v {
			t.Errorf("Round-trip sample[%d]: got %d, want %d", i, recovered[i], v)
		}
	}
}

func TestBytesToSamplesOddTail(t *testing.T) {
	buf := []byte{0x01, 0x00, 0xFF}
	samples := BytesToSamples(buf)
	if len(samples) != 1 {
		t.Fatalf("Odd buffer decoded to %d samples, want 1", len(samples))
	}
	if samples[0] != 1 {
		t.Errorf("samples[0] = %d, want 1", samples[0])
	}
}
