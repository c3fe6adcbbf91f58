package speaker

import (
	"io"
	"testing"

	"github.com/upaura/music-app/internal/audio"
)

func TestFrameReaderReassemblesFrames(t *testing.T) {
	frames := make(chan []int16, 2)
	frames <- []int16{256, 1}
	frames <- []int16{-1}
	close(frames)

	r := &frameReader{frames: frames}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}

	want := append(audio.SamplesToBytes([]int16{256, 1}), audio.SamplesToBytes([]int16{-1})...)
	if len(got) != len(want) {
		t.Fatalf("Read %d bytes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Byte %d = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestFrameReaderHandlesShortReads(t *testing.T) {
	frames := make(chan []int16, 1)
	frames <- []int16{256, 512}
	close(frames)

	r := &frameReader{frames: frames}
	buf := make([]byte, 1)
	var got []byte
	for {
		n, err := r.Read(buf)
		if n > 0 {
			got = append(got, buf[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read error: %v", err)
		}
	}

	if len(got) != 4 {
		t.Fatalf("Read %d bytes through 1-byte calls, want 4", len(got))
	}
	if got[1] != 0x01 || got[3] != 0x02 {
		t.Errorf("Bytes = %v, want little-endian 256 then 512", got)
	}
}

func TestFrameReaderEOFOnClose(t *testing.T) {
	frames := make(chan []int16)
	close(frames)

	r := &frameReader{frames: frames}
	n, err := r.Read(make([]byte, 8))
	if n != 0 || err != io.EOF {
		t.Errorf("Read on closed channel = (%d, %v), want (0, EOF)", n, err)
	}
}
