// Package speaker plays the sequencer mix on the local audio device.
package speaker

import (
	"fmt"
	"io"

	"github.com/ebitengine/oto/v3"

	"github.com/upaura/music-app/internal/audio"
)

// frameReader adapts a channel of PCM frames to the io.Reader the audio
// device pulls from. Read blocks until the next frame arrives and reports
// EOF when the channel closes.
type frameReader struct {
	frames <-chan []int16
	rest   []byte
}

func (r *frameReader) Read(p []byte) (int, error) {
	if len(r.rest) == 0 {
		frame, ok := <-r.frames
		if !ok {
			return 0, io.EOF
		}
		r.rest = audio.SamplesToBytes(frame)
	}
	n := copy(p, r.rest)
	r.rest = r.rest[n:]
	return n, nil
}

// Speaker owns the device context and the player consuming the mix.
type Speaker struct {
	ctx    *oto.Context
	player *oto.Player
}

// Open initializes the audio device and starts playing frames from the
// channel. Playback ends when the channel closes.
func Open(frames <-chan []int16) (*Speaker, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   audio.SampleRate,
		ChannelCount: audio.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   4 * audio.FrameDuration,
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(&frameReader{frames: frames})
	player.Play()
	return &Speaker{ctx: ctx, player: player}, nil
}

// Close stops playback and releases the player.
func (s *Speaker) Close() error {
	return s.player.Close()
}
