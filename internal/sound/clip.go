package sound

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// Clip is decoded audio as signed 16-bit little-endian interleaved PCM.
type Clip struct {
	Path       string
	SampleRate int
	Channels   int
	PCM        []byte
}

// FrameSize is the number of bytes in one frame across all channels.
func (c *Clip) FrameSize() int {
	return 2 * c.Channels
}

// Frames returns the number of sample frames.
func (c *Clip) Frames() int {
	if c.Channels == 0 {
		return 0
	}
	return len(c.PCM) / c.FrameSize()
}

// Duration returns the playing time.
func (c *Clip) Duration() time.Duration {
	if c.SampleRate == 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// Decode reads an .mp3 or .wav file into memory.
func Decode(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var clip *Clip
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		clip, err = decodeMP3(f)
	case ".wav":
		clip, err = decodeWAV(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	clip.Path = path
	return clip, nil
}

// decodeMP3 always yields stereo; go-mp3 upmixes mono streams.
func decodeMP3(r io.Reader) (*Clip, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	pcm, err := io.ReadAll(d)
	if err != nil {
		return nil, err
	}
	return &Clip{SampleRate: d.SampleRate(), Channels: 2, PCM: pcm}, nil
}

func decodeWAV(r io.ReadSeeker) (*Clip, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: not a PCM wav file", ErrUnsupportedFormat)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, err
	}

	var shift func(int) int
	switch d.BitDepth {
	case 8:
		shift = func(v int) int { return (v - 128) << 8 }
	case 16:
		shift = func(v int) int { return v }
	case 24:
		shift = func(v int) int { return v >> 8 }
	case 32:
		shift = func(v int) int { return v >> 16 }
	default:
		return nil, fmt.Errorf("%w: %d-bit wav", ErrUnsupportedFormat, d.BitDepth)
	}

	pcm := make([]byte, 2*len(buf.Data))
	for i, v := range buf.Data {
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(int16(shift(v))))
	}
	return &Clip{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		PCM:        pcm,
	}, nil
}
