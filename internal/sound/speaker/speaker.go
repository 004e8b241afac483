// Package speaker plays decoded clips on the default audio output through
// miniaudio (malgo).
package speaker

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/sweeney/light-trigger/internal/sound"
)

var errNothingLoaded = errors.New("speaker: no clip loaded")

// Speaker is a sound.Player backed by a malgo playback device. A new device
// is opened for each Play so the device format always matches the clip.
type Speaker struct {
	logger *slog.Logger
	ctx    *malgo.AllocatedContext

	mu     sync.Mutex
	clip   *sound.Clip
	device *malgo.Device
	cur    *cursor
}

// cursor is shared with the device's data callback, which runs on the audio
// thread.
type cursor struct {
	mu  sync.Mutex
	pcm []byte
	pos int
}

func (c *cursor) fill(out []byte) {
	c.mu.Lock()
	n := copy(out, c.pcm[c.pos:])
	c.pos += n
	c.mu.Unlock()
	// Silence once the clip has run out.
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
}

// New initialises the audio backend.
func New(logger *slog.Logger) (*Speaker, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		logger.Debug("malgo", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("init malgo context: %w", err)
	}
	return &Speaker{logger: logger, ctx: ctx}, nil
}

// Load decodes path and keeps it for the next Play.
func (s *Speaker) Load(path string) error {
	clip, err := sound.Decode(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.clip = clip
	s.mu.Unlock()
	s.logger.Debug("clip loaded", "path", path, "rate", clip.SampleRate, "channels", clip.Channels, "duration", clip.Duration())
	return nil
}

// Play starts the loaded clip from the beginning.
func (s *Speaker) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clip == nil {
		return errNothingLoaded
	}
	s.stopLocked()

	cur := &cursor{pcm: s.clip.PCM}
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = uint32(s.clip.Channels)
	cfg.SampleRate = uint32(s.clip.SampleRate)
	cfg.Alsa.NoMMap = 1

	device, err := malgo.InitDevice(s.ctx.Context, cfg, malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			cur.fill(out)
		},
	})
	if err != nil {
		return fmt.Errorf("init playback device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("start playback device: %w", err)
	}

	s.device = device
	s.cur = cur
	return nil
}

// Stop halts playback and releases the device.
func (s *Speaker) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	return nil
}

func (s *Speaker) stopLocked() {
	if s.device == nil {
		return
	}
	// Uninit blocks until the data callback has returned.
	s.device.Uninit()
	s.device = nil
	s.cur = nil
}

// Close stops playback and frees the audio context.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	if s.ctx == nil {
		return nil
	}
	err := s.ctx.Uninit()
	s.ctx.Free()
	s.ctx = nil
	if err != nil {
		return fmt.Errorf("uninit malgo context: %w", err)
	}
	return nil
}

var _ sound.Player = (*Speaker)(nil)
