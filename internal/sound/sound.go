// Package sound finds, chooses and decodes the clips played when light is
// detected. Audio output lives in the speaker subpackage.
package sound

import "errors"

var (
	// ErrNoSounds is returned when a directory holds no playable files.
	ErrNoSounds = errors.New("sound: no sounds (.mp3 or .wav) found")

	// ErrUnsupportedFormat is returned for files that cannot be decoded.
	ErrUnsupportedFormat = errors.New("sound: unsupported format")
)

// Player loads and plays one clip at a time.
type Player interface {
	// Load decodes path, replacing any loaded clip. It does not start playback.
	Load(path string) error

	// Play starts the loaded clip from the beginning, stopping any
	// playback in progress.
	Play() error

	// Stop halts playback. Stopping an idle player is not an error.
	Stop() error

	// Close releases the output device.
	Close() error
}
