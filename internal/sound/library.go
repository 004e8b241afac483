package sound

import (
	"fmt"
	"math/rand"
	"path/filepath"
)

// Extensions lists playable file patterns in scan order.
var Extensions = []string{"*.mp3", "*.wav"}

// Scan returns the playable files directly inside dir: all mp3s, then all
// wavs, each group in lexical order.
func Scan(dir string) ([]string, error) {
	var sounds []string
	for _, pattern := range Extensions {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		sounds = append(sounds, matches...)
	}
	if len(sounds) == 0 {
		return nil, fmt.Errorf("%w in directory: %s", ErrNoSounds, dir)
	}
	return sounds, nil
}

// Chooser gates playback by probability and picks a clip uniformly.
// Not safe for concurrent use.
type Chooser struct {
	sounds      []string
	probability float64
	rng         *rand.Rand
}

// NewChooser creates a Chooser. probability must be in [0, 1]: 1 always
// plays, 0 never does.
func NewChooser(sounds []string, probability float64, src rand.Source) (*Chooser, error) {
	if len(sounds) == 0 {
		return nil, ErrNoSounds
	}
	if !(probability >= 0 && probability <= 1) {
		return nil, fmt.Errorf("sound: probability %v must be in [0, 1]", probability)
	}
	return &Chooser{
		sounds:      sounds,
		probability: probability,
		rng:         rand.New(src),
	}, nil
}

// Pick returns a clip to play, or false if the probability gate says to
// play nothing this time.
func (c *Chooser) Pick() (string, bool) {
	if c.rng.Float64() >= c.probability {
		return "", false
	}
	return c.sounds[c.rng.Intn(len(c.sounds))], true
}

// Len returns the number of clips to choose from.
func (c *Chooser) Len() int {
	return len(c.sounds)
}
