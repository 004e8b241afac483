package sound

// FakePlayer records playback calls for test assertions.
type FakePlayer struct {
	// Calls contains "load <path>", "play" and "stop" in call order.
	Calls []string

	// Loaded is the last successfully loaded path.
	Loaded string

	// Playing reports whether Play was called more recently than Stop.
	Playing bool

	// LoadError, PlayError and StopError, if set, are returned by the
	// matching method without recording the call.
	LoadError error
	PlayError error
	StopError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePlayer creates a FakePlayer for testing.
func NewFakePlayer() *FakePlayer {
	return &FakePlayer{}
}

// Load records the path.
func (f *FakePlayer) Load(path string) error {
	if f.LoadError != nil {
		return f.LoadError
	}
	f.Calls = append(f.Calls, "load "+path)
	f.Loaded = path
	return nil
}

// Play records the call.
func (f *FakePlayer) Play() error {
	if f.PlayError != nil {
		return f.PlayError
	}
	f.Calls = append(f.Calls, "play")
	f.Playing = true
	return nil
}

// Stop records the call.
func (f *FakePlayer) Stop() error {
	if f.StopError != nil {
		return f.StopError
	}
	f.Calls = append(f.Calls, "stop")
	f.Playing = false
	return nil
}

// Close marks the player as closed.
func (f *FakePlayer) Close() error {
	f.Closed = true
	f.Playing = false
	return nil
}

// Reset clears recorded calls and injected errors.
func (f *FakePlayer) Reset() {
	f.Calls = nil
	f.Loaded = ""
	f.Playing = false
	f.LoadError = nil
	f.PlayError = nil
	f.StopError = nil
	f.Closed = false
}
