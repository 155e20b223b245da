package main

import "time"

// NavState is the state of the navigation state machine.
type NavState int

const (
	StateIdle NavState = iota
	StateKeyRepeating
	StatePlaying
)

func (s NavState) String() string {
	switch s {
	case StateKeyRepeating:
		return "repeating"
	case StatePlaying:
		return "playing"
	default:
		return "idle"
	}
}

// NavigationConfig holds key-repeat and playback timings.
type NavigationConfig struct {
	NavigateDelay    time.Duration
	SpeedBoost       float64
	MinDelay         time.Duration
	PlaybackInterval time.Duration
}

// NavigationTarget is what the navigator moves through.
type NavigationTarget interface {
	Navigate(delta int)
	JumpTo(index int)
	Index() int
	Count() int
}

// Navigator drives key repeat and auto-play. All methods, and the timer
// callbacks, run on the interactive thread.
type Navigator struct {
	target NavigationTarget
	config NavigationConfig
	timer  *Timer

	state NavState
	dir   int
	delay time.Duration
}

func NewNavigator(d *Dispatcher, target NavigationTarget, config NavigationConfig) *Navigator {
	return &Navigator{
		target: target,
		config: config,
		timer:  d.NewTimer(),
	}
}

func (n *Navigator) State() NavState {
	return n.state
}

func (n *Navigator) IsPlaying() bool {
	return n.state == StatePlaying
}

// CurrentDelay is the key-repeat delay that will be used next.
func (n *Navigator) CurrentDelay() time.Duration {
	return n.delay
}

// Press steps once in dir and starts repeating. Repeated presses of the
// held direction are ignored; input is ignored while playing.
func (n *Navigator) Press(dir int) {
	if n.state == StatePlaying || dir == 0 {
		return
	}
	if n.state == StateKeyRepeating && n.dir == dir {
		return
	}

	n.state = StateKeyRepeating
	n.dir = dir
	n.delay = n.config.NavigateDelay
	n.target.Navigate(dir)
	n.timer.Schedule(n.delay, n.repeat)
}

func (n *Navigator) repeat() {
	if n.state != StateKeyRepeating {
		return
	}
	n.target.Navigate(n.dir)

	next := time.Duration(float64(n.delay) * n.config.SpeedBoost)
	n.delay = max(next, n.config.MinDelay)
	n.timer.Schedule(n.delay, n.repeat)
}

// Release ends key repeat for dir.
func (n *Navigator) Release(dir int) {
	if n.state != StateKeyRepeating || n.dir != dir {
		return
	}
	n.timer.Stop()
	n.state = StateIdle
	n.dir = 0
}

// TogglePlay starts auto-play, or pauses it when playing.
func (n *Navigator) TogglePlay() {
	if n.state == StatePlaying {
		n.Pause()
		return
	}
	if n.target.Count() == 0 {
		return
	}

	n.timer.Stop()
	n.dir = 0
	if n.target.Index() >= n.target.Count()-1 {
		n.target.JumpTo(0)
	}
	n.state = StatePlaying
	n.timer.Schedule(n.config.PlaybackInterval, n.tick)
}

func (n *Navigator) tick() {
	if n.state != StatePlaying {
		return
	}
	if n.target.Index() >= n.target.Count()-1 {
		n.Stop()
		return
	}
	n.target.Navigate(1)
	n.timer.Schedule(n.config.PlaybackInterval, n.tick)
}

// Pause leaves auto-play on the current image.
func (n *Navigator) Pause() {
	n.Halt()
}

// Stop ends auto-play and rewinds to the first image.
func (n *Navigator) Stop() {
	n.Halt()
	if n.target.Count() > 0 {
		n.target.JumpTo(0)
	}
}

// Halt cancels any timer and returns to idle without moving.
func (n *Navigator) Halt() {
	n.timer.Stop()
	n.state = StateIdle
	n.dir = 0
}
