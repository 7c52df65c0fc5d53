// Package playback cycles the active frame of an animation at a fixed rate.
package playback

import (
	"sync"
	"time"
)

// Advancer moves an animation to its next frame and returns the new index.
// *frames.Store implements Advancer.
type Advancer interface {
	Advance() int
}

// Scheduler is a Stopped/Playing state machine driven by a one-shot timer.
// While playing, each tick advances the store by one frame, calls the
// notify function with the new index and, if still playing, arms the next
// tick. At most one tick is pending at any time.
//
// Stop is synchronous: once it returns no tick scheduled before it can
// advance the store. A tick that is already past its advance when Stop is
// called may still deliver its notification.
type Scheduler struct {
	store    Advancer
	interval time.Duration
	notify   func(index int)

	mu      sync.Mutex
	playing bool
	timer   *time.Timer
	gen     uint64 // incremented by Stop to invalidate armed ticks
}

// New returns a stopped scheduler advancing store every interval. notify
// may be nil. It is called from the timer goroutine without any scheduler
// lock held, so it may call Start, Stop or Toggle.
func New(store Advancer, interval time.Duration, notify func(index int)) *Scheduler {
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &Scheduler{store: store, interval: interval, notify: notify}
}

// Interval returns the time between frames.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Playing reports whether the scheduler is playing.
func (s *Scheduler) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Start begins playback. If a tick is already pending no new one is armed.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = true
	if s.timer == nil {
		s.arm()
	}
}

// Stop ends playback and cancels the pending tick.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Toggle starts a stopped scheduler or stops a playing one and returns
// whether it is now playing.
func (s *Scheduler) Toggle() bool {
	s.mu.Lock()
	playing := s.playing
	s.mu.Unlock()
	if playing {
		s.Stop()
		return false
	}
	s.Start()
	return true
}

// arm schedules the next tick. s.mu must be held.
func (s *Scheduler) arm() {
	gen := s.gen
	s.timer = time.AfterFunc(s.interval, func() { s.tick(gen) })
}

func (s *Scheduler) tick(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || !s.playing {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	idx := s.store.Advance()
	s.mu.Unlock()

	if s.notify != nil {
		s.notify(idx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing && s.gen == gen && s.timer == nil {
		s.arm()
	}
}
