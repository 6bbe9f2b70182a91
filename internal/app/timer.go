package app

import (
	"context"
	"time"
)

// The countdown ticks once per tickEvery (a wall-clock second in
// production). Each start or stop bumps the generation counter, and a tick
// carrying a stale generation is discarded, so a timer that loses the race
// with logout/finish/relogin can never mutate a session it no longer owns.

func (s *SessionService) startTimerLocked() {
	s.timerGen++
	stop := make(chan struct{})
	s.timerStop = stop
	go s.runTimer(s.timerGen, stop)
}

func (s *SessionService) stopTimerLocked() {
	s.timerGen++
	if s.timerStop != nil {
		close(s.timerStop)
		s.timerStop = nil
	}
}

func (s *SessionService) runTimer(gen uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(s.tickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !s.tick(gen) {
				return
			}
		}
	}
}

// tick decrements the budget by one second and forces the finish transition
// at zero. Returns false once this timer generation is done ticking.
func (s *SessionService) tick(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.timerGen || s.sess == nil {
		return false
	}
	s.sess.remaining--
	if s.sess.remaining <= 0 {
		s.sess.remaining = 0
		s.finishLocked(context.Background())
		return false
	}
	s.broadcastLocked()
	return true
}
