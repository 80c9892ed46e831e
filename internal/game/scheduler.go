package game

import "time"

// Phase timeline. Each room owns at most one pending timer; every
// transition cancels the outstanding timer before arming the next one, so a
// manual "start" or "restart" racing a fire cannot double-advance. Because
// a Go timer may already have fired into a goroutine blocked on the room
// lock, each armed timer also carries a generation number and a stale fire
// is a no-op.

// scheduleNextLocked arms the transition out of the current phase. Phases
// with zero duration chain through immediately; the chain stops at results,
// which has no successor.
func (r *Room) scheduleNextLocked() {
	next, ok := nextPhase(r.phase)
	if !ok {
		return
	}
	duration := r.phaseDuration(r.phase)
	if duration <= 0 {
		r.startPhaseLocked(next)
		r.scheduleNextLocked()
		return
	}

	r.cancelTimerLocked()
	gen := r.timerGen
	r.timer = time.AfterFunc(duration, func() {
		r.advance(gen, next)
	})
}

func (r *Room) advance(gen uint64, next Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.timerGen {
		return
	}
	r.timer = nil
	r.startPhaseLocked(next)
	r.scheduleNextLocked()
}

func (r *Room) cancelTimerLocked() {
	r.timerGen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
