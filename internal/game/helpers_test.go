package game

import (
	"sync"

	"github.com/rs/zerolog"
)

// fakeConn records everything the room sends so tests can assert on the
// exact event stream a real websocket would have carried.
type fakeConn struct {
	mu          sync.Mutex
	payloads    []any
	closed      bool
	closeReason string
}

func (f *fakeConn) Send(payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
}

func (f *fakeConn) Close(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.closeReason = reason
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) sent() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]any(nil), f.payloads...)
}

func (f *fakeConn) phaseChanges() []phaseChangePayload {
	var out []phaseChangePayload
	for _, p := range f.sent() {
		if msg, ok := p.(phaseChangePayload); ok {
			out = append(out, msg)
		}
	}
	return out
}

func (f *fakeConn) playerCounts() []playerCountPayload {
	var out []playerCountPayload
	for _, p := range f.sent() {
		if msg, ok := p.(playerCountPayload); ok {
			out = append(out, msg)
		}
	}
	return out
}

func (f *fakeConn) maskSelections() []maskSelectedPayload {
	var out []maskSelectedPayload
	for _, p := range f.sent() {
		if msg, ok := p.(maskSelectedPayload); ok {
			out = append(out, msg)
		}
	}
	return out
}

func (f *fakeConn) partLimits() []partLimitPayload {
	var out []partLimitPayload
	for _, p := range f.sent() {
		if msg, ok := p.(partLimitPayload); ok {
			out = append(out, msg)
		}
	}
	return out
}

func (f *fakeConn) galleries() []voteGalleryPayload {
	var out []voteGalleryPayload
	for _, p := range f.sent() {
		if msg, ok := p.(voteGalleryPayload); ok {
			out = append(out, msg)
		}
	}
	return out
}

func (f *fakeConn) voteUpdates() []voteUpdatePayload {
	var out []voteUpdatePayload
	for _, p := range f.sent() {
		if msg, ok := p.(voteUpdatePayload); ok {
			out = append(out, msg)
		}
	}
	return out
}

func (f *fakeConn) results() []resultsPayload {
	var out []resultsPayload
	for _, p := range f.sent() {
		if msg, ok := p.(resultsPayload); ok {
			out = append(out, msg)
		}
	}
	return out
}

func testRoom(settings Settings) *Room {
	return newRoom("TESTY", settings.clamped(), zerolog.Nop())
}

// forcePhase drives a room into a phase directly, running the usual entry
// side effects, without waiting on timers.
func (r *Room) forcePhase(p Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startPhaseLocked(p)
}
