package game

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fastrand"
)

// Room is one game session. All mutable state is guarded by mu; every
// handler and timer fire runs under it, which gives the same serialization
// guarantee a single-threaded event loop would.
type Room struct {
	mu sync.Mutex

	code      string
	createdAt time.Time
	settings  Settings
	log       zerolog.Logger

	phase       Phase
	phaseEndsAt time.Time // zero value means no deadline
	maskID      string

	host    Conn
	players []*Player

	// Round-scoped vote state, reset whenever a vote phase begins.
	tally   map[int]int
	gallery []VoteEntry

	// Pending phase timer. At most one exists; timerGen invalidates fires
	// that lost a race against a manual transition.
	timer    *time.Timer
	timerGen uint64
}

func newRoom(code string, settings Settings, log zerolog.Logger) *Room {
	return &Room{
		code:      code,
		createdAt: time.Now(),
		settings:  settings,
		log:       log.With().Str("code", code).Logger(),
		phase:     PhaseJoin,
		tally:     make(map[int]int),
	}
}

func (r *Room) Code() string { return r.code }

func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

func (r *Room) Settings() Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

func (r *Room) MaskID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maskID
}

// Players returns a snapshot of the player list in join order.
func (r *Room) Players() []Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, Player{
			ID:         p.ID,
			Name:       p.Name,
			Emoji:      p.Emoji,
			Connected:  p.Connected,
			Placements: append([]PartPlacement(nil), p.Placements...),
		})
	}
	return out
}

func (r *Room) ConnectedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connectedCountLocked()
}

// bindHost attaches (or re-attaches) the authoritative host connection
// and returns the connection it replaced, if any. A room still waiting in
// join (re)enters the join phase; a room mid-round only hands the new host
// a state snapshot, so a host reconnect never disturbs a running game.
func (r *Room) bindHost(c Conn) Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.host
	r.host = c
	if r.phase == PhaseJoin {
		r.cancelTimerLocked()
		r.startPhaseLocked(PhaseJoin)
	} else {
		c.Send(phaseChangeMsg(r.phase, remainingSec(r.phaseEndsAt, time.Now())))
		if r.maskID != "" {
			c.Send(maskSelectedMsg(r.maskID))
		}
	}
	r.broadcastPlayerCountLocked()
	r.log.Info().Msg("host joined")
	return prev
}

// bindPlayer registers a new player. Ids are assigned max+1 and never
// reused; the joiner immediately gets the current phase state and part
// limit so a late join shows the right countdown.
func (r *Room) bindPlayer(name string, emoji *int, c Conn) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	nextID := 1
	for _, p := range r.players {
		if p.ID >= nextID {
			nextID = p.ID + 1
		}
	}
	player := &Player{
		ID:         nextID,
		Name:       name,
		Emoji:      emoji,
		Connected:  true,
		Placements: []PartPlacement{},
		conn:       c,
	}
	r.players = append(r.players, player)

	c.Send(phaseChangeMsg(r.phase, remainingSec(r.phaseEndsAt, time.Now())))
	c.Send(partLimitMsg(r.settings.PartsPerPlayer))
	r.broadcastPlayerCountLocked()
	r.log.Info().Int("playerId", player.ID).Str("name", name).Msg("player joined")
	return player
}

// markDisconnected flips the player's connected flag and announces the new
// count. The entity stays so vote and result lookups keep working.
func (r *Room) markDisconnected(p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !p.Connected {
		return
	}
	p.Connected = false
	r.broadcastPlayerCountLocked()
	r.log.Info().Int("playerId", p.ID).Msg("player disconnected")
}

// addPlacement records one dropped part. Coordinates are taken as sent.
func (r *Room) addPlacement(p *Player, placement PartPlacement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.Placements = append(p.Placements, placement)
}

// vote increments the target's tally and broadcasts the new count. Votes
// for unknown targets are dropped. There is deliberately no per-voter
// dedup: the client marks "already liked" locally, and repeat votes from a
// connection all count.
func (r *Room) vote(targetID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	known := false
	for _, p := range r.players {
		if p.ID == targetID {
			known = true
			break
		}
	}
	if !known {
		return
	}
	r.tally[targetID]++
	r.broadcastLocked(voteUpdateMsg(targetID, r.tally[targetID]))
}

// startFromJoin handles the host's "start" signal. A stray signal outside
// the join phase is ignored so phases cannot be skipped.
func (r *Room) startFromJoin() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseJoin {
		return
	}
	r.cancelTimerLocked()
	r.startPhaseLocked(PhasePreview)
	r.scheduleNextLocked()
}

// restart returns a finished room to the join phase, clearing all
// round-scoped state: mask, tally, gallery, and every player's placements.
// Player entities and their ids survive.
func (r *Room) restart() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseResults {
		return
	}
	r.cancelTimerLocked()
	r.maskID = ""
	r.tally = make(map[int]int)
	r.gallery = nil
	for _, p := range r.players {
		p.Placements = []PartPlacement{}
	}
	r.startPhaseLocked(PhaseJoin)
	r.log.Info().Msg("room restarted")
}

// expire cancels the pending timer and closes every connection. Called by
// the registry sweep after the room has been unlinked.
func (r *Room) expire() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancelTimerLocked()
	if r.host != nil {
		r.host.Close("room expired")
		r.host = nil
	}
	for _, p := range r.players {
		if p.Connected && p.conn != nil {
			p.conn.Close("room expired")
			p.Connected = false
		}
	}
	r.log.Info().Msg("room expired")
}

// Phase entry. Sets phase and deadline, announces the change, then runs the
// phase's side effect (mask pick, gallery snapshot, winner computation).
func (r *Room) startPhaseLocked(phase Phase) {
	r.phase = phase
	duration := r.phaseDuration(phase)
	var countdown *int
	if duration > 0 {
		r.phaseEndsAt = time.Now().Add(duration)
		secs := int(duration / time.Second)
		countdown = &secs
	} else {
		r.phaseEndsAt = time.Time{}
	}
	r.broadcastLocked(phaseChangeMsg(phase, countdown))
	r.log.Info().Str("phase", string(phase)).Msg("phase started")

	switch phase {
	case PhasePreview:
		r.maskID = pickMask()
		r.broadcastLocked(maskSelectedMsg(r.maskID))
	case PhaseVote:
		r.snapshotGalleryLocked()
		r.broadcastLocked(voteGalleryMsg(r.maskID, r.gallery, r.settings.ShowMaskOnVote))
	case PhaseResults:
		r.announceWinnerLocked()
	}
}

func (r *Room) phaseDuration(phase Phase) time.Duration {
	switch phase {
	case PhasePreview:
		return time.Duration(r.settings.PreviewTimeSec) * time.Second
	case PhaseBuild:
		return time.Duration(r.settings.BuildTimeSec) * time.Second
	case PhaseVote:
		return time.Duration(r.settings.VoteTimeSec) * time.Second
	default:
		// join is operator-gated and results is terminal.
		return 0
	}
}

// snapshotGalleryLocked freezes every player's face into the round gallery
// and resets the tally.
func (r *Room) snapshotGalleryLocked() {
	r.gallery = make([]VoteEntry, 0, len(r.players))
	for _, p := range r.players {
		r.gallery = append(r.gallery, VoteEntry{
			PlayerID:   p.ID,
			Name:       p.Name,
			Emoji:      p.Emoji,
			Placements: append([]PartPlacement(nil), p.Placements...),
		})
	}
	r.tally = make(map[int]int)
}

// announceWinnerLocked picks the gallery entry with the highest tally,
// breaking ties uniformly at random. An empty gallery produces no event.
func (r *Room) announceWinnerLocked() {
	if len(r.gallery) == 0 {
		return
	}
	best := -1
	var tied []VoteEntry
	for _, entry := range r.gallery {
		count := r.tally[entry.PlayerID]
		switch {
		case count > best:
			best = count
			tied = tied[:0]
			tied = append(tied, entry)
		case count == best:
			tied = append(tied, entry)
		}
	}
	winner := tied[fastrand.Uint32n(uint32(len(tied)))]
	r.broadcastLocked(resultsMsg(r.maskID, winner, best))
	r.log.Info().Int("playerId", winner.PlayerID).Int("votes", best).Msg("winner announced")
}

func (r *Room) connectedCountLocked() int {
	count := 0
	for _, p := range r.players {
		if p.Connected {
			count++
		}
	}
	return count
}

func (r *Room) broadcastPlayerCountLocked() {
	r.broadcastLocked(playerCountMsg(r.connectedCountLocked()))
}

// broadcastLocked fans a payload out to the host and every connected
// player. Send failures stay inside the Conn implementation.
func (r *Room) broadcastLocked(payload any) {
	if r.host != nil {
		r.host.Send(payload)
	}
	for _, p := range r.players {
		if p.Connected && p.conn != nil {
			p.conn.Send(payload)
		}
	}
}
