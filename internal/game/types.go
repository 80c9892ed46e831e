package game

import (
	"time"
)

type Phase string

const (
	PhaseJoin    Phase = "join"
	PhasePreview Phase = "preview"
	PhaseBuild   Phase = "build"
	PhaseVote    Phase = "vote"
	PhaseResults Phase = "results"
)

// phaseOrder drives automatic advancement. join exits only on the host's
// "start" signal and results only on "restart".
var phaseOrder = []Phase{PhaseJoin, PhasePreview, PhaseBuild, PhaseVote, PhaseResults}

func nextPhase(p Phase) (Phase, bool) {
	for i, candidate := range phaseOrder {
		if candidate == p && i+1 < len(phaseOrder) {
			return phaseOrder[i+1], true
		}
	}
	return "", false
}

// Settings are the per-room knobs the create-room request may override.
type Settings struct {
	PreviewTimeSec int  `json:"previewTimeSec"`
	BuildTimeSec   int  `json:"buildTimeSec"`
	VoteTimeSec    int  `json:"voteTimeSec"`
	PartsPerPlayer int  `json:"partsPerPlayer"`
	ShowMaskOnVote bool `json:"showMaskOnVote"`
}

func DefaultSettings() Settings {
	return Settings{
		PreviewTimeSec: 7,
		BuildTimeSec:   20,
		VoteTimeSec:    20,
		PartsPerPlayer: 5,
		ShowMaskOnVote: false,
	}
}

// clamped enforces the minimum of 1 on every numeric setting, the backstop
// against zero or negative values reaching the phase timers.
func (s Settings) clamped() Settings {
	if s.PreviewTimeSec < 1 {
		s.PreviewTimeSec = 1
	}
	if s.BuildTimeSec < 1 {
		s.BuildTimeSec = 1
	}
	if s.VoteTimeSec < 1 {
		s.VoteTimeSec = 1
	}
	if s.PartsPerPlayer < 1 {
		s.PartsPerPlayer = 1
	}
	return s
}

// PartPlacement is one dropped face part. X and Y are percentages relative
// to the face canvas and are stored as sent; out-of-range values simply
// render off-canvas.
type PartPlacement struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Player is one participant within a room. The entity survives disconnects;
// only Connected flips, so ids are never reused and placements stay
// available for the vote gallery.
type Player struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	Emoji      *int            `json:"emoji"`
	Connected  bool            `json:"connected"`
	Placements []PartPlacement `json:"placements"`

	conn Conn
}

// VoteEntry is a gallery snapshot of one player, taken when the vote phase
// starts.
type VoteEntry struct {
	PlayerID   int             `json:"playerId"`
	Name       string          `json:"name"`
	Emoji      *int            `json:"emoji"`
	Placements []PartPlacement `json:"placements"`
}

// Conn is the transport as seen by the game core. Implementations must make
// Send non-blocking and swallow per-connection failures so one dead socket
// never stalls a room broadcast.
type Conn interface {
	Send(payload any)
	Close(reason string)
}

func remainingSec(deadline time.Time, now time.Time) *int {
	if deadline.IsZero() {
		return nil
	}
	secs := int((deadline.Sub(now) + time.Second - 1) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return &secs
}
