package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var ErrRoomNotFound = errors.New("room not found")

const (
	defaultRoomTTL       = 30 * time.Minute
	defaultSweepInterval = 5 * time.Minute
)

// binding maps one connection to its identity inside a room. A nil player
// marks the host binding.
type binding struct {
	room   *Room
	player *Player
}

// Registry is the process-wide table of active rooms, keyed by code, plus a
// connection index so inbound messages resolve their room and player in
// O(1) instead of scanning every room.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	conns map[Conn]binding

	ttl       time.Duration
	sweepTick time.Duration
	log       zerolog.Logger
}

func NewRegistry(ttl, sweepTick time.Duration, log zerolog.Logger) *Registry {
	if ttl <= 0 {
		ttl = defaultRoomTTL
	}
	if sweepTick <= 0 {
		sweepTick = defaultSweepInterval
	}
	return &Registry{
		rooms:     make(map[string]*Room),
		conns:     make(map[Conn]binding),
		ttl:       ttl,
		sweepTick: sweepTick,
		log:       log,
	}
}

// CreateRoom allocates a fresh unique code and inserts a new room waiting
// in the join phase. Settings are clamped here; collision odds on a
// five-letter code are low but checked, not assumed.
func (reg *Registry) CreateRoom(settings Settings) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code := newRoomCode()
	for reg.rooms[code] != nil {
		code = newRoomCode()
	}
	room := newRoom(code, settings.clamped(), reg.log)
	reg.rooms[code] = room
	reg.log.Info().Str("code", code).Msg("room created")
	return room
}

func (reg *Registry) Get(code string) (*Room, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room := reg.rooms[code]
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// BindHost attaches a connection as the room's host. Only the most recent
// host connection is authoritative, which also covers host reconnects; the
// replaced connection loses its binding, so a stale host can no longer
// drive the room.
func (reg *Registry) BindHost(code string, c Conn) (*Room, error) {
	room, err := reg.Get(code)
	if err != nil {
		reg.log.Warn().Str("code", code).Msg("host join failed, room not found")
		return nil, err
	}
	prev := room.bindHost(c)

	reg.mu.Lock()
	if prev != nil && prev != c {
		delete(reg.conns, prev)
	}
	reg.conns[c] = binding{room: room}
	reg.mu.Unlock()
	return room, nil
}

// BindPlayer registers a new player on the given connection.
func (reg *Registry) BindPlayer(code, name string, emoji *int, c Conn) (*Player, error) {
	room, err := reg.Get(code)
	if err != nil {
		reg.log.Warn().Str("code", code).Str("name", name).Msg("player join failed, room not found")
		return nil, err
	}
	player := room.bindPlayer(name, emoji, c)

	reg.mu.Lock()
	reg.conns[c] = binding{room: room, player: player}
	reg.mu.Unlock()
	return player, nil
}

// Unbind drops the connection from the index. A player binding is marked
// disconnected (the entity stays); a host binding is simply forgotten, the
// next host bind overwrites it. Unknown connections are a no-op.
func (reg *Registry) Unbind(c Conn) {
	reg.mu.Lock()
	b, ok := reg.conns[c]
	delete(reg.conns, c)
	reg.mu.Unlock()

	if !ok || b.player == nil {
		return
	}
	b.room.markDisconnected(b.player)
}

// HandlePartDrop records a part placement for the player bound to this
// connection. Drops from unrecognized connections are silently ignored.
func (reg *Registry) HandlePartDrop(c Conn, placement PartPlacement) {
	if room, player := reg.lookupPlayer(c); player != nil {
		room.addPlacement(player, placement)
	}
}

// HandleVote tallies a vote from the connection's room. Unknown
// connections and unknown targets are silently ignored.
func (reg *Registry) HandleVote(c Conn, targetPlayerID int) {
	if room, player := reg.lookupPlayer(c); player != nil {
		room.vote(targetPlayerID)
	}
}

// StartGame handles the host's "start" signal for the room this connection
// hosts; ignored for non-host connections.
func (reg *Registry) StartGame(c Conn) {
	if room := reg.lookupHost(c); room != nil {
		room.startFromJoin()
	}
}

// Restart handles the host's "restart" signal.
func (reg *Registry) Restart(c Conn) {
	if room := reg.lookupHost(c); room != nil {
		room.restart()
	}
}

func (reg *Registry) lookupPlayer(c Conn) (*Room, *Player) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	b, ok := reg.conns[c]
	if !ok || b.player == nil {
		return nil, nil
	}
	return b.room, b.player
}

func (reg *Registry) lookupHost(c Conn) *Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	b, ok := reg.conns[c]
	if !ok || b.player != nil {
		return nil
	}
	return b.room
}

// Run sweeps expired rooms until ctx is cancelled. Expiry cancels the
// room's phase timer and closes its connections so no timer callback or
// socket outlives the room.
func (reg *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(reg.sweepTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reg.sweep(time.Now())
		}
	}
}

func (reg *Registry) sweep(now time.Time) {
	reg.mu.Lock()
	var expired []*Room
	for code, room := range reg.rooms {
		if now.Sub(room.createdAt) >= reg.ttl {
			delete(reg.rooms, code)
			expired = append(expired, room)
		}
	}
	for c, b := range reg.conns {
		for _, room := range expired {
			if b.room == room {
				delete(reg.conns, c)
				break
			}
		}
	}
	reg.mu.Unlock()

	for _, room := range expired {
		room.expire()
	}
}
