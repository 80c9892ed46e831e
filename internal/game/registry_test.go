package game

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *Registry {
	return NewRegistry(0, 0, zerolog.Nop())
}

func TestCreateRoomCodes(t *testing.T) {
	reg := testRegistry()

	seen := make(map[string]bool)
	for i := 0; i < 2000; i++ {
		room := reg.CreateRoom(DefaultSettings())
		code := room.Code()
		require.Len(t, code, 5)
		for _, ch := range code {
			require.True(t, ch >= 'A' && ch <= 'Z', "code %q must be uppercase letters", code)
		}
		require.False(t, seen[code], "code %q handed out twice", code)
		seen[code] = true

		got, err := reg.Get(code)
		require.NoError(t, err)
		assert.Same(t, room, got)
	}
}

func TestCreateRoomClampsSettings(t *testing.T) {
	reg := testRegistry()
	room := reg.CreateRoom(Settings{PreviewTimeSec: -5, BuildTimeSec: 0, VoteTimeSec: 0, PartsPerPlayer: 0})

	s := room.Settings()
	assert.Equal(t, 1, s.PreviewTimeSec)
	assert.Equal(t, 1, s.BuildTimeSec)
	assert.Equal(t, 1, s.VoteTimeSec)
	assert.Equal(t, 1, s.PartsPerPlayer)
}

func TestGetUnknownCode(t *testing.T) {
	reg := testRegistry()

	_, err := reg.Get("NOPES")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = reg.BindHost("NOPES", &fakeConn{})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = reg.BindPlayer("NOPES", "alice", nil, &fakeConn{})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestConnRouting(t *testing.T) {
	reg := testRegistry()
	room := reg.CreateRoom(DefaultSettings())

	hostConn := &fakeConn{}
	_, err := reg.BindHost(room.Code(), hostConn)
	require.NoError(t, err)

	playerConn := &fakeConn{}
	player, err := reg.BindPlayer(room.Code(), "alice", nil, playerConn)
	require.NoError(t, err)

	reg.StartGame(hostConn)
	require.Equal(t, PhasePreview, room.Phase())

	reg.HandlePartDrop(playerConn, PartPlacement{ID: "eye1", X: 10, Y: 20})
	players := room.Players()
	require.Len(t, players, 1)
	require.Len(t, players[0].Placements, 1)
	assert.Equal(t, "eye1", players[0].Placements[0].ID)

	room.forcePhase(PhaseVote)
	reg.HandleVote(playerConn, player.ID)
	updates := hostConn.voteUpdates()
	require.Len(t, updates, 1)
	assert.Equal(t, player.ID, updates[0].TargetPlayerID)
}

func TestReplacedHostLosesControl(t *testing.T) {
	reg := testRegistry()
	room := reg.CreateRoom(DefaultSettings())

	old := &fakeConn{}
	_, err := reg.BindHost(room.Code(), old)
	require.NoError(t, err)
	replacement := &fakeConn{}
	_, err = reg.BindHost(room.Code(), replacement)
	require.NoError(t, err)

	reg.StartGame(old)
	assert.Equal(t, PhaseJoin, room.Phase(), "only the most recent host connection is authoritative")

	reg.StartGame(replacement)
	require.Equal(t, PhasePreview, room.Phase())

	room.forcePhase(PhaseResults)
	reg.Restart(old)
	assert.Equal(t, PhaseResults, room.Phase(), "a replaced host cannot restart the room either")
	reg.Restart(replacement)
	assert.Equal(t, PhaseJoin, room.Phase())
}

func TestHostSignalsRejectedFromPlayers(t *testing.T) {
	reg := testRegistry()
	room := reg.CreateRoom(DefaultSettings())
	reg.BindHost(room.Code(), &fakeConn{})
	playerConn := &fakeConn{}
	reg.BindPlayer(room.Code(), "alice", nil, playerConn)

	reg.StartGame(playerConn)
	assert.Equal(t, PhaseJoin, room.Phase(), "a player connection cannot start the game")
}

func TestPlayerMessagesRejectedFromHost(t *testing.T) {
	reg := testRegistry()
	room := reg.CreateRoom(DefaultSettings())
	hostConn := &fakeConn{}
	reg.BindHost(room.Code(), hostConn)
	p, err := reg.BindPlayer(room.Code(), "alice", nil, &fakeConn{})
	require.NoError(t, err)
	room.forcePhase(PhaseVote)

	before := len(hostConn.voteUpdates())
	reg.HandleVote(hostConn, p.ID)
	assert.Equal(t, before, len(hostConn.voteUpdates()), "the host connection carries no player identity")
}

func TestUnknownConnIsNoOp(t *testing.T) {
	reg := testRegistry()
	reg.CreateRoom(DefaultSettings())

	stranger := &fakeConn{}
	reg.HandlePartDrop(stranger, PartPlacement{ID: "eye1"})
	reg.HandleVote(stranger, 1)
	reg.StartGame(stranger)
	reg.Restart(stranger)
	reg.Unbind(stranger)
}

func TestUnbindMarksPlayerDisconnected(t *testing.T) {
	reg := testRegistry()
	room := reg.CreateRoom(DefaultSettings())
	playerConn := &fakeConn{}
	reg.BindPlayer(room.Code(), "alice", nil, playerConn)

	reg.Unbind(playerConn)

	players := room.Players()
	require.Len(t, players, 1)
	assert.False(t, players[0].Connected)

	// The connection no longer routes anywhere.
	reg.HandlePartDrop(playerConn, PartPlacement{ID: "eye1"})
	assert.Empty(t, room.Players()[0].Placements)
}

func TestSweepExpiresOldRooms(t *testing.T) {
	reg := testRegistry()
	old := reg.CreateRoom(DefaultSettings())
	fresh := reg.CreateRoom(DefaultSettings())

	hostConn := &fakeConn{}
	reg.BindHost(old.Code(), hostConn)
	playerConn := &fakeConn{}
	reg.BindPlayer(old.Code(), "alice", nil, playerConn)

	reg.sweep(time.Now().Add(defaultRoomTTL + time.Minute))

	_, err := reg.Get(old.Code())
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = reg.Get(fresh.Code())
	assert.NoError(t, err, "rooms inside the ttl survive the sweep")

	assert.True(t, hostConn.isClosed())
	assert.True(t, playerConn.isClosed())

	// Stale connections have been dropped from the index too.
	reg.StartGame(hostConn)
	assert.Equal(t, PhaseJoin, old.Phase())
}

func TestSweepCancelsPhaseTimer(t *testing.T) {
	reg := NewRegistry(time.Millisecond, 0, zerolog.Nop())
	settings := DefaultSettings()
	settings.PreviewTimeSec = 1
	room := reg.CreateRoom(settings)

	hostConn := &fakeConn{}
	reg.BindHost(room.Code(), hostConn)
	reg.StartGame(hostConn)
	require.Equal(t, PhasePreview, room.Phase())

	reg.sweep(time.Now().Add(time.Second))
	phaseAfterSweep := room.Phase()

	// The preview timer was armed for one second; give it time to fire if
	// expiry failed to cancel it.
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, phaseAfterSweep, room.Phase(), "an expired room must stop advancing")
}
