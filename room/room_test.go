package room

import (
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/drawserver/models"
)

// sequentialCodes hands out the given codes in order.
func sequentialCodes(codes ...string) func() string {
	i := 0
	return func() string {
		code := codes[i%len(codes)]
		i++
		return code
	}
}

func newTestRegistry(codes ...string) *Registry {
	opts := Options{MaxPlayers: 4, MaxRounds: 3}
	if len(codes) > 0 {
		opts.NewCode = sequentialCodes(codes...)
	}
	return NewRegistry(opts)
}

// assertConsistent checks that OrderedPlayers is a permutation of the Players keys.
func assertConsistent(t *testing.T, r *Room) {
	t.Helper()
	keys := make([]string, 0, len(r.Players))
	for id := range r.Players {
		keys = append(keys, id)
	}
	ordered := append([]string(nil), r.OrderedPlayers...)
	sort.Strings(keys)
	sort.Strings(ordered)
	assert.Equal(t, keys, ordered, "OrderedPlayers must be a permutation of Players")
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := GenerateCode()
		require.Len(t, code, codeLength)
		for _, c := range code {
			assert.Contains(t, codeAlphabet, string(c))
		}
	}
}

func TestRegistry_CreateAndGetRoom(t *testing.T) {
	registry := newTestRegistry("ABC123")

	room, err := registry.CreateRoom("conn-a", "Alice")
	require.NoError(t, err)

	assert.Equal(t, "ABC123", room.Code)
	assert.Equal(t, []string{"conn-a"}, room.OrderedPlayers)
	assert.Equal(t, "Alice", room.Players["conn-a"].Name)
	assert.False(t, room.IsPlaying())
	assert.Equal(t, 0, room.CurrentRound)

	retrieved, exists := registry.GetRoom("ABC123")
	require.True(t, exists)
	assert.Same(t, room, retrieved)
	assert.Equal(t, []string{"ABC123"}, registry.RoomsOf("conn-a"))
}

func TestRegistry_CreateRoom_SkipsTakenCodes(t *testing.T) {
	registry := newTestRegistry("AAAAAA", "AAAAAA", "BBBBBB")

	first, err := registry.CreateRoom("conn-a", "Alice")
	require.NoError(t, err)
	second, err := registry.CreateRoom("conn-b", "Bob")
	require.NoError(t, err)

	assert.Equal(t, "AAAAAA", first.Code)
	assert.Equal(t, "BBBBBB", second.Code)
	assert.Equal(t, 2, registry.Count())
}

func TestRegistry_CreateRoom_CodeSpaceExhausted(t *testing.T) {
	registry := newTestRegistry("AAAAAA")
	_, err := registry.CreateRoom("conn-a", "Alice")
	require.NoError(t, err)

	_, err = registry.CreateRoom("conn-b", "Bob")
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
}

func TestRegistry_JoinRoom(t *testing.T) {
	registry := newTestRegistry("ROOM01")
	registry.CreateRoom("conn-a", "Alice")

	room, joined, err := registry.JoinRoom("ROOM01", "conn-b", "Bob")
	require.NoError(t, err)
	assert.True(t, joined)
	assert.Equal(t, []string{"conn-a", "conn-b"}, room.OrderedPlayers)
	assertConsistent(t, room)

	_, _, err = registry.JoinRoom("NOPE00", "conn-c", "Carol")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRegistry_JoinRoom_DuplicateIsNoop(t *testing.T) {
	registry := newTestRegistry("ROOM01")
	registry.CreateRoom("conn-a", "Alice")
	registry.JoinRoom("ROOM01", "conn-b", "Bob")

	room, joined, err := registry.JoinRoom("ROOM01", "conn-b", "Bobby")
	require.NoError(t, err)
	assert.False(t, joined)
	assert.Equal(t, 2, room.PlayerCount())
	assert.Equal(t, "Bob", room.Players["conn-b"].Name)
}

func TestRegistry_JoinRoom_Full(t *testing.T) {
	registry := NewRegistry(Options{MaxPlayers: 2, NewCode: sequentialCodes("ROOM01")})
	registry.CreateRoom("conn-a", "Alice")
	registry.JoinRoom("ROOM01", "conn-b", "Bob")

	_, _, err := registry.JoinRoom("ROOM01", "conn-c", "Carol")
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Empty(t, registry.RoomsOf("conn-c"))
}

func TestRegistry_LeaveRoom(t *testing.T) {
	registry := newTestRegistry("ROOM01")
	registry.CreateRoom("conn-a", "Alice")
	registry.JoinRoom("ROOM01", "conn-b", "Bob")
	registry.JoinRoom("ROOM01", "conn-c", "Carol")

	room, player, idx, err := registry.LeaveRoom("ROOM01", "conn-b")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, "Bob", player.Name)
	assert.Equal(t, 1, idx)
	assert.Equal(t, []string{"conn-a", "conn-c"}, room.OrderedPlayers)
	assertConsistent(t, room)
	assert.Empty(t, registry.RoomsOf("conn-b"))

	_, _, _, err = registry.LeaveRoom("ROOM01", "conn-b")
	assert.ErrorIs(t, err, ErrNotInRoom)
}

func TestRegistry_LastLeaveDeletesRoom(t *testing.T) {
	registry := newTestRegistry("ROOM01")
	registry.CreateRoom("conn-a", "Alice")

	room, player, _, err := registry.LeaveRoom("ROOM01", "conn-a")
	require.NoError(t, err)
	assert.Nil(t, room)
	assert.Equal(t, "Alice", player.Name)
	assert.Equal(t, 0, registry.Count())

	_, _, err = registry.JoinRoom("ROOM01", "conn-b", "Bob")
	assert.True(t, errors.Is(err, ErrRoomNotFound))
}

func TestRegistry_PermutationInvariant(t *testing.T) {
	registry := newTestRegistry("ROOM01")
	registry.CreateRoom("p0", "P0")

	ops := []struct {
		join bool
		id   string
	}{
		{true, "p1"}, {true, "p2"}, {false, "p1"}, {true, "p3"}, {true, "p2"},
		{false, "p0"}, {true, "p4"}, {false, "p3"}, {true, "p1"},
	}
	for i, op := range ops {
		if op.join {
			registry.JoinRoom("ROOM01", op.id, fmt.Sprintf("name-%d", i))
		} else {
			registry.LeaveRoom("ROOM01", op.id)
		}
		room, ok := registry.GetRoom("ROOM01")
		require.True(t, ok)
		assertConsistent(t, room)
	}
}

func TestRoom_RemoveClearsCorrectGuesser(t *testing.T) {
	r := NewRoom("ROOM01", 0, 3, time.Now())
	r.AddPlayer(&Player{ID: "a", Name: "A"})
	r.AddPlayer(&Player{ID: "b", Name: "B"})
	r.CorrectGuessers["b"] = struct{}{}

	_, idx := r.RemovePlayer("b")
	assert.Equal(t, 1, idx)
	assert.False(t, r.HasGuessed("b"))
}

func TestRegistry_GetState(t *testing.T) {
	registry := newTestRegistry("ROOM01")
	registry.CreateRoom("conn-a", "Alice")
	registry.JoinRoom("ROOM01", "conn-b", "Bob")

	got, ok := registry.GetState("ROOM01")
	require.True(t, ok)

	want := models.RoomState{
		Players: []models.PlayerView{
			{ID: "conn-a", Name: "Alice"},
			{ID: "conn-b", Name: "Bob"},
		},
		GameState:    "waiting",
		MaxRounds:    3,
		TotalPlayers: 2,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetState mismatch (-want +got):\n%s", diff)
	}

	_, ok = registry.GetState("NOPE00")
	assert.False(t, ok)
}
