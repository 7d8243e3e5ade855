// room/registry.go
package room

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/wfunc/drawserver/models"
)

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrNotInRoom          = errors.New("player is not in room")
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique room code")
)

const (
	codeAlphabet    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength      = 6
	maxCodeAttempts = 32
)

// GenerateCode returns a random 6-character, human-shareable room code.
func GenerateCode() string {
	code := make([]byte, codeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			panic("crypto/rand unavailable: " + err.Error())
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code)
}

type Options struct {
	MaxPlayers int
	MaxRounds  int
	NewCode    func() string
	Now        func() time.Time
}

// Registry 管理所有房间，以及连接 -> 房间的成员索引
type Registry struct {
	rooms       map[string]*Room
	memberships map[string]map[string]struct{} // connection id -> room codes
	opts        Options
	mutex       sync.RWMutex
}

func NewRegistry(opts Options) *Registry {
	if opts.NewCode == nil {
		opts.NewCode = GenerateCode
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = 3
	}
	return &Registry{
		rooms:       make(map[string]*Room),
		memberships: make(map[string]map[string]struct{}),
		opts:        opts,
	}
}

// CreateRoom 分配唯一房间号，并把创建者作为第一个玩家
func (m *Registry) CreateRoom(connID, creatorName string) (*Room, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var code string
	for attempt := 0; ; attempt++ {
		if attempt == maxCodeAttempts {
			return nil, ErrCodeSpaceExhausted
		}
		code = m.opts.NewCode()
		if _, exists := m.rooms[code]; !exists {
			break
		}
	}

	now := m.opts.Now()
	room := NewRoom(code, m.opts.MaxPlayers, m.opts.MaxRounds, now)
	room.AddPlayer(&Player{ID: connID, Name: creatorName, JoinTime: now})
	m.rooms[code] = room
	m.addMembership(connID, code)
	return room, nil
}

// JoinRoom seats connID in the room. Joining twice with the same connection is a
// no-op that returns the room with joined=false.
func (m *Registry) JoinRoom(code, connID, playerName string) (room *Room, joined bool, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room, exists := m.rooms[code]
	if !exists {
		return nil, false, fmt.Errorf("join %s: %w", code, ErrRoomNotFound)
	}
	if room.HasPlayer(connID) {
		return room, false, nil
	}
	if !room.AddPlayer(&Player{ID: connID, Name: playerName, JoinTime: m.opts.Now()}) {
		return room, false, fmt.Errorf("join %s: %w", code, ErrRoomFull)
	}
	m.addMembership(connID, code)
	return room, true, nil
}

// LeaveRoom removes connID from the room and deletes the room once it is empty,
// in which case the returned room is nil. departedIndex is the turn-order slot
// the player held.
func (m *Registry) LeaveRoom(code, connID string) (room *Room, player *Player, departedIndex int, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room, exists := m.rooms[code]
	if !exists {
		return nil, nil, -1, fmt.Errorf("leave %s: %w", code, ErrRoomNotFound)
	}
	player, departedIndex = room.RemovePlayer(connID)
	if player == nil {
		return room, nil, -1, fmt.Errorf("leave %s: %w", code, ErrNotInRoom)
	}
	m.removeMembership(connID, code)

	if room.PlayerCount() == 0 {
		delete(m.rooms, code)
		return nil, player, departedIndex, nil
	}
	return room, player, departedIndex, nil
}

func (m *Registry) GetRoom(code string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[code]
	return room, exists
}

// GetState returns the broadcast projection of a room.
func (m *Registry) GetState(code string) (models.RoomState, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[code]
	if !exists {
		return models.RoomState{}, false
	}
	return room.Snapshot(), true
}

// RoomsOf lists the rooms connID has joined, sorted by code.
func (m *Registry) RoomsOf(connID string) []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	codes := make([]string, 0, len(m.memberships[connID]))
	for code := range m.memberships[connID] {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (m *Registry) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

func (m *Registry) addMembership(connID, code string) {
	rooms, ok := m.memberships[connID]
	if !ok {
		rooms = make(map[string]struct{})
		m.memberships[connID] = rooms
	}
	rooms[code] = struct{}{}
}

func (m *Registry) removeMembership(connID, code string) {
	rooms := m.memberships[connID]
	delete(rooms, code)
	if len(rooms) == 0 {
		delete(m.memberships, connID)
	}
}
