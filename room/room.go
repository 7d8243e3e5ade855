// room/room.go
package room

import (
	"time"

	"github.com/wfunc/drawserver/models"
	"github.com/wfunc/drawserver/state"
)

// Player is one connection's membership in a room.
type Player struct {
	ID       string // connection id
	Name     string
	Score    int
	JoinTime time.Time
}

// Room 是游戏房间的核心结构
// 不是并发安全的，只能由 Hub 的单个工作协程修改
type Room struct {
	Code       string
	MaxPlayers int
	MaxRounds  int
	CreatedAt  time.Time

	Players        map[string]*Player // connection id -> player
	OrderedPlayers []string           // turn order by join time

	Machine         *state.Machine
	CurrentRound    int
	CurrentTurn     string
	CurrentWord     string
	WordChoices     []string
	CorrectGuessers map[string]struct{}

	// Generation increases on every turn transition. Deferred notifications
	// carry the generation they were scheduled for.
	Generation uint64
}

// NewRoom 创建一个新房间，初始状态为 Waiting
func NewRoom(code string, maxPlayers, maxRounds int, now time.Time) *Room {
	return &Room{
		Code:            code,
		MaxPlayers:      maxPlayers,
		MaxRounds:       maxRounds,
		CreatedAt:       now,
		Players:         make(map[string]*Player),
		Machine:         state.NewGameMachine(),
		CorrectGuessers: make(map[string]struct{}),
	}
}

func (r *Room) GameState() state.GameState {
	return r.Machine.Current()
}

func (r *Room) IsPlaying() bool {
	return r.Machine.Is(state.Playing)
}

func (r *Room) PlayerCount() int {
	return len(r.OrderedPlayers)
}

func (r *Room) Player(id string) (*Player, bool) {
	p, ok := r.Players[id]
	return p, ok
}

func (r *Room) HasPlayer(id string) bool {
	_, ok := r.Players[id]
	return ok
}

func (r *Room) IsFull() bool {
	return r.MaxPlayers > 0 && len(r.OrderedPlayers) >= r.MaxPlayers
}

// IsDrawer reports whether id holds the current turn of a running game.
func (r *Room) IsDrawer(id string) bool {
	return r.IsPlaying() && r.CurrentTurn == id
}

func (r *Room) HasGuessed(id string) bool {
	_, ok := r.CorrectGuessers[id]
	return ok
}

// IndexOf returns the turn-order position of id, or -1.
func (r *Room) IndexOf(id string) int {
	for i, pid := range r.OrderedPlayers {
		if pid == id {
			return i
		}
	}
	return -1
}

// AddPlayer 添加一个玩家到房间
// 房间已满或 id 重复时返回 false
func (r *Room) AddPlayer(p *Player) bool {
	if r.HasPlayer(p.ID) || r.IsFull() {
		return false
	}
	r.Players[p.ID] = p
	r.OrderedPlayers = append(r.OrderedPlayers, p.ID)
	return true
}

// RemovePlayer 从房间移除一个玩家，同时清理出手顺序和已猜中集合。
// 返回被移除的玩家及其原来的顺序下标，不存在时返回 nil 和 -1
func (r *Room) RemovePlayer(id string) (*Player, int) {
	p, ok := r.Players[id]
	if !ok {
		return nil, -1
	}
	idx := r.IndexOf(id)
	delete(r.Players, id)
	if idx >= 0 {
		r.OrderedPlayers = append(r.OrderedPlayers[:idx], r.OrderedPlayers[idx+1:]...)
	}
	delete(r.CorrectGuessers, id)
	return p, idx
}

// Members returns a copy of the turn order, used as broadcast recipients.
func (r *Room) Members() []string {
	out := make([]string, len(r.OrderedPlayers))
	copy(out, r.OrderedPlayers)
	return out
}

// MembersExcept returns every member but id.
func (r *Room) MembersExcept(id string) []string {
	out := make([]string, 0, len(r.OrderedPlayers))
	for _, pid := range r.OrderedPlayers {
		if pid != id {
			out = append(out, pid)
		}
	}
	return out
}

// ResetTurn 清空本回合状态
func (r *Room) ResetTurn() {
	r.CurrentWord = ""
	r.WordChoices = nil
	r.CorrectGuessers = make(map[string]struct{})
}

// Snapshot projects the room for broadcasting. Players are listed in join order.
func (r *Room) Snapshot() models.RoomState {
	players := make([]models.PlayerView, 0, len(r.OrderedPlayers))
	for _, id := range r.OrderedPlayers {
		p := r.Players[id]
		players = append(players, models.PlayerView{ID: p.ID, Name: p.Name, Score: p.Score})
	}
	return models.RoomState{
		Players:      players,
		GameState:    string(r.GameState()),
		CurrentRound: r.CurrentRound,
		CurrentTurn:  r.CurrentTurn,
		MaxRounds:    r.MaxRounds,
		TotalPlayers: len(players),
	}
}
