package state

import (
	"errors"
	"fmt"
)

// GameState is the coarse lifecycle of a room.
type GameState string

const (
	Waiting GameState = "waiting"
	Playing GameState = "playing"
	Ended   GameState = "ended"
)

// ErrTransitionNotAllowed is returned when a state transition is not allowed.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// Machine tracks the current GameState and the transitions allowed out of it.
// A transition without a registered edge is rejected.
type Machine struct {
	current     GameState
	transitions map[GameState]map[GameState]func() bool // from -> to -> condition
	onEnter     map[GameState]func()
}

func NewMachine(initial GameState) *Machine {
	return &Machine{
		current:     initial,
		transitions: make(map[GameState]map[GameState]func() bool),
		onEnter:     make(map[GameState]func()),
	}
}

// NewGameMachine returns the Waiting -> Playing -> Ended machine used by rooms.
func NewGameMachine() *Machine {
	m := NewMachine(Waiting)
	m.AddTransition(Waiting, Playing, nil)
	m.AddTransition(Playing, Ended, nil)
	return m
}

func (m *Machine) AddTransition(from, to GameState, condition func() bool) {
	if _, exists := m.transitions[from]; !exists {
		m.transitions[from] = make(map[GameState]func() bool)
	}
	m.transitions[from][to] = condition
}

// OnEnter registers a hook run after the machine moves into s.
func (m *Machine) OnEnter(s GameState, fn func()) {
	m.onEnter[s] = fn
}

func (m *Machine) ChangeState(to GameState) error {
	conditions, exists := m.transitions[m.current]
	if !exists {
		return fmt.Errorf("%s -> %s: %w", m.current, to, ErrTransitionNotAllowed)
	}
	condition, exists := conditions[to]
	if !exists || (condition != nil && !condition()) {
		return fmt.Errorf("%s -> %s: %w", m.current, to, ErrTransitionNotAllowed)
	}

	m.current = to
	if fn := m.onEnter[to]; fn != nil {
		fn()
	}
	return nil
}

func (m *Machine) Current() GameState {
	return m.current
}

func (m *Machine) Is(s GameState) bool {
	return m.current == s
}

// CanChange reports whether ChangeState(to) would succeed right now.
func (m *Machine) CanChange(to GameState) bool {
	condition, exists := m.transitions[m.current][to]
	return exists && (condition == nil || condition())
}
