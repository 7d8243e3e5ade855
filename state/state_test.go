package state

import (
	"errors"
	"testing"
)

func TestMachine_InitialState(t *testing.T) {
	sm := NewGameMachine()

	if sm.Current() != Waiting {
		t.Errorf("Expected initial state %s, got %s", Waiting, sm.Current())
	}
}

func TestMachine_GameLifecycle(t *testing.T) {
	sm := NewGameMachine()

	if err := sm.ChangeState(Playing); err != nil {
		t.Fatalf("Waiting -> Playing should be allowed, got: %v", err)
	}
	if err := sm.ChangeState(Ended); err != nil {
		t.Fatalf("Playing -> Ended should be allowed, got: %v", err)
	}
	if !sm.Is(Ended) {
		t.Errorf("Expected Ended, got %s", sm.Current())
	}
}

func TestMachine_RejectsUnknownTransitions(t *testing.T) {
	sm := NewGameMachine()

	err := sm.ChangeState(Ended)
	if !errors.Is(err, ErrTransitionNotAllowed) {
		t.Errorf("Expected ErrTransitionNotAllowed for Waiting -> Ended, got: %v", err)
	}

	sm.ChangeState(Playing)
	if err := sm.ChangeState(Playing); !errors.Is(err, ErrTransitionNotAllowed) {
		t.Errorf("Expected ErrTransitionNotAllowed for Playing -> Playing, got: %v", err)
	}

	sm.ChangeState(Ended)
	if err := sm.ChangeState(Waiting); !errors.Is(err, ErrTransitionNotAllowed) {
		t.Errorf("Ended must be terminal, got: %v", err)
	}
	if sm.Current() != Ended {
		t.Errorf("Expected state to remain Ended, got %s", sm.Current())
	}
}

func TestMachine_ConditionAndHook(t *testing.T) {
	allowed := false
	entered := 0

	sm := NewMachine(Waiting)
	sm.AddTransition(Waiting, Playing, func() bool { return allowed })
	sm.OnEnter(Playing, func() { entered++ })

	if sm.CanChange(Playing) {
		t.Error("CanChange should report false while the condition fails")
	}
	if err := sm.ChangeState(Playing); !errors.Is(err, ErrTransitionNotAllowed) {
		t.Errorf("Expected blocked transition, got: %v", err)
	}
	if entered != 0 {
		t.Error("OnEnter should not run for a blocked transition")
	}

	allowed = true
	if err := sm.ChangeState(Playing); err != nil {
		t.Fatalf("Expected transition to succeed, got: %v", err)
	}
	if entered != 1 {
		t.Errorf("Expected OnEnter to run once, ran %d times", entered)
	}
}
