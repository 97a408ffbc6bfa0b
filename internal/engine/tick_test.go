package engine

import (
	"context"
	"testing"
	"time"
)

func TestTurnDate(t *testing.T) {
	tests := []struct {
		turn int
		want string
	}{
		{0, "1492"},
		{107, "1599"},
		{108, "Spring 1600"},
		{109, "Autumn 1600"},
		{110, "Spring 1601"},
	}
	for _, tt := range tests {
		if got := TurnDate(tt.turn); got != tt.want {
			t.Errorf("TurnDate(%d) = %q, want %q", tt.turn, got, tt.want)
		}
	}
}

func TestEngineStepCallbacks(t *testing.T) {
	steps := 0
	e := NewEngine(func() int { steps++; return steps - 1 })
	e.SaveEvery = 2
	var turns, saves []int
	e.OnTurn = func(turn int) { turns = append(turns, turn) }
	e.OnSave = func(turn int) { saves = append(saves, turn) }

	for turn := 0; turn < 5; turn++ {
		if got := e.Step(); got != turn {
			t.Errorf("Step() = %d, want %d", got, turn)
		}
	}
	if steps != 5 || len(turns) != 5 {
		t.Errorf("steps = %d, turns = %v", steps, turns)
	}
	if len(saves) != 2 || saves[0] != 1 || saves[1] != 3 {
		t.Errorf("saves = %v, want [1 3]", saves)
	}
}

func TestEngineSpeed(t *testing.T) {
	e := NewEngine(func() int { return 0 })
	if err := e.SetSpeed(-1); err == nil {
		t.Error("negative speed accepted")
	}
	if e.Speed() != 1.0 {
		t.Errorf("speed = %v, want 1", e.Speed())
	}
	if err := e.SetSpeed(0); err != nil || e.Speed() != 0 {
		t.Errorf("pause failed: %v", err)
	}
}

func TestEngineRunStops(t *testing.T) {
	played := make(chan int, 16)
	next := 3
	e := NewEngine(func() int { next++; return next - 1 })
	e.Interval = time.Millisecond
	e.OnTurn = func(turn int) {
		select {
		case played <- turn:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	select {
	case turn := <-played:
		if turn != 3 {
			t.Errorf("first turn = %d, want 3", turn)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no turn played")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if e.Running() {
		t.Error("engine still running")
	}
}
