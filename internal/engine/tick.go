// Package engine resolves game turns: the native settlement lifecycle,
// alarm propagation, combat and the command server the AI acts through.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Engine drives the simulation forward one turn per interval.
type Engine struct {
	Interval  time.Duration // Base turn interval (default 2 seconds)
	SaveEvery int           // Turns between OnSave calls (0 = never)

	// Callbacks, populated during setup.
	OnTurn func(turn int) // After every turn, with the turn just played
	OnSave func(turn int) // Every SaveEvery turns

	step    func() int
	mu      sync.Mutex
	speed   float64 // Multiplier: 1.0 = normal, 0 = paused
	running bool
	stop    chan struct{}
}

// NewEngine creates an engine that plays turns with step, which returns
// the number of the turn it played.
func NewEngine(step func() int) *Engine {
	return &Engine{
		Interval:  2 * time.Second,
		SaveEvery: 10,
		step:      step,
		speed:     1.0,
	}
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier. Zero pauses; negative values are
// rejected.
func (e *Engine) SetSpeed(speed float64) error {
	if speed < 0 {
		return fmt.Errorf("speed must not be negative: %v", speed)
	}
	e.mu.Lock()
	e.speed = speed
	e.mu.Unlock()
	slog.Info("engine speed changed", "speed", speed)
	return nil
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Run plays turns until Stop is called or ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.mu.Lock()
	e.running = true
	e.stop = make(chan struct{})
	stop := e.stop
	e.mu.Unlock()
	slog.Info("turn engine started", "speed", e.Speed())
	played := 0

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		slog.Info("turn engine stopped", "turns_played", played)
	}()

	for {
		speed := e.Speed()
		wait := 100 * time.Millisecond // Paused: check again shortly
		if speed > 0 {
			start := time.Now()
			e.Step()
			played++
			wait = time.Duration(float64(e.Interval)/speed) - time.Since(start)
		}
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-time.After(max(wait, 0)):
		}
	}
}

// Stop halts the loop started by Run.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running && e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
}

// Step plays a single turn, fires the callbacks and returns the number of
// the turn played.
func (e *Engine) Step() int {
	turn := e.step()
	if e.OnTurn != nil {
		e.OnTurn(turn)
	}
	if e.SaveEvery > 0 && (turn+1)%e.SaveEvery == 0 && e.OnSave != nil {
		e.OnSave(turn)
	}
	return turn
}

// TurnDate returns the in-game date of a turn: one turn per year until
// 1600, then a spring and an autumn turn each year.
func TurnDate(turn int) string {
	const start, split = 1492, 1600
	if year := start + turn; year < split {
		return fmt.Sprintf("%d", year)
	}
	n := turn - (split - start)
	season := "Spring"
	if n%2 == 1 {
		season = "Autumn"
	}
	return fmt.Sprintf("%s %d", season, split+n/2)
}
