// Simulation ties the game, the AI registry and the command server together
// and resolves one turn at a time.
package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/talgya/frontier/internal/ai"
	"github.com/talgya/frontier/internal/entropy"
	"github.com/talgya/frontier/internal/model"
)

// maxEvents is how many recent events the simulation keeps.
const maxEvents = 1000

// Simulation holds the complete game state and wires systems together.
// Every mutation happens under the write lock; observers read through View.
type Simulation struct {
	Game   *model.Game
	AI     *ai.Main
	Server *Server
	Rand   *entropy.Source
	Events []Event // Most recent last, at most maxEvents

	// Statistics, cumulative since the simulation was created.
	Stats SimStats

	// OnEvent is called for every recorded event, with the lock held.
	OnEvent func(Event)

	mu sync.RWMutex
}

// Event is a notable occurrence in the game.
type Event struct {
	Turn        int    `json:"turn"`
	Description string `json:"description"`
	Category    string `json:"category"` // "famine", "birth", "alarm", "combat", "tribute", etc.
}

// SimStats tracks aggregate game statistics.
type SimStats struct {
	Turn        int `json:"turn"`
	Players     int `json:"players"`
	Colonies    int `json:"colonies"`
	Settlements int `json:"settlements"`
	Units       int `json:"units"`
	Births      int `json:"births"`
	Famines     int `json:"famines"`
	Collapses   int `json:"collapses"`
	Battles     int `json:"battles"`
	Tributes    int `json:"tributes"`
	Missions    int `json:"missions"`
}

// NewSimulation wraps a game. The AI registry is created with the server
// as its command boundary and shares the simulation's random source.
func NewSimulation(g *model.Game, rng *entropy.Source) (*Simulation, error) {
	s := &Simulation{Game: g, Rand: rng}
	s.Server = &Server{sim: s}
	m, err := ai.NewMain(g, s.Server, rng)
	if err != nil {
		return nil, fmt.Errorf("ai: %w", err)
	}
	s.AI = m
	s.updateStats()
	return s, nil
}

// View runs fn with the simulation locked for reading.
func (s *Simulation) View(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

// Update runs fn with the simulation locked for writing.
func (s *Simulation) Update(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// NewTurn resolves one full turn: units are refreshed, every native
// settlement and colony runs its turn, tension decays, every AI player
// does its work, native stances follow their tension and markets recover.
func (s *Simulation) NewTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.Game
	turn := g.Turn
	s.resetUnits()

	for _, is := range g.AllSettlements() {
		s.settlementNewTurn(is)
	}
	for _, c := range g.AllColonies() {
		s.colonyNewTurn(c)
	}
	s.decayTension()

	s.AI.Sync()
	for _, p := range s.AI.Players() {
		s.AI.DoWork(p.ID, turn)
	}
	s.truncateWarehouses()

	s.updateStances()
	s.recoverMarkets()
	s.checkForDeath()

	g.Turn++
	s.updateStats()

	slog.Info("turn report",
		"turn", turn,
		"date", TurnDate(turn),
		"colonies", s.Stats.Colonies,
		"settlements", s.Stats.Settlements,
		"units", s.Stats.Units,
		"births", s.Stats.Births,
		"famines", s.Stats.Famines,
		"battles", s.Stats.Battles,
		"draws", s.Rand.Draws(),
	)
}

// Turn returns the number of the turn about to be played.
func (s *Simulation) Turn() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Game.Turn
}

// RecentEvents returns up to n of the newest events, oldest first.
func (s *Simulation) RecentEvents(n int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if n > 0 && len(s.Events) > n {
		start = len(s.Events) - n
	}
	return append([]Event(nil), s.Events[start:]...)
}

// record appends an event, trimming the oldest beyond maxEvents.
func (s *Simulation) record(category, format string, args ...any) {
	e := Event{
		Turn:        s.Game.Turn,
		Description: fmt.Sprintf(format, args...),
		Category:    category,
	}
	s.Events = append(s.Events, e)
	if len(s.Events) > maxEvents {
		s.Events = s.Events[len(s.Events)-maxEvents:]
	}
	if s.OnEvent != nil {
		s.OnEvent(e)
	}
}

// resetUnits restores movement points. Damaged ships spend the turn under
// repair instead.
func (s *Simulation) resetUnits() {
	g := s.Game
	for _, id := range sortedKeys(g.Units) {
		u := g.Units[id]
		if u.RepairTurns > 0 {
			u.RepairTurns--
			u.MovesLeft = 0
			if u.RepairTurns == 0 {
				s.record("repair", "%s is repaired", u.ID)
			}
			continue
		}
		if ut := g.UnitType(u); ut != nil {
			u.MovesLeft = ut.Moves
		}
	}
}

// checkForDeath marks players without colonies, settlements or units as
// dead. Natives forget their alarm toward dead Europeans.
func (s *Simulation) checkForDeath() {
	g := s.Game
	for _, p := range g.Players {
		if p.Dead {
			continue
		}
		if len(g.ColoniesOf(p.ID)) > 0 || len(g.SettlementsOf(p.ID)) > 0 || len(g.UnitsOf(p.ID)) > 0 {
			continue
		}
		p.Dead = true
		s.record("death", "%s has left the New World", p.Name)
		slog.Info("player dead", "player", p.Name, "turn", g.Turn)
		if p.European {
			for _, is := range g.AllSettlements() {
				g.RemoveAlarm(is, p.ID)
			}
		}
	}
}

func (s *Simulation) updateStats() {
	g := s.Game
	s.Stats.Turn = g.Turn
	s.Stats.Players = 0
	for _, p := range g.Players {
		if !p.Dead {
			s.Stats.Players++
		}
	}
	s.Stats.Colonies = len(g.Colonies)
	s.Stats.Settlements = len(g.Settlements)
	s.Stats.Units = len(g.Units)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		si, sj := model.Seq(keys[i]), model.Seq(keys[j])
		if si != sj {
			return si < sj
		}
		return keys[i] < keys[j]
	})
	return keys
}
