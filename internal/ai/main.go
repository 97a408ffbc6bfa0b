// Package ai plays the non-human players. Every unit it controls carries at
// most one mission, a small state machine stepped once per turn. Carriers
// run transport missions fed by a per-player scheduler, and colonies post
// wishes for workers and goods that missions set out to fulfil.
//
// AI objects refer to each other and to game objects by id only. The Main
// registry resolves ids, so disposing any object never leaves a dangling
// pointer behind.
package ai

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/talgya/frontier/internal/model"
)

// Rand is the seeded source shared with the turn engine.
type Rand interface {
	Intn(label string, n int) int
	Float64(label string) float64
}

// Main is the registry of every AI object in a game.
type Main struct {
	Game     *model.Game
	dispatch Dispatcher
	rng      Rand
	rules    *RuleEngine

	units    map[string]*AIUnit
	goods    map[string]*AIGoods
	wishes   map[string]*Wish
	colonies map[string]*AIColony
	players  map[string]*Player

	nextID int

	// Verbose enables the per-unit mission log.
	Verbose bool
}

// NewMain creates the registry and compiles the ruleset's mission rules.
// The dispatcher may be attached later with SetDispatcher.
func NewMain(g *model.Game, d Dispatcher, rng Rand) (*Main, error) {
	engine, err := NewRuleEngine(g.Rules.AI.MissionRules)
	if err != nil {
		return nil, fmt.Errorf("mission rules: %w", err)
	}
	m := &Main{
		Game:     g,
		dispatch: d,
		rng:      rng,
		rules:    engine,
		units:    make(map[string]*AIUnit),
		goods:    make(map[string]*AIGoods),
		wishes:   make(map[string]*Wish),
		colonies: make(map[string]*AIColony),
		players:  make(map[string]*Player),
		nextID:   1,
	}
	m.Sync()
	return m, nil
}

// SetDispatcher attaches the command boundary.
func (m *Main) SetDispatcher(d Dispatcher) { m.dispatch = d }

// SetRand replaces the random source, used after loading a saved game.
func (m *Main) SetRand(r Rand) { m.rng = r }

func (m *Main) newObjectID(prefix string) string {
	id := prefix + ":" + strconv.Itoa(m.nextID)
	m.nextID++
	return id
}

// noteID keeps the id allocator ahead of a loaded id.
func (m *Main) noteID(id string) {
	if n := model.Seq(id); n >= m.nextID {
		m.nextID = n + 1
	}
}

// AIUnit returns the AI wrapper of a unit, or nil.
func (m *Main) AIUnit(id string) *AIUnit { return m.units[id] }

// AIGoods returns a goods parcel, or nil.
func (m *Main) AIGoods(id string) *AIGoods { return m.goods[id] }

// Wish returns a wish, or nil.
func (m *Main) Wish(id string) *Wish { return m.wishes[id] }

// AIColony returns the AI wrapper of a colony, or nil.
func (m *Main) AIColony(id string) *AIColony { return m.colonies[id] }

// AIPlayer returns the AI for a player, or nil.
func (m *Main) AIPlayer(id string) *Player { return m.players[id] }

// Transportable resolves an id to a unit or goods parcel, or nil.
func (m *Main) Transportable(id string) Transportable {
	if a := m.units[id]; a != nil {
		return a
	}
	if g := m.goods[id]; g != nil {
		return g
	}
	return nil
}

// Players returns the AI players in game order.
func (m *Main) Players() []*Player {
	var out []*Player
	for _, p := range m.Game.Players {
		if ap := m.players[p.ID]; ap != nil {
			out = append(out, ap)
		}
	}
	return out
}

// UnitsOf returns a player's AI units in unit creation order.
func (m *Main) UnitsOf(player string) []*AIUnit {
	var out []*AIUnit
	for _, a := range m.units {
		if u := a.Unit(); u != nil && u.Owner == player {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return model.Seq(out[i].id) < model.Seq(out[j].id) })
	return out
}

// ColoniesOf returns the AI colonies a player owns in colony order.
func (m *Main) ColoniesOf(player string) []*AIColony {
	var out []*AIColony
	for _, c := range m.Game.ColoniesOf(player) {
		if ac := m.colonies[c.ID]; ac != nil {
			out = append(out, ac)
		}
	}
	return out
}

// GoodsOf returns the goods parcels owned by a player, in id order.
func (m *Main) GoodsOf(player string) []*AIGoods {
	var out []*AIGoods
	for _, g := range m.goods {
		if g.Owner() == player {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return model.Seq(out[i].id) < model.Seq(out[j].id) })
	return out
}

// Wishes returns every wish in id order.
func (m *Main) Wishes() []*Wish {
	out := make([]*Wish, 0, len(m.wishes))
	for _, w := range m.wishes {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].id, out[j].id) })
	return out
}

// Sync brings the registry in line with the game: new units, colonies and
// players get AI wrappers, wrappers of vanished objects are disposed.
func (m *Main) Sync() {
	for _, p := range m.Game.Players {
		if m.players[p.ID] == nil && !p.Dead {
			m.players[p.ID] = &Player{ID: p.ID, main: m}
		}
	}
	for id, p := range m.players {
		if mp := m.Game.Player(id); mp == nil || mp.Dead {
			delete(m.players, p.ID)
		}
	}

	for _, a := range m.sortedUnits() {
		if a.Unit() == nil {
			slog.Debug("ai unit lost its unit", "unit", a.id)
			a.Dispose()
		}
	}
	for id := range m.Game.Units {
		if m.units[id] == nil {
			m.units[id] = &AIUnit{id: id, main: m}
		}
	}

	for _, ac := range m.sortedColonies() {
		if ac.Colony() == nil {
			ac.Dispose()
		}
	}
	for id := range m.Game.Colonies {
		if m.colonies[id] == nil {
			m.colonies[id] = &AIColony{id: id, main: m}
		}
	}
}

// DoWork runs one AI pass for a player.
func (m *Main) DoWork(player string, turn int) {
	if p := m.players[player]; p != nil {
		p.DoWork(turn)
	}
}

// AcceptDemand is asked by the game when natives demand tribute from a
// colony. Colonies with at least two defenders refuse.
func (m *Main) AcceptDemand(colony, goods string, amount int) bool {
	c := m.Game.Colony(colony)
	if c == nil {
		return false
	}
	if len(m.Game.Defenders(c)) >= 2 {
		slog.Debug("demand refused", "colony", c.Name, "goods", goods, "amount", amount)
		return false
	}
	return true
}

func (m *Main) sortedUnits() []*AIUnit {
	out := make([]*AIUnit, 0, len(m.units))
	for _, a := range m.units {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].id, out[j].id) })
	return out
}

func (m *Main) sortedColonies() []*AIColony {
	out := make([]*AIColony, 0, len(m.colonies))
	for _, c := range m.colonies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].id, out[j].id) })
	return out
}

func (m *Main) sortedGoods() []*AIGoods {
	out := make([]*AIGoods, 0, len(m.goods))
	for _, g := range m.goods {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].id, out[j].id) })
	return out
}

// lessID orders ids by prefix, then numerically.
func lessID(a, b string) bool {
	ka, kb := model.Kind(a), model.Kind(b)
	if ka != kb {
		return ka < kb
	}
	return model.Seq(a) < model.Seq(b)
}
