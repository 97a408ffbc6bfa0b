package engine

import (
	"encoding/json"
	"testing"

	"github.com/talgya/frontier/internal/entropy"
	"github.com/talgya/frontier/internal/model"
	"github.com/talgya/frontier/internal/rules"
	"github.com/talgya/frontier/internal/social"
	"github.com/talgya/frontier/internal/world"
)

// fixture is a radius-3 map of a single terrain with a Dutch colony at
// (2,0) and an empty Arawak camp at (0,0), the two nations at peace.
type fixture struct {
	sim    *Simulation
	g      *model.Game
	dutch  *model.Player
	arawak *model.Player
	colony *model.Colony
	camp   *model.IndianSettlement
}

func newFixture(t *testing.T, terrain world.Terrain) *fixture {
	t.Helper()
	wm := world.NewMap(3)
	for q := -3; q <= 3; q++ {
		for r := -3; r <= 3; r++ {
			c := world.HexCoord{Q: q, R: r}
			if wm.InBounds(c) {
				wm.Set(&world.Tile{Coord: c, Terrain: terrain})
			}
		}
	}
	g := model.NewGame(rules.Default(), wm)
	f := &fixture{g: g}
	f.dutch = g.AddPlayer("Dutch", true)
	f.arawak = g.AddPlayer("Arawak", false)
	g.SetStance(f.arawak.ID, f.dutch.ID, social.Peace)
	f.colony = g.CreateColony("Fort Orange", f.dutch.ID, world.HexCoord{Q: 2, R: 0})
	f.camp = g.CreateSettlement("Taino", f.arawak.ID, "camp", false, world.HexCoord{})

	sim, err := NewSimulation(g, entropy.NewSource(7))
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	f.sim = sim
	return f
}

func TestNewTurnAdvances(t *testing.T) {
	f := newFixture(t, world.TerrainPlains)
	f.g.AddBraves(f.camp, 3)
	f.g.CreateUnit("free_colonist", f.dutch.ID, f.colony.Coord, f.colony.ID)

	f.sim.NewTurn()

	if f.g.Turn != 1 || f.sim.Turn() != 1 || f.sim.Stats.Turn != 1 {
		t.Errorf("turn = %d, stats turn = %d, want 1", f.g.Turn, f.sim.Stats.Turn)
	}
	if f.sim.Stats.Settlements != 1 || f.sim.Stats.Colonies != 1 {
		t.Errorf("stats = %+v", f.sim.Stats)
	}
	if f.colony.GoodsCount("food") <= 0 {
		t.Error("colony harvested no food")
	}
}

func TestNewTurnDeterministic(t *testing.T) {
	play := func() ([]byte, int) {
		cfg := DefaultSetupConfig()
		cfg.Map = world.SmallTestConfig()
		cfg.Europeans = cfg.Europeans[:2]
		cfg.Natives = cfg.Natives[:2]
		cfg.SettlementsPerNation = 2
		cfg.ColoniesPerPlayer = 1
		rng := entropy.NewSource(11)
		g := NewGame(rules.Default(), cfg, rng)
		sim, err := NewSimulation(g, rng)
		if err != nil {
			t.Fatalf("NewSimulation: %v", err)
		}
		for i := 0; i < 6; i++ {
			sim.NewTurn()
		}
		data, err := json.Marshal(g)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return data, rng.Draws()
	}

	first, draws := play()
	for i := 0; i < 3; i++ {
		again, d := play()
		if string(again) != string(first) || d != draws {
			t.Fatalf("run %d diverged (draws %d vs %d)", i+1, d, draws)
		}
	}
}

func TestRecordTrimsEvents(t *testing.T) {
	f := newFixture(t, world.TerrainPlains)
	var seen int
	f.sim.OnEvent = func(Event) { seen++ }
	for i := 0; i < maxEvents+25; i++ {
		f.sim.record("test", "event %d", i)
	}
	if len(f.sim.Events) != maxEvents {
		t.Errorf("events = %d, want %d", len(f.sim.Events), maxEvents)
	}
	if seen != maxEvents+25 {
		t.Errorf("observer saw %d events", seen)
	}
	recent := f.sim.RecentEvents(2)
	if len(recent) != 2 || recent[1].Description != "event 1024" {
		t.Errorf("recent = %+v", recent)
	}
}

func TestResetUnitsRepairsShips(t *testing.T) {
	f := newFixture(t, world.TerrainOcean)
	ship := f.g.CreateUnit("caravel", f.dutch.ID, world.HexCoord{Q: -1, R: 0}, "")
	ship.RepairTurns = 2
	ship.MovesLeft = 3
	f.sim.resetUnits()
	if ship.RepairTurns != 1 || ship.MovesLeft != 0 {
		t.Errorf("repair = %d, moves = %d", ship.RepairTurns, ship.MovesLeft)
	}
	f.sim.resetUnits()
	f.sim.resetUnits()
	if ship.RepairTurns != 0 || ship.MovesLeft != 4 {
		t.Errorf("repaired ship: repair = %d, moves = %d", ship.RepairTurns, ship.MovesLeft)
	}
}

func TestCheckForDeath(t *testing.T) {
	f := newFixture(t, world.TerrainPlains)
	f.g.SetAlarm(f.camp, f.dutch.ID, 300)
	f.g.DisposeColony(f.colony)
	f.sim.checkForDeath()
	if !f.dutch.Dead {
		t.Fatal("player without colonies or units survived")
	}
	if f.camp.AlarmFor(f.dutch.ID) != nil {
		t.Error("alarm toward a dead player kept")
	}
	if f.arawak.Dead {
		t.Error("nation with a settlement died")
	}
}

func TestNewGamePlacesEveryone(t *testing.T) {
	cfg := DefaultSetupConfig()
	cfg.Map = world.SmallTestConfig()
	cfg.Europeans = cfg.Europeans[:1]
	cfg.Natives = cfg.Natives[:1]
	cfg.SettlementsPerNation = 2
	cfg.ColoniesPerPlayer = 1
	g := NewGame(rules.Default(), cfg, entropy.NewSource(3))

	if len(g.Players) != 2 {
		t.Fatalf("players = %d", len(g.Players))
	}
	dutch, natives := g.Players[0], g.Players[1]
	if dutch.Gold != cfg.StartingGold {
		t.Errorf("gold = %d", dutch.Gold)
	}
	if natives.StanceTo(dutch.ID) != social.Peace {
		t.Errorf("stance = %s, want peace", natives.StanceTo(dutch.ID))
	}
	capitals := 0
	for _, is := range g.AllSettlements() {
		if is.Capital {
			capitals++
		}
		if len(is.Units) == 0 || len(is.OwnedUnits) != len(is.Units) {
			t.Errorf("%s: units %d, owned %d", is.Name, len(is.Units), len(is.OwnedUnits))
		}
	}
	if len(g.Settlements) > 0 && capitals != 1 {
		t.Errorf("capitals = %d, want 1", capitals)
	}
	for _, c := range g.AllColonies() {
		if len(c.Units) != 2 {
			t.Errorf("%s workers = %d, want 2", c.Name, len(c.Units))
		}
	}
}
