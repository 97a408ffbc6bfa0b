package model

import (
	"testing"

	"github.com/talgya/frontier/internal/rules"
	"github.com/talgya/frontier/internal/social"
	"github.com/talgya/frontier/internal/world"
)

// flatGame builds a game on an all-plains map with one ocean tile at (2,0).
func flatGame(t *testing.T) (*Game, *Player, *Player) {
	t.Helper()
	m := world.NewMap(4)
	for q := -4; q <= 4; q++ {
		for r := -4; r <= 4; r++ {
			c := world.HexCoord{Q: q, R: r}
			if !m.InBounds(c) {
				continue
			}
			m.Set(&world.Tile{Coord: c, Terrain: world.TerrainPlains})
		}
	}
	m.Get(world.HexCoord{Q: 2, R: 0}).Terrain = world.TerrainOcean
	g := NewGame(rules.Default(), m)
	dutch := g.AddPlayer("Dutch", true)
	arawak := g.AddPlayer("Arawak", false)
	return g, dutch, arawak
}

func TestUpdateMostHated(t *testing.T) {
	s := social.Scale{Happy: 10, Content: 30, Displeased: 50, Angry: 80, Hateful: 100}
	is := &IndianSettlement{Alarm: map[string]*social.Tension{
		"A": {Value: 40},
		"B": {Value: 70},
		"C": {Value: 0},
	}}
	if !is.UpdateMostHated([]string{"A", "B", "C"}, s) {
		t.Fatal("expected most hated to change")
	}
	if is.MostHated != "B" {
		t.Errorf("most hated = %q, want B", is.MostHated)
	}

	is.Alarm["B"].Value = 5
	is.UpdateMostHated([]string{"A", "B", "C"}, s)
	if is.MostHated != "A" {
		t.Errorf("most hated = %q, want A", is.MostHated)
	}

	is.Alarm["A"].Value = 0
	is.UpdateMostHated([]string{"A", "B", "C"}, s)
	if is.MostHated != "" {
		t.Errorf("most hated = %q, want none when all happy", is.MostHated)
	}
}

func TestChangeAlarm(t *testing.T) {
	g, dutch, arawak := flatGame(t)
	is := g.CreateSettlement("Taino", arawak.ID, "camp", false, world.HexCoord{})

	if g.ChangeAlarm(is, arawak.ID, 500) {
		t.Error("alarm toward the owner must be ignored")
	}
	if _, ok := is.Alarm[arawak.ID]; ok {
		t.Fatal("alarm map holds the owner")
	}

	if !g.ChangeAlarm(is, dutch.ID, 200) {
		t.Error("happy to content should report a change")
	}
	if is.MostHated != dutch.ID {
		t.Errorf("most hated = %q, want %q", is.MostHated, dutch.ID)
	}
	if g.ChangeAlarm(is, dutch.ID, 10) {
		t.Error("small change inside a level reported as a change")
	}
	g.ChangeAlarm(is, dutch.ID, 5000)
	if got := is.AlarmFor(dutch.ID).Value; got != g.Rules.Tension.Hateful {
		t.Errorf("alarm = %d, want clamp at %d", got, g.Rules.Tension.Hateful)
	}
}

func TestInitialAlarmFollowsNation(t *testing.T) {
	g, dutch, arawak := flatGame(t)
	arawak.ModifyTension(dutch.ID, 650, g.Scale())
	is := g.CreateSettlement("Taino", arawak.ID, "camp", false, world.HexCoord{})
	g.ChangeAlarm(is, dutch.ID, 0)
	if got := is.AlarmFor(dutch.ID).Value; got != 650 {
		t.Errorf("initial alarm = %d, want 650", got)
	}
}

func TestTotalProductionOf(t *testing.T) {
	g, _, arawak := flatGame(t)
	is := g.CreateSettlement("Taino", arawak.ID, "camp", false, world.HexCoord{Q: -2, R: 0})
	if got := g.TotalProductionOf(is, "grain"); got != 5 {
		t.Errorf("empty settlement grain = %d, want centre only 5", got)
	}
	g.AddBraves(is, 2)
	if got := g.TotalProductionOf(is, "grain"); got != 15 {
		t.Errorf("grain with 2 units = %d, want 15", got)
	}
	if got := g.FoodConsumption(is); got != 4 {
		t.Errorf("food consumption = %d, want 4", got)
	}
}

func TestUpdateWantedGoods(t *testing.T) {
	g, _, arawak := flatGame(t)
	is := g.CreateSettlement("Taino", arawak.ID, "camp", false, world.HexCoord{Q: -2, R: 0})
	want := []string{"silver", "rum", "cigars"}
	if len(is.WantedGoods) != len(want) {
		t.Fatalf("wanted = %v, want %v", is.WantedGoods, want)
	}
	for i := range want {
		if is.WantedGoods[i] != want[i] {
			t.Errorf("wanted[%d] = %s, want %s", i, is.WantedGoods[i], want[i])
		}
	}
}

func TestMoveType(t *testing.T) {
	g, dutch, arawak := flatGame(t)
	colony := g.CreateColony("Nieuw", dutch.ID, world.HexCoord{Q: 0, R: 0})
	is := g.CreateSettlement("Taino", arawak.ID, "camp", false, world.HexCoord{Q: -2, R: 0})

	brave := g.CreateUnit("brave", arawak.ID, world.HexCoord{Q: -1, R: 0}, "")
	colonist := g.CreateUnit("free_colonist", dutch.ID, world.HexCoord{Q: 1, R: 0}, "")
	tired := g.CreateUnit("free_colonist", dutch.ID, world.HexCoord{Q: 0, R: 1}, "")
	tired.MovesLeft = 0

	east := world.DirectionTo(world.HexCoord{Q: -1, R: 0}, colony.Coord)
	west := world.DirectionTo(world.HexCoord{Q: -1, R: 0}, is.Coord)
	toOcean := world.DirectionTo(colonist.Coord, world.HexCoord{Q: 2, R: 0})

	tests := []struct {
		name string
		unit *Unit
		dir  world.Direction
		want MoveType
	}{
		{"brave attacks colony", brave, east, AttackSettlement},
		{"brave enters home", brave, west, Move},
		{"colonist cannot swim", colonist, toOcean, MoveIllegal},
		{"no moves", tired, east, MoveNoMoves},
		{"bad direction", colonist, world.NoDirection, MoveNoTile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.MoveType(tt.unit, tt.dir); got != tt.want {
				t.Errorf("MoveType = %v, want %v", got, tt.want)
			}
		})
	}

	g.CreateUnit("caravel", dutch.ID, world.HexCoord{Q: 2, R: 0}, "")
	if got := g.MoveType(colonist, toOcean); got != Embark {
		t.Errorf("with carrier MoveType = %v, want embark", got)
	}

	g.SetLocation(brave, "", world.HexCoord{Q: 1, R: -1})
	toColonist := world.DirectionTo(brave.Coord, colonist.Coord)
	if got := g.MoveType(brave, toColonist); got != AttackUnit {
		t.Errorf("brave next to colonist = %v, want attack-unit", got)
	}
	toBrave := world.DirectionTo(colonist.Coord, brave.Coord)
	if got := g.MoveType(colonist, toBrave); got != MoveNoAccess {
		t.Errorf("unarmed colonist into brave = %v, want no-access", got)
	}
}

func TestDisposeCarrierTakesPassengers(t *testing.T) {
	g, dutch, _ := flatGame(t)
	ship := g.CreateUnit("caravel", dutch.ID, world.HexCoord{Q: 2, R: 0}, "")
	p := g.CreateUnit("free_colonist", dutch.ID, world.HexCoord{}, ship.ID)
	if !p.OnCarrier() || p.Coord != ship.Coord {
		t.Fatalf("passenger not aboard: %+v", p)
	}
	if got := g.SpaceLeft(ship); got != 1 {
		t.Errorf("space left = %d, want 1", got)
	}
	g.DisposeUnit(ship)
	if g.Unit(p.ID) != nil || !p.Disposed {
		t.Error("passenger survived its carrier")
	}
	if len(g.Map.Get(ship.Coord).Units) != 0 {
		t.Error("tile still lists the carrier")
	}
}

func TestDisposeSettlement(t *testing.T) {
	g, dutch, arawak := flatGame(t)
	is := g.CreateSettlement("Taino", arawak.ID, "camp", false, world.HexCoord{Q: -2, R: 0})
	g.AddBraves(is, 2)
	outside := g.CreateUnit("brave", arawak.ID, world.HexCoord{Q: -3, R: 0}, "")
	outside.Home = is.ID
	is.OwnedUnits = append(is.OwnedUnits, outside.ID)
	priest := g.CreateUnit("jesuit_missionary", dutch.ID, world.HexCoord{Q: -1, R: 0}, "")
	g.HouseMissionary(is, priest)

	g.DisposeSettlement(is)
	if g.Settlement(is.ID) != nil {
		t.Fatal("settlement still registered")
	}
	if g.Map.Get(is.Coord).Settlement != "" {
		t.Error("tile still holds the settlement")
	}
	if outside.Home != "" {
		t.Error("brave outside kept its home")
	}
	if g.Unit(priest.ID) != nil {
		t.Error("missionary survived")
	}
	if got := len(g.UnitsOf(arawak.ID)); got != 1 {
		t.Errorf("native units left = %d, want 1", got)
	}
}

func TestLocationResolution(t *testing.T) {
	g, dutch, _ := flatGame(t)
	c := g.CreateColony("Nieuw", dutch.ID, world.HexCoord{Q: 1, R: 1})
	tests := []struct {
		id string
		ok bool
	}{
		{c.ID, true},
		{TileID(world.HexCoord{Q: 1, R: 1}), true},
		{TileID(world.HexCoord{Q: 9, R: 9}), false},
		{"colony:999", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := g.LocationExists(tt.id); got != tt.ok {
			t.Errorf("LocationExists(%q) = %v, want %v", tt.id, got, tt.ok)
		}
	}
	if !g.SameLocation(c.ID, TileID(c.Coord)) {
		t.Error("colony and its tile should be the same location")
	}
}

func TestReindexKeepsArrivalOrder(t *testing.T) {
	g, dutch, arawak := flatGame(t)
	at := world.HexCoord{Q: 1, R: 1}
	late := g.CreateUnit("free_colonist", dutch.ID, world.HexCoord{Q: 1, R: 0}, "")
	early := g.CreateUnit("free_colonist", dutch.ID, at, "")
	g.MoveUnitTo(late, at)
	lost := g.CreateUnit("free_colonist", dutch.ID, at, "")
	is := g.CreateSettlement("Taino", arawak.ID, "camp", false, world.HexCoord{Q: -2, R: 0})

	tile := g.Map.Get(at)
	tile.Units = []string{early.ID, late.ID, "unit:999"}
	g.Map.Get(is.Coord).Settlement = ""

	g.Reindex()

	want := []string{early.ID, late.ID, lost.ID}
	if len(tile.Units) != 3 || tile.Units[0] != want[0] || tile.Units[1] != want[1] || tile.Units[2] != want[2] {
		t.Errorf("tile units = %v, want %v", tile.Units, want)
	}
	if g.Map.Get(is.Coord).Settlement != is.ID {
		t.Error("settlement index not rebuilt")
	}
}
