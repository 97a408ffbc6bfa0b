package engine

import (
	"testing"

	"github.com/talgya/frontier/internal/model"
	"github.com/talgya/frontier/internal/social"
	"github.com/talgya/frontier/internal/world"
)

func TestServerMove(t *testing.T) {
	f := newFixture(t, world.TerrainPlains)
	u := f.g.CreateUnit("free_colonist", f.dutch.ID, world.HexCoord{Q: 0, R: 2}, "")
	d := world.DirectionTo(u.Coord, world.HexCoord{Q: 1, R: 1})

	if !f.sim.Server.Move(u, d) {
		t.Fatal("move failed")
	}
	if u.Coord != (world.HexCoord{Q: 1, R: 1}) || u.MovesLeft != 0 {
		t.Errorf("coord = %v, moves = %d", u.Coord, u.MovesLeft)
	}
	if f.sim.Server.Move(u, d) {
		t.Error("moved without moves left")
	}
	if u.Coord != (world.HexCoord{Q: 1, R: 1}) {
		t.Error("failed move changed the coordinate")
	}
}

func TestServerMoveRefusesAttack(t *testing.T) {
	f := newFixture(t, world.TerrainPlains)
	f.g.AddBraves(f.camp, 1)
	soldier := f.g.CreateUnit("veteran_soldier", f.dutch.ID, world.HexCoord{Q: 1, R: 0}, "")
	d := world.DirectionTo(soldier.Coord, f.camp.Coord)
	if f.sim.Server.Move(soldier, d) {
		t.Error("move into a foreign settlement succeeded")
	}
	if soldier.Coord != (world.HexCoord{Q: 1, R: 0}) || f.sim.Stats.Battles != 0 {
		t.Error("refused move changed state")
	}
}

func TestServerEmbarkAndDisembark(t *testing.T) {
	f := newFixture(t, world.TerrainPlains)
	f.g.Map.Get(world.HexCoord{Q: 3, R: 0}).Terrain = world.TerrainOcean
	ship := f.g.CreateUnit("caravel", f.dutch.ID, world.HexCoord{Q: 3, R: 0}, "")
	u := f.g.CreateUnit("free_colonist", f.dutch.ID, f.colony.Coord, "")

	if !f.sim.Server.Embark(u, ship, world.DirectionTo(u.Coord, ship.Coord)) {
		t.Fatal("embark failed")
	}
	if u.Location != ship.ID || u.Coord != ship.Coord {
		t.Fatalf("location = %q, coord = %v", u.Location, u.Coord)
	}
	if f.sim.Server.Disembark(u) {
		t.Error("disembarked at sea")
	}

	// Sail into the colony and put the colonist ashore.
	if !f.sim.Server.Move(ship, world.DirectionTo(ship.Coord, f.colony.Coord)) {
		t.Fatal("ship could not enter the colony")
	}
	if u.Coord != f.colony.Coord {
		t.Fatalf("passenger left behind at %v", u.Coord)
	}
	if !f.sim.Server.Disembark(u) || u.OnCarrier() {
		t.Error("disembark in the colony failed")
	}
}

func TestServerCargo(t *testing.T) {
	f := newFixture(t, world.TerrainPlains)
	wagon := f.g.CreateUnit("wagon_train", f.dutch.ID, f.colony.Coord, "")
	f.colony.Goods.Add("furs", 250)

	if !f.sim.Server.LoadCargo(wagon, "furs", 250) {
		t.Fatal("load failed")
	}
	if wagon.Cargo.Count("furs") != 200 || f.colony.GoodsCount("furs") != 50 {
		t.Errorf("wagon = %d, colony = %d, want 200 and 50", wagon.Cargo.Count("furs"), f.colony.GoodsCount("furs"))
	}
	if f.sim.Server.LoadCargo(wagon, "furs", 50) {
		t.Error("loaded into a full wagon")
	}
	if !f.sim.Server.UnloadCargo(wagon, "furs", 120) {
		t.Fatal("unload failed")
	}
	if wagon.Cargo.Count("furs") != 80 || f.colony.GoodsCount("furs") != 170 {
		t.Errorf("wagon = %d, colony = %d, want 80 and 170", wagon.Cargo.Count("furs"), f.colony.GoodsCount("furs"))
	}

	away := f.g.CreateUnit("wagon_train", f.dutch.ID, world.HexCoord{Q: 1, R: 1}, "")
	if f.sim.Server.LoadCargo(away, "furs", 10) {
		t.Error("loaded away from any settlement")
	}
}

func TestServerSellGoods(t *testing.T) {
	f := newFixture(t, world.TerrainPlains)
	f.colony.Goods.Add("furs", 150)
	if f.sim.Server.SellGoods(f.colony, "furs", 200) {
		t.Error("sold more than stored")
	}
	if !f.sim.Server.SellGoods(f.colony, "furs", 100) {
		t.Fatal("sale failed")
	}
	if f.dutch.Gold != 400 || f.colony.GoodsCount("furs") != 50 {
		t.Errorf("gold = %d, furs = %d", f.dutch.Gold, f.colony.GoodsCount("furs"))
	}
	if f.dutch.Market.Entries["furs"].Price != 3 {
		t.Errorf("furs price = %d, want 3 after a full load", f.dutch.Market.Entries["furs"].Price)
	}
}

func TestServerEquipForRole(t *testing.T) {
	f := newFixture(t, world.TerrainPlains)
	u := f.g.CreateUnit("free_colonist", f.dutch.ID, f.colony.Coord, "")
	f.colony.Goods.Add("muskets", 60)
	f.colony.Goods.Add("horses", 20)

	if !f.sim.Server.EquipForRole(u, "soldier") || u.Role != "soldier" {
		t.Fatal("could not arm the colonist")
	}
	if f.colony.GoodsCount("muskets") != 10 {
		t.Errorf("muskets = %d, want 10", f.colony.GoodsCount("muskets"))
	}
	if f.sim.Server.EquipForRole(u, "dragoon") || u.Role != "soldier" {
		t.Error("became a dragoon without enough horses")
	}
	if f.colony.GoodsCount("horses") != 20 {
		t.Error("failed equip consumed horses")
	}
	if !f.sim.Server.EquipForRole(u, "default") || f.colony.GoodsCount("muskets") != 60 {
		t.Errorf("disarming returned muskets = %d, want 60", f.colony.GoodsCount("muskets"))
	}
}

func TestServerJoinColonyAndFortify(t *testing.T) {
	f := newFixture(t, world.TerrainPlains)
	u := f.g.CreateUnit("free_colonist", f.dutch.ID, world.HexCoord{Q: 1, R: 0}, "")
	if f.sim.Server.JoinColony(u, f.colony) {
		t.Error("joined from a neighbouring tile")
	}
	f.g.MoveUnitTo(u, f.colony.Coord)
	if !f.sim.Server.JoinColony(u, f.colony) || u.Location != f.colony.ID {
		t.Fatal("join failed")
	}
	if f.sim.Server.Fortify(u) {
		t.Error("a worker inside the colony fortified")
	}

	guard := f.g.CreateUnit("veteran_soldier", f.dutch.ID, f.colony.Coord, "")
	if !f.sim.Server.Fortify(guard) || !guard.Fortified {
		t.Error("guard did not fortify")
	}
}

func TestServerIndianDemand(t *testing.T) {
	tests := []struct {
		name       string
		defenders  int
		goods      string
		want       bool
		wantCargo  int
		wantColony int
		wantAlarm  int
	}{
		{"undefended colony pays goods", 0, "furs", true, 100, 100, 450},
		{"defended colony refuses", 2, "furs", false, 0, 200, 600},
		{"undefended colony pays gold", 0, "", true, 0, 200, 450},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, world.TerrainPlains)
			f.g.SetStance(f.arawak.ID, f.dutch.ID, social.War)
			f.g.SetAlarm(f.camp, f.dutch.ID, 500)
			f.colony.Goods.Add("furs", 200)
			f.dutch.Gold = 1000
			for i := 0; i < tt.defenders; i++ {
				f.g.CreateUnit("veteran_soldier", f.dutch.ID, f.colony.Coord, "")
			}
			brave := f.g.CreateUnit("brave", f.arawak.ID, world.HexCoord{Q: 1, R: 0}, "")
			brave.Home = f.camp.ID
			f.camp.OwnedUnits = append(f.camp.OwnedUnits, brave.ID)
			f.g.Turn = 7

			if got := f.sim.Server.IndianDemand(brave, f.colony, tt.goods, 100); got != tt.want {
				t.Fatalf("accepted = %v, want %v", got, tt.want)
			}
			if got := brave.Cargo.Count("furs"); got != tt.wantCargo {
				t.Errorf("cargo = %d, want %d", got, tt.wantCargo)
			}
			if got := f.colony.GoodsCount("furs"); got != tt.wantColony {
				t.Errorf("colony furs = %d, want %d", got, tt.wantColony)
			}
			if got := f.camp.AlarmFor(f.dutch.ID).Value; got != tt.wantAlarm {
				t.Errorf("alarm = %d, want %d", got, tt.wantAlarm)
			}
			if tt.want {
				if f.camp.LastTribute != 7 {
					t.Errorf("last tribute = %d, want 7", f.camp.LastTribute)
				}
				if tt.goods == "" && (f.dutch.Gold != 900 || f.arawak.Gold != 100) {
					t.Errorf("gold: dutch %d, arawak %d", f.dutch.Gold, f.arawak.Gold)
				}
			}
		})
	}
}

func TestServerDeliverGift(t *testing.T) {
	f := newFixture(t, world.TerrainPlains)
	f.g.SetAlarm(f.camp, f.dutch.ID, 300)
	brave := f.g.CreateUnit("brave", f.arawak.ID, world.HexCoord{Q: 1, R: 0}, "")
	brave.Home = f.camp.ID
	brave.Cargo.Add("furs", 60)

	if f.sim.Server.DeliverGift(brave, f.colony, "furs", 80) {
		t.Error("delivered more than carried")
	}
	if !f.sim.Server.DeliverGift(brave, f.colony, "furs", 60) {
		t.Fatal("gift refused")
	}
	if f.colony.GoodsCount("furs") != 60 || brave.Cargo.HasGoods() {
		t.Errorf("colony furs = %d", f.colony.GoodsCount("furs"))
	}
	if got := f.camp.AlarmFor(f.dutch.ID).Value; got != 200 {
		t.Errorf("alarm = %d, want 200", got)
	}
}

func TestCombatLoser(t *testing.T) {
	tests := []struct {
		name     string
		unitType string
		role     string
		check    func(t *testing.T, f *fixture, u *model.Unit)
	}{
		{"ship is damaged", "caravel", "default", func(t *testing.T, f *fixture, u *model.Unit) {
			if u.Disposed || u.RepairTurns != shipRepairTurns || u.Cargo.HasGoods() || len(u.Units) != 0 {
				t.Errorf("ship = %+v", u)
			}
		}},
		{"dragoon loses its horses", "veteran_soldier", "dragoon", func(t *testing.T, f *fixture, u *model.Unit) {
			if u.Disposed || u.Role != "soldier" {
				t.Errorf("role = %q, disposed = %v", u.Role, u.Disposed)
			}
		}},
		{"colonist dies", "free_colonist", "default", func(t *testing.T, f *fixture, u *model.Unit) {
			if !u.Disposed || f.g.Unit(u.ID) != nil {
				t.Error("colonist survived")
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, world.TerrainPlains)
			u := f.g.CreateUnit(tt.unitType, f.dutch.ID, world.HexCoord{Q: 1, R: 1}, "")
			u.Role = tt.role
			if f.g.IsNaval(u) {
				u.Cargo.Add("furs", 100)
				f.g.CreateUnit("free_colonist", f.dutch.ID, u.Coord, u.ID)
			}
			f.sim.loseCombat(u)
			tt.check(t, f, u)
		})
	}
}

func TestAttackUndefendedSettlement(t *testing.T) {
	f := newFixture(t, world.TerrainPlains)
	soldier := f.g.CreateUnit("veteran_soldier", f.dutch.ID, world.HexCoord{Q: 1, R: 0}, "")
	if !f.sim.Server.Attack(soldier, world.DirectionTo(soldier.Coord, f.camp.Coord)) {
		t.Fatal("attack refused")
	}
	if f.g.Settlement(f.camp.ID) != nil {
		t.Error("undefended settlement survived")
	}
	if f.arawak.StanceTo(f.dutch.ID) != social.War {
		t.Errorf("stance = %s, want war", f.arawak.StanceTo(f.dutch.ID))
	}
	if got := f.arawak.TensionValue(f.dutch.ID); got != f.g.Rules.Alarm.SettlementAttacked/2 {
		t.Errorf("tension = %d, want %d", got, f.g.Rules.Alarm.SettlementAttacked/2)
	}
	if soldier.MovesLeft != 0 || f.sim.Stats.Battles != 1 {
		t.Errorf("moves = %d, battles = %d", soldier.MovesLeft, f.sim.Stats.Battles)
	}
}

func TestAttackDefendedSettlementIsDecided(t *testing.T) {
	f := newFixture(t, world.TerrainPlains)
	f.g.AddBraves(f.camp, 1)
	brave := f.g.Unit(f.camp.Units[0])
	soldier := f.g.CreateUnit("veteran_soldier", f.dutch.ID, world.HexCoord{Q: 1, R: 0}, "")
	soldier.Role = "soldier"

	f.sim.Server.Attack(soldier, world.DirectionTo(soldier.Coord, f.camp.Coord))

	if brave.Disposed == soldier.Disposed && soldier.Role == "soldier" {
		t.Error("combat had no loser")
	}
	if f.g.Settlement(f.camp.ID) == nil {
		t.Error("defended settlement destroyed in one attack")
	}
}

func TestCombatPanicsOnNonAttack(t *testing.T) {
	f := newFixture(t, world.TerrainPlains)
	u := f.g.CreateUnit("veteran_soldier", f.dutch.ID, world.HexCoord{Q: 1, R: 1}, "")
	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	f.sim.resolveCombat(u, f.g.Map.Get(world.HexCoord{Q: 1, R: 2}), model.Move)
}
