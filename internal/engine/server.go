// Command server: the only way the AI changes the game. Every command
// validates first and reports failure without touching any state.
package engine

import (
	"log/slog"

	"github.com/talgya/frontier/internal/ai"
	"github.com/talgya/frontier/internal/model"
	"github.com/talgya/frontier/internal/world"
)

// Server executes AI commands against the simulation's game. Its methods
// run inside NewTurn and rely on the lock NewTurn holds.
type Server struct {
	sim *Simulation
}

var _ ai.Dispatcher = (*Server)(nil)

func (s *Server) game() *model.Game { return s.sim.Game }

// Move steps the unit one tile. Only plain moves are executed; boarding
// and attacking have their own commands.
func (s *Server) Move(u *model.Unit, d world.Direction) bool {
	g := s.game()
	if g.MoveType(u, d) != model.Move {
		return false
	}
	to := g.Map.Neighbor(u.Coord, d)
	g.MoveUnitTo(u, to.Coord)
	u.MovesLeft--
	return true
}

// Attack resolves combat against whatever holds the adjacent tile.
func (s *Server) Attack(u *model.Unit, d world.Direction) bool {
	g := s.game()
	mt := g.MoveType(u, d)
	if !mt.IsAttack() {
		return false
	}
	s.sim.resolveCombat(u, g.Map.Neighbor(u.Coord, d), mt)
	return true
}

// Embark boards a carrier on the same tile or the adjacent one in d.
func (s *Server) Embark(u, carrier *model.Unit, d world.Direction) bool {
	g := s.game()
	if u == nil || carrier == nil || u.Disposed || carrier.Disposed || u.Owner != carrier.Owner {
		return false
	}
	if u.Location == carrier.ID || !g.CouldCarry(carrier, u) || g.SpaceLeft(carrier) < g.SpaceTaken(u) {
		return false
	}
	if model.Kind(u.Location) == model.PrefixColony {
		return false
	}
	if d == world.NoDirection {
		if u.Coord != carrier.Coord {
			return false
		}
		g.SetLocation(u, carrier.ID, carrier.Coord)
		return true
	}
	if u.MovesLeft <= 0 || u.RepairTurns > 0 || u.Coord.Step(d) != carrier.Coord {
		return false
	}
	g.SetLocation(u, carrier.ID, carrier.Coord)
	u.MovesLeft = 0
	return true
}

// Disembark puts a passenger ashore on its carrier's tile, which must be
// land (a carrier docked in a colony).
func (s *Server) Disembark(u *model.Unit) bool {
	g := s.game()
	if u == nil || !u.OnCarrier() {
		return false
	}
	carrier := g.Unit(u.Location)
	if carrier == nil {
		return false
	}
	t := g.Map.Get(carrier.Coord)
	if t == nil || !t.Land() {
		return false
	}
	g.MoveUnitTo(u, carrier.Coord)
	return true
}

// LoadCargo moves goods from the own settlement at the carrier's tile onto
// the carrier, as much as fits.
func (s *Server) LoadCargo(carrier *model.Unit, goods string, amount int) bool {
	g := s.game()
	store := s.ownStoreAt(carrier)
	if store == nil || amount <= 0 || g.Rules.Goods(goods) == nil {
		return false
	}
	n := min(amount, store.GoodsContainer().Count(goods), s.goodsRoom(carrier, goods))
	if n <= 0 {
		return false
	}
	carrier.Cargo.Add(goods, store.GoodsContainer().Remove(goods, n))
	return true
}

// UnloadCargo moves goods from the carrier into the own settlement at its
// tile, or dumps them overboard when there is none.
func (s *Server) UnloadCargo(carrier *model.Unit, goods string, amount int) bool {
	if carrier == nil || carrier.Disposed || amount <= 0 || carrier.Cargo.Count(goods) <= 0 {
		return false
	}
	n := carrier.Cargo.Remove(goods, amount)
	if store := s.ownStoreAt(carrier); store != nil {
		store.GoodsContainer().Add(goods, n)
	} else {
		slog.Debug("cargo dumped", "carrier", carrier.ID, "goods", goods, "amount", n)
	}
	return true
}

// SellGoods sells colony goods on the owner's market.
func (s *Server) SellGoods(c *model.Colony, goods string, amount int) bool {
	g := s.game()
	if c == nil || c.Disposed || amount <= 0 || c.GoodsCount(goods) < amount {
		return false
	}
	owner := g.Player(c.Owner)
	if owner == nil || owner.Market == nil {
		return false
	}
	c.Goods.Remove(goods, amount)
	gold := owner.Market.Sell(goods, amount)
	owner.ModifyGold(gold)
	s.sim.record("economy", "%s sells %d %s for %d gold", c.Name, amount, goods, gold)
	return true
}

// EquipForRole changes the unit's role. The difference in equipment is
// taken from, or returned to, the own settlement the unit is at.
func (s *Server) EquipForRole(u *model.Unit, role string) bool {
	g := s.game()
	if u == nil || u.Disposed || u.Role == role {
		return false
	}
	next := g.Rules.Role(role)
	if next == nil {
		return false
	}
	store := s.ownStoreAt(u)
	if store == nil {
		return false
	}
	need := make(map[string]int)
	for goods, n := range next.Goods {
		need[goods] += n
	}
	if cur := g.Rules.Role(u.Role); cur != nil {
		for goods, n := range cur.Goods {
			need[goods] -= n
		}
	}
	c := store.GoodsContainer()
	for goods, n := range need {
		if n > 0 && c.Count(goods) < n {
			return false
		}
	}
	for goods, n := range need {
		switch {
		case n > 0:
			c.Remove(goods, n)
		case n < 0:
			c.Add(goods, -n)
		}
	}
	u.Role = role
	return true
}

// IndianDemand asks the colony's owner for tribute. Accepted goods go into
// the demanding unit's cargo and gold goes to its nation; either way the
// home settlement's alarm reflects the answer.
func (s *Server) IndianDemand(u *model.Unit, c *model.Colony, goods string, amount int) bool {
	g := s.game()
	if u == nil || u.Disposed || c == nil || c.Disposed || amount <= 0 {
		return false
	}
	if world.Distance(u.Coord, c.Coord) > 1 {
		return false
	}
	natives, victim := g.Player(u.Owner), g.Player(c.Owner)
	if natives == nil || victim == nil || natives.European {
		return false
	}
	home := g.Settlement(u.Home)
	if goods != "" {
		amount = min(amount, c.GoodsCount(goods), s.goodsRoom(u, goods))
	} else {
		amount = min(amount, victim.Gold)
	}
	if amount <= 0 {
		return false
	}

	accepted := s.sim.AI.AcceptDemand(c.ID, goods, amount)
	if !accepted {
		s.sim.ModifyAlarm(home, c.Owner, g.Rules.Alarm.DemandRefused, true)
		s.sim.record("tribute", "%s refuses the demands of %s", c.Name, natives.Name)
		return false
	}
	if goods != "" {
		u.Cargo.Add(goods, c.Goods.Remove(goods, amount))
		s.sim.record("tribute", "%s hands %d %s to %s", c.Name, amount, goods, natives.Name)
	} else {
		victim.ModifyGold(-amount)
		natives.ModifyGold(amount)
		s.sim.record("tribute", "%s pays %d gold to %s", c.Name, amount, natives.Name)
	}
	if home != nil {
		home.LastTribute = g.Turn
	}
	s.sim.ModifyAlarm(home, c.Owner, g.Rules.Alarm.DemandAccepted, true)
	s.sim.Stats.Tributes++
	return true
}

// DeliverGift hands goods from a native unit's cargo to a colony.
func (s *Server) DeliverGift(u *model.Unit, c *model.Colony, goods string, amount int) bool {
	g := s.game()
	if u == nil || u.Disposed || c == nil || c.Disposed || amount <= 0 {
		return false
	}
	if world.Distance(u.Coord, c.Coord) > 1 || u.Cargo.Count(goods) < amount {
		return false
	}
	c.Goods.Add(goods, u.Cargo.Remove(goods, amount))
	s.sim.ModifyAlarm(g.Settlement(u.Home), c.Owner, g.Rules.Alarm.GiftDelivered, true)
	s.sim.record("gift", "%s receives %d %s from %s", c.Name, amount, goods, s.sim.playerName(u.Owner))
	return true
}

// EstablishMission installs a missionary at an adjacent native settlement,
// replacing a rival nation's missionary.
func (s *Server) EstablishMission(u *model.Unit, is *model.IndianSettlement) bool {
	g := s.game()
	if u == nil || u.Disposed || is == nil || is.Disposed || u.Owner == is.Owner {
		return false
	}
	if world.Distance(u.Coord, is.Coord) > 1 {
		return false
	}
	if old := g.Unit(is.Missionary); old != nil && old.Owner == u.Owner {
		return false
	}
	s.sim.ChangeMissionary(is, u)
	s.sim.ModifyAlarm(is, u.Owner, g.Rules.Alarm.MissionEstablished, true)
	s.sim.Stats.Missions++
	return true
}

// JoinColony makes a unit standing at an own colony one of its workers.
func (s *Server) JoinColony(u *model.Unit, c *model.Colony) bool {
	g := s.game()
	if u == nil || u.Disposed || c == nil || c.Disposed || u.Owner != c.Owner {
		return false
	}
	if u.Coord != c.Coord || u.Location == c.ID || g.IsNaval(u) || g.IsCarrier(u) {
		return false
	}
	g.SetLocation(u, c.ID, c.Coord)
	u.MovesLeft = 0
	return true
}

// Fortify digs the unit in where it stands.
func (s *Server) Fortify(u *model.Unit) bool {
	if u == nil || u.Disposed || u.Fortified || u.OnCarrier() || model.Kind(u.Location) == model.PrefixColony {
		return false
	}
	u.Fortified = true
	u.MovesLeft = 0
	return true
}

// ownStoreAt returns the goods store of the unit's own colony or native
// settlement at its tile, or nil.
func (s *Server) ownStoreAt(u *model.Unit) model.GoodsHolder {
	g := s.game()
	if u == nil || u.Disposed {
		return nil
	}
	t := g.Map.Get(u.Coord)
	if t == nil || t.Settlement == "" || g.SettlementOwner(t.Settlement) != u.Owner {
		return nil
	}
	return g.ContainerOf(t.Settlement)
}

// goodsRoom is how many units of goods still fit aboard u: free slots plus
// the unfilled part of a started load of the same type.
func (s *Server) goodsRoom(u *model.Unit, goods string) int {
	g := s.game()
	size := g.Rules.Constants.CargoSize
	free := g.SpaceLeft(u)
	if ut := g.UnitType(u); ut != nil && ut.Capacity == 0 {
		free = g.GoodsCapacity(u) - u.Cargo.Slots(size)
	}
	room := max(free, 0) * size
	if have := u.Cargo.Count(goods); have%size != 0 {
		room += size - have%size
	}
	return room
}
