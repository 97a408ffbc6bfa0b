package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/frontier/internal/model"
	"github.com/talgya/frontier/internal/social"
	"github.com/talgya/frontier/internal/world"
)

const (
	fortifyBonus    = 50 // Percent added to a fortified or garrisoned defender
	shipRepairTurns = 4
)

// resolveCombat settles an attack from u on the tile. One roll of
// offence against defence decides; the loser is demoted, damaged or
// destroyed. mt must be an attack classification for that tile.
func (s *Simulation) resolveCombat(u *model.Unit, t *world.Tile, mt model.MoveType) {
	g := s.Game
	defender := g.Defender(t)
	s.Stats.Battles++
	u.MovesLeft = 0
	u.Fortified = false

	switch mt {
	case model.AttackUnit:
		if defender == nil {
			panic(fmt.Sprintf("combat: unit attack on %s finds no defender", t.Coord))
		}
	case model.AttackSettlement:
		if g.Colony(t.Settlement) == nil && g.Settlement(t.Settlement) == nil {
			panic(fmt.Sprintf("combat: settlement attack on %s finds no settlement", t.Coord))
		}
	default:
		panic(fmt.Sprintf("combat: %s is not an attack", mt))
	}

	victim := ""
	if defender != nil {
		victim = defender.Owner
	} else {
		victim = g.SettlementOwner(t.Settlement)
	}
	s.declareWar(u.Owner, victim)
	s.angerNatives(u, t, defender, mt)

	if defender == nil {
		s.captureSettlement(u, t)
		return
	}

	off := g.Offence(u) * 100
	def := g.Defence(defender) * (100 + t.DefenceValue())
	if defender.Fortified || t.Settlement != "" {
		def += g.Defence(defender) * fortifyBonus
	}
	roll := s.Rand.Intn("combat "+u.ID+" vs "+defender.ID, off+def)
	if roll < off {
		s.record("combat", "%s defeats %s at %s", u.ID, defender.ID, t.Coord)
		s.loseCombat(defender)
	} else {
		s.record("combat", "%s repels %s at %s", defender.ID, u.ID, t.Coord)
		s.loseCombat(u)
	}
}

// loseCombat applies a defeat: ships are damaged and lose what they carry,
// armed units drop to their downgrade role, everything else dies.
func (s *Simulation) loseCombat(u *model.Unit) {
	g := s.Game
	if g.IsNaval(u) {
		for _, id := range append([]string(nil), u.Units...) {
			g.DisposeUnit(g.Unit(id))
		}
		u.Cargo.Stock = map[string]int{}
		u.RepairTurns = shipRepairTurns
		u.MovesLeft = 0
		slog.Info("ship damaged", "unit", u.ID, "repair_turns", u.RepairTurns)
		return
	}
	if r := g.Rules.Role(u.Role); r != nil && r.Downgrade != "" {
		u.Role = r.Downgrade
		u.Fortified = false
		slog.Info("unit demoted", "unit", u.ID, "role", u.Role)
		return
	}
	g.DisposeUnit(u)
	slog.Info("unit slaughtered", "unit", u.ID)
}

// captureSettlement handles an attack on an undefended settlement.
// Europeans take colonies and burn native settlements; natives pillage
// colonies of their largest stock.
func (s *Simulation) captureSettlement(u *model.Unit, t *world.Tile) {
	g := s.Game
	attacker := g.Player(u.Owner)
	if c := g.Colony(t.Settlement); c != nil {
		if attacker != nil && attacker.European {
			old := c.Owner
			g.ChangeColonyOwner(c, u.Owner)
			g.MoveUnitTo(u, c.Coord)
			s.record("combat", "%s captures %s from %s", attacker.Name, c.Name, s.playerName(old))
			return
		}
		s.pillage(u, c)
		return
	}
	if is := g.Settlement(t.Settlement); is != nil {
		name := is.Name
		s.KillMissionary(is, "killed when the settlement burned")
		g.DisposeSettlement(is)
		s.record("combat", "%s destroys %s", s.playerName(u.Owner), name)
		slog.Info("settlement destroyed", "settlement", name, "by", u.Owner)
	}
}

// pillage destroys up to one cargo load of the colony's largest stock.
func (s *Simulation) pillage(u *model.Unit, c *model.Colony) {
	g := s.Game
	goods := c.Goods.Compact(g.Rules)
	if len(goods) == 0 {
		return
	}
	best := goods[0]
	for _, gd := range goods[1:] {
		if gd.Amount > best.Amount {
			best = gd
		}
	}
	n := c.Goods.Remove(best.Type, min(best.Amount, g.Rules.Constants.CargoSize))
	s.record("combat", "%s pillages %d %s from %s", s.playerName(u.Owner), n, best.Type, c.Name)
}

// declareWar turns a surprise attack into war between the two players.
func (s *Simulation) declareWar(attacker, victim string) {
	g := s.Game
	p := g.Player(attacker)
	if p == nil || victim == "" || victim == attacker || p.StanceTo(victim) == social.War {
		return
	}
	g.SetStance(attacker, victim, social.War)
	s.record("diplomacy", "%s declares war on %s", p.Name, s.playerName(victim))
	slog.Info("war declared", "attacker", p.Name, "victim", s.playerName(victim))
}

// angerNatives raises the alarm of the natives a European attacks: the
// settlement under attack, or the home of the attacked brave.
func (s *Simulation) angerNatives(u *model.Unit, t *world.Tile, defender *model.Unit, mt model.MoveType) {
	g := s.Game
	if p := g.Player(u.Owner); p == nil || !p.European {
		return
	}
	if is := g.Settlement(t.Settlement); is != nil && mt == model.AttackSettlement {
		s.ModifyAlarm(is, u.Owner, g.Rules.Alarm.SettlementAttacked, true)
		return
	}
	if defender != nil {
		if home := g.Settlement(defender.Home); home != nil {
			s.ModifyAlarm(home, u.Owner, g.Rules.Alarm.UnitAttacked, true)
		}
	}
}
