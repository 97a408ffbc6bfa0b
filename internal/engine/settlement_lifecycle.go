// Native settlement lifecycle: famine, collapse, birth and the missionary.
package engine

import (
	"log/slog"

	"github.com/talgya/frontier/internal/model"
	"github.com/talgya/frontier/internal/social"
)

// settlementNewTurn resolves one settlement's turn in a fixed order:
// production, consumption, famine, collapse, growth, horse breeding,
// warehouse truncation and finally the wanted goods ranking. A collapsed
// settlement stops processing at once.
func (s *Simulation) settlementNewTurn(is *model.IndianSettlement) {
	if is.Disposed {
		return
	}
	g := s.Game
	c := g.Rules.Constants

	s.produce(is)
	s.consume(is)

	if is.GoodsCount(c.PrimaryFood) <= 0 && is.UnitCount() > 0 {
		s.starve(is)
	}
	if is.UnitCount() <= 0 {
		t := g.Map.Get(is.Coord)
		if t == nil || len(t.Units) == 0 {
			s.collapse(is)
			return
		}
		if u := g.Unit(t.FirstUnit()); u != nil {
			g.SetLocation(u, is.ID, is.Coord)
			slog.Debug("unit moved into empty settlement", "settlement", is.Name, "unit", u.ID)
		}
	}

	s.grow(is)
	s.breedHorses(is)

	is.Goods.RemoveAbove(g.Rules, g.WarehouseCapacity(is))
	g.UpdateWantedGoods(is)
	s.checkMissionary(is)
}

// starve disposes one randomly chosen unit inside the settlement.
func (s *Simulation) starve(is *model.IndianSettlement) {
	g := s.Game
	i := s.Rand.Pick("starver at "+is.Name, is.UnitCount())
	victim := g.Unit(is.Units[i])
	if victim == nil {
		return
	}
	g.DisposeUnit(victim)
	s.Stats.Famines++
	s.record("famine", "Famine in %s claims %s", is.Name, victim.ID)
	slog.Info("famine", "settlement", is.Name, "victim", victim.ID, "remaining", is.UnitCount())
}

// collapse removes an abandoned settlement from the game.
func (s *Simulation) collapse(is *model.IndianSettlement) {
	s.Game.DisposeSettlement(is)
	s.Stats.Collapses++
	s.record("collapse", "%s has collapsed", is.Name)
	slog.Info("settlement collapsed", "settlement", is.Name)
}

// grow gives birth to a new native when food and rum allow. Food is spent
// even when the settlement is already at its maximum size.
func (s *Simulation) grow(is *model.IndianSettlement) {
	g := s.Game
	c := g.Rules.Constants
	born := g.Rules.UnitTypesBornInSettlement()
	if len(born) == 0 {
		return
	}
	if is.GoodsCount(c.PrimaryFood)+4*is.GoodsCount(c.Rum) <= c.FoodPerColonist+c.KeepRawMaterial {
		return
	}
	if len(is.OwnedUnits) <= g.MaximumSize(is) {
		ut := born[s.Rand.Pick("birth at "+is.Name, len(born))]
		u := g.CreateUnit(ut.ID, is.Owner, is.Coord, "")
		consumeGoods(is, c.Rum, c.FoodPerColonist/4)
		u.Home = is.ID
		is.OwnedUnits = append(is.OwnedUnits, u.ID)
		s.Stats.Births++
		s.record("birth", "A new %s is born in %s", ut.ID, is.Name)
		slog.Info("native born", "settlement", is.Name, "unit", u.ID, "type", ut.ID)
	}
	consumeGoods(is, c.PrimaryFood, c.FoodPerColonist)
}

// ChangeMissionary replaces the settlement's missionary. The old missionary
// is disposed; the new one leaves the map and lives in the settlement.
func (s *Simulation) ChangeMissionary(is *model.IndianSettlement, missionary *model.Unit) {
	g := s.Game
	old := g.Unit(is.Missionary)
	if missionary != nil && old == missionary {
		return
	}
	if old != nil {
		is.Missionary = ""
		g.DisposeUnit(old)
		s.record("mission", "The mission at %s is closed", is.Name)
	}
	if missionary != nil {
		g.HouseMissionary(is, missionary)
		s.record("mission", "%s opens a mission at %s", missionary.Owner, is.Name)
	}
}

// KillMissionary removes the settlement's missionary, if any. The
// missionary's nation resents it.
func (s *Simulation) KillMissionary(is *model.IndianSettlement, reason string) {
	g := s.Game
	m := g.Unit(is.Missionary)
	if m == nil {
		return
	}
	owner := g.Player(m.Owner)
	s.ChangeMissionary(is, nil)
	if owner != nil {
		owner.ModifyTension(is.Owner, g.Rules.Alarm.MissionaryKilled, g.Scale())
	}
	s.record("mission", "The missionary at %s was %s", is.Name, reason)
	slog.Info("missionary killed", "settlement", is.Name, "owner", m.Owner, "reason", reason)
}

// checkMissionary denounces a missionary whose nation the settlement has
// come to hate.
func (s *Simulation) checkMissionary(is *model.IndianSettlement) {
	m := s.Game.Unit(is.Missionary)
	if m == nil {
		return
	}
	if t := is.AlarmFor(m.Owner); t != nil && t.Level(s.Game.Scale()) == social.Hateful {
		s.KillMissionary(is, "denounced")
	}
}
