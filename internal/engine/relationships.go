// Alarm and tension: settlement alarm rolls up to the nation, nation
// tension spreads back out to its settlements and drives stance.
package engine

import (
	"log/slog"

	"github.com/talgya/frontier/internal/model"
	"github.com/talgya/frontier/internal/social"
)

// ModifyAlarm changes the settlement's alarm toward player. With propagate
// set the owner nation's tension changes too: by the full amount for a
// capital, by half for any other settlement.
func (s *Simulation) ModifyAlarm(is *model.IndianSettlement, player string, amount int, propagate bool) {
	g := s.Game
	if is == nil || is.Disposed || player == "" || player == is.Owner {
		return
	}
	if g.ChangeAlarm(is, player, amount) {
		s.record("alarm", "%s is now %s toward %s", is.Name, is.AlarmFor(player).Level(g.Scale()), s.playerName(player))
	}
	if propagate {
		add := amount
		if !is.Capital {
			add /= 2
		}
		s.ModifyTension(g.Player(is.Owner), player, add, is)
	}
	slog.Debug("alarm modified",
		"settlement", is.Name,
		"player", player,
		"amount", amount,
		"value", is.AlarmFor(player).Value,
	)
}

// ModifyTension changes a nation's tension toward another player and
// passes the same change to each of the nation's settlements except
// origin, without further propagation.
func (s *Simulation) ModifyTension(p *model.Player, other string, amount int, origin *model.IndianSettlement) {
	g := s.Game
	if p == nil || other == "" || other == p.ID || amount == 0 {
		return
	}
	if p.ModifyTension(other, amount, g.Scale()) {
		s.record("tension", "%s is now %s toward %s", p.Name, p.TensionTo(other).Level(g.Scale()), s.playerName(other))
	}
	if p.European {
		return
	}
	for _, is := range g.SettlementsOf(p.ID) {
		if is != origin {
			s.ModifyAlarm(is, other, amount, false)
		}
	}
}

// decayTension lets every alarm and every nation tension cool off by the
// configured decay.
func (s *Simulation) decayTension() {
	g := s.Game
	decay := g.Rules.Alarm.TensionDecay
	if decay == 0 {
		return
	}
	for _, is := range g.AllSettlements() {
		for _, player := range sortedKeys(is.Alarm) {
			if is.Alarm[player].Value > 0 {
				g.ChangeAlarm(is, player, decay)
			}
		}
	}
	for _, p := range g.Players {
		for _, other := range sortedKeys(p.Tension) {
			if p.Tension[other].Value > 0 {
				p.ModifyTension(other, decay, g.Scale())
			}
		}
	}
}

// updateStances lets each native nation's stance toward the Europeans it
// has met follow its tension.
func (s *Simulation) updateStances() {
	g := s.Game
	for _, p := range g.Players {
		if p.European || p.Dead {
			continue
		}
		for _, e := range g.LiveEuropeans() {
			old := p.StanceTo(e.ID)
			if old == social.Uncontacted {
				continue
			}
			next := old.FromTension(p.TensionTo(e.ID), g.Scale())
			if next == old {
				continue
			}
			g.SetStance(p.ID, e.ID, next)
			s.record("diplomacy", "%s and %s move from %s to %s", p.Name, e.Name, old, next)
			slog.Info("stance changed", "native", p.Name, "european", e.Name, "from", old, "to", next)
		}
	}
}

func (s *Simulation) playerName(id string) string {
	if p := s.Game.Player(id); p != nil {
		return p.Name
	}
	return id
}
