package ai

import (
	"log/slog"

	"github.com/talgya/frontier/internal/social"
	"github.com/talgya/frontier/internal/world"
)

// Player is the AI of one player.
type Player struct {
	ID   string
	main *Main
}

// DoWork runs the player's turn: colonies refresh their wishes, idle units
// get missions, carriers are allocated and every mission takes a step.
func (p *Player) DoWork(turn int) {
	m := p.main
	mp := m.Game.Player(p.ID)
	if mp == nil || mp.Dead {
		return
	}
	m.Sync()
	if mp.European {
		for _, ac := range m.ColoniesOf(p.ID) {
			ac.Update()
		}
		m.matchGoodsWishes(p.ID)
	}
	p.assignMissions(turn)
	if mp.European {
		p.allocateTransport()
	}
	p.doMissions(turn)
}

// environment describes a unit to the mission rules.
func (p *Player) environment(au *AIUnit) UnitEnv {
	m := p.main
	g := m.Game
	u := au.Unit()
	owner := g.Player(u.Owner)
	env := UnitEnv{
		Carrier:    g.IsCarrier(u),
		Native:     !owner.European,
		Missionary: u.Role == "missionary" || u.Type == "jesuit_missionary",
		Offensive:  g.IsOffensive(u),
		Roll:       m.rng.Float64("mission roll " + u.ID),
	}
	for other, s := range owner.Stance {
		if s == social.War && g.Player(other) != nil && !g.Player(other).Dead {
			env.AtWar = true
		}
	}

	if env.Native {
		home := g.Settlement(u.Home)
		if home != nil {
			if h := home.MostHated; h != "" {
				if t := home.AlarmFor(h); t != nil && t.Level(g.Scale()) > social.Content {
					env.Hostile = true
				}
			}
			env.Surplus = len(giftableGoods(g, home))
			env.HomeDefenders = home.UnitCount()
			for _, c := range g.AllColonies() {
				d := world.Distance(home.Coord, c.Coord)
				if d <= g.Rules.AI.DemandRange && demandColonyReason(g, u, c.ID) == "" {
					env.DemandTargets++
				}
				if d <= g.Rules.AI.GiftRange && owner.StanceTo(c.Owner) == social.Peace {
					env.GiftTargets++
				}
			}
		}
		return env
	}

	for _, is := range g.AllSettlements() {
		if missionarySettlementReason(g, u, is.ID) == "" {
			env.MissionTargets++
		}
	}
	for _, ac := range m.ColoniesOf(p.ID) {
		for _, w := range ac.Wishes() {
			if w.kind == WishWorker && w.transportable == "" {
				env.WorkerWishes++
			}
		}
	}
	return env
}

// busy reports whether the unit should be left alone this turn.
func (p *Player) busy(au *AIUnit) bool {
	g := p.main.Game
	u := au.Unit()
	if is := g.Settlement(u.Location); is != nil && is.Missionary == u.ID {
		return true
	}
	// Colony workers stay at work.
	if g.Colony(u.Location) != nil {
		return true
	}
	mi := au.mission
	if mi == nil || !mi.IsValid() || mi.IsOneTime() {
		return false
	}
	if limit := g.Rules.AI.TransportWaitLimit; limit > 0 && au.WaitingTurns() > limit && au.transport == "" {
		slog.Debug("gave up waiting for transport", "unit", au.id, "mission", mi.Tag(), "waited", au.WaitingTurns())
		au.ChangeMission(nil, nil)
		return false
	}
	return true
}

// assignMissions gives every unit without a worthwhile mission the best
// mission its rules allow.
func (p *Player) assignMissions(turn int) {
	m := p.main
	for _, au := range m.UnitsOf(p.ID) {
		if au.Unit() == nil || p.busy(au) {
			continue
		}
		lb := NewLogBuilder(m.Verbose)
		current := au.mission
		if current != nil && !current.IsValid() {
			au.ChangeMission(nil, lb)
			current = nil
		}
		for _, r := range m.rules.Matches(p.environment(au)) {
			if current != nil && current.Kind == r.Kind {
				break
			}
			mi := m.NewMission(r.Kind, au)
			if !mi.FindTarget() || !mi.IsValid() {
				continue
			}
			mi.Activate()
			au.ChangeMission(mi, lb)
			slog.Debug("mission assigned", "unit", au.id, "rule", r.Name, "mission", mi.String(), "turn", turn)
			break
		}
		if lb.Len() > 0 {
			slog.Debug("mission change", "unit", au.id, "turn", turn, "log", lb.String())
		}
	}
}

// doMissions steps every unit's mission once and applies the result.
func (p *Player) doMissions(turn int) {
	m := p.main
	for _, au := range m.UnitsOf(p.ID) {
		if au.Unit() == nil {
			au.Dispose()
			continue
		}
		old := au.mission
		if old == nil {
			continue
		}
		lb := NewLogBuilder(m.Verbose)
		lb.Add(au.id)
		next := au.DoMission(lb)
		if au.Unit() == nil {
			au.Dispose()
		} else if next != au.mission {
			au.ChangeMission(next, lb)
		}
		if lb.Len() > 0 {
			slog.Debug("mission", "unit", au.id, "mission", old.Tag(), "turn", turn, "log", lb.String())
		}
	}
	m.Sync()
}

// MissionCounts tallies the player's units by mission, "none" for units
// without one.
func (p *Player) MissionCounts() map[string]int {
	out := make(map[string]int)
	for _, au := range p.main.UnitsOf(p.ID) {
		if au.mission == nil {
			out["none"]++
			continue
		}
		out[au.mission.Kind.String()]++
	}
	return out
}
