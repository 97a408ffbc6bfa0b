package ai

import (
	"math"

	"github.com/talgya/frontier/internal/model"
	"github.com/talgya/frontier/internal/world"
)

// NewWishRealizationMission sends a unit to fulfil a wish.
func (m *Main) NewWishRealizationMission(au *AIUnit, w *Wish) *Mission {
	mi := m.NewMission(KindWishRealization, au)
	mi.wish = w.id
	mi.target = w.destination
	return mi
}

// wishFindTarget picks the most urgent open worker wish of the unit's
// owner, nearest first among equals.
func wishFindTarget(mi *Mission) string {
	u := mi.Unit()
	if u == nil {
		return ""
	}
	var best *Wish
	bestDist := math.MaxInt
	for _, ac := range mi.main.ColoniesOf(u.Owner) {
		c := ac.Colony()
		for _, w := range ac.Wishes() {
			if w.kind != WishWorker || w.transportable != "" {
				continue
			}
			d := world.Distance(u.Coord, c.Coord)
			if best == nil || w.value > best.value || (w.value == best.value && d < bestDist) {
				best, bestDist = w, d
			}
		}
	}
	if best == nil {
		return ""
	}
	mi.wish = best.id
	return best.destination
}

// wishActivate claims the wish. A wish already held by another
// transportable is let go, which leaves the mission invalid.
func wishActivate(mi *Mission) {
	if w := mi.main.Wish(mi.wish); w != nil && !w.SetTransportable(mi.unit) {
		mi.wish = ""
	}
}

func wishInvalidReason(mi *Mission) string {
	if reason := unitInvalidReason(mi); reason != "" {
		return reason
	}
	w := mi.main.Wish(mi.wish)
	if w == nil || w.disposed {
		return "wish-null"
	}
	return targetInvalidReason(mi.main.Game, w.destination, mi.Unit().Owner)
}

func doWishRealization(mi *Mission, lb *LogBuilder) *Mission {
	g := mi.main.Game
	u := mi.Unit()
	w := mi.main.Wish(mi.wish)
	mi.target = w.destination

	mt := mi.travelToTarget(mi.target, avoidSettlementsAndBlockingUnits, lb)
	switch mt {
	case model.Move:
	case model.MoveIllegal, model.MoveNoMoves, model.MoveNoRepair, model.MoveNoTile:
		return mi
	default:
		return mi.lbMove(lb, mt)
	}

	ac := mi.main.AIColony(mi.target)
	if ac == nil || g.Colony(mi.target) == nil {
		lb.Add(", broken wish ", w.id)
		w.Dispose()
		mi.wish = ""
		return nil
	}
	ac.CompleteWish(w, "mission("+u.ID+")")
	if g.IsOffensive(u) {
		mi.lbDone(lb, " ready to defend ", mi.target)
		return mi.main.NewDefendSettlementMission(mi.AIUnit(), mi.target)
	}
	ac.RequestRearrange()
	mi.lbDone(lb, " ready to work at ", mi.target)
	return mi.main.NewWorkInsideColonyMission(mi.AIUnit(), mi.target)
}

func disposeWishRealization(mi *Mission) {
	if w := mi.main.Wish(mi.wish); w != nil && w.transportable == mi.unit {
		w.SetTransportable("")
	}
	mi.wish = ""
}

// NewDefendSettlementMission sends a unit to guard a settlement.
func (m *Main) NewDefendSettlementMission(au *AIUnit, settlement string) *Mission {
	mi := m.NewMission(KindDefendSettlement, au)
	mi.target = settlement
	return mi
}

// defendFindTarget picks the home settlement of a brave, otherwise the
// own colony with the fewest defenders, nearest first among equals.
func defendFindTarget(mi *Mission) string {
	g := mi.main.Game
	u := mi.Unit()
	if u == nil {
		return ""
	}
	if is := g.Settlement(u.Home); is != nil {
		return is.ID
	}
	best, bestDefenders, bestDist := "", math.MaxInt, math.MaxInt
	for _, c := range g.ColoniesOf(u.Owner) {
		n := len(g.Defenders(c))
		d := world.Distance(u.Coord, c.Coord)
		if n < bestDefenders || (n == bestDefenders && d < bestDist) {
			best, bestDefenders, bestDist = c.ID, n, d
		}
	}
	return best
}

func defendInvalidReason(mi *Mission) string {
	if reason := unitInvalidReason(mi); reason != "" {
		return reason
	}
	u := mi.Unit()
	if !mi.main.Game.IsOffensive(u) {
		return "unit-not-offensive"
	}
	switch model.Kind(mi.target) {
	case model.PrefixColony, model.PrefixSettlement:
	default:
		return "target-invalid"
	}
	return targetInvalidReason(mi.main.Game, mi.target, u.Owner)
}

func doDefendSettlement(mi *Mission, lb *LogBuilder) *Mission {
	u := mi.Unit()
	mt := mi.travelToTarget(mi.target, nil, lb)
	switch mt {
	case model.Move:
	case model.MoveIllegal, model.MoveNoMoves, model.MoveNoRepair, model.MoveNoTile:
		return mi
	case model.AttackUnit:
		if blocker := mi.resolveBlockage(mi.target); blocker != nil && mi.main.atWar(u.Owner, blocker.Owner) {
			mi.main.dispatch.Attack(u, world.DirectionTo(u.Coord, blocker.Coord))
			return mi.lbAttack(lb, blocker.ID)
		}
		return mi.lbMove(lb, mt)
	default:
		return mi.lbMove(lb, mt)
	}
	if u.Location == "" && !u.Fortified {
		if mi.main.dispatch.Fortify(u) {
			lb.Add(", fortified at ", mi.target)
		}
	}
	return mi
}

// NewWorkInsideColonyMission sends a unit to work in a colony.
func (m *Main) NewWorkInsideColonyMission(au *AIUnit, colony string) *Mission {
	mi := m.NewMission(KindWorkInsideColony, au)
	mi.target = colony
	return mi
}

// workFindTarget picks the nearest own colony with a worker wish, or the
// nearest own colony.
func workFindTarget(mi *Mission) string {
	u := mi.Unit()
	if u == nil || mi.main.Game.IsNaval(u) {
		return ""
	}
	best, bestWanted, bestDist := "", false, math.MaxInt
	for _, ac := range mi.main.ColoniesOf(u.Owner) {
		c := ac.Colony()
		wanted := ac.hasWish(WishWorker, "")
		d := world.Distance(u.Coord, c.Coord)
		if best == "" || (wanted && !bestWanted) || (wanted == bestWanted && d < bestDist) {
			best, bestWanted, bestDist = c.ID, wanted, d
		}
	}
	return best
}

func workInvalidReason(mi *Mission) string {
	if reason := unitInvalidReason(mi); reason != "" {
		return reason
	}
	if model.Kind(mi.target) != model.PrefixColony {
		return "target-invalid"
	}
	return targetInvalidReason(mi.main.Game, mi.target, mi.Unit().Owner)
}

func doWorkInsideColony(mi *Mission, lb *LogBuilder) *Mission {
	g := mi.main.Game
	u := mi.Unit()
	if u.Location == mi.target {
		return mi
	}
	mt := mi.travelToTarget(mi.target, avoidSettlementsAndBlockingUnits, lb)
	switch mt {
	case model.Move:
	case model.MoveIllegal, model.MoveNoMoves, model.MoveNoRepair, model.MoveNoTile:
		return mi
	default:
		return mi.lbMove(lb, mt)
	}
	c := g.Colony(mi.target)
	if !mi.main.dispatch.JoinColony(u, c) {
		return mi.lbFail(lb, " could not join ", c.Name)
	}
	if ac := mi.main.AIColony(c.ID); ac != nil {
		ac.RequestRearrange()
	}
	lb.Add(", joined ", c.Name)
	return mi
}

// idleFindTarget picks the nearest own settlement, or the unit's own tile.
func idleFindTarget(mi *Mission) string {
	u := mi.Unit()
	if u == nil {
		return ""
	}
	if id := mi.main.nearestOwnSettlement(u); id != "" {
		return id
	}
	return model.TileID(u.Coord)
}

func doIdleAtSettlement(mi *Mission, lb *LogBuilder) *Mission {
	if model.Kind(mi.target) == model.PrefixTile || !mi.main.Game.LocationExists(mi.target) {
		mi.moveRandomly("idler")
		lb.Add(", wandering")
		return mi
	}
	switch mt := mi.travelToTarget(mi.target, nil, lb); mt {
	case model.Move:
		lb.Add(", idling at ", mi.target)
	case model.MoveNoTile:
		mi.moveRandomly("idler")
		lb.Add(", wandering")
	}
	return mi
}
