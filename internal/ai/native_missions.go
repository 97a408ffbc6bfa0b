package ai

import (
	"math"

	"github.com/talgya/frontier/internal/model"
	"github.com/talgya/frontier/internal/social"
	"github.com/talgya/frontier/internal/world"
)

const (
	giftTag   = "native gift"
	wanderTag = "wander hostile"
)

// atWar reports whether two players are at war.
func (m *Main) atWar(a, b string) bool {
	p := m.Game.Player(a)
	return p != nil && a != b && p.StanceTo(b) == social.War
}

// NewIndianBringGiftMission sends a brave with a gift to a colony.
func (m *Main) NewIndianBringGiftMission(au *AIUnit, colony string) *Mission {
	mi := m.NewMission(KindIndianBringGift, au)
	mi.target = colony
	return mi
}

// giftColonyReason checks a colony as a gift destination.
func giftColonyReason(g *model.Game, u *model.Unit, colony string) string {
	if reason := targetInvalidReason(g, colony, ""); reason != "" {
		return reason
	}
	c := g.Colony(colony)
	if c == nil {
		return "target-invalid"
	}
	if p := g.Player(u.Owner); p == nil || p.StanceTo(c.Owner) == social.War {
		return "bad-stance"
	}
	return ""
}

func giftInvalidReason(mi *Mission) string {
	if reason := unitInvalidReason(mi); reason != "" {
		return reason
	}
	if demandHome(mi) == nil {
		return "home-destroyed"
	}
	if mi.completed {
		return "completed"
	}
	return giftColonyReason(mi.main.Game, mi.Unit(), mi.target)
}

func giftFindTarget(mi *Mission) string {
	g := mi.main.Game
	u := mi.Unit()
	home := demandHome(mi)
	if u == nil || home == nil {
		return ""
	}
	best, bestDist := "", g.Rules.AI.GiftRange+1
	for _, c := range g.AllColonies() {
		if p := g.Player(u.Owner); p == nil || p.StanceTo(c.Owner) != social.Peace {
			continue
		}
		if d := world.Distance(home.Coord, c.Coord); d < bestDist {
			best, bestDist = c.ID, d
		}
	}
	return best
}

// giftableGoods lists the storable non-food goods a settlement holds.
func giftableGoods(g *model.Game, is *model.IndianSettlement) []string {
	var out []string
	for _, goods := range is.Goods.Compact(g.Rules) {
		if gt := g.Rules.Goods(goods.Type); gt != nil && gt.Storable && !gt.Food {
			out = append(out, goods.Type)
		}
	}
	return out
}

func doIndianBringGift(mi *Mission, lb *LogBuilder) *Mission {
	g := mi.main.Game
	u := mi.Unit()
	home := demandHome(mi)

	if !mi.collected {
		mt := mi.travelToTarget(home.ID, avoidSettlementsAndBlockingUnits, lb)
		switch mt {
		case model.Move:
		case model.MoveIllegal, model.MoveNoMoves, model.MoveNoRepair, model.MoveNoTile:
			return mi
		default:
			return mi.lbMove(lb, mt)
		}
		choices := giftableGoods(g, home)
		if len(choices) == 0 {
			mi.completed = true
			return mi.lbFail(lb, " nothing to give")
		}
		goods := choices[mi.main.rng.Intn(giftTag+" goods", len(choices))]
		amount := min(home.GoodsCount(goods), 10+mi.main.rng.Intn(giftTag+" amount", 41), g.Rules.Constants.CargoSize)
		u.Cargo.Add(goods, home.Goods.Remove(goods, amount))
		mi.collected = true
		lb.Add(", collected ", amount, " ", goods)
	}

	mt := mi.travelToTarget(mi.target, nil, lb)
	switch mt {
	case model.MoveIllegal, model.MoveNoMoves, model.MoveNoRepair, model.MoveNoTile:
		return mi
	case model.AttackSettlement, model.MoveNoAccess:
	default:
		return mi.lbMove(lb, mt)
	}
	c := g.Colony(mi.target)
	if world.DirectionTo(u.Coord, c.Coord) == world.NoDirection {
		mi.moveRandomly(giftTag)
		lb.Add(", dodging")
		return mi
	}
	mi.lbAt(lb)
	for _, goods := range u.Cargo.Compact(g.Rules) {
		if mi.main.dispatch.DeliverGift(u, c, goods.Type, goods.Amount) {
			lb.Add(" delivered ", goods.Amount, " ", goods.Type)
		}
	}
	mi.completed = true
	return mi.lbDone(lb)
}

func wanderInvalidReason(mi *Mission) string {
	if reason := unitInvalidReason(mi); reason != "" {
		return reason
	}
	u := mi.Unit()
	if !mi.main.Game.IsOffensive(u) {
		return "unit-not-offensive"
	}
	p := mi.main.Game.Player(u.Owner)
	for other := range p.Stance {
		if mi.main.atWar(u.Owner, other) {
			return ""
		}
	}
	return "no-enemy"
}

// doUnitWanderHostile attacks an enemy next door, otherwise roams.
func doUnitWanderHostile(mi *Mission, lb *LogBuilder) *Mission {
	g := mi.main.Game
	u := mi.Unit()
	for d := world.Direction(0); d < 6; d++ {
		t := g.Map.Neighbor(u.Coord, d)
		if t == nil {
			continue
		}
		owner := ""
		switch g.MoveType(u, d) {
		case model.AttackUnit:
			if enemy := g.ForeignUnitAt(t, u.Owner); enemy != nil {
				owner = enemy.Owner
			}
		case model.AttackSettlement:
			owner = g.SettlementOwner(t.Settlement)
		default:
			continue
		}
		if mi.main.atWar(u.Owner, owner) {
			mi.main.dispatch.Attack(u, d)
			return mi.lbAttack(lb, model.TileID(t.Coord))
		}
	}
	mi.moveRandomly(wanderTag)
	lb.Add(", wandering")
	return mi
}

// NewMissionaryMission sends a missionary to a native settlement.
func (m *Main) NewMissionaryMission(au *AIUnit, settlement string) *Mission {
	mi := m.NewMission(KindMissionary, au)
	mi.target = settlement
	return mi
}

func missionarySettlementReason(g *model.Game, u *model.Unit, id string) string {
	is := g.Settlement(id)
	if is == nil {
		return "target-invalid"
	}
	if is.Missionary != "" && is.Missionary != u.ID {
		return "target-has-missionary"
	}
	if p := g.Player(u.Owner); p == nil || p.StanceTo(is.Owner) == social.War {
		return "bad-stance"
	}
	return ""
}

// missionaryFindTarget picks the nearest settlement without a missionary
// whose owner is not at war with the unit's owner.
func missionaryFindTarget(mi *Mission) string {
	g := mi.main.Game
	u := mi.Unit()
	if u == nil {
		return ""
	}
	best, bestDist := "", math.MaxInt
	for _, is := range g.AllSettlements() {
		if missionarySettlementReason(g, u, is.ID) != "" {
			continue
		}
		if d := world.Distance(u.Coord, is.Coord); d < bestDist {
			best, bestDist = is.ID, d
		}
	}
	return best
}

func missionaryInvalidReason(mi *Mission) string {
	if reason := unitInvalidReason(mi); reason != "" {
		return reason
	}
	return missionarySettlementReason(mi.main.Game, mi.Unit(), mi.target)
}

func doMissionary(mi *Mission, lb *LogBuilder) *Mission {
	g := mi.main.Game
	u := mi.Unit()
	is := g.Settlement(mi.target)
	mt := mi.travelToTarget(mi.target, nil, lb)
	switch mt {
	case model.MoveIllegal, model.MoveNoMoves, model.MoveNoRepair, model.MoveNoTile:
		return mi
	case model.MoveNoAccess, model.AttackSettlement:
	default:
		return mi.lbMove(lb, mt)
	}
	if world.DirectionTo(u.Coord, is.Coord) == world.NoDirection {
		mi.moveRandomly("missionary")
		lb.Add(", dodging")
		return mi
	}
	mi.lbAt(lb)
	if !mi.main.dispatch.EstablishMission(u, is) {
		return mi.lbFail(lb, " mission refused at ", is.Name)
	}
	return mi.lbDone(lb, " established mission at ", is.Name)
}
