package ai

import (
	"github.com/talgya/frontier/internal/economy"
	"github.com/talgya/frontier/internal/model"
	"github.com/talgya/frontier/internal/rules"
	"github.com/talgya/frontier/internal/social"
	"github.com/talgya/frontier/internal/world"
)

const demandTag = "native demander"

// NewIndianDemandMission sends a brave to demand tribute from a colony.
func (m *Main) NewIndianDemandMission(au *AIUnit, colony string) *Mission {
	mi := m.NewMission(KindIndianDemand, au)
	mi.target = colony
	return mi
}

// hasTribute reports whether the unit is carrying goods home.
func (mi *Mission) hasTribute() bool {
	u := mi.Unit()
	return u != nil && u.HasGoodsCargo()
}

func demandHome(mi *Mission) *model.IndianSettlement {
	u := mi.Unit()
	if u == nil {
		return nil
	}
	return mi.main.Game.Settlement(u.Home)
}

// demandColonyReason checks a colony as a demand target for the unit.
func demandColonyReason(g *model.Game, u *model.Unit, colony string) string {
	if reason := targetInvalidReason(g, colony, ""); reason != "" {
		return reason
	}
	c := g.Colony(colony)
	if c == nil {
		return "target-invalid"
	}
	owner := g.Player(u.Owner)
	if owner == nil {
		return "unit-null"
	}
	switch owner.StanceTo(c.Owner) {
	case social.Uncontacted, social.Peace, social.Alliance:
		return "bad-stance"
	}
	if home := g.Settlement(u.Home); home != nil {
		if t := home.AlarmFor(c.Owner); t != nil && t.Level(g.Scale()) <= social.Content {
			return "happy"
		}
	}
	return ""
}

func demandInvalidReason(mi *Mission) string {
	if reason := unitInvalidReason(mi); reason != "" {
		return reason
	}
	if demandHome(mi) == nil {
		return "home-destroyed"
	}
	if mi.completed {
		return "completed"
	}
	// Tribute goes home even if the colony has gone.
	if mi.hasTribute() {
		return ""
	}
	return demandColonyReason(mi.main.Game, mi.Unit(), mi.target)
}

// demandFindTarget picks the nearest colony in range worth demanding from.
func demandFindTarget(mi *Mission) string {
	g := mi.main.Game
	u := mi.Unit()
	home := demandHome(mi)
	if u == nil || home == nil {
		return ""
	}
	best, bestDist := "", mi.main.Game.Rules.AI.DemandRange+1
	for _, c := range g.AllColonies() {
		if demandColonyReason(g, u, c.ID) != "" {
			continue
		}
		if d := world.Distance(home.Coord, c.Coord); d < bestDist {
			best, bestDist = c.ID, d
		}
	}
	return best
}

// capAmount scales a demand by difficulty into [MinimumDemand, CargoSize].
func capAmount(g *model.Game, amount, dx int) int {
	c := g.Rules.Constants
	return min(max(amount*dx/6, c.MinimumDemand), c.CargoSize)
}

// SelectGoods chooses what the natives demand from a colony and how much.
// Content natives ask for a full load of food if there is one, displeased
// natives for the most valuable non-food non-military goods, angrier ones
// for military goods, then building materials, trade goods and refined
// goods. Failing all that the most valuable goods are taken. An empty type
// means the colony has nothing worth demanding.
func SelectGoods(g *model.Game, demander string, c *model.Colony) (string, int) {
	rs := g.Rules
	level := social.Happy
	if p := g.Player(demander); p != nil {
		if t := p.TensionTo(c.Owner); t != nil {
			level = t.Level(g.Scale())
		}
	}
	dx := rs.Constants.NativeDemands + 1
	food := rs.Constants.PrimaryFood
	var market *economy.Market
	if owner := g.Player(c.Owner); owner != nil {
		market = owner.Market
	}
	salePrice := market.SalePrice

	switch {
	case level <= social.Content && c.GoodsCount(food) >= rs.Constants.CargoSize:
		return food, capAmount(g, c.GoodsCount(food), dx)
	case level <= social.Displeased:
		best, value, amount := "", 0, 0
		for _, goods := range c.Goods.Compact(rs) {
			gt := rs.Goods(goods.Type)
			if gt == nil || gt.Food || gt.Military {
				continue
			}
			if v := salePrice(goods.Type, goods.Amount); v > value {
				best, value, amount = goods.Type, v, goods.Amount
			}
		}
		if best != "" {
			return best, capAmount(g, amount, dx)
		}
	default:
		for _, pref := range []func(*rules.GoodsType) bool{
			func(gt *rules.GoodsType) bool { return gt.Military },
			func(gt *rules.GoodsType) bool { return gt.BuildingMaterial && gt.Storable },
			func(gt *rules.GoodsType) bool { return gt.TradeGoods },
			func(gt *rules.GoodsType) bool { return gt.Refined && gt.Storable },
		} {
			for _, gt := range rs.GoodsList() {
				if !pref(gt) {
					continue
				}
				if n := c.GoodsCount(gt.ID); n > 0 {
					return gt.ID, capAmount(g, n, dx)
				}
			}
		}
	}

	best, value, amount := "", 0, 0
	for _, goods := range c.Goods.Compact(rs) {
		if v := salePrice(goods.Type, goods.Amount); v > value {
			best, value, amount = goods.Type, v, goods.Amount
		}
	}
	if best == "" {
		return "", 0
	}
	return best, capAmount(g, amount, dx)
}

func doIndianDemand(mi *Mission, lb *LogBuilder) *Mission {
	g := mi.main.Game
	au := mi.AIUnit()
	u := mi.Unit()
	home := demandHome(mi)

	for !mi.completed {
		if mi.hasTribute() {
			mt := mi.travelToTarget(home.ID, avoidSettlementsAndBlockingUnits, lb)
			switch mt {
			case model.MoveNoRepair:
				return mi.lbWait(lb)
			case model.MoveNoMoves, model.MoveNoTile, model.MoveIllegal:
				return mi
			case model.Move:
			default:
				return mi.lbMove(lb, mt)
			}
			lb.Add(", at ", home.Name)
			for _, goods := range u.Cargo.Compact(g.Rules) {
				home.Goods.Add(goods.Type, u.Cargo.RemoveAll(goods.Type))
			}
			mi.completed = true
			return mi.lbDone(lb, " unloaded tribute")
		}

		var d world.Direction
		mt := mi.travelToTarget(mi.target, nil, lb)
		switch mt {
		case model.MoveNoRepair:
			return mi.lbWait(lb)
		case model.MoveNoMoves, model.MoveNoTile, model.MoveIllegal:
			return mi
		case model.Move:
			d = world.NoDirection
		case model.AttackSettlement, model.AttackUnit:
			if mt == model.AttackSettlement {
				if tc, ok := g.LocationCoord(mi.target); ok {
					d = world.DirectionTo(u.Coord, tc)
				}
				if d != world.NoDirection {
					break
				}
			}
			blocker := mi.resolveBlockage(mi.target)
			if blocker == nil {
				mi.moveRandomly(demandTag)
				lb.Add(", dodging")
				return mi
			}
			au.main.dispatch.Attack(u, world.DirectionTo(u.Coord, blocker.Coord))
			return mi.lbAttack(lb, blocker.ID)
		default:
			mi.moveRandomly(demandTag)
			return mi.lbMove(lb, mt)
		}

		mi.lbAt(lb)
		colony := g.Colony(mi.target)
		enemy := g.Player(colony.Owner)
		goods, amount := SelectGoods(g, u.Owner, colony)
		if goods == "" {
			if enemy == nil || !enemy.CheckGold(1) {
				mi.completed = true
				return mi.lbDone(lb, " empty handed")
			}
			amount = enemy.Gold / g.Rules.Constants.TributeGoldDivisor
			if amount == 0 {
				amount = enemy.Gold
			}
		}
		mi.demanded = true

		accepted := mi.main.dispatch.IndianDemand(u, colony, goods, amount)
		if accepted && (goods == "" || mi.hasTribute()) {
			if goods != "" {
				lb.Add(" accepted tribute: ", amount, " ", goods)
				continue
			}
			lb.Add(" accepted tribute: ", amount, " gold")
			mi.completed = true
			return mi.lbDone(lb)
		}

		tension := 0
		if t := home.AlarmFor(colony.Owner); t != nil {
			tension = t.Value
		}
		if p := g.Player(u.Owner); p != nil {
			tension = max(tension, p.TensionValue(colony.Owner))
		}
		if d == world.NoDirection {
			d = world.DirectionTo(u.Coord, colony.Coord)
		}
		if tension > g.Scale().Limit(social.Content) && d != world.NoDirection {
			mi.main.dispatch.Attack(u, d)
			mi.lbAttack(lb, colony.Name)
		}
		mi.completed = true
		return mi.lbDone(lb, " refused at ", colony.Name)
	}
	return mi
}
