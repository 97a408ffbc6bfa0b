// Colony economy: the European side of production, plus market recovery.
package engine

import (
	"sort"

	"github.com/talgya/frontier/internal/model"
	"github.com/talgya/frontier/internal/world"
)

// colonyNewTurn harvests the colony tile and one surrounding tile per
// worker and feeds the workers. Colonies do not starve; a hungry colony
// simply stores no food.
func (s *Simulation) colonyNewTurn(c *model.Colony) {
	g := s.Game
	center := g.Map.Get(c.Coord)
	if center == nil {
		return
	}
	for _, gt := range g.Rules.GoodsList() {
		n := g.Rules.Yield(world.TerrainName(center.Terrain), gt.ID)
		var yields []int
		for _, t := range g.Map.Surrounding(c.Coord, 1) {
			if t.Settlement != "" {
				continue
			}
			if y := g.Rules.Yield(world.TerrainName(t.Terrain), gt.ID); y > 0 {
				yields = append(yields, y)
			}
		}
		sort.Sort(sort.Reverse(sort.IntSlice(yields)))
		for i := 0; i < len(yields) && i < len(c.Units); i++ {
			n += yields[i]
		}
		c.Goods.Add(gt.Stored(), n)
	}

	food := g.Rules.Constants.PrimaryFood
	eaten := 0
	for _, id := range c.Units {
		if u := g.Unit(id); u != nil {
			if ut := g.UnitType(u); ut != nil {
				eaten += ut.Consumption[food]
			}
		}
	}
	c.Goods.Remove(food, eaten)
}

// truncateWarehouses drops colony goods beyond the warehouse capacity. It
// runs after the AI has had its chance to sell the surplus.
func (s *Simulation) truncateWarehouses() {
	g := s.Game
	for _, c := range g.AllColonies() {
		c.Goods.RemoveAbove(g.Rules, g.Rules.Constants.ColonyWarehouse)
	}
}

// recoverMarkets moves every European market one step back toward its
// base prices.
func (s *Simulation) recoverMarkets() {
	for _, p := range s.Game.Players {
		if p.Market != nil && !p.Dead {
			p.Market.Recover()
		}
	}
}
