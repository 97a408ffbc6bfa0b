// Native production: worked tiles add goods, units inside eat them.
package engine

import (
	"log/slog"

	"github.com/talgya/frontier/internal/model"
)

// produce adds one turn of output for every goods type. Output is stored
// under the type it is kept as, so grain and fish become food.
func (s *Simulation) produce(is *model.IndianSettlement) {
	g := s.Game
	for _, gt := range g.Rules.GoodsList() {
		if n := g.TotalProductionOf(is, gt.ID); n > 0 {
			is.Goods.Add(gt.Stored(), n)
		}
	}
}

// consume removes what the units inside need of every goods type.
func (s *Simulation) consume(is *model.IndianSettlement) {
	g := s.Game
	for _, gt := range g.Rules.GoodsList() {
		consumeGoods(is, gt.Stored(), g.ConsumptionOf(is, gt.ID))
	}
}

// consumeGoods removes up to amount, and only when there is some to take.
func consumeGoods(is *model.IndianSettlement, goods string, amount int) {
	if have := is.GoodsCount(goods); have > 0 {
		removed := is.Goods.Remove(goods, min(amount, have))
		if removed > 0 {
			slog.Debug("consumed", "settlement", is.Name, "goods", goods, "amount", removed)
		}
	}
}

// breedHorses adds foals when the herd is large enough and the grain
// harvest leaves a surplus after feeding the settlement.
func (s *Simulation) breedHorses(is *model.IndianSettlement) {
	g := s.Game
	c := g.Rules.Constants
	horses := g.Rules.Goods(c.Horses)
	if horses == nil {
		return
	}
	avail := g.TotalProductionOf(is, c.Grain) - g.FoodConsumption(is)
	if is.GoodsCount(horses.ID) < horses.BreedingNumber || avail <= 0 {
		return
	}
	n := min(c.MaxHorsesPerTurn, avail)
	is.Goods.Add(horses.ID, n)
	slog.Debug("horses bred", "settlement", is.Name, "count", n)
}
