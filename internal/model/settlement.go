package model

import (
	"sort"

	"github.com/talgya/frontier/internal/economy"
	"github.com/talgya/frontier/internal/social"
	"github.com/talgya/frontier/internal/world"
)

// Rand is the seeded random source threaded through turn resolution.
type Rand interface {
	Intn(label string, n int) int
}

// IndianSettlement is a native settlement.
type IndianSettlement struct {
	ID      string         `json:"id"`
	Seq     int            `json:"seq"`
	Name    string         `json:"name"`
	Owner   string         `json:"owner"`
	Type    string         `json:"type"`
	Capital bool           `json:"capital"`
	Coord   world.HexCoord `json:"coord"`

	Goods      *economy.Container `json:"goods"`
	OwnedUnits []string           `json:"owned_units"` // Braves whose home this is
	Units      []string           `json:"units"`       // Units present inside

	// Alarm toward foreign players. Never holds the owner.
	Alarm     map[string]*social.Tension `json:"alarm"`
	MostHated string                     `json:"most_hated,omitempty"`

	Missionary  string   `json:"missionary,omitempty"`
	LastTribute int      `json:"last_tribute"`
	WantedGoods []string `json:"wanted_goods,omitempty"`
	Disposed    bool     `json:"-"`
}

// GoodsContainer implements GoodsHolder.
func (is *IndianSettlement) GoodsContainer() *economy.Container { return is.Goods }

// GoodsCount returns the stored amount of a goods type.
func (is *IndianSettlement) GoodsCount(goods string) int { return is.Goods.Count(goods) }

// UnitCount is the number of units inside the settlement.
func (is *IndianSettlement) UnitCount() int { return len(is.Units) }

// AlarmFor returns the alarm toward a player, or nil.
func (is *IndianSettlement) AlarmFor(player string) *social.Tension {
	return is.Alarm[player]
}

// UpdateMostHated recomputes the most hated player among candidates: the
// highest alarm value whose level is not Happy. Ties keep the earlier
// candidate. Reports whether the result changed.
func (is *IndianSettlement) UpdateMostHated(candidates []string, s social.Scale) bool {
	old := is.MostHated
	is.MostHated = ""
	best := -1
	for _, p := range candidates {
		t := is.Alarm[p]
		if t == nil || t.Level(s) == social.Happy {
			continue
		}
		if t.Value > best {
			best = t.Value
			is.MostHated = p
		}
	}
	return is.MostHated != old
}

// CreateSettlement places a native settlement at coord.
func (g *Game) CreateSettlement(name, owner, settlementType string, capital bool, coord world.HexCoord) *IndianSettlement {
	id, seq := g.newID(PrefixSettlement)
	is := &IndianSettlement{
		ID:      id,
		Seq:     seq,
		Name:    name,
		Owner:   owner,
		Type:    settlementType,
		Capital: capital,
		Coord:   coord,
		Goods:   economy.NewContainer(),
		Alarm:   make(map[string]*social.Tension),
	}
	g.Settlements[id] = is
	if t := g.Map.Get(coord); t != nil {
		t.Settlement = id
	}
	g.UpdateWantedGoods(is)
	return is
}

// AddUnits adds a random number of braves within the settlement type's size
// range. A nil source adds the average.
func (g *Game) AddUnits(is *IndianSettlement, rng Rand) {
	st := g.Rules.SettlementType(is.Type)
	if st == nil {
		return
	}
	count := (st.MinimumSize + st.MaximumSize) / 2
	if rng != nil {
		count = rng.Intn("units at "+is.Name, st.MaximumSize-st.MinimumSize+1) + st.MinimumSize
	}
	g.AddBraves(is, count)
}

// AddBraves adds count units of the first native-born unit type to the
// settlement, owned by it.
func (g *Game) AddBraves(is *IndianSettlement, count int) {
	born := g.Rules.UnitTypesBornInSettlement()
	if len(born) == 0 {
		return
	}
	for i := 0; i < count; i++ {
		u := g.CreateUnit(born[0].ID, is.Owner, is.Coord, is.ID)
		u.Home = is.ID
		is.OwnedUnits = appendUnique(is.OwnedUnits, u.ID)
	}
}

// InitialAlarm is the value a settlement's alarm toward a player starts at:
// the nation's tension toward that player.
func (g *Game) InitialAlarm(is *IndianSettlement, player string) int {
	if owner := g.Player(is.Owner); owner != nil {
		return owner.TensionValue(player)
	}
	return 0
}

// ChangeAlarm modifies the alarm toward player, creating it first if
// needed. Reports whether the level or the most hated player changed.
func (g *Game) ChangeAlarm(is *IndianSettlement, player string, amount int) bool {
	if player == "" || player == is.Owner {
		return false
	}
	s := g.Scale()
	t := is.Alarm[player]
	if t == nil {
		t = social.NewTension(g.InitialAlarm(is, player), s)
		is.Alarm[player] = t
	}
	levelChanged := t.Modify(amount, s)
	hatedChanged := is.UpdateMostHated(g.liveEuropeanIDs(), s)
	return levelChanged || hatedChanged
}

// SetAlarm replaces the alarm toward player. The owner is ignored.
func (g *Game) SetAlarm(is *IndianSettlement, player string, value int) {
	if player == "" || player == is.Owner {
		return
	}
	is.Alarm[player] = social.NewTension(value, g.Scale())
	is.UpdateMostHated(g.liveEuropeanIDs(), g.Scale())
}

// RemoveAlarm drops all alarm toward a player leaving the game.
func (g *Game) RemoveAlarm(is *IndianSettlement, player string) {
	if player == "" {
		return
	}
	delete(is.Alarm, player)
	is.UpdateMostHated(g.liveEuropeanIDs(), g.Scale())
}

// UpdateMostHated recomputes the settlement's most hated live European.
func (g *Game) UpdateMostHated(is *IndianSettlement) bool {
	return is.UpdateMostHated(g.liveEuropeanIDs(), g.Scale())
}

// WarehouseCapacity is the per-goods storage limit of a settlement.
func (g *Game) WarehouseCapacity(is *IndianSettlement) int {
	if st := g.Rules.SettlementType(is.Type); st != nil {
		return st.Warehouse
	}
	return g.Rules.Constants.ColonyWarehouse
}

// MaximumSize is the settlement type's maximum population.
func (g *Game) MaximumSize(is *IndianSettlement) int {
	if st := g.Rules.SettlementType(is.Type); st != nil {
		return st.MaximumSize
	}
	return 0
}

// TotalProductionOf is the settlement's output of one goods type this
// turn: the centre tile plus the best surrounding tiles, one worked tile
// per unit inside. Tiles holding another settlement are not worked.
func (g *Game) TotalProductionOf(is *IndianSettlement, goods string) int {
	center := g.Map.Get(is.Coord)
	if center == nil {
		return 0
	}
	total := g.Rules.Yield(world.TerrainName(center.Terrain), goods)

	radius := 1
	if st := g.Rules.SettlementType(is.Type); st != nil && st.Radius > 0 {
		radius = st.Radius
	}
	var yields []int
	for _, t := range g.Map.Surrounding(is.Coord, radius) {
		if t.Settlement != "" {
			continue
		}
		if y := g.Rules.Yield(world.TerrainName(t.Terrain), goods); y > 0 {
			yields = append(yields, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(yields)))
	for i := 0; i < len(yields) && i < is.UnitCount(); i++ {
		total += yields[i]
	}
	return total
}

// ConsumptionOf is how much of a goods type the units inside consume.
func (g *Game) ConsumptionOf(is *IndianSettlement, goods string) int {
	total := 0
	for _, id := range is.Units {
		u := g.Unit(id)
		if u == nil {
			continue
		}
		if ut := g.UnitType(u); ut != nil {
			total += ut.Consumption[goods]
		}
	}
	return total
}

// FoodConsumption is the primary food the settlement eats each turn.
func (g *Game) FoodConsumption(is *IndianSettlement) int {
	return g.ConsumptionOf(is, g.Rules.Constants.PrimaryFood)
}

// UpdateWantedGoods ranks the storable, non-food goods the settlement does
// not produce by price, lowest stock first among equals, and keeps the top
// few as trade desires.
func (g *Game) UpdateWantedGoods(is *IndianSettlement) {
	type want struct {
		id    string
		price int
		stock int
	}
	var wants []want
	for _, gt := range g.Rules.GoodsList() {
		if gt.Food || !gt.Storable || gt.StoredAs != "" {
			continue
		}
		if g.TotalProductionOf(is, gt.ID) > 0 {
			continue
		}
		wants = append(wants, want{gt.ID, gt.Price, is.GoodsCount(gt.ID)})
	}
	sort.SliceStable(wants, func(i, j int) bool {
		if wants[i].price != wants[j].price {
			return wants[i].price > wants[j].price
		}
		return wants[i].stock < wants[j].stock
	})
	n := g.Rules.Constants.WantedGoods
	is.WantedGoods = is.WantedGoods[:0]
	for i := 0; i < len(wants) && i < n; i++ {
		is.WantedGoods = append(is.WantedGoods, wants[i].id)
	}
}

// DisposeSettlement destroys a settlement: units inside die, braves away
// from home lose their home.
func (g *Game) DisposeSettlement(is *IndianSettlement) {
	if is == nil || is.Disposed {
		return
	}
	for _, id := range append([]string(nil), is.Units...) {
		g.DisposeUnit(g.Unit(id))
	}
	for _, id := range is.OwnedUnits {
		if u := g.Unit(id); u != nil && u.Home == is.ID {
			u.Home = ""
		}
	}
	is.OwnedUnits = nil
	if is.Missionary != "" {
		g.DisposeUnit(g.Unit(is.Missionary))
		is.Missionary = ""
	}
	if t := g.Map.Get(is.Coord); t != nil && t.Settlement == is.ID {
		t.Settlement = ""
	}
	delete(g.Settlements, is.ID)
	is.Disposed = true
}
