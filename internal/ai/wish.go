package ai

import (
	"log/slog"
	"sort"

	"github.com/talgya/frontier/internal/model"
	"github.com/talgya/frontier/internal/world"
)

// WishKind tells worker wishes from goods wishes.
type WishKind uint8

const (
	WishWorker WishKind = iota
	WishGoods
)

func (k WishKind) prefix() string {
	if k == WishGoods {
		return "goodsWish"
	}
	return "workerWish"
}

// Wish is a colony's standing request for a worker or for goods.
type Wish struct {
	id   string
	main *Main
	kind WishKind

	destination string // Colony id
	value       int    // Urgency

	// transportable is the unit or goods parcel fulfilling the wish. The
	// registry owns the wish; this is a lookup only.
	transportable string

	unitType string // Worker wishes
	goods    string // Goods wishes
	amount   int

	uninitialized bool
	disposed      bool
}

// NewWorkerWish records that a colony wants a worker.
func (m *Main) NewWorkerWish(colony string, value int, unitType string) *Wish {
	w := &Wish{id: m.newObjectID(WishWorker.prefix()), main: m, kind: WishWorker,
		destination: colony, value: value, unitType: unitType}
	m.wishes[w.id] = w
	return w
}

// NewGoodsWish records that a colony wants goods.
func (m *Main) NewGoodsWish(colony string, value int, goods string, amount int) *Wish {
	w := &Wish{id: m.newObjectID(WishGoods.prefix()), main: m, kind: WishGoods,
		destination: colony, value: value, goods: goods, amount: amount}
	m.wishes[w.id] = w
	return w
}

func (w *Wish) ID() string { return w.id }

func (w *Wish) Kind() WishKind { return w.kind }

func (w *Wish) Destination() string { return w.destination }

func (w *Wish) Value() int { return w.value }

func (w *Wish) Transportable() string { return w.transportable }

func (w *Wish) GoodsType() string { return w.goods }

func (w *Wish) Amount() int { return w.amount }

func (w *Wish) Disposed() bool { return w.disposed }

// SetTransportable binds the wish to the transportable fulfilling it, or
// releases it with "". A wish already held by another transportable is
// not taken over.
func (w *Wish) SetTransportable(id string) bool {
	if id != "" && w.transportable != "" && w.transportable != id {
		return false
	}
	w.transportable = id
	return true
}

// Dispose removes the wish. The transportable is detached before it is
// told, so nothing points back at a dead wish.
func (w *Wish) Dispose() {
	if w.disposed {
		return
	}
	w.disposed = true
	if id := w.transportable; id != "" {
		w.transportable = ""
		if t := w.main.Transportable(id); t != nil {
			t.AbortWish(w)
		}
	}
	if ac := w.main.AIColony(w.destination); ac != nil {
		ac.RemoveWish(w)
	}
	delete(w.main.wishes, w.id)
}

// CheckIntegrity reports 1 when sound, 0 when fixed, -1 when broken.
func (w *Wish) CheckIntegrity(fix bool) int {
	if w.uninitialized || w.disposed {
		return -1
	}
	if w.main.Game.Colony(w.destination) == nil {
		return -1
	}
	if w.kind == WishGoods && (w.goods == "" || w.amount <= 0) {
		return -1
	}
	if w.transportable != "" && w.main.Transportable(w.transportable) == nil {
		if !fix {
			return -1
		}
		w.transportable = ""
		return 0
	}
	return 1
}

// AIColony is the AI side of a colony: its wishes, the goods parcels it is
// exporting and whether its workers need rearranging.
type AIColony struct {
	id   string
	main *Main

	wishes    []string
	aiGoods   []string
	rearrange bool

	uninitialized bool
	disposed      bool
}

func (ac *AIColony) ID() string { return ac.id }

// Colony returns the game colony, or nil once it is gone.
func (ac *AIColony) Colony() *model.Colony {
	if ac == nil || ac.disposed {
		return nil
	}
	return ac.main.Game.Colony(ac.id)
}

// Wishes returns the colony's live wishes, most urgent first.
func (ac *AIColony) Wishes() []*Wish {
	var out []*Wish
	for _, id := range ac.wishes {
		if w := ac.main.Wish(id); w != nil {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].value > out[j].value })
	return out
}

// AIGoods returns the parcels waiting in the colony.
func (ac *AIColony) AIGoods() []*AIGoods {
	var out []*AIGoods
	for _, id := range ac.aiGoods {
		if g := ac.main.AIGoods(id); g != nil {
			out = append(out, g)
		}
	}
	return out
}

func (ac *AIColony) AddWish(w *Wish) {
	ac.wishes = appendUniqueID(ac.wishes, w.id)
}

// RemoveWish forgets a wish without disposing it.
func (ac *AIColony) RemoveWish(w *Wish) bool {
	n := len(ac.wishes)
	ac.wishes = removeStringID(ac.wishes, w.id)
	return len(ac.wishes) != n
}

// CompleteWish removes a fulfilled wish and disposes it.
func (ac *AIColony) CompleteWish(w *Wish, reason string) bool {
	if !ac.RemoveWish(w) {
		return false
	}
	slog.Debug("wish completed", "colony", ac.id, "wish", w.id, "reason", reason)
	w.Dispose()
	return true
}

func (ac *AIColony) AddAIGoods(g *AIGoods) {
	ac.aiGoods = appendUniqueID(ac.aiGoods, g.id)
}

func (ac *AIColony) RemoveAIGoods(g *AIGoods) {
	ac.aiGoods = removeStringID(ac.aiGoods, g.id)
}

// RequestRearrange asks for the colony's workers to be reconsidered.
func (ac *AIColony) RequestRearrange() { ac.rearrange = true }

// NeedsRearrange reports and clears the rearrange request.
func (ac *AIColony) NeedsRearrange() bool {
	r := ac.rearrange
	ac.rearrange = false
	return r
}

func (ac *AIColony) hasWish(kind WishKind, goods string) bool {
	for _, w := range ac.Wishes() {
		if w.kind == kind && w.goods == goods {
			return true
		}
	}
	return false
}

// Wanted worker count and tool stock of a colony.
const (
	colonyTargetWorkers = 3
	colonyTargetTools   = 20
	toolsWishAmount     = 50
)

// Update refreshes the colony's wishes: a worker wish while the colony is
// short of workers, a tools wish while it is short of tools. Surplus above
// the warehouse is sold.
func (ac *AIColony) Update() {
	c := ac.Colony()
	if c == nil {
		return
	}
	m := ac.main
	workers := len(c.Units)
	if workers < colonyTargetWorkers && !ac.hasWish(WishWorker, "") {
		w := m.NewWorkerWish(c.ID, 100-20*workers, "free_colonist")
		ac.AddWish(w)
		slog.Debug("worker wish", "colony", c.Name, "wish", w.id, "value", w.value)
	}
	if c.GoodsCount("tools") < colonyTargetTools && !ac.hasWish(WishGoods, "tools") {
		w := m.NewGoodsWish(c.ID, 50, "tools", toolsWishAmount)
		ac.AddWish(w)
		slog.Debug("goods wish", "colony", c.Name, "wish", w.id, "goods", w.goods)
	}
	if ac.NeedsRearrange() {
		for _, w := range ac.Wishes() {
			if w.kind == WishWorker && workers >= colonyTargetWorkers {
				ac.CompleteWish(w, "staffed")
			}
		}
	}

	capacity := m.Game.Rules.Constants.ColonyWarehouse
	for _, goods := range c.Goods.Compact(m.Game.Rules) {
		gt := m.Game.Rules.Goods(goods.Type)
		if gt == nil || !gt.Storable || gt.Food || goods.Amount <= capacity {
			continue
		}
		if m.dispatch.SellGoods(c, goods.Type, goods.Amount-capacity) {
			slog.Debug("sold surplus", "colony", c.Name, "goods", goods.Type, "amount", goods.Amount-capacity)
		}
	}
}

// Dispose removes the AI colony with its wishes and waiting parcels.
func (ac *AIColony) Dispose() {
	if ac.disposed {
		return
	}
	for _, w := range ac.Wishes() {
		w.Dispose()
	}
	for _, g := range ac.AIGoods() {
		g.Dispose()
	}
	ac.wishes, ac.aiGoods = nil, nil
	ac.disposed = true
	delete(ac.main.colonies, ac.id)
}

// CheckIntegrity reports 1 when sound, 0 when fixed, -1 when broken. It
// cascades into the colony's wishes.
func (ac *AIColony) CheckIntegrity(fix bool) int {
	if ac.uninitialized || ac.Colony() == nil {
		return -1
	}
	result := 1
	for _, id := range append([]string(nil), ac.wishes...) {
		w := ac.main.Wish(id)
		r := -1
		if w != nil {
			r = w.CheckIntegrity(fix)
		}
		if r < 0 {
			if !fix {
				return -1
			}
			if w != nil {
				w.Dispose()
			}
			ac.wishes = removeStringID(ac.wishes, id)
			result = 0
		} else if r == 0 {
			result = 0
		}
	}
	for _, id := range append([]string(nil), ac.aiGoods...) {
		if ac.main.AIGoods(id) == nil {
			if !fix {
				return -1
			}
			ac.aiGoods = removeStringID(ac.aiGoods, id)
			result = 0
		}
	}
	return result
}

// matchGoodsWishes supplies the player's open goods wishes from sibling
// colonies holding enough to spare, most urgent wish first.
func (m *Main) matchGoodsWishes(player string) {
	colonies := m.ColoniesOf(player)
	keep := m.Game.Rules.Constants.KeepRawMaterial
	var open []*Wish
	for _, ac := range colonies {
		for _, w := range ac.Wishes() {
			if w.kind == WishGoods && w.transportable == "" {
				open = append(open, w)
			}
		}
	}
	sort.SliceStable(open, func(i, j int) bool { return open[i].value > open[j].value })
	for _, w := range open {
		dest := m.Game.Colony(w.destination)
		if dest == nil {
			continue
		}
		var from *AIColony
		bestDist := 0
		for _, ac := range colonies {
			c := ac.Colony()
			if c == nil || c.ID == dest.ID || c.GoodsCount(w.goods) < w.amount+keep {
				continue
			}
			if d := world.Distance(c.Coord, dest.Coord); from == nil || d < bestDist {
				from, bestDist = ac, d
			}
		}
		if from == nil {
			continue
		}
		g := m.NewAIGoods(from.id, w.goods, w.amount, w.destination)
		from.AddAIGoods(g)
		w.SetTransportable(g.id)
		slog.Debug("goods wish matched", "wish", w.id, "goods", g.id, "from", from.id)
	}
}

// goodsDelivered completes the wish a parcel was sent for and retires the
// parcel.
func (m *Main) goodsDelivered(g *AIGoods) {
	if ac := m.AIColony(g.location); ac != nil {
		for _, w := range ac.Wishes() {
			if w.transportable == g.id {
				ac.CompleteWish(w, "delivered "+g.id)
			}
		}
	}
	g.Dispose()
}

func appendUniqueID(list []string, id string) []string {
	for _, x := range list {
		if x == id {
			return list
		}
	}
	return append(list, id)
}

func removeStringID(list []string, id string) []string {
	for i, x := range list {
		if x == id {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
