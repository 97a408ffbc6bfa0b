package ai

import (
	"log/slog"

	"github.com/talgya/frontier/internal/model"
	"github.com/talgya/frontier/internal/world"
)

// Transportable is anything a carrier can be asked to move: a unit or a
// parcel of goods.
//
// A transportable is assigned to at most one carrier. While it waits
// unserved its priority rises by one per turn; a new mission or
// destination resets the waiting part to zero.
type Transportable interface {
	ID() string
	SpaceTaken() int
	// TransportSource is the location id the transportable is at now.
	TransportSource() string
	// TransportDestination is where it wants to go, "" when it needs no
	// transport.
	TransportDestination() string
	TransportPriority() int
	SetTransportPriority(p int)
	IncreaseTransportPriority()
	// Transport is the id of the assigned carrier, "" when none.
	Transport() string
	SetTransport(carrier, reason string)
	CarriableBy(carrier *model.Unit) bool
	// JoinTransport boards the carrier, from the adjacent tile in
	// direction d or from the same location with NoDirection.
	JoinTransport(carrier *model.Unit, d world.Direction) bool
	// LeaveTransport gets off the carrier at a sensible place.
	LeaveTransport() bool
	// InvalidReason is non-empty when the transportable can no longer be
	// carried.
	InvalidReason() string
	// AbortWish drops the wish this transportable was serving.
	AbortWish(w *Wish)
}

// AIGoods is a parcel of goods the AI wants moved to a destination.
type AIGoods struct {
	id   string
	main *Main

	goods    string
	amount   int
	location string // Colony or carrier holding the goods

	destination string
	priority    int
	transport   string

	uninitialized bool
	disposed      bool
}

// NewAIGoods registers a goods parcel at location bound for destination.
func (m *Main) NewAIGoods(location, goods string, amount int, destination string) *AIGoods {
	g := &AIGoods{
		id:          m.newObjectID("aiGoods"),
		main:        m,
		goods:       goods,
		amount:      amount,
		location:    location,
		destination: destination,
	}
	m.goods[g.id] = g
	return g
}

func (g *AIGoods) ID() string        { return g.id }
func (g *AIGoods) GoodsType() string { return g.goods }
func (g *AIGoods) Amount() int       { return g.amount }
func (g *AIGoods) Location() string  { return g.location }
func (g *AIGoods) Disposed() bool    { return g.disposed }

// Owner is the player owning the goods' current holder.
func (g *AIGoods) Owner() string {
	game := g.main.Game
	switch model.Kind(g.location) {
	case model.PrefixColony, model.PrefixSettlement:
		return game.SettlementOwner(g.location)
	case model.PrefixUnit:
		if u := game.Unit(g.location); u != nil {
			return u.Owner
		}
	}
	return ""
}

func (g *AIGoods) SpaceTaken() int {
	if g.amount <= 0 {
		return 0
	}
	cs := g.main.Game.Rules.Constants.CargoSize
	return (g.amount + cs - 1) / cs
}

func (g *AIGoods) TransportSource() string      { return g.location }
func (g *AIGoods) TransportDestination() string { return g.destination }

// SetTransportDestination retargets the parcel and restarts its wait. A
// queued parcel is re-sorted on its carrier at the new priority.
func (g *AIGoods) SetTransportDestination(dest string) {
	if dest == g.destination {
		return
	}
	g.destination = dest
	g.priority = 0
	if tm := g.carrierMission(); tm != nil && !tm.RequeueTransportable(g) {
		tm.RemoveTransportable(g)
	}
}

func (g *AIGoods) carrierMission() *Mission {
	c := g.main.AIUnit(g.transport)
	if c == nil || c.mission == nil || c.mission.Kind != KindTransport {
		return nil
	}
	return c.mission
}

func (g *AIGoods) TransportPriority() int     { return g.priority }
func (g *AIGoods) SetTransportPriority(p int) { g.priority = max(p, 0) }
func (g *AIGoods) IncreaseTransportPriority() { g.priority++ }
func (g *AIGoods) Transport() string          { return g.transport }

func (g *AIGoods) SetTransport(carrier, reason string) {
	if g.transport != carrier {
		slog.Debug("set transport", "goods", g.id, "carrier", carrier, "reason", reason)
	}
	g.transport = carrier
}

func (g *AIGoods) CarriableBy(carrier *model.Unit) bool {
	return carrier != nil && g.main.Game.GoodsCapacity(carrier) > 0
}

func (g *AIGoods) onCarrier() *model.Unit {
	if model.Kind(g.location) != model.PrefixUnit {
		return nil
	}
	return g.main.Game.Unit(g.location)
}

// JoinTransport loads the parcel onto a carrier in the same settlement. A
// partial load is accepted and shrinks the parcel to what was loaded.
func (g *AIGoods) JoinTransport(carrier *model.Unit, d world.Direction) bool {
	if d != world.NoDirection || carrier == nil {
		return false
	}
	if g.main.AIUnit(carrier.ID) == nil {
		return false
	}
	old := carrier.Cargo.Count(g.goods)
	if !g.main.dispatch.LoadCargo(carrier, g.goods, g.amount) {
		return false
	}
	loaded := carrier.Cargo.Count(g.goods) - old
	if loaded != g.amount {
		slog.Warn("partial load", "goods", g.id, "carrier", carrier.ID, "loaded", loaded, "expected", g.amount)
		if loaded <= 0 {
			return false
		}
		g.amount = loaded
	}
	if ac := g.main.AIColony(g.location); ac != nil {
		ac.RemoveAIGoods(g)
	}
	g.location = carrier.ID
	return true
}

// LeaveTransport unloads the whole parcel where the carrier is. Partial
// unloads are treated as failure.
func (g *AIGoods) LeaveTransport() bool {
	carrier := g.onCarrier()
	if carrier == nil || carrier.Cargo.Count(g.goods) < g.amount {
		return false
	}
	old := carrier.Cargo.Count(g.goods)
	if !g.main.dispatch.UnloadCargo(carrier, g.goods, g.amount) {
		return false
	}
	if unloaded := old - carrier.Cargo.Count(g.goods); unloaded != g.amount {
		slog.Warn("partial unload", "goods", g.id, "carrier", carrier.ID, "unloaded", unloaded, "expected", g.amount)
		return false
	}
	if c := g.main.Game.LocationTile(carrier.ID); c != nil && c.Settlement != "" {
		g.location = c.Settlement
	} else {
		g.location = ""
	}
	return true
}

func (g *AIGoods) InvalidReason() string {
	if g.disposed {
		return "transportable-disposed"
	}
	if g.amount <= 0 || g.goods == "" {
		return "transportable-empty"
	}
	if !g.main.Game.LocationExists(g.location) {
		return "transportable-location"
	}
	if carrier := g.onCarrier(); carrier != nil && g.destination != "" {
		if owner := g.main.Game.SettlementOwner(g.destination); owner != "" && owner != carrier.Owner {
			return "transportable-destination-captured"
		}
	}
	return ""
}

// AbortWish forgets a destination the wish supplied, and disposes the wish
// if it is still bound to this parcel.
func (g *AIGoods) AbortWish(w *Wish) {
	if g.destination == w.destination {
		g.destination = ""
	}
	if w.transportable == g.id {
		w.Dispose()
	}
}

// Dispose removes the parcel and every reference to it.
func (g *AIGoods) Dispose() {
	if g.disposed {
		return
	}
	g.disposed = true
	if tm := g.carrierMission(); tm != nil {
		tm.RemoveTransportable(g)
	}
	g.transport = ""
	for _, ac := range g.main.colonies {
		ac.RemoveAIGoods(g)
	}
	g.destination = ""
	delete(g.main.goods, g.id)
}

// CheckIntegrity reports 1 when sound, 0 when fixed, -1 when broken.
func (g *AIGoods) CheckIntegrity(fix bool) int {
	if g.uninitialized {
		return -1
	}
	result := 1
	why := ""
	switch {
	case g.goods == "" || g.main.Game.Rules.Goods(g.goods) == nil:
		why = "null-goods-type"
	case g.amount <= 0:
		why = "non-positive-goods-amount"
	case g.location == "":
		why = "null-location"
	case !g.main.Game.LocationExists(g.location):
		why = "disposed-location"
	}
	if g.destination != "" && !g.main.Game.LocationExists(g.destination) {
		if fix {
			slog.Warn("fixing disposed destination", "goods", g.id)
			g.destination = ""
			result = 0
		} else {
			why = "disposed-destination"
		}
	}
	if g.transport != "" && g.main.AIUnit(g.transport) == nil {
		if fix {
			g.transport = ""
			result = min(result, 0)
		} else if why == "" {
			why = "disposed-transport"
		}
	}
	if why != "" {
		slog.Debug("integrity", "goods", g.id, "why", why)
		return -1
	}
	return result
}
