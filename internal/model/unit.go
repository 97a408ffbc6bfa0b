package model

import (
	"github.com/talgya/frontier/internal/economy"
	"github.com/talgya/frontier/internal/rules"
	"github.com/talgya/frontier/internal/world"
)

// Unit is a single unit on the map, inside a settlement or aboard a
// carrier.
type Unit struct {
	ID    string `json:"id"`
	Seq   int    `json:"seq"`
	Type  string `json:"type"`
	Owner string `json:"owner"`
	Role  string `json:"role"`

	Coord world.HexCoord `json:"coord"`
	// Location is "" when the unit stands on the tile at Coord, otherwise
	// the colony, native settlement or carrier holding it.
	Location string `json:"location,omitempty"`

	Cargo *economy.Container `json:"cargo"`
	Units []string           `json:"units,omitempty"` // Passengers

	Home        string `json:"home,omitempty"` // Home native settlement
	MovesLeft   int    `json:"moves_left"`
	RepairTurns int    `json:"repair_turns,omitempty"`
	Fortified   bool   `json:"fortified,omitempty"`
	Disposed    bool   `json:"-"`
}

// GoodsHolder is anything that stores goods.
type GoodsHolder interface {
	GoodsContainer() *economy.Container
}

// GoodsContainer implements GoodsHolder.
func (u *Unit) GoodsContainer() *economy.Container { return u.Cargo }

// OnCarrier reports whether the unit is aboard another unit.
func (u *Unit) OnCarrier() bool {
	return Kind(u.Location) == PrefixUnit
}

// HasGoodsCargo reports whether the unit carries any goods.
func (u *Unit) HasGoodsCargo() bool {
	return u.Cargo.HasGoods()
}

// UnitType returns the ruleset entry for the unit's type.
func (g *Game) UnitType(u *Unit) *rules.UnitType {
	return g.Rules.Unit(u.Type)
}

// Offence is the unit's attack strength including its role.
func (g *Game) Offence(u *Unit) int {
	off := 0
	if ut := g.UnitType(u); ut != nil {
		off = ut.Offence
	}
	if r := g.Rules.Role(u.Role); r != nil {
		off += r.Offence
	}
	return off
}

// Defence is the unit's defence strength including its role.
func (g *Game) Defence(u *Unit) int {
	def := 1
	if ut := g.UnitType(u); ut != nil {
		def = ut.Defence
	}
	if r := g.Rules.Role(u.Role); r != nil {
		def += r.Defence
	}
	return def
}

// IsOffensive reports whether the unit can attack.
func (g *Game) IsOffensive(u *Unit) bool {
	return g.Offence(u) > 0
}

// IsNaval reports whether the unit moves on water.
func (g *Game) IsNaval(u *Unit) bool {
	ut := g.UnitType(u)
	return ut != nil && ut.Naval
}

// IsCarrier reports whether the unit can carry goods or units.
func (g *Game) IsCarrier(u *Unit) bool {
	ut := g.UnitType(u)
	return ut != nil && ut.Capacity > 0
}

// SpaceTaken is how many carrier slots the unit fills.
func (g *Game) SpaceTaken(u *Unit) int {
	if ut := g.UnitType(u); ut != nil {
		return ut.Space
	}
	return 0
}

// SpaceLeft is the number of free slots on a carrier.
func (g *Game) SpaceLeft(u *Unit) int {
	ut := g.UnitType(u)
	if ut == nil {
		return 0
	}
	used := u.Cargo.Slots(g.Rules.Constants.CargoSize)
	for _, id := range u.Units {
		if p := g.Unit(id); p != nil {
			used += g.SpaceTaken(p)
		}
	}
	return ut.Capacity - used
}

// GoodsCapacity is how many cargo slots of goods the unit can hold. Native
// born units carry a single load of tribute or gifts.
func (g *Game) GoodsCapacity(u *Unit) int {
	ut := g.UnitType(u)
	if ut == nil {
		return 0
	}
	if ut.Capacity == 0 && ut.BornInIndianSettlement {
		return 1
	}
	return ut.Capacity
}

// CouldCarry reports whether carrier can ever hold u.
func (g *Game) CouldCarry(carrier, u *Unit) bool {
	if carrier == nil || u == nil || carrier == u || !g.IsCarrier(carrier) {
		return false
	}
	space := g.SpaceTaken(u)
	if space <= 0 {
		return false
	}
	// Wagons carry goods only.
	if !g.IsNaval(carrier) {
		return false
	}
	return g.UnitType(carrier).Capacity >= space
}

// CreateUnit builds a new unit at coord, placed in location (see
// Unit.Location).
func (g *Game) CreateUnit(unitType, owner string, coord world.HexCoord, location string) *Unit {
	id, seq := g.newID(PrefixUnit)
	u := &Unit{
		ID:    id,
		Seq:   seq,
		Type:  unitType,
		Owner: owner,
		Role:  "default",
		Coord: coord,
		Cargo: economy.NewContainer(),
	}
	if ut := g.UnitType(u); ut != nil {
		u.MovesLeft = ut.Moves
	}
	g.Units[id] = u
	g.attach(u, location, coord)
	return u
}

// SetLocation moves a unit to a new location without any movement rules.
// Passengers follow their carrier.
func (g *Game) SetLocation(u *Unit, location string, coord world.HexCoord) {
	g.detach(u)
	g.attach(u, location, coord)
}

func (g *Game) attach(u *Unit, location string, coord world.HexCoord) {
	u.Location = location
	u.Coord = coord
	u.Fortified = false
	switch Kind(location) {
	case "":
		if t := g.Map.Get(coord); t != nil {
			t.AddUnit(u.ID)
		}
	case PrefixColony:
		if c := g.Colony(location); c != nil {
			c.Units = appendUnique(c.Units, u.ID)
			u.Coord = c.Coord
		}
	case PrefixSettlement:
		if is := g.Settlement(location); is != nil {
			is.Units = appendUnique(is.Units, u.ID)
			u.Coord = is.Coord
		}
	case PrefixUnit:
		if carrier := g.Unit(location); carrier != nil {
			carrier.Units = appendUnique(carrier.Units, u.ID)
			u.Coord = carrier.Coord
		}
	}
	for _, id := range u.Units {
		if p := g.Unit(id); p != nil {
			p.Coord = u.Coord
		}
	}
}

func (g *Game) detach(u *Unit) {
	switch Kind(u.Location) {
	case "":
		if t := g.Map.Get(u.Coord); t != nil {
			t.RemoveUnit(u.ID)
		}
	case PrefixColony:
		if c := g.Colony(u.Location); c != nil {
			c.Units = removeID(c.Units, u.ID)
		}
	case PrefixSettlement:
		if is := g.Settlement(u.Location); is != nil {
			is.Units = removeID(is.Units, u.ID)
		}
	case PrefixUnit:
		if carrier := g.Unit(u.Location); carrier != nil {
			carrier.Units = removeID(carrier.Units, u.ID)
		}
	}
	u.Location = ""
}

// DisposeUnit removes a unit and everything aboard it from the game.
func (g *Game) DisposeUnit(u *Unit) {
	if u == nil || u.Disposed {
		return
	}
	for _, id := range append([]string(nil), u.Units...) {
		g.DisposeUnit(g.Unit(id))
	}
	g.detach(u)
	if is := g.Settlement(u.Home); is != nil {
		is.OwnedUnits = removeID(is.OwnedUnits, u.ID)
	}
	for _, is := range g.Settlements {
		if is.Missionary == u.ID {
			is.Missionary = ""
		}
	}
	delete(g.Units, u.ID)
	u.Disposed = true
}

// MoveUnitTo places a unit on the tile at coord, entering its own native
// settlement there if there is one.
func (g *Game) MoveUnitTo(u *Unit, coord world.HexCoord) {
	loc := ""
	if t := g.Map.Get(coord); t != nil && t.Settlement != "" {
		if is := g.Settlement(t.Settlement); is != nil && is.Owner == u.Owner {
			loc = is.ID
		}
	}
	g.SetLocation(u, loc, coord)
}

func appendUnique(list []string, id string) []string {
	for _, x := range list {
		if x == id {
			return list
		}
	}
	return append(list, id)
}

func removeID(list []string, id string) []string {
	for i, x := range list {
		if x == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
