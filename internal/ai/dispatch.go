package ai

import (
	"github.com/talgya/frontier/internal/model"
	"github.com/talgya/frontier/internal/world"
)

// Dispatcher is the command boundary between the AI and the authoritative
// game. Every call returns whether it succeeded; a failed call leaves the
// game untouched.
type Dispatcher interface {
	// Move steps the unit one tile in direction d.
	Move(u *model.Unit, d world.Direction) bool
	// Attack attacks whatever occupies the tile in direction d.
	Attack(u *model.Unit, d world.Direction) bool
	// Embark boards carrier, which is on the same tile (NoDirection) or
	// the adjacent tile in direction d.
	Embark(u, carrier *model.Unit, d world.Direction) bool
	// Disembark puts a passenger down on its carrier's tile.
	Disembark(u *model.Unit) bool
	// LoadCargo moves goods from the settlement the carrier is in onto
	// the carrier.
	LoadCargo(carrier *model.Unit, goods string, amount int) bool
	// UnloadCargo moves goods from the carrier into the settlement it is
	// in, or dumps them when there is none.
	UnloadCargo(carrier *model.Unit, goods string, amount int) bool
	// SellGoods sells colony goods on the owner's market.
	SellGoods(c *model.Colony, goods string, amount int) bool
	// EquipForRole changes the unit's role, paying for the equipment
	// from the settlement it is in.
	EquipForRole(u *model.Unit, role string) bool
	// IndianDemand asks the colony's owner for tribute. An empty goods
	// type demands gold. Reports whether the demand was accepted.
	IndianDemand(u *model.Unit, c *model.Colony, goods string, amount int) bool
	// DeliverGift hands the unit's cargo to the colony.
	DeliverGift(u *model.Unit, c *model.Colony, goods string, amount int) bool
	// EstablishMission installs the unit as missionary at the settlement.
	EstablishMission(u *model.Unit, is *model.IndianSettlement) bool
	// JoinColony makes the unit a worker inside the colony.
	JoinColony(u *model.Unit, c *model.Colony) bool
	// Fortify fortifies the unit where it stands.
	Fortify(u *model.Unit) bool
}
