package model

import "github.com/talgya/frontier/internal/world"

// MoveType classifies what stepping in a direction would do.
type MoveType uint8

const (
	MoveIllegal      MoveType = iota // Not possible at all
	Move                             // Plain move (or arrival)
	MoveNoMoves                      // Out of moves this turn
	MoveNoRepair                     // Damaged, under repair
	MoveNoTile                       // Off the map, or no path
	MoveNoAccess                     // Blocked by a foreign unit or settlement
	Embark                           // Board an own carrier on a water tile
	AttackUnit                       // Step would attack a unit
	AttackSettlement                 // Step would attack a settlement
)

var moveTypeNames = [...]string{
	"illegal", "move", "no-moves", "no-repair", "no-tile",
	"no-access", "embark", "attack-unit", "attack-settlement",
}

func (mt MoveType) String() string {
	if int(mt) < len(moveTypeNames) {
		return moveTypeNames[mt]
	}
	return "unknown"
}

// IsAttack reports whether the move is an attack.
func (mt MoveType) IsAttack() bool {
	return mt == AttackUnit || mt == AttackSettlement
}

// MoveType classifies a one-step move of u in direction d.
func (g *Game) MoveType(u *Unit, d world.Direction) MoveType {
	if u == nil || u.Disposed {
		return MoveIllegal
	}
	if Kind(u.Location) == PrefixColony {
		return MoveIllegal // Workers leave through the colony, not by moving.
	}
	if u.RepairTurns > 0 {
		return MoveNoRepair
	}
	if u.MovesLeft <= 0 {
		return MoveNoMoves
	}
	if d < 0 || d > 5 {
		return MoveNoTile
	}
	to := g.Map.Neighbor(u.Coord, d)
	if to == nil {
		return MoveNoTile
	}
	return g.classify(u, to)
}

func (g *Game) classify(u *Unit, to *world.Tile) MoveType {
	naval := g.IsNaval(u)
	if to.Settlement != "" {
		if g.SettlementOwner(to.Settlement) == u.Owner {
			if naval && g.Colony(to.Settlement) == nil {
				return MoveNoAccess
			}
			return Move
		}
		if naval {
			return MoveNoAccess
		}
		if g.IsOffensive(u) {
			return AttackSettlement
		}
		return MoveNoAccess
	}
	if defender := g.ForeignUnitAt(to, u.Owner); defender != nil {
		if g.IsNaval(defender) != naval {
			return MoveNoAccess
		}
		if g.IsOffensive(u) {
			return AttackUnit
		}
		return MoveNoAccess
	}
	if naval {
		if to.Land() {
			return MoveIllegal
		}
		return Move
	}
	if !to.Land() {
		if g.CarrierFor(to, u) != nil {
			return Embark
		}
		return MoveIllegal
	}
	return Move
}

// ForeignUnitAt returns the first unit on the tile not owned by owner.
func (g *Game) ForeignUnitAt(t *world.Tile, owner string) *Unit {
	for _, id := range t.Units {
		if u := g.Unit(id); u != nil && u.Owner != owner {
			return u
		}
	}
	return nil
}

// CarrierFor returns an own carrier on the tile with room for u.
func (g *Game) CarrierFor(t *world.Tile, u *Unit) *Unit {
	for _, id := range t.Units {
		c := g.Unit(id)
		if c == nil || c.Owner != u.Owner || !g.CouldCarry(c, u) {
			continue
		}
		if g.SpaceLeft(c) >= g.SpaceTaken(u) {
			return c
		}
	}
	return nil
}

// Defender picks the unit that defends a tile: the strongest defender,
// earliest arrival among equals.
func (g *Game) Defender(t *world.Tile) *Unit {
	var best *Unit
	for _, id := range g.occupants(t) {
		u := g.Unit(id)
		if u == nil {
			continue
		}
		if best == nil || g.Defence(u) > g.Defence(best) {
			best = u
		}
	}
	return best
}

// occupants lists the units on a tile and inside any settlement there.
func (g *Game) occupants(t *world.Tile) []string {
	out := append([]string(nil), t.Units...)
	if is := g.Settlement(t.Settlement); is != nil {
		out = append(out, is.Units...)
	}
	if c := g.Colony(t.Settlement); c != nil {
		out = append(out, c.Units...)
	}
	return out
}

// HouseMissionary moves u off the map into the settlement as its
// missionary. The missionary does not count as a settlement unit.
func (g *Game) HouseMissionary(is *IndianSettlement, u *Unit) {
	g.detach(u)
	u.Location = is.ID
	u.Coord = is.Coord
	is.Missionary = u.ID
}
