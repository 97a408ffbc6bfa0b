package ai

import (
	"math"

	"github.com/talgya/frontier/internal/model"
	"github.com/talgya/frontier/internal/world"
)

// CostDecider prices one step of unit u toward goal, or refuses it.
type CostDecider func(g *model.Game, u *model.Unit, goal world.HexCoord, from, to *world.Tile) (int, bool)

// maxSettlementTurns bounds the search for a nearby own settlement.
const maxSettlementTurns = 10

func terrainCost(t *world.Tile) int {
	switch t.Terrain {
	case world.TerrainMountain:
		return 3
	case world.TerrainForest, world.TerrainSwamp:
		return 2
	default:
		return 1
	}
}

// defaultCost keeps to the unit's element and avoids foreign settlements
// other than the goal. Units on the way are ignored.
func defaultCost(g *model.Game, u *model.Unit, goal world.HexCoord, _, to *world.Tile) (int, bool) {
	if g.IsNaval(u) {
		if to.Land() && g.Colony(to.Settlement) == nil && to.Coord != goal {
			return 0, false
		}
		if to.Settlement != "" && to.Coord != goal && g.SettlementOwner(to.Settlement) != u.Owner {
			return 0, false
		}
		return 1, true
	}
	if !to.Land() {
		return 0, false
	}
	if to.Settlement != "" && to.Coord != goal && g.SettlementOwner(to.Settlement) != u.Owner {
		return 0, false
	}
	return terrainCost(to), true
}

// avoidSettlementsAndBlockingUnits refuses every settlement and every
// foreign unit except at the goal.
func avoidSettlementsAndBlockingUnits(g *model.Game, u *model.Unit, goal world.HexCoord, from, to *world.Tile) (int, bool) {
	if to.Coord != goal {
		if to.Settlement != "" {
			return 0, false
		}
		if g.ForeignUnitAt(to, u.Owner) != nil {
			return 0, false
		}
	}
	return defaultCost(g, u, goal, from, to)
}

// costFor binds a decider to a unit and goal. A nil decider uses the
// default.
func (m *Main) costFor(u *model.Unit, goal world.HexCoord, cd CostDecider) world.CostFunc {
	if cd == nil {
		cd = defaultCost
	}
	g := m.Game
	return func(from, to *world.Tile) (int, bool) {
		return cd(g, u, goal, from, to)
	}
}

func (m *Main) pathCost(u *model.Unit, from world.HexCoord, path []world.HexCoord, cd CostDecider) int {
	if len(path) == 0 {
		return 0
	}
	cost := m.costFor(u, path[len(path)-1], cd)
	total := 0
	prev := m.Game.Map.Get(from)
	for _, c := range path {
		t := m.Game.Map.Get(c)
		n, _ := cost(prev, t)
		total += n
		prev = t
	}
	return total
}

// turnsToOwnSettlement is how many turns u would need from coord to the
// nearest settlement its owner holds, looking no further than
// maxSettlementTurns.
func (m *Main) turnsToOwnSettlement(u *model.Unit, from world.HexCoord) (int, bool) {
	g := m.Game
	moves := 1
	if ut := g.UnitType(u); ut != nil && ut.Moves > 0 {
		moves = ut.Moves
	}
	best, found := math.MaxInt, false
	for _, c := range m.ownSettlementCoords(u.Owner) {
		if world.Distance(from, c) > maxSettlementTurns*moves {
			continue
		}
		path, ok := g.Map.FindPath(from, c, m.costFor(u, c, nil))
		if !ok {
			continue
		}
		turns := (m.pathCost(u, from, path, nil) + moves - 1) / moves
		if turns <= maxSettlementTurns && turns < best {
			best, found = turns, true
		}
	}
	return best, found
}

func (m *Main) ownSettlementCoords(owner string) []world.HexCoord {
	var out []world.HexCoord
	for _, c := range m.Game.ColoniesOf(owner) {
		out = append(out, c.Coord)
	}
	for _, is := range m.Game.SettlementsOf(owner) {
		out = append(out, is.Coord)
	}
	return out
}

// nearestOwnSettlement returns the reachable own settlement closest to u
// by path cost, "" when there is none.
func (m *Main) nearestOwnSettlement(u *model.Unit) string {
	g := m.Game
	best, bestCost := "", math.MaxInt
	try := func(id string, c world.HexCoord) {
		if c == u.Coord {
			best, bestCost = id, 0
			return
		}
		path, ok := g.Map.FindPath(u.Coord, c, m.costFor(u, c, nil))
		if !ok {
			return
		}
		if cost := m.pathCost(u, u.Coord, path, nil); cost < bestCost {
			best, bestCost = id, cost
		}
	}
	for _, c := range g.ColoniesOf(u.Owner) {
		try(c.ID, c.Coord)
	}
	if !g.IsNaval(u) {
		for _, is := range g.SettlementsOf(u.Owner) {
			try(is.ID, is.Coord)
		}
	}
	return best
}

// requestRearrangeAt flags the colony at coord, if any, for a worker
// rearrangement.
func (m *Main) requestRearrangeAt(coord world.HexCoord) {
	t := m.Game.Map.Get(coord)
	if t == nil || t.Settlement == "" {
		return
	}
	if ac := m.AIColony(t.Settlement); ac != nil {
		ac.RequestRearrange()
	}
}

// travelToTarget walks the unit toward target for as long as its moves
// allow. It returns Move on arrival, otherwise the move type that stopped
// it: an attack when something hostile is in the way, NoMoves when out of
// moves or waiting aboard a carrier, NoTile when there is no path.
func (mi *Mission) travelToTarget(target string, cd CostDecider, lb *LogBuilder) model.MoveType {
	g := mi.main.Game
	au := mi.AIUnit()
	u := mi.Unit()
	if u == nil {
		return model.MoveIllegal
	}
	tc, ok := g.LocationCoord(target)
	if !ok {
		return model.MoveNoTile
	}
	if u.Location == target || (u.Coord == tc && !u.OnCarrier()) {
		return model.Move
	}
	cost := mi.main.costFor(u, tc, cd)

	if u.OnCarrier() {
		if g.IsNaval(u) {
			return model.MoveIllegal
		}
		if _, ok := g.Map.FindPath(u.Coord, tc, cost); !ok {
			return model.MoveNoMoves
		}
		if !au.LeaveTransport() {
			lb.Add(", failed to disembark")
			return model.MoveNoMoves
		}
		if u.Coord == tc {
			return model.Move
		}
	}

	path, ok := g.Map.FindPath(u.Coord, tc, cost)
	if !ok {
		lb.Add(", no path to ", target)
		return model.MoveNoTile
	}
	for _, step := range path {
		d := world.DirectionTo(u.Coord, step)
		mt := g.MoveType(u, d)
		if mt != model.Move {
			return mt
		}
		if !au.Move(d) {
			return model.MoveIllegal
		}
		if u.Coord == tc {
			return model.Move
		}
	}
	return model.Move
}

// resolveBlockage returns the foreign unit standing on the next step
// toward target, or nil.
func (mi *Mission) resolveBlockage(target string) *model.Unit {
	g := mi.main.Game
	u := mi.Unit()
	if u == nil {
		return nil
	}
	tc, ok := g.LocationCoord(target)
	if !ok {
		return nil
	}
	path, ok := g.Map.FindPath(u.Coord, tc, mi.main.costFor(u, tc, nil))
	if !ok || len(path) == 0 {
		return nil
	}
	t := g.Map.Get(path[0])
	if t == nil || world.DirectionTo(u.Coord, t.Coord) == world.NoDirection {
		return nil
	}
	return g.ForeignUnitAt(t, u.Owner)
}

// moveRandomly spends the unit's moves on plain moves in random
// directions.
func (mi *Mission) moveRandomly(logMe string) {
	g := mi.main.Game
	au := mi.AIUnit()
	u := mi.Unit()
	for step := 0; u != nil && u.MovesLeft > 0 && step < 8; step++ {
		start := mi.main.rng.Intn(logMe+" move randomly", 6)
		moved := false
		for i := 0; i < 6; i++ {
			d := world.Direction((start + i) % 6)
			if g.MoveType(u, d) == model.Move && au.Move(d) {
				moved = true
				break
			}
		}
		if !moved {
			return
		}
		u = mi.Unit()
	}
}
