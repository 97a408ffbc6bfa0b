package ai

import (
	"log/slog"
	"math"

	"github.com/talgya/frontier/internal/model"
	"github.com/talgya/frontier/internal/world"
)

// AIUnit is the AI side of a unit: its mission and transport state. Its id
// is the unit's id.
type AIUnit struct {
	id   string
	main *Main

	mission         *Mission
	dynamicPriority int
	transport       string // Carrier AIUnit id

	uninitialized bool
	disposed      bool
}

func (a *AIUnit) ID() string { return a.id }

// Unit returns the game unit, or nil once it is gone.
func (a *AIUnit) Unit() *model.Unit {
	if a == nil || a.disposed {
		return nil
	}
	return a.main.Game.Unit(a.id)
}

// Owner is the id of the unit's owner.
func (a *AIUnit) Owner() string {
	if u := a.Unit(); u != nil {
		return u.Owner
	}
	return ""
}

// Mission returns the current mission, or nil.
func (a *AIUnit) Mission() *Mission { return a.mission }

// HasMission reports whether a mission is assigned.
func (a *AIUnit) HasMission() bool { return a.mission != nil }

// Disposed reports whether the AI unit has been removed.
func (a *AIUnit) Disposed() bool { return a.disposed }

// ChangeMission replaces the current mission. The old mission is disposed
// and the wait priority restarts. A unit aboard a carrier stays queued when
// the target is unchanged or the carrier can requeue it, and otherwise
// gets off.
func (a *AIUnit) ChangeMission(m *Mission, lb *LogBuilder) {
	if a.mission == m {
		return
	}
	oldTarget := ""
	if a.mission == nil {
		lb.Add(" replaced nothing with ", m)
	} else {
		lb.Add(" replaced ", a.mission, " with ", m)
		oldTarget = a.mission.Target()
		a.mission.Dispose()
	}
	a.mission = m
	a.dynamicPriority = 0

	cancel := true
	if u := a.Unit(); u != nil && u.OnCarrier() {
		switch {
		case m == nil:
			if a.LeaveTransport() {
				lb.Add(" disembarked")
			}
		case oldTarget == m.Target():
			cancel = false
		case a.requeueOnCurrentCarrier():
			cancel = false
		default:
			if a.LeaveTransport() {
				lb.Add(" disembarked")
			}
		}
	}
	if cancel {
		a.removeTransport("mission-changed")
	}
}

func (a *AIUnit) carrierMission() *Mission {
	c := a.main.AIUnit(a.transport)
	if c == nil || c.mission == nil || c.mission.Kind != KindTransport {
		return nil
	}
	return c.mission
}

func (a *AIUnit) requeueOnCurrentCarrier() bool {
	u := a.Unit()
	if u == nil || !u.OnCarrier() {
		return false
	}
	carrier := a.main.AIUnit(u.Location)
	if carrier == nil || carrier.mission == nil || carrier.mission.Kind != KindTransport {
		return false
	}
	if carrier.mission.RequeueTransportable(a) {
		a.SetTransport(carrier.id, "requeued")
		return true
	}
	return false
}

func (a *AIUnit) removeTransport(reason string) {
	if tm := a.carrierMission(); tm != nil {
		tm.RemoveTransportable(a)
	}
	a.SetTransport("", reason)
}

func (a *AIUnit) retargetTransport() {
	if tm := a.carrierMission(); tm != nil {
		tm.RequeueTransportable(a)
	}
}

// DoMission steps the mission if it is still valid. It returns the mission
// the unit should have afterwards.
func (a *AIUnit) DoMission(lb *LogBuilder) *Mission {
	if a.mission == nil || !a.mission.IsValid() {
		return nil
	}
	return a.mission.DoMission(lb)
}

// Move steps one tile and reports whether the unit actually moved.
func (a *AIUnit) Move(d world.Direction) bool {
	u := a.Unit()
	if u == nil {
		return false
	}
	start := u.Coord
	return a.main.dispatch.Move(u, d) && a.Unit() != nil && u.Coord != start
}

// EquipForRole asks for a role change and checks it took effect.
func (a *AIUnit) EquipForRole(role string) bool {
	u := a.Unit()
	if u == nil || a.main.Game.Rules.Role(role) == nil {
		return false
	}
	return a.main.dispatch.EquipForRole(u, role) && u.Role == role
}

func (a *AIUnit) SpaceTaken() int {
	if u := a.Unit(); u != nil {
		return a.main.Game.SpaceTaken(u)
	}
	return 0
}

func (a *AIUnit) TransportSource() string {
	u := a.Unit()
	if u == nil {
		return ""
	}
	if u.Location != "" {
		return u.Location
	}
	return model.TileID(u.Coord)
}

func (a *AIUnit) TransportDestination() string {
	if a.Unit() == nil || a.mission == nil {
		return ""
	}
	return a.mission.TransportDestination()
}

// TransportPriority is the mission's base priority plus the turns spent
// waiting, zero without a mission.
func (a *AIUnit) TransportPriority() int {
	if a.mission == nil {
		return 0
	}
	return a.mission.BasePriority() + a.dynamicPriority
}

func (a *AIUnit) SetTransportPriority(p int) {
	if a.mission != nil {
		a.dynamicPriority = max(p, 0)
	}
}

func (a *AIUnit) IncreaseTransportPriority() {
	if a.mission != nil {
		a.dynamicPriority++
	}
}

// WaitingTurns is the dynamic part of the transport priority.
func (a *AIUnit) WaitingTurns() int { return a.dynamicPriority }

func (a *AIUnit) Transport() string { return a.transport }

func (a *AIUnit) SetTransport(carrier, reason string) {
	if a.transport != carrier {
		slog.Debug("set transport", "unit", a.id, "carrier", carrier, "reason", reason)
	}
	a.transport = carrier
}

func (a *AIUnit) CarriableBy(carrier *model.Unit) bool {
	u := a.Unit()
	return u != nil && a.main.Game.CouldCarry(carrier, u)
}

func (a *AIUnit) InvalidReason() string {
	u := a.Unit()
	if u == nil {
		return "transportable-disposed"
	}
	return ""
}

// AbortWish drops a wish realization mission without disposing it and
// disposes the wish when it is still bound to this unit.
func (a *AIUnit) AbortWish(w *Wish) {
	if a.mission != nil && a.mission.Kind == KindWishRealization {
		a.mission = nil
		a.dynamicPriority = 0
	}
	if w.transportable == a.id {
		w.Dispose()
	}
}

// LeaveTransport gets the unit off its carrier. It heads for the mission
// target when that is here, adjacent or one path step away, otherwise
// lands where it is, next to an own settlement, on the neighbour closest
// to an own settlement, or failing that on the best defended neighbour.
func (a *AIUnit) LeaveTransport() bool {
	u := a.Unit()
	if u == nil {
		return false
	}
	if !u.OnCarrier() {
		return true
	}
	game := a.main.Game
	tile := game.Map.Get(u.Coord)
	if tile == nil {
		return false
	}

	target := ""
	if a.mission != nil && a.mission.IsValid() {
		target = a.mission.Target()
	}
	if target != "" {
		if tc, ok := game.LocationCoord(target); ok {
			if tc == u.Coord {
				return a.leaveTransport(world.NoDirection)
			}
			if d := world.DirectionTo(u.Coord, tc); d != world.NoDirection {
				return a.leaveTransport(d)
			}
			if path, ok := game.Map.FindPath(u.Coord, tc, a.main.costFor(u, tc, nil)); ok && len(path) > 0 {
				if d := world.DirectionTo(u.Coord, path[0]); d != world.NoDirection {
					return a.leaveTransport(d)
				}
			}
		}
	}

	if tile.Land() {
		return a.leaveTransport(world.NoDirection)
	}

	var dirs []world.Direction
	for d := world.Direction(0); d < 6; d++ {
		t := game.Map.Neighbor(u.Coord, d)
		if t == nil || game.MoveType(u, d) != model.Move {
			continue
		}
		if t.Settlement != "" {
			return a.leaveTransport(d)
		}
		dirs = append(dirs, d)
	}
	if len(dirs) == 0 {
		return false
	}

	safe := dirs[0]
	best := world.NoDirection
	bestTurns := math.MaxInt
	for _, d := range dirs {
		t := game.Map.Neighbor(u.Coord, d)
		if turns, ok := a.main.turnsToOwnSettlement(u, t.Coord); ok && turns < bestTurns {
			bestTurns = turns
			best = d
		}
		if game.Map.Neighbor(u.Coord, safe).DefenceValue() < t.DefenceValue() {
			safe = d
		}
	}
	if best != world.NoDirection {
		return a.leaveTransport(best)
	}
	return a.leaveTransport(safe)
}

func (a *AIUnit) leaveTransport(d world.Direction) bool {
	u := a.Unit()
	if u == nil || !u.OnCarrier() {
		return false
	}
	carrier := a.main.Game.Unit(u.Location)
	var ok bool
	if d != world.NoDirection {
		ok = a.Move(d)
	} else {
		ok = a.main.dispatch.Disembark(u) && !u.OnCarrier() && carrier != nil && u.Coord == carrier.Coord
	}
	if ok {
		a.main.requestRearrangeAt(u.Coord)
		a.removeTransport("disembarked")
	}
	return ok
}

// JoinTransport boards a carrier from this tile or an adjacent one.
func (a *AIUnit) JoinTransport(carrier *model.Unit, d world.Direction) bool {
	u := a.Unit()
	if u == nil || carrier == nil || a.main.AIUnit(carrier.ID) == nil {
		return false
	}
	from := u.Coord
	ok := a.main.dispatch.Embark(u, carrier, d) && u.Location == carrier.ID
	if ok {
		a.main.requestRearrangeAt(from)
		a.retargetTransport()
	}
	return ok
}

// Dispose removes the AI unit, disposing its mission and leaving any
// carrier's worklist.
func (a *AIUnit) Dispose() {
	if a.disposed {
		return
	}
	if a.mission != nil {
		m := a.mission
		a.mission = nil
		m.Dispose()
	}
	a.removeTransport("disposing")
	a.disposed = true
	delete(a.main.units, a.id)
}

// CheckIntegrity reports 1 when sound, 0 when fixed, -1 when broken. It
// cascades into the mission.
func (a *AIUnit) CheckIntegrity(fix bool) int {
	if a.uninitialized || a.Unit() == nil {
		return -1
	}
	result := 1
	if a.transport != "" && a.main.AIUnit(a.transport) == nil {
		if !fix {
			return -1
		}
		a.transport = ""
		result = 0
	}
	if a.mission != nil {
		switch r := a.mission.CheckIntegrity(fix); {
		case r < 0 && fix:
			slog.Warn("dropping broken mission", "unit", a.id, "mission", a.mission.Tag())
			m := a.mission
			a.mission = nil
			m.Dispose()
			result = 0
		case r < 0:
			return -1
		case r == 0:
			result = 0
		}
	}
	return result
}
