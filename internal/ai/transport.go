package ai

import (
	"log/slog"
	"math"
	"sort"

	"github.com/talgya/frontier/internal/model"
	"github.com/talgya/frontier/internal/world"
)

// maxTransportStops bounds the stops a carrier makes in one turn.
const maxTransportStops = 8

// NewTransportMission turns a carrier into a transport.
func (m *Main) NewTransportMission(au *AIUnit) *Mission {
	return m.NewMission(KindTransport, au)
}

func transportInvalidReason(mi *Mission) string {
	if reason := unitInvalidReason(mi); reason != "" {
		return reason
	}
	if !mi.main.Game.IsCarrier(mi.Unit()) {
		return "unit-not-a-carrier"
	}
	return ""
}

func disposeTransport(mi *Mission) {
	for _, id := range mi.cargo {
		if t := mi.main.Transportable(id); t != nil && t.Transport() == mi.unit {
			t.SetTransport("", "carrier-mission-disposed")
		}
	}
	mi.cargo = nil
}

// capacity is the number of slots the carrier offers.
func (mi *Mission) capacity() int {
	u := mi.Unit()
	if u == nil {
		return 0
	}
	return mi.main.Game.GoodsCapacity(u)
}

func (mi *Mission) spaceUsed(except string) int {
	used := 0
	for _, id := range mi.cargo {
		if id == except {
			continue
		}
		if t := mi.main.Transportable(id); t != nil {
			used += t.SpaceTaken()
		}
	}
	return used
}

func (mi *Mission) indexOf(id string) int {
	for i, x := range mi.cargo {
		if x == id {
			return i
		}
	}
	return -1
}

// Queued reports whether a transportable is on the worklist.
func (mi *Mission) Queued(t Transportable) bool { return mi.indexOf(t.ID()) >= 0 }

// insert places id after every item of at least the same priority.
func (mi *Mission) insert(t Transportable) {
	p := t.TransportPriority()
	i := 0
	for ; i < len(mi.cargo); i++ {
		other := mi.main.Transportable(mi.cargo[i])
		if other != nil && other.TransportPriority() < p {
			break
		}
	}
	mi.cargo = append(mi.cargo, "")
	copy(mi.cargo[i+1:], mi.cargo[i:])
	mi.cargo[i] = t.ID()
}

// QueueTransportable adds a transportable to the worklist. An item already
// on this carrier is re-sorted at its current priority; an item queued
// elsewhere is taken off the other carrier first. Fails when the carrier
// cannot hold it.
func (mi *Mission) QueueTransportable(t Transportable) bool {
	if mi.Kind != KindTransport || t == nil {
		return false
	}
	if mi.Queued(t) {
		return mi.RequeueTransportable(t)
	}
	carrier := mi.Unit()
	if carrier == nil || !t.CarriableBy(carrier) {
		return false
	}
	if mi.spaceUsed("")+t.SpaceTaken() > mi.capacity() {
		return false
	}
	if old := t.Transport(); old != "" && old != mi.unit {
		if c := mi.main.AIUnit(old); c != nil && c.mission != nil && c.mission.Kind == KindTransport {
			c.mission.RemoveTransportable(t)
		}
	}
	mi.insert(t)
	t.SetTransport(mi.unit, "queued")
	return true
}

// RequeueTransportable re-sorts an item after its priority or destination
// changed. It is added if missing and never duplicated. Fails when the
// carrier has no room.
func (mi *Mission) RequeueTransportable(t Transportable) bool {
	if mi.Kind != KindTransport || t == nil {
		return false
	}
	i := mi.indexOf(t.ID())
	if i < 0 {
		return mi.QueueTransportable(t)
	}
	if mi.spaceUsed(t.ID())+t.SpaceTaken() > mi.capacity() {
		return false
	}
	mi.cargo = append(mi.cargo[:i], mi.cargo[i+1:]...)
	mi.insert(t)
	t.SetTransport(mi.unit, "requeued")
	return true
}

// RemoveTransportable takes an item off the worklist and clears its
// carrier if that was this one.
func (mi *Mission) RemoveTransportable(t Transportable) bool {
	if t == nil {
		return false
	}
	i := mi.indexOf(t.ID())
	if i >= 0 {
		mi.cargo = append(mi.cargo[:i], mi.cargo[i+1:]...)
	}
	if t.Transport() == mi.unit {
		t.SetTransport("", "removed")
	}
	return i >= 0
}

// aboard reports whether the transportable is on this carrier now.
func (mi *Mission) aboard(t Transportable) bool {
	return t.TransportSource() == mi.unit
}

// canStand reports whether the carrier may end a move on the tile.
func (mi *Mission) canStand(carrier *model.Unit, t *world.Tile) bool {
	g := mi.main.Game
	if t == nil {
		return false
	}
	if t.Settlement != "" {
		c := g.Colony(t.Settlement)
		return c != nil && c.Owner == carrier.Owner
	}
	return t.Land() != g.IsNaval(carrier)
}

// approach returns the location the carrier should head for to serve the
// stop: the stop itself when the carrier can stand there, otherwise the
// nearest tile next to it that the carrier can use.
func (mi *Mission) approach(stop string) (string, bool) {
	g := mi.main.Game
	carrier := mi.Unit()
	sc, ok := g.LocationCoord(stop)
	if !ok {
		return "", false
	}
	if model.Kind(stop) == model.PrefixUnit {
		return "", false
	}
	if mi.canStand(carrier, g.Map.Get(sc)) {
		return stop, true
	}
	best, bestDist := "", math.MaxInt
	for d := world.Direction(0); d < 6; d++ {
		t := g.Map.Neighbor(sc, d)
		if !mi.canStand(carrier, t) {
			continue
		}
		if dist := world.Distance(carrier.Coord, t.Coord); dist < bestDist {
			best, bestDist = model.TileID(t.Coord), dist
		}
	}
	return best, best != ""
}

// reached reports whether the carrier is where it can serve the stop.
func (mi *Mission) reached(stop string) bool {
	g := mi.main.Game
	carrier := mi.Unit()
	sc, ok := g.LocationCoord(stop)
	if !ok {
		return false
	}
	if sc == carrier.Coord {
		return true
	}
	return !mi.canStand(carrier, g.Map.Get(sc)) && world.DirectionTo(carrier.Coord, sc) != world.NoDirection
}

// stopFor is where the carrier must go next for an item: its destination
// when aboard, otherwise its source.
func (mi *Mission) stopFor(t Transportable) string {
	if mi.aboard(t) {
		if dest := t.TransportDestination(); dest != "" {
			return dest
		}
		if u := mi.Unit(); u != nil {
			return mi.main.nearestOwnSettlement(u)
		}
		return ""
	}
	return t.TransportSource()
}

// dropInvalid removes items that can no longer be carried, and waiting
// items that no longer want to go anywhere. Goods aboard for a captured
// settlement are sent to the nearest own colony instead.
func (mi *Mission) dropInvalid(lb *LogBuilder) {
	for _, id := range append([]string(nil), mi.cargo...) {
		t := mi.main.Transportable(id)
		if t == nil {
			mi.cargo = removeStringID(mi.cargo, id)
			continue
		}
		reason := t.InvalidReason()
		if ag, ok := t.(*AIGoods); ok && reason == "transportable-destination-captured" && mi.aboard(t) {
			home := ""
			if u := mi.Unit(); u != nil {
				home = mi.main.nearestOwnSettlement(u)
			}
			lb.Add(", retarget ", id, " to ", home)
			ag.SetTransportDestination(home)
			continue
		}
		if reason == "" && !mi.aboard(t) && t.TransportDestination() == "" {
			reason = "no-destination"
		}
		if reason != "" {
			lb.Add(", drop ", id, "(", reason, ")")
			mi.RemoveTransportable(t)
		}
	}
}

// deliver lets off every passenger and unloads every parcel whose stop the
// carrier has reached. Failed deliveries stay queued for another try.
func (mi *Mission) deliver(failed map[string]bool, lb *LogBuilder) {
	for _, id := range append([]string(nil), mi.cargo...) {
		t := mi.main.Transportable(id)
		if t == nil || failed[id] || !mi.aboard(t) {
			continue
		}
		dest := t.TransportDestination()
		if dest != "" && !mi.reached(dest) {
			continue
		}
		if _, goods := t.(*AIGoods); goods && dest == "" && !mi.inOwnColony() {
			continue
		}
		if !t.LeaveTransport() {
			if dest != "" {
				failed[id] = true
				lb.Add(", failed to deliver ", id)
			}
			continue
		}
		lb.Add(", delivered ", id)
		mi.RemoveTransportable(t)
		if g, ok := t.(*AIGoods); ok && g.location != "" && g.location == dest {
			mi.main.goodsDelivered(g)
		}
	}
}

func (mi *Mission) inOwnColony() bool {
	u := mi.Unit()
	t := mi.main.Game.Map.Get(u.Coord)
	if t == nil {
		return false
	}
	c := mi.main.Game.Colony(t.Settlement)
	return c != nil && c.Owner == u.Owner
}

// collect picks up every waiting item whose source the carrier has
// reached.
func (mi *Mission) collect(failed map[string]bool, lb *LogBuilder) {
	g := mi.main.Game
	carrier := mi.Unit()
	for _, id := range append([]string(nil), mi.cargo...) {
		t := mi.main.Transportable(id)
		if t == nil || failed[id] || mi.aboard(t) {
			continue
		}
		src := t.TransportSource()
		if !mi.reached(src) {
			continue
		}
		d := world.NoDirection
		if sc, ok := g.LocationCoord(src); ok && sc != carrier.Coord {
			d = world.DirectionTo(sc, carrier.Coord)
		}
		if !t.JoinTransport(carrier, d) {
			failed[id] = true
			lb.Add(", failed to collect ", id)
			continue
		}
		lb.Add(", collected ", id)
	}
}

// nextStop picks the stop of the highest priority item not yet served.
func (mi *Mission) nextStop(failed map[string]bool) (string, bool) {
	for _, id := range mi.cargo {
		t := mi.main.Transportable(id)
		if t == nil || failed[id] {
			continue
		}
		stop := mi.stopFor(t)
		if stop == "" || mi.reached(stop) {
			continue
		}
		if to, ok := mi.approach(stop); ok {
			return to, true
		}
	}
	return "", false
}

func doTransport(mi *Mission, lb *LogBuilder) *Mission {
	failed := make(map[string]bool)
	for i := 0; i < maxTransportStops; i++ {
		mi.dropInvalid(lb)
		mi.deliver(failed, lb)
		mi.collect(failed, lb)
		stop, ok := mi.nextStop(failed)
		if !ok {
			return mi.park(lb)
		}
		lb.Add(", heading for ", stop)
		if mt := mi.travelToTarget(stop, nil, lb); mt != model.Move {
			if mt == model.MoveNoTile {
				slog.Debug("transport stop unreachable", "carrier", mi.unit, "stop", stop)
				mi.skipStop(stop, failed)
				continue
			}
			return mi
		}
	}
	return mi
}

// skipStop marks every item heading for stop as failed for this turn.
func (mi *Mission) skipStop(stop string, failed map[string]bool) {
	for _, id := range mi.cargo {
		t := mi.main.Transportable(id)
		if t == nil {
			continue
		}
		if to, ok := mi.approach(mi.stopFor(t)); ok && to == stop {
			failed[id] = true
		}
	}
}

// park takes an idle carrier to the nearest own colony.
func (mi *Mission) park(lb *LogBuilder) *Mission {
	u := mi.Unit()
	if len(mi.cargo) > 0 || u.Location != "" {
		return mi
	}
	t := mi.main.Game.Map.Get(u.Coord)
	if t != nil && t.Settlement != "" {
		return mi
	}
	if home := mi.main.nearestOwnSettlement(u); home != "" {
		lb.Add(", parking at ", home)
		mi.travelToTarget(home, nil, lb)
	}
	return mi
}

// transportRequest is an item waiting for a carrier.
type transportRequest struct {
	t      Transportable
	source world.HexCoord
}

// allocateTransport hands waiting transportables to the player's carriers,
// highest priority first and nearest carrier first. Items left without a
// carrier wait one more turn at a higher priority.
func (p *Player) allocateTransport() {
	m := p.main
	g := m.Game

	var carriers []*AIUnit
	for _, au := range m.UnitsOf(p.ID) {
		if au.mission != nil && au.mission.Kind == KindTransport && au.mission.IsValid() {
			carriers = append(carriers, au)
		}
	}

	var waiting []transportRequest
	add := func(t Transportable) {
		if t.Transport() != "" || t.TransportDestination() == "" || t.InvalidReason() != "" {
			return
		}
		c, ok := g.LocationCoord(t.TransportSource())
		if !ok {
			return
		}
		waiting = append(waiting, transportRequest{t: t, source: c})
	}
	for _, au := range m.UnitsOf(p.ID) {
		if au.mission != nil && au.mission.Kind != KindTransport {
			add(au)
		}
	}
	for _, ag := range m.GoodsOf(p.ID) {
		add(ag)
	}
	sort.SliceStable(waiting, func(i, j int) bool {
		return waiting[i].t.TransportPriority() > waiting[j].t.TransportPriority()
	})

	for _, req := range waiting {
		var best *AIUnit
		bestDist := math.MaxInt
		for _, c := range carriers {
			cu := c.Unit()
			if cu == nil {
				continue
			}
			// Cargo already aboard a carrier stays with it.
			if model.Kind(req.t.TransportSource()) == model.PrefixUnit && req.t.TransportSource() != c.id {
				continue
			}
			if !req.t.CarriableBy(cu) || c.mission.spaceUsed("")+req.t.SpaceTaken() > c.mission.capacity() {
				continue
			}
			if d := world.Distance(cu.Coord, req.source); d < bestDist {
				best, bestDist = c, d
			}
		}
		if best != nil && best.mission.QueueTransportable(req.t) {
			slog.Debug("transport allocated", "item", req.t.ID(), "carrier", best.id, "priority", req.t.TransportPriority())
			continue
		}
		req.t.IncreaseTransportPriority()
	}
}
