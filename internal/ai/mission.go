package ai

import (
	"github.com/talgya/frontier/internal/model"
)

// Kind selects a mission variant.
type Kind uint8

const (
	KindTransport Kind = iota
	KindWishRealization
	KindIndianDemand
	KindIndianBringGift
	KindDefendSettlement
	KindWorkInsideColony
	KindIdleAtSettlement
	KindUnitWanderHostile
	KindMissionary
	numKinds
)

// missionOps is the per-variant behaviour of a mission.
type missionOps struct {
	name         string // Name used by the ruleset's mission rules
	tag          string // Record tag
	basePriority int
	oneTime      bool // Replaced whenever something better comes up

	// findTarget picks a target for a fresh mission, "" when none.
	findTarget func(mi *Mission) string
	// activate binds the mission to whatever it reserved in findTarget.
	activate func(mi *Mission)
	// invalidReason reports why the mission cannot go on, "" when it can.
	invalidReason func(mi *Mission) string
	// doMission runs one turn step.
	doMission func(mi *Mission, lb *LogBuilder) *Mission
	// transportDestination is where the unit needs carrying, "" when it
	// can get there on its own.
	transportDestination func(mi *Mission) string
	dispose              func(mi *Mission)
}

var missionTable [numKinds]missionOps

// init fills the table here because the step functions refer back to it.
func init() {
	missionTable[KindTransport] = missionOps{
		name:          "transport",
		tag:           "transportMission",
		invalidReason: transportInvalidReason,
		doMission:     doTransport,
		dispose:       disposeTransport,
	}
	missionTable[KindWishRealization] = missionOps{
		name:          "wishRealization",
		tag:           "wishRealizationMission",
		basePriority:  60,
		findTarget:    wishFindTarget,
		activate:      wishActivate,
		invalidReason: wishInvalidReason,
		doMission:     doWishRealization,
		dispose:       disposeWishRealization,
	}
	missionTable[KindIndianDemand] = missionOps{
		name:          "indianDemand",
		tag:           "indianDemandMission",
		findTarget:    demandFindTarget,
		invalidReason: demandInvalidReason,
		doMission:     doIndianDemand,
		transportDestination: func(*Mission) string {
			return ""
		},
	}
	missionTable[KindIndianBringGift] = missionOps{
		name:          "indianBringGift",
		tag:           "indianBringGiftMission",
		findTarget:    giftFindTarget,
		invalidReason: giftInvalidReason,
		doMission:     doIndianBringGift,
		transportDestination: func(*Mission) string {
			return ""
		},
	}
	missionTable[KindDefendSettlement] = missionOps{
		name:          "defendSettlement",
		tag:           "defendSettlementMission",
		basePriority:  50,
		findTarget:    defendFindTarget,
		invalidReason: defendInvalidReason,
		doMission:     doDefendSettlement,
	}
	missionTable[KindWorkInsideColony] = missionOps{
		name:          "workInsideColony",
		tag:           "workInsideColonyMission",
		basePriority:  30,
		findTarget:    workFindTarget,
		invalidReason: workInvalidReason,
		doMission:     doWorkInsideColony,
	}
	missionTable[KindIdleAtSettlement] = missionOps{
		name:          "idleAtSettlement",
		tag:           "idleAtSettlementMission",
		oneTime:       true,
		findTarget:    idleFindTarget,
		invalidReason: unitInvalidReason,
		doMission:     doIdleAtSettlement,
		transportDestination: func(*Mission) string {
			return ""
		},
	}
	missionTable[KindUnitWanderHostile] = missionOps{
		name:          "unitWanderHostile",
		tag:           "unitWanderHostileMission",
		oneTime:       true,
		invalidReason: wanderInvalidReason,
		doMission:     doUnitWanderHostile,
		transportDestination: func(*Mission) string {
			return ""
		},
	}
	missionTable[KindMissionary] = missionOps{
		name:          "missionary",
		tag:           "missionaryMission",
		basePriority:  40,
		findTarget:    missionaryFindTarget,
		invalidReason: missionaryInvalidReason,
		doMission:     doMissionary,
	}
}

// KindByName resolves a ruleset mission name.
func KindByName(name string) (Kind, bool) {
	for k := Kind(0); k < numKinds; k++ {
		if missionTable[k].name == name {
			return k, true
		}
	}
	return 0, false
}

// kindByTag resolves a record tag.
func kindByTag(tag string) (Kind, bool) {
	for k := Kind(0); k < numKinds; k++ {
		if missionTable[k].tag == tag {
			return k, true
		}
	}
	return 0, false
}

func (k Kind) String() string {
	if k < numKinds {
		return missionTable[k].name
	}
	return "unknown"
}

// Mission is a unit's current goal. The Kind selects the behaviour; the
// remaining fields hold the state of whichever variant is running.
type Mission struct {
	Kind Kind

	main *Main
	unit string // Owning AIUnit

	target string

	completed bool // Demand and gift: nothing left to do
	demanded  bool // Demand: the demand has been made
	collected bool // Gift: the gift is loaded

	wish  string   // Wish realization: the wish being fulfilled
	cargo []string // Transport: worklist of transportables, by priority

	uninitialized bool
	disposed      bool
}

// NewMission creates an unassigned mission of the given kind for a unit.
func (m *Main) NewMission(k Kind, au *AIUnit) *Mission {
	return &Mission{Kind: k, main: m, unit: au.id}
}

func (mi *Mission) ops() *missionOps { return &missionTable[mi.Kind] }

// Tag is the record tag of the mission's variant.
func (mi *Mission) Tag() string { return mi.ops().tag }

func (mi *Mission) String() string {
	if mi == nil {
		return "<none>"
	}
	if mi.target == "" {
		return mi.Tag()
	}
	return mi.Tag() + "@" + mi.target
}

// AIUnit is the owning AI unit, or nil once disposed.
func (mi *Mission) AIUnit() *AIUnit { return mi.main.AIUnit(mi.unit) }

// Unit is the owning game unit, or nil.
func (mi *Mission) Unit() *model.Unit {
	if au := mi.AIUnit(); au != nil {
		return au.Unit()
	}
	return nil
}

// Target is the location the mission is heading for, "" when none.
func (mi *Mission) Target() string { return mi.target }

// SetTarget points the mission at a new location.
func (mi *Mission) SetTarget(target string) { mi.target = target }

// Completed reports whether a demand or gift mission has finished.
func (mi *Mission) Completed() bool { return mi.completed }

// Demanded reports whether a demand mission has made its demand.
func (mi *Mission) Demanded() bool { return mi.demanded }

// WishID is the wish a wish realization mission serves.
func (mi *Mission) WishID() string { return mi.wish }

// Cargo returns a copy of a transport mission's worklist.
func (mi *Mission) Cargo() []string { return append([]string(nil), mi.cargo...) }

func (mi *Mission) BasePriority() int { return mi.ops().basePriority }

// IsOneTime reports whether the mission is a filler to be replaced by any
// real goal. One-time missions are not saved.
func (mi *Mission) IsOneTime() bool { return mi.ops().oneTime }

// FindTarget asks the variant for a target and sets it. It reports
// whether one was found.
func (mi *Mission) FindTarget() bool {
	if f := mi.ops().findTarget; f != nil {
		mi.target = f(mi)
	}
	return mi.target != "" || mi.ops().findTarget == nil
}

// Activate binds the mission to the wish or other goal it reserved when its
// target was found.
func (mi *Mission) Activate() {
	if f := mi.ops().activate; f != nil {
		f(mi)
	}
}

// InvalidReason is non-empty when the mission cannot make progress.
func (mi *Mission) InvalidReason() string {
	if mi.disposed {
		return "mission-disposed"
	}
	if mi.uninitialized {
		return "mission-uninitialized"
	}
	return mi.ops().invalidReason(mi)
}

func (mi *Mission) IsValid() bool { return mi.InvalidReason() == "" }

func (mi *Mission) Disposed() bool { return mi.disposed }

// DoMission runs one turn step. It returns the mission itself to carry on,
// another mission to hand over to, or nil when finished or failed.
func (mi *Mission) DoMission(lb *LogBuilder) *Mission {
	lb.Add(" ", mi.Tag())
	if reason := mi.InvalidReason(); reason != "" {
		lb.Add(" broken(", reason, ")")
		return nil
	}
	return mi.ops().doMission(mi, lb)
}

// TransportDestination is where the unit needs a carrier to take it, ""
// when no transport is needed.
func (mi *Mission) TransportDestination() string {
	if f := mi.ops().transportDestination; f != nil {
		return f(mi)
	}
	return mi.defaultTransportDestination()
}

// defaultTransportDestination wants the target when the unit is a land
// unit that cannot walk there.
func (mi *Mission) defaultTransportDestination() string {
	u := mi.Unit()
	if u == nil || mi.target == "" || !mi.IsValid() {
		return ""
	}
	g := mi.main.Game
	if g.IsNaval(u) {
		return ""
	}
	tc, ok := g.LocationCoord(mi.target)
	if !ok {
		return ""
	}
	if tc == u.Coord && !u.OnCarrier() {
		return ""
	}
	if _, ok := g.Map.FindPath(u.Coord, tc, mi.main.costFor(u, tc, nil)); ok {
		return ""
	}
	return mi.target
}

// Dispose releases everything the mission holds. The owning unit keeps no
// reference afterwards.
func (mi *Mission) Dispose() {
	if mi.disposed {
		return
	}
	if f := mi.ops().dispose; f != nil {
		f(mi)
	}
	mi.disposed = true
}

// CheckIntegrity reports 1 when sound, 0 when fixed, -1 when broken.
func (mi *Mission) CheckIntegrity(fix bool) int {
	if mi.uninitialized || mi.disposed || mi.AIUnit() == nil {
		return -1
	}
	result := 1
	if mi.Kind == KindWishRealization && mi.wish != "" {
		w := mi.main.Wish(mi.wish)
		if w == nil || w.disposed || w.uninitialized {
			return -1
		}
	}
	if mi.Kind == KindTransport {
		kept := mi.cargo[:0]
		for _, id := range mi.cargo {
			if mi.main.Transportable(id) != nil {
				kept = append(kept, id)
				continue
			}
			if !fix {
				return -1
			}
			result = 0
		}
		mi.cargo = kept
	}
	return result
}

func (mi *Mission) lbDone(lb *LogBuilder, args ...any) *Mission {
	lb.Add(", done")
	lb.Add(args...)
	return nil
}

func (mi *Mission) lbFail(lb *LogBuilder, args ...any) *Mission {
	lb.Add(", failed")
	lb.Add(args...)
	return nil
}

func (mi *Mission) lbWait(lb *LogBuilder) *Mission {
	lb.Add(", waiting")
	return mi
}

func (mi *Mission) lbMove(lb *LogBuilder, mt model.MoveType) *Mission {
	lb.Add(", bad move ", mt)
	return mi
}

func (mi *Mission) lbAttack(lb *LogBuilder, what string) *Mission {
	lb.Add(", attacking ", what)
	return mi
}

func (mi *Mission) lbAt(lb *LogBuilder) {
	lb.Add(", at ", mi.target)
}

// unitInvalidReason covers what every mission needs from its unit.
func unitInvalidReason(mi *Mission) string {
	au := mi.AIUnit()
	if au == nil || au.Unit() == nil {
		return "unit-null"
	}
	return ""
}

// targetInvalidReason checks that the target still exists and, for a
// settlement when owner is set, that owner holds it.
func targetInvalidReason(g *model.Game, target, owner string) string {
	if target == "" {
		return "target-null"
	}
	if !g.LocationExists(target) {
		return "target-invalid"
	}
	if owner != "" {
		switch model.Kind(target) {
		case model.PrefixColony, model.PrefixSettlement:
			if g.SettlementOwner(target) != owner {
				return "target-owner"
			}
		}
	}
	return ""
}
