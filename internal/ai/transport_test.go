package ai

import (
	"slices"
	"testing"

	"github.com/talgya/frontier/internal/world"
)

func TestGoodsPriorityRisesWhileUnserved(t *testing.T) {
	tests := []struct {
		name   string
		turns  int
		expect int
	}{
		{"fresh", 0, 0},
		{"one turn", 1, 1},
		{"five turns", 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.colony.Goods.Add("furs", 100)
			ag := f.m.NewAIGoods(f.colony.ID, "furs", 100, f.colony2.ID)
			p := f.m.AIPlayer(f.dutch.ID)
			for i := 0; i < tt.turns; i++ {
				p.allocateTransport()
			}
			if got := ag.TransportPriority(); got != tt.expect {
				t.Errorf("priority = %d, want %d", got, tt.expect)
			}
		})
	}
}

func TestGoodsPriorityStopsOnceServed(t *testing.T) {
	f := newFixture(t)
	f.colony.Goods.Add("furs", 100)
	ag := f.m.NewAIGoods(f.colony.ID, "furs", 100, f.colony2.ID)
	p := f.m.AIPlayer(f.dutch.ID)
	p.allocateTransport()
	p.allocateTransport()

	c := f.carrier(t)
	p.allocateTransport()
	if ag.Transport() != c.ID() {
		t.Fatalf("transport = %q, want %q", ag.Transport(), c.ID())
	}
	if got := ag.TransportPriority(); got != 2 {
		t.Errorf("priority = %d, want 2 after being served", got)
	}

	ag.SetTransportDestination(f.colony.ID)
	if got := ag.TransportPriority(); got != 0 {
		t.Errorf("priority = %d after retarget, want 0", got)
	}
	ag.SetTransportPriority(-3)
	if got := ag.TransportPriority(); got != 0 {
		t.Errorf("priority = %d, want never negative", got)
	}
}

func TestUnitPriorityResetsOnNewMission(t *testing.T) {
	f := newFixture(t)
	au := f.unit(t, "free_colonist", f.dutch.ID, world.HexCoord{Q: -1, R: 0}, "")
	if got := au.TransportPriority(); got != 0 {
		t.Errorf("priority without mission = %d, want 0", got)
	}
	au.IncreaseTransportPriority()
	if got := au.TransportPriority(); got != 0 {
		t.Errorf("priority without mission = %d after increase, want 0", got)
	}

	au.ChangeMission(f.m.NewWorkInsideColonyMission(au, f.colony.ID), nil)
	base := au.Mission().BasePriority()
	au.IncreaseTransportPriority()
	au.IncreaseTransportPriority()
	if got := au.TransportPriority(); got != base+2 {
		t.Errorf("priority = %d, want %d", got, base+2)
	}

	au.ChangeMission(f.m.NewDefendSettlementMission(au, f.colony.ID), nil)
	if got, want := au.TransportPriority(), au.Mission().BasePriority(); got != want {
		t.Errorf("priority after mission change = %d, want %d", got, want)
	}
}

func TestQueueOnOneCarrierOnly(t *testing.T) {
	f := newFixture(t)
	f.colony.Goods.Add("furs", 100)
	ag := f.m.NewAIGoods(f.colony.ID, "furs", 100, f.colony2.ID)
	a := f.carrier(t)
	b := f.carrier(t)

	if !a.Mission().QueueTransportable(ag) {
		t.Fatal("queue on first carrier failed")
	}
	if !a.Mission().QueueTransportable(ag) {
		t.Fatal("requeue on the same carrier must succeed")
	}
	if n := len(a.Mission().Cargo()); n != 1 {
		t.Fatalf("worklist length = %d, want 1", n)
	}

	if !b.Mission().QueueTransportable(ag) {
		t.Fatal("queue on second carrier failed")
	}
	if a.Mission().Queued(ag) {
		t.Error("goods still queued on the first carrier")
	}
	if !b.Mission().Queued(ag) || ag.Transport() != b.ID() {
		t.Errorf("transport = %q, want %q", ag.Transport(), b.ID())
	}
}

func TestQueueRespectsCapacity(t *testing.T) {
	f := newFixture(t)
	f.colony.Goods.Add("furs", 300)
	c := f.carrier(t)
	capacity := f.g.GoodsCapacity(c.Unit())

	var queued int
	for i := 0; i < capacity+1; i++ {
		ag := f.m.NewAIGoods(f.colony.ID, "furs", 100, f.colony2.ID)
		if c.Mission().QueueTransportable(ag) {
			queued++
		}
	}
	if queued != capacity {
		t.Errorf("queued %d parcels, want %d", queued, capacity)
	}
}

func TestWorklistOrderedByPriority(t *testing.T) {
	f := newFixture(t)
	f.colony.Goods.Add("furs", 200)
	c := f.carrier(t)
	low := f.m.NewAIGoods(f.colony.ID, "furs", 100, f.colony2.ID)
	high := f.m.NewAIGoods(f.colony.ID, "furs", 100, f.colony2.ID)
	high.SetTransportPriority(5)

	c.Mission().QueueTransportable(low)
	c.Mission().QueueTransportable(high)
	cargo := c.Mission().Cargo()
	if len(cargo) != 2 || cargo[0] != high.ID() {
		t.Errorf("worklist = %v, want %s first", cargo, high.ID())
	}
}

func TestDisposeGoodsLeavesWorklist(t *testing.T) {
	f := newFixture(t)
	f.colony.Goods.Add("furs", 100)
	c := f.carrier(t)
	ag := f.m.NewAIGoods(f.colony.ID, "furs", 100, f.colony2.ID)
	c.Mission().QueueTransportable(ag)

	ag.Dispose()
	if c.Mission().Queued(ag) {
		t.Error("disposed goods still on the worklist")
	}
	if f.m.AIGoods(ag.ID()) != nil {
		t.Error("disposed goods still registered")
	}
}

func TestRetargetRequeuesParcel(t *testing.T) {
	f := newFixture(t)
	f.colony.Goods.Add("furs", 100)
	f.colony.Goods.Add("sugar", 100)
	c := f.carrier(t)
	furs := f.m.NewAIGoods(f.colony.ID, "furs", 100, f.colony2.ID)
	furs.SetTransportPriority(5)
	sugar := f.m.NewAIGoods(f.colony.ID, "sugar", 100, f.colony2.ID)
	sugar.SetTransportPriority(2)
	c.Mission().QueueTransportable(furs)
	c.Mission().QueueTransportable(sugar)

	furs.SetTransportDestination(f.colony.ID)
	want := []string{sugar.ID(), furs.ID()}
	if got := c.Mission().Cargo(); !slices.Equal(got, want) {
		t.Fatalf("worklist after retarget = %v, want %v", got, want)
	}
	if !c.Mission().QueueTransportable(furs) {
		t.Fatal("queueing a queued parcel failed")
	}
	if got := c.Mission().Cargo(); !slices.Equal(got, want) {
		t.Errorf("worklist after queue = %v, want %v", got, want)
	}
}

func TestRequeueTransportable(t *testing.T) {
	t.Run("re-sorts without duplicating", func(t *testing.T) {
		f := newFixture(t)
		f.colony.Goods.Add("furs", 200)
		c := f.carrier(t)
		low := f.m.NewAIGoods(f.colony.ID, "furs", 100, f.colony2.ID)
		high := f.m.NewAIGoods(f.colony.ID, "furs", 100, f.colony2.ID)
		high.SetTransportPriority(5)
		c.Mission().QueueTransportable(low)
		c.Mission().QueueTransportable(high)

		low.SetTransportPriority(9)
		if !c.Mission().RequeueTransportable(low) {
			t.Fatal("requeue failed")
		}
		want := []string{low.ID(), high.ID()}
		if got := c.Mission().Cargo(); !slices.Equal(got, want) {
			t.Errorf("worklist = %v, want %v", got, want)
		}
	})
	t.Run("fails without room", func(t *testing.T) {
		f := newFixture(t)
		f.colony.Goods.Add("furs", 300)
		c := f.carrier(t)
		capacity := f.g.GoodsCapacity(c.Unit())
		for i := 0; i < capacity; i++ {
			if !c.Mission().QueueTransportable(f.m.NewAIGoods(f.colony.ID, "furs", 100, f.colony2.ID)) {
				t.Fatalf("queue %d failed", i)
			}
		}
		extra := f.m.NewAIGoods(f.colony.ID, "furs", 100, f.colony2.ID)
		if c.Mission().RequeueTransportable(extra) {
			t.Error("requeue succeeded on a full carrier")
		}
		if c.Mission().Queued(extra) || extra.Transport() != "" {
			t.Errorf("extra parcel queued, transport = %q", extra.Transport())
		}
		if n := len(c.Mission().Cargo()); n != capacity {
			t.Errorf("worklist length = %d, want %d", n, capacity)
		}
	})
}

// putAboard stows a parcel on a carrier as if it had been loaded.
func putAboard(c *AIUnit, ag *AIGoods) {
	c.Unit().Cargo.Add(ag.goods, ag.amount)
	ag.location = c.ID()
}

func TestFailedDeliveryStaysQueued(t *testing.T) {
	f := newFixture(t)
	f.colony.Goods.Add("furs", 100)
	c := f.carrier(t)
	f.g.MoveUnitTo(c.Unit(), f.colony.Coord)
	ag := f.m.NewAIGoods(f.colony.ID, "furs", 100, f.colony2.ID)
	c.Mission().QueueTransportable(ag)
	putAboard(c, ag)
	ag.SetTransportDestination(f.colony.ID)
	f.d.accept = false

	if next := doTransport(c.Mission(), NewLogBuilder(false)); next != c.Mission() {
		t.Fatalf("doTransport returned %v", next)
	}
	if !c.Mission().Queued(ag) {
		t.Fatal("undelivered parcel left the worklist")
	}
	if ag.TransportSource() != c.ID() {
		t.Errorf("parcel at %q, want still aboard %q", ag.TransportSource(), c.ID())
	}
	if want := []string{"unload"}; !slices.Equal(f.d.calls, want) {
		t.Errorf("calls = %v, want %v", f.d.calls, want)
	}
}

func TestUnreachableStopSkipped(t *testing.T) {
	f := newFixture(t)
	f.colony2.Goods.Add("furs", 100)
	c := f.carrier(t)
	ag := f.m.NewAIGoods(f.colony2.ID, "furs", 100, f.colony.ID)
	c.Mission().QueueTransportable(ag)

	if next := doTransport(c.Mission(), NewLogBuilder(false)); next != c.Mission() {
		t.Fatalf("doTransport returned %v", next)
	}
	if !c.Mission().Queued(ag) {
		t.Error("parcel at an unreachable stop was dropped")
	}
	if c.Unit().Coord != f.seaCoord {
		t.Errorf("carrier at %v, want it to stay at %v", c.Unit().Coord, f.seaCoord)
	}
	if slices.Contains(f.d.calls, "move") {
		t.Errorf("calls = %v, want no move", f.d.calls)
	}
}

func TestCapturedDestinationRetargetsCargo(t *testing.T) {
	f := newFixture(t)
	f.colony.Goods.Add("furs", 100)
	c := f.carrier(t)
	f.g.MoveUnitTo(c.Unit(), f.colony.Coord)
	ag := f.m.NewAIGoods(f.colony.ID, "furs", 100, f.colony2.ID)
	c.Mission().QueueTransportable(ag)
	putAboard(c, ag)
	f.g.ChangeColonyOwner(f.colony2, f.arawak.ID)
	if reason := ag.InvalidReason(); reason != "transportable-destination-captured" {
		t.Fatalf("reason = %q, want destination captured", reason)
	}

	c.Mission().dropInvalid(NewLogBuilder(false))
	if !c.Mission().Queued(ag) {
		t.Fatal("cargo for a captured colony was dropped aboard")
	}
	if got := ag.TransportDestination(); got != f.colony.ID {
		t.Fatalf("destination = %q, want %q", got, f.colony.ID)
	}

	doTransport(c.Mission(), NewLogBuilder(false))
	if !slices.Contains(f.d.calls, "unload") {
		t.Errorf("calls = %v, want an unload", f.d.calls)
	}
	if ag.TransportSource() != f.colony.ID {
		t.Errorf("parcel at %q, want unloaded at %q", ag.TransportSource(), f.colony.ID)
	}
}
