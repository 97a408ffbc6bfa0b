package ai

import (
	"encoding/json"
	"testing"

	"github.com/talgya/frontier/internal/entropy"
	"github.com/talgya/frontier/internal/world"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	f := newFixture(t)
	ac := f.m.AIColony(f.colony.ID)
	w := f.m.NewWorkerWish(f.colony.ID, 80, "free_colonist")
	ac.AddWish(w)
	ac.RequestRearrange()

	worker := f.unit(t, "free_colonist", f.dutch.ID, world.HexCoord{Q: -1, R: 0}, "")
	mi := f.m.NewWishRealizationMission(worker, w)
	mi.Activate()
	worker.ChangeMission(mi, nil)
	worker.IncreaseTransportPriority()

	f.colony.Goods.Add("furs", 100)
	ag := f.m.NewAIGoods(f.colony.ID, "furs", 100, f.colony2.ID)
	ag.SetTransportPriority(3)
	ac.AddAIGoods(ag)
	ship := f.carrier(t)
	ship.Mission().QueueTransportable(ag)

	idler := f.unit(t, "free_colonist", f.dutch.ID, world.HexCoord{Q: 0, R: 1}, "")
	idler.ChangeMission(f.m.NewMission(KindIdleAtSettlement, idler), nil)

	data, err := json.Marshal(f.m.Save())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	m2, err := NewMain(f.g, f.d, entropy.NewSource(7))
	if err != nil {
		t.Fatal(err)
	}
	if err := m2.Load(records); err != nil {
		t.Fatalf("load: %v", err)
	}
	if r := m2.CheckIntegrity(false); r != 1 {
		t.Errorf("integrity after load = %d, want 1", r)
	}

	w2 := m2.Wish(w.ID())
	if w2 == nil || w2.Value() != 80 || w2.Transportable() != worker.ID() {
		t.Fatalf("wish = %+v", w2)
	}
	ac2 := m2.AIColony(f.colony.ID)
	if len(ac2.Wishes()) != 1 || len(ac2.AIGoods()) != 1 {
		t.Errorf("colony wishes = %d, goods = %d", len(ac2.Wishes()), len(ac2.AIGoods()))
	}
	if !ac2.NeedsRearrange() {
		t.Error("rearrange request lost")
	}

	worker2 := m2.AIUnit(worker.ID())
	mi2 := worker2.Mission()
	if mi2 == nil || mi2.Kind != KindWishRealization || mi2.WishID() != w.ID() || mi2.Target() != f.colony.ID {
		t.Fatalf("worker mission = %v", mi2)
	}
	if worker2.WaitingTurns() != 1 {
		t.Errorf("waiting turns = %d, want 1", worker2.WaitingTurns())
	}

	ag2 := m2.AIGoods(ag.ID())
	if ag2 == nil || ag2.TransportPriority() != 3 || ag2.Transport() != ship.ID() {
		t.Fatalf("goods = %+v", ag2)
	}
	cargo := m2.AIUnit(ship.ID()).Mission().Cargo()
	if len(cargo) != 1 || cargo[0] != ag.ID() {
		t.Errorf("ship worklist = %v", cargo)
	}

	if m2.AIUnit(idler.ID()).Mission() != nil {
		t.Error("one-time mission was saved")
	}

	// New ids must not collide with loaded ones.
	if nw := m2.NewWorkerWish(f.colony.ID, 1, "free_colonist"); m2.Wish(nw.ID()) != nw || nw.ID() == w.ID() {
		t.Errorf("new wish id %s collides", nw.ID())
	}
}

func TestLoadLegacyRecords(t *testing.T) {
	f := newFixture(t)
	a := f.g.CreateUnit("free_colonist", f.dutch.ID, world.HexCoord{Q: -1, R: 0}, "")
	b := f.g.CreateUnit("free_colonist", f.dutch.ID, world.HexCoord{Q: 0, R: 1}, "")

	records := []Record{
		{Tag: tagAIUnit, ID: a.ID, Children: []Record{{Tag: "idleAtColonyMission"}}},
		{Tag: tagAIUnit, ID: b.ID, Children: []Record{{
			Tag:   "wishRealizationMission",
			Attrs: map[string]string{"target": f.colony.ID, "wish": "GoodsWish:40"},
		}}},
		{Tag: tagAIGoods, ID: "aiGoods:41", Attrs: map[string]string{
			"goods": "furs", "amount": "100", "location": f.colony.ID, "transportPriority": "-1",
		}},
	}
	if err := f.m.Load(records); err != nil {
		t.Fatalf("load: %v", err)
	}

	if mi := f.m.AIUnit(a.ID).Mission(); mi == nil || mi.Kind != KindIdleAtSettlement {
		t.Errorf("legacy idle mission = %v", mi)
	}
	w := f.m.Wish("GoodsWish:40")
	if w == nil || w.Kind() != WishGoods {
		t.Fatalf("placeholder wish = %+v", w)
	}
	if got := f.m.AIGoods("aiGoods:41").TransportPriority(); got != 0 {
		t.Errorf("legacy priority = %d, want 0", got)
	}

	if r := f.m.CheckIntegrity(true); r != 0 {
		t.Errorf("integrity fix = %d, want 0", r)
	}
	if f.m.Wish("GoodsWish:40") != nil {
		t.Error("placeholder wish survived the integrity fix")
	}
	if f.m.AIUnit(b.ID).Mission() != nil {
		t.Error("mission bound to a placeholder wish survived")
	}
	if f.m.CheckIntegrity(false) != 1 {
		t.Error("integrity still failing after the fix")
	}
}

func TestLoadErrors(t *testing.T) {
	f := newFixture(t)
	u := f.g.CreateUnit("free_colonist", f.dutch.ID, world.HexCoord{}, "")
	tests := []struct {
		name    string
		records []Record
	}{
		{"missing id", []Record{{Tag: tagAIUnit}}},
		{"unknown wish prefix", []Record{{Tag: tagAIUnit, ID: u.ID, Children: []Record{{
			Tag:   "wishRealizationMission",
			Attrs: map[string]string{"wish": "fooWish:3"},
		}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.m.Load(tt.records); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
