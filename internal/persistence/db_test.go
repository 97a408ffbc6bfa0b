package persistence

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/talgya/frontier/internal/engine"
	"github.com/talgya/frontier/internal/entropy"
	"github.com/talgya/frontier/internal/rules"
	"github.com/talgya/frontier/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "frontier.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestSimulation(t *testing.T, turns int) *engine.Simulation {
	t.Helper()
	cfg := engine.DefaultSetupConfig()
	cfg.Map = world.SmallTestConfig()
	cfg.Europeans = cfg.Europeans[:2]
	cfg.Natives = cfg.Natives[:2]
	cfg.SettlementsPerNation = 2
	cfg.ColoniesPerPlayer = 1
	rng := entropy.NewSource(5)
	sim, err := engine.NewSimulation(engine.NewGame(rules.Default(), cfg, rng), rng)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	for i := 0; i < turns; i++ {
		sim.NewTurn()
	}
	// Drop AI objects of units lost during the last turn, as a load would.
	sim.Update(sim.AI.Sync)
	return sim
}

func snapshot(t *testing.T, sim *engine.Simulation) string {
	t.Helper()
	var data []byte
	var err error
	sim.View(func() { data, err = json.Marshal(sim.Game) })
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	sim := newTestSimulation(t, 3)

	id, err := db.SaveGame(sim)
	if err != nil {
		t.Fatalf("SaveGame: %v", err)
	}
	loaded, err := db.LoadGame("", rules.Default())
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}

	if loaded.Turn() != 3 {
		t.Errorf("turn = %d, want 3", loaded.Turn())
	}
	if snapshot(t, loaded) != snapshot(t, sim) {
		t.Error("game model changed across save and load")
	}
	if got, want := loaded.AI.Save(), sim.AI.Save(); !reflect.DeepEqual(got, want) {
		t.Errorf("ai records differ: %d loaded, %d saved", len(got), len(want))
	}
	if loaded.Stats != sim.Stats {
		t.Errorf("stats = %+v, want %+v", loaded.Stats, sim.Stats)
	}
	if len(loaded.Events) != len(sim.Events) {
		t.Errorf("events = %d, want %d", len(loaded.Events), len(sim.Events))
	}

	byID, err := db.LoadGame(id, rules.Default())
	if err != nil || byID.Turn() != 3 {
		t.Errorf("LoadGame(%s): %v", id, err)
	}
}

func TestLoadedGamesPlayAlike(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.SaveGame(newTestSimulation(t, 2)); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}

	var first string
	for i := 0; i < 2; i++ {
		sim, err := db.LoadGame("", rules.Default())
		if err != nil {
			t.Fatalf("LoadGame: %v", err)
		}
		sim.NewTurn()
		sim.NewTurn()
		got := snapshot(t, sim)
		if i == 0 {
			first = got
		} else if got != first {
			t.Error("two loads of the same save diverged")
		}
	}
}

func TestEventLog(t *testing.T) {
	db := openTestDB(t)
	sim := newTestSimulation(t, 2)
	if _, err := db.SaveGame(sim); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}
	first, err := db.RecentEvents(1000)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	for _, e := range first {
		if e.Turn >= 2 {
			t.Errorf("unfinished turn stored: %+v", e)
		}
	}

	// A second save of the same turns adds nothing.
	if _, err := db.SaveGame(sim); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}
	again, _ := db.RecentEvents(1000)
	if len(again) != len(first) {
		t.Errorf("events = %d after resave, want %d", len(again), len(first))
	}

	sim.NewTurn()
	if _, err := db.SaveGame(sim); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}
	more, _ := db.RecentEvents(1000)
	for _, e := range more[:len(more)-len(first)] {
		if e.Turn != 2 {
			t.Errorf("new event from turn %d, want 2", e.Turn)
		}
	}
}

func TestListAndPruneSaves(t *testing.T) {
	db := openTestDB(t)
	sim := newTestSimulation(t, 0)
	var ids []string
	for i := 0; i < 4; i++ {
		id, err := db.SaveGame(sim)
		if err != nil {
			t.Fatalf("SaveGame: %v", err)
		}
		ids = append(ids, id)
		sim.NewTurn()
	}

	saves, err := db.ListSaves(10)
	if err != nil {
		t.Fatalf("ListSaves: %v", err)
	}
	if len(saves) != 4 || saves[0].ID != ids[3] || saves[0].Turn != 3 {
		t.Fatalf("saves = %+v", saves)
	}

	n, err := db.Prune(2)
	if err != nil || n != 2 {
		t.Fatalf("Prune = %d, %v", n, err)
	}
	saves, _ = db.ListSaves(10)
	if len(saves) != 2 {
		t.Errorf("saves after prune = %d", len(saves))
	}
	if _, err := db.LoadGame(ids[0], rules.Default()); err == nil {
		t.Error("pruned save still loads")
	}
	if _, err := db.LoadGame("", rules.Default()); err != nil {
		t.Errorf("latest save lost: %v", err)
	}
}

func TestLoadWithoutSave(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.LoadGame("", rules.Default()); err == nil {
		t.Error("loaded from an empty database")
	}
}

func TestCompressSnapshot(t *testing.T) {
	src := bytes.Repeat([]byte(`{"terrain":"plains","units":[]},`), 500)
	packed, err := compress(src)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if len(packed) >= len(src) {
		t.Errorf("packed %d bytes, source %d", len(packed), len(src))
	}
	got, err := decompress(packed)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Error("snapshot changed in compression")
	}
	if _, err := decompress([]byte("not lz4")); err == nil {
		t.Error("garbage decompressed without error")
	}
}
