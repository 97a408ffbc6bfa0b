package ai

import (
	"slices"
	"testing"

	"github.com/talgya/frontier/internal/world"
)

func TestUnitLeaveTransport(t *testing.T) {
	tests := []struct {
		name      string
		carrierAt world.HexCoord
		unitType  string
		mission   func(f *fixture, au *AIUnit) *Mission
		setup     func(f *fixture)
		want      world.HexCoord
		wantCall  string
	}{
		{
			name:      "disembarks in a colony",
			carrierAt: world.HexCoord{Q: 1, R: 0},
			unitType:  "free_colonist",
			want:      world.HexCoord{Q: 1, R: 0},
			wantCall:  "disembark",
		},
		{
			name:      "lands in a settlement next door",
			carrierAt: world.HexCoord{Q: 2, R: 0},
			unitType:  "free_colonist",
			want:      world.HexCoord{Q: 1, R: 0},
			wantCall:  "move",
		},
		{
			name:      "heads along the path to its target",
			carrierAt: world.HexCoord{Q: 2, R: -1},
			unitType:  "jesuit_missionary",
			mission: func(f *fixture, au *AIUnit) *Mission {
				return f.m.NewMissionaryMission(au, f.camp.ID)
			},
			want:     world.HexCoord{Q: 1, R: -1},
			wantCall: "move",
		},
		{
			name:      "nearest to an own colony",
			carrierAt: world.HexCoord{Q: 2, R: -2},
			unitType:  "free_colonist",
			setup: func(f *fixture) {
				f.g.Map.Get(world.HexCoord{Q: 1, R: -2}).Terrain = world.TerrainForest
			},
			want:     world.HexCoord{Q: 1, R: -1},
			wantCall: "move",
		},
		{
			name:      "safest tile without a colony",
			carrierAt: world.HexCoord{Q: 2, R: -2},
			unitType:  "free_colonist",
			setup: func(f *fixture) {
				f.g.Map.Get(world.HexCoord{Q: 1, R: -2}).Terrain = world.TerrainForest
				f.g.DisposeColony(f.colony)
				f.g.DisposeColony(f.colony2)
			},
			want:     world.HexCoord{Q: 1, R: -2},
			wantCall: "move",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			c := f.unit(t, "caravel", f.dutch.ID, tt.carrierAt, "")
			au := f.unit(t, tt.unitType, f.dutch.ID, tt.carrierAt, c.ID())
			if tt.mission != nil {
				au.ChangeMission(tt.mission(f, au), nil)
			}
			if tt.setup != nil {
				tt.setup(f)
			}

			if !au.LeaveTransport() {
				t.Fatalf("LeaveTransport failed, calls = %v", f.d.calls)
			}
			u := au.Unit()
			if u.OnCarrier() {
				t.Fatal("unit still aboard")
			}
			if u.Coord != tt.want {
				t.Errorf("unit at %v, want %v", u.Coord, tt.want)
			}
			if !slices.Contains(f.d.calls, tt.wantCall) {
				t.Errorf("calls = %v, want %s", f.d.calls, tt.wantCall)
			}
		})
	}
}

func TestLeaveTransportNowhereToLand(t *testing.T) {
	f := newFixture(t)
	at := world.HexCoord{Q: 3, R: 0}
	c := f.unit(t, "caravel", f.dutch.ID, at, "")
	au := f.unit(t, "free_colonist", f.dutch.ID, at, c.ID())

	if au.LeaveTransport() {
		t.Fatal("unit left a carrier with no land next to it")
	}
	if !au.Unit().OnCarrier() {
		t.Error("unit dropped off at sea")
	}
}
