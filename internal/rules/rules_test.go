package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultRuleset(t *testing.T) {
	rs := Default()

	if got := rs.Constants.FoodPerColonist; got != 200 {
		t.Errorf("FoodPerColonist = %d, want 200", got)
	}
	if got := rs.Constants.CargoSize; got != 100 {
		t.Errorf("CargoSize = %d, want 100", got)
	}
	if rs.Goods("grain").Stored() != "food" {
		t.Errorf("grain should be stored as food")
	}
	if rs.Goods("furs").Stored() != "furs" {
		t.Errorf("furs should be stored as itself")
	}
	born := rs.UnitTypesBornInSettlement()
	if len(born) != 1 || born[0].ID != "brave" {
		t.Errorf("born types = %v, want [brave]", born)
	}
	if rs.Yield("plains", "grain") != 5 {
		t.Errorf("plains grain yield = %d, want 5", rs.Yield("plains", "grain"))
	}
	if rs.Yield("ocean", "grain") != 0 {
		t.Errorf("ocean grain yield should be zero")
	}
	if len(rs.AI.MissionRules) == 0 {
		t.Errorf("default ruleset has no mission rules")
	}
}

func TestGoodsOrderFollowsDeclaration(t *testing.T) {
	rs := Default()
	list := rs.GoodsList()
	for i, g := range list {
		if rs.GoodsOrder(g.ID) != i {
			t.Errorf("GoodsOrder(%s) = %d, want %d", g.ID, rs.GoodsOrder(g.ID), i)
		}
	}
	if rs.GoodsOrder("spice") != -1 {
		t.Errorf("unknown goods should have order -1")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	base := string(defaultYAML)

	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			name: "tension not increasing",
			mutate: func(s string) string {
				return strings.Replace(s, "content: 600", "content: 50", 1)
			},
			wantErr: "strictly increase",
		},
		{
			name: "unknown stored_as",
			mutate: func(s string) string {
				return strings.Replace(s, "stored_as: food, food: true, price: 1}\n  - {id: fish", "stored_as: bread, food: true, price: 1}\n  - {id: fish", 1)
			},
			wantErr: "stored as unknown",
		},
		{
			name: "bad yaml",
			mutate: func(s string) string {
				return "constants: [\n"
			},
			wantErr: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.mutate(base)))
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, defaultYAML, 0o644); err != nil {
		t.Fatal(err)
	}
	rs, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rs.Unit("caravel") == nil || !rs.Unit("caravel").Naval {
		t.Errorf("caravel should load as a naval unit")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
