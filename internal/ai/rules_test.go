package ai

import (
	"testing"

	"github.com/talgya/frontier/internal/rules"
)

func TestDefaultRulesPickMission(t *testing.T) {
	engine, err := NewRuleEngine(rules.Default().AI.MissionRules)
	if err != nil {
		t.Fatalf("NewRuleEngine: %v", err)
	}
	tests := []struct {
		name string
		env  UnitEnv
		want string
	}{
		{"carrier", UnitEnv{Carrier: true}, "carrier-transport"},
		{"missionary", UnitEnv{Missionary: true, MissionTargets: 2}, "missionary-to-settlement"},
		{"missionary without targets", UnitEnv{Missionary: true}, "idle"},
		{"colonist with wishes", UnitEnv{WorkerWishes: 1}, "worker-wish"},
		{"soldier", UnitEnv{Offensive: true, WorkerWishes: 1}, "soldier-defend"},
		{"hostile brave", UnitEnv{Native: true, Offensive: true, Hostile: true, DemandTargets: 1, Roll: 0.1}, "native-demand"},
		{"hostile brave, unlucky roll", UnitEnv{Native: true, Offensive: true, Hostile: true, DemandTargets: 1, Roll: 0.3, HomeDefenders: 2}, "idle"},
		{"generous brave", UnitEnv{Native: true, GiftTargets: 1, Surplus: 2, Roll: 0.05, HomeDefenders: 2}, "native-gift"},
		{"raiding brave", UnitEnv{Native: true, AtWar: true, Roll: 0.4, HomeDefenders: 2}, "native-raid"},
		{"guard", UnitEnv{Native: true, Roll: 0.9}, "native-guard"},
		{"nothing to do", UnitEnv{}, "idle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := engine.Matches(tt.env)
			if len(matches) == 0 {
				t.Fatal("no rule matched")
			}
			if got := matches[0].Name; got != tt.want {
				t.Errorf("best rule = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRuleEngineOrdersByPriority(t *testing.T) {
	engine, err := NewRuleEngine([]rules.MissionRule{
		{Name: "low", Mission: "idleAtSettlement", Priority: 1, When: "true"},
		{Name: "high", Mission: "defendSettlement", Priority: 9, When: "Offensive"},
		{Name: "mid", Mission: "workInsideColony", Priority: 5, When: "!Native"},
	})
	if err != nil {
		t.Fatal(err)
	}
	matches := engine.Matches(UnitEnv{Offensive: true})
	var names []string
	for _, r := range matches {
		names = append(names, r.Name)
	}
	if len(names) != 3 || names[0] != "high" || names[1] != "mid" || names[2] != "low" {
		t.Errorf("matches = %v, want [high mid low]", names)
	}
	if engine.Len() != 3 {
		t.Errorf("Len = %d, want 3", engine.Len())
	}
}

func TestRuleEngineErrors(t *testing.T) {
	tests := []struct {
		name string
		rule rules.MissionRule
	}{
		{"unknown mission", rules.MissionRule{Name: "x", Mission: "conquerWorld", When: "true"}},
		{"syntax error", rules.MissionRule{Name: "x", Mission: "transport", When: "Carrier &&"}},
		{"unknown field", rules.MissionRule{Name: "x", Mission: "transport", When: "Flying"}},
		{"not a condition", rules.MissionRule{Name: "x", Mission: "transport", When: "HomeDefenders + 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRuleEngine([]rules.MissionRule{tt.rule}); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
