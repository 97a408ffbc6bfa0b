package ai

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/talgya/frontier/internal/rules"
)

// UnitEnv is what a mission rule condition can see about one unit.
type UnitEnv struct {
	Carrier    bool // Can carry units or goods
	Native     bool // Owned by a native nation
	Missionary bool // Dressed as a missionary
	Offensive  bool // Can attack
	Hostile    bool // Home settlement is angry at someone
	AtWar      bool // Owner is at war with anyone

	MissionTargets int // Settlements a missionary could go to
	WorkerWishes   int // Open worker wishes of the owner's colonies
	DemandTargets  int // Colonies in range worth demanding tribute from
	GiftTargets    int // Friendly colonies in gift range
	Surplus        int // Goods types the home settlement could give away
	HomeDefenders  int // Units inside the home settlement

	Roll float64 // Uniform in [0, 1), drawn once per unit per turn
}

// Rule is a compiled mission assignment rule.
type Rule struct {
	Name     string
	Kind     Kind
	Priority int
	When     string
	program  *vm.Program
}

// RuleEngine picks missions for units from the ruleset's mission rules.
// Rules are tried highest priority first.
type RuleEngine struct {
	rules []*Rule
}

// NewRuleEngine compiles the rule conditions against UnitEnv.
func NewRuleEngine(defs []rules.MissionRule) (*RuleEngine, error) {
	var out []*Rule
	for _, d := range defs {
		k, ok := KindByName(d.Mission)
		if !ok {
			return nil, fmt.Errorf("rule %q: unknown mission %q", d.Name, d.Mission)
		}
		prog, err := expr.Compile(d.When, expr.Env(UnitEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", d.Name, err)
		}
		out = append(out, &Rule{Name: d.Name, Kind: k, Priority: d.Priority, When: d.When, program: prog})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return &RuleEngine{rules: out}, nil
}

// Matches returns the rules whose condition holds, best first.
func (e *RuleEngine) Matches(env UnitEnv) []*Rule {
	var out []*Rule
	for _, r := range e.rules {
		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "error", err)
			continue
		}
		if match, ok := result.(bool); ok && match {
			out = append(out, r)
		}
	}
	return out
}

// Len is the number of compiled rules.
func (e *RuleEngine) Len() int { return len(e.rules) }
