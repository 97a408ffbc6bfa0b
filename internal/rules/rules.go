// Package rules loads the game ruleset: goods, unit types, roles, native
// settlement types, terrain yields, tension limits and AI mission rules.
package rules

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// GoodsType describes one kind of goods.
type GoodsType struct {
	ID               string `yaml:"id" json:"id"`
	StoredAs         string `yaml:"stored_as" json:"stored_as,omitempty"`
	Food             bool   `yaml:"food" json:"food,omitempty"`
	Military         bool   `yaml:"military" json:"military,omitempty"`
	BuildingMaterial bool   `yaml:"building_material" json:"building_material,omitempty"`
	Storable         bool   `yaml:"storable" json:"storable,omitempty"`
	TradeGoods       bool   `yaml:"trade_goods" json:"trade_goods,omitempty"`
	Refined          bool   `yaml:"refined" json:"refined,omitempty"`
	BreedingNumber   int    `yaml:"breeding_number" json:"breeding_number,omitempty"`
	Price            int    `yaml:"price" json:"price"`
}

// Stored returns the goods type this type is stored as.
func (g *GoodsType) Stored() string {
	if g.StoredAs == "" {
		return g.ID
	}
	return g.StoredAs
}

// UnitType describes one kind of unit.
type UnitType struct {
	ID                     string         `yaml:"id" json:"id"`
	Offence                int            `yaml:"offence" json:"offence"`
	Defence                int            `yaml:"defence" json:"defence"`
	Space                  int            `yaml:"space" json:"space"`
	Capacity               int            `yaml:"capacity" json:"capacity"`
	Naval                  bool           `yaml:"naval" json:"naval,omitempty"`
	Moves                  int            `yaml:"moves" json:"moves"`
	BornInIndianSettlement bool           `yaml:"born_in_indian_settlement" json:"born_in_indian_settlement,omitempty"`
	Consumption            map[string]int `yaml:"consumption" json:"consumption,omitempty"`
}

// Role is an equipment role a unit can take on.
type Role struct {
	ID           string         `yaml:"id" json:"id"`
	Offence      int            `yaml:"offence" json:"offence"`
	Defence      int            `yaml:"defence" json:"defence"`
	Goods        map[string]int `yaml:"goods" json:"goods,omitempty"`
	MaximumCount int            `yaml:"maximum_count" json:"maximum_count"`
	Downgrade    string         `yaml:"downgrade" json:"downgrade,omitempty"`
}

// SettlementType bounds the size and storage of a native settlement.
type SettlementType struct {
	ID          string `yaml:"id" json:"id"`
	MinimumSize int    `yaml:"minimum_size" json:"minimum_size"`
	MaximumSize int    `yaml:"maximum_size" json:"maximum_size"`
	Warehouse   int    `yaml:"warehouse" json:"warehouse"`
	Radius      int    `yaml:"radius" json:"radius"`
	Capital     bool   `yaml:"capital" json:"capital,omitempty"`
}

// Constants are the fixed numeric parameters of the turn engine.
type Constants struct {
	FoodPerColonist    int    `yaml:"food_per_colonist"`
	KeepRawMaterial    int    `yaml:"keep_raw_material"`
	CargoSize          int    `yaml:"cargo_size"`
	MaxHorsesPerTurn   int    `yaml:"max_horses_per_turn"`
	NativeDemands      int    `yaml:"native_demands"`
	MinimumDemand      int    `yaml:"minimum_demand"`
	TributeGoldDivisor int    `yaml:"tribute_gold_divisor"`
	ColonyWarehouse    int    `yaml:"colony_warehouse"`
	WantedGoods        int    `yaml:"wanted_goods"`
	PrimaryFood        string `yaml:"primary_food"`
	Rum                string `yaml:"rum"`
	Horses             string `yaml:"horses"`
	Grain              string `yaml:"grain"`
}

// TensionLimits are the upper bounds of each tension level.
type TensionLimits struct {
	Happy      int `yaml:"happy"`
	Content    int `yaml:"content"`
	Displeased int `yaml:"displeased"`
	Angry      int `yaml:"angry"`
	Hateful    int `yaml:"hateful"`
}

// AlarmDeltas are the tension changes caused by game events.
type AlarmDeltas struct {
	DemandAccepted     int `yaml:"demand_accepted"`
	DemandRefused      int `yaml:"demand_refused"`
	UnitAttacked       int `yaml:"unit_attacked"`
	SettlementAttacked int `yaml:"settlement_attacked"`
	GiftDelivered      int `yaml:"gift_delivered"`
	MissionEstablished int `yaml:"mission_established"`
	MissionaryKilled   int `yaml:"missionary_killed"`
	TensionDecay       int `yaml:"tension_decay"`
}

// MissionRule assigns a mission kind to a unit when its condition holds.
// Conditions are expr-lang expressions evaluated against the AI unit
// environment.
type MissionRule struct {
	Name     string `yaml:"name"`
	Mission  string `yaml:"mission"`
	Priority int    `yaml:"priority"`
	When     string `yaml:"when"`
}

// AIConfig tunes the AI players.
type AIConfig struct {
	TransportWaitLimit int           `yaml:"transport_wait_limit"`
	DemandRange        int           `yaml:"demand_range"`
	GiftRange          int           `yaml:"gift_range"`
	MissionRules       []MissionRule `yaml:"mission_rules"`
}

// Ruleset is the complete, validated game configuration.
type Ruleset struct {
	Constants       Constants                 `yaml:"constants"`
	Tension         TensionLimits             `yaml:"tension"`
	Alarm           AlarmDeltas               `yaml:"alarm"`
	GoodsTypes      []GoodsType               `yaml:"goods"`
	UnitTypes       []UnitType                `yaml:"units"`
	Roles           []Role                    `yaml:"roles"`
	SettlementTypes []SettlementType          `yaml:"settlement_types"`
	Terrain         map[string]map[string]int `yaml:"terrain"`
	AI              AIConfig                  `yaml:"ai"`

	goodsIndex      map[string]int
	unitIndex       map[string]int
	roleIndex       map[string]int
	settlementIndex map[string]int
}

// Default returns the embedded ruleset. It panics if the embedded file is
// invalid, which can only happen through a broken build.
func Default() *Ruleset {
	rs, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded ruleset: %v", err))
	}
	return rs
}

// Load reads and validates a ruleset file.
func Load(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ruleset: %w", err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("ruleset %s: %w", path, err)
	}
	return rs, nil
}

// Parse decodes and validates a YAML ruleset.
func Parse(data []byte) (*Ruleset, error) {
	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := rs.index(); err != nil {
		return nil, err
	}
	if err := rs.validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

func (rs *Ruleset) index() error {
	rs.goodsIndex = make(map[string]int, len(rs.GoodsTypes))
	for i, g := range rs.GoodsTypes {
		if _, dup := rs.goodsIndex[g.ID]; dup {
			return fmt.Errorf("duplicate goods type %q", g.ID)
		}
		rs.goodsIndex[g.ID] = i
	}
	rs.unitIndex = make(map[string]int, len(rs.UnitTypes))
	for i, u := range rs.UnitTypes {
		if _, dup := rs.unitIndex[u.ID]; dup {
			return fmt.Errorf("duplicate unit type %q", u.ID)
		}
		rs.unitIndex[u.ID] = i
	}
	rs.roleIndex = make(map[string]int, len(rs.Roles))
	for i, r := range rs.Roles {
		rs.roleIndex[r.ID] = i
	}
	rs.settlementIndex = make(map[string]int, len(rs.SettlementTypes))
	for i, s := range rs.SettlementTypes {
		rs.settlementIndex[s.ID] = i
	}
	return nil
}

func (rs *Ruleset) validate() error {
	c := rs.Constants
	if c.FoodPerColonist <= 0 || c.CargoSize <= 0 || c.MaxHorsesPerTurn <= 0 {
		return fmt.Errorf("constants must be positive")
	}
	if c.TributeGoldDivisor <= 0 {
		return fmt.Errorf("tribute_gold_divisor must be positive")
	}
	for _, id := range []string{c.PrimaryFood, c.Rum, c.Horses, c.Grain} {
		if rs.Goods(id) == nil {
			return fmt.Errorf("constants reference unknown goods %q", id)
		}
	}
	for _, g := range rs.GoodsTypes {
		if g.StoredAs != "" && rs.Goods(g.StoredAs) == nil {
			return fmt.Errorf("goods %q stored as unknown %q", g.ID, g.StoredAs)
		}
	}
	t := rs.Tension
	limits := []int{0, t.Happy, t.Content, t.Displeased, t.Angry, t.Hateful}
	for i := 1; i < len(limits); i++ {
		if limits[i] <= limits[i-1] {
			return fmt.Errorf("tension limits must strictly increase")
		}
	}
	if rs.Role("default") == nil {
		return fmt.Errorf("missing default role")
	}
	for _, r := range rs.Roles {
		if r.Downgrade != "" && rs.Role(r.Downgrade) == nil {
			return fmt.Errorf("role %q downgrades to unknown %q", r.ID, r.Downgrade)
		}
	}
	if len(rs.SettlementTypes) == 0 {
		return fmt.Errorf("no settlement types")
	}
	for _, s := range rs.SettlementTypes {
		if s.MinimumSize > s.MaximumSize {
			return fmt.Errorf("settlement type %q: minimum above maximum", s.ID)
		}
	}
	return nil
}

// Goods returns the goods type with the given id, or nil.
func (rs *Ruleset) Goods(id string) *GoodsType {
	i, ok := rs.goodsIndex[id]
	if !ok {
		return nil
	}
	return &rs.GoodsTypes[i]
}

// Unit returns the unit type with the given id, or nil.
func (rs *Ruleset) Unit(id string) *UnitType {
	i, ok := rs.unitIndex[id]
	if !ok {
		return nil
	}
	return &rs.UnitTypes[i]
}

// Role returns the role with the given id, or nil.
func (rs *Ruleset) Role(id string) *Role {
	i, ok := rs.roleIndex[id]
	if !ok {
		return nil
	}
	return &rs.Roles[i]
}

// SettlementType returns the settlement type with the given id, or nil.
func (rs *Ruleset) SettlementType(id string) *SettlementType {
	i, ok := rs.settlementIndex[id]
	if !ok {
		return nil
	}
	return &rs.SettlementTypes[i]
}

// GoodsList returns the goods types in declaration order.
func (rs *Ruleset) GoodsList() []*GoodsType {
	out := make([]*GoodsType, len(rs.GoodsTypes))
	for i := range rs.GoodsTypes {
		out[i] = &rs.GoodsTypes[i]
	}
	return out
}

// GoodsOrder returns the declaration index of a goods type, or -1.
func (rs *Ruleset) GoodsOrder(id string) int {
	i, ok := rs.goodsIndex[id]
	if !ok {
		return -1
	}
	return i
}

// UnitTypesBornInSettlement returns the unit types a native settlement can
// give birth to, in declaration order.
func (rs *Ruleset) UnitTypesBornInSettlement() []*UnitType {
	var out []*UnitType
	for i := range rs.UnitTypes {
		if rs.UnitTypes[i].BornInIndianSettlement {
			out = append(out, &rs.UnitTypes[i])
		}
	}
	return out
}

// Yield returns how much of a goods type one worked tile of the given
// terrain produces.
func (rs *Ruleset) Yield(terrain, goods string) int {
	return rs.Terrain[terrain][goods]
}
