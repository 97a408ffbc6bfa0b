package ai

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Record is the saved form of one AI object: a tag naming its type, its id,
// flat attributes and nested child records.
type Record struct {
	Tag      string            `json:"tag"`
	ID       string            `json:"id,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []Record          `json:"children,omitempty"`
}

// Record tags.
const (
	tagAIUnit   = "aiUnit"
	tagAIGoods  = "aiGoods"
	tagAIColony = "aiColony"
	tagCargo    = "cargo"
	tagWishRef  = "wishRef"
	tagGoodsRef = "goodsRef"
)

// legacyMissionTags maps retired mission tags to their replacements. An
// empty replacement means the mission is dropped on load.
var legacyMissionTags = map[string]string{
	"idleAtColonyMission":        "idleAtSettlementMission",
	"tileImprovementPlanMission": "",
}

// legacyGoodsWishPrefix is the id prefix old saves used for goods wishes.
const legacyGoodsWishPrefix = "GoodsWish"

func (r *Record) set(key, value string) {
	if value == "" {
		return
	}
	if r.Attrs == nil {
		r.Attrs = make(map[string]string)
	}
	r.Attrs[key] = value
}

func (r *Record) setInt(key string, v int) { r.set(key, strconv.Itoa(v)) }

func (r *Record) setBool(key string, v bool) {
	if v {
		r.set(key, "true")
	}
}

func (r *Record) str(key string) string { return r.Attrs[key] }

func (r *Record) int(key string, def int) int {
	s, ok := r.Attrs[key]
	if !ok {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func (r *Record) bool(key string) bool {
	v, _ := strconv.ParseBool(r.Attrs[key])
	return v
}

// Save writes every AI object as a record, in a stable order.
func (m *Main) Save() []Record {
	var out []Record
	for _, ac := range m.sortedColonies() {
		out = append(out, ac.record())
	}
	for _, w := range m.Wishes() {
		out = append(out, w.record())
	}
	for _, g := range m.sortedGoods() {
		out = append(out, g.record())
	}
	for _, au := range m.sortedUnits() {
		out = append(out, au.record())
	}
	return out
}

func (ac *AIColony) record() Record {
	r := Record{Tag: tagAIColony, ID: ac.id}
	r.setBool("rearrange", ac.rearrange)
	for _, id := range ac.wishes {
		r.Children = append(r.Children, Record{Tag: tagWishRef, ID: id})
	}
	for _, id := range ac.aiGoods {
		r.Children = append(r.Children, Record{Tag: tagGoodsRef, ID: id})
	}
	return r
}

func (w *Wish) record() Record {
	r := Record{Tag: w.kind.prefix(), ID: w.id}
	r.set("destination", w.destination)
	r.setInt("value", w.value)
	r.set("transportable", w.transportable)
	r.set("unitType", w.unitType)
	r.set("goods", w.goods)
	if w.kind == WishGoods {
		r.setInt("amount", w.amount)
	}
	return r
}

func (g *AIGoods) record() Record {
	r := Record{Tag: tagAIGoods, ID: g.id}
	r.set("goods", g.goods)
	r.setInt("amount", g.amount)
	r.set("location", g.location)
	r.set("destination", g.destination)
	r.setInt("transportPriority", g.priority)
	r.set("transport", g.transport)
	return r
}

func (a *AIUnit) record() Record {
	r := Record{Tag: tagAIUnit, ID: a.id}
	r.set("transport", a.transport)
	if a.dynamicPriority > 0 {
		r.setInt("dynamicPriority", a.dynamicPriority)
	}
	if mi := a.mission; mi != nil && !mi.IsOneTime() && mi.IsValid() {
		r.Children = append(r.Children, mi.record())
	}
	return r
}

func (mi *Mission) record() Record {
	r := Record{Tag: mi.Tag()}
	r.set("target", mi.target)
	r.setBool("completed", mi.completed)
	r.setBool("demanded", mi.demanded)
	r.setBool("collected", mi.collected)
	r.set("wish", mi.wish)
	for _, id := range mi.cargo {
		r.Children = append(r.Children, Record{Tag: tagCargo, ID: id})
	}
	return r
}

// Load replaces the registry contents with saved records. Objects whose
// required references do not resolve are kept but flagged uninitialized;
// CheckIntegrity(true) purges them. Players are rebuilt from the game.
func (m *Main) Load(records []Record) error {
	m.units = make(map[string]*AIUnit)
	m.goods = make(map[string]*AIGoods)
	m.wishes = make(map[string]*Wish)
	m.colonies = make(map[string]*AIColony)
	m.players = make(map[string]*Player)
	for _, p := range m.Game.Players {
		if !p.Dead {
			m.players[p.ID] = &Player{ID: p.ID, main: m}
		}
	}

	// First pass: create every object so references can resolve in any
	// order.
	for i := range records {
		r := &records[i]
		if r.ID == "" {
			return fmt.Errorf("record %d (%s): missing id", i, r.Tag)
		}
		m.noteID(r.ID)
		switch r.Tag {
		case tagAIColony:
			m.colonies[r.ID] = &AIColony{id: r.ID, main: m}
		case tagAIGoods:
			m.goods[r.ID] = &AIGoods{id: r.ID, main: m}
		case tagAIUnit:
			m.units[r.ID] = &AIUnit{id: r.ID, main: m}
		default:
			kind, ok := wishKindOf(r.Tag)
			if !ok {
				slog.Warn("skipping unknown record", "tag", r.Tag, "id", r.ID)
				continue
			}
			m.wishes[r.ID] = &Wish{id: r.ID, main: m, kind: kind}
		}
	}

	for i := range records {
		r := &records[i]
		var err error
		switch r.Tag {
		case tagAIColony:
			m.colonies[r.ID].read(r)
		case tagAIGoods:
			m.goods[r.ID].read(r)
		case tagAIUnit:
			err = m.units[r.ID].read(r)
		default:
			if w := m.wishes[r.ID]; w != nil {
				w.read(r)
			}
		}
		if err != nil {
			return fmt.Errorf("record %s: %w", r.ID, err)
		}
	}
	return nil
}

// wishKindOf recognises wish tags and ids, including the legacy goods wish
// prefix.
func wishKindOf(s string) (WishKind, bool) {
	switch {
	case strings.HasPrefix(s, WishGoods.prefix()), strings.HasPrefix(s, legacyGoodsWishPrefix):
		return WishGoods, true
	case strings.HasPrefix(s, WishWorker.prefix()):
		return WishWorker, true
	}
	return 0, false
}

func (ac *AIColony) read(r *Record) {
	ac.rearrange = r.bool("rearrange")
	for _, c := range r.Children {
		switch c.Tag {
		case tagWishRef:
			ac.wishes = append(ac.wishes, c.ID)
		case tagGoodsRef:
			ac.aiGoods = append(ac.aiGoods, c.ID)
		}
	}
	ac.uninitialized = ac.main.Game.Colony(ac.id) == nil
}

func (w *Wish) read(r *Record) {
	w.destination = r.str("destination")
	w.value = r.int("value", 0)
	w.transportable = r.str("transportable")
	w.unitType = r.str("unitType")
	w.goods = r.str("goods")
	w.amount = r.int("amount", 0)
	w.uninitialized = w.main.Game.Colony(w.destination) == nil
}

func (g *AIGoods) read(r *Record) {
	g.goods = r.str("goods")
	g.amount = r.int("amount", 0)
	g.location = r.str("location")
	g.destination = r.str("destination")
	// Old saves use -1 for "no priority yet".
	g.priority = max(r.int("transportPriority", -1), 0)
	g.transport = r.str("transport")
	g.uninitialized = !g.main.Game.LocationExists(g.location)
}

func (a *AIUnit) read(r *Record) error {
	a.transport = r.str("transport")
	a.dynamicPriority = max(r.int("dynamicPriority", 0), 0)
	a.uninitialized = a.main.Game.Unit(a.id) == nil
	for i := range r.Children {
		c := &r.Children[i]
		tag := c.Tag
		if alias, ok := legacyMissionTags[tag]; ok {
			if alias == "" {
				slog.Info("dropping retired mission", "unit", a.id, "tag", tag)
				continue
			}
			tag = alias
		}
		kind, ok := kindByTag(tag)
		if !ok {
			slog.Warn("skipping unknown mission", "unit", a.id, "tag", c.Tag)
			continue
		}
		mi, err := a.main.readMission(a, kind, c)
		if err != nil {
			return err
		}
		a.mission = mi
	}
	return nil
}

func (m *Main) readMission(a *AIUnit, kind Kind, r *Record) (*Mission, error) {
	mi := m.NewMission(kind, a)
	mi.target = r.str("target")
	mi.completed = r.bool("completed")
	mi.demanded = r.bool("demanded")
	mi.collected = r.bool("collected")
	for _, c := range r.Children {
		if c.Tag == tagCargo {
			mi.cargo = append(mi.cargo, c.ID)
		}
	}
	if kind == KindWishRealization {
		wid := r.str("wish")
		if wid == "" {
			mi.uninitialized = true
			return mi, nil
		}
		if m.wishes[wid] == nil {
			// Keep a placeholder so the reference survives until integrity
			// checking decides its fate.
			wk, ok := wishKindOf(wid)
			if !ok {
				return nil, fmt.Errorf("unknown wish id %q", wid)
			}
			m.wishes[wid] = &Wish{id: wid, main: m, kind: wk, uninitialized: true}
			m.noteID(wid)
		}
		mi.wish = wid
	}
	mi.uninitialized = a.uninitialized
	return mi, nil
}
