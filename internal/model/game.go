// Package model holds the authoritative game objects: players, units,
// colonies, native settlements and the map they live on. Objects refer to
// each other by id; the Game resolves ids.
package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/talgya/frontier/internal/rules"
	"github.com/talgya/frontier/internal/social"
	"github.com/talgya/frontier/internal/world"
)

// Id prefixes. Every id is "<prefix>:<n>" except tiles, which are
// "tile:<q>,<r>".
const (
	PrefixUnit       = "unit"
	PrefixColony     = "colony"
	PrefixSettlement = "settlement"
	PrefixPlayer     = "player"
	PrefixTile       = "tile"
)

// Game is the complete authoritative state.
type Game struct {
	Rules       *rules.Ruleset               `json:"-"`
	Map         *world.Map                   `json:"map"`
	Turn        int                          `json:"turn"`
	Players     []*Player                    `json:"players"`
	Units       map[string]*Unit             `json:"units"`
	Colonies    map[string]*Colony           `json:"colonies"`
	Settlements map[string]*IndianSettlement `json:"settlements"`
	NextSeq     int                          `json:"next_seq"`
}

// NewGame creates an empty game on the given map.
func NewGame(rs *rules.Ruleset, m *world.Map) *Game {
	return &Game{
		Rules:       rs,
		Map:         m,
		Units:       make(map[string]*Unit),
		Colonies:    make(map[string]*Colony),
		Settlements: make(map[string]*IndianSettlement),
		NextSeq:     1,
	}
}

func (g *Game) newID(prefix string) (string, int) {
	seq := g.NextSeq
	g.NextSeq++
	return fmt.Sprintf("%s:%d", prefix, seq), seq
}

// Scale returns the configured tension scale.
func (g *Game) Scale() social.Scale {
	t := g.Rules.Tension
	return social.Scale{Happy: t.Happy, Content: t.Content, Displeased: t.Displeased, Angry: t.Angry, Hateful: t.Hateful}
}

// TileID returns the location id of a map tile.
func TileID(c world.HexCoord) string {
	return PrefixTile + ":" + c.String()
}

// Kind returns the prefix of an id.
func Kind(id string) string {
	k, _, _ := strings.Cut(id, ":")
	return k
}

// Seq returns the numeric part of a non-tile id, or -1.
func Seq(id string) int {
	_, n, ok := strings.Cut(id, ":")
	if !ok {
		return -1
	}
	v, err := strconv.Atoi(n)
	if err != nil {
		return -1
	}
	return v
}

// AddPlayer registers a player.
func (g *Game) AddPlayer(name string, european bool) *Player {
	id, seq := g.newID(PrefixPlayer)
	p := newPlayer(id, seq, name, european, g.Rules)
	g.Players = append(g.Players, p)
	return p
}

// Player returns the player with the given id, or nil.
func (g *Game) Player(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// LiveEuropeans returns the European players still in the game, in join
// order.
func (g *Game) LiveEuropeans() []*Player {
	var out []*Player
	for _, p := range g.Players {
		if p.European && !p.Dead {
			out = append(out, p)
		}
	}
	return out
}

func (g *Game) liveEuropeanIDs() []string {
	var out []string
	for _, p := range g.LiveEuropeans() {
		out = append(out, p.ID)
	}
	return out
}

// SetStance sets the stance between two players in both directions.
func (g *Game) SetStance(a, b string, s social.Stance) {
	if pa := g.Player(a); pa != nil {
		pa.Stance[b] = s
	}
	if pb := g.Player(b); pb != nil {
		pb.Stance[a] = s
	}
}

// Unit returns the live unit with the given id, or nil.
func (g *Game) Unit(id string) *Unit {
	return g.Units[id]
}

// Colony returns the live colony with the given id, or nil.
func (g *Game) Colony(id string) *Colony {
	return g.Colonies[id]
}

// Settlement returns the live native settlement with the given id, or nil.
func (g *Game) Settlement(id string) *IndianSettlement {
	return g.Settlements[id]
}

// SettlementOwner returns the owner of the colony or native settlement id.
func (g *Game) SettlementOwner(id string) string {
	if c := g.Colony(id); c != nil {
		return c.Owner
	}
	if is := g.Settlement(id); is != nil {
		return is.Owner
	}
	return ""
}

// UnitsOf returns a player's units in creation order.
func (g *Game) UnitsOf(player string) []*Unit {
	var out []*Unit
	for _, u := range g.Units {
		if u.Owner == player {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// ColoniesOf returns a player's colonies in creation order.
func (g *Game) ColoniesOf(player string) []*Colony {
	var out []*Colony
	for _, c := range g.Colonies {
		if c.Owner == player {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// SettlementsOf returns a player's native settlements in creation order.
func (g *Game) SettlementsOf(player string) []*IndianSettlement {
	var out []*IndianSettlement
	for _, is := range g.Settlements {
		if is.Owner == player {
			out = append(out, is)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// AllSettlements returns every native settlement in creation order.
func (g *Game) AllSettlements() []*IndianSettlement {
	out := make([]*IndianSettlement, 0, len(g.Settlements))
	for _, is := range g.Settlements {
		out = append(out, is)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// AllColonies returns every colony in creation order.
func (g *Game) AllColonies() []*Colony {
	out := make([]*Colony, 0, len(g.Colonies))
	for _, c := range g.Colonies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// LocationCoord resolves any location id to the coordinate it occupies.
func (g *Game) LocationCoord(id string) (world.HexCoord, bool) {
	switch Kind(id) {
	case PrefixTile:
		c, err := world.ParseHexCoord(strings.TrimPrefix(id, PrefixTile+":"))
		if err != nil || g.Map.Get(c) == nil {
			return world.HexCoord{}, false
		}
		return c, true
	case PrefixColony:
		if c := g.Colony(id); c != nil {
			return c.Coord, true
		}
	case PrefixSettlement:
		if is := g.Settlement(id); is != nil {
			return is.Coord, true
		}
	case PrefixUnit:
		if u := g.Unit(id); u != nil {
			return u.Coord, true
		}
	}
	return world.HexCoord{}, false
}

// LocationTile resolves a location id to its map tile, or nil.
func (g *Game) LocationTile(id string) *world.Tile {
	c, ok := g.LocationCoord(id)
	if !ok {
		return nil
	}
	return g.Map.Get(c)
}

// LocationExists reports whether the id names a live location.
func (g *Game) LocationExists(id string) bool {
	_, ok := g.LocationCoord(id)
	return ok
}

// SameLocation reports whether two location ids occupy the same tile.
func (g *Game) SameLocation(a, b string) bool {
	ca, oka := g.LocationCoord(a)
	cb, okb := g.LocationCoord(b)
	return oka && okb && ca == cb
}

// ContainerOf returns the goods store of a colony, native settlement or
// carrier, or nil.
func (g *Game) ContainerOf(id string) GoodsHolder {
	switch Kind(id) {
	case PrefixColony:
		if c := g.Colony(id); c != nil {
			return c
		}
	case PrefixSettlement:
		if is := g.Settlement(id); is != nil {
			return is
		}
	case PrefixUnit:
		if u := g.Unit(id); u != nil {
			return u
		}
	}
	return nil
}

// Reindex rebuilds the per-tile settlement and unit indexes from the object
// maps after loading a snapshot. Saved arrival order is kept for units the
// tile already lists; units missing from their tile are appended by Seq.
func (g *Game) Reindex() {
	for _, t := range g.Map.Tiles {
		t.Settlement = ""
		kept := t.Units[:0]
		for _, id := range t.Units {
			if u := g.Units[id]; u != nil && u.Location == "" && u.Coord == t.Coord {
				kept = appendUnique(kept, id)
			}
		}
		t.Units = kept
	}
	for _, c := range g.AllColonies() {
		if t := g.Map.Get(c.Coord); t != nil {
			t.Settlement = c.ID
		}
	}
	for _, is := range g.AllSettlements() {
		if t := g.Map.Get(is.Coord); t != nil {
			t.Settlement = is.ID
		}
	}
	units := make([]*Unit, 0, len(g.Units))
	for _, u := range g.Units {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Seq < units[j].Seq })
	for _, u := range units {
		if u.Location == "" {
			if t := g.Map.Get(u.Coord); t != nil {
				t.AddUnit(u.ID)
			}
		}
	}
}
