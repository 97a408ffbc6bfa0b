package model

import (
	"github.com/talgya/frontier/internal/economy"
	"github.com/talgya/frontier/internal/world"
)

// Colony is a European settlement.
type Colony struct {
	ID       string             `json:"id"`
	Seq      int                `json:"seq"`
	Name     string             `json:"name"`
	Owner    string             `json:"owner"`
	Coord    world.HexCoord     `json:"coord"`
	Goods    *economy.Container `json:"goods"`
	Units    []string           `json:"units"` // Workers inside the colony
	Disposed bool               `json:"-"`
}

// GoodsContainer implements GoodsHolder.
func (c *Colony) GoodsContainer() *economy.Container { return c.Goods }

// GoodsCount returns the stored amount of a goods type.
func (c *Colony) GoodsCount(goods string) int { return c.Goods.Count(goods) }

// CreateColony founds a colony at coord.
func (g *Game) CreateColony(name, owner string, coord world.HexCoord) *Colony {
	id, seq := g.newID(PrefixColony)
	c := &Colony{
		ID:    id,
		Seq:   seq,
		Name:  name,
		Owner: owner,
		Coord: coord,
		Goods: economy.NewContainer(),
	}
	g.Colonies[id] = c
	if t := g.Map.Get(coord); t != nil {
		t.Settlement = id
	}
	return c
}

// Defenders returns the owner's offensive units standing on the colony tile.
func (g *Game) Defenders(c *Colony) []*Unit {
	var out []*Unit
	t := g.Map.Get(c.Coord)
	if t == nil {
		return nil
	}
	for _, id := range t.Units {
		if u := g.Unit(id); u != nil && u.Owner == c.Owner && g.IsOffensive(u) {
			out = append(out, u)
		}
	}
	return out
}

// ChangeColonyOwner hands a colony and its workers to a new owner.
func (g *Game) ChangeColonyOwner(c *Colony, owner string) {
	c.Owner = owner
	for _, id := range c.Units {
		if u := g.Unit(id); u != nil {
			u.Owner = owner
		}
	}
}

// DisposeColony removes a colony and its workers.
func (g *Game) DisposeColony(c *Colony) {
	if c == nil || c.Disposed {
		return
	}
	for _, id := range append([]string(nil), c.Units...) {
		g.DisposeUnit(g.Unit(id))
	}
	if t := g.Map.Get(c.Coord); t != nil && t.Settlement == c.ID {
		t.Settlement = ""
	}
	delete(g.Colonies, c.ID)
	c.Disposed = true
}
