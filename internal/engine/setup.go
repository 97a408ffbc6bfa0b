package engine

import (
	"log/slog"

	"github.com/talgya/frontier/internal/entropy"
	"github.com/talgya/frontier/internal/model"
	"github.com/talgya/frontier/internal/rules"
	"github.com/talgya/frontier/internal/social"
	"github.com/talgya/frontier/internal/world"
)

// SetupConfig describes a new game.
type SetupConfig struct {
	Map                  world.GenConfig
	Europeans            []string
	Natives              []string
	SettlementsPerNation int
	ColoniesPerPlayer    int
	StartingGold         int
}

// DefaultSetupConfig returns a four-power, four-nation game.
func DefaultSetupConfig() SetupConfig {
	return SetupConfig{
		Map:                  world.DefaultGenConfig(),
		Europeans:            []string{"Dutch", "English", "French", "Spanish"},
		Natives:              []string{"Arawak", "Aztec", "Cherokee", "Sioux"},
		SettlementsPerNation: 4,
		ColoniesPerPlayer:    2,
		StartingGold:         1000,
	}
}

// NewGame generates the map and places the starting colonies, native
// settlements and units. Every native nation starts at peace with every
// European. The same config, ruleset and source give the same game.
func NewGame(rs *rules.Ruleset, cfg SetupConfig, rng *entropy.Source) *model.Game {
	wm := world.Generate(cfg.Map)
	g := model.NewGame(rs, wm)

	var europeans, natives []*model.Player
	for _, name := range cfg.Europeans {
		p := g.AddPlayer(name, true)
		p.Gold = cfg.StartingGold
		europeans = append(europeans, p)
	}
	for _, name := range cfg.Natives {
		natives = append(natives, g.AddPlayer(name, false))
	}
	for _, n := range natives {
		for _, e := range europeans {
			g.SetStance(n.ID, e.ID, social.Peace)
		}
	}

	sites := world.PlaceSites(wm, cfg.Map.Seed, len(natives)*cfg.SettlementsPerNation, len(europeans)*cfg.ColoniesPerPlayer)
	var colonySites, nativeSites []world.Site
	for _, site := range sites {
		if site.Kind == world.SiteColony {
			colonySites = append(colonySites, site)
		} else {
			nativeSites = append(nativeSites, site)
		}
	}

	for i, site := range colonySites {
		if len(europeans) == 0 {
			break
		}
		owner := europeans[i%len(europeans)]
		c := g.CreateColony(site.Name, owner.ID, site.Coord)
		placeColonists(g, c, i < len(europeans))
	}

	var plain []*rules.SettlementType
	var capital *rules.SettlementType
	for i := range rs.SettlementTypes {
		st := &rs.SettlementTypes[i]
		if st.Capital {
			capital = st
		} else {
			plain = append(plain, st)
		}
	}
	seen := make(map[string]bool)
	for i, site := range nativeSites {
		if len(natives) == 0 {
			break
		}
		owner := natives[i%len(natives)]
		isCapital := !seen[owner.ID] && capital != nil
		seen[owner.ID] = true
		st := capital
		if !isCapital {
			if len(plain) == 0 {
				st = &rs.SettlementTypes[0]
			} else {
				st = plain[rng.Pick("settlement type for "+site.Name, len(plain))]
			}
		}
		is := g.CreateSettlement(site.Name, owner.ID, st.ID, isCapital, site.Coord)
		g.AddUnits(is, rng)
		is.Goods.Add(rs.Constants.PrimaryFood, rs.Constants.FoodPerColonist/2)
		if rng.Intn("horses for "+site.Name, 2) == 0 {
			is.Goods.Add(rs.Constants.Horses, 2*rs.Constants.MaxHorsesPerTurn)
		}
	}

	slog.Info("game created",
		"tiles", wm.TileCount(),
		"players", len(g.Players),
		"colonies", len(g.Colonies),
		"settlements", len(g.Settlements),
		"units", len(g.Units),
	)
	return g
}

// placeColonists stocks a new colony: two workers inside, a soldier on
// guard and a caravel offshore. A player's first colony also gets a
// missionary and a wagon train.
func placeColonists(g *model.Game, c *model.Colony, first bool) {
	rs := g.Rules
	g.CreateUnit("free_colonist", c.Owner, c.Coord, c.ID)
	g.CreateUnit("free_colonist", c.Owner, c.Coord, c.ID)
	soldier := g.CreateUnit("veteran_soldier", c.Owner, c.Coord, "")
	soldier.Role = "soldier"
	c.Goods.Add(rs.Constants.PrimaryFood, rs.Constants.FoodPerColonist/2)
	c.Goods.Add("muskets", 50)
	c.Goods.Add("trade_goods", 100)

	for _, t := range g.Map.Surrounding(c.Coord, 1) {
		if !t.Land() {
			g.CreateUnit("caravel", c.Owner, t.Coord, "")
			break
		}
	}
	if first {
		g.CreateUnit("jesuit_missionary", c.Owner, c.Coord, "")
		g.CreateUnit("wagon_train", c.Owner, c.Coord, "")
	}
}
