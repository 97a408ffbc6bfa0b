// Site placement for the starting colonies and native settlements.
package world

import (
	"math/rand"
	"sort"
	"strings"
)

// SiteKind distinguishes native settlement sites from colony sites.
type SiteKind uint8

const (
	SiteNative SiteKind = iota
	SiteColony
)

// Site holds the parameters for an initial settlement placement.
type Site struct {
	Coord HexCoord
	Kind  SiteKind
	Score float64 // Desirability score
	Name  string
}

// PlaceSites picks up to natives native sites and colonies colony sites.
// Colonies need a coastal landing; native sites prefer fertile inland tiles.
// The result is deterministic for a given map and seed.
func PlaceSites(m *Map, seed int64, natives, colonies int) []Site {
	rng := rand.New(rand.NewSource(seed + 200))

	type scored struct {
		coord HexCoord
		score float64
	}
	var nativeCands, colonyCands []scored
	for _, coord := range m.SortedCoords() {
		t := m.Get(coord)
		if !t.Land() {
			continue
		}
		base := siteScore(m, coord, t)
		if base <= 0 {
			continue
		}
		if touchesOcean(m, coord) {
			colonyCands = append(colonyCands, scored{coord, base + 1})
		}
		nativeCands = append(nativeCands, scored{coord, base + rng.Float64()*0.5})
	}
	sort.SliceStable(colonyCands, func(i, j int) bool { return colonyCands[i].score > colonyCands[j].score })
	sort.SliceStable(nativeCands, func(i, j int) bool { return nativeCands[i].score > nativeCands[j].score })

	var sites []Site
	place := func(cands []scored, kind SiteKind, want, minDist int) {
		n := 0
		for _, c := range cands {
			if n >= want {
				return
			}
			if tooClose(c.coord, sites, minDist) {
				continue
			}
			sites = append(sites, Site{Coord: c.coord, Kind: kind, Score: c.score})
			n++
		}
	}
	// Colonies first so natives cluster inland around them.
	place(colonyCands, SiteColony, colonies, 5)
	place(nativeCands, SiteNative, natives, 3)

	names := siteNames(rng, sites)
	for i := range sites {
		sites[i].Name = names[i]
	}
	return sites
}

// terrainAppeal is how much a settlement wants to sit on each terrain.
// Ocean is absent: nothing settles there.
var terrainAppeal = map[Terrain]float64{
	TerrainCoast:    3.5,
	TerrainRiver:    3.5,
	TerrainPlains:   3.0,
	TerrainForest:   2.0,
	TerrainDesert:   0.5,
	TerrainSwamp:    0.5,
	TerrainTundra:   0.5,
	TerrainMountain: 0.3,
}

// siteScore rates a tile for a settlement: its own terrain plus 0.3 for
// every distinct land terrain around it.
func siteScore(m *Map, coord HexCoord, t *Tile) float64 {
	score, ok := terrainAppeal[t.Terrain]
	if !ok {
		return 0
	}
	var seen [len(terrainNames)]bool
	for _, nc := range coord.Neighbors() {
		if n := m.Get(nc); n != nil && n.Land() && !seen[n.Terrain] {
			seen[n.Terrain] = true
			score += 0.3
		}
	}
	return score
}

func tooClose(coord HexCoord, existing []Site, minDist int) bool {
	for _, s := range existing {
		if Distance(coord, s.Coord) < minDist {
			return true
		}
	}
	return false
}

var (
	colonyPrefixes = []string{"New", "Fort", "Port", "San", "Saint"}
	colonyStems    = []string{
		"Amsterdam", "Haven", "Orange", "Plymouth", "Jamestown", "Rochelle",
		"Augustin", "Charles", "Hope", "Providence", "Albany", "Mateo",
		"Bristol", "Utrecht",
	}
	nativeSyllables = []string{
		"ka", "ho", "ki", "ta", "no", "wa", "sha", "mi", "to", "pa",
		"chu", "ne", "lo", "ya", "co", "te", "ma", "qua",
	}
)

// siteNames names the placed sites: colonial names for colonies, two or
// three native syllables for native settlements. Names are unique.
func siteNames(rng *rand.Rand, sites []Site) []string {
	used := make(map[string]bool)
	names := make([]string, len(sites))
	for i, site := range sites {
		for names[i] == "" || used[names[i]] {
			if site.Kind == SiteColony {
				names[i] = colonyPrefixes[rng.Intn(len(colonyPrefixes))] + " " + colonyStems[rng.Intn(len(colonyStems))]
				continue
			}
			name := ""
			for n := 2 + rng.Intn(2); n > 0; n-- {
				name += nativeSyllables[rng.Intn(len(nativeSyllables))]
			}
			names[i] = strings.ToUpper(name[:1]) + name[1:]
		}
		used[names[i]] = true
	}
	return names
}
