// New World generation from layered simplex noise: an elevation, a
// rainfall and a temperature field decide each tile's terrain.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Radius      int     // Hex grid radius
	Seed        int64   // Random seed (0 = random)
	SeaLevel    float64 // Elevation below which a tile is ocean (0.0–1.0)
	MountainLvl float64 // Elevation above which a tile is mountain (0.0–1.0)
}

// DefaultGenConfig returns the map used for a full game.
func DefaultGenConfig() GenConfig {
	return GenConfig{Radius: 16, SeaLevel: 0.25, MountainLvl: 0.72}
}

// SmallTestConfig returns a small fixed-seed map for tests and quick games.
func SmallTestConfig() GenConfig {
	return GenConfig{Radius: 6, Seed: 42, SeaLevel: 0.20, MountainLvl: 0.80}
}

// field is one fractal noise layer.
type field struct {
	noise   opensimplex.Noise
	octaves int
	freq    float64
}

// at sums the octaves of the field at a point, each at twice the frequency
// and half the weight of the last, normalized back to 0..1.
func (f field) at(x, y float64) float64 {
	var sum, norm float64
	weight, freq := 1.0, f.freq
	for i := 0; i < f.octaves; i++ {
		sum += weight * f.noise.Eval2(x*freq, y*freq)
		norm += weight
		weight /= 2
		freq *= 2
	}
	return sum / norm
}

// climate is the sampled state of one tile before it gets a terrain.
type climate struct {
	elev, rain, temp float64
}

func (c climate) terrain(cfg GenConfig) Terrain {
	switch {
	case c.elev < cfg.SeaLevel:
		return TerrainOcean
	case c.elev > cfg.MountainLvl:
		return TerrainMountain
	case c.temp < 0.25:
		return TerrainTundra
	case c.rain < 0.25 && c.temp > 0.5:
		return TerrainDesert
	case c.rain > 0.7 && c.elev < 0.45:
		return TerrainSwamp
	case c.rain > 0.45 && c.elev > 0.45:
		return TerrainForest
	}
	return TerrainPlains
}

// planar maps an axial coordinate onto the plane the noise is sampled in.
func planar(c HexCoord) (x, y float64) {
	return float64(c.Q) + float64(c.R)/2, float64(c.R) * math.Sqrt(3) / 2
}

// Generate builds a map of one continent ringed by ocean. The same config
// always yields the same map.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	elevation := field{opensimplex.NewNormalized(seed), 4, 0.08}
	rainfall := field{opensimplex.NewNormalized(seed + 1), 3, 0.06}
	warmth := field{opensimplex.NewNormalized(seed + 2), 3, 0.05}
	radius := float64(cfg.Radius)

	m := NewMap(cfg.Radius)
	for _, coord := range hexesWithin(cfg.Radius) {
		x, y := planar(coord)

		// Sink the land toward the rim so the continent has a shoreline.
		rim := math.Hypot(x, y) / radius
		c := climate{
			elev: elevation.at(x, y) * math.Max(0, 1-math.Pow(rim, 3.5)),
			rain: rainfall.at(x, y),
		}
		// Colder toward the poles and on high ground.
		c.temp = 0.6*warmth.at(x, y) + 0.3*(1-math.Abs(y)/radius) + 0.1*(1-c.elev)

		m.Set(&Tile{Coord: coord, Terrain: c.terrain(cfg), Elevation: c.elev, Rainfall: c.rain})
	}

	markCoast(m)
	placeRivers(m, rand.New(rand.NewSource(seed+100)))
	return m
}

// hexesWithin lists the coordinates of a hex grid of the given radius.
func hexesWithin(radius int) []HexCoord {
	var out []HexCoord
	for q := -radius; q <= radius; q++ {
		for r := max(-radius, -q-radius); r <= min(radius, -q+radius); r++ {
			out = append(out, HexCoord{Q: q, R: r})
		}
	}
	return out
}

func touchesOcean(m *Map, c HexCoord) bool {
	for _, nc := range c.Neighbors() {
		if n := m.Get(nc); n != nil && !n.Land() {
			return true
		}
	}
	return false
}

// markCoast turns low shoreline plains and forest into coast, where ships
// can land.
func markCoast(m *Map) {
	var shore []*Tile
	for _, coord := range m.SortedCoords() {
		t := m.Get(coord)
		if t.Land() && t.Elevation < 0.5 && (t.Terrain == TerrainPlains || t.Terrain == TerrainForest) && touchesOcean(m, coord) {
			shore = append(shore, t)
		}
	}
	for _, t := range shore {
		t.Terrain = TerrainCoast
	}
}

// placeRivers runs between two and ten rivers from randomly chosen high
// ground down to the sea.
func placeRivers(m *Map, rng *rand.Rand) {
	var springs []HexCoord
	for _, coord := range m.SortedCoords() {
		if t := m.Get(coord); t.Land() && t.Elevation > 0.65 {
			springs = append(springs, coord)
		}
	}
	rng.Shuffle(len(springs), func(i, j int) { springs[i], springs[j] = springs[j], springs[i] })
	n := min(len(springs), min(max(len(springs)/8, 2), 10))
	for _, spring := range springs[:n] {
		flowDownhill(m, spring)
	}
}

// flowDownhill marks a river from a spring, always stepping to the lowest
// unvisited neighbour below the current tile, until it meets water, finds
// no lower ground or runs 50 tiles.
func flowDownhill(m *Map, spring HexCoord) {
	seen := map[HexCoord]bool{}
	at := spring
	for range 50 {
		seen[at] = true
		t := m.Get(at)
		if t == nil || !t.Land() {
			return
		}
		if t.Terrain != TerrainMountain && t.Terrain != TerrainCoast {
			t.Terrain = TerrainRiver
		}
		lowest, found := t.Elevation, false
		for _, nc := range at.Neighbors() {
			if n := m.Get(nc); n != nil && !seen[nc] && n.Elevation < lowest {
				lowest, at, found = n.Elevation, nc, true
			}
		}
		if !found {
			return
		}
	}
}

var terrainNames = [...]string{
	TerrainPlains:   "plains",
	TerrainForest:   "forest",
	TerrainMountain: "mountain",
	TerrainCoast:    "coast",
	TerrainRiver:    "river",
	TerrainDesert:   "desert",
	TerrainSwamp:    "swamp",
	TerrainTundra:   "tundra",
	TerrainOcean:    "ocean",
}

// TerrainName returns the ruleset key of a terrain type.
func TerrainName(t Terrain) string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return "unknown"
}

// String implements fmt.Stringer.
func (t Terrain) String() string { return TerrainName(t) }
