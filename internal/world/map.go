package world

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Map holds the complete hex grid.
type Map struct {
	Tiles  map[HexCoord]*Tile `json:"-"` // All tiles keyed by coordinate
	Radius int                `json:"radius"`
}

// NewMap creates an empty map with the given radius.
// A hex grid of radius R contains hexes where max(|q|, |r|, |s|) <= R.
func NewMap(radius int) *Map {
	return &Map{
		Tiles:  make(map[HexCoord]*Tile),
		Radius: radius,
	}
}

// Get returns the tile at the given coordinate, or nil if out of bounds.
func (m *Map) Get(coord HexCoord) *Tile {
	return m.Tiles[coord]
}

// Set places a tile at its coordinate.
func (m *Map) Set(t *Tile) {
	m.Tiles[t.Coord] = t
}

// InBounds returns true if the coordinate is within the map radius.
func (m *Map) InBounds(coord HexCoord) bool {
	return max(abs(coord.Q), abs(coord.R), abs(coord.S())) <= m.Radius
}

// Neighbor returns the tile one step from coord in direction d, or nil.
func (m *Map) Neighbor(coord HexCoord, d Direction) *Tile {
	if d < 0 || d > 5 {
		return nil
	}
	return m.Tiles[coord.Step(d)]
}

// Surrounding returns the existing tiles within radius of coord, excluding
// coord itself, ordered by distance then by coordinate.
func (m *Map) Surrounding(coord HexCoord, radius int) []*Tile {
	var out []*Tile
	for q := -radius; q <= radius; q++ {
		for r := -radius; r <= radius; r++ {
			c := HexCoord{Q: coord.Q + q, R: coord.R + r}
			if c == coord || Distance(coord, c) > radius {
				continue
			}
			if t := m.Tiles[c]; t != nil {
				out = append(out, t)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := Distance(coord, out[i].Coord), Distance(coord, out[j].Coord)
		if di != dj {
			return di < dj
		}
		return lessCoord(out[i].Coord, out[j].Coord)
	})
	return out
}

// SortedCoords returns every coordinate in a stable order.
func (m *Map) SortedCoords() []HexCoord {
	out := make([]HexCoord, 0, len(m.Tiles))
	for c := range m.Tiles {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return lessCoord(out[i], out[j]) })
	return out
}

// TileCount returns the total number of tiles in the map.
func (m *Map) TileCount() int {
	return len(m.Tiles)
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(radius=%d, tiles=%d)", m.Radius, m.TileCount())
}

func lessCoord(a, b HexCoord) bool {
	if a.Q != b.Q {
		return a.Q < b.Q
	}
	return a.R < b.R
}

type mapJSON struct {
	Radius int     `json:"radius"`
	Tiles  []*Tile `json:"tiles"`
}

// MarshalJSON writes the tiles as a list in coordinate order.
func (m *Map) MarshalJSON() ([]byte, error) {
	out := mapJSON{Radius: m.Radius, Tiles: make([]*Tile, 0, len(m.Tiles))}
	for _, c := range m.SortedCoords() {
		out.Tiles = append(out.Tiles, m.Tiles[c])
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (m *Map) UnmarshalJSON(data []byte) error {
	var in mapJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	m.Radius = in.Radius
	m.Tiles = make(map[HexCoord]*Tile, len(in.Tiles))
	for _, t := range in.Tiles {
		m.Tiles[t.Coord] = t
	}
	return nil
}
