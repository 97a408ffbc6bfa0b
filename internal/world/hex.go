// Package world provides the hex grid, terrain and map generation.
// Uses axial coordinates (q, r) for the hex grid.
package world

import (
	"fmt"
	"strconv"
	"strings"
)

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// String formats the coordinate as "q,r".
func (h HexCoord) String() string {
	return fmt.Sprintf("%d,%d", h.Q, h.R)
}

// ParseHexCoord is the inverse of String.
func ParseHexCoord(s string) (HexCoord, error) {
	qs, rs, ok := strings.Cut(s, ",")
	if !ok {
		return HexCoord{}, fmt.Errorf("bad coordinate %q", s)
	}
	q, err := strconv.Atoi(qs)
	if err != nil {
		return HexCoord{}, fmt.Errorf("bad coordinate %q: %w", s, err)
	}
	r, err := strconv.Atoi(rs)
	if err != nil {
		return HexCoord{}, fmt.Errorf("bad coordinate %q: %w", s, err)
	}
	return HexCoord{Q: q, R: r}, nil
}

// Terrain types for hex tiles.
type Terrain uint8

const (
	TerrainPlains   Terrain = iota // Grain and cotton
	TerrainForest                  // Furs and lumber
	TerrainMountain                // Ore and silver, strong defence
	TerrainCoast                   // Fish, landing spots
	TerrainRiver                   // Grain and fish
	TerrainDesert                  // Poor yields
	TerrainSwamp                   // Tobacco and sugar
	TerrainTundra                  // Furs, harsh
	TerrainOcean                   // Ships only
)

// Direction indexes the six neighbours of a hex.
type Direction int

// NoDirection is returned when two tiles are not adjacent.
const NoDirection Direction = -1

var directionNames = [6]string{"E", "NE", "NW", "W", "SW", "SE"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return "none"
	}
	return directionNames[d]
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// Step returns the coordinate one hex away in direction d.
func (h HexCoord) Step(d Direction) HexCoord {
	off := HexNeighborDirections[d]
	return HexCoord{Q: h.Q + off.Q, R: h.R + off.R}
}

// DirectionTo returns the direction from a to an adjacent b, or NoDirection.
func DirectionTo(a, b HexCoord) Direction {
	for i, off := range HexNeighborDirections {
		if a.Q+off.Q == b.Q && a.R+off.R == b.R {
			return Direction(i)
		}
	}
	return NoDirection
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	// Max of the three absolute differences in cube coordinates.
	return max(dq, dr, ds)
}

// Tile is a single hex of the map.
type Tile struct {
	Coord   HexCoord `json:"coord"`
	Terrain Terrain  `json:"terrain"`

	// Set during world generation.
	Elevation float64 `json:"elevation"`
	Rainfall  float64 `json:"rainfall"`

	// Settlement (colony or native settlement) on this tile, if any.
	Settlement string `json:"settlement,omitempty"`

	// Units standing on the tile outside any settlement or carrier, in
	// arrival order.
	Units []string `json:"units,omitempty"`
}

// Land reports whether land units can stand on the tile.
func (t *Tile) Land() bool {
	return t.Terrain != TerrainOcean
}

// DefenceValue is the terrain defence bonus in percent.
func (t *Tile) DefenceValue() int {
	switch t.Terrain {
	case TerrainMountain:
		return 150
	case TerrainForest, TerrainSwamp:
		return 50
	case TerrainRiver:
		return 25
	default:
		return 0
	}
}

// FirstUnit returns the first unit on the tile, or "".
func (t *Tile) FirstUnit() string {
	if len(t.Units) == 0 {
		return ""
	}
	return t.Units[0]
}

// AddUnit appends a unit id unless already present.
func (t *Tile) AddUnit(id string) {
	for _, u := range t.Units {
		if u == id {
			return
		}
	}
	t.Units = append(t.Units, id)
}

// RemoveUnit drops a unit id, keeping the order of the rest.
func (t *Tile) RemoveUnit(id string) {
	for i, u := range t.Units {
		if u == id {
			t.Units = append(t.Units[:i], t.Units[i+1:]...)
			return
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
