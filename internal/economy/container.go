package economy

import (
	"sort"

	"github.com/talgya/frontier/internal/rules"
)

// Goods is an amount of one goods type.
type Goods struct {
	Type   string `json:"type"`
	Amount int    `json:"amount"`
}

// Container stores goods per type. Counts are never negative.
type Container struct {
	Stock map[string]int `json:"stock"`
}

// NewContainer returns an empty container.
func NewContainer() *Container {
	return &Container{Stock: make(map[string]int)}
}

// Count returns the stored amount of a goods type.
func (c *Container) Count(goods string) int {
	if c == nil {
		return 0
	}
	return c.Stock[goods]
}

// Add stores amount units. Non-positive amounts are ignored.
func (c *Container) Add(goods string, amount int) {
	if amount <= 0 {
		return
	}
	if c.Stock == nil {
		c.Stock = make(map[string]int)
	}
	c.Stock[goods] += amount
}

// Remove takes up to amount units and returns how many were removed.
func (c *Container) Remove(goods string, amount int) int {
	have := c.Stock[goods]
	if amount > have {
		amount = have
	}
	if amount <= 0 {
		return 0
	}
	if have == amount {
		delete(c.Stock, goods)
	} else {
		c.Stock[goods] = have - amount
	}
	return amount
}

// RemoveAll empties one goods type and returns the amount removed.
func (c *Container) RemoveAll(goods string) int {
	return c.Remove(goods, c.Stock[goods])
}

// RemoveAbove truncates every storable goods type to capacity.
func (c *Container) RemoveAbove(rs *rules.Ruleset, capacity int) {
	for id, n := range c.Stock {
		g := rs.Goods(id)
		if g == nil || !g.Storable {
			continue
		}
		if n > capacity {
			c.Stock[id] = capacity
		}
	}
}

// HasGoods reports whether anything is stored.
func (c *Container) HasGoods() bool {
	if c == nil {
		return false
	}
	for _, n := range c.Stock {
		if n > 0 {
			return true
		}
	}
	return false
}

// Total returns the sum over all goods types.
func (c *Container) Total() int {
	total := 0
	for _, n := range c.Stock {
		total += n
	}
	return total
}

// Compact returns the non-empty goods in ruleset declaration order.
// Types unknown to the ruleset sort last by name.
func (c *Container) Compact(rs *rules.Ruleset) []Goods {
	out := make([]Goods, 0, len(c.Stock))
	for id, n := range c.Stock {
		if n > 0 {
			out = append(out, Goods{Type: id, Amount: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		oi, oj := rs.GoodsOrder(out[i].Type), rs.GoodsOrder(out[j].Type)
		if oi < 0 {
			oi = len(rs.GoodsTypes)
		}
		if oj < 0 {
			oj = len(rs.GoodsTypes)
		}
		if oi != oj {
			return oi < oj
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// Slots returns how many cargo slots the stored goods fill, one slot per
// started cargo load of each type.
func (c *Container) Slots(cargoSize int) int {
	slots := 0
	for _, n := range c.Stock {
		if n > 0 {
			slots += (n + cargoSize - 1) / cargoSize
		}
	}
	return slots
}

// Clone returns a deep copy.
func (c *Container) Clone() *Container {
	out := NewContainer()
	for id, n := range c.Stock {
		out.Stock[id] = n
	}
	return out
}
