// Package economy provides goods containers and European markets.
package economy

import (
	"github.com/talgya/frontier/internal/rules"
)

// MarketEntry is the current price state of one goods type.
type MarketEntry struct {
	Goods     string `json:"goods"`
	Price     int    `json:"price"`      // Sale price per unit
	BasePrice int    `json:"base_price"` // Price before sales pressure
	Sold      int    `json:"sold"`       // Units sold since the last recovery
}

// Market holds the sale prices a European player gets for its goods.
type Market struct {
	Entries map[string]*MarketEntry `json:"entries"`
}

// NewMarket creates a market priced from the ruleset.
func NewMarket(rs *rules.Ruleset) *Market {
	m := &Market{Entries: make(map[string]*MarketEntry, len(rs.GoodsTypes))}
	for _, g := range rs.GoodsList() {
		m.Entries[g.ID] = &MarketEntry{Goods: g.ID, Price: g.Price, BasePrice: g.Price}
	}
	return m
}

// SalePrice returns what selling amount units of goods would earn.
// Unknown goods are worthless.
func (m *Market) SalePrice(goods string, amount int) int {
	if m == nil || amount <= 0 {
		return 0
	}
	e, ok := m.Entries[goods]
	if !ok {
		return 0
	}
	return e.Price * amount
}

// Sell records a sale and returns the gold earned. Every full hundred units
// sold drops the price by one, never below one.
func (m *Market) Sell(goods string, amount int) int {
	earned := m.SalePrice(goods, amount)
	if earned == 0 {
		return 0
	}
	e := m.Entries[goods]
	e.Sold += amount
	for e.Sold >= 100 {
		e.Sold -= 100
		if e.Price > 1 {
			e.Price--
		}
	}
	return earned
}

// Recover moves every price one step back toward its base price.
func (m *Market) Recover() {
	for _, e := range m.Entries {
		switch {
		case e.Price < e.BasePrice:
			e.Price++
		case e.Price > e.BasePrice:
			e.Price--
		}
	}
}
