package model

import (
	"github.com/talgya/frontier/internal/economy"
	"github.com/talgya/frontier/internal/rules"
	"github.com/talgya/frontier/internal/social"
)

// Player is a European colonial power or a native nation.
type Player struct {
	ID       string                     `json:"id"`
	Seq      int                        `json:"seq"`
	Name     string                     `json:"name"`
	European bool                       `json:"european"`
	Gold     int                        `json:"gold"`
	Tension  map[string]*social.Tension `json:"tension"`
	Stance   map[string]social.Stance   `json:"stance"`
	Market   *economy.Market            `json:"market,omitempty"`
	Dead     bool                       `json:"dead"`
}

func newPlayer(id string, seq int, name string, european bool, rs *rules.Ruleset) *Player {
	p := &Player{
		ID:       id,
		Seq:      seq,
		Name:     name,
		European: european,
		Tension:  make(map[string]*social.Tension),
		Stance:   make(map[string]social.Stance),
	}
	if european {
		p.Market = economy.NewMarket(rs)
	}
	return p
}

// TensionTo returns the nation-level tension toward another player, or nil.
func (p *Player) TensionTo(other string) *social.Tension {
	return p.Tension[other]
}

// TensionValue returns the tension value toward another player, zero when
// none is recorded.
func (p *Player) TensionValue(other string) int {
	if t := p.Tension[other]; t != nil {
		return t.Value
	}
	return 0
}

// ModifyTension changes the tension toward another player, creating it if
// needed, and reports whether its level changed.
func (p *Player) ModifyTension(other string, amount int, s social.Scale) bool {
	if other == p.ID {
		return false
	}
	t := p.Tension[other]
	if t == nil {
		t = &social.Tension{}
		p.Tension[other] = t
	}
	return t.Modify(amount, s)
}

// StanceTo returns the stance toward another player.
func (p *Player) StanceTo(other string) social.Stance {
	return p.Stance[other]
}

// CheckGold reports whether the player holds at least amount gold.
func (p *Player) CheckGold(amount int) bool {
	return p.Gold >= amount
}

// ModifyGold adds (or with a negative amount, removes) gold, never going
// below zero.
func (p *Player) ModifyGold(amount int) {
	p.Gold += amount
	if p.Gold < 0 {
		p.Gold = 0
	}
}
