package engine

import (
	"fmt"
	"log/slog"
	"strings"
)

// ProvisionSettlement adds goods to a colony or native settlement, found
// by name. It takes the simulation lock.
func (s *Simulation) ProvisionSettlement(name, goods string, quantity int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return "", fmt.Errorf("quantity must be positive: %d", quantity)
	}
	if s.Game.Rules.Goods(goods) == nil {
		return "", fmt.Errorf("unknown goods %q", goods)
	}
	id := s.findSettlementByName(name)
	if id == "" {
		return "", fmt.Errorf("settlement %q not found", name)
	}
	s.Game.ContainerOf(id).GoodsContainer().Add(goods, quantity)

	desc := fmt.Sprintf("A supply caravan reaches %s with %d %s", name, quantity, goods)
	s.record("intervention", "%s", desc)
	slog.Info("provision intervention", "settlement", name, "goods", goods, "quantity", quantity)
	return desc, nil
}

// AlarmSettlement changes a native settlement's alarm toward a European
// player, with full propagation. Negative amounts calm it.
func (s *Simulation) AlarmSettlement(name, player string, amount int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.findSettlementByName(name)
	is := s.Game.Settlement(id)
	if is == nil {
		return "", fmt.Errorf("native settlement %q not found", name)
	}
	var target string
	for _, p := range s.Game.LiveEuropeans() {
		if strings.EqualFold(p.Name, player) || p.ID == player {
			target = p.ID
		}
	}
	if target == "" {
		return "", fmt.Errorf("european player %q not found", player)
	}
	s.ModifyAlarm(is, target, amount, true)

	desc := fmt.Sprintf("Rumours stir %s against %s (%+d)", is.Name, s.playerName(target), amount)
	s.record("intervention", "%s", desc)
	slog.Info("alarm intervention", "settlement", is.Name, "player", target, "amount", amount)
	return desc, nil
}

// findSettlementByName returns the id of the colony or native settlement
// with the given name (case-insensitive), or "".
func (s *Simulation) findSettlementByName(name string) string {
	for _, c := range s.Game.AllColonies() {
		if strings.EqualFold(c.Name, name) {
			return c.ID
		}
	}
	for _, is := range s.Game.AllSettlements() {
		if strings.EqualFold(is.Name, name) {
			return is.ID
		}
	}
	return ""
}
