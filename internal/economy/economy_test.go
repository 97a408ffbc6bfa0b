package economy

import (
	"testing"

	"github.com/talgya/frontier/internal/rules"
)

func TestContainerNeverNegative(t *testing.T) {
	c := NewContainer()
	c.Add("furs", 40)
	c.Add("furs", -10)

	if got := c.Remove("furs", 100); got != 40 {
		t.Errorf("Remove returned %d, want 40", got)
	}
	if c.Count("furs") != 0 {
		t.Errorf("furs = %d, want 0", c.Count("furs"))
	}
	if got := c.Remove("furs", 5); got != 0 {
		t.Errorf("Remove from empty returned %d", got)
	}
	if c.HasGoods() {
		t.Errorf("container should be empty")
	}
}

func TestRemoveAboveOnlyStorable(t *testing.T) {
	rs := rules.Default()
	c := NewContainer()
	c.Add("furs", 350)
	c.Add("grain", 350) // stored as food, not storable itself
	c.Add("food", 120)

	c.RemoveAbove(rs, 200)

	if c.Count("furs") != 200 {
		t.Errorf("furs = %d, want 200", c.Count("furs"))
	}
	if c.Count("grain") != 350 {
		t.Errorf("grain = %d, want untouched 350", c.Count("grain"))
	}
	if c.Count("food") != 120 {
		t.Errorf("food = %d, want 120", c.Count("food"))
	}
}

func TestCompactOrder(t *testing.T) {
	rs := rules.Default()
	c := NewContainer()
	c.Add("muskets", 10)
	c.Add("food", 5)
	c.Add("furs", 7)

	got := c.Compact(rs)
	want := []string{"food", "furs", "muskets"}
	if len(got) != len(want) {
		t.Fatalf("Compact = %v", got)
	}
	for i := range want {
		if got[i].Type != want[i] {
			t.Errorf("Compact[%d] = %s, want %s", i, got[i].Type, want[i])
		}
	}
}

func TestSlots(t *testing.T) {
	c := NewContainer()
	c.Add("furs", 100)
	c.Add("ore", 101)
	if got := c.Slots(100); got != 3 {
		t.Errorf("Slots = %d, want 3", got)
	}
}

func TestMarketSellLowersPrice(t *testing.T) {
	rs := rules.Default()
	m := NewMarket(rs)

	base := m.SalePrice("silver", 1)
	if base != rs.Goods("silver").Price {
		t.Fatalf("silver price = %d", base)
	}
	earned := m.Sell("silver", 250)
	if earned != base*250 {
		t.Errorf("earned %d, want %d", earned, base*250)
	}
	if m.SalePrice("silver", 1) != base-2 {
		t.Errorf("price after sale = %d, want %d", m.SalePrice("silver", 1), base-2)
	}
	m.Recover()
	if m.SalePrice("silver", 1) != base-1 {
		t.Errorf("price after recovery = %d, want %d", m.SalePrice("silver", 1), base-1)
	}
	if m.SalePrice("spice", 10) != 0 {
		t.Errorf("unknown goods should be worthless")
	}
}
