package ai

import "log/slog"

// CheckIntegrity checks every AI object. With fix set, broken objects are
// disposed and repairable ones repaired. It returns 1 when everything was
// sound, 0 when something was fixed and -1 when something is broken and
// was left alone.
func (m *Main) CheckIntegrity(fix bool) int {
	result := 1
	note := func(kind, id string, r int) bool {
		if r < 0 {
			slog.Warn("integrity failure", "kind", kind, "id", id, "fixed", fix)
			if !fix {
				result = -1
				return false
			}
			result = min(result, 0)
			return true
		}
		if r == 0 {
			result = min(result, 0)
		}
		return false
	}

	// Wishes first, so missions bound to a dead wish fail below.
	for _, w := range m.Wishes() {
		if w.disposed {
			continue
		}
		if note("wish", w.id, w.CheckIntegrity(fix)) {
			w.Dispose()
			continue
		}
		if ac := m.AIColony(w.destination); ac != nil && !containsID(ac.wishes, w.id) {
			if fix {
				ac.AddWish(w)
			}
			note("wish", w.id, fixedOrBroken(fix))
		}
	}
	for _, ac := range m.sortedColonies() {
		if note("colony", ac.id, ac.CheckIntegrity(fix)) {
			ac.Dispose()
		}
	}
	for _, g := range m.sortedGoods() {
		if g.disposed {
			continue
		}
		if note("goods", g.id, g.CheckIntegrity(fix)) {
			g.Dispose()
		}
	}
	for _, au := range m.sortedUnits() {
		if au.disposed {
			continue
		}
		if note("unit", au.id, au.CheckIntegrity(fix)) {
			au.Dispose()
		}
	}
	return result
}

func fixedOrBroken(fix bool) int {
	if fix {
		return 0
	}
	return -1
}

func containsID(list []string, id string) bool {
	for _, x := range list {
		if x == id {
			return true
		}
	}
	return false
}
