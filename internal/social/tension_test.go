package social

import "testing"

var testScale = Scale{Happy: 10, Content: 30, Displeased: 50, Angry: 80, Hateful: 100}

func TestLevelOf(t *testing.T) {
	tests := []struct {
		value int
		want  Level
	}{
		{0, Happy},
		{10, Happy},
		{11, Content},
		{30, Content},
		{40, Displeased},
		{70, Angry},
		{81, Hateful},
		{100, Hateful},
	}
	for _, tt := range tests {
		if got := testScale.LevelOf(tt.value); got != tt.want {
			t.Errorf("LevelOf(%d) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestTensionModifyClampsAndFlags(t *testing.T) {
	tests := []struct {
		name        string
		start       int
		amount      int
		wantValue   int
		wantChanged bool
	}{
		{"within level", 12, 5, 17, false},
		{"crosses up", 25, 10, 35, true},
		{"crosses down", 35, -10, 25, true},
		{"clamped at top", 95, 50, 100, false},
		{"clamped at zero", 5, -50, 0, false},
		{"clamp crosses level", 45, 500, 100, true},
		{"skips levels", 0, 75, 75, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ten := NewTension(tt.start, testScale)
			changed := ten.Modify(tt.amount, testScale)
			if ten.Value != tt.wantValue {
				t.Errorf("value = %d, want %d", ten.Value, tt.wantValue)
			}
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
		})
	}
}

func TestTensionNeverCrossesSilently(t *testing.T) {
	ten := NewTension(0, testScale)
	for _, step := range []int{7, 9, -3, 22, 18, -40, 60, 33, -100, 101} {
		before := ten.Level(testScale)
		changed := ten.Modify(step, testScale)
		after := ten.Level(testScale)
		if (before != after) != changed {
			t.Fatalf("step %d: level %v -> %v but changed=%v", step, before, after, changed)
		}
		if ten.Value < 0 || ten.Value > testScale.Hateful {
			t.Fatalf("value %d escaped the scale", ten.Value)
		}
	}
}

func TestStanceFromTension(t *testing.T) {
	tests := []struct {
		stance Stance
		value  int
		want   Stance
	}{
		{War, 20, CeaseFire},
		{War, 60, War},
		{CeaseFire, 5, Peace},
		{CeaseFire, 90, War},
		{CeaseFire, 40, CeaseFire},
		{Peace, 90, War},
		{Alliance, 90, War},
		{Peace, 70, Peace},
		{Uncontacted, 100, Uncontacted},
	}
	for _, tt := range tests {
		got := tt.stance.FromTension(&Tension{Value: tt.value}, testScale)
		if got != tt.want {
			t.Errorf("%v at %d -> %v, want %v", tt.stance, tt.value, got, tt.want)
		}
	}
}

func TestParseStanceRoundTrip(t *testing.T) {
	for s := Uncontacted; s <= Alliance; s++ {
		if got := ParseStance(s.String()); got != s {
			t.Errorf("ParseStance(%q) = %v", s.String(), got)
		}
	}
}
