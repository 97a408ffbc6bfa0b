// Package social provides tension levels and diplomatic stances between
// players and native settlements.
package social

// Level is a discrete tension level derived from a numeric value.
type Level uint8

const (
	Happy Level = iota
	Content
	Displeased
	Angry
	Hateful
)

var levelNames = [...]string{"happy", "content", "displeased", "angry", "hateful"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// Scale holds the upper limit of each level. A value belongs to the first
// level whose limit is at least the value.
type Scale struct {
	Happy      int `json:"happy"`
	Content    int `json:"content"`
	Displeased int `json:"displeased"`
	Angry      int `json:"angry"`
	Hateful    int `json:"hateful"`
}

// Limit returns the upper bound of a level.
func (s Scale) Limit(l Level) int {
	switch l {
	case Happy:
		return s.Happy
	case Content:
		return s.Content
	case Displeased:
		return s.Displeased
	case Angry:
		return s.Angry
	default:
		return s.Hateful
	}
}

// LevelOf classifies a value.
func (s Scale) LevelOf(value int) Level {
	switch {
	case value <= s.Happy:
		return Happy
	case value <= s.Content:
		return Content
	case value <= s.Displeased:
		return Displeased
	case value <= s.Angry:
		return Angry
	default:
		return Hateful
	}
}

// Tension is a hostility measure toward one foreign player.
type Tension struct {
	Value int `json:"value"`
}

// NewTension returns a tension at the given value, clamped to the scale.
func NewTension(value int, s Scale) *Tension {
	t := &Tension{}
	t.Set(value, s)
	return t
}

// Level returns the current level.
func (t *Tension) Level(s Scale) Level {
	return s.LevelOf(t.Value)
}

// Set replaces the value, clamped into [0, Hateful limit].
func (t *Tension) Set(value int, s Scale) {
	if value < 0 {
		value = 0
	}
	if value > s.Hateful {
		value = s.Hateful
	}
	t.Value = value
}

// Modify adds amount to the value, clamped into [0, Hateful limit], and
// reports whether the level changed.
func (t *Tension) Modify(amount int, s Scale) bool {
	old := t.Level(s)
	t.Set(t.Value+amount, s)
	return t.Level(s) != old
}
