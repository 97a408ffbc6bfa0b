package social

// Stance is the diplomatic relation between two players.
type Stance uint8

const (
	Uncontacted Stance = iota
	Peace
	CeaseFire
	War
	Alliance
)

var stanceNames = [...]string{"uncontacted", "peace", "ceasefire", "war", "alliance"}

func (s Stance) String() string {
	if int(s) < len(stanceNames) {
		return stanceNames[s]
	}
	return "unknown"
}

// ParseStance is the inverse of String. Unknown names map to Uncontacted.
func ParseStance(name string) Stance {
	for i, n := range stanceNames {
		if n == name {
			return Stance(i)
		}
	}
	return Uncontacted
}

// FromTension returns the stance a native nation drifts to given its
// tension toward the other player. Uncontacted stances never change here.
func (s Stance) FromTension(t *Tension, scale Scale) Stance {
	if t == nil {
		return s
	}
	level := t.Level(scale)
	switch s {
	case War:
		if level <= Content {
			return CeaseFire
		}
	case CeaseFire:
		switch level {
		case Happy:
			return Peace
		case Hateful:
			return War
		}
	case Peace, Alliance:
		if level == Hateful {
			return War
		}
	}
	return s
}

// Hostile reports whether units may attack under this stance.
func (s Stance) Hostile() bool {
	return s == War
}
