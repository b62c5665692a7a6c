package intel

// Level is the four-step scale used for priority, threat level and
// entity significance.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelMedium   Level = "MEDIUM"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// Rank orders levels: LOW=0 ... CRITICAL=3. Unknown levels rank as LOW.
func (l Level) Rank() int {
	switch l {
	case LevelMedium:
		return 1
	case LevelHigh:
		return 2
	case LevelCritical:
		return 3
	}
	return 0
}

// Valid reports whether l is one of the four levels.
func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh, LevelCritical:
		return true
	}
	return false
}

// AtLeast reports whether l is at or above other.
func (l Level) AtLeast(other Level) bool {
	return l.Rank() >= other.Rank()
}

// ParseLevel maps a string to a Level, defaulting to LOW.
func ParseLevel(s string) Level {
	switch Level(s) {
	case LevelMedium, LevelHigh, LevelCritical:
		return Level(s)
	}
	return LevelLow
}

// Thresholds maps a 0..100 score onto a Level. A score at or above a
// threshold takes that level.
type Thresholds struct {
	Critical float64
	High     float64
	Medium   float64
}

// Level classifies score.
func (t Thresholds) Level(score float64) Level {
	switch {
	case score >= t.Critical:
		return LevelCritical
	case score >= t.High:
		return LevelHigh
	case score >= t.Medium:
		return LevelMedium
	}
	return LevelLow
}
