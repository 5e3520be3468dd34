package journal

// Level controls how much the journal records.
type Level string

const (
	// LevelNone disables recording (zero overhead).
	LevelNone Level = "none"
	// LevelTransitions records phase transitions only.
	LevelTransitions Level = "transitions"
	// LevelFull records transitions plus per-session utilization charges.
	LevelFull Level = "full"
)

// validLevels maps accepted level strings.
var validLevels = map[Level]bool{
	LevelNone:        true,
	LevelTransitions: true,
	LevelFull:        true,
	"":               true, // empty defaults to transitions
}

// IsValidLevel returns true if the given level string is recognized.
func IsValidLevel(level string) bool {
	return validLevels[Level(level)]
}

// Journal collects the ordered event log of one simulation run. Records are
// appended in simulation order, so with a fixed seed two runs produce
// identical journals.
type Journal struct {
	Level        Level
	Transitions  []TransitionRecord
	Utilizations []UtilizationRecord
}

// New creates a Journal ready for recording. An empty level records
// transitions.
func New(level Level) *Journal {
	if level == "" {
		level = LevelTransitions
	}
	return &Journal{
		Level:        level,
		Transitions:  make([]TransitionRecord, 0),
		Utilizations: make([]UtilizationRecord, 0),
	}
}

// RecordTransition appends a phase-transition record.
func (j *Journal) RecordTransition(record TransitionRecord) {
	if j.Level == LevelNone {
		return
	}
	j.Transitions = append(j.Transitions, record)
}

// RecordUtilization appends a capacity-charge record. Only recorded at
// LevelFull.
func (j *Journal) RecordUtilization(record UtilizationRecord) {
	if j.Level != LevelFull {
		return
	}
	j.Utilizations = append(j.Utilizations, record)
}
