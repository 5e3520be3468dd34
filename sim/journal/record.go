// Package journal provides the event-log and snapshot types crossing from
// the simulation core into reporting/visualization. This package has no
// dependency on sim/: it stores pure data types, and nothing in it ever
// influences scheduling.
package journal

// TransitionRecord captures one phase transition of one story.
type TransitionRecord struct {
	Tick         int64   `json:"tick"`
	StoryID      int     `json:"story_id"`
	From         string  `json:"from"`
	To           string  `json:"to"`
	MemberID     string  `json:"member_id,omitempty"`
	HoursCharged float64 `json:"hours_charged"`
}

// UtilizationRecord captures one capacity charge against a member.
type UtilizationRecord struct {
	Tick     int64   `json:"tick"`
	MemberID string  `json:"member_id"`
	StoryID  int     `json:"story_id"`
	TaskKind string  `json:"task_kind"`
	Hours    float64 `json:"hours"`
}

// StorySnapshot is the end-of-run state of one story.
type StorySnapshot struct {
	ID                 int                `json:"id"`
	Points             int                `json:"points"`
	Phase              string             `json:"phase"`
	Abandoned          bool               `json:"abandoned"`
	AbandonReason      string             `json:"abandon_reason,omitempty"`
	PeerAttempts       int                `json:"peer_attempts"`
	POAttempts         int                `json:"po_attempts"`
	ValidationAttempts int                `json:"validation_attempts"`
	PhaseHours         map[string]float64 `json:"phase_hours"`
	ArrivalTick        int64              `json:"arrival_tick"`
	StartTick          int64              `json:"start_tick"`
	DoneTick           int64              `json:"done_tick"`
}

// Completed reports whether the story reached DONE.
func (s StorySnapshot) Completed() bool {
	return s.DoneTick >= 0 && !s.Abandoned
}

// MemberSnapshot is the end-of-run state of one team member.
type MemberSnapshot struct {
	ID              string             `json:"id"`
	HoursByKind     map[string]float64 `json:"hours_by_kind"`
	TotalHours      float64            `json:"total_hours"`
	MeetingHours    float64            `json:"meeting_hours"`
	ContextSwitches int                `json:"context_switches"`
	Utilization     float64            `json:"utilization"` // total hours / capacity of the days simulated
}

// Snapshot is the complete end-of-run state handed to reporting.
type Snapshot struct {
	Seed           int64            `json:"seed"`
	HorizonTicks   int64            `json:"horizon_ticks"`
	EndTick        int64            `json:"end_tick"`
	Stories        []StorySnapshot  `json:"stories"`
	Members        []MemberSnapshot `json:"members"`
	FailedAcquires map[string]int   `json:"failed_acquires"`
}
