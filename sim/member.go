// Defines the Member struct that models one team member in the simulation.
// Tracks role capabilities, daily/weekly capacity counters, and context switches.

package sim

import "fmt"

// Member models a single team member's capabilities and capacity state.
// Members are created once at setup and mutated only by the capacity ledger
// and role pool while their owning task is the sole active one.
type Member struct {
	ID string // Unique identifier for the member

	PORank    Rank // Position in the PO escalation chain (RankNone = not a PO)
	AdminRank Rank // Position in the Admin escalation chain (RankNone = not an Admin)
	Developer bool // Whether the member can hold the Developer slot

	MaxDailyHours       float64 // Daily capacity cap (default 8.0)
	MaxWeeklyHours      float64 // Weekly capacity cap (default 40.0)
	ContextSwitchFactor float64 // Charge multiplier when task kind changes (default 1.2)

	HoursUsedToday    float64 // Reset to 0 at every day boundary
	HoursUsedThisWeek float64 // Reset to 0 at every 5th day boundary
	MeetingHours      float64 // Cumulative ceremony hours (subset of the counters above)

	LastTaskKind    TaskKind // Kind of the most recently charged task ("" before first task)
	ContextSwitches int      // Number of task-kind changes charged so far

	// Busy marks a member mid-session. A busy member is ineligible for any
	// acquisition until the session ends, which is what makes a primary PO
	// "occupied" and forces escalation to the secondary.
	Busy bool

	// LastActiveTick is updated whenever a session ends or a role is
	// released. Unranked acquisition picks the least-recently-active
	// eligible member first to spread load.
	LastActiveTick int64

	HoursByKind map[TaskKind]float64 // Cumulative charged hours per task kind
}

// NewMember creates a member with the standard capacity caps.
func NewMember(id string) *Member {
	return &Member{
		ID:                  id,
		MaxDailyHours:       DefaultMaxDailyHours,
		MaxWeeklyHours:      DefaultMaxWeeklyHours,
		ContextSwitchFactor: DefaultContextSwitchFactor,
		LastActiveTick:      -1,
		HoursByKind:         make(map[TaskKind]float64),
	}
}

// HasRole reports whether the member can ever hold the given role slot.
// Every member qualifies as a Reviewer.
func (m *Member) HasRole(kind RoleKind) bool {
	switch kind {
	case RoleDeveloper:
		return m.Developer
	case RoleReviewer:
		return true
	case RolePO:
		return m.PORank != RankNone
	case RoleAdmin:
		return m.AdminRank != RankNone
	default:
		return false
	}
}

// TotalHours returns cumulative charged hours across all task kinds.
func (m *Member) TotalHours() float64 {
	var total float64
	for _, h := range m.HoursByKind {
		total += h
	}
	return total
}

func (m *Member) String() string {
	return fmt.Sprintf("Member: (ID: %s, today: %.1fh, week: %.1fh, busy: %v)",
		m.ID, m.HoursUsedToday, m.HoursUsedThisWeek, m.Busy)
}
