// Implements the CapacityLedger, which enforces per-member daily and weekly
// hour caps. Every role grant reserves hours here first; no operation may
// push a member's counters over their caps.

package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// DenialReason explains why a reservation was refused. Denials are not
// errors: the requesting story suspends and retries when capacity frees.
type DenialReason string

const (
	DenialNone      DenialReason = ""
	DenialDailyCap  DenialReason = "daily-cap-exceeded"
	DenialWeeklyCap DenialReason = "weekly-cap-exceeded"
)

// CapacityLedger owns the capacity bookkeeping for one simulation run. It is
// held by the Simulator, never global, so scenario sweeps can run multiple
// ledgers without cross-contamination.
type CapacityLedger struct {
	members map[string]*Member

	// dayCount tracks completed day boundaries; every DaysPerWeek-th
	// boundary also resets weekly counters.
	dayCount int
}

// NewCapacityLedger indexes the team for reservation lookups.
func NewCapacityLedger(team []*Member) *CapacityLedger {
	idx := make(map[string]*Member, len(team))
	for _, m := range team {
		idx[m.ID] = m
	}
	return &CapacityLedger{members: idx}
}

// EffectiveHours returns the hours that would be charged for the given work,
// inflating by the member's context-switch factor when the task kind differs
// from their previous one. The inflation applies to the charge only, never
// to the wall duration of the task.
func (cl *CapacityLedger) EffectiveHours(m *Member, hours float64, kind TaskKind) float64 {
	if m.LastTaskKind != "" && m.LastTaskKind != kind {
		return hours * m.ContextSwitchFactor
	}
	return hours
}

// CanReserve reports whether the member has room for the charge today and
// this week.
func (cl *CapacityLedger) CanReserve(m *Member, hours float64, kind TaskKind) (bool, DenialReason) {
	charged := cl.EffectiveHours(m, hours, kind)
	if m.HoursUsedToday+charged > m.MaxDailyHours+capacityEpsilon {
		return false, DenialDailyCap
	}
	if m.HoursUsedThisWeek+charged > m.MaxWeeklyHours+capacityEpsilon {
		return false, DenialWeeklyCap
	}
	return true, DenialNone
}

// capacityEpsilon absorbs float accumulation error at the cap boundary so a
// member can still be charged exactly up to 8.0h.
const capacityEpsilon = 1e-9

// Reserve charges the member for a session about to run. Returns the hours
// actually charged (inflated on a context switch) or a denial. Callers must
// Credit back the same charge if the session never runs, and CommitKind once
// it actually starts so context-switch accounting reflects worked sessions
// only.
func (cl *CapacityLedger) Reserve(m *Member, hours float64, kind TaskKind) (float64, DenialReason) {
	ok, reason := cl.CanReserve(m, hours, kind)
	if !ok {
		logrus.Debugf("ledger: denied %s %.2fh (%s) for %s", kind, hours, reason, m.ID)
		return 0, reason
	}
	charged := cl.EffectiveHours(m, hours, kind)
	m.HoursUsedToday += charged
	m.HoursUsedThisWeek += charged
	m.HoursByKind[kind] += charged
	return charged, DenialNone
}

// CommitKind records that a session of the given kind actually began,
// updating the member's last task kind and context-switch count.
func (cl *CapacityLedger) CommitKind(m *Member, kind TaskKind) {
	if m.LastTaskKind != "" && m.LastTaskKind != kind {
		m.ContextSwitches++
	}
	m.LastTaskKind = kind
}

// Credit returns a previously reserved charge that was never worked, e.g.
// when a story blocks before its session starts.
func (cl *CapacityLedger) Credit(m *Member, charged float64, kind TaskKind) {
	m.HoursUsedToday -= charged
	m.HoursUsedThisWeek -= charged
	m.HoursByKind[kind] -= charged
	if m.HoursUsedToday < 0 || m.HoursUsedThisWeek < 0 {
		panic(fmt.Sprintf("ledger: credit of %.2fh drove %s counters negative", charged, m.ID))
	}
}

// RemainingToday returns how many wall hours of the given kind the member
// could still be charged for today, deflating the cap headroom by the
// context-switch factor when the kind would switch.
func (cl *CapacityLedger) RemainingToday(m *Member, kind TaskKind) float64 {
	headroom := min(m.MaxDailyHours-m.HoursUsedToday, m.MaxWeeklyHours-m.HoursUsedThisWeek)
	if headroom <= 0 {
		return 0
	}
	if m.LastTaskKind != "" && m.LastTaskKind != kind {
		return headroom / m.ContextSwitchFactor
	}
	return headroom
}

// ChargeMeeting charges ceremony hours, clamped so the caps are never
// breached. Meetings are charged regardless of remaining story capacity but
// still respect the hard invariant on the counters.
func (cl *CapacityLedger) ChargeMeeting(m *Member, hours float64) float64 {
	charge := min(hours, m.MaxDailyHours-m.HoursUsedToday, m.MaxWeeklyHours-m.HoursUsedThisWeek)
	if charge <= 0 {
		return 0
	}
	m.HoursUsedToday += charge
	m.HoursUsedThisWeek += charge
	m.MeetingHours += charge
	m.HoursByKind[TaskMeeting] += charge
	return charge
}

// AdvanceDay resets daily counters; every DaysPerWeek-th call also resets
// weekly counters. Driven by the Simulator's day-boundary events.
func (cl *CapacityLedger) AdvanceDay() {
	cl.dayCount++
	weekly := cl.dayCount%DaysPerWeek == 0
	for _, m := range cl.members {
		m.HoursUsedToday = 0
		if weekly {
			m.HoursUsedThisWeek = 0
		}
	}
	if weekly {
		logrus.Debugf("ledger: week boundary after day %d", cl.dayCount)
	}
}

// DaysElapsed returns the number of workdays opened so far: every completed
// day boundary plus the day currently underway.
func (cl *CapacityLedger) DaysElapsed() int {
	return cl.dayCount + 1
}

// Member returns the ledger entry for a member id, or nil.
func (cl *CapacityLedger) Member(id string) *Member {
	return cl.members[id]
}
