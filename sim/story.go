// Defines the Story struct that models a work item flowing through the
// review pipeline. A story's lifecycle state is explicit and resumable: the
// scheduler parks and resumes stories by inspecting Wait, not by suspending
// a goroutine.

package sim

import "fmt"

// WaitReason records what a parked story is waiting on.
type WaitReason string

const (
	WaitNone     WaitReason = ""         // story is runnable or mid-session
	WaitWIP      WaitReason = "wip-gate" // waiting for a WIP slot
	WaitRole     WaitReason = "role"     // waiting in a role pool queue
	WaitCapacity WaitReason = "capacity" // bound member exhausted for today
	WaitTimer    WaitReason = "timer"    // session or blocking delay in flight
	WaitArrival  WaitReason = "arrival"  // not yet injected
)

// Story models one work item in the pipeline.
// Mutated only by its own state-machine steps; terminal at DONE or abandoned.
type Story struct {
	ID     int
	Points int // story-point size, one of {1, 2, 3, 5, 8}

	Phase Phase

	// Cooperative-suspension state. Wait says why the story is parked;
	// WaitRoleKind qualifies WaitRole; WaitSince is the park tick.
	Wait         WaitReason
	WaitRoleKind RoleKind
	WaitSince    int64

	// Current task progress. RemainingTicks counts wall ticks of work left
	// in the current task; TaskHours is the full sampled duration.
	TaskKind       TaskKind
	TaskHours      float64
	RemainingTicks int64
	SessionTicks   int64 // length of the in-flight session, 0 when parked

	// Owners maps role slots currently held for this story to member IDs.
	// The exclusivity invariant forbids one member under two kinds here.
	Owners map[RoleKind]string

	// DevOwner remembers who developed the story. Reviewer acquisition
	// excludes this member; rework prefers them.
	DevOwner string

	// DevHours is the realized duration of the first full development task.
	// Rework durations are fractions of this value.
	DevHours float64

	PeerAttempts       int // failed peer reviews so far (cap 3)
	POAttempts         int // failed PO concurrences so far (cap 2)
	ValidationAttempts int // failed validations so far (cap 2)

	PhaseTicks     map[Phase]int64 // cumulative wall ticks per phase
	PhaseEnteredAt int64           // tick the current phase was entered

	// ChargedThisPhase accumulates ledger charges since the last phase
	// transition; flushed into the transition record on phase change.
	ChargedThisPhase float64

	ArrivalTick int64 // tick the story was injected
	StartTick   int64 // tick the story left TO-DO (-1 until started)
	DoneTick    int64 // tick the story reached DONE (-1 until done)

	Abandoned     bool
	AbandonReason string
}

// NewStory creates a story in TO-DO with zeroed progress.
func NewStory(id, points int, arrival int64) *Story {
	return &Story{
		ID:          id,
		Points:      points,
		Phase:       PhaseTodo,
		Wait:        WaitArrival,
		Owners:      make(map[RoleKind]string),
		PhaseTicks:  make(map[Phase]int64),
		ArrivalTick: arrival,
		StartTick:   -1,
		DoneTick:    -1,
	}
}

// Terminal reports whether the story has left the pipeline for good.
func (s *Story) Terminal() bool {
	return s.Phase == PhaseDone || s.Abandoned
}

// HoldsMember reports whether the member currently holds any role slot on
// this story. Used by the pool's exclusivity check.
func (s *Story) HoldsMember(memberID string) bool {
	for _, id := range s.Owners {
		if id == memberID {
			return true
		}
	}
	return false
}

// CycleTicks returns DONE minus start, or -1 if the story never finished.
func (s *Story) CycleTicks() int64 {
	if s.DoneTick < 0 || s.StartTick < 0 {
		return -1
	}
	return s.DoneTick - s.StartTick
}

func (s *Story) String() string {
	return fmt.Sprintf("Story: (ID: %d, Points: %d, Phase: %s, Wait: %q)",
		s.ID, s.Points, s.Phase, s.Wait)
}
