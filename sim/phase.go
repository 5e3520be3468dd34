// Defines the static phase/role vocabulary the simulation core consumes.
// These are plain enumerated constants; the core never extends them at runtime.

package sim

// Phase represents a story's position in the review pipeline.
type Phase string

const (
	PhaseTodo          Phase = "TO-DO"
	PhaseInProgress    Phase = "IN-PROGRESS"
	PhaseBlocked       Phase = "BLOCKED"
	PhasePeerReview    Phase = "IN-PEER-REVIEW"
	PhasePOConcurrence Phase = "IN-PO-CONCURRENCE"
	PhaseValidation    Phase = "IN-VALIDATION"
	PhaseDone          Phase = "DONE"
)

// Active reports whether a story in this phase counts against the WIP limit.
// TO-DO stories have not started; DONE stories have left the pipeline.
func (p Phase) Active() bool {
	return p != PhaseTodo && p != PhaseDone
}

// RoleKind identifies a role slot bound to a story during one of its phases.
type RoleKind string

const (
	RoleDeveloper RoleKind = "developer"
	RoleReviewer  RoleKind = "reviewer"
	RolePO        RoleKind = "po"
	RoleAdmin     RoleKind = "admin"
)

// Ranked reports whether acquisition for this role kind walks a
// primary/secondary/tertiary escalation chain. Developer and Reviewer are
// unranked: any capable member qualifies.
func (r RoleKind) Ranked() bool {
	return r == RolePO || r == RoleAdmin
}

// Rank orders candidates within a ranked role's escalation chain.
type Rank int

const (
	RankNone Rank = iota
	RankPrimary
	RankSecondary
	RankTertiary
)

// String returns the rank name used in scenario files.
func (r Rank) String() string {
	switch r {
	case RankPrimary:
		return "primary"
	case RankSecondary:
		return "secondary"
	case RankTertiary:
		return "tertiary"
	default:
		return "none"
	}
}

// ParseRank maps a scenario-file rank name to a Rank. Empty string means no
// rank. Returns RankNone, false for unrecognized names.
func ParseRank(s string) (Rank, bool) {
	switch s {
	case "":
		return RankNone, true
	case "primary":
		return RankPrimary, true
	case "secondary":
		return RankSecondary, true
	case "tertiary":
		return RankTertiary, true
	default:
		return RankNone, false
	}
}

// TaskKind classifies the work a member performs during a session. The
// capacity ledger compares consecutive kinds to detect context switches.
type TaskKind string

const (
	TaskDev        TaskKind = "development"
	TaskReview     TaskKind = "review"
	TaskPOReview   TaskKind = "po-review"
	TaskValidation TaskKind = "validation"
	TaskMeeting    TaskKind = "meeting"
)

// taskKindForPhase maps a pipeline phase to the task kind its sessions charge.
func taskKindForPhase(p Phase) TaskKind {
	switch p {
	case PhaseInProgress:
		return TaskDev
	case PhasePeerReview:
		return TaskReview
	case PhasePOConcurrence:
		return TaskPOReview
	case PhaseValidation:
		return TaskValidation
	default:
		return TaskDev
	}
}

// roleKindForPhase maps a pipeline phase to the role slot it occupies.
func roleKindForPhase(p Phase) RoleKind {
	switch p {
	case PhaseInProgress:
		return RoleDeveloper
	case PhasePeerReview:
		return RoleReviewer
	case PhasePOConcurrence:
		return RolePO
	case PhaseValidation:
		return RoleAdmin
	default:
		return RoleDeveloper
	}
}
