// The per-story state machine. Stories advance through the pipeline as a
// sequence of explicit steps driven by events; suspension is modeled as
// recorded wait state, never as a blocked goroutine, so exactly one story
// mutates shared state at any instant.

package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/sprint-sim/sprint-sim/sim/journal"
)

// journalAbandoned is the terminal marker recorded in the event log when a
// story runs out of attempts; it is not a pipeline phase.
const journalAbandoned = "ABANDONED"

// arrive runs when a story is injected: it asks the WIP gate for a slot and
// starts development, or leaves the story queued in arrival order.
func (sim *Simulator) arrive(story *Story, now int64) {
	story.Wait = WaitNone
	if sim.Gate.Admit(story) {
		sim.startStory(story, now)
	}
}

// startStory moves an admitted story out of TO-DO and begins its first
// development task.
func (sim *Simulator) startStory(story *Story, now int64) {
	story.StartTick = now
	sim.transition(story, PhaseInProgress, "", now)

	hours, err := sim.Config.taskHours(sim.RNG.ForSubsystem(SubsystemDuration), story.Points, TaskDev)
	if err != nil {
		// Points are validated at config time; reaching this is a bug.
		panic(err)
	}
	story.DevHours = hours
	sim.startTask(story, TaskDev, hours)
	sim.beginSession(story, now)
}

// startTask installs a freshly sampled task on the story.
func (sim *Simulator) startTask(story *Story, kind TaskKind, hours float64) {
	story.TaskKind = kind
	story.TaskHours = hours
	story.RemainingTicks = hoursToTicks(hours)
}

// beginSession routes the story toward its next work session. Acquisitions
// always flow through the pool's FIFO queue so concurrent requests are
// served in request-arrival order.
func (sim *Simulator) beginSession(story *Story, now int64) {
	kind := roleKindForPhase(story.Phase)
	if _, held := story.Owners[kind]; held {
		sim.startSession(story, now)
		return
	}
	sim.Pool.Park(story, kind, now)
	sim.kickRoles(now)
}

// kickRoles serves the role wait queue: earliest request first, story id
// breaking ties. Serving a story may release members or park new requests,
// which re-arms the pass; the guard flattens recursive kicks from nested
// releases into iterations of the outer loop.
func (sim *Simulator) kickRoles(now int64) {
	if sim.inKick {
		sim.kickAgain = true
		return
	}
	sim.inKick = true
	for {
		sim.kickAgain = false
		for _, story := range sim.Pool.Waiting() {
			if story.Terminal() || story.Wait != WaitRole {
				continue
			}
			kind := story.WaitRoleKind
			prefer := ""
			if kind == RoleDeveloper {
				prefer = story.DevOwner
			}
			m := sim.Pool.Acquire(story, kind, prefer)
			if m == nil {
				continue
			}
			sim.Pool.Unpark(story)
			story.Wait = WaitNone
			if kind == RoleDeveloper {
				story.DevOwner = m.ID
			}
			sim.startSession(story, now)
		}
		if !sim.kickAgain {
			break
		}
	}
	sim.inKick = false
}

// startSession runs one work session with the story's bound member: as many
// ticks as the task needs and the member's remaining capacity allows today.
// A member with nothing left parks the story until the next day boundary.
func (sim *Simulator) startSession(story *Story, now int64) {
	kind := taskKindForPhase(story.Phase)
	member := sim.Ledger.Member(story.Owners[roleKindForPhase(story.Phase)])

	availTicks := int64(sim.Ledger.RemainingToday(member, kind) * TicksPerHour)
	if availTicks < 1 {
		sim.parkForCapacity(story, now)
		return
	}
	sessionTicks := min(story.RemainingTicks, availTicks)

	charged, denial := sim.Ledger.Reserve(member, ticksToHours(sessionTicks), kind)
	if denial != DenialNone {
		sim.parkForCapacity(story, now)
		return
	}

	// Blocking is sampled per development work session. A blocked session
	// never runs, so its reservation is credited straight back.
	if kind == TaskDev && sim.RNG.ForSubsystem(SubsystemBlocking).Float64() < sim.Config.Rates.Blocking {
		sim.Ledger.Credit(member, charged, kind)
		sim.block(story, member, now)
		return
	}

	sim.Ledger.CommitKind(member, kind)
	member.Busy = true
	story.Wait = WaitTimer
	story.SessionTicks = sessionTicks
	story.ChargedThisPhase += charged
	sim.Metrics.ChargedHours += charged

	sim.Journal.RecordUtilization(journal.UtilizationRecord{
		Tick:     now,
		MemberID: member.ID,
		StoryID:  story.ID,
		TaskKind: string(kind),
		Hours:    charged,
	})
	sim.Schedule(&SessionEndEvent{time: now + sessionTicks, Story: story})
}

func (sim *Simulator) parkForCapacity(story *Story, now int64) {
	story.Wait = WaitCapacity
	story.WaitSince = now
	sim.capWaiters = append(sim.capWaiters, story)
	logrus.Debugf("story %d parked for capacity at %d ticks", story.ID, now)
}

// block suspends the story on an external impediment for a bounded random
// delay, releasing its role bindings for others to use.
func (sim *Simulator) block(story *Story, member *Member, now int64) {
	sim.Pool.ReleaseAll(story, now)
	sim.transition(story, PhaseBlocked, member.ID, now)
	sim.Metrics.Blocks++

	span := sim.Config.BlockDelayMaxHours - sim.Config.BlockDelayMinHours
	delay := sim.Config.BlockDelayMinHours + span*sim.RNG.ForSubsystem(SubsystemBlocking).Float64()
	story.Wait = WaitTimer
	sim.Schedule(&BlockClearedEvent{time: now + hoursToTicks(delay), Story: story})
	logrus.Infof("Story %d blocked for %.1fh at %d ticks", story.ID, delay, now)
	sim.kickRoles(now)
}

// blockCleared resumes development where the blocked task left off.
func (sim *Simulator) blockCleared(story *Story, now int64) {
	story.Wait = WaitNone
	sim.transition(story, PhaseInProgress, "", now)
	sim.beginSession(story, now)
}

// endSession commits a finished session and either continues the task,
// possibly across a day boundary, or resolves the phase outcome.
func (sim *Simulator) endSession(story *Story, now int64) {
	member := sim.Ledger.Member(story.Owners[roleKindForPhase(story.Phase)])
	member.Busy = false
	member.LastActiveTick = now

	story.RemainingTicks -= story.SessionTicks
	story.SessionTicks = 0
	story.Wait = WaitNone

	if story.RemainingTicks > 0 {
		sim.startSession(story, now)
		sim.kickRoles(now)
		return
	}
	sim.taskComplete(story, member.ID, now)
}

// taskComplete releases the phase's role slot and applies the transition
// table: advance on success, rework on a failed review, terminal outcome on
// cap exhaustion.
func (sim *Simulator) taskComplete(story *Story, memberID string, now int64) {
	phase := story.Phase
	sim.Pool.Release(story, roleKindForPhase(phase), now)
	sim.kickRoles(now)

	outcomes := sim.RNG.ForSubsystem(SubsystemOutcome)
	rates := sim.Config.Rates
	caps := sim.Config.Caps

	switch phase {
	case PhaseInProgress:
		sim.enterReviewPhase(story, PhasePeerReview, TaskReview, memberID, now)

	case PhasePeerReview:
		if outcomes.Float64() < rates.PeerFail {
			story.PeerAttempts++
			if story.PeerAttempts >= caps.PeerReview {
				sim.exhaust(story, "peer review attempts exhausted", memberID, now)
				return
			}
			sim.rework(story, rates.PeerReworkFraction, memberID, now)
			return
		}
		sim.enterReviewPhase(story, PhasePOConcurrence, TaskPOReview, memberID, now)

	case PhasePOConcurrence:
		if outcomes.Float64() < rates.POReject {
			story.POAttempts++
			if story.POAttempts >= caps.POReview {
				sim.exhaust(story, "po concurrence attempts exhausted", memberID, now)
				return
			}
			sim.rework(story, rates.POReworkFraction, memberID, now)
			return
		}
		sim.enterReviewPhase(story, PhaseValidation, TaskValidation, memberID, now)

	case PhaseValidation:
		if outcomes.Float64() < rates.ValidationFail {
			story.ValidationAttempts++
			if story.ValidationAttempts >= caps.Validation {
				sim.exhaust(story, "validation attempts exhausted", memberID, now)
				return
			}
			sim.rework(story, rates.ValidReworkFraction, memberID, now)
			return
		}
		sim.finish(story, memberID, now)
	}
}

// enterReviewPhase transitions to the next pipeline stage and samples its
// task duration.
func (sim *Simulator) enterReviewPhase(story *Story, phase Phase, kind TaskKind, memberID string, now int64) {
	sim.transition(story, phase, memberID, now)
	hours, err := sim.Config.taskHours(sim.RNG.ForSubsystem(SubsystemDuration), story.Points, kind)
	if err != nil {
		panic(err)
	}
	sim.startTask(story, kind, hours)
	sim.beginSession(story, now)
}

// rework sends the story back to development for a fraction of its realized
// dev hours, freshly jittered. The original developer is preferred when
// eligible.
func (sim *Simulator) rework(story *Story, fraction float64, memberID string, now int64) {
	sim.Metrics.Reworks++
	sim.transition(story, PhaseInProgress, memberID, now)
	hours := jitter(sim.RNG.ForSubsystem(SubsystemDuration), fraction*story.DevHours)
	sim.startTask(story, TaskDev, hours)
	sim.beginSession(story, now)
}

// finish completes the story, frees its WIP slot, and admits the next
// queued story.
func (sim *Simulator) finish(story *Story, memberID string, now int64) {
	sim.transition(story, PhaseDone, memberID, now)
	story.DoneTick = now
	sim.terminal++
	sim.Metrics.CompletedStories++
	sim.Metrics.CompletedPoints += story.Points
	logrus.Infof("Story %d (%d pts) completed at %d ticks", story.ID, story.Points, now)

	sim.Gate.Depart()
	sim.admitNext(now)
	sim.kickRoles(now)
}

// exhaust applies the configured attempt-exhaustion policy. Abandonment is
// a terminal, non-fatal outcome surfaced in the snapshot.
func (sim *Simulator) exhaust(story *Story, reason string, memberID string, now int64) {
	if sim.Config.OnExhausted == ExhaustForceDone {
		logrus.Warnf("Story %d forced to DONE: %s", story.ID, reason)
		sim.finish(story, memberID, now)
		return
	}

	story.PhaseTicks[story.Phase] += now - story.PhaseEnteredAt
	story.PhaseEnteredAt = now
	sim.Journal.RecordTransition(journal.TransitionRecord{
		Tick:         now,
		StoryID:      story.ID,
		From:         string(story.Phase),
		To:           journalAbandoned,
		MemberID:     memberID,
		HoursCharged: story.ChargedThisPhase,
	})
	story.ChargedThisPhase = 0
	story.Abandoned = true
	story.AbandonReason = reason
	sim.terminal++
	sim.Metrics.AbandonedStories++
	logrus.Warnf("Story %d abandoned at %d ticks: %s", story.ID, now, reason)

	sim.Pool.ReleaseAll(story, now)
	sim.Pool.Unpark(story)
	sim.Gate.Depart()
	sim.admitNext(now)
	sim.kickRoles(now)
}

// admitNext drains freed WIP slots in arrival order.
func (sim *Simulator) admitNext(now int64) {
	for next := sim.Gate.NextAdmitted(); next != nil; next = sim.Gate.NextAdmitted() {
		next.Wait = WaitNone
		sim.startStory(next, now)
	}
}

// transition moves the story between phases, folding elapsed ticks into the
// per-phase log and emitting the transition record with the hours charged
// during the phase being left.
func (sim *Simulator) transition(story *Story, to Phase, memberID string, now int64) {
	from := story.Phase
	story.PhaseTicks[from] += now - story.PhaseEnteredAt
	sim.Journal.RecordTransition(journal.TransitionRecord{
		Tick:         now,
		StoryID:      story.ID,
		From:         string(from),
		To:           string(to),
		MemberID:     memberID,
		HoursCharged: story.ChargedThisPhase,
	})
	story.ChargedThisPhase = 0
	story.Phase = to
	story.PhaseEnteredAt = now
	logrus.Infof("Story %d: %s -> %s at %d ticks", story.ID, from, to, now)
}
