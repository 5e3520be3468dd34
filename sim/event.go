package sim

import "github.com/sirupsen/logrus"

// Event defines the interface for all simulation events.
// Each event must have a Timestamp (in ticks) and an Execute method that
// advances simulation state when invoked. StoryOrder is the deterministic
// tie-break for events sharing a timestamp: lower values execute first, and
// day boundaries (order -1) always precede story activity at the same tick.
type Event interface {
	Timestamp() int64
	StoryOrder() int
	Execute(*Simulator)
}

// ArrivalEvent represents a story being injected into the pipeline.
type ArrivalEvent struct {
	time  int64
	Story *Story
}

// Timestamp returns the scheduled time of the ArrivalEvent.
func (e *ArrivalEvent) Timestamp() int64 { return e.time }

// StoryOrder returns the arriving story's id.
func (e *ArrivalEvent) StoryOrder() int { return e.Story.ID }

// Execute asks the WIP gate to admit the story; beyond the limit it queues
// in arrival order.
func (e *ArrivalEvent) Execute(sim *Simulator) {
	logrus.Infof("<< Arrival: story %d (%d pts) at %d ticks", e.Story.ID, e.Story.Points, e.time)
	sim.arrive(e.Story, e.time)
}

// SessionEndEvent fires when a member's work session on a story completes.
type SessionEndEvent struct {
	time  int64
	Story *Story
}

// Timestamp returns the scheduled time of the SessionEndEvent.
func (e *SessionEndEvent) Timestamp() int64 { return e.time }

// StoryOrder returns the working story's id.
func (e *SessionEndEvent) StoryOrder() int { return e.Story.ID }

// Execute commits the session's progress and either continues the task,
// parks for capacity, or resolves the phase outcome.
func (e *SessionEndEvent) Execute(sim *Simulator) {
	sim.endSession(e.Story, e.time)
}

// BlockClearedEvent fires when a blocked story's external impediment clears.
type BlockClearedEvent struct {
	time  int64
	Story *Story
}

// Timestamp returns the scheduled time of the BlockClearedEvent.
func (e *BlockClearedEvent) Timestamp() int64 { return e.time }

// StoryOrder returns the blocked story's id.
func (e *BlockClearedEvent) StoryOrder() int { return e.Story.ID }

// Execute returns the story to IN-PROGRESS and resumes its remaining work.
func (e *BlockClearedEvent) Execute(sim *Simulator) {
	sim.blockCleared(e.Story, e.time)
}

// DayBoundaryEvent fires at the end of each 8-hour workday. It resets daily
// (and on week boundaries, weekly) capacity counters, charges ceremony
// hours for the new day, and resumes stories parked on capacity.
type DayBoundaryEvent struct {
	time int64
	day  int // 0-based index of the day that just ended
}

// Timestamp returns the scheduled time of the DayBoundaryEvent.
func (e *DayBoundaryEvent) Timestamp() int64 { return e.time }

// StoryOrder places boundaries before any story event at the same tick.
func (e *DayBoundaryEvent) StoryOrder() int { return -1 }

// Execute the DayBoundaryEvent.
func (e *DayBoundaryEvent) Execute(sim *Simulator) {
	logrus.Infof("<< DayBoundary: day %d ends at %d ticks", e.day, e.time)
	sim.dayBoundary(e.day, e.time)
}
