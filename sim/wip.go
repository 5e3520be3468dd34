// Implements the WIPGate, which bounds how many stories may be in an active
// phase at once. Stories beyond the limit wait in arrival order.

package sim

import "github.com/sirupsen/logrus"

// WIPGate admits stories into active development up to a fixed limit.
type WIPGate struct {
	limit  int
	active int
	queue  []*Story // arrival-order admission queue
}

// NewWIPGate creates a gate with the given limit. Limit must be validated
// positive before construction.
func NewWIPGate(limit int) *WIPGate {
	return &WIPGate{limit: limit}
}

// Admit attempts to take a WIP slot for the story. When the gate is full the
// story is queued in arrival order and false is returned; the caller leaves
// the story parked until NextAdmitted hands the slot over.
func (g *WIPGate) Admit(story *Story) bool {
	if g.active < g.limit {
		g.active++
		return true
	}
	for _, s := range g.queue {
		if s.ID == story.ID {
			return false
		}
	}
	story.Wait = WaitWIP
	g.queue = append(g.queue, story)
	logrus.Debugf("wip: story %d queued (%d active, limit %d)", story.ID, g.active, g.limit)
	return false
}

// Depart releases the story's WIP slot after DONE or abandonment.
func (g *WIPGate) Depart() {
	if g.active == 0 {
		panic("wip: depart with no active stories")
	}
	g.active--
}

// NextAdmitted pops and admits the longest-waiting story if a slot is free.
// Returns nil when the queue is empty or the gate is still full.
func (g *WIPGate) NextAdmitted() *Story {
	if g.active >= g.limit || len(g.queue) == 0 {
		return nil
	}
	next := g.queue[0]
	g.queue = g.queue[1:]
	g.active++
	return next
}

// Active returns the number of stories currently holding WIP slots.
func (g *WIPGate) Active() int { return g.active }

// QueueLen returns the number of stories waiting for admission.
func (g *WIPGate) QueueLen() int { return len(g.queue) }

// Limit returns the configured WIP limit.
func (g *WIPGate) Limit() int { return g.limit }
