// Implements the RolePool, which binds team members to role slots on
// stories. Ranked roles (PO, Admin) escalate through a primary/secondary/
// tertiary chain; unranked roles (Developer, Reviewer) pick the
// least-recently-utilized eligible member. Stories that cannot be served
// park in a FIFO wait queue and are resumed in request-arrival order.

package sim

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// roleWaiter is one parked acquisition request.
type roleWaiter struct {
	story *Story
	kind  RoleKind
	since int64 // tick the request first went unserved
}

// RolePool tracks role occupancy and pending acquisitions for one run.
type RolePool struct {
	team   []*Member
	chains map[RoleKind][]*Member
	ledger *CapacityLedger

	waiters []roleWaiter

	// FailedAcquires counts denied acquisition attempts per role kind.
	// Feeds the bottleneck section of the run summary.
	FailedAcquires map[RoleKind]int
}

// NewRolePool builds the pool with escalation chains derived from the team.
func NewRolePool(team []*Member, ledger *CapacityLedger) *RolePool {
	return &RolePool{
		team:   team,
		ledger: ledger,
		chains: map[RoleKind][]*Member{
			RolePO:    chainFor(team, RolePO),
			RoleAdmin: chainFor(team, RoleAdmin),
		},
		FailedAcquires: make(map[RoleKind]int),
	}
}

// eligible applies the acquisition predicate: the member must hold the
// capability, be idle, not already occupy a role slot on this story, not
// review their own development work, and have some capacity left.
func (rp *RolePool) eligible(m *Member, story *Story, kind RoleKind) bool {
	if m.Busy || !m.HasRole(kind) {
		return false
	}
	if story.HoldsMember(m.ID) {
		return false
	}
	if kind == RoleReviewer && m.ID == story.DevOwner {
		return false
	}
	return rp.ledger.RemainingToday(m, taskKindForPhase(story.Phase)) > 0
}

// Acquire attempts to bind a member to the role slot for the story. The
// prefer id, when non-empty and eligible, wins outright (rework returns to
// the original developer when possible). Returns nil when no candidate is
// eligible; the caller parks the story.
func (rp *RolePool) Acquire(story *Story, kind RoleKind, prefer string) *Member {
	m := rp.selectMember(story, kind, prefer)
	if m == nil {
		rp.FailedAcquires[kind]++
		return nil
	}
	story.Owners[kind] = m.ID
	logrus.Debugf("pool: story %d acquired %s as %s", story.ID, m.ID, kind)
	return m
}

func (rp *RolePool) selectMember(story *Story, kind RoleKind, prefer string) *Member {
	if prefer != "" {
		if m := rp.ledger.Member(prefer); m != nil && rp.eligible(m, story, kind) {
			return m
		}
	}
	if kind.Ranked() {
		// Linear scan of the escalation chain: primary first, then
		// secondary, then tertiary.
		for _, m := range rp.chains[kind] {
			if rp.eligible(m, story, kind) {
				return m
			}
		}
		return nil
	}

	// Unranked: least-recently-utilized eligible member, tie-break by id.
	var pick *Member
	for _, m := range rp.team {
		if !rp.eligible(m, story, kind) {
			continue
		}
		if pick == nil || m.LastActiveTick < pick.LastActiveTick ||
			(m.LastActiveTick == pick.LastActiveTick && m.ID < pick.ID) {
			pick = m
		}
	}
	return pick
}

// Release frees the story's binding for the role slot and refreshes the
// member's utilization timestamp for LRU selection.
func (rp *RolePool) Release(story *Story, kind RoleKind, now int64) {
	id, ok := story.Owners[kind]
	if !ok {
		return
	}
	delete(story.Owners, kind)
	if m := rp.ledger.Member(id); m != nil {
		m.LastActiveTick = now
	}
	logrus.Debugf("pool: story %d released %s from %s", story.ID, id, kind)
}

// ReleaseAll frees every role slot the story holds.
func (rp *RolePool) ReleaseAll(story *Story, now int64) {
	for kind := range story.Owners {
		rp.Release(story, kind, now)
	}
}

// Park enqueues an unserved acquisition request. A story already waiting
// keeps its original queue position so no request can be overtaken while it
// waits.
func (rp *RolePool) Park(story *Story, kind RoleKind, now int64) {
	for _, w := range rp.waiters {
		if w.story.ID == story.ID {
			return
		}
	}
	story.Wait = WaitRole
	story.WaitRoleKind = kind
	story.WaitSince = now
	rp.waiters = append(rp.waiters, roleWaiter{story: story, kind: kind, since: now})
}

// Unpark removes a story from the wait queue, e.g. once its request is
// served or the story is abandoned.
func (rp *RolePool) Unpark(story *Story) {
	for i, w := range rp.waiters {
		if w.story.ID == story.ID {
			rp.waiters = append(rp.waiters[:i], rp.waiters[i+1:]...)
			return
		}
	}
}

// Waiting returns parked stories in service order: earliest request first,
// story id breaking ties. The returned slice is a snapshot; callers may
// grant requests (which Unparks) while iterating it.
func (rp *RolePool) Waiting() []*Story {
	snap := make([]roleWaiter, len(rp.waiters))
	copy(snap, rp.waiters)
	sort.SliceStable(snap, func(i, j int) bool {
		if snap[i].since != snap[j].since {
			return snap[i].since < snap[j].since
		}
		return snap[i].story.ID < snap[j].story.ID
	})
	stories := make([]*Story, len(snap))
	for i, w := range snap {
		stories[i] = w.story
	}
	return stories
}

// WaitingCount returns the number of parked acquisition requests.
func (rp *RolePool) WaitingCount() int {
	return len(rp.waiters)
}
