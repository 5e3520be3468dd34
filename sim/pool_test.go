package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func poolFixture() (*RolePool, *CapacityLedger, map[string]*Member) {
	members := map[string]*Member{}
	mk := func(id string, configure func(*Member)) *Member {
		m := NewMember(id)
		configure(m)
		members[id] = m
		return m
	}
	team := []*Member{
		mk("PO1", func(m *Member) { m.PORank = RankPrimary }),
		mk("PO2", func(m *Member) { m.PORank = RankSecondary; m.Developer = true }),
		mk("PO3", func(m *Member) { m.PORank = RankTertiary; m.Developer = true }),
		mk("ADMIN1", func(m *Member) { m.AdminRank = RankPrimary }),
		mk("DEV0", func(m *Member) { m.Developer = true }),
		mk("DEV1", func(m *Member) { m.Developer = true }),
	}
	ledger := NewCapacityLedger(team)
	return NewRolePool(team, ledger), ledger, members
}

func storyInPhase(id int, phase Phase) *Story {
	s := NewStory(id, 3, 0)
	s.Phase = phase
	s.Wait = WaitNone
	return s
}

func TestPool_RankedEscalation(t *testing.T) {
	rp, _, members := poolFixture()
	story := storyInPhase(1, PhasePOConcurrence)

	m := rp.Acquire(story, RolePO, "")
	assert.Equal(t, "PO1", m.ID, "free primary must win")
	rp.Release(story, RolePO, 0)

	members["PO1"].Busy = true
	m = rp.Acquire(story, RolePO, "")
	assert.Equal(t, "PO2", m.ID, "occupied primary escalates to secondary")
	rp.Release(story, RolePO, 0)

	members["PO2"].Busy = true
	m = rp.Acquire(story, RolePO, "")
	assert.Equal(t, "PO3", m.ID)
	rp.Release(story, RolePO, 0)

	members["PO3"].Busy = true
	assert.Nil(t, rp.Acquire(story, RolePO, ""), "whole chain occupied")
	assert.Equal(t, 1, rp.FailedAcquires[RolePO])
}

func TestPool_ExhaustedPrimaryEscalates(t *testing.T) {
	rp, ledger, members := poolFixture()
	story := storyInPhase(1, PhasePOConcurrence)

	// Primary is idle but out of hours for the day: still not eligible.
	ledger.Reserve(members["PO1"], 8.0, TaskPOReview)
	m := rp.Acquire(story, RolePO, "")
	assert.Equal(t, "PO2", m.ID)
}

func TestPool_UnrankedLRUOrder(t *testing.T) {
	rp, _, members := poolFixture()
	story := storyInPhase(1, PhaseInProgress)

	// All developer candidates start at LastActiveTick -1, so the lowest id
	// among eligible members wins the tie.
	m := rp.Acquire(story, RoleDeveloper, "")
	assert.Equal(t, "DEV0", m.ID)
	rp.Release(story, RoleDeveloper, 100)

	// DEV0 was just active; the next grant goes to a colder member.
	m = rp.Acquire(story, RoleDeveloper, "")
	assert.Equal(t, "DEV1", m.ID)
	rp.Release(story, RoleDeveloper, 200)

	members["PO2"].LastActiveTick = 50
	members["PO3"].LastActiveTick = 50
	m = rp.Acquire(story, RoleDeveloper, "")
	assert.Equal(t, "PO2", m.ID, "equal timestamps tie-break by id")
}

func TestPool_PreferredMemberWinsForRework(t *testing.T) {
	rp, _, _ := poolFixture()
	story := storyInPhase(1, PhaseInProgress)
	story.DevOwner = "DEV1"

	m := rp.Acquire(story, RoleDeveloper, story.DevOwner)
	assert.Equal(t, "DEV1", m.ID, "original developer preferred for rework")
}

func TestPool_PreferredMemberFallsBackWhenBusy(t *testing.T) {
	rp, _, members := poolFixture()
	story := storyInPhase(1, PhaseInProgress)
	story.DevOwner = "DEV1"
	members["DEV1"].Busy = true

	m := rp.Acquire(story, RoleDeveloper, story.DevOwner)
	assert.Equal(t, "DEV0", m.ID, "preference is best-effort, not a hold")
}

func TestPool_ReviewerExcludesDevOwner(t *testing.T) {
	rp, _, members := poolFixture()
	story := storyInPhase(1, PhasePeerReview)
	story.DevOwner = "DEV0"

	// Make DEV0 the coldest member so only the exclusion can stop it.
	for _, m := range members {
		m.LastActiveTick = 10
	}
	members["DEV0"].LastActiveTick = 0

	m := rp.Acquire(story, RoleReviewer, "")
	assert.NotEqual(t, "DEV0", m.ID, "a developer never reviews their own story")
}

func TestPool_ExclusivityWithinStory(t *testing.T) {
	rp, _, members := poolFixture()
	story := storyInPhase(1, PhasePeerReview)
	story.Owners[RoleDeveloper] = "DEV0"

	for _, m := range members {
		m.LastActiveTick = 10
	}
	members["DEV0"].LastActiveTick = 0

	m := rp.Acquire(story, RoleReviewer, "")
	assert.NotEqual(t, "DEV0", m.ID, "one member cannot hold two slots on one story")
}

func TestPool_WaitQueueFIFO(t *testing.T) {
	rp, _, _ := poolFixture()
	a := storyInPhase(1, PhaseInProgress)
	b := storyInPhase(2, PhaseInProgress)
	c := storyInPhase(3, PhaseInProgress)

	rp.Park(b, RoleDeveloper, 10)
	rp.Park(c, RoleDeveloper, 10)
	rp.Park(a, RoleDeveloper, 20)

	waiting := rp.Waiting()
	assert.Equal(t, []int{2, 3, 1}, []int{waiting[0].ID, waiting[1].ID, waiting[2].ID},
		"service order is request tick, then story id")
	assert.Equal(t, WaitRole, b.Wait)

	// Re-parking keeps the original position.
	rp.Park(b, RoleDeveloper, 99)
	waiting = rp.Waiting()
	assert.Equal(t, 2, waiting[0].ID)
	assert.Equal(t, int64(10), waiting[0].WaitSince)

	rp.Unpark(b)
	assert.Equal(t, 2, rp.WaitingCount())
}
