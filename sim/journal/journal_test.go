package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJournal_LevelGating(t *testing.T) {
	tr := TransitionRecord{Tick: 10, StoryID: 1, From: "TO-DO", To: "IN-PROGRESS"}
	ut := UtilizationRecord{Tick: 10, MemberID: "DEV0", StoryID: 1, TaskKind: "development", Hours: 2}

	j := New(LevelNone)
	j.RecordTransition(tr)
	j.RecordUtilization(ut)
	assert.Empty(t, j.Transitions)
	assert.Empty(t, j.Utilizations)

	j = New(LevelTransitions)
	j.RecordTransition(tr)
	j.RecordUtilization(ut)
	assert.Len(t, j.Transitions, 1)
	assert.Empty(t, j.Utilizations, "utilization needs full level")

	j = New(LevelFull)
	j.RecordTransition(tr)
	j.RecordUtilization(ut)
	assert.Len(t, j.Transitions, 1)
	assert.Len(t, j.Utilizations, 1)
}

func TestJournal_EmptyLevelDefaultsToTransitions(t *testing.T) {
	j := New("")
	assert.Equal(t, LevelTransitions, j.Level)
}

func TestIsValidLevel(t *testing.T) {
	for _, level := range []string{"", "none", "transitions", "full"} {
		assert.Truef(t, IsValidLevel(level), "level %q", level)
	}
	assert.False(t, IsValidLevel("verbose"))
}

func TestStorySnapshot_Completed(t *testing.T) {
	assert.True(t, StorySnapshot{DoneTick: 100}.Completed())
	assert.False(t, StorySnapshot{DoneTick: -1}.Completed())
	assert.False(t, StorySnapshot{DoneTick: 100, Abandoned: true}.Completed())
}
