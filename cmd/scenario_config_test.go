package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/sprint-sim/sprint-sim/sim"
)

const fullScenario = `
seed: 99
horizon_days: 20
team:
  - id: PO1
    po_rank: primary
  - id: PO2
    po_rank: secondary
    developer: true
  - id: ADMIN1
    admin_rank: primary
  - id: DEV0
    developer: true
story_points: [1, 3, 5]
stagger_hours: 2.0
wip_limit: 3
rates:
  peer_fail: 0.0
  blocking: 0.5
attempt_caps:
  peer_review: 4
  po_review: 3
  validation: 3
on_exhausted: force-done
block_delay_min_hours: 2.0
block_delay_max_hours: 4.0
ceremonies:
  sprint_days: 5
  planning_hours: 1.0
`

func TestParseScenario_FullOverlay(t *testing.T) {
	cfg, err := parseScenario([]byte(fullScenario))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, 20, cfg.HorizonDays)
	require.Len(t, cfg.Team, 4)
	assert.Equal(t, sim.RankPrimary, cfg.Team[0].PORank)
	assert.Equal(t, sim.RankSecondary, cfg.Team[1].PORank)
	assert.True(t, cfg.Team[1].Developer)
	assert.Equal(t, []int{1, 3, 5}, cfg.StoryPoints)
	assert.Equal(t, 2.0, cfg.StaggerHours)
	assert.Equal(t, 3, cfg.WIPLimit)

	// Explicit rates override; unset rates keep defaults.
	assert.Zero(t, cfg.Rates.PeerFail)
	assert.Equal(t, 0.5, cfg.Rates.Blocking)
	assert.Equal(t, sim.DefaultRates().POReject, cfg.Rates.POReject)

	assert.Equal(t, sim.AttemptCaps{PeerReview: 4, POReview: 3, Validation: 3}, cfg.Caps)
	assert.Equal(t, sim.ExhaustForceDone, cfg.OnExhausted)
	assert.Equal(t, 2.0, cfg.BlockDelayMinHours)
	assert.Equal(t, 4.0, cfg.BlockDelayMaxHours)
	assert.Equal(t, 5, cfg.Ceremonies.SprintDays)
	assert.Equal(t, 1.0, cfg.Ceremonies.PlanningHours)
	assert.True(t, cfg.Ceremonies.Enabled, "ceremonies stay enabled unless switched off")
}

func TestParseScenario_MinimalKeepsDefaults(t *testing.T) {
	cfg, err := parseScenario([]byte(`
team:
  - id: PO1
    po_rank: primary
  - id: ADMIN1
    admin_rank: primary
  - id: DEV0
    developer: true
total_points: 40
`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	def := sim.DefaultConfig()
	assert.Equal(t, def.Seed, cfg.Seed)
	assert.Equal(t, def.HorizonDays, cfg.HorizonDays)
	assert.Equal(t, def.Rates, cfg.Rates)
	assert.Equal(t, def.Caps, cfg.Caps)
	assert.Equal(t, 40, cfg.TotalPoints)
	assert.Equal(t, 2, cfg.EffectiveWIPLimit(), "derived from the single developer")
}

func TestParseScenario_RejectsUnknownFields(t *testing.T) {
	_, err := parseScenario([]byte(`
team:
  - id: PO1
    po_rank: primary
horzion_days: 20
`))
	require.Error(t, err, "typos must fail loudly, not fall back to defaults")
}

func TestParseScenario_RejectsUnknownRank(t *testing.T) {
	_, err := parseScenario([]byte(`
team:
  - id: PO1
    po_rank: quaternary
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown po rank")
}

func TestParseScenario_ExplicitZeroRate(t *testing.T) {
	cfg, err := parseScenario([]byte(`
team:
  - id: PO1
    po_rank: primary
rates:
  validation_fail: 0.0
`))
	require.NoError(t, err)
	assert.Zero(t, cfg.Rates.ValidationFail, "explicit zero is not \"absent\"")
	assert.Equal(t, sim.DefaultRates().PeerFail, cfg.Rates.PeerFail)
}

func TestDefaultRoster_IsValid(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Team = DefaultRoster()
	cfg.TotalPoints = 120
	require.NoError(t, cfg.Validate())

	assert.Len(t, cfg.Team, 10)
	assert.Equal(t, 8, cfg.DeveloperCount())
	assert.Equal(t, 16, cfg.EffectiveWIPLimit())
}

func TestBuildConfig_FlagOverrides(t *testing.T) {
	scenarioPath = ""
	seed = 7
	horizonDays = 15
	wipLimit = 5
	totalPoints = 60
	defer func() {
		seed, horizonDays, wipLimit, totalPoints = 0, 0, 0, 120
	}()

	cfg, err := buildConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 15, cfg.HorizonDays)
	assert.Equal(t, 5, cfg.WIPLimit)
	assert.Equal(t, 60, cfg.TotalPoints)
	require.NoError(t, cfg.Validate())
}
