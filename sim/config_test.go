package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Team = []MemberConfig{
		{ID: "PO1", PORank: RankPrimary},
		{ID: "ADMIN1", AdminRank: RankPrimary},
		{ID: "DEV0", Developer: true},
		{ID: "DEV1", Developer: true},
	}
	cfg.StoryPoints = []int{1, 3, 5}
	return cfg
}

func TestConfig_ValidAcceptsDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfig_ValidateRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero horizon", func(c *Config) { c.HorizonDays = 0 }, "horizon"},
		{"empty roster", func(c *Config) { c.Team = nil }, "roster"},
		{"empty member id", func(c *Config) { c.Team[0].ID = "" }, "empty id"},
		{"duplicate member id", func(c *Config) { c.Team[1].ID = c.Team[0].ID }, "duplicate"},
		{"duplicate po rank", func(c *Config) { c.Team[2].PORank = RankPrimary }, "po rank"},
		{"duplicate admin rank", func(c *Config) { c.Team[2].AdminRank = RankPrimary }, "admin rank"},
		{"no primary po", func(c *Config) { c.Team[0].PORank = RankSecondary }, "primary PO"},
		{"no primary admin", func(c *Config) { c.Team[1].AdminRank = RankTertiary }, "primary admin"},
		{"no developers", func(c *Config) {
			c.Team[2].Developer = false
			c.Team[3].Developer = false
		}, "developer"},
		{"no stories", func(c *Config) { c.StoryPoints = nil; c.TotalPoints = 0 }, "no stories"},
		{"invalid point size", func(c *Config) { c.StoryPoints = []int{4} }, "point size"},
		{"rate out of range", func(c *Config) { c.Rates.PeerFail = 1.5 }, "outside [0, 1]"},
		{"zero attempt cap", func(c *Config) { c.Caps.Validation = 0 }, "attempt caps"},
		{"unknown policy", func(c *Config) { c.OnExhausted = "retry-forever" }, "exhaustion policy"},
		{"inverted block delay", func(c *Config) {
			c.BlockDelayMinHours = 4
			c.BlockDelayMaxHours = 1
		}, "delay bounds"},
		{"zero sprint length", func(c *Config) { c.Ceremonies.SprintDays = 0 }, "sprint length"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestConfig_DerivedWIPLimit(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, 4, cfg.EffectiveWIPLimit(), "2 developers x multiplier 2")

	cfg.WIPLimit = 7
	assert.Equal(t, 7, cfg.EffectiveWIPLimit(), "explicit limit overrides derivation")
}

func TestConfig_HorizonTicks(t *testing.T) {
	cfg := validConfig()
	cfg.HorizonDays = 10
	assert.Equal(t, int64(10*8*TicksPerHour), cfg.HorizonTicks())
}

func TestConfig_EscalationChainOrder(t *testing.T) {
	cfg := validConfig()
	cfg.Team = append(cfg.Team,
		MemberConfig{ID: "PO3", PORank: RankTertiary},
		MemberConfig{ID: "PO2", PORank: RankSecondary},
	)
	chain := chainFor(cfg.buildTeam(), RolePO)
	require.Len(t, chain, 3)
	assert.Equal(t, "PO1", chain[0].ID)
	assert.Equal(t, "PO2", chain[1].ID)
	assert.Equal(t, "PO3", chain[2].ID)
}
