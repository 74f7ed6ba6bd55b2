package bracket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestMatchStatusTransitions(t *testing.T) {
	testCases := []struct {
		from, to MatchStatus
		allowed  bool
	}{
		{MatchPending, MatchScheduled, true},
		{MatchPending, MatchCancelled, true},
		{MatchPending, MatchCompleted, false},
		{MatchScheduled, MatchInProgress, true},
		{MatchScheduled, MatchCompleted, true},
		{MatchScheduled, MatchPending, true},
		{MatchInProgress, MatchCompleted, true},
		{MatchInProgress, MatchScheduled, false},
		{MatchCompleted, MatchCancelled, false},
		{MatchCancelled, MatchPending, false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransition(tc.to))

			m := &Match{Status: tc.from}
			err := m.Transition(tc.to)
			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, tc.to, m.Status)
			} else {
				assert.ErrorIs(t, err, ErrInvalidState)
				assert.Equal(t, tc.from, m.Status)
			}
		})
	}
}

func TestMatchStatusTerminal(t *testing.T) {
	all := []MatchStatus{MatchPending, MatchScheduled, MatchInProgress, MatchCompleted, MatchCancelled}
	for _, from := range all {
		t.Run(string(from), func(t *testing.T) {
			terminal := from == MatchCompleted || from == MatchCancelled
			assert.Equal(t, terminal, from.Terminal())
			if terminal {
				for _, to := range all {
					assert.False(t, from.CanTransition(to), "%s -> %s", from, to)
				}
			}
		})
	}
}

func TestResolvable(t *testing.T) {
	semi1 := Match{ID: uuid.New(), Round: 1, Position: 0, HomeTeamSource: SeedSource(1), AwayTeamSource: SeedSource(4)}
	semi2 := Match{ID: uuid.New(), Round: 1, Position: 1, HomeTeamSource: SeedSource(2), AwayTeamSource: SeedSource(3)}
	final := Match{ID: uuid.New(), Round: 2, HomeTeamSource: semi1.ID.String(), AwayTeamSource: semi2.ID.String()}
	b := &Bracket{Rounds: 2, Games: []Match{semi1, semi2, final}}

	assert.True(t, b.Resolvable(&b.Games[0]))
	assert.False(t, b.Resolvable(&b.Games[2]))

	b.Games[0].Status = MatchCompleted
	b.Games[0].WinnerID = strPtr("a")
	assert.False(t, b.Resolvable(&b.Games[2]))

	b.Games[1].Status = MatchCompleted
	assert.False(t, b.Resolvable(&b.Games[2]), "completed without a winner is not resolved")

	b.Games[1].WinnerID = strPtr("b")
	assert.True(t, b.Resolvable(&b.Games[2]))
}

func TestCloneIsDeep(t *testing.T) {
	at := time.Date(2030, 1, 5, 9, 0, 0, 0, time.UTC)
	b := &Bracket{
		Teams:         []Team{{ID: "a", Seed: 1}},
		Games:         []Match{{ID: uuid.New(), HomeTeamID: strPtr("a"), ScheduledTime: &at}},
		Configuration: Configuration{VenueIDs: []string{"v1"}},
	}

	c := b.Clone()
	*c.Games[0].HomeTeamID = "z"
	*c.Games[0].ScheduledTime = at.Add(time.Hour)
	c.Teams[0].Name = "changed"
	c.Configuration.VenueIDs[0] = "v2"

	assert.Equal(t, "a", *b.Games[0].HomeTeamID)
	assert.Equal(t, at, *b.Games[0].ScheduledTime)
	assert.Empty(t, b.Teams[0].Name)
	assert.Equal(t, "v1", b.Configuration.VenueIDs[0])
}

func TestConfigurationValidate(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	valid := Configuration{
		EliminationType:     SingleElimination,
		VenueIDs:            []string{"court-1"},
		StartDate:           "2030-01-05",
		GameDurationMinutes: 60,
		PreferredTimes:      []string{"09:00"},
		PreferredDays:       []string{"SATURDAY"},
	}

	testCases := []struct {
		name   string
		mutate func(c *Configuration)
		teams  int
		ok     bool
	}{
		{name: "valid", mutate: func(c *Configuration) {}, teams: 8, ok: true},
		{name: "too few teams", mutate: func(c *Configuration) {}, teams: 2},
		{name: "too many teams", mutate: func(c *Configuration) {}, teams: 64},
		{name: "not a power of two", mutate: func(c *Configuration) {}, teams: 6},
		{name: "team count mismatch", mutate: func(c *Configuration) { c.TeamCount = 16 }, teams: 8},
		{name: "double elimination", mutate: func(c *Configuration) { c.EliminationType = DoubleElimination }, teams: 8},
		{name: "no venues", mutate: func(c *Configuration) { c.VenueIDs = nil }, teams: 8},
		{name: "no times", mutate: func(c *Configuration) { c.PreferredTimes = nil }, teams: 8},
		{name: "no days", mutate: func(c *Configuration) { c.PreferredDays = nil }, teams: 8},
		{name: "bad day", mutate: func(c *Configuration) { c.PreferredDays = []string{"FUNDAY"} }, teams: 8},
		{name: "bad time", mutate: func(c *Configuration) { c.PreferredTimes = []string{"9am"} }, teams: 8},
		{name: "start date today", mutate: func(c *Configuration) { c.StartDate = "2030-01-01" }, teams: 8},
		{name: "unknown timezone", mutate: func(c *Configuration) { c.Timezone = "Mars/Olympus" }, teams: 8},
		{name: "zero duration", mutate: func(c *Configuration) { c.GameDurationMinutes = 0 }, teams: 8},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid.clone()
			tc.mutate(&cfg)
			err := cfg.Validate(tc.teams, now)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrConfiguration)
			}
		})
	}
}
