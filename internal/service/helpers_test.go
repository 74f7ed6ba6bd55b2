package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/AdamBeresnev/bracket-scheduler/internal/bracket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// 2030-01-05 is a Saturday
var testNow = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func testConfig(teamCount int) bracket.Configuration {
	return bracket.Configuration{
		EliminationType:     bracket.SingleElimination,
		TeamCount:           teamCount,
		Timezone:            "UTC",
		VenueIDs:            []string{"court-1"},
		StartDate:           "2030-01-05",
		GameDurationMinutes: 60,
		BufferMinutes:       15,
		PreferredTimes:      []string{"09:00"},
		PreferredDays:       []string{"SATURDAY"},
	}
}

func testTeams(n int) []bracket.Team {
	teams := make([]bracket.Team, n)
	for i := range teams {
		teams[i] = bracket.Team{
			ID:   fmt.Sprintf("t%d", i+1),
			Name: fmt.Sprintf("Team %d", i+1),
			Seed: i + 1,
		}
	}
	return teams
}

// buildBracket generates and initially schedules a bracket the same way
// CreateBracket does, without a store.
func buildBracket(t *testing.T, cfg bracket.Configuration, teams []bracket.Team) (*bracket.Bracket, *Scheduler) {
	t.Helper()

	seeded, err := SeedTeams(teams, cfg.SeedFromStandings)
	require.NoError(t, err)

	id := uuid.New()
	rounds, games := GenerateSingleElimBracket(id, seeded, cfg.IncludeThirdPlaceMatch)
	b := &bracket.Bracket{
		ID:            id,
		Type:          bracket.SingleElimination,
		Status:        bracket.BracketActive,
		Teams:         seeded,
		Games:         games,
		Rounds:        rounds,
		Configuration: cfg,
	}

	scheduler, err := NewScheduler(cfg)
	require.NoError(t, err)
	scheduler.ScheduleInitial(b)
	return b, scheduler
}

func date(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

// gameBetween finds the game two teams meet in.
func gameBetween(t *testing.T, b *bracket.Bracket, home, away string) *bracket.Match {
	t.Helper()
	for i := range b.Games {
		m := &b.Games[i]
		if m.HasBothTeams() && *m.HomeTeamID == home && *m.AwayTeamID == away {
			return m
		}
	}
	require.FailNow(t, "game not found", "%s vs %s", home, away)
	return nil
}

// play marks the game completed and advances winner, failing the test on error.
func play(t *testing.T, b *bracket.Bracket, gameID uuid.UUID, winner string, scheduler *Scheduler) *bracket.Bracket {
	t.Helper()

	m := b.Game(gameID)
	require.NotNil(t, m)
	m.Status = bracket.MatchCompleted

	home, away := 1, 0
	if *m.AwayTeamID == winner {
		home, away = 0, 1
	}
	updated, err := AdvanceWinner(b, gameID, GameResult{WinnerID: winner, HomeScore: home, AwayScore: away}, scheduler, testNow)
	require.NoError(t, err)
	return updated
}
