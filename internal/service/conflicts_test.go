package service

import (
	"testing"
	"time"

	"github.com/AdamBeresnev/bracket-scheduler/internal/bracket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func place(m *bracket.Match, at time.Time, venue string) {
	m.ScheduledTime = &at
	m.VenueID = &venue
	m.Status = bracket.MatchScheduled
}

func TestDetectConflicts_VenueDoubleBooking(t *testing.T) {
	b, _ := buildBracket(t, testConfig(8), testTeams(8))
	round1 := b.RoundGames(1)

	place(round1[0], date(2030, 1, 5, 9, 0), "court-1")
	place(round1[1], date(2030, 1, 5, 9, 30), "court-1")

	report := DetectConflicts(b)
	require.True(t, report.HasConflicts)
	require.Len(t, report.Conflicts, 1)

	c := report.Conflicts[0]
	assert.Equal(t, VenueDoubleBooking, c.Type)
	assert.Equal(t, SeverityCritical, c.Severity)
	assert.Equal(t, "court-1", c.VenueID)
	assert.ElementsMatch(t, []uuid.UUID{round1[0].ID, round1[1].ID}, c.GameIDs)
	assert.NotEmpty(t, c.Description)
	assert.NotEmpty(t, c.SuggestedResolution)
}

func TestDetectConflicts_TeamDoubleBooking(t *testing.T) {
	b, _ := buildBracket(t, testConfig(4), testTeams(4))
	round1 := b.RoundGames(1)
	final := b.FinalGame()
	final.HomeTeamID = round1[0].HomeTeamID

	place(round1[0], date(2030, 1, 5, 9, 0), "court-1")
	place(round1[1], date(2030, 1, 12, 9, 0), "court-1")
	place(final, date(2030, 1, 5, 9, 30), "court-2")

	report := DetectConflicts(b)
	require.Len(t, report.Conflicts, 1)

	c := report.Conflicts[0]
	assert.Equal(t, TeamDoubleBooking, c.Type)
	assert.Equal(t, SeverityCritical, c.Severity)
	assert.Equal(t, []string{"t1"}, c.TeamIDs)
	assert.ElementsMatch(t, []uuid.UUID{round1[0].ID, final.ID}, c.GameIDs)
}

func TestDetectConflicts_BufferWarningSortedLast(t *testing.T) {
	cfg := testConfig(8)
	cfg.VenueIDs = []string{"court-1", "court-2"}
	b, _ := buildBracket(t, cfg, testTeams(8))
	round1 := b.RoundGames(1)

	// 10:05 leaves 5 minutes after the 09:00 game, 15 are required
	place(round1[0], date(2030, 1, 5, 9, 0), "court-1")
	place(round1[1], date(2030, 1, 5, 10, 5), "court-1")
	place(round1[2], date(2030, 1, 5, 9, 0), "court-2")
	place(round1[3], date(2030, 1, 5, 9, 15), "court-2")

	report := DetectConflicts(b)
	require.Len(t, report.Conflicts, 2)
	assert.Equal(t, VenueDoubleBooking, report.Conflicts[0].Type)
	assert.Equal(t, "court-2", report.Conflicts[0].VenueID)
	assert.Equal(t, VenueBufferViolation, report.Conflicts[1].Type)
	assert.Equal(t, SeverityWarning, report.Conflicts[1].Severity)
	assert.Equal(t, "court-1", report.Conflicts[1].VenueID)
}

func TestDetectConflicts_IgnoresCancelledAndUnscheduled(t *testing.T) {
	b, _ := buildBracket(t, testConfig(4), testTeams(4))
	round1 := b.RoundGames(1)

	place(round1[0], date(2030, 1, 5, 9, 0), "court-1")
	place(round1[1], date(2030, 1, 5, 9, 0), "court-1")
	round1[1].Status = bracket.MatchCancelled

	report := DetectConflicts(b)
	assert.False(t, report.HasConflicts)
	assert.NotNil(t, report.Conflicts)
	assert.Empty(t, report.Conflicts)
}

func TestDetectConflicts_BackToBackIsFine(t *testing.T) {
	cfg := testConfig(4)
	cfg.BufferMinutes = 0
	b, _ := buildBracket(t, cfg, testTeams(4))
	round1 := b.RoundGames(1)

	place(round1[0], date(2030, 1, 5, 9, 0), "court-1")
	place(round1[1], date(2030, 1, 5, 10, 0), "court-1")

	assert.False(t, DetectConflicts(b).HasConflicts)
}
