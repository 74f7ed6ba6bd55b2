package bracket

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchPending    MatchStatus = "PENDING"
	MatchScheduled  MatchStatus = "SCHEDULED"
	MatchInProgress MatchStatus = "IN_PROGRESS"
	MatchCompleted  MatchStatus = "COMPLETED"
	MatchCancelled  MatchStatus = "CANCELLED"
)

// ThirdPlacePosition is the position reserved for the third-place match.
const ThirdPlacePosition = 999

var matchTransitions = map[MatchStatus][]MatchStatus{
	MatchPending:    {MatchScheduled, MatchCancelled},
	MatchScheduled:  {MatchPending, MatchInProgress, MatchCompleted, MatchCancelled},
	MatchInProgress: {MatchCompleted, MatchCancelled},
}

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchPending, MatchScheduled, MatchInProgress, MatchCompleted, MatchCancelled:
		return true
	}
	return false
}

func (s MatchStatus) Terminal() bool {
	return s == MatchCompleted || s == MatchCancelled
}

func (s MatchStatus) CanTransition(to MatchStatus) bool {
	for _, next := range matchTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type Match struct {
	ID         uuid.UUID `db:"id" json:"id"`
	BracketID  uuid.UUID `db:"bracket_id" json:"bracketId"`
	GameNumber int       `db:"game_number" json:"gameNumber"`

	// Position in the bracket for reconstructing the view
	Round    int `db:"round_number" json:"round"`
	Position int `db:"position" json:"position"`

	HomeTeamID *string `db:"home_team_id" json:"homeTeamId"`
	AwayTeamID *string `db:"away_team_id" json:"awayTeamId"`

	WinnerID  *string `db:"winner_id" json:"winnerId"`
	HomeScore *int    `db:"home_score" json:"homeScore"`
	AwayScore *int    `db:"away_score" json:"awayScore"`

	ScheduledTime *time.Time `db:"scheduled_time" json:"scheduledTime"`
	VenueID       *string    `db:"venue_id" json:"venueId"`

	Status MatchStatus `db:"status" json:"status"`

	NextGameID     *uuid.UUID `db:"next_game_id" json:"nextGameId"`
	ThirdPlaceGame bool       `db:"third_place_game" json:"thirdPlaceGame"`

	// Either "seed-N" or the id of the match feeding this side
	HomeTeamSource string `db:"home_team_source" json:"homeTeamSource"`
	AwayTeamSource string `db:"away_team_source" json:"awayTeamSource"`
}

func SeedSource(seed int) string {
	return fmt.Sprintf("seed-%d", seed)
}

func (m *Match) HasBothTeams() bool {
	return m.HomeTeamID != nil && m.AwayTeamID != nil
}

func (m *Match) HasTeam(teamID string) bool {
	return (m.HomeTeamID != nil && *m.HomeTeamID == teamID) || (m.AwayTeamID != nil && *m.AwayTeamID == teamID)
}

func (m *Match) IsScheduled() bool {
	return m.ScheduledTime != nil && m.VenueID != nil
}

// LoserID is nil until a winner has been recorded.
func (m *Match) LoserID() *string {
	if m.WinnerID == nil || !m.HasBothTeams() {
		return nil
	}
	if *m.WinnerID == *m.HomeTeamID {
		return m.AwayTeamID
	}
	return m.HomeTeamID
}

func (m *Match) Transition(to MatchStatus) error {
	if !m.Status.CanTransition(to) {
		return fmt.Errorf("%w: game %d cannot move from %s to %s", ErrInvalidState, m.GameNumber, m.Status, to)
	}
	m.Status = to
	return nil
}

func (m *Match) clone() Match {
	c := *m
	c.HomeTeamID = clonePtr(m.HomeTeamID)
	c.AwayTeamID = clonePtr(m.AwayTeamID)
	c.WinnerID = clonePtr(m.WinnerID)
	c.HomeScore = clonePtr(m.HomeScore)
	c.AwayScore = clonePtr(m.AwayScore)
	c.ScheduledTime = clonePtr(m.ScheduledTime)
	c.VenueID = clonePtr(m.VenueID)
	c.NextGameID = clonePtr(m.NextGameID)
	return c
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
