package service

import (
	"fmt"
	"time"

	"github.com/AdamBeresnev/bracket-scheduler/internal/bracket"
	"github.com/google/uuid"
)

type GameResult struct {
	WinnerID  string `json:"winnerId"`
	HomeScore int    `json:"homeScore"`
	AwayScore int    `json:"awayScore"`
}

// AdvanceWinner records the result of a completed game and propagates it. It
// works on a copy: on error b is untouched, and a repeated identical result
// returns b itself.
func AdvanceWinner(b *bracket.Bracket, gameID uuid.UUID, result GameResult, scheduler *Scheduler, now time.Time) (*bracket.Bracket, error) {
	match := b.Game(gameID)
	if match == nil {
		return nil, fmt.Errorf("%w: game %s is not in bracket %s", bracket.ErrNotFound, gameID, b.ID)
	}
	if match.WinnerID != nil {
		if sameResult(match, result) {
			return b, nil
		}
		return nil, fmt.Errorf("%w: game %d already has a recorded result", bracket.ErrInvalidState, match.GameNumber)
	}

	work := b.Clone()
	if err := advance(work, gameID, result, scheduler); err != nil {
		return nil, err
	}
	work.UpdatedAt = now
	return work, nil
}

func sameResult(m *bracket.Match, r GameResult) bool {
	return *m.WinnerID == r.WinnerID &&
		m.HomeScore != nil && *m.HomeScore == r.HomeScore &&
		m.AwayScore != nil && *m.AwayScore == r.AwayScore
}

// advance mutates b in place. scheduler may be nil.
func advance(b *bracket.Bracket, gameID uuid.UUID, result GameResult, scheduler *Scheduler) error {
	match := b.Game(gameID)
	if match == nil {
		return fmt.Errorf("%w: game %s is not in bracket %s", bracket.ErrNotFound, gameID, b.ID)
	}
	if match.Status != bracket.MatchCompleted {
		return fmt.Errorf("%w: game must be completed to advance winner (game %d is %s)", bracket.ErrInvalidState, match.GameNumber, match.Status)
	}
	if !match.HasTeam(result.WinnerID) || !match.HasBothTeams() {
		return fmt.Errorf("%w: team %q did not play game %d", bracket.ErrInvalidWinner, result.WinnerID, match.GameNumber)
	}
	if result.HomeScore < 0 || result.AwayScore < 0 {
		return fmt.Errorf("%w: scores cannot be negative", bracket.ErrInvalidResult)
	}

	winnerID := result.WinnerID
	homeScore, awayScore := result.HomeScore, result.AwayScore
	match.WinnerID = &winnerID
	match.HomeScore = &homeScore
	match.AwayScore = &awayScore

	if match.NextGameID != nil {
		next := b.Game(*match.NextGameID)
		if next == nil {
			return fmt.Errorf("%w: next game %s of game %d", bracket.ErrNotFound, *match.NextGameID, match.GameNumber)
		}
		fillSide(next, match.ID, winnerID)
		scheduleIfReady(b, next, scheduler)
	}

	if match.Round == b.Rounds-1 && !match.ThirdPlaceGame {
		if thirdPlace := b.ThirdPlaceGame(); thirdPlace != nil {
			fillSide(thirdPlace, match.ID, *match.LoserID())
			scheduleIfReady(b, thirdPlace, scheduler)
		}
	}

	checkCompletion(b)
	return nil
}

func fillSide(dest *bracket.Match, sourceID uuid.UUID, teamID string) {
	team := teamID
	switch sourceID.String() {
	case dest.HomeTeamSource:
		dest.HomeTeamID = &team
	case dest.AwayTeamSource:
		dest.AwayTeamID = &team
	}
}

func scheduleIfReady(b *bracket.Bracket, m *bracket.Match, scheduler *Scheduler) {
	if scheduler == nil || m.Status != bracket.MatchPending || !m.HasBothTeams() || !b.Resolvable(m) {
		return
	}
	scheduler.ScheduleNextRoundGame(b, m)
}

func checkCompletion(b *bracket.Bracket) {
	final := b.FinalGame()
	if final == nil || final.Status != bracket.MatchCompleted || final.WinnerID == nil {
		return
	}

	b.WinnerID = final.WinnerID
	b.RunnerUpID = final.LoserID()
	if thirdPlace := b.ThirdPlaceGame(); thirdPlace != nil && thirdPlace.Status == bracket.MatchCompleted {
		b.ThirdPlaceID = thirdPlace.WinnerID
	}
	b.Status = bracket.BracketCompleted
}
