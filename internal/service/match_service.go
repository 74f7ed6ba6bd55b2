package service

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/bracket-scheduler/internal/bracket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdvanceWinner records the result of a completed game and propagates the
// winner, and the semifinal loser when there is a third place game.
func (s *BracketService) AdvanceWinner(ctx context.Context, bracketID, gameID uuid.UUID, result GameResult) (*bracket.Bracket, error) {
	release, err := s.locker.Acquire(ctx, bracketID.String())
	if err != nil {
		return nil, err
	}
	defer release()

	b, err := s.store.GetBracket(ctx, bracketID)
	if err != nil {
		return nil, err
	}

	scheduler, err := NewScheduler(b.Configuration)
	if err != nil {
		return nil, err
	}

	now := s.now()
	updated, err := AdvanceWinner(b, gameID, result, scheduler, now.UTC())
	if err != nil {
		s.log.Warn("failed to advance winner",
			zap.String("bracket_id", bracketID.String()),
			zap.String("game_id", gameID.String()),
			zap.Error(err))
		return nil, err
	}
	if updated == b {
		return b, nil
	}

	if err := s.store.SaveBracket(ctx, updated); err != nil {
		s.log.Error("failed to save bracket", zap.String("bracket_id", bracketID.String()), zap.Error(err))
		return nil, err
	}

	s.log.Info("winner advanced",
		zap.String("bracket_id", bracketID.String()),
		zap.String("game_id", gameID.String()),
		zap.String("winner_id", result.WinnerID),
		zap.String("bracket_status", string(updated.Status)),
	)
	return updated, nil
}

// StatusReport moves one game through its lifecycle. Scores are optional and
// only recorded when present.
type StatusReport struct {
	Status    bracket.MatchStatus `json:"status"`
	HomeScore *int                `json:"homeScore"`
	AwayScore *int                `json:"awayScore"`
}

func (s *BracketService) ReportGameStatus(ctx context.Context, bracketID, gameID uuid.UUID, report StatusReport) (*bracket.Bracket, error) {
	if !report.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown game status %q", bracket.ErrInvalidResult, report.Status)
	}
	if (report.HomeScore != nil && *report.HomeScore < 0) || (report.AwayScore != nil && *report.AwayScore < 0) {
		return nil, fmt.Errorf("%w: scores cannot be negative", bracket.ErrInvalidResult)
	}

	release, err := s.locker.Acquire(ctx, bracketID.String())
	if err != nil {
		return nil, err
	}
	defer release()

	b, err := s.store.GetBracket(ctx, bracketID)
	if err != nil {
		return nil, err
	}

	work := b.Clone()
	if err := applyStatusReport(work, gameID, report); err != nil {
		s.log.Warn("rejected game status",
			zap.String("bracket_id", bracketID.String()),
			zap.String("game_id", gameID.String()),
			zap.String("status", string(report.Status)),
			zap.Error(err))
		return nil, err
	}
	work.UpdatedAt = s.now().UTC()

	if err := s.store.SaveBracket(ctx, work); err != nil {
		s.log.Error("failed to save bracket", zap.String("bracket_id", bracketID.String()), zap.Error(err))
		return nil, err
	}

	s.log.Info("game status changed",
		zap.String("bracket_id", bracketID.String()),
		zap.String("game_id", gameID.String()),
		zap.String("status", string(report.Status)),
	)
	return work, nil
}

func applyStatusReport(b *bracket.Bracket, gameID uuid.UUID, report StatusReport) error {
	m := b.Game(gameID)
	if m == nil {
		return fmt.Errorf("%w: game %s is not in bracket %s", bracket.ErrNotFound, gameID, b.ID)
	}

	if m.Status.Terminal() {
		return fmt.Errorf("%w: game %d is already %s", bracket.ErrInvalidState, m.GameNumber, m.Status)
	}

	switch report.Status {
	case bracket.MatchPending:
		return fmt.Errorf("%w: games return to %s only by rescheduling", bracket.ErrInvalidState, bracket.MatchPending)
	case bracket.MatchScheduled:
		if !m.IsScheduled() {
			return fmt.Errorf("%w: game %d has no time or venue", bracket.ErrInvalidState, m.GameNumber)
		}
	case bracket.MatchInProgress, bracket.MatchCompleted:
		if !m.HasBothTeams() {
			return fmt.Errorf("%w: game %d is still waiting for its teams", bracket.ErrInvalidState, m.GameNumber)
		}
	}

	if err := m.Transition(report.Status); err != nil {
		return err
	}
	if report.HomeScore != nil {
		home := *report.HomeScore
		m.HomeScore = &home
	}
	if report.AwayScore != nil {
		away := *report.AwayScore
		m.AwayScore = &away
	}
	return nil
}
