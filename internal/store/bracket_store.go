package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AdamBeresnev/bracket-scheduler/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
)

type BracketStore struct {
	db *sqlx.DB
}

func NewBracketStore(db *sqlx.DB) *BracketStore {
	return &BracketStore{db: db}
}

type bracketRow struct {
	ID             uuid.UUID      `db:"id"`
	TournamentID   string         `db:"tournament_id"`
	OrganizationID string         `db:"organization_id"`
	Type           bracket.Type   `db:"bracket_type"`
	Status         bracket.Status `db:"status"`
	Rounds         int            `db:"rounds"`
	Configuration  types.JSONText `db:"configuration"`
	WinnerID       *string        `db:"winner_id"`
	RunnerUpID     *string        `db:"runner_up_id"`
	ThirdPlaceID   *string        `db:"third_place_id"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

type teamRow struct {
	BracketID uuid.UUID `db:"bracket_id"`
	bracket.Team
}

type ListFilter struct {
	Status       bracket.Status
	Type         bracket.Type
	TournamentID string
}

const (
	insertBracketQuery = `INSERT INTO brackets (id, tournament_id, organization_id, bracket_type, status, rounds, configuration, winner_id, runner_up_id, third_place_id, created_at, updated_at)
		VALUES (:id, :tournament_id, :organization_id, :bracket_type, :status, :rounds, :configuration, :winner_id, :runner_up_id, :third_place_id, :created_at, :updated_at)`
	updateBracketQuery = `UPDATE brackets SET
		status = :status,
		rounds = :rounds,
		configuration = :configuration,
		winner_id = :winner_id,
		runner_up_id = :runner_up_id,
		third_place_id = :third_place_id,
		updated_at = :updated_at
		WHERE id = :id`
	insertTeamsQuery = `INSERT INTO bracket_teams (bracket_id, id, name, seed, wins, losses, point_differential)
		VALUES (:bracket_id, :id, :name, :seed, :wins, :losses, :point_differential)`
	insertGamesQuery = `INSERT INTO bracket_games (id, bracket_id, game_number, round_number, position, home_team_id, away_team_id, winner_id, home_score, away_score, scheduled_time, venue_id, status, next_game_id, third_place_game, home_team_source, away_team_source)
		VALUES (:id, :bracket_id, :game_number, :round_number, :position, :home_team_id, :away_team_id, :winner_id, :home_score, :away_score, :scheduled_time, :venue_id, :status, :next_game_id, :third_place_game, :home_team_source, :away_team_source)`
)

func toRow(b *bracket.Bracket) (*bracketRow, error) {
	cfg, err := json.Marshal(b.Configuration)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return &bracketRow{
		ID:             b.ID,
		TournamentID:   b.TournamentID,
		OrganizationID: b.OrganizationID,
		Type:           b.Type,
		Status:         b.Status,
		Rounds:         b.Rounds,
		Configuration:  types.JSONText(cfg),
		WinnerID:       b.WinnerID,
		RunnerUpID:     b.RunnerUpID,
		ThirdPlaceID:   b.ThirdPlaceID,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}, nil
}

func fromRow(row *bracketRow) (*bracket.Bracket, error) {
	b := &bracket.Bracket{
		ID:             row.ID,
		TournamentID:   row.TournamentID,
		OrganizationID: row.OrganizationID,
		Type:           row.Type,
		Status:         row.Status,
		Rounds:         row.Rounds,
		WinnerID:       row.WinnerID,
		RunnerUpID:     row.RunnerUpID,
		ThirdPlaceID:   row.ThirdPlaceID,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if err := row.Configuration.Unmarshal(&b.Configuration); err != nil {
		return nil, fmt.Errorf("failed to decode configuration of bracket %s: %w", row.ID, err)
	}
	return b, nil
}

func (s *BracketStore) CreateBracket(ctx context.Context, b *bracket.Bracket) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row, err := toRow(b)
	if err != nil {
		return err
	}
	if _, err := tx.NamedExecContext(ctx, insertBracketQuery, row); err != nil {
		return fmt.Errorf("failed to insert bracket: %w", err)
	}

	teams := make([]teamRow, 0, len(b.Teams))
	for _, t := range b.Teams {
		teams = append(teams, teamRow{BracketID: b.ID, Team: t})
	}
	if len(teams) > 0 {
		if _, err := tx.NamedExecContext(ctx, insertTeamsQuery, teams); err != nil {
			return fmt.Errorf("failed to insert teams: %w", err)
		}
	}

	if err := insertGames(ctx, tx, b.Games); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveBracket replaces the stored state of an existing bracket. Teams are a
// snapshot taken at creation and are left alone.
func (s *BracketStore) SaveBracket(ctx context.Context, b *bracket.Bracket) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row, err := toRow(b)
	if err != nil {
		return err
	}
	res, err := tx.NamedExecContext(ctx, updateBracketQuery, row)
	if err != nil {
		return fmt.Errorf("failed to update bracket: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bracket %s: %w", b.ID, bracket.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM bracket_games WHERE bracket_id = ?", b.ID); err != nil {
		return fmt.Errorf("failed to clear games: %w", err)
	}
	if err := insertGames(ctx, tx, b.Games); err != nil {
		return err
	}
	return tx.Commit()
}

func insertGames(ctx context.Context, tx *sqlx.Tx, games []bracket.Match) error {
	if len(games) == 0 {
		return nil
	}
	if _, err := tx.NamedExecContext(ctx, insertGamesQuery, games); err != nil {
		return fmt.Errorf("failed to insert games: %w", err)
	}
	return nil
}

// GetBracket loads the full aggregate inside one read transaction so a
// concurrent save is never seen half applied.
func (s *BracketStore) GetBracket(ctx context.Context, id uuid.UUID) (*bracket.Bracket, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var row bracketRow
	if err := tx.GetContext(ctx, &row, "SELECT * FROM brackets WHERE id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("bracket %s: %w", id, bracket.ErrNotFound)
		}
		return nil, err
	}

	b, err := fromRow(&row)
	if err != nil {
		return nil, err
	}

	var teams []teamRow
	if err := tx.SelectContext(ctx, &teams, "SELECT * FROM bracket_teams WHERE bracket_id = ? ORDER BY seed ASC", id); err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	for _, t := range teams {
		b.Teams = append(b.Teams, t.Team)
	}

	if err := tx.SelectContext(ctx, &b.Games, "SELECT * FROM bracket_games WHERE bracket_id = ? ORDER BY game_number ASC", id); err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}
	return b, tx.Commit()
}

// ListBrackets returns bracket headers only, without teams and games.
func (s *BracketStore) ListBrackets(ctx context.Context, filter ListFilter) ([]bracket.Bracket, error) {
	query := "SELECT * FROM brackets WHERE 1 = 1"
	var args []interface{}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Type != "" {
		query += " AND bracket_type = ?"
		args = append(args, filter.Type)
	}
	if filter.TournamentID != "" {
		query += " AND tournament_id = ?"
		args = append(args, filter.TournamentID)
	}
	query += " ORDER BY created_at DESC"

	var rows []bracketRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	brackets := make([]bracket.Bracket, 0, len(rows))
	for i := range rows {
		b, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		brackets = append(brackets, *b)
	}
	return brackets, nil
}

func (s *BracketStore) DeleteBracket(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM brackets WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bracket %s: %w", id, bracket.ErrNotFound)
	}
	return nil
}
