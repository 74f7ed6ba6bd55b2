package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/AdamBeresnev/bracket-scheduler/internal/bracket"
	"github.com/AdamBeresnev/bracket-scheduler/internal/lock"
	"github.com/AdamBeresnev/bracket-scheduler/internal/middleware"
	"github.com/AdamBeresnev/bracket-scheduler/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultSimulationIterations = 1000

// BracketRepository loads and saves whole bracket aggregates.
type BracketRepository interface {
	CreateBracket(ctx context.Context, b *bracket.Bracket) error
	SaveBracket(ctx context.Context, b *bracket.Bracket) error
	GetBracket(ctx context.Context, id uuid.UUID) (*bracket.Bracket, error)
	ListBrackets(ctx context.Context, filter store.ListFilter) ([]bracket.Bracket, error)
	DeleteBracket(ctx context.Context, id uuid.UUID) error
}

// BracketService runs the engine against stored brackets. Every mutation holds
// the bracket's lock for its whole read-modify-write.
type BracketService struct {
	store                BracketRepository
	locker               lock.Locker
	log                  *zap.Logger
	now                  func() time.Time
	simulationIterations int
}

func NewBracketService(store BracketRepository, locker lock.Locker, log *zap.Logger) *BracketService {
	return &BracketService{
		store:                store,
		locker:               locker,
		log:                  log,
		now:                  time.Now,
		simulationIterations: DefaultSimulationIterations,
	}
}

func (s *BracketService) WithClock(now func() time.Time) *BracketService {
	s.now = now
	return s
}

func (s *BracketService) WithSimulationIterations(n int) *BracketService {
	s.simulationIterations = n
	return s
}

type CreateBracketInput struct {
	TournamentID  string                `json:"tournamentId"`
	Configuration bracket.Configuration `json:"configuration"`
	Teams         []bracket.Team        `json:"teams"`
}

// CreateBracket validates the request, builds the topology and schedules the
// first round.
func (s *BracketService) CreateBracket(ctx context.Context, in CreateBracketInput) (*bracket.Bracket, error) {
	now := s.now()
	cfg := in.Configuration
	if cfg.EliminationType == "" {
		cfg.EliminationType = bracket.SingleElimination
	}

	if err := cfg.Validate(len(in.Teams), now); err != nil {
		s.log.Warn("rejected bracket configuration", zap.Error(err))
		return nil, err
	}
	teams, err := SeedTeams(in.Teams, cfg.SeedFromStandings)
	if err != nil {
		s.log.Warn("rejected bracket teams", zap.Error(err))
		return nil, err
	}
	cfg.TeamCount = len(teams)

	scheduler, err := NewScheduler(cfg)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	// Nobody else knows id yet. Holding its lock until the insert commits keeps
	// creation on the same lock path as every other mutation.
	release, err := s.locker.Acquire(ctx, id.String())
	if err != nil {
		return nil, err
	}
	defer release()

	rounds, games := GenerateSingleElimBracket(id, teams, cfg.IncludeThirdPlaceMatch)
	orgID, _ := middleware.GetOrganizationIDFromContext(ctx)

	b := &bracket.Bracket{
		ID:             id,
		TournamentID:   in.TournamentID,
		OrganizationID: orgID,
		Type:           cfg.EliminationType,
		Status:         bracket.BracketDraft,
		Teams:          teams,
		Games:          games,
		Rounds:         rounds,
		Configuration:  cfg,
		CreatedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
	}

	scheduled := scheduler.ScheduleInitial(b)
	b.Status = bracket.BracketActive

	if err := s.store.CreateBracket(ctx, b); err != nil {
		s.log.Error("failed to store bracket", zap.String("bracket_id", id.String()), zap.Error(err))
		return nil, err
	}

	s.log.Info("bracket created",
		zap.String("bracket_id", id.String()),
		zap.String("tournament_id", b.TournamentID),
		zap.Int("teams", len(teams)),
		zap.Int("games", len(games)),
		zap.Int("scheduled", scheduled),
	)
	return b, nil
}

func (s *BracketService) GetBracket(ctx context.Context, id uuid.UUID) (*bracket.Bracket, error) {
	return s.store.GetBracket(ctx, id)
}

func (s *BracketService) ListBrackets(ctx context.Context, filter store.ListFilter) ([]bracket.Bracket, error) {
	return s.store.ListBrackets(ctx, filter)
}

func (s *BracketService) DeleteBracket(ctx context.Context, id uuid.UUID) error {
	release, err := s.locker.Acquire(ctx, id.String())
	if err != nil {
		return err
	}
	defer release()

	if err := s.store.DeleteBracket(ctx, id); err != nil {
		return err
	}
	s.log.Info("bracket deleted", zap.String("bracket_id", id.String()))
	return nil
}

// ScheduleUpdate replaces the scheduling inputs of a bracket. Empty fields keep
// their current value.
type ScheduleUpdate struct {
	StartDate      string   `json:"startDate"`
	VenueIDs       []string `json:"venueIds"`
	PreferredTimes []string `json:"preferredTimes"`
	PreferredDays  []string `json:"preferredDays"`
}

func (u ScheduleUpdate) apply(cfg bracket.Configuration) bracket.Configuration {
	if u.StartDate != "" {
		cfg.StartDate = u.StartDate
	}
	if len(u.VenueIDs) > 0 {
		cfg.VenueIDs = append([]string(nil), u.VenueIDs...)
	}
	if len(u.PreferredTimes) > 0 {
		cfg.PreferredTimes = append([]string(nil), u.PreferredTimes...)
	}
	if len(u.PreferredDays) > 0 {
		cfg.PreferredDays = append([]string(nil), u.PreferredDays...)
	}
	return cfg
}

// RescheduleBracket clears every game that has not started and places them
// again under the new scheduling inputs.
func (s *BracketService) RescheduleBracket(ctx context.Context, id uuid.UUID, update ScheduleUpdate) (*bracket.Bracket, error) {
	release, err := s.locker.Acquire(ctx, id.String())
	if err != nil {
		return nil, err
	}
	defer release()

	b, err := s.store.GetBracket(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == bracket.BracketCompleted {
		return nil, fmt.Errorf("%w: bracket %s is already completed", bracket.ErrInvalidState, id)
	}

	now := s.now()
	cfg := update.apply(b.Configuration)
	if err := cfg.ValidateSchedule(now); err != nil {
		s.log.Warn("rejected schedule update", zap.String("bracket_id", id.String()), zap.Error(err))
		return nil, err
	}
	scheduler, err := NewScheduler(cfg)
	if err != nil {
		return nil, err
	}

	work := b.Clone()
	work.Configuration = cfg
	Unschedule(work)
	scheduled := scheduler.ScheduleAll(work)
	work.UpdatedAt = now.UTC()

	if err := s.store.SaveBracket(ctx, work); err != nil {
		s.log.Error("failed to save rescheduled bracket", zap.String("bracket_id", id.String()), zap.Error(err))
		return nil, err
	}

	s.log.Info("bracket rescheduled", zap.String("bracket_id", id.String()), zap.Int("scheduled", scheduled))
	return work, nil
}

func (s *BracketService) DetectConflicts(ctx context.Context, id uuid.UUID) (ConflictReport, error) {
	b, err := s.store.GetBracket(ctx, id)
	if err != nil {
		return ConflictReport{}, err
	}
	return DetectConflicts(b), nil
}

type SimulateInput struct {
	Iterations int     `json:"iterations"`
	Seed       *uint64 `json:"seed"`
}

func (s *BracketService) Simulate(ctx context.Context, id uuid.UUID, in SimulateInput) (*SimulationResult, error) {
	b, err := s.store.GetBracket(ctx, id)
	if err != nil {
		return nil, err
	}

	iterations := in.Iterations
	if iterations == 0 {
		iterations = s.simulationIterations
	}
	seed := rand.Uint64()
	if in.Seed != nil {
		seed = *in.Seed
	}

	result, err := Simulate(ctx, b, iterations, seed)
	if err != nil {
		return nil, err
	}
	s.log.Debug("bracket simulated", zap.String("bracket_id", id.String()), zap.Int("iterations", iterations))
	return result, nil
}
