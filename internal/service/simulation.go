package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sort"

	"github.com/AdamBeresnev/bracket-scheduler/internal/bracket"
	"golang.org/x/sync/errgroup"
)

const MaxSimulationIterations = 100000

type TeamOdds struct {
	TeamID       string  `json:"teamId"`
	Name         string  `json:"name"`
	Seed         int     `json:"seed"`
	ReachFinal   float64 `json:"reachFinal"`
	Championship float64 `json:"championship"`
}

type SimulationResult struct {
	Iterations int        `json:"iterations"`
	Teams      []TeamOdds `json:"teams"`
}

type tally struct {
	finals   map[string]int
	champion map[string]int
}

func newTally() *tally {
	return &tally{finals: make(map[string]int), champion: make(map[string]int)}
}

// Simulate plays out every undecided game iterations times and reports how
// often each team reaches and wins the final. b is never modified.
func Simulate(ctx context.Context, b *bracket.Bracket, iterations int, seed uint64) (*SimulationResult, error) {
	if iterations <= 0 || iterations > MaxSimulationIterations {
		return nil, fmt.Errorf("%w: iterations must be between 1 and %d", bracket.ErrConfiguration, MaxSimulationIterations)
	}

	workers := min(runtime.GOMAXPROCS(0), iterations)
	tallies := make([]*tally, workers)

	// Each iteration draws from its own stream so results depend only on seed
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		t := newTally()
		tallies[w] = t

		g.Go(func() error {
			for i := w; i < iterations; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				rng := rand.New(rand.NewPCG(seed, uint64(i)))
				if err := playOut(b.Clone(), rng, t); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := newTally()
	for _, t := range tallies {
		for id, n := range t.finals {
			total.finals[id] += n
		}
		for id, n := range t.champion {
			total.champion[id] += n
		}
	}

	result := &SimulationResult{Iterations: iterations}
	for _, team := range b.Teams {
		result.Teams = append(result.Teams, TeamOdds{
			TeamID:       team.ID,
			Name:         team.Name,
			Seed:         team.Seed,
			ReachFinal:   float64(total.finals[team.ID]) / float64(iterations),
			Championship: float64(total.champion[team.ID]) / float64(iterations),
		})
	}
	sort.SliceStable(result.Teams, func(i, j int) bool {
		if result.Teams[i].Championship != result.Teams[j].Championship {
			return result.Teams[i].Championship > result.Teams[j].Championship
		}
		return result.Teams[i].Seed < result.Teams[j].Seed
	})
	return result, nil
}

func playOut(b *bracket.Bracket, rng *rand.Rand, t *tally) error {
	for _, m := range b.SortedGames() {
		if m.WinnerID != nil {
			continue
		}
		if !m.HasBothTeams() {
			return fmt.Errorf("%w: game %d has no opponents during simulation", bracket.ErrInvalidState, m.GameNumber)
		}

		home, away := b.Team(*m.HomeTeamID), b.Team(*m.AwayTeamID)
		winner, homeScore, awayScore := *m.AwayTeamID, 0, 1
		if rng.Float64() < winProbability(home, away) {
			winner, homeScore, awayScore = *m.HomeTeamID, 1, 0
		}

		m.Status = bracket.MatchCompleted
		if err := advance(b, m.ID, GameResult{WinnerID: winner, HomeScore: homeScore, AwayScore: awayScore}, nil); err != nil {
			return err
		}
	}

	final := b.FinalGame()
	if final == nil || b.WinnerID == nil {
		return fmt.Errorf("%w: simulated bracket did not finish", bracket.ErrInvalidState)
	}
	t.finals[*final.HomeTeamID]++
	t.finals[*final.AwayTeamID]++
	t.champion[*b.WinnerID]++
	return nil
}

// winProbability is the log5 estimate from win percentages smoothed towards .500.
func winProbability(home, away *bracket.Team) float64 {
	ph, pa := strength(home), strength(away)
	return ph * (1 - pa) / (ph*(1-pa) + pa*(1-ph))
}

func strength(t *bracket.Team) float64 {
	if t == nil {
		return 0.5
	}
	return float64(t.Wins+1) / float64(t.Wins+t.Losses+2)
}
