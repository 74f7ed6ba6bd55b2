package bracket

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	BracketDraft     Status = "DRAFT"
	BracketActive    Status = "ACTIVE"
	BracketCompleted Status = "COMPLETED"
)

type Type string

const (
	SingleElimination Type = "SINGLE_ELIMINATION"
	DoubleElimination Type = "DOUBLE_ELIMINATION"
)

// Bracket is the aggregate root. Games reference each other by id only.
type Bracket struct {
	ID             uuid.UUID     `json:"id"`
	TournamentID   string        `json:"tournamentId"`
	OrganizationID string        `json:"organizationId"`
	Type           Type          `json:"type"`
	Status         Status        `json:"status"`
	Teams          []Team        `json:"teams"`
	Games          []Match       `json:"games"`
	Rounds         int           `json:"rounds"`
	Configuration  Configuration `json:"configuration"`

	WinnerID     *string `json:"winnerId"`
	RunnerUpID   *string `json:"runnerUpId"`
	ThirdPlaceID *string `json:"thirdPlaceId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Bracket) Game(id uuid.UUID) *Match {
	for i := range b.Games {
		if b.Games[i].ID == id {
			return &b.Games[i]
		}
	}
	return nil
}

func (b *Bracket) Team(id string) *Team {
	for i := range b.Teams {
		if b.Teams[i].ID == id {
			return &b.Teams[i]
		}
	}
	return nil
}

// RoundGames returns the regular games of a round ordered by position.
func (b *Bracket) RoundGames(round int) []*Match {
	var games []*Match
	for i := range b.Games {
		if b.Games[i].Round == round && !b.Games[i].ThirdPlaceGame {
			games = append(games, &b.Games[i])
		}
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].Position < games[j].Position
	})
	return games
}

func (b *Bracket) FinalGame() *Match {
	finals := b.RoundGames(b.Rounds)
	if len(finals) != 1 {
		return nil
	}
	return finals[0]
}

func (b *Bracket) ThirdPlaceGame() *Match {
	for i := range b.Games {
		if b.Games[i].ThirdPlaceGame {
			return &b.Games[i]
		}
	}
	return nil
}

// Resolvable reports whether every prerequisite of m is satisfied: a seed, or a
// completed source game with a decided result.
func (b *Bracket) Resolvable(m *Match) bool {
	return b.sourceResolved(m.HomeTeamSource) && b.sourceResolved(m.AwayTeamSource)
}

func (b *Bracket) sourceResolved(source string) bool {
	id, err := uuid.Parse(source)
	if err != nil {
		// seed-N
		return source != ""
	}
	src := b.Game(id)
	return src != nil && src.Status == MatchCompleted && src.WinnerID != nil
}

// SortedGames returns the games in (round, position) order, third place last.
func (b *Bracket) SortedGames() []*Match {
	games := make([]*Match, 0, len(b.Games))
	for i := range b.Games {
		games = append(games, &b.Games[i])
	}
	sort.SliceStable(games, func(i, j int) bool {
		if games[i].ThirdPlaceGame != games[j].ThirdPlaceGame {
			return !games[i].ThirdPlaceGame
		}
		if games[i].Round != games[j].Round {
			return games[i].Round < games[j].Round
		}
		return games[i].Position < games[j].Position
	})
	return games
}

func (b *Bracket) Clone() *Bracket {
	c := *b
	c.Teams = append([]Team(nil), b.Teams...)
	c.Games = make([]Match, len(b.Games))
	for i := range b.Games {
		c.Games[i] = b.Games[i].clone()
	}
	c.Configuration = b.Configuration.clone()
	c.WinnerID = clonePtr(b.WinnerID)
	c.RunnerUpID = clonePtr(b.RunnerUpID)
	c.ThirdPlaceID = clonePtr(b.ThirdPlaceID)
	return &c
}
