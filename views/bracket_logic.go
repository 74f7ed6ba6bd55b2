package views

import (
	"fmt"
	"sort"
	"time"

	"github.com/AdamBeresnev/bracket-scheduler/internal/bracket"
	"github.com/google/uuid"
)

const ThirdPlaceRoundName = "Third Place"

type TeamView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Seed int    `json:"seed"`
}

type GameView struct {
	ID            uuid.UUID           `json:"id"`
	GameNumber    int                 `json:"gameNumber"`
	HomeTeam      *TeamView           `json:"homeTeam"`
	AwayTeam      *TeamView           `json:"awayTeam"`
	Winner        *TeamView           `json:"winner"`
	HomeScore     *int                `json:"homeScore"`
	AwayScore     *int                `json:"awayScore"`
	ScheduledTime *time.Time          `json:"scheduledTime"`
	Status        bracket.MatchStatus `json:"status"`
}

type RoundView struct {
	Round int        `json:"round"`
	Name  string     `json:"name"`
	Games []GameView `json:"games"`
}

type BracketView struct {
	BracketID uuid.UUID      `json:"bracketId"`
	Status    bracket.Status `json:"status"`
	Rounds    []RoundView    `json:"rounds"`
}

// PrepareBracketData groups the games by round for display. The third place
// game, if any, comes last as its own round numbered one past the final.
func PrepareBracketData(b *bracket.Bracket) BracketView {
	teamMap := make(map[string]bracket.Team, len(b.Teams))
	for _, t := range b.Teams {
		teamMap[t.ID] = t
	}

	rounds := make(map[int][]GameView)
	var roundNums []int
	var thirdPlace *GameView

	for i := range b.Games {
		m := &b.Games[i]
		g := gameView(m, teamMap)
		if m.ThirdPlaceGame {
			thirdPlace = &g
			continue
		}
		if _, exists := rounds[m.Round]; !exists {
			roundNums = append(roundNums, m.Round)
		}
		rounds[m.Round] = append(rounds[m.Round], g)
	}

	sort.Ints(roundNums)
	positions := make(map[uuid.UUID]int, len(b.Games))
	for _, m := range b.Games {
		positions[m.ID] = m.Position
	}

	view := BracketView{BracketID: b.ID, Status: b.Status, Rounds: []RoundView{}}
	for _, r := range roundNums {
		games := rounds[r]
		sort.Slice(games, func(i, j int) bool {
			return positions[games[i].ID] < positions[games[j].ID]
		})
		view.Rounds = append(view.Rounds, RoundView{Round: r, Name: RoundName(r, b.Rounds), Games: games})
	}
	if thirdPlace != nil {
		view.Rounds = append(view.Rounds, RoundView{Round: b.Rounds + 1, Name: ThirdPlaceRoundName, Games: []GameView{*thirdPlace}})
	}
	return view
}

func RoundName(round, totalRounds int) string {
	switch round {
	case totalRounds:
		return "Championship"
	case totalRounds - 1:
		return "Semifinals"
	case totalRounds - 2:
		return "Quarterfinals"
	case 1:
		return "First Round"
	default:
		return fmt.Sprintf("Round %d", round)
	}
}

func gameView(m *bracket.Match, teams map[string]bracket.Team) GameView {
	return GameView{
		ID:            m.ID,
		GameNumber:    m.GameNumber,
		HomeTeam:      teamView(m.HomeTeamID, teams),
		AwayTeam:      teamView(m.AwayTeamID, teams),
		Winner:        teamView(m.WinnerID, teams),
		HomeScore:     m.HomeScore,
		AwayScore:     m.AwayScore,
		ScheduledTime: m.ScheduledTime,
		Status:        m.Status,
	}
}

func teamView(id *string, teams map[string]bracket.Team) *TeamView {
	if id == nil {
		return nil
	}
	t, ok := teams[*id]
	if !ok {
		return &TeamView{ID: *id}
	}
	return &TeamView{ID: t.ID, Name: t.Name, Seed: t.Seed}
}
