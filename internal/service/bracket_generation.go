package service

import (
	"math"

	"github.com/AdamBeresnev/bracket-scheduler/internal/bracket"
	"github.com/google/uuid"
)

// Rounds needed for count teams, so with input 5 it returns 3 and so on
func calcRounds(count int) int {
	if count <= 1 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(count))))
}

// Best remaining seed plays worst remaining seed, indices are 0-based
func generateRound1Pairs(teamCount int) [][2]int {
	pairs := make([][2]int, 0, teamCount/2)
	for i := 0; i < teamCount/2; i++ {
		pairs = append(pairs, [2]int{i, teamCount - 1 - i})
	}
	return pairs
}

// GenerateSingleElimBracket builds every game of the bracket, linked but unscheduled.
// teams must already be in seed order.
func GenerateSingleElimBracket(bracketID uuid.UUID, teams []bracket.Team, includeThirdPlace bool) (int, []bracket.Match) {
	totalRounds := calcRounds(len(teams))
	gameNumber := 0

	newGame := func(round, position int) bracket.Match {
		gameNumber++
		return bracket.Match{
			ID:         uuid.New(),
			BracketID:  bracketID,
			GameNumber: gameNumber,
			Round:      round,
			Position:   position,
			Status:     bracket.MatchPending,
		}
	}

	var matches []bracket.Match
	for i, pair := range generateRound1Pairs(len(teams)) {
		home, away := teams[pair[0]], teams[pair[1]]
		m := newGame(1, i)
		m.HomeTeamID = &home.ID
		m.AwayTeamID = &away.ID
		m.HomeTeamSource = bracket.SeedSource(home.Seed)
		m.AwayTeamSource = bracket.SeedSource(away.Seed)
		matches = append(matches, m)
	}

	for r := 2; r <= totalRounds; r++ {
		matchesInRound := 1 << (totalRounds - r)
		for i := 0; i < matchesInRound; i++ {
			matches = append(matches, newGame(r, i))
		}
	}

	if includeThirdPlace && totalRounds > 1 {
		m := newGame(totalRounds, bracket.ThirdPlacePosition)
		m.ThirdPlaceGame = true
		matches = append(matches, m)
	}

	linkRounds(matches, totalRounds)
	return totalRounds, matches
}

func linkRounds(matches []bracket.Match, totalRounds int) {
	byRound := make(map[int][]*bracket.Match)
	var thirdPlace *bracket.Match
	for i := range matches {
		m := &matches[i]
		if m.ThirdPlaceGame {
			thirdPlace = m
			continue
		}
		byRound[m.Round] = append(byRound[m.Round], m)
	}

	for r := 1; r < totalRounds; r++ {
		for _, m := range byRound[r] {
			parent := byRound[r+1][m.Position/2]
			parentID := parent.ID
			m.NextGameID = &parentID

			if m.Position%2 == 0 {
				parent.HomeTeamSource = m.ID.String()
			} else {
				parent.AwayTeamSource = m.ID.String()
			}
		}
	}

	// Third place takes the semifinal losers, so it is not anyone's next game
	if thirdPlace != nil {
		semis := byRound[totalRounds-1]
		thirdPlace.HomeTeamSource = semis[0].ID.String()
		thirdPlace.AwayTeamSource = semis[1].ID.String()
	}
}
