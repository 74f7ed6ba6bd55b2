package service

import (
	"testing"

	"github.com/AdamBeresnev/bracket-scheduler/internal/bracket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedTeams_FromStandings(t *testing.T) {
	teams := []bracket.Team{
		{ID: "a", Wins: 5, Losses: 5, PointDifferential: 10},
		{ID: "b", Wins: 9, Losses: 1},
		{ID: "c", Wins: 5, Losses: 5, PointDifferential: 30},
		{ID: "d", Wins: 0, Losses: 0},
	}

	seeded, err := SeedTeams(teams, true)
	require.NoError(t, err)

	var ids []string
	for i, team := range seeded {
		ids = append(ids, team.ID)
		assert.Equal(t, i+1, team.Seed)
	}
	assert.Equal(t, []string{"b", "c", "a", "d"}, ids)
	assert.Zero(t, teams[0].Seed, "input is not modified")
}

func TestSeedTeams_StandingsTieKeepsInputOrder(t *testing.T) {
	teams := []bracket.Team{
		{ID: "x", Wins: 3, Losses: 1, PointDifferential: 4},
		{ID: "y", Wins: 3, Losses: 1, PointDifferential: 4},
	}

	seeded, err := SeedTeams(teams, true)
	require.NoError(t, err)
	assert.Equal(t, "x", seeded[0].ID)
	assert.Equal(t, "y", seeded[1].ID)
}

func TestSeedTeams_Manual(t *testing.T) {
	teams := []bracket.Team{
		{ID: "a", Seed: 3},
		{ID: "b", Seed: 1},
		{ID: "c", Seed: 4},
		{ID: "d", Seed: 2},
	}

	seeded, err := SeedTeams(teams, false)
	require.NoError(t, err)

	var ids []string
	for _, team := range seeded {
		ids = append(ids, team.ID)
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)
}

func TestSeedTeams_Invalid(t *testing.T) {
	testCases := []struct {
		name  string
		teams []bracket.Team
	}{
		{name: "gap in seeds", teams: []bracket.Team{{ID: "a", Seed: 1}, {ID: "b", Seed: 3}}},
		{name: "duplicate seed", teams: []bracket.Team{{ID: "a", Seed: 1}, {ID: "b", Seed: 1}}},
		{name: "missing seeds", teams: []bracket.Team{{ID: "a"}, {ID: "b"}}},
		{name: "duplicate id", teams: []bracket.Team{{ID: "a", Seed: 1}, {ID: "a", Seed: 2}}},
		{name: "blank id", teams: []bracket.Team{{ID: " ", Seed: 1}, {ID: "b", Seed: 2}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SeedTeams(tc.teams, false)
			assert.ErrorIs(t, err, bracket.ErrConfiguration)
		})
	}
}
