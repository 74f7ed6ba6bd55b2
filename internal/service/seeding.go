package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AdamBeresnev/bracket-scheduler/internal/bracket"
)

// SeedTeams returns a seed-ordered copy of teams. From standings, teams are
// ranked by win percentage and then point differential; otherwise the
// caller's seeds are kept and must be 1..N.
func SeedTeams(teams []bracket.Team, fromStandings bool) ([]bracket.Team, error) {
	seeded := make([]bracket.Team, len(teams))
	copy(seeded, teams)

	seen := make(map[string]bool, len(seeded))
	for _, t := range seeded {
		if strings.TrimSpace(t.ID) == "" {
			return nil, fmt.Errorf("%w: every team needs an id", bracket.ErrConfiguration)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("%w: duplicate team id %q", bracket.ErrConfiguration, t.ID)
		}
		seen[t.ID] = true
	}

	if fromStandings {
		sort.SliceStable(seeded, func(i, j int) bool {
			pi, pj := seeded[i].WinPercentage(), seeded[j].WinPercentage()
			if pi != pj {
				return pi > pj
			}
			return seeded[i].PointDifferential > seeded[j].PointDifferential
		})
		for i := range seeded {
			seeded[i].Seed = i + 1
		}
		return seeded, nil
	}

	sort.SliceStable(seeded, func(i, j int) bool {
		return seeded[i].Seed < seeded[j].Seed
	})
	for i, t := range seeded {
		if t.Seed != i+1 {
			return nil, fmt.Errorf("%w: manual seeds must run 1..%d without gaps, team %q has seed %d", bracket.ErrConfiguration, len(seeded), t.ID, t.Seed)
		}
	}
	return seeded, nil
}
