package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AdamBeresnev/bracket-scheduler/internal/bracket"
	"github.com/AdamBeresnev/bracket-scheduler/internal/utils"
	"github.com/google/uuid"
)

type ConflictType string

const (
	VenueDoubleBooking   ConflictType = "VENUE_DOUBLE_BOOKING"
	TeamDoubleBooking    ConflictType = "TEAM_DOUBLE_BOOKING"
	VenueBufferViolation ConflictType = "VENUE_BUFFER_VIOLATION"
)

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
)

var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityWarning:  1,
}

type Conflict struct {
	Type                ConflictType `json:"type"`
	Severity            Severity     `json:"severity"`
	GameIDs             []uuid.UUID  `json:"gameIds"`
	VenueID             string       `json:"venueId,omitempty"`
	TeamIDs             []string     `json:"teamIds,omitempty"`
	Description         string       `json:"description"`
	SuggestedResolution string       `json:"suggestedResolution"`
}

type ConflictReport struct {
	HasConflicts bool       `json:"hasConflicts"`
	Conflicts    []Conflict `json:"conflicts"`
}

// DetectConflicts reports venue and team double bookings among scheduled games.
func DetectConflicts(b *bracket.Bracket) ConflictReport {
	duration := b.Configuration.GameDuration()
	buffer := b.Configuration.Buffer()

	var games []*bracket.Match
	for _, m := range b.SortedGames() {
		if m.IsScheduled() && m.Status != bracket.MatchCancelled {
			games = append(games, m)
		}
	}
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].ScheduledTime.Before(*games[j].ScheduledTime)
	})

	conflicts := []Conflict{}
	for i := 0; i < len(games); i++ {
		for j := i + 1; j < len(games); j++ {
			a, c := games[i], games[j]
			aStart, cStart := *a.ScheduledTime, *c.ScheduledTime
			aEnd, cEnd := aStart.Add(duration), cStart.Add(duration)
			overlap := aStart.Before(cEnd) && cStart.Before(aEnd)

			if utils.OrZero(a.VenueID) == utils.OrZero(c.VenueID) {
				if overlap {
					conflicts = append(conflicts, venueConflict(a, c))
				} else if gap := cStart.Sub(aEnd); buffer > 0 && gap < buffer {
					conflicts = append(conflicts, bufferConflict(a, c, gap, buffer))
				}
			}

			if overlap {
				if shared := sharedTeams(a, c); len(shared) > 0 {
					conflicts = append(conflicts, teamConflict(a, c, shared))
				}
			}
		}
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return severityRank[conflicts[i].Severity] < severityRank[conflicts[j].Severity]
	})

	return ConflictReport{
		HasConflicts: len(conflicts) > 0,
		Conflicts:    conflicts,
	}
}

func venueConflict(a, c *bracket.Match) Conflict {
	return Conflict{
		Type:     VenueDoubleBooking,
		Severity: SeverityCritical,
		GameIDs:  []uuid.UUID{a.ID, c.ID},
		VenueID:  *a.VenueID,
		Description: fmt.Sprintf("Venue %s is double-booked: game %d at %s overlaps game %d at %s",
			*a.VenueID, a.GameNumber, a.ScheduledTime.Format(time.RFC3339), c.GameNumber, c.ScheduledTime.Format(time.RFC3339)),
		SuggestedResolution: fmt.Sprintf("Move game %d to another venue or to a time after game %d ends", c.GameNumber, a.GameNumber),
	}
}

func bufferConflict(a, c *bracket.Match, gap, buffer time.Duration) Conflict {
	return Conflict{
		Type:     VenueBufferViolation,
		Severity: SeverityWarning,
		GameIDs:  []uuid.UUID{a.ID, c.ID},
		VenueID:  *a.VenueID,
		Description: fmt.Sprintf("Venue %s has only %s between game %d and game %d, %s required",
			*a.VenueID, gap, a.GameNumber, c.GameNumber, buffer),
		SuggestedResolution: fmt.Sprintf("Start game %d at least %s after game %d ends", c.GameNumber, buffer, a.GameNumber),
	}
}

func teamConflict(a, c *bracket.Match, shared []string) Conflict {
	return Conflict{
		Type:     TeamDoubleBooking,
		Severity: SeverityCritical,
		GameIDs:  []uuid.UUID{a.ID, c.ID},
		TeamIDs:  shared,
		Description: fmt.Sprintf("Team(s) %s play overlapping games %d and %d",
			strings.Join(shared, ", "), a.GameNumber, c.GameNumber),
		SuggestedResolution: fmt.Sprintf("Reschedule game %d so it starts after game %d ends", c.GameNumber, a.GameNumber),
	}
}
