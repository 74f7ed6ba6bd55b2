package bracket

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	MinTeams = 4
	MaxTeams = 32

	DateLayout      = "2006-01-02"
	TimeOfDayLayout = "15:04"
)

// Configuration is the scheduling policy a bracket was created with.
type Configuration struct {
	EliminationType        Type     `json:"eliminationType"`
	TeamCount              int      `json:"teamCount"`
	IncludeThirdPlaceMatch bool     `json:"includeThirdPlaceMatch"`
	SeedFromStandings      bool     `json:"seedFromStandings"`
	Timezone               string   `json:"timezone"`
	TournamentName         string   `json:"tournamentName"`
	VenueIDs               []string `json:"venueIds"`
	StartDate              string   `json:"startDate"`
	GameDurationMinutes    int      `json:"gameDurationMinutes"`
	BufferMinutes          int      `json:"bufferMinutes"`
	PreferredTimes         []string `json:"preferredTimes"`
	PreferredDays          []string `json:"preferredDays"`
}

type TimeOfDay struct {
	Hour   int
	Minute int
}

func (c Configuration) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrConfiguration, c.Timezone)
	}
	return loc, nil
}

// StartDay is midnight of the start date in loc.
func (c Configuration) StartDay(loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, c.StartDate, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: start date %q must be formatted as YYYY-MM-DD", ErrConfiguration, c.StartDate)
	}
	return d, nil
}

func (c Configuration) TimesOfDay() ([]TimeOfDay, error) {
	times := make([]TimeOfDay, 0, len(c.PreferredTimes))
	for _, raw := range c.PreferredTimes {
		t, err := time.Parse(TimeOfDayLayout, strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: preferred time %q must be formatted as HH:MM", ErrConfiguration, raw)
		}
		times = append(times, TimeOfDay{Hour: t.Hour(), Minute: t.Minute()})
	}
	return times, nil
}

func (c Configuration) Weekdays() (map[time.Weekday]bool, error) {
	days := make(map[time.Weekday]bool, len(c.PreferredDays))
	for _, raw := range c.PreferredDays {
		day, ok := parseWeekday(raw)
		if !ok {
			return nil, fmt.Errorf("%w: unknown preferred day %q", ErrConfiguration, raw)
		}
		days[day] = true
	}
	return days, nil
}

func (c Configuration) GameDuration() time.Duration {
	return time.Duration(c.GameDurationMinutes) * time.Minute
}

func (c Configuration) Buffer() time.Duration {
	return time.Duration(c.BufferMinutes) * time.Minute
}

func parseWeekday(raw string) (time.Weekday, bool) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToUpper(d.String()) == name {
			return d, true
		}
	}
	return time.Sunday, false
}

// Validate checks the configuration against the number of teams being entered.
func (c Configuration) Validate(teamCount int, now time.Time) error {
	if c.EliminationType == DoubleElimination {
		return fmt.Errorf("%w: double elimination is not implemented", ErrConfiguration)
	}
	if c.EliminationType != SingleElimination {
		return fmt.Errorf("%w: unknown elimination type %q", ErrConfiguration, c.EliminationType)
	}
	if c.TeamCount != 0 && c.TeamCount != teamCount {
		return fmt.Errorf("%w: teamCount is %d but %d teams were provided", ErrConfiguration, c.TeamCount, teamCount)
	}
	if teamCount < MinTeams || teamCount > MaxTeams {
		return fmt.Errorf("%w: team count must be between %d and %d, got %d", ErrConfiguration, MinTeams, MaxTeams, teamCount)
	}
	if teamCount&(teamCount-1) != 0 {
		return fmt.Errorf("%w: single elimination needs a power of two teams, got %d", ErrConfiguration, teamCount)
	}
	if c.GameDurationMinutes <= 0 {
		return fmt.Errorf("%w: game duration must be positive", ErrConfiguration)
	}
	if c.BufferMinutes < 0 {
		return fmt.Errorf("%w: buffer cannot be negative", ErrConfiguration)
	}
	return c.ValidateSchedule(now)
}

// ValidateSchedule covers the fields a reschedule is allowed to replace.
func (c Configuration) ValidateSchedule(now time.Time) error {
	if len(c.VenueIDs) == 0 {
		return fmt.Errorf("%w: at least one venue is required", ErrConfiguration)
	}
	for _, v := range c.VenueIDs {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: venue ids cannot be blank", ErrConfiguration)
		}
	}
	if len(c.PreferredTimes) == 0 {
		return fmt.Errorf("%w: at least one preferred time is required", ErrConfiguration)
	}
	if len(c.PreferredDays) == 0 {
		return fmt.Errorf("%w: at least one preferred day is required", ErrConfiguration)
	}
	if _, err := c.TimesOfDay(); err != nil {
		return err
	}
	if _, err := c.Weekdays(); err != nil {
		return err
	}
	loc, err := c.Location()
	if err != nil {
		return err
	}
	start, err := c.StartDay(loc)
	if err != nil {
		return err
	}
	if !start.After(now) {
		return fmt.Errorf("%w: start date %s is not in the future", ErrConfiguration, c.StartDate)
	}
	return nil
}

func (c Configuration) clone() Configuration {
	out := c
	out.VenueIDs = append([]string(nil), c.VenueIDs...)
	out.PreferredTimes = append([]string(nil), c.PreferredTimes...)
	out.PreferredDays = append([]string(nil), c.PreferredDays...)
	return out
}
