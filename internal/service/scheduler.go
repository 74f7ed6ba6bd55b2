package service

import (
	"time"

	"github.com/AdamBeresnev/bracket-scheduler/internal/bracket"
)

// How far ahead the incremental pass looks for a free slot before giving up.
const maxSchedulingDays = 366

type Scheduler struct {
	venues   []string
	times    []bracket.TimeOfDay
	days     map[time.Weekday]bool
	loc      *time.Location
	start    time.Time
	duration time.Duration
	buffer   time.Duration
}

func NewScheduler(cfg bracket.Configuration) (*Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	start, err := cfg.StartDay(loc)
	if err != nil {
		return nil, err
	}
	times, err := cfg.TimesOfDay()
	if err != nil {
		return nil, err
	}
	days, err := cfg.Weekdays()
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		venues:   cfg.VenueIDs,
		times:    times,
		days:     days,
		loc:      loc,
		start:    start,
		duration: cfg.GameDuration(),
		buffer:   cfg.Buffer(),
	}, nil
}

func (s *Scheduler) enabled() bool {
	return len(s.venues) > 0 && len(s.times) > 0 && len(s.days) > 0
}

func (s *Scheduler) at(day time.Time, tod bracket.TimeOfDay) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, tod.Hour, tod.Minute, 0, 0, s.loc)
}

func (s *Scheduler) nextDay(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, s.loc)
}

func (s *Scheduler) dayOf(t time.Time) time.Time {
	y, m, d := t.In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

// nextPlayableDay returns day itself when it is a preferred day.
func (s *Scheduler) nextPlayableDay(day time.Time) time.Time {
	for i := 0; i < 7; i++ {
		if s.days[day.Weekday()] {
			return day
		}
		day = s.nextDay(day)
	}
	return day
}

func assign(m *bracket.Match, start time.Time, venue string) {
	start = start.UTC()
	m.ScheduledTime = &start
	m.VenueID = &venue
	m.Status = bracket.MatchScheduled
}

// ScheduleInitial packs the pending round 1 games into slates of up to one game
// per venue, walking venues, then preferred times, then preferred days. Slots
// still held by games that already started are skipped.
func (s *Scheduler) ScheduleInitial(b *bracket.Bracket) int {
	if !s.enabled() {
		return 0
	}

	day := s.start
	timeIdx, venueIdx := 0, 0
	var slate, prevSlate time.Time
	scheduled := 0
	maxSlots := len(s.venues) * len(s.times) * maxSchedulingDays

	for _, m := range b.RoundGames(1) {
		if m.Status != bracket.MatchPending || !m.HasBothTeams() {
			continue
		}

		for tried := 0; tried < maxSlots; tried++ {
			if venueIdx == 0 {
				day = s.nextPlayableDay(day)
				slate = s.at(day, s.times[timeIdx])
				// Consecutive slates reuse the same venues
				if !prevSlate.IsZero() {
					if earliest := prevSlate.Add(s.duration + s.buffer); slate.Before(earliest) {
						slate = earliest
					}
				}
				prevSlate = slate
			}
			venue := s.venues[venueIdx]

			venueIdx++
			if venueIdx == len(s.venues) {
				venueIdx = 0
				timeIdx++
				if timeIdx == len(s.times) {
					timeIdx = 0
					day = s.nextDay(day)
				}
			}

			if s.fits(b, m, slate, venue) {
				assign(m, slate, venue)
				scheduled++
				break
			}
		}
	}
	return scheduled
}

// ScheduleNextRoundGame places a game whose participants just became known at
// least a day after the latest completed game of the previous round. Venue 0 at
// the first preferred time is tried first; occupied slots fall through to the
// next venue, time and day.
func (s *Scheduler) ScheduleNextRoundGame(b *bracket.Bracket, m *bracket.Match) bool {
	if !s.enabled() || !m.HasBothTeams() {
		return false
	}

	var latest time.Time
	for _, prev := range b.RoundGames(m.Round - 1) {
		if prev.Status == bracket.MatchCompleted && prev.ScheduledTime != nil && prev.ScheduledTime.After(latest) {
			latest = *prev.ScheduledTime
		}
	}

	day := s.start
	if !latest.IsZero() {
		if after := s.nextDay(s.dayOf(latest)); after.After(day) {
			day = after
		}
	}

	for i := 0; i < maxSchedulingDays; i++ {
		day = s.nextPlayableDay(day)
		for _, tod := range s.times {
			start := s.at(day, tod)
			for _, venue := range s.venues {
				if s.fits(b, m, start, venue) {
					assign(m, start, venue)
					return true
				}
			}
		}
		day = s.nextDay(day)
	}
	return false
}

func (s *Scheduler) fits(b *bracket.Bracket, m *bracket.Match, start time.Time, venue string) bool {
	end := start.Add(s.duration)
	for i := range b.Games {
		other := &b.Games[i]
		if other.ID == m.ID || !other.IsScheduled() || other.Status == bracket.MatchCancelled {
			continue
		}
		otherStart := *other.ScheduledTime
		otherEnd := otherStart.Add(s.duration)

		if *other.VenueID == venue && start.Before(otherEnd.Add(s.buffer)) && otherStart.Before(end.Add(s.buffer)) {
			return false
		}
		if start.Before(otherEnd) && otherStart.Before(end) && sharesTeam(m, other) {
			return false
		}
	}
	return true
}

// Unschedule clears every game that has not started so it can be placed again.
func Unschedule(b *bracket.Bracket) {
	for i := range b.Games {
		m := &b.Games[i]
		if m.Status != bracket.MatchPending && m.Status != bracket.MatchScheduled {
			continue
		}
		m.ScheduledTime = nil
		m.VenueID = nil
		if m.Status == bracket.MatchScheduled {
			_ = m.Transition(bracket.MatchPending)
		}
	}
}

// ScheduleAll runs the initial pass for round 1 and the incremental pass for
// every later game whose participants are known.
func (s *Scheduler) ScheduleAll(b *bracket.Bracket) int {
	scheduled := s.ScheduleInitial(b)
	for _, m := range b.SortedGames() {
		if m.Round == 1 || m.Status != bracket.MatchPending || !m.HasBothTeams() {
			continue
		}
		if s.ScheduleNextRoundGame(b, m) {
			scheduled++
		}
	}
	return scheduled
}

func sharesTeam(a, b *bracket.Match) bool {
	return len(sharedTeams(a, b)) > 0
}

func sharedTeams(a, b *bracket.Match) []string {
	var shared []string
	for _, id := range []*string{a.HomeTeamID, a.AwayTeamID} {
		if id != nil && b.HasTeam(*id) {
			shared = append(shared, *id)
		}
	}
	return shared
}
