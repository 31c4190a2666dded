package schedules

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DayProvider resolves the effective day for (doctor, date), or returns
// ErrNoRecord to let the next provider in the chain try.
type DayProvider interface {
	DayFor(ctx context.Context, doctorID, date string) (Day, error)
}

// repositoryProvider serves explicit schedule records verbatim. The
// explicit day-off flag always wins over the default weekday closure,
// even when the record's slot list is empty.
type repositoryProvider struct {
	repo Repository
}

func (p repositoryProvider) DayFor(ctx context.Context, doctorID, date string) (Day, error) {
	sched, err := p.repo.GetByDoctorDate(ctx, doctorID, date)
	if err != nil {
		return Day{}, err
	}
	if sched.IsDayOff {
		return Day{IsDayOff: true}, nil
	}
	return Day{Slots: append([]string(nil), sched.AvailableSlots...)}, nil
}

// defaultsProvider terminates the chain with the system defaults.
type defaultsProvider struct {
	defaults Defaults
}

func (p defaultsProvider) DayFor(ctx context.Context, doctorID, date string) (Day, error) {
	return p.defaults.DayFor(date)
}

// Source resolves effective day schedules through an ordered provider
// chain: explicit record first, system defaults last. The first provider
// that answers short-circuits the rest. An open day whose provider left
// the slot list empty borrows the default slots, in configured order.
type Source struct {
	providers []DayProvider
	defaults  Defaults
}

// NewSource builds the standard chain over a repository and defaults.
func NewSource(repo Repository, defaults Defaults) *Source {
	return &Source{
		providers: []DayProvider{
			repositoryProvider{repo: repo},
			defaultsProvider{defaults: defaults},
		},
		defaults: defaults,
	}
}

// NewSourceFromProviders builds a chain from explicit providers, for
// tests or alternative backends.
func NewSourceFromProviders(defaults Defaults, providers ...DayProvider) *Source {
	return &Source{providers: providers, defaults: defaults}
}

// EffectiveDay returns the day-off flag and base slot list for
// (doctor, date) after the fallback chain is applied.
func (s *Source) EffectiveDay(ctx context.Context, doctorID, date string) (Day, error) {
	for _, p := range s.providers {
		day, err := p.DayFor(ctx, doctorID, date)
		if err != nil {
			if errors.Is(err, ErrNoRecord) {
				continue
			}
			return Day{}, fmt.Errorf("schedules: resolve day: %w", err)
		}
		if !day.IsDayOff && len(day.Slots) == 0 {
			day.Slots = append([]string(nil), s.defaults.Slots...)
		}
		return day, nil
	}
	return Day{}, ErrNoRecord
}

// DefaultWindowDays is the size of the schedule editor's upcoming
// window.
const DefaultWindowDays = 14

// DayView pairs a calendar date with its effective day for the editor
// window.
type DayView struct {
	Date     string   `json:"date"`
	IsDayOff bool     `json:"isDayOff"`
	Slots    []string `json:"availableSlots"`
}

// Upcoming resolves the effective day for each date in a window of days
// starting at from. Explicit records and defaults are already merged, so
// the result is render-ready for the schedule editor.
func (s *Source) Upcoming(ctx context.Context, doctorID string, from time.Time, days int) ([]DayView, error) {
	if days <= 0 {
		days = DefaultWindowDays
	}
	window := make([]DayView, 0, days)
	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i).Format(DateLayout)
		day, err := s.EffectiveDay(ctx, doctorID, date)
		if err != nil {
			return nil, err
		}
		window = append(window, DayView{Date: date, IsDayOff: day.IsDayOff, Slots: day.Slots})
	}
	return window, nil
}

// IsDayOff reports whether (doctor, date) accepts no appointments.
func (s *Source) IsDayOff(ctx context.Context, doctorID, date string) (bool, error) {
	day, err := s.EffectiveDay(ctx, doctorID, date)
	if err != nil {
		return false, err
	}
	return day.IsDayOff, nil
}
