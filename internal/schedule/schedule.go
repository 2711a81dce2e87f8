// Package schedule places a training plan on the calendar.
package schedule

import (
	"fmt"
	"time"
)

// WeekStart is the first day of every training week.
const WeekStart = time.Monday

// Window is the span a plan covers.
type Window struct {
	Start time.Time `json:"start_date"`
	Weeks int       `json:"weeks"`
	// RemainingWeeks is the whole weeks actually left before the event.
	RemainingWeeks int `json:"remaining_weeks"`
	// StartsInPast is set when the event is too close for the minimum
	// plan length and Start was anchored back from the event date.
	StartsInPast bool `json:"starts_in_past"`
}

// End is the day after the final training week.
func (w Window) End() time.Time {
	return w.Start.AddDate(0, 0, 7*w.Weeks)
}

// Shortened reports whether fewer weeks remain than the plan covers.
func (w Window) Shortened() bool { return w.RemainingWeeks < w.Weeks }

// TrainingWindow chooses the plan start and length for an event.
//
// With at least minWeeks whole weeks left, the plan starts today if today is
// a Monday, otherwise next Monday, and runs for the weeks left. With fewer,
// the plan runs minWeeks and starts on the Monday on or before
// event - minWeeks, which is earlier than now.
//
// minWeeks < 1 panics.
func TrainingWindow(event, now time.Time, minWeeks int) Window {
	if minWeeks < 1 {
		panic(fmt.Sprintf("schedule: minimum weeks must be at least 1, got %d", minWeeks))
	}
	weeks := floorDiv(daysBetween(now, event), 7)

	today := midnight(now)
	w := Window{RemainingWeeks: weeks}
	if weeks < minWeeks {
		anchor := midnight(event).AddDate(0, 0, -7*minWeeks)
		w.Start = mondayOnOrBefore(anchor)
		w.Weeks = minWeeks
	} else {
		w.Start = mondayOnOrAfter(today)
		w.Weeks = weeks
	}
	w.StartsInPast = w.Start.Before(today)
	return w
}

// daysBetween counts calendar days from from's date to to's date. Clock time
// and DST shifts do not change the count.
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func mondayOnOrBefore(t time.Time) time.Time {
	back := (int(t.Weekday()) - int(WeekStart) + 7) % 7
	return t.AddDate(0, 0, -back)
}

func mondayOnOrAfter(t time.Time) time.Time {
	ahead := (int(WeekStart) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, ahead)
}
