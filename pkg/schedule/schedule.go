// Package schedule works out which airings of a show are ready to be recorded.
package schedule

import (
	"time"

	"github.com/robfig/cron/v3"
)

// Airing is one scheduled broadcast.
type Airing struct {
	Start    time.Time
	Duration time.Duration // scheduled length plus the border
}

// End is when the recording of the airing stops.
func (a Airing) End() time.Time {
	return a.Start.Add(a.Duration)
}

// Plan is the outcome of planning a show.
type Plan struct {
	Airings []Airing

	// OnAir is set when planning stopped at an airing that has not finished yet.
	OnAir bool
}

// Planner expands a cron schedule into finished airings.
type Planner struct {
	// Border extends every airing so late endings are not cut off.
	Border time.Duration
}

// Plan returns, in order, every airing after last whose recording window has
// ended by now. Times are evaluated in loc, so cron fields follow the show's
// wall clock including DST changes.
func (p Planner) Plan(sched cron.Schedule, duration time.Duration, loc *time.Location, last, now time.Time) Plan {
	if loc == nil {
		loc = time.UTC
	}
	var plan Plan

	next := last.In(loc)
	now = now.In(loc)
	for {
		next = sched.Next(next)
		if next.IsZero() || next.After(now) {
			return plan
		}

		airing := Airing{Start: next, Duration: duration + p.Border}
		if airing.End().After(now) {
			plan.OnAir = true
			return plan
		}
		plan.Airings = append(plan.Airings, airing)
	}
}
