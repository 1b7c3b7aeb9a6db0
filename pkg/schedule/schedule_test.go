package schedule

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, expr string) cron.Schedule {
	sched, err := cron.ParseStandard(expr)
	require.NoError(t, err)
	return sched
}

func TestPlan_DailyShow(t *testing.T) {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	require.NoError(t, err)

	sched := mustParse(t, "0 22 * * *")
	last := time.Date(2024, 3, 1, 22, 0, 0, 0, loc)
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, loc)

	plan := Planner{Border: 3 * time.Minute}.Plan(sched, time.Hour, loc, last, now)

	require.Len(t, plan.Airings, 2)
	assert.False(t, plan.OnAir)
	assert.Equal(t, time.Date(2024, 3, 2, 22, 0, 0, 0, loc), plan.Airings[0].Start)
	assert.Equal(t, time.Date(2024, 3, 3, 22, 0, 0, 0, loc), plan.Airings[1].Start)
	assert.Equal(t, 63*time.Minute, plan.Airings[0].Duration)
	assert.Equal(t, loc, plan.Airings[0].Start.Location())
}

func TestPlan_StopsWhileOnAir(t *testing.T) {
	sched := mustParse(t, "0 10 * * *")
	last := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	// The 3rd airing started but has not finished, border included.
	now := time.Date(2024, 3, 3, 11, 1, 0, 0, time.UTC)
	plan := Planner{Border: 3 * time.Minute}.Plan(sched, time.Hour, time.UTC, last, now)

	require.Len(t, plan.Airings, 1)
	assert.Equal(t, 2, plan.Airings[0].Start.Day())
	assert.True(t, plan.OnAir)
}

func TestPlan_NothingDue(t *testing.T) {
	sched := mustParse(t, "0 10 * * 1")
	last := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC) // a Monday
	now := last.Add(48 * time.Hour)

	plan := Planner{}.Plan(sched, time.Hour, time.UTC, last, now)
	assert.Empty(t, plan.Airings)
	assert.False(t, plan.OnAir)
}

func TestPlan_ConvertsToShowTimezone(t *testing.T) {
	loc := time.FixedZone("-03", -3*3600)
	sched := mustParse(t, "0 22 * * *")

	// 2024-03-02 01:00 UTC is 22:00 local on the 1st.
	last := time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)

	plan := Planner{}.Plan(sched, time.Hour, loc, last, now)
	require.Len(t, plan.Airings, 1)
	assert.True(t, plan.Airings[0].Start.Equal(time.Date(2024, 3, 3, 1, 0, 0, 0, time.UTC)))
}
