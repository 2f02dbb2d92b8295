package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"studyjourney/backend/models"
	"studyjourney/backend/store"
)

// fetchLimit caps concurrent day fetches for the larger windows (a
// six-month load touches ~180 documents).
const fetchLimit = 16

const partialLoadWarning = "some study data could not be loaded"

var dayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var monthLabels = [6]string{"5 months ago", "4 months ago", "3 months ago", "2 months ago", "last month", "current month"}

// dayData is one resolved day of a window. A failed fetch stays all
// zero and only raises the partial-load warning; a single bad day never
// fails the whole aggregation.
type dayData struct {
	study    int
	brk      int
	sessions int
	failed   bool
}

// Aggregator reduces windows of daily study records into period
// statistics. Per-day fetches fan out concurrently and the reduction
// runs exactly once after every slot has resolved; a per-user
// generation counter makes sure a stale load that finishes after a
// newer one never overwrites the latest result.
type Aggregator struct {
	gateway store.Gateway
	logger  *log.Logger
	streaks *StreakCalculator
	now     func() time.Time

	mu      sync.Mutex
	gen     map[string]uint64
	applied map[string]uint64
	latest  map[string]models.PeriodStatistics
}

func NewAggregator(gateway store.Gateway, logger *log.Logger) *Aggregator {
	return &Aggregator{
		gateway: gateway,
		logger:  logger,
		streaks: NewStreakCalculator(gateway),
		now:     time.Now,
		gen:     make(map[string]uint64),
		applied: make(map[string]uint64),
		latest:  make(map[string]models.PeriodStatistics),
	}
}

// Latest returns the most recent completed statistics for the user, or
// the empty state if nothing has loaded yet.
func (a *Aggregator) Latest(userID string) models.PeriodStatistics {
	a.mu.Lock()
	defer a.mu.Unlock()

	if stats, ok := a.latest[userID]; ok {
		return stats
	}
	return models.EmptyPeriodStatistics()
}

// Load computes the statistics for one period window and fills in the
// current streak for the requested filter dimension.
func (a *Aggregator) Load(ctx context.Context, userID string, period models.Period, filter models.Filter) models.PeriodStatistics {
	a.mu.Lock()
	a.gen[userID]++
	gen := a.gen[userID]
	a.mu.Unlock()

	var stats models.PeriodStatistics
	switch period {
	case models.PeriodWeekly:
		stats = a.loadWeekly(ctx, userID)
	case models.PeriodMonthly:
		stats = a.loadMonthly(ctx, userID)
	default:
		stats = a.loadDaily(ctx, userID)
	}

	stats.CurrentStreak = a.streaks.Current(ctx, userID, filter)

	a.mu.Lock()
	if gen > a.applied[userID] {
		a.applied[userID] = gen
		a.latest[userID] = stats
	}
	a.mu.Unlock()

	return stats
}

// fetchDay resolves one date, fail-soft: a read miss is an all-zero
// day, a gateway failure an all-zero day with the failed flag raised.
func (a *Aggregator) fetchDay(ctx context.Context, userID, date string) dayData {
	doc, err := a.gateway.Get(ctx, userID, store.CollectionStudyData, date)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return dayData{}
		}
		a.logger.Printf("failed to load study data for user %s date %s: %v", userID, date, err)
		return dayData{failed: true}
	}

	rec := models.StudyRecordFromDocument(doc)
	return dayData{
		study:    rec.ActiveStudyTime,
		brk:      rec.BreakTime,
		sessions: rec.SessionsCompleted,
	}
}

// startOfWeek returns Monday 00:00 of the week containing t. The week
// always starts on Monday regardless of locale.
func startOfWeek(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	monday := t.AddDate(0, 0, -(wd - 1))
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}

// loadDaily covers the current Monday..Sunday calendar week with one
// slot per day.
func (a *Aggregator) loadDaily(ctx context.Context, userID string) models.PeriodStatistics {
	weekStart := startOfWeek(a.now())
	weekEnd := weekStart.AddDate(0, 0, 6)

	days := make([]dayData, 7)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 7; i++ {
		i := i
		date := weekStart.AddDate(0, 0, i).Format(models.DateLayout)
		g.Go(func() error {
			days[i] = a.fetchDay(gctx, userID, date)
			return nil
		})
	}
	g.Wait()

	stats := models.EmptyPeriodStatistics()
	stats.DailyStudyTime = make([]int, 7)
	stats.DailyBreakTime = make([]int, 7)
	stats.DailyTotalTime = make([]int, 7)
	stats.DailySessions = make([]int, 7)

	partial := false
	for i, d := range days {
		stats.DailyStudyTime[i] = d.study
		stats.DailyBreakTime[i] = d.brk
		stats.DailyTotalTime[i] = d.study + d.brk
		stats.DailySessions[i] = d.sessions

		stats.TotalStudyTime += d.study
		stats.TotalBreakTime += d.brk
		stats.TotalSessions += d.sessions
		partial = partial || d.failed
	}
	stats.TotalTime = stats.TotalStudyTime + stats.TotalBreakTime

	stats.StudyGoalProgress = clampRatio(stats.TotalStudyTime, models.WeeklyStudyGoal)
	stats.BreakGoalProgress = clampRatio(stats.TotalBreakTime, models.WeeklyBreakGoal)
	stats.AverageStudyPerDay = float64(stats.TotalStudyTime) / 7
	stats.AverageBreakPerDay = float64(stats.TotalBreakTime) / 7

	best := argMax(stats.DailyStudyTime)
	if stats.DailyStudyTime[best] > 0 {
		stats.MostProductiveDay = dayNames[best]
	} else {
		stats.MostProductiveDay = "None"
	}

	stats.WeekStartDate = weekStart.Format(models.DateLayout)
	stats.WeekEndDate = weekEnd.Format(models.DateLayout)
	stats.IsEmpty = stats.TotalStudyTime == 0 && stats.TotalBreakTime == 0 && stats.TotalSessions == 0
	if partial {
		stats.LoadWarning = partialLoadWarning
	}

	return stats
}

// loadWeekly covers the four most recent calendar weeks, reduced to
// one bucket per week, oldest first.
func (a *Aggregator) loadWeekly(ctx context.Context, userID string) models.PeriodStatistics {
	now := a.now()

	// days[w][d]: week offset 0 = current week.
	days := make([][7]dayData, 4)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for w := 0; w < 4; w++ {
		weekStart := startOfWeek(now.AddDate(0, 0, -7*w))
		for d := 0; d < 7; d++ {
			w, d := w, d
			date := weekStart.AddDate(0, 0, d).Format(models.DateLayout)
			g.Go(func() error {
				days[w][d] = a.fetchDay(gctx, userID, date)
				return nil
			})
		}
	}
	g.Wait()

	stats := models.EmptyPeriodStatistics()
	stats.WeeklyStudyTime = make([]int, 4)
	stats.WeeklyBreakTime = make([]int, 4)
	stats.WeeklyTotalTime = make([]int, 4)
	stats.WeeklySessions = make([]int, 4)

	partial := false
	windowEmpty := true
	for w := 0; w < 4; w++ {
		var study, brk, sessions int
		for d := 0; d < 7; d++ {
			study += days[w][d].study
			brk += days[w][d].brk
			sessions += days[w][d].sessions
			partial = partial || days[w][d].failed
		}

		// Oldest week first in the series.
		idx := 3 - w
		stats.WeeklyStudyTime[idx] = study
		stats.WeeklyBreakTime[idx] = brk
		stats.WeeklyTotalTime[idx] = study + brk
		stats.WeeklySessions[idx] = sessions

		if study > 0 || brk > 0 || sessions > 0 {
			windowEmpty = false
		}
		if w == 0 {
			stats.TotalStudyTime = study
			stats.TotalBreakTime = brk
			stats.TotalSessions = sessions
		}
	}
	stats.TotalTime = stats.TotalStudyTime + stats.TotalBreakTime

	stats.TrendPercentage = trend(stats.WeeklyStudyTime)
	best := argMax(stats.WeeklyStudyTime)
	stats.BestWeek = fmt.Sprintf("Week %d", len(stats.WeeklyStudyTime)-best)
	stats.StudyGoalProgress = clampRatio(stats.TotalStudyTime, models.WeeklyStudyGoal)
	stats.BreakGoalProgress = clampRatio(stats.TotalBreakTime, models.WeeklyBreakGoal)
	stats.IsEmpty = windowEmpty
	if partial {
		stats.LoadWarning = partialLoadWarning
	}

	return stats
}

// loadMonthly covers the six most recent calendar months, one bucket
// per month, oldest first. Every day of each month is fetched.
func (a *Aggregator) loadMonthly(ctx context.Context, userID string) models.PeriodStatistics {
	now := a.now()

	days := make([][]dayData, 6)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for m := 0; m < 6; m++ {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -m, 0)
		daysInMonth := monthStart.AddDate(0, 1, -1).Day()
		days[m] = make([]dayData, daysInMonth)
		for d := 0; d < daysInMonth; d++ {
			m, d := m, d
			date := monthStart.AddDate(0, 0, d).Format(models.DateLayout)
			g.Go(func() error {
				days[m][d] = a.fetchDay(gctx, userID, date)
				return nil
			})
		}
	}
	g.Wait()

	stats := models.EmptyPeriodStatistics()
	stats.MonthlyStudyTime = make([]int, 6)
	stats.MonthlyBreakTime = make([]int, 6)
	stats.MonthlyTotalTime = make([]int, 6)
	stats.MonthlySessions = make([]int, 6)

	partial := false
	windowEmpty := true
	for m := 0; m < 6; m++ {
		var study, brk, sessions int
		for _, d := range days[m] {
			study += d.study
			brk += d.brk
			sessions += d.sessions
			partial = partial || d.failed
		}

		idx := 5 - m
		stats.MonthlyStudyTime[idx] = study
		stats.MonthlyBreakTime[idx] = brk
		stats.MonthlyTotalTime[idx] = study + brk
		stats.MonthlySessions[idx] = sessions

		if study > 0 || brk > 0 || sessions > 0 {
			windowEmpty = false
		}
		if m == 0 {
			stats.TotalStudyTime = study
			stats.TotalBreakTime = brk
			stats.TotalSessions = sessions
		}
	}
	stats.TotalTime = stats.TotalStudyTime + stats.TotalBreakTime

	stats.TrendPercentage = trend(stats.MonthlyStudyTime)
	stats.BestMonth = monthLabels[argMax(stats.MonthlyStudyTime)]
	stats.StudyGoalProgress = clampRatio(stats.TotalStudyTime, models.WeeklyStudyGoal)
	stats.BreakGoalProgress = clampRatio(stats.TotalBreakTime, models.WeeklyBreakGoal)
	stats.IsEmpty = windowEmpty
	if partial {
		stats.LoadWarning = partialLoadWarning
	}

	return stats
}

// trend compares the last two buckets of an oldest-first series.
// Defined as 0 when the previous bucket is 0.
func trend(series []int) float64 {
	if len(series) < 2 {
		return 0
	}
	current := series[len(series)-1]
	previous := series[len(series)-2]
	if previous <= 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

// argMax returns the index of the maximum value; ties resolve to the
// earliest index.
func argMax(series []int) int {
	best := 0
	for i, v := range series {
		if v > series[best] {
			best = i
		}
	}
	return best
}

func clampRatio(value, goal int) float64 {
	if goal <= 0 {
		return 0
	}
	r := float64(value) / float64(goal)
	if r > 1 {
		return 1
	}
	return r
}
