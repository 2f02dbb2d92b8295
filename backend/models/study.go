package models

import (
	"studyjourney/backend/store"
)

// DateLayout is the document key format for daily study records.
const DateLayout = "2006-01-02"

// Default and allowed goal values, in minutes.
const (
	DefaultStudyGoal = 180
	DefaultBreakGoal = 60
	DefaultTotalGoal = 480

	MinStudyGoal = 15
	MaxStudyGoal = 720
	MinBreakGoal = 5
	MaxBreakGoal = 240
	MinTotalGoal = 60
	MaxTotalGoal = 960

	// Fixed weekly goals used by the statistics views.
	WeeklyStudyGoal = 1260
	WeeklyBreakGoal = 420
)

// StudyRecord holds one user's tracked study data for one calendar
// date. Only today's record is ever mutated; past dates are read-only.
type StudyRecord struct {
	ActiveStudyTime   int    `json:"activeStudyTime"`
	BreakTime         int    `json:"breakTime"`
	TotalTime         int    `json:"totalTime"`
	SessionsCompleted int    `json:"sessionsCompleted"`
	StudyGoalMinutes  int    `json:"studyGoalMinutes"`
	BreakGoalMinutes  int    `json:"breakGoalMinutes"`
	TotalGoalMinutes  int    `json:"totalGoalMinutes"`
	LastUpdated       string `json:"lastUpdated"`
	IsTemporary       bool   `json:"isTemporary"`
	NewMedalUnlocked  bool   `json:"newMedalUnlocked"`
}

// NewStudyRecord returns a record with the default goals and no time tracked.
func NewStudyRecord() StudyRecord {
	return StudyRecord{
		StudyGoalMinutes: DefaultStudyGoal,
		BreakGoalMinutes: DefaultBreakGoal,
		TotalGoalMinutes: DefaultTotalGoal,
	}
}

// CalculatedTotalTime is study plus break, always recomputed from the
// live fields rather than trusting the stored totalTime.
func (r StudyRecord) CalculatedTotalTime() int {
	return r.ActiveStudyTime + r.BreakTime
}

// IsBreakExcessive reports whether breaks exceed half the study time.
func (r StudyRecord) IsBreakExcessive() bool {
	return r.BreakTime > 0 && r.ActiveStudyTime > 0 &&
		float64(r.BreakTime)/float64(r.ActiveStudyTime) > 0.5
}

func (r StudyRecord) StudyProgress() float64 {
	return clampProgress(r.ActiveStudyTime, r.StudyGoalMinutes)
}

func (r StudyRecord) BreakProgress() float64 {
	return clampProgress(r.BreakTime, r.BreakGoalMinutes)
}

func (r StudyRecord) TotalProgress() float64 {
	return clampProgress(r.CalculatedTotalTime(), r.TotalGoalMinutes)
}

func clampProgress(value, goal int) float64 {
	if goal <= 0 {
		return 0
	}
	p := float64(value) / float64(goal)
	if p > 1 {
		return 1
	}
	return p
}

// ToDocument flattens the record into the persisted field schema.
func (r StudyRecord) ToDocument() store.Document {
	return store.Document{
		"activeStudyTime":   r.ActiveStudyTime,
		"breakTime":         r.BreakTime,
		"totalTime":         r.CalculatedTotalTime(),
		"sessionsCompleted": r.SessionsCompleted,
		"studyGoalMinutes":  r.StudyGoalMinutes,
		"breakGoalMinutes":  r.BreakGoalMinutes,
		"totalGoalMinutes":  r.TotalGoalMinutes,
		"lastUpdated":       r.LastUpdated,
		"isTemporary":       r.IsTemporary,
		"newMedalUnlocked":  r.NewMedalUnlocked,
	}
}

// StudyRecordFromDocument rebuilds a record from a stored document,
// falling back to the default goals for absent goal fields.
func StudyRecordFromDocument(doc store.Document) StudyRecord {
	r := StudyRecord{
		ActiveStudyTime:   doc.Int("activeStudyTime"),
		BreakTime:         doc.Int("breakTime"),
		TotalTime:         doc.Int("totalTime"),
		SessionsCompleted: doc.Int("sessionsCompleted"),
		StudyGoalMinutes:  doc.Int("studyGoalMinutes"),
		BreakGoalMinutes:  doc.Int("breakGoalMinutes"),
		TotalGoalMinutes:  doc.Int("totalGoalMinutes"),
		LastUpdated:       doc.String("lastUpdated"),
		IsTemporary:       doc.Bool("isTemporary"),
		NewMedalUnlocked:  doc.Bool("newMedalUnlocked"),
	}
	if r.StudyGoalMinutes == 0 {
		r.StudyGoalMinutes = DefaultStudyGoal
	}
	if r.BreakGoalMinutes == 0 {
		r.BreakGoalMinutes = DefaultBreakGoal
	}
	if r.TotalGoalMinutes == 0 {
		r.TotalGoalMinutes = DefaultTotalGoal
	}
	return r
}

// Filter selects the dimension a statistics or streak query works on.
type Filter string

const (
	FilterStudy    Filter = "study"
	FilterBreak    Filter = "break"
	FilterTotal    Filter = "total"
	FilterSessions Filter = "sessions"
)

func ParseFilter(s string) (Filter, bool) {
	switch Filter(s) {
	case FilterStudy, FilterBreak, FilterTotal, FilterSessions:
		return Filter(s), true
	}
	return "", false
}

// Value extracts the filtered dimension from a record.
func (f Filter) Value(r StudyRecord) int {
	switch f {
	case FilterBreak:
		return r.BreakTime
	case FilterTotal:
		return r.CalculatedTotalTime()
	case FilterSessions:
		return r.SessionsCompleted
	default:
		return r.ActiveStudyTime
	}
}

// Period selects the statistics window.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

func ParsePeriod(s string) (Period, bool) {
	switch Period(s) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return Period(s), true
	}
	return "", false
}

// PeriodStatistics is the reduced view over a window of study records.
// Daily series hold 7 values Monday..Sunday; weekly 4 and monthly 6
// buckets, oldest first. Recomputed on every load, never stored.
type PeriodStatistics struct {
	TotalStudyTime int `json:"totalStudyTime"`
	TotalBreakTime int `json:"totalBreakTime"`
	TotalTime      int `json:"totalTime"`
	TotalSessions  int `json:"totalSessions"`

	DailyStudyTime []int `json:"dailyStudyTime,omitempty"`
	DailyBreakTime []int `json:"dailyBreakTime,omitempty"`
	DailyTotalTime []int `json:"dailyTotalTime,omitempty"`
	DailySessions  []int `json:"dailySessions,omitempty"`

	WeeklyStudyTime []int `json:"weeklyStudyTime,omitempty"`
	WeeklyBreakTime []int `json:"weeklyBreakTime,omitempty"`
	WeeklyTotalTime []int `json:"weeklyTotalTime,omitempty"`
	WeeklySessions  []int `json:"weeklySessions,omitempty"`

	MonthlyStudyTime []int `json:"monthlyStudyTime,omitempty"`
	MonthlyBreakTime []int `json:"monthlyBreakTime,omitempty"`
	MonthlyTotalTime []int `json:"monthlyTotalTime,omitempty"`
	MonthlySessions  []int `json:"monthlySessions,omitempty"`

	WeeklyStudyGoal   int     `json:"weeklyStudyGoal"`
	WeeklyBreakGoal   int     `json:"weeklyBreakGoal"`
	StudyGoalProgress float64 `json:"studyGoalProgress"`
	BreakGoalProgress float64 `json:"breakGoalProgress"`

	AverageStudyPerDay float64 `json:"averageStudyPerDay"`
	AverageBreakPerDay float64 `json:"averageBreakPerDay"`

	MostProductiveDay string `json:"mostProductiveDay,omitempty"`
	WeekStartDate     string `json:"weekStartDate,omitempty"`
	WeekEndDate       string `json:"weekEndDate,omitempty"`

	TrendPercentage float64 `json:"trendPercentage"`
	BestWeek        string  `json:"bestWeek,omitempty"`
	BestMonth       string  `json:"bestMonth,omitempty"`

	IsEmpty       bool   `json:"isEmpty"`
	CurrentStreak int    `json:"currentStreak"`
	LoadWarning   string `json:"loadWarning,omitempty"`
}

// EmptyPeriodStatistics is the state shown before any load completes
// and when no user is authenticated.
func EmptyPeriodStatistics() PeriodStatistics {
	return PeriodStatistics{
		WeeklyStudyGoal: WeeklyStudyGoal,
		WeeklyBreakGoal: WeeklyBreakGoal,
		IsEmpty:         true,
	}
}
