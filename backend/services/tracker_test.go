package services

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyjourney/backend/models"
	"studyjourney/backend/store"
)

func testClock() func() time.Time {
	// Wednesday, fixed so date keys are deterministic.
	return func() time.Time {
		return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	}
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestTracker(t *testing.T, gw store.Gateway) *Tracker {
	t.Helper()
	tr := NewTracker(gw, testLogger(), "42", testClock())
	require.NoError(t, tr.Load(context.Background()))
	return tr
}

func TestTrackerNonPositiveAddsAreNoOps(t *testing.T) {
	gw := store.NewMemoryGateway()
	tr := newTestTracker(t, gw)

	assert.Nil(t, tr.AddStudyMinutes(0))
	assert.Nil(t, tr.AddStudyMinutes(-5))
	assert.Nil(t, tr.AddBreakMinutes(0))
	tr.Flush()

	assert.Equal(t, models.NewStudyRecord(), tr.Snapshot())

	// No write may have been issued.
	_, err := gw.Get(context.Background(), "42", store.CollectionStudyData, "2026-03-04")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTrackerAddStudyMinutesPersists(t *testing.T) {
	gw := store.NewMemoryGateway()
	tr := newTestTracker(t, gw)

	newly := tr.AddStudyMinutes(35)
	tr.Flush()

	assert.Equal(t, []string{"study_30min"}, newly)

	rec := tr.Snapshot()
	assert.Equal(t, 35, rec.ActiveStudyTime)
	assert.True(t, rec.NewMedalUnlocked)
	assert.NotEmpty(t, rec.LastUpdated)

	doc, err := gw.Get(context.Background(), "42", store.CollectionStudyData, "2026-03-04")
	require.NoError(t, err)
	assert.Equal(t, 35, doc.Int("activeStudyTime"))
	assert.Equal(t, 35, doc.Int("totalTime"))
	assert.True(t, doc.Bool("newMedalUnlocked"))
}

func TestTrackerSimulateSession(t *testing.T) {
	gw := store.NewMemoryGateway()
	tr := newTestTracker(t, gw)

	newly := tr.SimulateSession()
	assert.Equal(t, []string{"first_study", "focus_master"}, newly)

	rec := tr.Snapshot()
	assert.Equal(t, 25, rec.ActiveStudyTime)
	assert.Equal(t, 1, rec.SessionsCompleted)
}

func TestTrackerSimulateProgress(t *testing.T) {
	gw := store.NewMemoryGateway()
	tr := newTestTracker(t, gw)
	tr.SimulateProgress()

	rec := tr.Snapshot()
	assert.Equal(t, 25, rec.ActiveStudyTime)
	assert.Equal(t, 8, rec.BreakTime)
	assert.Equal(t, 1, rec.SessionsCompleted)
	assert.Equal(t, 33, rec.CalculatedTotalTime())
}

func TestTrackerGoalClamping(t *testing.T) {
	gw := store.NewMemoryGateway()
	tr := newTestTracker(t, gw)

	tr.SetStudyGoal(10)
	assert.Equal(t, 15, tr.Snapshot().StudyGoalMinutes)

	tr.SetStudyGoal(1000)
	assert.Equal(t, 720, tr.Snapshot().StudyGoalMinutes)

	tr.SetBreakGoal(1)
	assert.Equal(t, 5, tr.Snapshot().BreakGoalMinutes)

	tr.SetTotalGoal(2000)
	assert.Equal(t, 960, tr.Snapshot().TotalGoalMinutes)

	tr.SetStudyGoal(300)
	assert.Equal(t, 300, tr.Snapshot().StudyGoalMinutes)
}

func TestTrackerGoalChangeUnlocksNothing(t *testing.T) {
	gw := store.NewMemoryGateway()
	tr := newTestTracker(t, gw)

	tr.SetStudyGoal(15)
	assert.Empty(t, tr.NewlyUnlockedMedals())
	assert.False(t, tr.Snapshot().NewMedalUnlocked)
}

func TestTrackerLoadSeedsPreviousSnapshot(t *testing.T) {
	gw := store.NewMemoryGateway()

	seeded := models.NewStudyRecord()
	seeded.ActiveStudyTime = 130
	seeded.BreakTime = 40
	seeded.SessionsCompleted = 2
	err := gw.Set(context.Background(), "42", store.CollectionStudyData, "2026-03-04", seeded.ToDocument())
	require.NoError(t, err)

	tr := newTestTracker(t, gw)

	// Loading an existing record must not report its medals as new.
	assert.Empty(t, tr.NewlyUnlockedMedals())
	assert.Equal(t, 130, tr.Snapshot().ActiveStudyTime)
	assert.True(t, tr.IsMedalUnlocked("balanced_study"))
	assert.Equal(t, 5, tr.UnlockedCount())
}

func TestTrackerAcknowledgeMedals(t *testing.T) {
	gw := store.NewMemoryGateway()
	tr := newTestTracker(t, gw)

	tr.AddStudyMinutes(30)
	assert.True(t, tr.Snapshot().NewMedalUnlocked)
	tr.Flush()

	tr.AcknowledgeMedals()
	tr.Flush()

	assert.False(t, tr.Snapshot().NewMedalUnlocked)

	doc, err := gw.Get(context.Background(), "42", store.CollectionStudyData, "2026-03-04")
	require.NoError(t, err)
	assert.False(t, doc.Bool("newMedalUnlocked"))
}

func TestRegistryReplacesTrackerOnDateRollover(t *testing.T) {
	gw := store.NewMemoryGateway()
	r := NewRegistry(gw, testLogger())

	day := time.Date(2026, 3, 4, 23, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return day }

	first, err := r.ForUser(context.Background(), "42")
	require.NoError(t, err)
	first.AddStudyMinutes(10)

	again, err := r.ForUser(context.Background(), "42")
	require.NoError(t, err)
	assert.Same(t, first, again)

	day = day.AddDate(0, 0, 1)
	next, err := r.ForUser(context.Background(), "42")
	require.NoError(t, err)
	assert.NotSame(t, first, next)
	assert.Equal(t, "2026-03-05", next.Date())
	assert.Equal(t, 0, next.Snapshot().ActiveStudyTime)
}
