package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"studyjourney/backend/models"
	"studyjourney/backend/store"
)

const persistTimeout = 5 * time.Second

// Tracker owns one user's study record for one calendar date. All
// mutations go through the same path: snapshot the record, apply the
// change, diff the unlock sets and persist asynchronously. The
// in-memory record is the source of truth for the session; the
// document store is a durability sink, so a failed write is logged and
// the state kept.
type Tracker struct {
	gateway store.Gateway
	logger  *log.Logger
	now     func() time.Time

	userID string
	date   string

	mu       sync.Mutex
	current  models.StudyRecord
	previous models.StudyRecord

	writes sync.WaitGroup
}

func NewTracker(gateway store.Gateway, logger *log.Logger, userID string, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	rec := models.NewStudyRecord()
	return &Tracker{
		gateway:  gateway,
		logger:   logger,
		now:      now,
		userID:   userID,
		date:     now().Format(models.DateLayout),
		current:  rec,
		previous: rec,
	}
}

// Load fetches today's record. A read miss initializes the defaults;
// in both cases the previous snapshot is set equal to the loaded one
// so the first load never reports false medal unlocks.
func (t *Tracker) Load(ctx context.Context) error {
	doc, err := t.gateway.Get(ctx, t.userID, store.CollectionStudyData, t.date)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			t.mu.Lock()
			t.current = models.NewStudyRecord()
			t.previous = t.current
			t.mu.Unlock()
			return nil
		}
		return err
	}

	rec := models.StudyRecordFromDocument(doc)
	t.mu.Lock()
	t.current = rec
	t.previous = rec
	t.mu.Unlock()
	return nil
}

// Date returns the calendar date this tracker owns.
func (t *Tracker) Date() string {
	return t.date
}

// Snapshot returns a copy of the current record.
func (t *Tracker) Snapshot() models.StudyRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// mutate applies a change, updates both snapshots atomically and
// schedules the write. Returns the medals newly unlocked by the change.
func (t *Tracker) mutate(apply func(*models.StudyRecord)) []string {
	t.mu.Lock()

	before := t.current
	apply(&t.current)
	newly := NewlyUnlocked(before, t.current)
	if len(newly) > 0 {
		t.current.NewMedalUnlocked = true
	}
	t.previous = before
	t.current.LastUpdated = t.now().Format(time.RFC3339)
	rec := t.current

	t.mu.Unlock()

	t.persist(rec)
	return newly
}

// persist writes the record in the background. Callers never wait on
// it; Flush joins all pending writes.
func (t *Tracker) persist(rec models.StudyRecord) {
	t.writes.Add(1)
	go func() {
		defer t.writes.Done()

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		if err := t.gateway.Set(ctx, t.userID, store.CollectionStudyData, t.date, rec.ToDocument()); err != nil {
			t.logger.Printf("failed to save study data for user %s date %s: %v", t.userID, t.date, err)
		}
	}()
}

// Flush blocks until every scheduled write has completed.
func (t *Tracker) Flush() {
	t.writes.Wait()
}

// AddStudyMinutes adds live study time. Non-positive values are
// ignored: no state change and no write.
func (t *Tracker) AddStudyMinutes(minutes int) []string {
	if minutes <= 0 {
		return nil
	}
	return t.mutate(func(r *models.StudyRecord) {
		r.ActiveStudyTime += minutes
	})
}

// AddBreakMinutes adds live break time. Non-positive values are ignored.
func (t *Tracker) AddBreakMinutes(minutes int) []string {
	if minutes <= 0 {
		return nil
	}
	return t.mutate(func(r *models.StudyRecord) {
		r.BreakTime += minutes
	})
}

// IncrementSessions counts one more completed session.
func (t *Tracker) IncrementSessions() []string {
	return t.mutate(func(r *models.StudyRecord) {
		r.SessionsCompleted++
	})
}

// SimulateSession records a standard 25-minute pomodoro.
func (t *Tracker) SimulateSession() []string {
	return t.mutate(func(r *models.StudyRecord) {
		r.ActiveStudyTime += 25
		r.SessionsCompleted++
	})
}

// SimulateBreak records a standard 5-minute break.
func (t *Tracker) SimulateBreak() []string {
	return t.mutate(func(r *models.StudyRecord) {
		r.BreakTime += 5
	})
}

// SimulateProgress records a full pomodoro cycle: 25 minutes of study,
// 8 of break, one session.
func (t *Tracker) SimulateProgress() []string {
	return t.mutate(func(r *models.StudyRecord) {
		r.ActiveStudyTime += 25
		r.BreakTime += 8
		r.SessionsCompleted++
	})
}

// SetStudyGoal stores the study goal clamped into [15, 720] minutes.
func (t *Tracker) SetStudyGoal(minutes int) {
	t.mutate(func(r *models.StudyRecord) {
		r.StudyGoalMinutes = clampGoal(minutes, models.MinStudyGoal, models.MaxStudyGoal)
	})
}

// SetBreakGoal stores the break goal clamped into [5, 240] minutes.
func (t *Tracker) SetBreakGoal(minutes int) {
	t.mutate(func(r *models.StudyRecord) {
		r.BreakGoalMinutes = clampGoal(minutes, models.MinBreakGoal, models.MaxBreakGoal)
	})
}

// SetTotalGoal stores the total goal clamped into [60, 960] minutes.
func (t *Tracker) SetTotalGoal(minutes int) {
	t.mutate(func(r *models.StudyRecord) {
		r.TotalGoalMinutes = clampGoal(minutes, models.MinTotalGoal, models.MaxTotalGoal)
	})
}

func clampGoal(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// NewlyUnlockedMedals diffs the current record against the snapshot
// taken before the last mutation.
func (t *Tracker) NewlyUnlockedMedals() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return NewlyUnlocked(t.previous, t.current)
}

// UnlockedMedals lists every medal unlocked today, in catalog order.
func (t *Tracker) UnlockedMedals() []string {
	return UnlockedList(t.Snapshot())
}

func (t *Tracker) UnlockedCount() int {
	return len(UnlockedMedals(t.Snapshot()))
}

func (t *Tracker) IsMedalUnlocked(id string) bool {
	return UnlockedMedals(t.Snapshot())[id]
}

// AcknowledgeMedals clears the "new medal, not yet shown" flag once
// the client has displayed it, and persists the cleared state.
func (t *Tracker) AcknowledgeMedals() {
	t.mu.Lock()
	t.current.NewMedalUnlocked = false
	rec := t.current
	t.mu.Unlock()

	t.persist(rec)
}

// Registry hands out one tracker per user. A tracker is replaced when
// the calendar date rolls over, so yesterday's record is never mutated.
type Registry struct {
	gateway store.Gateway
	logger  *log.Logger
	now     func() time.Time

	mu       sync.Mutex
	trackers map[string]*Tracker
}

func NewRegistry(gateway store.Gateway, logger *log.Logger) *Registry {
	return &Registry{
		gateway:  gateway,
		logger:   logger,
		now:      time.Now,
		trackers: make(map[string]*Tracker),
	}
}

// ForUser returns the user's tracker for today, loading it on first use.
func (r *Registry) ForUser(ctx context.Context, userID string) (*Tracker, error) {
	today := r.now().Format(models.DateLayout)

	r.mu.Lock()
	t, ok := r.trackers[userID]
	r.mu.Unlock()
	if ok && t.Date() == today {
		return t, nil
	}

	t = NewTracker(r.gateway, r.logger, userID, r.now)
	if err := t.Load(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.trackers[userID] = t
	r.mu.Unlock()
	return t, nil
}

// Remove drops a user's tracker after draining its writes. Called on
// logout and account deletion.
func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	t, ok := r.trackers[userID]
	delete(r.trackers, userID)
	r.mu.Unlock()

	if ok {
		t.Flush()
	}
}

// Flush drains pending writes of every tracker, for shutdown.
func (r *Registry) Flush() {
	r.mu.Lock()
	trackers := make([]*Tracker, 0, len(r.trackers))
	for _, t := range r.trackers {
		trackers = append(trackers, t)
	}
	r.mu.Unlock()

	for _, t := range trackers {
		t.Flush()
	}
}
