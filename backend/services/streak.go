package services

import (
	"context"
	"time"

	"studyjourney/backend/models"
	"studyjourney/backend/store"
)

// maxStreakLookback bounds the backward scan; an unbroken run longer
// than this is reported as the bound.
const maxStreakLookback = 60

// StreakCalculator counts consecutive qualifying days ending today.
// The scan is inherently sequential: whether a day counts depends on
// the previous day not having broken the run, so fetches are issued
// one at a time, never in parallel.
type StreakCalculator struct {
	gateway store.Gateway
	now     func() time.Time
}

func NewStreakCalculator(gateway store.Gateway) *StreakCalculator {
	return &StreakCalculator{gateway: gateway, now: time.Now}
}

// Current walks backward from today summing days whose value for the
// filter dimension is positive. A zero day, a missing record or a
// fetch failure ends the run.
func (s *StreakCalculator) Current(ctx context.Context, userID string, filter models.Filter) int {
	day := s.now()
	streak := 0

	for checked := 0; checked < maxStreakLookback; checked++ {
		key := day.Format(models.DateLayout)
		doc, err := s.gateway.Get(ctx, userID, store.CollectionStudyData, key)
		if err != nil {
			// Miss and failure both read as a zero day.
			break
		}

		if filter.Value(models.StudyRecordFromDocument(doc)) <= 0 {
			break
		}

		streak++
		day = day.AddDate(0, 0, -1)
	}

	return streak
}
