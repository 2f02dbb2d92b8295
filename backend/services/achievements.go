package services

import (
	"studyjourney/backend/models"
)

// UnlockedMedals returns the set of medal ids unlocked by the record.
// Pure function of the record's fields; thresholds only ever compare
// with >=, so the set grows monotonically with the tracked values.
func UnlockedMedals(r models.StudyRecord) map[string]bool {
	unlocked := make(map[string]bool)
	for _, a := range models.AchievementCatalog {
		if a.Unlocked(r) {
			unlocked[a.ID] = true
		}
	}
	return unlocked
}

// NewlyUnlocked diffs the unlock sets of two record snapshots and
// returns the medals present after but not before, in catalog order.
func NewlyUnlocked(before, after models.StudyRecord) []string {
	old := UnlockedMedals(before)

	var newly []string
	for _, a := range models.AchievementCatalog {
		if a.Unlocked(after) && !old[a.ID] {
			newly = append(newly, a.ID)
		}
	}
	return newly
}

// UnlockedList is UnlockedMedals flattened to catalog order, for API
// responses where a stable ordering matters.
func UnlockedList(r models.StudyRecord) []string {
	var ids []string
	for _, a := range models.AchievementCatalog {
		if a.Unlocked(r) {
			ids = append(ids, a.ID)
		}
	}
	return ids
}
