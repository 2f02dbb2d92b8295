package models

// AchievementCategory groups medals for display.
type AchievementCategory string

const (
	CategoryStudyTime AchievementCategory = "study_time"
	CategorySessions  AchievementCategory = "sessions"
	CategorySpecial   AchievementCategory = "special"
)

// Achievement is one entry of the fixed medal catalog. Requirement is
// the threshold in minutes (study_time) or completed sessions; special
// medals encode their own condition.
type Achievement struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Category    AchievementCategory `json:"category"`
	Requirement int                 `json:"requirement"`
}

// AchievementCatalog is the full medal set. Order matters: when one
// mutation unlocks several medals, callers surface the first in
// catalog order.
var AchievementCatalog = []Achievement{
	{ID: "first_study", Name: "First Steps", Description: "Complete your first study session", Category: CategorySessions, Requirement: 1},
	{ID: "study_30min", Name: "Warming Up", Description: "Study for 30 minutes in a day", Category: CategoryStudyTime, Requirement: 30},
	{ID: "study_2h", Name: "Deep Focus", Description: "Study for 2 hours in a day", Category: CategoryStudyTime, Requirement: 120},
	{ID: "study_5h", Name: "Marathon Mind", Description: "Study for 5 hours in a day", Category: CategoryStudyTime, Requirement: 300},
	{ID: "study_10h", Name: "Iron Will", Description: "Study for 10 hours in a day", Category: CategoryStudyTime, Requirement: 600},
	{ID: "sessions_5", Name: "Getting Serious", Description: "Complete 5 sessions in a day", Category: CategorySessions, Requirement: 5},
	{ID: "sessions_10", Name: "Session Veteran", Description: "Complete 10 sessions in a day", Category: CategorySessions, Requirement: 10},
	{ID: "sessions_25", Name: "Unstoppable", Description: "Complete 25 sessions in a day", Category: CategorySessions, Requirement: 25},
	{ID: "sessions_50", Name: "Legendary", Description: "Complete 50 sessions in a day", Category: CategorySessions, Requirement: 50},
	{ID: "focus_master", Name: "Focus Master", Description: "Finish a full focus session", Category: CategorySpecial, Requirement: 1},
	{ID: "balanced_study", Name: "Balanced Mind", Description: "Study 2 hours with at least 30 minutes of breaks", Category: CategorySpecial, Requirement: 0},
}

// Unlocked reports whether this medal is unlocked by the given record.
func (a Achievement) Unlocked(r StudyRecord) bool {
	switch a.ID {
	case "first_study", "focus_master":
		return r.SessionsCompleted >= 1
	case "balanced_study":
		return r.ActiveStudyTime >= 120 && r.BreakTime >= 30
	}

	switch a.Category {
	case CategoryStudyTime:
		return r.ActiveStudyTime >= a.Requirement
	case CategorySessions:
		return r.SessionsCompleted >= a.Requirement
	}
	return false
}
