package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"studyjourney/backend/config"
	"studyjourney/backend/models"
	"studyjourney/backend/services"
	"studyjourney/backend/utils"
)

type StudyController struct {
	Cfg      *config.Config
	Registry *services.Registry
}

func NewStudyController(cfg *config.Config, registry *services.Registry) *StudyController {
	return &StudyController{Cfg: cfg, Registry: registry}
}

func (sc *StudyController) tracker(c *fiber.Ctx) (*services.Tracker, error) {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return nil, utils.Unauthorized(c, "Unauthorized")
	}

	t, err := sc.Registry.ForUser(c.Context(), fmt.Sprint(userID))
	if err != nil {
		return nil, utils.InternalServerError(c, "Could not load study data")
	}
	return t, nil
}

// recordPayload is the record snapshot plus its derived values.
func recordPayload(rec models.StudyRecord) fiber.Map {
	return fiber.Map{
		"record":         rec,
		"totalTime":      rec.CalculatedTotalTime(),
		"breakExcessive": rec.IsBreakExcessive(),
		"studyProgress":  rec.StudyProgress(),
		"breakProgress":  rec.BreakProgress(),
		"totalProgress":  rec.TotalProgress(),
	}
}

func mutationPayload(t *services.Tracker, newly []string) fiber.Map {
	payload := recordPayload(t.Snapshot())
	payload["newlyUnlocked"] = newly
	return payload
}

// GetToday godoc
// @Summary Get today's study record
// @Description Returns the current date's record with derived progress values
// @Tags study
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /study/today [get]
func (sc *StudyController) GetToday(c *fiber.Ctx) error {
	t, err := sc.tracker(c)
	if err != nil {
		return err
	}

	payload := recordPayload(t.Snapshot())
	payload["date"] = t.Date()
	return utils.Success(c, fiber.StatusOK, payload)
}

type MinutesInput struct {
	Minutes int `json:"minutes"`
}

// AddStudyTime godoc
// @Summary Add live study time
// @Description Adds study minutes to today's record; non-positive values are ignored
// @Tags study
// @Accept json
// @Produce json
// @Param input body MinutesInput true "Minutes to add"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /study/time [post]
func (sc *StudyController) AddStudyTime(c *fiber.Ctx) error {
	var input MinutesInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	t, err := sc.tracker(c)
	if err != nil {
		return err
	}

	newly := t.AddStudyMinutes(input.Minutes)
	return utils.Success(c, fiber.StatusOK, mutationPayload(t, newly))
}

// AddBreakTime godoc
// @Summary Add live break time
// @Description Adds break minutes to today's record; non-positive values are ignored
// @Tags study
// @Accept json
// @Produce json
// @Param input body MinutesInput true "Minutes to add"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /study/break [post]
func (sc *StudyController) AddBreakTime(c *fiber.Ctx) error {
	var input MinutesInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	t, err := sc.tracker(c)
	if err != nil {
		return err
	}

	newly := t.AddBreakMinutes(input.Minutes)
	return utils.Success(c, fiber.StatusOK, mutationPayload(t, newly))
}

// CompleteSession godoc
// @Summary Count a completed session
// @Tags study
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /study/session [post]
func (sc *StudyController) CompleteSession(c *fiber.Ctx) error {
	t, err := sc.tracker(c)
	if err != nil {
		return err
	}

	newly := t.IncrementSessions()
	return utils.Success(c, fiber.StatusOK, mutationPayload(t, newly))
}

// Simulate godoc
// @Summary Simulate study activity
// @Description Applies a canned mutation: session (+25m study, +1 session), break (+5m break) or progress (+25m/+8m/+1)
// @Tags study
// @Produce json
// @Param kind path string true "session | break | progress"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /study/simulate/{kind} [post]
func (sc *StudyController) Simulate(c *fiber.Ctx) error {
	t, err := sc.tracker(c)
	if err != nil {
		return err
	}

	var newly []string
	switch c.Params("kind") {
	case "session":
		newly = t.SimulateSession()
	case "break":
		newly = t.SimulateBreak()
	case "progress":
		newly = t.SimulateProgress()
	default:
		return utils.BadRequest(c, "Unknown simulation kind")
	}

	return utils.Success(c, fiber.StatusOK, mutationPayload(t, newly))
}

type GoalsInput struct {
	StudyGoalMinutes *int `json:"studyGoalMinutes"`
	BreakGoalMinutes *int `json:"breakGoalMinutes"`
	TotalGoalMinutes *int `json:"totalGoalMinutes"`
}

// UpdateGoals godoc
// @Summary Update daily goals
// @Description Sets any of the three goals; out-of-range values are clamped, not rejected
// @Tags study
// @Accept json
// @Produce json
// @Param input body GoalsInput true "Goals to set"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /study/goals [put]
func (sc *StudyController) UpdateGoals(c *fiber.Ctx) error {
	var input GoalsInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	t, err := sc.tracker(c)
	if err != nil {
		return err
	}

	if input.StudyGoalMinutes != nil {
		t.SetStudyGoal(*input.StudyGoalMinutes)
	}
	if input.BreakGoalMinutes != nil {
		t.SetBreakGoal(*input.BreakGoalMinutes)
	}
	if input.TotalGoalMinutes != nil {
		t.SetTotalGoal(*input.TotalGoalMinutes)
	}

	return utils.Success(c, fiber.StatusOK, recordPayload(t.Snapshot()))
}

// GetMedals godoc
// @Summary Get medal state
// @Description Returns the catalog with unlocked status, the newly-unlocked ids and the unseen-unlock flag
// @Tags study
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /study/medals [get]
func (sc *StudyController) GetMedals(c *fiber.Ctx) error {
	t, err := sc.tracker(c)
	if err != nil {
		return err
	}

	rec := t.Snapshot()
	unlocked := services.UnlockedMedals(rec)

	medals := make([]fiber.Map, 0, len(models.AchievementCatalog))
	for _, a := range models.AchievementCatalog {
		medals = append(medals, fiber.Map{
			"id":          a.ID,
			"name":        a.Name,
			"description": a.Description,
			"category":    a.Category,
			"requirement": a.Requirement,
			"unlocked":    unlocked[a.ID],
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"medals":           medals,
		"unlockedCount":    len(unlocked),
		"newlyUnlocked":    t.NewlyUnlockedMedals(),
		"newMedalUnlocked": rec.NewMedalUnlocked,
	})
}

// AcknowledgeMedals godoc
// @Summary Acknowledge new medals
// @Description Clears the unseen-unlock flag once the client has shown it
// @Tags study
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /study/medals/ack [post]
func (sc *StudyController) AcknowledgeMedals(c *fiber.Ctx) error {
	t, err := sc.tracker(c)
	if err != nil {
		return err
	}

	t.AcknowledgeMedals()
	return utils.Success(c, fiber.StatusOK, recordPayload(t.Snapshot()))
}
