package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"studyjourney/backend/config"
	"studyjourney/backend/models"
	"studyjourney/backend/services"
	"studyjourney/backend/utils"
)

type StatsController struct {
	Cfg        *config.Config
	Aggregator *services.Aggregator
	Streaks    *services.StreakCalculator
}

func NewStatsController(cfg *config.Config, aggregator *services.Aggregator, streaks *services.StreakCalculator) *StatsController {
	return &StatsController{Cfg: cfg, Aggregator: aggregator, Streaks: streaks}
}

// GetStatistics godoc
// @Summary Get period statistics
// @Description Reduces the requested window (daily: current week per day, weekly: 4 weeks, monthly: 6 months) into period statistics. Missing or unreadable days count as zero.
// @Tags stats
// @Produce json
// @Param period query string false "daily | weekly | monthly" default(daily)
// @Param filter query string false "study | break | total | sessions" default(study)
// @Success 200 {object} models.PeriodStatistics
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /stats [get]
func (st *StatsController) GetStatistics(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, st.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Log in to view your study statistics")
	}

	period, ok := models.ParsePeriod(c.Query("period", string(models.PeriodDaily)))
	if !ok {
		return utils.BadRequest(c, "Unknown period")
	}
	filter, ok := models.ParseFilter(c.Query("filter", string(models.FilterStudy)))
	if !ok {
		return utils.BadRequest(c, "Unknown filter")
	}

	stats := st.Aggregator.Load(c.Context(), fmt.Sprint(userID), period, filter)
	return utils.Success(c, fiber.StatusOK, stats)
}

// GetStreak godoc
// @Summary Get current streak
// @Description Counts consecutive days ending today with a positive value for the filter dimension, looking back at most 60 days
// @Tags stats
// @Produce json
// @Param filter query string false "study | break | total | sessions" default(study)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /stats/streak [get]
func (st *StatsController) GetStreak(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, st.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Log in to view your study statistics")
	}

	filter, ok := models.ParseFilter(c.Query("filter", string(models.FilterStudy)))
	if !ok {
		return utils.BadRequest(c, "Unknown filter")
	}

	streak := st.Streaks.Current(c.Context(), fmt.Sprint(userID), filter)
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"filter":        filter,
		"currentStreak": streak,
	})
}
