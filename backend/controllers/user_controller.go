package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"studyjourney/backend/config"
	"studyjourney/backend/models"
	"studyjourney/backend/store"
	"studyjourney/backend/utils"
)

type UserController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Gateway store.Gateway
}

func NewUserController(db *gorm.DB, cfg *config.Config, gateway store.Gateway) *UserController {
	return &UserController{DB: db, Cfg: cfg, Gateway: gateway}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the authenticated user's profile document
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	uid := fmt.Sprint(userID)
	doc, err := uc.Gateway.Get(c.Context(), uid, store.CollectionProfiles, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// An account without a profile document yet still has its email.
			var user models.User
			if err := uc.DB.First(&user, userID).Error; err != nil {
				return utils.NotFound(c, "User not found")
			}
			return utils.Success(c, fiber.StatusOK, fiber.Map{
				"id":      user.ID,
				"profile": models.Profile{Email: user.Email},
			})
		}
		return utils.InternalServerError(c, "Could not load profile")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":      userID,
		"profile": models.ProfileFromDocument(doc),
	})
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Replaces the authenticated user's profile document
// @Tags users
// @Accept json
// @Produce json
// @Param input body models.Profile true "Profile data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var profile models.Profile
	if err := c.BodyParser(&profile); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	uid := fmt.Sprint(userID)
	if err := uc.Gateway.Set(c.Context(), uid, store.CollectionProfiles, uid, profile.ToDocument()); err != nil {
		return utils.InternalServerError(c, "Could not update profile")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Profile updated successfully",
	})
}
