package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"studyjourney/backend/config"
	"studyjourney/backend/models"
	"studyjourney/backend/services"
	"studyjourney/backend/store"
	"studyjourney/backend/utils"
)

// reauthWindow is how recent the last sign-in must be before account
// deletion is allowed without re-entering the password.
const reauthWindow = 10 * time.Minute

type AuthController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Gateway  store.Gateway
	Registry *services.Registry
}

func NewAuthController(db *gorm.DB, cfg *config.Config, gateway store.Gateway, registry *services.Registry) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, Gateway: gateway, Registry: registry}
}

type RegisterInput struct {
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	BirthDate string `json:"birthDate"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Sex       string `json:"sex"`
	Password  string `json:"password"`
}

// Register godoc
// @Summary Register a new user
// @Description Creates a new account and its profile document
// @Tags auth
// @Accept json
// @Produce json
// @Param input body RegisterInput true "Registration data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Email == "" || input.Password == "" {
		return utils.BadRequest(c, "Email and password are required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not create user")
	}

	userID := fmt.Sprint(user.ID)
	profile := models.Profile{
		Name:      input.Name,
		Surname:   input.Surname,
		BirthDate: input.BirthDate,
		Email:     input.Email,
		Phone:     input.Phone,
		Sex:       input.Sex,
	}
	if err := ac.Gateway.Set(c.Context(), userID, store.CollectionProfiles, userID, profile.ToDocument()); err != nil {
		return utils.InternalServerError(c, "Could not create user profile")
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Invalid credentials")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid credentials")
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	ac.recordLogin(user.ID)

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// recordLogin appends to the login history and maintains the login
// streak: consecutive if the previous activity was within 48 hours.
func (ac *AuthController) recordLogin(userID uint) {
	ac.DB.Create(&models.LoginHistory{
		UserID:    userID,
		LoginTime: time.Now(),
	})

	var progress models.UserProgress
	if err := ac.DB.Where("user_id = ?", userID).First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ac.DB.Create(&models.UserProgress{
				UserID:     userID,
				LastActive: time.Now(),
				StreakDays: 1,
			})
		}
		return
	}

	if time.Since(progress.LastActive) < 48*time.Hour {
		progress.StreakDays++
	} else {
		progress.StreakDays = 1
	}
	progress.LastActive = time.Now()
	ac.DB.Save(&progress)
}

// TokenLogin godoc
// @Summary Sign in with an existing token
// @Description Validates a JWT and refreshes the session
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/token [post]
func (ac *AuthController) TokenLogin(c *fiber.Ctx) error {
	type TokenInput struct {
		Token string `json:"token"`
	}

	var input TokenInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	userID, err := utils.ParseJWTToken(input.Token, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Invalid token")
	}

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unknown user")
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	ac.recordLogin(user.ID)

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// Logout godoc
// @Summary Log out
// @Description Drains pending study writes for the user's session
// @Tags auth
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /auth/logout [post]
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	ac.Registry.Remove(fmt.Sprint(userID))

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Logged out",
	})
}

// DeleteAccount godoc
// @Summary Delete account
// @Description Deletes the user and cascades profile and study documents. Requires a recent sign-in or the account password; responds with code "reauth_required" otherwise.
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /auth/account [delete]
func (ac *AuthController) DeleteAccount(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	type DeleteInput struct {
		Password string `json:"password"`
	}
	var input DeleteInput
	c.BodyParser(&input) // body is optional

	if input.Password != "" {
		// Explicit re-authentication with the account password.
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
			return utils.Unauthorized(c, "Invalid password")
		}
	} else {
		var lastLogin models.LoginHistory
		err := ac.DB.Where("user_id = ?", userID).
			Order("login_time DESC").
			First(&lastLogin).Error
		if err != nil || time.Since(lastLogin.LoginTime) > reauthWindow {
			return utils.ErrorWithCode(c, fiber.StatusForbidden, "reauth_required",
				"Recent authentication required, provide your password")
		}
	}

	uid := fmt.Sprint(userID)
	ac.Registry.Remove(uid)

	if err := ac.Gateway.DeleteUser(c.Context(), uid); err != nil {
		return utils.InternalServerError(c, "Could not delete user data")
	}

	ac.DB.Where("user_id = ?", userID).Delete(&models.LoginHistory{})
	ac.DB.Where("user_id = ?", userID).Delete(&models.UserProgress{})
	if err := ac.DB.Unscoped().Delete(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete user")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Account deleted",
	})
}
