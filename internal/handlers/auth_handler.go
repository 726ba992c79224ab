package handlers

import (
	"net/http"
	"time"

	"leadcrm/internal/api/middleware"
	"leadcrm/internal/cache"
	"leadcrm/internal/models"
	"leadcrm/internal/tasks/rate"
	"leadcrm/internal/utils"
	"leadcrm/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db           *gorm.DB
	sessions     *cache.SessionCache
	loginLimiter *rate.SlidingWindowLimiter
	log          *logger.Logger
}

func NewAuthHandler(db *gorm.DB, sessions *cache.SessionCache, loginLimiter *rate.SlidingWindowLimiter) *AuthHandler {
	return &AuthHandler{
		db:           db,
		sessions:     sessions,
		loginLimiter: loginLimiter,
		log:          logger.New("AuthHandler"),
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyResetCodeRequest struct {
	Code     string `json:"code" validate:"required"`
	Password string `json:"new_password" validate:"required,min=8"`
}

// Login authenticates a user and opens an auth transaction.
func (h *AuthHandler) Login(c echo.Context) error {
	if h.loginLimiter != nil {
		ok, err := h.loginLimiter.Allow(c.Request().Context(), utils.GetIPAddress(c.Request()))
		if err != nil {
			h.log.Warn("login limiter unavailable: %v", err)
		} else if !ok {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Demasiados intentos, intenta más tarde"})
		}
	}

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, err := models.GetUserByEmail(h.db, req.Email)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Credenciales inválidas"})
	}

	if !user.IsActive {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Usuario desactivado"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Credenciales inválidas"})
	}

	token, err := utils.GenerateJWT(*user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
	}
	refresh, err := utils.GenerateRefreshToken(*user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate refresh token"})
	}

	transaction := models.AuthTransaction{
		UserID:    user.ID,
		Token:     token,
		Refresh:   refresh,
		IPAddress: utils.GetIPAddress(c.Request()),
		UserAgent: c.Request().UserAgent(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	if err := h.db.Create(&transaction).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to open session"})
	}

	if h.sessions != nil {
		if err := h.sessions.Put(c.Request().Context(), user); err != nil {
			h.log.Warn("failed to warm session cache for %s: %v", user.ID, err)
		}
	}

	models.LogActivity(h.db, user.ID, models.ActivityLogin, "auth_transactions", transaction.ID, nil)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token":   token,
		"refresh": refresh,
		"user":    user,
	})
}

// RefreshToken exchanges a refresh token for a fresh token pair.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	claims, err := utils.ParseRefreshToken(req.Refresh)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid refresh token"})
	}

	transaction := &models.AuthTransaction{}
	if err := h.db.Where("user_id = ? AND refresh = ?", claims.UserID, req.Refresh).
		First(transaction).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Session not found"})
	}

	user, err := models.GetUserWithPermissions(h.db, claims.UserID)
	if err != nil || !user.IsActive {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not found"})
	}

	token, err := utils.GenerateJWT(*user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
	}
	refresh, err := utils.GenerateRefreshToken(*user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate refresh token"})
	}

	transaction.Token = token
	transaction.Refresh = refresh
	transaction.ExpiresAt = time.Now().Add(24 * time.Hour)
	if err := h.db.Save(transaction).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to refresh session"})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"token":   token,
		"refresh": refresh,
	})
}

// Logout closes every auth transaction for the user and clears the
// session cache, legacy keys included. Sign-out must leave nothing
// behind.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "No autenticado"})
	}

	if err := h.db.Where("user_id = ?", userID).Delete(&models.AuthTransaction{}).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to close session"})
	}

	if h.sessions != nil {
		if err := h.sessions.Clear(c.Request().Context(), userID); err != nil {
			h.log.Warn("failed to clear session cache for %s: %v", userID, err)
		}
	}

	models.LogActivity(h.db, userID, models.ActivityLogout, "auth_transactions", "", nil)

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// GetMe returns the session user with their resolved permissions.
func (h *AuthHandler) GetMe(c echo.Context) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "No autenticado"})
	}
	return c.JSON(http.StatusOK, user)
}

// RequestPasswordReset issues a single-use reset code.
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, err := models.GetUserByEmail(h.db, req.Email)
	if err != nil {
		// Do not reveal whether the address exists.
		return c.JSON(http.StatusOK, map[string]bool{"success": true})
	}

	code, err := utils.GenerateRandomString(32)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate reset code"})
	}

	reset := models.PasswordReset{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
	if err := h.db.Create(&reset).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to store reset code"})
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// VerifyResetCode consumes a reset code and sets the new password.
func (h *AuthHandler) VerifyResetCode(c echo.Context) error {
	var req VerifyResetCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	reset := &models.PasswordReset{}
	if err := h.db.Where("code = ? AND used = false AND expires_at > ?", req.Code, time.Now()).
		First(reset).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid or expired code"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to hash password"})
	}

	tx := h.db.Begin()
	if tx.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to start transaction"})
	}

	if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).
		Update("password", string(hashedPassword)).Error; err != nil {
		tx.Rollback()
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update password"})
	}
	if err := tx.Model(reset).Update("used", true).Error; err != nil {
		tx.Rollback()
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to consume reset code"})
	}
	// Force re-authentication everywhere.
	if err := tx.Where("user_id = ?", reset.UserID).Delete(&models.AuthTransaction{}).Error; err != nil {
		tx.Rollback()
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to close sessions"})
	}

	if err := tx.Commit().Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to commit"})
	}

	if h.sessions != nil {
		if err := h.sessions.Clear(c.Request().Context(), reset.UserID); err != nil {
			h.log.Warn("failed to clear session cache for %s: %v", reset.UserID, err)
		}
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
