package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/auth"
	"github.com/spellbook-app/spellbook/internal/database"
	"github.com/spellbook-app/spellbook/internal/entities"
	"github.com/spellbook-app/spellbook/internal/validation"
)

// ProfileResponse is the caller's account with content counts.
type ProfileResponse struct {
	*entities.User
	Count entities.UserCounts `json:"_count"`
}

// UpdateProfileRequest is the body of PATCH /api/profile.
type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Username *string `json:"username" validate:"omitempty,username"`
	Bio      *string `json:"bio" validate:"omitempty,max=1000"`
	Website  *string `json:"website" validate:"omitempty,max=500"`
	Github   *string `json:"github" validate:"omitempty,max=100"`
	Twitter  *string `json:"twitter" validate:"omitempty,max=100"`
	IsPublic *bool   `json:"isPublic"`
	Image    *string `json:"image" validate:"omitempty,max=2048"`
}

// ChangePasswordRequest is the body of POST /api/profile/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// ProfileController serves the caller's own account.
type ProfileController struct {
	users     UserStore
	passwords PasswordChanger
	validator *validation.Validator
	changes   changeRecorder
	logger    *zap.Logger
}

// NewProfileController creates a new profile controller.
func NewProfileController(users UserStore, passwords PasswordChanger, auditor Auditor, v *validation.Validator, logger *zap.Logger) *ProfileController {
	return &ProfileController{
		users:     users,
		passwords: passwords,
		validator: v,
		changes:   changeRecorder{audit: auditor},
		logger:    logger,
	}
}

// Get returns the caller with spell, spellbook and favorite counts.
// GET /api/profile
func (pc *ProfileController) Get(c *gin.Context) {
	pc.respondProfile(c, auth.GetUserID(c), "Failed to fetch profile")
}

// Update applies the fields present in the body to the caller's account.
// PATCH /api/profile
func (pc *ProfileController) Update(c *gin.Context) {
	userID := auth.GetUserID(c)

	var req UpdateProfileRequest
	if !bindJSON(c, pc.validator, &req) {
		return
	}

	fields := make(map[string]any)
	if req.Username != nil {
		taken, err := pc.users.UsernameTaken(*req.Username, userID)
		if err != nil {
			respondInternalError(c, pc.logger, err, "Failed to update profile")
			return
		}
		if taken {
			respondBadRequest(c, "Username already taken")
			return
		}
		fields["username"] = *req.Username
	}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.Website != nil {
		fields["website"] = *req.Website
	}
	if req.Github != nil {
		fields["github"] = *req.Github
	}
	if req.Twitter != nil {
		fields["twitter"] = *req.Twitter
	}
	if req.IsPublic != nil {
		fields["is_public"] = *req.IsPublic
	}
	if req.Image != nil {
		fields["image"] = *req.Image
	}

	if _, err := pc.users.Update(userID, fields); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			respondBadRequest(c, "Username already taken")
			return
		}
		respondDomainError(c, pc.logger, err, "User", "Failed to update profile")
		return
	}
	pc.changes.record(c, "", entities.AuditEventProfile, "profile_update", userID, "Updated profile")
	pc.respondProfile(c, userID, "Failed to update profile")
}

// CheckUsername reports whether a username is free for the caller.
// GET /api/profile/check-username?username=
func (pc *ProfileController) CheckUsername(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		respondBadRequest(c, "Username is required")
		return
	}
	if !validation.UsernamePattern.MatchString(username) {
		c.JSON(http.StatusOK, gin.H{"available": false, "error": "Invalid username format"})
		return
	}

	taken, err := pc.users.UsernameTaken(username, auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, pc.logger, err, "Failed to check username")
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": !taken})
}

// ChangePassword replaces the caller's password.
// POST /api/profile/password
func (pc *ProfileController) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindJSON(c, pc.validator, &req) {
		return
	}

	userID := auth.GetUserID(c)
	err := pc.passwords.ChangePassword(userID, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrInvalidPassword):
		respondBadRequest(c, "Current password is incorrect")
		return
	case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong):
		respondBadRequest(c, capitalize(err.Error()))
		return
	case errors.Is(err, auth.ErrUserNotFound):
		respondNotFound(c, "User")
		return
	default:
		respondInternalError(c, pc.logger, err, "Failed to change password")
		return
	}

	pc.changes.record(c, "", entities.AuditEventProfile, "password_change", userID, "Changed password")
	respondSuccess(c)
}

func (pc *ProfileController) respondProfile(c *gin.Context, userID, failure string) {
	user, err := pc.users.GetByID(userID)
	if err != nil {
		respondDomainError(c, pc.logger, err, "User", failure)
		return
	}
	counts, err := pc.users.Counts(userID)
	if err != nil {
		respondInternalError(c, pc.logger, err, failure)
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{User: user, Count: counts})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
