package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hextras/hextras-api/internal/dto"
	apierrors "github.com/hextras/hextras-api/internal/errors"
	"github.com/hextras/hextras-api/internal/middleware"
	"github.com/hextras/hextras-api/internal/services"
)

// ProfileHandler exposes profile and referral reads/edits.
type ProfileHandler struct {
	profileService *services.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// GetProfile returns another user's public profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	if _, exists := middleware.GetUserID(c); !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	profile, err := h.profileService.GetProfile(c.Param("id"))
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPublicProfileDTO(*profile))
}

// UpdateProfile edits the caller's own contact fields
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateProfileRequest struct {
		FullName *string `json:"full_name"`
		Phone    *string `json:"phone"`
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	profile, err := h.profileService.UpdateProfile(userID, services.UpdateProfileInput{
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*profile))
}

// ListReferrals returns the caller's referrals
func (h *ProfileHandler) ListReferrals(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	referrals, err := h.profileService.ListReferrals(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch referrals")
		return
	}

	result := make([]dto.ReferralDTO, len(referrals))
	for i, referral := range referrals {
		result[i] = dto.ToReferralDTO(referral)
	}

	c.JSON(http.StatusOK, gin.H{
		"referrals": result,
	})
}
